/**
 * Copyright (c) 2023 wetrycode
 *
 * This software is released under the MIT License.
 * https://opensource.org/licenses/MIT
 */

package api

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wetrycode/vmwiz"
)

const shellTemplateName string = "shell"

// shellTemplate the page every navigation route is served with.
// The client bundle mounts the view named by data-view.
var shellTemplate = template.Must(template.New(shellTemplateName).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{ .Title }}</title>
<link rel="stylesheet" href="{{ .Static }}/app.css">
</head>
<body>
<div id="app" data-route="{{ .Name }}" data-view="{{ .View }}"></div>
<script type="module" src="{{ .Static }}/app.js"></script>
</body>
</html>
`))

type shellData struct {
	Title  string
	Name   string
	View   string
	Static string
}

func (v *VMWizAPI) page(route vmwiz.Route) gin.HandlerFunc {
	return func(c *gin.Context) {
		v.renderPage(c, http.StatusOK, route)
	}
}

func (v *VMWizAPI) renderPage(c *gin.Context, code int, route vmwiz.Route) {
	c.HTML(code, shellTemplateName, shellData{
		Title:  route.DocumentTitle(),
		Name:   route.Name,
		View:   route.View,
		Static: staticPrefix,
	})
}
