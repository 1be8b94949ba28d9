// MIT License

// Copyright (c) 2023 wetrycode

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package vmwiz

import (
	"fmt"
	"strings"
)

// DefaultTitle document title of routes without a title
const DefaultTitle string = "VMWiz"

// Route one entry of the navigation table
type Route struct {
	// Path url path of the page
	Path string
	// Name short route name
	Name string
	// Title document title, DefaultTitle when empty
	Title string
	// View name of the view mounted for the path
	View string
}

// DocumentTitle title shown while the route is active
func (r Route) DocumentTitle() string {
	if strings.TrimSpace(r.Title) == "" {
		return DefaultTitle
	}
	return r.Title
}

// Routes static navigation table
type Routes struct {
	entries []Route
	index   map[string]int
}

// DefaultRouteEntries pages of the vmwiz web client
var DefaultRouteEntries = []Route{
	{Path: "/", Name: "home", Title: "Request a VM", View: "FormView"},
	{Path: "/console", Name: "admin", Title: "Admin Console", View: "AdminConsoleView"},
	{Path: "/survey", Name: "survey", Title: "Usage Survey", View: "SurveyView"},
}

// NormalizeRoutePath leading slash, no trailing slash except for the root
func NormalizeRoutePath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = "/" + strings.Trim(strings.TrimSpace(path), "/")
	return path
}

// NewRoutes build the navigation table, every path must be unique
func NewRoutes(entries ...Route) (*Routes, error) {
	r := &Routes{
		entries: make([]Route, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, entry := range entries {
		if strings.TrimSpace(entry.Path) == "" {
			return nil, fmt.Errorf("%w: route %q", ErrEmptyRoutePath, entry.Name)
		}
		entry.Path = NormalizeRoutePath(entry.Path)
		if _, ok := r.index[entry.Path]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRoute, entry.Path)
		}
		r.index[entry.Path] = len(r.entries)
		r.entries = append(r.entries, entry)
	}
	return r, nil
}

// DefaultRoutes the navigation table of the vmwiz web client
func DefaultRoutes() *Routes {
	r, err := NewRoutes(DefaultRouteEntries...)
	if err != nil {
		panic(err.Error())
	}
	return r
}

// Resolve the single route registered for path
func (r *Routes) Resolve(path string) (Route, error) {
	i, ok := r.index[NormalizeRoutePath(path)]
	if !ok {
		return Route{}, fmt.Errorf("%w: %s", ErrRouteNotFound, path)
	}
	return r.entries[i], nil
}

// Title document title for path, DefaultTitle for unknown paths
func (r *Routes) Title(path string) string {
	route, err := r.Resolve(path)
	if err != nil {
		return DefaultTitle
	}
	return route.DocumentTitle()
}

// All the table entries in registration order
func (r *Routes) All() []Route {
	entries := make([]Route, len(r.entries))
	copy(entries, r.entries)
	return entries
}
