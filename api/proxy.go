/**
 * Copyright (c) 2023 wetrycode
 *
 * This software is released under the MIT License.
 * https://opensource.org/licenses/MIT
 */

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wetrycode/vmwiz"
)

// relayHeaders backend response headers passed on to the browser
var relayHeaders = []string{"Set-Cookie", "Cache-Control", "Location"}

// forwardFunc one backend call made on behalf of the browser
type forwardFunc func(ctx context.Context, c *gin.Context, opts ...vmwiz.RequestOption) (*vmwiz.Result, error)

// forward call the backend with the browser's cookie and relay the result
func (v *VMWizAPI) forward(call forwardFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts := []vmwiz.RequestOption{
			vmwiz.RequestWithCookie(c.GetHeader("Cookie")),
			vmwiz.RequestWithRequestID(c.GetString(requestIDKey)),
		}
		res, err := call(c.Request.Context(), c, opts...)
		v.relay(c, res, err)
	}
}

// acceptsHTML the request comes from a page load rather than from script
func acceptsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}

func (v *VMWizAPI) relay(c *gin.Context, res *vmwiz.Result, err error) {
	appG := Gin{Ctx: c}
	if err != nil {
		switch {
		case errors.Is(err, vmwiz.ErrNoRedirectTarget):
			appG.Response(http.StatusUnauthorized, NO_REDIRECT_TARGET, nil)
		case errors.Is(err, vmwiz.ErrInvalidMethod), errors.Is(err, vmwiz.ErrRequestBody):
			appG.Response(http.StatusBadRequest, INVALID_PARAMS, err.Error())
		default:
			apiLog.Errorf("Forward %s error %s", c.Request.URL.Path, err.Error())
			appG.Response(http.StatusBadGateway, BACKEND_UNREACHABLE, nil)
		}
		return
	}
	if res.SessionExpired() {
		if acceptsHTML(c) {
			c.Redirect(http.StatusFound, res.RedirectURL)
			return
		}
		c.JSON(http.StatusUnauthorized, vmwiz.UnauthorizedBody{RedirectURL: res.RedirectURL})
		return
	}
	response := res.Response
	for _, key := range relayHeaders {
		for _, value := range response.Header.Values(key) {
			c.Writer.Header().Add(key, value)
		}
	}
	body := response.Bytes()
	if len(body) == 0 {
		c.Status(response.Status)
		return
	}
	contentType := response.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	c.Data(response.Status, contentType, body)
}

func (v *VMWizAPI) options(ctx context.Context, _ *gin.Context, opts ...vmwiz.RequestOption) (*vmwiz.Result, error) {
	return v.client.FetchVMOptions(ctx, opts...)
}

func (v *VMWizAPI) requests(ctx context.Context, _ *gin.Context, opts ...vmwiz.RequestOption) (*vmwiz.Result, error) {
	return v.client.FetchRequests(ctx, opts...)
}

func (v *VMWizAPI) submit(ctx context.Context, c *gin.Context, opts ...vmwiz.RequestOption) (*vmwiz.Result, error) {
	var form vmwiz.VMRequestForm
	if err := c.ShouldBindJSON(&form); err != nil {
		return nil, errors.Join(vmwiz.ErrRequestBody, err)
	}
	return v.client.SendVMRequest(ctx, &form, opts...)
}

func (v *VMWizAPI) accept(ctx context.Context, c *gin.Context, opts ...vmwiz.RequestOption) (*vmwiz.Result, error) {
	var body vmwiz.RequestID
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, errors.Join(vmwiz.ErrRequestBody, err)
	}
	if c.Query("preview") == "true" {
		return v.client.PreviewAccept(ctx, body.ID, opts...)
	}
	return v.client.AcceptVMRequest(ctx, body.ID, body.ConfirmationToken, opts...)
}

func (v *VMWizAPI) reject(ctx context.Context, c *gin.Context, opts ...vmwiz.RequestOption) (*vmwiz.Result, error) {
	var body vmwiz.RequestID
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, errors.Join(vmwiz.ErrRequestBody, err)
	}
	return v.client.RejectVMRequest(ctx, body.ID, opts...)
}

func (v *VMWizAPI) edit(ctx context.Context, c *gin.Context, opts ...vmwiz.RequestOption) (*vmwiz.Result, error) {
	var body vmwiz.EditVMRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, errors.Join(vmwiz.ErrRequestBody, err)
	}
	return v.client.EditVMRequest(ctx, body, opts...)
}

func (v *VMWizAPI) surveys(ctx context.Context, _ *gin.Context, opts ...vmwiz.RequestOption) (*vmwiz.Result, error) {
	return v.client.FetchSurveys(ctx, opts...)
}

func (v *VMWizAPI) surveyInfo(ctx context.Context, c *gin.Context, opts ...vmwiz.RequestOption) (*vmwiz.Result, error) {
	id, err := strconv.ParseInt(c.Query("surveyId"), 10, 64)
	if err != nil {
		return nil, errors.Join(vmwiz.ErrRequestBody, err)
	}
	return v.client.FetchSurveyInfo(ctx, id, opts...)
}

func (v *VMWizAPI) startSurvey(ctx context.Context, _ *gin.Context, opts ...vmwiz.RequestOption) (*vmwiz.Result, error) {
	return v.client.StartSurvey(ctx, opts...)
}

func (v *VMWizAPI) setSurvey(ctx context.Context, c *gin.Context, opts ...vmwiz.RequestOption) (*vmwiz.Result, error) {
	var body vmwiz.SurveyAnswer
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, errors.Join(vmwiz.ErrRequestBody, err)
	}
	return v.client.SetSurveyResponse(ctx, body, opts...)
}

func (v *VMWizAPI) resendSurvey(ctx context.Context, c *gin.Context, opts ...vmwiz.RequestOption) (*vmwiz.Result, error) {
	var body vmwiz.RequestID
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, errors.Join(vmwiz.ErrRequestBody, err)
	}
	return v.client.ResendSurvey(ctx, body.ID, opts...)
}

func (v *VMWizAPI) surveyResponses(ctx context.Context, c *gin.Context, opts ...vmwiz.RequestOption) (*vmwiz.Result, error) {
	id, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil {
		return nil, errors.Join(vmwiz.ErrRequestBody, err)
	}
	return v.client.FetchSurveyResponses(ctx, id, vmwiz.SurveyResponseKind(c.Param("kind")), opts...)
}

// auth forward a login step with every query value the browser sent
func (v *VMWizAPI) auth(path string) forwardFunc {
	return func(ctx context.Context, c *gin.Context, opts ...vmwiz.RequestOption) (*vmwiz.Result, error) {
		params := map[string]string{}
		for key, values := range c.Request.URL.Query() {
			if len(values) > 0 {
				params[key] = values[0]
			}
		}
		return v.client.Auth(ctx, path, params, opts...)
	}
}
