package vmwiz

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// EndpointPaths backend paths used by the client helpers
type EndpointPaths struct {
	Options    string
	Requests   string
	Submit     string
	Accept     string
	Reject     string
	Edit       string
	Surveys    string
	SurveyInfo string

	SurveyStart     string
	SurveySet       string
	SurveyResend    string
	SurveyResponses string

	AuthStart    string
	AuthCallback string
}

// CurrentPaths endpoint paths of the current backend
var CurrentPaths = EndpointPaths{
	Options:    "/api/vmrequest/options",
	Requests:   "/api/vmrequest",
	Submit:     "/api/vmrequest",
	Accept:     "/api/vmrequest/accept",
	Reject:     "/api/vmrequest/reject",
	Edit:       "/api/vmrequest/edit",
	Surveys:    "/api/usagesurvey/",
	SurveyInfo: "/api/usagesurvey/info",

	SurveyStart:     "/api/usagesurvey/start",
	SurveySet:       "/api/usagesurvey/set",
	SurveyResend:    "/api/usagesurvey/resend",
	SurveyResponses: "/api/usagesurvey/responses",

	AuthStart:    "/api/auth/start",
	AuthCallback: "/api/auth/callback",
}

// LegacyPaths endpoint paths of the first backend revision
var LegacyPaths = EndpointPaths{
	Options:    "/api/vmoptions",
	Requests:   "/api/requests",
	Submit:     "/api/vmrequest",
	Accept:     "/api/requests/accept",
	Reject:     "/api/requests/reject",
	Edit:       "/api/requests/edit",
	Surveys:    "/api/usagesurvey/",
	SurveyInfo: "/api/usagesurvey/info",

	SurveyStart:     "/api/usagesurvey/start",
	SurveySet:       "/api/usagesurvey/set",
	SurveyResend:    "/api/usagesurvey/resend",
	SurveyResponses: "/api/usagesurvey/responses",

	AuthStart:    "/api/auth/start",
	AuthCallback: "/api/auth/callback",
}

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

var clientLog = GetLogger("client")

// Client fixed path helpers over a Gateway
type Client struct {
	gateway Gateway
	paths   EndpointPaths
	cache   OptionsCache
}

// ClientOption optional parameters of the client
type ClientOption func(c *Client)

// ClientWithPaths set the endpoint paths
func ClientWithPaths(paths EndpointPaths) ClientOption {
	return func(c *Client) {
		c.paths = paths
	}
}

// ClientWithLegacyPaths switch to the first revision paths
func ClientWithLegacyPaths(legacy bool) ClientOption {
	return func(c *Client) {
		if legacy {
			c.paths = LegacyPaths
		}
	}
}

// ClientWithOptionsCache cache successful VM options responses
func ClientWithOptionsCache(cache OptionsCache) ClientOption {
	return func(c *Client) {
		c.cache = cache
	}
}

// NewClient get the helpers for gateway
func NewClient(gateway Gateway, opts ...ClientOption) *Client {
	c := &Client{
		gateway: gateway,
		paths:   CurrentPaths,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Gateway the underlying gateway
func (c *Client) Gateway() Gateway {
	return c.gateway
}

// Paths the endpoint paths in use
func (c *Client) Paths() EndpointPaths {
	return c.paths
}

func (c *Client) fetch(ctx context.Context, path string, method string, opts ...RequestOption) (*Result, error) {
	options := append([]RequestOption{RequestWithHeader(jsonHeader)}, opts...)
	return c.gateway.Fetch(ctx, NewRequest(path, method, options...))
}

// FetchVMOptions GET the selectable VM options
func (c *Client) FetchVMOptions(ctx context.Context, opts ...RequestOption) (*Result, error) {
	if c.cache != nil {
		if body, ok := c.cache.Get(ctx); ok {
			return cachedResult(JoinURL(c.gateway.BaseURL(), c.paths.Options, nil), body), nil
		}
	}
	res, err := c.fetch(ctx, c.paths.Options, GET, opts...)
	if err != nil || c.cache == nil {
		return res, err
	}
	if res.Kind == ResultSuccess && res.Response.Status == http.StatusOK {
		if cacheErr := c.cache.Set(ctx, res.Response.Bytes()); cacheErr != nil {
			clientLog.Warnf("Cache vm options error %s", cacheErr.Error())
		}
	}
	return res, nil
}

// FetchRequests GET all VM requests
func (c *Client) FetchRequests(ctx context.Context, opts ...RequestOption) (*Result, error) {
	return c.fetch(ctx, c.paths.Requests, GET, opts...)
}

// SendVMRequest POST a new VM request
func (c *Client) SendVMRequest(ctx context.Context, form *VMRequestForm, opts ...RequestOption) (*Result, error) {
	return c.fetch(ctx, c.paths.Submit, POST, append([]RequestOption{RequestWithJSONBody(form)}, opts...)...)
}

// PreviewAccept ask the backend for the confirmation token of an accept
func (c *Client) PreviewAccept(ctx context.Context, id int64, opts ...RequestOption) (*Result, error) {
	body := RequestID{ID: id}
	return c.fetch(ctx, c.paths.Accept, POST, append([]RequestOption{
		RequestWithJSONBody(body),
		RequestWithParams(map[string]string{"preview": "true"}),
	}, opts...)...)
}

// AcceptVMRequest POST accept with the confirmation token
func (c *Client) AcceptVMRequest(ctx context.Context, id int64, token string, opts ...RequestOption) (*Result, error) {
	body := RequestID{ID: id, ConfirmationToken: token}
	return c.fetch(ctx, c.paths.Accept, POST, append([]RequestOption{RequestWithJSONBody(body)}, opts...)...)
}

// RejectVMRequest POST reject
func (c *Client) RejectVMRequest(ctx context.Context, id int64, opts ...RequestOption) (*Result, error) {
	body := RequestID{ID: id}
	return c.fetch(ctx, c.paths.Reject, POST, append([]RequestOption{RequestWithJSONBody(body)}, opts...)...)
}

// EditVMRequest POST resource changes of a request
func (c *Client) EditVMRequest(ctx context.Context, edit EditVMRequest, opts ...RequestOption) (*Result, error) {
	return c.fetch(ctx, c.paths.Edit, POST, append([]RequestOption{RequestWithJSONBody(edit)}, opts...)...)
}

// FetchSurveys GET the ids of all usage surveys
func (c *Client) FetchSurveys(ctx context.Context, opts ...RequestOption) (*Result, error) {
	return c.fetch(ctx, c.paths.Surveys, GET, opts...)
}

// FetchSurveyInfo GET the answer counts of a usage survey
func (c *Client) FetchSurveyInfo(ctx context.Context, id int64, opts ...RequestOption) (*Result, error) {
	params := map[string]string{"surveyId": strconv.FormatInt(id, 10)}
	return c.fetch(ctx, c.paths.SurveyInfo, GET, append([]RequestOption{RequestWithParams(params)}, opts...)...)
}

// StartSurvey create a usage survey and mail it to all VM owners
func (c *Client) StartSurvey(ctx context.Context, opts ...RequestOption) (*Result, error) {
	return c.fetch(ctx, c.paths.SurveyStart, GET, opts...)
}

// SetSurveyResponse record an owner's answer, needs no session
func (c *Client) SetSurveyResponse(ctx context.Context, answer SurveyAnswer, opts ...RequestOption) (*Result, error) {
	return c.fetch(ctx, c.paths.SurveySet, POST, append([]RequestOption{RequestWithJSONBody(answer)}, opts...)...)
}

// ResendSurvey send the mails of survey id again
func (c *Client) ResendSurvey(ctx context.Context, id int64, opts ...RequestOption) (*Result, error) {
	body := RequestID{ID: id}
	return c.fetch(ctx, c.paths.SurveyResend, POST, append([]RequestOption{RequestWithJSONBody(body)}, opts...)...)
}

// FetchSurveyResponses hostnames of survey id in the listing kind
func (c *Client) FetchSurveyResponses(ctx context.Context, id int64, kind SurveyResponseKind, opts ...RequestOption) (*Result, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: survey response kind %q", ErrRequestBody, kind)
	}
	params := map[string]string{"id": strconv.FormatInt(id, 10)}
	path := c.paths.SurveyResponses + "/" + string(kind)
	return c.fetch(ctx, path, GET, append([]RequestOption{RequestWithParams(params)}, opts...)...)
}

// Auth forward one step of the login flow. Redirects are returned, not followed,
// so the browser gets the identity provider and callback locations.
func (c *Client) Auth(ctx context.Context, path string, params map[string]string, opts ...RequestOption) (*Result, error) {
	options := []RequestOption{RequestWithoutRedirect()}
	if len(params) > 0 {
		options = append(options, RequestWithParams(params))
	}
	return c.gateway.Fetch(ctx, NewRequest(path, GET, append(options, opts...)...))
}

func cachedResult(u string, body []byte) *Result {
	response := NewResponse()
	response.Status = http.StatusOK
	response.URL = u
	response.Header.Set("Content-Type", "application/json")
	response.Buffer.Write(body)
	return &Result{Kind: ResultSuccess, Response: response}
}

// decodeResult decode a 2xx result body into v
func decodeResult(res *Result, v interface{}) error {
	if res == nil || res.Response == nil {
		return fmt.Errorf("%w: empty result", ErrUnexpectedStatus)
	}
	if res.SessionExpired() {
		return fmt.Errorf("%w: redirect to %s", ErrSessionExpired, res.RedirectURL)
	}
	if !res.Response.IsSuccess() {
		return &StatusError{Status: res.Response.Status, Body: res.Response.Bytes()}
	}
	return res.Response.Decode(v)
}

// DecodeVMOptions read the VM options of a FetchVMOptions result
func DecodeVMOptions(res *Result) (*VMOptions, error) {
	options := &VMOptions{}
	if err := decodeResult(res, options); err != nil {
		return nil, err
	}
	return options, nil
}

// DecodeVMRequests read the VM requests of a FetchRequests result
func DecodeVMRequests(res *Result) ([]VMRequest, error) {
	requests := []VMRequest{}
	if err := decodeResult(res, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// DecodeFormValidation read the field errors of a rejected submit.
// A nil validation with a nil error means the backend accepted the form.
func DecodeFormValidation(res *Result) (*FormValidation, error) {
	if res != nil && res.Response != nil && res.Kind == ResultSuccess && res.Response.IsSuccess() {
		return nil, nil
	}
	if res != nil && res.Response != nil && res.Kind == ResultSuccess && res.Response.Status == http.StatusForbidden {
		validation := &FormValidation{}
		if err := res.Response.Decode(validation); err != nil {
			return nil, err
		}
		return validation, nil
	}
	return nil, decodeResult(res, &FormValidation{})
}

// DecodeConfirmationToken read the token of a PreviewAccept result
func DecodeConfirmationToken(res *Result) (string, error) {
	token := ConfirmationToken{}
	if err := decodeResult(res, &token); err != nil {
		return "", err
	}
	return token.ConfirmationToken, nil
}

// DecodeSurveys read the survey ids of a FetchSurveys result
func DecodeSurveys(res *Result) (*SurveyList, error) {
	surveys := &SurveyList{}
	if err := decodeResult(res, surveys); err != nil {
		return nil, err
	}
	return surveys, nil
}

// DecodeSurveyInfo read a FetchSurveyInfo result
func DecodeSurveyInfo(res *Result) (*SurveyInfo, error) {
	info := &SurveyInfo{}
	if err := decodeResult(res, info); err != nil {
		return nil, err
	}
	return info, nil
}

// DecodeSurveyStarted read the survey id of a StartSurvey result
func DecodeSurveyStarted(res *Result) (int64, error) {
	started := SurveyStarted{}
	if err := decodeResult(res, &started); err != nil {
		return 0, err
	}
	return started.SurveyID, nil
}

// DecodeSurveyHosts hostnames of a survey response listing
func DecodeSurveyHosts(res *Result) ([]string, error) {
	hosts := []string{}
	if err := decodeResult(res, &hosts); err != nil {
		return nil, err
	}
	return hosts, nil
}
