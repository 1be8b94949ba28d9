// Copyright 2022 geebytes
// Licensed under the Apache License, Version 2.0 (the 'License');
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an 'AS IS' BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vmwiz

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"golang.org/x/net/http/httpproxy"
)

// Gateway issues calls against the vmwiz backend
type Gateway interface {
	// Fetch send one request to the backend and classify the response
	Fetch(ctx context.Context, req *Request) (*Result, error)
	// BaseURL the backend base url every path is joined to
	BaseURL() string
}

// ResultKind outcome of a gateway call
type ResultKind uint

const (
	// ResultSuccess backend answered with a status other than 401
	ResultSuccess ResultKind = iota
	// ResultSessionExpired backend answered 401 and named a redirect target
	ResultSessionExpired
)

// GetTypeName the string form of the result kind
func (k ResultKind) GetTypeName() string {
	switch k {
	case ResultSuccess:
		return "success"
	case ResultSessionExpired:
		return "session_expired"
	}
	return "unknown"
}

// UnauthorizedBody the body the backend sends with a 401
type UnauthorizedBody struct {
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// Result typed outcome of a gateway call
type Result struct {
	Kind ResultKind
	// Response the backend response, never modified by the gateway
	Response *Response
	// RedirectURL where to re-authenticate, set for ResultSessionExpired
	RedirectURL string
}

// SessionExpired the caller must send the user to RedirectURL
func (r *Result) SessionExpired() bool {
	return r.Kind == ResultSessionExpired
}

// BackendGateway http gateway to the vmwiz backend
type BackendGateway struct {
	config    BackendConfig
	baseURL   string
	transport *http.Transport
	client    *http.Client
	// RateLimiter taken once before every call
	RateLimiter ratelimit.Limiter
	stats       StatisticInterface
	metrics     *Metrics
	tlsConfig   *tls.Config
}

// GatewayOption optional parameters of the gateway
type GatewayOption func(g *BackendGateway)

var gatewayLog *logrus.Entry = GetLogger("gateway")

// envProxyOnce System proxies load only one
var envProxyOnce sync.Once

// envProxyFuncValue System proxies get funcation
var envProxyFuncValue func(*url.URL) (*url.URL, error)

// proxyFunc http.Transport.Proxy from the environment
func proxyFunc(req *http.Request) (*url.URL, error) {
	envProxyOnce.Do(func() {
		envProxyFuncValue = httpproxy.FromEnvironment().ProxyFunc()
	})
	return envProxyFuncValue(req.URL)
}

// noRedirectKey context key marking a call whose redirects are returned, not followed
type noRedirectKey struct{}

// checkRedirect stop at the first 3xx for calls made with RequestWithoutRedirect
func checkRedirect(req *http.Request, via []*http.Request) error {
	if v, _ := req.Context().Value(noRedirectKey{}).(bool); v {
		return http.ErrUseLastResponse
	}
	if len(via) >= 10 {
		return errors.New("stopped after 10 redirects")
	}
	return nil
}

// GatewayWithClient set http client for the gateway.
// A client without CheckRedirect gets the gateway's, so RequestWithoutRedirect keeps working.
func GatewayWithClient(client *http.Client) GatewayOption {
	return func(g *BackendGateway) {
		if client.CheckRedirect == nil {
			client.CheckRedirect = checkRedirect
		}
		g.client = client
	}
}

// GatewayWithTransport set the transport of the gateway client
func GatewayWithTransport(transport *http.Transport) GatewayOption {
	return func(g *BackendGateway) {
		g.transport = transport
		g.client.Transport = transport
	}
}

// GatewayWithTimeout set a per request timeout, 0 keeps no timeout
func GatewayWithTimeout(timeout time.Duration) GatewayOption {
	return func(g *BackendGateway) {
		g.client.Timeout = timeout
	}
}

// GatewayWithTLSConfig set tls configure for the gateway.
// It applies to the transport of the client in use, including one set by
// GatewayWithClient in any option order.
func GatewayWithTLSConfig(tls *tls.Config) GatewayOption {
	return func(g *BackendGateway) {
		g.tlsConfig = tls
	}
}

func (g *BackendGateway) applyTLSConfig() {
	if g.tlsConfig == nil {
		return
	}
	if g.client.Transport == nil {
		g.client.Transport = g.transport
	}
	if transport, ok := g.client.Transport.(*http.Transport); ok {
		transport.TLSClientConfig = g.tlsConfig
		return
	}
	g.transport.TLSClientConfig = g.tlsConfig
}

// GatewayWithRateLimit set backend RPS
// See https://github.com/uber-go/ratelimit
func GatewayWithRateLimit(rateLimit ratelimit.Limiter) GatewayOption {
	return func(g *BackendGateway) {
		g.RateLimiter = rateLimit
	}
}

// GatewayWithStatistic set the statistic that counts calls
func GatewayWithStatistic(stats StatisticInterface) GatewayOption {
	return func(g *BackendGateway) {
		g.stats = stats
	}
}

// GatewayWithMetrics set prometheus collectors
func GatewayWithMetrics(metrics *Metrics) GatewayOption {
	return func(g *BackendGateway) {
		g.metrics = metrics
	}
}

// NewGateway get a gateway for the backend described by config
func NewGateway(config BackendConfig, opts ...GatewayOption) (*BackendGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: false,
		},
		Proxy: proxyFunc,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		MaxIdleConns:          64,
		IdleConnTimeout:       60 * time.Second,
		TLSHandshakeTimeout:   30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConnsPerHost:   32,
	}
	g := &BackendGateway{
		config:      config,
		baseURL:     config.BaseURL(),
		transport:   transport,
		client:      &http.Client{Transport: transport, CheckRedirect: checkRedirect},
		RateLimiter: ratelimit.NewUnlimited(),
		stats:       NewDefaultStatistic(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.applyTLSConfig()
	return g, nil
}

// BaseURL the backend base url
func (g *BackendGateway) BaseURL() string {
	return g.baseURL
}

// Config the backend configuration the gateway was built with
func (g *BackendGateway) Config() BackendConfig {
	return g.config
}

// GetStatistic call counters of the gateway
func (g *BackendGateway) GetStatistic() StatisticInterface {
	return g.stats
}

// URL absolute url of path
func (g *BackendGateway) URL(path string, params map[string]string) string {
	return JoinURL(g.baseURL, path, params)
}

// Fetch issue the request once.
// A 401 with a redirectUrl becomes ResultSessionExpired, a 401 without one
// an *UnauthorizedError. Any other status is returned untouched.
func (g *BackendGateway) Fetch(ctx context.Context, req *Request) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	requestID := req.Header.Get(HeaderRequestID)
	if requestID == "" {
		requestID = GetUUID()
	}
	fetchLog := gatewayLog.WithFields(logrus.Fields{
		"request_id": requestID,
		"method":     req.Method,
		"path":       req.Path,
	})
	u := g.URL(req.Path, req.Params)

	var body io.Reader = http.NoBody
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	if req.noRedirect {
		ctx = context.WithValue(ctx, noRedirectKey{}, true)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		fetchLog.Errorf("Create request error %s", err.Error())
		return nil, &BackendError{Method: req.Method, URL: u, Err: err}
	}
	httpReq.Header = req.Header.Clone()
	if httpReq.Header == nil {
		httpReq.Header = http.Header{}
	}
	httpReq.Header.Set(HeaderRequestID, requestID)

	g.RateLimiter.Take()
	now := time.Now()
	g.stats.Incr(RequestStats)
	fetchLog.Debugf("Gateway is requesting %s", u)
	resp, err := g.client.Do(httpReq)
	if err != nil {
		g.stats.Incr(FailureStats)
		g.metrics.failure(metricPath(req.Path), req.Method)
		fetchLog.Errorf("Request %s error %s", u, err.Error())
		return nil, &BackendError{Method: req.Method, URL: u, Err: err}
	}
	defer resp.Body.Close()

	response := NewResponse()
	response.Status = resp.StatusCode
	response.Header = resp.Header
	response.URL = u
	_, err = io.Copy(response.Buffer, resp.Body)
	if err != nil {
		g.stats.Incr(FailureStats)
		g.metrics.failure(metricPath(req.Path), req.Method)
		fetchLog.Errorf("%s %s", ErrResponseRead.Error(), err.Error())
		return nil, &BackendError{Method: req.Method, URL: u, Err: fmt.Errorf("%w: %w", ErrResponseRead, err)}
	}
	response.Delay = time.Since(now).Seconds()
	g.stats.Incr(strconv.Itoa(response.Status))
	g.stats.ObserveDelay(response.Delay)
	g.metrics.observe(metricPath(req.Path), req.Method, response.Status, response.Delay)

	if response.Status == http.StatusUnauthorized {
		return g.unauthorized(fetchLog, response)
	}
	return &Result{Kind: ResultSuccess, Response: response}, nil
}

func (g *BackendGateway) unauthorized(fetchLog *logrus.Entry, response *Response) (*Result, error) {
	var body UnauthorizedBody
	err := jsoniter.Unmarshal(response.Bytes(), &body)
	if err != nil || body.RedirectURL == "" {
		g.stats.Incr(NoRedirectStats)
		fetchLog.Warnf("Unauthorized response of %s has no redirect target", response.URL)
		return nil, &UnauthorizedError{Status: response.Status, Body: response.Bytes()}
	}
	g.stats.Incr(SessionExpiredStats)
	g.metrics.sessionExpired()
	fetchLog.Infof("Session expired, redirect target %s", body.RedirectURL)
	return &Result{Kind: ResultSessionExpired, Response: response, RedirectURL: body.RedirectURL}, nil
}

// metricPath the path without query string, used as a metric label
func metricPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return "/" + strings.TrimLeft(path, "/")
}
