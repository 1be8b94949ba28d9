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
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/wetrycode/vmwiz"
)

var apiLog *logrus.Entry = vmwiz.GetLogger("api")

const staticPrefix string = "/static"

type VMWizAPI struct {
	G        *gin.Engine
	client   *vmwiz.Client
	routes   *vmwiz.Routes
	fs       afero.Fs
	gatherer prometheus.Gatherer
	settings vmwiz.ServerSettings
}

type statusResp struct {
	Requests       uint64            `json:"requests"`
	Failures       uint64            `json:"failures"`
	SessionExpired uint64            `json:"session_expired"`
	NoRedirect     uint64            `json:"no_redirect"`
	AverageDelay   float64           `json:"average_delay"`
	Stats          map[string]uint64 `json:"stats"`
	Backend        string            `json:"backend"`
	ProcessId      string            `json:"process_id"`
}

// statisticGateway a gateway that keeps call counters
type statisticGateway interface {
	GetStatistic() vmwiz.StatisticInterface
}

type APIOption func(v *VMWizAPI)

// APIWithRoutes set the navigation table pages are served from
func APIWithRoutes(routes *vmwiz.Routes) APIOption {
	return func(v *VMWizAPI) {
		v.routes = routes
	}
}

// APIWithFs set the filesystem static assets are served from
func APIWithFs(fs afero.Fs) APIOption {
	return func(v *VMWizAPI) {
		v.fs = fs
	}
}

// APIWithGatherer set the prometheus registry exposed on /metrics
func APIWithGatherer(gatherer prometheus.Gatherer) APIOption {
	return func(v *VMWizAPI) {
		v.gatherer = gatherer
	}
}

// APIWithServerSettings set listen address, static dir and timeouts
func APIWithServerSettings(settings vmwiz.ServerSettings) APIOption {
	return func(v *VMWizAPI) {
		v.settings = settings
	}
}

func (v *VMWizAPI) health(ctx *gin.Context) {
	ctx.String(http.StatusOK, "OK")
}

func (v *VMWizAPI) status(ctx *gin.Context) {
	appG := Gin{Ctx: ctx}
	rsp := statusResp{
		Backend:   v.client.Gateway().BaseURL(),
		ProcessId: vmwiz.ProcessId,
		Stats:     map[string]uint64{},
	}
	if g, ok := v.client.Gateway().(statisticGateway); ok {
		statistic := g.GetStatistic()
		rsp.Requests = statistic.Get(vmwiz.RequestStats)
		rsp.Failures = statistic.Get(vmwiz.FailureStats)
		rsp.SessionExpired = statistic.Get(vmwiz.SessionExpiredStats)
		rsp.NoRedirect = statistic.Get(vmwiz.NoRedirectStats)
		rsp.AverageDelay = statistic.AverageDelay()
		rsp.Stats = statistic.GetAllStats()
	}
	appG.Response(http.StatusOK, SUCCESS, rsp)
}

// notFound resolve paths gin has no handler for against the navigation table
func (v *VMWizAPI) notFound(ctx *gin.Context) {
	path := ctx.Request.URL.Path
	if ctx.Request.Method == http.MethodGet && !strings.HasPrefix(path, "/api/") {
		if route, err := v.routes.Resolve(path); err == nil {
			v.renderPage(ctx, http.StatusOK, route)
			return
		}
		if acceptsHTML(ctx) {
			v.renderPage(ctx, http.StatusNotFound, vmwiz.Route{Path: path})
			return
		}
	}
	appG := Gin{Ctx: ctx}
	appG.Response(http.StatusNotFound, NOT_FOUND, nil)
}

// Server the http server of the api
func (v *VMWizAPI) Server() *http.Server {
	return &http.Server{
		Addr:         v.settings.Addr,
		Handler:      v.G,
		ReadTimeout:  v.settings.ReadTimeout,
		WriteTimeout: v.settings.WriteTimeout,
	}
}

// Run serve until ctx is done, then shut down gracefully
func (v *VMWizAPI) Run(ctx context.Context) error {
	server := v.Server()
	errCh := make(chan error, 1)
	go func() {
		apiLog.Infof("Listening on %s, backend %s", server.Addr, v.client.Gateway().BaseURL())
		errCh <- server.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		apiLog.Info("Shutting down")
		return server.Shutdown(shutdownCtx)
	}
}

// NewAPI build the web server. Pages come from the navigation table,
// /api routes are forwarded to the backend through client.
func NewAPI(client *vmwiz.Client, opts ...APIOption) *VMWizAPI {
	API := &VMWizAPI{
		client:   client,
		routes:   vmwiz.DefaultRoutes(),
		gatherer: prometheus.DefaultGatherer,
		settings: vmwiz.ServerSettings{
			Addr:         "0.0.0.0:8080",
			StaticDir:    "./dist",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(API)
	}
	if API.fs == nil {
		API.fs = afero.NewBasePathFs(afero.NewOsFs(), API.settings.StaticDir)
	}
	g := SetUp()
	g.SetHTMLTemplate(shellTemplate)

	for _, route := range API.routes.All() {
		g.GET(route.Path, API.page(route))
	}
	g.StaticFS(staticPrefix, afero.NewHttpFs(API.fs))
	g.GET("/health", API.health)
	g.GET("/status", API.status)
	g.GET("/metrics", gin.WrapH(promhttp.HandlerFor(API.gatherer, promhttp.HandlerOpts{})))

	apiRouter := g.Group("/api")
	apiRouter.GET("/vmrequest/options", API.forward(API.options))
	apiRouter.GET("/vmrequest", API.forward(API.requests))
	apiRouter.POST("/vmrequest", API.forward(API.submit))
	apiRouter.POST("/vmrequest/accept", API.forward(API.accept))
	apiRouter.POST("/vmrequest/reject", API.forward(API.reject))
	apiRouter.POST("/vmrequest/edit", API.forward(API.edit))
	apiRouter.GET("/usagesurvey/", API.forward(API.surveys))
	apiRouter.GET("/usagesurvey/info", API.forward(API.surveyInfo))
	apiRouter.GET("/usagesurvey/start", API.forward(API.startSurvey))
	apiRouter.POST("/usagesurvey/set", API.forward(API.setSurvey))
	apiRouter.POST("/usagesurvey/resend", API.forward(API.resendSurvey))
	apiRouter.GET("/usagesurvey/responses/:kind", API.forward(API.surveyResponses))
	apiRouter.GET("/auth/start", API.forward(API.auth(client.Paths().AuthStart)))
	apiRouter.GET("/auth/callback", API.forward(API.auth(client.Paths().AuthCallback)))
	g.NoRoute(API.notFound)
	API.G = g
	return API
}
