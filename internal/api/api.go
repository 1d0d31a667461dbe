// Package api exposes the service over HTTP with gin.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"TickerScope/internal/model"
	"TickerScope/internal/service"
)

const (
	DefaultTimeout      = 60 * time.Second
	DefaultMAWindow     = 20
	ServiceName         = "tickerscope"
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"
)

// Options tunes the HTTP shell.
type Options struct {
	DefaultPeriod   string
	DefaultMAWindow int
	RequestTimeout  time.Duration
	Gatherer        prometheus.Gatherer
	Version         string
}

// Handler serves the service endpoints.
type Handler struct {
	svc       service.Service
	validator *Validator
	logger    log.Logger
	opts      Options
}

// NewHandler creates a handler; zero options fall back to defaults.
func NewHandler(svc service.Service, logger log.Logger, opts Options) *Handler {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if opts.DefaultPeriod == "" {
		opts.DefaultPeriod = model.DefaultPeriod
	}
	if opts.DefaultMAWindow <= 0 {
		opts.DefaultMAWindow = DefaultMAWindow
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultTimeout
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &Handler{
		svc:       svc,
		validator: GetValidator(),
		logger:    logger,
		opts:      opts,
	}
}

// SetupRoutes mounts the API both at the root and under /api.
func (h *Handler) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(requestIDMiddleware())
	router.Use(accessLogMiddleware(h.logger))
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	h.register(router)
	h.register(router.Group("/api"))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.opts.Gatherer, promhttp.HandlerOpts{})))

	return router
}

func (h *Handler) register(r gin.IRoutes) {
	r.POST("/plot", h.Plot)
	r.GET("/analyze/:ticker", h.Analyze)
	r.GET("/insights/:ticker", h.Insights)
	r.GET("/health", h.HealthCheck)
}

// NewServer returns an http.Server for addr serving the routes.
func (h *Handler) NewServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
