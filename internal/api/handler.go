package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/kit/log/level"

	"TickerScope/internal/chart"
	"TickerScope/internal/model"
)

// PlotRequest is the POST /plot body.
type PlotRequest struct {
	Ticker   string `json:"ticker"`
	Period   string `json:"period"`
	Start    string `json:"start"`
	End      string `json:"end"`
	PlotType string `json:"plot_type"`
	MAWindow *int   `json:"ma_window"`
}

// Plot handles POST /plot.
func (h *Handler) Plot(c *gin.Context) {
	var req PlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Request body must be JSON", err)
		return
	}

	ticker, err := h.validator.ValidateTicker(req.Ticker)
	if err != nil {
		h.handleError(c, err, req.Ticker)
		return
	}
	q, err := h.validator.ValidateQuery(req.Period, req.Start, req.End, "")
	if err != nil {
		h.handleError(c, err, ticker)
		return
	}
	kind, err := chart.ParsePlotKind(req.PlotType)
	if err != nil {
		h.handleError(c, err, ticker)
		return
	}
	window, err := h.validator.ValidateMAWindow(req.MAWindow, h.opts.DefaultMAWindow)
	if err != nil {
		h.handleError(c, err, ticker)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.opts.RequestTimeout)
	defer cancel()

	doc, err := h.svc.Plot(ctx, ticker, q, chart.PlotSpec{Kind: kind, MAWindow: window})
	if err != nil {
		h.handleError(c, err, ticker)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plot": doc})
}

// Analyze handles GET /analyze/:ticker.
func (h *Handler) Analyze(c *gin.Context) {
	ticker, q, ok := h.tickerQuery(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.opts.RequestTimeout)
	defer cancel()

	summary, err := h.svc.Analyze(ctx, ticker, q)
	if err != nil {
		h.handleError(c, err, ticker)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Insights handles GET /insights/:ticker.
func (h *Handler) Insights(c *gin.Context) {
	ticker, q, ok := h.tickerQuery(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.opts.RequestTimeout)
	defer cancel()

	report, err := h.svc.Insights(ctx, ticker, q)
	if err != nil {
		h.handleError(c, err, ticker)
		return
	}
	c.JSON(http.StatusOK, report)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"service":   ServiceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.opts.Version,
	})
}

func (h *Handler) tickerQuery(c *gin.Context) (string, model.Query, bool) {
	ticker, err := h.validator.ValidateTicker(c.Param("ticker"))
	if err != nil {
		h.handleError(c, err, "")
		return "", model.Query{}, false
	}
	q, err := h.validator.ValidateQuery(c.Query("period"), c.Query("start"), c.Query("end"), h.opts.DefaultPeriod)
	if err != nil {
		h.handleError(c, err, ticker)
		return "", model.Query{}, false
	}
	return ticker, q, true
}

// handleError maps domain errors onto HTTP statuses.
func (h *Handler) handleError(c *gin.Context, err error, ticker string) {
	var (
		fetchErr    *model.FetchError
		invalidErr  *model.InvalidInputError
		plotTypeErr *model.UnsupportedPlotTypeError
		noDataErr   *model.NoValidDataError
		formatErr   *model.UnsupportedFormatError
	)
	switch {
	case errors.As(err, &fetchErr):
		h.respondError(c, http.StatusNotFound, fmt.Sprintf("No data found for %s", ticker), err)
	case errors.As(err, &invalidErr), errors.As(err, &plotTypeErr),
		errors.As(err, &noDataErr), errors.As(err, &formatErr):
		h.respondError(c, http.StatusBadRequest, err.Error(), err)
	default:
		h.respondError(c, http.StatusInternalServerError, "Unexpected error: "+err.Error(), err)
	}
}

func (h *Handler) respondError(c *gin.Context, status int, msg string, err error) {
	requestID := c.GetString(RequestIDContextKey)
	lvl := level.Warn
	if status >= http.StatusInternalServerError {
		lvl = level.Error
	}
	_ = lvl(h.logger).Log(
		"msg", "api error",
		"request_id", requestID,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", status,
		"err", err,
	)
	c.JSON(status, gin.H{
		"error":      msg,
		"request_id": requestID,
	})
}
