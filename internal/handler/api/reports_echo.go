package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	"TrendPulse/internal/domain/models"
	"TrendPulse/internal/usecase"
	xhttp "TrendPulse/pkg/http"
	"TrendPulse/pkg/logger"
)

// ReportsHandler serves the analysis endpoints.
type ReportsHandler struct {
	l        *logger.Logger
	analyzer *usecase.ReportAnalyzer
	hub      *AlertHub
}

var _ xhttp.Handler = (*ReportsHandler)(nil)

// NewReportsHandler creates the reports API handler.
func NewReportsHandler(l *logger.Logger, analyzer *usecase.ReportAnalyzer, hub *AlertHub) *ReportsHandler {
	return &ReportsHandler{l: l, analyzer: analyzer, hub: hub}
}

// RegisterRoutes attaches the API routes to Echo.
func (h *ReportsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/report", h.getReport)
	g.GET("/anomalies", h.getAnomalies)
	g.GET("/baseline", h.getBaseline)
	g.GET("/events", h.getEvents)
	g.GET("/series", h.getSeries)
	g.GET("/alerts/ws", h.hub.Subscribe)
	e.GET("/health", h.health)
}

func (h *ReportsHandler) getReport(c echo.Context) error {
	var req models.ReportRequest
	if verrs := xhttp.ReadAndValidateRequest(c, &req); verrs != nil {
		return xhttp.BadRequestResponse(c, verrs)
	}

	report, err := h.analyzer.Report(c.Request().Context(), req.Refresh)
	if err != nil {
		h.l.Error("report build failed", logger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("report unavailable").WithError(err))
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *ReportsHandler) getAnomalies(c echo.Context) error {
	var req models.AnomaliesRequest
	if verrs := xhttp.ReadAndValidateRequest(c, &req); verrs != nil {
		return xhttp.BadRequestResponse(c, verrs)
	}

	ta, err := h.analyzer.TermAnomalies(c.Request().Context(), req.Term)
	if err != nil {
		return h.termError(c, req.Term, err)
	}
	return xhttp.SuccessResponse(c, ta)
}

func (h *ReportsHandler) getBaseline(c echo.Context) error {
	var req models.BaselineRequest
	if verrs := xhttp.ReadAndValidateRequest(c, &req); verrs != nil {
		return xhttp.BadRequestResponse(c, verrs)
	}

	bs, err := h.analyzer.TermBaseline(c.Request().Context(), req.Term)
	if err != nil {
		return h.termError(c, req.Term, err)
	}
	return xhttp.SuccessResponse(c, bs)
}

func (h *ReportsHandler) getEvents(c echo.Context) error {
	correlations, err := h.analyzer.EventCorrelations(c.Request().Context())
	if err != nil {
		h.l.Error("event correlations failed", logger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("report unavailable").WithError(err))
	}
	return xhttp.SuccessResponse(c, correlations)
}

func (h *ReportsHandler) getSeries(c echo.Context) error {
	var req models.SeriesRequest
	if verrs := xhttp.ReadAndValidateRequest(c, &req); verrs != nil {
		return xhttp.BadRequestResponse(c, verrs)
	}

	s, err := h.analyzer.Series(c.Request().Context(), req.Term, req.N)
	if err != nil {
		return h.termError(c, req.Term, err)
	}
	return xhttp.SuccessResponse(c, s)
}

func (h *ReportsHandler) health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *ReportsHandler) termError(c echo.Context, term string, err error) error {
	if errors.Is(err, usecase.ErrTermNotFound) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("term %q not found", term))
	}
	h.l.Error("term lookup failed", logger.String("term", term), logger.Error(err))
	return xhttp.AppErrorResponse(c, xhttp.InternalError("lookup failed").WithError(err))
}
