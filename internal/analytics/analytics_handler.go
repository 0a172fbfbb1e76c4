package analytics

import (
	"net/http"
	"strconv"

	"github.com/eman-cickusic/leave-management/internal/shared/apperror"
	"github.com/eman-cickusic/leave-management/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("analytics.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("analytics.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("analytics request failed",
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// parsePeriod reads the optional year and month query params. Zero values
// mean "current year" and "whole year".
func parsePeriod(c *gin.Context) (int, int, bool) {
	year, ok := parseIntParam(c, "year", 2000, 2200)
	if !ok {
		return 0, 0, false
	}
	month, ok := parseIntParam(c, "month", 1, 12)
	if !ok {
		return 0, 0, false
	}
	return year, month, true
}

func parseIntParam(c *gin.Context, name string, min, max int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < min || value > max {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput,
			"invalid "+name+" parameter", nil)
		return 0, false
	}
	return value, true
}

func (h *Handler) GetSummary(c *gin.Context) {
	year, month, ok := parsePeriod(c)
	if !ok {
		return
	}

	summary, err := h.service.Summarize(c.Request.Context(), year, month)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, summary, nil)
}

func (h *Handler) ExportCSV(c *gin.Context) {
	year, month, ok := parsePeriod(c)
	if !ok {
		return
	}

	data, err := h.service.ExportCSV(c.Request.Context(), year, month)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename=leave-analytics.csv`)
	c.Data(http.StatusOK, "text/csv", data)
}

func (h *Handler) ExportXLSX(c *gin.Context) {
	year, month, ok := parsePeriod(c)
	if !ok {
		return
	}

	data, err := h.service.ExportXLSX(c.Request.Context(), year, month)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename=leave-analytics.xlsx`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
