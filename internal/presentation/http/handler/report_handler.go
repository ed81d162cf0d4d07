package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lanchonete/pos-api/internal/application/service"
	"github.com/lanchonete/pos-api/internal/presentation/http/dto/response"
)

// ReportHandler handles reporting HTTP requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// DailySummary handles the daily cash summary report
func (h *ReportHandler) DailySummary(c *gin.Context) {
	day := time.Now()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			response.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
			return
		}
		day = parsed
	}

	summary, err := h.reportService.GetDailySummary(c.Request.Context(), day)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Daily summary retrieved", summary)
}

// Shortages handles listing shortage records in a date range
func (h *ReportHandler) Shortages(c *gin.Context) {
	var start, end *time.Time
	if startStr := c.Query("start_date"); startStr != "" {
		parsed, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			response.BadRequest(c, "Invalid start_date, expected YYYY-MM-DD")
			return
		}
		start = &parsed
	}
	if endStr := c.Query("end_date"); endStr != "" {
		parsed, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			response.BadRequest(c, "Invalid end_date, expected YYYY-MM-DD")
			return
		}
		e := parsed.Add(24*time.Hour - time.Nanosecond)
		end = &e
	}

	shortages, err := h.reportService.ListShortages(c.Request.Context(), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Shortages retrieved", shortages)
}

// TillStatus handles reading the live drawer state
func (h *ReportHandler) TillStatus(c *gin.Context) {
	response.OK(c, "Till status retrieved", h.reportService.GetTillStatus(c.Request.Context()))
}
