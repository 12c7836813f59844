package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pscafe-console/internal/application/service"
	"github.com/sangkips/pscafe-console/internal/domain/entity"
	"github.com/sangkips/pscafe-console/internal/presentation/http/dto/request"
	"github.com/sangkips/pscafe-console/internal/presentation/http/dto/response"
	"github.com/sangkips/pscafe-console/internal/presentation/http/middleware"
	"github.com/sangkips/pscafe-console/pkg/pagination"
)

// ReportHandler handles sales and session reports
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Sales returns the drink sales report for a date range
func (h *ReportHandler) Sales(c *gin.Context) {
	filter, page, ok := bindReportQuery(c)
	if !ok {
		return
	}

	report, err := h.reportService.SalesReport(c.Request.Context(), middleware.GetTerminal(c), filter, page)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sales report generated", report)
}

// Sessions returns the sessions report of one client or a date range
func (h *ReportHandler) Sessions(c *gin.Context) {
	filter, page, ok := bindReportQuery(c)
	if !ok {
		return
	}

	report, err := h.reportService.SessionsReport(c.Request.Context(), middleware.GetTerminal(c), filter, page)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sessions report generated", report)
}

// Render returns the last report of a kind as a printable page
func (h *ReportHandler) Render(c *gin.Context) {
	kind, ok := reportKind(c)
	if !ok {
		return
	}

	page, err := h.reportService.RenderReport(kind, middleware.GetTerminal(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Page(c, page)
}

// Print sends the last report of a kind to the printer
func (h *ReportHandler) Print(c *gin.Context) {
	kind, ok := reportKind(c)
	if !ok {
		return
	}

	if err := h.reportService.PrintReport(c.Request.Context(), kind, middleware.GetTerminal(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Report sent to printer", nil)
}

func bindReportQuery(c *gin.Context) (service.ReportFilter, pagination.Params, bool) {
	var query request.ReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return service.ReportFilter{}, pagination.Params{}, false
	}

	start, err := parseDate("start", query.Start, false)
	if err != nil {
		response.Error(c, err)
		return service.ReportFilter{}, pagination.Params{}, false
	}
	end, err := parseDate("end", query.End, true)
	if err != nil {
		response.Error(c, err)
		return service.ReportFilter{}, pagination.Params{}, false
	}

	filter := service.ReportFilter{Start: start, End: end, ClientID: entity.ID(query.ClientID)}
	return filter, pagination.Params{Page: query.Page, PerPage: query.PerPage}, true
}
