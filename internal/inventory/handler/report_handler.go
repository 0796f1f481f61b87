package handler

import (
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-inventory/internal/inventory/analytics"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/service"
	"github.com/gin-gonic/gin"
)

// ReportHandler 报表与仪表盘处理器
type ReportHandler struct {
	svc *service.ReportService
	now func() time.Time
}

func NewReportHandler(svc *service.ReportService, now func() time.Time) *ReportHandler {
	return &ReportHandler{svc: svc, now: now}
}

// QueryWindow reads start_date/end_date (YYYY-MM-DD). A missing bound stays
// open; both missing yields the zero window.
func QueryWindow(c *gin.Context) (analytics.Window, bool) {
	var w analytics.Window
	if raw := c.Query("start_date"); raw != "" {
		t, err := service.ParseDate(raw)
		if err != nil {
			BadRequest(c, "invalid start_date")
			return w, false
		}
		w.Start = analytics.StartOfDay(t)
	}
	if raw := c.Query("end_date"); raw != "" {
		t, err := service.ParseDate(raw)
		if err != nil {
			BadRequest(c, "invalid end_date")
			return w, false
		}
		w.End = analytics.NewDateWindow(t, t).End
	}
	if !w.Start.IsZero() && !w.End.IsZero() && w.End.Before(w.Start) {
		BadRequest(c, "end_date must not be before start_date")
		return w, false
	}
	return w, true
}

// reportWindow fills missing bounds from the default report window.
func (h *ReportHandler) reportWindow(c *gin.Context) (analytics.Window, bool) {
	w, ok := QueryWindow(c)
	if !ok {
		return w, false
	}
	def := service.DefaultWindow(h.now())
	if w.Start.IsZero() {
		w.Start = def.Start
	}
	if w.End.IsZero() {
		w.End = def.End
	}
	if w.End.Before(w.Start) {
		BadRequest(c, "end_date must not be before start_date")
		return w, false
	}
	return w, true
}

// Dashboard 仪表盘
// GET /api/v1/inventory/dashboard?horizon_days=30
func (h *ReportHandler) Dashboard(c *gin.Context) {
	horizon, ok := QueryInt(c, "horizon_days", 0)
	if !ok {
		return
	}
	dashboard, err := h.svc.Dashboard(c.Request.Context(), horizon)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, dashboard)
}

// Report 报表
// GET /api/v1/inventory/reports?start_date=&end_date=&top=10
func (h *ReportHandler) Report(c *gin.Context) {
	window, ok := h.reportWindow(c)
	if !ok {
		return
	}
	top, ok := QueryInt(c, "top", 0)
	if !ok {
		return
	}
	report, err := h.svc.Report(c.Request.Context(), window, top)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, report)
}

// Export 导出报表文件
// GET /api/v1/inventory/reports/export?format=json|xlsx|md|html&start_date=&end_date=
func (h *ReportHandler) Export(c *gin.Context) {
	window, ok := h.reportWindow(c)
	if !ok {
		return
	}
	top, ok := QueryInt(c, "top", 0)
	if !ok {
		return
	}
	result, err := h.svc.Export(c.Request.Context(), window, top, c.Query("format"))
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Name))
	if result.ObjectName != "" {
		c.Header("X-Archive-Object", result.ObjectName)
	}
	c.Data(200, result.ContentType, result.Data)
}
