package handlers

import (
	"net/http"
	"strconv"
	"time"

	"analytics-service/internal/models"
	"analytics-service/internal/services"
	"github.com/gin-gonic/gin"
)

// ReportsHandler exposes the analytics reports endpoints
type ReportsHandler struct {
	reports *services.ReportsService
}

func NewReportsHandler(reports *services.ReportsService) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// parseReportFilter extracts the shared date-range filters from the query string
func parseReportFilter(c *gin.Context) (models.ReportFilter, bool) {
	filter := models.ReportFilter{
		CategoryID: c.Query("categoryId"),
		SupplierID: c.Query("supplierId"),
		ClientID:   c.Query("clientId"),
	}

	for _, q := range []struct {
		name   string
		target **time.Time
	}{
		{"startDate", &filter.StartDate},
		{"endDate", &filter.EndDate},
	} {
		raw := c.Query(q.name)
		if raw == "" {
			continue
		}
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "VALIDATION_ERROR",
					Message: "dates must use the yyyy-mm-dd format",
					Field:   q.name,
				},
			})
			return filter, false
		}
		*q.target = &parsed
	}
	return filter, true
}

func respondReport(c *gin.Context, data interface{}, err error) {
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    data,
	})
}

// GetSalesSummary returns the sales summary report
// @Summary Sales summary
// @Description Sales totals for the window with a previous-period comparison
// @Tags Reports
// @Produce json
// @Param startDate query string false "Window start (yyyy-mm-dd)"
// @Param endDate query string false "Window end (yyyy-mm-dd)"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /reports/sales/summary [get]
func (h *ReportsHandler) GetSalesSummary(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	filter, ok := parseReportFilter(c)
	if !ok {
		return
	}
	summary, err := h.reports.GetSalesSummary(c.Request.Context(), tenantID.(string), filter)
	respondReport(c, summary, err)
}

// GetTopProducts returns the ranked top products report
// @Summary Top products
// @Description Variants ranked by units sold or revenue over the window
// @Tags Reports
// @Produce json
// @Param limit query int false "Number of entries" default(10)
// @Param sortBy query string false "Sort metric: quantity or revenue" default(revenue)
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /reports/sales/top-products [get]
func (h *ReportsHandler) GetTopProducts(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	filter, ok := parseReportFilter(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	query := models.TopProductsQuery{
		Limit:     limit,
		SortBy:    c.Query("sortBy"),
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
	}
	products, err := h.reports.GetTopProducts(c.Request.Context(), tenantID.(string), query)
	respondReport(c, products, err)
}

// GetSalesTrends returns the daily sales trend report
// @Summary Sales trends
// @Description One zero-filled data point per calendar day in the window
// @Tags Reports
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /reports/sales/trends [get]
func (h *ReportsHandler) GetSalesTrends(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	filter, ok := parseReportFilter(c)
	if !ok {
		return
	}
	trends, err := h.reports.GetSalesTrends(c.Request.Context(), tenantID.(string), filter)
	respondReport(c, trends, err)
}

// GetAdvancedTrends returns the regression-based trend analysis
// @Summary Advanced sales trends
// @Description Daily trend points with regression direction, volatility and projection
// @Tags Reports
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /reports/sales/trends/advanced [get]
func (h *ReportsHandler) GetAdvancedTrends(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	filter, ok := parseReportFilter(c)
	if !ok {
		return
	}
	trends, err := h.reports.GetAdvancedTrends(c.Request.Context(), tenantID.(string), filter)
	respondReport(c, trends, err)
}

// GetCustomerPerformance returns the per-client performance report
// @Summary Customer performance
// @Description Per-client spend, cadence and classification
// @Tags Reports
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /reports/customers/performance [get]
func (h *ReportsHandler) GetCustomerPerformance(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	filter, ok := parseReportFilter(c)
	if !ok {
		return
	}
	performance, err := h.reports.GetCustomerPerformance(c.Request.Context(), tenantID.(string), filter)
	respondReport(c, performance, err)
}

// GetCustomerSegmentation returns the customer segmentation report
// @Summary Customer segmentation
// @Description Customers grouped into behavior segments with revenue contribution
// @Tags Reports
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /reports/customers/segmentation [get]
func (h *ReportsHandler) GetCustomerSegmentation(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	filter, ok := parseReportFilter(c)
	if !ok {
		return
	}
	segmentation, err := h.reports.GetCustomerSegmentation(c.Request.Context(), tenantID.(string), filter)
	respondReport(c, segmentation, err)
}

// GetLowStock returns variants at or below the stock threshold
// @Summary Low stock
// @Description Variants at or below the threshold with last sale and receipt dates
// @Tags Reports
// @Produce json
// @Param threshold query int false "Stock threshold" default(10)
// @Param categoryId query string false "Restrict to one category"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /reports/inventory/low-stock [get]
func (h *ReportsHandler) GetLowStock(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	threshold, _ := strconv.Atoi(c.DefaultQuery("threshold", "0"))
	query := models.LowStockQuery{
		Threshold:  threshold,
		CategoryID: c.Query("categoryId"),
	}
	items, err := h.reports.GetLowStock(c.Request.Context(), tenantID.(string), query)
	respondReport(c, items, err)
}

// GetInventoryMovements returns the merged inbound/outbound movement stream
// @Summary Inventory movements
// @Description Supplier receipts and sales merged into one stream, newest first
// @Tags Reports
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /reports/inventory/movements [get]
func (h *ReportsHandler) GetInventoryMovements(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	filter, ok := parseReportFilter(c)
	if !ok {
		return
	}
	movements, err := h.reports.GetInventoryMovements(c.Request.Context(), tenantID.(string), filter)
	respondReport(c, movements, err)
}

// GetInventoryRotation returns the annualized rotation report
// @Summary Inventory rotation
// @Description Annualized rotation per variant with fast/medium/slow classification
// @Tags Reports
// @Produce json
// @Param filter query string false "fast, slow or all" default(all)
// @Param limit query int false "Number of entries" default(20)
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /reports/inventory/rotation [get]
func (h *ReportsHandler) GetInventoryRotation(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	reportFilter, ok := parseReportFilter(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	query := models.RotationQuery{
		StartDate: reportFilter.StartDate,
		EndDate:   reportFilter.EndDate,
		Filter:    c.Query("filter"),
		Limit:     limit,
	}
	rotation, err := h.reports.GetInventoryRotation(c.Request.Context(), tenantID.(string), query)
	respondReport(c, rotation, err)
}

// GetInventoryValuation returns the inventory valuation report
// @Summary Inventory valuation
// @Description Stock value totals per category with alert counts
// @Tags Reports
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /reports/inventory/valuation [get]
func (h *ReportsHandler) GetInventoryValuation(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	valuation, err := h.reports.GetInventoryValuation(c.Request.Context(), tenantID.(string))
	respondReport(c, valuation, err)
}

// GetSupplierPerformance returns the supplier performance report
// @Summary Supplier performance
// @Description Purchase volume and cadence per supplier
// @Tags Reports
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /reports/suppliers/performance [get]
func (h *ReportsHandler) GetSupplierPerformance(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	filter, ok := parseReportFilter(c)
	if !ok {
		return
	}
	performance, err := h.reports.GetSupplierPerformance(c.Request.Context(), tenantID.(string), filter)
	respondReport(c, performance, err)
}

// GetReplenishmentTimes returns the supplier replenishment times report
// @Summary Replenishment times
// @Description Inter-delivery interval statistics per supplier
// @Tags Reports
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /reports/suppliers/replenishment [get]
func (h *ReportsHandler) GetReplenishmentTimes(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	times, err := h.reports.GetReplenishmentTimes(c.Request.Context(), tenantID.(string))
	respondReport(c, times, err)
}

// GetExecutiveDashboard returns the composed executive dashboard
// @Summary Executive dashboard
// @Description Headline sales, top products, alerts and valuation in one view
// @Tags Reports
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /reports/dashboard [get]
func (h *ReportsHandler) GetExecutiveDashboard(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	filter, ok := parseReportFilter(c)
	if !ok {
		return
	}
	dashboard, err := h.reports.GetExecutiveDashboard(c.Request.Context(), tenantID.(string), filter)
	respondReport(c, dashboard, err)
}

// GetAlerts returns the stock alerts report
// @Summary Stock alerts
// @Description Critical and low stock alerts with overall criticality
// @Tags Reports
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /reports/alerts [get]
func (h *ReportsHandler) GetAlerts(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	alerts, err := h.reports.GetAlerts(c.Request.Context(), tenantID.(string))
	respondReport(c, alerts, err)
}
