package handlers

import (
	"fmt"
	"net/http"

	"analytics-service/internal/models"
	"analytics-service/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler produces downloadable report workbooks
type ExportHandler struct {
	reports *services.ReportsService
}

func NewExportHandler(reports *services.ReportsService) *ExportHandler {
	return &ExportHandler{reports: reports}
}

// ExportSalesReport generates an XLSX workbook with the sales summary and top products
// @Summary Export sales report
// @Description Download the sales summary and top products as an XLSX workbook
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param startDate query string false "Window start (yyyy-mm-dd)"
// @Param endDate query string false "Window end (yyyy-mm-dd)"
// @Success 200 {file} binary
// @Failure 400 {object} models.ErrorResponse
// @Router /reports/export/sales [get]
func (h *ExportHandler) ExportSalesReport(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	filter, ok := parseReportFilter(c)
	if !ok {
		return
	}

	summary, err := h.reports.GetSalesSummary(c.Request.Context(), tenantID.(string), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	topProducts, err := h.reports.GetTopProducts(c.Request.Context(), tenantID.(string), models.TopProductsQuery{
		Limit:     100,
		SortBy:    "revenue",
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	// Summary sheet
	summarySheet := "Summary"
	f.SetSheetName("Sheet1", summarySheet)
	f.SetCellValue(summarySheet, "A1", "Sales Summary")
	f.SetCellValue(summarySheet, "A2", fmt.Sprintf("Period: %s to %s", summary.Period.StartDate, summary.Period.EndDate))

	summaryRows := []struct {
		label string
		value interface{}
	}{
		{"Total revenue", summary.Totals.TotalRevenue},
		{"Transactions", summary.Totals.Transactions},
		{"Average ticket", summary.Totals.AverageTicket},
		{"Units sold", summary.Totals.UnitsSold},
		{"Unique clients", summary.Totals.UniqueClients},
		{"Revenue change vs previous period (%)", summary.PreviousPeriod.TotalRevenue.ChangePct},
		{"Transactions change vs previous period (%)", summary.PreviousPeriod.Transactions.ChangePct},
	}
	for i, row := range summaryRows {
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+4), row.label)
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+4), row.value)
	}
	f.SetColWidth(summarySheet, "A", "A", 40)

	// Top products sheet
	productsSheet := "Top Products"
	f.NewSheet(productsSheet)
	headers := []string{"Rank", "Product", "Size", "Color", "Category", "Units Sold", "Revenue", "Average Price", "Transactions"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(productsSheet, cell, header)
		f.SetCellStyle(productsSheet, cell, cell, headerStyle)
	}
	for rowIdx, product := range topProducts {
		values := []interface{}{
			product.Rank,
			product.ProductName,
			product.Size,
			product.Color,
			product.Category,
			product.UnitsSold,
			product.Revenue,
			product.AveragePrice,
			product.Transactions,
		}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(productsSheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "EXPORT_FAILED",
				Message: "Failed to generate report workbook",
			},
		})
		return
	}

	filename := fmt.Sprintf("sales_report_%s_%s.xlsx", summary.Period.StartDate, summary.Period.EndDate)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
