package services

import (
	"context"
	"testing"
	"time"

	"analytics-service/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newReportsFixture() (*ReportsService, *MockSaleReader, *MockInventoryReader) {
	sales := new(MockSaleReader)
	inventory := new(MockInventoryReader)
	service := NewReportsService(sales, inventory, nil, testLogger())
	return service, sales, inventory
}

func buildVariant(productName, category string, price float64, stock int) models.ProductVariant {
	return models.ProductVariant{
		ID:    uuid.New(),
		Color: "Black",
		Size:  "M",
		Price: price,
		Stock: stock,
		Product: &models.Product{
			ID:       uuid.New(),
			Name:     productName,
			Category: category,
			IsActive: true,
		},
	}
}

func TestPctChange(t *testing.T) {
	assert.Equal(t, 100.0, pctChange(500, 0))
	assert.Equal(t, 0.0, pctChange(0, 0))
	assert.Equal(t, 50.0, pctChange(150, 100))
	assert.Equal(t, -25.0, pctChange(75, 100))
}

func TestVolatilityBand(t *testing.T) {
	assert.Equal(t, models.VolatilityNotComputable, volatilityBand([]float64{100}))
	assert.Equal(t, models.VolatilityVeryLow, volatilityBand([]float64{100, 100, 100}))
	assert.Equal(t, models.VolatilityVeryHigh, volatilityBand([]float64{10, 500, 5, 900}))
}

func TestConsistencyBand(t *testing.T) {
	assert.Equal(t, models.ConsistencyVeryConsistent, consistencyBand(0.05))
	assert.Equal(t, models.ConsistencyConsistent, consistencyBand(0.2))
	assert.Equal(t, models.ConsistencyVariable, consistencyBand(0.4))
	assert.Equal(t, models.ConsistencyInconsistent, consistencyBand(0.7))
}

func TestGetSalesSummary_TotalsAndComparison(t *testing.T) {
	service, sales, _ := newReportsFixture()

	clientA := uuid.New()
	clientB := uuid.New()
	now := time.Now()

	current := []models.Sale{
		buildSale(clientA, 100, now.AddDate(0, 0, -2),
			models.SaleLine{VariantID: uuid.New(), Quantity: 2, UnitPrice: 50}),
		buildSale(clientB, 200, now.AddDate(0, 0, -1),
			models.SaleLine{VariantID: uuid.New(), Quantity: 1, UnitPrice: 200}),
	}
	previous := []models.Sale{
		buildSale(clientA, 100, now.AddDate(0, 0, -40)),
	}

	sales.On("ListCompletedSalesBetween", mock.Anything, "tenant-1", mock.Anything, mock.Anything).
		Return(current, nil).Once()
	sales.On("ListCompletedSalesBetween", mock.Anything, "tenant-1", mock.Anything, mock.Anything).
		Return(previous, nil).Once()

	summary, err := service.GetSalesSummary(context.Background(), "tenant-1", models.ReportFilter{})

	require.NoError(t, err)
	assert.Equal(t, 300.0, summary.Totals.TotalRevenue)
	assert.Equal(t, 2, summary.Totals.Transactions)
	assert.Equal(t, 150.0, summary.Totals.AverageTicket)
	assert.Equal(t, 3, summary.Totals.UnitsSold)
	assert.Equal(t, 2, summary.Totals.UniqueClients)
	assert.Equal(t, 200.0, summary.PreviousPeriod.TotalRevenue.ChangePct)
	assert.Equal(t, 100.0, summary.PreviousPeriod.Transactions.ChangePct)
}

func TestGetTopProducts_DenseRanking(t *testing.T) {
	service, sales, _ := newReportsFixture()

	variantA := buildVariant("Shirt A", "Shirts", 50, 10)
	variantB := buildVariant("Shirt B", "Shirts", 100, 10)
	variantC := buildVariant("Shirt C", "Shirts", 25, 10)

	lines := []models.SaleLine{
		{VariantID: variantA.ID, Quantity: 2, UnitPrice: 50, Variant: &variantA},
		{VariantID: variantB.ID, Quantity: 1, UnitPrice: 100, Variant: &variantB},
		{VariantID: variantC.ID, Quantity: 2, UnitPrice: 25, Variant: &variantC},
	}

	sales.On("ListCompletedSaleLinesBetween", mock.Anything, "tenant-1", mock.Anything, mock.Anything).
		Return(lines, nil)

	products, err := service.GetTopProducts(context.Background(), "tenant-1", models.TopProductsQuery{})

	require.NoError(t, err)
	require.Len(t, products, 3)
	// A and B tie on revenue (100) and share rank 1; C gets rank 2
	assert.Equal(t, 100.0, products[0].Revenue)
	assert.Equal(t, 1, products[0].Rank)
	assert.Equal(t, 1, products[1].Rank)
	assert.Equal(t, 50.0, products[2].Revenue)
	assert.Equal(t, 2, products[2].Rank)
}

func TestGetTopProducts_InvalidQuery(t *testing.T) {
	service, sales, _ := newReportsFixture()

	_, err := service.GetTopProducts(context.Background(), "tenant-1", models.TopProductsQuery{Limit: 101})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = service.GetTopProducts(context.Background(), "tenant-1", models.TopProductsQuery{SortBy: "price"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	sales.AssertNotCalled(t, "ListCompletedSaleLinesBetween", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetCustomerPerformance_Classification(t *testing.T) {
	service, sales, _ := newReportsFixture()

	vip := uuid.New()
	occasional := uuid.New()
	now := time.Now()

	history := make([]models.Sale, 0)
	// VIP: 6 orders totalling over 1000
	for i := 0; i < 6; i++ {
		sale := buildSale(vip, 200, now.AddDate(0, 0, -300+i*50))
		sale.Client = &models.Client{ID: vip, FullName: "Big Spender"}
		history = append(history, sale)
	}
	// Occasional: 5 orders, high spend but 1000 boundary not crossed per order count rule
	for i := 0; i < 5; i++ {
		sale := buildSale(occasional, 200.2, now.AddDate(0, 0, -300+i*70))
		sale.Client = &models.Client{ID: occasional, FullName: "Boundary Case"}
		history = append(history, sale)
	}

	sales.On("ListCompletedSalesBetween", mock.Anything, "tenant-1", mock.Anything, mock.Anything).
		Return(history, nil)

	performances, err := service.GetCustomerPerformance(context.Background(), "tenant-1", models.ReportFilter{})

	require.NoError(t, err)
	require.Len(t, performances, 2)

	byName := map[string]models.CustomerPerformance{}
	for _, p := range performances {
		byName[p.ClientName] = p
	}
	assert.Equal(t, models.ClassificationVIP, byName["Big Spender"].Classification)
	// 5 orders and >1000 spend but not >5 orders, interval 70 days: occasional
	assert.Equal(t, models.ClassificationOccasional, byName["Boundary Case"].Classification)
}

func TestGetCustomerSegmentation_Empty(t *testing.T) {
	service, sales, _ := newReportsFixture()

	sales.On("ListCompletedSalesBetween", mock.Anything, "tenant-1", mock.Anything, mock.Anything).
		Return([]models.Sale{}, nil)

	segmentation, err := service.GetCustomerSegmentation(context.Background(), "tenant-1", models.ReportFilter{})

	require.NoError(t, err)
	assert.Zero(t, segmentation.TotalClients)
	assert.NotNil(t, segmentation.Recommendations)
	assert.Empty(t, segmentation.Recommendations)
}

func TestGetAdvancedTrends_RegressionAndProjection(t *testing.T) {
	service, sales, _ := newReportsFixture()

	start := time.Now().AddDate(0, 0, -4)
	end := time.Now()
	filter := models.ReportFilter{StartDate: &start, EndDate: &end}

	history := make([]models.Sale, 0, 5)
	for i := 0; i < 5; i++ {
		day := start.AddDate(0, 0, i)
		history = append(history, buildSale(uuid.New(), float64((i+1)*100), day))
	}

	sales.On("ListCompletedSalesBetween", mock.Anything, "tenant-1", mock.Anything, mock.Anything).
		Return(history, nil)

	trends, err := service.GetAdvancedTrends(context.Background(), "tenant-1", filter)

	require.NoError(t, err)
	require.Len(t, trends.Trends, 5)
	assert.Equal(t, models.TrendGrowing, trends.Analysis.Direction)
	assert.InDelta(t, 300.0, trends.Analysis.DailyAverage, 0.001)
	// slope 100, intercept 100: projection at x=12 is 1300
	assert.InDelta(t, 1300.0, trends.Analysis.NextWeekProjection, 0.001)
	assert.InDelta(t, 166.67, trends.Analysis.ChangePct, 0.01)
	assert.Equal(t, models.VolatilityHigh, trends.Analysis.Volatility)
	assert.Equal(t, 2, trends.Analysis.DaysAboveAverage)
	assert.Equal(t, 2, trends.Analysis.DaysBelowAverage)
}

func TestGetLowStock_SentinelAndDates(t *testing.T) {
	service, sales, inventory := newReportsFixture()

	sold := buildVariant("Moving Shirt", "Shirts", 50, 3)
	stale := buildVariant("Stale Shirt", "Shirts", 50, 1)
	lastSale := time.Now().AddDate(0, 0, -12)

	inventory.On("ListLowStockVariants", mock.Anything, "tenant-1", 10, "").
		Return([]models.ProductVariant{stale, sold}, nil)
	sales.On("LastSaleDates", mock.Anything, "tenant-1").
		Return(map[string]time.Time{sold.ID.String(): lastSale}, nil)
	inventory.On("LastReceiptDates", mock.Anything, "tenant-1").
		Return(map[string]time.Time{}, nil)

	items, err := service.GetLowStock(context.Background(), "tenant-1", models.LowStockQuery{})

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, NoSaleSentinelDays, items[0].DaysWithoutSale)
	assert.Nil(t, items[0].LastSale)
	assert.Equal(t, 12, items[1].DaysWithoutSale)
	require.NotNil(t, items[1].LastSale)
	assert.Equal(t, 10, items[1].MinimumStock)
}

func TestGetInventoryRotation_Classification(t *testing.T) {
	service, sales, inventory := newReportsFixture()

	fast := buildVariant("Fast Shirt", "Shirts", 50, 10)
	medium := buildVariant("Medium Shirt", "Shirts", 50, 10)
	slow := buildVariant("Slow Shirt", "Shirts", 50, 10)

	start := time.Now().AddDate(0, 0, -365)
	end := time.Now()

	inventory.On("ListActiveVariants", mock.Anything, "tenant-1").
		Return([]models.ProductVariant{fast, medium, slow}, nil)
	sales.On("ListCompletedSaleLinesBetween", mock.Anything, "tenant-1", mock.Anything, mock.Anything).
		Return([]models.SaleLine{
			{VariantID: fast.ID, Quantity: 120},
			{VariantID: medium.ID, Quantity: 40},
			{VariantID: slow.ID, Quantity: 10},
		}, nil)

	items, err := service.GetInventoryRotation(context.Background(), "tenant-1", models.RotationQuery{
		StartDate: &start,
		EndDate:   &end,
	})

	require.NoError(t, err)
	require.Len(t, items, 3)
	// Sorted by rotation descending
	assert.Equal(t, models.RotationFast, items[0].Classification)
	assert.InDelta(t, 12.0, items[0].AnnualRotation, 0.1)
	assert.Equal(t, 30, items[0].DaysOfInventory)
	assert.Equal(t, models.RotationMedium, items[1].Classification)
	assert.Equal(t, models.RotationSlow, items[2].Classification)
}

func TestGetInventoryRotation_FilterValidation(t *testing.T) {
	service, _, inventory := newReportsFixture()

	_, err := service.GetInventoryRotation(context.Background(), "tenant-1", models.RotationQuery{Filter: "rapid"})

	assert.ErrorIs(t, err, ErrInvalidRequest)
	inventory.AssertNotCalled(t, "ListActiveVariants", mock.Anything, mock.Anything)
}

func TestGetInventoryValuation_TotalsAndAlerts(t *testing.T) {
	service, sales, inventory := newReportsFixture()

	low := buildVariant("Low Shirt", "Shirts", 50, 5)
	overstocked := buildVariant("Bulk Pants", "Pants", 20, 150)

	inventory.On("ListActiveVariants", mock.Anything, "tenant-1").
		Return([]models.ProductVariant{low, overstocked}, nil)
	sales.On("LastSaleDates", mock.Anything, "tenant-1").
		Return(map[string]time.Time{low.ID.String(): time.Now().AddDate(0, 0, -5)}, nil)

	valuation, err := service.GetInventoryValuation(context.Background(), "tenant-1")

	require.NoError(t, err)
	assert.Equal(t, 3250.0, valuation.Summary.TotalValue)
	assert.Equal(t, 155, valuation.Summary.TotalUnits)
	assert.Equal(t, 2, valuation.Summary.VariantCount)
	assert.Equal(t, 1, valuation.Alerts.LowStock)
	assert.Equal(t, 1, valuation.Alerts.Overstocked)
	// The overstocked variant never sold
	assert.Equal(t, 1, valuation.Alerts.NoMovement)
	require.Len(t, valuation.ByCategory, 2)
	assert.Equal(t, "Pants", valuation.ByCategory[0].Category)
}

func TestGetSupplierPerformance_Rating(t *testing.T) {
	service, _, inventory := newReportsFixture()

	supplier := models.Supplier{ID: uuid.New(), Name: "Prime Textiles", IsActive: true}
	quiet := models.Supplier{ID: uuid.New(), Name: "Quiet Supplier", IsActive: true}

	receipts := make([]models.InventoryReceipt, 0, 6)
	for i := 0; i < 6; i++ {
		receipts = append(receipts, models.InventoryReceipt{
			ID:          uuid.New(),
			SupplierID:  supplier.ID,
			TotalAmount: 1000,
			ReceivedAt:  time.Now().AddDate(0, 0, -300+i*30),
			Lines: []models.ReceiptLine{
				{VariantID: uuid.New(), Quantity: 10, UnitCost: 100},
			},
		})
	}

	inventory.On("ListActiveSuppliers", mock.Anything, "tenant-1").
		Return([]models.Supplier{supplier, quiet}, nil)
	inventory.On("ListReceiptsBySupplier", mock.Anything, "tenant-1", supplier.ID.String(), mock.Anything, mock.Anything).
		Return(receipts, nil)
	inventory.On("ListReceiptsBySupplier", mock.Anything, "tenant-1", quiet.ID.String(), mock.Anything, mock.Anything).
		Return([]models.InventoryReceipt{}, nil)

	performances, err := service.GetSupplierPerformance(context.Background(), "tenant-1", models.ReportFilter{})

	require.NoError(t, err)
	// Suppliers without receipts in the window are skipped
	require.Len(t, performances, 1)
	perf := performances[0]
	assert.Equal(t, "Prime Textiles", perf.SupplierName)
	assert.Equal(t, models.SupplierRatingExcellent, perf.Rating)
	assert.Equal(t, 6000.0, perf.TotalPurchases)
	assert.Equal(t, 30, perf.OrderIntervalDays)
	assert.Equal(t, "Not available", perf.Contact)
}

func TestGetReplenishmentTimes_Consistency(t *testing.T) {
	service, _, inventory := newReportsFixture()

	steady := models.Supplier{ID: uuid.New(), Name: "Steady Supplier", IsActive: true}
	single := models.Supplier{ID: uuid.New(), Name: "One Off", IsActive: true}

	base := time.Now().AddDate(0, 0, -30)
	receipts := []models.InventoryReceipt{
		{ID: uuid.New(), SupplierID: steady.ID, ReceivedAt: base},
		{ID: uuid.New(), SupplierID: steady.ID, ReceivedAt: base.AddDate(0, 0, 10)},
		{ID: uuid.New(), SupplierID: steady.ID, ReceivedAt: base.AddDate(0, 0, 20)},
	}

	inventory.On("ListActiveSuppliers", mock.Anything, "tenant-1").
		Return([]models.Supplier{steady, single}, nil)
	inventory.On("ListReceiptsBySupplier", mock.Anything, "tenant-1", steady.ID.String(), mock.Anything, mock.Anything).
		Return(receipts, nil)
	inventory.On("ListReceiptsBySupplier", mock.Anything, "tenant-1", single.ID.String(), mock.Anything, mock.Anything).
		Return([]models.InventoryReceipt{
			{ID: uuid.New(), SupplierID: single.ID, ReceivedAt: base},
		}, nil)

	times, err := service.GetReplenishmentTimes(context.Background(), "tenant-1")

	require.NoError(t, err)
	require.Len(t, times, 1)
	assert.Equal(t, 10, times[0].AverageDays)
	assert.Equal(t, 3, times[0].OrdersProcessed)
	assert.Len(t, times[0].Deliveries, 2)
	assert.Equal(t, models.ConsistencyVeryConsistent, times[0].Consistency)
}

func TestGetAlerts_Criticality(t *testing.T) {
	service, sales, inventory := newReportsFixture()

	critical := buildVariant("Critical Shirt", "Shirts", 50, 2)
	low := buildVariant("Low Shirt", "Shirts", 50, 5)

	inventory.On("ListLowStockVariants", mock.Anything, "tenant-1", 5, "").
		Return([]models.ProductVariant{critical, low}, nil)
	inventory.On("LastReceiptDates", mock.Anything, "tenant-1").
		Return(map[string]time.Time{}, nil)
	inventory.On("ListActiveVariants", mock.Anything, "tenant-1").
		Return([]models.ProductVariant{critical, low}, nil)
	sales.On("LastSaleDates", mock.Anything, "tenant-1").
		Return(map[string]time.Time{}, nil)

	alerts, err := service.GetAlerts(context.Background(), "tenant-1")

	require.NoError(t, err)
	require.Len(t, alerts.CriticalStock, 1)
	require.Len(t, alerts.LowStock, 1)
	assert.Equal(t, "high", alerts.Summary.Criticality)
	assert.True(t, alerts.LowInventoryValue)
	// Neither variant has sold in the last 90 days
	assert.Equal(t, 2, alerts.NoMovement)
	assert.Equal(t, 4, alerts.Summary.TotalAlerts)
}

func TestGetExecutiveDashboard_SubReportFailureFailsDashboard(t *testing.T) {
	service, sales, inventory := newReportsFixture()

	sales.On("ListCompletedSalesBetween", mock.Anything, "tenant-1", mock.Anything, mock.Anything).
		Return([]models.Sale{}, nil)
	sales.On("ListCompletedSaleLinesBetween", mock.Anything, "tenant-1", mock.Anything, mock.Anything).
		Return([]models.SaleLine{}, nil)
	sales.On("LastSaleDates", mock.Anything, "tenant-1").
		Return(map[string]time.Time{}, nil)
	inventory.On("ListLowStockVariants", mock.Anything, "tenant-1", 10, "").
		Return([]models.ProductVariant{}, nil)
	inventory.On("LastReceiptDates", mock.Anything, "tenant-1").
		Return(map[string]time.Time{}, nil)
	inventory.On("ListActiveVariants", mock.Anything, "tenant-1").
		Return(nil, assert.AnError)

	dashboard, err := service.GetExecutiveDashboard(context.Background(), "tenant-1", models.ReportFilter{})

	require.Error(t, err)
	assert.Nil(t, dashboard)
}

func TestGetInventoryMovements_MergedNewestFirst(t *testing.T) {
	service, sales, inventory := newReportsFixture()

	variant := buildVariant("Merged Shirt", "Shirts", 50, 10)
	receivedBy := "warehouse-staff"
	saleDate := time.Now().AddDate(0, 0, -1)
	receiptDate := time.Now().AddDate(0, 0, -3)

	inventory.On("ListReceiptsBetween", mock.Anything, "tenant-1", mock.Anything, mock.Anything).
		Return([]models.InventoryReceipt{
			{
				ID:         uuid.New(),
				ReceivedBy: &receivedBy,
				ReceivedAt: receiptDate,
				Supplier:   &models.Supplier{Name: "Prime Textiles"},
				Lines: []models.ReceiptLine{
					{VariantID: variant.ID, Quantity: 20, UnitCost: 30, Variant: &variant},
				},
			},
		}, nil)
	sales.On("ListCompletedSaleLinesBetween", mock.Anything, "tenant-1", mock.Anything, mock.Anything).
		Return([]models.SaleLine{
			{
				VariantID: variant.ID,
				Quantity:  2,
				UnitPrice: 50,
				Variant:   &variant,
				Sale:      &models.Sale{SaleDate: saleDate},
			},
		}, nil)

	movements, err := service.GetInventoryMovements(context.Background(), "tenant-1", models.ReportFilter{})

	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, models.MovementOutbound, movements[0].Type)
	assert.Equal(t, "Self-service", movements[0].User)
	assert.Equal(t, models.MovementInbound, movements[1].Type)
	assert.Equal(t, "Prime Textiles", movements[1].Supplier)
	assert.Equal(t, "warehouse-staff", movements[1].User)
}
