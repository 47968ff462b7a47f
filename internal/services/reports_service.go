package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"analytics-service/internal/events"
	"analytics-service/internal/models"
	"analytics-service/internal/repository"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultReportWindowDays is the default report window
	DefaultReportWindowDays = 30
	// DefaultLongReportWindowDays is used for customer/rotation/supplier reports
	DefaultLongReportWindowDays = 365
	// DefaultLowStockThreshold flags variants at or below this stock level
	DefaultLowStockThreshold = 10
	// DefaultTopProductsLimit caps the top products report by default
	DefaultTopProductsLimit = 10
	// DefaultRotationLimit caps the rotation report by default
	DefaultRotationLimit = 20
	// NoSaleSentinelDays marks variants that never sold
	NoSaleSentinelDays = 999
)

// ReportsService computes the tenant-scoped analytics reports. Every report is
// recomputed from the gateways per request; nothing is cached or persisted.
type ReportsService struct {
	sales     repository.SaleReader
	inventory repository.InventoryReader
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewReportsService creates a ReportsService. The publisher may be nil; stock
// alert events are then skipped.
func NewReportsService(sales repository.SaleReader, inventory repository.InventoryReader, publisher *events.Publisher, logger *logrus.Logger) *ReportsService {
	return &ReportsService{
		sales:     sales,
		inventory: inventory,
		publisher: publisher,
		logger:    logger.WithField("component", "reports_service"),
	}
}

// resolveWindow applies the default lookback and snaps the bounds to whole days
func resolveWindow(filter models.ReportFilter, defaultDays int) (time.Time, time.Time) {
	to := time.Now()
	if filter.EndDate != nil {
		to = *filter.EndDate
	}
	from := time.Now().AddDate(0, 0, -defaultDays)
	if filter.StartDate != nil {
		from = *filter.StartDate
	}
	return startOfDay(from), endOfDay(to)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// pctChange computes a percentage delta; 100 when coming from zero to a
// positive value, 0 when both are zero
func pctChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return round2((current - previous) / previous * 100)
}

func stddev(values []float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

// volatilityBand maps a coefficient of variation onto the five volatility bands
func volatilityBand(values []float64) string {
	if len(values) <= 1 {
		return models.VolatilityNotComputable
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	cv := 0.0
	if mean > 0 {
		cv = stddev(values) / mean
	}
	switch {
	case cv < 0.1:
		return models.VolatilityVeryLow
	case cv < 0.2:
		return models.VolatilityLow
	case cv < 0.4:
		return models.VolatilityMedium
	case cv < 0.6:
		return models.VolatilityHigh
	default:
		return models.VolatilityVeryHigh
	}
}

// consistencyBand maps a coefficient of variation onto the delivery
// consistency bands
func consistencyBand(cv float64) string {
	switch {
	case cv < 0.1:
		return models.ConsistencyVeryConsistent
	case cv < 0.3:
		return models.ConsistencyConsistent
	case cv < 0.5:
		return models.ConsistencyVariable
	default:
		return models.ConsistencyInconsistent
	}
}

// GetSalesSummary totals the window's completed sales and compares them
// against the immediately preceding period of equal length
func (s *ReportsService) GetSalesSummary(ctx context.Context, tenantID string, filter models.ReportFilter) (*models.SalesSummary, error) {
	from, to := resolveWindow(filter, DefaultReportWindowDays)

	sales, err := s.sales.ListCompletedSalesBetween(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	var totalRevenue float64
	unitsSold := 0
	clients := make(map[string]bool)
	for _, sale := range sales {
		totalRevenue += sale.Total
		unitsSold += sale.ItemCount()
		clients[sale.ClientID.String()] = true
	}

	transactions := len(sales)
	averageTicket := 0.0
	if transactions > 0 {
		averageTicket = totalRevenue / float64(transactions)
	}

	periodDays := daysBetween(from, to)
	prevSales, err := s.sales.ListCompletedSalesBetween(ctx, tenantID,
		from.AddDate(0, 0, -periodDays), to.AddDate(0, 0, -periodDays))
	if err != nil {
		return nil, err
	}

	var prevRevenue float64
	for _, sale := range prevSales {
		prevRevenue += sale.Total
	}
	prevTransactions := len(prevSales)
	prevTicket := 0.0
	if prevTransactions > 0 {
		prevTicket = prevRevenue / float64(prevTransactions)
	}

	return &models.SalesSummary{
		Period: models.ReportPeriod{
			StartDate: from.Format("2006-01-02"),
			EndDate:   to.Format("2006-01-02"),
		},
		Totals: models.SalesTotals{
			TotalRevenue:  round2(totalRevenue),
			Transactions:  transactions,
			AverageTicket: round2(averageTicket),
			UnitsSold:     unitsSold,
			UniqueClients: len(clients),
		},
		PreviousPeriod: models.PreviousPeriodComparison{
			TotalRevenue:  models.ComparisonMetric{Value: prevRevenue, ChangePct: pctChange(totalRevenue, prevRevenue)},
			Transactions:  models.ComparisonMetric{Value: float64(prevTransactions), ChangePct: pctChange(float64(transactions), float64(prevTransactions))},
			AverageTicket: models.ComparisonMetric{Value: prevTicket, ChangePct: pctChange(averageTicket, prevTicket)},
		},
	}, nil
}

// GetTopProducts ranks variants by units sold or revenue over the window,
// assigning dense ranks after sort
func (s *ReportsService) GetTopProducts(ctx context.Context, tenantID string, query models.TopProductsQuery) ([]models.TopProduct, error) {
	if query.Limit == 0 {
		query.Limit = DefaultTopProductsLimit
	}
	if query.Limit < 1 || query.Limit > 100 {
		return nil, fmt.Errorf("%w: limit must be between 1 and 100", ErrInvalidRequest)
	}
	if query.SortBy == "" {
		query.SortBy = "revenue"
	}
	if query.SortBy != "quantity" && query.SortBy != "revenue" {
		return nil, fmt.Errorf("%w: sortBy must be quantity or revenue", ErrInvalidRequest)
	}

	from, to := resolveWindow(models.ReportFilter{StartDate: query.StartDate, EndDate: query.EndDate}, DefaultReportWindowDays)
	lines, err := s.sales.ListCompletedSaleLinesBetween(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	type aggregate struct {
		variant      *models.ProductVariant
		units        int
		revenue      float64
		transactions int
	}
	byVariant := make(map[string]*aggregate)
	var order []string
	for i := range lines {
		line := &lines[i]
		if line.Variant == nil {
			continue
		}
		key := line.VariantID.String()
		agg, ok := byVariant[key]
		if !ok {
			agg = &aggregate{variant: line.Variant}
			byVariant[key] = agg
			order = append(order, key)
		}
		agg.units += line.Quantity
		agg.revenue += float64(line.Quantity) * line.UnitPrice
		agg.transactions++
	}

	products := make([]models.TopProduct, 0, len(order))
	for _, key := range order {
		agg := byVariant[key]
		avgPrice := 0.0
		if agg.units > 0 {
			avgPrice = agg.revenue / float64(agg.units)
		}
		entry := models.TopProduct{
			VariantID:    key,
			Size:         agg.variant.Size,
			Color:        agg.variant.Color,
			UnitsSold:    agg.units,
			Revenue:      round2(agg.revenue),
			AveragePrice: round2(avgPrice),
			Transactions: agg.transactions,
		}
		if agg.variant.Product != nil {
			entry.ProductName = agg.variant.Product.Name
			entry.Category = agg.variant.Product.Category
		}
		products = append(products, entry)
	}

	byQuantity := query.SortBy == "quantity"
	sort.SliceStable(products, func(i, j int) bool {
		if byQuantity {
			return products[i].UnitsSold > products[j].UnitsSold
		}
		return products[i].Revenue > products[j].Revenue
	})

	// Dense rank: equal sort keys share a rank
	rank := 0
	for i := range products {
		if i == 0 || sortKey(&products[i], byQuantity) != sortKey(&products[i-1], byQuantity) {
			rank++
		}
		products[i].Rank = rank
	}

	if len(products) > query.Limit {
		products = products[:query.Limit]
	}
	return products, nil
}

func sortKey(p *models.TopProduct, byQuantity bool) float64 {
	if byQuantity {
		return float64(p.UnitsSold)
	}
	return p.Revenue
}

// GetCustomerPerformance aggregates spend, cadence and classification per client
func (s *ReportsService) GetCustomerPerformance(ctx context.Context, tenantID string, filter models.ReportFilter) ([]models.CustomerPerformance, error) {
	from, to := resolveWindow(filter, DefaultLongReportWindowDays)
	sales, err := s.sales.ListCompletedSalesBetween(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	type aggregate struct {
		client   *models.Client
		total    float64
		dates    []time.Time
		variants map[string]bool
	}
	byClient := make(map[string]*aggregate)
	var order []string
	for i := range sales {
		sale := &sales[i]
		key := sale.ClientID.String()
		agg, ok := byClient[key]
		if !ok {
			agg = &aggregate{client: sale.Client, variants: make(map[string]bool)}
			byClient[key] = agg
			order = append(order, key)
		}
		agg.total += sale.Total
		agg.dates = append(agg.dates, sale.SaleDate)
		for _, line := range sale.Lines {
			agg.variants[line.VariantID.String()] = true
		}
	}

	performances := make([]models.CustomerPerformance, 0, len(order))
	for _, key := range order {
		agg := byClient[key]
		orders := len(agg.dates)

		interval := 0.0
		if orders > 1 {
			sort.Slice(agg.dates, func(i, j int) bool { return agg.dates[i].Before(agg.dates[j]) })
			totalDays := 0
			for i := 1; i < orders; i++ {
				totalDays += daysBetween(agg.dates[i-1], agg.dates[i])
			}
			interval = float64(totalDays) / float64(orders-1)
		}

		classification := models.ClassificationNew
		switch {
		case agg.total > 1000 && orders > 5:
			classification = models.ClassificationVIP
		case orders > 3 && interval < 30:
			classification = models.ClassificationFrequent
		case orders > 1:
			classification = models.ClassificationOccasional
		}

		entry := models.CustomerPerformance{
			ClientID:             key,
			TotalSpend:           round2(agg.total),
			PurchaseIntervalDays: int(math.Round(interval)),
			AverageOrderValue:    round2(agg.total / float64(orders)),
			LastPurchase:         agg.dates[orders-1],
			Classification:       classification,
			UniqueVariants:       len(agg.variants),
		}
		if agg.client != nil {
			entry.ClientName = agg.client.FullName
			entry.Email = agg.client.Email
		}
		performances = append(performances, entry)
	}

	sort.SliceStable(performances, func(i, j int) bool {
		return performances[i].TotalSpend > performances[j].TotalSpend
	})
	return performances, nil
}

// GetCustomerSegmentation groups the customer performance entries into the
// four behavior segments with revenue contributions and advisory notes
func (s *ReportsService) GetCustomerSegmentation(ctx context.Context, tenantID string, filter models.ReportFilter) (*models.CustomerSegmentation, error) {
	clients, err := s.GetCustomerPerformance(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	segmentation := &models.CustomerSegmentation{
		TotalClients:    len(clients),
		Recommendations: []string{},
	}
	if len(clients) == 0 {
		return segmentation, nil
	}

	var totalRevenue float64
	counts := make(map[string]int)
	revenues := make(map[string]float64)
	for _, c := range clients {
		totalRevenue += c.TotalSpend
		counts[c.Classification]++
		revenues[c.Classification] += c.TotalSpend
	}
	segmentation.TotalRevenue = round2(totalRevenue)

	segment := func(classification string) models.SegmentStats {
		stats := models.SegmentStats{
			Count:        counts[classification],
			TotalRevenue: round2(revenues[classification]),
		}
		stats.Percentage = int(math.Round(float64(stats.Count) / float64(len(clients)) * 100))
		if totalRevenue > 0 {
			stats.ContributionPct = int(math.Round(revenues[classification] / totalRevenue * 100))
		}
		return stats
	}

	segmentation.Segments = models.CustomerSegments{
		VIP:        segment(models.ClassificationVIP),
		Frequent:   segment(models.ClassificationFrequent),
		Occasional: segment(models.ClassificationOccasional),
		New:        segment(models.ClassificationNew),
	}

	total := float64(len(clients))
	if float64(counts[models.ClassificationVIP])/total*100 < 5 {
		segmentation.Recommendations = append(segmentation.Recommendations,
			"Launch a loyalty program to convert frequent customers into VIPs")
	}
	if float64(counts[models.ClassificationNew])/total*100 > 50 {
		segmentation.Recommendations = append(segmentation.Recommendations,
			"High share of new customers: focus on retention and post-sale follow-up")
	}
	if float64(counts[models.ClassificationFrequent])/total*100 > 40 {
		segmentation.Recommendations = append(segmentation.Recommendations,
			"Strong base of frequent customers: opportunity for upselling and cross-selling")
	}
	if counts[models.ClassificationOccasional] > counts[models.ClassificationFrequent] {
		segmentation.Recommendations = append(segmentation.Recommendations,
			"Run reactivation campaigns to convert occasional customers into frequent ones")
	}

	return segmentation, nil
}

// GetSalesTrends builds one zero-filled data point per calendar day in the window
func (s *ReportsService) GetSalesTrends(ctx context.Context, tenantID string, filter models.ReportFilter) ([]models.SalesTrendPoint, error) {
	from, to := resolveWindow(filter, DefaultReportWindowDays)
	sales, err := s.sales.ListCompletedSalesBetween(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	type dayTotals struct {
		revenue      float64
		transactions int
	}
	byDay := make(map[string]*dayTotals)
	var days []time.Time
	for day := startOfDay(from); !day.After(to); day = day.AddDate(0, 0, 1) {
		byDay[day.Format("2006-01-02")] = &dayTotals{}
		days = append(days, day)
	}

	for _, sale := range sales {
		if totals, ok := byDay[sale.SaleDate.Format("2006-01-02")]; ok {
			totals.revenue += sale.Total
			totals.transactions++
		}
	}

	points := make([]models.SalesTrendPoint, 0, len(days))
	for _, day := range days {
		totals := byDay[day.Format("2006-01-02")]
		ticket := 0.0
		if totals.transactions > 0 {
			ticket = round2(totals.revenue / float64(totals.transactions))
		}
		points = append(points, models.SalesTrendPoint{
			Date:          day.Format("2006-01-02"),
			Revenue:       round2(totals.revenue),
			Transactions:  totals.transactions,
			AverageTicket: ticket,
			Weekday:       day.Weekday().String(),
			Month:         day.Month().String(),
			Year:          day.Year(),
		})
	}
	return points, nil
}

// GetAdvancedTrends fits an OLS line over the daily revenue series and reports
// direction, volatility and a 7-day-ahead projection
func (s *ReportsService) GetAdvancedTrends(ctx context.Context, tenantID string, filter models.ReportFilter) (*models.AdvancedTrends, error) {
	from, to := resolveWindow(filter, DefaultReportWindowDays)
	trends, err := s.GetSalesTrends(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	values := make([]float64, 0, len(trends))
	var sum float64
	for _, t := range trends {
		values = append(values, t.Revenue)
		sum += t.Revenue
	}
	n := float64(len(values))
	mean := 0.0
	if n > 0 {
		mean = sum / n
	}

	var sumX, sumY, sumXY, sumX2 float64
	for x, y := range values {
		fx := float64(x)
		sumX += fx
		sumY += y
		sumXY += fx * y
		sumX2 += fx * fx
	}

	slope := 0.0
	intercept := 0.0
	if denom := n*sumX2 - sumX*sumX; denom != 0 {
		slope = (n*sumXY - sumX*sumY) / denom
		intercept = (sumY - slope*sumX) / n
	}

	direction := models.TrendStable
	if slope > 0 {
		direction = models.TrendGrowing
	} else if slope < 0 {
		direction = models.TrendDeclining
	}

	changePct := 0.0
	if mean > 0 {
		changePct = round2(slope * n / mean * 100)
	}

	above, below := 0, 0
	for _, v := range values {
		if v > mean*1.2 {
			above++
		}
		if v < mean*0.8 {
			below++
		}
	}

	return &models.AdvancedTrends{
		Period: models.ReportPeriod{
			StartDate: from.Format("2006-01-02"),
			EndDate:   to.Format("2006-01-02"),
		},
		Trends: trends,
		Analysis: models.TrendAnalysis{
			DailyAverage:       round2(mean),
			Direction:          direction,
			ChangePct:          changePct,
			NextWeekProjection: round2(intercept + slope*(n+7)),
			Volatility:         volatilityBand(values),
			DaysAboveAverage:   above,
			DaysBelowAverage:   below,
		},
	}, nil
}

// GetLowStock lists variants at or below the threshold with their last sale
// and last receipt dates, sorted by stock ascending
func (s *ReportsService) GetLowStock(ctx context.Context, tenantID string, query models.LowStockQuery) ([]models.LowStockItem, error) {
	if query.Threshold == 0 {
		query.Threshold = DefaultLowStockThreshold
	}
	if query.Threshold < 0 {
		return nil, fmt.Errorf("%w: threshold must not be negative", ErrInvalidRequest)
	}

	variants, err := s.inventory.ListLowStockVariants(ctx, tenantID, query.Threshold, query.CategoryID)
	if err != nil {
		return nil, err
	}

	lastSales, err := s.sales.LastSaleDates(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	lastReceipts, err := s.inventory.LastReceiptDates(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	items := make([]models.LowStockItem, 0, len(variants))
	for _, v := range variants {
		item := models.LowStockItem{
			VariantID:       v.ID.String(),
			Size:            v.Size,
			Color:           v.Color,
			CurrentStock:    v.Stock,
			MinimumStock:    query.Threshold,
			DaysWithoutSale: NoSaleSentinelDays,
		}
		if v.Product != nil {
			item.ProductName = v.Product.Name
			item.Category = v.Product.Category
		}
		if lastSale, ok := lastSales[item.VariantID]; ok {
			sale := lastSale
			item.LastSale = &sale
			item.DaysWithoutSale = daysBetween(lastSale, now)
		}
		if lastReceipt, ok := lastReceipts[item.VariantID]; ok {
			receipt := lastReceipt
			item.LastReceipt = &receipt
		}
		items = append(items, item)
	}
	return items, nil
}

// GetInventoryMovements merges supplier receipts (inbound) and completed sale
// lines (outbound) into one stream, newest first
func (s *ReportsService) GetInventoryMovements(ctx context.Context, tenantID string, filter models.ReportFilter) ([]models.InventoryMovement, error) {
	from, to := resolveWindow(filter, DefaultReportWindowDays)

	receipts, err := s.inventory.ListReceiptsBetween(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	lines, err := s.sales.ListCompletedSaleLinesBetween(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	movements := make([]models.InventoryMovement, 0, len(receipts)+len(lines))
	for _, receipt := range receipts {
		for _, line := range receipt.Lines {
			movement := models.InventoryMovement{
				Date:      receipt.ReceivedAt,
				Type:      models.MovementInbound,
				Quantity:  line.Quantity,
				Reason:    "Supplier purchase",
				UnitPrice: line.UnitCost,
			}
			if receipt.ReceivedBy != nil {
				movement.User = *receipt.ReceivedBy
			}
			if receipt.Supplier != nil {
				movement.Supplier = receipt.Supplier.Name
			}
			if line.Variant != nil {
				movement.Size = line.Variant.Size
				movement.Color = line.Variant.Color
				if line.Variant.Product != nil {
					movement.ProductName = line.Variant.Product.Name
				}
			}
			movements = append(movements, movement)
		}
	}

	for _, line := range lines {
		movement := models.InventoryMovement{
			Type:      models.MovementOutbound,
			Quantity:  line.Quantity,
			Reason:    "Customer sale",
			User:      "Self-service",
			UnitPrice: line.UnitPrice,
		}
		if line.Sale != nil {
			movement.Date = line.Sale.SaleDate
			if line.Sale.SoldBy != nil {
				movement.User = *line.Sale.SoldBy
			}
		}
		if line.Variant != nil {
			movement.Size = line.Variant.Size
			movement.Color = line.Variant.Color
			if line.Variant.Product != nil {
				movement.ProductName = line.Variant.Product.Name
			}
		}
		movements = append(movements, movement)
	}

	sort.SliceStable(movements, func(i, j int) bool {
		return movements[i].Date.After(movements[j].Date)
	})
	return movements, nil
}

// GetInventoryRotation computes the annualized rotation per variant and
// classifies it into the fast/medium/slow bands
func (s *ReportsService) GetInventoryRotation(ctx context.Context, tenantID string, query models.RotationQuery) ([]models.RotationItem, error) {
	if query.Limit == 0 {
		query.Limit = DefaultRotationLimit
	}
	if query.Limit < 1 || query.Limit > 100 {
		return nil, fmt.Errorf("%w: limit must be between 1 and 100", ErrInvalidRequest)
	}
	if query.Filter == "" {
		query.Filter = "all"
	}
	if query.Filter != "fast" && query.Filter != "slow" && query.Filter != "all" {
		return nil, fmt.Errorf("%w: filter must be fast, slow or all", ErrInvalidRequest)
	}

	from, to := resolveWindow(models.ReportFilter{StartDate: query.StartDate, EndDate: query.EndDate}, DefaultLongReportWindowDays)
	windowDays := daysBetween(from, to)
	if windowDays < 1 {
		windowDays = 1
	}

	variants, err := s.inventory.ListActiveVariants(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	lines, err := s.sales.ListCompletedSaleLinesBetween(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	unitsSold := make(map[string]int)
	for _, line := range lines {
		unitsSold[line.VariantID.String()] += line.Quantity
	}

	items := make([]models.RotationItem, 0, len(variants))
	for _, v := range variants {
		key := v.ID.String()
		sold := unitsSold[key]

		rotation := 0.0
		if v.Stock > 0 {
			rotation = float64(sold) / float64(v.Stock) * (365 / float64(windowDays))
		}

		daysOfInventory := NoSaleSentinelDays
		if rotation > 0 {
			daysOfInventory = int(math.Round(365 / rotation))
		}

		classification := models.RotationSlow
		if rotation >= 12 {
			classification = models.RotationFast
		} else if rotation >= 4 {
			classification = models.RotationMedium
		}

		item := models.RotationItem{
			VariantID:       key,
			Size:            v.Size,
			Color:           v.Color,
			CurrentStock:    v.Stock,
			UnitsSold:       sold,
			AnnualRotation:  round2(rotation),
			DaysOfInventory: daysOfInventory,
			Classification:  classification,
			InventoryValue:  round2(float64(v.Stock) * v.Price),
		}
		if v.Product != nil {
			item.ProductName = v.Product.Name
			item.Category = v.Product.Category
		}
		items = append(items, item)
	}

	if query.Filter != "all" {
		wanted := models.RotationFast
		if query.Filter == "slow" {
			wanted = models.RotationSlow
		}
		filtered := items[:0]
		for _, item := range items {
			if item.Classification == wanted {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].AnnualRotation > items[j].AnnualRotation
	})
	if len(items) > query.Limit {
		items = items[:query.Limit]
	}
	return items, nil
}

// GetInventoryValuation totals stock value per category and counts variants in
// alert conditions
func (s *ReportsService) GetInventoryValuation(ctx context.Context, tenantID string) (*models.InventoryValuation, error) {
	variants, err := s.inventory.ListActiveVariants(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	lastSales, err := s.sales.LastSaleDates(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var totalValue float64
	totalUnits := 0
	type categoryTotals struct {
		value float64
		units int
	}
	byCategory := make(map[string]*categoryTotals)
	var categories []string

	lowStock, noMovement, overstocked := 0, 0, 0
	movementCutoff := time.Now().AddDate(0, 0, -90)

	for _, v := range variants {
		value := float64(v.Stock) * v.Price
		totalValue += value
		totalUnits += v.Stock

		category := ""
		if v.Product != nil {
			category = v.Product.Category
		}
		totals, ok := byCategory[category]
		if !ok {
			totals = &categoryTotals{}
			byCategory[category] = totals
			categories = append(categories, category)
		}
		totals.value += value
		totals.units += v.Stock

		if v.Stock <= DefaultLowStockThreshold {
			lowStock++
		}
		if lastSale, ok := lastSales[v.ID.String()]; !ok || lastSale.Before(movementCutoff) {
			noMovement++
		}
		if v.Stock > 100 {
			overstocked++
		}
	}

	averageUnitValue := 0.0
	if totalUnits > 0 {
		averageUnitValue = totalValue / float64(totalUnits)
	}

	categoryValuations := make([]models.CategoryValuation, 0, len(categories))
	for _, category := range categories {
		totals := byCategory[category]
		pct := 0.0
		if totalValue > 0 {
			pct = round2(totals.value / totalValue * 100)
		}
		categoryValuations = append(categoryValuations, models.CategoryValuation{
			Category:   category,
			Value:      round2(totals.value),
			PctOfTotal: pct,
			Units:      totals.units,
		})
	}
	sort.SliceStable(categoryValuations, func(i, j int) bool {
		return categoryValuations[i].Value > categoryValuations[j].Value
	})

	return &models.InventoryValuation{
		Summary: models.ValuationSummary{
			TotalValue:       round2(totalValue),
			TotalUnits:       totalUnits,
			VariantCount:     len(variants),
			AverageUnitValue: round2(averageUnitValue),
		},
		ByCategory: categoryValuations,
		Alerts: models.ValuationAlerts{
			LowStock:    lowStock,
			NoMovement:  noMovement,
			Overstocked: overstocked,
		},
	}, nil
}

// GetSupplierPerformance aggregates purchase volume and cadence per supplier
func (s *ReportsService) GetSupplierPerformance(ctx context.Context, tenantID string, filter models.ReportFilter) ([]models.SupplierPerformance, error) {
	from, to := resolveWindow(filter, DefaultLongReportWindowDays)

	suppliers, err := s.inventory.ListActiveSuppliers(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	performances := make([]models.SupplierPerformance, 0, len(suppliers))
	for _, supplier := range suppliers {
		receipts, err := s.inventory.ListReceiptsBySupplier(ctx, tenantID, supplier.ID.String(), &from, &to)
		if err != nil {
			return nil, err
		}
		if len(receipts) == 0 {
			continue
		}

		var totalPurchases float64
		variants := make(map[string]bool)
		for _, receipt := range receipts {
			totalPurchases += receipt.TotalAmount
			for _, line := range receipt.Lines {
				variants[line.VariantID.String()] = true
			}
		}

		orderCount := len(receipts)
		interval := 0.0
		if orderCount > 1 {
			totalDays := 0
			for i := 1; i < orderCount; i++ {
				totalDays += daysBetween(receipts[i-1].ReceivedAt, receipts[i].ReceivedAt)
			}
			interval = float64(totalDays) / float64(orderCount-1)
		}

		rating := models.SupplierRatingPoor
		switch {
		case totalPurchases > 5000 && orderCount > 5:
			rating = models.SupplierRatingExcellent
		case totalPurchases > 2000 && orderCount > 3:
			rating = models.SupplierRatingGood
		case orderCount > 1:
			rating = models.SupplierRatingFair
		}

		contact := "Not available"
		if supplier.Email != nil && *supplier.Email != "" {
			contact = *supplier.Email
		} else if supplier.Phone != nil && *supplier.Phone != "" {
			contact = *supplier.Phone
		}

		performances = append(performances, models.SupplierPerformance{
			SupplierID:        supplier.ID.String(),
			SupplierName:      supplier.Name,
			Contact:           contact,
			TotalPurchases:    round2(totalPurchases),
			OrderIntervalDays: int(math.Round(interval)),
			AverageOrderCost:  round2(totalPurchases / float64(orderCount)),
			OrderCount:        orderCount,
			UniqueVariants:    len(variants),
			LastPurchase:      receipts[orderCount-1].ReceivedAt,
			Rating:            rating,
		})
	}

	sort.SliceStable(performances, func(i, j int) bool {
		return performances[i].TotalPurchases > performances[j].TotalPurchases
	})
	return performances, nil
}

// GetReplenishmentTimes derives inter-delivery interval statistics per supplier.
// Suppliers with fewer than two receipts are skipped.
func (s *ReportsService) GetReplenishmentTimes(ctx context.Context, tenantID string) ([]models.ReplenishmentTime, error) {
	suppliers, err := s.inventory.ListActiveSuppliers(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	times := make([]models.ReplenishmentTime, 0, len(suppliers))
	for _, supplier := range suppliers {
		receipts, err := s.inventory.ListReceiptsBySupplier(ctx, tenantID, supplier.ID.String(), nil, nil)
		if err != nil {
			return nil, err
		}
		if len(receipts) < 2 {
			continue
		}

		deliveries := make([]models.Delivery, 0, len(receipts)-1)
		gaps := make([]float64, 0, len(receipts)-1)
		totalDays := 0
		for i := 1; i < len(receipts); i++ {
			gap := daysBetween(receipts[i-1].ReceivedAt, receipts[i].ReceivedAt)
			totalDays += gap
			gaps = append(gaps, float64(gap))
			deliveries = append(deliveries, models.Delivery{
				Date:         receipts[i].ReceivedAt,
				DeliveryDays: gap,
				LineCount:    len(receipts[i].Lines),
			})
		}

		average := float64(totalDays) / float64(len(receipts)-1)
		cv := 0.0
		if average > 0 {
			cv = stddev(gaps) / average
		}

		times = append(times, models.ReplenishmentTime{
			SupplierID:      supplier.ID.String(),
			SupplierName:    supplier.Name,
			AverageDays:     int(math.Round(average)),
			OrdersProcessed: len(receipts),
			Deliveries:      deliveries,
			Consistency:     consistencyBand(cv),
		})
	}

	sort.SliceStable(times, func(i, j int) bool {
		return times[i].AverageDays < times[j].AverageDays
	})
	return times, nil
}

// GetExecutiveDashboard composes the headline reports. The sub-reports run
// concurrently; one failure fails the whole dashboard rather than returning a
// partial view.
func (s *ReportsService) GetExecutiveDashboard(ctx context.Context, tenantID string, filter models.ReportFilter) (*models.ExecutiveDashboard, error) {
	var (
		summary     *models.SalesSummary
		topProducts []models.TopProduct
		lowStock    []models.LowStockItem
		valuation   *models.InventoryValuation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.GetSalesSummary(gctx, tenantID, filter)
		return err
	})
	g.Go(func() error {
		var err error
		topProducts, err = s.GetTopProducts(gctx, tenantID, models.TopProductsQuery{Limit: 5, SortBy: "revenue"})
		return err
	})
	g.Go(func() error {
		var err error
		lowStock, err = s.GetLowStock(gctx, tenantID, models.LowStockQuery{Threshold: DefaultLowStockThreshold})
		return err
	})
	g.Go(func() error {
		var err error
		valuation, err = s.GetInventoryValuation(gctx, tenantID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	alertProducts := lowStock
	if len(alertProducts) > 5 {
		alertProducts = alertProducts[:5]
	}

	return &models.ExecutiveDashboard{
		Sales:       summary,
		TopProducts: topProducts,
		Alerts: models.DashboardAlerts{
			LowStockCount:  len(lowStock),
			Products:       alertProducts,
			InventoryValue: valuation.Summary.TotalValue,
		},
		Inventory: valuation,
	}, nil
}

// GetAlerts reports critical and low stock plus no-movement counts, and emits
// stock alert events best-effort
func (s *ReportsService) GetAlerts(ctx context.Context, tenantID string) (*models.AlertsReport, error) {
	var (
		lowStock  []models.LowStockItem
		valuation *models.InventoryValuation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lowStock, err = s.GetLowStock(gctx, tenantID, models.LowStockQuery{Threshold: 5})
		return err
	})
	g.Go(func() error {
		var err error
		valuation, err = s.GetInventoryValuation(gctx, tenantID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	critical := make([]models.LowStockItem, 0)
	low := make([]models.LowStockItem, 0)
	for _, item := range lowStock {
		if item.CurrentStock <= 3 {
			critical = append(critical, item)
		} else if item.CurrentStock <= 10 {
			low = append(low, item)
		}
	}

	criticality := "low"
	if len(critical) > 0 {
		criticality = "high"
	} else if len(lowStock) > 5 {
		criticality = "medium"
	}

	if s.publisher != nil && len(lowStock) > 0 {
		outOfStock := make([]models.LowStockItem, 0)
		remaining := make([]models.LowStockItem, 0)
		for _, item := range lowStock {
			if item.CurrentStock == 0 {
				outOfStock = append(outOfStock, item)
			} else {
				remaining = append(remaining, item)
			}
		}
		if len(outOfStock) > 0 {
			s.publisher.PublishOutOfStockAlert(ctx, tenantID, outOfStock)
		}
		if len(remaining) > 0 {
			s.publisher.PublishLowStockAlert(ctx, tenantID, remaining)
		}
	}

	return &models.AlertsReport{
		CriticalStock:     critical,
		LowStock:          low,
		NoMovement:        valuation.Alerts.NoMovement,
		LowInventoryValue: valuation.Summary.TotalValue < 10000,
		Summary: models.AlertsSummary{
			TotalAlerts: len(lowStock) + valuation.Alerts.NoMovement,
			Criticality: criticality,
		},
	}, nil
}
