package models

import "time"

// Segmentation classification labels
const (
	ClassificationVIP        = "VIP"
	ClassificationFrequent   = "Frecuente"
	ClassificationOccasional = "Ocasional"
	ClassificationNew        = "Nuevo"
)

// Rotation classification labels
const (
	RotationFast   = "Rápida"
	RotationMedium = "Media"
	RotationSlow   = "Lenta"
)

// Volatility / consistency bands derived from coefficient of variation
const (
	VolatilityVeryLow       = "Very Low"
	VolatilityLow           = "Low"
	VolatilityMedium        = "Medium"
	VolatilityHigh          = "High"
	VolatilityVeryHigh      = "Very High"
	VolatilityNotComputable = "Not Computable"

	ConsistencyVeryConsistent = "Very Consistent"
	ConsistencyConsistent     = "Consistent"
	ConsistencyVariable       = "Variable"
	ConsistencyInconsistent   = "Inconsistent"
)

// Trend directions
const (
	TrendGrowing   = "growing"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// Supplier ratings
const (
	SupplierRatingExcellent = "Excellent"
	SupplierRatingGood      = "Good"
	SupplierRatingFair      = "Fair"
	SupplierRatingPoor      = "Poor"
)

// Inventory movement directions
const (
	MovementInbound  = "inbound"
	MovementOutbound = "outbound"
)

// ReportFilter carries the shared date-range/entity filters of the reports surface
type ReportFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	CategoryID string
	SupplierID string
	ClientID   string
}

// TopProductsQuery parameterizes the top products report
type TopProductsQuery struct {
	Limit     int
	SortBy    string // "quantity" or "revenue"
	StartDate *time.Time
	EndDate   *time.Time
}

// LowStockQuery parameterizes the low stock report
type LowStockQuery struct {
	Threshold  int
	CategoryID string
}

// RotationQuery parameterizes the inventory rotation report
type RotationQuery struct {
	StartDate *time.Time
	EndDate   *time.Time
	Filter    string // "fast", "slow" or "all"
	Limit     int
}

// ReportPeriod bounds a report window (dates formatted yyyy-mm-dd)
type ReportPeriod struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// SalesTotals are the headline numbers of a sales summary
type SalesTotals struct {
	TotalRevenue  float64 `json:"totalRevenue"`
	Transactions  int     `json:"transactions"`
	AverageTicket float64 `json:"averageTicket"`
	UnitsSold     int     `json:"unitsSold"`
	UniqueClients int     `json:"uniqueClients"`
}

// ComparisonMetric pairs the previous-period value with its percentage delta
type ComparisonMetric struct {
	Value     float64 `json:"value"`
	ChangePct float64 `json:"changePct"`
}

// PreviousPeriodComparison compares headline metrics against the preceding equal-length window
type PreviousPeriodComparison struct {
	TotalRevenue  ComparisonMetric `json:"totalRevenue"`
	Transactions  ComparisonMetric `json:"transactions"`
	AverageTicket ComparisonMetric `json:"averageTicket"`
}

// SalesSummary is the sales summary report
type SalesSummary struct {
	Period         ReportPeriod             `json:"period"`
	Totals         SalesTotals              `json:"totals"`
	PreviousPeriod PreviousPeriodComparison `json:"previousPeriod"`
}

// TopProduct is one ranked entry of the top products report
type TopProduct struct {
	VariantID    string  `json:"variantId"`
	ProductName  string  `json:"productName"`
	Size         string  `json:"size"`
	Color        string  `json:"color"`
	Category     string  `json:"category"`
	UnitsSold    int     `json:"unitsSold"`
	Revenue      float64 `json:"revenue"`
	AveragePrice float64 `json:"averagePrice"`
	Transactions int     `json:"transactions"`
	Rank         int     `json:"rank"`
}

// CustomerPerformance is one per-client entry of the customer performance report
type CustomerPerformance struct {
	ClientID             string    `json:"clientId"`
	ClientName           string    `json:"clientName"`
	Email                string    `json:"email"`
	TotalSpend           float64   `json:"totalSpend"`
	PurchaseIntervalDays int       `json:"purchaseIntervalDays"`
	AverageOrderValue    float64   `json:"averageOrderValue"`
	LastPurchase         time.Time `json:"lastPurchase"`
	Classification       string    `json:"classification"`
	UniqueVariants       int       `json:"uniqueVariants"`
}

// SegmentStats summarizes one customer segment
type SegmentStats struct {
	Count           int     `json:"count"`
	Percentage      int     `json:"percentage"`
	TotalRevenue    float64 `json:"totalRevenue"`
	ContributionPct int     `json:"contributionPct"`
}

// CustomerSegments groups the four behavior segments
type CustomerSegments struct {
	VIP        SegmentStats `json:"vip"`
	Frequent   SegmentStats `json:"frequent"`
	Occasional SegmentStats `json:"occasional"`
	New        SegmentStats `json:"new"`
}

// CustomerSegmentation is the customer segmentation report
type CustomerSegmentation struct {
	TotalClients    int              `json:"totalClients"`
	TotalRevenue    float64          `json:"totalRevenue"`
	Segments        CustomerSegments `json:"segments"`
	Recommendations []string         `json:"recommendations"`
}

// SalesTrendPoint is one zero-filled daily data point of the sales trend report
type SalesTrendPoint struct {
	Date          string  `json:"date"`
	Revenue       float64 `json:"revenue"`
	Transactions  int     `json:"transactions"`
	AverageTicket float64 `json:"averageTicket"`
	Weekday       string  `json:"weekday"`
	Month         string  `json:"month"`
	Year          int     `json:"year"`
}

// TrendAnalysis is the regression summary of the advanced trends report
type TrendAnalysis struct {
	DailyAverage       float64 `json:"dailyAverage"`
	Direction          string  `json:"direction"`
	ChangePct          float64 `json:"changePct"`
	NextWeekProjection float64 `json:"nextWeekProjection"`
	Volatility         string  `json:"volatility"`
	DaysAboveAverage   int     `json:"daysAboveAverage"`
	DaysBelowAverage   int     `json:"daysBelowAverage"`
}

// AdvancedTrends wraps the daily trend points with their regression analysis
type AdvancedTrends struct {
	Period   ReportPeriod      `json:"period"`
	Trends   []SalesTrendPoint `json:"trends"`
	Analysis TrendAnalysis     `json:"analysis"`
}

// LowStockItem is one variant at or below the low stock threshold
type LowStockItem struct {
	VariantID       string     `json:"variantId"`
	ProductName     string     `json:"productName"`
	Size            string     `json:"size"`
	Color           string     `json:"color"`
	Category        string     `json:"category"`
	CurrentStock    int        `json:"currentStock"`
	MinimumStock    int        `json:"minimumStock"`
	DaysWithoutSale int        `json:"daysWithoutSale"`
	LastSale        *time.Time `json:"lastSale,omitempty"`
	LastReceipt     *time.Time `json:"lastReceipt,omitempty"`
}

// InventoryMovement is one merged entry of the inventory movements report
type InventoryMovement struct {
	Date        time.Time `json:"date"`
	Type        string    `json:"type"`
	Quantity    int       `json:"quantity"`
	Reason      string    `json:"reason"`
	User        string    `json:"user,omitempty"`
	Supplier    string    `json:"supplier,omitempty"`
	ProductName string    `json:"productName"`
	Size        string    `json:"size"`
	Color       string    `json:"color"`
	UnitPrice   float64   `json:"unitPrice"`
}

// RotationItem is one per-variant entry of the inventory rotation report
type RotationItem struct {
	VariantID       string  `json:"variantId"`
	ProductName     string  `json:"productName"`
	Size            string  `json:"size"`
	Color           string  `json:"color"`
	Category        string  `json:"category"`
	CurrentStock    int     `json:"currentStock"`
	UnitsSold       int     `json:"unitsSold"`
	AnnualRotation  float64 `json:"annualRotation"`
	DaysOfInventory int     `json:"daysOfInventory"`
	Classification  string  `json:"classification"`
	InventoryValue  float64 `json:"inventoryValue"`
}

// ValuationSummary totals the inventory valuation report
type ValuationSummary struct {
	TotalValue       float64 `json:"totalValue"`
	TotalUnits       int     `json:"totalUnits"`
	VariantCount     int     `json:"variantCount"`
	AverageUnitValue float64 `json:"averageUnitValue"`
}

// CategoryValuation is one per-category share of the inventory valuation
type CategoryValuation struct {
	Category   string  `json:"category"`
	Value      float64 `json:"value"`
	PctOfTotal float64 `json:"pctOfTotal"`
	Units      int     `json:"units"`
}

// ValuationAlerts counts variants in alert conditions
type ValuationAlerts struct {
	LowStock    int `json:"lowStock"`
	NoMovement  int `json:"noMovement"`
	Overstocked int `json:"overstocked"`
}

// InventoryValuation is the inventory valuation report
type InventoryValuation struct {
	Summary    ValuationSummary    `json:"summary"`
	ByCategory []CategoryValuation `json:"byCategory"`
	Alerts     ValuationAlerts     `json:"alerts"`
}

// SupplierPerformance is one per-supplier entry of the supplier performance report
type SupplierPerformance struct {
	SupplierID        string    `json:"supplierId"`
	SupplierName      string    `json:"supplierName"`
	Contact           string    `json:"contact"`
	TotalPurchases    float64   `json:"totalPurchases"`
	OrderIntervalDays int       `json:"orderIntervalDays"`
	AverageOrderCost  float64   `json:"averageOrderCost"`
	OrderCount        int       `json:"orderCount"`
	UniqueVariants    int       `json:"uniqueVariants"`
	LastPurchase      time.Time `json:"lastPurchase"`
	Rating            string    `json:"rating"`
}

// Delivery is one inter-receipt gap of the replenishment report
type Delivery struct {
	Date         time.Time `json:"date"`
	DeliveryDays int       `json:"deliveryDays"`
	LineCount    int       `json:"lineCount"`
}

// ReplenishmentTime is one per-supplier entry of the replenishment times report
type ReplenishmentTime struct {
	SupplierID      string     `json:"supplierId"`
	SupplierName    string     `json:"supplierName"`
	AverageDays     int        `json:"averageDays"`
	OrdersProcessed int        `json:"ordersProcessed"`
	Deliveries      []Delivery `json:"deliveries"`
	Consistency     string     `json:"consistency"`
}

// DashboardAlerts is the alerts block of the executive dashboard
type DashboardAlerts struct {
	LowStockCount  int            `json:"lowStockCount"`
	Products       []LowStockItem `json:"products"`
	InventoryValue float64        `json:"inventoryValue"`
}

// ExecutiveDashboard composes the headline reports for the admin dashboard
type ExecutiveDashboard struct {
	Sales       *SalesSummary       `json:"sales"`
	TopProducts []TopProduct        `json:"topProducts"`
	Alerts      DashboardAlerts     `json:"alerts"`
	Inventory   *InventoryValuation `json:"inventory"`
}

// AlertsSummary totals the alerts report
type AlertsSummary struct {
	TotalAlerts int    `json:"totalAlerts"`
	Criticality string `json:"criticality"`
}

// AlertsReport is the stock alerts report
type AlertsReport struct {
	CriticalStock     []LowStockItem `json:"criticalStock"`
	LowStock          []LowStockItem `json:"lowStock"`
	NoMovement        int            `json:"noMovement"`
	LowInventoryValue bool           `json:"lowInventoryValue"`
	Summary           AlertsSummary  `json:"summary"`
}
