package models

import "time"

// RecommendationType selects the candidate strategy
type RecommendationType string

const (
	RecommendationBestseller   RecommendationType = "bestseller"
	RecommendationSimilar      RecommendationType = "similar"
	RecommendationPersonalized RecommendationType = "personalized"
	RecommendationNewArrivals  RecommendationType = "new_arrivals"
)

// PurchaseFrequency buckets how often a client buys
const (
	FrequencyLow    = "low"
	FrequencyMedium = "medium"
	FrequencyHigh   = "high"
)

// PricePreference buckets a client's spending tier
const (
	PriceBudget   = "budget"
	PriceMidRange = "mid-range"
	PricePremium  = "premium"
)

// RecommendationRequest is the body of POST /recommendations
type RecommendationRequest struct {
	Type              RecommendationType `json:"type" binding:"required"`
	ClientID          string             `json:"clientId,omitempty"`
	BasedOnProductID  string             `json:"basedOnProductId,omitempty"`
	CategoryID        string             `json:"categoryId,omitempty"`
	Subcategory       string             `json:"subcategory,omitempty"`
	MinPrice          *float64           `json:"minPrice,omitempty"`
	MaxPrice          *float64           `json:"maxPrice,omitempty"`
	Limit             int                `json:"limit,omitempty"`
	ExcludeProductIDs []string           `json:"excludeProductIds,omitempty"`
	IncludeOutOfStock bool               `json:"includeOutOfStock,omitempty"`
	MinConfidence     *float64           `json:"minConfidence,omitempty"`
}

// PriceRange bounds a price interval
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ProductRecommendation is a single scored recommendation
type ProductRecommendation struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Images      []string   `json:"images"`
	Category    string     `json:"category"`
	Subcategory string     `json:"subcategory"`
	Price       PriceRange `json:"price"`
	Score       float64    `json:"score"`
	Reason      string     `json:"reason"`
	Confidence  float64    `json:"confidence"`
	Tags        []string   `json:"tags"`
}

// RecommendationInsights summarizes tenant-level catalog trends
type RecommendationInsights struct {
	TrendingCategories []string   `json:"trendingCategories"`
	PopularPriceRange  PriceRange `json:"popularPriceRange"`
	TopColors          []string   `json:"topColors"`
	TopSizes           []string   `json:"topSizes"`
}

// RecommendationAnalysis is the full response of a recommendation run
type RecommendationAnalysis struct {
	TotalProducts      int                     `json:"totalProducts"`
	CategoriesAnalyzed int                     `json:"categoriesAnalyzed"`
	SalesDataPoints    int                     `json:"salesDataPoints"`
	AnalysisDate       time.Time               `json:"analysisDate"`
	Recommendations    []ProductRecommendation `json:"recommendations"`
	Insights           RecommendationInsights  `json:"insights"`
}

// BehaviorProfile captures a client's purchasing behavior over the analysis window
type BehaviorProfile struct {
	ClientID            string    `json:"clientId"`
	PreferredCategories []string  `json:"preferredCategories"`
	AverageOrderValue   float64   `json:"averageOrderValue"`
	FrequentSizes       []string  `json:"frequentSizes"`
	FrequentColors      []string  `json:"frequentColors"`
	LastPurchaseDate    time.Time `json:"lastPurchaseDate"`
	PurchaseFrequency   string    `json:"purchaseFrequency"`
	PricePreference     string    `json:"pricePreference"`
}

// BulkBehaviorRequest is the body of POST /behavior/bulk
type BulkBehaviorRequest struct {
	ClientIDs  []string `json:"clientIds" binding:"required"`
	DaysPeriod int      `json:"daysPeriod,omitempty"`
}

// BulkBehaviorSummary aggregates traits across a batch of profiles
type BulkBehaviorSummary struct {
	AverageOrderValue       float64  `json:"averageOrderValue"`
	MostPreferredCategories []string `json:"mostPreferredCategories"`
	CommonSizes             []string `json:"commonSizes"`
	CommonColors            []string `json:"commonColors"`
}

// BulkBehaviorResponse is the response of POST /behavior/bulk
type BulkBehaviorResponse struct {
	TotalClients int                 `json:"totalClients"`
	Analyses     []BehaviorProfile   `json:"analyses"`
	Summary      BulkBehaviorSummary `json:"summary"`
}

// TenantCategoryStat is one entry of the tenant insight top categories
type TenantCategoryStat struct {
	Name      string `json:"name"`
	TotalSold int    `json:"totalSold"`
}

// TenantInsights are tenant-wide aggregate stats for the admin dashboard
type TenantInsights struct {
	TotalProducts     int64                `json:"totalProducts"`
	TotalSales        int64                `json:"totalSales"`
	AverageOrderValue float64              `json:"averageOrderValue"`
	TopCategories     []TenantCategoryStat `json:"topCategories"`
	AnalysisDate      time.Time            `json:"analysisDate"`
}

// RankingCandidate is the wire form of a candidate product sent to the ranking collaborator
type RankingCandidate struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory"`
	Description string    `json:"description"`
	AvgPrice    float64   `json:"avgPrice"`
	Prices      []float64 `json:"prices,omitempty"`
	Colors      []string  `json:"colors"`
	Sizes       []string  `json:"sizes"`
}

// RankingRequest carries everything the delegated ranker needs for one call
type RankingRequest struct {
	Strategy      RecommendationType `json:"strategy"`
	Limit         int                `json:"limit"`
	MinConfidence float64            `json:"minConfidence"`
	Candidates    []RankingCandidate `json:"candidates"`
	Profile       *BehaviorProfile   `json:"profile,omitempty"`
	BaseProduct   *RankingCandidate  `json:"baseProduct,omitempty"`
}

// RankedItem is one scored product returned by a ranker
type RankedItem struct {
	ProductID  string  `json:"productId"`
	Score      float64 `json:"score"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}
