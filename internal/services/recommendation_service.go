package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"analytics-service/internal/models"
	"analytics-service/internal/repository"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultRecommendationLimit is used when the request carries no limit
	DefaultRecommendationLimit = 10
	// MaxRecommendationLimit bounds the requested result size
	MaxRecommendationLimit = 50
	// DefaultMinConfidence is forwarded to the ranking collaborator when unset
	DefaultMinConfidence = 0.3
)

// RecommendationService selects and ranks candidate products under the four
// recommendation strategies
type RecommendationService struct {
	catalog  repository.CatalogReader
	sales    repository.SaleReader
	behavior *BehaviorService
	ranker   Ranker
	logger   *logrus.Entry
}

// NewRecommendationService creates a RecommendationService. The ranker may be
// nil; ranking then always uses the heuristic path.
func NewRecommendationService(catalog repository.CatalogReader, sales repository.SaleReader, behavior *BehaviorService, ranker Ranker, logger *logrus.Logger) *RecommendationService {
	return &RecommendationService{
		catalog:  catalog,
		sales:    sales,
		behavior: behavior,
		ranker:   ranker,
		logger:   logger.WithField("component", "recommendation_service"),
	}
}

// candidateContext carries the request-level eligibility filters
type candidateContext struct {
	categoryID        string
	subcategory       string
	priceRange        *models.PriceRange
	excludeIDs        map[string]bool
	includeOutOfStock bool
}

func newCandidateContext(req *models.RecommendationRequest) candidateContext {
	cc := candidateContext{
		categoryID:        req.CategoryID,
		subcategory:       req.Subcategory,
		excludeIDs:        make(map[string]bool, len(req.ExcludeProductIDs)),
		includeOutOfStock: req.IncludeOutOfStock,
	}
	for _, id := range req.ExcludeProductIDs {
		cc.excludeIDs[id] = true
	}
	if req.MinPrice != nil || req.MaxPrice != nil {
		pr := models.PriceRange{Min: 0, Max: math.MaxFloat64}
		if req.MinPrice != nil {
			pr.Min = *req.MinPrice
		}
		if req.MaxPrice != nil {
			pr.Max = *req.MaxPrice
		}
		cc.priceRange = &pr
	}
	return cc
}

// matches reports whether a product satisfies the common eligibility rules
func (cc *candidateContext) matches(p *models.Product) bool {
	if cc.excludeIDs[p.ID.String()] {
		return false
	}
	if cc.categoryID != "" && p.CategoryID != cc.categoryID {
		return false
	}
	if cc.subcategory != "" && p.Subcategory != cc.subcategory {
		return false
	}
	if cc.priceRange != nil && !someVariantInRange(p, cc.priceRange.Min, cc.priceRange.Max) {
		return false
	}
	if !cc.includeOutOfStock && !p.InStock() {
		return false
	}
	return true
}

// matchesVariant applies the same rules at variant granularity (bestseller path)
func (cc *candidateContext) matchesVariant(p *models.Product, v *models.ProductVariant) bool {
	if cc.excludeIDs[p.ID.String()] {
		return false
	}
	if cc.categoryID != "" && p.CategoryID != cc.categoryID {
		return false
	}
	if cc.subcategory != "" && p.Subcategory != cc.subcategory {
		return false
	}
	if cc.priceRange != nil && (v.Price < cc.priceRange.Min || v.Price > cc.priceRange.Max) {
		return false
	}
	if !cc.includeOutOfStock && v.Stock <= 0 {
		return false
	}
	return true
}

func someVariantInRange(p *models.Product, min, max float64) bool {
	for _, v := range p.Variants {
		if v.Price >= min && v.Price <= max {
			return true
		}
	}
	return false
}

// priceBandFor maps a price preference to its variant price band
func priceBandFor(preference string) models.PriceRange {
	switch preference {
	case models.PriceMidRange:
		return models.PriceRange{Min: 50, Max: 200}
	case models.PricePremium:
		return models.PriceRange{Min: 150, Max: math.MaxFloat64}
	default:
		return models.PriceRange{Min: 0, Max: 80}
	}
}

// GetRecommendations runs the selected strategy end to end. Validation happens
// before any gateway call; an empty candidate set yields an empty response,
// never an error.
func (s *RecommendationService) GetRecommendations(ctx context.Context, tenantID string, req *models.RecommendationRequest) (*models.RecommendationAnalysis, error) {
	minConfidence, err := s.normalize(req)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"tenantId": tenantID,
		"type":     req.Type,
		"limit":    req.Limit,
	}).Info("Generating recommendations")

	cc := newCandidateContext(req)

	switch req.Type {
	case models.RecommendationBestseller:
		return s.bestsellerRecommendations(ctx, tenantID, cc, req.Limit)
	case models.RecommendationSimilar:
		return s.similarRecommendations(ctx, tenantID, req.BasedOnProductID, cc, req.Limit, minConfidence)
	case models.RecommendationPersonalized:
		if req.ClientID == "" {
			// No client context, degrade to bestsellers
			return s.bestsellerRecommendations(ctx, tenantID, cc, req.Limit)
		}
		return s.personalizedRecommendations(ctx, tenantID, req.ClientID, cc, req.Limit, minConfidence)
	case models.RecommendationNewArrivals:
		return s.newArrivalsRecommendations(ctx, tenantID, cc, req.Limit)
	default:
		return s.bestsellerRecommendations(ctx, tenantID, cc, req.Limit)
	}
}

// normalize applies defaults and validates the request, returning the
// effective minimum confidence
func (s *RecommendationService) normalize(req *models.RecommendationRequest) (float64, error) {
	switch req.Type {
	case models.RecommendationBestseller, models.RecommendationSimilar,
		models.RecommendationPersonalized, models.RecommendationNewArrivals:
	default:
		return 0, fmt.Errorf("%w: type must be one of bestseller, similar, personalized, new_arrivals", ErrInvalidRequest)
	}

	if req.Type == models.RecommendationSimilar && req.BasedOnProductID == "" {
		return 0, fmt.Errorf("%w: basedOnProductId is required for similar recommendations", ErrInvalidRequest)
	}

	if req.Limit == 0 {
		req.Limit = DefaultRecommendationLimit
	}
	if req.Limit < 1 || req.Limit > MaxRecommendationLimit {
		return 0, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidRequest, MaxRecommendationLimit)
	}

	minConfidence := DefaultMinConfidence
	if req.MinConfidence != nil {
		minConfidence = *req.MinConfidence
		if minConfidence < 0 || minConfidence > 1 {
			return 0, fmt.Errorf("%w: minConfidence must be between 0 and 1", ErrInvalidRequest)
		}
	}

	if req.MinPrice != nil && req.MaxPrice != nil && *req.MinPrice > *req.MaxPrice {
		return 0, fmt.Errorf("%w: minPrice must not exceed maxPrice", ErrInvalidRequest)
	}

	return minConfidence, nil
}

func (s *RecommendationService) bestsellerRecommendations(ctx context.Context, tenantID string, cc candidateContext, limit int) (*models.RecommendationAnalysis, error) {
	stats, err := s.sales.BestsellerStats(ctx, tenantID, limit*2)
	if err != nil {
		return nil, err
	}

	products, err := s.catalog.ListActiveProducts(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	type variantRef struct {
		product *models.Product
		variant *models.ProductVariant
	}
	variantIndex := make(map[string]variantRef)
	for i := range products {
		for j := range products[i].Variants {
			variantIndex[products[i].Variants[j].ID.String()] = variantRef{
				product: &products[i],
				variant: &products[i].Variants[j],
			}
		}
	}

	recs := make([]models.ProductRecommendation, 0, limit)
	for i, stat := range stats {
		if len(recs) >= limit {
			break
		}
		ref, ok := variantIndex[stat.VariantID]
		if !ok {
			continue
		}
		if !cc.matchesVariant(ref.product, ref.variant) {
			continue
		}
		score := heuristicScore(i, len(stats))
		rec := newRecommendation(ref.product, score, score, heuristicReason(models.RecommendationBestseller, stat.TotalSold), []string{string(models.RecommendationBestseller)})
		rec.Price = models.PriceRange{Min: ref.variant.Price, Max: ref.variant.Price}
		recs = append(recs, rec)
	}

	return s.assembleAnalysis(ctx, tenantID, cc, recs, len(stats))
}

func (s *RecommendationService) similarRecommendations(ctx context.Context, tenantID, baseProductID string, cc candidateContext, limit int, minConfidence float64) (*models.RecommendationAnalysis, error) {
	base, err := s.catalog.GetProduct(ctx, tenantID, baseProductID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: base product %s", ErrNotFound, baseProductID)
		}
		return nil, err
	}

	products, err := s.catalog.ListActiveProducts(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	avgPrice := base.AveragePrice()
	margin := avgPrice * 0.3

	candidates := make([]models.Product, 0, limit*2)
	for _, p := range products {
		if len(candidates) >= limit*2 {
			break
		}
		if p.ID == base.ID {
			continue
		}
		if p.CategoryID != base.CategoryID {
			continue
		}
		if base.Subcategory != "" && p.Subcategory != base.Subcategory {
			continue
		}
		if !someVariantInRange(&p, avgPrice-margin, avgPrice+margin) {
			continue
		}
		if !cc.matches(&p) {
			continue
		}
		candidates = append(candidates, p)
	}

	recs := s.rankCandidates(ctx, candidates, models.RecommendationSimilar, limit, minConfidence, nil, base,
		fmt.Sprintf("Similar to %s", base.Name))

	analysis, err := s.assembleAnalysis(ctx, tenantID, cc, recs, len(candidates))
	if err != nil {
		return nil, err
	}
	analysis.CategoriesAnalyzed = 1
	return analysis, nil
}

func (s *RecommendationService) personalizedRecommendations(ctx context.Context, tenantID, clientID string, cc candidateContext, limit int, minConfidence float64) (*models.RecommendationAnalysis, error) {
	profile, err := s.behavior.AnalyzeClientBehavior(ctx, tenantID, clientID, 0)
	if err != nil {
		return nil, err
	}

	purchasedIDs, err := s.sales.PurchasedProductIDs(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}
	purchased := make(map[string]bool, len(purchasedIDs))
	for _, id := range purchasedIDs {
		purchased[id] = true
	}

	preferred := make(map[string]bool, len(profile.PreferredCategories))
	for _, c := range profile.PreferredCategories {
		preferred[c] = true
	}

	var band *models.PriceRange
	if profile.PricePreference != models.PriceBudget {
		b := priceBandFor(profile.PricePreference)
		band = &b
	}

	products, err := s.catalog.ListActiveProducts(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	candidates := make([]models.Product, 0, limit*2)
	for _, p := range products {
		if len(candidates) >= limit*2 {
			break
		}
		if purchased[p.ID.String()] {
			continue
		}
		if len(preferred) > 0 && !preferred[p.Category] {
			continue
		}
		if band != nil && !someVariantInRange(&p, band.Min, band.Max) {
			continue
		}
		if !cc.matches(&p) {
			continue
		}
		candidates = append(candidates, p)
	}

	recs := s.rankCandidates(ctx, candidates, models.RecommendationPersonalized, limit, minConfidence, profile, nil,
		heuristicReason(models.RecommendationPersonalized, 0))

	return s.assembleAnalysis(ctx, tenantID, cc, recs, len(purchasedIDs))
}

func (s *RecommendationService) newArrivalsRecommendations(ctx context.Context, tenantID string, cc candidateContext, limit int) (*models.RecommendationAnalysis, error) {
	products, err := s.catalog.ListActiveProducts(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	// Products come back newest first
	candidates := make([]models.Product, 0, limit)
	for _, p := range products {
		if len(candidates) >= limit {
			break
		}
		if !cc.matches(&p) {
			continue
		}
		candidates = append(candidates, p)
	}

	recs := heuristicRank(candidates, models.RecommendationNewArrivals, heuristicReason(models.RecommendationNewArrivals, 0), limit)

	return s.assembleAnalysis(ctx, tenantID, cc, recs, len(candidates))
}

// rankCandidates chooses between delegated and heuristic ranking. Delegated
// ranking failures degrade silently to the heuristic path.
func (s *RecommendationService) rankCandidates(ctx context.Context, candidates []models.Product, strategy models.RecommendationType, limit int, minConfidence float64, profile *models.BehaviorProfile, base *models.Product, fallbackReason string) []models.ProductRecommendation {
	if s.ranker != nil && len(candidates) > 0 {
		req := models.RankingRequest{
			Strategy:      strategy,
			Limit:         limit,
			MinConfidence: minConfidence,
			Candidates:    make([]models.RankingCandidate, 0, len(candidates)),
			Profile:       profile,
		}
		for i := range candidates {
			req.Candidates = append(req.Candidates, rankingCandidate(&candidates[i]))
		}
		if base != nil {
			bc := rankingCandidate(base)
			req.BaseProduct = &bc
		}

		if items, ok := s.ranker.Rank(ctx, req); ok {
			recs := applyDelegatedRanking(candidates, items, strategy)
			if len(recs) > limit {
				recs = recs[:limit]
			}
			return recs
		}
		s.logger.WithField("strategy", strategy).Warn("Delegated ranking unavailable, using heuristic scoring")
	}

	return heuristicRank(candidates, strategy, fallbackReason, limit)
}

// assembleAnalysis wraps ranked recommendations with the aggregate insight block
func (s *RecommendationService) assembleAnalysis(ctx context.Context, tenantID string, cc candidateContext, recs []models.ProductRecommendation, salesDataPoints int) (*models.RecommendationAnalysis, error) {
	if recs == nil {
		recs = []models.ProductRecommendation{}
	}

	var categoriesAnalyzed int64
	if cc.categoryID != "" {
		categoriesAnalyzed = 1
	} else {
		count, err := s.catalog.CountCategories(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		categoriesAnalyzed = count
	}

	insights, err := s.generateInsights(ctx, tenantID, recs)
	if err != nil {
		return nil, err
	}

	return &models.RecommendationAnalysis{
		TotalProducts:      len(recs),
		CategoriesAnalyzed: int(categoriesAnalyzed),
		SalesDataPoints:    salesDataPoints,
		AnalysisDate:       time.Now(),
		Recommendations:    recs,
		Insights:           insights,
	}, nil
}

// generateInsights derives trending categories and the popular price band from
// the recommendations plus top colors/sizes from the last 30 days of sales
func (s *RecommendationService) generateInsights(ctx context.Context, tenantID string, recs []models.ProductRecommendation) (models.RecommendationInsights, error) {
	insights := models.RecommendationInsights{
		TrendingCategories: []string{},
		TopColors:          []string{},
		TopSizes:           []string{},
	}
	if len(recs) == 0 {
		return insights, nil
	}

	seen := make(map[string]bool)
	for _, rec := range recs {
		if len(insights.TrendingCategories) >= 5 {
			break
		}
		if rec.Category == "" || seen[rec.Category] {
			continue
		}
		seen[rec.Category] = true
		insights.TrendingCategories = append(insights.TrendingCategories, rec.Category)
	}

	minPrice, maxPrice := recs[0].Price.Min, recs[0].Price.Max
	for _, rec := range recs[1:] {
		if rec.Price.Min < minPrice {
			minPrice = rec.Price.Min
		}
		if rec.Price.Max > maxPrice {
			maxPrice = rec.Price.Max
		}
	}
	insights.PopularPriceRange = models.PriceRange{Min: minPrice, Max: maxPrice}

	now := time.Now()
	lines, err := s.sales.ListCompletedSaleLinesBetween(ctx, tenantID, now.AddDate(0, 0, -30), now)
	if err != nil {
		return insights, err
	}

	type colorSize struct{ color, size string }
	counts := make(map[colorSize]int)
	var order []colorSize
	for _, line := range lines {
		if line.Variant == nil {
			continue
		}
		key := colorSize{color: line.Variant.Color, size: line.Variant.Size}
		if _, ok := counts[key]; !ok {
			order = append(order, key)
		}
		counts[key]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > 10 {
		order = order[:10]
	}

	seenColors := make(map[string]bool)
	seenSizes := make(map[string]bool)
	for _, key := range order {
		if key.color != "" && !seenColors[key.color] && len(insights.TopColors) < 5 {
			seenColors[key.color] = true
			insights.TopColors = append(insights.TopColors, key.color)
		}
		if key.size != "" && !seenSizes[key.size] && len(insights.TopSizes) < 5 {
			seenSizes[key.size] = true
			insights.TopSizes = append(insights.TopSizes, key.size)
		}
	}

	return insights, nil
}

// GetTenantInsights returns tenant-wide aggregate stats for the admin dashboard
func (s *RecommendationService) GetTenantInsights(ctx context.Context, tenantID string) (*models.TenantInsights, error) {
	insights := &models.TenantInsights{AnalysisDate: time.Now()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := s.catalog.CountActiveProducts(gctx, tenantID)
		insights.TotalProducts = count
		return err
	})
	g.Go(func() error {
		count, err := s.sales.CountCompletedSales(gctx, tenantID)
		insights.TotalSales = count
		return err
	})
	g.Go(func() error {
		avg, err := s.sales.AverageSaleTotal(gctx, tenantID)
		insights.AverageOrderValue = avg
		return err
	})
	g.Go(func() error {
		top, err := s.sales.TopCategoriesBySales(gctx, tenantID, 5)
		insights.TopCategories = top
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if insights.TopCategories == nil {
		insights.TopCategories = []models.TenantCategoryStat{}
	}
	return insights, nil
}
