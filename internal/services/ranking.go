package services

import (
	"context"
	"fmt"
	"sort"

	"analytics-service/internal/models"
)

// Ranker scores candidate products for the personalized and similar strategies.
// Rank returns ok=false when the collaborator could not produce a usable result;
// the caller then falls back to heuristic scoring. A failed ranking is never an
// error surfaced to the caller.
type Ranker interface {
	Rank(ctx context.Context, req models.RankingRequest) ([]models.RankedItem, bool)
}

// heuristicScore assigns a score by rank position over N candidates
func heuristicScore(index, total int) float64 {
	if total == 0 {
		return 0
	}
	score := float64(total-index) / float64(total)
	if score > 1 {
		score = 1
	}
	if score < 0.1 {
		score = 0.1
	}
	return score
}

// heuristicReason builds the templated per-strategy reason string
func heuristicReason(strategy models.RecommendationType, unitsSold int) string {
	switch strategy {
	case models.RecommendationBestseller:
		if unitsSold > 0 {
			return fmt.Sprintf("Top seller with %d units sold", unitsSold)
		}
		return "Top seller with multiple units sold"
	case models.RecommendationNewArrivals:
		return "Recently added to the catalog"
	case models.RecommendationSimilar:
		return "Shares characteristics with the product you are viewing"
	case models.RecommendationPersonalized:
		return "Recommended for you based on your purchase history"
	default:
		return "Recommended for you"
	}
}

// heuristicRank converts candidate products into scored recommendations in
// selector order, truncated to limit
func heuristicRank(products []models.Product, strategy models.RecommendationType, reason string, limit int) []models.ProductRecommendation {
	if len(products) > limit {
		products = products[:limit]
	}

	recs := make([]models.ProductRecommendation, 0, len(products))
	total := len(products)
	for i, product := range products {
		score := heuristicScore(i, total)
		recs = append(recs, newRecommendation(&product, score, score, reason, []string{string(strategy)}))
	}
	return recs
}

// newRecommendation maps a product onto the recommendation shape
func newRecommendation(product *models.Product, score, confidence float64, reason string, tags []string) models.ProductRecommendation {
	min, max := product.PriceBounds()
	description := ""
	if product.Description != nil {
		description = *product.Description
	}

	images := make([]string, 0, len(product.Images))
	images = append(images, product.Images...)

	return models.ProductRecommendation{
		ID:          product.ID.String(),
		Name:        product.Name,
		Description: description,
		Images:      images,
		Category:    product.Category,
		Subcategory: product.Subcategory,
		Price:       models.PriceRange{Min: min, Max: max},
		Score:       score,
		Reason:      reason,
		Confidence:  confidence,
		Tags:        tags,
	}
}

// applyDelegatedRanking maps the collaborator's ranked items back onto the
// candidate set. Unknown product ids are dropped. Output is sorted by score
// descending, ties keeping collaborator order.
func applyDelegatedRanking(products []models.Product, items []models.RankedItem, strategy models.RecommendationType) []models.ProductRecommendation {
	byID := make(map[string]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID.String()] = &products[i]
	}

	recs := make([]models.ProductRecommendation, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			continue
		}
		recs = append(recs, newRecommendation(product, item.Score, item.Confidence, item.Reason, []string{string(strategy), "ai-powered"}))
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	return recs
}

// rankingCandidate serializes a product for the ranking collaborator
func rankingCandidate(product *models.Product) models.RankingCandidate {
	description := ""
	if product.Description != nil {
		description = *product.Description
	}

	prices := make([]float64, 0, len(product.Variants))
	colors := make([]string, 0, len(product.Variants))
	sizes := make([]string, 0, len(product.Variants))
	seenColors := make(map[string]bool)
	seenSizes := make(map[string]bool)
	for _, v := range product.Variants {
		prices = append(prices, v.Price)
		if v.Color != "" && !seenColors[v.Color] {
			seenColors[v.Color] = true
			colors = append(colors, v.Color)
		}
		if v.Size != "" && !seenSizes[v.Size] {
			seenSizes[v.Size] = true
			sizes = append(sizes, v.Size)
		}
	}

	return models.RankingCandidate{
		ID:          product.ID.String(),
		Name:        product.Name,
		Category:    product.Category,
		Subcategory: product.Subcategory,
		Description: description,
		AvgPrice:    product.AveragePrice(),
		Prices:      prices,
		Colors:      colors,
		Sizes:       sizes,
	}
}
