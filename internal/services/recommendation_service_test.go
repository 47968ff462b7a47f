package services

import (
	"context"
	"testing"
	"time"

	"analytics-service/internal/models"
	"analytics-service/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func buildProduct(name, categoryID, category string, prices ...float64) models.Product {
	product := models.Product{
		ID:         uuid.New(),
		TenantID:   "tenant-1",
		Name:       name,
		CategoryID: categoryID,
		Category:   category,
		IsActive:   true,
		Images:     models.StringArray{},
	}
	for _, price := range prices {
		product.Variants = append(product.Variants, models.ProductVariant{
			ID:        uuid.New(),
			ProductID: product.ID,
			Color:     "Black",
			Size:      "M",
			Price:     price,
			Stock:     5,
		})
	}
	return product
}

func newRecommendationFixture(ranker Ranker) (*RecommendationService, *MockCatalogReader, *MockSaleReader) {
	catalog := new(MockCatalogReader)
	sales := new(MockSaleReader)
	behavior := NewBehaviorService(catalog, sales, testLogger())
	service := NewRecommendationService(catalog, sales, behavior, ranker, testLogger())
	return service, catalog, sales
}

func expectInsightQueries(catalog *MockCatalogReader, sales *MockSaleReader) {
	catalog.On("CountCategories", mock.Anything, "tenant-1").Return(int64(3), nil).Maybe()
	sales.On("ListCompletedSaleLinesBetween", mock.Anything, "tenant-1", mock.Anything, mock.Anything).
		Return([]models.SaleLine{}, nil).Maybe()
}

func TestGetRecommendations_InvalidType(t *testing.T) {
	service, catalog, sales := newRecommendationFixture(nil)

	_, err := service.GetRecommendations(context.Background(), "tenant-1", &models.RecommendationRequest{
		Type: "trending",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	catalog.AssertNotCalled(t, "ListActiveProducts", mock.Anything, mock.Anything)
	sales.AssertNotCalled(t, "BestsellerStats", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetRecommendations_SimilarRequiresBaseProduct(t *testing.T) {
	service, catalog, _ := newRecommendationFixture(nil)

	_, err := service.GetRecommendations(context.Background(), "tenant-1", &models.RecommendationRequest{
		Type: models.RecommendationSimilar,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	catalog.AssertNotCalled(t, "GetProduct", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetRecommendations_LimitBounds(t *testing.T) {
	service, _, _ := newRecommendationFixture(nil)

	_, err := service.GetRecommendations(context.Background(), "tenant-1", &models.RecommendationRequest{
		Type:  models.RecommendationBestseller,
		Limit: 51,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestGetRecommendations_MinConfidenceBounds(t *testing.T) {
	service, _, _ := newRecommendationFixture(nil)

	tooHigh := 1.5
	_, err := service.GetRecommendations(context.Background(), "tenant-1", &models.RecommendationRequest{
		Type:          models.RecommendationBestseller,
		MinConfidence: &tooHigh,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestGetRecommendations_PriceRangeInverted(t *testing.T) {
	service, _, _ := newRecommendationFixture(nil)

	minPrice, maxPrice := 100.0, 50.0
	_, err := service.GetRecommendations(context.Background(), "tenant-1", &models.RecommendationRequest{
		Type:     models.RecommendationBestseller,
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestGetRecommendations_BestsellerScoring(t *testing.T) {
	service, catalog, sales := newRecommendationFixture(nil)

	p1 := buildProduct("Classic Shirt", "cat-1", "Shirts", 45)
	p2 := buildProduct("Denim Pants", "cat-2", "Pants", 90)
	products := []models.Product{p1, p2}

	stats := []repository.VariantSalesStat{
		{VariantID: p1.Variants[0].ID.String(), TotalSold: 30, SaleCount: 12},
		{VariantID: p2.Variants[0].ID.String(), TotalSold: 10, SaleCount: 8},
	}

	sales.On("BestsellerStats", mock.Anything, "tenant-1", 20).Return(stats, nil)
	catalog.On("ListActiveProducts", mock.Anything, "tenant-1").Return(products, nil)
	expectInsightQueries(catalog, sales)

	analysis, err := service.GetRecommendations(context.Background(), "tenant-1", &models.RecommendationRequest{
		Type: models.RecommendationBestseller,
	})

	require.NoError(t, err)
	require.Len(t, analysis.Recommendations, 2)

	first := analysis.Recommendations[0]
	assert.Equal(t, p1.ID.String(), first.ID)
	assert.InDelta(t, 1.0, first.Score, 0.001)
	assert.Contains(t, first.Reason, "30 units sold")
	assert.Equal(t, []string{"bestseller"}, first.Tags)
	assert.Equal(t, 45.0, first.Price.Min)
	assert.Equal(t, 45.0, first.Price.Max)

	second := analysis.Recommendations[1]
	assert.InDelta(t, 0.5, second.Score, 0.001)
	assert.Equal(t, 2, analysis.TotalProducts)
	assert.Equal(t, 2, analysis.SalesDataPoints)
}

func TestGetRecommendations_PersonalizedWithoutClientFallsBackToBestseller(t *testing.T) {
	service, catalog, sales := newRecommendationFixture(nil)

	sales.On("BestsellerStats", mock.Anything, "tenant-1", 20).
		Return([]repository.VariantSalesStat{}, nil)
	catalog.On("ListActiveProducts", mock.Anything, "tenant-1").
		Return([]models.Product{}, nil)
	expectInsightQueries(catalog, sales)

	analysis, err := service.GetRecommendations(context.Background(), "tenant-1", &models.RecommendationRequest{
		Type: models.RecommendationPersonalized,
	})

	require.NoError(t, err)
	assert.NotNil(t, analysis.Recommendations)
	assert.Empty(t, analysis.Recommendations)
	sales.AssertNotCalled(t, "PurchasedProductIDs", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetRecommendations_SimilarBaseProductNotFound(t *testing.T) {
	service, catalog, _ := newRecommendationFixture(nil)

	catalog.On("GetProduct", mock.Anything, "tenant-1", "missing").
		Return(nil, repository.ErrNotFound)

	_, err := service.GetRecommendations(context.Background(), "tenant-1", &models.RecommendationRequest{
		Type:             models.RecommendationSimilar,
		BasedOnProductID: "missing",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetRecommendations_SimilarFiltersByCategoryAndPriceBand(t *testing.T) {
	service, catalog, sales := newRecommendationFixture(nil)

	base := buildProduct("Base Shirt", "cat-1", "Shirts", 100)
	inBand := buildProduct("Close Shirt", "cat-1", "Shirts", 110)
	outOfBand := buildProduct("Luxury Shirt", "cat-1", "Shirts", 500)
	otherCategory := buildProduct("Pants", "cat-2", "Pants", 100)

	catalog.On("GetProduct", mock.Anything, "tenant-1", base.ID.String()).Return(&base, nil)
	catalog.On("ListActiveProducts", mock.Anything, "tenant-1").
		Return([]models.Product{base, inBand, outOfBand, otherCategory}, nil)
	expectInsightQueries(catalog, sales)

	analysis, err := service.GetRecommendations(context.Background(), "tenant-1", &models.RecommendationRequest{
		Type:             models.RecommendationSimilar,
		BasedOnProductID: base.ID.String(),
	})

	require.NoError(t, err)
	require.Len(t, analysis.Recommendations, 1)
	assert.Equal(t, inBand.ID.String(), analysis.Recommendations[0].ID)
	assert.Equal(t, 1, analysis.CategoriesAnalyzed)
	assert.Equal(t, []string{"similar"}, analysis.Recommendations[0].Tags)
}

func TestGetRecommendations_DelegatedRankingApplied(t *testing.T) {
	ranker := new(MockRanker)
	service, catalog, sales := newRecommendationFixture(ranker)

	base := buildProduct("Base Shirt", "cat-1", "Shirts", 100)
	candidate := buildProduct("Close Shirt", "cat-1", "Shirts", 110)

	catalog.On("GetProduct", mock.Anything, "tenant-1", base.ID.String()).Return(&base, nil)
	catalog.On("ListActiveProducts", mock.Anything, "tenant-1").
		Return([]models.Product{base, candidate}, nil)
	expectInsightQueries(catalog, sales)

	ranker.On("Rank", mock.Anything, mock.Anything).Return([]models.RankedItem{
		{ProductID: candidate.ID.String(), Score: 0.92, Reason: "Close match in style and price", Confidence: 0.88},
		{ProductID: "unknown-product", Score: 0.99, Reason: "Hallucinated", Confidence: 0.99},
	}, true)

	analysis, err := service.GetRecommendations(context.Background(), "tenant-1", &models.RecommendationRequest{
		Type:             models.RecommendationSimilar,
		BasedOnProductID: base.ID.String(),
	})

	require.NoError(t, err)
	// Unknown product ids are dropped
	require.Len(t, analysis.Recommendations, 1)
	rec := analysis.Recommendations[0]
	assert.Equal(t, candidate.ID.String(), rec.ID)
	assert.InDelta(t, 0.92, rec.Score, 0.001)
	assert.InDelta(t, 0.88, rec.Confidence, 0.001)
	assert.Equal(t, []string{"similar", "ai-powered"}, rec.Tags)
}

func TestGetRecommendations_RankerFailureFallsBackToHeuristic(t *testing.T) {
	ranker := new(MockRanker)
	service, catalog, sales := newRecommendationFixture(ranker)

	base := buildProduct("Base Shirt", "cat-1", "Shirts", 100)
	candidate := buildProduct("Close Shirt", "cat-1", "Shirts", 110)

	catalog.On("GetProduct", mock.Anything, "tenant-1", base.ID.String()).Return(&base, nil)
	catalog.On("ListActiveProducts", mock.Anything, "tenant-1").
		Return([]models.Product{base, candidate}, nil)
	expectInsightQueries(catalog, sales)

	ranker.On("Rank", mock.Anything, mock.Anything).Return(nil, false)

	analysis, err := service.GetRecommendations(context.Background(), "tenant-1", &models.RecommendationRequest{
		Type:             models.RecommendationSimilar,
		BasedOnProductID: base.ID.String(),
	})

	require.NoError(t, err)
	require.Len(t, analysis.Recommendations, 1)
	assert.NotContains(t, analysis.Recommendations[0].Tags, "ai-powered")
	assert.Greater(t, analysis.Recommendations[0].Score, 0.0)
}

func TestGetRecommendations_PersonalizedExcludesPurchased(t *testing.T) {
	service, catalog, salesRepo := newRecommendationFixture(nil)

	clientID := uuid.New()
	purchased := buildProduct("Bought Shirt", "cat-1", "Shirts", 60)
	fresh := buildProduct("New Shirt", "cat-1", "Shirts", 60)

	saleDate := time.Now().AddDate(0, 0, -10)
	catalog.On("GetClient", mock.Anything, "tenant-1", clientID.String()).
		Return(&models.Client{ID: clientID}, nil)
	salesRepo.On("ListCompletedSalesByClient", mock.Anything, "tenant-1", clientID.String(), mock.Anything).
		Return([]models.Sale{
			buildSale(clientID, 60, saleDate, buildSaleLine("Shirts", "M", "Black", 1, 60)),
		}, nil)
	salesRepo.On("PurchasedProductIDs", mock.Anything, "tenant-1", clientID.String()).
		Return([]string{purchased.ID.String()}, nil)
	catalog.On("ListActiveProducts", mock.Anything, "tenant-1").
		Return([]models.Product{purchased, fresh}, nil)
	expectInsightQueries(catalog, salesRepo)

	analysis, err := service.GetRecommendations(context.Background(), "tenant-1", &models.RecommendationRequest{
		Type:     models.RecommendationPersonalized,
		ClientID: clientID.String(),
	})

	require.NoError(t, err)
	require.Len(t, analysis.Recommendations, 1)
	assert.Equal(t, fresh.ID.String(), analysis.Recommendations[0].ID)
	assert.Equal(t, 1, analysis.SalesDataPoints)
}

func TestGetRecommendations_NewArrivalsKeepsCatalogOrder(t *testing.T) {
	service, catalog, sales := newRecommendationFixture(nil)

	newest := buildProduct("Newest", "cat-1", "Shirts", 50)
	older := buildProduct("Older", "cat-1", "Shirts", 50)

	catalog.On("ListActiveProducts", mock.Anything, "tenant-1").
		Return([]models.Product{newest, older}, nil)
	expectInsightQueries(catalog, sales)

	analysis, err := service.GetRecommendations(context.Background(), "tenant-1", &models.RecommendationRequest{
		Type:  models.RecommendationNewArrivals,
		Limit: 1,
	})

	require.NoError(t, err)
	require.Len(t, analysis.Recommendations, 1)
	assert.Equal(t, newest.ID.String(), analysis.Recommendations[0].ID)
	assert.Equal(t, []string{"new_arrivals"}, analysis.Recommendations[0].Tags)
}

func TestGetRecommendations_OutOfStockExcludedByDefault(t *testing.T) {
	service, catalog, sales := newRecommendationFixture(nil)

	inStock := buildProduct("Available", "cat-1", "Shirts", 50)
	outOfStock := buildProduct("Sold Out", "cat-1", "Shirts", 50)
	for i := range outOfStock.Variants {
		outOfStock.Variants[i].Stock = 0
	}

	catalog.On("ListActiveProducts", mock.Anything, "tenant-1").
		Return([]models.Product{outOfStock, inStock}, nil)
	expectInsightQueries(catalog, sales)

	analysis, err := service.GetRecommendations(context.Background(), "tenant-1", &models.RecommendationRequest{
		Type: models.RecommendationNewArrivals,
	})

	require.NoError(t, err)
	require.Len(t, analysis.Recommendations, 1)
	assert.Equal(t, inStock.ID.String(), analysis.Recommendations[0].ID)
}

func TestGetTenantInsights(t *testing.T) {
	service, catalog, sales := newRecommendationFixture(nil)

	catalog.On("CountActiveProducts", mock.Anything, "tenant-1").Return(int64(42), nil)
	sales.On("CountCompletedSales", mock.Anything, "tenant-1").Return(int64(310), nil)
	sales.On("AverageSaleTotal", mock.Anything, "tenant-1").Return(87.5, nil)
	sales.On("TopCategoriesBySales", mock.Anything, "tenant-1", 5).
		Return([]models.TenantCategoryStat{{Name: "Shirts", TotalSold: 120}}, nil)

	insights, err := service.GetTenantInsights(context.Background(), "tenant-1")

	require.NoError(t, err)
	assert.Equal(t, int64(42), insights.TotalProducts)
	assert.Equal(t, int64(310), insights.TotalSales)
	assert.InDelta(t, 87.5, insights.AverageOrderValue, 0.001)
	require.Len(t, insights.TopCategories, 1)
	assert.Equal(t, "Shirts", insights.TopCategories[0].Name)
}
