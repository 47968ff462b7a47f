package repository

import (
	"context"
	"fmt"
	"time"

	"analytics-service/internal/models"
	"github.com/Tesseract-Nexus/go-shared/cache"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Cache TTL constants. Only catalog reads are cached; derived analytics are
// recomputed per request.
const (
	ProductCacheTTL     = 5 * time.Minute
	ProductListCacheTTL = 2 * time.Minute
)

// CatalogReader is the read-only gateway over catalog data
type CatalogReader interface {
	GetProduct(ctx context.Context, tenantID, productID string) (*models.Product, error)
	ListActiveProducts(ctx context.Context, tenantID string) ([]models.Product, error)
	CountActiveProducts(ctx context.Context, tenantID string) (int64, error)
	CountCategories(ctx context.Context, tenantID string) (int64, error)
	GetClient(ctx context.Context, tenantID, clientID string) (*models.Client, error)
}

type CatalogRepository struct {
	db    *gorm.DB
	redis *redis.Client
	cache *cache.CacheLayer
}

func NewCatalogRepository(db *gorm.DB, redisClient *redis.Client) *CatalogRepository {
	repo := &CatalogRepository{
		db:    db,
		redis: redisClient,
	}

	// Initialize CacheLayer with the existing Redis client
	if redisClient != nil {
		cacheConfig := cache.CacheConfig{
			L1Enabled:  true,
			L1MaxItems: 5000,
			L1TTL:      30 * time.Second,
			DefaultTTL: ProductCacheTTL,
			KeyPrefix:  "tesseract:analytics:",
		}
		repo.cache = cache.NewCacheLayerFromClient(redisClient, cacheConfig)
	}

	return repo
}

// GetProduct retrieves a product with its variants, cached
func (r *CatalogRepository) GetProduct(ctx context.Context, tenantID, productID string) (*models.Product, error) {
	fetch := func() (*models.Product, error) {
		var product models.Product
		if err := r.db.WithContext(ctx).
			Preload("Variants").
			Where("tenant_id = ? AND id = ?", tenantID, productID).
			First(&product).Error; err != nil {
			return nil, translateError(err)
		}
		return &product, nil
	}

	if r.cache != nil {
		cacheKey := fmt.Sprintf("product:%s:%s", tenantID, productID)
		var product models.Product
		err := r.cache.GetOrSetJSON(ctx, cacheKey, &product, ProductCacheTTL, func() (any, error) {
			return fetch()
		})
		if err != nil {
			return nil, translateError(err)
		}
		return &product, nil
	}

	return fetch()
}

// ListActiveProducts retrieves all active products with variants for a tenant, cached
func (r *CatalogRepository) ListActiveProducts(ctx context.Context, tenantID string) ([]models.Product, error) {
	fetch := func() ([]models.Product, error) {
		var products []models.Product
		if err := r.db.WithContext(ctx).
			Preload("Variants").
			Where("tenant_id = ? AND is_active = ?", tenantID, true).
			Order("created_at DESC").
			Find(&products).Error; err != nil {
			return nil, err
		}
		return products, nil
	}

	if r.cache != nil {
		cacheKey := fmt.Sprintf("products:active:%s", tenantID)
		var products []models.Product
		err := r.cache.GetOrSetJSON(ctx, cacheKey, &products, ProductListCacheTTL, func() (any, error) {
			return fetch()
		})
		if err != nil {
			return nil, err
		}
		return products, nil
	}

	return fetch()
}

// CountActiveProducts counts a tenant's active products
func (r *CatalogRepository) CountActiveProducts(ctx context.Context, tenantID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Count(&count).Error
	return count, err
}

// CountCategories counts the distinct categories among a tenant's active products
func (r *CatalogRepository) CountCategories(ctx context.Context, tenantID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Distinct("category_id").
		Count(&count).Error
	return count, err
}

// GetClient retrieves a client by id
func (r *CatalogRepository) GetClient(ctx context.Context, tenantID, clientID string) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, clientID).
		First(&client).Error; err != nil {
		return nil, translateError(err)
	}
	return &client, nil
}
