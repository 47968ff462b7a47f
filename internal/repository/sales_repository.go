package repository

import (
	"context"
	"time"

	"analytics-service/internal/models"
	"gorm.io/gorm"
)

// VariantSalesStat is one row of the bestseller aggregation
type VariantSalesStat struct {
	VariantID string `json:"variantId"`
	TotalSold int    `json:"totalSold"`
	SaleCount int    `json:"saleCount"`
}

// SaleReader is the read-only gateway over sales data
type SaleReader interface {
	ListCompletedSalesByClient(ctx context.Context, tenantID, clientID string, since time.Time) ([]models.Sale, error)
	ListCompletedSalesBetween(ctx context.Context, tenantID string, from, to time.Time) ([]models.Sale, error)
	ListCompletedSaleLinesBetween(ctx context.Context, tenantID string, from, to time.Time) ([]models.SaleLine, error)
	BestsellerStats(ctx context.Context, tenantID string, limit int) ([]VariantSalesStat, error)
	PurchasedProductIDs(ctx context.Context, tenantID, clientID string) ([]string, error)
	LastSaleDates(ctx context.Context, tenantID string) (map[string]time.Time, error)
	CountCompletedSales(ctx context.Context, tenantID string) (int64, error)
	AverageSaleTotal(ctx context.Context, tenantID string) (float64, error)
	TopCategoriesBySales(ctx context.Context, tenantID string, limit int) ([]models.TenantCategoryStat, error)
}

type SalesRepository struct {
	db *gorm.DB
}

func NewSalesRepository(db *gorm.DB) *SalesRepository {
	return &SalesRepository{db: db}
}

// ListCompletedSalesByClient returns a client's completed sales since the given
// date, with line items and variant/product joins, ordered by sale date
func (r *SalesRepository) ListCompletedSalesByClient(ctx context.Context, tenantID, clientID string, since time.Time) ([]models.Sale, error) {
	var sales []models.Sale
	err := r.db.WithContext(ctx).
		Preload("Lines.Variant.Product").
		Where("tenant_id = ? AND client_id = ? AND status = ? AND sale_date >= ?",
			tenantID, clientID, models.SaleStatusCompleted, since).
		Order("sale_date ASC").
		Find(&sales).Error
	return sales, err
}

// ListCompletedSalesBetween returns completed sales in a window with client and line joins
func (r *SalesRepository) ListCompletedSalesBetween(ctx context.Context, tenantID string, from, to time.Time) ([]models.Sale, error) {
	var sales []models.Sale
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Lines").
		Where("tenant_id = ? AND status = ? AND sale_date BETWEEN ? AND ?",
			tenantID, models.SaleStatusCompleted, from, to).
		Order("sale_date ASC").
		Find(&sales).Error
	return sales, err
}

// ListCompletedSaleLinesBetween returns completed sale lines in a window with
// sale and variant/product joins
func (r *SalesRepository) ListCompletedSaleLinesBetween(ctx context.Context, tenantID string, from, to time.Time) ([]models.SaleLine, error) {
	var lines []models.SaleLine
	err := r.db.WithContext(ctx).
		Preload("Sale").
		Preload("Variant.Product").
		Joins("JOIN sales ON sales.id = sale_lines.sale_id").
		Where("sale_lines.tenant_id = ? AND sales.status = ? AND sales.sale_date BETWEEN ? AND ?",
			tenantID, models.SaleStatusCompleted, from, to).
		Order("sales.sale_date DESC").
		Find(&lines).Error
	return lines, err
}

// BestsellerStats aggregates completed sale lines per variant, descending by
// units sold then by distinct sale count, limited to active products
func (r *SalesRepository) BestsellerStats(ctx context.Context, tenantID string, limit int) ([]VariantSalesStat, error) {
	var stats []VariantSalesStat
	err := r.db.WithContext(ctx).
		Table("sale_lines").
		Select("sale_lines.variant_id AS variant_id, SUM(sale_lines.quantity) AS total_sold, COUNT(DISTINCT sale_lines.sale_id) AS sale_count").
		Joins("JOIN sales ON sales.id = sale_lines.sale_id").
		Joins("JOIN product_variants ON product_variants.id = sale_lines.variant_id").
		Joins("JOIN products ON products.id = product_variants.product_id").
		Where("sale_lines.tenant_id = ? AND sales.status = ? AND products.is_active = ?",
			tenantID, models.SaleStatusCompleted, true).
		Group("sale_lines.variant_id").
		Order("total_sold DESC, sale_count DESC").
		Limit(limit).
		Scan(&stats).Error
	return stats, err
}

// PurchasedProductIDs returns the distinct product ids a client has bought in completed sales
func (r *SalesRepository) PurchasedProductIDs(ctx context.Context, tenantID, clientID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Table("sale_lines").
		Distinct("product_variants.product_id").
		Joins("JOIN sales ON sales.id = sale_lines.sale_id").
		Joins("JOIN product_variants ON product_variants.id = sale_lines.variant_id").
		Where("sale_lines.tenant_id = ? AND sales.client_id = ? AND sales.status = ?",
			tenantID, clientID, models.SaleStatusCompleted).
		Pluck("product_variants.product_id", &ids).Error
	return ids, err
}

// LastSaleDates returns the most recent completed sale date per variant
func (r *SalesRepository) LastSaleDates(ctx context.Context, tenantID string) (map[string]time.Time, error) {
	var rows []struct {
		VariantID string
		LastSale  time.Time
	}
	err := r.db.WithContext(ctx).
		Table("sale_lines").
		Select("sale_lines.variant_id AS variant_id, MAX(sales.sale_date) AS last_sale").
		Joins("JOIN sales ON sales.id = sale_lines.sale_id").
		Where("sale_lines.tenant_id = ? AND sales.status = ?", tenantID, models.SaleStatusCompleted).
		Group("sale_lines.variant_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	dates := make(map[string]time.Time, len(rows))
	for _, row := range rows {
		dates[row.VariantID] = row.LastSale
	}
	return dates, nil
}

// CountCompletedSales counts a tenant's completed sales
func (r *SalesRepository) CountCompletedSales(ctx context.Context, tenantID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("tenant_id = ? AND status = ?", tenantID, models.SaleStatusCompleted).
		Count(&count).Error
	return count, err
}

// AverageSaleTotal returns the mean total across a tenant's completed sales
func (r *SalesRepository) AverageSaleTotal(ctx context.Context, tenantID string) (float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Select("AVG(total)").
		Where("tenant_id = ? AND status = ?", tenantID, models.SaleStatusCompleted).
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}

// TopCategoriesBySales returns the categories with the most units sold
func (r *SalesRepository) TopCategoriesBySales(ctx context.Context, tenantID string, limit int) ([]models.TenantCategoryStat, error) {
	var rows []struct {
		Name      string
		TotalSold int
	}
	err := r.db.WithContext(ctx).
		Table("sale_lines").
		Select("products.category AS name, SUM(sale_lines.quantity) AS total_sold").
		Joins("JOIN sales ON sales.id = sale_lines.sale_id").
		Joins("JOIN product_variants ON product_variants.id = sale_lines.variant_id").
		Joins("JOIN products ON products.id = product_variants.product_id").
		Where("sale_lines.tenant_id = ? AND sales.status = ?", tenantID, models.SaleStatusCompleted).
		Group("products.category").
		Order("total_sold DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := make([]models.TenantCategoryStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, models.TenantCategoryStat{Name: row.Name, TotalSold: row.TotalSold})
	}
	return stats, nil
}
