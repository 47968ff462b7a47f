package repository

import (
	"context"
	"time"

	"analytics-service/internal/models"
	"gorm.io/gorm"
)

// InventoryReader is the read-only gateway over variant stock and supplier receipts
type InventoryReader interface {
	ListActiveVariants(ctx context.Context, tenantID string) ([]models.ProductVariant, error)
	ListLowStockVariants(ctx context.Context, tenantID string, threshold int, categoryID string) ([]models.ProductVariant, error)
	ListReceiptsBetween(ctx context.Context, tenantID string, from, to time.Time) ([]models.InventoryReceipt, error)
	ListReceiptsBySupplier(ctx context.Context, tenantID, supplierID string, from, to *time.Time) ([]models.InventoryReceipt, error)
	ListActiveSuppliers(ctx context.Context, tenantID string) ([]models.Supplier, error)
	LastReceiptDates(ctx context.Context, tenantID string) (map[string]time.Time, error)
}

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// ListActiveVariants returns all variants of active products with product joins
func (r *InventoryRepository) ListActiveVariants(ctx context.Context, tenantID string) ([]models.ProductVariant, error) {
	var variants []models.ProductVariant
	err := r.db.WithContext(ctx).
		Preload("Product").
		Joins("JOIN products ON products.id = product_variants.product_id").
		Where("product_variants.tenant_id = ? AND products.is_active = ?", tenantID, true).
		Find(&variants).Error
	return variants, err
}

// ListLowStockVariants returns variants of active products at or below the threshold,
// optionally narrowed to one category, ordered by stock ascending
func (r *InventoryRepository) ListLowStockVariants(ctx context.Context, tenantID string, threshold int, categoryID string) ([]models.ProductVariant, error) {
	query := r.db.WithContext(ctx).
		Preload("Product").
		Joins("JOIN products ON products.id = product_variants.product_id").
		Where("product_variants.tenant_id = ? AND products.is_active = ? AND product_variants.stock <= ?",
			tenantID, true, threshold)

	if categoryID != "" {
		query = query.Where("products.category_id = ?", categoryID)
	}

	var variants []models.ProductVariant
	err := query.Order("product_variants.stock ASC").Find(&variants).Error
	return variants, err
}

// ListReceiptsBetween returns inventory receipts in a window with supplier and line joins
func (r *InventoryRepository) ListReceiptsBetween(ctx context.Context, tenantID string, from, to time.Time) ([]models.InventoryReceipt, error) {
	var receipts []models.InventoryReceipt
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Lines.Variant.Product").
		Where("tenant_id = ? AND received_at BETWEEN ? AND ?", tenantID, from, to).
		Order("received_at DESC").
		Find(&receipts).Error
	return receipts, err
}

// ListReceiptsBySupplier returns a supplier's receipts ordered by receipt date,
// optionally bounded to a window
func (r *InventoryRepository) ListReceiptsBySupplier(ctx context.Context, tenantID, supplierID string, from, to *time.Time) ([]models.InventoryReceipt, error) {
	query := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND supplier_id = ?", tenantID, supplierID)

	if from != nil && to != nil {
		query = query.Where("received_at BETWEEN ? AND ?", *from, *to)
	}

	var receipts []models.InventoryReceipt
	err := query.Order("received_at ASC").Find(&receipts).Error
	return receipts, err
}

// ListActiveSuppliers returns a tenant's active suppliers
func (r *InventoryRepository) ListActiveSuppliers(ctx context.Context, tenantID string) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("name ASC").
		Find(&suppliers).Error
	return suppliers, err
}

// LastReceiptDates returns the most recent receipt date per variant
func (r *InventoryRepository) LastReceiptDates(ctx context.Context, tenantID string) (map[string]time.Time, error) {
	var rows []struct {
		VariantID   string
		LastReceipt time.Time
	}
	err := r.db.WithContext(ctx).
		Table("receipt_lines").
		Select("receipt_lines.variant_id AS variant_id, MAX(inventory_receipts.received_at) AS last_receipt").
		Joins("JOIN inventory_receipts ON inventory_receipts.id = receipt_lines.receipt_id").
		Where("receipt_lines.tenant_id = ?", tenantID).
		Group("receipt_lines.variant_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	dates := make(map[string]time.Time, len(rows))
	for _, row := range rows {
		dates[row.VariantID] = row.LastReceipt
	}
	return dates, nil
}
