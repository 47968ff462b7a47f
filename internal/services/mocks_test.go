package services

import (
	"context"
	"io"
	"time"

	"analytics-service/internal/models"
	"analytics-service/internal/repository"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// MockCatalogReader is a mock implementation of repository.CatalogReader
type MockCatalogReader struct {
	mock.Mock
}

var _ repository.CatalogReader = (*MockCatalogReader)(nil)

func (m *MockCatalogReader) GetProduct(ctx context.Context, tenantID, productID string) (*models.Product, error) {
	args := m.Called(ctx, tenantID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockCatalogReader) ListActiveProducts(ctx context.Context, tenantID string) ([]models.Product, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockCatalogReader) CountActiveProducts(ctx context.Context, tenantID string) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCatalogReader) CountCategories(ctx context.Context, tenantID string) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCatalogReader) GetClient(ctx context.Context, tenantID, clientID string) (*models.Client, error) {
	args := m.Called(ctx, tenantID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

// MockSaleReader is a mock implementation of repository.SaleReader
type MockSaleReader struct {
	mock.Mock
}

var _ repository.SaleReader = (*MockSaleReader)(nil)

func (m *MockSaleReader) ListCompletedSalesByClient(ctx context.Context, tenantID, clientID string, since time.Time) ([]models.Sale, error) {
	args := m.Called(ctx, tenantID, clientID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Sale), args.Error(1)
}

func (m *MockSaleReader) ListCompletedSalesBetween(ctx context.Context, tenantID string, from, to time.Time) ([]models.Sale, error) {
	args := m.Called(ctx, tenantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Sale), args.Error(1)
}

func (m *MockSaleReader) ListCompletedSaleLinesBetween(ctx context.Context, tenantID string, from, to time.Time) ([]models.SaleLine, error) {
	args := m.Called(ctx, tenantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SaleLine), args.Error(1)
}

func (m *MockSaleReader) BestsellerStats(ctx context.Context, tenantID string, limit int) ([]repository.VariantSalesStat, error) {
	args := m.Called(ctx, tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.VariantSalesStat), args.Error(1)
}

func (m *MockSaleReader) PurchasedProductIDs(ctx context.Context, tenantID, clientID string) ([]string, error) {
	args := m.Called(ctx, tenantID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSaleReader) LastSaleDates(ctx context.Context, tenantID string) (map[string]time.Time, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]time.Time), args.Error(1)
}

func (m *MockSaleReader) CountCompletedSales(ctx context.Context, tenantID string) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleReader) AverageSaleTotal(ctx context.Context, tenantID string) (float64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockSaleReader) TopCategoriesBySales(ctx context.Context, tenantID string, limit int) ([]models.TenantCategoryStat, error) {
	args := m.Called(ctx, tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TenantCategoryStat), args.Error(1)
}

// MockInventoryReader is a mock implementation of repository.InventoryReader
type MockInventoryReader struct {
	mock.Mock
}

var _ repository.InventoryReader = (*MockInventoryReader)(nil)

func (m *MockInventoryReader) ListActiveVariants(ctx context.Context, tenantID string) ([]models.ProductVariant, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProductVariant), args.Error(1)
}

func (m *MockInventoryReader) ListLowStockVariants(ctx context.Context, tenantID string, threshold int, categoryID string) ([]models.ProductVariant, error) {
	args := m.Called(ctx, tenantID, threshold, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProductVariant), args.Error(1)
}

func (m *MockInventoryReader) ListReceiptsBetween(ctx context.Context, tenantID string, from, to time.Time) ([]models.InventoryReceipt, error) {
	args := m.Called(ctx, tenantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.InventoryReceipt), args.Error(1)
}

func (m *MockInventoryReader) ListReceiptsBySupplier(ctx context.Context, tenantID, supplierID string, from, to *time.Time) ([]models.InventoryReceipt, error) {
	args := m.Called(ctx, tenantID, supplierID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.InventoryReceipt), args.Error(1)
}

func (m *MockInventoryReader) ListActiveSuppliers(ctx context.Context, tenantID string) ([]models.Supplier, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Supplier), args.Error(1)
}

func (m *MockInventoryReader) LastReceiptDates(ctx context.Context, tenantID string) (map[string]time.Time, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]time.Time), args.Error(1)
}

// MockRanker is a mock implementation of the Ranker interface
type MockRanker struct {
	mock.Mock
}

var _ Ranker = (*MockRanker)(nil)

func (m *MockRanker) Rank(ctx context.Context, req models.RankingRequest) ([]models.RankedItem, bool) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]models.RankedItem), args.Bool(1)
}
