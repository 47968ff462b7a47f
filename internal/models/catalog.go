package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// StringArray type for PostgreSQL JSONB (array of strings)
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = make(StringArray, 0)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// Product represents a catalog product as shared with the catalog services.
// Performance indexes: Composite indexes on tenant_id with frequently filtered columns
// for multi-tenant queries
type Product struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID    string      `json:"tenantId" gorm:"not null;index:idx_products_tenant_id;index:idx_products_tenant_active;index:idx_products_tenant_category"`
	Name        string      `json:"name" gorm:"not null"`
	Description *string     `json:"description,omitempty"`
	CategoryID  string      `json:"categoryId" gorm:"not null;index:idx_products_tenant_category"`
	Category    string      `json:"category" gorm:"not null"`
	Subcategory string      `json:"subcategory"`
	IsActive    bool        `json:"isActive" gorm:"not null;default:true;index:idx_products_tenant_active"`
	Images      StringArray `json:"images" gorm:"type:jsonb"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`

	Variants []ProductVariant `json:"variants,omitempty" gorm:"foreignKey:ProductID"`
}

// ProductVariant is a sellable color/size combination of a product
type ProductVariant struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID  string    `json:"tenantId" gorm:"not null;index:idx_variants_tenant_id"`
	ProductID uuid.UUID `json:"productId" gorm:"type:uuid;not null;index"`
	Color     string    `json:"color"`
	Size      string    `json:"size"`
	Price     float64   `json:"price" gorm:"not null"`
	Stock     int       `json:"stock" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// Client represents a storefront customer
type Client struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID  string    `json:"tenantId" gorm:"not null;index:idx_clients_tenant_id"`
	FullName  string    `json:"fullName" gorm:"not null"`
	Email     string    `json:"email" gorm:"index"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Supplier represents an inventory supplier
type Supplier struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID  string    `json:"tenantId" gorm:"not null;index:idx_suppliers_tenant_id;index:idx_suppliers_tenant_active"`
	Name      string    `json:"name" gorm:"not null"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	IsActive  bool      `json:"isActive" gorm:"not null;default:true;index:idx_suppliers_tenant_active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AveragePrice returns the mean variant price, 0 when the product has no variants
func (p *Product) AveragePrice() float64 {
	if len(p.Variants) == 0 {
		return 0
	}
	var sum float64
	for _, v := range p.Variants {
		sum += v.Price
	}
	return sum / float64(len(p.Variants))
}

// PriceBounds returns the min/max variant prices, (0, 0) when the product has no variants
func (p *Product) PriceBounds() (float64, float64) {
	if len(p.Variants) == 0 {
		return 0, 0
	}
	min, max := p.Variants[0].Price, p.Variants[0].Price
	for _, v := range p.Variants[1:] {
		if v.Price < min {
			min = v.Price
		}
		if v.Price > max {
			max = v.Price
		}
	}
	return min, max
}

// InStock reports whether any variant has remaining stock
func (p *Product) InStock() bool {
	for _, v := range p.Variants {
		if v.Stock > 0 {
			return true
		}
	}
	return false
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// TableName returns the table name for the ProductVariant model
func (ProductVariant) TableName() string {
	return "product_variants"
}

// TableName returns the table name for the Client model
func (Client) TableName() string {
	return "clients"
}

// TableName returns the table name for the Supplier model
func (Supplier) TableName() string {
	return "suppliers"
}
