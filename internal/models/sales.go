package models

import (
	"time"

	"github.com/google/uuid"
)

// SaleStatus represents the lifecycle state of a sale
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusCancelled SaleStatus = "cancelled"
)

// Sale represents a storefront sale transaction
type Sale struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID  string     `json:"tenantId" gorm:"not null;index:idx_sales_tenant_id;index:idx_sales_tenant_status;index:idx_sales_tenant_client"`
	ClientID  uuid.UUID  `json:"clientId" gorm:"type:uuid;not null;index:idx_sales_tenant_client"`
	SoldBy    *string    `json:"soldBy,omitempty"`
	Status    SaleStatus `json:"status" gorm:"not null;default:'completed';index:idx_sales_tenant_status"`
	Subtotal  float64    `json:"subtotal" gorm:"not null"`
	Total     float64    `json:"total" gorm:"not null"`
	SaleDate  time.Time  `json:"saleDate" gorm:"not null;index"`
	CreatedAt time.Time  `json:"createdAt"`

	Client *Client    `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Lines  []SaleLine `json:"lines,omitempty" gorm:"foreignKey:SaleID"`
}

// SaleLine is one variant position inside a sale
type SaleLine struct {
	SaleID    uuid.UUID `json:"saleId" gorm:"type:uuid;primaryKey"`
	VariantID uuid.UUID `json:"variantId" gorm:"type:uuid;primaryKey;index"`
	TenantID  string    `json:"tenantId" gorm:"not null;index:idx_sale_lines_tenant_id"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	UnitPrice float64   `json:"unitPrice" gorm:"not null"`

	Sale    *Sale           `json:"sale,omitempty" gorm:"foreignKey:SaleID"`
	Variant *ProductVariant `json:"variant,omitempty" gorm:"foreignKey:VariantID"`
}

// InventoryReceipt represents a stock purchase received from a supplier
type InventoryReceipt struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID    string    `json:"tenantId" gorm:"not null;index:idx_receipts_tenant_id;index:idx_receipts_tenant_supplier"`
	SupplierID  uuid.UUID `json:"supplierId" gorm:"type:uuid;not null;index:idx_receipts_tenant_supplier"`
	ReceivedBy  *string   `json:"receivedBy,omitempty"`
	TotalAmount float64   `json:"totalAmount" gorm:"not null"`
	ReceivedAt  time.Time `json:"receivedAt" gorm:"not null;index"`
	CreatedAt   time.Time `json:"createdAt"`

	Supplier *Supplier     `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	Lines    []ReceiptLine `json:"lines,omitempty" gorm:"foreignKey:ReceiptID"`
}

// ReceiptLine is one variant position inside an inventory receipt
type ReceiptLine struct {
	ReceiptID uuid.UUID `json:"receiptId" gorm:"type:uuid;primaryKey"`
	VariantID uuid.UUID `json:"variantId" gorm:"type:uuid;primaryKey;index"`
	TenantID  string    `json:"tenantId" gorm:"not null;index:idx_receipt_lines_tenant_id"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	UnitCost  float64   `json:"unitCost" gorm:"not null"`

	Receipt *InventoryReceipt `json:"receipt,omitempty" gorm:"foreignKey:ReceiptID"`
	Variant *ProductVariant   `json:"variant,omitempty" gorm:"foreignKey:VariantID"`
}

// ItemCount returns the total units across the sale's lines
func (s *Sale) ItemCount() int {
	count := 0
	for _, line := range s.Lines {
		count += line.Quantity
	}
	return count
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

// TableName returns the table name for the SaleLine model
func (SaleLine) TableName() string {
	return "sale_lines"
}

// TableName returns the table name for the InventoryReceipt model
func (InventoryReceipt) TableName() string {
	return "inventory_receipts"
}

// TableName returns the table name for the ReceiptLine model
func (ReceiptLine) TableName() string {
	return "receipt_lines"
}
