package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry owned by a company. Code is unique per company.
type Product struct {
	BaseModel
	CompanyID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_products_company_code" json:"company_id"`
	Code         string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_products_company_code" json:"code"`
	Name         string          `gorm:"type:varchar(100);not null" json:"name"`
	Category     string          `gorm:"type:varchar(50)" json:"category"`
	Brand        string          `gorm:"type:varchar(100)" json:"brand"`
	Model        string          `gorm:"type:varchar(100)" json:"model"`
	Description  string          `gorm:"type:varchar(500)" json:"description"`
	CurrentStock int             `gorm:"not null;default:0" json:"current_stock"`
	MinimumStock int             `gorm:"not null;default:0" json:"minimum_stock"`
	Price        decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"price"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(14,2)" json:"cost_price"`
	TaxIncluded  bool            `gorm:"not null" json:"tax_included"`

	Company     *Company       `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Purchases   []PurchaseInfo `gorm:"constraint:OnDelete:CASCADE;" json:"purchases,omitempty"`
	SaleRecords []SaleRecord   `gorm:"constraint:OnDelete:CASCADE;" json:"sale_records,omitempty"`
}

// BelowMinimum reports whether stock has reached the advisory reorder threshold.
func (p *Product) BelowMinimum() bool {
	return p.CurrentStock <= p.MinimumStock
}
