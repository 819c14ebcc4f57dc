package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus tracks how much of a purchase has been settled with the supplier.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentOverdue PaymentStatus = "OVERDUE"
)

// DefaultTaxRate is applied when a purchase does not name one.
var DefaultTaxRate = decimal.NewFromInt(10)

var hundred = decimal.NewFromInt(100)

// PurchaseInfo is one procurement ledger row. Creating it adds Quantity to the
// product's stock.
type PurchaseInfo struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	SupplierName           string `gorm:"type:varchar(100);not null" json:"supplier_name"`
	SupplierBusinessNumber string `gorm:"type:varchar(20)" json:"supplier_business_number"`
	SupplierContact        string `gorm:"type:varchar(100)" json:"supplier_contact"`
	SupplierAddress        string `gorm:"type:text" json:"supplier_address"`
	SupplierPhone          string `gorm:"type:varchar(20)" json:"supplier_phone"`
	SupplierEmail          string `gorm:"type:varchar(100)" json:"supplier_email"`

	InvoiceNumber        string     `gorm:"type:varchar(50)" json:"invoice_number"`
	PurchaseDate         time.Time  `gorm:"not null;index" json:"purchase_date"`
	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date,omitempty"`
	ActualDeliveryDate   *time.Time `json:"actual_delivery_date,omitempty"`

	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"unit_price"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(5,2)" json:"tax_rate"`
	TaxIncluded bool            `gorm:"not null" json:"tax_included"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(14,2)" json:"tax_amount"`
	Discount    decimal.Decimal `gorm:"type:decimal(14,2)" json:"discount"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_price"`

	PaymentTerms   string          `gorm:"type:varchar(50)" json:"payment_terms"`
	PaymentDueDate *time.Time      `json:"payment_due_date,omitempty"`
	PaymentStatus  PaymentStatus   `gorm:"type:varchar(20);not null" json:"payment_status"`
	PaymentMethod  string          `gorm:"type:varchar(50)" json:"payment_method"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(14,2)" json:"paid_amount"`
	PaidDate       *time.Time      `json:"paid_date,omitempty"`

	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;index" json:"created_by"`
	Creator   *User     `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
}

// PurchaseTotal returns (tax, total) for a purchase line. When taxIncluded is
// false the tax is not charged and the returned tax is zero.
func PurchaseTotal(quantity int, unitPrice, taxRate, discount decimal.Decimal, taxIncluded bool) (decimal.Decimal, decimal.Decimal) {
	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	tax := decimal.Zero
	if taxIncluded {
		tax = subtotal.Mul(taxRate).Div(hundred)
	}
	return tax.Round(2), subtotal.Add(tax).Sub(discount).Round(2)
}

// Recalculate refreshes TaxAmount and TotalPrice from the line fields.
func (p *PurchaseInfo) Recalculate() {
	p.TaxAmount, p.TotalPrice = PurchaseTotal(p.Quantity, p.UnitPrice, p.TaxRate, p.Discount, p.TaxIncluded)
}

// ApplyPayment accumulates amount into PaidAmount and recomputes the status.
// A status is only raised by a payment: a zero running total leaves it alone.
// An unpaid balance past its due date is OVERDUE.
func (p *PurchaseInfo) ApplyPayment(amount decimal.Decimal, paidAt *time.Time, method string, now time.Time) {
	p.PaidAmount = p.PaidAmount.Add(amount)
	if paidAt != nil {
		p.PaidDate = paidAt
	}
	if method != "" {
		p.PaymentMethod = method
	}

	switch {
	case p.PaidAmount.GreaterThanOrEqual(p.TotalPrice):
		p.PaymentStatus = PaymentPaid
	case p.PaidAmount.IsPositive():
		p.PaymentStatus = PaymentPartial
	default:
		p.PaymentStatus = PaymentPending
	}

	if p.PaymentDueDate != nil && now.After(*p.PaymentDueDate) && p.PaymentStatus != PaymentPaid {
		p.PaymentStatus = PaymentOverdue
	}
}
