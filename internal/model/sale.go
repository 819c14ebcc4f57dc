package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleStatus is the order state of a sale.
type SaleStatus string

const (
	SalePending    SaleStatus = "pending"
	SaleProcessing SaleStatus = "processing"
	SaleShipped    SaleStatus = "shipped"
	SaleDelivered  SaleStatus = "delivered"
	SaleCancelled  SaleStatus = "cancelled"
	SaleReturned   SaleStatus = "returned"
)

// saleTransitions lists the statuses reachable from each status. Cancelled and
// returned are terminal.
var saleTransitions = map[SaleStatus][]SaleStatus{
	SalePending:    {SaleProcessing, SaleCancelled},
	SaleProcessing: {SaleShipped, SaleCancelled},
	SaleShipped:    {SaleDelivered, SaleReturned},
	SaleDelivered:  {SaleReturned},
}

// Valid reports whether s is a known status.
func (s SaleStatus) Valid() bool {
	switch s {
	case SalePending, SaleProcessing, SaleShipped, SaleDelivered, SaleCancelled, SaleReturned:
		return true
	}
	return false
}

// CanTransitionTo reports whether a sale may move from s to next. Staying in
// the same status is always allowed.
func (s SaleStatus) CanTransitionTo(next SaleStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range saleTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SalePaymentStatus tracks customer payment for a sale.
type SalePaymentStatus string

const (
	SaleUnpaid   SalePaymentStatus = "unpaid"
	SalePartial  SalePaymentStatus = "partial"
	SalePaid     SalePaymentStatus = "paid"
	SaleRefunded SalePaymentStatus = "refunded"
)

// Valid reports whether s is a known payment status.
func (s SalePaymentStatus) Valid() bool {
	switch s {
	case SaleUnpaid, SalePartial, SalePaid, SaleRefunded:
		return true
	}
	return false
}

// SaleRecord is one sales ledger row. Creating it removes Quantity from the
// product's stock.
type SaleRecord struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	SaleDate   time.Time       `gorm:"not null;index" json:"sale_date"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_price"`

	CustomerName    string `gorm:"type:varchar(100)" json:"customer_name"`
	CustomerContact string `gorm:"type:varchar(100)" json:"customer_contact"`
	CustomerPhone   string `gorm:"type:varchar(20)" json:"customer_phone"`
	CustomerEmail   string `gorm:"type:varchar(100)" json:"customer_email"`
	InvoiceNumber   string `gorm:"type:varchar(50)" json:"invoice_number"`

	Status          SaleStatus `gorm:"type:varchar(20);not null" json:"status"`
	TrackingNumber  string     `gorm:"type:varchar(100)" json:"tracking_number"`
	ShippingCarrier string     `gorm:"type:varchar(50)" json:"shipping_carrier"`
	ShippingAddress string     `gorm:"type:text" json:"shipping_address"`

	PaymentMethod string            `gorm:"type:varchar(50)" json:"payment_method"`
	PaymentStatus SalePaymentStatus `gorm:"type:varchar(20);not null" json:"payment_status"`
	PaidAmount    decimal.Decimal   `gorm:"type:decimal(14,2)" json:"paid_amount"`
	PaidDate      *time.Time        `json:"paid_date,omitempty"`

	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;index" json:"created_by"`
	Creator   *User     `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
}

// SaleTotal is quantity × unit price.
func SaleTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// Recalculate refreshes TotalPrice from quantity and unit price.
func (s *SaleRecord) Recalculate() {
	s.TotalPrice = SaleTotal(s.Quantity, s.UnitPrice)
}

// ApplyPayment accumulates a customer payment and recomputes the payment status.
func (s *SaleRecord) ApplyPayment(amount decimal.Decimal, paidAt *time.Time, method string) {
	s.PaidAmount = s.PaidAmount.Add(amount)
	if paidAt != nil {
		s.PaidDate = paidAt
	}
	if method != "" {
		s.PaymentMethod = method
	}
	switch {
	case s.PaidAmount.GreaterThanOrEqual(s.TotalPrice):
		s.PaymentStatus = SalePaid
	case s.PaidAmount.IsPositive():
		s.PaymentStatus = SalePartial
	}
}
