package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-inventory-mt/internal/apperr"
	"go-inventory-mt/internal/authz"
	"go-inventory-mt/internal/metrics"
	"go-inventory-mt/internal/model"
	"go-inventory-mt/internal/repository"
	"go-inventory-mt/pkg/validator"
)

const ledgerPurchase = "purchase"

type CreatePurchaseRequest struct {
	ProductID              uuid.UUID        `json:"product_id" validate:"uuid_required"`
	SupplierName           string           `json:"supplier_name" validate:"required,max=100"`
	SupplierBusinessNumber string           `json:"supplier_business_number" validate:"max=20"`
	SupplierContact        string           `json:"supplier_contact" validate:"max=100"`
	SupplierAddress        string           `json:"supplier_address"`
	SupplierPhone          string           `json:"supplier_phone" validate:"max=20"`
	SupplierEmail          string           `json:"supplier_email" validate:"omitempty,email,max=100"`
	InvoiceNumber          string           `json:"invoice_number" validate:"max=50"`
	PurchaseDate           *time.Time       `json:"purchase_date"`
	ExpectedDeliveryDate   *time.Time       `json:"expected_delivery_date"`
	ActualDeliveryDate     *time.Time       `json:"actual_delivery_date"`
	Quantity               int              `json:"quantity" validate:"gt=0"`
	UnitPrice              decimal.Decimal  `json:"unit_price" validate:"gt=0"`
	TaxRate                *decimal.Decimal `json:"tax_rate" validate:"omitempty,gte=0,lte=100"`
	TaxIncluded            *bool            `json:"tax_included"`
	Discount               decimal.Decimal  `json:"discount" validate:"gte=0"`
	PaymentTerms           string           `json:"payment_terms" validate:"max=50"`
	PaymentDueDate         *time.Time       `json:"payment_due_date"`
	PaymentMethod          string           `json:"payment_method" validate:"max=50"`
	Notes                  string           `json:"notes"`
}

type UpdatePurchaseRequest struct {
	SupplierName           *string          `json:"supplier_name" validate:"omitnil,min=1,max=100"`
	SupplierBusinessNumber *string          `json:"supplier_business_number" validate:"omitempty,max=20"`
	SupplierContact        *string          `json:"supplier_contact" validate:"omitempty,max=100"`
	SupplierAddress        *string          `json:"supplier_address"`
	SupplierPhone          *string          `json:"supplier_phone" validate:"omitempty,max=20"`
	SupplierEmail          *string          `json:"supplier_email" validate:"omitempty,email,max=100"`
	InvoiceNumber          *string          `json:"invoice_number" validate:"omitempty,max=50"`
	PurchaseDate           *time.Time       `json:"purchase_date"`
	ExpectedDeliveryDate   *time.Time       `json:"expected_delivery_date"`
	ActualDeliveryDate     *time.Time       `json:"actual_delivery_date"`
	Quantity               *int             `json:"quantity" validate:"omitempty,gt=0"`
	UnitPrice              *decimal.Decimal `json:"unit_price" validate:"omitempty,gt=0"`
	TaxRate                *decimal.Decimal `json:"tax_rate" validate:"omitempty,gte=0,lte=100"`
	TaxIncluded            *bool            `json:"tax_included"`
	Discount               *decimal.Decimal `json:"discount" validate:"omitempty,gte=0"`
	PaymentTerms           *string          `json:"payment_terms" validate:"omitempty,max=50"`
	PaymentDueDate         *time.Time       `json:"payment_due_date"`
	Notes                  *string          `json:"notes"`
}

type PaymentRequest struct {
	Amount   decimal.Decimal `json:"amount" validate:"gt=0"`
	PaidDate *time.Time      `json:"paid_date"`
	Method   string          `json:"payment_method" validate:"max=50"`
}

type PurchaseQuery struct {
	ProductID     *uuid.UUID
	Supplier      string
	From          *time.Time
	To            *time.Time
	PaymentStatus model.PaymentStatus
	Page          repository.Page
}

type PurchaseService interface {
	CreatePurchase(c *authz.Caller, req CreatePurchaseRequest) (*model.PurchaseInfo, error)
	GetPurchase(c *authz.Caller, id uuid.UUID) (*model.PurchaseInfo, error)
	UpdatePurchase(c *authz.Caller, id uuid.UUID, req UpdatePurchaseRequest) (*model.PurchaseInfo, error)
	DeletePurchase(c *authz.Caller, id uuid.UUID) error
	RecordPayment(c *authz.Caller, id uuid.UUID, req PaymentRequest) (*model.PurchaseInfo, error)
	ListPurchases(c *authz.Caller, q PurchaseQuery) (*PageResult[model.PurchaseInfo], error)
}

type purchaseService struct {
	db           *gorm.DB
	purchaseRepo repository.PurchaseRepository
	productRepo  repository.ProductRepository
	events       publisher
	metrics      *metrics.Metrics
	log          *zap.Logger
	now          func() time.Time
}

func NewPurchaseService(db *gorm.DB, purchaseRepo repository.PurchaseRepository, productRepo repository.ProductRepository, notifier StockNotifier, m *metrics.Metrics, log *zap.Logger) PurchaseService {
	return &purchaseService{
		db:           db,
		purchaseRepo: purchaseRepo,
		productRepo:  productRepo,
		events:       publisher{notifier},
		metrics:      m,
		log:          log,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *purchaseService) CreatePurchase(c *authz.Caller, req CreatePurchaseRequest) (*model.PurchaseInfo, error) {
	if err := requireCaller(c); err != nil {
		return nil, err
	}
	req.SupplierName = strings.TrimSpace(req.SupplierName)
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	var purchase *model.PurchaseInfo
	var product *model.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)
		var err error
		product, err = products.FindForUpdate(req.ProductID)
		if err != nil {
			return storeErr(err, "product")
		}
		if err := authz.CanRecordLedger(c, product.CompanyID); err != nil {
			return err
		}

		taxRate := model.DefaultTaxRate
		if req.TaxRate != nil {
			taxRate = *req.TaxRate
		}
		taxIncluded := product.TaxIncluded
		if req.TaxIncluded != nil {
			taxIncluded = *req.TaxIncluded
		}

		purchase = &model.PurchaseInfo{
			ProductID:              product.ID,
			SupplierName:           req.SupplierName,
			SupplierBusinessNumber: req.SupplierBusinessNumber,
			SupplierContact:        req.SupplierContact,
			SupplierAddress:        req.SupplierAddress,
			SupplierPhone:          req.SupplierPhone,
			SupplierEmail:          req.SupplierEmail,
			InvoiceNumber:          req.InvoiceNumber,
			PurchaseDate:           orNow(req.PurchaseDate, s.now()),
			ExpectedDeliveryDate:   utcPtr(req.ExpectedDeliveryDate),
			ActualDeliveryDate:     utcPtr(req.ActualDeliveryDate),
			Quantity:               req.Quantity,
			UnitPrice:              req.UnitPrice,
			TaxRate:                taxRate,
			TaxIncluded:            taxIncluded,
			Discount:               req.Discount,
			PaymentTerms:           req.PaymentTerms,
			PaymentDueDate:         utcPtr(req.PaymentDueDate),
			PaymentStatus:          model.PaymentPending,
			PaymentMethod:          req.PaymentMethod,
			Notes:                  req.Notes,
			CreatedBy:              c.UserID,
		}
		purchase.Recalculate()
		if purchase.TotalPrice.IsNegative() {
			return apperr.Validation("discount exceeds the purchase amount")
		}

		if err := s.purchaseRepo.WithTx(tx).Create(purchase); err != nil {
			return storeErr(err, "purchase")
		}
		if err := products.AddStock(product.ID, purchase.Quantity); err != nil {
			return storeErr(err, "product")
		}
		product.CurrentStock += purchase.Quantity
		return nil
	})
	if err != nil {
		return nil, err
	}

	purchase.Product = product
	s.stockMoved(c, "purchase_created", product, purchase.Quantity,
		fmt.Sprintf("%s purchased %s", c.Username, units(purchase.Quantity, product.Name)))
	return purchase, nil
}

func (s *purchaseService) GetPurchase(c *authz.Caller, id uuid.UUID) (*model.PurchaseInfo, error) {
	if err := requireCaller(c); err != nil {
		return nil, err
	}
	purchase, err := s.purchaseRepo.FindByID(id)
	if err != nil {
		return nil, storeErr(err, "purchase")
	}
	if err := authz.CanAccessCompany(c, purchase.Product.CompanyID); err != nil {
		return nil, err
	}
	return purchase, nil
}

// UpdatePurchase moves stock by the quantity delta without a floor check.
func (s *purchaseService) UpdatePurchase(c *authz.Caller, id uuid.UUID, req UpdatePurchaseRequest) (*model.PurchaseInfo, error) {
	if err := requireCaller(c); err != nil {
		return nil, err
	}
	req.SupplierName = trimmed(req.SupplierName)
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	var purchase *model.PurchaseInfo
	var product *model.Product
	delta := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		purchases := s.purchaseRepo.WithTx(tx)
		products := s.productRepo.WithTx(tx)
		var err error
		purchase, err = purchases.FindByID(id)
		if err != nil {
			return storeErr(err, "purchase")
		}
		product, err = products.FindForUpdate(purchase.ProductID)
		if err != nil {
			return storeErr(err, "product")
		}
		if err := authz.CanRecordLedger(c, product.CompanyID); err != nil {
			return err
		}

		applyPurchaseDetails(purchase, req)

		reprice := false
		if req.Quantity != nil && *req.Quantity != purchase.Quantity {
			delta = *req.Quantity - purchase.Quantity
			purchase.Quantity = *req.Quantity
			reprice = true
		}
		if req.UnitPrice != nil {
			purchase.UnitPrice = *req.UnitPrice
			reprice = true
		}
		if req.TaxRate != nil {
			purchase.TaxRate = *req.TaxRate
			reprice = true
		}
		if req.TaxIncluded != nil {
			purchase.TaxIncluded = *req.TaxIncluded
			reprice = true
		}
		if req.Discount != nil {
			purchase.Discount = *req.Discount
			reprice = true
		}
		if reprice {
			purchase.Recalculate()
			if purchase.TotalPrice.IsNegative() {
				return apperr.Validation("discount exceeds the purchase amount")
			}
		}
		if reprice || req.PaymentDueDate != nil {
			purchase.ApplyPayment(decimal.Zero, nil, "", s.now())
		}

		if err := purchases.Update(purchase); err != nil {
			return storeErr(err, "purchase")
		}
		if delta != 0 {
			if err := products.AddStock(product.ID, delta); err != nil {
				return storeErr(err, "product")
			}
			product.CurrentStock += delta
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	purchase.Product = product
	if delta != 0 {
		s.stockMoved(c, "purchase_updated", product, delta,
			fmt.Sprintf("%s changed a purchase of '%s' by %d units", c.Username, product.Name, delta))
	}
	return purchase, nil
}

func applyPurchaseDetails(p *model.PurchaseInfo, req UpdatePurchaseRequest) {
	if req.SupplierName != nil {
		p.SupplierName = *req.SupplierName
	}
	if req.SupplierBusinessNumber != nil {
		p.SupplierBusinessNumber = *req.SupplierBusinessNumber
	}
	if req.SupplierContact != nil {
		p.SupplierContact = *req.SupplierContact
	}
	if req.SupplierAddress != nil {
		p.SupplierAddress = *req.SupplierAddress
	}
	if req.SupplierPhone != nil {
		p.SupplierPhone = *req.SupplierPhone
	}
	if req.SupplierEmail != nil {
		p.SupplierEmail = *req.SupplierEmail
	}
	if req.InvoiceNumber != nil {
		p.InvoiceNumber = *req.InvoiceNumber
	}
	if req.PurchaseDate != nil {
		p.PurchaseDate = req.PurchaseDate.UTC()
	}
	if req.ExpectedDeliveryDate != nil {
		p.ExpectedDeliveryDate = utcPtr(req.ExpectedDeliveryDate)
	}
	if req.ActualDeliveryDate != nil {
		p.ActualDeliveryDate = utcPtr(req.ActualDeliveryDate)
	}
	if req.PaymentTerms != nil {
		p.PaymentTerms = *req.PaymentTerms
	}
	if req.PaymentDueDate != nil {
		p.PaymentDueDate = utcPtr(req.PaymentDueDate)
	}
	if req.Notes != nil {
		p.Notes = *req.Notes
	}
}

// DeletePurchase reverses the purchase's stock. Stock may go negative when
// the goods were already sold.
func (s *purchaseService) DeletePurchase(c *authz.Caller, id uuid.UUID) error {
	if err := requireCaller(c); err != nil {
		return err
	}

	var product *model.Product
	quantity := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		purchases := s.purchaseRepo.WithTx(tx)
		products := s.productRepo.WithTx(tx)
		purchase, err := purchases.FindByID(id)
		if err != nil {
			return storeErr(err, "purchase")
		}
		product, err = products.FindForUpdate(purchase.ProductID)
		if err != nil {
			return storeErr(err, "product")
		}
		if err := authz.CanRecordLedger(c, product.CompanyID); err != nil {
			return err
		}
		if err := purchases.Delete(id); err != nil {
			return storeErr(err, "purchase")
		}
		quantity = purchase.Quantity
		if err := products.AddStock(product.ID, -quantity); err != nil {
			return storeErr(err, "product")
		}
		product.CurrentStock -= quantity
		return nil
	})
	if err != nil {
		return err
	}

	if product.CurrentStock < 0 {
		s.log.Warn("purchase reversal left negative stock",
			zap.String("product_id", product.ID.String()),
			zap.Int("stock", product.CurrentStock))
	}
	s.stockMoved(c, "purchase_deleted", product, -quantity,
		fmt.Sprintf("%s reversed a purchase of %s", c.Username, units(quantity, product.Name)))
	return nil
}

func (s *purchaseService) RecordPayment(c *authz.Caller, id uuid.UUID, req PaymentRequest) (*model.PurchaseInfo, error) {
	if err := requireCaller(c); err != nil {
		return nil, err
	}
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	var purchase *model.PurchaseInfo
	err := s.db.Transaction(func(tx *gorm.DB) error {
		purchases := s.purchaseRepo.WithTx(tx)
		var err error
		purchase, err = purchases.FindByID(id)
		if err != nil {
			return storeErr(err, "purchase")
		}
		if err := authz.CanRecordLedger(c, purchase.Product.CompanyID); err != nil {
			return err
		}

		now := s.now()
		paidAt := utcPtr(req.PaidDate)
		if paidAt == nil {
			paidAt = &now
		}
		purchase.ApplyPayment(req.Amount, paidAt, req.Method, now)

		return storeErr(purchases.Update(purchase), "purchase")
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordLedger(ledgerPurchase, "payment")
	s.log.Info("purchase payment recorded", actor(c),
		zap.String("purchase_id", purchase.ID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("status", string(purchase.PaymentStatus)))
	return purchase, nil
}

func (s *purchaseService) ListPurchases(c *authz.Caller, q PurchaseQuery) (*PageResult[model.PurchaseInfo], error) {
	if err := requireCaller(c); err != nil {
		return nil, err
	}
	page := q.Page.Normalize()

	filter := repository.PurchaseFilter{
		CompanyID:     c.ScopeCompany(),
		ProductID:     q.ProductID,
		Supplier:      q.Supplier,
		From:          utcPtr(q.From),
		To:            utcPtr(q.To),
		PaymentStatus: q.PaymentStatus,
	}
	purchases, total, err := s.purchaseRepo.List(filter, page)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return newPageResult(purchases, total, page), nil
}

func (s *purchaseService) stockMoved(c *authz.Caller, action string, product *model.Product, delta int, message string) {
	s.metrics.RecordStock(ledgerPurchase, delta)
	s.metrics.RecordLedger(ledgerPurchase, action)
	s.log.Info("stock moved", actor(c),
		zap.String("action", action),
		zap.String("product_id", product.ID.String()),
		zap.String("company_id", product.CompanyID.String()),
		zap.Int("delta", delta),
		zap.Int("stock", product.CurrentStock))
	s.events.stockChanged(c, action, product, delta, message)
}
