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

const ledgerSale = "sale"

type CreateSaleRequest struct {
	ProductID       uuid.UUID               `json:"product_id" validate:"uuid_required"`
	SaleDate        *time.Time              `json:"sale_date"`
	Quantity        int                     `json:"quantity" validate:"gt=0"`
	UnitPrice       decimal.Decimal         `json:"unit_price" validate:"gt=0"`
	CustomerName    string                  `json:"customer_name" validate:"max=100"`
	CustomerContact string                  `json:"customer_contact" validate:"max=100"`
	CustomerPhone   string                  `json:"customer_phone" validate:"max=20"`
	CustomerEmail   string                  `json:"customer_email" validate:"omitempty,email,max=100"`
	InvoiceNumber   string                  `json:"invoice_number" validate:"max=50"`
	Status          model.SaleStatus        `json:"status"`
	TrackingNumber  string                  `json:"tracking_number" validate:"max=100"`
	ShippingCarrier string                  `json:"shipping_carrier" validate:"max=50"`
	ShippingAddress string                  `json:"shipping_address"`
	PaymentMethod   string                  `json:"payment_method" validate:"max=50"`
	PaymentStatus   model.SalePaymentStatus `json:"payment_status"`
	Notes           string                  `json:"notes"`
}

type UpdateSaleRequest struct {
	SaleDate        *time.Time               `json:"sale_date"`
	Quantity        *int                     `json:"quantity" validate:"omitempty,gt=0"`
	UnitPrice       *decimal.Decimal         `json:"unit_price" validate:"omitempty,gt=0"`
	CustomerName    *string                  `json:"customer_name" validate:"omitempty,max=100"`
	CustomerContact *string                  `json:"customer_contact" validate:"omitempty,max=100"`
	CustomerPhone   *string                  `json:"customer_phone" validate:"omitempty,max=20"`
	CustomerEmail   *string                  `json:"customer_email" validate:"omitempty,email,max=100"`
	InvoiceNumber   *string                  `json:"invoice_number" validate:"omitempty,max=50"`
	Status          *model.SaleStatus        `json:"status"`
	TrackingNumber  *string                  `json:"tracking_number" validate:"omitempty,max=100"`
	ShippingCarrier *string                  `json:"shipping_carrier" validate:"omitempty,max=50"`
	ShippingAddress *string                  `json:"shipping_address"`
	PaymentMethod   *string                  `json:"payment_method" validate:"omitempty,max=50"`
	PaymentStatus   *model.SalePaymentStatus `json:"payment_status"`
	Notes           *string                  `json:"notes"`
}

type SaleQuery struct {
	ProductID     *uuid.UUID
	Customer      string
	From          *time.Time
	To            *time.Time
	Status        model.SaleStatus
	PaymentStatus model.SalePaymentStatus
	Page          repository.Page
}

type SaleService interface {
	CreateSale(c *authz.Caller, req CreateSaleRequest) (*model.SaleRecord, error)
	GetSale(c *authz.Caller, id uuid.UUID) (*model.SaleRecord, error)
	UpdateSale(c *authz.Caller, id uuid.UUID, req UpdateSaleRequest) (*model.SaleRecord, error)
	DeleteSale(c *authz.Caller, id uuid.UUID) error
	RecordPayment(c *authz.Caller, id uuid.UUID, req PaymentRequest) (*model.SaleRecord, error)
	ListSales(c *authz.Caller, q SaleQuery) (*PageResult[model.SaleRecord], error)
}

type saleService struct {
	db          *gorm.DB
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	events      publisher
	metrics     *metrics.Metrics
	log         *zap.Logger
	now         func() time.Time
}

func NewSaleService(db *gorm.DB, saleRepo repository.SaleRepository, productRepo repository.ProductRepository, notifier StockNotifier, m *metrics.Metrics, log *zap.Logger) SaleService {
	return &saleService{
		db:          db,
		saleRepo:    saleRepo,
		productRepo: productRepo,
		events:      publisher{notifier},
		metrics:     m,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// deduct takes quantity out of the locked product. The guarded update keeps
// stock from going negative even where the row lock is not enforced.
func deduct(products repository.ProductRepository, product *model.Product, quantity int) error {
	if product.CurrentStock < quantity {
		return apperr.InsufficientStock(product.CurrentStock, quantity)
	}
	ok, err := products.DeductStock(product.ID, quantity)
	if err != nil {
		return apperr.Storage(err)
	}
	if !ok {
		fresh, err := products.FindByID(product.ID)
		if err != nil {
			return storeErr(err, "product")
		}
		return apperr.InsufficientStock(fresh.CurrentStock, quantity)
	}
	product.CurrentStock -= quantity
	return nil
}

func (s *saleService) CreateSale(c *authz.Caller, req CreateSaleRequest) (*model.SaleRecord, error) {
	if err := requireCaller(c); err != nil {
		return nil, err
	}
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Status == "" {
		req.Status = model.SalePending
	}
	if !req.Status.Valid() {
		return nil, apperr.Validation("unknown sale status %q", req.Status)
	}
	if req.PaymentStatus == "" {
		req.PaymentStatus = model.SaleUnpaid
	}
	if !req.PaymentStatus.Valid() {
		return nil, apperr.Validation("unknown payment status %q", req.PaymentStatus)
	}

	var sale *model.SaleRecord
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
		if err := deduct(products, product, req.Quantity); err != nil {
			return err
		}

		sale = &model.SaleRecord{
			ProductID:       product.ID,
			SaleDate:        orNow(req.SaleDate, s.now()),
			Quantity:        req.Quantity,
			UnitPrice:       req.UnitPrice,
			CustomerName:    strings.TrimSpace(req.CustomerName),
			CustomerContact: req.CustomerContact,
			CustomerPhone:   req.CustomerPhone,
			CustomerEmail:   req.CustomerEmail,
			InvoiceNumber:   req.InvoiceNumber,
			Status:          req.Status,
			TrackingNumber:  req.TrackingNumber,
			ShippingCarrier: req.ShippingCarrier,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
			PaymentStatus:   req.PaymentStatus,
			Notes:           req.Notes,
			CreatedBy:       c.UserID,
		}
		sale.Recalculate()
		return storeErr(s.saleRepo.WithTx(tx).Create(sale), "sale")
	})
	if err != nil {
		return nil, err
	}

	sale.Product = product
	s.stockMoved(c, "sale_created", product, -sale.Quantity,
		fmt.Sprintf("%s sold %s", c.Username, units(sale.Quantity, product.Name)))
	return sale, nil
}

func (s *saleService) GetSale(c *authz.Caller, id uuid.UUID) (*model.SaleRecord, error) {
	if err := requireCaller(c); err != nil {
		return nil, err
	}
	sale, err := s.saleRepo.FindByID(id)
	if err != nil {
		return nil, storeErr(err, "sale")
	}
	if err := authz.CanAccessCompany(c, sale.Product.CompanyID); err != nil {
		return nil, err
	}
	return sale, nil
}

// UpdateSale restores the old quantity and deducts the new one in the same
// transaction, so a rejected quantity leaves stock where it was.
func (s *saleService) UpdateSale(c *authz.Caller, id uuid.UUID, req UpdateSaleRequest) (*model.SaleRecord, error) {
	if err := requireCaller(c); err != nil {
		return nil, err
	}
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, apperr.Validation("unknown sale status %q", *req.Status)
	}
	if req.PaymentStatus != nil && !req.PaymentStatus.Valid() {
		return nil, apperr.Validation("unknown payment status %q", *req.PaymentStatus)
	}

	var sale *model.SaleRecord
	var product *model.Product
	delta := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		sales := s.saleRepo.WithTx(tx)
		products := s.productRepo.WithTx(tx)
		var err error
		sale, err = sales.FindByID(id)
		if err != nil {
			return storeErr(err, "sale")
		}
		product, err = products.FindForUpdate(sale.ProductID)
		if err != nil {
			return storeErr(err, "product")
		}
		if err := authz.CanRecordLedger(c, product.CompanyID); err != nil {
			return err
		}

		if req.Status != nil && !sale.Status.CanTransitionTo(*req.Status) {
			return apperr.Validation("sale status cannot change from %s to %s", sale.Status, *req.Status)
		}

		if req.Quantity != nil && *req.Quantity != sale.Quantity {
			if err := products.AddStock(product.ID, sale.Quantity); err != nil {
				return storeErr(err, "product")
			}
			product.CurrentStock += sale.Quantity
			if err := deduct(products, product, *req.Quantity); err != nil {
				return err
			}
			delta = sale.Quantity - *req.Quantity
			sale.Quantity = *req.Quantity
		}

		reprice := req.Quantity != nil
		if req.UnitPrice != nil {
			sale.UnitPrice = *req.UnitPrice
			reprice = true
		}
		if reprice {
			sale.Recalculate()
		}
		applySaleDetails(sale, req)
		if reprice && req.PaymentStatus == nil {
			sale.ApplyPayment(decimal.Zero, nil, "")
		}
		return storeErr(sales.Update(sale), "sale")
	})
	if err != nil {
		return nil, err
	}

	sale.Product = product
	if delta != 0 {
		s.stockMoved(c, "sale_updated", product, delta,
			fmt.Sprintf("%s changed a sale of '%s' to %d units", c.Username, product.Name, sale.Quantity))
	}
	return sale, nil
}

func applySaleDetails(sale *model.SaleRecord, req UpdateSaleRequest) {
	if req.SaleDate != nil {
		sale.SaleDate = req.SaleDate.UTC()
	}
	if req.CustomerName != nil {
		sale.CustomerName = strings.TrimSpace(*req.CustomerName)
	}
	if req.CustomerContact != nil {
		sale.CustomerContact = *req.CustomerContact
	}
	if req.CustomerPhone != nil {
		sale.CustomerPhone = *req.CustomerPhone
	}
	if req.CustomerEmail != nil {
		sale.CustomerEmail = *req.CustomerEmail
	}
	if req.InvoiceNumber != nil {
		sale.InvoiceNumber = *req.InvoiceNumber
	}
	if req.Status != nil {
		sale.Status = *req.Status
	}
	if req.TrackingNumber != nil {
		sale.TrackingNumber = *req.TrackingNumber
	}
	if req.ShippingCarrier != nil {
		sale.ShippingCarrier = *req.ShippingCarrier
	}
	if req.ShippingAddress != nil {
		sale.ShippingAddress = *req.ShippingAddress
	}
	if req.PaymentMethod != nil {
		sale.PaymentMethod = *req.PaymentMethod
	}
	if req.PaymentStatus != nil {
		sale.PaymentStatus = *req.PaymentStatus
	}
	if req.Notes != nil {
		sale.Notes = *req.Notes
	}
}

// DeleteSale returns the sold quantity to stock.
func (s *saleService) DeleteSale(c *authz.Caller, id uuid.UUID) error {
	if err := requireCaller(c); err != nil {
		return err
	}

	var product *model.Product
	quantity := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		sales := s.saleRepo.WithTx(tx)
		products := s.productRepo.WithTx(tx)
		sale, err := sales.FindByID(id)
		if err != nil {
			return storeErr(err, "sale")
		}
		product, err = products.FindForUpdate(sale.ProductID)
		if err != nil {
			return storeErr(err, "product")
		}
		if err := authz.CanRecordLedger(c, product.CompanyID); err != nil {
			return err
		}
		if err := sales.Delete(id); err != nil {
			return storeErr(err, "sale")
		}
		quantity = sale.Quantity
		if err := products.AddStock(product.ID, quantity); err != nil {
			return storeErr(err, "product")
		}
		product.CurrentStock += quantity
		return nil
	})
	if err != nil {
		return err
	}

	s.stockMoved(c, "sale_deleted", product, quantity,
		fmt.Sprintf("%s reversed a sale of %s", c.Username, units(quantity, product.Name)))
	return nil
}

func (s *saleService) RecordPayment(c *authz.Caller, id uuid.UUID, req PaymentRequest) (*model.SaleRecord, error) {
	if err := requireCaller(c); err != nil {
		return nil, err
	}
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	var sale *model.SaleRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		sales := s.saleRepo.WithTx(tx)
		var err error
		sale, err = sales.FindByID(id)
		if err != nil {
			return storeErr(err, "sale")
		}
		if err := authz.CanRecordLedger(c, sale.Product.CompanyID); err != nil {
			return err
		}
		if sale.PaymentStatus == model.SaleRefunded {
			return apperr.Validation("sale has been refunded")
		}

		paidAt := utcPtr(req.PaidDate)
		if paidAt == nil {
			now := s.now()
			paidAt = &now
		}
		sale.ApplyPayment(req.Amount, paidAt, req.Method)
		return storeErr(sales.Update(sale), "sale")
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordLedger(ledgerSale, "payment")
	s.log.Info("sale payment recorded", actor(c),
		zap.String("sale_id", sale.ID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("status", string(sale.PaymentStatus)))
	return sale, nil
}

func (s *saleService) ListSales(c *authz.Caller, q SaleQuery) (*PageResult[model.SaleRecord], error) {
	if err := requireCaller(c); err != nil {
		return nil, err
	}
	page := q.Page.Normalize()

	filter := repository.SaleFilter{
		CompanyID:     c.ScopeCompany(),
		ProductID:     q.ProductID,
		Customer:      q.Customer,
		From:          utcPtr(q.From),
		To:            utcPtr(q.To),
		Status:        q.Status,
		PaymentStatus: q.PaymentStatus,
	}
	sales, total, err := s.saleRepo.List(filter, page)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return newPageResult(sales, total, page), nil
}

func (s *saleService) stockMoved(c *authz.Caller, action string, product *model.Product, delta int, message string) {
	s.metrics.RecordStock(ledgerSale, delta)
	s.metrics.RecordLedger(ledgerSale, action)
	s.log.Info("stock moved", actor(c),
		zap.String("action", action),
		zap.String("product_id", product.ID.String()),
		zap.String("company_id", product.CompanyID.String()),
		zap.Int("delta", delta),
		zap.Int("stock", product.CurrentStock))
	s.events.stockChanged(c, action, product, delta, message)
}
