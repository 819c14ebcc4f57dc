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

// InitialSupplier records where the opening stock of a new product came from.
type InitialSupplier struct {
	Name    string `json:"name" validate:"required,max=100"`
	Address string `json:"address"`
	Phone   string `json:"phone" validate:"max=20"`
}

type CreateProductRequest struct {
	CompanyID    *uuid.UUID       `json:"company_id"`
	Code         string           `json:"code" validate:"required,max=50"`
	Name         string           `json:"name" validate:"required,max=100"`
	Category     string           `json:"category" validate:"max=50"`
	Brand        string           `json:"brand" validate:"max=100"`
	Model        string           `json:"model" validate:"max=100"`
	Description  string           `json:"description" validate:"max=500"`
	CurrentStock int              `json:"current_stock" validate:"gte=0"`
	MinimumStock int              `json:"minimum_stock" validate:"gte=0"`
	Price        decimal.Decimal  `json:"price" validate:"gt=0"`
	CostPrice    decimal.Decimal  `json:"cost_price" validate:"gte=0"`
	TaxIncluded  bool             `json:"tax_included"`
	Supplier     *InitialSupplier `json:"supplier,omitempty"`
}

type UpdateProductRequest struct {
	Code         *string          `json:"code" validate:"omitnil,min=1,max=50"`
	Name         *string          `json:"name" validate:"omitnil,min=1,max=100"`
	Category     *string          `json:"category" validate:"omitempty,max=50"`
	Brand        *string          `json:"brand" validate:"omitempty,max=100"`
	Model        *string          `json:"model" validate:"omitempty,max=100"`
	Description  *string          `json:"description" validate:"omitempty,max=500"`
	CurrentStock *int             `json:"current_stock" validate:"omitempty,gte=0"`
	MinimumStock *int             `json:"minimum_stock" validate:"omitempty,gte=0"`
	Price        *decimal.Decimal `json:"price" validate:"omitempty,gt=0"`
	CostPrice    *decimal.Decimal `json:"cost_price" validate:"omitempty,gte=0"`
	TaxIncluded  *bool            `json:"tax_included"`
}

type ProductQuery struct {
	Search    string
	CompanyID *uuid.UUID
	LowStock  bool
	Page      repository.Page
}

type ProductService interface {
	CreateProduct(c *authz.Caller, req CreateProductRequest) (*model.Product, error)
	GetProduct(c *authz.Caller, id uuid.UUID) (*model.Product, error)
	UpdateProduct(c *authz.Caller, id uuid.UUID, req UpdateProductRequest) (*model.Product, error)
	DeleteProduct(c *authz.Caller, id uuid.UUID) error
	ListProducts(c *authz.Caller, q ProductQuery) (*PageResult[model.Product], error)
}

type productService struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	companyRepo  repository.CompanyRepository
	purchaseRepo repository.PurchaseRepository
	events       publisher
	metrics      *metrics.Metrics
	log          *zap.Logger
}

func NewProductService(db *gorm.DB, productRepo repository.ProductRepository, companyRepo repository.CompanyRepository, purchaseRepo repository.PurchaseRepository, notifier StockNotifier, m *metrics.Metrics, log *zap.Logger) ProductService {
	return &productService{
		db:           db,
		productRepo:  productRepo,
		companyRepo:  companyRepo,
		purchaseRepo: purchaseRepo,
		events:       publisher{notifier},
		metrics:      m,
		log:          log,
	}
}

func (s *productService) CreateProduct(c *authz.Caller, req CreateProductRequest) (*model.Product, error) {
	if err := requireCaller(c); err != nil {
		return nil, err
	}
	req.Code = strings.TrimSpace(req.Code)
	req.Name = strings.TrimSpace(req.Name)
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	companyID := req.CompanyID
	if companyID == nil {
		companyID = c.CompanyID
	}
	if companyID == nil {
		return nil, apperr.Validation("company_id is required")
	}
	if err := authz.CanManageCatalog(c, *companyID); err != nil {
		return nil, err
	}

	product := &model.Product{
		CompanyID:    *companyID,
		Code:         req.Code,
		Name:         req.Name,
		Category:     req.Category,
		Brand:        req.Brand,
		Model:        req.Model,
		Description:  req.Description,
		CurrentStock: req.CurrentStock,
		MinimumStock: req.MinimumStock,
		Price:        req.Price,
		CostPrice:    req.CostPrice,
		TaxIncluded:  req.TaxIncluded,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)
		if _, err := s.companyRepo.WithTx(tx).FindByID(*companyID); err != nil {
			return storeErr(err, "company")
		}
		_, err := products.FindByCode(*companyID, req.Code)
		found, err := exists(err)
		if err != nil {
			return err
		}
		if found {
			return apperr.Duplicate("product code")
		}
		if err := products.Create(product); err != nil {
			return storeErr(err, "product code")
		}

		// Opening stock is booked as a settled purchase so the ledger explains it.
		if req.Supplier != nil && product.CurrentStock > 0 {
			status := model.PaymentPending
			if product.CostPrice.IsPositive() {
				status = model.PaymentPaid
			}
			total := product.CostPrice.Mul(decimal.NewFromInt(int64(product.CurrentStock))).Round(2)
			opening := &model.PurchaseInfo{
				ProductID:       product.ID,
				SupplierName:    req.Supplier.Name,
				SupplierAddress: req.Supplier.Address,
				SupplierPhone:   req.Supplier.Phone,
				PurchaseDate:    time.Now().UTC(),
				Quantity:        product.CurrentStock,
				UnitPrice:       product.CostPrice,
				TaxRate:         decimal.Zero,
				TotalPrice:      total,
				PaymentStatus:   status,
				Notes:           "initial stock",
				CreatedBy:       c.UserID,
			}
			if status == model.PaymentPaid {
				opening.PaidAmount = total
			}
			if err := s.purchaseRepo.WithTx(tx).Create(opening); err != nil {
				return storeErr(err, "purchase")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordStock("catalog", product.CurrentStock)
	s.log.Info("product created", actor(c),
		zap.String("product_id", product.ID.String()),
		zap.String("company_id", product.CompanyID.String()),
		zap.Int("stock", product.CurrentStock))
	s.events.stockChanged(c, "product_created", product, product.CurrentStock,
		fmt.Sprintf("%s created product '%s'", c.Username, product.Name))
	return product, nil
}

func (s *productService) GetProduct(c *authz.Caller, id uuid.UUID) (*model.Product, error) {
	if err := requireCaller(c); err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, storeErr(err, "product")
	}
	if err := authz.CanAccessCompany(c, product.CompanyID); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) UpdateProduct(c *authz.Caller, id uuid.UUID, req UpdateProductRequest) (*model.Product, error) {
	if err := requireCaller(c); err != nil {
		return nil, err
	}
	req.Code = trimmed(req.Code)
	req.Name = trimmed(req.Name)
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	var product *model.Product
	delta := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)
		var err error
		product, err = products.FindForUpdate(id)
		if err != nil {
			return storeErr(err, "product")
		}
		if err := authz.CanManageCatalog(c, product.CompanyID); err != nil {
			return err
		}

		if req.Code != nil {
			code := *req.Code
			if code != product.Code {
				_, err := products.FindByCode(product.CompanyID, code)
				found, err := exists(err)
				if err != nil {
					return err
				}
				if found {
					return apperr.Duplicate("product code")
				}
				product.Code = code
			}
		}
		if req.Name != nil {
			product.Name = *req.Name
		}
		if req.Category != nil {
			product.Category = *req.Category
		}
		if req.Brand != nil {
			product.Brand = *req.Brand
		}
		if req.Model != nil {
			product.Model = *req.Model
		}
		if req.Description != nil {
			product.Description = *req.Description
		}
		if req.MinimumStock != nil {
			product.MinimumStock = *req.MinimumStock
		}
		if req.Price != nil {
			product.Price = *req.Price
		}
		if req.CostPrice != nil {
			product.CostPrice = *req.CostPrice
		}
		if req.TaxIncluded != nil {
			product.TaxIncluded = *req.TaxIncluded
		}
		if err := products.Update(product); err != nil {
			return storeErr(err, "product code")
		}

		// A stock count correction moves stock like a ledger entry does.
		if req.CurrentStock != nil && *req.CurrentStock != product.CurrentStock {
			delta = *req.CurrentStock - product.CurrentStock
			if err := products.AddStock(product.ID, delta); err != nil {
				return storeErr(err, "product")
			}
			product.CurrentStock = *req.CurrentStock
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if delta != 0 {
		s.metrics.RecordStock("adjustment", delta)
		s.log.Info("stock adjusted", actor(c), zap.String("product_id", product.ID.String()), zap.Int("delta", delta))
		s.events.stockChanged(c, "stock_adjusted", product, delta,
			fmt.Sprintf("%s adjusted stock of '%s' to %d", c.Username, product.Name, product.CurrentStock))
	}
	return product, nil
}

func (s *productService) DeleteProduct(c *authz.Caller, id uuid.UUID) error {
	if err := requireCaller(c); err != nil {
		return err
	}

	var product *model.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)
		var err error
		product, err = products.FindForUpdate(id)
		if err != nil {
			return storeErr(err, "product")
		}
		sales, err := products.CountSales(id)
		if err != nil {
			return apperr.Storage(err)
		}
		if err := authz.CanDeleteProduct(c, product.CompanyID, sales); err != nil {
			return err
		}
		return storeErr(products.Delete(id), "product")
	})
	if err != nil {
		return err
	}

	s.log.Info("product deleted", actor(c), zap.String("product_id", id.String()))
	removed := product.CurrentStock
	product.CurrentStock = 0
	s.events.stockChanged(c, "product_deleted", product, -removed,
		fmt.Sprintf("%s deleted product '%s'", c.Username, product.Name))
	return nil
}

func (s *productService) ListProducts(c *authz.Caller, q ProductQuery) (*PageResult[model.Product], error) {
	if err := requireCaller(c); err != nil {
		return nil, err
	}
	page := q.Page.Normalize()

	filter := repository.ProductFilter{Search: q.Search, LowStock: q.LowStock, CompanyID: q.CompanyID}
	if scope := c.ScopeCompany(); scope != nil {
		if q.CompanyID != nil && *q.CompanyID != *scope {
			return nil, apperr.Denied(authz.ReasonOtherCompany)
		}
		filter.CompanyID = scope
	}

	products, total, err := s.productRepo.List(filter, page)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return newPageResult(products, total, page), nil
}
