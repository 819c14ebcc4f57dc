package repository

import (
	"time"

	"go-inventory-mt/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaleFilter narrows a sales listing.
type SaleFilter struct {
	CompanyID     *uuid.UUID
	ProductID     *uuid.UUID
	Customer      string
	From          *time.Time
	To            *time.Time
	Status        model.SaleStatus
	PaymentStatus model.SalePaymentStatus
}

type SaleRepository interface {
	WithTx(tx *gorm.DB) SaleRepository
	Create(sale *model.SaleRecord) error
	FindByID(id uuid.UUID) (*model.SaleRecord, error)
	Update(sale *model.SaleRecord) error
	Delete(id uuid.UUID) error
	List(filter SaleFilter, page Page) ([]model.SaleRecord, int64, error)
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) WithTx(tx *gorm.DB) SaleRepository {
	return &saleRepo{tx}
}

func (r *saleRepo) Create(sale *model.SaleRecord) error {
	return r.db.Omit(clause.Associations).Create(sale).Error
}

func (r *saleRepo) FindByID(id uuid.UUID) (*model.SaleRecord, error) {
	var sale model.SaleRecord
	if err := r.db.Preload("Product").First(&sale, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) Update(sale *model.SaleRecord) error {
	return r.db.Omit(clause.Associations).Save(sale).Error
}

func (r *saleRepo) Delete(id uuid.UUID) error {
	res := r.db.Delete(&model.SaleRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *saleRepo) List(filter SaleFilter, page Page) ([]model.SaleRecord, int64, error) {
	q := r.db.Model(&model.SaleRecord{}).
		Joins("JOIN products ON products.id = sale_records.product_id")
	if filter.CompanyID != nil {
		q = q.Where("products.company_id = ?", *filter.CompanyID)
	}
	if filter.ProductID != nil {
		q = q.Where("sale_records.product_id = ?", *filter.ProductID)
	}
	if filter.Customer != "" {
		q = q.Where(`LOWER(sale_records.customer_name) LIKE ? ESCAPE '\'`, containsPattern(filter.Customer))
	}
	if filter.From != nil {
		q = q.Where("sale_records.sale_date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("sale_records.sale_date <= ?", *filter.To)
	}
	if filter.Status != "" {
		q = q.Where("sale_records.status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		q = q.Where("sale_records.payment_status = ?", filter.PaymentStatus)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sales []model.SaleRecord
	err := page.apply(q.Preload("Product").Order("sale_records.sale_date DESC, sale_records.created_at DESC")).
		Find(&sales).Error
	if err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}
