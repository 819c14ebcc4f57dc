package repository

import (
	"time"

	"go-inventory-mt/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PurchaseFilter narrows a procurement listing.
type PurchaseFilter struct {
	CompanyID     *uuid.UUID
	ProductID     *uuid.UUID
	Supplier      string
	From          *time.Time
	To            *time.Time
	PaymentStatus model.PaymentStatus
}

type PurchaseRepository interface {
	WithTx(tx *gorm.DB) PurchaseRepository
	Create(purchase *model.PurchaseInfo) error
	FindByID(id uuid.UUID) (*model.PurchaseInfo, error)
	Update(purchase *model.PurchaseInfo) error
	Delete(id uuid.UUID) error
	List(filter PurchaseFilter, page Page) ([]model.PurchaseInfo, int64, error)
}

type purchaseRepo struct {
	db *gorm.DB
}

func NewPurchaseRepo(db *gorm.DB) PurchaseRepository {
	return &purchaseRepo{db}
}

func (r *purchaseRepo) WithTx(tx *gorm.DB) PurchaseRepository {
	return &purchaseRepo{tx}
}

func (r *purchaseRepo) Create(purchase *model.PurchaseInfo) error {
	return r.db.Omit(clause.Associations).Create(purchase).Error
}

func (r *purchaseRepo) FindByID(id uuid.UUID) (*model.PurchaseInfo, error) {
	var purchase model.PurchaseInfo
	if err := r.db.Preload("Product").First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepo) Update(purchase *model.PurchaseInfo) error {
	return r.db.Omit(clause.Associations).Save(purchase).Error
}

func (r *purchaseRepo) Delete(id uuid.UUID) error {
	res := r.db.Delete(&model.PurchaseInfo{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *purchaseRepo) List(filter PurchaseFilter, page Page) ([]model.PurchaseInfo, int64, error) {
	q := r.db.Model(&model.PurchaseInfo{}).
		Joins("JOIN products ON products.id = purchase_infos.product_id")
	if filter.CompanyID != nil {
		q = q.Where("products.company_id = ?", *filter.CompanyID)
	}
	if filter.ProductID != nil {
		q = q.Where("purchase_infos.product_id = ?", *filter.ProductID)
	}
	if filter.Supplier != "" {
		q = q.Where(`LOWER(purchase_infos.supplier_name) LIKE ? ESCAPE '\'`, containsPattern(filter.Supplier))
	}
	if filter.From != nil {
		q = q.Where("purchase_infos.purchase_date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("purchase_infos.purchase_date <= ?", *filter.To)
	}
	if filter.PaymentStatus != "" {
		q = q.Where("purchase_infos.payment_status = ?", filter.PaymentStatus)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var purchases []model.PurchaseInfo
	err := page.apply(q.Preload("Product").Order("purchase_infos.purchase_date DESC, purchase_infos.created_at DESC")).
		Find(&purchases).Error
	if err != nil {
		return nil, 0, err
	}
	return purchases, total, nil
}
