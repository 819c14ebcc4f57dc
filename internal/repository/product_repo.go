package repository

import (
	"go-inventory-mt/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductFilter narrows a catalog listing.
type ProductFilter struct {
	CompanyID *uuid.UUID
	Search    string
	LowStock  bool
}

type ProductRepository interface {
	WithTx(tx *gorm.DB) ProductRepository
	Create(product *model.Product) error
	FindByID(id uuid.UUID) (*model.Product, error)
	FindForUpdate(id uuid.UUID) (*model.Product, error)
	FindByCode(companyID uuid.UUID, code string) (*model.Product, error)
	Update(product *model.Product) error
	Delete(id uuid.UUID) error
	List(filter ProductFilter, page Page) ([]model.Product, int64, error)
	CountSales(id uuid.UUID) (int64, error)
	AddStock(id uuid.UUID, delta int) error
	DeductStock(id uuid.UUID, quantity int) (bool, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{tx}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Omit(clause.Associations).Create(product).Error
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindForUpdate reads the product holding a row lock until the transaction ends.
func (r *productRepo) FindForUpdate(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByCode(companyID uuid.UUID, code string) (*model.Product, error) {
	var product model.Product
	if err := r.db.Where("company_id = ? AND code = ?", companyID, code).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Update writes the descriptive columns. Stock only moves through AddStock
// and DeductStock.
func (r *productRepo) Update(product *model.Product) error {
	return r.db.Model(&model.Product{}).Where("id = ?", product.ID).Updates(map[string]interface{}{
		"code":          product.Code,
		"name":          product.Name,
		"category":      product.Category,
		"brand":         product.Brand,
		"model":         product.Model,
		"description":   product.Description,
		"minimum_stock": product.MinimumStock,
		"price":         product.Price,
		"cost_price":    product.CostPrice,
		"tax_included":  product.TaxIncluded,
	}).Error
}

// Delete removes the product and its purchase rows. Callers check for sales first.
func (r *productRepo) Delete(id uuid.UUID) error {
	if err := r.db.Where("product_id = ?", id).Delete(&model.PurchaseInfo{}).Error; err != nil {
		return err
	}
	res := r.db.Delete(&model.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) List(filter ProductFilter, page Page) ([]model.Product, int64, error) {
	q := r.db.Model(&model.Product{})
	if filter.CompanyID != nil {
		q = q.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.LowStock {
		q = q.Where("current_stock <= minimum_stock")
	}
	if filter.Search != "" {
		p := containsPattern(filter.Search)
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(code) LIKE ? ESCAPE '\' OR LOWER(brand) LIKE ? ESCAPE '\' OR LOWER(model) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`,
			p, p, p, p, p)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []model.Product
	if err := page.apply(q.Order("name ASC, code ASC")).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *productRepo) CountSales(id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.SaleRecord{}).Where("product_id = ?", id).Count(&count).Error
	return count, err
}

// AddStock moves stock by delta with no floor check.
func (r *productRepo) AddStock(id uuid.UUID, delta int) error {
	res := r.db.Model(&model.Product{}).
		Where("id = ?", id).
		UpdateColumn("current_stock", gorm.Expr("current_stock + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeductStock removes quantity only if that much is on hand. It reports false
// when the guard rejected the update.
func (r *productRepo) DeductStock(id uuid.UUID, quantity int) (bool, error) {
	res := r.db.Model(&model.Product{}).
		Where("id = ? AND current_stock >= ?", id, quantity).
		UpdateColumn("current_stock", gorm.Expr("current_stock - ?", quantity))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
