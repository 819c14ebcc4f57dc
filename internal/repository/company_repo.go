package repository

import (
	"go-inventory-mt/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompanyFilter narrows a company listing. OnlyID confines it to one company.
type CompanyFilter struct {
	Search string
	OnlyID *uuid.UUID
}

type CompanyRepository interface {
	WithTx(tx *gorm.DB) CompanyRepository
	Create(company *model.Company) error
	FindByID(id uuid.UUID) (*model.Company, error)
	FindByName(name string) (*model.Company, error)
	FindByBusinessNumber(number string) (*model.Company, error)
	Update(company *model.Company) error
	Delete(id uuid.UUID) error
	List(filter CompanyFilter, page Page) ([]model.Company, int64, error)
	CountUsers(id uuid.UUID) (int64, error)
}

type companyRepo struct {
	db *gorm.DB
}

func NewCompanyRepo(db *gorm.DB) CompanyRepository {
	return &companyRepo{db}
}

func (r *companyRepo) WithTx(tx *gorm.DB) CompanyRepository {
	return &companyRepo{tx}
}

func (r *companyRepo) Create(company *model.Company) error {
	return r.db.Omit(clause.Associations).Create(company).Error
}

func (r *companyRepo) FindByID(id uuid.UUID) (*model.Company, error) {
	var company model.Company
	if err := r.db.First(&company, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepo) FindByName(name string) (*model.Company, error) {
	var company model.Company
	if err := r.db.Where("name = ?", name).First(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepo) FindByBusinessNumber(number string) (*model.Company, error) {
	var company model.Company
	if err := r.db.Where("business_number = ?", number).First(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepo) Update(company *model.Company) error {
	return r.db.Omit(clause.Associations).Save(company).Error
}

// Delete removes the company together with its catalog and the ledgers of
// every product in it.
func (r *companyRepo) Delete(id uuid.UUID) error {
	products := r.db.Model(&model.Product{}).Select("id").Where("company_id = ?", id)
	if err := r.db.Where("product_id IN (?)", products).Delete(&model.SaleRecord{}).Error; err != nil {
		return err
	}
	if err := r.db.Where("product_id IN (?)", products).Delete(&model.PurchaseInfo{}).Error; err != nil {
		return err
	}
	if err := r.db.Where("company_id = ?", id).Delete(&model.Product{}).Error; err != nil {
		return err
	}
	res := r.db.Delete(&model.Company{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *companyRepo) List(filter CompanyFilter, page Page) ([]model.Company, int64, error) {
	q := r.db.Model(&model.Company{})
	if filter.OnlyID != nil {
		q = q.Where("id = ?", *filter.OnlyID)
	}
	if filter.Search != "" {
		p := containsPattern(filter.Search)
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(business_number) LIKE ? ESCAPE '\')`, p, p)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var companies []model.Company
	if err := page.apply(q.Order("name ASC")).Find(&companies).Error; err != nil {
		return nil, 0, err
	}
	return companies, total, nil
}

func (r *companyRepo) CountUsers(id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("company_id = ?", id).Count(&count).Error
	return count, err
}
