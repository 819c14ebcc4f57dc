package repository

import (
	"time"

	"go-inventory-mt/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserFilter narrows a user listing.
type UserFilter struct {
	CompanyID       *uuid.UUID
	HideSuperAdmins bool
	ActiveOnly      bool
}

type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	FindByUsername(username string) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindByID(id uuid.UUID) (*model.User, error)
	Create(user *model.User) error
	Update(user *model.User) error
	Delete(id uuid.UUID) error
	UpdatePassword(userID uuid.UUID, hashedPassword, tokenVersion string) error
	List(filter UserFilter, page Page) ([]model.User, int64, error)
	UpdateTokenVersion(userID uuid.UUID, version string) error
	RecordLogin(userID uuid.UUID, version string, at time.Time) error
	CountLedgerRows(userID uuid.UUID) (int64, error)
	HasSuperAdmin() (bool, error)
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) WithTx(tx *gorm.DB) UserRepository {
	return &userRepo{tx}
}

func (r *userRepo) FindByUsername(username string) (*model.User, error) {
	var user model.User
	if err := r.db.Preload("Company").Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByID(id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.Preload("Company").First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Create(user *model.User) error {
	return r.db.Omit(clause.Associations).Create(user).Error
}

// Update writes every column, including a nil company and a false is_active.
func (r *userRepo) Update(user *model.User) error {
	return r.db.Omit(clause.Associations).Save(user).Error
}

// UpdatePassword stores a new hash together with a new token version.
func (r *userRepo) UpdatePassword(userID uuid.UUID, hashedPassword, tokenVersion string) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"password_hash": hashedPassword,
		"token_version": tokenVersion,
	}).Error
}

func (r *userRepo) Delete(id uuid.UUID) error {
	res := r.db.Delete(&model.User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepo) List(filter UserFilter, page Page) ([]model.User, int64, error) {
	q := r.db.Model(&model.User{})
	if filter.CompanyID != nil {
		q = q.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.HideSuperAdmins {
		q = q.Where("role <> ?", model.RoleSuperAdmin)
	}
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	if err := page.apply(q.Preload("Company").Order("created_at DESC")).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepo) UpdateTokenVersion(userID uuid.UUID, version string) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("token_version", version).Error
}

func (r *userRepo) RecordLogin(userID uuid.UUID, version string, at time.Time) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"token_version": version,
		"last_login_at": at,
	}).Error
}

// CountLedgerRows counts purchases and sales authored by the user.
func (r *userRepo) CountLedgerRows(userID uuid.UUID) (int64, error) {
	var purchases, sales int64
	if err := r.db.Model(&model.PurchaseInfo{}).Where("created_by = ?", userID).Count(&purchases).Error; err != nil {
		return 0, err
	}
	if err := r.db.Model(&model.SaleRecord{}).Where("created_by = ?", userID).Count(&sales).Error; err != nil {
		return 0, err
	}
	return purchases + sales, nil
}

func (r *userRepo) HasSuperAdmin() (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("role = ?", model.RoleSuperAdmin).Count(&count).Error
	return count > 0, err
}
