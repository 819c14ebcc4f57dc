package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User is an account. CompanyID is nil exactly when Role is super_admin.
type User struct {
	BaseModel
	Username     string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Password     string     `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	Role         Role       `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	CompanyID    *uuid.UUID `gorm:"type:uuid;index" json:"company_id"`
	Company      *Company   `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	TokenVersion string     `gorm:"type:varchar(64);default:''" json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// AssignRole sets the role and keeps the company invariant: a super_admin never
// belongs to a company.
func (u *User) AssignRole(role Role) {
	u.Role = role
	if role == RoleSuperAdmin {
		u.CompanyID = nil
		u.Company = nil
	}
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Role        Role       `json:"role"`
	CompanyID   *uuid.UUID `json:"company_id"`
	Company     *Company   `json:"company,omitempty"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		CompanyID:   u.CompanyID,
		Company:     u.Company,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
