// Package authz decides whether a caller may perform an operation on a
// tenant-owned entity. Every function is a pure decision: it returns nil to
// allow or an apperr PermissionDenied/HasDependents error naming the reason.
package authz

import (
	"github.com/google/uuid"

	"go-inventory-mt/internal/apperr"
	"go-inventory-mt/internal/model"
)

const (
	ReasonOtherCompany        = "resource belongs to another company"
	ReasonSuperAdminOnly      = "only a super admin may perform this operation"
	ReasonAdminOnly           = "company administrator privileges required"
	ReasonCreateSuperAdmin    = "only a super admin may create super admin accounts"
	ReasonChangeRole          = "only a super admin may change a user's role"
	ReasonChangeCompany       = "only a super admin may change a user's company"
	ReasonDeleteSelf          = "you cannot delete your own account"
	ReasonDeleteSuperAdmin    = "super admin accounts cannot be deleted"
	ReasonEditOtherSuperAdmin = "a super admin account can only be edited by its owner"
	ReasonSelfOnly            = "users may only manage their own account"
	ReasonDemoteSelf          = "a super admin cannot change their own role"
	ReasonCompanyHasUsers     = "company still has users; remove them first"
	ReasonProductHasSales     = "product has sale records and cannot be deleted"
)

// Caller is the resolved identity behind a request.
type Caller struct {
	UserID    uuid.UUID
	Username  string
	Role      model.Role
	CompanyID *uuid.UUID
}

// NewCaller builds a Caller from a stored account.
func NewCaller(u *model.User) *Caller {
	return &Caller{
		UserID:    u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CompanyID: u.CompanyID,
	}
}

func (c *Caller) IsSuperAdmin() bool {
	return c != nil && c.Role == model.RoleSuperAdmin
}

// IsAdmin is true for company admins and super admins.
func (c *Caller) IsAdmin() bool {
	return c != nil && (c.Role == model.RoleAdmin || c.Role == model.RoleSuperAdmin)
}

// InCompany reports whether the caller belongs to companyID.
func (c *Caller) InCompany(companyID uuid.UUID) bool {
	return c != nil && c.CompanyID != nil && *c.CompanyID == companyID
}

// ScopeCompany returns the company a non-super caller is confined to, or nil
// for a super admin who sees every tenant.
func (c *Caller) ScopeCompany() *uuid.UUID {
	if c.IsSuperAdmin() {
		return nil
	}
	if c == nil || c.CompanyID == nil {
		none := uuid.Nil
		return &none
	}
	return c.CompanyID
}

// CanAccessCompany allows a super admin everywhere and everyone else only
// inside their own company.
func CanAccessCompany(c *Caller, companyID uuid.UUID) error {
	if c.IsSuperAdmin() || c.InCompany(companyID) {
		return nil
	}
	return apperr.Denied(ReasonOtherCompany)
}

func requireSuperAdmin(c *Caller) error {
	if c.IsSuperAdmin() {
		return nil
	}
	return apperr.Denied(ReasonSuperAdminOnly)
}
