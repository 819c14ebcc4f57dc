package authz

import (
	"github.com/google/uuid"

	"go-inventory-mt/internal/apperr"
	"go-inventory-mt/internal/model"
)

// AccountChange describes the privileged parts of an account update.
type AccountChange struct {
	Role      *model.Role
	CompanyID *uuid.UUID
	IsActive  *bool
}

// CanCreateAccount decides whether c may create an account with role in
// companyID (nil for a super admin account).
func CanCreateAccount(c *Caller, role model.Role, companyID *uuid.UUID) error {
	if role == model.RoleSuperAdmin {
		if !c.IsSuperAdmin() {
			return apperr.Denied(ReasonCreateSuperAdmin)
		}
		return nil
	}
	if c.IsSuperAdmin() {
		return nil
	}
	if !c.IsAdmin() {
		return apperr.Denied(ReasonAdminOnly)
	}
	if companyID == nil || !c.InCompany(*companyID) {
		return apperr.Denied(ReasonOtherCompany)
	}
	return nil
}

// CanViewAccount allows a super admin, members of the account's company, and
// the account owner.
func CanViewAccount(c *Caller, target *model.User) error {
	if c.IsSuperAdmin() || c.UserID == target.ID {
		return nil
	}
	if target.CompanyID == nil || !c.InCompany(*target.CompanyID) {
		return apperr.Denied(ReasonOtherCompany)
	}
	return nil
}

// CanUpdateAccount decides whether c may apply change to target.
func CanUpdateAccount(c *Caller, target *model.User, change AccountChange) error {
	self := c.UserID == target.ID

	if !self {
		if target.Role == model.RoleSuperAdmin {
			return apperr.Denied(ReasonEditOtherSuperAdmin)
		}
		if !c.IsSuperAdmin() {
			if target.CompanyID == nil || !c.InCompany(*target.CompanyID) {
				return apperr.Denied(ReasonOtherCompany)
			}
			if !c.IsAdmin() {
				return apperr.Denied(ReasonSelfOnly)
			}
		}
	}

	if change.Role != nil && *change.Role != target.Role {
		if !c.IsSuperAdmin() {
			return apperr.Denied(ReasonChangeRole)
		}
		if self {
			return apperr.Denied(ReasonDemoteSelf)
		}
	}
	if change.CompanyID != nil && !sameCompany(change.CompanyID, target.CompanyID) && !c.IsSuperAdmin() {
		return apperr.Denied(ReasonChangeCompany)
	}
	if change.IsActive != nil && *change.IsActive != target.IsActive {
		// Deactivation is account removal and follows the same gate.
		if !*change.IsActive {
			return CanDeleteAccount(c, target)
		}
		if !c.IsAdmin() {
			return apperr.Denied(ReasonAdminOnly)
		}
	}
	return nil
}

// CanDeleteAccount is the gate for deactivating or purging target. The self
// check comes before any ownership check.
func CanDeleteAccount(c *Caller, target *model.User) error {
	if c.UserID == target.ID {
		return apperr.Denied(ReasonDeleteSelf)
	}
	if target.Role == model.RoleSuperAdmin {
		return apperr.Denied(ReasonDeleteSuperAdmin)
	}
	if c.IsSuperAdmin() {
		return nil
	}
	if target.CompanyID == nil || !c.InCompany(*target.CompanyID) {
		return apperr.Denied(ReasonOtherCompany)
	}
	if !c.IsAdmin() {
		return apperr.Denied(ReasonAdminOnly)
	}
	return nil
}

// CanPurgeAccount additionally restricts hard deletion to super admins.
func CanPurgeAccount(c *Caller, target *model.User) error {
	if err := CanDeleteAccount(c, target); err != nil {
		return err
	}
	return requireSuperAdmin(c)
}

func sameCompany(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
