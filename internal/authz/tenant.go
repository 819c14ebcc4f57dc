package authz

import (
	"github.com/google/uuid"

	"go-inventory-mt/internal/apperr"
)

// CanManageCompanies gates company create and update.
func CanManageCompanies(c *Caller) error {
	return requireSuperAdmin(c)
}

// CanDeleteCompany requires a super admin and a company with no users.
func CanDeleteCompany(c *Caller, userCount int64) error {
	if err := requireSuperAdmin(c); err != nil {
		return err
	}
	if userCount > 0 {
		return apperr.HasDependents(ReasonCompanyHasUsers)
	}
	return nil
}

// CanManageCatalog gates product create and update: company admins inside
// their company, super admins anywhere.
func CanManageCatalog(c *Caller, companyID uuid.UUID) error {
	if err := CanAccessCompany(c, companyID); err != nil {
		return err
	}
	if !c.IsAdmin() {
		return apperr.Denied(ReasonAdminOnly)
	}
	return nil
}

// CanDeleteProduct adds the no-sales requirement to CanManageCatalog.
func CanDeleteProduct(c *Caller, companyID uuid.UUID, saleCount int64) error {
	if err := CanManageCatalog(c, companyID); err != nil {
		return err
	}
	if saleCount > 0 {
		return apperr.HasDependents(ReasonProductHasSales)
	}
	return nil
}

// CanRecordLedger gates purchase and sale operations on a product owned by
// companyID. Any active member of the company may record ledger rows.
func CanRecordLedger(c *Caller, companyID uuid.UUID) error {
	return CanAccessCompany(c, companyID)
}
