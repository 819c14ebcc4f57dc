package service

import (
	"time"

	"github.com/google/uuid"

	"go-inventory-mt/internal/apperr"
	"go-inventory-mt/internal/authz"
	"go-inventory-mt/internal/model"
	"go-inventory-mt/internal/repository"
)

const maxMovementDays = 366

type DashboardService interface {
	GetStockMovement(c *authz.Caller, companyID *uuid.UUID, days int) ([]repository.StockMovementData, error)
	GetDashboardStats(c *authz.Caller, companyID *uuid.UUID) (*repository.DashboardStats, error)
	GetLowStock(c *authz.Caller, companyID *uuid.UUID, limit int) ([]model.Product, error)
}

type dashboardService struct {
	dashboardRepo repository.DashboardRepository
	now           func() time.Time
}

func NewDashboardService(dashboardRepo repository.DashboardRepository) DashboardService {
	return &dashboardService{
		dashboardRepo: dashboardRepo,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// scope returns the tenant a dashboard query covers. A super admin may pick
// one company or see all of them; everyone else sees their own.
func scope(c *authz.Caller, companyID *uuid.UUID) (*uuid.UUID, error) {
	if err := requireCaller(c); err != nil {
		return nil, err
	}
	own := c.ScopeCompany()
	if own == nil {
		return companyID, nil
	}
	if companyID != nil && *companyID != *own {
		return nil, apperr.Denied(authz.ReasonOtherCompany)
	}
	return own, nil
}

// GetStockMovement covers the last days calendar days, today included.
func (s *dashboardService) GetStockMovement(c *authz.Caller, companyID *uuid.UUID, days int) ([]repository.StockMovementData, error) {
	tenant, err := scope(c, companyID)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 7
	}
	if days > maxMovementDays {
		days = maxMovementDays
	}

	endDate := s.now()
	startDate := endDate.Truncate(24*time.Hour).AddDate(0, 0, -(days - 1))

	data, err := s.dashboardRepo.GetStockMovement(tenant, startDate, endDate)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return data, nil
}

func (s *dashboardService) GetDashboardStats(c *authz.Caller, companyID *uuid.UUID) (*repository.DashboardStats, error) {
	tenant, err := scope(c, companyID)
	if err != nil {
		return nil, err
	}
	stats, err := s.dashboardRepo.GetDashboardStats(tenant)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return stats, nil
}

func (s *dashboardService) GetLowStock(c *authz.Caller, companyID *uuid.UUID, limit int) ([]model.Product, error) {
	tenant, err := scope(c, companyID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > repository.MaxLimit {
		limit = 20
	}
	products, err := s.dashboardRepo.GetLowStock(tenant, limit)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return products, nil
}
