package service

import (
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-inventory-mt/internal/apperr"
	"go-inventory-mt/internal/authz"
	"go-inventory-mt/internal/model"
	"go-inventory-mt/internal/repository"
	"go-inventory-mt/pkg/validator"
)

type CreateCompanyRequest struct {
	Name           string `json:"name" validate:"required,max=100"`
	BusinessNumber string `json:"business_number" validate:"required,business_number"`
	Address        string `json:"address" validate:"max=200"`
	Phone          string `json:"phone" validate:"max=20"`
}

type UpdateCompanyRequest struct {
	Name           *string `json:"name" validate:"omitnil,min=1,max=100"`
	BusinessNumber *string `json:"business_number" validate:"omitnil,business_number"`
	Address        *string `json:"address" validate:"omitempty,max=200"`
	Phone          *string `json:"phone" validate:"omitempty,max=20"`
}

type CompanyService interface {
	CreateCompany(c *authz.Caller, req CreateCompanyRequest) (*model.Company, error)
	GetCompany(c *authz.Caller, id uuid.UUID) (*model.Company, error)
	UpdateCompany(c *authz.Caller, id uuid.UUID, req UpdateCompanyRequest) (*model.Company, error)
	DeleteCompany(c *authz.Caller, id uuid.UUID) error
	ListCompanies(c *authz.Caller, search string, page repository.Page) (*PageResult[model.Company], error)
}

type companyService struct {
	db          *gorm.DB
	companyRepo repository.CompanyRepository
	log         *zap.Logger
}

func NewCompanyService(db *gorm.DB, companyRepo repository.CompanyRepository, log *zap.Logger) CompanyService {
	return &companyService{db: db, companyRepo: companyRepo, log: log}
}

// ensureCompanyUnique rejects a name or business number already held by another company.
func ensureCompanyUnique(repo repository.CompanyRepository, id uuid.UUID, name, number string) error {
	if name != "" {
		existing, err := repo.FindByName(name)
		found, ferr := exists(err)
		if ferr != nil {
			return ferr
		}
		if found && existing.ID != id {
			return apperr.Duplicate("company name")
		}
	}
	if number != "" {
		existing, err := repo.FindByBusinessNumber(number)
		found, ferr := exists(err)
		if ferr != nil {
			return ferr
		}
		if found && existing.ID != id {
			return apperr.Duplicate("business number")
		}
	}
	return nil
}

func (s *companyService) CreateCompany(c *authz.Caller, req CreateCompanyRequest) (*model.Company, error) {
	if err := requireCaller(c); err != nil {
		return nil, err
	}
	if err := authz.CanManageCompanies(c); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	if err := ensureCompanyUnique(s.companyRepo, uuid.Nil, req.Name, req.BusinessNumber); err != nil {
		return nil, err
	}

	company := &model.Company{
		Name:           req.Name,
		BusinessNumber: req.BusinessNumber,
		Address:        req.Address,
		Phone:          req.Phone,
	}
	if err := s.companyRepo.Create(company); err != nil {
		return nil, storeErr(err, "company")
	}
	s.log.Info("company created", actor(c), zap.String("company_id", company.ID.String()), zap.String("name", company.Name))
	return company, nil
}

func (s *companyService) GetCompany(c *authz.Caller, id uuid.UUID) (*model.Company, error) {
	if err := requireCaller(c); err != nil {
		return nil, err
	}
	company, err := s.companyRepo.FindByID(id)
	if err != nil {
		return nil, storeErr(err, "company")
	}
	if err := authz.CanAccessCompany(c, company.ID); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *companyService) UpdateCompany(c *authz.Caller, id uuid.UUID, req UpdateCompanyRequest) (*model.Company, error) {
	if err := requireCaller(c); err != nil {
		return nil, err
	}
	if err := authz.CanManageCompanies(c); err != nil {
		return nil, err
	}
	req.Name = trimmed(req.Name)
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	company, err := s.companyRepo.FindByID(id)
	if err != nil {
		return nil, storeErr(err, "company")
	}

	var name, number string
	if req.Name != nil && *req.Name != company.Name {
		name = *req.Name
		company.Name = name
	}
	if req.BusinessNumber != nil && *req.BusinessNumber != company.BusinessNumber {
		number = *req.BusinessNumber
		company.BusinessNumber = number
	}
	if err := ensureCompanyUnique(s.companyRepo, company.ID, name, number); err != nil {
		return nil, err
	}
	if req.Address != nil {
		company.Address = *req.Address
	}
	if req.Phone != nil {
		company.Phone = *req.Phone
	}

	if err := s.companyRepo.Update(company); err != nil {
		return nil, storeErr(err, "company")
	}
	return company, nil
}

func (s *companyService) DeleteCompany(c *authz.Caller, id uuid.UUID) error {
	if err := requireCaller(c); err != nil {
		return err
	}
	if err := authz.CanManageCompanies(c); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.companyRepo.WithTx(tx)
		if _, err := repo.FindByID(id); err != nil {
			return storeErr(err, "company")
		}
		users, err := repo.CountUsers(id)
		if err != nil {
			return apperr.Storage(err)
		}
		if err := authz.CanDeleteCompany(c, users); err != nil {
			return err
		}
		return storeErr(repo.Delete(id), "company")
	})
	if err != nil {
		return err
	}

	s.log.Info("company deleted", actor(c), zap.String("company_id", id.String()))
	return nil
}

func (s *companyService) ListCompanies(c *authz.Caller, search string, page repository.Page) (*PageResult[model.Company], error) {
	if err := requireCaller(c); err != nil {
		return nil, err
	}
	page = page.Normalize()
	filter := repository.CompanyFilter{Search: search, OnlyID: c.ScopeCompany()}

	companies, total, err := s.companyRepo.List(filter, page)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return newPageResult(companies, total, page), nil
}
