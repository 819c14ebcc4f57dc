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
	"go-inventory-mt/pkg/config"
	"go-inventory-mt/pkg/validator"
)

type CreateUserRequest struct {
	Username  string     `json:"username" validate:"required,min=3,max=50"`
	Email     string     `json:"email" validate:"required,email,max=100"`
	Password  string     `json:"password" validate:"required,min=6"`
	Role      model.Role `json:"role" validate:"required"`
	CompanyID *uuid.UUID `json:"company_id"`
}

type RegisterRequest struct {
	Username       string `json:"username" validate:"required,min=3,max=50"`
	Email          string `json:"email" validate:"required,email,max=100"`
	Password       string `json:"password" validate:"required,min=6"`
	CompanyName    string `json:"company_name" validate:"max=100"`
	BusinessNumber string `json:"business_number" validate:"required,business_number"`
	Address        string `json:"address" validate:"max=200"`
	Phone          string `json:"phone" validate:"max=20"`
}

type UpdateUserRequest struct {
	Email     *string     `json:"email,omitempty" validate:"omitnil,email,max=100"`
	Password  *string     `json:"password,omitempty" validate:"omitnil,min=6"`
	Role      *model.Role `json:"role,omitempty"`
	CompanyID *uuid.UUID  `json:"company_id,omitempty"`
	IsActive  *bool       `json:"is_active,omitempty"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type UserService interface {
	CreateUser(c *authz.Caller, req CreateUserRequest) (*model.User, error)
	Register(req RegisterRequest) (*model.User, error)
	ListUsers(c *authz.Caller, companyID *uuid.UUID, page repository.Page) (*PageResult[model.UserResponse], error)
	GetUser(c *authz.Caller, id uuid.UUID) (*model.User, error)
	UpdateUser(c *authz.Caller, id uuid.UUID, req UpdateUserRequest) (*model.User, error)
	DeactivateUser(c *authz.Caller, id uuid.UUID) error
	PurgeUser(c *authz.Caller, id uuid.UUID) error
	ChangePassword(c *authz.Caller, req ChangePasswordRequest) error
	EnsureSuperAdmin(seed config.SeedConfig) (bool, error)
}

type userService struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	sessions    SessionRevoker
	log         *zap.Logger
}

func NewUserService(db *gorm.DB, userRepo repository.UserRepository, companyRepo repository.CompanyRepository, sessions SessionRevoker, log *zap.Logger) UserService {
	return &userService{
		db:          db,
		userRepo:    userRepo,
		companyRepo: companyRepo,
		sessions:    sessions,
		log:         log,
	}
}

func ensureAccountUnique(repo repository.UserRepository, username, email string) error {
	if username != "" {
		_, err := repo.FindByUsername(username)
		found, err := exists(err)
		if err != nil {
			return err
		}
		if found {
			return apperr.Duplicate("username")
		}
	}
	if email != "" {
		_, err := repo.FindByEmail(email)
		found, err := exists(err)
		if err != nil {
			return err
		}
		if found {
			return apperr.Duplicate("email")
		}
	}
	return nil
}

func (s *userService) CreateUser(c *authz.Caller, req CreateUserRequest) (*model.User, error) {
	if err := requireCaller(c); err != nil {
		return nil, err
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	if !req.Role.Valid() {
		return nil, apperr.Validation("unknown role %q", req.Role)
	}

	companyID := req.CompanyID
	if req.Role == model.RoleSuperAdmin {
		companyID = nil
	} else if companyID == nil {
		if c.IsSuperAdmin() {
			return nil, apperr.Validation("company_id is required for role %s", req.Role)
		}
		companyID = c.CompanyID
	}
	if err := authz.CanCreateAccount(c, req.Role, companyID); err != nil {
		return nil, err
	}

	var user *model.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		if companyID != nil {
			if _, err := s.companyRepo.WithTx(tx).FindByID(*companyID); err != nil {
				return storeErr(err, "company")
			}
		}
		if err := ensureAccountUnique(users, req.Username, req.Email); err != nil {
			return err
		}

		user = &model.User{
			Username:     req.Username,
			Email:        req.Email,
			CompanyID:    companyID,
			IsActive:     true,
			TokenVersion: uuid.NewString(),
		}
		user.AssignRole(req.Role)
		if err := user.SetPassword(req.Password); err != nil {
			return apperr.Storage(err)
		}
		return storeErr(users.Create(user), "user")
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user created", actor(c), zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	return user, nil
}

// Register joins the company named by business number, creating it when it
// does not exist yet. The creator of a company becomes its admin.
func (s *userService) Register(req RegisterRequest) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	var user *model.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		companies := s.companyRepo.WithTx(tx)
		if err := ensureAccountUnique(users, req.Username, req.Email); err != nil {
			return err
		}

		role := model.RoleUser
		company, err := companies.FindByBusinessNumber(req.BusinessNumber)
		found, ferr := exists(err)
		if ferr != nil {
			return ferr
		}
		if !found {
			if req.CompanyName == "" {
				return apperr.Validation("company_name is required to register a new company")
			}
			if err := ensureCompanyUnique(companies, uuid.Nil, req.CompanyName, ""); err != nil {
				return err
			}
			company = &model.Company{
				Name:           req.CompanyName,
				BusinessNumber: req.BusinessNumber,
				Address:        req.Address,
				Phone:          req.Phone,
			}
			if err := companies.Create(company); err != nil {
				return storeErr(err, "company")
			}
			role = model.RoleAdmin
		}

		user = &model.User{
			Username:     req.Username,
			Email:        req.Email,
			Role:         role,
			CompanyID:    &company.ID,
			IsActive:     true,
			TokenVersion: uuid.NewString(),
		}
		if err := user.SetPassword(req.Password); err != nil {
			return apperr.Storage(err)
		}
		if err := users.Create(user); err != nil {
			return storeErr(err, "user")
		}
		user.Company = company
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	return user, nil
}

func (s *userService) ListUsers(c *authz.Caller, companyID *uuid.UUID, page repository.Page) (*PageResult[model.UserResponse], error) {
	if err := requireCaller(c); err != nil {
		return nil, err
	}
	page = page.Normalize()

	filter := repository.UserFilter{CompanyID: companyID}
	if !c.IsSuperAdmin() {
		filter = repository.UserFilter{
			CompanyID:       c.ScopeCompany(),
			HideSuperAdmins: true,
			ActiveOnly:      true,
		}
	}

	users, total, err := s.userRepo.List(filter, page)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	out := make([]model.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToResponse())
	}
	return newPageResult(out, total, page), nil
}

func (s *userService) GetUser(c *authz.Caller, id uuid.UUID) (*model.User, error) {
	if err := requireCaller(c); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	if err := authz.CanViewAccount(c, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateUser(c *authz.Caller, id uuid.UUID, req UpdateUserRequest) (*model.User, error) {
	if err := requireCaller(c); err != nil {
		return nil, err
	}
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Role != nil && !req.Role.Valid() {
		return nil, apperr.Validation("unknown role %q", *req.Role)
	}

	var (
		user    *model.User
		revoked bool
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		var err error
		user, err = users.FindByID(id)
		if err != nil {
			return storeErr(err, "user")
		}
		change := authz.AccountChange{Role: req.Role, CompanyID: req.CompanyID, IsActive: req.IsActive}
		if err := authz.CanUpdateAccount(c, user, change); err != nil {
			return err
		}

		if req.Email != nil && *req.Email != user.Email {
			if err := ensureAccountUnique(users, "", *req.Email); err != nil {
				return err
			}
			user.Email = *req.Email
		}
		if req.Password != nil {
			if err := user.SetPassword(*req.Password); err != nil {
				return apperr.Storage(err)
			}
			revoked = true
		}
		if req.CompanyID != nil && (user.CompanyID == nil || *user.CompanyID != *req.CompanyID) {
			company, err := s.companyRepo.WithTx(tx).FindByID(*req.CompanyID)
			if err != nil {
				return storeErr(err, "company")
			}
			user.CompanyID = &company.ID
			user.Company = company
		}
		role := user.Role
		if req.Role != nil {
			role = *req.Role
		}
		user.AssignRole(role)
		if user.Role != model.RoleSuperAdmin && user.CompanyID == nil {
			return apperr.Validation("company_id is required for role %s", user.Role)
		}
		if req.IsActive != nil && *req.IsActive != user.IsActive {
			user.IsActive = *req.IsActive
			if !user.IsActive {
				revoked = true
			}
		}
		if revoked {
			user.TokenVersion = uuid.NewString()
		}
		return storeErr(users.Update(user), "user")
	})
	if err != nil {
		return nil, err
	}
	if revoked {
		revoke(s.sessions, user.ID)
		s.log.Info("user sessions revoked", actor(c), zap.String("user_id", user.ID.String()), zap.Bool("active", user.IsActive))
	}
	return user, nil
}

// DeactivateUser takes an account off active duty and revokes its sessions.
func (s *userService) DeactivateUser(c *authz.Caller, id uuid.UUID) error {
	if err := requireCaller(c); err != nil {
		return err
	}
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return storeErr(err, "user")
	}
	if err := authz.CanDeleteAccount(c, user); err != nil {
		return err
	}

	user.IsActive = false
	user.TokenVersion = uuid.NewString()
	if err := s.userRepo.Update(user); err != nil {
		return storeErr(err, "user")
	}
	revoke(s.sessions, user.ID)
	s.log.Info("user deactivated", actor(c), zap.String("user_id", id.String()))
	return nil
}

// PurgeUser hard-deletes a deactivated account that authored no ledger rows.
func (s *userService) PurgeUser(c *authz.Caller, id uuid.UUID) error {
	if err := requireCaller(c); err != nil {
		return err
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		user, err := users.FindByID(id)
		if err != nil {
			return storeErr(err, "user")
		}
		if err := authz.CanPurgeAccount(c, user); err != nil {
			return err
		}
		if user.IsActive {
			return apperr.Validation("account must be deactivated before it can be purged")
		}
		rows, err := users.CountLedgerRows(id)
		if err != nil {
			return apperr.Storage(err)
		}
		if rows > 0 {
			return apperr.HasDependents("account authored ledger records and cannot be purged")
		}
		return storeErr(users.Delete(id), "user")
	})
	if err != nil {
		return err
	}
	revoke(s.sessions, id)
	s.log.Info("user purged", actor(c), zap.String("user_id", id.String()))
	return nil
}

func (s *userService) ChangePassword(c *authz.Caller, req ChangePasswordRequest) error {
	if err := requireCaller(c); err != nil {
		return err
	}
	if err := validator.Validate(req); err != nil {
		return err
	}
	user, err := s.userRepo.FindByID(c.UserID)
	if err != nil {
		return storeErr(err, "user")
	}
	if !user.CheckPassword(req.OldPassword) {
		return apperr.Validation("current password is incorrect")
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return apperr.Storage(err)
	}
	// The current token dies with the others; the client logs in again.
	user.TokenVersion = uuid.NewString()
	if err := s.userRepo.UpdatePassword(user.ID, user.Password, user.TokenVersion); err != nil {
		return storeErr(err, "user")
	}
	revoke(s.sessions, user.ID)
	return nil
}

// EnsureSuperAdmin creates the bootstrap super admin when none exists. It
// reports whether an account was created.
func (s *userService) EnsureSuperAdmin(seed config.SeedConfig) (bool, error) {
	found, err := s.userRepo.HasSuperAdmin()
	if err != nil {
		return false, apperr.Storage(err)
	}
	if found {
		return false, nil
	}

	user := &model.User{
		Username:     seed.Username,
		Email:        seed.Email,
		Role:         model.RoleSuperAdmin,
		IsActive:     true,
		TokenVersion: uuid.NewString(),
	}
	if err := user.SetPassword(seed.Password); err != nil {
		return false, apperr.Storage(err)
	}
	if err := s.userRepo.Create(user); err != nil {
		return false, storeErr(err, "user")
	}
	s.log.Info("bootstrap super admin created", zap.String("username", user.Username))
	return true, nil
}
