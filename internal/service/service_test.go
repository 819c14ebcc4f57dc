package service

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-inventory-mt/internal/authz"
	"go-inventory-mt/internal/model"
	"go-inventory-mt/internal/repository"
	"go-inventory-mt/pkg/config"
	"go-inventory-mt/pkg/database"
	"go-inventory-mt/pkg/jwt"
)

type recordedEvent struct {
	companyID uuid.UUID
	event     StockEvent
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *fakeNotifier) Publish(companyID uuid.UUID, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{companyID: companyID, event: payload.(StockEvent)})
}

func (n *fakeNotifier) actions() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.event.Action)
	}
	return out
}

type fakeRevoker struct {
	mu      sync.Mutex
	revoked []uuid.UUID
}

func (r *fakeRevoker) RevokeUser(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked = append(r.revoked, userID)
}

func (r *fakeRevoker) count(userID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, id := range r.revoked {
		if id == userID {
			n++
		}
	}
	return n
}

type testEnv struct {
	db        *gorm.DB
	notifier  *fakeNotifier
	sessions  *fakeRevoker
	companies CompanyService
	users     UserService
	auth      AuthService
	products  ProductService
	purchases PurchaseService
	sales     SaleService
	dashboard DashboardService
	userRepo  repository.UserRepository
	super     *authz.Caller
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	log := zap.NewNop()
	notifier := &fakeNotifier{}
	sessions := &fakeRevoker{}
	userRepo := repository.NewUserRepo(db)
	companyRepo := repository.NewCompanyRepo(db)
	productRepo := repository.NewProductRepo(db)
	purchaseRepo := repository.NewPurchaseRepo(db)
	saleRepo := repository.NewSaleRepo(db)

	env := &testEnv{
		db:        db,
		notifier:  notifier,
		sessions:  sessions,
		companies: NewCompanyService(db, companyRepo, log),
		users:     NewUserService(db, userRepo, companyRepo, sessions, log),
		auth:      NewAuthService(userRepo, jwt.NewManager("test-secret", time.Hour, "test"), nil, sessions, log),
		products:  NewProductService(db, productRepo, companyRepo, purchaseRepo, notifier, nil, log),
		purchases: NewPurchaseService(db, purchaseRepo, productRepo, notifier, nil, log),
		sales:     NewSaleService(db, saleRepo, productRepo, notifier, nil, log),
		dashboard: NewDashboardService(repository.NewDashboardRepo(db)),
		userRepo:  userRepo,
	}

	created, err := env.users.EnsureSuperAdmin(config.SeedConfig{Username: "root", Email: "root@example.com", Password: "rootpass"})
	require.NoError(t, err)
	require.True(t, created)
	root, err := userRepo.FindByUsername("root")
	require.NoError(t, err)
	env.super = authz.NewCaller(root)
	return env
}

func (e *testEnv) company(t *testing.T, name, number string) *model.Company {
	t.Helper()
	c, err := e.companies.CreateCompany(e.super, CreateCompanyRequest{Name: name, BusinessNumber: number})
	require.NoError(t, err)
	return c
}

func (e *testEnv) member(t *testing.T, username string, role model.Role, companyID uuid.UUID) *authz.Caller {
	t.Helper()
	u, err := e.users.CreateUser(e.super, CreateUserRequest{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "secret1",
		Role:      role,
		CompanyID: &companyID,
	})
	require.NoError(t, err)
	return authz.NewCaller(u)
}

func (e *testEnv) product(t *testing.T, c *authz.Caller, code string, stock int) *model.Product {
	t.Helper()
	p, err := e.products.CreateProduct(c, CreateProductRequest{
		Code:         code,
		Name:         "Product " + code,
		CurrentStock: stock,
		Price:        decimal.NewFromInt(20),
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var p model.Product
	require.NoError(t, e.db.First(&p, "id = ?", id).Error)
	return p.CurrentStock
}

func (e *testEnv) count(t *testing.T, table interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(table).Count(&n).Error)
	return n
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func intPtr(v int) *int {
	return &v
}
