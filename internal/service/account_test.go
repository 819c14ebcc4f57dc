package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-inventory-mt/internal/apperr"
	"go-inventory-mt/internal/model"
	"go-inventory-mt/internal/repository"
	"go-inventory-mt/pkg/config"
)

func TestCreateUserRules(t *testing.T) {
	env := newTestEnv(t)
	acme := env.company(t, "Acme", "1234567890")
	globex := env.company(t, "Globex", "0987654321")
	bob := env.member(t, "bob", model.RoleAdmin, acme.ID)
	carol := env.member(t, "carol", model.RoleUser, acme.ID)

	dave, err := env.users.CreateUser(bob, CreateUserRequest{Username: "dave", Email: "dave@example.com", Password: "secret1", Role: model.RoleUser})
	require.NoError(t, err)
	require.NotNil(t, dave.CompanyID)
	assert.Equal(t, acme.ID, *dave.CompanyID)
	assert.NotEqual(t, "secret1", dave.Password)

	cases := []struct {
		name   string
		caller string
		req    CreateUserRequest
		kind   error
	}{
		{"admin creates super admin", "bob", CreateUserRequest{Username: "sa2", Email: "sa2@example.com", Password: "secret1", Role: model.RoleSuperAdmin}, apperr.ErrPermissionDenied},
		{"admin creates in other company", "bob", CreateUserRequest{Username: "xavier", Email: "xavier@example.com", Password: "secret1", Role: model.RoleUser, CompanyID: &globex.ID}, apperr.ErrPermissionDenied},
		{"user creates user", "carol", CreateUserRequest{Username: "yasmin", Email: "yasmin@example.com", Password: "secret1", Role: model.RoleUser}, apperr.ErrPermissionDenied},
		{"super admin omits company", "root", CreateUserRequest{Username: "zelda", Email: "zelda@example.com", Password: "secret1", Role: model.RoleAdmin}, apperr.ErrValidation},
		{"duplicate username", "bob", CreateUserRequest{Username: "dave", Email: "d2@example.com", Password: "secret1", Role: model.RoleUser}, apperr.ErrDuplicateKey},
		{"duplicate email", "bob", CreateUserRequest{Username: "dave2", Email: "dave@example.com", Password: "secret1", Role: model.RoleUser}, apperr.ErrDuplicateKey},
		{"short password", "bob", CreateUserRequest{Username: "walter", Email: "walter@example.com", Password: "123", Role: model.RoleUser}, apperr.ErrValidation},
		{"unknown role", "bob", CreateUserRequest{Username: "victor", Email: "victor@example.com", Password: "secret1", Role: "owner"}, apperr.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			caller := bob
			switch tc.caller {
			case "carol":
				caller = carol
			case "root":
				caller = env.super
			}
			_, err := env.users.CreateUser(caller, tc.req)
			assert.ErrorIs(t, err, tc.kind)
		})
	}

	sa, err := env.users.CreateUser(env.super, CreateUserRequest{Username: "sa2", Email: "sa2@example.com", Password: "secret1", Role: model.RoleSuperAdmin, CompanyID: &acme.ID})
	require.NoError(t, err)
	assert.Nil(t, sa.CompanyID)
}

func TestUpdateUserRules(t *testing.T) {
	env := newTestEnv(t)
	acme := env.company(t, "Acme", "1234567890")
	globex := env.company(t, "Globex", "0987654321")
	bob := env.member(t, "bob", model.RoleAdmin, acme.ID)
	carol := env.member(t, "carol", model.RoleUser, acme.ID)
	eve := env.member(t, "eve", model.RoleAdmin, globex.ID)

	email := "carol.new@example.com"
	updated, err := env.users.UpdateUser(carol, carol.UserID, UpdateUserRequest{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, email, updated.Email)

	promote := model.RoleAdmin
	_, err = env.users.UpdateUser(bob, carol.UserID, UpdateUserRequest{Role: &promote})
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	_, err = env.users.UpdateUser(carol, bob.UserID, UpdateUserRequest{Email: &email})
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	_, err = env.users.UpdateUser(eve, carol.UserID, UpdateUserRequest{Email: &email})
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	_, err = env.users.UpdateUser(bob, carol.UserID, UpdateUserRequest{CompanyID: &globex.ID})
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	taken := "bob@example.com"
	_, err = env.users.UpdateUser(carol, carol.UserID, UpdateUserRequest{Email: &taken})
	assert.ErrorIs(t, err, apperr.ErrDuplicateKey)

	off := false
	_, err = env.users.UpdateUser(carol, carol.UserID, UpdateUserRequest{IsActive: &off})
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
	_, err = env.users.UpdateUser(bob, bob.UserID, UpdateUserRequest{IsActive: &off})
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
	_, err = env.users.UpdateUser(env.super, env.super.UserID, UpdateUserRequest{IsActive: &off})
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
	demote := model.RoleAdmin
	_, err = env.users.UpdateUser(env.super, env.super.UserID, UpdateUserRequest{Role: &demote})
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
	for _, id := range []uuid.UUID{carol.UserID, bob.UserID, env.super.UserID} {
		stored, err := env.userRepo.FindByID(id)
		require.NoError(t, err)
		assert.True(t, stored.IsActive)
	}
	root, err := env.userRepo.FindByID(env.super.UserID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleSuperAdmin, root.Role)

	dan := env.member(t, "dan", model.RoleUser, acme.ID)
	before, err := env.userRepo.FindByID(dan.UserID)
	require.NoError(t, err)
	retired, err := env.users.UpdateUser(bob, dan.UserID, UpdateUserRequest{IsActive: &off})
	require.NoError(t, err)
	assert.False(t, retired.IsActive)
	assert.NotEqual(t, before.TokenVersion, retired.TokenVersion)

	moved, err := env.users.UpdateUser(env.super, carol.UserID, UpdateUserRequest{CompanyID: &globex.ID})
	require.NoError(t, err)
	assert.Equal(t, globex.ID, *moved.CompanyID)

	super := model.RoleSuperAdmin
	elevated, err := env.users.UpdateUser(env.super, bob.UserID, UpdateUserRequest{Role: &super})
	require.NoError(t, err)
	assert.Equal(t, model.RoleSuperAdmin, elevated.Role)
	assert.Nil(t, elevated.CompanyID)

	stored, err := env.userRepo.FindByID(bob.UserID)
	require.NoError(t, err)
	assert.Nil(t, stored.CompanyID)

	user := model.RoleUser
	_, err = env.users.UpdateUser(env.super, bob.UserID, UpdateUserRequest{Role: &user})
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied, "another super admin's account is off limits")
}

func TestDeactivateAndPurge(t *testing.T) {
	env := newTestEnv(t)
	acme := env.company(t, "Acme", "1234567890")
	globex := env.company(t, "Globex", "0987654321")
	bob := env.member(t, "bob", model.RoleAdmin, acme.ID)
	carol := env.member(t, "carol", model.RoleUser, acme.ID)
	dave := env.member(t, "dave", model.RoleUser, acme.ID)
	eve := env.member(t, "eve", model.RoleAdmin, globex.ID)

	assert.ErrorIs(t, env.users.DeactivateUser(bob, bob.UserID), apperr.ErrPermissionDenied)
	assert.ErrorIs(t, env.users.DeactivateUser(bob, env.super.UserID), apperr.ErrPermissionDenied)
	assert.ErrorIs(t, env.users.DeactivateUser(eve, carol.UserID), apperr.ErrPermissionDenied)
	assert.ErrorIs(t, env.users.DeactivateUser(dave, carol.UserID), apperr.ErrPermissionDenied)

	product := env.product(t, bob, "W-1", 3)
	_, err := env.sales.CreateSale(carol, CreateSaleRequest{ProductID: product.ID, Quantity: 1, UnitPrice: dec(20)})
	require.NoError(t, err)

	assert.ErrorIs(t, env.users.PurgeUser(env.super, carol.UserID), apperr.ErrValidation)

	require.NoError(t, env.users.DeactivateUser(bob, carol.UserID))
	_, err = env.auth.Login("carol", "secret1")
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	list, err := env.users.ListUsers(bob, nil, repository.Page{})
	require.NoError(t, err)
	for _, u := range list.Items {
		assert.NotEqual(t, "carol", u.Username)
		assert.NotEqual(t, model.RoleSuperAdmin, u.Role)
	}

	assert.ErrorIs(t, env.users.PurgeUser(bob, carol.UserID), apperr.ErrPermissionDenied)
	assert.ErrorIs(t, env.users.PurgeUser(env.super, carol.UserID), apperr.ErrHasDependents)

	require.NoError(t, env.users.DeactivateUser(env.super, dave.UserID))
	require.NoError(t, env.users.PurgeUser(env.super, dave.UserID))
	_, err = env.users.GetUser(env.super, dave.UserID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	all, err := env.users.ListUsers(env.super, &acme.ID, repository.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)
}

func TestGetUserVisibility(t *testing.T) {
	env := newTestEnv(t)
	acme := env.company(t, "Acme", "1234567890")
	globex := env.company(t, "Globex", "0987654321")
	bob := env.member(t, "bob", model.RoleUser, acme.ID)
	carol := env.member(t, "carol", model.RoleUser, acme.ID)
	eve := env.member(t, "eve", model.RoleAdmin, globex.ID)

	_, err := env.users.GetUser(bob, carol.UserID)
	require.NoError(t, err)
	_, err = env.users.GetUser(eve, carol.UserID)
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
	_, err = env.users.GetUser(nil, carol.UserID)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	founder, err := env.users.Register(RegisterRequest{
		Username:       "founder",
		Email:          "founder@example.com",
		Password:       "secret1",
		CompanyName:    "Initech",
		BusinessNumber: "5555555555",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, founder.Role)
	require.NotNil(t, founder.Company)
	assert.Equal(t, "Initech", founder.Company.Name)

	joiner, err := env.users.Register(RegisterRequest{
		Username:       "joiner",
		Email:          "joiner@example.com",
		Password:       "secret1",
		BusinessNumber: "5555555555",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, joiner.Role)
	assert.Equal(t, *founder.CompanyID, *joiner.CompanyID)

	_, err = env.users.Register(RegisterRequest{
		Username:       "orphan",
		Email:          "orphan@example.com",
		Password:       "secret1",
		BusinessNumber: "6666666666",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = env.users.Register(RegisterRequest{
		Username:       "joiner",
		Email:          "other@example.com",
		Password:       "secret1",
		BusinessNumber: "5555555555",
	})
	assert.ErrorIs(t, err, apperr.ErrDuplicateKey)
	assert.EqualValues(t, 1, env.count(t, &model.Company{}))
}

func TestLoginRotatesSession(t *testing.T) {
	env := newTestEnv(t)
	acme := env.company(t, "Acme", "1234567890")
	env.member(t, "bob", model.RoleAdmin, acme.ID)

	_, err := env.auth.Login("bob", "wrong-password")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	_, err = env.auth.Login("nobody", "secret1")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	assert.EqualError(t, err, "invalid username or password")

	first, err := env.auth.Login("bob", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "bearer", first.TokenType)
	assert.NotNil(t, first.User.LastLoginAt)

	caller, user, err := env.auth.Authenticate(first.Token)
	require.NoError(t, err)
	assert.Equal(t, "bob", caller.Username)
	assert.Equal(t, acme.ID, *caller.CompanyID)
	assert.Equal(t, user.ID, caller.UserID)

	second, err := env.auth.Login("bob", "secret1")
	require.NoError(t, err)

	_, _, err = env.auth.Authenticate(first.Token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	assert.Contains(t, err.Error(), "another device")

	resp, err := env.auth.ValidateToken(second.Token)
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Equal(t, "bob", resp.User.Username)

	_, err = env.auth.ValidateToken("")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	_, err = env.auth.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestDeactivationRevokesTokens(t *testing.T) {
	env := newTestEnv(t)
	acme := env.company(t, "Acme", "1234567890")
	bob := env.member(t, "bob", model.RoleAdmin, acme.ID)
	carol := env.member(t, "carol", model.RoleUser, acme.ID)

	login, err := env.auth.Login("carol", "secret1")
	require.NoError(t, err)

	active := false
	_, err = env.users.UpdateUser(bob, carol.UserID, UpdateUserRequest{IsActive: &active})
	require.NoError(t, err)

	_, _, err = env.auth.Authenticate(login.Token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	assert.Equal(t, 2, env.sessions.count(carol.UserID), "login rotation and deactivation both end live streams")
}

func TestPasswordResetRevokesSessions(t *testing.T) {
	env := newTestEnv(t)
	acme := env.company(t, "Acme", "1234567890")
	bob := env.member(t, "bob", model.RoleAdmin, acme.ID)
	carol := env.member(t, "carol", model.RoleUser, acme.ID)

	login, err := env.auth.Login("carol", "secret1")
	require.NoError(t, err)
	streams := env.sessions.count(carol.UserID)

	email := "carol.work@example.com"
	_, err = env.users.UpdateUser(bob, carol.UserID, UpdateUserRequest{Email: &email})
	require.NoError(t, err)
	_, _, err = env.auth.Authenticate(login.Token)
	require.NoError(t, err, "a profile edit keeps the session")
	assert.Equal(t, streams, env.sessions.count(carol.UserID))

	reset := "resetpass"
	_, err = env.users.UpdateUser(bob, carol.UserID, UpdateUserRequest{Password: &reset})
	require.NoError(t, err)
	_, _, err = env.auth.Authenticate(login.Token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	assert.Equal(t, streams+1, env.sessions.count(carol.UserID))

	login, err = env.auth.Login("carol", "resetpass")
	require.NoError(t, err)
	who, _, err := env.auth.Authenticate(login.Token)
	require.NoError(t, err)
	require.NoError(t, env.users.ChangePassword(who, ChangePasswordRequest{OldPassword: "resetpass", NewPassword: "newsecret"}))
	_, _, err = env.auth.Authenticate(login.Token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	acme := env.company(t, "Acme", "1234567890")
	bob := env.member(t, "bob", model.RoleUser, acme.ID)

	err := env.users.ChangePassword(bob, ChangePasswordRequest{OldPassword: "nope", NewPassword: "newsecret"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	require.NoError(t, env.users.ChangePassword(bob, ChangePasswordRequest{OldPassword: "secret1", NewPassword: "newsecret"}))
	_, err = env.auth.Login("bob", "secret1")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	_, err = env.auth.Login("bob", "newsecret")
	require.NoError(t, err)
}

func TestEnsureSuperAdminRunsOnce(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.users.EnsureSuperAdmin(config.SeedConfig{Username: "other", Email: "other@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.False(t, created)

	_, err = env.auth.Login("root", "rootpass")
	require.NoError(t, err)
}

func TestDashboardScope(t *testing.T) {
	env := newTestEnv(t)
	acme := env.company(t, "Acme", "1234567890")
	globex := env.company(t, "Globex", "0987654321")
	bob := env.member(t, "bob", model.RoleUser, acme.ID)
	admin := env.member(t, "alice", model.RoleAdmin, acme.ID)
	eve := env.member(t, "eve", model.RoleAdmin, globex.ID)

	widget := env.product(t, admin, "W-1", 0)
	env.product(t, eve, "G-1", 4)

	_, err := env.purchases.CreatePurchase(bob, CreatePurchaseRequest{ProductID: widget.ID, SupplierName: "S", Quantity: 6, UnitPrice: dec(1)})
	require.NoError(t, err)
	_, err = env.sales.CreateSale(bob, CreateSaleRequest{ProductID: widget.ID, Quantity: 2, UnitPrice: dec(20)})
	require.NoError(t, err)

	stats, err := env.dashboard.GetDashboardStats(bob, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalProducts)
	assert.True(t, dec(80).Equal(stats.TotalValuation), stats.TotalValuation.String())

	_, err = env.dashboard.GetDashboardStats(bob, &globex.ID)
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	all, err := env.dashboard.GetDashboardStats(env.super, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.TotalProducts)

	movement, err := env.dashboard.GetStockMovement(bob, nil, 0)
	require.NoError(t, err)
	require.Len(t, movement, 7)
	today := movement[len(movement)-1]
	assert.Equal(t, 6, today.Purchased)
	assert.Equal(t, 2, today.Sold)

	movement, err = env.dashboard.GetStockMovement(env.super, &globex.ID, 3)
	require.NoError(t, err)
	require.Len(t, movement, 3)
	assert.Zero(t, movement[2].Purchased)

	low, err := env.dashboard.GetLowStock(eve, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, low)
}
