// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/pmdworks/pmd-backend/internal/config"
	"github.com/pmdworks/pmd-backend/internal/logger"
	"github.com/pmdworks/pmd-backend/internal/permissions"
	"github.com/pmdworks/pmd-backend/internal/store"
	"github.com/pmdworks/pmd-backend/internal/store/mocks"
	"github.com/pmdworks/pmd-backend/models"
)

type bootstrapFixture struct {
	svc   BootstrapService
	users *mocks.MockUserRepository
	roles *mocks.MockRoleRepository
	orgs  *mocks.MockOrganizationRepository
}

func newBootstrapFixture(t *testing.T, cfg config.App) bootstrapFixture {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserRepository(ctrl)
	roles := mocks.NewMockRoleRepository(ctrl)
	orgs := mocks.NewMockOrganizationRepository(ctrl)
	return bootstrapFixture{
		svc:   NewBootstrapService(users, roles, orgs, cfg, logger.Nop()),
		users: users,
		roles: roles,
		orgs:  orgs,
	}
}

// adminRole carries the full canonical permission document, so the
// reconciler has nothing to merge.
func adminRole() models.Role {
	doc, _ := json.Marshal(permissions.CanonicalAdministrationSet())
	return models.Role{ID: 1, Name: models.RoleAdministration, Permissions: doc}
}

func defaultOrg() models.Organization {
	return models.Organization{ID: 7, Name: "Default Organization", IsActive: true}
}

func expectDefaultOrg(f bootstrapFixture) {
	f.orgs.EXPECT().
		FindOrganizationByName(gomock.Any(), "Default Organization").
		Return(defaultOrg(), nil)
}

func TestEnsureAdminUser_SkippedWithoutEmail(t *testing.T) {
	f := newBootstrapFixture(t, config.App{})

	assert.NoError(t, f.svc.EnsureAdminUser(context.Background()))
}

func TestEnsureAdminUser_CreatesRoleOrgAndUser(t *testing.T) {
	f := newBootstrapFixture(t, config.App{
		AdminEmail:    "Admin@Example.com",
		AdminPassword: "bootstrap-secret",
	})

	f.roles.EXPECT().
		FindRoleByName(gomock.Any(), models.RoleAdministration).
		Return(models.Role{}, store.ErrNoRoleWasFound)
	f.roles.EXPECT().
		CreateRole(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, role models.Role) (models.Role, error) {
			assert.Equal(t, models.RoleAdministration, role.Name)
			var doc map[string][]string
			require.NoError(t, json.Unmarshal(role.Permissions, &doc))
			assert.NotContains(t, doc, "users", "canonical set must respect the forbidden modules")
			assert.Contains(t, doc, "works")
			role.ID = 1
			return role, nil
		})
	f.orgs.EXPECT().
		FindOrganizationByName(gomock.Any(), "Default Organization").
		Return(models.Organization{}, store.ErrNoOrganizationWasFound)
	f.orgs.EXPECT().
		CreateOrganization(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, org models.Organization) (models.Organization, error) {
			assert.Equal(t, "Default Organization", org.Name)
			assert.True(t, org.IsActive)
			org.ID = 7
			return org, nil
		})
	f.users.EXPECT().
		FindUserByEmail(gomock.Any(), "admin@example.com").
		Return(models.User{}, store.ErrNoUserWasFound)
	f.users.EXPECT().
		CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, user models.User) (models.User, error) {
			assert.Equal(t, "admin@example.com", user.Email)
			assert.True(t, user.IsActive)
			require.NotNil(t, user.RoleID)
			assert.Equal(t, int64(1), *user.RoleID)
			require.NotNil(t, user.OrganizationID)
			assert.Equal(t, int64(7), *user.OrganizationID)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("bootstrap-secret")))
			return user, nil
		})

	assert.NoError(t, f.svc.EnsureAdminUser(context.Background()))
}

func TestEnsureAdminUser_RepairsDeactivatedAccount(t *testing.T) {
	f := newBootstrapFixture(t, config.App{
		AdminEmail:    "admin@example.com",
		AdminPassword: "bootstrap-secret",
	})

	role := adminRole()
	wrongRole := int64(9)
	hash, err := bcrypt.GenerateFromPassword([]byte("bootstrap-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	f.roles.EXPECT().
		FindRoleByName(gomock.Any(), models.RoleAdministration).
		Return(role, nil)
	expectDefaultOrg(f)
	f.users.EXPECT().
		FindUserByEmail(gomock.Any(), "admin@example.com").
		Return(models.User{
			ID:           3,
			Email:        "admin@example.com",
			PasswordHash: string(hash),
			IsActive:     false,
			RoleID:       &wrongRole,
		}, nil)
	f.users.EXPECT().
		UpdateUser(gomock.Any(), int64(3), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, update store.UserUpdate) error {
			require.NotNil(t, update.IsActive)
			assert.True(t, *update.IsActive)
			require.NotNil(t, update.RoleID)
			assert.Equal(t, int64(1), *update.RoleID)
			assert.Nil(t, update.PasswordHash, "valid hash must not be reset")
			return nil
		})

	assert.NoError(t, f.svc.EnsureAdminUser(context.Background()))
}

func TestEnsureAdminUser_ResetsUnusableHash(t *testing.T) {
	f := newBootstrapFixture(t, config.App{
		AdminEmail:    "admin@example.com",
		AdminPassword: "bootstrap-secret",
	})

	role := adminRole()
	f.roles.EXPECT().
		FindRoleByName(gomock.Any(), models.RoleAdministration).
		Return(role, nil)
	expectDefaultOrg(f)
	f.users.EXPECT().
		FindUserByEmail(gomock.Any(), "admin@example.com").
		Return(models.User{
			ID:           3,
			Email:        "admin@example.com",
			PasswordHash: "plaintext-migrated-from-legacy",
			IsActive:     true,
			RoleID:       &role.ID,
		}, nil)
	f.users.EXPECT().
		UpdateUser(gomock.Any(), int64(3), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, update store.UserUpdate) error {
			require.NotNil(t, update.PasswordHash)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*update.PasswordHash), []byte("bootstrap-secret")))
			return nil
		})

	assert.NoError(t, f.svc.EnsureAdminUser(context.Background()))
}

func TestEnsureAdminUser_MergesMissingRolePermissions(t *testing.T) {
	f := newBootstrapFixture(t, config.App{
		AdminEmail:    "admin@example.com",
		AdminPassword: "bootstrap-secret",
	})

	partialRole := models.Role{
		ID:          1,
		Name:        models.RoleAdministration,
		Permissions: json.RawMessage(`{"works": ["read"]}`),
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("bootstrap-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	f.roles.EXPECT().
		FindRoleByName(gomock.Any(), models.RoleAdministration).
		Return(partialRole, nil)
	f.roles.EXPECT().
		UpdateRolePermissions(gomock.Any(), int64(1), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, doc json.RawMessage) error {
			var merged map[string][]string
			require.NoError(t, json.Unmarshal(doc, &merged))
			assert.Contains(t, merged["works"], "read")
			assert.Contains(t, merged["works"], "delete")
			assert.Contains(t, merged, "accounting")
			assert.NotContains(t, merged, "users")
			return nil
		})
	expectDefaultOrg(f)
	f.users.EXPECT().
		FindUserByEmail(gomock.Any(), "admin@example.com").
		Return(models.User{
			ID:           3,
			Email:        "admin@example.com",
			PasswordHash: string(hash),
			IsActive:     true,
			RoleID:       &partialRole.ID,
		}, nil)

	assert.NoError(t, f.svc.EnsureAdminUser(context.Background()))
}

func TestEnsureAdminUser_NoRepairNeeded(t *testing.T) {
	f := newBootstrapFixture(t, config.App{
		AdminEmail:    "admin@example.com",
		AdminPassword: "bootstrap-secret",
	})

	role := adminRole()
	hash, err := bcrypt.GenerateFromPassword([]byte("bootstrap-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	f.roles.EXPECT().
		FindRoleByName(gomock.Any(), models.RoleAdministration).
		Return(role, nil)
	expectDefaultOrg(f)
	f.users.EXPECT().
		FindUserByEmail(gomock.Any(), "admin@example.com").
		Return(models.User{
			ID:           3,
			Email:        "admin@example.com",
			PasswordHash: string(hash),
			IsActive:     true,
			RoleID:       &role.ID,
		}, nil)

	// no UpdateUser expectation: nothing to repair
	assert.NoError(t, f.svc.EnsureAdminUser(context.Background()))
}

// The development defaults must produce a working login against a
// freshly bootstrapped database.
func TestEnsureAdminUser_BootstrapAdminCanLogIn(t *testing.T) {
	cfg := config.App{
		AdminEmail:           "admin@pmd.com",
		AdminPassword:        "1102Pequ",
		TokenSignKey:         "test-sign-key",
		TokenIssuer:          "pmd-backend",
		AccessTokenDuration:  24 * time.Hour,
		RefreshTokenDuration: 168 * time.Hour,
	}
	f := newBootstrapFixture(t, cfg)

	role := adminRole()
	f.roles.EXPECT().
		FindRoleByName(gomock.Any(), models.RoleAdministration).
		Return(role, nil)
	expectDefaultOrg(f)
	f.users.EXPECT().
		FindUserByEmail(gomock.Any(), "admin@pmd.com").
		Return(models.User{}, store.ErrNoUserWasFound)

	var created models.User
	f.users.EXPECT().
		CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, user models.User) (models.User, error) {
			user.ID = 1
			created = user
			return user, nil
		})

	require.NoError(t, f.svc.EnsureAdminUser(context.Background()))

	auth := NewAuthService(f.users, f.roles, &fakeAuditService{}, cfg, logger.Nop())
	f.users.EXPECT().
		FindUserByEmail(gomock.Any(), "admin@pmd.com").
		DoAndReturn(func(context.Context, string) (models.User, error) {
			user := created
			user.Role = &role
			return user, nil
		})

	principal, pair, err := auth.Login(context.Background(), "admin@pmd.com", "1102Pequ", RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "admin@pmd.com", principal.Email)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	require.NotNil(t, principal.Role)
	assert.Contains(t, principal.Role.Permissions, "works.read")
	assert.NotContains(t, principal.Role.Permissions, "users.read")
}
