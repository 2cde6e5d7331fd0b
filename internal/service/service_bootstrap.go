// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pmdworks/pmd-backend/internal/config"
	"github.com/pmdworks/pmd-backend/internal/logger"
	"github.com/pmdworks/pmd-backend/internal/permissions"
	"github.com/pmdworks/pmd-backend/internal/store"
	"github.com/pmdworks/pmd-backend/models"
	"golang.org/x/crypto/bcrypt"
)

// defaultOrganizationName is the tenant created by the bootstrap
// reconciler when no organization exists for the admin account.
const defaultOrganizationName = "Default Organization"

// bootstrapService repairs the designated administrator account at
// startup: the administration role exists with the canonical permission
// grant, the default organization exists, and the admin user exists, is
// active, carries the role, and has a usable bcrypt hash.
//
// Every step is idempotent; running the reconciler against a healthy
// database changes nothing.
type bootstrapService struct {
	userRepository store.UserRepository
	roleRepository store.RoleRepository
	orgRepository  store.OrganizationRepository

	adminEmail    string
	adminPassword string

	logger *logger.Logger
}

// NewBootstrapService constructs a BootstrapService from the app
// configuration.
func NewBootstrapService(users store.UserRepository, roles store.RoleRepository, orgs store.OrganizationRepository, cfg config.App, logger *logger.Logger) BootstrapService {
	return &bootstrapService{
		userRepository: users,
		roleRepository: roles,
		orgRepository:  orgs,
		adminEmail:     cfg.AdminEmail,
		adminPassword:  cfg.AdminPassword,
		logger:         logger,
	}
}

// EnsureAdminUser reconciles the admin role, the default organization,
// and the admin account. With no admin email configured the reconciler
// is a no-op.
func (b *bootstrapService) EnsureAdminUser(ctx context.Context) error {
	if b.adminEmail == "" {
		b.logger.Info().Str("func", "*bootstrapService.EnsureAdminUser").
			Msg("no admin email configured, skipping admin bootstrap")
		return nil
	}

	role, err := b.ensureAdminRole(ctx)
	if err != nil {
		return err
	}

	org, err := b.ensureDefaultOrganization(ctx)
	if err != nil {
		return err
	}

	return b.reconcileAdminAccount(ctx, role, org)
}

// findOrCreateAdministrationRole returns the administration role,
// creating it with the canonical permission grant when absent. Shared
// with registration, which defaults new accounts to this role.
func findOrCreateAdministrationRole(ctx context.Context, roles store.RoleRepository) (models.Role, error) {
	role, err := roles.FindRoleByName(ctx, models.RoleAdministration)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, store.ErrNoRoleWasFound) {
		return models.Role{}, fmt.Errorf("administration role lookup failed: %w", err)
	}

	doc, err := json.Marshal(permissions.CanonicalAdministrationSet())
	if err != nil {
		return models.Role{}, fmt.Errorf("marshaling canonical permission set failed: %w", err)
	}

	role, err = roles.CreateRole(ctx, models.Role{
		Name:        models.RoleAdministration,
		Description: "full administrative access",
		Permissions: doc,
	})
	if err != nil {
		return models.Role{}, fmt.Errorf("administration role creation failed: %w", err)
	}
	return role, nil
}

// ensureAdminRole finds or creates the administration role and merges
// any canonical modules missing from its permission document.
func (b *bootstrapService) ensureAdminRole(ctx context.Context) (models.Role, error) {
	role, err := findOrCreateAdministrationRole(ctx, b.roleRepository)
	if err != nil {
		return models.Role{}, err
	}

	current := permissions.Normalize(role.Permissions, role.Name)
	merged, changed := permissions.MergeCanonicalAdministration(current)
	if !changed {
		return role, nil
	}

	doc, err := json.Marshal(merged)
	if err != nil {
		return models.Role{}, fmt.Errorf("marshaling merged permission set failed: %w", err)
	}
	if err = b.roleRepository.UpdateRolePermissions(ctx, role.ID, doc); err != nil {
		return models.Role{}, fmt.Errorf("repairing administration role permissions failed: %w", err)
	}
	role.Permissions = doc
	b.logger.Warn().Str("func", "*bootstrapService.EnsureAdminUser").
		Msg("administration role was missing canonical permissions, merged them in")

	return role, nil
}

// ensureDefaultOrganization finds or creates the default tenant.
func (b *bootstrapService) ensureDefaultOrganization(ctx context.Context) (models.Organization, error) {
	org, err := b.orgRepository.FindOrganizationByName(ctx, defaultOrganizationName)
	if err == nil {
		return org, nil
	}
	if !errors.Is(err, store.ErrNoOrganizationWasFound) {
		return models.Organization{}, fmt.Errorf("default organization lookup failed: %w", err)
	}

	org, err = b.orgRepository.CreateOrganization(ctx, models.Organization{
		Name:     defaultOrganizationName,
		IsActive: true,
	})
	if err != nil {
		return models.Organization{}, fmt.Errorf("default organization creation failed: %w", err)
	}
	b.logger.Info().Str("func", "*bootstrapService.EnsureAdminUser").Msg("created default organization")
	return org, nil
}

// reconcileAdminAccount creates the admin user if absent, or repairs
// activation, role assignment, and an unusable password hash.
func (b *bootstrapService) reconcileAdminAccount(ctx context.Context, role models.Role, org models.Organization) error {
	user, err := b.userRepository.FindUserByEmail(ctx, normalizeEmail(b.adminEmail))
	if err != nil {
		if !errors.Is(err, store.ErrNoUserWasFound) {
			return fmt.Errorf("admin user lookup failed: %w", err)
		}
		return b.createAdminAccount(ctx, role, org)
	}

	update := store.UserUpdate{}
	touched := false

	if !user.IsActive {
		active := true
		update.IsActive = &active
		touched = true
	}
	if user.RoleID == nil || *user.RoleID != role.ID {
		update.RoleID = &role.ID
		touched = true
	}
	if _, err := bcrypt.Cost([]byte(user.PasswordHash)); err != nil && b.adminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(b.adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("admin password hashing failed: %w", err)
		}
		hashStr := string(hash)
		update.PasswordHash = &hashStr
		touched = true
		b.logger.Warn().Str("func", "*bootstrapService.EnsureAdminUser").
			Msg("admin password hash was unusable, resetting from configuration")
	}

	if !touched {
		return nil
	}

	if err := b.userRepository.UpdateUser(ctx, user.ID, update); err != nil {
		return fmt.Errorf("admin user repair failed: %w", err)
	}
	b.logger.Info().Str("func", "*bootstrapService.EnsureAdminUser").Msg("repaired admin user")
	return nil
}

func (b *bootstrapService) createAdminAccount(ctx context.Context, role models.Role, org models.Organization) error {
	if b.adminPassword == "" {
		return errors.New("admin user is absent and no admin password is configured")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(b.adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("admin password hashing failed: %w", err)
	}

	_, err = b.userRepository.CreateUser(ctx, models.User{
		Email:          normalizeEmail(b.adminEmail),
		PasswordHash:   string(hash),
		FullName:       "Administrator",
		IsActive:       true,
		RoleID:         &role.ID,
		OrganizationID: &org.ID,
	})
	if err != nil {
		return fmt.Errorf("admin user creation failed: %w", err)
	}

	b.logger.Info().Str("func", "*bootstrapService.EnsureAdminUser").Msg("created admin user")
	return nil
}
