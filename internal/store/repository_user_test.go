// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pmdworks/pmd-backend/internal/logger"
	"github.com/pmdworks/pmd-backend/models"
)

func newTestUserRepo(t *testing.T) (*userRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.Nop()
	repo := &userRepository{
		db:     &DB{DB: db, logger: l},
		logger: l,
	}
	return repo, mock, db
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

var userColumns = []string{
	"id", "email", "password_hash", "full_name", "phone", "is_active",
	"role_id", "organization_id", "created_at", "updated_at",
	"r_id", "r_name", "r_description", "r_permissions", "r_created_at", "r_updated_at",
	"o_id", "o_name", "o_is_active", "o_created_at",
}

func TestCreateUser_Success(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	ctx := context.Background()
	roleID := int64(2)
	user := models.User{
		Email:        "mason@example.com",
		PasswordHash: "$2a$10$hash",
		FullName:     "Mason Pereira",
		Phone:        "+15550100",
		IsActive:     true,
		RoleID:       &roleID,
	}

	now := time.Now()
	rows := sqlmock.
		NewRows([]string{"id", "created_at", "updated_at"}).
		AddRow(1, now, now)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(user.Email, user.PasswordHash, user.FullName, user.Phone, user.IsActive, user.RoleID, user.OrganizationID).
		WillReturnRows(rows)

	created, err := repo.CreateUser(ctx, user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != 1 {
		t.Errorf("expected ID=1, got %d", created.ID)
	}
	if created.Email != user.Email {
		t.Errorf("expected email %s, got %s", user.Email, created.Email)
	}
}

func TestCreateUser_UniqueViolation(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	ctx := context.Background()
	user := models.User{Email: "mason@example.com"}

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(pgError(pgerrcode.UniqueViolation))

	_, err := repo.CreateUser(ctx, user)
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestCreateUser_UnexpectedDBError(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	ctx := context.Background()
	user := models.User{Email: "mason@example.com"}

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(errors.New("db network error"))

	_, err := repo.CreateUser(ctx, user)
	if err == nil || !strings.Contains(err.Error(), "unexpected DB error") {
		t.Fatalf("expected wrapped unexpected DB error, got %v", err)
	}
}

func TestFindUserByEmail_Success(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()
	roleID := int64(2)
	orgID := int64(9)

	rows := sqlmock.NewRows(userColumns).AddRow(
		1, "mason@example.com", "$2a$10$hash", "Mason Pereira", "+15550100", true,
		roleID, orgID, now, now,
		roleID, models.RoleOperator, "field operator", []byte(`{"works":["read"]}`), now, now,
		orgID, "NorthBuild LLC", true, now,
	)

	mock.ExpectQuery("SELECT u.id").
		WithArgs("mason@example.com").
		WillReturnRows(rows)

	user, err := repo.FindUserByEmail(ctx, "mason@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 1 {
		t.Errorf("expected ID=1, got %d", user.ID)
	}
	if user.Role == nil || user.Role.Name != models.RoleOperator {
		t.Errorf("expected joined role %q, got %+v", models.RoleOperator, user.Role)
	}
	if user.Organization == nil || user.Organization.Name != "NorthBuild LLC" {
		t.Errorf("expected joined organization, got %+v", user.Organization)
	}
}

func TestFindUserByEmail_NoJoinedRecords(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()

	rows := sqlmock.NewRows(userColumns).AddRow(
		1, "mason@example.com", "$2a$10$hash", "Mason Pereira", "", true,
		nil, nil, now, now,
		nil, nil, nil, nil, nil, nil,
		nil, nil, nil, nil,
	)

	mock.ExpectQuery("SELECT u.id").
		WithArgs("mason@example.com").
		WillReturnRows(rows)

	user, err := repo.FindUserByEmail(ctx, "mason@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Role != nil {
		t.Errorf("expected nil role for user without role_id, got %+v", user.Role)
	}
	if user.Organization != nil {
		t.Errorf("expected nil organization, got %+v", user.Organization)
	}
}

func TestFindUserByEmail_NotFound(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectQuery("SELECT u.id").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.FindUserByEmail(ctx, "nobody@example.com")
	if !errors.Is(err, ErrNoUserWasFound) {
		t.Fatalf("expected ErrNoUserWasFound, got %v", err)
	}
}

func TestFindUserByID_NotFound(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectQuery("SELECT u.id").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.FindUserByID(ctx, 404)
	if !errors.Is(err, ErrNoUserWasFound) {
		t.Fatalf("expected ErrNoUserWasFound, got %v", err)
	}
}

func TestUpdateUser_Success(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	ctx := context.Background()
	hash := "$2a$10$newhash"
	active := true

	mock.ExpectExec("UPDATE users").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateUser(ctx, 1, UserUpdate{PasswordHash: &hash, IsActive: &active})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdateUser_NoRowsAffected(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	ctx := context.Background()
	hash := "$2a$10$newhash"

	mock.ExpectExec("UPDATE users").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateUser(ctx, 404, UserUpdate{PasswordHash: &hash})
	if !errors.Is(err, ErrUserNotUpdated) {
		t.Fatalf("expected ErrUserNotUpdated, got %v", err)
	}
}

func TestUpdateUser_EmptyUpdate(t *testing.T) {
	repo, _, db := newTestUserRepo(t)
	defer db.Close()

	err := repo.UpdateUser(context.Background(), 1, UserUpdate{})
	if !errors.Is(err, ErrBuildingSQLQuery) {
		t.Fatalf("expected ErrBuildingSQLQuery, got %v", err)
	}
}
