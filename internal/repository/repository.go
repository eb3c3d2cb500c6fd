// Package repository defines the storage interfaces the services depend on.
//
// The directory is the mock "user database" the auth store talks to. It only
// needs lookup by email, lookup by id, insert and update, so that's all the
// interface offers. Implementations live in the memory and sqlite subpackages.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/modernshop/internal/apperror"
	"github.com/sakif/modernshop/internal/model"
)

// AccountRepository is the account directory.
//
// CONTRACT (every implementation):
//   - Create assigns ID (xid) when empty and CreatedAt when zero.
//   - Create fails with an error wrapping apperror.ErrConflict when the email is taken.
//   - GetByEmail / GetByID fail with an error wrapping apperror.ErrNotFound.
//   - Email matching is exact.
//   - Returned accounts are copies; mutating them changes nothing until Update.
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	GetByID(ctx context.Context, id string) (*model.Account, error)
	Update(ctx context.Context, account *model.Account) error
}

// DemoAccount is the account every fresh directory starts with.
func DemoAccount() model.Account {
	return model.Account{
		User: model.User{
			ID:            "1",
			Email:         "demo@modernshop.com",
			FirstName:     "Demo",
			LastName:      "User",
			Phone:         "+1 (555) 123-4567",
			CreatedAt:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			EmailVerified: true,
		},
		Password: "password123",
	}
}

// Seed inserts the demo account unless its email is already registered,
// so it is safe to call on every start against a durable directory.
func Seed(ctx context.Context, repo AccountRepository) error {
	demo := DemoAccount()
	_, err := repo.GetByEmail(ctx, demo.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return fmt.Errorf("repository: checking demo account: %w", err)
	}
	if err := repo.Create(ctx, &demo); err != nil {
		return fmt.Errorf("repository: seeding demo account: %w", err)
	}
	return nil
}
