// Package memory implements the account directory as a process-lifetime map.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/modernshop/internal/apperror"
	"github.com/sakif/modernshop/internal/model"
	"github.com/sakif/modernshop/internal/repository"
)

var _ repository.AccountRepository = (*Directory)(nil)

// Directory keeps accounts indexed by id and by email.
//
// The mutex makes the map safe under net/http's goroutine-per-request model.
// It does not make overlapping auth operations sequential: two signups with
// the same email can both pass their latency window, and the second Create
// is the one that sees the conflict.
type Directory struct {
	mu      sync.RWMutex
	byID    map[string]*model.Account
	byEmail map[string]string
}

// NewDirectory returns an empty directory. Call repository.Seed to add the demo account.
func NewDirectory() *Directory {
	return &Directory{
		byID:    make(map[string]*model.Account),
		byEmail: make(map[string]string),
	}
}

func (d *Directory) Create(_ context.Context, account *model.Account) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, taken := d.byEmail[account.Email]; taken {
		return apperror.Conflict("account", account.Email)
	}
	if account.ID == "" {
		account.ID = xid.New().String()
	}
	if _, taken := d.byID[account.ID]; taken {
		return apperror.Conflict("account", account.ID)
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	stored := *account
	d.byID[stored.ID] = &stored
	d.byEmail[stored.Email] = stored.ID
	return nil
}

func (d *Directory) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byEmail[email]
	if !ok {
		return nil, apperror.NotFound("account", email)
	}
	result := *d.byID[id]
	return &result, nil
}

func (d *Directory) GetByID(_ context.Context, id string) (*model.Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	a, ok := d.byID[id]
	if !ok {
		return nil, apperror.NotFound("account", id)
	}
	result := *a
	return &result, nil
}

// Update replaces the stored account with the same id. Email is the lookup
// key and can't change through Update.
func (d *Directory) Update(_ context.Context, account *model.Account) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	existing, ok := d.byID[account.ID]
	if !ok {
		return apperror.NotFound("account", account.ID)
	}

	stored := *account
	stored.Email = existing.Email
	stored.CreatedAt = existing.CreatedAt
	d.byID[stored.ID] = &stored
	return nil
}
