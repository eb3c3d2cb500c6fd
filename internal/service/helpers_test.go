package service

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/sakif/modernshop/internal/apperror"
	"github.com/sakif/modernshop/internal/model"
	"github.com/sakif/modernshop/internal/repository"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// testLogger only prints errors so test output stays readable.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// hookDelay runs a callback instead of sleeping. Tests use it to look at the
// store while an operation is "on the network".
type hookDelay func()

func (h hookDelay) Delay() { h() }

// fakeAccountRepo is an in-memory repository.AccountRepository with switches
// for simulating directory failures.
type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]model.Account // keyed by ID
	nextID   int

	getErr    error // returned by GetByEmail / GetByID when set
	updateErr error // returned by Update when set
	creates   int
	updates   int
}

var _ repository.AccountRepository = (*fakeAccountRepo)(nil)

func newFakeAccountRepo(seed ...model.Account) *fakeAccountRepo {
	f := &fakeAccountRepo{accounts: make(map[string]model.Account)}
	for _, a := range seed {
		f.accounts[a.ID] = a
	}
	return f
}

// seededRepo holds only the demo account.
func seededRepo() *fakeAccountRepo {
	return newFakeAccountRepo(repository.DemoAccount())
}

func (f *fakeAccountRepo) Create(_ context.Context, a *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.accounts {
		if existing.Email == a.Email {
			return apperror.Conflict("account", a.Email)
		}
	}
	f.nextID++
	a.ID = "fake-" + string(rune('0'+f.nextID))
	f.accounts[a.ID] = *a
	f.creates++
	return nil
}

func (f *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, a := range f.accounts {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, apperror.NotFound("account", email)
}

func (f *fakeAccountRepo) GetByID(_ context.Context, id string) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.accounts[id]
	if !ok {
		return nil, apperror.NotFound("account", id)
	}
	return &a, nil
}

func (f *fakeAccountRepo) Update(_ context.Context, a *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.accounts[a.ID]; !ok {
		return apperror.NotFound("account", a.ID)
	}
	f.accounts[a.ID] = *a
	f.updates++
	return nil
}

func (f *fakeAccountRepo) get(id string) model.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accounts[id]
}

func (f *fakeAccountRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.accounts)
}
