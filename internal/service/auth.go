package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/modernshop/internal/apperror"
	"github.com/sakif/modernshop/internal/latency"
	"github.com/sakif/modernshop/internal/model"
	"github.com/sakif/modernshop/internal/persist"
	"github.com/sakif/modernshop/internal/repository"
)

// AuthStorageKey is the name the session snapshot is stored under.
const AuthStorageKey = "auth-storage"

// DefaultAuthLatency is the simulated round-trip of the mock auth backend.
const DefaultAuthLatency = latency.Fixed(1 * time.Second)

// persistedAuth is the part of AuthState that survives a restart.
type persistedAuth struct {
	User            *model.User `json:"user"`
	IsAuthenticated bool        `json:"isAuthenticated"`
}

// AuthService is the auth store: the current session plus the operations that
// change it, backed by an account directory.
//
// STATES:
//
//	SignedOut      → User nil, IsAuthenticated false
//	Authenticating → IsLoading true (during the simulated round-trip)
//	SignedIn       → User set, IsAuthenticated true
//
// Every latency-bearing operation sets IsLoading, waits once on the Delayer,
// then settles, clearing IsLoading on every path out.
//
// OVERLAPPING CALLS:
// Nothing orders two in-flight operations. Each one's final Set lands when its
// own wait ends, and the last one to land wins.
type AuthService struct {
	store    *persist.Store[model.AuthState]
	accounts repository.AccountRepository
	delay    latency.Delayer
	logger   *slog.Logger
}

// NewAuthService creates the auth store, restores the persisted session, and
// makes the restored state consistent: IsAuthenticated is true exactly when
// a user is present.
func NewAuthService(
	storage persist.Storage,
	accounts repository.AccountRepository,
	delay latency.Delayer,
	logger *slog.Logger,
) *AuthService {
	if delay == nil {
		delay = DefaultAuthLatency
	}

	store := persist.New(model.AuthState{}, persist.Config[model.AuthState]{
		Name:    AuthStorageKey,
		Storage: storage,
		Logger:  logger,
		Partialize: func(s model.AuthState) any {
			return persistedAuth{User: s.User, IsAuthenticated: s.IsAuthenticated}
		},
	})

	if st := store.Get(); st.IsAuthenticated != (st.User != nil) {
		logger.Warn("restored session was inconsistent, repairing",
			slog.Bool("has_user", st.User != nil),
			slog.Bool("authenticated", st.IsAuthenticated),
		)
		store.Set(func(s model.AuthState) model.AuthState {
			s.IsAuthenticated = s.User != nil
			return s
		})
	}

	return &AuthService{
		store:    store,
		accounts: accounts,
		delay:    delay,
		logger:   logger,
	}
}

// State returns the current session.
func (s *AuthService) State() model.AuthState {
	return s.store.Get()
}

// Subscribe registers l for every session change.
func (s *AuthService) Subscribe(l persist.Listener[model.AuthState]) (unsubscribe func()) {
	return s.store.Subscribe(l)
}

// Login signs in with an exact email and password match.
//
// A failed attempt changes nothing except the loading flag: whoever was signed
// in before stays signed in. Unknown email and wrong password produce the same
// error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	s.begin()
	s.delay.Delay()

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		s.settle()
		return nil, fmt.Errorf("service: looking up account: %w", err)
	}
	if err != nil || !passwordMatches(account.Password, password) {
		s.settle()
		s.logger.Info("login failed")
		return nil, apperror.InvalidCredentials()
	}

	user := account.User
	s.signIn(&user)
	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	return cloneUser(&user), nil
}

// Signup registers a new account and signs it in.
func (s *AuthService) Signup(ctx context.Context, data model.SignupData) (*model.User, error) {
	s.begin()
	s.delay.Delay()

	_, err := s.accounts.GetByEmail(ctx, data.Email)
	if err == nil {
		s.settle()
		return nil, apperror.DuplicateAccount()
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		s.settle()
		return nil, fmt.Errorf("service: checking email: %w", err)
	}

	account := &model.Account{
		User: model.User{
			Email:         data.Email,
			FirstName:     data.FirstName,
			LastName:      data.LastName,
			Phone:         data.Phone,
			CreatedAt:     time.Now().UTC(),
			EmailVerified: false,
		},
		Password: data.Password,
	}

	// Another request may register the same email between the lookup and this
	// insert. Create's conflict covers that case.
	if err := s.accounts.Create(ctx, account); err != nil {
		s.settle()
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.DuplicateAccount()
		}
		return nil, fmt.Errorf("service: creating account: %w", err)
	}

	user := account.User
	s.signIn(&user)
	s.logger.Info("account created", slog.String("user_id", user.ID))
	return cloneUser(&user), nil
}

// Logout ends the session. No latency, no directory change.
func (s *AuthService) Logout() {
	prev := s.store.Get().User
	s.store.Set(func(st model.AuthState) model.AuthState {
		st.User = nil
		st.IsAuthenticated = false
		return st
	})
	if prev != nil {
		s.logger.Info("user logged out", slog.String("user_id", prev.ID))
	}
}

// UpdateProfile merges the given fields into the session user and the
// matching directory entry.
//
// The session is checked again when the round-trip ends. If the user signed
// out meanwhile, nothing is written and the call fails with NotAuthenticated;
// a logout during the wait is not undone. Once the directory write has been
// attempted the call succeeds.
func (s *AuthService) UpdateProfile(ctx context.Context, update model.ProfileUpdate) (*model.User, error) {
	current := s.store.Get().User
	if current == nil {
		return nil, apperror.NotAuthenticated()
	}
	userID := current.ID

	s.begin()
	s.delay.Delay()

	current = s.store.Get().User
	if current == nil || current.ID != userID {
		s.settle()
		return nil, apperror.NotAuthenticated()
	}

	account, err := s.accounts.GetByID(ctx, userID)
	switch {
	case err == nil:
		update.Apply(&account.User)
		if err := s.accounts.Update(ctx, account); err != nil {
			s.logger.Warn("profile update not saved to directory",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	case errors.Is(err, apperror.ErrNotFound):
		s.logger.Warn("session user missing from directory", slog.String("user_id", userID))
	default:
		s.logger.Warn("profile update not saved to directory",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	updated := *current
	update.Apply(&updated)
	s.store.Set(func(st model.AuthState) model.AuthState {
		st.IsLoading = false
		if st.User == nil || st.User.ID != userID {
			return st
		}
		u := *st.User
		update.Apply(&u)
		st.User = &u
		updated = u
		return st
	})

	s.logger.Info("profile updated", slog.String("user_id", userID))
	return cloneUser(&updated), nil
}

// ResetPassword simulates sending a reset email. It only checks that the
// account exists; nothing is mutated.
func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	s.begin()
	s.delay.Delay()
	defer s.settle()

	if _, err := s.accounts.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.AccountNotFound()
		}
		return fmt.Errorf("service: looking up account: %w", err)
	}

	s.logger.Info("password reset requested")
	return nil
}

// ChangePassword replaces the directory credential of the signed-in user.
// The session record doesn't change; it never holds the credential.
func (s *AuthService) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	current := s.store.Get().User
	if current == nil {
		return apperror.NotAuthenticated()
	}
	userID := current.ID

	s.begin()
	s.delay.Delay()
	defer s.settle()

	account, err := s.accounts.GetByID(ctx, userID)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return fmt.Errorf("service: looking up account: %w", err)
	}
	if err != nil || !passwordMatches(account.Password, currentPassword) {
		return apperror.WrongPassword()
	}

	account.Password = newPassword
	if err := s.accounts.Update(ctx, account); err != nil {
		return fmt.Errorf("service: saving new password: %w", err)
	}

	s.logger.Info("password changed", slog.String("user_id", userID))
	return nil
}

// CheckAuth reconciles the flag with the session: a present user with the flag
// unset becomes authenticated. It never clears anything.
func (s *AuthService) CheckAuth() model.AuthState {
	st := s.store.Get()
	if st.User == nil || st.IsAuthenticated {
		return st
	}
	return s.store.Set(func(st model.AuthState) model.AuthState {
		if st.User != nil {
			st.IsAuthenticated = true
		}
		return st
	})
}

func (s *AuthService) begin() {
	s.store.Set(func(st model.AuthState) model.AuthState {
		st.IsLoading = true
		return st
	})
}

func (s *AuthService) settle() {
	s.store.Set(func(st model.AuthState) model.AuthState {
		st.IsLoading = false
		return st
	})
}

func (s *AuthService) signIn(u *model.User) {
	s.store.Set(func(st model.AuthState) model.AuthState {
		st.User = u
		st.IsAuthenticated = true
		st.IsLoading = false
		return st
	})
}

func passwordMatches(stored, given string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

// cloneUser keeps callers from mutating the record the store holds.
func cloneUser(u *model.User) *model.User {
	c := *u
	return &c
}
