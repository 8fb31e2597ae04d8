package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

const (
	TokenKey = "epiceats_token"
	UserKey  = "epiceats_user"
)

// SessionUseCase gates work on the presence of a stored token. It also acts
// as the token source for the backend client.
type SessionUseCase interface {
	domain.TokenSource
	IsActive(ctx context.Context) bool
	CurrentUser(ctx context.Context) *domain.ProfileSnapshot
	Current(ctx context.Context) domain.Session
	Establish(ctx context.Context, token string, profile domain.ProfileSnapshot) error
	RefreshProfile(ctx context.Context, profile domain.ProfileSnapshot) error
	Revoke(ctx context.Context) error
}

type sessionUseCase struct {
	store domain.StateStore
	mu    sync.RWMutex
	log   *logrus.Logger
}

func NewSessionUseCase(store domain.StateStore, logger *logrus.Logger) SessionUseCase {
	return &sessionUseCase{
		store: store,
		log:   logger,
	}
}

func (uc *sessionUseCase) token(ctx context.Context) string {
	raw, found, err := uc.store.Get(ctx, TokenKey)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to read session token: %v", err)
		return ""
	}
	if !found {
		return ""
	}
	return string(raw)
}

func (uc *sessionUseCase) user(ctx context.Context) *domain.ProfileSnapshot {
	raw, found, err := uc.store.Get(ctx, UserKey)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to read cached profile: %v", err)
		return nil
	}
	if !found || len(raw) == 0 {
		return nil
	}
	var profile domain.ProfileSnapshot
	if err := json.Unmarshal(raw, &profile); err != nil {
		uc.log.Warnf("Use Case: Cached profile is unreadable, ignoring it: %v", err)
		return nil
	}
	return &profile
}

func (uc *sessionUseCase) Token(ctx context.Context) string {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.token(ctx)
}

func (uc *sessionUseCase) IsActive(ctx context.Context) bool {
	return uc.Token(ctx) != ""
}

// CurrentUser is nil whenever there is no token, even if a profile was cached.
func (uc *sessionUseCase) CurrentUser(ctx context.Context) *domain.ProfileSnapshot {
	return uc.Current(ctx).User
}

func (uc *sessionUseCase) Current(ctx context.Context) domain.Session {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	token := uc.token(ctx)
	if token == "" {
		return domain.Session{}
	}
	return domain.Session{Token: token, User: uc.user(ctx)}
}

// Establish stores the token and profile together.
func (uc *sessionUseCase) Establish(ctx context.Context, token string, profile domain.ProfileSnapshot) error {
	if token == "" {
		return domain.NewValidationError("token", "session token is required")
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("could not encode profile: %w", err)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.store.SetMany(ctx, map[string][]byte{
		TokenKey: []byte(token),
		UserKey:  raw,
	}); err != nil {
		uc.log.Errorf("Use Case: Failed to establish session: %v", err)
		return fmt.Errorf("could not save session: %w", err)
	}
	uc.log.Infof("Use Case: Session established for user %s", profile.ID)
	return nil
}

// RefreshProfile replaces the cached profile of an active session.
func (uc *sessionUseCase) RefreshProfile(ctx context.Context, profile domain.ProfileSnapshot) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("could not encode profile: %w", err)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.token(ctx) == "" {
		return domain.ErrAuthRequired
	}
	if err := uc.store.Set(ctx, UserKey, raw); err != nil {
		uc.log.Errorf("Use Case: Failed to refresh cached profile: %v", err)
		return fmt.Errorf("could not save profile: %w", err)
	}
	return nil
}

// Revoke removes the token and profile together. Revoking without a session is a no-op.
func (uc *sessionUseCase) Revoke(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.store.Delete(ctx, TokenKey, UserKey); err != nil {
		uc.log.Errorf("Use Case: Failed to revoke session: %v", err)
		return fmt.Errorf("could not clear session: %w", err)
	}
	uc.log.Info("Use Case: Session revoked")
	return nil
}
