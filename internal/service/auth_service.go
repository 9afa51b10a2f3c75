package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/session-gateway/internal/auth"
	"github.com/spec-kit/session-gateway/internal/config"
	"github.com/spec-kit/session-gateway/internal/domain"
	"github.com/spec-kit/session-gateway/internal/events"
	"github.com/spec-kit/session-gateway/internal/session"
	apperrors "github.com/spec-kit/session-gateway/pkg/util/errorutil"
)

// AuthService issues, renews and revokes sessions.
type AuthService struct {
	verifier   *auth.CredentialVerifier
	tokens     *auth.TokenManager
	gate       *auth.Gate
	sessions   session.Store
	ttl        time.Duration
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Users      auth.CredentialFinder
	Hasher     auth.PasswordHasher
	Sessions   session.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret)
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		verifier:   auth.NewCredentialVerifier(deps.Users, deps.Hasher),
		tokens:     tokens,
		gate:       auth.NewGate(tokens, deps.Sessions, auth.WithSingleSession(cfg.Auth.SingleSession)),
		sessions:   deps.Sessions,
		ttl:        cfg.Auth.SessionTTL(),
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        now,
	}
}

// Login verifies credentials, signs a token and records the subject as live.
// The token is only returned once the session marker has been stored.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, time.Time, error) {
	user, err := s.verifier.Verify(ctx, username, password)
	if err != nil {
		if errors.Is(err, apperrors.ErrAuthorizeFailed) {
			s.publish(ctx, events.NewEvent(events.EventLoginFailed, nil, events.LoginFailedPayload{Username: username, Reason: "password mismatch"}))
		}
		return nil, "", time.Time{}, err
	}
	if user == nil {
		s.publish(ctx, events.NewEvent(events.EventLoginFailed, nil, events.LoginFailedPayload{Username: username, Reason: "unknown user"}))
		return nil, "", time.Time{}, apperrors.ErrUserNotExist
	}

	expiresAt := s.now().Add(s.ttl)
	token, err := s.tokens.Encode(auth.NewClaims(user.ID, user.Role, expiresAt))
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	if err := s.sessions.Create(ctx, user.ID, token, s.ttl); err != nil {
		return nil, "", time.Time{}, apperrors.NewBackendError(err)
	}

	s.publish(ctx, events.NewEvent(events.EventSessionOpened, &user.ID, events.SessionOpenedPayload{
		Username:  user.Username,
		ExpiresAt: expiresAt,
	}))
	return user, token, expiresAt, nil
}

// Logout removes the subject's session marker. Logging out twice succeeds.
func (s *AuthService) Logout(ctx context.Context, subjectID uuid.UUID) error {
	if err := s.sessions.Expire(ctx, subjectID); err != nil {
		return apperrors.NewBackendError(err)
	}
	s.publish(ctx, events.NewEvent(events.EventSessionClosed, &subjectID, nil))
	return nil
}

// Renew pushes the subject's session expiry a full lifetime forward. A subject
// without a live session gets ErrTokenIsExpired and no session is created.
func (s *AuthService) Renew(ctx context.Context, subjectID uuid.UUID) (time.Time, error) {
	expiresAt := s.now().Add(s.ttl)
	if err := s.sessions.Renew(ctx, subjectID, s.ttl); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return time.Time{}, apperrors.ErrTokenIsExpired
		}
		return time.Time{}, apperrors.NewBackendError(err)
	}
	s.publish(ctx, events.NewEvent(events.EventSessionRenewed, &subjectID, events.SessionRenewedPayload{ExpiresAt: expiresAt}))
	return expiresAt, nil
}

// Authorize checks a raw token against signature and session liveness.
func (s *AuthService) Authorize(ctx context.Context, token string) (*auth.Claims, error) {
	return s.gate.Authorize(ctx, token)
}

// Gate exposes the authorization gate for middleware usage.
func (s *AuthService) Gate() *auth.Gate {
	return s.gate
}

// TokenManager exposes the underlying token manager.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
