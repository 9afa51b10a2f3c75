package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/spec-kit/session-gateway/internal/session"
	"github.com/spec-kit/session-gateway/pkg/util/errorutil"
)

// Gate decides whether a presented token belongs to a live session. A valid
// signature is necessary but not sufficient: the subject must also hold a
// marker in the session store.
type Gate struct {
	tokens        *TokenManager
	sessions      session.Store
	singleSession bool
}

// GateOption customizes a Gate.
type GateOption func(*Gate)

// WithSingleSession rejects tokens that differ from the one recorded at the
// subject's latest login, so a new login supersedes older tokens.
func WithSingleSession(enabled bool) GateOption {
	return func(g *Gate) {
		g.singleSession = enabled
	}
}

// NewGate constructs a gate.
func NewGate(tokens *TokenManager, sessions session.Store, opts ...GateOption) *Gate {
	g := &Gate{tokens: tokens, sessions: sessions}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authorize returns the token's claims when its subject is live. The embedded
// exp claim is not enforced; the session store's ttl governs access. Store
// failures surface as backend errors and never authorize.
func (g *Gate) Authorize(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, errorutil.ErrTokenNotExist
	}

	claims, err := g.tokens.Decode(token, false)
	if err != nil {
		return nil, errorutil.Wrap(errorutil.ErrAuthorizeFailed, err)
	}

	subjectID, err := claims.SubjectID()
	if err != nil {
		return nil, errorutil.Wrap(errorutil.ErrTokenIsExpired, err)
	}

	marker, err := g.sessions.Get(ctx, subjectID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, errorutil.ErrTokenIsExpired
		}
		return nil, errorutil.NewBackendError(err)
	}

	if g.singleSession && subtle.ConstantTimeCompare([]byte(marker.Token), []byte(token)) != 1 {
		return nil, errorutil.ErrTokenIsExpired
	}
	return claims, nil
}
