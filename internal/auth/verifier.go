package auth

import (
	"context"
	"sync"

	"github.com/spec-kit/session-gateway/internal/domain"
	"github.com/spec-kit/session-gateway/pkg/util/errorutil"
)

// CredentialFinder looks up credential records. A missing user is (nil, nil).
type CredentialFinder interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}

// CredentialVerifier checks presented passwords against stored hashes.
type CredentialVerifier struct {
	users  CredentialFinder
	hasher PasswordHasher

	decoyOnce sync.Once
	decoy     string
}

// NewCredentialVerifier constructs a verifier.
func NewCredentialVerifier(users CredentialFinder, hasher PasswordHasher) *CredentialVerifier {
	return &CredentialVerifier{users: users, hasher: hasher}
}

// Verify returns the matching record, or (nil, nil) when no such username
// exists. A wrong password yields ErrAuthorizeFailed; lookup failures are
// backend errors and unreadable hashes are hash errors.
func (v *CredentialVerifier) Verify(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := v.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, errorutil.NewBackendError(err)
	}
	if user == nil {
		// Unknown usernames cost one hash check, same as known ones.
		_, _ = v.hasher.Verify(v.decoyHash(), password)
		return nil, nil
	}

	ok, err := v.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return nil, errorutil.NewHashError(err)
	}
	if !ok {
		return nil, errorutil.ErrAuthorizeFailed
	}
	return user, nil
}

func (v *CredentialVerifier) decoyHash() string {
	v.decoyOnce.Do(func() {
		v.decoy, _ = v.hasher.Hash("decoy-password")
	})
	return v.decoy
}
