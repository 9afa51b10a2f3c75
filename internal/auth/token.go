package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/session-gateway/internal/domain"
	"github.com/spec-kit/session-gateway/pkg/util/errorutil"
)

// TokenManager signs and decodes session tokens with a process-wide HMAC secret.
// Rotating the secret invalidates every outstanding token.
type TokenManager struct {
	secret []byte
	method jwt.SigningMethod
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret), method: jwt.SigningMethodHS256}
}

// Claims describes the JWT payload: sub, exp and role.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// NewClaims builds the claim set for a session subject.
func NewClaims(subjectID uuid.UUID, role domain.Role, expiresAt time.Time) *Claims {
	return &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
}

// SubjectID parses the subject claim back into a user id.
func (c *Claims) SubjectID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Encode signs claims into a compact token string. It only fails on misconfiguration.
func (tm *TokenManager) Encode(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(tm.method, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// Decode verifies the signature of tokenStr and returns its claims. The exp
// claim is only checked when enforceExpiry is set. Malformed tokens, foreign
// algorithms and wrong keys all yield ErrAuthorizeFailed.
func (tm *TokenManager) Decode(tokenStr string, enforceExpiry bool) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{tm.method.Alg()})}
	if enforceExpiry {
		opts = append(opts, jwt.WithExpirationRequired())
	} else {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errorutil.Wrap(errorutil.ErrTokenIsExpired, err)
		}
		return nil, errorutil.Wrap(errorutil.ErrAuthorizeFailed, err)
	}
	if !parsed.Valid {
		return nil, errorutil.ErrAuthorizeFailed
	}
	return claims, nil
}
