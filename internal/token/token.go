// Package token issues and validates the HS256 bearer tokens that carry the
// caller session into tenant and user operations.
package token

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "tenantry/pkg/domain"
	dErrors "tenantry/pkg/domain-errors"
	"tenantry/pkg/requestcontext"
	"tenantry/pkg/session"
)

// AccessTokenClaims represents the JWT claims for access tokens.
type AccessTokenClaims struct {
	UserID       string   `json:"user_id"`
	TenantID     string   `json:"tenant_id"`
	Capabilities []string `json:"capabilities,omitempty"`
	AccountClass string   `json:"account_class"`
	jwt.RegisteredClaims
}

// Service handles JWT creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
	tokenTTL   time.Duration
}

func NewService(signingKey, issuer, audience string, tokenTTL time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		tokenTTL:   tokenTTL,
	}
}

// Issue signs a token describing caller.
func (s *Service) Issue(ctx context.Context, caller session.Caller) (string, error) {
	if caller.UserID.IsNil() || caller.TenantID.IsNil() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user and tenant are required")
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	now := requestcontext.Now(ctx)

	capabilities := make([]string, 0, len(caller.Capabilities))
	for _, c := range caller.Capabilities {
		capabilities = append(capabilities, string(c))
	}

	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessTokenClaims{
		UserID:       caller.UserID.String(),
		TenantID:     caller.TenantID.String(),
		Capabilities: capabilities,
		AccountClass: caller.AccountClass,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        hex.EncodeToString(b),
		},
	})

	return newToken.SignedString(s.signingKey)
}

// ValidateToken verifies signature, expiry, issuer and audience, then
// converts the claims into a session caller.
func (s *Service) ValidateToken(tokenString string) (*session.Caller, error) {
	claims := new(AccessTokenClaims)
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	return claims.toCaller()
}

func (c *AccessTokenClaims) toCaller() (*session.Caller, error) {
	userID, err := id.ParseUserID(c.UserID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid user_id claim")
	}
	tenantID, err := id.ParseTenantID(c.TenantID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid tenant_id claim")
	}

	capabilities := make([]session.Capability, 0, len(c.Capabilities))
	for _, raw := range c.Capabilities {
		capabilities = append(capabilities, session.Capability(raw))
	}

	return &session.Caller{
		UserID:       userID,
		TenantID:     tenantID,
		Capabilities: capabilities,
		AccountClass: c.AccountClass,
	}, nil
}
