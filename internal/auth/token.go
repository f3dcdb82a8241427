package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quizhunt-service/internal/domain"

	jwt "github.com/golang-jwt/jwt/v5"
)

// DevSecret is used when no secret is configured.
const DevSecret = "quizhunt-dev-secret"

// Claims carries the caller's role next to the registered claims; the subject is the
// player or society id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 bearer tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	if secret == "" {
		secret = DevSecret
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign issues a token for p.
func (t *Tokens) Sign(p domain.Principal) (string, error) {
	if p.ID == "" || !p.Role.Valid() {
		return "", fmt.Errorf("sign token: invalid principal %q/%q", p.ID, p.Role)
	}
	now := t.now()
	claims := Claims{
		Role: string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  p.ID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if t.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse verifies a token and returns its principal.
func (t *Tokens) Parse(raw string) (domain.Principal, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return domain.Principal{}, err
	}
	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return domain.Principal{}, errors.New("invalid token")
	}
	p := domain.Principal{ID: c.Subject, Role: domain.Role(c.Role)}
	if p.ID == "" || !p.Role.Valid() {
		return domain.Principal{}, errors.New("token missing subject or role")
	}
	return p, nil
}

type ctxKey struct{}

// WithPrincipal attaches p to ctx.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// PrincipalFrom returns the attached principal, or the zero value.
func PrincipalFrom(ctx context.Context) domain.Principal {
	p, _ := ctx.Value(ctxKey{}).(domain.Principal)
	return p
}
