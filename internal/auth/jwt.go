package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultIssuer is stamped on tokens signed without an explicit issuer
const DefaultIssuer = "planwise"

// Claims identifies the plan owner. The userId claim name is shared with tokens
// minted by the existing account service.
type Claims struct {
	UserID string `json:"userId"`

	jwt.RegisteredClaims
}

// JWT signs and verifies HS256 owner tokens
type JWT struct {
	Secret   []byte
	TokenTTL time.Duration
	Issuer   string
}

// Sign issues a token for claims, filling in issued-at, not-before, expiry and issuer when unset
func (j JWT) Sign(claims Claims) (token string, expiresAt time.Time, err error) {
	if len(j.Secret) == 0 {
		return "", time.Time{}, errors.New("jwt secret is not configured")
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return "", time.Time{}, errors.New("user id is required")
	}

	now := time.Now().UTC()
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(now)
	}
	if claims.NotBefore == nil {
		claims.NotBefore = jwt.NewNumericDate(now.Add(-5 * time.Second))
	}
	if claims.ExpiresAt == nil {
		expiresAt = now.Add(j.TokenTTL)
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	} else {
		expiresAt = claims.ExpiresAt.Time
	}
	if claims.Issuer == "" {
		claims.Issuer = j.issuer()
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, expiresAt, nil
}

// SignOwner is a shorthand for signing a token that carries only the owner id
func (j JWT) SignOwner(ownerID string) (string, time.Time, error) {
	return j.Sign(Claims{UserID: ownerID})
}

// Verify parses token and returns its claims. Only HS256 is accepted and the userId claim must be present.
func (j JWT) Verify(token string) (Claims, error) {
	if len(j.Secret) == 0 {
		return Claims{}, errors.New("jwt secret is not configured")
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return j.Secret, nil
	})
	if err != nil {
		return Claims{}, err
	}
	c, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if strings.TrimSpace(c.UserID) == "" {
		return Claims{}, errors.New("token has no userId")
	}
	return *c, nil
}

func (j JWT) issuer() string {
	if j.Issuer == "" {
		return DefaultIssuer
	}
	return j.Issuer
}

// BearerToken extracts the token from an Authorization header value.
// Returns "" when the header is missing or not a Bearer credential.
func BearerToken(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	parts := strings.SplitN(v, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
