package auth

import (
	"errors"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
)

// ErrUnauthenticated is returned for missing, malformed, or unverifiable
// bearer credentials.
var ErrUnauthenticated = errors.New("not authenticated")

// Principal is the authenticated actor derived from a bearer token.
type Principal struct {
	UserID string
	Roles  []string
}

// HasRole reports whether the principal carries the given role label.
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Verifier validates HS256 bearer tokens and extracts the principal.
// Token issuance belongs to the identity service; only verification
// happens here.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses a bearer token into a Principal. Expected claims: "sub"
// (required user id) and "roles" (optional list, defaults to ["user"]).
func (v *Verifier) Verify(token string) (Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Principal{}, ErrUnauthenticated
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthenticated
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Principal{}, ErrUnauthenticated
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Principal{}, ErrUnauthenticated
	}

	roles := []string{"user"}
	if raw, ok := claims["roles"].([]any); ok && len(raw) > 0 {
		roles = roles[:0]
		for _, r := range raw {
			if s, ok := r.(string); ok {
				roles = append(roles, s)
			}
		}
		if len(roles) == 0 {
			roles = []string{"user"}
		}
	}

	return Principal{UserID: sub, Roles: roles}, nil
}
