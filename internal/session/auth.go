package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AuthCookie carries the identity provider's token when no bearer header
// is sent.
const AuthCookie = "vault_session"

var ErrNoToken = errors.New("no session token")

// Principal is the signed-in operator.
type Principal struct {
	Subject string
	Name    string
	Email   string
	SID     string
	Token   string
}

// StateKey scopes server-side state to this principal in the browser
// identified by browserID, so a second sign-in on the same browser starts
// with an empty reveal cache.
func (p Principal) StateKey(browserID string) string {
	return p.Subject + "/" + p.SID + "/" + browserID
}

// Actor is the label written to the audit log.
func (p Principal) Actor() string {
	switch {
	case p.Email != "":
		return p.Email
	case p.Name != "":
		return p.Name
	}
	return p.Subject
}

// LocalOperator is used when no token secret is configured.
var LocalOperator = Principal{Subject: "local", Name: "Local Operator"}

type claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	SID   string `json:"sid,omitempty"`
}

// Verifier checks HS256 tokens issued by the identity provider.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Enabled is false when no secret is configured.
func (v *Verifier) Enabled() bool { return v != nil && len(v.secret) > 0 }

func (v *Verifier) Verify(token string) (Principal, error) {
	c := &claims{}
	parsed, err := jwt.ParseWithClaims(token, c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Principal{}, err
	}
	if !parsed.Valid {
		return Principal{}, errors.New("invalid token claims")
	}
	return Principal{
		Subject: c.Subject,
		Name:    c.Name,
		Email:   c.Email,
		SID:     c.SID,
		Token:   token,
	}, nil
}

// TokenFromRequest reads a bearer header, falling back to AuthCookie.
func TokenFromRequest(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok && tok != "" {
			return tok, nil
		}
	}
	if c, err := r.Cookie(AuthCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}
	return "", ErrNoToken
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
