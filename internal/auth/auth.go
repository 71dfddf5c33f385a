// Package auth resolves the caller identity from HMAC-signed bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

const defaultTokenTTL = 168 * time.Hour

type contextKey struct{}

// Authenticator issues and verifies tokens whose subject is the user id.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	logger *log.Logger
}

func NewAuthenticator(secret string, ttl time.Duration, logger *log.Logger) (*Authenticator, error) {
	if secret == "" {
		return nil, errors.New("missing JWT secret")
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	if logger == nil {
		logger = log.Default(log.ComponentAuth)
	} else {
		logger = logger.WithComponent(log.ComponentAuth)
	}
	return &Authenticator{secret: []byte(secret), ttl: ttl, now: time.Now, logger: logger}, nil
}

// IssueToken signs a token for user valid for the configured lifetime.
func (a *Authenticator) IssueToken(user core.UserID) (string, error) {
	if err := user.Validate(); err != nil {
		return "", err
	}
	now := a.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   string(user),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies the signature and expiry and returns the subject.
func (a *Authenticator) ParseToken(tokenString string) (core.UserID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token: %w", core.ErrUnauthenticated)
	}
	user := core.UserID(claims.Subject)
	if user.Validate() != nil {
		return "", fmt.Errorf("token without subject: %w", core.ErrUnauthenticated)
	}
	return user, nil
}

// FromRequest reads the bearer token of r.
func (a *Authenticator) FromRequest(r *http.Request) (core.UserID, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("missing token: %w", core.ErrUnauthenticated)
	}
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", fmt.Errorf("malformed authorization header: %w", core.ErrUnauthenticated)
	}
	return a.ParseToken(strings.TrimSpace(tokenString))
}

// Middleware rejects requests without a valid token and stores the caller
// in the request context. onError writes the rejection.
func (a *Authenticator) Middleware(onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.FromRequest(r)
			if err != nil {
				a.logger.WarnContext(r.Context(), "Rejected unauthenticated request",
					log.FieldPath, r.URL.Path,
					log.FieldError, err)
				if onError != nil {
					onError(w, r, err)
				} else {
					http.Error(w, "unauthenticated", http.StatusUnauthorized)
				}
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func WithUser(ctx context.Context, user core.UserID) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFrom returns the authenticated caller or core.ErrUnauthenticated.
func UserFrom(ctx context.Context) (core.UserID, error) {
	user, ok := ctx.Value(contextKey{}).(core.UserID)
	if !ok || user == "" {
		return "", core.ErrUnauthenticated
	}
	return user, nil
}
