package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"mintgate/pkg/domain"
)

// CallerValidator turns a bearer token into an authenticated caller address.
// The engine trusts the resulting identity; signature verification is the
// validator's whole job.
type CallerValidator interface {
	Validate(token string) (domain.Address, error)
}

// HMACValidator validates HS256-signed tokens whose subject carries the
// caller address.
type HMACValidator struct {
	key []byte
}

func NewHMACValidator(signingKey string) *HMACValidator {
	return &HMACValidator{key: []byte(signingKey)}
}

func (v *HMACValidator) Validate(tokenString string) (domain.Address, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("read subject: %w", err)
	}
	return domain.ParseAddress(subject)
}

type contextKeyCaller struct{}

// GetCaller retrieves the authenticated caller address from the context.
func GetCaller(ctx context.Context) domain.Address {
	caller, ok := ctx.Value(contextKeyCaller{}).(domain.Address)
	if !ok {
		return ""
	}
	return caller
}

// WithCaller stores a caller address in the context. Exposed for tests that
// bypass the HTTP middleware.
func WithCaller(ctx context.Context, caller domain.Address) context.Context {
	return context.WithValue(ctx, contextKeyCaller{}, caller)
}

// RequireCaller extracts and validates the bearer token, storing the caller
// address in the request context. Requests without a valid identity get 401.
func RequireCaller(validator CallerValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"bearer token required"}`))
				return
			}

			caller, err := validator.Validate(token)
			if err != nil {
				logger.WarnContext(ctx, "caller token rejected",
					"request_id", GetRequestID(ctx),
					"error", err.Error(),
				)
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"invalid token"}`))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(ctx, caller)))
		})
	}
}
