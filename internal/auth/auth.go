// Package auth identifies the caller of a session request.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"route-finder/internal/route"
)

type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Verifier turns request credentials into an identity and can end a
// user's sessions. Failures wrap route.ErrAuthFailure.
type Verifier interface {
	Verify(ctx context.Context, r *http.Request) (Identity, error)
	Revoke(ctx context.Context, uid string) error
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok && id.UID != ""
}

// Middleware rejects requests the verifier does not accept and stores the
// identity of the rest in their context.
func Middleware(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := v.Verify(r.Context(), r)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("WWW-Authenticate", "Bearer")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": route.UserMessage(err)})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// DevVerifier trusts the X-User-Id header, or a bearer token taken as the
// user id. It is meant for local runs without an identity provider.
type DevVerifier struct{}

func (DevVerifier) Verify(_ context.Context, r *http.Request) (Identity, error) {
	uid := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if uid == "" {
		uid = BearerToken(r)
	}
	if uid == "" {
		return Identity{}, fmt.Errorf("missing X-User-Id: %w", route.ErrAuthFailure)
	}
	return Identity{UID: uid}, nil
}

func (DevVerifier) Revoke(context.Context, string) error { return nil }
