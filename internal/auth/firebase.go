package auth

import (
	"context"
	"fmt"
	"net/http"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"

	"route-finder/internal/route"
)

// tokenClient is the part of the Firebase auth client used here.
type tokenClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// FirebaseVerifier checks Firebase ID tokens sent as bearer tokens.
type FirebaseVerifier struct {
	client tokenClient
}

func NewFirebaseVerifier(ctx context.Context, projectID string) (*FirebaseVerifier, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID})
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, r *http.Request) (Identity, error) {
	raw := BearerToken(r)
	if raw == "" {
		return Identity{}, fmt.Errorf("missing bearer token: %w", route.ErrAuthFailure)
	}
	tok, err := v.client.VerifyIDToken(ctx, raw)
	if err != nil {
		return Identity{}, fmt.Errorf("verify id token: %w: %w", route.ErrAuthFailure, err)
	}
	id := Identity{UID: tok.UID}
	id.Email, _ = tok.Claims["email"].(string)
	id.Name, _ = tok.Claims["name"].(string)
	return id, nil
}

// Revoke invalidates the user's refresh tokens, signing them out everywhere.
func (v *FirebaseVerifier) Revoke(ctx context.Context, uid string) error {
	if err := v.client.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("revoke tokens: %w: %w", route.ErrAuthFailure, err)
	}
	return nil
}
