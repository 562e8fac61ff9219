package middleware

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/conduit/backend/internal/models"
	"github.com/anonto42/conduit/backend/internal/viewer"
)

// idTokenVerifier is the part of *auth.Client used here.
type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type firebaseUsers interface {
	FindByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
}

// FirebaseVerifier verifies Firebase ID tokens and maps their UID to a local
// user.
type FirebaseVerifier struct {
	tokens idTokenVerifier
	users  firebaseUsers
}

// NewFirebaseVerifier creates a new FirebaseVerifier
func NewFirebaseVerifier(tokens idTokenVerifier, users firebaseUsers) *FirebaseVerifier {
	return &FirebaseVerifier{tokens: tokens, users: users}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (viewer.Identity, error) {
	token, err := v.tokens.VerifyIDToken(ctx, idToken)
	if err != nil {
		return viewer.Anonymous(), fmt.Errorf("invalid or expired ID token: %w", err)
	}

	user, err := v.users.FindByFirebaseUID(ctx, token.UID)
	if err != nil {
		return viewer.Anonymous(), err
	}
	return viewer.User(user.ID), nil
}
