package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anonto42/conduit/backend/internal/models"
	"github.com/anonto42/conduit/backend/internal/viewer"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const viewerKey = "viewer"

// TokenVerifier turns a bearer token into the identity of its holder.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (viewer.Identity, error)
}

// Authenticate resolves the caller from the Authorization header. Both the
// "Token <t>" and "Bearer <t>" schemes are accepted. Without a header the
// caller is anonymous unless required is set; a bad token is always rejected.
func Authenticate(verifier TokenVerifier, required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				if required {
					return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
				}
				c.Set(viewerKey, viewer.Anonymous())
				return next(c)
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}
			switch strings.ToLower(parts[0]) {
			case "token", "bearer":
			default:
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			identity, err := verifier.Verify(c.Request().Context(), parts[1])
			if err != nil || !identity.Authenticated() {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(viewerKey, identity)
			return next(c)
		}
	}
}

// CurrentViewer returns the identity stored by Authenticate, or anonymous.
func CurrentViewer(c echo.Context) viewer.Identity {
	identity, ok := c.Get(viewerKey).(viewer.Identity)
	if !ok {
		return viewer.Anonymous()
	}
	return identity
}

// JWTVerifier verifies HS256 tokens carrying models.JwtCustomClaims.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a new JWTVerifier
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(_ context.Context, tokenString string) (viewer.Identity, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return viewer.Anonymous(), err
	}
	if !token.Valid || claims.UserID == 0 {
		return viewer.Anonymous(), errors.New("token has no user")
	}
	return viewer.User(claims.UserID), nil
}
