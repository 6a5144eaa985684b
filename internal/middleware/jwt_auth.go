package middleware

import (
	"net/http"
	"strings"

	"github.com/anonto42/odin-book/backend/internal/auth"
	"github.com/anonto42/odin-book/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	claimsKey = "user"
	tokenKey  = "token"
)

// JWTAuthMiddleware checks for a valid, unrevoked JWT and extracts user claims.
func JWTAuthMiddleware(issuer *auth.TokenIssuer, revocations auth.RevocationStore, log logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}

			// Expecting "Bearer <token>"
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}
			tokenString := parts[1]

			claims, err := issuer.Parse(tokenString)
			if err != nil {
				return err
			}
			if _, err := primitive.ObjectIDFromHex(claims.UserID); err != nil {
				return auth.ErrInvalidToken
			}

			if revocations != nil {
				revoked, err := revocations.IsRevoked(c.Request().Context(), claims.ID)
				if err != nil {
					log.WithError(err).Error("failed to check token revocation")
					return echo.NewHTTPError(http.StatusServiceUnavailable, "Unable to verify token")
				}
				if revoked {
					return auth.ErrRevokedToken
				}
			}

			// Store user claims in context
			c.Set(claimsKey, claims)
			c.Set(tokenKey, tokenString)

			return next(c)
		}
	}
}

// Claims returns the claims stored by JWTAuthMiddleware.
func Claims(c echo.Context) (*models.JwtCustomClaims, bool) {
	claims, ok := c.Get(claimsKey).(*models.JwtCustomClaims)
	return claims, ok && claims != nil
}

// UserID returns the authenticated user's id.
func UserID(c echo.Context) (primitive.ObjectID, error) {
	claims, ok := Claims(c)
	if !ok {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, auth.ErrInvalidToken
	}
	return id, nil
}
