package handlers

import (
	"net/http"

	"github.com/anonto42/odin-book/backend/internal/auth"
	"github.com/anonto42/odin-book/backend/internal/middleware"
	"github.com/anonto42/odin-book/backend/internal/models"
	"github.com/anonto42/odin-book/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles signup, login and logout
type AuthHandler struct {
	accounts    *services.AccountService
	issuer      *auth.TokenIssuer
	revocations auth.RevocationStore
	log         logrus.FieldLogger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(accounts *services.AccountService, issuer *auth.TokenIssuer, revocations auth.RevocationStore, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{accounts: accounts, issuer: issuer, revocations: revocations, log: log}
}

// RegisterAuthRoutes registers the public authentication routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/users/signup", h.Signup)
	g.POST("/users/login", h.Login)
}

// RegisterSessionRoutes registers routes that need an authenticated session
func (h *AuthHandler) RegisterSessionRoutes(g *echo.Group) {
	g.POST("/users/logout", h.Logout)
}

// Signup creates a new account and returns it with a token
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.accounts.Signup(c.Request().Context(), req)
	if err != nil {
		return err
	}

	token, _, err := h.issuer.Issue(user)
	if err != nil {
		return err
	}

	return ok(c, http.StatusCreated, echo.Map{
		"message": "Sign up successful",
		"user":    user,
		"token":   token,
	})
}

// Login exchanges username and password for a token
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.accounts.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	token, claims, err := h.issuer.Issue(user)
	if err != nil {
		return err
	}

	return ok(c, http.StatusOK, echo.Map{
		"token":      token,
		"expires_at": claims.ExpiresAt.Time,
		"user":       user,
	})
}

// Logout revokes the token used for this request
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, found := middleware.Claims(c)
	if !found {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	if err := h.revocations.Revoke(c.Request().Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}
	h.log.WithField("user_id", claims.UserID).Debug("token revoked")

	return ok(c, http.StatusOK, echo.Map{"message": "You are now logged out"})
}
