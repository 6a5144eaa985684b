package router

import (
	"net/http"

	"github.com/anonto42/odin-book/backend/internal/apperr"
	"github.com/anonto42/odin-book/backend/internal/auth"
	"github.com/anonto42/odin-book/backend/internal/handlers"
	"github.com/anonto42/odin-book/backend/internal/media"
	"github.com/anonto42/odin-book/backend/internal/middleware"
	"github.com/anonto42/odin-book/backend/internal/repositories"
	"github.com/anonto42/odin-book/backend/internal/services"
	"github.com/anonto42/odin-book/backend/pkg/config"
	"github.com/anonto42/odin-book/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Dependencies is everything the HTTP layer needs. Notifications and Uploader
// are optional.
type Dependencies struct {
	Users         repositories.UserRepository
	Posts         repositories.PostRepository
	Comments      repositories.CommentRepository
	Notifications repositories.NotificationRepository

	Issuer      *auth.TokenIssuer
	Revocations auth.RevocationStore

	Uploader            media.Uploader
	MaxUploadBytes      int64
	DefaultProfileImage string

	Logger *logrus.Logger
}

var errNotificationsDisabled = apperr.New(apperr.KindUnavailable, "notifications are not configured")

// New builds an Echo instance with middleware, validator, error handler and routes.
func New(deps Dependencies) *echo.Echo {
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = media.DefaultMaxBytes
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler(deps.Logger)

	config.SetupMiddleware(e, deps.Logger, deps.MaxUploadBytes)
	SetupRoutes(e, deps)
	return e
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	log := deps.Logger

	// --- Services ---
	notifier := services.NewNotifier(deps.Notifications, log)
	accounts := services.NewAccountService(deps.Users, deps.DefaultProfileImage)
	relations := services.NewRelationshipService(deps.Users, notifier)
	feed := services.NewFeedService(deps.Users, deps.Posts)
	likes := services.NewLikeService(deps.Posts, deps.Comments, notifier)
	cascade := services.NewCascadeService(deps.Users, deps.Posts, deps.Comments, deps.Notifications)
	content := services.NewContentService(deps.Users, deps.Posts, deps.Comments, cascade, notifier)

	// Health check and index - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/", handlers.NewIndexHandler(deps.Users, deps.Posts, deps.Comments).Counts)

	// --- Unprotected routes for authentication ---
	public := e.Group("")
	authHandler := handlers.NewAuthHandler(accounts, deps.Issuer, deps.Revocations, log)
	authHandler.RegisterAuthRoutes(public)
	log.Debug("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("", middleware.JWTAuthMiddleware(deps.Issuer, deps.Revocations, log))
	authHandler.RegisterSessionRoutes(api)

	handlers.NewUserHandler(deps.Users, deps.Posts, accounts, cascade, deps.Uploader, deps.MaxUploadBytes, log).RegisterUserRoutes(api)
	handlers.NewFriendshipHandler(relations).RegisterFriendshipRoutes(api)
	handlers.NewFeedHandler(feed, deps.Users).RegisterFeedRoutes(api)
	handlers.NewPostHandler(content, deps.Posts, deps.Users, deps.Uploader, deps.MaxUploadBytes, log).RegisterPostRoutes(api)
	handlers.NewLikeHandler(likes, deps.Users).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(content, deps.Users, deps.Uploader, deps.MaxUploadBytes).RegisterCommentRoutes(api)
	log.Debug("User, friendship, feed, post, like and comment routes configured.")

	if deps.Notifications != nil {
		handlers.NewNotificationHandler(deps.Notifications, deps.Users).RegisterNotificationRoutes(api)
		log.Debug("Notification routes configured.")
	} else {
		unavailable := func(echo.Context) error { return errNotificationsDisabled }
		api.Match([]string{http.MethodGet, http.MethodPut}, "/notifications*", unavailable)
		log.Debug("Notifications disabled.")
	}

	log.Info("All routes configured.")
}
