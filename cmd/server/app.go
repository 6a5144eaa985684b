package main

import (
	"context"
	"fmt"

	"github.com/anonto42/odin-book/backend/internal/auth"
	"github.com/anonto42/odin-book/backend/internal/media"
	"github.com/anonto42/odin-book/backend/internal/repositories"
	"github.com/anonto42/odin-book/backend/internal/repositories/memory"
	"github.com/anonto42/odin-book/backend/internal/router"
	"github.com/anonto42/odin-book/backend/pkg/config"
	"github.com/anonto42/odin-book/backend/pkg/firebase"
	"github.com/sirupsen/logrus"
)

// app is the composition root: every connection and repository is built here
// and passed down explicitly.
type app struct {
	cfg  *config.Config
	log  *logrus.Logger
	db   *config.DB
	deps router.Dependencies
}

func newApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*app, error) {
	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, db: db}
	deps := router.Dependencies{
		Issuer:              auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		MaxUploadBytes:      cfg.MaxUploadBytes,
		DefaultProfileImage: cfg.DefaultProfileImage,
		Logger:              log,
	}

	switch cfg.StoreDriver {
	case config.DriverMemory:
		store := memory.NewStore()
		deps.Users, deps.Posts, deps.Comments = store.Users(), store.Posts(), store.Comments()
		deps.Notifications = store.Notifications()
		log.Warn("Using the in-memory store; data is lost on exit.")
	default:
		database := db.Mongo.Database(cfg.MongoDB)
		users := repositories.NewMongoUserRepository(database)
		posts := repositories.NewMongoPostRepository(database)
		comments := repositories.NewMongoCommentRepository(database)
		for name, ensure := range map[string]func(context.Context) error{
			"users":    users.EnsureIndexes,
			"posts":    posts.EnsureIndexes,
			"comments": comments.EnsureIndexes,
		} {
			if err := ensure(ctx); err != nil {
				a.Close()
				return nil, fmt.Errorf("failed to create %s indexes: %w", name, err)
			}
		}
		deps.Users, deps.Posts, deps.Comments = users, posts, comments
	}

	if db.Postgres != nil {
		if err := repositories.AutoMigrateNotifications(db.Postgres); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to migrate notifications: %w", err)
		}
		deps.Notifications = repositories.NewPostgresNotificationRepository(db.Postgres)
		log.Info("PostgreSQL notifications enabled.")
	}

	if db.Redis != nil {
		deps.Revocations = auth.NewRedisRevocationStore(db.Redis)
	} else {
		deps.Revocations = auth.NewMemoryRevocationStore()
	}

	uploader, err := newUploader(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	deps.Uploader = uploader

	a.deps = deps
	return a, nil
}

// newUploader picks MinIO, then Firebase Storage. It returns a nil Uploader
// when neither is configured.
func newUploader(ctx context.Context, cfg *config.Config, log *logrus.Logger) (media.Uploader, error) {
	switch {
	case cfg.MinioEndpoint != "":
		uploader, err := media.NewMinioUploader(media.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		})
		if err != nil {
			return nil, err
		}
		if err := uploader.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		log.WithField("bucket", cfg.MinioBucket).Info("Image uploads go to MinIO.")
		return uploader, nil
	case cfg.FirebaseCredentialsPath != "":
		fb, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseBucket)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Firebase: %w", err)
		}
		log.WithField("bucket", fb.Bucket).Info("Image uploads go to Firebase Storage.")
		return media.NewFirebaseUploader(fb.StorageClient, fb.Bucket), nil
	default:
		log.Warn("No media host configured; image uploads are disabled.")
		return nil, nil
	}
}

func (a *app) Close() {
	a.db.CloseDB()
}
