package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DELEBINITZ/user-auth-service/internal/auth"
	"github.com/DELEBINITZ/user-auth-service/internal/auth/handler"
	"github.com/DELEBINITZ/user-auth-service/internal/auth/provider"
	"github.com/DELEBINITZ/user-auth-service/internal/auth/provider/github"
	"github.com/DELEBINITZ/user-auth-service/internal/auth/provider/google"
	"github.com/DELEBINITZ/user-auth-service/internal/auth/resolver"
	"github.com/DELEBINITZ/user-auth-service/internal/auth/session"
	"github.com/DELEBINITZ/user-auth-service/internal/auth/token"
	"github.com/DELEBINITZ/user-auth-service/internal/config"
	"github.com/DELEBINITZ/user-auth-service/internal/logger"
	"github.com/DELEBINITZ/user-auth-service/internal/middleware"
	"github.com/DELEBINITZ/user-auth-service/internal/storage"
	"github.com/DELEBINITZ/user-auth-service/internal/user"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	userStore := user.NewPostgresStore(infra.DB)

	var sessionStore session.Store
	if infra.Redis != nil {
		sessionStore = session.NewRedisStore(infra.Redis.Client, cfg.RefreshTokenTTL)
	} else {
		sessionStore = session.NewUserStore(userStore)
	}

	tokenManager, err := token.NewManager(token.Config{
		AccessSecret:  []byte(cfg.AccessTokenSecret),
		RefreshSecret: []byte(cfg.RefreshTokenSecret),
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
		Issuer:        cfg.TokenIssuer,
		Leeway:        30 * time.Second,
	})
	if err != nil {
		return nil, nil, err
	}

	blobStore, err := storage.NewFSStore(cfg.AvatarDir, cfg.AvatarBaseURL)
	if err != nil {
		return nil, nil, err
	}

	authService := auth.NewService(userStore, sessionStore, tokenManager, blobStore)
	identityResolver := resolver.NewStoreResolver(userStore)

	var providers []provider.OAuthProvider

	if cfg.GithubClientID != "" {
		githubProvider, err := github.New(
			cfg.GithubClientID,
			cfg.GithubClientSecret,
			cfg.GithubRedirectURL,
		)
		if err != nil {
			return nil, nil, err
		}
		providers = append(providers, githubProvider)
	}

	if cfg.GoogleClientID != "" {
		googleProvider, err := google.New(
			ctx,
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
		)
		if err != nil {
			return nil, nil, err
		}
		providers = append(providers, googleProvider)
	}

	registry := provider.NewRegistry(providers...)

	authHandler := handler.NewHandler(
		authService,
		registry,
		identityResolver,
	)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	authHandler.RegisterRoutes(router, middleware.GinRequireAuth(authMiddleware))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.Static(cfg.AvatarBaseURL, cfg.AvatarDir)

	logger.Info("http routes registered", map[string]any{
		"providers": len(providers),
	})

	return router, func() error {
		return infra.DB.Close()
	}, nil
}
