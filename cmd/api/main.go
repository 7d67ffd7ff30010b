package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/aviz85/socisphere/api/routes"
	"github.com/aviz85/socisphere/internal/auth"
	"github.com/aviz85/socisphere/internal/communities"
	"github.com/aviz85/socisphere/internal/connections"
	"github.com/aviz85/socisphere/internal/conversations"
	"github.com/aviz85/socisphere/internal/notifications"
	"github.com/aviz85/socisphere/internal/posts"
	"github.com/aviz85/socisphere/internal/spaces"
	"github.com/aviz85/socisphere/internal/users"
	"github.com/aviz85/socisphere/pkg/auth/session"
	"github.com/aviz85/socisphere/pkg/config"
	"github.com/aviz85/socisphere/pkg/db"
	"github.com/aviz85/socisphere/pkg/logger"
	"github.com/aviz85/socisphere/pkg/migrate"
	"github.com/aviz85/socisphere/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	notificationRepo := notifications.NewRepository(dbClient.DB())
	emitter := notifications.NewEmitter(notificationRepo, logg)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notificationRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	connectionsService, err := connections.NewService(connections.NewRepository(dbClient.DB()), userRepo, emitter)
	if err != nil {
		logg.Error(context.Background(), "failed to create connections service", err)
		os.Exit(1)
	}

	conversationsService, err := conversations.NewService(conversations.NewRepository(dbClient.DB()), userRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create conversations service", err)
		os.Exit(1)
	}

	communitiesService, err := communities.NewService(communities.NewRepository(dbClient.DB()), userRepo, emitter, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create communities service", err)
		os.Exit(1)
	}

	postsService, err := posts.NewService(posts.NewRepository(dbClient.DB()), userRepo, emitter, cfg.Notifications.NotifyingReactions)
	if err != nil {
		logg.Error(context.Background(), "failed to create posts service", err)
		os.Exit(1)
	}

	spacesService, err := spaces.NewService(spaces.NewRepository(dbClient.DB()), userRepo, emitter, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create spaces service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, routes.Services{
			Auth:          authService,
			Notifications: notificationsService,
			Connections:   connectionsService,
			Conversations: conversationsService,
			Communities:   communitiesService,
			Posts:         postsService,
			Spaces:        spacesService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
