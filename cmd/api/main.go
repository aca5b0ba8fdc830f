package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/davidquint/raffle-backend/api"
	"github.com/davidquint/raffle-backend/api/controllers"
	"github.com/davidquint/raffle-backend/api/routes"
	"github.com/davidquint/raffle-backend/internal/auth"
	"github.com/davidquint/raffle-backend/internal/cart"
	"github.com/davidquint/raffle-backend/internal/catalog"
	"github.com/davidquint/raffle-backend/internal/checkout"
	"github.com/davidquint/raffle-backend/internal/events"
	"github.com/davidquint/raffle-backend/internal/media"
	"github.com/davidquint/raffle-backend/internal/orders"
	"github.com/davidquint/raffle-backend/internal/users"
	"github.com/davidquint/raffle-backend/pkg/auth/session"
	"github.com/davidquint/raffle-backend/pkg/config"
	"github.com/davidquint/raffle-backend/pkg/db"
	"github.com/davidquint/raffle-backend/pkg/logger"
	"github.com/davidquint/raffle-backend/pkg/migrate"
	"github.com/davidquint/raffle-backend/pkg/outbox"
	"github.com/davidquint/raffle-backend/pkg/redis"
	"github.com/davidquint/raffle-backend/pkg/storage/gcs"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap object storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing object storage", err)
		}
	}()

	carts := cart.NewStore(cfg.Cart, logg)
	carts.StartJanitor(ctx)

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	eventsService, err := events.NewService(events.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(ctx, "failed to create events service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.NewRepository(dbClient.DB()), dbClient.DB(), outboxService)
	if err != nil {
		logg.Error(ctx, "failed to create orders service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(
		carts,
		catalogService,
		eventsService,
		ordersService,
		outboxService,
		dbClient.DB(),
		logg,
		cfg.Checkout,
	)
	if err != nil {
		logg.Error(ctx, "failed to create checkout service", err)
		os.Exit(1)
	}

	mediaService, err := media.NewService(gcsClient, cfg.GCS, cfg.Media, logg)
	if err != nil {
		logg.Error(ctx, "failed to create media service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:        users.NewRepository(dbClient.DB()),
		SessionManager:  sessionManager,
		RateLimiter:     redisClient,
		JWTConfig:       cfg.JWT,
		RateLimitConfig: cfg.AuthRateLimit,
	})
	if err != nil {
		logg.Error(ctx, "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(ctx, "failed to create register service", err)
		os.Exit(1)
	}

	router := routes.New(routes.Deps{
		Config:   cfg,
		Logger:   logg,
		Redis:    redisClient,
		Sessions: sessionManager,
		Carts:    carts,
		Events:   eventsService,
		Catalog:  catalogService,
		Checkout: checkoutService,
		Orders:   ordersService,
		Media:    mediaService,
		Auth:     authService,
		Register: registerService,
		HealthDeps: map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
			"gcs":      gcsClient,
		},
	})

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"port": cfg.App.Port,
	})
	logg.Info(startCtx, "starting api server")

	server := api.NewServer(cfg.App, router, logg)
	if err := server.Run(ctx); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(context.Background(), "api server stopped")
}
