package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seva-kendra/config"
	"seva-kendra/controllers"
	"seva-kendra/database"
	"seva-kendra/events"
	"seva-kendra/logger"
	"seva-kendra/metrics"
	"seva-kendra/middleware"
	"seva-kendra/ratelimit"
	"seva-kendra/routes"
	"seva-kendra/store"
	"seva-kendra/utils"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seva-kendra: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Server.Env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	client, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Error("Failed to disconnect from MongoDB", zap.Error(err))
		}
	}()
	db := client.Database(cfg.Mongo.Database)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	log.Info("Connected to MongoDB", zap.String("database", cfg.Mongo.Database))

	m := metrics.New(cfg.Metrics.Prefix)
	st := store.New(db, m)

	emailService, err := utils.NewEmailService(cfg.Email)
	if err != nil {
		return err
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATS.URL != "" {
		p, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			return err
		}
		publisher = p
		log.Info("Publishing events to NATS", zap.String("url", cfg.NATS.URL))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error("Failed to drain NATS connection", zap.Error(err))
		}
	}()

	var limiter ratelimit.Limiter = ratelimit.Unlimited{}
	if cfg.Redis.URL != "" {
		rl, err := ratelimit.NewRedisLimiter(ctx, cfg.Redis.URL, cfg.Redis.LoginLimit, cfg.Redis.LoginWindow)
		if err != nil {
			return err
		}
		defer rl.Close()
		limiter = rl
		log.Info("Login rate limiting enabled", zap.Int("limit", cfg.Redis.LoginLimit), zap.Duration("window", cfg.Redis.LoginWindow))
	}

	tokens := utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiration)
	tasks := &controllers.BackgroundTasks{}
	svc := controllers.Services{
		Tokens:     tokens,
		Email:      emailService,
		Events:     publisher,
		Limiter:    limiter,
		Metrics:    m,
		DBTimeout:  cfg.Mongo.OperationTimeout,
		Background: tasks.Go,
	}

	// Initialize controllers
	userController := controllers.NewUserController(st.Users, st.Vendors, svc)
	adminController := controllers.NewAdminController(st.Users, st.Vendors, st.Admin, svc)
	healthController := &controllers.HealthController{
		Ping: func(ctx context.Context) error { return client.Ping(ctx, nil) },
	}

	// Set up the router
	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware(log))
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.MetricsMiddleware(m))
	routes.RegisterRoutes(router, userController, adminController, healthController, tokens, m)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server is running", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := tasks.Wait(shutdownCtx); err != nil {
		log.Warn("Background tasks still running at shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
	return nil
}
