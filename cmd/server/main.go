package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"natours/docs"
	"natours/internal/auth"
	"natours/internal/cache"
	"natours/internal/config"
	"natours/internal/db"
	"natours/internal/handler"
	"natours/internal/logging"
	"natours/internal/mail"
	"natours/internal/repository"
	"natours/internal/router"
	"natours/internal/server"
	"natours/internal/service"
)

// cacheMonitorInterval is how often redis is pinged to toggle the tour cache.
const cacheMonitorInterval = 15 * time.Second

// @title Natours API
// @version 1.0
// @description Tour booking API with signup, login, password reset and role based access.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	logger := logging.New(os.Stdout, false)
	if err := run(logger); err != nil {
		logger.Error("fatal", logging.Err(err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.IsDev() {
		logger = logging.New(os.Stdout, true)
	}
	slog.SetDefault(logger)
	logger.Info("config loaded", slog.Any("config", cfg))

	gormDB, err := db.NewMySQL(cfg.MySQLDSN, cfg.IsDev())
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(gormDB); err != nil {
			logger.Warn("close database", logging.Err(err))
		}
	}()

	if cfg.ResetDB {
		logger.Warn("RESET_DB set, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			return err
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, "natours:")
	if err := cacheClient.Ping(context.Background()); err != nil {
		logger.Warn("redis unavailable, tour cache disabled until it answers", logging.Err(err))
	}
	defer func() { _ = cacheClient.Close() }()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	tourRepo := repository.NewTourRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiresIn)
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	mailer := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	})

	// Initialize services
	authService := service.NewAuthService(userRepo, hasher, jwtService, mailer, logger)
	userService := service.NewUserService(userRepo)
	tourService := service.NewTourService(tourRepo, cacheClient)

	e := echo.New()
	e.HidePort = true
	router.Register(e, logger, router.Handlers{
		Auth:  handler.NewAuthHandler(authService, cfg.AppBaseURL),
		Users: handler.NewUserHandler(userService),
		Tours: handler.NewTourHandler(tourService),
		Guard: service.NewSessionGuard(jwtService, userRepo),
	})

	swaggerHost := cfg.SwaggerHost
	if swaggerHost == "" {
		swaggerHost = "localhost:" + cfg.ServerPort
	}
	docs.SwaggerInfo.Host = swaggerHost
	logger.Info("swagger documentation available", slog.String("url", "http://"+swaggerHost+"/swagger/index.html"))

	return server.NewSupervisor(logger, cfg.ShutdownTimeout).Run(context.Background(), e, ":"+cfg.ServerPort,
		func(ctx context.Context) error {
			return cacheClient.Monitor(ctx, cacheMonitorInterval, logger)
		},
	)
}
