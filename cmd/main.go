package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/AnthoniusHendriyanto/blogger-auth/config"
	"github.com/AnthoniusHendriyanto/blogger-auth/db"
	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/domain"
	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/handler"
	repo "github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/repository/postgres"
	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/repository/redisstore"
	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/service"
	"github.com/AnthoniusHendriyanto/blogger-auth/internal/notifier"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	pool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repo.NewUserRepository(pool)
	sessionRepo := repo.NewSessionRepository(pool)
	revokedRepo := repo.NewRevokedTokenRepository(pool)
	recoveryRepo := repo.NewRecoveryCodeRepository(pool)

	var limitRepo domain.LimitRepository
	if cfg.RateLimitBackend == "redis" {
		rdb, err := db.NewRedisClient(ctx, cfg)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		limitRepo = redisstore.NewLimitRepository(rdb, 2*cfg.RateLimit.Window)
	} else {
		limitRepo = repo.NewLimitRepository(pool)
	}

	var mailNotifier domain.Notifier
	if cfg.Mail.Enabled {
		mailNotifier, err = notifier.NewMailer(cfg.Mail, logger)
		if err != nil {
			logger.Fatal("failed to create mailer", zap.Error(err))
		}
	} else {
		mailNotifier = notifier.NewLogNotifier(logger)
	}

	tokenService := service.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authService := service.NewAuthService(userRepo, sessionRepo, revokedRepo, tokenService, cfg, logger)
	accountService := service.NewAccountService(userRepo, recoveryRepo, mailNotifier, cfg, logger)
	securityService := service.NewSecurityService(sessionRepo, cfg, logger)
	limitService := service.NewLimitService(limitRepo, logger)

	authHandler := handler.NewAuthHandler(authService, accountService)
	securityHandler := handler.NewSecurityHandler(securityService)

	app := fiber.New()
	handler.RegisterRoutes(app, authHandler, securityHandler, limitService, tokenService, cfg)

	logger.Info("starting server", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
