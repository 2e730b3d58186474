// @title                       Back-office API
// @version                     1.0
// @description                 Staff authentication, user administration and customer records for the insurance back office.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/brokerdesk/backoffice-api/internal/api"
	"github.com/brokerdesk/backoffice-api/internal/api/handler"
	"github.com/brokerdesk/backoffice-api/internal/core/service"
	mongodb "github.com/brokerdesk/backoffice-api/internal/infrastructure/db/mongo"
	"github.com/brokerdesk/backoffice-api/internal/infrastructure/db/postgres"
	redisdb "github.com/brokerdesk/backoffice-api/internal/infrastructure/db/redis"
	"github.com/brokerdesk/backoffice-api/internal/infrastructure/queue"
	"github.com/brokerdesk/backoffice-api/internal/pkg/config"
	"github.com/brokerdesk/backoffice-api/internal/pkg/password"
	"github.com/brokerdesk/backoffice-api/internal/pkg/token"
	"github.com/brokerdesk/backoffice-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "backoffice-api",
	})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	if err := postgres.Migrate(ctx, cfg.Postgres.DSN); err != nil {
		return err
	}
	pool, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN, MaxConns: cfg.Postgres.MaxConns})
	if err != nil {
		return err
	}
	defer pool.Close()

	mongoClient, mongoDB, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "backoffice-api",
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	identityRepo := postgres.NewIdentityRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	auditRepo := mongodb.NewAuditRepository(mongoDB)
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		return err
	}
	statsCache := redisdb.NewStatsCache(rdb, cfg.Redis.KeyPrefix)

	// --- Security ---
	hasher := password.NewBcryptHasher(cfg.Password.BcryptCost)
	issuer, err := token.NewIssuer(cfg.JWT.Secret,
		token.WithIssuer(cfg.JWT.Issuer),
		token.WithTTLs(cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL),
	)
	if err != nil {
		return err
	}

	// --- Audit pipeline ---
	auditService := service.NewAuditService(auditRepo, logger.Component("audit"))
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, auditService, logger.Component("audit-dispatcher"))
	auditCtx, stopAudit := context.WithCancel(context.Background())
	dispatcher.Start(auditCtx)
	defer func() {
		stopAudit()
		dispatcher.Wait()
	}()

	// --- Services ---
	authService, err := service.NewAuthService(identityRepo, hasher, issuer, dispatcher, adminSeeds(cfg), logger.Component("auth"))
	if err != nil {
		return err
	}
	userService := service.NewUserService(identityRepo, customerRepo, hasher, issuer, dispatcher, logger.Component("users"))
	customerService := service.NewCustomerService(customerRepo, statsCache, logger.Component("customers"))
	dashboardService := service.NewDashboardService(customerService, statsCache, cfg.Dashboard.CacheTTL, logger.Component("dashboard"))

	if err := authService.OnStartup(ctx); err != nil {
		return err
	}

	mongoPing := func(ctx context.Context) error {
		return mongoClient.Ping(ctx, readpref.Primary())
	}
	redisPing := func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}

	e := api.NewRouter(api.Dependencies{
		Log:       log,
		Tokens:    issuer,
		Auth:      authService,
		Users:     userService,
		Customers: customerService,
		Dashboard: dashboardService,
		Audit:     auditService,
		Checks: map[string]handler.Check{
			"postgres": pool.Ping,
			"mongodb":  mongoPing,
			"redis":    redisPing,
		},
	})

	srvErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	select {
	case err := <-srvErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("http server stopped")
	return nil
}

func adminSeeds(cfg *config.Config) []service.AdminSeed {
	seeds := make([]service.AdminSeed, 0, 2)
	for _, s := range cfg.AdminSeeds() {
		seeds = append(seeds, service.AdminSeed{
			Username:  s.Username,
			Email:     s.Email,
			Password:  s.Password,
			FirstName: s.FirstName,
			LastName:  s.LastName,
		})
	}
	return seeds
}
