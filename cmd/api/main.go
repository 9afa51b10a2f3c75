package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/session-gateway/internal/api/http"
	"github.com/spec-kit/session-gateway/internal/api/http/handlers"
	"github.com/spec-kit/session-gateway/internal/auth"
	"github.com/spec-kit/session-gateway/internal/config"
	"github.com/spec-kit/session-gateway/internal/events"
	"github.com/spec-kit/session-gateway/internal/observability"
	"github.com/spec-kit/session-gateway/internal/persistence"
	"github.com/spec-kit/session-gateway/internal/repository"
	"github.com/spec-kit/session-gateway/internal/repository/memory"
	"github.com/spec-kit/session-gateway/internal/service"
	"github.com/spec-kit/session-gateway/internal/session"
	"github.com/spec-kit/session-gateway/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	pool := pg.PoolHandle()
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, persistence.DefaultMigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var userRepo repository.UserRepository
	if pool != nil {
		userRepo = repository.NewUserRepository(pool)
	} else {
		logger.Warn("using in-memory user repository; records are lost on restart")
		userRepo = memory.NewUserRepository()
	}

	dependencies := map[string]handlers.Pinger{}
	if pool != nil {
		dependencies["postgres"] = pool
	}

	var sessions session.Store
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer rdb.Close()
		sessions = session.NewRedisStore(rdb.Client, cfg.Session.KeyPrefix)
	case config.SessionStorePostgres:
		sessions = session.NewPostgresStore(pool)
	default:
		logger.Warn("using in-memory session store; sessions are lost on restart")
		sessions = session.NewMemoryStore()
	}
	dependencies["sessions"] = sessions

	if purger, ok := sessions.(session.Purger); ok {
		janitor := worker.NewSessionJanitor(purger, cfg.Session.PurgeInterval(), logger)
		go janitor.Run(ctx)
	}

	hasher, err := auth.NewPasswordHasher(cfg.Auth)
	if err != nil {
		logger.Fatal("failed to init password hasher", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		Users:      userRepo,
		Hasher:     hasher,
		Sessions:   sessions,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	userService := service.NewUserService(userRepo, hasher, dispatcher, logger)
	if cfg.Auth.AdminUsername != "" {
		if _, err := userService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
			logger.Fatal("failed to seed admin account", zap.Error(err))
		}
	}

	metrics := observability.NewMetrics()
	app := httptransport.NewApp(cfg.App.Name, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies, metrics),
		Auth: handlers.NewAuthHandler(authService, handlers.CookieConfig{
			Name:   cfg.Auth.CookieName,
			Secure: cfg.Auth.CookieSecure,
		}),
		Users:      handlers.NewUsersHandler(userService),
		Proxy:      handlers.NewProxyHandler(cfg.Proxy.UpstreamURL, cfg.Proxy.Timeout()),
		HeaderAuth: auth.NewAuthMiddleware(authService.Gate(), auth.FromAuthHeader()),
		CookieAuth: auth.NewAuthMiddleware(authService.Gate(), auth.FromCookie(cfg.Auth.CookieName)),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
