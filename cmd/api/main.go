package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/AYOPELUMI/support-ticket-system/internal/api/http"
	"github.com/AYOPELUMI/support-ticket-system/internal/api/http/handlers"
	"github.com/AYOPELUMI/support-ticket-system/internal/auth"
	"github.com/AYOPELUMI/support-ticket-system/internal/config"
	"github.com/AYOPELUMI/support-ticket-system/internal/events"
	"github.com/AYOPELUMI/support-ticket-system/internal/observability"
	"github.com/AYOPELUMI/support-ticket-system/internal/persistence"
	"github.com/AYOPELUMI/support-ticket-system/internal/repository"
	"github.com/AYOPELUMI/support-ticket-system/internal/service"
	"github.com/AYOPELUMI/support-ticket-system/internal/worker"
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Guard:      auth.NewGuard(),
		Dispatcher: dispatcher,
	})
	auditService := service.NewAuditService(dispatcher, logger, redis, cfg.Audit)
	worker.StartAuditWorker(auditService)

	cookies := auth.NewSessionCookies(cfg.Session.CookieName, cfg.Auth.SessionTokenTTL(), cfg.Session.CookieSecure)
	resolver := auth.NewResolver(cookies, authService.TokenManager(), userRepo, logger)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:    handlers.NewAuthHandler(authService, cookies, resolver),
		Tickets: handlers.NewTicketsHandler(ticketService, resolver),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
