// Command server runs the authentication security core.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	appservice "github.com/turtacn/authcore/internal/application/service"
	"github.com/turtacn/authcore/internal/config"
	domainservice "github.com/turtacn/authcore/internal/domain/service"
	"github.com/turtacn/authcore/internal/infrastructure/audit"
	"github.com/turtacn/authcore/internal/infrastructure/crypto"
	"github.com/turtacn/authcore/internal/infrastructure/monitoring"
	"github.com/turtacn/authcore/internal/infrastructure/persistence/redis"
	"github.com/turtacn/authcore/internal/infrastructure/ratelimit"
	"github.com/turtacn/authcore/internal/interfaces/http/handlers"
	"github.com/turtacn/authcore/internal/interfaces/http/router"
	"github.com/turtacn/authcore/pkg/logger"
)

func main() {
	startupLogger, _, err := monitoring.NewZapLogger(config.LogConfig{Level: "info", Format: "json"})
	if err != nil {
		log.Fatalf("failed to create startup logger: %v", err)
	}

	cfg, err := config.LoadConfig(startupLogger)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, setLogLevel, err := monitoring.NewZapLogger(cfg.Log)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	cfg.Live.OnLogLevelChange(setLogLevel)
	ctx := context.Background()

	shutdownTracing, err := monitoring.InitTracing(cfg.Tracing)
	if err != nil {
		appLogger.Error(ctx, "failed to initialize tracing", err)
		os.Exit(1)
	}

	redisConn, err := redis.NewConnection(cfg.Redis, appLogger)
	if err != nil {
		appLogger.Error(ctx, "failed to connect to redis", err)
		os.Exit(1)
	}
	defer redisConn.Close()

	keySource, err := crypto.NewKeySource(cfg, appLogger)
	if err != nil {
		appLogger.Error(ctx, "failed to initialize signing key source", err)
		os.Exit(1)
	}
	jwtManager := crypto.NewJWTManager(keySource, cfg.Token.Issuer, appLogger)

	dispatcher := buildAuditDispatcher(ctx, cfg, appLogger)
	defer dispatcher.Close()

	metrics := monitoring.NewMetrics()

	familyStore := redis.NewFamilyStore(redisConn, appLogger)
	blacklistStore := redis.NewBlacklistStore(redisConn, appLogger)
	sessionStore := redis.NewSessionStore(redisConn, appLogger)
	deviceStore := redis.NewTrustedDeviceStore(redisConn, appLogger)

	tokenSvc := domainservice.NewTokenDomainService(cfg.Token, jwtManager, familyStore, blacklistStore, dispatcher, appLogger)
	sessionSvc := domainservice.NewSessionDomainService(cfg.Session, sessionStore, dispatcher, appLogger)
	deviceSvc := domainservice.NewTrustedDeviceDomainService(cfg.Device, deviceStore, dispatcher, appLogger)
	limiter := ratelimit.NewSlidingWindowLimiter(redisConn.Client(), cfg.Live.RateLimit, appLogger)

	authApp := appservice.NewAuthAppService(tokenSvc, sessionSvc, deviceSvc, jwtManager, appLogger)

	httpRouter := router.NewRouter(
		cfg,
		appLogger,
		tokenSvc,
		limiter,
		metrics,
		handlers.NewHealthHandler(redisConn),
		handlers.NewAuthHandler(authApp, metrics, cfg.Token),
		handlers.NewSessionHandler(authApp),
		handlers.NewDeviceHandler(authApp),
		handlers.NewAdminHandler(authApp, metrics),
	)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(httpRouter.Start)
	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpRouter.Stop(shutdownCtx); err != nil {
			appLogger.Error(shutdownCtx, "http shutdown failed", err)
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			appLogger.Warn(shutdownCtx, "tracing shutdown failed", logger.Err(err))
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		appLogger.Error(ctx, "server exited with error", err)
		os.Exit(1)
	}
	appLogger.Info(ctx, "server stopped")
}

// buildAuditDispatcher assembles the audit pipeline from the enabled sinks.
// The log sink is always present so security events are never silently lost.
func buildAuditDispatcher(ctx context.Context, cfg *config.Config, log logger.Logger) *audit.Dispatcher {
	sinks := []audit.Sink{audit.NewLogSink(log)}

	if cfg.Audit.Kafka.Enabled {
		sinks = append(sinks, audit.NewKafkaSink(cfg.Audit.Kafka, log))
	}
	if cfg.Audit.Archive.Enabled {
		archive, err := audit.NewArchiveSink(cfg.Audit.Archive.DSN, log)
		if err != nil {
			log.Error(ctx, "failed to open audit archive, continuing without it", err)
		} else {
			sinks = append(sinks, archive)
		}
	}

	queueSize := cfg.Audit.QueueSize
	if queueSize <= 0 {
		queueSize = 1024
	}
	return audit.NewDispatcher(sinks, queueSize, log)
}
