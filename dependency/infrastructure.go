package dependency

import (
	"fmt"
	"time"

	"github.com/banterhq/banter/infrastructure/metrics"
	"github.com/banterhq/banter/infrastructure/persistence/database"
	"github.com/banterhq/banter/infrastructure/persistence/migration"
	"github.com/banterhq/banter/infrastructure/presence"
	"github.com/banterhq/banter/infrastructure/tracing"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

func (c *Container) initInfrastructure() error {
	tracerProvider, err := tracing.InitJaegerExporter(c.Config)
	if err != nil {
		c.Logger.Error("failed to initialize Jaeger exporter", zap.Error(err))
		c.Logger.Warn("Using noop tracer provider as fallback")
	} else {
		c.TracerProvider = tracerProvider
		c.Logger.Info("Jaeger exporter initialized successfully",
			zap.String("endpoint", c.Config.Jaeger.Endpoint),
			zap.String("service", c.Config.Jaeger.ServiceName),
		)
	}

	c.Metrics = metrics.New()

	if c.Config.Sentry.Dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:   c.Config.Sentry.Dsn,
			Debug: c.Config.Sentry.Debug,
		}); err != nil {
			c.Logger.Error("failed to initialize Sentry", zap.Error(err))
		}
	}

	db, err := database.Open(c.Config)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	c.DB = db

	if err := migration.Up(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	registry, err := presence.NewRegistry(c.Config)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.Presence = registry

	c.Logger.Info("Infrastructure initialized successfully")

	return nil
}

func (c *Container) flushSentry() {
	if c.Config.Sentry.Dsn != "" {
		sentry.Flush(2 * time.Second)
	}
}
