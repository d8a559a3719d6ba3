package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/corstar/site-intake/internal/admin"
	"github.com/corstar/site-intake/internal/api/router"
	"github.com/corstar/site-intake/internal/cta"
	appconfig "github.com/corstar/site-intake/internal/config"
	"github.com/corstar/site-intake/internal/events"
	"github.com/corstar/site-intake/internal/inquiry"
	"github.com/corstar/site-intake/internal/intake"
	"github.com/corstar/site-intake/internal/leads"
	"github.com/corstar/site-intake/internal/notify"
	"github.com/corstar/site-intake/internal/observability/metrics"
	"github.com/corstar/site-intake/internal/ratelimit"
	"github.com/corstar/site-intake/pkg/logging"
)

// Runtime is the assembled HTTP application and the resources it owns.
type Runtime struct {
	Handler http.Handler
	closers []func()
}

// Close releases pools and clients in reverse order of creation.
func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
}

// Build wires storage, limiters, sinks and alerts from cfg.
// Anything not configured falls back to an in-process or disabled variant.
func Build(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	rt := &Runtime{}
	checks := map[string]router.HealthCheck{}

	var (
		repo  leads.Repository
		sinks []events.Sink
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
		}
		rt.closers = append(rt.closers, pool.Close)
		checks["postgres"] = pool.Ping
		repo = leads.NewPostgresRepository(pool)

		sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("bootstrap: open sql db: %w", err)
		}
		rt.closers = append(rt.closers, func() { _ = sqlDB.Close() })
		sinks = append(sinks, events.NewSQLStore(sqlDB))
	} else {
		logger.Warn("DATABASE_URL not set; submissions are kept in memory")
		repo = leads.NewInMemoryRepository()
	}

	var redisClient *redis.Client
	if cfg.UseRedisLimiter() {
		redisClient = BuildRedisClient(ctx, cfg, logger, true)
		if redisClient == nil {
			logger.Warn("redis limiter requested but unavailable; using per-instance limiter")
		} else {
			rt.closers = append(rt.closers, func() { _ = redisClient.Close() })
			checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		}
	}
	limiters := BuildLimiters(cfg, redisClient, logger)

	var awsCfg aws.Config
	if needsAWS(cfg) {
		var err error
		awsCfg, err = LoadAWSConfig(ctx, cfg)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
	}
	if cfg.EventsQueueURL != "" {
		sinks = append(sinks, events.NewSQSSink(sqs.NewFromConfig(awsCfg), cfg.EventsQueueURL))
	}

	var archiver *admin.Archiver
	if cfg.ExportBucket != "" {
		archiver = admin.NewArchiver(s3.NewFromConfig(awsCfg), cfg.ExportBucket, logger)
	}

	ctas := cta.DefaultRegistry(cfg.CalendlyURL)
	if err := ctas.Validate(); err != nil {
		rt.Close()
		return nil, fmt.Errorf("bootstrap: cta registry: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	rt.Handler = router.New(&router.Config{
		Logger: logger,
		Intake: intake.Deps{
			Repo:           repo,
			Events:         events.NewEmitter(sinks...),
			Alerter:        buildAlerter(cfg, awsCfg, logger),
			Metrics:        metrics.NewIntakeMetrics(reg),
			Logger:         logger,
			PersistTimeout: cfg.PersistTimeout,
		},
		LimiterFor:          func(e inquiry.Endpoint) ratelimit.Limiter { return limiters[e] },
		Admin:               admin.NewHandler(repo, archiver, logger),
		AdminAuthSecret:     cfg.AdminJWTSecret,
		AdminAllowedOrigins: cfg.AdminAllowedOrigins,
		CTAs:                ctas,
		MetricsHandler:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		HealthChecks:        checks,
	})
	return rt, nil
}

// buildAlerter prefers SendGrid, then SES, then a logging stub.
func buildAlerter(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) intake.Alerter {
	if cfg.AlertEmailTo == "" {
		return nil
	}
	var sender notify.EmailSender
	switch {
	case cfg.SendGridAPIKey != "":
		sender = notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
	case cfg.SESFromEmail != "":
		sender = notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
	default:
		sender = notify.NewStubEmailSender(logger)
	}
	alerter := notify.NewAlerter(sender, cfg.AlertEmailTo)
	if alerter == nil {
		return nil
	}
	return alerter
}
