package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/service/order"
	"github.com/vladislavdragonenkov/storefront/internal/service/ratelimit"
	transport "github.com/vladislavdragonenkov/storefront/internal/transport/http"
)

// Run собирает зависимости и держит приложение до остановки контекста.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	limiter := ratelimit.NewLimiter(deps.LimitStore, ratelimit.Config{
		Window:        cfg.RateLimitWindow,
		MaxPerWindow:  cfg.RateLimitMaxPerWindow,
		BlockDuration: cfg.RateLimitBlockDuration,
	}, ratelimit.WithLogger(logger.WithField("component", "ratelimit")))

	svc := order.NewService(deps.OrderRepo, limiter,
		order.WithOutbox(deps.OutboxRepo),
		order.WithMetrics(metrics.NewOrderMetrics()),
		order.WithLogger(logger.WithField("component", "order-service")),
	)

	_, stopKafka := initKafka(ctx, cfg, deps.OutboxRepo, logger)
	defer stopKafka()

	if cfg.AdminToken == "" {
		logger.Warn("admin token is not configured, admin endpoints are unreachable")
	}

	handler := transport.NewHandler(svc, logger.WithField("component", "http"))
	resolver := &transport.HeaderIdentityResolver{AdminToken: cfg.AdminToken}
	router := transport.NewRouter(handler, resolver, logger.WithField("component", "http"))

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, deps.Health)
	defer shutdownHTTP(metricsSrv, logger)

	server := transport.NewServer(cfg.HTTPAddr, router, logger.WithField("component", "http"))
	return server.Run(ctx)
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus
// вместе с health-пробами.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, health *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", health)
	mux.HandleFunc("/readyz", health.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/readyz, %s/livez", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
