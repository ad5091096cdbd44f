package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/payment-relay/internal/domain"
	"github.com/vladislavdragonenkov/payment-relay/internal/gateway/mercadopago"
	healthcheck "github.com/vladislavdragonenkov/payment-relay/internal/health"
	"github.com/vladislavdragonenkov/payment-relay/internal/mail"
	"github.com/vladislavdragonenkov/payment-relay/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/payment-relay/internal/server"
	"github.com/vladislavdragonenkov/payment-relay/internal/service/dedupe"
	"github.com/vladislavdragonenkov/payment-relay/internal/service/notifier"
	"github.com/vladislavdragonenkov/payment-relay/internal/service/preference"
	"github.com/vladislavdragonenkov/payment-relay/internal/storage/memory"
	"github.com/vladislavdragonenkov/payment-relay/internal/storage/postgres"
	"github.com/vladislavdragonenkov/payment-relay/internal/version"
)

// Run собирает зависимости relay и обслуживает HTTP до отмены ctx.
func Run(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := log.WithField("component", "app")
	healthHandler := healthcheck.NewHandler(version.String())

	// Dedupe-хранилище: in-memory по умолчанию, postgres — когда
	// дедупликация должна переживать рестарты.
	var (
		store   domain.DedupeStore
		pgStore *postgres.Store
	)
	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		var err error
		pgStore, err = postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer func() { _ = pgStore.Close() }()

		if err := pgStore.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure postgres schema: %w", err)
		}

		store = postgres.NewDedupeStore(pgStore)
		healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			return pgStore.Ping(context.Background())
		}))
		logger.Info("dedupe store: postgres")
	default:
		store = memory.NewDedupeStore()
		logger.Info("dedupe store: in-memory")
	}

	// Почтовый транспорт. Без SMTP-учётки сервис стартует, но каждая
	// попытка отправки завершается описательной ошибкой в логе.
	var sender domain.MailSender
	if smtpSender, err := mail.NewSMTPSender(cfg.SMTP); err != nil {
		logger.WithError(err).Warn("mail transport disabled")
		sender = mail.DisabledSender{}
	} else {
		sender = smtpSender
		logger.WithField("smtp_host", cfg.SMTP.Host).Info("mail transport initialized")
	}

	gateway := mercadopago.NewClient(cfg.MPAccessToken)

	// Kafka producer опционален: без брокеров аудит событий выключен.
	var kafkaProducer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		} else {
			kafkaProducer = producer
			logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer initialized")
		}
	}

	notifierLogger := log.WithField("component", "webhook-notifier")
	var webhookNotifier *notifier.Notifier
	if kafkaProducer != nil {
		webhookNotifier = notifier.NewNotifierWithKafka(store, gateway, sender, cfg.MerchantEmail, cfg.DedupeTTL, kafkaProducer, notifierLogger)
	} else {
		webhookNotifier = notifier.NewNotifier(store, gateway, sender, cfg.MerchantEmail, cfg.DedupeTTL, notifierLogger)
	}

	builder := preference.NewBuilder(gateway, cfg.FrontOrigin, cfg.PublicBaseURL, log.WithField("component", "preference-builder"))

	cleanupWorker := dedupe.NewCleanupWorker(store,
		dedupe.WithInterval(cfg.DedupeCleanupInterval),
		dedupe.WithBatchSize(cfg.DedupeCleanupBatch),
	)
	go cleanupWorker.Run(ctx)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.New(builder, webhookNotifier, cfg.AllowedOrigins, log.WithField("component", "http-server")).Handler(),
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP сервер слушает %s", cfg.HTTPAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(httpServer, logger)
		shutdownHTTP(metricsSrv, logger)
		closeKafka(kafkaProducer, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		closeKafka(kafkaProducer, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer запускает служебный HTTP-сервер: /metrics, /healthz, /livez.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
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
		logger.WithError(err).Warn("http shutdown with error")
	}
}

func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}
	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
