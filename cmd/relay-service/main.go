package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/payment-relay/internal/app"
	"github.com/vladislavdragonenkov/payment-relay/internal/version"
)

// Имена переменных окружения. MP_ACCESS_TOKEN, PUBLIC_BACKEND_URL и PORT
// сохраняют имена, под которые настроен деплой магазина.
const (
	envHTTPAddr              = "RELAY_HTTP_ADDR"
	envPort                  = "PORT"
	envMetricsAddr           = "RELAY_METRICS_ADDR"
	envFrontOrigin           = "RELAY_FRONT_ORIGIN"
	envPublicBaseURL         = "PUBLIC_BACKEND_URL"
	envAllowedOrigins        = "RELAY_ALLOWED_ORIGINS"
	envMPAccessToken         = "MP_ACCESS_TOKEN"
	envSMTPHost              = "SMTP_HOST"
	envSMTPPort              = "SMTP_PORT"
	envSMTPUser              = "SMTP_USER"
	envSMTPPass              = "SMTP_PASS"
	envSMTPFrom              = "SMTP_FROM"
	envMerchantEmail         = "MERCHANT_EMAIL"
	envStorageDriver         = "RELAY_STORAGE_DRIVER"
	envPostgresDSN           = "RELAY_POSTGRES_DSN"
	envDedupeTTL             = "RELAY_DEDUPE_TTL"
	envDedupeCleanupInterval = "RELAY_DEDUPE_CLEANUP_INTERVAL"
	envDedupeCleanupBatch    = "RELAY_DEDUPE_CLEANUP_BATCH"
	envKafkaBrokers          = "KAFKA_BROKERS"
)

// lookupFunc абстрагирует os.LookupEnv для тестируемости парсинга.
type lookupFunc func(string) (string, bool)

// mapLookup возвращает lookup поверх map; nil трактуется как пустое окружение.
func mapLookup(values map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
}

// readConfigFromEnv формирует конфигурацию из окружения. Непарсибельные
// значения не валят процесс: остаётся default, а предупреждение копится
// в warnings.
func readConfigFromEnv(lookup lookupFunc) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	getString := func(key string, target *string) {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}
	getDuration := func(key string, target *time.Duration) {
		value, ok := lookup(key)
		if !ok || strings.TrimSpace(value) == "" {
			return
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil || parsed <= 0 {
			warnings = append(warnings, fmt.Sprintf("%s: invalid duration %q, keeping default", key, value))
			return
		}
		*target = parsed
	}
	getInt := func(key string, target *int) {
		value, ok := lookup(key)
		if !ok || strings.TrimSpace(value) == "" {
			return
		}
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || parsed <= 0 {
			warnings = append(warnings, fmt.Sprintf("%s: invalid integer %q, keeping default", key, value))
			return
		}
		*target = parsed
	}
	getList := func(key string, target *[]string) {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*target = splitAndTrim(value)
		}
	}

	getString(envHTTPAddr, &cfg.HTTPAddr)
	// PORT поддерживается ради совместимости с текущим деплоем;
	// RELAY_HTTP_ADDR имеет приоритет.
	if _, explicit := lookup(envHTTPAddr); !explicit {
		if port, ok := lookup(envPort); ok && strings.TrimSpace(port) != "" {
			cfg.HTTPAddr = ":" + strings.TrimSpace(port)
		}
	}

	getString(envMetricsAddr, &cfg.MetricsAddr)
	getString(envFrontOrigin, &cfg.FrontOrigin)
	getString(envPublicBaseURL, &cfg.PublicBaseURL)
	getList(envAllowedOrigins, &cfg.AllowedOrigins)
	getString(envMPAccessToken, &cfg.MPAccessToken)

	getString(envSMTPHost, &cfg.SMTP.Host)
	getInt(envSMTPPort, &cfg.SMTP.Port)
	getString(envSMTPUser, &cfg.SMTP.Username)
	getString(envSMTPPass, &cfg.SMTP.Password)
	getString(envSMTPFrom, &cfg.SMTP.From)
	getString(envMerchantEmail, &cfg.MerchantEmail)

	if value, ok := lookup(envStorageDriver); ok && strings.TrimSpace(value) != "" {
		cfg.StorageDriver = strings.ToLower(strings.TrimSpace(value))
	}
	getString(envPostgresDSN, &cfg.PostgresDSN)

	getDuration(envDedupeTTL, &cfg.DedupeTTL)
	getDuration(envDedupeCleanupInterval, &cfg.DedupeCleanupInterval)
	getInt(envDedupeCleanupBatch, &cfg.DedupeCleanupBatch)

	getList(envKafkaBrokers, &cfg.KafkaBrokers)

	return cfg, warnings
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func main() {
	// .env подхватывается только если лежит рядом; в проде окружение задаёт оркестратор.
	_ = godotenv.Load()
	setupLogger()

	cfg, warnings := readConfigFromEnv(os.LookupEnv)
	for _, warning := range warnings {
		log.Warn(warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"http_addr":    cfg.HTTPAddr,
		"metrics_addr": cfg.MetricsAddr,
		"storage":      cfg.StorageDriver,
		"version":      version.String(),
	}).Info("запускаем payment relay")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("payment relay остановлен")
}
