package main

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/payment-relay/internal/app"
)

func TestReadConfigFromEnv_Defaults(t *testing.T) {
	cfg, warnings := readConfigFromEnv(mapLookup(nil))

	if len(warnings) != 0 {
		t.Fatalf("empty environment produced warnings: %v", warnings)
	}
	if !reflect.DeepEqual(cfg, app.DefaultConfig()) {
		t.Fatalf("empty environment must yield defaults, got %+v", cfg)
	}
}

func TestReadConfigFromEnv_Overrides(t *testing.T) {
	cfg, warnings := readConfigFromEnv(mapLookup(map[string]string{
		"RELAY_HTTP_ADDR":               ":8080",
		"RELAY_METRICS_ADDR":            ":9100",
		"RELAY_FRONT_ORIGIN":            "https://shop.example",
		"PUBLIC_BACKEND_URL":            "https://relay.example",
		"RELAY_ALLOWED_ORIGINS":         "https://shop.example, https://www.shop.example",
		"MP_ACCESS_TOKEN":               "APP_USR-token",
		"SMTP_HOST":                     "smtp.example.com",
		"SMTP_PORT":                     "587",
		"SMTP_USER":                     "relay",
		"SMTP_PASS":                     "secret",
		"SMTP_FROM":                     "no-reply@shop.example",
		"MERCHANT_EMAIL":                "ventas@shop.example",
		"RELAY_STORAGE_DRIVER":          "Postgres",
		"RELAY_POSTGRES_DSN":            "postgres://relay@localhost/relay",
		"RELAY_DEDUPE_TTL":              "72h",
		"RELAY_DEDUPE_CLEANUP_INTERVAL": "10m",
		"RELAY_DEDUPE_CLEANUP_BATCH":    "100",
		"KAFKA_BROKERS":                 "kafka-1:9092,kafka-2:9092",
	}))

	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.MetricsAddr != ":9100" {
		t.Errorf("MetricsAddr = %q", cfg.MetricsAddr)
	}
	if cfg.FrontOrigin != "https://shop.example" {
		t.Errorf("FrontOrigin = %q", cfg.FrontOrigin)
	}
	if cfg.PublicBaseURL != "https://relay.example" {
		t.Errorf("PublicBaseURL = %q", cfg.PublicBaseURL)
	}
	wantOrigins := []string{"https://shop.example", "https://www.shop.example"}
	if !reflect.DeepEqual(cfg.AllowedOrigins, wantOrigins) {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.MPAccessToken != "APP_USR-token" {
		t.Errorf("MPAccessToken = %q", cfg.MPAccessToken)
	}
	if cfg.SMTP.Host != "smtp.example.com" || cfg.SMTP.Port != 587 {
		t.Errorf("SMTP = %+v", cfg.SMTP)
	}
	if cfg.SMTP.From != "no-reply@shop.example" {
		t.Errorf("SMTP.From = %q", cfg.SMTP.From)
	}
	if cfg.MerchantEmail != "ventas@shop.example" {
		t.Errorf("MerchantEmail = %q", cfg.MerchantEmail)
	}
	if cfg.StorageDriver != app.StorageDriverPostgres {
		t.Errorf("StorageDriver = %q, driver name must be lowered", cfg.StorageDriver)
	}
	if cfg.PostgresDSN != "postgres://relay@localhost/relay" {
		t.Errorf("PostgresDSN = %q", cfg.PostgresDSN)
	}
	if cfg.DedupeTTL != 72*time.Hour {
		t.Errorf("DedupeTTL = %v", cfg.DedupeTTL)
	}
	if cfg.DedupeCleanupInterval != 10*time.Minute {
		t.Errorf("DedupeCleanupInterval = %v", cfg.DedupeCleanupInterval)
	}
	if cfg.DedupeCleanupBatch != 100 {
		t.Errorf("DedupeCleanupBatch = %d", cfg.DedupeCleanupBatch)
	}
	if !reflect.DeepEqual(cfg.KafkaBrokers, []string{"kafka-1:9092", "kafka-2:9092"}) {
		t.Errorf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
}

func TestReadConfigFromEnv_PortFallback(t *testing.T) {
	cfg, _ := readConfigFromEnv(mapLookup(map[string]string{"PORT": "4000"}))
	if cfg.HTTPAddr != ":4000" {
		t.Fatalf("HTTPAddr = %q, want :4000 from PORT", cfg.HTTPAddr)
	}

	cfg, _ = readConfigFromEnv(mapLookup(map[string]string{
		"PORT":            "4000",
		"RELAY_HTTP_ADDR": ":8080",
	}))
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, RELAY_HTTP_ADDR must win over PORT", cfg.HTTPAddr)
	}
}

func TestReadConfigFromEnv_InvalidValuesKeepDefaults(t *testing.T) {
	cfg, warnings := readConfigFromEnv(mapLookup(map[string]string{
		"RELAY_DEDUPE_TTL":           "thirty days",
		"RELAY_DEDUPE_CLEANUP_BATCH": "-5",
		"SMTP_PORT":                  "not-a-port",
	}))

	defaults := app.DefaultConfig()
	if cfg.DedupeTTL != defaults.DedupeTTL {
		t.Errorf("DedupeTTL = %v, want default", cfg.DedupeTTL)
	}
	if cfg.DedupeCleanupBatch != defaults.DedupeCleanupBatch {
		t.Errorf("DedupeCleanupBatch = %d, want default", cfg.DedupeCleanupBatch)
	}
	if cfg.SMTP.Port != 0 {
		t.Errorf("SMTP.Port = %d, want 0", cfg.SMTP.Port)
	}

	if len(warnings) != 3 {
		t.Fatalf("warnings = %v, want three", warnings)
	}
	for _, w := range warnings {
		if !strings.Contains(w, "keeping default") {
			t.Errorf("warning %q misses hint about default", w)
		}
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(" a, b ,, c ,")
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("splitAndTrim = %v", got)
	}
}
