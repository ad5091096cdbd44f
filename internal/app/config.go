package app

import (
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/payment-relay/internal/mail"
)

// Поддерживаемые драйверы dedupe-хранилища.
const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

// Config описывает настройки запуска relay.
type Config struct {
	// HTTPAddr — адрес публичного HTTP-фасада.
	HTTPAddr string
	// MetricsAddr — адрес служебного сервера: /metrics, /healthz, /livez.
	MetricsAddr string

	// FrontOrigin — origin фронта со страницами возврата после оплаты.
	FrontOrigin string
	// PublicBaseURL — публичный адрес бэкенда для notification_url.
	// Пустое значение отключает вебхуки на стороне провайдера.
	PublicBaseURL string
	// AllowedOrigins — allow-list для CORS с credentials.
	AllowedOrigins []string

	// MPAccessToken — bearer-токен API MercadoPago.
	MPAccessToken string

	// SMTP — учётка почтового транспорта; неполная учётка отключает отправку.
	SMTP mail.Config
	// MerchantEmail — адрес мерчанта для уведомлений о продажах;
	// пустое значение отключает письмо мерчанту.
	MerchantEmail string

	StorageDriver string
	PostgresDSN   string

	// DedupeTTL — срок жизни записи об обработанном платеже.
	DedupeTTL             time.Duration
	DedupeCleanupInterval time.Duration
	DedupeCleanupBatch    int

	// KafkaBrokers пустой — аудит событий выключен.
	KafkaBrokers []string
}

// DefaultConfig возвращает настройки для локального запуска с фронтом
// Tierra de Calma.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:    ":3000",
		MetricsAddr: ":9090",
		FrontOrigin: "https://tierradecalma.com",
		AllowedOrigins: []string{
			"https://tierradecalma.com",
			"https://www.tierradecalma.com",
		},
		StorageDriver:         StorageDriverMemory,
		DedupeTTL:             30 * 24 * time.Hour,
		DedupeCleanupInterval: time.Hour,
		DedupeCleanupBatch:    500,
	}
}

// Validate проверяет согласованность конфигурации перед запуском.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres storage driver requires a DSN")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}

	if c.MPAccessToken == "" {
		return fmt.Errorf("mercadopago access token is required")
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("http listen address is required")
	}

	return nil
}
