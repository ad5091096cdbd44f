package domain

import (
	"context"
	"time"
)

// BackURLs задаёт страницы фронта, на которые провайдер возвращает покупателя.
type BackURLs struct {
	Success string
	Pending string
	Failure string
}

// PreferenceRequest описывает запрос на создание checkout preference.
type PreferenceRequest struct {
	Items []LineItem
	// ExternalReference — идентификатор заказа, который провайдер вернёт в платеже.
	ExternalReference string
	BackURLs          BackURLs
	AutoReturn        string
	// NotificationURL пустой, если публичный адрес бэкенда не сконфигурирован.
	NotificationURL string
	PayerEmail      string
}

// Preference — результат создания checkout preference у провайдера.
type Preference struct {
	ID string
	// InitPoint — ссылка на hosted checkout страницу.
	InitPoint string
}

// PaymentGateway описывает взаимодействие с платёжным провайдером.
type PaymentGateway interface {
	// CreatePreference создаёт checkout preference. Единственная попытка,
	// non-2xx ответ — жёсткая ошибка вызова.
	CreatePreference(ctx context.Context, req PreferenceRequest) (Preference, error)
	// GetPayment возвращает авторитетную запись о платеже по его идентификатору.
	GetPayment(ctx context.Context, paymentID string) (Payment, error)
}

// MailMessage — письмо в том виде, в котором его принимает транспорт.
type MailMessage struct {
	To      string
	Subject string
	HTML    string
}

// MailSender выполняет доставку письма. Ошибка доставки поднимается
// вызывающему; политику подавления определяет notifier.
type MailSender interface {
	Send(ctx context.Context, msg MailMessage) error
}

// DedupeStore — idempotency-guard по идентификатору платежа.
type DedupeStore interface {
	// MarkSeen атомарно помечает платёж обработанным. Возвращает true,
	// если идентификатор встретился впервые. Повторный вызов для того же
	// идентификатора всегда возвращает false.
	MarkSeen(ctx context.Context, paymentID string, ttlAt time.Time) (bool, error)
	// Seen сообщает, помечен ли платёж без изменения состояния.
	Seen(ctx context.Context, paymentID string) (bool, error)
	// DeleteExpired удаляет записи с ttl <= before, не больше limit за вызов.
	DeleteExpired(ctx context.Context, before time.Time, limit int) (int, error)
}
