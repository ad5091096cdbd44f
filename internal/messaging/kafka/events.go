package kafka

import (
	"time"

	"github.com/google/uuid"
)

// EventType определяет тип события аудита платёжного пайплайна.
type EventType string

const (
	// EventTypePaymentReceived — пришло webhook-уведомление с новым payment id.
	EventTypePaymentReceived EventType = "payment.received"
	// EventTypePaymentDuplicate — повторное уведомление, отброшено дедупликацией.
	EventTypePaymentDuplicate EventType = "payment.duplicate"
	// EventTypePaymentNotified — статус approved, оба письма поставлены на отправку.
	EventTypePaymentNotified EventType = "payment.notified"
	// EventTypePaymentSkipped — статус не approved, побочных эффектов нет.
	EventTypePaymentSkipped EventType = "payment.skipped"
	// EventTypePaymentLookupFailed — не удалось получить платёж у провайдера.
	EventTypePaymentLookupFailed EventType = "payment.lookup_failed"
)

// TopicPaymentEvents — топик аудита обработки платежей.
const TopicPaymentEvents = "relay.payment.events"

// PaymentEvent — запись аудита по одному webhook-уведомлению.
type PaymentEvent struct {
	EventID   string    `json:"event_id"`
	EventType EventType `json:"event_type"`
	PaymentID string    `json:"payment_id"`
	OrderID   string    `json:"order_id,omitempty"`
	Amount    float64   `json:"amount,omitempty"`
	Status    string    `json:"status,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewPaymentEvent создаёт событие аудита с уникальным event_id.
func NewPaymentEvent(eventType EventType, paymentID string) PaymentEvent {
	return PaymentEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		PaymentID: paymentID,
		Timestamp: time.Now().UTC(),
	}
}
