package notifier

import (
	"context"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/payment-relay/internal/domain"
	"github.com/vladislavdragonenkov/payment-relay/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/payment-relay/internal/metrics"
)

const defaultDedupeTTL = 30 * 24 * time.Hour

const (
	recipientMerchant = "merchant"
	recipientBuyer    = "buyer"
)

// Notifier обрабатывает webhook-уведомления о платежах.
//
// Политика обработки — acknowledge-always: Handle никогда не возвращает
// ошибку, любой сбой логируется и учитывается в метриках, а HTTP-слой
// отвечает провайдеру 200. Иначе провайдер уходит в retry-цикл.
type Notifier struct {
	store   domain.DedupeStore
	gateway domain.PaymentGateway
	sender  domain.MailSender
	// merchantEmail пустой, если уведомления мерчанту не сконфигурированы.
	merchantEmail string
	dedupeTTL     time.Duration
	logger        *log.Entry
	metrics       *metrics.RelayMetrics
	kafkaProducer *kafka.Producer // опциональный аудит событий
}

// NewNotifier создаёт рабочий экземпляр Notifier.
func NewNotifier(
	store domain.DedupeStore,
	gateway domain.PaymentGateway,
	sender domain.MailSender,
	merchantEmail string,
	dedupeTTL time.Duration,
	logger *log.Entry,
) *Notifier {
	if logger == nil {
		logger = log.WithField("component", "webhook-notifier")
	}
	if dedupeTTL <= 0 {
		dedupeTTL = defaultDedupeTTL
	}
	return &Notifier{
		store:         store,
		gateway:       gateway,
		sender:        sender,
		merchantEmail: merchantEmail,
		dedupeTTL:     dedupeTTL,
		logger:        logger,
		metrics:       metrics.NewRelayMetrics(),
	}
}

// NewNotifierWithKafka создаёт Notifier, публикующий события аудита в Kafka.
func NewNotifierWithKafka(
	store domain.DedupeStore,
	gateway domain.PaymentGateway,
	sender domain.MailSender,
	merchantEmail string,
	dedupeTTL time.Duration,
	kafkaProducer *kafka.Producer,
	logger *log.Entry,
) *Notifier {
	n := NewNotifier(store, gateway, sender, merchantEmail, dedupeTTL, logger)
	n.kafkaProducer = kafkaProducer
	return n
}

// Handle обрабатывает одно уведомление и возвращает исход для логов и тестов.
// Побочные эффекты (письма) выполняются только при первом появлении
// идентификатора и только для платежей со статусом approved.
func (n *Notifier) Handle(ctx context.Context, paymentID string) string {
	start := time.Now()
	defer func() {
		n.metrics.RecordWebhookDuration(time.Since(start))
	}()

	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		// Уведомление без идентификатора подтверждаем молча: ответ 4xx/5xx
		// провайдер трактует как "пришли ещё раз".
		n.logger.Debug("notification without payment id, acknowledged")
		n.metrics.RecordNotification(metrics.NotificationOutcomeMissingID)
		return metrics.NotificationOutcomeMissingID
	}

	logger := n.logger.WithField("payment_id", paymentID)

	first, err := n.store.MarkSeen(ctx, paymentID, time.Now().UTC().Add(n.dedupeTTL))
	if err != nil {
		logger.WithError(err).Error("dedupe store failure, notification acknowledged without processing")
		n.metrics.RecordNotification(metrics.NotificationOutcomeStoreFailed)
		return metrics.NotificationOutcomeStoreFailed
	}
	if !first {
		logger.Info("duplicate notification dropped")
		n.metrics.RecordNotification(metrics.NotificationOutcomeDuplicate)
		n.publishEvent(kafka.NewPaymentEvent(kafka.EventTypePaymentDuplicate, paymentID))
		return metrics.NotificationOutcomeDuplicate
	}

	n.publishEvent(kafka.NewPaymentEvent(kafka.EventTypePaymentReceived, paymentID))

	payment, err := n.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		// Платёж остаётся помеченным seen: повторное уведомление его уже
		// не обработает. Осознанное ограничение текущей схемы.
		logger.WithError(err).Error("payment lookup failed, notification acknowledged")
		n.metrics.RecordNotification(metrics.NotificationOutcomeLookupFailed)
		n.publishEvent(kafka.NewPaymentEvent(kafka.EventTypePaymentLookupFailed, paymentID))
		return metrics.NotificationOutcomeLookupFailed
	}

	logger = logger.WithFields(log.Fields{
		"order_id": payment.ExternalReference,
		"status":   string(payment.Status),
	})

	if !payment.Status.Approved() {
		logger.Info("payment not approved, no notifications sent")
		n.metrics.RecordNotification(metrics.NotificationOutcomeSkipped)
		event := kafka.NewPaymentEvent(kafka.EventTypePaymentSkipped, paymentID)
		event.OrderID = payment.ExternalReference
		event.Status = string(payment.Status)
		n.publishEvent(event)
		return metrics.NotificationOutcomeSkipped
	}

	n.sendNotifications(ctx, logger, payment)

	n.metrics.RecordNotification(metrics.NotificationOutcomeNotified)
	event := kafka.NewPaymentEvent(kafka.EventTypePaymentNotified, paymentID)
	event.OrderID = payment.ExternalReference
	event.Amount = payment.TransactionAmount
	event.Status = string(payment.Status)
	n.publishEvent(event)

	return metrics.NotificationOutcomeNotified
}

// sendNotifications отправляет письма мерчанту и покупателю. Отправки
// независимы: сбой одной не отменяет другую, оба сбоя только логируются.
func (n *Notifier) sendNotifications(ctx context.Context, logger *log.Entry, payment domain.Payment) {
	if n.merchantEmail != "" {
		if err := n.sender.Send(ctx, merchantMessage(n.merchantEmail, payment)); err != nil {
			logger.WithError(err).Error("merchant notification failed")
			n.metrics.RecordEmailFailed(recipientMerchant)
		} else {
			logger.Info("merchant notification sent")
			n.metrics.RecordEmailSent(recipientMerchant)
		}
	}

	if payment.PayerEmail != "" {
		if err := n.sender.Send(ctx, buyerMessage(payment)); err != nil {
			logger.WithError(err).Error("buyer confirmation failed")
			n.metrics.RecordEmailFailed(recipientBuyer)
		} else {
			logger.Info("buyer confirmation sent")
			n.metrics.RecordEmailSent(recipientBuyer)
		}
	}
}

func (n *Notifier) publishEvent(event kafka.PaymentEvent) {
	if n.kafkaProducer == nil {
		return
	}
	if err := n.kafkaProducer.PublishPaymentEvent(event); err != nil {
		n.logger.WithError(err).WithField("event_type", string(event.EventType)).Warn("audit event publish failed")
	}
}
