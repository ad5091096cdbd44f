package preference

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/payment-relay/internal/domain"
	"github.com/vladislavdragonenkov/payment-relay/internal/metrics"
)

// AutoReturnApproved — провайдер сам возвращает покупателя на success-страницу.
const AutoReturnApproved = "approved"

// CreateRequest — корзина, пришедшая с фронта.
type CreateRequest struct {
	Items      []domain.LineItem
	PayerEmail string
}

// CreateResult возвращается фронту после создания preference.
type CreateResult struct {
	PreferenceID string
	InitPoint    string
	OrderID      string
}

// Builder превращает корзину в checkout preference у платёжного провайдера.
type Builder struct {
	gateway domain.PaymentGateway
	// frontOrigin — origin фронта, на котором живут страницы возврата.
	frontOrigin string
	// publicBaseURL — публичный адрес этого бэкенда; пустой, если вебхуки не доставляются.
	publicBaseURL string
	logger        *log.Entry
	metrics       *metrics.RelayMetrics
}

// NewBuilder создаёт рабочий экземпляр Builder.
func NewBuilder(gateway domain.PaymentGateway, frontOrigin, publicBaseURL string, logger *log.Entry) *Builder {
	if logger == nil {
		logger = log.WithField("component", "preference-builder")
	}
	return &Builder{
		gateway:       gateway,
		frontOrigin:   frontOrigin,
		publicBaseURL: publicBaseURL,
		logger:        logger,
		metrics:       metrics.NewRelayMetrics(),
	}
}

// Create нормализует корзину, генерирует идентификатор заказа и создаёт
// preference у провайдера. Пустая корзина отклоняется до обращения к API;
// ошибка провайдера поднимается вызывающему без ретраев.
func (b *Builder) Create(ctx context.Context, req CreateRequest) (CreateResult, error) {
	items, err := domain.NormalizeItems(req.Items)
	if err != nil {
		return CreateResult{}, err
	}

	order := domain.NewOrder(items, req.PayerEmail, time.Now().UTC())

	prefReq := domain.PreferenceRequest{
		Items:             order.Items,
		ExternalReference: order.ID,
		BackURLs: domain.BackURLs{
			Success: b.frontOrigin + "/pago-exitoso.html",
			Pending: b.frontOrigin + "/pago-pendiente.html",
			Failure: b.frontOrigin + "/pago-fallido.html",
		},
		AutoReturn: AutoReturnApproved,
		PayerEmail: order.PayerEmail,
	}
	if b.publicBaseURL != "" {
		prefReq.NotificationURL = b.publicBaseURL + "/webhook"
	}

	pref, err := b.gateway.CreatePreference(ctx, prefReq)
	if err != nil {
		b.metrics.RecordPreferenceFailed()
		b.logger.WithError(err).WithField("order_id", order.ID).Error("preference creation failed")
		return CreateResult{}, err
	}

	b.metrics.RecordPreferenceCreated()
	b.logger.WithFields(log.Fields{
		"order_id":      order.ID,
		"preference_id": pref.ID,
		"items":         len(order.Items),
		"total":         order.Total(),
	}).Info("preference created")

	return CreateResult{
		PreferenceID: pref.ID,
		InitPoint:    pref.InitPoint,
		OrderID:      order.ID,
	}, nil
}
