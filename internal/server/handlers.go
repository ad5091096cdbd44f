package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/payment-relay/internal/domain"
	"github.com/vladislavdragonenkov/payment-relay/internal/gateway/mercadopago"
	"github.com/vladislavdragonenkov/payment-relay/internal/service/preference"
)

type itemPayload struct {
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type createPreferenceRequest struct {
	Items      []itemPayload `json:"items"`
	PayerEmail string        `json:"payerEmail"`
}

type createPreferenceResponse struct {
	PreferenceID string `json:"preferenceId"`
	InitPoint    string `json:"init_point"`
	OrderID      string `json:"orderId"`
}

// flexibleID принимает идентификатор платежа и строкой, и числом:
// формат зависит от версии API провайдера.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexibleID(n.String())
		return nil
	}
	// Идентификатор неожиданного типа не валит весь payload.
	return nil
}

// webhookPayload покрывает оба формата тела уведомления: идентификатор
// приходит либо вложенным в data, либо на верхнем уровне.
type webhookPayload struct {
	ID   flexibleID `json:"id"`
	Data struct {
		ID flexibleID `json:"id"`
	} `json:"data"`
}

func (s *Server) handleLiveness(c *gin.Context) {
	c.String(http.StatusOK, "Backend Tierra de Calma OK")
}

func (s *Server) handleCreatePreference(c *gin.Context) {
	var req createPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.WithError(err).Warn("malformed create_preference body rejected")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	items := make([]domain.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.LineItem{
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	result, err := s.builder.Create(c.Request.Context(), preference.CreateRequest{
		Items:      items,
		PayerEmail: req.PayerEmail,
	})
	if err != nil {
		if errors.Is(err, domain.ErrItemsRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var upstream *mercadopago.UpstreamError
		if errors.As(err, &upstream) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "preference creation failed",
				"details": upstream.Body,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{"error": "preference creation failed"})
		return
	}

	c.JSON(http.StatusOK, createPreferenceResponse{
		PreferenceID: result.PreferenceID,
		InitPoint:    result.InitPoint,
		OrderID:      result.OrderID,
	})
}

// handleWebhook отвечает провайдеру 200 при любом исходе: не-2xx ответ
// провайдер трактует как просьбу прислать уведомление повторно.
func (s *Server) handleWebhook(c *gin.Context) {
	paymentID := extractPaymentID(c)
	outcome := s.notifier.Handle(c.Request.Context(), paymentID)
	s.logger.WithFields(log.Fields{
		"payment_id": paymentID,
		"outcome":    outcome,
	}).Info("webhook notification processed")
	c.Status(http.StatusOK)
}

// extractPaymentID ищет идентификатор платежа в query-параметрах
// (`data.id`, `id`) и в теле уведомления (`{data:{id}}`, `{id}`).
// Пустая строка означает, что идентификатор не нашёлся нигде.
func extractPaymentID(c *gin.Context) string {
	if id := c.Query("data.id"); id != "" {
		return id
	}
	if id := c.Query("id"); id != "" {
		return id
	}

	var payload webhookPayload
	// Некорректное тело — не ошибка: идентификатора просто нет.
	if err := c.ShouldBindJSON(&payload); err != nil {
		return ""
	}
	if id := string(payload.Data.ID); id != "" {
		return id
	}
	return string(payload.ID)
}
