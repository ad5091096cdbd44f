package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/payment-relay/internal/domain"
)

const (
	defaultBaseURL = "https://api.mercadopago.com"
	defaultTimeout = 10 * time.Second

	// maxErrorBody ограничивает размер тела ошибки, которое попадает в лог и ответ.
	maxErrorBody = 4 << 10
)

// UpstreamError — non-2xx ответ платёжного API.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("mercadopago responded %d: %s", e.StatusCode, e.Body)
}

// Client — HTTP-клиент REST API MercadoPago с bearer-авторизацией.
// Каждый вызов выполняется ровно один раз, без ретраев.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	logger      *log.Entry
}

// Option настраивает Client.
type Option func(*Client)

// WithBaseURL переопределяет адрес API (для тестов).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient подменяет транспорт.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient создаёт клиент платёжного API.
func NewClient(accessToken string, options ...Option) *Client {
	c := &Client{
		baseURL:     defaultBaseURL,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		logger:      log.WithField("component", "mercadopago-client"),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// CreatePreference создаёт checkout preference и возвращает hosted checkout ссылку.
func (c *Client) CreatePreference(ctx context.Context, req domain.PreferenceRequest) (domain.Preference, error) {
	wireReq := preferenceRequest{
		Items:             make([]preferenceItem, 0, len(req.Items)),
		ExternalReference: req.ExternalReference,
		BackURLs: backURLs{
			Success: req.BackURLs.Success,
			Pending: req.BackURLs.Pending,
			Failure: req.BackURLs.Failure,
		},
		AutoReturn:      req.AutoReturn,
		NotificationURL: req.NotificationURL,
	}
	for _, item := range req.Items {
		wireReq.Items = append(wireReq.Items, preferenceItem{
			Title:      item.Title,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			CurrencyID: item.Currency,
		})
	}
	if req.PayerEmail != "" {
		wireReq.Payer = &payer{Email: req.PayerEmail}
	}

	var wireResp preferenceResponse
	if err := c.do(ctx, http.MethodPost, "/checkout/preferences", wireReq, &wireResp); err != nil {
		return domain.Preference{}, err
	}

	return domain.Preference{
		ID:        wireResp.ID,
		InitPoint: wireResp.InitPoint,
	}, nil
}

// GetPayment возвращает авторитетную запись о платеже.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (domain.Payment, error) {
	if paymentID == "" {
		return domain.Payment{}, domain.ErrPaymentIDRequired
	}

	var wireResp paymentResponse
	path := "/v1/payments/" + url.PathEscape(paymentID)
	if err := c.do(ctx, http.MethodGet, path, nil, &wireResp); err != nil {
		return domain.Payment{}, err
	}

	return domain.Payment{
		ID:                string(wireResp.ID),
		Status:            domain.PaymentStatus(wireResp.Status),
		TransactionAmount: wireResp.TransactionAmount,
		PayerEmail:        wireResp.Payer.Email,
		ExternalReference: wireResp.ExternalReference,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, reqBody, respBody any) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("call mercadopago: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.WithFields(log.Fields{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		}).Warn("mercadopago call failed")
		return &UpstreamError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	if respBody == nil {
		return nil
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(respBody); err != nil {
		return fmt.Errorf("decode mercadopago response: %w", err)
	}

	return nil
}

var _ domain.PaymentGateway = (*Client)(nil)
