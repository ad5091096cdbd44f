package preference_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/payment-relay/internal/domain"
	"github.com/vladislavdragonenkov/payment-relay/internal/service/preference"
)

type mockGateway struct {
	createCalls int
	lastRequest domain.PreferenceRequest
	preference  domain.Preference
	createErr   error
}

func (m *mockGateway) CreatePreference(_ context.Context, req domain.PreferenceRequest) (domain.Preference, error) {
	m.createCalls++
	m.lastRequest = req
	return m.preference, m.createErr
}

func (m *mockGateway) GetPayment(context.Context, string) (domain.Payment, error) {
	return domain.Payment{}, errors.New("not implemented")
}

func TestBuilder_Create_EmptyItemsRejectedBeforeGatewayCall(t *testing.T) {
	gateway := &mockGateway{}
	builder := preference.NewBuilder(gateway, "https://tierradecalma.com", "", nil)

	_, err := builder.Create(context.Background(), preference.CreateRequest{})

	require.ErrorIs(t, err, domain.ErrItemsRequired)
	require.Zero(t, gateway.createCalls, "gateway must not be called for an empty cart")
}

func TestBuilder_Create_BuildsPreferenceRequest(t *testing.T) {
	gateway := &mockGateway{
		preference: domain.Preference{ID: "pref-1", InitPoint: "https://mp.example/init"},
	}
	builder := preference.NewBuilder(gateway, "https://tierradecalma.com", "https://backend.example", nil)

	result, err := builder.Create(context.Background(), preference.CreateRequest{
		Items:      []domain.LineItem{{Title: "Tea", Quantity: 2, UnitPrice: 1500}},
		PayerEmail: "a@b.com",
	})
	require.NoError(t, err)

	require.Equal(t, 1, gateway.createCalls)
	req := gateway.lastRequest

	require.Len(t, req.Items, 1)
	require.Equal(t, "Tea", req.Items[0].Title)
	require.Equal(t, 2, req.Items[0].Quantity)
	require.Equal(t, float64(1500), req.Items[0].UnitPrice)
	require.Equal(t, domain.CurrencyARS, req.Items[0].Currency)

	require.Equal(t, "https://tierradecalma.com/pago-exitoso.html", req.BackURLs.Success)
	require.Equal(t, "https://tierradecalma.com/pago-pendiente.html", req.BackURLs.Pending)
	require.Equal(t, "https://tierradecalma.com/pago-fallido.html", req.BackURLs.Failure)
	require.Equal(t, preference.AutoReturnApproved, req.AutoReturn)
	require.Equal(t, "https://backend.example/webhook", req.NotificationURL)
	require.Equal(t, "a@b.com", req.PayerEmail)

	require.Regexp(t, regexp.MustCompile(`^TDC-\d+$`), req.ExternalReference)
	require.Equal(t, req.ExternalReference, result.OrderID)
	require.Equal(t, "pref-1", result.PreferenceID)
	require.Equal(t, "https://mp.example/init", result.InitPoint)
}

func TestBuilder_Create_NoNotificationURLWithoutPublicBaseURL(t *testing.T) {
	gateway := &mockGateway{}
	builder := preference.NewBuilder(gateway, "https://tierradecalma.com", "", nil)

	_, err := builder.Create(context.Background(), preference.CreateRequest{
		Items: []domain.LineItem{{Title: "Tea", Quantity: 1, UnitPrice: 100}},
	})
	require.NoError(t, err)

	require.Empty(t, gateway.lastRequest.NotificationURL)
}

func TestBuilder_Create_NormalizesItemsBeforeSubmission(t *testing.T) {
	gateway := &mockGateway{}
	builder := preference.NewBuilder(gateway, "https://tierradecalma.com", "", nil)

	_, err := builder.Create(context.Background(), preference.CreateRequest{
		Items: []domain.LineItem{{Quantity: 0, UnitPrice: -10}},
	})
	require.NoError(t, err)

	item := gateway.lastRequest.Items[0]
	require.Equal(t, domain.DefaultItemTitle, item.Title)
	require.Equal(t, 1, item.Quantity)
	require.Zero(t, item.UnitPrice)
}

func TestBuilder_Create_UpstreamFailureSurfaces(t *testing.T) {
	upstream := errors.New("mercadopago responded 500")
	gateway := &mockGateway{createErr: upstream}
	builder := preference.NewBuilder(gateway, "https://tierradecalma.com", "", nil)

	_, err := builder.Create(context.Background(), preference.CreateRequest{
		Items: []domain.LineItem{{Title: "Tea", Quantity: 1, UnitPrice: 100}},
	})

	require.ErrorIs(t, err, upstream)
	require.Equal(t, 1, gateway.createCalls, "exactly one attempt, no retries")
}
