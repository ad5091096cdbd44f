package domain_test

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/payment-relay/internal/domain"
)

func TestNormalizeItem_Defaults(t *testing.T) {
	tests := []struct {
		name string
		in   domain.LineItem
		want domain.LineItem
	}{
		{
			name: "empty item gets all defaults",
			in:   domain.LineItem{},
			want: domain.LineItem{Title: "Producto", Quantity: 1, UnitPrice: 0, Currency: "ARS"},
		},
		{
			name: "negative quantity coerced to one",
			in:   domain.LineItem{Title: "Té", Quantity: -2, UnitPrice: 100},
			want: domain.LineItem{Title: "Té", Quantity: 1, UnitPrice: 100, Currency: "ARS"},
		},
		{
			name: "negative price coerced to zero",
			in:   domain.LineItem{Title: "Té", Quantity: 3, UnitPrice: -5},
			want: domain.LineItem{Title: "Té", Quantity: 3, UnitPrice: 0, Currency: "ARS"},
		},
		{
			name: "currency always overwritten",
			in:   domain.LineItem{Title: "Té", Quantity: 1, UnitPrice: 100, Currency: "USD"},
			want: domain.LineItem{Title: "Té", Quantity: 1, UnitPrice: 100, Currency: "ARS"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.NormalizeItem(tt.in)
			if got != tt.want {
				t.Fatalf("NormalizeItem(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeItems_EmptyCart(t *testing.T) {
	if _, err := domain.NormalizeItems(nil); !errors.Is(err, domain.ErrItemsRequired) {
		t.Fatalf("expected ErrItemsRequired, got %v", err)
	}
	if _, err := domain.NormalizeItems([]domain.LineItem{}); !errors.Is(err, domain.ErrItemsRequired) {
		t.Fatalf("expected ErrItemsRequired for empty slice, got %v", err)
	}
}

func TestNewOrderID_Format(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	id := domain.NewOrderID(now)

	if matched := regexp.MustCompile(`^TDC-\d+$`).MatchString(id); !matched {
		t.Fatalf("order id %q does not match TDC-<digits>", id)
	}
}

func TestNewOrderID_DistinctAcrossTime(t *testing.T) {
	first := domain.NewOrderID(time.UnixMilli(1000))
	second := domain.NewOrderID(time.UnixMilli(1001))
	if first == second {
		t.Fatalf("expected distinct ids, got %q twice", first)
	}
}

func TestOrder_Total(t *testing.T) {
	order := domain.NewOrder([]domain.LineItem{
		{Title: "Té", Quantity: 2, UnitPrice: 1500, Currency: "ARS"},
		{Title: "Yerba", Quantity: 1, UnitPrice: 500, Currency: "ARS"},
	}, "a@b.com", time.Now().UTC())

	if total := order.Total(); total != 3500 {
		t.Fatalf("expected total 3500, got %v", total)
	}
	if order.PayerEmail != "a@b.com" {
		t.Fatalf("unexpected payer email: %s", order.PayerEmail)
	}
}

func TestPaymentStatus_Approved(t *testing.T) {
	if !domain.PaymentStatusApproved.Approved() {
		t.Fatal("approved status must report Approved")
	}
	for _, status := range []domain.PaymentStatus{
		domain.PaymentStatusPending,
		domain.PaymentStatusInProcess,
		domain.PaymentStatusRejected,
		domain.PaymentStatusCancelled,
	} {
		if status.Approved() {
			t.Fatalf("status %s must not report Approved", status)
		}
	}
}
