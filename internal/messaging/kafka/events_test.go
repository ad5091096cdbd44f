package kafka

import (
	"testing"
	"time"
)

func TestNewPaymentEvent(t *testing.T) {
	before := time.Now().UTC()
	event := NewPaymentEvent(EventTypePaymentReceived, "123")
	after := time.Now().UTC()

	if event.EventID == "" {
		t.Error("event id must be generated")
	}
	if event.EventType != EventTypePaymentReceived {
		t.Errorf("event type = %q", event.EventType)
	}
	if event.PaymentID != "123" {
		t.Errorf("payment id = %q", event.PaymentID)
	}
	if event.Timestamp.Before(before) || event.Timestamp.After(after) {
		t.Errorf("timestamp %v outside [%v, %v]", event.Timestamp, before, after)
	}
}

func TestNewPaymentEvent_UniqueIDs(t *testing.T) {
	a := NewPaymentEvent(EventTypePaymentNotified, "123")
	b := NewPaymentEvent(EventTypePaymentNotified, "123")

	if a.EventID == b.EventID {
		t.Fatal("event ids must be unique per event")
	}
}
