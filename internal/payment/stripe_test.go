package payment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *StripeGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewStripeGateway(StripeConfig{
		SecretKey: "sk_test_123",
		BaseURL:   srv.URL,
		ReturnURL: "https://shop.example/success.html",
		Timeout:   timeout,
	})
}

func assertDeclined(t *testing.T, err error, wantReason string) {
	t.Helper()
	var declined *DeclinedError
	if !errors.As(err, &declined) {
		t.Fatalf("expected DeclinedError, got: %v", err)
	}
	if wantReason != "" && declined.Reason != wantReason {
		t.Errorf("reason: got %q, want %q", declined.Reason, wantReason)
	}
}

func TestCapture_Success(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payment_intents" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_123" {
			t.Errorf("authorization: got %q", got)
		}
		if r.Header.Get("Idempotency-Key") == "" {
			t.Error("missing Idempotency-Key header")
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("amount"); got != "2100" {
			t.Errorf("amount: got %q, want 2100", got)
		}
		if got := r.PostForm.Get("currency"); got != "eur" {
			t.Errorf("currency: got %q, want eur", got)
		}
		if got := r.PostForm.Get("payment_method"); got != "pm_card_visa" {
			t.Errorf("payment_method: got %q", got)
		}
		if got := r.PostForm.Get("confirm"); got != "true" {
			t.Errorf("confirm: got %q", got)
		}
		if got := r.PostForm.Get("return_url"); got != "https://shop.example/success.html" {
			t.Errorf("return_url: got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pi_123","object":"payment_intent","status":"succeeded","amount":2100,"currency":"eur"}`))
	}, time.Second)

	conf, err := gw.Capture(context.Background(), 2100, "eur", "pm_card_visa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conf.ID != "pi_123" || conf.AmountMinor != 2100 {
		t.Errorf("confirmation: got %+v", conf)
	}
}

func TestCapture_DeclineMessage(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"type":"card_error","message":"Your card has insufficient funds.","code":"card_declined"}}`))
	}, time.Second)

	_, err := gw.Capture(context.Background(), 2100, "eur", "pm_card_chargeDeclined")
	assertDeclined(t, err, "Your card has insufficient funds.")
}

func TestCapture_StatusNotAccepted(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pi_9","object":"payment_intent","status":"requires_action"}`))
	}, time.Second)

	_, err := gw.Capture(context.Background(), 500, "eur", "pm_3ds")
	assertDeclined(t, err, DefaultDeclineReason)
}

func TestCapture_MalformedResponse(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>bad gateway</html>`))
	}, time.Second)

	_, err := gw.Capture(context.Background(), 500, "eur", "pm_card_visa")
	assertDeclined(t, err, DefaultDeclineReason)
}

func TestCapture_Timeout(t *testing.T) {
	release := make(chan struct{})
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, 50*time.Millisecond)
	defer close(release)

	_, err := gw.Capture(context.Background(), 500, "eur", "pm_card_visa")
	assertDeclined(t, err, "payment gateway timeout")
}

func TestAccepted(t *testing.T) {
	for _, s := range []string{"succeeded", "requires_capture", "processing"} {
		if !Accepted(s) {
			t.Errorf("Accepted(%q): got false", s)
		}
	}
	for _, s := range []string{"", "requires_action", "canceled", "requires_payment_method"} {
		if Accepted(s) {
			t.Errorf("Accepted(%q): got true", s)
		}
	}
}

func TestDisabled_AlwaysDeclines(t *testing.T) {
	_, err := Disabled{}.Capture(context.Background(), 100, "eur", "pm_card_visa")
	assertDeclined(t, err, ErrDisabled.Error())
}
