package payment

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// StripeConfig configures StripeGateway.
type StripeConfig struct {
	SecretKey   string
	BaseURL     string // empty means the live Stripe API
	ReturnURL   string
	Description string
	Timeout     time.Duration
}

// StripeGateway creates and confirms a PaymentIntent in one call.
type StripeGateway struct {
	cfg StripeConfig
	api *client.API
}

// NewStripeGateway creates a StripeGateway. The timeout bounds the whole
// round trip; a request that outlives it is reported as declined. Network
// retries are off so a charge is never sent twice.
func NewStripeGateway(cfg StripeConfig) *StripeGateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Description == "" {
		cfg.Description = "Restaurant order"
	}

	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	}
	if cfg.BaseURL != "" {
		backendCfg.URL = stripe.String(cfg.BaseURL)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)

	api := &client.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})

	return &StripeGateway{cfg: cfg, api: api}
}

// Capture implements Gateway.
func (g *StripeGateway) Capture(ctx context.Context, amountMinor int64, currency, methodRef string) (*Confirmation, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amountMinor),
		Currency:      stripe.String(currency),
		PaymentMethod: stripe.String(methodRef),
		Description:   stripe.String(g.cfg.Description),
		Confirm:       stripe.Bool(true),
	}
	if g.cfg.ReturnURL != "" {
		params.ReturnURL = stripe.String(g.cfg.ReturnURL)
	}
	params.Context = ctx
	params.SetIdempotencyKey(uuid.NewString())

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, declineFor(err, amountMinor)
	}

	if !Accepted(string(pi.Status)) {
		slog.Info("payment capture rejected",
			"intent_status", pi.Status,
			"intent_id", pi.ID,
		)
		return nil, &DeclinedError{Reason: DefaultDeclineReason}
	}

	return &Confirmation{
		ID:          pi.ID,
		Status:      string(pi.Status),
		AmountMinor: pi.Amount,
		Currency:    string(pi.Currency),
	}, nil
}

// declineFor maps any Stripe client error to a DeclinedError. Card errors
// keep Stripe's message; everything else gets a fixed reason.
func declineFor(err error, amountMinor int64) *DeclinedError {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		slog.Info("payment capture rejected",
			"http_status", stripeErr.HTTPStatusCode,
			"code", stripeErr.Code,
			"type", stripeErr.Type,
		)
		if stripeErr.Msg != "" {
			return &DeclinedError{Reason: stripeErr.Msg}
		}
		return &DeclinedError{Reason: DefaultDeclineReason}
	}
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		slog.Warn("payment capture timed out", "amount_minor", amountMinor)
		return &DeclinedError{Reason: "payment gateway timeout"}
	}
	slog.Error("payment capture failed", "error", err)
	return &DeclinedError{Reason: DefaultDeclineReason}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
