package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/currymessina/api/internal/database"
	"github.com/currymessina/api/internal/enum"
	"github.com/currymessina/api/internal/metrics"
	"github.com/currymessina/api/internal/payment"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Input limits for customer fields.
const (
	maxNameLen  = 120
	maxPhoneLen = 30
	maxEmailLen = 200
	maxNotesLen = 1000
)

// Errors returned by the order service.
var (
	ErrInputTooLong     = errors.New("input too long")
	ErrCustomerRequired = errors.New("name and phone are required")
)

// PaymentDeclinedError means the capture was attempted and did not succeed.
// No order is recorded when this is returned.
type PaymentDeclinedError struct {
	Reason string
}

func (e *PaymentDeclinedError) Error() string {
	return "payment error: " + e.Reason
}

// PersistenceError means the order could not be written. PaymentRef is set
// when money was captured before the write failed.
type PersistenceError struct {
	PaymentRef string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist order: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to write an order.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// Customer identifies who placed an order.
type Customer struct {
	Name  string
	Phone string
	Email string
}

// CheckoutRequest is a raw checkout submission.
type CheckoutRequest struct {
	Customer        Customer
	Notes           string
	OrderType       string
	Cart            []CartItem
	PaymentMethodID string
}

// CheckoutResult is returned for a fully priced, paid and persisted order.
type CheckoutResult struct {
	OrderID    int64
	Total      decimal.Decimal
	PaymentRef string
}

// PersistRequest is the trusted input of Persist.
type PersistRequest struct {
	Customer   Customer
	Notes      string
	OrderType  string
	Items      []PricedItem
	Total      decimal.Decimal
	PaymentRef string
}

// OrderService handles checkout, the kitchen read model and status updates.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
	reader   OrderReader
	pricer   *Pricer
	gateway  payment.Gateway
	metrics  *metrics.Registry
}

// NewOrderService creates a new OrderService. m may be nil.
func NewOrderService(pool TxBeginner, newStore NewOrderStore, reader OrderReader, pricer *Pricer, gateway payment.Gateway, m *metrics.Registry) *OrderService {
	if gateway == nil {
		gateway = payment.Disabled{}
	}
	return &OrderService{
		pool:     pool,
		newStore: newStore,
		reader:   reader,
		pricer:   pricer,
		gateway:  gateway,
		metrics:  m,
	}
}

// ValidateCustomer checks the free-text fields before any pricing work.
func ValidateCustomer(c Customer, notes string) error {
	if utf8.RuneCountInString(c.Name) > maxNameLen ||
		utf8.RuneCountInString(c.Phone) > maxPhoneLen ||
		utf8.RuneCountInString(c.Email) > maxEmailLen ||
		utf8.RuneCountInString(notes) > maxNotesLen {
		return ErrInputTooLong
	}
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Phone) == "" {
		return ErrCustomerRequired
	}
	return nil
}

// Checkout prices the cart, captures payment when a method is supplied and
// persists the order. It either fully succeeds or records nothing.
func (s *OrderService) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	req.Customer.Name = strings.TrimSpace(req.Customer.Name)
	req.Customer.Phone = strings.TrimSpace(req.Customer.Phone)
	req.Customer.Email = strings.TrimSpace(req.Customer.Email)
	req.Notes = strings.TrimSpace(req.Notes)
	if req.OrderType == "" {
		req.OrderType = enum.OrderTypePickup
	}

	if err := ValidateCustomer(req.Customer, req.Notes); err != nil {
		s.metrics.Checkout(metrics.ResultRejected)
		return nil, err
	}

	priced, err := s.pricer.Price(ctx, req.Cart, req.OrderType)
	if err != nil {
		s.metrics.Checkout(metrics.ResultRejected)
		return nil, err
	}

	var paymentRef string
	if req.PaymentMethodID != "" {
		ref, err := s.capture(ctx, priced.Total, req.PaymentMethodID)
		if err != nil {
			s.metrics.Checkout(metrics.ResultPaymentDeclined)
			return nil, err
		}
		paymentRef = ref
	}

	orderID, err := s.Persist(ctx, PersistRequest{
		Customer:   req.Customer,
		Notes:      req.Notes,
		OrderType:  req.OrderType,
		Items:      priced.Items,
		Total:      priced.Total,
		PaymentRef: paymentRef,
	})
	if err != nil {
		s.metrics.Checkout(metrics.ResultPersistFailed)
		if paymentRef != "" {
			// Money moved without an order row: needs manual reconciliation.
			slog.Error("order not recorded after successful payment",
				"payment_ref", paymentRef,
				"amount", priced.Total.StringFixed(2),
				"customer_phone", req.Customer.Phone,
				"error", err,
			)
		} else {
			slog.Error("persist order", "error", err)
		}
		return nil, &PersistenceError{PaymentRef: paymentRef, Err: err}
	}

	s.metrics.Checkout(metrics.ResultCreated)
	s.metrics.ObserveOrderTotal(priced.Total.InexactFloat64())
	slog.Info("order created",
		"order_id", orderID,
		"order_type", req.OrderType,
		"total", priced.Total.StringFixed(2),
		"items", len(priced.Items),
		"paid_online", paymentRef != "",
	)

	return &CheckoutResult{
		OrderID:    orderID,
		Total:      priced.Total,
		PaymentRef: paymentRef,
	}, nil
}

// capture charges the priced total. Any failure, including a timeout or a
// status outside the accepted set, is reported as a decline so the caller
// never persists an unpaid order.
func (s *OrderService) capture(ctx context.Context, total decimal.Decimal, methodRef string) (string, error) {
	start := time.Now()
	conf, err := s.gateway.Capture(ctx, AmountMinorUnits(total), enum.CurrencyEUR, methodRef)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		s.metrics.Capture("declined", elapsed)
		var declined *payment.DeclinedError
		if errors.As(err, &declined) {
			return "", &PaymentDeclinedError{Reason: declined.Reason}
		}
		return "", &PaymentDeclinedError{Reason: payment.DefaultDeclineReason}
	}
	if conf == nil || !payment.Accepted(conf.Status) {
		status := ""
		if conf != nil {
			status = conf.Status
		}
		s.metrics.Capture("declined", elapsed)
		slog.Warn("payment capture not accepted", "status", status)
		return "", &PaymentDeclinedError{Reason: payment.DefaultDeclineReason}
	}
	s.metrics.Capture(conf.Status, elapsed)
	return conf.ID, nil
}

// Persist writes the order header and every line item in one transaction.
func (s *OrderService) Persist(ctx context.Context, req PersistRequest) (int64, error) {
	if len(req.Items) == 0 {
		return 0, ErrCartEmpty
	}

	// --- Begin transaction ---
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// --- Insert order ---
	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		CustomerName:  req.Customer.Name,
		CustomerPhone: req.Customer.Phone,
		CustomerEmail: optionalText(req.Customer.Email),
		Notes:         req.Notes,
		OrderType:     req.OrderType,
		TotalAmount:   decimalToNumeric(req.Total),
		PaymentRef:    optionalText(req.PaymentRef),
	})
	if err != nil {
		return 0, fmt.Errorf("create order: %w", err)
	}

	// --- Insert items ---
	for i, item := range req.Items {
		_, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:     order.ID,
			ItemName:    item.Name,
			Category:    item.Category,
			Price:       decimalToNumeric(item.UnitPrice),
			Quantity:    int32(item.Qty),
			Size:        optionalText(item.Size),
			Ingredients: optionalText(strings.Join(item.Ingredients, ", ")),
			Sauces:      optionalText(strings.Join(item.Sauces, ", ")),
		})
		if err != nil {
			return 0, fmt.Errorf("create order item %d: %w", i, err)
		}
	}

	// --- Commit ---
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}

	return order.ID, nil
}

// --- Helpers ---

func optionalText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
