package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/currymessina/api/internal/kitchen"
	mw "github.com/currymessina/api/internal/middleware"
	"github.com/currymessina/api/internal/service"
	"github.com/go-chi/chi/v5"
)

// maxCheckoutBody bounds the checkout payload before it is decoded.
const maxCheckoutBody = 1 << 20

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	Checkout(ctx context.Context, req service.CheckoutRequest) (*service.CheckoutResult, error)
	ListRecent(ctx context.Context, opts service.ListOptions) ([]service.OrderView, error)
	UpdateStatus(ctx context.Context, orderID int64, status string) error
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc OrderServicer
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// RegisterPublicRoutes registers checkout. Mounted at /orders.
func (h *OrderHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/", h.Create)
}

// RegisterAdminRoutes registers the kitchen endpoints. Mounted at /orders
// behind authentication.
func (h *OrderHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/board", h.Board)
	r.Patch("/{id}/status", h.UpdateStatus)
}

// --- Request / Response types ---

type checkoutRequest struct {
	Name            string            `json:"name"`
	Phone           string            `json:"phone"`
	Email           string            `json:"email"`
	Notes           string            `json:"notes"`
	OrderType       string            `json:"order_type"`
	PaymentMethodID string            `json:"payment_method_id"`
	Cart            []cartItemRequest `json:"cart"`
}

// cartItemRequest mirrors the client cart line. Price is accepted so old
// clients keep working, but it is never read.
type cartItemRequest struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Qty         int             `json:"qty"`
	Price       json.RawMessage `json:"price,omitempty"`
	Size        string          `json:"size"`
	Ingredients []string        `json:"ingredients"`
	Sauces      []string        `json:"sauces"`
}

type checkoutResponse struct {
	OrderID int64  `json:"order_id"`
	Total   string `json:"total"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type updateStatusResponse struct {
	ID         int64  `json:"id"`
	Status     string `json:"status"`
	NextStatus string `json:"next_status,omitempty"`
}

// --- Handlers ---

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCheckoutBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON input")
		return
	}

	cart := make([]service.CartItem, len(req.Cart))
	for i, item := range req.Cart {
		cart[i] = service.CartItem{
			Name:        item.Name,
			Category:    item.Category,
			Qty:         item.Qty,
			Size:        item.Size,
			Ingredients: item.Ingredients,
			Sauces:      item.Sauces,
		}
	}

	result, err := h.svc.Checkout(r.Context(), service.CheckoutRequest{
		Customer: service.Customer{
			Name:  req.Name,
			Phone: req.Phone,
			Email: req.Email,
		},
		Notes:           req.Notes,
		OrderType:       req.OrderType,
		Cart:            cart,
		PaymentMethodID: req.PaymentMethodID,
	})
	if err != nil {
		writeCheckoutError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "order placed", checkoutResponse{
		OrderID: result.OrderID,
		Total:   result.Total.StringFixed(2),
	})
}

// List handles GET /orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, ok := parseListOptions(w, r)
	if !ok {
		return
	}
	switch r.URL.Query().Get("cancelled") {
	case "", "hide":
	case "include":
		opts.IncludeCancelled = true
	default:
		writeError(w, http.StatusBadRequest, "invalid cancelled filter: use hide or include")
		return
	}

	orders, err := h.svc.ListRecent(r.Context(), opts)
	if err != nil {
		slog.Error("list orders", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	writeSuccess(w, http.StatusOK, "ok", orders)
}

// Board handles GET /orders/board.
func (h *OrderHandler) Board(w http.ResponseWriter, r *http.Request) {
	policy, err := kitchen.ParseCancelledPolicy(r.URL.Query().Get("cancelled"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts, ok := parseListOptions(w, r)
	if !ok {
		return
	}
	opts.IncludeCancelled = policy == kitchen.CancelledLane

	orders, err := h.svc.ListRecent(r.Context(), opts)
	if err != nil {
		slog.Error("load kitchen board", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	writeSuccess(w, http.StatusOK, "ok", kitchen.Project(orders, policy))
}

// UpdateStatus handles PATCH /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || orderID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.UpdateStatus(r.Context(), orderID, req.Status); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOrderNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			slog.Error("update order status", "order_id", orderID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update status")
		}
		return
	}

	admin, _ := mw.AdminFromContext(r.Context())
	slog.Info("order status updated", "order_id", orderID, "status", req.Status, "admin", admin.Username)

	writeSuccess(w, http.StatusOK, "status updated", updateStatusResponse{
		ID:         orderID,
		Status:     req.Status,
		NextStatus: service.NextStatus(req.Status),
	})
}

// --- Helpers ---

func parseListOptions(w http.ResponseWriter, r *http.Request) (service.ListOptions, bool) {
	var opts service.ListOptions
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return opts, false
		}
		opts.Limit = limit
	}
	return opts, true
}

// writeCheckoutError maps checkout failures to status codes. Validation
// messages are returned verbatim; storage details never are.
func writeCheckoutError(w http.ResponseWriter, err error) {
	var (
		declined *service.PaymentDeclinedError
		persist  *service.PersistenceError
	)
	switch {
	case isValidationError(err):
		writeError(w, http.StatusBadRequest, validationMessage(err))
	case errors.As(err, &declined):
		writeError(w, http.StatusPaymentRequired, declined.Error())
	case errors.As(err, &persist):
		msg := "failed to record order"
		if persist.PaymentRef != "" {
			msg = "payment received but the order could not be recorded; please contact the restaurant with reference " + persist.PaymentRef
		}
		writeError(w, http.StatusInternalServerError, msg)
	default:
		slog.Error("checkout", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// isValidationError checks if the error is a known validation error
// from the service layer that should result in 400 Bad Request.
func isValidationError(err error) bool {
	var (
		invalid *service.InvalidItemError
		unknown *service.UnknownOptionError
	)
	return errors.Is(err, service.ErrCartEmpty) ||
		errors.Is(err, service.ErrCartTooLarge) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrQuantityTooLarge) ||
		errors.Is(err, service.ErrTotalTooLarge) ||
		errors.Is(err, service.ErrInvalidOrderType) ||
		errors.Is(err, service.ErrDeliveryMinimum) ||
		errors.Is(err, service.ErrInputTooLong) ||
		errors.Is(err, service.ErrCustomerRequired) ||
		errors.As(err, &invalid) ||
		errors.As(err, &unknown)
}

// validationMessage drops the item[i] position prefix for errors whose own
// text already names the offending item.
func validationMessage(err error) string {
	var (
		invalid *service.InvalidItemError
		unknown *service.UnknownOptionError
	)
	switch {
	case errors.As(err, &invalid):
		return invalid.Error()
	case errors.As(err, &unknown):
		return unknown.Error()
	}
	return err.Error()
}
