package service

import (
	"context"
	"fmt"
	"time"

	"github.com/currymessina/api/internal/database"
	"github.com/currymessina/api/internal/enum"
)

// Bounds for the recent-orders read.
const (
	DefaultRecentLimit = 50
	MaxRecentLimit     = 200
)

// OrderReader defines the DB methods behind the kitchen read model and
// status updates. Satisfied by *database.Queries.
type OrderReader interface {
	ListRecentOrders(ctx context.Context, arg database.ListRecentOrdersParams) ([]database.Order, error)
	ListOrderItemsByOrderIDs(ctx context.Context, orderIDs []int64) ([]database.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
}

// ListOptions controls ListRecent.
type ListOptions struct {
	Limit            int
	IncludeCancelled bool
}

// OrderView is an order with its line items, as served to the dashboard.
type OrderView struct {
	ID            int64           `json:"id"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	CustomerEmail *string         `json:"customer_email"`
	Notes         string          `json:"notes"`
	OrderType     string          `json:"order_type"`
	TotalAmount   string          `json:"total_amount"`
	Status        string          `json:"status"`
	PaidOnline    bool            `json:"paid_online"`
	CreatedAt     time.Time       `json:"created_at"`
	CreatedAtMs   int64           `json:"created_ts_ms"`
	Items         []OrderItemView `json:"items"`
}

// OrderItemView is one line of an OrderView.
type OrderItemView struct {
	ItemName    string  `json:"item_name"`
	Category    string  `json:"category"`
	Price       string  `json:"price"`
	Quantity    int32   `json:"quantity"`
	Size        *string `json:"size"`
	Ingredients *string `json:"ingredients"`
	Sauces      *string `json:"sauces"`
}

// ListRecent returns the newest orders with their items attached. Items are
// fetched in one batched query regardless of the number of orders.
func (s *OrderService) ListRecent(ctx context.Context, opts ListOptions) ([]OrderView, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	params := database.ListRecentOrdersParams{Limit: int32(limit)}
	if !opts.IncludeCancelled {
		params.ExcludeStatuses = []string{enum.OrderStatusCancelled}
	}

	orders, err := s.reader.ListRecentOrders(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list recent orders: %w", err)
	}
	if len(orders) == 0 {
		return []OrderView{}, nil
	}

	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	items, err := s.reader.ListOrderItemsByOrderIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}

	byOrder := make(map[int64][]OrderItemView, len(orders))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], toOrderItemView(item))
	}

	views := make([]OrderView, len(orders))
	for i, o := range orders {
		views[i] = toOrderView(o, byOrder[o.ID])
	}
	return views, nil
}

func toOrderView(o database.Order, items []OrderItemView) OrderView {
	if items == nil {
		items = []OrderItemView{}
	}
	v := OrderView{
		ID:            o.ID,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Notes:         o.Notes,
		OrderType:     o.OrderType,
		TotalAmount:   numericToDecimal(o.TotalAmount).StringFixed(2),
		Status:        o.Status,
		PaidOnline:    o.PaymentRef.Valid,
		CreatedAt:     o.CreatedAt,
		CreatedAtMs:   o.CreatedAt.UnixMilli(),
		Items:         items,
	}
	if o.CustomerEmail.Valid {
		v.CustomerEmail = &o.CustomerEmail.String
	}
	return v
}

func toOrderItemView(item database.OrderItem) OrderItemView {
	v := OrderItemView{
		ItemName: item.ItemName,
		Category: item.Category,
		Price:    numericToDecimal(item.Price).StringFixed(2),
		Quantity: item.Quantity,
	}
	if item.Size.Valid {
		v.Size = &item.Size.String
	}
	if item.Ingredients.Valid {
		v.Ingredients = &item.Ingredients.String
	}
	if item.Sauces.Valid {
		v.Sauces = &item.Sauces.String
	}
	return v
}
