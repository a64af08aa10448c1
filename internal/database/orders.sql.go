package database

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var orderColumns = []string{
	"id", "customer_name", "customer_phone", "customer_email", "notes", "order_type",
	"total_amount", "payment_ref", "status", "created_at", "updated_at",
}

func scanOrder(row pgx.Row) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.CustomerName,
		&i.CustomerPhone,
		&i.CustomerEmail,
		&i.Notes,
		&i.OrderType,
		&i.TotalAmount,
		&i.PaymentRef,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (customer_name, customer_phone, customer_email, notes, order_type, total_amount, payment_ref)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, customer_name, customer_phone, customer_email, notes, order_type, total_amount, payment_ref, status, created_at, updated_at
`

type CreateOrderParams struct {
	CustomerName  string         `json:"customer_name"`
	CustomerPhone string         `json:"customer_phone"`
	CustomerEmail pgtype.Text    `json:"customer_email"`
	Notes         string         `json:"notes"`
	OrderType     string         `json:"order_type"`
	TotalAmount   pgtype.Numeric `json:"total_amount"`
	PaymentRef    pgtype.Text    `json:"payment_ref"`
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.CustomerName,
		arg.CustomerPhone,
		arg.CustomerEmail,
		arg.Notes,
		arg.OrderType,
		arg.TotalAmount,
		arg.PaymentRef,
	)
	return scanOrder(row)
}

const createOrderItem = `-- name: CreateOrderItem :one
INSERT INTO order_items (order_id, item_name, category, price, quantity, size, ingredients, sauces)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, order_id, item_name, category, price, quantity, size, ingredients, sauces
`

type CreateOrderItemParams struct {
	OrderID     int64          `json:"order_id"`
	ItemName    string         `json:"item_name"`
	Category    string         `json:"category"`
	Price       pgtype.Numeric `json:"price"`
	Quantity    int32          `json:"quantity"`
	Size        pgtype.Text    `json:"size"`
	Ingredients pgtype.Text    `json:"ingredients"`
	Sauces      pgtype.Text    `json:"sauces"`
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID,
		arg.ItemName,
		arg.Category,
		arg.Price,
		arg.Quantity,
		arg.Size,
		arg.Ingredients,
		arg.Sauces,
	)
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.ItemName,
		&i.Category,
		&i.Price,
		&i.Quantity,
		&i.Size,
		&i.Ingredients,
		&i.Sauces,
	)
	return i, err
}

// ListRecentOrdersParams filters the kitchen poll. ExcludeStatuses is
// optional; an empty slice returns every status.
type ListRecentOrdersParams struct {
	Limit           int32
	ExcludeStatuses []string
}

// ListRecentOrders returns the newest orders first. Ties on created_at are
// broken by id so consecutive polls render in a stable order.
func (q *Queries) ListRecentOrders(ctx context.Context, arg ListRecentOrdersParams) ([]Order, error) {
	builder := sq.Select(orderColumns...).
		From("orders").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(arg.Limit)).
		PlaceholderFormat(sq.Dollar)
	if len(arg.ExcludeStatuses) > 0 {
		builder = builder.Where(sq.NotEq{"status": arg.ExcludeStatuses})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOrderItemsByOrderIDs = `-- name: ListOrderItemsByOrderIDs :many
SELECT id, order_id, item_name, category, price, quantity, size, ingredients, sauces FROM order_items
WHERE order_id = ANY($1::bigint[])
ORDER BY order_id, id
`

func (q *Queries) ListOrderItemsByOrderIDs(ctx context.Context, orderIDs []int64) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrderIDs, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItem{}
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.ItemName,
			&i.Category,
			&i.Price,
			&i.Quantity,
			&i.Size,
			&i.Ingredients,
			&i.Sauces,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateOrderStatus = `-- name: UpdateOrderStatus :one
UPDATE orders SET status = $2, updated_at = now()
WHERE id = $1
RETURNING id, customer_name, customer_phone, customer_email, notes, order_type, total_amount, payment_ref, status, created_at, updated_at
`

type UpdateOrderStatusParams struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status)
	return scanOrder(row)
}
