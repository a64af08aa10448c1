package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Admin struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

type Ingredient struct {
	ID       int64          `json:"id"`
	Name     string         `json:"name"`
	Price    pgtype.Numeric `json:"price"`
	IsActive bool           `json:"is_active"`
}

type MenuItem struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Category    string         `json:"category"`
	Description pgtype.Text    `json:"description"`
	ImageUrl    pgtype.Text    `json:"image_url"`
	BasePrice   pgtype.Numeric `json:"base_price"`
	IsActive    bool           `json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
}

type Order struct {
	ID            int64          `json:"id"`
	CustomerName  string         `json:"customer_name"`
	CustomerPhone string         `json:"customer_phone"`
	CustomerEmail pgtype.Text    `json:"customer_email"`
	Notes         string         `json:"notes"`
	OrderType     string         `json:"order_type"`
	TotalAmount   pgtype.Numeric `json:"total_amount"`
	PaymentRef    pgtype.Text    `json:"payment_ref"`
	Status        string         `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type OrderItem struct {
	ID          int64          `json:"id"`
	OrderID     int64          `json:"order_id"`
	ItemName    string         `json:"item_name"`
	Category    string         `json:"category"`
	Price       pgtype.Numeric `json:"price"`
	Quantity    int32          `json:"quantity"`
	Size        pgtype.Text    `json:"size"`
	Ingredients pgtype.Text    `json:"ingredients"`
	Sauces      pgtype.Text    `json:"sauces"`
}

type Sauce struct {
	ID       int64          `json:"id"`
	Name     string         `json:"name"`
	Price    pgtype.Numeric `json:"price"`
	IsActive bool           `json:"is_active"`
}

type Size struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Price     pgtype.Numeric `json:"price"`
	IsActive  bool           `json:"is_active"`
	SortOrder int32          `json:"sort_order"`
}
