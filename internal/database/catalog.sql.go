package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getIngredientPrice = `-- name: GetIngredientPrice :one
SELECT price FROM ingredients
WHERE name = $1 AND is_active = true
`

func (q *Queries) GetIngredientPrice(ctx context.Context, name string) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, getIngredientPrice, name)
	var price pgtype.Numeric
	err := row.Scan(&price)
	return price, err
}

const getMenuItemPrice = `-- name: GetMenuItemPrice :one
SELECT base_price FROM menu_items
WHERE name = $1 AND is_active = true
`

func (q *Queries) GetMenuItemPrice(ctx context.Context, name string) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, getMenuItemPrice, name)
	var basePrice pgtype.Numeric
	err := row.Scan(&basePrice)
	return basePrice, err
}

const getSaucePrice = `-- name: GetSaucePrice :one
SELECT price FROM sauces
WHERE name = $1 AND is_active = true
`

func (q *Queries) GetSaucePrice(ctx context.Context, name string) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, getSaucePrice, name)
	var price pgtype.Numeric
	err := row.Scan(&price)
	return price, err
}

const getSizePrice = `-- name: GetSizePrice :one
SELECT price FROM sizes
WHERE name = $1 AND is_active = true
`

func (q *Queries) GetSizePrice(ctx context.Context, name string) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, getSizePrice, name)
	var price pgtype.Numeric
	err := row.Scan(&price)
	return price, err
}

const listActiveIngredients = `-- name: ListActiveIngredients :many
SELECT id, name, price, is_active FROM ingredients
WHERE is_active = true
ORDER BY name
`

func (q *Queries) ListActiveIngredients(ctx context.Context) ([]Ingredient, error) {
	rows, err := q.db.Query(ctx, listActiveIngredients)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Ingredient{}
	for rows.Next() {
		var i Ingredient
		if err := rows.Scan(&i.ID, &i.Name, &i.Price, &i.IsActive); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listActiveMenuItems = `-- name: ListActiveMenuItems :many
SELECT id, name, category, description, image_url, base_price, is_active, created_at FROM menu_items
WHERE is_active = true
ORDER BY category, name
`

func (q *Queries) ListActiveMenuItems(ctx context.Context) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listActiveMenuItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []MenuItem{}
	for rows.Next() {
		var i MenuItem
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Category,
			&i.Description,
			&i.ImageUrl,
			&i.BasePrice,
			&i.IsActive,
			&i.CreatedAt,
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

const listActiveSauces = `-- name: ListActiveSauces :many
SELECT id, name, price, is_active FROM sauces
WHERE is_active = true
ORDER BY name
`

func (q *Queries) ListActiveSauces(ctx context.Context) ([]Sauce, error) {
	rows, err := q.db.Query(ctx, listActiveSauces)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Sauce{}
	for rows.Next() {
		var i Sauce
		if err := rows.Scan(&i.ID, &i.Name, &i.Price, &i.IsActive); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listActiveSizes = `-- name: ListActiveSizes :many
SELECT id, name, price, is_active, sort_order FROM sizes
WHERE is_active = true
ORDER BY sort_order, price
`

func (q *Queries) ListActiveSizes(ctx context.Context) ([]Size, error) {
	rows, err := q.db.Query(ctx, listActiveSizes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Size{}
	for rows.Next() {
		var i Size
		if err := rows.Scan(&i.ID, &i.Name, &i.Price, &i.IsActive, &i.SortOrder); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
