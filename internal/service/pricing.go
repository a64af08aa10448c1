package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/currymessina/api/internal/enum"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Cart bounds checked before any catalog work happens.
const (
	MaxCartItems = 50
	MaxItemQty   = 99
)

// Fixed platform fees.
var (
	ServiceFee      = decimal.RequireFromString("2.00")
	DeliveryFee     = decimal.RequireFromString("3.00")
	DeliveryMinimum = decimal.RequireFromString("15.00")

	// MaxOrderTotal fits numeric(10,2) and the gateway's per-charge limit.
	MaxOrderTotal = decimal.RequireFromString("999999.99")
)

// Errors returned by the pricer.
var (
	ErrCartEmpty        = errors.New("cart is empty")
	ErrCartTooLarge     = fmt.Errorf("cart exceeds maximum allowed item count (%d)", MaxCartItems)
	ErrInvalidQuantity  = errors.New("quantity must be > 0")
	ErrQuantityTooLarge = fmt.Errorf("quantity exceeds maximum of %d per item", MaxItemQty)
	ErrTotalTooLarge    = errors.New("order total exceeds the maximum of €" + MaxOrderTotal.StringFixed(2))
	ErrInvalidOrderType = errors.New("invalid order_type")
	ErrDeliveryMinimum  = errors.New("delivery requires a minimum cart subtotal of €" + DeliveryMinimum.StringFixed(2))
)

// InvalidItemError means a cart line did not resolve against the catalog.
type InvalidItemError struct {
	Name string
}

func (e *InvalidItemError) Error() string {
	return "invalid item in cart: " + e.Name
}

// UnknownOptionError is only returned in strict option mode.
type UnknownOptionError struct {
	Item   string
	Option string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("unknown option %q on %s", e.Option, e.Item)
}

// Catalog is the read-only price lookup used by the pricer. Each method
// returns pgx.ErrNoRows when the name has no active catalog entry.
// Satisfied by *database.Queries.
type Catalog interface {
	GetMenuItemPrice(ctx context.Context, name string) (pgtype.Numeric, error)
	GetSizePrice(ctx context.Context, name string) (pgtype.Numeric, error)
	GetSaucePrice(ctx context.Context, name string) (pgtype.Numeric, error)
	GetIngredientPrice(ctx context.Context, name string) (pgtype.Numeric, error)
}

// CartItem is the untrusted shape submitted by a client. It deliberately
// has no price: whatever the client computed never reaches the pricer.
type CartItem struct {
	Name        string
	Category    string
	Qty         int
	Size        string
	Ingredients []string
	Sauces      []string
}

// PricedItem is a cart line with a server-derived unit price.
type PricedItem struct {
	CartItem
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// PricedCart is the trusted result of pricing a cart.
type PricedCart struct {
	Items       []PricedItem
	Subtotal    decimal.Decimal
	ServiceFee  decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
}

// Pricer recomputes cart totals from catalog state.
type Pricer struct {
	catalog       Catalog
	strictOptions bool
}

// NewPricer creates a Pricer. With strictOptions set, an ingredient or sauce
// name that does not resolve fails the cart instead of being skipped.
func NewPricer(catalog Catalog, strictOptions bool) *Pricer {
	return &Pricer{catalog: catalog, strictOptions: strictOptions}
}

// Price validates the cart shape and derives every amount from the catalog.
func (p *Pricer) Price(ctx context.Context, cart []CartItem, orderType string) (*PricedCart, error) {
	if len(cart) == 0 {
		return nil, ErrCartEmpty
	}
	if len(cart) > MaxCartItems {
		return nil, ErrCartTooLarge
	}
	if orderType != enum.OrderTypePickup && orderType != enum.OrderTypeDelivery {
		return nil, ErrInvalidOrderType
	}
	for i, item := range cart {
		if item.Qty <= 0 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
		if item.Qty > MaxItemQty {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrQuantityTooLarge)
		}
	}

	subtotal := decimal.Zero
	items := make([]PricedItem, 0, len(cart))

	for i, item := range cart {
		unit, err := p.basePrice(ctx, item)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, err)
		}

		if item.Category == enum.CategoryKebab {
			extra, err := p.optionsTotal(ctx, item.Name, item.Ingredients, p.catalog.GetIngredientPrice)
			if err != nil {
				return nil, fmt.Errorf("item[%d]: %w", i, err)
			}
			unit = unit.Add(extra)
		}

		// Sauces apply to any line that carries them, not only kebabs.
		extra, err := p.optionsTotal(ctx, item.Name, item.Sauces, p.catalog.GetSaucePrice)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, err)
		}
		unit = unit.Add(extra)

		line := unit.Mul(decimal.NewFromInt(int64(item.Qty)))
		subtotal = subtotal.Add(line)
		items = append(items, PricedItem{
			CartItem:  item,
			UnitPrice: unit,
			LineTotal: line,
		})
	}

	result := &PricedCart{
		Items:       items,
		Subtotal:    subtotal,
		ServiceFee:  ServiceFee,
		DeliveryFee: decimal.Zero,
	}

	if orderType == enum.OrderTypeDelivery {
		if subtotal.LessThan(DeliveryMinimum) {
			return nil, ErrDeliveryMinimum
		}
		result.DeliveryFee = DeliveryFee
	}

	result.Total = subtotal.Add(result.ServiceFee).Add(result.DeliveryFee)
	if result.Total.GreaterThan(MaxOrderTotal) {
		return nil, ErrTotalTooLarge
	}
	return result, nil
}

// basePrice resolves the unit base price by category.
func (p *Pricer) basePrice(ctx context.Context, item CartItem) (decimal.Decimal, error) {
	var (
		price pgtype.Numeric
		err   error
	)
	switch item.Category {
	case enum.CategoryKebab:
		price, err = p.catalog.GetSizePrice(ctx, item.Size)
	case enum.CategorySauce:
		price, err = p.catalog.GetSaucePrice(ctx, item.Name)
	default:
		price, err = p.catalog.GetMenuItemPrice(ctx, item.Name)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, &InvalidItemError{Name: item.Name}
		}
		return decimal.Zero, fmt.Errorf("look up %q: %w", item.Name, err)
	}
	return numericToDecimal(price), nil
}

// optionsTotal sums the prices of the named options. Names without an
// active catalog entry are skipped unless the pricer is strict.
func (p *Pricer) optionsTotal(ctx context.Context, itemName string, names []string,
	lookup func(context.Context, string) (pgtype.Numeric, error)) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, name := range names {
		price, err := lookup(ctx, name)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				if p.strictOptions {
					return decimal.Zero, &UnknownOptionError{Item: itemName, Option: name}
				}
				continue
			}
			return decimal.Zero, fmt.Errorf("look up option %q: %w", name, err)
		}
		total = total.Add(numericToDecimal(price))
	}
	return total, nil
}

// AmountMinorUnits converts a euro amount to cents, rounding half up.
func AmountMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
