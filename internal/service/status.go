package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/currymessina/api/internal/database"
	"github.com/currymessina/api/internal/enum"
	"github.com/jackc/pgx/v5"
)

var (
	ErrInvalidStatus = errors.New("invalid status")
	ErrOrderNotFound = errors.New("order not found")
)

// Statuses lists every order status in lifecycle order.
var Statuses = []string{
	enum.OrderStatusPending,
	enum.OrderStatusPreparing,
	enum.OrderStatusReady,
	enum.OrderStatusCompleted,
	enum.OrderStatusCancelled,
}

// forwardTransitions is the single step the kitchen dashboard offers for
// each non-terminal status.
var forwardTransitions = map[string]string{
	enum.OrderStatusPending:   enum.OrderStatusPreparing,
	enum.OrderStatusPreparing: enum.OrderStatusReady,
	enum.OrderStatusReady:     enum.OrderStatusCompleted,
}

// IsValidStatus reports whether s is a known order status.
func IsValidStatus(s string) bool {
	for _, status := range Statuses {
		if status == s {
			return true
		}
	}
	return false
}

// NextStatus returns the forward transition for s, or "" when s is terminal.
func NextStatus(s string) string {
	return forwardTransitions[s]
}

// IsTerminal reports whether no further transition is offered from s.
func IsTerminal(s string) bool {
	return s == enum.OrderStatusCompleted || s == enum.OrderStatusCancelled
}

// UpdateStatus overwrites the status of an order. Only membership in the
// status set is enforced here; re-applying the current status succeeds.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, status string) error {
	if !IsValidStatus(status) {
		return ErrInvalidStatus
	}

	_, err := s.reader.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:     orderID,
		Status: status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("update order status: %w", err)
	}

	s.metrics.StatusUpdate(status)
	return nil
}
