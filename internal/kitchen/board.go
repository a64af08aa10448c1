// Package kitchen projects recent orders into the lanes of the kitchen
// display and keeps a terminal dashboard in sync by polling the API.
package kitchen

import (
	"fmt"

	"github.com/currymessina/api/internal/enum"
	"github.com/currymessina/api/internal/service"
)

// CancelledPolicy decides where cancelled orders appear on the board.
type CancelledPolicy int

const (
	// CancelledHidden drops cancelled orders from every lane.
	CancelledHidden CancelledPolicy = iota
	// CancelledLane shows cancelled orders in a fifth lane after completed.
	CancelledLane
)

// ParseCancelledPolicy maps the ?cancelled= query value to a policy.
func ParseCancelledPolicy(s string) (CancelledPolicy, error) {
	switch s {
	case "", "hide":
		return CancelledHidden, nil
	case "lane":
		return CancelledLane, nil
	default:
		return CancelledHidden, fmt.Errorf("invalid cancelled policy %q", s)
	}
}

func (p CancelledPolicy) String() string {
	if p == CancelledLane {
		return "lane"
	}
	return "hide"
}

// laneOrder is the left-to-right order of the active lanes.
var laneOrder = []string{
	enum.OrderStatusPending,
	enum.OrderStatusPreparing,
	enum.OrderStatusReady,
	enum.OrderStatusCompleted,
}

// Card is one order on the board. NextStatus is empty for terminal orders.
type Card struct {
	service.OrderView
	NextStatus string `json:"next_status,omitempty"`
}

type Lane struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
	Orders []Card `json:"orders"`
}

// Board is the kitchen view of the recent orders. Its shape does not depend
// on how it was delivered, so a push channel could carry the same value.
type Board struct {
	Lanes []Lane `json:"lanes"`
	Total int    `json:"total"`
}

// Lane returns the lane for status, or nil when the board has none.
func (b *Board) Lane(status string) *Lane {
	for i := range b.Lanes {
		if b.Lanes[i].Status == status {
			return &b.Lanes[i]
		}
	}
	return nil
}

// Project buckets orders by status, keeping the input order inside each
// lane. Orders with a status outside the board's lanes are dropped.
func Project(orders []service.OrderView, policy CancelledPolicy) Board {
	statuses := laneOrder
	if policy == CancelledLane {
		statuses = append(append([]string{}, laneOrder...), enum.OrderStatusCancelled)
	}

	index := make(map[string]int, len(statuses))
	lanes := make([]Lane, len(statuses))
	for i, s := range statuses {
		index[s] = i
		lanes[i] = Lane{Status: s, Orders: []Card{}}
	}

	total := 0
	for _, o := range orders {
		i, ok := index[o.Status]
		if !ok {
			continue
		}
		lanes[i].Orders = append(lanes[i].Orders, Card{
			OrderView:  o,
			NextStatus: service.NextStatus(o.Status),
		})
		lanes[i].Count++
		total++
	}

	return Board{Lanes: lanes, Total: total}
}
