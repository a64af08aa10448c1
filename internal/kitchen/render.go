package kitchen

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/currymessina/api/internal/service"
)

// TimeAgo formats the age of an order the way the dashboard cards show it.
func TimeAgo(createdMs int64, now time.Time) string {
	d := now.Sub(time.UnixMilli(createdMs))
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	}
}

// Render writes a plain-text snapshot of the board.
func Render(w io.Writer, board *Board, now time.Time) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Kitchen board  %s  (%d orders)\n", now.Format("15:04:05"), board.Total)

	for _, lane := range board.Lanes {
		fmt.Fprintf(&b, "\n== %s (%d) ==\n", strings.ToUpper(lane.Status), lane.Count)
		if len(lane.Orders) == 0 {
			b.WriteString("  -\n")
			continue
		}
		for _, card := range lane.Orders {
			renderCard(&b, card, now)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func renderCard(b *strings.Builder, card Card, now time.Time) {
	paid := "cash"
	if card.PaidOnline {
		paid = "paid"
	}
	fmt.Fprintf(b, "  #%d  %s  %s  %s  €%s  %s  [%s]\n",
		card.ID, card.CustomerName, card.CustomerPhone, card.OrderType,
		card.TotalAmount, TimeAgo(card.CreatedAtMs, now), paid)

	for _, item := range card.Items {
		fmt.Fprintf(b, "      %dx %s%s\n", item.Quantity, item.ItemName, itemDetails(item))
	}
	if card.Notes != "" {
		fmt.Fprintf(b, "      note: %s\n", card.Notes)
	}
	if card.NextStatus != "" {
		fmt.Fprintf(b, "      -> %s\n", card.NextStatus)
	}
}

func itemDetails(item service.OrderItemView) string {
	var parts []string
	for _, p := range []*string{item.Size, item.Ingredients, item.Sauces} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, "; ") + ")"
}
