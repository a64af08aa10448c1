package kitchen

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultPollInterval matches the refresh rate of the kitchen display.
const DefaultPollInterval = 15 * time.Second

// Errors that stop the poller.
var (
	// ErrUnauthorized means the session was rejected; logging in again may help.
	ErrUnauthorized = errors.New("kitchen: unauthorized")
	// ErrForbidden means the account lacks the admin role; logging in again will not help.
	ErrForbidden = errors.New("kitchen: forbidden")
)

// BoardSource fetches the current board.
type BoardSource interface {
	Board(ctx context.Context) (*Board, error)
}

// RenderFunc receives every successfully fetched board.
type RenderFunc func(board *Board, fetchedAt time.Time)

// Poller refreshes the board on a fixed interval.
type Poller struct {
	source   BoardSource
	interval time.Duration
	render   RenderFunc
	now      func() time.Time
}

// NewPoller creates a Poller. A non-positive interval uses
// DefaultPollInterval.
func NewPoller(source BoardSource, interval time.Duration, render RenderFunc) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		source:   source,
		interval: interval,
		render:   render,
		now:      time.Now,
	}
}

// Run polls once immediately and then on every tick until ctx is done or
// the source reports ErrUnauthorized or ErrForbidden. Other fetch errors are logged and the
// previous render stays on screen.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	slog.Info("kitchen poller started", "interval", p.interval)

	for {
		if err := p.poll(ctx); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			slog.Info("kitchen poller stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (p *Poller) poll(ctx context.Context) error {
	board, err := p.source.Board(ctx)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden) {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
		slog.Warn("kitchen board refresh failed", "error", err)
		return nil
	}
	p.render(board, p.now())
	return nil
}
