package kitchen

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeSource replays a fixed sequence of results, then repeats the last one.
type fakeSource struct {
	mu      sync.Mutex
	results []error
	calls   int
}

func (f *fakeSource) Board(ctx context.Context) (*Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	f.calls++
	if err := f.results[i]; err != nil {
		return nil, err
	}
	return &Board{Total: f.calls}, nil
}

func TestPoller_RendersUntilCancelled(t *testing.T) {
	source := &fakeSource{results: []error{nil}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var renders int
	p := NewPoller(source, time.Millisecond, func(b *Board, at time.Time) {
		renders++
		if renders == 3 {
			cancel()
		}
	})

	if err := p.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if renders < 3 {
		t.Errorf("renders: got %d, want at least 3", renders)
	}
}

func TestPoller_StopsOnUnauthorized(t *testing.T) {
	source := &fakeSource{results: []error{nil, ErrUnauthorized}}

	var renders int
	p := NewPoller(source, time.Millisecond, func(b *Board, at time.Time) { renders++ })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := p.Run(ctx)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got: %v", err)
	}
	if renders != 1 {
		t.Errorf("renders: got %d, want 1", renders)
	}
}

func TestPoller_SurvivesTransientErrors(t *testing.T) {
	source := &fakeSource{results: []error{errors.New("connection refused"), errors.New("502"), nil}}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var rendered *Board
	p := NewPoller(source, time.Millisecond, func(b *Board, at time.Time) {
		rendered = b
		cancel()
	})

	if err := p.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rendered == nil {
		t.Fatal("expected a render after transient errors")
	}
	if rendered.Total != 3 {
		t.Errorf("rendered snapshot: got call %d, want 3", rendered.Total)
	}
}

func TestNewPoller_DefaultInterval(t *testing.T) {
	p := NewPoller(&fakeSource{results: []error{nil}}, 0, func(*Board, time.Time) {})
	if p.interval != DefaultPollInterval {
		t.Errorf("interval: got %v, want %v", p.interval, DefaultPollInterval)
	}
}
