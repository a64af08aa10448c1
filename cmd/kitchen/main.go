// Command kitchen renders the kitchen board in a terminal, refreshing it on
// a fixed interval.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/currymessina/api/internal/kitchen"
	"github.com/joho/godotenv"
)

// clearScreen resets an ANSI terminal before each render.
const clearScreen = "\033[H\033[2J"

func main() {
	_ = godotenv.Load()

	apiURL := flag.String("api", envOr("KITCHEN_API_URL", "http://localhost:8081"), "API base URL")
	username := flag.String("username", os.Getenv("KITCHEN_USERNAME"), "Admin username")
	password := flag.String("password", os.Getenv("KITCHEN_PASSWORD"), "Admin password")
	interval := flag.Duration("interval", kitchen.DefaultPollInterval, "Refresh interval")
	cancelled := flag.String("cancelled", "hide", "Cancelled orders: hide or lane")
	noClear := flag.Bool("no-clear", false, "Append renders instead of clearing the screen")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(*apiURL, *username, *password, *interval, *cancelled, !*noClear); err != nil {
		slog.Error("kitchen board exited", "error", err)
		os.Exit(1)
	}
}

func run(apiURL, username, password string, interval time.Duration, cancelled string, redraw bool) error {
	policy, err := kitchen.ParseCancelledPolicy(cancelled)
	if err != nil {
		return err
	}
	if username == "" || password == "" {
		return errors.New("username and password are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	render := func(board *kitchen.Board, at time.Time) {
		if redraw {
			fmt.Print(clearScreen)
		}
		if err := kitchen.Render(os.Stdout, board, at); err != nil {
			slog.Error("render board", "error", err)
		}
	}

	login := func(ctx context.Context) (string, error) {
		return kitchen.Login(ctx, apiURL, username, password)
	}
	source := func(token string) kitchen.BoardSource {
		return kitchen.NewHTTPSource(apiURL, token, policy)
	}

	err = kitchen.RunSession(ctx, login, source, interval, render)
	if errors.Is(err, kitchen.ErrForbidden) {
		return fmt.Errorf("account %q cannot open the kitchen board: %w", username, err)
	}
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
