package kitchen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// LoginFunc obtains a fresh access token.
type LoginFunc func(ctx context.Context) (string, error)

// SourceFunc builds a BoardSource for an access token.
type SourceFunc func(token string) BoardSource

// RunSession logs in, polls until the token is rejected, and logs in again.
// A session rejected sooner than one interval after login waits out the
// rest of the interval before the next login. ErrForbidden, a failed login
// and ctx cancellation end the session.
func RunSession(ctx context.Context, login LoginFunc, source SourceFunc, interval time.Duration, render RenderFunc) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	for ctx.Err() == nil {
		token, err := login(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("login: %w", err)
		}
		loggedInAt := time.Now()

		err = NewPoller(source(token), interval, render).Run(ctx)
		if !errors.Is(err, ErrUnauthorized) {
			return err
		}

		wait := interval - time.Since(loggedInAt)
		slog.Info("session expired, logging in again", "wait", wait.Round(time.Millisecond))
		if wait > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(wait):
			}
		}
	}
	return nil
}
