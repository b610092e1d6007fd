package retry

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrGaveUp = errors.New("connection attempts exhausted")

// PingFunc probes a freshly opened database connection.
type PingFunc func(ctx context.Context) error

// PingWithBackoff calls ping until it succeeds, sleeping an
// incrementally growing delay between attempts (step, 2*step, ...).
// Ledger databases often come up moments after the migrator in a
// deployment, so a handful of spaced attempts is enough. After
// maxAttempts the last ping error is reported.
func PingWithBackoff(ctx context.Context, step time.Duration, maxAttempts int, ping PingFunc) error {
	var lastErr error
	delay := step

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = ping(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay += step
		}
	}

	return errors.Wrapf(ErrGaveUp, "after %d attempts: %s", maxAttempts, lastErr.Error())
}
