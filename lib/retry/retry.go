package retry

import (
	"context"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"github.com/trie-migrate/westend-migrate/build"
)

var log = logging.Logger("retry")

// Retry calls f up to attempts times while retryable reports the returned
// error as worth another try, waiting wait between calls. The last result
// and error are returned. ctx only interrupts the waits.
func Retry[T any](ctx context.Context, attempts int, wait time.Duration, retryable func(error) bool, f func() (T, error)) (result T, err error) {
	for i := 0; i < attempts; i++ {
		if i > 0 {
			log.Infow("retrying after error", "attempt", i+1, "of", attempts, "error", err)
			select {
			case <-build.Clock.After(wait):
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}
		result, err = f()
		if err == nil || !retryable(err) {
			return result, err
		}
	}
	log.Warnf("failed after %d attempts, last error: %s", attempts, err)
	return result, err
}
