package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

var errAgain = xerrors.New("again")

func isAgain(err error) bool { return xerrors.Is(err, errAgain) }

func TestRetry(t *testing.T) {
	ctx := context.Background()

	calls := 0
	v, err := Retry(ctx, 3, time.Millisecond, isAgain, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errAgain
		}
		return 42, nil
	})
	require.NoError(t, err)
	require.Equal(t, 42, v)
	require.Equal(t, 3, calls)

	calls = 0
	_, err = Retry(ctx, 3, time.Millisecond, isAgain, func() (int, error) {
		calls++
		return 0, errAgain
	})
	require.ErrorIs(t, err, errAgain)
	require.Equal(t, 3, calls)

	other := xerrors.New("other")
	calls = 0
	_, err = Retry(ctx, 3, time.Millisecond, isAgain, func() (int, error) {
		calls++
		return 0, other
	})
	require.ErrorIs(t, err, other)
	require.Equal(t, 1, calls)
}

func TestRetryContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Retry(ctx, 3, time.Hour, isAgain, func() (int, error) {
		calls++
		return 0, errAgain
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}
