package migrate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/trie-migrate/westend-migrate/chain/types"
)

// The lines below are matched by substring by external monitoring. Keep
// their shape.

const CompleteLine = "Migration is COMPLETE (local flag; confirm with state_trieMigrationStatus)"

func SuccessLine(attempt int, t types.MigrationTask) string {
	return fmt.Sprintf("Tx #%d ✓ top_items=%d child_items=%d size=%d", attempt, t.TopItems, t.ChildItems, t.Size)
}

func FailureLine(attempt int, err error) string {
	kind := KindOf(err)
	msg := err.Error()
	var e *Error
	if errors.As(err, &e) {
		msg = e.Message()
	}
	msg = strings.ReplaceAll(msg, "\n", " ")
	return fmt.Sprintf("Tx #%d ✗ kind=%s recoverable=%t err=%s", attempt, kind, kind.Recoverable(), msg)
}

func HeartbeatLine(uptime time.Duration, attempts, failures int64) string {
	return fmt.Sprintf("💓 heartbeat uptime=%s attempts=%d failures=%d", uptime.Truncate(time.Second), attempts, failures)
}
