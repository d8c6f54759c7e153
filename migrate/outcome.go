package migrate

import (
	"github.com/trie-migrate/westend-migrate/chain/types"
)

type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeRecoverable
	OutcomeFatal
	OutcomeComplete
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeRecoverable:
		return "recoverable"
	case OutcomeFatal:
		return "fatal"
	case OutcomeComplete:
		return "complete"
	}
	return "unknown"
}

// Outcome is the result of one attempt. Only its counters outlive the
// attempt.
type Outcome struct {
	Kind    OutcomeKind
	Err     error
	Attempt int

	// Task is the progress read after finalization on success, and the
	// progress the attempt started from otherwise.
	Task  types.MigrationTask
	Block types.Hash
	Hash  types.Hash

	// DryRun is set when the attempt stopped after pre-flight.
	DryRun bool
}

func failed(attempt int, task types.MigrationTask, err error) Outcome {
	kind := OutcomeRecoverable
	if KindOf(err).Fatal() {
		kind = OutcomeFatal
	}
	return Outcome{Kind: kind, Err: err, Attempt: attempt, Task: task}
}
