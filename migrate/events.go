package migrate

import (
	"github.com/trie-migrate/westend-migrate/journal"
)

const (
	evtAttempt = "attempt"

	notifyStarted  = "started"
	notifyTx       = "tx"
	notifyComplete = "complete"
	notifyFatal    = "fatal"
	notifyBalance  = "balance"
)

// NotifySystem is the journal system of events meant for an operator. The
// bot only records them; delivery is left to whatever tails the journal.
const NotifySystem = "notify"

// NotifyEvents are the events of NotifySystem, disabled by --no-notify.
var NotifyEvents = []string{notifyStarted, notifyTx, notifyComplete, notifyFatal, notifyBalance}

type evtTypes struct {
	attempt  journal.EventType
	started  journal.EventType
	tx       journal.EventType
	complete journal.EventType
	fatal    journal.EventType
	balance  journal.EventType
}

func registerEvents(j journal.Journal) evtTypes {
	return evtTypes{
		attempt:  j.RegisterEventType("migrate", evtAttempt),
		started:  j.RegisterEventType(NotifySystem, notifyStarted),
		tx:       j.RegisterEventType(NotifySystem, notifyTx),
		complete: j.RegisterEventType(NotifySystem, notifyComplete),
		fatal:    j.RegisterEventType(NotifySystem, notifyFatal),
		balance:  j.RegisterEventType(NotifySystem, notifyBalance),
	}
}

// AttemptEvt is journalled once per attempt.
type AttemptEvt struct {
	RunID      string
	Attempt    int
	Outcome    string
	Kind       string `json:",omitempty"`
	Error      string `json:",omitempty"`
	Hash       string `json:",omitempty"`
	Block      string `json:",omitempty"`
	TopItems   uint32
	ChildItems uint32
	Size       uint32
}

// NotifyEvt is an operator notification.
type NotifyEvt struct {
	RunID    string
	Title    string
	Message  string
	Critical bool
}
