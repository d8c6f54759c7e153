package types

import (
	"fmt"
	"strconv"
)

// ProgressKind follows the variant order of the pallet's Progress enum.
type ProgressKind uint8

const (
	ProgressToStart ProgressKind = iota
	ProgressLastKey
	ProgressComplete
)

func (k ProgressKind) String() string {
	switch k {
	case ProgressToStart:
		return "ToStart"
	case ProgressLastKey:
		return "LastKey"
	case ProgressComplete:
		return "Complete"
	default:
		return "ProgressKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Progress is one migration cursor.
type Progress struct {
	Kind ProgressKind
	// LastKey is the last migrated key, set only for ProgressLastKey.
	LastKey []byte
}

func (p Progress) Done() bool {
	return p.Kind == ProgressComplete
}

func (p Progress) String() string {
	if p.Kind == ProgressLastKey {
		return fmt.Sprintf("LastKey(%s)", Bytes(p.LastKey))
	}
	return p.Kind.String()
}

// MigrationTask is the StateTrieMigration.MigrationProcess storage value.
//
// Size, TopItems and ChildItems count work already performed. They are not a
// measure of remaining work.
type MigrationTask struct {
	ProgressTop   Progress
	ProgressChild Progress

	Size       uint32
	TopItems   uint32
	ChildItems uint32
}

// IsComplete reports whether both cursors reached Complete. This is the
// local flag only; the authoritative figure is the node's full trie scan.
func (t MigrationTask) IsComplete() bool {
	return t.ProgressTop.Done() && t.ProgressChild.Done()
}

func doneOrWip(p Progress) string {
	if p.Done() {
		return "done"
	}
	return "wip"
}

// StatusLine renders the task in the fixed shape the monitor greps for.
func (t MigrationTask) StatusLine() string {
	return fmt.Sprintf("Status: top=%s/%d child=%s/%d size=%d",
		doneOrWip(t.ProgressTop), t.TopItems,
		doneOrWip(t.ProgressChild), t.ChildItems,
		t.Size)
}
