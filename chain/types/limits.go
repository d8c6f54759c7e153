package types

import "fmt"

// MigrationLimits bounds one continue_migrate call. A zero field in
// configuration means the chain reported maximum.
type MigrationLimits struct {
	Size uint32
	Item uint32
}

func (l MigrationLimits) IsZero() bool {
	return l.Size == 0 && l.Item == 0
}

// Within reports whether l fits under max in both dimensions.
func (l MigrationLimits) Within(max MigrationLimits) bool {
	return l.Size <= max.Size && l.Item <= max.Item
}

func (l MigrationLimits) String() string {
	return fmt.Sprintf("items=%d size=%d", l.Item, l.Size)
}
