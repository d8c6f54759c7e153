package migrate

import (
	"github.com/holiman/uint256"

	"github.com/trie-migrate/westend-migrate/build"
	"github.com/trie-migrate/westend-migrate/chain/types"
)

func freeOf(s types.AccountSnapshot) *uint256.Int {
	if s.Free == nil {
		return new(uint256.Int)
	}
	return s.Free
}

// CheckBalance fails with BalanceDecreased when the free balance after an
// attempt is lower than before it. It overrides any other success signal.
func CheckBalance(pre, post types.AccountSnapshot) error {
	before, after := freeOf(pre), freeOf(post)
	if !after.Lt(before) {
		return nil
	}
	diff := new(uint256.Int).Sub(before, after)
	return Errorf(BalanceDecreased, "Balance decreased by %s (%s -> %s); stopping before any further %s is lost",
		types.WND(diff), types.WND(before), types.WND(after), build.TokenSymbol)
}
