package types

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"

	"github.com/trie-migrate/westend-migrate/build"
)

var wndPrecision = new(big.Int).Exp(big.NewInt(10), big.NewInt(build.TokenDecimals), nil)

// WND formats a planck amount as whole tokens.
func WND(v *uint256.Int) string {
	if v == nil {
		return "0 " + build.TokenSymbol
	}
	r := new(big.Rat).SetFrac(v.ToBig(), wndPrecision)
	s := strings.TrimRight(r.FloatString(build.TokenDecimals), "0")
	s = strings.TrimSuffix(s, ".")
	return s + " " + build.TokenSymbol
}

// ParseWND parses a decimal token amount into planck.
func ParseWND(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), build.TokenSymbol))
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("failed to parse %q as a decimal number", s)
	}
	r = r.Mul(r, new(big.Rat).SetInt(wndPrecision))
	if !r.IsInt() || r.Sign() < 0 {
		return nil, fmt.Errorf("invalid %s value: %q", build.TokenSymbol, s)
	}
	v, overflow := uint256.FromBig(r.Num())
	if overflow {
		return nil, fmt.Errorf("%s value out of range: %q", build.TokenSymbol, s)
	}
	return v, nil
}
