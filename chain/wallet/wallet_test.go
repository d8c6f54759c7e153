package wallet

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trie-migrate/westend-migrate/lib/sigs"
)

const testSeed = "0x4242424242424242424242424242424242424242424242424242424242424242"

func TestSecretNeverPrints(t *testing.T) {
	s, err := ParseSeed(testSeed)
	require.NoError(t, err)

	for _, out := range []string{
		fmt.Sprint(s),
		fmt.Sprintf("%v %+v %#v %s %x", s, s, s, s, s),
	} {
		require.NotContains(t, out, "42")
		require.Contains(t, out, redacted)
	}

	b, err := json.Marshal(struct{ S *Secret }{s})
	require.NoError(t, err)
	require.NotContains(t, string(b), "4242")
}

func TestSecretUseZeroesScratch(t *testing.T) {
	s := NewSecret([]byte{1, 2, 3})

	var leaked []byte
	require.NoError(t, s.Use(func(b []byte) error {
		leaked = b
		require.Equal(t, []byte{1, 2, 3}, b)
		return nil
	}))
	require.Equal(t, []byte{0, 0, 0}, leaked)

	s.Wipe()
	require.True(t, s.Wiped())
	require.ErrorIs(t, s.Use(func([]byte) error { return nil }), ErrWiped)
}

func TestParseSeedErrors(t *testing.T) {
	for _, in := range []string{
		"",
		"0x1234",
		"0xzz",
		"bottom drive obey lake curtain smoke basket hold race lonely fit walk//Alice",
		"just three words",
	} {
		_, err := ParseSeed(in)
		require.Error(t, err, in)
		if in != "" {
			require.NotContains(t, err.Error(), strings.TrimPrefix(in, "0x"))
		}
	}
}

func TestParseMnemonic(t *testing.T) {
	s, err := ParseSeed("bottom drive obey lake curtain smoke basket hold race lonely fit walk")
	require.NoError(t, err)
	k, err := NewKey(s)
	require.NoError(t, err)

	// the substrate development account
	require.Equal(t, "5DfhGyQdFobKM8NsWvEeAKk5EQQgYe9AydgJ7rMB6E1EqRzV", k.Account().String())
}

func TestKeySign(t *testing.T) {
	s, err := ParseSeed(testSeed)
	require.NoError(t, err)
	k, err := NewKey(s)
	require.NoError(t, err)

	msg := []byte("payload")
	sig, err := k.Sign(msg)
	require.NoError(t, err)
	acct := k.Account()
	require.NoError(t, sigs.Verify(k.Type(), sig, acct[:], msg))
	require.Equal(t, 1, k.Signatures())

	require.NoError(t, k.Close())
	_, err = k.Sign(msg)
	require.ErrorIs(t, err, ErrWiped)
}
