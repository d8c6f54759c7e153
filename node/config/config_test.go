package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c, err := FromReader(bytes.NewReader(nil), Default())
	require.NoError(t, err)
	require.Equal(t, Default(), c)
	require.EqualValues(t, 70, c.Migration.Pallet.Index)
	require.Equal(t, Duration(time.Minute), c.Recovery.BannedWait)
}

func TestDecodeConfig(t *testing.T) {
	cfg := `
[Node]
  RPCURL = "ws://127.0.0.1:9944"

[Migration]
  ItemLimit = 1024
  Delay = "30s"
  Runs = 10
  ClearPending = true

[Recovery]
  FinalityTimeout = "90s"

[Journal]
  Path = "~/.westend-migrate/journal"
  DisabledEvents = ["notify:started"]
`
	c, err := FromReader(strings.NewReader(cfg), Default())
	require.NoError(t, err)
	require.Equal(t, "ws://127.0.0.1:9944", c.Node.RPCURL)
	require.EqualValues(t, 1024, c.Migration.ItemLimit)
	require.Zero(t, c.Migration.SizeLimit)
	require.Equal(t, Duration(30*time.Second), c.Migration.Delay)
	require.True(t, c.Migration.ClearPending)
	require.Equal(t, Duration(90*time.Second), c.Recovery.FinalityTimeout)
	require.Equal(t, Default().Recovery.RetryWait, c.Recovery.RetryWait)
	require.Equal(t, []string{"notify:started"}, c.Journal.DisabledEvents)
}

func TestUnknownKeys(t *testing.T) {
	_, err := FromReader(strings.NewReader("[Migration]\nItemLimt = 3\n"), Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "ItemLimt")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WESTEND_MIGRATE_MIGRATION_SIZELIMIT", "2048")
	t.Setenv("WESTEND_MIGRATE_RECOVERY_BLOCKTIME", "12s")

	c, err := FromReader(strings.NewReader("[Migration]\nSizeLimit = 7\n"), Default())
	require.NoError(t, err)
	require.EqualValues(t, 2048, c.Migration.SizeLimit)
	require.Equal(t, Duration(12*time.Second), c.Recovery.BlockTime)
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	c, err := FromFile(filepath.Join(dir, "missing.toml"), Default())
	require.NoError(t, err)
	require.Equal(t, Default(), c)

	def := Default()
	def.Migration.Runs = 3
	out, err := ConfigComment(def)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("#")))

	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, out, 0644))
	c, err = FromFile(path, Default())
	require.NoError(t, err)
	require.Equal(t, def, c)
}

func TestLoadSeed(t *testing.T) {
	const seed = "0x0707070707070707070707070707070707070707070707070707070707070707"

	t.Setenv(SeedEnv, "")
	require.NoError(t, os.Unsetenv(SeedEnv))
	_, err := LoadSeed()
	require.EqualError(t, err, "SIGNER_SEED must be set")

	t.Setenv(SeedEnv, "0x1234")
	_, err = LoadSeed()
	require.Error(t, err)
	require.NotContains(t, err.Error(), "1234")

	t.Setenv(SeedEnv, seed)
	s, err := LoadSeed()
	require.NoError(t, err)
	require.False(t, s.Wiped())
	_, set := os.LookupEnv(SeedEnv)
	require.False(t, set)
}
