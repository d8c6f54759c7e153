package cli

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/trie-migrate/westend-migrate/chain/metadata"
	"github.com/trie-migrate/westend-migrate/chain/types"
	"github.com/trie-migrate/westend-migrate/migrate"
	"github.com/trie-migrate/westend-migrate/node/config"
)

// Flags are accepted by the root command and every subcommand that talks to
// the node.
var Flags = []cli.Flag{
	&cli.StringFlag{
		Name:    "rpc-url",
		Usage:   "websocket endpoint of a node with unsafe rpc methods",
		EnvVars: []string{"WESTEND_RPC"},
	},
	&cli.StringFlag{
		Name:    "config",
		Usage:   "config file",
		EnvVars: []string{"WESTEND_MIGRATE_CONFIG"},
		Value:   "~/.westend-migrate/config.toml",
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "debug logging",
	},
}

var runFlags = []cli.Flag{
	&cli.UintFlag{
		Name:  "item-limit",
		Usage: "items per extrinsic, 0 for the chain maximum",
	},
	&cli.UintFlag{
		Name:  "size-limit",
		Usage: "bytes per extrinsic, 0 for the chain maximum",
	},
	&cli.DurationFlag{
		Name:  "delay",
		Usage: "pause between attempts",
	},
	&cli.BoolFlag{
		Name:  "once",
		Usage: "exit after a single attempt",
	},
	&cli.IntFlag{
		Name:  "runs",
		Usage: "exit after this many finalized extrinsics, 0 for no limit",
	},
	&cli.BoolFlag{
		Name:  "dry-run",
		Usage: "pre-flight one extrinsic and exit without submitting",
	},
	&cli.BoolFlag{
		Name:  "status",
		Usage: "print the migration status and exit",
	},
	&cli.BoolFlag{
		Name:  "clear-pending",
		Usage: "remove our pending extrinsics at start and on pool conflicts",
	},
	&cli.BoolFlag{
		Name:  "raise-chain-limits",
		Usage: "submit set_signed_max_limits when the chain maximum is below the configured limits",
	},
	&cli.BoolFlag{
		Name:  "no-notify",
		Usage: "do not record notify journal events",
	},
	&cli.StringFlag{
		Name:  "metrics-listen",
		Usage: "serve prometheus metrics on this address",
	},
	&cli.StringFlag{
		Name:  "journal",
		Usage: "journal directory",
	},
}

// applyFlags copies explicitly set flags over cfg.
func applyFlags(cctx *cli.Context, cfg *config.Config) {
	if cctx.IsSet("rpc-url") {
		cfg.Node.RPCURL = cctx.String("rpc-url")
	}
	if cctx.IsSet("item-limit") {
		cfg.Migration.ItemLimit = uint32(cctx.Uint("item-limit"))
	}
	if cctx.IsSet("size-limit") {
		cfg.Migration.SizeLimit = uint32(cctx.Uint("size-limit"))
	}
	if cctx.IsSet("delay") {
		cfg.Migration.Delay = config.Duration(cctx.Duration("delay"))
	}
	if cctx.IsSet("runs") {
		cfg.Migration.Runs = cctx.Int("runs")
	}
	if cctx.IsSet("clear-pending") {
		cfg.Migration.ClearPending = cctx.Bool("clear-pending")
	}
	if cctx.IsSet("raise-chain-limits") {
		cfg.Migration.RaiseChainLimits = cctx.Bool("raise-chain-limits")
	}
	if cctx.IsSet("no-notify") {
		cfg.Journal.NoNotify = cctx.Bool("no-notify")
	}
	if cctx.IsSet("metrics-listen") {
		cfg.Metrics.ListenAddress = cctx.String("metrics-listen")
	}
	if cctx.IsSet("journal") {
		cfg.Journal.Path = cctx.String("journal")
	}
}

// Pallet returns the configured pallet location, keeping the known error
// names when it is the default one.
func Pallet(cfg *config.Config) metadata.Pallet {
	p := metadata.DefaultPallet
	if cfg.Migration.Pallet.Index != p.Index {
		p.Errors = nil
	}
	p.Index = cfg.Migration.Pallet.Index
	p.ContinueMigrate = cfg.Migration.Pallet.ContinueMigrate
	p.SetSignedMaxLimits = cfg.Migration.Pallet.SetSignedMaxLimits
	return p
}

// Options turns the config into driver options. once and dryRun only come
// from flags.
func Options(cfg *config.Config, once, dryRun bool) migrate.Options {
	o := migrate.DefaultOptions()
	o.Limits = types.MigrationLimits{Item: cfg.Migration.ItemLimit, Size: cfg.Migration.SizeLimit}
	o.Runs = cfg.Migration.Runs
	o.Once = once
	o.DryRun = dryRun
	o.Delay = time.Duration(cfg.Migration.Delay)
	o.RaiseChainLimits = cfg.Migration.RaiseChainLimits
	o.ClearPending = cfg.Migration.ClearPending
	o.Pallet = Pallet(cfg)

	r := cfg.Recovery
	setDuration(&o.RetryWait, r.RetryWait)
	setDuration(&o.MaxRetryWait, r.MaxRetryWait)
	setDuration(&o.BannedWait, r.BannedWait)
	setDuration(&o.FinalityTimeout, r.FinalityTimeout)
	setDuration(&o.BlockTime, r.BlockTime)
	if r.PendingPollBlocks > 0 {
		o.PendingPollIterations = r.PendingPollBlocks
	}
	if r.MaxConsecutiveErrors > 0 {
		o.MaxConsecutiveErrors = r.MaxConsecutiveErrors
	}
	// a zero heartbeat disables it
	o.Heartbeat = time.Duration(r.HeartbeatInterval)
	return o
}

func setDuration(dst *time.Duration, d config.Duration) {
	if d > 0 {
		*dst = time.Duration(d)
	}
}
