package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"github.com/trie-migrate/westend-migrate/chain/types"
	"github.com/trie-migrate/westend-migrate/migrate"
)

var LimitsCmd = &cli.Command{
	Name:  "limits",
	Usage: "Show or raise the chain's signed migration limits",
	Subcommands: []*cli.Command{
		LimitsShowCmd,
		LimitsSetCmd,
	},
}

var LimitsShowCmd = &cli.Command{
	Name:  "show",
	Usage: "Print SignedMigrationMaxLimits and the limits a run would use",
	Action: func(cctx *cli.Context) error {
		ctx := ReqContext(cctx)
		cfg, err := GetConfig(cctx)
		if err != nil {
			return err
		}
		node, closer, err := GetNode(cctx)
		if err != nil {
			return err
		}
		defer closer()

		// storage reads need no account
		r := migrate.NewStateReader(node, types.AccountID{}, Options(cfg, false, false).Extensions)
		chainMax, err := r.SignedMaxLimits(ctx)
		if err != nil {
			return err
		}
		opts := Options(cfg, false, false)
		if chainMax == nil {
			_, _ = fmt.Fprintln(cctx.App.Writer, "chain max: none set")
		} else {
			_, _ = fmt.Fprintf(cctx.App.Writer, "chain max: %s\n", chainMax)
		}
		_, _ = fmt.Fprintf(cctx.App.Writer, "effective: %s\n", migrate.ResolveLimits(opts.Limits, chainMax))
		return nil
	},
}

var LimitsSetCmd = &cli.Command{
	Name:      "set",
	Usage:     "Submit set_signed_max_limits and wait for finality",
	ArgsUsage: "<items> <size>",
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 2 {
			return ShowHelp(cctx, xerrors.New("expected <items> <size>"))
		}
		var limits types.MigrationLimits
		if _, err := fmt.Sscan(cctx.Args().Get(0), &limits.Item); err != nil {
			return ShowHelp(cctx, xerrors.Errorf("parsing items: %w", err))
		}
		if _, err := fmt.Sscan(cctx.Args().Get(1), &limits.Size); err != nil {
			return ShowHelp(cctx, xerrors.Errorf("parsing size: %w", err))
		}
		if limits.Item == 0 || limits.Size == 0 {
			return ShowHelp(cctx, xerrors.New("limits must be non-zero"))
		}

		ctx := ReqContext(cctx)
		cfg, err := GetConfig(cctx)
		if err != nil {
			return err
		}
		lock, err := lockInstance(cfg.Lock.Dir)
		if err != nil {
			return err
		}
		defer lock.Close() //nolint:errcheck

		key, err := loadKey()
		if err != nil {
			return err
		}
		defer key.Close() //nolint:errcheck

		node, closer, err := GetNode(cctx)
		if err != nil {
			return err
		}
		defer closer()

		opts := Options(cfg, false, false)
		r := migrate.NewStateReader(node, key.Account(), opts.Extensions)
		res := migrate.NewResolver(node, r)
		v := migrate.NewValidator(node, r, key, opts.Pallet)
		if err := v.CheckAvailable(ctx); err != nil {
			return err
		}
		w := migrate.NewWatcher(node, r, key, res)

		blk, err := migrate.SetChainLimits(ctx, v, w, r, opts.Pallet, limits)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cctx.App.Writer, "signed migration limits set to %s in block %s\n", limits, blk)
		return nil
	},
}
