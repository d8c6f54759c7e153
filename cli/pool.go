package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/trie-migrate/westend-migrate/migrate"
)

var PoolCmd = &cli.Command{
	Name:  "pool",
	Usage: "Inspect and clear the controller's pending extrinsics",
	Subcommands: []*cli.Command{
		PoolPendingCmd,
		PoolClearCmd,
	},
}

var PoolPendingCmd = &cli.Command{
	Name:  "pending",
	Usage: "List pending extrinsics signed by the controller",
	Flags: []cli.Flag{accountFlag},
	Action: func(cctx *cli.Context) error {
		ctx := ReqContext(cctx)
		cfg, err := GetConfig(cctx)
		if err != nil {
			return err
		}
		acct, err := account(cctx)
		if err != nil {
			return err
		}
		node, closer, err := GetNode(cctx)
		if err != nil {
			return err
		}
		defer closer()

		r := migrate.NewStateReader(node, acct, Options(cfg, false, false).Extensions)
		infos, err := r.Pending(ctx)
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			_, _ = fmt.Fprintln(cctx.App.Writer, "no pending extrinsics")
			return nil
		}
		printPending(cctx.App.Writer, infos)
		return nil
	},
}

var PoolClearCmd = &cli.Command{
	Name:  "clear",
	Usage: "Remove pending extrinsics signed by the controller from the node's pool",
	Flags: []cli.Flag{accountFlag},
	Action: func(cctx *cli.Context) error {
		ctx := ReqContext(cctx)
		cfg, err := GetConfig(cctx)
		if err != nil {
			return err
		}
		acct, err := account(cctx)
		if err != nil {
			return err
		}
		node, closer, err := GetNode(cctx)
		if err != nil {
			return err
		}
		defer closer()

		r := migrate.NewStateReader(node, acct, Options(cfg, false, false).Extensions)
		n, err := migrate.NewResolver(node, r).ClearPending(ctx)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cctx.App.Writer, "removed %d pending extrinsic(s)\n", n)
		return nil
	},
}
