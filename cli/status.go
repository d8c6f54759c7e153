package cli

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/trie-migrate/westend-migrate/chain/extrinsic"
	"github.com/trie-migrate/westend-migrate/chain/types"
	"github.com/trie-migrate/westend-migrate/migrate"
)

var StatusCmd = &cli.Command{
	Name:  "status",
	Usage: "Print migration progress, the controller balance and its pending pool entries",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "full-scan",
			Usage: "also run state_trieMigrationStatus, which scans the whole trie",
		},
		accountFlag,
	},
	Action: statusAction,
}

// statusAction never signs.
func statusAction(cctx *cli.Context) error {
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
	rep, err := migrate.Status(ctx, node, r, cctx.Bool("full-scan"))
	if err != nil {
		return err
	}
	printStatus(cctx.App.Writer, rep)
	return nil
}

func progressColor(p types.Progress) string {
	if p.Done() {
		return color.GreenString(p.String())
	}
	return color.YellowString(p.String())
}

func printStatus(w io.Writer, rep *migrate.StatusReport) {
	t := rep.Task
	_, _ = fmt.Fprintln(w, t.StatusLine())
	_, _ = fmt.Fprintf(w, "Top:      %s\n", progressColor(t.ProgressTop))
	_, _ = fmt.Fprintf(w, "Child:    %s\n", progressColor(t.ProgressChild))
	_, _ = fmt.Fprintf(w, "Migrated: %s top items, %s child items, %s\n",
		humanize.Comma(int64(t.TopItems)), humanize.Comma(int64(t.ChildItems)), humanize.IBytes(uint64(t.Size)))
	_, _ = fmt.Fprintf(w, "          %s\n", color.HiBlackString(migrate.CountersCaveat))
	if t.IsComplete() {
		_, _ = fmt.Fprintln(w, color.GreenString(migrate.CompleteLine))
	}

	_, _ = fmt.Fprintf(w, "Account:  %s\n", rep.Account)
	_, _ = fmt.Fprintf(w, "Balance:  %s (nonce %d)\n", types.WND(rep.Balance.Free), rep.Balance.Nonce)
	if rep.Limits != nil {
		_, _ = fmt.Fprintf(w, "Chain max limits: %s\n", rep.Limits)
	} else {
		_, _ = fmt.Fprintln(w, "Chain max limits: none set")
	}
	if rep.Runtime != nil {
		_, _ = fmt.Fprintf(w, "Runtime:  %s v%d (tx v%d)\n", rep.Runtime.SpecName, rep.Runtime.SpecVersion, rep.Runtime.TransactionVersion)
	}

	switch {
	case rep.PendingErr != nil:
		_, _ = fmt.Fprintf(w, "Pending:  %s\n", color.YellowString("unavailable: %s", rep.PendingErr))
	case len(rep.Pending) == 0:
		_, _ = fmt.Fprintln(w, "Pending:  none")
	default:
		_, _ = fmt.Fprintf(w, "Pending:  %d\n", len(rep.Pending))
		printPending(w, rep.Pending)
	}

	if st := rep.FullScan; st != nil {
		verdict := color.YellowString("in progress")
		if st.Done() {
			verdict = color.GreenString("nothing left to migrate")
		}
		_, _ = fmt.Fprintf(w, "Full scan: %s\n", verdict)
		_, _ = fmt.Fprintf(w, "  top:   %s remaining of %s\n", humanize.Comma(int64(st.TopRemainingToMigrate)), humanize.Comma(int64(st.TotalTop)))
		_, _ = fmt.Fprintf(w, "  child: %s remaining of %s\n", humanize.Comma(int64(st.ChildRemainingToMigrate)), humanize.Comma(int64(st.TotalChild)))
	}
}

func printPending(w io.Writer, infos []extrinsic.Info) {
	for _, i := range infos {
		_, _ = fmt.Fprintf(w, "  %s nonce=%d\n", i.Hash, i.Nonce)
	}
}
