package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/hako/durafmt"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"golang.org/x/xerrors"

	"github.com/trie-migrate/westend-migrate/build"
	"github.com/trie-migrate/westend-migrate/journal"
	"github.com/trie-migrate/westend-migrate/journal/fsjournal"
	"github.com/trie-migrate/westend-migrate/metrics"
	"github.com/trie-migrate/westend-migrate/migrate"
	"github.com/trie-migrate/westend-migrate/node/config"
)

// RunCmd is the root action: drive continue_migrate until done.
var RunCmd = &cli.Command{
	Name:   "run",
	Usage:  "Submit continue_migrate until the migration completes",
	Flags:  runFlags,
	Action: runMigration,
}

// RunFlags returns the flags of the root action.
func RunFlags() []cli.Flag {
	return runFlags
}

func runMigration(cctx *cli.Context) error {
	if cctx.Args().Present() {
		return ShowHelp(cctx, xerrors.Errorf("unexpected arguments: %s", strings.Join(cctx.Args().Slice(), " ")))
	}
	if cctx.Bool("status") {
		return statusAction(cctx)
	}
	if cctx.Bool("once") && cctx.Int("runs") > 1 {
		return ShowHelp(cctx, xerrors.New("--once and --runs > 1 conflict"))
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
	closers := []io.Closer{lock}
	defer func() {
		var cerr error
		for i := len(closers) - 1; i >= 0; i-- {
			cerr = multierr.Append(cerr, closers[i].Close())
		}
		if cerr != nil {
			log.Warnw("closing", "error", cerr)
		}
	}()

	key, err := loadKey()
	if err != nil {
		return err
	}
	closers = append(closers, key)

	j, err := openJournal(cfg)
	if err != nil {
		return err
	}
	closers = append(closers, j)

	node, closer, err := GetNode(cctx)
	if err != nil {
		return err
	}
	defer closer()

	if addr := cfg.Metrics.ListenAddress; addr != "" {
		go func() {
			if err := metrics.Serve(ctx, addr); err != nil {
				log.Errorw("metrics endpoint stopped", "error", err)
			}
		}()
	}

	opts := Options(cfg, cctx.Bool("once"), cctx.Bool("dry-run"))
	log.Infow("starting westend-migrate",
		"version", build.UserVersion(),
		"rpc", cfg.Node.RPCURL,
		"account", key.Account(),
		"limits", opts.Limits,
		"runs", opts.Runs,
		"dry_run", opts.DryRun,
	)

	d := migrate.NewDriver(node, key, j, opts)
	start := build.Clock.Now()
	report, runErr := d.Run(ctx)
	printReport(cctx.App.Writer, report, build.Clock.Since(start), key.Signatures(), runErr)
	return runErr
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	disabled := journal.EnvDisabledEvents()
	if len(cfg.Journal.DisabledEvents) > 0 {
		de, err := journal.ParseDisabledEvents(strings.Join(cfg.Journal.DisabledEvents, ","))
		if err != nil {
			return nil, xerrors.Errorf("parsing Journal.DisabledEvents: %w", err)
		}
		disabled = append(disabled, de...)
	}
	if cfg.Journal.NoNotify {
		disabled = journal.DisableEvents(disabled, migrate.NotifySystem, migrate.NotifyEvents...)
	}
	if cfg.Journal.Path == "" {
		return journal.NilJournal(), nil
	}

	j, err := fsjournal.OpenFSJournalPath(cfg.Journal.Path, disabled)
	if err != nil {
		return nil, xerrors.Errorf("opening journal: %w", err)
	}
	journal.J = j
	return j, nil
}

func printReport(w io.Writer, r *migrate.Report, took time.Duration, signatures int, err error) {
	if r == nil {
		return
	}
	var verdict string
	switch {
	case r.Terminal == migrate.MigrationComplete:
		verdict = color.GreenString(migrate.CompleteLine)
	case r.Terminal == migrate.MaxAttemptsReached:
		verdict = color.GreenString("run limit reached")
	case err == nil && r.Last != nil:
		verdict = color.YellowString("attempt failed: %s (recoverable)", migrate.KindOf(r.Last))
	case err == nil:
		verdict = color.GreenString("ok")
	case xerrors.Is(err, context.Canceled):
		verdict = color.YellowString("interrupted")
	default:
		verdict = color.RedString("stopped: %s", migrate.KindOf(err))
	}

	_, _ = fmt.Fprintf(w, "Run %s: %s\n", r.RunID, verdict)
	_, _ = fmt.Fprintf(w, "  attempts: %s, finalized: %s, failed: %s, signatures: %d\n",
		humanize.Comma(int64(r.Attempts)), humanize.Comma(int64(r.Successes)), humanize.Comma(int64(r.Failures)), signatures)
	_, _ = fmt.Fprintf(w, "  took: %s\n", durafmt.Parse(took.Truncate(time.Second)).LimitFirstN(2))
	_, _ = fmt.Fprintf(w, "  limits: %s\n", r.Limits)
	_, _ = fmt.Fprintf(w, "  %s\n", r.Task.StatusLine())
	if r.Last != nil {
		_, _ = fmt.Fprintf(w, "  last error: %s\n", r.Last)
	}
}
