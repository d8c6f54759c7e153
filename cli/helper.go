package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

type PrintHelpErr struct {
	Err error
	Ctx *cli.Context
}

func (e *PrintHelpErr) Error() string {
	return e.Err.Error()
}

func (e *PrintHelpErr) Unwrap() error {
	return e.Err
}

func (e *PrintHelpErr) Is(o error) bool {
	_, ok := o.(*PrintHelpErr)
	return ok
}

func ShowHelp(cctx *cli.Context, err error) error {
	return &PrintHelpErr{Err: err, Ctx: cctx}
}

// ExitCode maps the result of a run to the process exit status. An
// interrupted run exits cleanly.
func ExitCode(err error) int {
	if err == nil || errors.Is(err, context.Canceled) {
		return 0
	}
	return 1
}

func RunApp(app *cli.App) {
	err := app.Run(os.Args)
	code := ExitCode(err)
	if code == 0 {
		return
	}
	if os.Getenv("WESTEND_MIGRATE_DEV") != "" {
		log.Warnf("%+v", err)
	} else {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n\n", err) // nolint:errcheck
	}
	var phe *PrintHelpErr
	if errors.As(err, &phe) {
		_ = cli.ShowCommandHelp(phe.Ctx, phe.Ctx.Command.Name)
	}
	os.Exit(code)
}
