package main

import (
	"github.com/urfave/cli/v2"

	"github.com/trie-migrate/westend-migrate/build"
	lcli "github.com/trie-migrate/westend-migrate/cli"
	"github.com/trie-migrate/westend-migrate/lib/botlog"
)

func main() {
	botlog.SetupLogLevels()

	app := &cli.App{
		Name:    "westend-migrate",
		Usage:   "Drive the Westend Asset Hub state trie migration with signed continue_migrate extrinsics",
		Version: build.UserVersion(),
		Flags:   append(append([]cli.Flag{}, lcli.Flags...), lcli.RunFlags()...),
		Before: func(cctx *cli.Context) error {
			if cctx.Bool("verbose") {
				botlog.SetVerbose()
			}
			return nil
		},
		Action:   lcli.RunCmd.Action,
		Commands: append([]*cli.Command{lcli.RunCmd}, lcli.Commands...),
	}
	lcli.RunApp(app)
}
