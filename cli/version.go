package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/trie-migrate/westend-migrate/build"
	"github.com/trie-migrate/westend-migrate/node/config"
)

var VersionCmd = &cli.Command{
	Name:  "version",
	Usage: "Print version",
	Action: func(cctx *cli.Context) error {
		_, _ = fmt.Fprintln(cctx.App.Writer, "westend-migrate version:", build.UserVersion())
		return nil
	},
}

var ConfigCmd = &cli.Command{
	Name:  "config",
	Usage: "Print the effective configuration as TOML",
	Action: func(cctx *cli.Context) error {
		cfg, err := GetConfig(cctx)
		if err != nil {
			return err
		}
		out, err := config.ConfigComment(cfg)
		if err != nil {
			return err
		}
		_, err = cctx.App.Writer.Write(out)
		return err
	},
}
