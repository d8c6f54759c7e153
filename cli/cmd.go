package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	logging "github.com/ipfs/go-log/v2"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"github.com/trie-migrate/westend-migrate/api"
	"github.com/trie-migrate/westend-migrate/api/client"
	"github.com/trie-migrate/westend-migrate/lib/jsonrpc"
	"github.com/trie-migrate/westend-migrate/node/config"
)

var log = logging.Logger("cli")

const (
	metadataContext = "context"
	metadataConfig  = "config"
)

func init() {
	color.NoColor = !colorReports(os.Stdout.Fd())
}

// colorReports reports whether the run report written to fd is coloured.
// GOLOG_LOG_FMT=color forces it on when stdout is redirected.
func colorReports(fd uintptr) bool {
	if os.Getenv("GOLOG_LOG_FMT") == "color" {
		return true
	}
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ReqContext returns context for cli execution. Calling it for the first time
// installs SIGTERM handler that will close returned context.
// Not safe for concurrent execution.
func ReqContext(cctx *cli.Context) context.Context {
	if uctx, ok := cctx.App.Metadata[metadataContext]; ok {
		return uctx.(context.Context)
	}

	ctx, done := context.WithCancel(cctx.Context)
	sigChan := make(chan os.Signal, 2)
	go func() {
		select {
		case sig := <-sigChan:
			log.Infow("received signal, stopping", "signal", sig)
			done()
		case <-ctx.Done():
		}
	}()
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	if cctx.App.Metadata == nil {
		cctx.App.Metadata = map[string]interface{}{}
	}
	cctx.App.Metadata[metadataContext] = ctx
	return ctx
}

// GetConfig loads the config file and applies the root flags over it.
func GetConfig(cctx *cli.Context) (*config.Config, error) {
	if c, ok := cctx.App.Metadata[metadataConfig]; ok {
		return c.(*config.Config), nil
	}
	cfg, err := config.FromFile(cctx.String("config"), config.Default())
	if err != nil {
		return nil, xerrors.Errorf("loading config: %w", err)
	}
	applyFlags(cctx, cfg)

	if cctx.App.Metadata == nil {
		cctx.App.Metadata = map[string]interface{}{}
	}
	cctx.App.Metadata[metadataConfig] = cfg
	return cfg, nil
}

// GetNode dials the configured node.
func GetNode(cctx *cli.Context) (api.Node, jsonrpc.ClientCloser, error) {
	cfg, err := GetConfig(cctx)
	if err != nil {
		return nil, nil, err
	}
	var headers http.Header
	if len(cfg.Node.Headers) > 0 {
		headers = http.Header{}
		for k, v := range cfg.Node.Headers {
			headers.Add(k, v)
		}
	}

	node, closer, err := client.NewNodeRPC(ReqContext(cctx), cfg.Node.RPCURL, headers)
	if err != nil {
		return nil, nil, xerrors.Errorf("connecting to %s: %w", cfg.Node.RPCURL, err)
	}
	return node, closer, nil
}

var Commands = []*cli.Command{
	StatusCmd,
	PoolCmd,
	LimitsCmd,
	ConfigCmd,
	VersionCmd,
}
