package botlog

import (
	"os"

	logging "github.com/ipfs/go-log/v2"
)

// SetupLogLevels sets the default levels unless GOLOG_LOG_LEVEL is set.
func SetupLogLevels() {
	if _, set := os.LookupEnv("GOLOG_LOG_LEVEL"); set {
		return
	}
	_ = logging.SetLogLevel("*", "INFO")
	_ = logging.SetLogLevel("rpc", "WARN")
	_ = logging.SetLogLevel("retry", "WARN")
}

// SetVerbose switches the bot's own subsystems to debug.
func SetVerbose() {
	for _, sys := range []string{"migrate", "rpc", "wallet", "journal", "cli"} {
		_ = logging.SetLogLevel(sys, "DEBUG")
	}
}
