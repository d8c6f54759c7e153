package config

// Config is the westend-migrate configuration file.
type Config struct {
	Node      Node
	Migration Migration
	Recovery  Recovery
	Journal   Journal
	Metrics   Metrics
	Lock      Lock
}

// Node selects the node the bot talks to. The node must expose unsafe rpc
// methods for dry runs and pool inspection.
type Node struct {
	RPCURL string
	// Headers are added to the websocket handshake, e.g. for an
	// authenticating proxy.
	Headers map[string]string
}

type Migration struct {
	// ItemLimit and SizeLimit bound each continue_migrate. 0 uses the
	// chain's signed migration maximum.
	ItemLimit uint32
	SizeLimit uint32

	// Runs is the number of successful extrinsics after which the bot exits,
	// 0 for no limit.
	Runs  int
	Delay Duration

	RaiseChainLimits bool
	ClearPending     bool

	Pallet Pallet
}

// Pallet locates StateTrieMigration in the runtime.
type Pallet struct {
	Index              uint8
	ContinueMigrate    uint8
	SetSignedMaxLimits uint8
}

type Recovery struct {
	RetryWait       Duration
	MaxRetryWait    Duration
	BannedWait      Duration
	FinalityTimeout Duration
	BlockTime       Duration

	// PendingPollBlocks is how many blocks a pool conflict waits for the
	// pending extrinsic to clear.
	PendingPollBlocks    int
	MaxConsecutiveErrors int

	HeartbeatInterval Duration
}

type Journal struct {
	// Path is the journal directory; empty disables the journal.
	Path string
	// DisabledEvents lists system:event pairs not to record.
	DisabledEvents []string
	// NoNotify disables the notify events.
	NoNotify bool
}

type Metrics struct {
	// ListenAddress serves /metrics when set, e.g. "127.0.0.1:9477".
	ListenAddress string
}

type Lock struct {
	Dir string
}
