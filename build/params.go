package build

import "time"

// /////
// Network

// DefaultRPC is the public Westend Asset Hub endpoint.
const DefaultRPC = "wss://westend-asset-hub-rpc.polkadot.io"

// SS58Prefix is the generic substrate address format used by Westend.
const SS58Prefix uint16 = 42

const TokenSymbol = "WND"
const TokenDecimals = 12

// /////
// Timing

// BlockDelay is the expected block time.
const BlockDelay = 6 * time.Second

// FinalityTimeout bounds how long a submitted extrinsic is watched.
const FinalityTimeout = 20 * BlockDelay

// PendingTxPollIterations is how many blocks the bot waits for a stuck pool
// entry to clear before retrying anyway.
const PendingTxPollIterations = 20

const RetryWait = 2 * BlockDelay
const BannedTxWait = 60 * time.Second
const MaxRetryWait = 2 * time.Minute

const HeartbeatInterval = 60 * time.Second

// /////
// Safety

const MaxConsecutiveErrors = 5

const MaxDryRunRetries = 3
const DryRunRetryDelay = 500 * time.Millisecond

// SizeUpperFactor scales the size limit into the real_size_upper argument of
// continue_migrate.
const SizeUpperFactor = 2

// Limits applied when the chain reports no signed migration limits.
const (
	DefaultItemLimit uint32 = 4096
	DefaultSizeLimit uint32 = 409600
)

// MortalPeriod is the mortality window of signed extrinsics, in blocks.
const MortalPeriod = 64

// /////
// Process

const DefaultLockDir = "/tmp"
const LockFileName = "westend-migrate.lock"
