package migrate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/xerrors"

	"github.com/trie-migrate/westend-migrate/lib/jsonrpc"
)

// Kind classifies every failure the bot can observe.
type Kind int

const (
	KindUnknown Kind = iota

	// recoverable
	ReadFailure
	PreflightRejected
	PoolConflict
	NonceStale
	Transient
	FinalityTimeout
	Dropped
	Invalid
	Usurped

	// fatal
	BalanceDecreased
	SigningFailure
	PermissionDenied
	ConfigurationError
	TooManyErrors

	// terminal, not errors
	MaxAttemptsReached
	MigrationComplete
)

var kindNames = [...]string{
	KindUnknown:        "Unknown",
	ReadFailure:        "ReadFailure",
	PreflightRejected:  "PreflightRejected",
	PoolConflict:       "PoolConflict",
	NonceStale:         "NonceStale",
	Transient:          "Transient",
	FinalityTimeout:    "FinalityTimeout",
	Dropped:            "Dropped",
	Invalid:            "Invalid",
	Usurped:            "Usurped",
	BalanceDecreased:   "BalanceDecreased",
	SigningFailure:     "SigningFailure",
	PermissionDenied:   "PermissionDenied",
	ConfigurationError: "ConfigurationError",
	TooManyErrors:      "TooManyErrors",
	MaxAttemptsReached: "MaxAttemptsReached",
	MigrationComplete:  "MigrationComplete",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Recoverable kinds are retried by the driver.
func (k Kind) Recoverable() bool {
	return k >= ReadFailure && k <= Usurped
}

// Fatal kinds stop the driver with a non-zero exit.
func (k Kind) Fatal() bool {
	return k >= BalanceDecreased && k <= TooManyErrors
}

// Error is a classified failure. It never carries key material: causes are
// RPC and codec errors, which see only public data.
type Error struct {
	Kind Kind
	Err  error

	// resolve routes a submission failure to the resolver.
	resolve bool
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

// Message is the error without its kind prefix.
func (e *Error) Message() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the bare sentinels, so errors.Is(err, ErrPoolConflict) holds
// for every PoolConflict error and every error caused by one. KindOf gives
// the outermost kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrReadFailure        = &Error{Kind: ReadFailure}
	ErrPreflightRejected  = &Error{Kind: PreflightRejected}
	ErrPoolConflict       = &Error{Kind: PoolConflict}
	ErrNonceStale         = &Error{Kind: NonceStale}
	ErrTransient          = &Error{Kind: Transient}
	ErrFinalityTimeout    = &Error{Kind: FinalityTimeout}
	ErrDropped            = &Error{Kind: Dropped}
	ErrInvalid            = &Error{Kind: Invalid}
	ErrUsurped            = &Error{Kind: Usurped}
	ErrBalanceDecreased   = &Error{Kind: BalanceDecreased}
	ErrSigningFailure     = &Error{Kind: SigningFailure}
	ErrPermissionDenied   = &Error{Kind: PermissionDenied}
	ErrConfiguration      = &Error{Kind: ConfigurationError}
	ErrTooManyErrors      = &Error{Kind: TooManyErrors}
	ErrMaxAttemptsReached = &Error{Kind: MaxAttemptsReached}
	ErrMigrationComplete  = &Error{Kind: MigrationComplete}

	// ErrTxBanned is wrapped in a Transient error when the pool has
	// temporarily banned the extrinsic.
	ErrTxBanned = xerrors.New("transaction is temporarily banned")
)

// Errorf builds a classified error. The format follows xerrors.Errorf, so %w
// keeps the cause inspectable.
func Errorf(kind Kind, format string, a ...interface{}) error {
	return &Error{Kind: kind, Err: xerrors.Errorf(format, a...)}
}

func resolvable(err error) error {
	var e *Error
	if errors.As(err, &e) {
		cp := *e
		cp.resolve = true
		return &cp
	}
	return &Error{Kind: Transient, Err: err, resolve: true}
}

func needsResolution(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.resolve
}

// KindOf classifies err. Unclassified errors are Transient, context errors
// KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindUnknown
	}
	return Transient
}

// Transaction pool error codes returned by author_submit*.
const (
	rpcInvalidTransaction = 1010
	rpcUnknownTransaction = 1011
	rpcTemporarilyBanned  = 1012
	rpcAlreadyImported    = 1013
	rpcPriorityTooLow     = 1014
	rpcCycleDetected      = 1015
	rpcImmediatelyDropped = 1016
	rpcUnactionable       = 1017
	rpcMethodNotFound     = -32601
)

// ClassifySubmitError classifies an author_submitAndWatchExtrinsic failure.
// Pool and nonce classes, and transport failures where the node may have
// accepted the extrinsic, are marked for the resolver.
func ClassifySubmitError(err error) error {
	var rerr *jsonrpc.RPCError
	if !errors.As(err, &rerr) {
		return resolvable(Errorf(Transient, "submitting extrinsic: %w", err))
	}

	switch rerr.Code {
	case rpcPriorityTooLow:
		return resolvable(Errorf(PoolConflict, "priority too low: %w", err))
	case rpcAlreadyImported:
		return resolvable(Errorf(PoolConflict, "already imported: %w", err))
	case rpcInvalidTransaction:
		return resolvable(Errorf(Invalid, "invalid transaction: %w", err))
	case rpcTemporarilyBanned:
		return &Error{Kind: Transient, Err: fmt.Errorf("%w: %w", ErrTxBanned, err)}
	case rpcImmediatelyDropped:
		return Errorf(Dropped, "immediately dropped: %w", err)
	case rpcUnknownTransaction, rpcCycleDetected, rpcUnactionable:
		return Errorf(Invalid, "rejected by pool: %w", err)
	}
	return Errorf(Transient, "submitting extrinsic: %w", err)
}

// classifyDryRunCallError classifies a failed system_dryRun call, as opposed
// to a dry run that reported a failure.
func classifyDryRunCallError(err error) error {
	var rerr *jsonrpc.RPCError
	if errors.As(err, &rerr) {
		msg := strings.ToLower(rerr.Message + " " + rerr.DataString())
		if strings.Contains(msg, "unsafe") {
			return Errorf(ConfigurationError, "system_dryRun needs a node with --rpc-methods=unsafe: %w", err)
		}
		if rerr.Code == rpcMethodNotFound {
			return Errorf(ConfigurationError, "node does not expose system_dryRun: %w", err)
		}
	}
	return Errorf(Transient, "dry run call failed: %w", err)
}
