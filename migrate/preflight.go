package migrate

import (
	"context"
	"errors"
	"time"

	"github.com/trie-migrate/westend-migrate/api"
	"github.com/trie-migrate/westend-migrate/build"
	"github.com/trie-migrate/westend-migrate/chain/extrinsic"
	"github.com/trie-migrate/westend-migrate/chain/metadata"
	"github.com/trie-migrate/westend-migrate/lib/retry"
)

const methodDryRun = "system_dryRun"

// Validator dry runs a freshly signed blob before anything is submitted.
// The blob it signs is never submitted.
type Validator struct {
	node   api.Node
	reader *StateReader
	signer extrinsic.Signer
	pallet metadata.Pallet

	attempts   int
	retryDelay time.Duration
}

func NewValidator(node api.Node, reader *StateReader, signer extrinsic.Signer, pallet metadata.Pallet) *Validator {
	return &Validator{
		node:       node,
		reader:     reader,
		signer:     signer,
		pallet:     pallet,
		attempts:   build.MaxDryRunRetries,
		retryDelay: build.DryRunRetryDelay,
	}
}

// CheckAvailable fails with ConfigurationError when the node does not expose
// system_dryRun.
func (v *Validator) CheckAvailable(ctx context.Context) error {
	methods, err := v.node.RPCMethods(ctx)
	if err != nil {
		return Errorf(ReadFailure, "listing rpc methods: %w", err)
	}
	if methods == nil || !methods.Has(methodDryRun) {
		return Errorf(ConfigurationError, "node does not expose %s; run it with --rpc-methods=unsafe", methodDryRun)
	}
	return nil
}

// Validate signs call with the current nonce and dry runs it. A stale nonce
// is retried with a fresh read and a fresh signature.
func (v *Validator) Validate(ctx context.Context, call extrinsic.Call) (*extrinsic.Signed, error) {
	return retry.Retry(ctx, v.attempts, v.retryDelay, func(err error) bool {
		return errors.Is(err, ErrNonceStale)
	}, func() (*extrinsic.Signed, error) {
		return v.dryRun(ctx, call)
	})
}

func (v *Validator) dryRun(ctx context.Context, call extrinsic.Call) (*extrinsic.Signed, error) {
	acct, err := v.reader.AccountSnapshot(ctx, nil)
	if err != nil {
		return nil, err
	}
	params, err := v.reader.SigningParams(ctx, acct.Nonce)
	if err != nil {
		return nil, err
	}
	signed, err := extrinsic.Sign(call, params, v.signer)
	if err != nil {
		return nil, Errorf(SigningFailure, "signing dry run extrinsic: %w", err)
	}

	raw, err := v.node.SystemDryRun(ctx, signed.Bytes, nil)
	if err != nil {
		return nil, classifyDryRunCallError(err)
	}
	res, err := extrinsic.DecodeApplyResult(raw, v.pallet)
	if err != nil {
		return nil, Errorf(PreflightRejected, "%w", err)
	}
	if err := ClassifyApplyResult(res); err != nil {
		log.Debugw("dry run failed", "nonce", acct.Nonce, "error", err)
		return nil, err
	}
	log.Debugw("dry run ok", "nonce", acct.Nonce, "hash", signed.Hash)
	return signed, nil
}

// ClassifyApplyResult maps a dry run result onto the error taxonomy.
func ClassifyApplyResult(res extrinsic.ApplyResult) error {
	if res.Ok() {
		return nil
	}
	if ve := res.Validity; ve != nil {
		switch ve.Name {
		case "Stale":
			return Errorf(NonceStale, "dry run: %w", ve)
		case "Future":
			return Errorf(PoolConflict, "dry run: %w", ve)
		case "BadProof", "BadSigner":
			return Errorf(SigningFailure, "dry run: %w", ve)
		}
		return Errorf(PreflightRejected, "dry run: %w", ve)
	}

	de := res.Dispatch
	switch {
	case de.Name == "BadOrigin", de.Name == "RootNotAllowed":
		return Errorf(PermissionDenied, "dry run: %w", de)
	case de.Module != nil && de.Module.Name == "SignedMigrationNotAllowed":
		return Errorf(PermissionDenied, "dry run: controller is not allowed to migrate: %w", de)
	}
	return Errorf(PreflightRejected, "dry run: %w", de)
}
