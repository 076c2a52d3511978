package errors

import "errors"

var (
	ErrNotAuthorized        = errors.New("coordinator: caller is not the coordinator owner")
	ErrRegistryNotSet       = errors.New("coordinator: weight source not configured")
	ErrPrimaryObjectNotSet  = errors.New("coordinator: primary allocation object not configured")
	ErrEmptyWeights         = errors.New("coordinator: weight computation returned no entries")
	ErrInvalidEntry         = errors.New("coordinator: zero address or zero weight entry")
	ErrWeightOverflow       = errors.New("coordinator: raw weights exceed the uint64 total")
	ErrLedgerMismatch       = errors.New("coordinator: adapter reports a different ledger id")
	ErrBridgeExists         = errors.New("coordinator: ledger already has a registered adapter")
	ErrBridgeNotFound       = errors.New("coordinator: no adapter registered for ledger")
	ErrUnknownTarget        = errors.New("coordinator: target is neither the primary ledger nor a registered adapter")
)
