package errors

import "errors"

var (
	ErrNotAuthorized      = errors.New("ledger-executor: delivery origin failed verification")
	ErrNotOwner           = errors.New("ledger-executor: caller is not the executor owner")
	ErrUnknownCommand     = errors.New("ledger-executor: unknown command type")
	ErrBadPayload         = errors.New("ledger-executor: command payload does not decode")
	ErrZeroSweep          = errors.New("ledger-executor: no accumulated refunds to sweep")
	ErrSweepTargetNotSet  = errors.New("ledger-executor: sweep destination not configured")
	ErrAllocationMismatch = errors.New("ledger-executor: provided allocations do not match stored split")
	ErrWalletPaused       = errors.New("ledger-executor: split wallet is paused")
)
