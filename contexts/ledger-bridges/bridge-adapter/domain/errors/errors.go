package errors

import "errors"

var (
	ErrNotAuthorized         = errors.New("bridge-adapter: caller is neither coordinator nor recovery owner")
	ErrNotOwner              = errors.New("bridge-adapter: caller is not the recovery owner")
	ErrCoordinatorAlreadySet = errors.New("bridge-adapter: coordinator endpoint already registered")
	ErrCoordinatorNotSet     = errors.New("bridge-adapter: coordinator endpoint not registered")
	ErrExecutorAlreadySet    = errors.New("bridge-adapter: executor endpoint already registered")
	ErrExecutorNotSet        = errors.New("bridge-adapter: executor endpoint not registered")
	ErrInsufficientFee       = errors.New("bridge-adapter: fee balance below required submission fee")
	ErrInsufficientBalance   = errors.New("bridge-adapter: withdrawal exceeds fee balance")
	ErrInvalidFeeParams      = errors.New("bridge-adapter: fee parameters must be non-negative")
	ErrInvalidAmount         = errors.New("bridge-adapter: amount must be positive")
	ErrTicketNotFound        = errors.New("bridge-adapter: resend ticket not found")
)
