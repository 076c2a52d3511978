package services

import (
	domainerrors "github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/ledger-executor/domain/errors"
	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
)

// VerificationMode selects the origin check matching the transport class
// the executor is paired with.
type VerificationMode int

const (
	// VerifyPush checks the transport's local receiver as direct caller and
	// the relayed remote sender.
	VerifyPush VerificationMode = iota
	// VerifyAliased checks the remote adapter address shifted by the public
	// aliasing offset as direct caller; no relayed sender exists.
	VerifyAliased
)

// OriginVerifier authenticates deliveries on transport-level origin only.
// Envelope contents are never trusted for authentication.
type OriginVerifier struct {
	Mode VerificationMode
	// RemoteAdapter is the paired bridge adapter's address on the remote
	// ledger.
	RemoteAdapter identity.Address
	// Receiver is the transport's local endpoint, only meaningful for the
	// push class.
	Receiver identity.Address
}

func (v OriginVerifier) Verify(caller, reportedSender identity.Address) error {
	switch v.Mode {
	case VerifyPush:
		if v.Receiver.IsZero() || caller != v.Receiver {
			return domainerrors.ErrNotAuthorized
		}
		if v.RemoteAdapter.IsZero() || reportedSender != v.RemoteAdapter {
			return domainerrors.ErrNotAuthorized
		}
		return nil
	case VerifyAliased:
		if v.RemoteAdapter.IsZero() || caller != v.RemoteAdapter.Alias() {
			return domainerrors.ErrNotAuthorized
		}
		return nil
	default:
		return domainerrors.ErrNotAuthorized
	}
}
