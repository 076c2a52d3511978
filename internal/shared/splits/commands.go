package splits

import "github.com/pk910/pg-onchain-weights/internal/shared/identity"

// Bridge command event types. The command surface is identical across both
// transport classes; only fee handling differs inside the adapters.
const (
	CommandUpdateSplit       = "split.update"
	CommandDistribute        = "split.distribute"
	CommandExecCalls         = "split.exec_calls"
	CommandSetPaused         = "split.set_paused"
	CommandTransferOwnership = "split.transfer_ownership"

	// BridgeNoop is the administrative no-op used to trigger refund
	// forwarding on the dependent ledger.
	BridgeNoop = "bridge.noop"

	// BridgeRefund marks an inbound value transfer with no command payload.
	BridgeRefund = "bridge.refund"
)

type UpdateSplitCommand struct {
	Allocations AllocationSet `json:"allocations"`
}

type DistributeCommand struct {
	Allocations        AllocationSet    `json:"allocations"`
	AssetID            string           `json:"asset_id"`
	IncentiveRecipient identity.Address `json:"incentive_recipient"`
	Amount             string           `json:"amount,omitempty"`
	Warehouse          bool             `json:"warehouse,omitempty"`
}

type ExecCallsCommand struct {
	Calls []byte `json:"calls"`
}

type SetPausedCommand struct {
	Paused bool `json:"paused"`
}

type TransferOwnershipCommand struct {
	NewOwner identity.Address `json:"new_owner"`
}
