package events

import (
	contractsv1 "github.com/pk910/pg-onchain-weights/contracts/gen/events/v1"
)

// Envelope is the canonical cross-ledger message shape, pinned to the v1
// wire contract. Executors authenticate on the transport-level origin,
// never on envelope contents alone.
type Envelope = contractsv1.Envelope
