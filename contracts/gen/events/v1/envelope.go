package v1

import (
	"encoding/json"
	"time"
)

// Envelope is the canonical, versioned bridge message envelope for
// cross-runtime use. This package is generated-contract-only and must stay
// backward compatible with every deployed executor.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	SourceService string          `json:"source_service"`
	TraceID       string          `json:"trace_id"`
	SchemaVersion int             `json:"schema_version"`
	LedgerID      string          `json:"ledger_id"`
	Sender        string          `json:"sender"`
	Data          json.RawMessage `json:"data"`
}
