package outbox

// Ticket is a bridge submission recorded alongside the transport handoff.
// The worker relay re-submits stuck tickets with bumped fees.
type Ticket struct {
	ID         string
	LedgerID   string
	EventType  string
	Payload    []byte
	Status     string // pending, delivered, failed
	RetryCount int
}

const (
	StatusPending   = "pending"
	StatusDelivered = "delivered"
	StatusFailed    = "failed"
)
