package application

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pk910/pg-onchain-weights/internal/shared/events"
)

const schemaVersion = 1

// ResolveLogger returns the provided logger or the process default.
func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func newEnvelope(eventType string, payload any) (events.Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return events.Envelope{}, err
	}
	return events.Envelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		OccurredAt:    time.Now().UTC(),
		SourceService: "bridge-adapter",
		TraceID:       uuid.New().String(),
		SchemaVersion: schemaVersion,
		Data:          data,
	}, nil
}
