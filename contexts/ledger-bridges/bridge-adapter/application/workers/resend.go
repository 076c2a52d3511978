package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/bridge-adapter/application"
	"github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/bridge-adapter/ports"
)

const (
	defaultInterval   = 30 * time.Second
	defaultMaxRetries = 5
)

// ResendWorker periodically replays pending tickets through the fee-funded
// adapter, bumping the per-gas fee on every attempt. Tickets that burn
// through the retry budget are parked as failed for operator inspection.
type ResendWorker struct {
	Adapter    *application.RetryableAdapter
	Tickets    ports.TicketStore
	Interval   time.Duration
	MaxRetries int
	Logger     *slog.Logger
}

func (w ResendWorker) Run(ctx context.Context) error {
	interval := w.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger := application.ResolveLogger(w.Logger)
	logger.Info("resend worker started",
		"event", "bridge.resend_worker_started",
		"module", "bridge-adapter",
		"layer", "worker",
		"interval", interval.String(),
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep replays every pending ticket once.
func (w ResendWorker) Sweep(ctx context.Context) {
	logger := application.ResolveLogger(w.Logger)
	maxRetries := w.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	pending, err := w.Tickets.Pending(ctx)
	if err != nil {
		logger.Error("ticket scan failed",
			"event", "bridge.resend_scan_failed",
			"module", "bridge-adapter",
			"layer", "worker",
			"error", err,
		)
		return
	}
	for _, ticket := range pending {
		if err := w.Adapter.Resend(ctx, ticket); err != nil {
			if ticket.RetryCount+1 >= maxRetries {
				_ = w.Tickets.MarkFailed(ctx, ticket.ID)
				logger.Error("ticket exhausted retries",
					"event", "bridge.resend_exhausted",
					"module", "bridge-adapter",
					"layer", "worker",
					"ticket_id", ticket.ID,
					"retries", ticket.RetryCount+1,
				)
				continue
			}
			_ = w.Tickets.IncrementRetry(ctx, ticket.ID)
			logger.Warn("ticket resend failed",
				"event", "bridge.resend_failed",
				"module", "bridge-adapter",
				"layer", "worker",
				"ticket_id", ticket.ID,
				"retries", ticket.RetryCount+1,
				"error", err,
			)
			continue
		}
		_ = w.Tickets.MarkDelivered(ctx, ticket.ID)
		logger.Info("ticket delivered",
			"event", "bridge.resend_delivered",
			"module", "bridge-adapter",
			"layer", "worker",
			"ticket_id", ticket.ID,
		)
	}
}
