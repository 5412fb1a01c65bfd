package jobqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/tuanngo/coursecart/internal/pkg/database"
	"github.com/tuanngo/coursecart/internal/pkg/payment"
)

// processLedgerPruneJob deletes applied-event rows older than the retention
// window. The window must outlive the providers' redelivery horizon; pruning
// too early would let a very late redelivery re-apply an event.
func (q *Queue) processLedgerPruneJob(ctx context.Context, job *Job) error {
	payload, err := LedgerPruneJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid ledger prune job payload: %w", err)
	}
	if payload.RetentionDays < 1 {
		return fmt.Errorf("retention_days must be >= 1, got %d", payload.RetentionDays)
	}

	cutoff := time.Now().AddDate(0, 0, -payload.RetentionDays)
	svc := payment.NewServiceFromDB(database.GetDB())
	deleted, err := svc.PruneLedger(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("ledger prune failed: %w", err)
	}

	if deleted > 0 {
		log.Infof("[JobQueue] Pruned %d ledger rows older than %s", deleted, cutoff.Format(time.RFC3339))
	}
	return nil
}
