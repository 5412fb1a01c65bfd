package jobqueue

import (
	"context"
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2/log"

	"github.com/tuanngo/coursecart/internal/pkg/archive"
	"github.com/tuanngo/coursecart/internal/pkg/database"
	"github.com/tuanngo/coursecart/internal/pkg/payment"
)

var (
	archiveClient     *archive.Client
	archiveClientOnce sync.Once
)

// getArchiveClient lazily initializes the shared S3 archive client. Returns
// nil when archiving is disabled.
func getArchiveClient() *archive.Client {
	archiveClientOnce.Do(func() {
		cfg, err := archive.LoadConfig()
		if err != nil {
			log.Errorf("[JobQueue] Archive config invalid: %v", err)
			return
		}
		if !cfg.IsEnabled() {
			log.Info("[JobQueue] Payload archiving disabled")
			return
		}
		client, err := archive.NewClient(cfg)
		if err != nil {
			log.Errorf("[JobQueue] Archive client init failed: %v", err)
			return
		}
		archiveClient = client
	})
	return archiveClient
}

// processPayloadArchiveJob uploads a recorded webhook payload to S3 and marks
// the ledger row as archived.
func (q *Queue) processPayloadArchiveJob(ctx context.Context, job *Job) error {
	payload, err := PayloadArchiveJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid payload archive job payload: %w", err)
	}

	client := getArchiveClient()
	if client == nil {
		// Archiving disabled; nothing to do.
		return nil
	}

	repo := payment.NewRepository(database.GetDB())
	event, err := repo.GetWebhookEventByID(payload.LedgerID)
	if err != nil {
		return fmt.Errorf("ledger row %d not found: %w", payload.LedgerID, err)
	}
	if event.ArchivedAt != nil {
		return nil
	}

	key, err := client.UploadPayload(ctx, event.Provider, event.ProviderEventID, event.AppliedAt, []byte(event.PayloadJSON))
	if err != nil {
		return err
	}
	if err := repo.MarkWebhookEventArchived(event.ID); err != nil {
		return fmt.Errorf("failed to mark %s archived: %w", key, err)
	}

	return nil
}
