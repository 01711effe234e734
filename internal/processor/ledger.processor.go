package processor

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	gateway "github.com/makonda/offering-cards/internal/gateways"
	"github.com/makonda/offering-cards/internal/model"
	"github.com/makonda/offering-cards/internal/queue"
	"github.com/makonda/offering-cards/pkg/logger"
	"github.com/makonda/offering-cards/pkg/prom"
)

// LedgerMirrorProcessor pushes committed offering entries into the
// legacy church ledger. Entries are keyed by their primary id so a
// redelivered stream message never writes the ledger twice.
type LedgerMirrorProcessor struct {
	client      *gateway.Client
	idempotency *IdempotencyService
}

func NewLedgerMirrorProcessor(client *gateway.Client, idempotency *IdempotencyService) *LedgerMirrorProcessor {
	return &LedgerMirrorProcessor{
		client:      client,
		idempotency: idempotency,
	}
}

func (p *LedgerMirrorProcessor) GetType() string {
	return "ledger_mirror"
}

// Process mirrors one entry with idempotency guarantees.
func (p *LedgerMirrorProcessor) Process(ctx context.Context, queueMessage *queue.Message) error {
	var record model.MirrorRecord
	if err := json.Unmarshal(queueMessage.Data, &record); err != nil {
		logger.Error("Failed to unmarshal mirror record", "error", err)
		return err // Return error to trigger DLQ move
	}

	entryID := strconv.FormatInt(record.EntryID, 10)

	procCtx, err := p.idempotency.AcquireProcessingLock(ctx, entryID)
	if err != nil {
		if errors.Is(err, ErrAlreadyProcessed) {
			// Entry already mirrored - ACK to remove from queue
			logger.Info("Entry already mirrored, skipping", "entry_id", entryID)
			return nil
		}
		if errors.Is(err, ErrMaxRetriesExceeded) {
			// Give up: the primary record stands, the mirror stays
			// behind until someone replays it from the DLQ.
			logger.Error("Max mirror retries exceeded", "entry_id", entryID)
			return nil
		}
		if errors.Is(err, ErrLockAcquireFailed) {
			// Another consumer is processing - NACK to retry later
			logger.Info("Lock held by another consumer, will retry", "entry_id", entryID)
			return errors.New("lock held by another consumer")
		}
		logger.Error("Failed to acquire lock", "entry_id", entryID, "error", err)
		return err
	}

	defer func() {
		if procCtx.lockAcquired {
			p.idempotency.ReleaseLock(ctx, procCtx)
		}
	}()

	logger.Info("Mirroring entry",
		"entry_id", entryID,
		"card_code", record.CardCode,
		"retry_count", procCtx.RetryCount,
		"is_retry", procCtx.IsRetry)

	req := &gateway.RecordRequest{
		EntryID:     record.EntryID,
		CardCode:    record.CardCode,
		PayerID:     record.PayerID,
		EntryType:   record.EntryType,
		Amount:      record.Amount,
		ServiceDate: record.ServiceDate,
		MassType:    record.MassType,
	}

	start := time.Now()
	res, err := p.client.Record(ctx, req)
	if err != nil {
		prom.ObserveMirrorDuration(time.Since(start).Seconds(), "failure")
		logger.Error("Failed to mirror entry", "entry_id", entryID, "error", err)
		if markErr := p.idempotency.MarkFailure(ctx, procCtx, err); markErr != nil {
			logger.Error("Failed to mark failure", "entry_id", entryID, "error", markErr)
		}
		return err // NACK to retry from queue
	}

	prom.ObserveMirrorDuration(time.Since(start).Seconds(), "success")
	logger.Info("Entry mirrored",
		"entry_id", entryID,
		"ledger_id", res.ID,
		"status", res.Status,
		"retry_count", procCtx.RetryCount)

	if markErr := p.idempotency.MarkSuccess(ctx, procCtx); markErr != nil {
		logger.Error("Failed to mark success", "entry_id", entryID, "error", markErr)
		// Continue - the entry was mirrored
	}

	return nil // ACK message
}
