package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// BatchProcessor runs a function over a list in fixed-size chunks, pausing
// between chunks. A failed chunk is logged and the rest still run.
type BatchProcessor struct {
	batchSize int
	pause     time.Duration
	processor func(ctx context.Context, userIDs []uint) error
}

func NewBatchProcessor(batchSize int, pause time.Duration, processor func(ctx context.Context, userIDs []uint) error) *BatchProcessor {
	if batchSize < 1 {
		batchSize = 1
	}
	return &BatchProcessor{
		batchSize: batchSize,
		pause:     pause,
		processor: processor,
	}
}

// ProcessInBatches returns the number of failed batches, or the context's
// error if it was cancelled first.
func (bp *BatchProcessor) ProcessInBatches(ctx context.Context, userIDs []uint) (int, error) {
	failed := 0
	for i := 0; i < len(userIDs); i += bp.batchSize {
		end := i + bp.batchSize
		if end > len(userIDs) {
			end = len(userIDs)
		}

		if err := bp.processor(ctx, userIDs[i:end]); err != nil {
			failed++
			logrus.WithFields(logrus.Fields{
				"from": i,
				"to":   end,
			}).WithError(err).Error("Batch failed")
		}

		if end < len(userIDs) && bp.pause > 0 {
			select {
			case <-ctx.Done():
				return failed, ctx.Err()
			case <-time.After(bp.pause):
			}
		}
	}
	return failed, nil
}
