package worker

// requeue.go
// Background goroutine that periodically re-drives DLQ entries back onto
// their original queue. Transient failures (SMTP outage, DB restart) resolve
// themselves this way without manual intervention; entries that keep failing
// bounce back to the DLQ with a fresh timestamp.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	requeueTickInterval = 5 * time.Minute
	requeueCooldown     = 10 * time.Minute
	requeueBatchSize    = 10
)

// StartRequeueCron launches a background goroutine that ticks every 5m and
// re-enqueues DLQ entries older than the cooldown. It respects the context
// for graceful shutdown.
func StartRequeueCron(ctx context.Context, rdb *redis.Client) {
	go func() {
		ticker := time.NewTicker(requeueTickInterval)
		defer ticker.Stop()

		log.Info().Msg("requeue_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("requeue_cron: shutting down")
				return
			case <-ticker.C:
				for _, queue := range []string{QueueClosingReport, QueueEmail} {
					requeueBatch(ctx, rdb, queue)
				}
			}
		}
	}()
}

func requeueBatch(ctx context.Context, rdb *redis.Client, queue string) {
	dlqKey := DLQPrefix + queue
	for i := 0; i < requeueBatchSize; i++ {
		raw, err := rdb.RPop(ctx, dlqKey).Result()
		if err != nil {
			return // empty or redis down — next tick retries
		}

		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Error().Err(err).Str("dlq", dlqKey).Msg("requeue_cron: corrupt DLQ entry dropped")
			continue
		}

		failedAt, err := time.Parse(time.RFC3339, entry.FailedAt)
		if err == nil && time.Since(failedAt) < requeueCooldown {
			// Too fresh — put it back and stop; everything behind it is newer.
			_ = rdb.RPush(ctx, dlqKey, raw).Err()
			return
		}

		// Attempts reset to zero: the job gets a full round of retries.
		job := Job{Type: entry.JobType, Payload: entry.Payload}
		encoded, err := json.Marshal(job)
		if err != nil {
			continue
		}
		if err := rdb.LPush(ctx, queue, encoded).Err(); err != nil {
			log.Error().Err(err).Str("queue", queue).Msg("requeue_cron: failed to requeue")
			_ = rdb.RPush(ctx, dlqKey, raw).Err()
			return
		}
		log.Info().Str("queue", queue).Str("type", entry.JobType).
			Msg("requeue_cron: DLQ entry re-driven")
	}
}
