package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueNutritionRefresh = "jobs:nutrition_refresh"

	JobNutritionRefresh = "nutrition_refresh"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// Pusher is the part of the Redis client used to enqueue jobs and DLQ entries.
type Pusher interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// Consumer is the part of the Redis client a worker goroutine needs.
type Consumer interface {
	Pusher
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// popErrorBackoff is how long a worker waits after BRPOP fails for a reason
// other than the timeout, e.g. Redis being unreachable.
var popErrorBackoff = time.Second

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb Pusher
}

func NewDispatcher(rdb Pusher) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueNutritionRefresh schedules the recomputation of every ingredient
// that references foodID.
func (d *Dispatcher) EnqueueNutritionRefresh(ctx context.Context, foodID uuid.UUID) error {
	return d.enqueue(ctx, QueueNutritionRefresh, JobNutritionRefresh, NutritionRefreshPayload{FoodID: foodID.String()})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data, EnqueuedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	if err := d.rdb.LPush(ctx, queue, encoded).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", jobType, err)
	}
	return nil
}

// JobProcessor handles one decoded job payload.
type JobProcessor interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// WorkerHandlers holds the processors the pool dispatches to, keyed by job type.
type WorkerHandlers struct {
	NutritionRefresh JobProcessor
}

func (h *WorkerHandlers) lookup(jobType string) JobProcessor {
	switch jobType {
	case JobNutritionRefresh:
		return h.NutritionRefresh
	}
	return nil
}

// StartWorkerPool launches numWorkers goroutines consuming the job queues.
// Each goroutine blocks on BRPOP; zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb Consumer, handlers *WorkerHandlers, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop; waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueNutritionRefresh).Result()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				log.Warn().Err(err).Int("worker", id).Msg("worker: dequeue failed")
				select {
				case <-ctx.Done():
				case <-time.After(popErrorBackoff):
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

// processJob decodes one queue entry and runs its processor with retries.
// Jobs that still fail, or that cannot be decoded, end up in the DLQ.
func processJob(ctx context.Context, rdb Pusher, handlers *WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, rdb, queue, "unknown", json.RawMessage(raw), "undecodable job: "+err.Error(), 0)
		return
	}

	proc := handlers.lookup(job.Type)
	if proc == nil {
		log.Error().Str("type", job.Type).Str("queue", queue).Msg("no processor for job type")
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, "no processor registered", 0)
		return
	}

	attempts := 0
	err := withRetry(ctx, MaxJobAttempts, func(attempt int) error {
		attempts = attempt + 1
		err := proc.Process(ctx, job.Payload)
		if err != nil {
			log.Warn().
				Err(err).
				Str("type", job.Type).
				Int("attempt", attempts).
				Msg("job attempt failed")
		}
		return err
	})
	if err != nil {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), attempts)
		return
	}
	log.Debug().Str("type", job.Type).Int("attempts", attempts).Msg("job processed")
}
