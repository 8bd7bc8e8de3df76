package worker

// nutrition_worker.go
// Processes jobs from QueueNutritionRefresh: after a food's profile or serving
// size changes, every ingredient pointing at it is recomputed and each
// affected recipe snapshot is re-aggregated.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"recipebox/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MaxJobAttempts bounds how often a job is tried before it goes to the DLQ.
const MaxJobAttempts = 3

// retryBaseDelay is the first backoff step; later steps double it.
var retryBaseDelay = time.Second

// NutritionRefreshPayload is the job body sent to QueueNutritionRefresh.
type NutritionRefreshPayload struct {
	FoodID string `json:"food_id"`
}

var _ service.RefreshQueue = (*Dispatcher)(nil)

// NutritionRefreshWorker recomputes derived nutrition for one food.
type NutritionRefreshWorker struct {
	nutrition service.NutritionService
}

func NewNutritionRefreshWorker(nutritionSvc service.NutritionService) *NutritionRefreshWorker {
	return &NutritionRefreshWorker{nutrition: nutritionSvc}
}

// Process implements JobProcessor.
func (w *NutritionRefreshWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload NutritionRefreshPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	foodID, err := uuid.Parse(payload.FoodID)
	if err != nil {
		return fmt.Errorf("invalid food_id %q: %w", payload.FoodID, err)
	}

	start := time.Now()
	n, err := w.nutrition.RefreshFood(ctx, foodID)
	if err != nil {
		return err
	}
	log.Info().
		Str("food_id", foodID.String()).
		Int("recipes", n).
		Dur("took", time.Since(start)).
		Msg("nutrition_worker: food refreshed")
	return nil
}

// withRetry calls fn up to maxAttempts times with exponential backoff:
// immediately, then after retryBaseDelay, then twice that.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := retryBaseDelay * time.Duration(1<<uint(i-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
