package worker

// path_sweeper.go
// Background goroutine that periodically recomputes category paths from the
// parent chain. A rename or move cascade that stopped halfway leaves
// descendants with stale paths; the sweeper brings them back in line.

import (
	"context"
	"time"

	"recipebox/internal/service"

	"github.com/rs/zerolog/log"
)

const defaultSweepInterval = 5 * time.Minute

// PathRepairer is the part of CategoryService the sweeper needs.
type PathRepairer interface {
	RepairPaths(ctx context.Context) (int, error)
}

var _ PathRepairer = service.CategoryService(nil)

// StartPathSweeper launches the sweeper. It stops when ctx is cancelled.
func StartPathSweeper(ctx context.Context, repairer PathRepairer, interval time.Duration) {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("path_sweeper: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("path_sweeper: shutting down")
				return
			case <-ticker.C:
				sweep(ctx, repairer)
			}
		}
	}()
}

func sweep(ctx context.Context, repairer PathRepairer) {
	fixed, err := repairer.RepairPaths(ctx)
	if err != nil {
		log.Error().Err(err).Msg("path_sweeper: repair failed")
		return
	}
	if fixed > 0 {
		log.Warn().Int("fixed", fixed).Msg("path_sweeper: repaired stale category paths")
	}
}
