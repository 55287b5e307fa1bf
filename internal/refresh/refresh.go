// Package refresh runs the periodic background cycle: rebuilding the
// season index and warming the season-skills caches so interactive
// lookups rarely pay an upstream round trip.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/index"
	"github.com/okian/podium/pkg/logger"
)

// defaultInterval is the spacing between refresh cycles.
const defaultInterval = 6 * time.Hour

// grades warmed per season during prefetch.
var warmedGrades = []string{"High School", "Middle School", "Elementary School", "College"}

// Warmer prefetches derived season data; the gateway satisfies it.
type Warmer interface {
	SeasonSkills(ctx context.Context, seasonID int, grade string) []model.SkillsRanking
}

// Worker drives the refresh cycle on a ticker. Cycles run serially; the
// index's own guard drops a cycle that would overlap a running one.
type Worker struct {
	index    *index.Index
	warmer   Warmer
	interval time.Duration
	logger   logger.Logger

	stopOnce sync.Once
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithInterval sets the spacing between refresh cycles.
func WithInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithWarmer enables season-skills prefetch after each rebuild.
func WithWarmer(warmer Warmer) Option {
	return func(w *Worker) {
		w.warmer = warmer
	}
}

// NewWorker creates a stopped Worker over the given index.
func NewWorker(idx *index.Index, opts ...Option) *Worker {
	w := &Worker{
		index:    idx,
		interval: defaultInterval,
		logger:   logger.Get().Named("refresh"),
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start launches the background loop. The first cycle runs immediately
// so the index is usable without waiting a full interval.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.cycle(ctx)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.stopChan:
				return
			case <-ticker.C:
				w.cycle(ctx)
			}
		}
	}()
}

// Stop halts the loop and waits for an in-flight cycle to finish.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
	})
	w.wg.Wait()
}

// cycle runs one rebuild plus warm pass.
func (w *Worker) cycle(ctx context.Context) {
	if !w.index.Rebuild(ctx) {
		return
	}
	w.warm(ctx)
}

// warm prefetches season-skills standings for every indexed season. The
// gateway caches each reply, so subsequent interactive lookups hit the
// cache instead of the upstream.
func (w *Worker) warm(ctx context.Context) {
	if w.warmer == nil {
		return
	}
	for _, season := range w.index.Seasons() {
		for _, grade := range warmedGrades {
			if ctx.Err() != nil {
				return
			}
			w.warmer.SeasonSkills(ctx, season.ID, grade)
		}
	}
	w.logger.Debug(ctx, "season skills warmed",
		logger.Int("seasons", w.index.Len()))
}
