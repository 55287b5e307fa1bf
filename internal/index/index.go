// Package index maintains the season index: a precomputed mapping from
// event identifier to owning season. The index is rebuilt wholesale and
// swapped behind an atomic pointer, so readers never take a lock and
// never observe a partially built table.
package index

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// defaultFetchDelay is the pause between uncached per-season event
// fetches during a rebuild, respecting the upstream rate limit. A season
// whose listing is already cached is indexed without pausing.
const defaultFetchDelay = 10 * time.Second

// defaultPrograms is the program allow-list indexed by default.
var defaultPrograms = []string{"V5RC", "VURC"}

// Source supplies the season and event listings a rebuild consumes.
type Source interface {
	Seasons(ctx context.Context) []model.Season
	SeasonEvents(ctx context.Context, season model.Season) []model.Event
	IsSeasonEventsCached(ctx context.Context, seasonID int) bool
}

// Entry binds one season to the ordered set of its event identifiers.
// Identifier ranges of different seasons may overlap, so resolution
// requires exact membership, not just range containment.
type Entry struct {
	Season model.Season
	Min    int
	Max    int
	IDs    []int
}

// contains reports exact membership of id in the entry's event set.
func (e Entry) contains(id int) bool {
	if id < e.Min || id > e.Max {
		return false
	}
	i := sort.SearchInts(e.IDs, id)
	return i < len(e.IDs) && e.IDs[i] == id
}

// snapshot is one complete generation of the index.
type snapshot struct {
	entries []Entry
	builtAt time.Time
}

// Index resolves event identifiers to seasons without a per-lookup
// network call.
type Index struct {
	source   Source
	programs map[string]struct{}
	delay    time.Duration
	logger   logger.Logger

	snapshot atomic.Pointer[snapshot]
	// rebuildMu serializes rebuilds; an overlapping trigger is skipped,
	// not queued.
	rebuildMu sync.Mutex
}

// Option applies a configuration option to the Index.
type Option func(*Index)

// WithPrograms replaces the program allow-list.
func WithPrograms(codes []string) Option {
	return func(idx *Index) {
		if len(codes) == 0 {
			return
		}
		idx.programs = make(map[string]struct{}, len(codes))
		for _, code := range codes {
			idx.programs[code] = struct{}{}
		}
	}
}

// WithFetchDelay sets the pause between uncached season fetches.
func WithFetchDelay(d time.Duration) Option {
	return func(idx *Index) {
		if d >= 0 {
			idx.delay = d
		}
	}
}

// New creates an empty Index over the given source. The index holds no
// entries until the first Rebuild completes.
func New(source Source, opts ...Option) *Index {
	idx := &Index{
		source: source,
		delay:  defaultFetchDelay,
		logger: logger.Get().Named("index"),
	}
	WithPrograms(defaultPrograms)(idx)
	for _, opt := range opts {
		opt(idx)
	}
	idx.snapshot.Store(&snapshot{})
	return idx
}

// Rebuild fetches every allow-listed season's event listing and swaps in
// a fresh snapshot. A rebuild already in flight makes this call a no-op;
// rebuilds are serialized, never stacked. Returns false when the rebuild
// was skipped or produced nothing.
func (idx *Index) Rebuild(ctx context.Context) bool {
	if !idx.rebuildMu.TryLock() {
		metrics.RecordIndexRebuildSkipped()
		idx.logger.Warn(ctx, "rebuild already in progress, skipping")
		return false
	}
	defer idx.rebuildMu.Unlock()

	start := time.Now()
	seasons := idx.source.Seasons(ctx)
	entries := make([]Entry, 0, len(seasons))
	throttled := false
	for _, season := range seasons {
		if _, ok := idx.programs[season.Program.Code]; !ok {
			continue
		}
		if !idx.source.IsSeasonEventsCached(ctx, season.ID) {
			// The pause spaces consecutive uncached fetches; the first
			// one goes out immediately.
			if throttled && !idx.pause(ctx) {
				idx.logger.Warn(ctx, "rebuild canceled",
					logger.Int("indexed", len(entries)))
				return false
			}
			throttled = true
		}
		entry, ok := buildEntry(ctx, idx.source, season)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	if ctx.Err() != nil {
		return false
	}

	idx.snapshot.Store(&snapshot{entries: entries, builtAt: time.Now()})
	ms := float64(time.Since(start).Milliseconds())
	metrics.RecordIndexRebuild(ms, len(entries), time.Now().Unix())
	idx.logger.Info(ctx, "index rebuilt",
		logger.Int("seasons", len(entries)),
		logger.Duration("took", time.Since(start)),
	)
	return true
}

// pause waits the configured fetch delay, or returns false if the
// context ends first.
func (idx *Index) pause(ctx context.Context) bool {
	if idx.delay == 0 {
		return true
	}
	t := time.NewTimer(idx.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// buildEntry collects a season's event identifiers into a sorted set.
// Seasons yielding zero events are dropped.
func buildEntry(ctx context.Context, source Source, season model.Season) (Entry, bool) {
	events := source.SeasonEvents(ctx, season)
	if len(events) == 0 {
		return Entry{}, false
	}
	ids := make([]int, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}
	sort.Ints(ids)
	return Entry{
		Season: season,
		Min:    ids[0],
		Max:    ids[len(ids)-1],
		IDs:    ids,
	}, true
}

// Resolve maps an event identifier to its owning season. A non-empty
// programCode restricts the scan to that program. The range bound is a
// fast reject; ownership is decided by exact membership.
func (idx *Index) Resolve(eventID int, programCode string) (model.Season, bool) {
	snap := idx.snapshot.Load()
	for _, entry := range snap.entries {
		if programCode != "" && entry.Season.Program.Code != programCode {
			continue
		}
		if entry.contains(eventID) {
			return entry.Season, true
		}
	}
	return model.Season{}, false
}

// Seasons lists the seasons in the current snapshot, newest generation
// of the index only.
func (idx *Index) Seasons() []model.Season {
	snap := idx.snapshot.Load()
	out := make([]model.Season, 0, len(snap.entries))
	for _, entry := range snap.entries {
		out = append(out, entry.Season)
	}
	return out
}

// BuiltAt reports when the current snapshot was built; the zero time
// means no rebuild has completed yet.
func (idx *Index) BuiltAt() time.Time {
	return idx.snapshot.Load().builtAt
}

// Len reports how many seasons the current snapshot indexes.
func (idx *Index) Len() int {
	return len(idx.snapshot.Load().entries)
}
