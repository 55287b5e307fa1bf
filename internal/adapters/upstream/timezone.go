package upstream

import (
	"regexp"
	"time"

	"github.com/ringsaturn/tzf"
)

// naiveStampRE captures the wall-clock prefix of an upstream timestamp,
// discarding whatever offset the upstream attached.
var naiveStampRE = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2})`)

// zoneFinder resolves coordinates to an IANA timezone name. Note the
// longitude-first argument order.
type zoneFinder interface {
	GetTimezoneName(lng float64, lat float64) string
}

// Normalizer converts venue-local event timestamps into UTC-equivalent
// epoch milliseconds, using the timezone at the venue's coordinates
// rather than the offset the upstream reports.
type Normalizer struct {
	finder zoneFinder
}

// NewNormalizer builds a Normalizer over the bundled timezone shapes.
func NewNormalizer() (*Normalizer, error) {
	finder, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, err
	}
	return &Normalizer{finder: finder}, nil
}

// EpochMS normalizes raw to epoch milliseconds. The wall-clock portion
// of raw is interpreted in the timezone found at (lat, lon); without
// usable coordinates or a resolvable zone it is taken as UTC. A raw
// value with no wall-clock prefix falls back to RFC3339 parsing.
func (n *Normalizer) EpochMS(raw string, lat, lon float64) int64 {
	if raw == "" {
		return 0
	}
	m := naiveStampRE.FindStringSubmatch(raw)
	if m == nil {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t.UnixMilli()
		}
		return 0
	}
	naive, err := time.Parse("2006-01-02T15:04:05", m[1])
	if err != nil {
		return 0
	}
	return naive.Add(-n.offsetAt(naive, lat, lon)).UnixMilli()
}

// offsetAt returns the UTC offset in effect at t for the timezone at the
// given coordinates, or zero when it cannot be determined.
func (n *Normalizer) offsetAt(t time.Time, lat, lon float64) time.Duration {
	if n == nil || n.finder == nil {
		return 0
	}
	if lat == 0 && lon == 0 {
		return 0
	}
	name := n.finder.GetTimezoneName(lon, lat)
	if name == "" {
		return 0
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return 0
	}
	_, seconds := t.In(loc).Zone()
	return time.Duration(seconds) * time.Second
}
