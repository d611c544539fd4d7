package metrics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hostpulse/hostpulse/internal/config"
)

// Snapshot is one timestamped set of named metric readings for a host.
// A key absent from Values means the metric could not be computed this tick
// (e.g., a rate that needs two samples) — absence is not an error.
type Snapshot struct {
	Host    string
	TakenAt time.Time
	Values  map[string]float64
}

// Value returns the named reading and whether it is present.
func (s *Snapshot) Value(name string) (float64, bool) {
	v, ok := s.Values[name]
	return v, ok
}

// Names returns the metric names present in the snapshot, sorted.
func (s *Snapshot) Names() []string {
	out := make([]string, 0, len(s.Values))
	for k := range s.Values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Source produces a fresh Snapshot once per tick.
type Source interface {
	Sample(ctx context.Context) (*Snapshot, error)
}

// New returns the appropriate Source for the given configuration.
// hostID is stamped on every snapshot the source produces.
func New(hostID string, cfg config.SourceConfig) (Source, error) {
	switch cfg.Type {
	case "host":
		return newHostSource(hostID, cfg), nil
	case "prometheus":
		client, err := buildHTTPClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("metrics source: build http client: %w", err)
		}
		return &promSource{host: hostID, cfg: cfg, client: client}, nil
	default:
		return nil, fmt.Errorf("metrics source: unsupported type %q", cfg.Type)
	}
}

// newSnapshot initialises an empty Snapshot with the values map allocated.
func newSnapshot(host string) *Snapshot {
	return &Snapshot{
		Host:    host,
		TakenAt: time.Now().UTC(),
		Values:  make(map[string]float64),
	}
}
