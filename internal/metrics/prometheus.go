package metrics

import (
	"context"
	"fmt"
	"io"
	"net/http"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/hostpulse/hostpulse/internal/config"
)

// promSource samples a Prometheus text exposition endpoint and flattens it
// into a Snapshot. Each gauge, counter, or untyped family becomes one value
// keyed by the family name; multi-series families are summed.
type promSource struct {
	host   string
	cfg    config.SourceConfig
	client *http.Client
}

func (s *promSource) Sample(ctx context.Context) (*Snapshot, error) {
	mfs, err := fetchFamilies(ctx, s.client, s.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("prometheus sample %q: %w", s.cfg.Endpoint, err)
	}

	snap := newSnapshot(s.host)
	for name, mf := range mfs {
		if v, ok := familyValue(mf); ok {
			snap.Values[name] = v
		}
	}
	return snap, nil
}

// fetchFamilies performs an HTTP GET to url and returns parsed metric families.
func fetchFamilies(ctx context.Context, client *http.Client, url string) (map[string]*dto.MetricFamily, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", string(expfmt.NewFormat(expfmt.TypeTextPlain)))

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return parseFamilies(resp.Body)
}

// parseFamilies decodes a Prometheus text exposition from r into metric families.
// A partial result with a non-fatal parse warning is still returned successfully.
func parseFamilies(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("parse prometheus text: %w", err)
	}
	// Non-empty result with a non-nil err means partial parse (trailing lines,
	// format warnings). Treat as success.
	return mfs, nil
}

// familyValue adds up all counter, gauge, or untyped values in a MetricFamily.
// Returns false for families with no usable series (histograms, summaries).
func familyValue(mf *dto.MetricFamily) (float64, bool) {
	if mf == nil {
		return 0, false
	}
	var total float64
	var seen bool
	for _, m := range mf.GetMetric() {
		switch {
		case m.Counter != nil:
			total += m.Counter.GetValue()
			seen = true
		case m.Gauge != nil:
			total += m.Gauge.GetValue()
			seen = true
		case m.Untyped != nil:
			total += m.Untyped.GetValue()
			seen = true
		}
	}
	return total, seen
}
