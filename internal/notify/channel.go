package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hostpulse/hostpulse/internal/config"
)

const defaultDeliverTimeout = 10 * time.Second

// Channel is one independent notification delivery mechanism. Implementations
// must be timeout-bounded and must return delivery failures as errors rather
// than panicking — the dispatcher converts errors into recorded outcomes.
type Channel interface {
	// Name identifies the channel in delivery outcomes and logs.
	Name() string

	// Deliver sends one rendered alert message.
	Deliver(ctx context.Context, title, body string) error
}

// New returns the Channel implementation for the given configuration.
func New(cfg config.ChannelConfig) (Channel, error) {
	client := &http.Client{Timeout: defaultDeliverTimeout}
	switch cfg.Type {
	case "slack":
		return &slackChannel{cfg: cfg, client: client}, nil
	case "teams":
		return &teamsChannel{cfg: cfg, client: client}, nil
	case "webhook":
		return &webhookChannel{cfg: cfg, client: client}, nil
	case "email":
		return &emailChannel{cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("notify: unsupported channel type %q", cfg.Type)
	}
}

// Build constructs all channels from cfgs, skipping entries whose webhook URL
// does not resolve. Returns an error only when a channel type is unknown.
func Build(cfgs []config.ChannelConfig) ([]Channel, error) {
	out := make([]Channel, 0, len(cfgs))
	for i, cfg := range cfgs {
		ch, err := New(cfg)
		if err != nil {
			return nil, fmt.Errorf("channels[%d]: %w", i, err)
		}
		out = append(out, ch)
	}
	return out, nil
}

// postJSON marshals payload and POSTs it to url. A response status >= 400 is
// treated as a delivery failure.
func postJSON(ctx context.Context, client *http.Client, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}
