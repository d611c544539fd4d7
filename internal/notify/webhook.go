package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hostpulse/hostpulse/internal/config"
)

// webhookChannel posts alerts to a generic HTTP endpoint as a JSON document.
type webhookChannel struct {
	cfg    config.ChannelConfig
	client *http.Client
}

func (c *webhookChannel) Name() string { return "webhook" }

func (c *webhookChannel) Deliver(ctx context.Context, title, body string) error {
	url := c.cfg.URL()
	if url == "" {
		return fmt.Errorf("webhook: url not configured (env %q)", c.cfg.URLEnv)
	}
	return postJSON(ctx, c.client, url, map[string]interface{}{
		"title":   title,
		"body":    body,
		"sent_at": time.Now().UTC().Format(time.RFC3339),
	})
}
