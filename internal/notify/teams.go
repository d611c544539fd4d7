package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hostpulse/hostpulse/internal/config"
)

// teamsChannel posts alerts to a Microsoft Teams incoming webhook as a
// MessageCard.
type teamsChannel struct {
	cfg    config.ChannelConfig
	client *http.Client
}

func (c *teamsChannel) Name() string { return "teams" }

func (c *teamsChannel) Deliver(ctx context.Context, title, body string) error {
	url := c.cfg.URL()
	if url == "" {
		return fmt.Errorf("teams: webhook url not configured (env %q)", c.cfg.URLEnv)
	}
	payload := map[string]interface{}{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": "FFAB40",
		"summary":    title,
		"title":      title,
		"text":       body,
	}
	return postJSON(ctx, c.client, url, payload)
}
