package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hostpulse/hostpulse/internal/config"
)

// slackChannel posts alerts to a Slack incoming webhook.
type slackChannel struct {
	cfg    config.ChannelConfig
	client *http.Client
}

func (c *slackChannel) Name() string { return "slack" }

func (c *slackChannel) Deliver(ctx context.Context, title, body string) error {
	url := c.cfg.URL()
	if url == "" {
		return fmt.Errorf("slack: webhook url not configured (env %q)", c.cfg.URLEnv)
	}
	return postJSON(ctx, c.client, url, map[string]string{
		"text": fmt.Sprintf("*%s*\n%s", title, body),
	})
}
