// Package notify implements the notification channel adapters: Slack and
// Teams incoming webhooks, a generic JSON webhook, and SMTP email. Every
// adapter satisfies the Channel interface and is timeout-bounded; delivery
// failures surface as errors for the dispatcher to record, never as panics.
package notify
