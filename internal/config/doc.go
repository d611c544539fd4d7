// Package config loads and validates the hostpulsed YAML configuration:
// sampling interval, cooldown, threshold rules, metric source, notification
// channels, and HTTP server settings. Secrets (webhook URLs, API keys, SMTP
// passwords) are resolved from environment variables named in the file, never
// stored in it. Watch provides fsnotify-based hot reload.
package config
