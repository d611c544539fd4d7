package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/hostpulse/hostpulse/internal/config"
)

// emailChannel sends alerts over SMTP. STARTTLS is used when the server
// offers it; plain auth is attempted only when a username is configured.
type emailChannel struct {
	cfg config.ChannelConfig
}

func (c *emailChannel) Name() string { return "email" }

func (c *emailChannel) Deliver(ctx context.Context, title, body string) error {
	host, _, err := net.SplitHostPort(c.cfg.SMTPAddr)
	if err != nil {
		return fmt.Errorf("email: invalid smtp_addr %q: %w", c.cfg.SMTPAddr, err)
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.cfg.SMTPAddr)
	if err != nil {
		return fmt.Errorf("email: dial %s: %w", c.cfg.SMTPAddr, err)
	}
	// The smtp client has no context support; bound every subsequent
	// read/write with the context deadline instead.
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("email: smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return fmt.Errorf("email: starttls: %w", err)
		}
	}

	if c.cfg.Username != "" {
		auth := smtp.PlainAuth("", c.cfg.Username, c.cfg.SMTPPassword(), host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("email: auth: %w", err)
		}
	}

	if err := client.Mail(c.cfg.From); err != nil {
		return fmt.Errorf("email: mail from: %w", err)
	}
	for _, rcpt := range c.cfg.To {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("email: rcpt %s: %w", rcpt, err)
		}
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("email: data: %w", err)
	}
	if _, err := wc.Write([]byte(buildMessage(c.cfg.From, c.cfg.To, title, body))); err != nil {
		wc.Close()
		return fmt.Errorf("email: write body: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("email: close body: %w", err)
	}

	return client.Quit()
}

// buildMessage assembles an RFC 5322 message with the alert title as subject.
func buildMessage(from string, to []string, title, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", title)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return b.String()
}
