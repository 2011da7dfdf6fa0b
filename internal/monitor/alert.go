package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jordan-wright/email"
)

// AlertConfig controls the Slack and email alert channels. Both are
// disabled by default; a disabled channel logs the alert instead of
// sending it.
type AlertConfig struct {
	SlackEnabled    bool
	SlackWebhookURL string

	EmailEnabled bool
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	Recipient    string
}

// Alerter delivers data quality alerts to Slack and email.
type Alerter struct {
	cfg    AlertConfig
	client *resty.Client
	logger *slog.Logger
}

func NewAlerter(cfg AlertConfig, logger *slog.Logger) *Alerter {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2)
	return &Alerter{cfg: cfg, client: client, logger: logger}
}

// Slack posts a message to the configured incoming webhook.
func (a *Alerter) Slack(ctx context.Context, message string) error {
	if !a.cfg.SlackEnabled {
		a.logger.Info("slack alerts disabled, suppressing alert", "message", message)
		return nil
	}
	if a.cfg.SlackWebhookURL == "" {
		return fmt.Errorf("slack webhook URL not configured")
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"text": message}).
		Post(a.cfg.SlackWebhookURL)
	if err != nil {
		return fmt.Errorf("post slack alert: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("slack webhook returned %s", resp.Status())
	}
	return nil
}

// Email sends a plain-text alert email over SMTP with STARTTLS.
func (a *Alerter) Email(subject, body string) error {
	if !a.cfg.EmailEnabled {
		a.logger.Info("email alerts disabled, suppressing alert", "subject", subject)
		return nil
	}
	if a.cfg.SMTPHost == "" || a.cfg.Recipient == "" {
		return fmt.Errorf("smtp settings not fully configured")
	}

	msg := email.NewEmail()
	msg.From = a.cfg.SMTPUser
	msg.To = []string{a.cfg.Recipient}
	msg.Subject = subject
	msg.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", a.cfg.SMTPHost, a.cfg.SMTPPort)
	auth := smtp.PlainAuth("", a.cfg.SMTPUser, a.cfg.SMTPPassword, a.cfg.SMTPHost)
	if err := msg.Send(addr, auth); err != nil {
		return fmt.Errorf("send alert email: %w", err)
	}
	return nil
}

// ValidationFailure formats and fans out a data quality alert to every
// enabled channel. Delivery failures are logged, not returned: an alert
// channel outage must not mask the underlying data problem.
func (a *Alerter) ValidationFailure(ctx context.Context, dataPath string, reasons []string) {
	message := fmt.Sprintf("DATA QUALITY ALERT: validation failed for %s\ntime: %s\n", dataPath, time.Now().Format(time.RFC3339))
	for _, r := range reasons {
		message += "- " + r + "\n"
	}

	if err := a.Slack(ctx, message); err != nil {
		a.logger.Error("failed to send slack alert", "error", err)
	}
	if err := a.Email("DATA QUALITY ALERT: "+dataPath, message); err != nil {
		a.logger.Error("failed to send email alert", "error", err)
	}
}
