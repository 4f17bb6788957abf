package alerts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
)

// Notifier delivers a free-text alert message.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

const slackHooksURL = "https://hooks.slack.com/services/"

// SlackWebhookURL builds the webhook URL from an explicit URL or a bare token.
func SlackWebhookURL(url, token string) string {
	if url != "" {
		return url
	}
	if token == "" {
		return ""
	}
	return slackHooksURL + strings.TrimPrefix(token, "/")
}

// SlackNotifier posts messages to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
}

// NewSlackNotifier creates a notifier for webhookURL.
func NewSlackNotifier(webhookURL string) (*SlackNotifier, error) {
	if webhookURL == "" {
		return nil, errors.New("slack webhook url is empty")
	}
	return &SlackNotifier{webhookURL: webhookURL}, nil
}

// Notify posts message as plain text
func (n *SlackNotifier) Notify(ctx context.Context, message string) error {
	if err := slack.PostWebhookContext(ctx, n.webhookURL, &slack.WebhookMessage{Text: message}); err != nil {
		return fmt.Errorf("slack webhook: %w", err)
	}
	return nil
}

// LogNotifier writes messages to the log instead of delivering them.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier creates a notifier that logs at info level.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("notifier", "log").Logger()}
}

// Notify logs message
func (n *LogNotifier) Notify(_ context.Context, message string) error {
	n.log.Info().Str("message", message).Msg("Alert")
	return nil
}
