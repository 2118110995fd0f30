package slack

import (
	"context"
	"fmt"
	"strings"

	slackapi "github.com/slack-go/slack"

	"github.com/jonny/edudiag/internal/domain/port/outbound"
)

// Config holds Slack notifier configuration.
type Config struct {
	BotToken string
	Channel  string
	// APIURL overrides the Slack Web API base URL. Must end with a slash.
	APIURL string
}

// Notifier implements outbound.Notifier via the Slack API.
type Notifier struct {
	client  *slackapi.Client
	channel string
}

func NewNotifier(cfg Config) *Notifier {
	var opts []slackapi.Option
	if cfg.APIURL != "" {
		opts = append(opts, slackapi.OptionAPIURL(cfg.APIURL))
	}
	return &Notifier{
		client:  slackapi.New(cfg.BotToken, opts...),
		channel: cfg.Channel,
	}
}

// NotifyDiagnosis posts a Block Kit diagnosis card to the support channel.
func (n *Notifier) NotifyDiagnosis(ctx context.Context, notification outbound.DiagnosisNotification) error {
	blocks := BuildDiagnosisBlocks(notification)
	fallback := fmt.Sprintf("[%s] %s problem: %s",
		strings.ToUpper(string(notification.Level)), notification.ProblemType, notification.Cause)

	_, _, err := n.client.PostMessageContext(ctx, n.channel,
		slackapi.MsgOptionBlocks(blocks...),
		slackapi.MsgOptionText(fallback, false),
	)
	if err != nil {
		return fmt.Errorf("slack NotifyDiagnosis: %w", err)
	}
	return nil
}

// AuthTest verifies the bot token.
func (n *Notifier) AuthTest(ctx context.Context) error {
	if _, err := n.client.AuthTestContext(ctx); err != nil {
		return fmt.Errorf("slack auth test: %w", err)
	}
	return nil
}
