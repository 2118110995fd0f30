package notification

import (
	"context"
	"log/slog"

	"github.com/jonny/edudiag/internal/domain/port/outbound"
)

// NoopNotifier logs escalations instead of sending them.
// Used when Slack is not configured.
type NoopNotifier struct {
	logger *slog.Logger
}

func NewNoopNotifier(logger *slog.Logger) *NoopNotifier {
	return &NoopNotifier{logger: logger}
}

func (n *NoopNotifier) NotifyDiagnosis(_ context.Context, notification outbound.DiagnosisNotification) error {
	n.logger.Info("noop: diagnosis escalation",
		"entryID", notification.EntryID,
		"problemType", notification.ProblemType,
		"cause", notification.Cause,
		"confidence", notification.Confidence,
		"level", notification.Level,
		"reason", notification.Reason,
	)
	return nil
}
