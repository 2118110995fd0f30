package outbound

import "context"

type NotificationLevel string

const (
	NotificationInfo     NotificationLevel = "info"
	NotificationWarning  NotificationLevel = "warning"
	NotificationCritical NotificationLevel = "critical"
)

// DiagnosisNotification describes a diagnosis that needs the support team's
// attention.
type DiagnosisNotification struct {
	EntryID     string
	ProblemType string
	Cause       string
	Solution    string
	Confidence  float64
	Severity    string
	Symptoms    []string
	Reason      string
	Level       NotificationLevel
}

// Notifier sends escalations to the support team via messaging platforms.
type Notifier interface {
	NotifyDiagnosis(ctx context.Context, notification DiagnosisNotification) error
}
