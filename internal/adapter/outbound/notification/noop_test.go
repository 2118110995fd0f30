package notification_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/jonny/edudiag/internal/adapter/outbound/notification"
	"github.com/jonny/edudiag/internal/domain/port/outbound"
)

func TestNoopNotifier_LogsEscalation(t *testing.T) {
	var buf bytes.Buffer
	n := notification.NewNoopNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	err := n.NotifyDiagnosis(context.Background(), outbound.DiagnosisNotification{
		EntryID:     "abc",
		ProblemType: "login",
		Cause:       "server",
		Level:       outbound.NotificationCritical,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"diagnosis escalation", "entryID=abc", "cause=server", "level=critical"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}
