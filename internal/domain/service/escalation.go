package service

import (
	"fmt"
	"slices"

	"github.com/jonny/edudiag/internal/domain/model"
	"github.com/jonny/edudiag/internal/domain/port/outbound"
)

// EscalationDecision holds the result of an escalation evaluation.
type EscalationDecision struct {
	Escalate bool
	Reason   string
	Level    outbound.NotificationLevel
}

// EscalationPolicy decides which diagnoses are forwarded to the support team.
// The zero value never escalates.
type EscalationPolicy struct {
	// Causes escalate whenever they are the best diagnosis' cause.
	Causes []string
	// MinSeverity escalates fallback diagnoses for requests whose most severe
	// symptom reaches it. Empty disables the check.
	MinSeverity model.Severity
}

// DefaultEscalationPolicy escalates server-side causes and unresolved
// high-severity reports.
func DefaultEscalationPolicy() EscalationPolicy {
	return EscalationPolicy{
		Causes:      []string{"server"},
		MinSeverity: model.SeverityHigh,
	}
}

// Evaluate decides whether d, derived for req, must be escalated.
func (p EscalationPolicy) Evaluate(req model.DiagnoseRequest, d model.Diagnosis) EscalationDecision {
	if slices.Contains(p.Causes, d.Cause) {
		return EscalationDecision{
			Escalate: true,
			Reason:   fmt.Sprintf("cause %q requires escalation", d.Cause),
			Level:    outbound.NotificationCritical,
		}
	}

	if d.IsFallback() && p.MinSeverity != "" {
		if sev := req.MaxSeverity(); sev.AtLeast(p.MinSeverity) {
			return EscalationDecision{
				Escalate: true,
				Reason:   fmt.Sprintf("no known cause for a %s-severity %s problem", sev, d.ProblemType),
				Level:    outbound.NotificationWarning,
			}
		}
	}

	return EscalationDecision{Reason: "no escalation rule matched"}
}
