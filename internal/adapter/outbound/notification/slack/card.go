package slack

import (
	"fmt"
	"strings"

	slackapi "github.com/slack-go/slack"

	"github.com/jonny/edudiag/internal/domain/port/outbound"
)

// confidenceBar builds a visual progress bar string for confidence percentage.
func confidenceBar(confidence float64) string {
	pct := int(confidence*100 + 0.5)
	filled := min(max(pct/10, 0), 10)
	return fmt.Sprintf("[%s%s] %d%%",
		strings.Repeat("█", filled),
		strings.Repeat("░", 10-filled),
		pct,
	)
}

func levelEmoji(level outbound.NotificationLevel) string {
	switch level {
	case outbound.NotificationCritical:
		return ":red_circle:"
	case outbound.NotificationWarning:
		return ":large_yellow_circle:"
	default:
		return ":information_source:"
	}
}

func markdownSection(text string) *slackapi.SectionBlock {
	return slackapi.NewSectionBlock(
		slackapi.NewTextBlockObject(slackapi.MarkdownType, text, false, false),
		nil, nil,
	)
}

// BuildDiagnosisBlocks constructs Block Kit blocks for an escalated diagnosis.
func BuildDiagnosisBlocks(n outbound.DiagnosisNotification) []slackapi.Block {
	header := markdownSection(fmt.Sprintf("%s *%s problem escalated*",
		levelEmoji(n.Level), strings.ToUpper(n.ProblemType)))

	fields := []*slackapi.TextBlockObject{
		slackapi.NewTextBlockObject(slackapi.MarkdownType, fmt.Sprintf("*Cause*\n%s", n.Cause), false, false),
		slackapi.NewTextBlockObject(slackapi.MarkdownType, fmt.Sprintf("*Confidence*\n`%s`", confidenceBar(n.Confidence)), false, false),
	}
	if n.Severity != "" {
		fields = append(fields,
			slackapi.NewTextBlockObject(slackapi.MarkdownType, fmt.Sprintf("*Severity*\n%s", n.Severity), false, false))
	}
	summary := slackapi.NewSectionBlock(nil, fields, nil)

	blocks := []slackapi.Block{header, slackapi.NewDividerBlock(), summary}

	if n.Solution != "" {
		blocks = append(blocks, markdownSection(fmt.Sprintf("*Suggested Solution*\n%s", n.Solution)))
	}

	if len(n.Symptoms) > 0 {
		lines := make([]string, 0, len(n.Symptoms))
		for _, s := range n.Symptoms {
			lines = append(lines, "• "+s)
		}
		blocks = append(blocks, markdownSection("*Reported Symptoms*\n"+strings.Join(lines, "\n")))
	}

	var ctx []slackapi.MixedElement
	if n.Reason != "" {
		ctx = append(ctx, slackapi.NewTextBlockObject(slackapi.MarkdownType, "_"+n.Reason+"_", false, false))
	}
	if n.EntryID != "" {
		ctx = append(ctx, slackapi.NewTextBlockObject(slackapi.MarkdownType, fmt.Sprintf("Entry `%s`", n.EntryID), false, false))
	}
	if len(ctx) > 0 {
		blocks = append(blocks, slackapi.NewContextBlock("", ctx...))
	}

	return blocks
}
