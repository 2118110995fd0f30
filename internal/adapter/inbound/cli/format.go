// Package cli renders diagnosis results for the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/jonny/edudiag/internal/domain/model"
	"github.com/jonny/edudiag/pkg/version"
)

// Output formats accepted by -o.
const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ValidFormat reports whether f is a supported output format.
func ValidFormat(f string) bool {
	switch f {
	case FormatHuman, FormatJSON, FormatYAML, "":
		return true
	}
	return false
}

// render writes v as JSON or YAML, or calls human for the default format.
func render(w io.Writer, format string, v any, human func()) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatHuman, "":
		human()
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// Diagnosis prints the best diagnosis.
func Diagnosis(w io.Writer, format string, d model.Diagnosis) error {
	return render(w, format, d, func() {
		fmt.Fprintln(w)
		printDiagnosis(w, d)
		fmt.Fprintln(w, strings.Repeat("─", 72))
		fmt.Fprintf(w, "%s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
	})
}

// Diagnoses prints every derived diagnosis in order.
func Diagnoses(w io.Writer, format string, diags []model.Diagnosis) error {
	return render(w, format, diags, func() {
		bold := color.New(color.Bold)
		bold.Fprintf(w, "\n%d diagnoses derived\n\n", len(diags))
		for i, d := range diags {
			fmt.Fprintf(w, "%d.", i+1)
			printDiagnosis(w, d)
		}
	})
}

func printDiagnosis(w io.Writer, d model.Diagnosis) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen, color.Bold)

	cyan.Fprintf(w, " %s problem", strings.ToUpper(d.ProblemType))
	fmt.Fprintf(w, "  cause: %s\n", d.Cause)
	confidenceColor(d.Confidence).Fprintf(w, "   confidence: %.0f%%", d.Confidence*100)
	if d.IsFallback() {
		fmt.Fprintf(w, " %s", color.HiBlackString("(no specific rule matched)"))
	}
	fmt.Fprintln(w)
	green.Fprintln(w, "   solution:")
	fmt.Fprintf(w, "   %s\n\n", wrap(d.Solution, 68, "   "))
}

// Symptoms prints the recognised vocabulary by category.
func Symptoms(w io.Writer, format string, vocab map[string][]string) error {
	return render(w, format, vocab, func() {
		cyan := color.New(color.FgCyan, color.Bold)
		for _, c := range model.Categories() {
			cyan.Fprintln(w, c)
			for _, s := range vocab[c] {
				fmt.Fprintf(w, "  - %s\n", s)
			}
		}
	})
}

// History prints stored diagnoses, newest first.
func History(w io.Writer, format string, entries []model.HistoryEntry, total int64) error {
	return render(w, format, entries, func() {
		if len(entries) == 0 {
			fmt.Fprintln(w, color.HiBlackString("no diagnoses recorded"))
			return
		}
		for _, e := range entries {
			fmt.Fprintf(w, "%s  %-8s %-12s %s  %s\n",
				e.CreatedAt.Format("2006-01-02 15:04:05"),
				e.ProblemType,
				e.Cause,
				confidenceColor(e.Confidence).Sprintf("%3.0f%%", e.Confidence*100),
				color.HiBlackString(e.ID),
			)
		}
		fmt.Fprintf(w, "\nshowing %d of %d\n", len(entries), total)
	})
}

// Version prints build information.
func Version(w io.Writer, format string, info version.Info) error {
	return render(w, format, info, func() {
		fmt.Fprintf(w, "edudiag %s\n  commit: %s\n  built:  %s\n  go:     %s\n",
			info.Version, info.Commit, info.BuildTime, info.GoVersion)
	})
}

func confidenceColor(c float64) *color.Color {
	switch {
	case c >= 0.8:
		return color.New(color.FgGreen)
	case c >= 0.5:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func wrap(text string, width int, indent string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var sb strings.Builder
	line := 0
	for i, word := range words {
		if i > 0 {
			if line+1+len(word) > width {
				sb.WriteString("\n" + indent)
				line = 0
			} else {
				sb.WriteByte(' ')
				line++
			}
		}
		sb.WriteString(word)
		line += len(word)
	}
	return sb.String()
}
