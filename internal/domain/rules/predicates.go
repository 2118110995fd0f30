package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jonny/edudiag/internal/domain/engine"
	"github.com/jonny/edudiag/internal/domain/model"
)

// Browser and connection values as reported by the client.
const (
	BrowserIE    = "IE"
	BrowserOther = "Other"
)

var (
	modernBrowsers    = []any{"Chrome", "Firefox", "Edge", "Safari"}
	nonLegacyBrowsers = []any{"Chrome", "Firefox", "Edge", "Safari", BrowserOther}
	poorConnections   = []any{"cellular", "slow_wifi"}
	stableConnections = []any{"wifi", "ethernet"}
)

// ModernBrowsers returns the browsers the platform fully supports.
func ModernBrowsers() []string { return toStrings(modernBrowsers) }

// KnownBrowsers returns every browser value the catalog distinguishes.
func KnownBrowsers() []string {
	return append(ModernBrowsers(), BrowserIE, BrowserOther)
}

// KnownConnections returns every connection value the catalog distinguishes.
func KnownConnections() []string {
	return append(toStrings(stableConnections), toStrings(poorConnections)...)
}

func toStrings(vs []any) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.(string))
	}
	return out
}

// when lists a rule's clauses in matching order.
func when(cs ...engine.Clause) []engine.Clause { return cs }

func symptom(category, description string) engine.Clause {
	return engine.Match(model.KindSymptom, engine.Eq("type", category), engine.Eq("description", description))
}

func symptomIn(category string, descriptions ...string) engine.Clause {
	ds := make([]any, 0, len(descriptions))
	for _, d := range descriptions {
		ds = append(ds, d)
	}
	return engine.Match(model.KindSymptom, engine.Eq("type", category), engine.In("description", ds...))
}

func anySymptom(category string) engine.Clause {
	return engine.Match(model.KindSymptom, engine.Eq("type", category))
}

func browser(name string) engine.Clause {
	return engine.Match(model.KindSystemInfo, engine.Eq("browser", name))
}

func system(cs ...engine.Constraint) engine.Clause {
	return engine.Match(model.KindSystemInfo, cs...)
}

func modern() engine.Constraint { return engine.In("browser", modernBrowsers...) }
func nonLegacy() engine.Constraint { return engine.In("browser", nonLegacyBrowsers...) }
func poorNet() engine.Constraint { return engine.In("connection_type", poorConnections...) }
func stableNet() engine.Constraint { return engine.In("connection_type", stableConnections...) }
func connection(ct string) engine.Constraint { return engine.Eq("connection_type", ct) }

func server(cs ...engine.Constraint) engine.Clause {
	return engine.Match(model.KindServerStatus, cs...)
}

// noDiagnosis guards a category fallback.
func noDiagnosis(category string) engine.Clause {
	return engine.Absent(model.KindDiagnosis, engine.Eq("problem_type", category))
}

// intAbove tests that the integer bound to name exceeds limit.
func intAbove(name string, limit int) engine.Test {
	return func(b engine.Bindings) (bool, error) {
		v, err := b.Int(name)
		if err != nil {
			return false, err
		}
		return v > limit, nil
	}
}

// containsFold tests that the string bound to name contains sub, ignoring case.
func containsFold(name, sub string) engine.Test {
	sub = strings.ToLower(sub)
	return func(b engine.Bindings) (bool, error) {
		v, err := b.String(name)
		if err != nil {
			return false, err
		}
		return strings.Contains(strings.ToLower(v), sub), nil
	}
}

// majorBelow tests that the version string bound to name has a major number
// below limit. Unparseable versions do not match.
func majorBelow(name string, limit float64) engine.Test {
	return func(b engine.Bindings) (bool, error) {
		v, err := b.String(name)
		if err != nil {
			return false, err
		}
		major, err := MajorVersion(v)
		if err != nil {
			return false, err
		}
		return major < limit, nil
	}
}

// MajorVersion parses the leading component of a dotted version string.
func MajorVersion(version string) (float64, error) {
	head, _, _ := strings.Cut(strings.TrimSpace(version), ".")
	major, err := strconv.ParseFloat(head, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing major version of %q: %w", version, err)
	}
	return major, nil
}
