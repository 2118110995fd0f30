package model

import "fmt"

// FactKind names the kind of a fact held in a diagnostic session.
type FactKind string

const (
	KindSymptom      FactKind = "symptom"
	KindSystemInfo   FactKind = "system_info"
	KindServerStatus FactKind = "server_status"
	KindDiagnosis    FactKind = "diagnosis"
)

// Fact is an immutable typed record declared into a session's working memory.
// Field exposes fields by their wire name; ok is false when an optional field
// was not supplied.
type Fact interface {
	Kind() FactKind
	Field(name string) (value any, ok bool)
	Validate() error
}

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

var severityOrder = map[Severity]int{
	SeverityLow:    0,
	SeverityMedium: 1,
	SeverityHigh:   2,
}

// AtLeast reports whether s is at or above min in the order low < medium < high.
// Unknown levels never compare as at least anything.
func (s Severity) AtLeast(min Severity) bool {
	so, ok := severityOrder[s]
	mo, mok := severityOrder[min]
	if !ok || !mok {
		return false
	}
	return so >= mo
}

func (s Severity) Valid() bool {
	_, ok := severityOrder[s]
	return ok
}

type Frequency string

const (
	FrequencyRarely    Frequency = "rarely"
	FrequencySometimes Frequency = "sometimes"
	FrequencyAlways    Frequency = "always"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyRarely, FrequencySometimes, FrequencyAlways:
		return true
	}
	return false
}

// Symptom is a problem reported by the user.
type Symptom struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
	Frequency   Frequency `json:"frequency"`
}

// NewSymptom creates a Symptom with default severity and frequency.
func NewSymptom(symptomType, description string) Symptom {
	return Symptom{
		Type:        symptomType,
		Description: description,
		Severity:    SeverityMedium,
		Frequency:   FrequencySometimes,
	}
}

func (s Symptom) WithSeverity(sev Severity) Symptom {
	s.Severity = sev
	return s
}

func (s Symptom) WithFrequency(f Frequency) Symptom {
	s.Frequency = f
	return s
}

func (Symptom) Kind() FactKind { return KindSymptom }

func (s Symptom) Field(name string) (any, bool) {
	switch name {
	case "type":
		return s.Type, true
	case "description":
		return s.Description, true
	case "severity":
		return string(s.Severity), s.Severity != ""
	case "frequency":
		return string(s.Frequency), s.Frequency != ""
	}
	return nil, false
}

func (s Symptom) Validate() error {
	if s.Type == "" {
		return &ValidationError{Kind: KindSymptom, Field: "type", Reason: "is required"}
	}
	if s.Description == "" {
		return &ValidationError{Kind: KindSymptom, Field: "description", Reason: "is required"}
	}
	if !s.Severity.Valid() {
		return &ValidationError{Kind: KindSymptom, Field: "severity", Reason: fmt.Sprintf("must be low, medium or high (got %q)", s.Severity)}
	}
	if !s.Frequency.Valid() {
		return &ValidationError{Kind: KindSymptom, Field: "frequency", Reason: fmt.Sprintf("must be rarely, sometimes or always (got %q)", s.Frequency)}
	}
	return nil
}

// SystemInfo describes the user's environment. Empty strings mean "not reported".
type SystemInfo struct {
	Browser         string `json:"browser,omitempty"`
	BrowserVersion  string `json:"browser_version,omitempty"`
	OperatingSystem string `json:"operating_system,omitempty"`
	DeviceType      string `json:"device_type,omitempty"`
	ConnectionType  string `json:"connection_type,omitempty"`
}

func (SystemInfo) Kind() FactKind { return KindSystemInfo }

func (s SystemInfo) Field(name string) (any, bool) {
	var v string
	switch name {
	case "browser":
		v = s.Browser
	case "browser_version":
		v = s.BrowserVersion
	case "operating_system":
		v = s.OperatingSystem
	case "device_type":
		v = s.DeviceType
	case "connection_type":
		v = s.ConnectionType
	default:
		return nil, false
	}
	if v == "" {
		return nil, false
	}
	return v, true
}

func (SystemInfo) Validate() error { return nil }

// ServerStatus describes platform health. ResponseTime of zero and an empty
// LastMaintenance mean "not reported".
type ServerStatus struct {
	IsOnline        bool   `json:"is_online"`
	ResponseTime    int    `json:"response_time,omitempty"`
	LastMaintenance string `json:"last_maintenance,omitempty"`
	ReportedIssues  int    `json:"reported_issues"`
}

// DefaultServerStatus is the status assumed when none is supplied.
func DefaultServerStatus() ServerStatus {
	return ServerStatus{IsOnline: true}
}

func (ServerStatus) Kind() FactKind { return KindServerStatus }

func (s ServerStatus) Field(name string) (any, bool) {
	switch name {
	case "is_online":
		return s.IsOnline, true
	case "response_time":
		if s.ResponseTime == 0 {
			return nil, false
		}
		return s.ResponseTime, true
	case "last_maintenance":
		if s.LastMaintenance == "" {
			return nil, false
		}
		return s.LastMaintenance, true
	case "reported_issues":
		return s.ReportedIssues, true
	}
	return nil, false
}

func (s ServerStatus) Validate() error {
	if s.ResponseTime < 0 {
		return &ValidationError{Kind: KindServerStatus, Field: "response_time", Reason: "must not be negative"}
	}
	if s.ReportedIssues < 0 {
		return &ValidationError{Kind: KindServerStatus, Field: "reported_issues", Reason: "must not be negative"}
	}
	return nil
}

// CauseUnknown is the cause asserted by fallback rules.
const CauseUnknown = "unknown"

// Diagnosis is derived by rule firings and never supplied by callers.
type Diagnosis struct {
	ProblemType string  `json:"diagnosis" yaml:"diagnosis"`
	Cause       string  `json:"cause" yaml:"cause"`
	Solution    string  `json:"solution" yaml:"solution"`
	Confidence  float64 `json:"confidence" yaml:"confidence"`
}

func (Diagnosis) Kind() FactKind { return KindDiagnosis }

func (d Diagnosis) Field(name string) (any, bool) {
	switch name {
	case "problem_type":
		return d.ProblemType, true
	case "cause":
		return d.Cause, true
	case "solution":
		return d.Solution, true
	case "confidence":
		return d.Confidence, true
	}
	return nil, false
}

func (d Diagnosis) Validate() error {
	if d.ProblemType == "" {
		return &ValidationError{Kind: KindDiagnosis, Field: "problem_type", Reason: "is required"}
	}
	if d.Cause == "" {
		return &ValidationError{Kind: KindDiagnosis, Field: "cause", Reason: "is required"}
	}
	if d.Solution == "" {
		return &ValidationError{Kind: KindDiagnosis, Field: "solution", Reason: "is required"}
	}
	if d.Confidence < 0 || d.Confidence > 1 {
		return &ValidationError{Kind: KindDiagnosis, Field: "confidence", Reason: fmt.Sprintf("must be within [0, 1] (got %v)", d.Confidence)}
	}
	return nil
}

// IsFallback reports whether the diagnosis came from a fallback rule.
func (d Diagnosis) IsFallback() bool {
	return d.Cause == CauseUnknown
}

// IsHighConfidence mirrors the threshold the support team acts on directly.
func (d Diagnosis) IsHighConfidence() bool {
	return d.Confidence >= 0.7
}
