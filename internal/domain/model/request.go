package model

// DiagnoseRequest is the caller-facing input of a diagnostic call.
type DiagnoseRequest struct {
	Symptoms     []SymptomInput     `json:"symptoms" yaml:"symptoms"`
	SystemInfo   *SystemInfoInput   `json:"system_info,omitempty" yaml:"system_info,omitempty"`
	ServerStatus *ServerStatusInput `json:"server_status,omitempty" yaml:"server_status,omitempty"`
}

type SymptomInput struct {
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Severity    string `json:"severity,omitempty" yaml:"severity,omitempty"`
	Frequency   string `json:"frequency,omitempty" yaml:"frequency,omitempty"`
}

type SystemInfoInput struct {
	Browser         string `json:"browser,omitempty" yaml:"browser,omitempty"`
	BrowserVersion  string `json:"browser_version,omitempty" yaml:"browser_version,omitempty"`
	OperatingSystem string `json:"operating_system,omitempty" yaml:"operating_system,omitempty"`
	DeviceType      string `json:"device_type,omitempty" yaml:"device_type,omitempty"`
	ConnectionType  string `json:"connection_type,omitempty" yaml:"connection_type,omitempty"`
}

type ServerStatusInput struct {
	IsOnline        *bool   `json:"is_online,omitempty" yaml:"is_online,omitempty"`
	ResponseTime    *int    `json:"response_time,omitempty" yaml:"response_time,omitempty"`
	LastMaintenance *string `json:"last_maintenance,omitempty" yaml:"last_maintenance,omitempty"`
	ReportedIssues  *int    `json:"reported_issues,omitempty" yaml:"reported_issues,omitempty"`
}

// Symptom converts the input, applying default severity and frequency.
func (in SymptomInput) Symptom() Symptom {
	s := NewSymptom(in.Type, in.Description)
	if in.Severity != "" {
		s.Severity = Severity(in.Severity)
	}
	if in.Frequency != "" {
		s.Frequency = Frequency(in.Frequency)
	}
	return s
}

func (in SystemInfoInput) SystemInfo() SystemInfo {
	return SystemInfo{
		Browser:         in.Browser,
		BrowserVersion:  in.BrowserVersion,
		OperatingSystem: in.OperatingSystem,
		DeviceType:      in.DeviceType,
		ConnectionType:  in.ConnectionType,
	}
}

// ServerStatus converts the input, applying is_online=true and reported_issues=0
// for omitted fields.
func (in ServerStatusInput) ServerStatus() ServerStatus {
	s := DefaultServerStatus()
	if in.IsOnline != nil {
		s.IsOnline = *in.IsOnline
	}
	if in.ResponseTime != nil {
		s.ResponseTime = *in.ResponseTime
	}
	if in.LastMaintenance != nil {
		s.LastMaintenance = *in.LastMaintenance
	}
	if in.ReportedIssues != nil {
		s.ReportedIssues = *in.ReportedIssues
	}
	return s
}

// Facts converts the request into facts in declaration order: symptoms first,
// then system info and server status when present. Absent sections produce no
// fact so that the store's implicit defaults apply.
func (r DiagnoseRequest) Facts() []Fact {
	facts := make([]Fact, 0, len(r.Symptoms)+2)
	for _, s := range r.Symptoms {
		facts = append(facts, s.Symptom())
	}
	if r.SystemInfo != nil {
		facts = append(facts, r.SystemInfo.SystemInfo())
	}
	if r.ServerStatus != nil {
		facts = append(facts, r.ServerStatus.ServerStatus())
	}
	return facts
}

// SymptomSummary renders the symptoms as "type/description" pairs.
func (r DiagnoseRequest) SymptomSummary() []string {
	out := make([]string, 0, len(r.Symptoms))
	for _, s := range r.Symptoms {
		out = append(out, s.Type+"/"+s.Description)
	}
	return out
}

// MaxSeverity returns the highest severity among the request's symptoms,
// treating omitted severities as medium.
func (r DiagnoseRequest) MaxSeverity() Severity {
	max := Severity("")
	for _, in := range r.Symptoms {
		s := in.Symptom().Severity
		if !s.Valid() {
			continue
		}
		if max == "" || !max.AtLeast(s) {
			max = s
		}
	}
	return max
}
