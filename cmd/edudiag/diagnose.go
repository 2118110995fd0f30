package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jonny/edudiag/internal/adapter/inbound/cli"
	"github.com/jonny/edudiag/internal/domain/model"
	"github.com/jonny/edudiag/internal/validation"
)

type diagnoseOptions struct {
	file    string
	all     bool
	persist bool
	output  string

	symptom model.SymptomInput
	system  model.SystemInfoInput

	offline        bool
	responseTime   int
	maintenance    string
	reportedIssues int
}

func newDiagnoseCmd(root *rootOptions) *cobra.Command {
	o := &diagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Diagnose a reported problem",
		Long: `Run the rule catalog against a reported problem and print the best diagnosis.

The request is read from a JSON or YAML file (-f, "-" for stdin) and/or built
from flags. A symptom given by flags is appended to those from the file, and
system or server flags override the file's values.

Examples:
  # Login trouble on Internet Explorer
  edudiag diagnose --type login --description cannot_login --browser IE

  # Every diagnosis derived for a buffering video on a slow server
  edudiag diagnose --type video --description video_buffering --response-time 1500 --all

  # From a request file, recorded in the history, as JSON
  edudiag diagnose -f request.json --persist -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.run(cmd, root)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.file, "file", "f", "", `request file in JSON or YAML ("-" reads stdin)`)
	f.BoolVar(&o.all, "all", false, "print every derived diagnosis instead of the best")
	f.BoolVar(&o.persist, "persist", false, "record the best diagnosis in the history")
	f.StringVarP(&o.output, "output", "o", cli.FormatHuman, "output format (human, json, yaml)")

	f.StringVar(&o.symptom.Type, "type", "", "symptom category (login, video, chat, content)")
	f.StringVar(&o.symptom.Description, "description", "", "symptom description, see `edudiag symptoms`")
	f.StringVar(&o.symptom.Severity, "severity", "", "symptom severity (low, medium, high)")
	f.StringVar(&o.symptom.Frequency, "frequency", "", "symptom frequency (rarely, sometimes, always)")

	f.StringVar(&o.system.Browser, "browser", "", "browser (Chrome, Firefox, Edge, Safari, IE, Other)")
	f.StringVar(&o.system.BrowserVersion, "browser-version", "", "browser version, e.g. 120.0.1")
	f.StringVar(&o.system.OperatingSystem, "os", "", "operating system")
	f.StringVar(&o.system.DeviceType, "device", "", "device type")
	f.StringVar(&o.system.ConnectionType, "connection", "", "connection type (wifi, ethernet, cellular, slow_wifi)")

	f.BoolVar(&o.offline, "offline", false, "the server is offline")
	f.IntVar(&o.responseTime, "response-time", 0, "server response time in ms")
	f.StringVar(&o.maintenance, "maintenance", "", "last maintenance note, e.g. recent")
	f.IntVar(&o.reportedIssues, "reported-issues", 0, "number of issues reported against the server")

	return cmd
}

func (o *diagnoseOptions) run(cmd *cobra.Command, root *rootOptions) error {
	if !cli.ValidFormat(o.output) {
		return fmt.Errorf("unsupported output format %q", o.output)
	}

	req, err := o.request(cmd)
	if err != nil {
		return err
	}

	wl := validation.NewWhitelist(root.cfg.Validation.AllowedBrowsers, root.cfg.Validation.AllowedConnections)
	if rej := wl.Check(req); rej != nil {
		return rej
	}

	ctx := cmd.Context()
	a, err := buildApp(ctx, root.cfg, root.logger, appOptions{withProbe: true})
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if o.all {
		diags, err := a.diagnoser.Diagnose(ctx, req)
		if err != nil {
			return err
		}
		return cli.Diagnoses(out, o.output, diags)
	}

	best, err := a.diagnoser.Best(ctx, req, o.persist)
	if err != nil {
		return err
	}
	return cli.Diagnosis(out, o.output, best)
}

// request merges the request file with the flag values.
func (o *diagnoseOptions) request(cmd *cobra.Command) (model.DiagnoseRequest, error) {
	var req model.DiagnoseRequest
	if o.file != "" {
		data, err := readInput(o.file, cmd.InOrStdin())
		if err != nil {
			return req, err
		}
		if err := decodeRequest(data, &req); err != nil {
			return req, fmt.Errorf("parsing %s: %w", o.file, err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("type") || flags.Changed("description") {
		req.Symptoms = append(req.Symptoms, o.symptom)
	}

	systemFlags := map[string]func(*model.SystemInfoInput){
		"browser":         func(s *model.SystemInfoInput) { s.Browser = o.system.Browser },
		"browser-version": func(s *model.SystemInfoInput) { s.BrowserVersion = o.system.BrowserVersion },
		"os":              func(s *model.SystemInfoInput) { s.OperatingSystem = o.system.OperatingSystem },
		"device":          func(s *model.SystemInfoInput) { s.DeviceType = o.system.DeviceType },
		"connection":      func(s *model.SystemInfoInput) { s.ConnectionType = o.system.ConnectionType },
	}
	for name, set := range systemFlags {
		if !flags.Changed(name) {
			continue
		}
		if req.SystemInfo == nil {
			req.SystemInfo = &model.SystemInfoInput{}
		}
		set(req.SystemInfo)
	}

	server := func() *model.ServerStatusInput {
		if req.ServerStatus == nil {
			req.ServerStatus = &model.ServerStatusInput{}
		}
		return req.ServerStatus
	}
	if flags.Changed("offline") {
		online := !o.offline
		server().IsOnline = &online
	}
	if flags.Changed("response-time") {
		rt := o.responseTime
		server().ResponseTime = &rt
	}
	if flags.Changed("maintenance") {
		m := o.maintenance
		server().LastMaintenance = &m
	}
	if flags.Changed("reported-issues") {
		n := o.reportedIssues
		server().ReportedIssues = &n
	}

	if len(req.Symptoms) == 0 {
		return req, fmt.Errorf("no symptoms given: use --type and --description or -f")
	}
	return req, nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func decodeRequest(data []byte, req *model.DiagnoseRequest) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return json.Unmarshal(trimmed, req)
	}
	return yaml.Unmarshal(data, req)
}
