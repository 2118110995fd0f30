package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonny/edudiag/internal/config"
	"github.com/jonny/edudiag/internal/domain/model"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// writeConfig creates a config whose history lives in a temp dir.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`
history:
  driver: json
  json:
    path: %s
logging:
  level: error
  format: text
`, filepath.Join(dir, "responses.json"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestDiagnoseCmd_FlagsJSON(t *testing.T) {
	cfg := writeConfig(t)
	out, err := execute(t, "", "--config", cfg, "diagnose",
		"--type", "login", "--description", "cannot_login", "--browser", "IE", "-o", "json")
	require.NoError(t, err)

	var d model.Diagnosis
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, "login", d.ProblemType)
	assert.Equal(t, "browser", d.Cause)
}

func TestDiagnoseCmd_StdinYAMLAll(t *testing.T) {
	cfg := writeConfig(t)
	req := `
symptoms:
  - type: video
    description: video_buffering
server_status:
  response_time: 1500
`
	out, err := execute(t, req, "--config", cfg, "diagnose", "-f", "-", "--all", "-o", "json")
	require.NoError(t, err)

	var diags []model.Diagnosis
	require.NoError(t, json.Unmarshal([]byte(out), &diags))
	causes := make([]string, 0, len(diags))
	for _, d := range diags {
		causes = append(causes, d.Cause)
	}
	assert.Contains(t, causes, "server")
}

func TestDiagnoseCmd_PersistThenHistory(t *testing.T) {
	cfg := writeConfig(t)
	_, err := execute(t, "", "--config", cfg, "diagnose",
		"--type", "chat", "--description", "chat_lag", "--reported-issues", "10", "--persist")
	require.NoError(t, err)

	out, err := execute(t, "", "--config", cfg, "history", "-o", "json")
	require.NoError(t, err)
	var entries []model.HistoryEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "chat", entries[0].ProblemType)
}

func TestDiagnoseCmd_Rejections(t *testing.T) {
	cfg := writeConfig(t)

	_, err := execute(t, "", "--config", cfg, "diagnose")
	assert.ErrorContains(t, err, "no symptoms")

	_, err = execute(t, "", "--config", cfg, "diagnose", "--type", "login", "--description", "cannot_login", "--browser", "Netscape")
	assert.ErrorContains(t, err, "invalid browser: Netscape")
	assert.ErrorContains(t, err, "allowed:")

	_, err = execute(t, "", "--config", cfg, "diagnose", "--type", "login", "--description", "cannot_login", "-o", "xml")
	assert.ErrorContains(t, err, "unsupported output format")
}

func TestSymptomsCmd(t *testing.T) {
	out, err := execute(t, "", "symptoms", "-o", "json")
	require.NoError(t, err)

	var vocab map[string][]string
	require.NoError(t, json.Unmarshal([]byte(out), &vocab))
	assert.Equal(t, model.Vocabulary(), vocab)
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "edudiag dev")
}

func TestBuildLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := buildLogger(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	buildLogger(config.LoggingConfig{Level: "info", Format: "json"}, &buf).Info("hello")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
}
