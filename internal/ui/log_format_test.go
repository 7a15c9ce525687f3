package ui

import (
	"strings"
	"testing"
	"time"
)

func TestFormatLogLine(t *testing.T) {
	oldLocal := time.Local
	time.Local = time.FixedZone("TestLocal", -5*60*60)
	defer func() {
		time.Local = oldLocal
	}()

	line := `{"level":"warn","timestamp":"2025-12-13T10:11:12.000Z","logger":"submit",` +
		`"msg":" report delivered ","service_name":"intake","session_id":"abc","status":500,"host":"hooks.example"}`
	got := formatLogLine(line)
	if want := "2025-12-13 05:11:12 WARN [submit] – report delivered"; !strings.HasPrefix(got, want) {
		t.Fatalf("formatLogLine = %q, want prefix %q", got, want)
	}
	if !strings.Contains(got, "\n    - host: hooks.example\n    - status: 500") {
		t.Fatalf("formatLogLine details = %q", got)
	}
	if strings.Contains(got, "session_id") || strings.Contains(got, "service_name") {
		t.Fatalf("formatLogLine leaked header keys: %q", got)
	}
}

func TestFormatLogLine_NotJSON(t *testing.T) {
	if got := formatLogLine("plain text"); got != "plain text" {
		t.Fatalf("formatLogLine = %q, want plain text", got)
	}
}

func TestFormatLogLines_SkipsBlank(t *testing.T) {
	got := formatLogLines([]string{"", `{"level":"info","msg":"x"}`, "  "})
	if len(got) != 1 || got[0] != "INFO – x" {
		t.Fatalf("formatLogLines = %#v", got)
	}
}

func TestLevelOf(t *testing.T) {
	if got := levelOf("2025-12-13 05:11:12 ERROR – boom"); got != "ERROR" {
		t.Fatalf("levelOf = %q, want ERROR", got)
	}
	if got := levelOf("WARN – no timestamp"); got != "WARN" {
		t.Fatalf("levelOf = %q, want WARN", got)
	}
	if got := levelOf("short"); got != "" {
		t.Fatalf("levelOf = %q, want empty", got)
	}
}
