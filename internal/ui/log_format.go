package ui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// zapTimeLayout matches zapcore.ISO8601TimeEncoder.
const zapTimeLayout = "2006-01-02T15:04:05.000Z0700"

// Entry keys rendered in the header line or not at all.
var logHeaderKeys = map[string]bool{
	"timestamp":    true,
	"level":        true,
	"msg":          true,
	"logger":       true,
	"caller":       true,
	"stacktrace":   true,
	"service_name": true,
	"session_id":   true,
}

func formatLogLines(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, formatLogLine(line))
	}
	return out
}

// formatLogLine renders one JSON log entry as
// "2006-01-02 15:04:05 LEVEL [component] – message" followed by one indented
// line per extra field. Lines that are not JSON objects are returned as is.
func formatLogLine(line string) string {
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		return line
	}

	ts := stringField(entry, "timestamp")
	if parsed, err := time.Parse(zapTimeLayout, ts); err == nil {
		ts = parsed.In(time.Local).Format("2006-01-02 15:04:05")
	}
	level := strings.ToUpper(strings.TrimSpace(stringField(entry, "level")))
	if level == "" {
		level = "INFO"
	}
	parts := []string{ts, level}
	if component := strings.TrimSpace(stringField(entry, "logger")); component != "" {
		parts = append(parts, fmt.Sprintf("[%s]", component))
	}
	header := strings.TrimSpace(strings.Join(parts, " "))
	if message := strings.TrimSpace(stringField(entry, "msg")); message != "" {
		header += " – " + message
	}

	keys := make([]string, 0, len(entry))
	for k := range entry {
		if !logHeaderKeys[k] {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return header
	}
	sort.Strings(keys)

	var builder strings.Builder
	builder.WriteString(header)
	for _, k := range keys {
		value := detailValue(entry[k])
		if value == "" {
			continue
		}
		builder.WriteString("\n    - ")
		builder.WriteString(k)
		builder.WriteString(": ")
		builder.WriteString(value)
	}
	return builder.String()
}

func stringField(entry map[string]any, key string) string {
	if s, ok := entry[key].(string); ok {
		return s
	}
	return ""
}

func detailValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	}
}

var logLevels = map[string]bool{
	"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true,
	"DPANIC": true, "PANIC": true, "FATAL": true,
}

// levelOf extracts the level word from a formatted line.
func levelOf(formatted string) string {
	fields := strings.Fields(formatted)
	if len(fields) > 3 {
		fields = fields[:3]
	}
	for _, f := range fields {
		if logLevels[f] {
			return f
		}
	}
	return ""
}
