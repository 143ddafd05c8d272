// Package jsonutil recovers usable JSON from raw model output. Model text
// reliably contains markdown fences, Python-style None, decorative newlines
// and trailing commas, so a single strict parse is not enough.
package jsonutil

import (
	"encoding/json"
	"log/slog"
	"strings"
)

const (
	fenceOpen  = "```json"
	fenceClose = "```"
)

// Content returns the candidate JSON payload of a model response: the text
// inside a ```json fence when one is present (closing fence matched at the
// last occurrence, tolerating back-tick runs in content), otherwise the whole
// input, trimmed.
func Content(raw string) string {
	if idx := strings.Index(raw, fenceOpen); idx >= 0 {
		raw = raw[idx+len(fenceOpen):]
	}
	if idx := strings.LastIndex(raw, fenceClose); idx >= 0 {
		raw = raw[:idx]
	}
	return strings.TrimSpace(raw)
}

// normalize cleans up issues that commonly break parsing: Python None
// literals and decorative newlines inside fenced blocks.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "None", "null")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.Join(strings.Fields(s), " ")
}

// stripTrailingCommas removes a comma immediately preceding a closing
// bracket or brace. Applied only as a second-stage repair.
func stripTrailingCommas(s string) string {
	for _, pair := range [...][2]string{{",]", "]"}, {",}", "}"}, {", ]", "]"}, {", }", "}"}} {
		s = strings.ReplaceAll(s, pair[0], pair[1])
	}
	return s
}

// ExtractJSON recovers a JSON object from raw model output. It never fails:
// irrecoverable input yields an empty map, observable only through the log.
func ExtractJSON(raw string) map[string]any {
	candidate := normalize(Content(raw))

	var out map[string]any
	if err := json.Unmarshal([]byte(candidate), &out); err == nil {
		return out
	} else {
		slog.Warn("failed to parse model JSON, applying repair pass", "error", err)
	}

	if err := json.Unmarshal([]byte(stripTrailingCommas(candidate)), &out); err != nil {
		slog.Error("failed to parse model JSON after cleanup", "error", err)
		return map[string]any{}
	}
	return out
}
