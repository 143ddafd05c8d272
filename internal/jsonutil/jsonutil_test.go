package jsonutil

import (
	"reflect"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]any
	}{
		{
			name: "plain object",
			raw:  `{"key": "value"}`,
			want: map[string]any{"key": "value"},
		},
		{
			name: "fenced block",
			raw:  "```json\n{\"key\": \"value\"}\n```",
			want: map[string]any{"key": "value"},
		},
		{
			name: "fenced block with surrounding prose",
			raw:  "Here is the result:\n```json\n{\"toc_detected\": \"yes\"}\n```\nLet me know if you need more.",
			want: map[string]any{"toc_detected": "yes"},
		},
		{
			name: "python none and trailing comma",
			raw:  "```json\n{\"a\": None,}\n```",
			want: map[string]any{"a": nil},
		},
		{
			name: "newlines inside values collapse",
			raw:  "{\"key\":\n\"value\"}",
			want: map[string]any{"key": "value"},
		},
		{
			name: "trailing comma in array",
			raw:  `{"items": [1, 2, 3,]}`,
			want: map[string]any{"items": []any{float64(1), float64(2), float64(3)}},
		},
		{
			name: "irrecoverable input returns empty map",
			raw:  "not json",
			want: map[string]any{},
		},
		{
			name: "nested structure",
			raw:  `{"outer": {"inner": "value"}}`,
			want: map[string]any{"outer": map[string]any{"inner": "value"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSON(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractJSON(%q) = %#v, want %#v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestContent(t *testing.T) {
	t.Run("last closing fence wins", func(t *testing.T) {
		raw := "```json\n{\"code\": \"```inline```\"}\n```"
		got := Content(raw)
		if got != "{\"code\": \"```inline```\"}" {
			// The closer is matched at the last occurrence so back-tick runs
			// inside content survive.
			t.Errorf("Content = %q", got)
		}
	})

	t.Run("no fences passes through", func(t *testing.T) {
		if got := Content("  {\"a\": 1}  "); got != "{\"a\": 1}" {
			t.Errorf("Content = %q", got)
		}
	})
}
