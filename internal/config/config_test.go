package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMerge(t *testing.T) {
	t.Run("overrides replace defaults", func(t *testing.T) {
		opts, err := Merge(Default(), map[string]any{
			"model":              "gpt-4o",
			"toc_check_page_num": 5,
		})
		if err != nil {
			t.Fatalf("Merge() error = %v", err)
		}
		if opts.Model != "gpt-4o" {
			t.Errorf("Model = %q, want gpt-4o", opts.Model)
		}
		if opts.TocCheckPageNum != 5 {
			t.Errorf("TocCheckPageNum = %d, want 5", opts.TocCheckPageNum)
		}
		// Untouched keys keep their defaults.
		if opts.MaxPageNumEachNode != 10 {
			t.Errorf("MaxPageNumEachNode = %d, want 10", opts.MaxPageNumEachNode)
		}
	})

	t.Run("empty overrides yield defaults", func(t *testing.T) {
		opts, err := Merge(Default(), nil)
		if err != nil {
			t.Fatalf("Merge() error = %v", err)
		}
		if opts != Default() {
			t.Errorf("opts = %+v, want defaults", opts)
		}
	})

	t.Run("unknown keys are fatal and named", func(t *testing.T) {
		_, err := Merge(Default(), map[string]any{
			"modle":    "typo",
			"max_page": 3,
		})
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("error = %v, want *ConfigError", err)
		}
		for _, key := range []string{"modle", "max_page"} {
			if !strings.Contains(cfgErr.Error(), key) {
				t.Errorf("error %q does not name key %q", cfgErr.Error(), key)
			}
		}
	})

	t.Run("validation rejects bad values", func(t *testing.T) {
		cases := map[string]any{
			"toc_check_page_num":      0,
			"max_page_num_each_node":  -1,
			"max_token_num_each_node": 99,
			"if_add_node_id":          "Yes", // case-sensitive
			"if_add_node_summary":     "true",
		}
		for key, val := range cases {
			if _, err := Merge(Default(), map[string]any{key: val}); err == nil {
				t.Errorf("Merge(%s=%v) should fail", key, val)
			}
		}
	})
}

func TestBoolAccessors(t *testing.T) {
	opts := Default()
	if !opts.AddNodeID() || !opts.AddNodeSummary() {
		t.Error("defaults should enable node IDs and summaries")
	}
	if opts.AddNodeText() || opts.AddDocDescription() {
		t.Error("defaults should disable node text and doc description")
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Run("file values override defaults", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "pageindex.yaml")
		content := "model: gpt-4o-mini\nif_add_node_text: \"yes\"\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		opts, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if opts.Model != "gpt-4o-mini" {
			t.Errorf("Model = %q", opts.Model)
		}
		if !opts.AddNodeText() {
			t.Error("if_add_node_text should be enabled")
		}
	})

	t.Run("unknown file keys are fatal", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "pageindex.yaml")
		if err := os.WriteFile(path, []byte("mdoel: oops\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		_, err := Load(path)
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("error = %v, want *ConfigError", err)
		}
	})
}

func TestWriteDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pageindex.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	opts, err := Load(path)
	if err != nil {
		t.Fatalf("Load() of written defaults error = %v", err)
	}
	if opts != Default() {
		t.Errorf("round-tripped options = %+v, want defaults", opts)
	}
}
