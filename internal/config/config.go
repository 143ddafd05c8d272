// Package config holds the processing options: defaults, strict merging of
// caller overrides, file/env loading, and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// Options is the resolved option set recognized by the pipeline. The yes/no
// flags keep their textual form at the file boundary for compatibility with
// existing configs; use the boolean accessors everywhere else.
type Options struct {
	Model               string `mapstructure:"model" yaml:"model"`
	TocCheckPageNum     int    `mapstructure:"toc_check_page_num" yaml:"toc_check_page_num"`
	MaxPageNumEachNode  int    `mapstructure:"max_page_num_each_node" yaml:"max_page_num_each_node"`
	MaxTokenNumEachNode int    `mapstructure:"max_token_num_each_node" yaml:"max_token_num_each_node"`
	IfAddNodeID         string `mapstructure:"if_add_node_id" yaml:"if_add_node_id"`
	IfAddNodeSummary    string `mapstructure:"if_add_node_summary" yaml:"if_add_node_summary"`
	IfAddNodeText       string `mapstructure:"if_add_node_text" yaml:"if_add_node_text"`
	IfAddDocDescription string `mapstructure:"if_add_doc_description" yaml:"if_add_doc_description"`
}

// Default returns the default option set.
func Default() Options {
	return Options{
		Model:               "glm-5",
		TocCheckPageNum:     20,
		MaxPageNumEachNode:  10,
		MaxTokenNumEachNode: 20000,
		IfAddNodeID:         "yes",
		IfAddNodeSummary:    "yes",
		IfAddNodeText:       "no",
		IfAddDocDescription: "no",
	}
}

// AddNodeID reports whether sequential node IDs are assigned.
func (o Options) AddNodeID() bool { return o.IfAddNodeID == "yes" }

// AddNodeSummary reports whether per-node summaries are generated.
func (o Options) AddNodeSummary() bool { return o.IfAddNodeSummary == "yes" }

// AddNodeText reports whether node text is kept in the output.
func (o Options) AddNodeText() bool { return o.IfAddNodeText == "yes" }

// AddDocDescription reports whether a document description is generated.
func (o Options) AddDocDescription() bool { return o.IfAddDocDescription == "yes" }

func (o Options) asMap() map[string]any {
	return map[string]any{
		"model":                   o.Model,
		"toc_check_page_num":      o.TocCheckPageNum,
		"max_page_num_each_node":  o.MaxPageNumEachNode,
		"max_token_num_each_node": o.MaxTokenNumEachNode,
		"if_add_node_id":          o.IfAddNodeID,
		"if_add_node_summary":     o.IfAddNodeSummary,
		"if_add_node_text":        o.IfAddNodeText,
		"if_add_doc_description":  o.IfAddDocDescription,
	}
}

// ConfigError is the fatal error for unrecognized option keys. It is never
// retried; processing must not start with a misspelled configuration.
type ConfigError struct {
	Keys []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("unknown config keys: %s", strings.Join(e.Keys, ", "))
}

// unknownKeys returns the override keys absent from the defaults, sorted.
func unknownKeys(defaults map[string]any, overrides map[string]any) []string {
	var unknown []string
	for k := range overrides {
		if _, ok := defaults[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// Merge applies overrides on top of defaults. Every override key must exist
// in the defaults; otherwise a *ConfigError naming the offending keys is
// returned and nothing is applied. The merged result is validated.
func Merge(defaults Options, overrides map[string]any) (Options, error) {
	base := defaults.asMap()
	if unknown := unknownKeys(base, overrides); len(unknown) > 0 {
		return Options{}, &ConfigError{Keys: unknown}
	}

	v := viper.New()
	for key, val := range base {
		v.SetDefault(key, val)
	}
	for key, val := range overrides {
		v.Set(key, val)
	}

	var merged Options
	if err := v.Unmarshal(&merged); err != nil {
		return Options{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := merged.Validate(); err != nil {
		return Options{}, err
	}
	return merged, nil
}

// Validate checks option ranges and flag values.
func (o Options) Validate() error {
	if o.Model == "" {
		return errors.New("model must not be empty")
	}
	if o.TocCheckPageNum < 1 {
		return fmt.Errorf("toc_check_page_num must be >= 1, got %d", o.TocCheckPageNum)
	}
	if o.MaxPageNumEachNode < 1 {
		return fmt.Errorf("max_page_num_each_node must be >= 1, got %d", o.MaxPageNumEachNode)
	}
	if o.MaxTokenNumEachNode < 100 {
		return fmt.Errorf("max_token_num_each_node must be >= 100, got %d", o.MaxTokenNumEachNode)
	}
	for key, val := range map[string]string{
		"if_add_node_id":         o.IfAddNodeID,
		"if_add_node_summary":    o.IfAddNodeSummary,
		"if_add_node_text":       o.IfAddNodeText,
		"if_add_doc_description": o.IfAddDocDescription,
	} {
		if val != "yes" && val != "no" {
			return fmt.Errorf("%s must be \"yes\" or \"no\", got %q", key, val)
		}
	}
	return nil
}

// Load reads options from an optional config file and the environment, on
// top of the defaults. cfgFile may be empty, in which case pageindex.yaml is
// searched in the working directory and ~/.pageindex.
func Load(cfgFile string) (Options, error) {
	v := viper.New()
	defaults := Default().asMap()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix("PAGEINDEX")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("pageindex")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.pageindex")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Options{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if unknown := unknownKeys(defaults, v.AllSettings()); len(unknown) > 0 {
		return Options{}, &ConfigError{Keys: unknown}
	}

	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return Options{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# PageIndex configuration
# The CHATGPT_API_KEY and OPENAI_BASE_URL environment variables configure the
# model endpoint; set them in your shell or a .env file.

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
