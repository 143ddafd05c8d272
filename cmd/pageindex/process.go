package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/taewook486/PageIndex/internal/config"
	"github.com/taewook486/PageIndex/internal/pageindex"
	"github.com/taewook486/PageIndex/internal/pagesource"
	"github.com/taewook486/PageIndex/internal/providers"
	"github.com/taewook486/PageIndex/internal/structure"
)

var processOutputDir string

var processCmd = &cobra.Command{
	Use:   "process <document>",
	Short: "Extract the structure tree of a PDF or Markdown document",
	Long: `Process a document and write its structure tree as JSON.

The model endpoint is configured through the CHATGPT_API_KEY and optional
OPENAI_BASE_URL environment variables; a .env file in the working directory
is picked up automatically.

Examples:
  pageindex process book.pdf
  pageindex process notes.md --model gpt-4o
  pageindex process book.pdf --if-add-node-text yes --output-dir ./out`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(logger)

		// Optional .env for the API credentials.
		_ = godotenv.Load()

		opts, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		opts, err = config.Merge(opts, flagOverrides(cmd))
		if err != nil {
			return err
		}

		apiKey := os.Getenv("CHATGPT_API_KEY")
		if apiKey == "" {
			return fmt.Errorf("CHATGPT_API_KEY is not set")
		}

		client := providers.NewOpenAIClient(providers.OpenAIConfig{
			APIKey:       apiKey,
			BaseURL:      os.Getenv("OPENAI_BASE_URL"),
			DefaultModel: opts.Model,
			Limiter:      providers.NewRateLimiter(providers.DefaultMaxConcurrent, providers.DefaultPacingDelay),
			Logger:       logger,
		})
		proc := pageindex.New(client, opts, logger)

		path := args[0]
		var result *structure.DocumentStructure
		switch strings.ToLower(filepath.Ext(path)) {
		case ".pdf":
			doc, err := pagesource.LoadPDF(path)
			if err != nil {
				return err
			}
			result, err = proc.ProcessPDF(ctx, doc)
			if err != nil {
				return err
			}
		case ".md", ".markdown":
			src, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			doc, err := pagesource.ParseMarkdown(src, path)
			if err != nil {
				return err
			}
			result, err = proc.ProcessMarkdown(ctx, doc)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported document type %q, expected .pdf or .md", filepath.Ext(path))
		}

		if err := os.MkdirAll(processOutputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		out := filepath.Join(processOutputDir, result.DocName+"_structure.json")
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal structure: %w", err)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}

		logger.Info("structure written", "path", out)
		return nil
	},
}

// flagOverrides collects only the option flags the user actually set, so
// config file values survive unless overridden on the command line.
func flagOverrides(cmd *cobra.Command) map[string]any {
	overrides := map[string]any{}
	fs := cmd.Flags()

	for flag, key := range map[string]string{
		"model":                  "model",
		"if-add-node-id":         "if_add_node_id",
		"if-add-node-summary":    "if_add_node_summary",
		"if-add-node-text":       "if_add_node_text",
		"if-add-doc-description": "if_add_doc_description",
	} {
		if fs.Changed(flag) {
			v, _ := fs.GetString(flag)
			overrides[key] = v
		}
	}
	for flag, key := range map[string]string{
		"toc-check-page-num":      "toc_check_page_num",
		"max-page-num-each-node":  "max_page_num_each_node",
		"max-token-num-each-node": "max_token_num_each_node",
	} {
		if fs.Changed(flag) {
			v, _ := fs.GetInt(flag)
			overrides[key] = v
		}
	}
	return overrides
}

func init() {
	defaults := config.Default()
	processCmd.Flags().StringVar(&processOutputDir, "output-dir", "./results", "directory for the structure JSON")
	processCmd.Flags().String("model", defaults.Model, "model to use for all calls")
	processCmd.Flags().Int("toc-check-page-num", defaults.TocCheckPageNum, "opening pages scanned for a table of contents")
	processCmd.Flags().Int("max-page-num-each-node", defaults.MaxPageNumEachNode, "page cap per generated group")
	processCmd.Flags().Int("max-token-num-each-node", defaults.MaxTokenNumEachNode, "token cap per generated group")
	processCmd.Flags().String("if-add-node-id", defaults.IfAddNodeID, "assign sequential node IDs (yes/no)")
	processCmd.Flags().String("if-add-node-summary", defaults.IfAddNodeSummary, "generate per-node summaries (yes/no)")
	processCmd.Flags().String("if-add-node-text", defaults.IfAddNodeText, "keep node text in the output (yes/no)")
	processCmd.Flags().String("if-add-doc-description", defaults.IfAddDocDescription, "generate a document description (yes/no)")
}
