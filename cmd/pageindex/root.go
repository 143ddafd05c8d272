package main

import (
	"github.com/spf13/cobra"

	"github.com/taewook486/PageIndex/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "pageindex",
	Short: "Document structure extraction with LLM-powered TOC analysis",
	Long: `PageIndex turns long PDF and Markdown documents into a hierarchical
structure tree with per-section page ranges, node IDs and summaries.

The pipeline includes:
  - Table of contents detection on the opening pages
  - TOC transcription and mapping to physical page numbers
  - Verification and repair of the mapping against page text
  - Content-based structure generation when no usable TOC exists
  - Node summaries and an optional document description`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./pageindex.yaml or ~/.pageindex/pageindex.yaml)",
	)

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
