package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taewook486/PageIndex/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default pageindex.yaml to the working directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "pageindex.yaml"
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		fmt.Printf("model:                   %s\n", opts.Model)
		fmt.Printf("toc_check_page_num:      %d\n", opts.TocCheckPageNum)
		fmt.Printf("max_page_num_each_node:  %d\n", opts.MaxPageNumEachNode)
		fmt.Printf("max_token_num_each_node: %d\n", opts.MaxTokenNumEachNode)
		fmt.Printf("if_add_node_id:          %s\n", opts.IfAddNodeID)
		fmt.Printf("if_add_node_summary:     %s\n", opts.IfAddNodeSummary)
		fmt.Printf("if_add_node_text:        %s\n", opts.IfAddNodeText)
		fmt.Printf("if_add_doc_description:  %s\n", opts.IfAddDocDescription)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
