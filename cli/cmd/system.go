package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"casevault/pkg/x"
)

// systemCmd represents the system command
var systemCmd = &cobra.Command{
	Use:     "system",
	Aliases: []string{"sys"},
	Short:   "Show the server system configuration",
	Long: `Retrieve and display the server system configuration: the enabled LLM
services, the supported data types and the active cloud provider.
You can specify the output format as table (default), json, or yaml.`,
	Example: `  casevault system
  casevault system --output json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFormat, _ := cmd.Flags().GetString("output")
		return getSystemConfig(outputFormat)
	},
}

func init() {
	systemCmd.Flags().StringP("output", "o", "table", "Output format (table, json, yaml)")
	rootCmd.AddCommand(systemCmd)
}

type systemConfig struct {
	ActiveLLMs  []string `json:"active_llms"`
	DataTypes   []string `json:"data_types"`
	ActiveCloud string   `json:"active_cloud"`
}

// getSystemConfig fetches and prints the server system configuration
func getSystemConfig(outputFormat string) error {
	client, err := newClient()
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	var cfg systemConfig
	if err := client.get("/system/", &cfg); err != nil {
		return fmt.Errorf("failed to get system configuration: %w", err)
	}

	switch outputFormat {
	case "json":
		return x.PrintJSON(cfg)
	case "yaml":
		return x.PrintYAML(cfg)
	case "table":
		x.PrintTable([]string{"Active LLMs", "Data types", "Cloud"}, [][]string{{
			strings.Join(cfg.ActiveLLMs, ", "),
			strings.Join(cfg.DataTypes, ", "),
			cfg.ActiveCloud,
		}})
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}
