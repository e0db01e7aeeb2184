package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"casevault/pkg/x"
	"casevault/server/repository/model"
)

// fileCmd represents the file command
var fileCmd = &cobra.Command{
	Use:     "file",
	Aliases: []string{"f"},
	Short:   "Inspect evidence files",
	Long: `The file command inspects evidence files on the server: listing the
files in a folder and showing a single file with its derived metadata
and content hashes.`,
}

// getFileCmd represents the file get command
var getFileCmd = &cobra.Command{
	Use:     "get --id [file_id]",
	Aliases: []string{"g", "show"},
	Short:   "Get details of a specific file",
	Example: `  casevault file get --id 123
  casevault file get --id 456 --output json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetInt64("id")
		outputFormat, _ := cmd.Flags().GetString("output")
		return getFile(id, outputFormat)
	},
}

// listFileCmd represents the file list command
var listFileCmd = &cobra.Command{
	Use:     "list --folder [folder_id]",
	Aliases: []string{"l", "ls"},
	Short:   "List the files in a folder",
	Example: `  casevault file list --folder 7
  casevault file ls -f 7 -o yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		folderID, _ := cmd.Flags().GetInt64("folder")
		outputFormat, _ := cmd.Flags().GetString("output")
		return listFiles(folderID, outputFormat)
	},
}

func init() {
	fileCmd.AddCommand(getFileCmd, listFileCmd)

	getFileCmd.Flags().Int64P("id", "i", 0, "ID of the file (required)")
	getFileCmd.MarkFlagRequired("id")
	getFileCmd.Flags().StringP("output", "o", "table", "Output format (table, json, yaml)")

	listFileCmd.Flags().Int64P("folder", "f", 0, "ID of the folder (required)")
	listFileCmd.MarkFlagRequired("folder")
	listFileCmd.Flags().StringP("output", "o", "table", "Output format (table, json, yaml)")

	rootCmd.AddCommand(fileCmd)
}

// getFile retrieves and prints a file by its ID
func getFile(id int64, outputFormat string) error {
	client, err := newClient()
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	var file model.File
	if err := client.get(fmt.Sprintf("/api/v1/files/%d", id), &file); err != nil {
		return fmt.Errorf("failed to get file: %w", err)
	}

	switch outputFormat {
	case "json":
		return x.PrintJSON(file)
	case "yaml":
		return x.PrintYAML(file)
	case "table":
		x.PrintTable(
			[]string{"ID", "Name", "UUID", "Size", "MIME", "SHA-256"},
			[][]string{{
				strconv.FormatUint(uint64(file.ID), 10),
				file.DisplayName,
				file.UUID,
				strconv.FormatInt(file.Filesize, 10),
				file.MagicMime,
				file.HashSHA256,
			}},
		)
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

// listFiles retrieves and prints the files in a folder
func listFiles(folderID int64, outputFormat string) error {
	client, err := newClient()
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	var files []model.File
	if err := client.get(fmt.Sprintf("/api/v1/folders/%d/files", folderID), &files); err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	switch outputFormat {
	case "json":
		return x.PrintJSON(files)
	case "yaml":
		return x.PrintYAML(files)
	case "table":
		rows := make([][]string, 0, len(files))
		for _, f := range files {
			rows = append(rows, []string{
				strconv.FormatUint(uint64(f.ID), 10),
				f.DisplayName,
				f.DataType,
				strconv.FormatInt(f.Filesize, 10),
				f.MagicMime,
			})
		}
		x.PrintTable([]string{"ID", "Name", "Data type", "Size", "MIME"}, rows)
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}
