package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"casevault/pkg/x"
	"casevault/server/repository/model"
)

// workflowCmd represents the workflow command
var workflowCmd = &cobra.Command{
	Use:     "workflow",
	Aliases: []string{"w", "wf"},
	Short:   "Inspect workflows and their tasks",
	Long: `The workflow command inspects workflows on the server: listing the
workflows in a folder, showing a single workflow with its files and
tasks, and following task execution status.`,
}

// getWorkflowCmd represents the workflow get command
var getWorkflowCmd = &cobra.Command{
	Use:     "get --id [workflow_id]",
	Aliases: []string{"g", "show"},
	Short:   "Get details of a specific workflow",
	Long: `Retrieve and display a workflow by its ID, including its attached
files and its tasks in execution order.
You can specify the output format as table (default), json, or yaml.`,
	Example: `  casevault workflow get --id 123
  casevault workflow get --id 456 --output json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetInt64("id")
		outputFormat, _ := cmd.Flags().GetString("output")
		return getWorkflow(id, outputFormat)
	},
}

// listWorkflowCmd represents the workflow list command
var listWorkflowCmd = &cobra.Command{
	Use:     "list --folder [folder_id]",
	Aliases: []string{"l", "ls"},
	Short:   "List the workflows in a folder",
	Long: `List all workflows in a folder, most recent first.
You can specify the output format as table (default), json, or yaml.`,
	Example: `  casevault workflow list --folder 7
  casevault workflow ls -f 7 -o yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		folderID, _ := cmd.Flags().GetInt64("folder")
		outputFormat, _ := cmd.Flags().GetString("output")
		return listWorkflows(folderID, outputFormat)
	},
}

// workflowTasksCmd represents the workflow tasks command
var workflowTasksCmd = &cobra.Command{
	Use:     "tasks --id [workflow_id]",
	Aliases: []string{"t"},
	Short:   "List the tasks of a workflow in execution order",
	Example: `  casevault workflow tasks --id 123
  casevault workflow tasks -i 123 -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetInt64("id")
		outputFormat, _ := cmd.Flags().GetString("output")
		return listWorkflowTasks(id, outputFormat)
	},
}

func init() {
	workflowCmd.AddCommand(getWorkflowCmd, listWorkflowCmd, workflowTasksCmd)

	for _, cmd := range []*cobra.Command{getWorkflowCmd, workflowTasksCmd} {
		cmd.Flags().Int64P("id", "i", 0, "ID of the workflow (required)")
		cmd.MarkFlagRequired("id")
		cmd.Flags().StringP("output", "o", "table", "Output format (table, json, yaml)")
	}

	listWorkflowCmd.Flags().Int64P("folder", "f", 0, "ID of the folder (required)")
	listWorkflowCmd.MarkFlagRequired("folder")
	listWorkflowCmd.Flags().StringP("output", "o", "table", "Output format (table, json, yaml)")

	rootCmd.AddCommand(workflowCmd)
}

// getWorkflow retrieves and prints a workflow by its ID
func getWorkflow(id int64, outputFormat string) error {
	client, err := newClient()
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	var workflow model.Workflow
	if err := client.get(fmt.Sprintf("/api/v1/workflows/%d", id), &workflow); err != nil {
		return fmt.Errorf("failed to get workflow: %w", err)
	}

	switch outputFormat {
	case "json":
		return x.PrintJSON(workflow)
	case "yaml":
		return x.PrintYAML(workflow)
	case "table":
		x.PrintTable(
			[]string{"ID", "Name", "UUID", "Files", "Tasks"},
			[][]string{{
				strconv.FormatUint(uint64(workflow.ID), 10),
				workflow.DisplayName,
				workflow.UUID,
				strconv.Itoa(len(workflow.Files)),
				strconv.Itoa(len(workflow.Tasks)),
			}},
		)
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

// listWorkflows retrieves and prints the workflows in a folder
func listWorkflows(folderID int64, outputFormat string) error {
	client, err := newClient()
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	var workflows []model.Workflow
	if err := client.get(fmt.Sprintf("/api/v1/folders/%d/workflows", folderID), &workflows); err != nil {
		return fmt.Errorf("failed to list workflows: %w", err)
	}

	switch outputFormat {
	case "json":
		return x.PrintJSON(workflows)
	case "yaml":
		return x.PrintYAML(workflows)
	case "table":
		rows := make([][]string, 0, len(workflows))
		for _, w := range workflows {
			rows = append(rows, []string{
				strconv.FormatUint(uint64(w.ID), 10),
				w.DisplayName,
				x.TruncateMessage(w.Description),
				w.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		x.PrintTable([]string{"ID", "Name", "Description", "Created"}, rows)
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

// listWorkflowTasks retrieves and prints the tasks of a workflow
func listWorkflowTasks(workflowID int64, outputFormat string) error {
	client, err := newClient()
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	var tasks []model.Task
	if err := client.get(fmt.Sprintf("/api/v1/workflows/%d/tasks", workflowID), &tasks); err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	switch outputFormat {
	case "json":
		return x.PrintJSON(tasks)
	case "yaml":
		return x.PrintYAML(tasks)
	case "table":
		rows := make([][]string, 0, len(tasks))
		for _, task := range tasks {
			rows = append(rows, []string{
				strconv.FormatUint(uint64(task.ID), 10),
				task.DisplayName,
				task.StatusShort,
				fmt.Sprintf("%.2fs", task.Runtime),
				x.TruncateMessage(task.ErrorException),
			})
		}
		x.PrintTable([]string{"ID", "Name", "Status", "Runtime", "Error"}, rows)
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}
