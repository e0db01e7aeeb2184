package interfaces

import (
	"context"

	"casevault/server/repository/model"
)

// TaskStatusUpdate carries the mutable execution-status fields of a task.
// Nil fields are left untouched.
type TaskStatusUpdate struct {
	StatusShort    *string
	StatusDetail   *string
	StatusProgress *string
	Result         *string
	Runtime        *float64
	ErrorException *string
	ErrorTraceback *string
}

// WorkflowRepo defines the interface for the workflow repository.
// It handles workflows, their ordered tasks and workflow templates.
type WorkflowRepo interface {
	// CreateWorkflow persists a new workflow and associates it with the
	// given files. The workflow UUID is assigned on creation.
	CreateWorkflow(ctx context.Context, workflow model.Workflow, fileIDs []uint) (model.Workflow, error)

	// GetWorkflow retrieves a workflow by ID with its files and tasks
	// preloaded, tasks in ascending identifier order (creation order).
	// It returns (nil, nil) when absent.
	GetWorkflow(ctx context.Context, workflowID uint) (*model.Workflow, error)

	// ListFolderWorkflows retrieves all workflows in a folder, most
	// recent first.
	ListFolderWorkflows(ctx context.Context, folderID uint) ([]model.Workflow, error)

	// ListFileWorkflows retrieves all workflows referencing a file.
	ListFileWorkflows(ctx context.Context, fileID uint) ([]model.Workflow, error)

	// UpdateWorkflow saves the non-zero fields of a workflow and returns
	// the stored row.
	UpdateWorkflow(ctx context.Context, workflow model.Workflow) (model.Workflow, error)

	// DeleteWorkflow removes a workflow and cascades to its tasks. Files
	// referencing those tasks keep their rows; only the association is
	// affected. It returns ErrNotFound if the workflow does not exist.
	DeleteWorkflow(ctx context.Context, workflowID uint) error

	// CreateTask persists a new task belonging to a workflow.
	CreateTask(ctx context.Context, task model.Task) (model.Task, error)

	// ListWorkflowTasks retrieves the tasks of a workflow in ascending
	// identifier order, which reconstructs the execution sequence.
	ListWorkflowTasks(ctx context.Context, workflowID uint) ([]model.Task, error)

	// UpdateTaskStatus applies a status update to a task and returns the
	// stored row. It returns ErrNotFound if the task does not exist.
	UpdateTaskStatus(ctx context.Context, taskID uint, update TaskStatusUpdate) (*model.Task, error)

	// CreateWorkflowTemplate persists a reusable workflow blueprint.
	CreateWorkflowTemplate(ctx context.Context, template model.WorkflowTemplate) (model.WorkflowTemplate, error)

	// GetWorkflowTemplate retrieves a template by ID. Returns (nil, nil) when absent.
	GetWorkflowTemplate(ctx context.Context, templateID uint) (*model.WorkflowTemplate, error)

	// ListWorkflowTemplates retrieves all templates.
	ListWorkflowTemplates(ctx context.Context) ([]model.WorkflowTemplate, error)
}
