package gormimpl

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	interfaces "casevault/server/repository/interface"
	"casevault/server/repository/model"
)

var (
	workflowOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_repository_operations_total",
			Help: "The total number of workflow repository operations",
		},
		[]string{"operation", "status"},
	)
	workflowLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workflow_repository_operation_duration_seconds",
			Help:    "Duration of workflow repository operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// WorkflowRepo implements the WorkflowRepo interface using GORM for
// database operations.
type WorkflowRepo struct {
	db *gorm.DB
}

// CreateWorkflow creates a new workflow in the database and associates
// it with the given files. It returns the created workflow with its
// assigned ID and UUID, or an error if any file does not exist.
func (s *WorkflowRepo) CreateWorkflow(ctx context.Context, workflow model.Workflow, fileIDs []uint) (model.Workflow, error) {
	timer := prometheus.NewTimer(workflowLatency.WithLabelValues("create"))
	defer timer.ObserveDuration()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fileIDs) > 0 {
			var files []model.File
			if err := tx.Find(&files, fileIDs).Error; err != nil {
				return fmt.Errorf("failed to resolve workflow files: %w", err)
			}
			if len(files) != len(fileIDs) {
				return fmt.Errorf("%w: one or more workflow files", interfaces.ErrNotFound)
			}
			workflow.Files = files
		}

		if err := tx.Create(&workflow).Error; err != nil {
			return fmt.Errorf("failed to create workflow: %w", err)
		}
		return nil
	})
	if err != nil {
		workflowOperations.WithLabelValues("create", "error").Inc()
		return model.Workflow{}, err
	}

	workflowOperations.WithLabelValues("create", "success").Inc()
	return workflow, nil
}

// GetWorkflow retrieves a workflow by its ID with files and tasks
// preloaded. Tasks come back in ascending identifier order, which is
// their creation order and reconstructs the execution sequence.
// Absence is not an error: it returns (nil, nil) when no workflow exists.
func (s *WorkflowRepo) GetWorkflow(ctx context.Context, workflowID uint) (*model.Workflow, error) {
	timer := prometheus.NewTimer(workflowLatency.WithLabelValues("get"))
	defer timer.ObserveDuration()

	var workflow model.Workflow
	err := s.db.WithContext(ctx).
		Preload("Files").
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("tasks.id ASC")
		}).
		First(&workflow, workflowID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			workflowOperations.WithLabelValues("get", "success").Inc()
			return nil, nil
		}
		workflowOperations.WithLabelValues("get", "error").Inc()
		return nil, fmt.Errorf("failed to retrieve workflow by ID: %w", err)
	}
	workflowOperations.WithLabelValues("get", "success").Inc()
	return &workflow, nil
}

// ListFolderWorkflows retrieves all workflows in a folder, most recent
// first.
func (s *WorkflowRepo) ListFolderWorkflows(ctx context.Context, folderID uint) ([]model.Workflow, error) {
	timer := prometheus.NewTimer(workflowLatency.WithLabelValues("list_folder"))
	defer timer.ObserveDuration()

	var workflows []model.Workflow
	if err := s.db.WithContext(ctx).Where("folder_id = ?", folderID).Order("id DESC").Find(&workflows).Error; err != nil {
		workflowOperations.WithLabelValues("list_folder", "error").Inc()
		return nil, fmt.Errorf("failed to retrieve folder workflows: %w", err)
	}
	workflowOperations.WithLabelValues("list_folder", "success").Inc()
	return workflows, nil
}

// ListFileWorkflows retrieves all workflows referencing a file through
// the file/workflow association.
func (s *WorkflowRepo) ListFileWorkflows(ctx context.Context, fileID uint) ([]model.Workflow, error) {
	timer := prometheus.NewTimer(workflowLatency.WithLabelValues("list_file"))
	defer timer.ObserveDuration()

	var workflows []model.Workflow
	err := s.db.WithContext(ctx).
		Joins("JOIN file_workflows ON file_workflows.workflow_id = workflows.id").
		Where("file_workflows.file_id = ?", fileID).
		Order("workflows.id DESC").
		Find(&workflows).Error
	if err != nil {
		workflowOperations.WithLabelValues("list_file", "error").Inc()
		return nil, fmt.Errorf("failed to retrieve file workflows: %w", err)
	}
	workflowOperations.WithLabelValues("list_file", "success").Inc()
	return workflows, nil
}

// UpdateWorkflow saves the non-zero fields of a workflow and returns
// the stored row.
func (s *WorkflowRepo) UpdateWorkflow(ctx context.Context, workflow model.Workflow) (model.Workflow, error) {
	timer := prometheus.NewTimer(workflowLatency.WithLabelValues("update"))
	defer timer.ObserveDuration()

	result := s.db.WithContext(ctx).Model(&model.Workflow{}).Where("id = ?", workflow.ID).Updates(model.Workflow{
		DisplayName: workflow.DisplayName,
		Description: workflow.Description,
		SpecJSON:    workflow.SpecJSON,
	})
	if result.Error != nil {
		workflowOperations.WithLabelValues("update", "error").Inc()
		return model.Workflow{}, fmt.Errorf("failed to update workflow: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		workflowOperations.WithLabelValues("update", "error").Inc()
		return model.Workflow{}, fmt.Errorf("%w: workflow %d", interfaces.ErrNotFound, workflow.ID)
	}

	var stored model.Workflow
	if err := s.db.WithContext(ctx).First(&stored, workflow.ID).Error; err != nil {
		workflowOperations.WithLabelValues("update", "error").Inc()
		return model.Workflow{}, fmt.Errorf("failed to reload workflow: %w", err)
	}
	workflowOperations.WithLabelValues("update", "success").Inc()
	return stored, nil
}

// DeleteWorkflow removes a workflow and all of its tasks in a single
// transaction. Files referencing those tasks as input or output keep
// their rows; only the task references and the file/workflow
// association are removed. Deleting a nonexistent workflow is an
// explicit ErrNotFound.
func (s *WorkflowRepo) DeleteWorkflow(ctx context.Context, workflowID uint) error {
	timer := prometheus.NewTimer(workflowLatency.WithLabelValues("delete"))
	defer timer.ObserveDuration()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var workflow model.Workflow
		if err := tx.First(&workflow, workflowID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: workflow %d", interfaces.ErrNotFound, workflowID)
			}
			return fmt.Errorf("failed to load workflow for deletion: %w", err)
		}

		// Detach files pointing at the workflow's tasks before the
		// cascade so the file rows survive with cleared references.
		var taskIDs []uint
		if err := tx.Model(&model.Task{}).Where("workflow_id = ?", workflowID).Pluck("id", &taskIDs).Error; err != nil {
			return fmt.Errorf("failed to list workflow tasks: %w", err)
		}
		if len(taskIDs) > 0 {
			if err := tx.Model(&model.File{}).Where("task_input_id IN ?", taskIDs).Update("task_input_id", nil).Error; err != nil {
				return fmt.Errorf("failed to clear file input references: %w", err)
			}
			if err := tx.Model(&model.File{}).Where("task_output_id IN ?", taskIDs).Update("task_output_id", nil).Error; err != nil {
				return fmt.Errorf("failed to clear file output references: %w", err)
			}
			if err := tx.Where("workflow_id = ?", workflowID).Delete(&model.Task{}).Error; err != nil {
				return fmt.Errorf("failed to delete workflow tasks: %w", err)
			}
		}

		if err := tx.Model(&workflow).Association("Files").Clear(); err != nil {
			return fmt.Errorf("failed to clear workflow file associations: %w", err)
		}

		if err := tx.Delete(&workflow).Error; err != nil {
			return fmt.Errorf("failed to delete workflow: %w", err)
		}
		return nil
	})
	if err != nil {
		workflowOperations.WithLabelValues("delete", "error").Inc()
		return err
	}

	workflowOperations.WithLabelValues("delete", "success").Inc()
	return nil
}

// CreateTask creates a new task belonging to a workflow. It returns the
// created task with its assigned ID and UUID.
func (s *WorkflowRepo) CreateTask(ctx context.Context, task model.Task) (model.Task, error) {
	timer := prometheus.NewTimer(workflowLatency.WithLabelValues("create_task"))
	defer timer.ObserveDuration()

	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		workflowOperations.WithLabelValues("create_task", "error").Inc()
		return model.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	workflowOperations.WithLabelValues("create_task", "success").Inc()
	return task, nil
}

// ListWorkflowTasks retrieves the tasks of a workflow in ascending
// identifier order.
func (s *WorkflowRepo) ListWorkflowTasks(ctx context.Context, workflowID uint) ([]model.Task, error) {
	timer := prometheus.NewTimer(workflowLatency.WithLabelValues("list_tasks"))
	defer timer.ObserveDuration()

	var tasks []model.Task
	if err := s.db.WithContext(ctx).Where("workflow_id = ?", workflowID).Order("id ASC").Find(&tasks).Error; err != nil {
		workflowOperations.WithLabelValues("list_tasks", "error").Inc()
		return nil, fmt.Errorf("failed to retrieve workflow tasks: %w", err)
	}
	workflowOperations.WithLabelValues("list_tasks", "success").Inc()
	return tasks, nil
}

// UpdateTaskStatus applies the set fields of a status update to a task
// and returns the stored row. It returns ErrNotFound if the task does
// not exist.
func (s *WorkflowRepo) UpdateTaskStatus(ctx context.Context, taskID uint, update interfaces.TaskStatusUpdate) (*model.Task, error) {
	timer := prometheus.NewTimer(workflowLatency.WithLabelValues("update_task_status"))
	defer timer.ObserveDuration()

	values := map[string]interface{}{}
	if update.StatusShort != nil {
		values["status_short"] = *update.StatusShort
	}
	if update.StatusDetail != nil {
		values["status_detail"] = *update.StatusDetail
	}
	if update.StatusProgress != nil {
		values["status_progress"] = *update.StatusProgress
	}
	if update.Result != nil {
		values["result"] = *update.Result
	}
	if update.Runtime != nil {
		values["runtime"] = *update.Runtime
	}
	if update.ErrorException != nil {
		values["error_exception"] = *update.ErrorException
	}
	if update.ErrorTraceback != nil {
		values["error_traceback"] = *update.ErrorTraceback
	}

	var task model.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: task %d", interfaces.ErrNotFound, taskID)
			}
			return fmt.Errorf("failed to load task: %w", err)
		}
		if len(values) == 0 {
			return nil
		}
		if err := tx.Model(&task).Updates(values).Error; err != nil {
			return fmt.Errorf("failed to update task status: %w", err)
		}
		return nil
	})
	if err != nil {
		workflowOperations.WithLabelValues("update_task_status", "error").Inc()
		return nil, err
	}

	workflowOperations.WithLabelValues("update_task_status", "success").Inc()
	return &task, nil
}

// CreateWorkflowTemplate persists a reusable workflow blueprint.
func (s *WorkflowRepo) CreateWorkflowTemplate(ctx context.Context, template model.WorkflowTemplate) (model.WorkflowTemplate, error) {
	timer := prometheus.NewTimer(workflowLatency.WithLabelValues("create_template"))
	defer timer.ObserveDuration()

	if err := s.db.WithContext(ctx).Create(&template).Error; err != nil {
		workflowOperations.WithLabelValues("create_template", "error").Inc()
		return model.WorkflowTemplate{}, fmt.Errorf("failed to create workflow template: %w", err)
	}
	workflowOperations.WithLabelValues("create_template", "success").Inc()
	return template, nil
}

// GetWorkflowTemplate retrieves a template by its ID. Absence is not an
// error: it returns (nil, nil) when no template exists.
func (s *WorkflowRepo) GetWorkflowTemplate(ctx context.Context, templateID uint) (*model.WorkflowTemplate, error) {
	timer := prometheus.NewTimer(workflowLatency.WithLabelValues("get_template"))
	defer timer.ObserveDuration()

	var template model.WorkflowTemplate
	if err := s.db.WithContext(ctx).First(&template, templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			workflowOperations.WithLabelValues("get_template", "success").Inc()
			return nil, nil
		}
		workflowOperations.WithLabelValues("get_template", "error").Inc()
		return nil, fmt.Errorf("failed to retrieve workflow template by ID: %w", err)
	}
	workflowOperations.WithLabelValues("get_template", "success").Inc()
	return &template, nil
}

// ListWorkflowTemplates retrieves all workflow templates.
func (s *WorkflowRepo) ListWorkflowTemplates(ctx context.Context) ([]model.WorkflowTemplate, error) {
	timer := prometheus.NewTimer(workflowLatency.WithLabelValues("list_templates"))
	defer timer.ObserveDuration()

	var templates []model.WorkflowTemplate
	if err := s.db.WithContext(ctx).Find(&templates).Error; err != nil {
		workflowOperations.WithLabelValues("list_templates", "error").Inc()
		return nil, fmt.Errorf("failed to retrieve workflow templates: %w", err)
	}
	workflowOperations.WithLabelValues("list_templates", "success").Inc()
	return templates, nil
}

// NewWorkflowRepo creates and returns a new instance of WorkflowRepo.
func NewWorkflowRepo(db *gorm.DB) interfaces.WorkflowRepo {
	return &WorkflowRepo{db: db}
}
