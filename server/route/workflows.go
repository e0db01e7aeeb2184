package route

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	interfaces "casevault/server/repository/interface"
	"casevault/server/repository/model"
)

type CreateWorkflowRequest struct {
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	SpecJSON    string `json:"spec_json"`
	FolderID    *uint  `json:"folder_id"`
	FileIDs     []uint `json:"file_ids"`
	TemplateID  *uint  `json:"template_id"`
}

// CreateWorkflow creates a workflow over a set of files, optionally
// seeded from a stored template.
func (s *Server) CreateWorkflow(c *gin.Context) {
	var req CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	workflow := model.Workflow{
		DisplayName: req.DisplayName,
		Description: req.Description,
		SpecJSON:    req.SpecJSON,
		UserID:      user.ID,
		FolderID:    req.FolderID,
	}

	if req.TemplateID != nil {
		template, err := s.store.WorkflowRepo().GetWorkflowTemplate(c.Request.Context(), *req.TemplateID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load template"})
			return
		}
		if template == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
			return
		}
		if workflow.DisplayName == "" {
			workflow.DisplayName = template.DisplayName
		}
		if workflow.SpecJSON == "" {
			workflow.SpecJSON = template.SpecJSON
		}
	}

	created, err := s.store.WorkflowRepo().CreateWorkflow(c.Request.Context(), workflow, req.FileIDs)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "One or more files do not exist"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create workflow"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetWorkflow returns a workflow with its files and tasks preloaded.
func (s *Server) GetWorkflow(c *gin.Context) {
	workflowID, ok := paramID(c, "id")
	if !ok {
		return
	}

	workflow, err := s.store.WorkflowRepo().GetWorkflow(c.Request.Context(), workflowID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get workflow"})
		return
	}
	if workflow == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workflow not found"})
		return
	}
	c.JSON(http.StatusOK, workflow)
}

type UpdateWorkflowRequest struct {
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	SpecJSON    string `json:"spec_json"`
}

// UpdateWorkflow saves the provided workflow fields.
func (s *Server) UpdateWorkflow(c *gin.Context) {
	workflowID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := s.store.WorkflowRepo().GetWorkflow(c.Request.Context(), workflowID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get workflow"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workflow not found"})
		return
	}

	existing.DisplayName = req.DisplayName
	existing.Description = req.Description
	if req.SpecJSON != "" {
		existing.SpecJSON = req.SpecJSON
	}

	updated, err := s.store.WorkflowRepo().UpdateWorkflow(c.Request.Context(), *existing)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update workflow"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteWorkflow removes a workflow and its tasks.
func (s *Server) DeleteWorkflow(c *gin.Context) {
	workflowID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := s.store.WorkflowRepo().DeleteWorkflow(c.Request.Context(), workflowID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Workflow not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete workflow"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ListFolderWorkflows returns the workflows in a folder, most recent first.
func (s *Server) ListFolderWorkflows(c *gin.Context) {
	folderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	workflows, err := s.store.WorkflowRepo().ListFolderWorkflows(c.Request.Context(), folderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list workflows"})
		return
	}
	c.JSON(http.StatusOK, workflows)
}

// ListFileWorkflows returns the workflows referencing a file.
func (s *Server) ListFileWorkflows(c *gin.Context) {
	fileID, ok := paramID(c, "id")
	if !ok {
		return
	}

	workflows, err := s.store.WorkflowRepo().ListFileWorkflows(c.Request.Context(), fileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list workflows"})
		return
	}
	c.JSON(http.StatusOK, workflows)
}

type CreateTaskRequest struct {
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	UUID        string `json:"uuid"`
	Config      string `json:"config"`
}

// CreateTask appends a task to a workflow. Task order is the creation
// order and is never renumbered.
func (s *Server) CreateTask(c *gin.Context) {
	workflowID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	workflow, err := s.store.WorkflowRepo().GetWorkflow(c.Request.Context(), workflowID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get workflow"})
		return
	}
	if workflow == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workflow not found"})
		return
	}

	task, err := s.store.WorkflowRepo().CreateTask(c.Request.Context(), model.Task{
		DisplayName: req.DisplayName,
		Description: req.Description,
		UUID:        req.UUID,
		Config:      req.Config,
		UserID:      user.ID,
		WorkflowID:  workflow.ID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}
	c.JSON(http.StatusCreated, task)
}

// ListWorkflowTasks returns the tasks of a workflow in execution order.
func (s *Server) ListWorkflowTasks(c *gin.Context) {
	workflowID, ok := paramID(c, "id")
	if !ok {
		return
	}

	tasks, err := s.store.WorkflowRepo().ListWorkflowTasks(c.Request.Context(), workflowID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tasks"})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

type UpdateTaskStatusRequest struct {
	StatusShort    *string  `json:"status_short"`
	StatusDetail   *string  `json:"status_detail"`
	StatusProgress *string  `json:"status_progress"`
	Result         *string  `json:"result"`
	Runtime        *float64 `json:"runtime"`
	ErrorException *string  `json:"error_exception"`
	ErrorTraceback *string  `json:"error_traceback"`
}

// UpdateTaskStatus applies a partial status update reported by a worker.
func (s *Server) UpdateTaskStatus(c *gin.Context) {
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := s.store.WorkflowRepo().UpdateTaskStatus(c.Request.Context(), taskID, interfaces.TaskStatusUpdate{
		StatusShort:    req.StatusShort,
		StatusDetail:   req.StatusDetail,
		StatusProgress: req.StatusProgress,
		Result:         req.Result,
		Runtime:        req.Runtime,
		ErrorException: req.ErrorException,
		ErrorTraceback: req.ErrorTraceback,
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}
	c.JSON(http.StatusOK, task)
}

type CreateWorkflowTemplateRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
	SpecJSON    string `json:"spec_json" binding:"required"`
}

// CreateWorkflowTemplate stores a reusable workflow blueprint.
func (s *Server) CreateWorkflowTemplate(c *gin.Context) {
	var req CreateWorkflowTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	userID := user.ID
	template, err := s.store.WorkflowRepo().CreateWorkflowTemplate(c.Request.Context(), model.WorkflowTemplate{
		DisplayName: req.DisplayName,
		SpecJSON:    req.SpecJSON,
		UserID:      &userID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create template"})
		return
	}
	c.JSON(http.StatusCreated, template)
}

// ListWorkflowTemplates returns all stored templates.
func (s *Server) ListWorkflowTemplates(c *gin.Context) {
	templates, err := s.store.WorkflowRepo().ListWorkflowTemplates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list templates"})
		return
	}
	c.JSON(http.StatusOK, templates)
}

// GetWorkflowTemplate returns a template by ID, or 404 when absent.
func (s *Server) GetWorkflowTemplate(c *gin.Context) {
	templateID, ok := paramID(c, "id")
	if !ok {
		return
	}

	template, err := s.store.WorkflowRepo().GetWorkflowTemplate(c.Request.Context(), templateID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get template"})
		return
	}
	if template == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}
	c.JSON(http.StatusOK, template)
}
