package model

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Workflow represents a user-defined, ordered collection of tasks
// operating over a set of files.
type Workflow struct {
	gorm.Model
	DisplayName string `json:"display_name" gorm:"type:text;index;not null"`
	Description string `json:"description" gorm:"type:text"`
	UUID        string `json:"uuid" gorm:"type:varchar(45);index"`
	SpecJSON    string `json:"spec_json" gorm:"type:text"` // Opaque execution graph description
	// Relationships
	UserID   uint    `json:"user_id" gorm:"not null;index"` // Foreign key for User
	User     *User   `json:"user,omitempty"`
	FolderID *uint   `json:"folder_id" gorm:"index"`
	Folder   *Folder `json:"folder,omitempty"`
	Files    []File  `json:"files,omitempty" gorm:"many2many:file_workflows;"`
	Tasks    []Task  `json:"tasks,omitempty" gorm:"constraint:OnDelete:CASCADE;"`
}

// TableName returns the custom table name for the Workflow model.
func (*Workflow) TableName() string {
	return "workflows"
}

// BeforeCreate assigns a UUID and validates ownership before the workflow is created.
func (w *Workflow) BeforeCreate(tx *gorm.DB) (err error) {
	if w.UUID == "" {
		w.UUID = uuid.New().String()
	}
	if w.UserID == 0 {
		return errors.New("workflow requires an owning user")
	}
	return nil
}

// WorkflowTemplate represents a reusable workflow specification blueprint.
// It is independent of any specific workflow instance and may be shared
// system-wide when no owning user is set.
type WorkflowTemplate struct {
	gorm.Model
	DisplayName string `json:"display_name" gorm:"type:text;index;not null"`
	Description string `json:"description" gorm:"type:text"`
	SpecJSON    string `json:"spec_json" gorm:"type:text;not null"`
	// Relationships
	UserID *uint `json:"user_id" gorm:"index"`
	User   *User `json:"user,omitempty"`
}

// TableName returns the custom table name for the WorkflowTemplate model.
func (*WorkflowTemplate) TableName() string {
	return "workflow_templates"
}

// Task represents a single unit of work within a workflow, with mutable
// execution status and input/output file associations.
type Task struct {
	gorm.Model
	DisplayName string `json:"display_name" gorm:"type:text;index"`
	Description string `json:"description" gorm:"type:text"`
	UUID        string `json:"uuid" gorm:"type:varchar(45);index;not null"`
	Config      string `json:"config" gorm:"type:text"` // Opaque task configuration blob
	// Mutable execution status
	StatusShort    string  `json:"status_short" gorm:"type:text;index"`
	StatusDetail   string  `json:"status_detail" gorm:"type:text"`
	StatusProgress string  `json:"status_progress" gorm:"type:text"`
	Result         string  `json:"result" gorm:"type:text"`
	Runtime        float64 `json:"runtime"`
	ErrorException string  `json:"error_exception" gorm:"type:text"`
	ErrorTraceback string  `json:"error_traceback" gorm:"type:text"`
	// Relationships
	UserID     uint `json:"user_id" gorm:"not null;index"`     // Foreign key for the creating User
	WorkflowID uint `json:"workflow_id" gorm:"not null;index"` // Foreign key for Workflow
	// A file points back to at most one task as its input source and at
	// most one task as its output source.
	InputFiles  []File `json:"input_files,omitempty" gorm:"foreignKey:TaskInputID"`
	OutputFiles []File `json:"output_files,omitempty" gorm:"foreignKey:TaskOutputID"`
}

// TableName returns the custom table name for the Task model.
func (*Task) TableName() string {
	return "tasks"
}

// BeforeCreate assigns a UUID and validates relationships before the task is created.
func (t *Task) BeforeCreate(tx *gorm.DB) (err error) {
	if t.UUID == "" {
		t.UUID = uuid.New().String()
	}
	if t.WorkflowID == 0 {
		return errors.New("task requires a workflow")
	}
	if t.UserID == 0 {
		return errors.New("task requires a creating user")
	}
	return nil
}
