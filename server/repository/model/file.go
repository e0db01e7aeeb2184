package model

import (
	"path/filepath"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DataTypeGeneric is the sentinel data type for files with no more
// specific classification.
const DataTypeGeneric = "file:generic"

// File represents an evidence file tracked by the system. Metadata
// columns (filesize, magic text/mime) are derived from the file on disk
// at creation time.
type File struct {
	gorm.Model
	DisplayName string `json:"display_name" gorm:"type:text;index"`
	Description string `json:"description" gorm:"type:text"`
	UUID        string `json:"uuid" gorm:"type:varchar(45);index;not null"`
	DataType    string `json:"data_type" gorm:"type:text;index;not null"`
	// From the original file
	Filename  string `json:"filename" gorm:"type:text;index"`
	Filesize  int64  `json:"filesize"`
	Extension string `json:"extension" gorm:"type:text;index"`
	// Derived metadata
	MagicText  string `json:"magic_text" gorm:"type:text"`
	MagicMime  string `json:"magic_mime" gorm:"type:text;index"`
	HashMD5    string `json:"hash_md5" gorm:"type:varchar(32);index"`
	HashSHA1   string `json:"hash_sha1" gorm:"type:varchar(40);index"`
	HashSHA256 string `json:"hash_sha256" gorm:"type:varchar(64);index"`
	// Relationships
	UserID   uint    `json:"user_id" gorm:"not null;index"`
	User     *User   `json:"user,omitempty"`
	FolderID *uint   `json:"folder_id" gorm:"index"`
	Folder   *Folder `json:"folder,omitempty"`
	// Independent, nullable back references to the task that produced or
	// consumes this file.
	TaskInputID  *uint         `json:"task_input_id" gorm:"index"`
	TaskOutputID *uint         `json:"task_output_id" gorm:"index"`
	Workflows    []Workflow    `json:"workflows,omitempty" gorm:"many2many:file_workflows;"`
	Summaries    []FileSummary `json:"summaries,omitempty" gorm:"constraint:OnDelete:CASCADE;"`
}

// TableName returns the custom table name for the File model.
func (*File) TableName() string {
	return "files"
}

// BeforeCreate assigns a UUID before the file is created.
func (f *File) BeforeCreate(tx *gorm.DB) (err error) {
	if f.UUID == "" {
		f.UUID = uuid.New().String()
	}
	if f.DataType == "" {
		f.DataType = DataTypeGeneric
	}
	return nil
}

// Path returns the full on-disk path of the file, derived from the
// folder path, the file UUID and the optional extension. It returns an
// empty string when the folder relationship is not loaded.
func (f *File) Path() string {
	if f.Folder == nil {
		return ""
	}
	filename := f.UUID
	if f.Extension != "" {
		filename = f.UUID + "." + f.Extension
	}
	return filepath.Join(f.Folder.Path, filename)
}

// FileSummary represents an LLM-generated summary attached to a file.
type FileSummary struct {
	gorm.Model
	Summary string  `json:"summary" gorm:"type:text"`
	Runtime float64 `json:"runtime"`
	// Generation status
	StatusShort    string `json:"status_short" gorm:"type:text;index"`
	StatusDetail   string `json:"status_detail" gorm:"type:text"`
	StatusProgress string `json:"status_progress" gorm:"type:text"`
	// LLM model details
	LLMModelPrompt   string `json:"llm_model_prompt" gorm:"type:text"`
	LLMModelProvider string `json:"llm_model_provider" gorm:"type:text"`
	LLMModelName     string `json:"llm_model_name" gorm:"type:text"`
	LLMModelConfig   string `json:"llm_model_config" gorm:"type:text"`
	// Relationships
	FileID uint `json:"file_id" gorm:"not null;index"` // Foreign key for File
}

// TableName returns the custom table name for the FileSummary model.
func (*FileSummary) TableName() string {
	return "file_summaries"
}

// Folder represents a directory on the shared evidence filesystem.
type Folder struct {
	gorm.Model
	DisplayName string `json:"display_name" gorm:"type:text;index"`
	UUID        string `json:"uuid" gorm:"type:varchar(45);index;not null"`
	Path        string `json:"path" gorm:"type:text;not null"`
	// Relationships
	UserID uint  `json:"user_id" gorm:"not null;index"`
	User   *User `json:"user,omitempty"`
}

// TableName returns the custom table name for the Folder model.
func (*Folder) TableName() string {
	return "folders"
}

// BeforeCreate assigns a UUID before the folder is created.
func (f *Folder) BeforeCreate(tx *gorm.DB) (err error) {
	if f.UUID == "" {
		f.UUID = uuid.New().String()
	}
	return nil
}
