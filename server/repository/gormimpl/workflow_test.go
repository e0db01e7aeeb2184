package gormimpl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	interfaces "casevault/server/repository/interface"
	"casevault/server/repository/model"
)

func TestCreateWorkflowWithFiles(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkflowRepo(db)
	user := seedUser(t, db, "investigator")
	folder := seedFolder(t, db, user.ID, t.TempDir())

	fileA := model.File{UUID: "file-a", UserID: user.ID, FolderID: uintPtr(folder.ID), DataType: model.DataTypeGeneric}
	fileB := model.File{UUID: "file-b", UserID: user.ID, FolderID: uintPtr(folder.ID), DataType: model.DataTypeGeneric}
	require.NoError(t, db.Create(&fileA).Error)
	require.NoError(t, db.Create(&fileB).Error)

	created, err := repo.CreateWorkflow(context.Background(), model.Workflow{
		DisplayName: "Triage",
		SpecJSON:    `{"tasks":[]}`,
		UserID:      user.ID,
		FolderID:    uintPtr(folder.ID),
	}, []uint{fileA.ID, fileB.ID})
	require.NoError(t, err)
	assert.NotEmpty(t, created.UUID)

	stored, err := repo.GetWorkflow(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, stored.Files, 2)
}

func TestCreateWorkflowUnknownFile(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkflowRepo(db)
	user := seedUser(t, db, "investigator")

	_, err := repo.CreateWorkflow(context.Background(), model.Workflow{
		DisplayName: "Broken",
		UserID:      user.ID,
	}, []uint{999})
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestGetWorkflowAbsent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkflowRepo(db)

	workflow, err := repo.GetWorkflow(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, workflow)
}

func TestTasksOrderedByCreation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkflowRepo(db)
	user := seedUser(t, db, "investigator")

	workflow, err := repo.CreateWorkflow(context.Background(), model.Workflow{
		DisplayName: "Extraction",
		UserID:      user.ID,
	}, nil)
	require.NoError(t, err)

	names := []string{"extract", "analyze", "report"}
	for _, name := range names {
		_, err := repo.CreateTask(context.Background(), model.Task{
			DisplayName: name,
			UserID:      user.ID,
			WorkflowID:  workflow.ID,
		})
		require.NoError(t, err)
	}

	tasks, err := repo.ListWorkflowTasks(context.Background(), workflow.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	for i, name := range names {
		assert.Equal(t, name, tasks[i].DisplayName)
	}

	// GetWorkflow preloads tasks in the same order.
	stored, err := repo.GetWorkflow(context.Background(), workflow.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Len(t, stored.Tasks, 3)
	assert.Equal(t, "extract", stored.Tasks[0].DisplayName)
}

func TestDeleteWorkflowCascadesToTasksNotFiles(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkflowRepo(db)
	user := seedUser(t, db, "investigator")
	folder := seedFolder(t, db, user.ID, t.TempDir())

	evidence := model.File{UUID: "evidence", UserID: user.ID, FolderID: uintPtr(folder.ID), DataType: model.DataTypeGeneric}
	require.NoError(t, db.Create(&evidence).Error)

	workflow, err := repo.CreateWorkflow(context.Background(), model.Workflow{
		DisplayName: "Doomed",
		UserID:      user.ID,
	}, []uint{evidence.ID})
	require.NoError(t, err)

	task, err := repo.CreateTask(context.Background(), model.Task{
		DisplayName: "strings",
		UserID:      user.ID,
		WorkflowID:  workflow.ID,
	})
	require.NoError(t, err)

	// The evidence file is this task's input and an output of the same task.
	require.NoError(t, db.Model(&model.File{}).Where("id = ?", evidence.ID).
		Updates(map[string]interface{}{"task_input_id": task.ID, "task_output_id": task.ID}).Error)

	require.NoError(t, repo.DeleteWorkflow(context.Background(), workflow.ID))

	// All tasks are gone.
	var taskCount int64
	require.NoError(t, db.Model(&model.Task{}).Where("workflow_id = ?", workflow.ID).Count(&taskCount).Error)
	assert.Zero(t, taskCount)

	// The file row survives with its task references cleared.
	var survivor model.File
	require.NoError(t, db.First(&survivor, evidence.ID).Error)
	assert.Nil(t, survivor.TaskInputID)
	assert.Nil(t, survivor.TaskOutputID)

	// Deleting again is an explicit error.
	err = repo.DeleteWorkflow(context.Background(), workflow.ID)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestUpdateTaskStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkflowRepo(db)
	user := seedUser(t, db, "investigator")

	workflow, err := repo.CreateWorkflow(context.Background(), model.Workflow{
		DisplayName: "Analysis",
		UserID:      user.ID,
	}, nil)
	require.NoError(t, err)

	task, err := repo.CreateTask(context.Background(), model.Task{
		DisplayName: "carve",
		UserID:      user.ID,
		WorkflowID:  workflow.ID,
	})
	require.NoError(t, err)

	updated, err := repo.UpdateTaskStatus(context.Background(), task.ID, interfaces.TaskStatusUpdate{
		StatusShort:    strPtr("failed"),
		Runtime:        floatPtr(12.5),
		ErrorException: strPtr("carving failed"),
		ErrorTraceback: strPtr("worker.go:42"),
	})
	require.NoError(t, err)
	assert.Equal(t, "failed", updated.StatusShort)
	assert.Equal(t, 12.5, updated.Runtime)
	assert.Equal(t, "carving failed", updated.ErrorException)
	assert.Equal(t, "worker.go:42", updated.ErrorTraceback)

	// Unset fields are left untouched.
	updated, err = repo.UpdateTaskStatus(context.Background(), task.ID, interfaces.TaskStatusUpdate{
		StatusShort: strPtr("retrying"),
	})
	require.NoError(t, err)
	assert.Equal(t, "carving failed", updated.ErrorException)

	_, err = repo.UpdateTaskStatus(context.Background(), task.ID+100, interfaces.TaskStatusUpdate{})
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestWorkflowTemplates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkflowRepo(db)
	user := seedUser(t, db, "investigator")

	template, err := repo.CreateWorkflowTemplate(context.Background(), model.WorkflowTemplate{
		DisplayName: "Standard triage",
		SpecJSON:    `{"tasks":["strings","hash"]}`,
		UserID:      uintPtr(user.ID),
	})
	require.NoError(t, err)

	stored, err := repo.GetWorkflowTemplate(context.Background(), template.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Standard triage", stored.DisplayName)

	missing, err := repo.GetWorkflowTemplate(context.Background(), template.ID+100)
	require.NoError(t, err)
	assert.Nil(t, missing)

	templates, err := repo.ListWorkflowTemplates(context.Background())
	require.NoError(t, err)
	assert.Len(t, templates, 1)
}

func TestListFolderWorkflowsMostRecentFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkflowRepo(db)
	user := seedUser(t, db, "investigator")
	folder := seedFolder(t, db, user.ID, t.TempDir())

	var ids []uint
	for _, name := range []string{"first", "second", "third"} {
		created, err := repo.CreateWorkflow(context.Background(), model.Workflow{
			DisplayName: name,
			UserID:      user.ID,
			FolderID:    uintPtr(folder.ID),
		}, nil)
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	workflows, err := repo.ListFolderWorkflows(context.Background(), folder.ID)
	require.NoError(t, err)
	require.Len(t, workflows, 3)
	assert.Equal(t, ids[2], workflows[0].ID)
	assert.Equal(t, ids[0], workflows[2].ID)
}
