package repositories

import (
	gormimpl "casevault/server/repository/gormimpl"
	interfaces "casevault/server/repository/interface"

	"gorm.io/gorm"
)

type Postgres struct {
	file     interfaces.FileRepo
	folder   interfaces.FolderRepo
	user     interfaces.UserRepo
	workflow interfaces.WorkflowRepo
}

func (r Postgres) FileRepo() interfaces.FileRepo {
	return r.file
}

func (r Postgres) FolderRepo() interfaces.FolderRepo {
	return r.folder
}

func (r Postgres) UserRepo() interfaces.UserRepo {
	return r.user
}

func (r Postgres) WorkflowRepo() interfaces.WorkflowRepo {
	return r.workflow
}

func NewPostgresRepo(db *gorm.DB) interfaces.CaseStoreInterface {
	return &Postgres{
		file:     gormimpl.NewFileRepo(db),
		folder:   gormimpl.NewFolderRepo(db),
		user:     gormimpl.NewUserRepo(db),
		workflow: gormimpl.NewWorkflowRepo(db),
	}
}
