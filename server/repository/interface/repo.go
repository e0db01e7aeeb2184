package interfaces

import "errors"

var (
	// ErrNotFound is returned by mutating operations targeting a row
	// that does not exist. Point lookups return a nil result instead.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists is returned when a uniqueness constraint rejects
	// a create, e.g. a duplicate user role grant.
	ErrAlreadyExists = errors.New("record already exists")
)

// CaseStoreInterface aggregates the per-domain repositories backing the
// case-management data layer.
type CaseStoreInterface interface {
	FileRepo() FileRepo
	FolderRepo() FolderRepo
	UserRepo() UserRepo
	WorkflowRepo() WorkflowRepo
}
