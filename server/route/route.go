package route

import (
	"github.com/gin-gonic/gin"

	"casevault/pkg/auth"
	"casevault/pkg/config"
	"casevault/pkg/llm"
	interfaces "casevault/server/repository/interface"
)

// Server bundles the collaborators the HTTP handlers need.
type Server struct {
	cfg      config.Config
	store    interfaces.CaseStoreInterface
	registry *llm.Registry
	minter   *auth.TokenMinter
}

// NewServer creates a Server around the given collaborators.
func NewServer(cfg config.Config, store interfaces.CaseStoreInterface, registry *llm.Registry, minter *auth.TokenMinter) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		registry: registry,
		minter:   minter,
	}
}

// Router assembles the gin engine with all API routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// The system configuration endpoint has no side effects and no auth
	// requirements.
	r.GET("/system/", s.GetSystemConfig)

	api := r.Group("/api/v1")
	api.Use(auth.Middleware(s.minter))
	{
		api.GET("/folders/:id/files", s.ListFiles)
		api.POST("/files", s.CreateFile)
		api.GET("/files/:id", s.GetFile)
		api.DELETE("/files/:id", s.DeleteFile)
		api.POST("/files/:id/summaries", s.CreateFileSummary)
		api.GET("/filesummaries/:id", s.GetFileSummary)

		api.POST("/folders", s.CreateFolder)
		api.GET("/folders", s.ListFolders)
		api.GET("/folders/:id", s.GetFolder)

		api.GET("/users", s.ListUsers)
		api.GET("/users/search", s.SearchUsers)
		api.POST("/users", s.CreateUser)
		api.GET("/users/me/apikeys", s.ListUserAPIKeys)
		api.POST("/users/me/apikeys", s.CreateUserAPIKey)
		api.DELETE("/users/me/apikeys/:id", s.DeleteUserAPIKey)
		api.POST("/userroles", s.CreateUserRole)
		api.DELETE("/userroles/:id", s.DeleteUserRole)

		api.POST("/workflows", s.CreateWorkflow)
		api.GET("/workflows/:id", s.GetWorkflow)
		api.PATCH("/workflows/:id", s.UpdateWorkflow)
		api.DELETE("/workflows/:id", s.DeleteWorkflow)
		api.GET("/folders/:id/workflows", s.ListFolderWorkflows)
		api.GET("/files/:id/workflows", s.ListFileWorkflows)
		api.POST("/workflows/:id/tasks", s.CreateTask)
		api.GET("/workflows/:id/tasks", s.ListWorkflowTasks)
		api.PATCH("/tasks/:id/status", s.UpdateTaskStatus)
		api.POST("/workflowtemplates", s.CreateWorkflowTemplate)
		api.GET("/workflowtemplates", s.ListWorkflowTemplates)
		api.GET("/workflowtemplates/:id", s.GetWorkflowTemplate)
	}

	return r
}
