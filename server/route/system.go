package route

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SystemConfigResponse is the read-only system status payload.
type SystemConfigResponse struct {
	ActiveLLMs  []string `json:"active_llms"`
	DataTypes   []string `json:"data_types"`
	ActiveCloud string   `json:"active_cloud"`
}

// GetSystemConfig returns the enabled LLM services, the supported data
// types and the active cloud provider identity. It always answers 200.
func (s *Server) GetSystemConfig(c *gin.Context) {
	active := s.registry.Names()
	if active == nil {
		active = []string{}
	}

	c.JSON(http.StatusOK, SystemConfigResponse{
		ActiveLLMs:  active,
		DataTypes:   s.cfg.DataTypes,
		ActiveCloud: s.cfg.CloudProvider,
	})
}
