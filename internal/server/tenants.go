package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	tenantdomain "github.com/finvue/finvue/internal/tenant/domain"
	"github.com/gin-gonic/gin"
)

type listTenantsResponse struct {
	Data []tenantdomain.Tenant `json:"data"`
}

func (s *Server) ListTenants(c *gin.Context) {
	tenants, err := s.tenants.List(c.Request.Context(), s.db)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if tenants == nil {
		tenants = []tenantdomain.Tenant{}
	}
	c.JSON(http.StatusOK, listTenantsResponse{Data: tenants})
}

func (s *Server) GetTenantByID(c *gin.Context) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid tenant id"))
		return
	}

	tenant, err := s.tenants.FindByID(c.Request.Context(), s.db, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if tenant == nil {
		AbortWithError(c, ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, tenant)
}
