package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gatehouse/gatehouse/pkg/api"
	"github.com/gatehouse/gatehouse/pkg/datastore"
)

func (s *Server) addRole(c *gin.Context) {
	var payload api.RolePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		s.respondBindError(c, err)
		return
	}
	ctx, cancel := s.opContext(c)
	defer cancel()

	role, err := s.ds.AddRole(ctx, datastore.AddRoleRequest{
		Name:        payload.Name,
		Description: payload.Description,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, role)
}

func (s *Server) removeRole(c *gin.Context) {
	ctx, cancel := s.opContext(c)
	defer cancel()

	role, err := s.ds.RemoveRole(ctx, c.Param("name"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, role)
}

func (s *Server) getRoles(c *gin.Context) {
	ctx, cancel := s.opContext(c)
	defer cancel()

	roles, err := s.ds.GetRoles(ctx, datastore.GetRolesRequest{Name: c.Query("name")})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roles)
}
