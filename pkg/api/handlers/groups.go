package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gatehouse/gatehouse/pkg/api"
	"github.com/gatehouse/gatehouse/pkg/datastore"
	"github.com/gatehouse/gatehouse/pkg/models"
)

func toMembers(payload []api.GroupMemberPayload) []models.GroupMember {
	members := make([]models.GroupMember, 0, len(payload))
	for _, m := range payload {
		members = append(members, models.GroupMember{Name: m.Name, Typestr: m.Typestr})
	}
	return members
}

func (s *Server) addGroup(c *gin.Context) {
	var payload api.GroupPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		s.respondBindError(c, err)
		return
	}
	ctx, cancel := s.opContext(c)
	defer cancel()

	group, err := s.ds.AddGroup(ctx, datastore.AddGroupRequest{
		Name:        payload.Name,
		Description: payload.Description,
		Members:     toMembers(payload.Members),
		Roles:       payload.Roles,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (s *Server) modifyGroup(c *gin.Context) {
	var patch api.GroupPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.respondBindError(c, err)
		return
	}
	ctx, cancel := s.opContext(c)
	defer cancel()

	group, err := s.ds.ModifyGroup(ctx, datastore.ModifyGroupRequest{
		Name:          patch.Name,
		Description:   patch.Description,
		AddMembers:    toMembers(patch.AddMembers),
		RemoveMembers: toMembers(patch.RemoveMembers),
		AddRoles:      patch.AddRoles,
		RemoveRoles:   patch.RemoveRoles,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (s *Server) removeGroup(c *gin.Context) {
	ctx, cancel := s.opContext(c)
	defer cancel()

	group, err := s.ds.RemoveGroup(ctx, c.Param("name"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (s *Server) getGroups(c *gin.Context) {
	ctx, cancel := s.opContext(c)
	defer cancel()

	groups, err := s.ds.GetGroups(ctx, datastore.GetGroupsRequest{
		Name:          c.Query("name"),
		MemberName:    c.Query("member_name"),
		MemberTypestr: c.Query("member_type"),
		Role:          c.Query("role"),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}
