package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gatehouse/gatehouse/pkg/api"
	"github.com/gatehouse/gatehouse/pkg/datastore"
)

func (s *Server) addTarget(c *gin.Context) {
	var payload api.TargetPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		s.respondBindError(c, err)
		return
	}
	ctx, cancel := s.opContext(c)
	defer cancel()

	target, err := s.ds.AddTarget(ctx, datastore.AddTargetRequest{
		Name:       payload.Name,
		Typestr:    payload.Typestr,
		Actions:    payload.Actions,
		Attributes: payload.Attributes,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, target)
}

func (s *Server) modifyTarget(c *gin.Context) {
	var patch api.TargetPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.respondBindError(c, err)
		return
	}
	ctx, cancel := s.opContext(c)
	defer cancel()

	target, err := s.ds.ModifyTarget(ctx, datastore.ModifyTargetRequest{
		Name:             patch.Name,
		Typestr:          patch.Typestr,
		AddActions:       patch.AddActions,
		RemoveActions:    patch.RemoveActions,
		AddAttributes:    patch.AddAttributes,
		RemoveAttributes: patch.RemoveAttributes,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, target)
}

func (s *Server) removeTarget(c *gin.Context) {
	ctx, cancel := s.opContext(c)
	defer cancel()

	target, err := s.ds.RemoveTarget(ctx, c.Param("type"), c.Param("name"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, target)
}

func (s *Server) getTargets(c *gin.Context) {
	ctx, cancel := s.opContext(c)
	defer cancel()

	targets, err := s.ds.GetTargets(ctx, datastore.GetTargetsRequest{
		Name:    c.Query("name"),
		Typestr: c.Query("type"),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, targets)
}
