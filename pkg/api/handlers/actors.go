package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gatehouse/gatehouse/pkg/api"
	"github.com/gatehouse/gatehouse/pkg/datastore"
)

func (s *Server) addActor(c *gin.Context) {
	var payload api.ActorPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		s.respondBindError(c, err)
		return
	}
	ctx, cancel := s.opContext(c)
	defer cancel()

	actor, err := s.ds.AddActor(ctx, datastore.AddActorRequest{
		Name:       payload.Name,
		Typestr:    payload.Typestr,
		Attributes: payload.Attributes,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, actor)
}

func (s *Server) modifyActor(c *gin.Context) {
	var patch api.ActorPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.respondBindError(c, err)
		return
	}
	ctx, cancel := s.opContext(c)
	defer cancel()

	actor, err := s.ds.ModifyActor(ctx, datastore.ModifyActorRequest{
		Name:             patch.Name,
		Typestr:          patch.Typestr,
		AddAttributes:    patch.AddAttributes,
		RemoveAttributes: patch.RemoveAttributes,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, actor)
}

func (s *Server) removeActor(c *gin.Context) {
	ctx, cancel := s.opContext(c)
	defer cancel()

	actor, err := s.ds.RemoveActor(ctx, c.Param("type"), c.Param("name"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, actor)
}

func (s *Server) getActors(c *gin.Context) {
	ctx, cancel := s.opContext(c)
	defer cancel()

	actors, err := s.ds.GetActors(ctx, datastore.GetActorsRequest{
		Name:    c.Query("name"),
		Typestr: c.Query("type"),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, actors)
}
