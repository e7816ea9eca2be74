package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gatehouse/gatehouse/pkg/api"
	"github.com/gatehouse/gatehouse/pkg/datastore"
	"github.com/gatehouse/gatehouse/pkg/policy"
)

func (s *Server) addPolicy(c *gin.Context) {
	var rule policy.Rule
	if err := c.ShouldBindJSON(&rule); err != nil {
		s.respondBindError(c, err)
		return
	}
	ctx, cancel := s.opContext(c)
	defer cancel()

	added, err := s.ds.AddPolicy(ctx, &rule)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, added)
}

func (s *Server) modifyPolicy(c *gin.Context) {
	var rule policy.Rule
	if err := c.ShouldBindJSON(&rule); err != nil {
		s.respondBindError(c, err)
		return
	}
	ctx, cancel := s.opContext(c)
	defer cancel()

	updated, err := s.ds.ModifyPolicy(ctx, &rule)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) removePolicy(c *gin.Context) {
	ctx, cancel := s.opContext(c)
	defer cancel()

	rule, err := s.ds.RemovePolicy(ctx, c.Param("name"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (s *Server) getPolicies(c *gin.Context) {
	req := datastore.GetPoliciesRequest{Name: c.Query("name")}

	// The matching filter takes a check request as a JSON query parameter.
	if raw := c.Query("matching"); raw != "" {
		var payload api.CheckPayload
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			s.respondBindError(c, err)
			return
		}
		matching := toCheckRequest(payload)
		req.Matching = &matching
	}

	ctx, cancel := s.opContext(c)
	defer cancel()

	rules, err := s.ds.GetPolicies(ctx, req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}
