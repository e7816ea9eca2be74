package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gatehouse/gatehouse/pkg/api"
	"github.com/gatehouse/gatehouse/pkg/datastore"
	"github.com/gatehouse/gatehouse/pkg/metrics"
)

// toCheckRequest converts the wire payload into the datastore's form.
func toCheckRequest(payload api.CheckPayload) datastore.CheckRequest {
	return datastore.CheckRequest{
		ActorName:       payload.Actor.Name,
		ActorTypestr:    payload.Actor.Typestr,
		ActorAttributes: payload.Actor.Attributes,
		EnvAttributes:   payload.EnvAttributes,
		TargetName:      payload.Target.Name,
		TargetTypestr:   payload.Target.Typestr,
		TargetAction:    payload.Target.Action,
	}
}

func (s *Server) check(c *gin.Context) {
	var payload api.CheckPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		s.respondBindError(c, err)
		return
	}
	ctx, cancel := s.opContext(c)
	defer cancel()

	decision, err := s.ds.Check(ctx, toCheckRequest(payload))
	if err != nil {
		s.respondError(c, err)
		return
	}

	metrics.CheckDecisionsTotal.WithLabelValues(string(decision)).Inc()
	c.JSON(http.StatusOK, api.DecisionResponse{Decision: string(decision)})
}
