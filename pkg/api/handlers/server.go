// Package handlers wires the management and decision API onto gin. The
// handlers hold no business logic: they decode payloads, call the
// datastore under a reply deadline, and map error kinds to status codes.
package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gatehouse/gatehouse/pkg/api/middleware"
	"github.com/gatehouse/gatehouse/pkg/datastore"
)

// requestTimeout bounds how long a handler waits for the datastore reply.
// The datastore may still finish and commit after the handler gives up.
const requestTimeout = 30 * time.Second

// Server holds the API dependencies
type Server struct {
	ds  *datastore.DataStore
	log *zap.Logger
}

// NewServer creates the API server
func NewServer(ds *datastore.DataStore, log *zap.Logger) *Server {
	return &Server{ds: ds, log: log}
}

// Router builds the gin engine with the full middleware chain and routes
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(middleware.CorrelationIDMiddleware(s.log))
	router.Use(middleware.LoggingMiddleware(s.log))
	router.Use(middleware.ErrorHandlingMiddleware(s.log))
	router.Use(middleware.MetricsMiddleware())

	router.GET("/health", s.health)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/targets", s.addTarget)
		v1.PUT("/targets", s.modifyTarget)
		v1.DELETE("/targets/:type/:name", s.removeTarget)
		v1.GET("/targets", s.getTargets)

		v1.POST("/actors", s.addActor)
		v1.PUT("/actors", s.modifyActor)
		v1.DELETE("/actors/:type/:name", s.removeActor)
		v1.GET("/actors", s.getActors)

		v1.POST("/roles", s.addRole)
		v1.DELETE("/roles/:name", s.removeRole)
		v1.GET("/roles", s.getRoles)

		v1.POST("/groups", s.addGroup)
		v1.PUT("/groups", s.modifyGroup)
		v1.DELETE("/groups/:name", s.removeGroup)
		v1.GET("/groups", s.getGroups)

		v1.POST("/policies", s.addPolicy)
		v1.PUT("/policies", s.modifyPolicy)
		v1.DELETE("/policies/:name", s.removePolicy)
		v1.GET("/policies", s.getPolicies)

		v1.POST("/check", s.check)
	}

	return router
}

func (s *Server) health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}

// opContext derives the per-request datastore deadline.
func (s *Server) opContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}
