package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gatehouse/gatehouse/pkg/api"
	"github.com/gatehouse/gatehouse/pkg/api/middleware"
	"github.com/gatehouse/gatehouse/pkg/datastore"
)

// respondError maps a datastore error kind to its HTTP status. Anything
// unrecognized is a storage or internal failure.
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case datastore.IsNotFoundError(err):
		status = http.StatusNotFound
	case errors.Is(err, datastore.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, datastore.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, datastore.ErrFailedPrecondition):
		status = http.StatusPreconditionFailed
	case errors.Is(err, datastore.ErrUnimplemented):
		status = http.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	if status >= http.StatusInternalServerError {
		middleware.GetLogger(c, s.log).Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
	}

	c.JSON(status, api.ErrorResponse{Status: "error", Message: err.Error()})
}

// respondBindError reports a malformed request body or missing field.
func (s *Server) respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, api.ErrorResponse{Status: "error", Message: err.Error()})
}
