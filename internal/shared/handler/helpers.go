package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	sharedError "github.com/darregistry/member-registry/go-api-server/internal/shared/error"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/middleware"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/validator"
	"github.com/gin-gonic/gin"
)

// BindJSON parses and validates JSON request body
// Returns true if binding succeeded, false if failed (response already sent)
//
// Usage:
//
//	var req MemberRequest
//	if !handler.BindJSON(c, &req) {
//	    return
//	}
func BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		// Add error to context for middleware logging
		c.Error(err)

		// Check if it's a validation error
		if resp, ok := validator.ToErrorResponse(err); ok {
			c.JSON(http.StatusBadRequest, resp)
		} else {
			// JSON parsing error or other binding errors
			c.JSON(sharedError.InvalidRequest.Status, sharedError.InvalidRequest)
		}
		return false
	}
	return true
}

// PathID parses a numeric path parameter.
// Returns false if the parameter is not a valid id (response already sent)
func PathID(c *gin.Context, name string) (uint32, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		if err == nil {
			err = fmt.Errorf("%s must be positive", name)
		}
		c.Error(err)
		resp := sharedError.InvalidRequest
		resp.Message = "Invalid " + name + "."
		c.JSON(resp.Status, resp)
		return 0, false
	}
	return uint32(id), true
}

// RespondError sends an error response with logging
//
// Usage:
//
//	if err := service.DoSomething(); err != nil {
//	    handler.RespondError(c, err, sharedError.InternalServerError)
//	    return
//	}
func RespondError(c *gin.Context, err error, errResp sharedError.ErrorResponse) {
	// Add error to context for middleware logging
	c.Error(err)

	// Send error response
	c.JSON(errResp.Status, errResp)
}

// RespondServiceError resolves a service error into its registered response,
// falling back to the kind's status and then to InternalServerError.
// Work cut short by the request deadline answers RequestTimeout.
func RespondServiceError(c *gin.Context, err error) {
	if errors.Is(err, context.DeadlineExceeded) || middleware.IsTimeout(c) {
		RespondError(c, err, sharedError.RequestTimeout)
		return
	}

	if resp, ok := sharedError.ResolveDomainError(err); ok {
		RespondError(c, err, resp)
		return
	}

	if kind := sharedError.KindOf(err); kind != sharedError.KindUnknown {
		RespondError(c, err, sharedError.ErrorResponse{
			Status:  sharedError.StatusForKind(kind),
			Code:    "ERROR-004",
			Message: err.Error(),
		})
		return
	}

	RespondError(c, err, sharedError.InternalServerError)
}
