package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/signageflow/signageflow/internal/http/middleware"
	"github.com/signageflow/signageflow/internal/model"
)

type APIError struct {
	Code    int
	Message string
}

// HandlerFuncWithAuth is the shape of an authenticated endpoint: it gets
// the resolved current user and returns a payload or a typed failure.
type HandlerFuncWithAuth func(ctx *gin.Context, user *model.User) (any, *APIError)

// HandlerFunc is the shape of a public endpoint.
type HandlerFunc func(ctx *gin.Context) (any, *APIError)

func ResolveEndpointWithAuth(h HandlerFuncWithAuth) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := middleware.GetCurrentUser(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		result, apiErr := h(ctx, user)
		if apiErr != nil {
			ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}
		ctx.JSON(http.StatusOK, result)
	}
}

func ResolveEndpoint(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, apiErr := h(ctx)
		if apiErr != nil {
			ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}
		ctx.JSON(http.StatusOK, result)
	}
}

// ErrorFor maps the shared failure taxonomy onto HTTP status codes.
func ErrorFor(err error, fallback string) *APIError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrNotFound):
		return &APIError{Code: http.StatusNotFound, Message: "not found"}
	case errors.Is(err, model.ErrUnauthorized):
		return &APIError{Code: http.StatusForbidden, Message: "forbidden"}
	case errors.Is(err, model.ErrInvalidCode):
		return &APIError{Code: http.StatusNotFound, Message: "invalid pairing code"}
	case errors.Is(err, model.ErrWriteConflict):
		return &APIError{Code: http.StatusConflict, Message: "write conflict"}
	default:
		return &APIError{Code: http.StatusInternalServerError, Message: fallback}
	}
}
