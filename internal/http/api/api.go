package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Error struct {
	Code    int
	Message string
}

// HandlerFunc is an endpoint that returns a JSON body or an Error; the
// boilerplate of rendering both lives in ResolveEndpoint.
type HandlerFunc func(ctx *gin.Context) (any, *Error)

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
