// Package handlers provides HTTP request handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockreceipt/internal/core/apperror"
	appctx "stockreceipt/internal/core/context"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds the request body, reporting failures as validation errors.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers err on the Gin context and aborts.
// middleware.ErrorHandler writes the response.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// OperatorID returns the authenticated operator, if any.
func (h *BaseHandler) OperatorID(c *gin.Context) string {
	return appctx.GetOperatorID(c.Request.Context())
}

// OK sends 200 with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}
