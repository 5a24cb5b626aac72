package apiutil

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse is returned when the request failed on the server side
//
// Example:
//
//	{
//	  "error": "The users information could not be retrieved."
//	}
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is returned when the addressed resource does not exist
type MessageResponse struct {
	Message string `json:"message"`
}

// ValidationResponse is returned when the request body is incomplete
type ValidationResponse struct {
	ErrorMessage string `json:"errorMessage"`
}

// WriteError aborts the request with an ErrorResponse
func WriteError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}

// WriteMessage aborts the request with a MessageResponse
func WriteMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, MessageResponse{Message: message})
}

// WriteValidationError aborts the request with a ValidationResponse
func WriteValidationError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ValidationResponse{ErrorMessage: message})
}
