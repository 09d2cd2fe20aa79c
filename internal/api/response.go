package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Envelope is the shape every endpoint responds with.
type Envelope struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Data      any       `json:"data,omitempty"`
	Errors    []string  `json:"errors,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// developmentMode controls whether internal error details reach clients.
// Set once during route setup.
var developmentMode bool

func respondSuccess(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

// abortWithError returns a single-message error envelope and aborts.
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Envelope{
		Success:   false,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

// abortWithValidationErrors returns every accumulated field error, not
// just the first.
func abortWithValidationErrors(c *gin.Context, errs []string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{
		Success:   false,
		Message:   "validation failed",
		Errors:    errs,
		Timestamp: time.Now().UTC(),
	})
}

// abortServerError logs err and returns a 500. The underlying message is
// exposed only in development mode.
func abortServerError(c *gin.Context, err error) {
	log.Printf("ERROR: %s %s: %v", c.Request.Method, c.FullPath(), err)

	message := "internal server error"
	if developmentMode && err != nil {
		message = err.Error()
	}
	abortWithError(c, http.StatusInternalServerError, message)
}
