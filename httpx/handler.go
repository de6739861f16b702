package httpx

import (
	"github.com/gin-gonic/gin"
)

// HandlerFunc returns the status and payload of a successful request.
type HandlerFunc func(c *gin.Context) (int, interface{}, error)

// Wrap turns h into a gin handler: errors go through HandleError, results
// through Respond.
func Wrap(h HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, data, err := h(c)
		if err != nil {
			HandleError(c, err)
			return
		}
		Respond(c, status, data)
	}
}
