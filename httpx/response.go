package httpx

import (
	"errors"
	"net/http"

	"github.com/KOMKZ/yogan-vehicle-api/errcode"
	"github.com/KOMKZ/yogan-vehicle-api/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the envelope of every JSON answer. Code 0 means success.
type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg,omitempty"`
	Data interface{} `json:"data,omitempty"`
}

// Layerer is implemented by errors that choose their own HTTP representation.
type Layerer interface {
	Layered() *errcode.LayeredError
}

func OkJson(c *gin.Context, data interface{}) {
	Respond(c, http.StatusOK, data)
}

func CreatedJson(c *gin.Context, data interface{}) {
	Respond(c, http.StatusCreated, data)
}

// Respond writes data in the envelope, or only the status for 204.
func Respond(c *gin.Context, status int, data interface{}) {
	if status == http.StatusNoContent {
		c.Status(status)
		return
	}
	c.JSON(status, Response{Code: 0, Msg: "success", Data: data})
}

func NoRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleError(c, errcode.ErrNotFound.WithMsgf("route not found: %s %s", c.Request.Method, c.Request.URL.Path))
	}
}

func NoMethodHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleError(c, errcode.ErrMethodNotAllowed.WithMsgf("method not allowed: %s %s", c.Request.Method, c.Request.URL.Path))
	}
}

// HandleError answers with the status and code of err. Errors that are neither a
// Layerer nor a *errcode.LayeredError become a 500 without their text.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	le := toLayered(err)
	logError(c, le, err)

	var data interface{}
	if d := le.Data(); len(d) > 0 {
		data = d
	}
	c.AbortWithStatusJSON(le.HTTPStatus(), Response{
		Code: le.Code(),
		Msg:  le.Message(),
		Data: data,
	})
}

func toLayered(err error) *errcode.LayeredError {
	var l Layerer
	if errors.As(err, &l) {
		return l.Layered()
	}
	var le *errcode.LayeredError
	if errors.As(err, &le) {
		return le
	}
	return errcode.ErrInternal.Wrap(err)
}

func logError(c *gin.Context, le *errcode.LayeredError, err error) {
	el := errorLoggingFrom(c)
	if !el.enable || el.ignore[le.HTTPStatus()] {
		return
	}

	fields := []zap.Field{
		zap.Int("error_code", le.Code()),
		zap.String("error_msg", le.Message()),
		zap.Int("status", le.HTTPStatus()),
	}
	if el.fullErrorChain {
		fields = append(fields, zap.Error(err))
	}

	ctx := c.Request.Context()
	switch el.level {
	case "warn":
		logger.WarnCtx(ctx, "httpx", "request failed", fields...)
	case "info":
		logger.InfoCtx(ctx, "httpx", "request failed", fields...)
	default:
		logger.ErrorCtx(ctx, "httpx", "request failed", fields...)
	}
}
