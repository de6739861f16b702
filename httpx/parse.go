package httpx

import (
	"bytes"
	"io"
	"strconv"

	"github.com/KOMKZ/yogan-vehicle-api/errcode"
	"github.com/KOMKZ/yogan-vehicle-api/validator"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// ParseID reads the path parameter name as an int64. The sign is left to the caller.
func ParseID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, &validator.ValidationError{
			Field:   name,
			Kind:    validator.KindInvalidID,
			Message: "must be an integer",
		}
	}
	return id, nil
}

// BindJSON decodes the request body into the struct pointed to by dst. It reports
// false when the body is empty or JSON null, leaving dst untouched.
func BindJSON(c *gin.Context, dst interface{}) (bool, error) {
	if c.Request.Body == nil {
		return false, nil
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return false, errcode.ErrBadRequest.WithMsg("read body failed").Wrap(err)
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false, nil
	}
	if err := binding.JSON.BindBody(trimmed, dst); err != nil {
		return false, errcode.ErrBadRequest.WithMsg("malformed json body").Wrap(err)
	}
	return true, nil
}
