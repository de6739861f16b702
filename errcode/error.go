// Package errcode defines layered error codes shared by every module of the service.
//
// A code is MMBBBB: MM is the module code, BBBB the business code inside that module.
package errcode

import (
	"fmt"
	"net/http"
)

// LayeredError carries a module-scoped code, a message key, an HTTP status, optional
// context data and an optional cause. All With* methods return a copy.
type LayeredError struct {
	module     string
	code       int
	msgKey     string
	msg        string
	httpStatus int
	data       map[string]interface{}
	cause      error
}

// New creates a layered error. httpStatus defaults to 500.
func New(moduleCode, businessCode int, module, msgKey, msg string, httpStatus ...int) *LayeredError {
	status := http.StatusInternalServerError
	if len(httpStatus) > 0 {
		status = httpStatus[0]
	}
	return &LayeredError{
		module:     module,
		code:       moduleCode*10000 + businessCode,
		msgKey:     msgKey,
		msg:        msg,
		httpStatus: status,
		data:       make(map[string]interface{}),
	}
}

func (e *LayeredError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

func (e *LayeredError) Code() int { return e.code }

func (e *LayeredError) Module() string { return e.module }

func (e *LayeredError) MsgKey() string { return e.msgKey }

func (e *LayeredError) Message() string { return e.msg }

func (e *LayeredError) HTTPStatus() int { return e.httpStatus }

func (e *LayeredError) Data() map[string]interface{} { return e.data }

func (e *LayeredError) Cause() error { return e.cause }

func (e *LayeredError) Unwrap() error { return e.cause }

// WithMsg replaces the message.
func (e *LayeredError) WithMsg(msg string) *LayeredError {
	clone := *e
	clone.msg = msg
	return &clone
}

// WithMsgf replaces the message using a format string.
func (e *LayeredError) WithMsgf(format string, args ...interface{}) *LayeredError {
	clone := *e
	clone.msg = fmt.Sprintf(format, args...)
	return &clone
}

// WithData adds one context value.
func (e *LayeredError) WithData(key string, value interface{}) *LayeredError {
	clone := *e
	clone.data = e.cloneData()
	clone.data[key] = value
	return &clone
}

// WithFields adds several context values at once.
func (e *LayeredError) WithFields(fields map[string]interface{}) *LayeredError {
	clone := *e
	clone.data = e.cloneData()
	for k, v := range fields {
		clone.data[k] = v
	}
	return &clone
}

// Wrap attaches cause. A nil cause returns e unchanged.
func (e *LayeredError) Wrap(cause error) *LayeredError {
	if cause == nil {
		return e
	}
	clone := *e
	clone.cause = cause
	return &clone
}

// Wrapf attaches cause and replaces the message.
func (e *LayeredError) Wrapf(cause error, format string, args ...interface{}) *LayeredError {
	clone := e.WithMsgf(format, args...)
	clone.cause = cause
	return clone
}

// WithHTTPStatus overrides the HTTP status.
func (e *LayeredError) WithHTTPStatus(status int) *LayeredError {
	clone := *e
	clone.httpStatus = status
	return &clone
}

// Is matches any LayeredError with the same code, so errors.Is works against the
// package-level sentinels after WithMsg or Wrap produced a copy.
func (e *LayeredError) Is(target error) bool {
	t, ok := target.(*LayeredError)
	if !ok {
		return false
	}
	return e.code == t.code
}

func (e *LayeredError) cloneData() map[string]interface{} {
	data := make(map[string]interface{}, len(e.data)+1)
	for k, v := range e.data {
		data[k] = v
	}
	return data
}

func (e *LayeredError) String() string {
	if e.cause != nil {
		return fmt.Sprintf("LayeredError{code:%d, module:%s, msg:%s, cause:%v}",
			e.code, e.module, e.msg, e.cause)
	}
	return fmt.Sprintf("LayeredError{code:%d, module:%s, msg:%s}", e.code, e.module, e.msg)
}
