package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
)

// RequestBuilder composes a request and serves it on an http.Handler.
type RequestBuilder struct {
	method  string
	path    string
	body    io.Reader
	headers http.Header
	query   url.Values
}

func NewRequest(method, path string) *RequestBuilder {
	return &RequestBuilder{
		method:  method,
		path:    path,
		headers: make(http.Header),
		query:   make(url.Values),
	}
}

func GET(path string) *RequestBuilder    { return NewRequest(http.MethodGet, path) }
func POST(path string) *RequestBuilder   { return NewRequest(http.MethodPost, path) }
func PUT(path string) *RequestBuilder    { return NewRequest(http.MethodPut, path) }
func DELETE(path string) *RequestBuilder { return NewRequest(http.MethodDelete, path) }

// WithJSON marshals body. It panics on values encoding/json cannot encode.
func (rb *RequestBuilder) WithJSON(body interface{}) *RequestBuilder {
	b, err := json.Marshal(body)
	if err != nil {
		panic(err)
	}
	return rb.WithRawJSON(string(b))
}

func (rb *RequestBuilder) WithRawJSON(body string) *RequestBuilder {
	rb.body = bytes.NewBufferString(body)
	rb.headers.Set("Content-Type", "application/json")
	return rb
}

func (rb *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	rb.headers.Set(key, value)
	return rb
}

func (rb *RequestBuilder) WithQuery(key, value string) *RequestBuilder {
	rb.query.Add(key, value)
	return rb
}

func (rb *RequestBuilder) WithTraceID(traceID string) *RequestBuilder {
	return rb.WithHeader("X-Trace-ID", traceID)
}

func (rb *RequestBuilder) Do(h http.Handler) *ResponseHelper {
	target := rb.path
	if len(rb.query) > 0 {
		target += "?" + rb.query.Encode()
	}
	req := httptest.NewRequest(rb.method, target, rb.body)
	for k, v := range rb.headers {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return &ResponseHelper{Recorder: w}
}

type ResponseHelper struct {
	Recorder *httptest.ResponseRecorder
}

func (rh *ResponseHelper) Status() int {
	return rh.Recorder.Code
}

func (rh *ResponseHelper) Body() string {
	return rh.Recorder.Body.String()
}

func (rh *ResponseHelper) JSON(v interface{}) error {
	return json.Unmarshal(rh.Recorder.Body.Bytes(), v)
}

func (rh *ResponseHelper) Header(key string) string {
	return rh.Recorder.Header().Get(key)
}
