// Package httpx holds the response envelope and the error-to-status mapping
// shared by every gin handler.
package httpx

// ErrorLoggingConfig controls whether HandleError writes failures to the log.
type ErrorLoggingConfig struct {
	Enable bool `mapstructure:"enable" json:"enable"`

	// IgnoreHTTPStatus lists statuses that are answered but never logged, e.g. 400 and 404.
	IgnoreHTTPStatus []int `mapstructure:"ignore_http_status" json:"ignore_http_status"`

	// FullErrorChain adds the wrapped causes to the entry.
	FullErrorChain bool `mapstructure:"full_error_chain" json:"full_error_chain"`

	// LogLevel is error, warn or info.
	LogLevel string `mapstructure:"log_level" json:"log_level"`
}

func DefaultErrorLoggingConfig() ErrorLoggingConfig {
	return ErrorLoggingConfig{
		Enable:           true,
		IgnoreHTTPStatus: []int{400, 404},
		FullErrorChain:   true,
		LogLevel:         "error",
	}
}
