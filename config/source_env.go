package config

import (
	"os"
	"strings"
)

// EnvSource maps PREFIX_A_B=v to "a.b". Keys whose last segment contains an
// underscore (cache.collection_key) cannot be derived that way and need a binding.
type EnvSource struct {
	prefix   string
	priority int
	bindings map[string]string // config key -> env var without prefix
}

func NewEnvSource(prefix string, priority int) *EnvSource {
	return &EnvSource{
		prefix:   prefix,
		priority: priority,
		bindings: make(map[string]string),
	}
}

// AddBinding maps key to PREFIX_envKey.
func (s *EnvSource) AddBinding(key, envKey string) {
	s.bindings[key] = envKey
}

func (s *EnvSource) Name() string {
	return "env:" + s.prefix
}

func (s *EnvSource) Priority() int {
	return s.priority
}

func (s *EnvSource) Load() (map[string]interface{}, error) {
	result := make(map[string]interface{})
	if s.prefix == "" {
		return result, nil
	}

	prefix := s.prefix + "_"
	bound := make(map[string]bool, len(s.bindings))
	for _, envKey := range s.bindings {
		bound[prefix+envKey] = true
	}

	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, prefix) || bound[name] {
			continue
		}
		key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, prefix)), "_", ".")
		result[key] = value
	}

	for key, envKey := range s.bindings {
		if value, ok := os.LookupEnv(prefix + envKey); ok {
			result[key] = value
		}
	}
	return result, nil
}
