package config

import (
	"os"
	"path/filepath"
)

// Source priorities used by the builder.
const (
	PriorityBaseFile = 10
	PriorityEnvFile  = 20
	PriorityEnvVars  = 50
)

// LoaderBuilder assembles the standard source stack:
// <dir>/config.yaml, <dir>/<APP_ENV>.yaml, then PREFIX_* environment variables.
type LoaderBuilder struct {
	configPath  string
	envPrefix   string
	envBindings map[string]string
}

func NewLoaderBuilder() *LoaderBuilder {
	return &LoaderBuilder{envBindings: make(map[string]string)}
}

func (b *LoaderBuilder) WithConfigPath(path string) *LoaderBuilder {
	b.configPath = path
	return b
}

func (b *LoaderBuilder) WithEnvPrefix(prefix string) *LoaderBuilder {
	b.envPrefix = prefix
	return b
}

// WithEnvBinding maps key to PREFIX_envKey explicitly.
func (b *LoaderBuilder) WithEnvBinding(key, envKey string) *LoaderBuilder {
	b.envBindings[key] = envKey
	return b
}

func (b *LoaderBuilder) Build() (*Loader, error) {
	loader := NewLoader()

	if b.configPath != "" {
		loader.AddSource(NewFileSource(filepath.Join(b.configPath, "config.yaml"), PriorityBaseFile))
		if env := GetEnv(); env != "" {
			loader.AddSource(NewFileSource(filepath.Join(b.configPath, env+".yaml"), PriorityEnvFile))
		}
	}

	if b.envPrefix != "" {
		envSource := NewEnvSource(b.envPrefix, PriorityEnvVars)
		for key, envKey := range b.envBindings {
			envSource.AddBinding(key, envKey)
		}
		loader.AddSource(envSource)
	}

	if err := loader.Load(); err != nil {
		return nil, err
	}
	return loader, nil
}

// GetEnv returns APP_ENV, then ENV, defaulting to "dev".
func GetEnv() string {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env
	}
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "dev"
}
