package config

// ConfigSource produces flat "a.b.c" keyed values. Sources with a higher Priority
// override lower ones.
type ConfigSource interface {
	Name() string
	Priority() int
	Load() (map[string]interface{}, error)
}
