// internal/workers/catalog/search-schemes/config.go
package searchschemes

import "time"

type Config struct {
	Timeout      time.Duration
	DefaultIndex string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		DefaultIndex: "schemes",
	}
}
