// internal/workers/eligibility/rank-schemes/config.go
package rankschemes

import "time"

type Config struct {
	MaxItems          int
	Timeout           time.Duration
	EligibilityWeight float64
	RelevanceWeight   float64
}

func LoadConfig() *Config {
	return &Config{
		MaxItems:          20,
		Timeout:           30 * time.Second,
		EligibilityWeight: 0.7,
		RelevanceWeight:   0.3,
	}
}
