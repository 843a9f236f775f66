// internal/workers/eligibility/check-eligibility/config.go
package checkeligibility

import (
	"time"

	"scheme-workers/pkg/eligibility"
)

type Config struct {
	Timeout     time.Duration
	CacheTTL    time.Duration
	CatalogPath string
	Weights     eligibility.ScoreWeights
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  30 * time.Second,
		CacheTTL: 5 * time.Minute,
		Weights:  eligibility.DefaultScoreWeights,
	}
}
