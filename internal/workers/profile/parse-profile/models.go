// internal/workers/profile/parse-profile/models.go
package parseprofile

import "scheme-workers/pkg/eligibility"

type Input struct {
	RawProfile map[string]interface{} `json:"rawProfile"`
}

type Output struct {
	CitizenProfile    eligibility.Profile `json:"citizenProfile"`
	AttributeCount    int                 `json:"attributeCount"`
	DroppedAttributes []string            `json:"droppedAttributes,omitempty"`
}
