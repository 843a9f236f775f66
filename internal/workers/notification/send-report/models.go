// internal/workers/notification/send-report/models.go
package sendreport

type Input struct {
	RecipientID      string                 `json:"recipientId"`
	RecipientType    string                 `json:"recipientType"` // "citizen" or "caseworker"
	NotificationType string                 `json:"notificationType"`
	Priority         string                 `json:"priority,omitempty"`
	ReportSummary    ReportSummary          `json:"reportSummary"`
	EligibleSchemes  []SchemeLine           `json:"eligibleSchemes,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

type ReportSummary struct {
	TotalSchemesChecked int `json:"totalSchemesChecked"`
	EligibleSchemes     int `json:"eligibleSchemes"`
}

// SchemeLine is one eligible scheme as it appears in the report body.
type SchemeLine struct {
	SchemeName     string `json:"schemeName"`
	BenefitOutline string `json:"benefitOutline,omitempty"`
	NextSteps      string `json:"nextSteps,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled"
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Notification types
const (
	TypeEligibilityReport  = "eligibility_report"
	TypeEligibilitySummary = "eligibility_summary"
)

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

// Recipient types
const (
	RecipientTypeCitizen    = "citizen"
	RecipientTypeCaseworker = "caseworker"
)
