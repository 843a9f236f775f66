// internal/workers/notification/send-report/handler.go
package sendreport

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"scheme-workers/internal/common/aws"
	"scheme-workers/internal/common/logger"
	"scheme-workers/internal/common/metrics"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "send-report"
)

var (
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
)

// Sender interfaces allow mocking the AWS clients in tests.
type EmailSender interface {
	SendSimpleEmail(ctx context.Context, from, to, subject, body string) (*ses.SendEmailOutput, error)
}

type SMSSender interface {
	PublishSMS(ctx context.Context, phoneNumber, message, senderID string) (*sns.PublishOutput, error)
}

type Handler struct {
	config      *Config
	db          *sql.DB
	logger      logger.Logger
	emailSender EmailSender
	smsSender   SMSSender
	templateMap map[string]map[string]interface{}
}

func NewHandler(config *Config, db *sql.DB, emailSender EmailSender, smsSender SMSSender, log logger.Logger) *Handler {
	return &Handler{
		config:      config,
		db:          db,
		logger:      log.WithFields(map[string]interface{}{"taskType": TaskType}),
		emailSender: emailSender,
		smsSender:   smsSender,
		templateMap: loadTemplates(),
	}
}

// NewHandlerFromAWS builds a handler backed by real SES and SNS clients.
func NewHandlerFromAWS(ctx context.Context, config *Config, db *sql.DB, log logger.Logger) (*Handler, error) {
	sesClient, err := aws.NewSESClient(ctx, config.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("create SES client: %w", err)
	}
	snsClient, err := aws.NewSNSClient(ctx, config.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("create SNS client: %w", err)
	}
	return NewHandler(config, db, sesClient, snsClient, log), nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "NOTIFICATION_SEND_FAILED"
		retries := int32(0)
		if errors.Is(err, ErrNotificationSendFailed) {
			retries = 3
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	notificationID := uuid.New().String()
	sentAt := time.Now().UTC().Format(time.RFC3339)

	email, phone, err := h.getRecipientContact(ctx, input.RecipientID, input.RecipientType)
	if err != nil {
		h.logger.Warn("recipient not found", map[string]interface{}{
			"recipientId": input.RecipientID,
			"type":        input.RecipientType,
		})
		return &Output{
			NotificationID: notificationID,
			Status:         StatusDisabled,
			SentAt:         sentAt,
		}, nil
	}

	template, exists := h.templateMap[input.NotificationType]
	if !exists {
		return nil, fmt.Errorf("template not found for type: %s", input.NotificationType)
	}

	data := map[string]interface{}{
		"recipientId":     input.RecipientID,
		"schemesChecked":  input.ReportSummary.TotalSchemesChecked,
		"eligibleSchemes": input.ReportSummary.EligibleSchemes,
	}
	if input.Metadata != nil {
		for k, v := range input.Metadata {
			data[k] = v
		}
	}

	subject := renderTemplate(template["subject"].(string), data)
	body := renderTemplate(template["body"].(string), data)
	if len(input.EligibleSchemes) > 0 {
		body += "\n\n" + renderSchemeList(input.EligibleSchemes)
	}

	emailSent := false
	smsSent := false

	if h.config.EmailEnabled && email != "" {
		if _, err := h.emailSender.SendSimpleEmail(ctx, h.config.FromEmail, email, subject, body); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"error": err,
				"email": email,
			})
			h.recordNotification(ctx, notificationID, input, "email", StatusFailed, sentAt)
			return &Output{NotificationID: notificationID, Status: StatusFailed, SentAt: sentAt}, nil
		}
		metrics.NotificationsSent.WithLabelValues("email").Inc()
		emailSent = true
	}

	// SMS carries only the short summary and goes out for high priority
	if h.config.SMSEnabled && phone != "" && input.Priority == "high" {
		smsBody := renderTemplate(h.templateMap[TypeEligibilitySummary]["body"].(string), data)
		if _, err := h.smsSender.PublishSMS(ctx, phone, smsBody, h.config.SenderID); err != nil {
			h.logger.Error("SMS send failed", map[string]interface{}{
				"error": err,
				"phone": phone,
			})
			h.recordNotification(ctx, notificationID, input, "sms", StatusFailed, sentAt)
			return &Output{NotificationID: notificationID, Status: StatusFailed, SentAt: sentAt}, nil
		}
		metrics.NotificationsSent.WithLabelValues("sms").Inc()
		smsSent = true
	}

	status := StatusDisabled
	channel := "none"
	switch {
	case emailSent && smsSent:
		status, channel = StatusSent, "email+sms"
	case emailSent:
		status, channel = StatusSent, "email"
	case smsSent:
		status, channel = StatusSent, "sms"
	}

	h.recordNotification(ctx, notificationID, input, channel, status, sentAt)

	return &Output{
		NotificationID: notificationID,
		Status:         status,
		SentAt:         sentAt,
	}, nil
}

func (h *Handler) getRecipientContact(ctx context.Context, recipientID, recipientType string) (string, string, error) {
	var query string

	switch recipientType {
	case RecipientTypeCitizen:
		query = `SELECT email, phone FROM citizens WHERE id = $1`
	case RecipientTypeCaseworker:
		query = `SELECT email, phone FROM caseworkers WHERE id = $1`
	default:
		return "", "", fmt.Errorf("invalid recipient type: %s", recipientType)
	}

	var email, phone string
	err := h.db.QueryRowContext(ctx, query, recipientID).Scan(&email, &phone)
	return email, phone, err
}

// recordNotification writes the delivery log row. A failed insert is
// logged but never fails the job: the notification itself already went
// out (or failed) and that result stands.
func (h *Handler) recordNotification(ctx context.Context, id string, input *Input, channel, status, sentAt string) {
	if h.db == nil {
		return
	}
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO notifications (id, recipient_id, recipient_type, type, channel, status, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, input.RecipientID, input.RecipientType, input.NotificationType, channel, status, sentAt)
	if err != nil {
		h.logger.Error("failed to record notification", map[string]interface{}{
			"notificationId": id,
			"error":          err,
		})
	}
}

func renderSchemeList(schemes []SchemeLine) string {
	var b strings.Builder
	b.WriteString("Schemes you may be eligible for:\n")
	for _, s := range schemes {
		b.WriteString("- " + s.SchemeName)
		if s.BenefitOutline != "" {
			b.WriteString(": " + s.BenefitOutline)
		}
		b.WriteString("\n")
		if s.NextSteps != "" {
			b.WriteString("  Next steps: " + s.NextSteps + "\n")
		}
	}
	return b.String()
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, _ int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

// Simplified template rendering with placeholder removal for missing values
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	for k, v := range data {
		placeholder := "{{" + k + "}}"
		value := ""
		if s, ok := v.(string); ok {
			value = s
		} else if i, ok := v.(int); ok {
			value = fmt.Sprintf("%d", i)
		} else if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}

	// Remove any remaining placeholders (missing values)
	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return result
}

func loadTemplates() map[string]map[string]interface{} {
	return map[string]map[string]interface{}{
		TypeEligibilityReport: {
			"subject": "Your Scheme Eligibility Report",
			"body":    "We checked {{schemesChecked}} schemes for you and found {{eligibleSchemes}} you may be eligible for.",
		},
		TypeEligibilitySummary: {
			"subject": "Scheme Eligibility Summary",
			"body":    "{{eligibleSchemes}} of {{schemesChecked}} schemes matched your profile. Check your email for details.",
		},
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
