// internal/workers/notification/send-report/handler_test.go
package sendreport

import (
	"context"
	"errors"
	"testing"
	"time"

	"scheme-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockEmailSender struct {
	SendSimpleEmailFunc func(ctx context.Context, from, to, subject, body string) (*ses.SendEmailOutput, error)
	LastSubject         string
	LastBody            string
	LastTo              string
}

func (m *MockEmailSender) SendSimpleEmail(ctx context.Context, from, to, subject, body string) (*ses.SendEmailOutput, error) {
	m.LastTo = to
	m.LastSubject = subject
	m.LastBody = body
	if m.SendSimpleEmailFunc != nil {
		return m.SendSimpleEmailFunc(ctx, from, to, subject, body)
	}
	return &ses.SendEmailOutput{}, nil
}

type MockSMSSender struct {
	PublishSMSFunc func(ctx context.Context, phoneNumber, message, senderID string) (*sns.PublishOutput, error)
	LastMessage    string
	LastPhone      string
}

func (m *MockSMSSender) PublishSMS(ctx context.Context, phoneNumber, message, senderID string) (*sns.PublishOutput, error) {
	m.LastPhone = phoneNumber
	m.LastMessage = message
	if m.PublishSMSFunc != nil {
		return m.PublishSMSFunc(ctx, phoneNumber, message, senderID)
	}
	return &sns.PublishOutput{}, nil
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		EmailEnabled: true,
		SMSEnabled:   true,
		FromEmail:    "noreply@schemes.gov.in",
		AWSRegion:    "ap-south-1",
		SenderID:     "GOVSCHEME",
		Timeout:      30 * time.Second,
	}
}

func createTestInput(notificationType string) *Input {
	return &Input{
		RecipientID:      "citizen-001",
		RecipientType:    RecipientTypeCitizen,
		NotificationType: notificationType,
		Priority:         "high",
		ReportSummary: ReportSummary{
			TotalSchemesChecked: 12,
			EligibleSchemes:     3,
		},
		EligibleSchemes: []SchemeLine{
			{SchemeName: "Old Age Pension", BenefitOutline: "Rs 1000 per month", NextSteps: "Visit the welfare office"},
			{SchemeName: "Farmer Income Support"},
		},
	}
}

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

func expectContactLookup(mock sqlmock.Sqlmock, email, phone string) {
	rows := sqlmock.NewRows([]string{"email", "phone"}).AddRow(email, phone)
	mock.ExpectQuery(`SELECT email, phone FROM citizens WHERE id = \$1`).
		WithArgs("citizen-001").
		WillReturnRows(rows)
}

func expectNotificationInsert(mock sqlmock.Sqlmock) {
	mock.ExpectExec(`INSERT INTO notifications`).
		WillReturnResult(sqlmock.NewResult(1, 1))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_EmailAndSMS(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectContactLookup(mock, "citizen@example.com", "+911234567890")
	expectNotificationInsert(mock)

	emailSender := &MockEmailSender{}
	smsSender := &MockSMSSender{}

	handler := NewHandler(createTestConfig(), db, emailSender, smsSender, newTestLogger(t))

	output, err := handler.Execute(context.Background(), createTestInput(TypeEligibilityReport))
	require.NoError(t, err)

	assert.Equal(t, StatusSent, output.Status)
	assert.NotEmpty(t, output.NotificationID)
	assert.NotEmpty(t, output.SentAt)

	assert.Equal(t, "citizen@example.com", emailSender.LastTo)
	assert.Contains(t, emailSender.LastBody, "We checked 12 schemes")
	assert.Contains(t, emailSender.LastBody, "Old Age Pension: Rs 1000 per month")
	assert.Contains(t, emailSender.LastBody, "Next steps: Visit the welfare office")

	assert.Equal(t, "+911234567890", smsSender.LastPhone)
	assert.Contains(t, smsSender.LastMessage, "3 of 12 schemes matched")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_LowPrioritySkipsSMS(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectContactLookup(mock, "citizen@example.com", "+911234567890")
	expectNotificationInsert(mock)

	emailSender := &MockEmailSender{}
	smsSender := &MockSMSSender{}

	handler := NewHandler(createTestConfig(), db, emailSender, smsSender, newTestLogger(t))

	input := createTestInput(TypeEligibilityReport)
	input.Priority = "normal"

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, StatusSent, output.Status)
	assert.Empty(t, smsSender.LastPhone)
	assert.NotEmpty(t, emailSender.LastTo)
}

func TestHandler_Execute_RecipientNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT email, phone FROM citizens WHERE id = \$1`).
		WithArgs("citizen-001").
		WillReturnError(errors.New("no rows in result set"))

	handler := NewHandler(createTestConfig(), db, &MockEmailSender{}, &MockSMSSender{}, newTestLogger(t))

	output, err := handler.Execute(context.Background(), createTestInput(TypeEligibilityReport))
	require.NoError(t, err)

	assert.Equal(t, StatusDisabled, output.Status)
	assert.NotEmpty(t, output.NotificationID)
}

func TestHandler_Execute_EmailFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectContactLookup(mock, "citizen@example.com", "")
	expectNotificationInsert(mock)

	emailSender := &MockEmailSender{
		SendSimpleEmailFunc: func(ctx context.Context, from, to, subject, body string) (*ses.SendEmailOutput, error) {
			return nil, errors.New("ses unavailable")
		},
	}

	handler := NewHandler(createTestConfig(), db, emailSender, &MockSMSSender{}, newTestLogger(t))

	output, err := handler.Execute(context.Background(), createTestInput(TypeEligibilityReport))
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, output.Status)
}

func TestHandler_Execute_SMSFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectContactLookup(mock, "citizen@example.com", "+911234567890")
	expectNotificationInsert(mock)

	smsSender := &MockSMSSender{
		PublishSMSFunc: func(ctx context.Context, phoneNumber, message, senderID string) (*sns.PublishOutput, error) {
			return nil, errors.New("sns unavailable")
		},
	}

	handler := NewHandler(createTestConfig(), db, &MockEmailSender{}, smsSender, newTestLogger(t))

	output, err := handler.Execute(context.Background(), createTestInput(TypeEligibilityReport))
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, output.Status)
}

func TestHandler_Execute_ChannelsDisabled(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectContactLookup(mock, "citizen@example.com", "+911234567890")
	expectNotificationInsert(mock)

	config := createTestConfig()
	config.EmailEnabled = false
	config.SMSEnabled = false

	handler := NewHandler(config, db, &MockEmailSender{}, &MockSMSSender{}, newTestLogger(t))

	output, err := handler.Execute(context.Background(), createTestInput(TypeEligibilityReport))
	require.NoError(t, err)

	assert.Equal(t, StatusDisabled, output.Status)
}

func TestHandler_Execute_TemplateNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectContactLookup(mock, "citizen@example.com", "")

	handler := NewHandler(createTestConfig(), db, &MockEmailSender{}, &MockSMSSender{}, newTestLogger(t))

	input := createTestInput("unknown_type")

	output, err := handler.Execute(context.Background(), input)

	assert.Nil(t, output)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "template not found")
}

func TestHandler_Execute_InvalidRecipientType(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	handler := NewHandler(createTestConfig(), db, &MockEmailSender{}, &MockSMSSender{}, newTestLogger(t))

	input := createTestInput(TypeEligibilityReport)
	input.RecipientType = "robot"

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	// unknown recipient types degrade to a disabled notification
	assert.Equal(t, StatusDisabled, output.Status)
}

// ==========================
// Template Tests
// ==========================

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]interface{}
		expected string
	}{
		{
			name:     "replaces string placeholder",
			template: "Hello {{name}}",
			data:     map[string]interface{}{"name": "Asha"},
			expected: "Hello Asha",
		},
		{
			name:     "replaces int placeholder",
			template: "{{count}} schemes",
			data:     map[string]interface{}{"count": 7},
			expected: "7 schemes",
		},
		{
			name:     "removes missing placeholder",
			template: "Hello {{missing}}!",
			data:     map[string]interface{}{},
			expected: "Hello !",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, renderTemplate(tt.template, tt.data))
		})
	}
}

func TestRenderSchemeList(t *testing.T) {
	out := renderSchemeList([]SchemeLine{
		{SchemeName: "Scheme A", BenefitOutline: "Benefit A", NextSteps: "Step A"},
		{SchemeName: "Scheme B"},
	})

	assert.Contains(t, out, "- Scheme A: Benefit A")
	assert.Contains(t, out, "  Next steps: Step A")
	assert.Contains(t, out, "- Scheme B")
}
