package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEmailService_DisabledWithoutSender(t *testing.T) {
	svc, err := NewEmailService(context.Background(), EmailConfig{}, discardLogger())
	require.NoError(t, err)
	assert.False(t, svc.IsEnabled())
	assert.NoError(t, svc.NotifyRegistered(context.Background(), "user@example.com"))
}

func TestEmailService_WelcomeMentionsInactivityPolicy(t *testing.T) {
	ses := &fakeSES{}
	svc := &EmailService{
		client:           ses,
		fromEmail:        "noreply@example.com",
		fromName:         "Test Case Generator",
		appBaseURL:       "https://testcases.example.com",
		inactivityWindow: 30 * 24 * time.Hour,
		enabled:          true,
		logger:           discardLogger(),
	}

	require.NoError(t, svc.NotifyRegistered(context.Background(), "user@example.com"))
	require.Len(t, ses.inputs, 1)

	in := ses.inputs[0]
	assert.Equal(t, "Test Case Generator <noreply@example.com>", aws.ToString(in.FromEmailAddress))
	assert.Equal(t, []string{"user@example.com"}, in.Destination.ToAddresses)
	assert.Contains(t, aws.ToString(in.Content.Simple.Body.Text.Data), "no activity for 30 days")
	assert.Contains(t, aws.ToString(in.Content.Simple.Body.Html.Data), "no activity for 30 days")
}

func TestEmailService_SendFailure(t *testing.T) {
	ses := &fakeSES{err: errors.New("throttled")}
	svc := &EmailService{client: ses, fromEmail: "noreply@example.com", enabled: true,
		inactivityWindow: DefaultInactivityWindow, logger: discardLogger()}

	err := svc.SendWelcomeEmail(context.Background(), "user@example.com")
	assert.Error(t, err)
}
