package service

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// sesSender is the part of the SES client the email service uses
type sesSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client           sesSender
	fromEmail        string
	fromName         string
	appBaseURL       string
	inactivityWindow time.Duration
	enabled          bool
	logger           *slog.Logger
}

var _ AccountNotifier = (*EmailService)(nil)

// EmailConfig configures the SES email service
type EmailConfig struct {
	AWSRegion        string
	FromEmail        string
	FromName         string
	AppBaseURL       string
	InactivityWindow time.Duration
}

// NewEmailService creates a new email service. An empty FromEmail yields a
// disabled service that skips every send.
func NewEmailService(ctx context.Context, cfg EmailConfig, logger *slog.Logger) (*EmailService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.InactivityWindow <= 0 {
		cfg.InactivityWindow = DefaultInactivityWindow
	}

	if cfg.FromEmail == "" {
		logger.Info("email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, logger: logger, inactivityWindow: cfg.InactivityWindow}, nil
	}

	logger.Debug("initializing email service",
		"region", cfg.AWSRegion, "from", cfg.FromEmail, "app_base_url", cfg.AppBaseURL)

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("email service enabled", "from", cfg.FromEmail, "region", cfg.AWSRegion)

	return &EmailService{
		client:           sesv2.NewFromConfig(awsCfg),
		fromEmail:        cfg.FromEmail,
		fromName:         cfg.FromName,
		appBaseURL:       cfg.AppBaseURL,
		inactivityWindow: cfg.InactivityWindow,
		enabled:          true,
		logger:           logger,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// NotifyRegistered sends the welcome email
func (s *EmailService) NotifyRegistered(ctx context.Context, email string) error {
	return s.SendWelcomeEmail(ctx, email)
}

// SendWelcomeEmail sends a welcome email to a new account, including the
// inactivity deletion policy
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail string) error {
	if !s.enabled {
		s.logger.Debug("skipping welcome email, service disabled")
		return nil
	}

	days := int(s.inactivityWindow / (24 * time.Hour))
	subject := "Welcome to Test Case Generator"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #4a90e2; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.notice { border-left: 4px solid #e2a04a; padding-left: 12px; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Welcome to Test Case Generator</h1>
		</div>
		<div class="content">
			<p>Your account for %s is ready.</p>
			<p>Add your OpenAI API key in the extension settings to start generating test cases from your tickets.</p>
			<p class="notice">Accounts with no activity for %d days are deleted automatically, together with the stored API key.</p>
			<p><a href="%s">%s</a></p>
		</div>
		<div class="footer">
			<p>This is an automated email. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, html.EscapeString(toEmail), days, html.EscapeString(s.appBaseURL), html.EscapeString(s.appBaseURL))

	textBody := fmt.Sprintf(`Your account for %s is ready.

Add your OpenAI API key in the extension settings to start generating test cases from your tickets.

Accounts with no activity for %d days are deleted automatically, together with the stored API key.

%s

---
This is an automated email. Please do not reply.
`, toEmail, days, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	if result.MessageId != nil {
		s.logger.Info("email sent", "subject", subject, "message_id", *result.MessageId)
	}
	return nil
}
