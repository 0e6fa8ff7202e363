package ses

import (
	"context"
	"fmt"
	"html"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"regnify/internal/domain"
	"regnify/internal/port"
	"regnify/internal/validator"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	frontendURL string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName, frontendURL string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		frontendURL: frontendURL,
	}, nil
}

func (s *sesSender) SendWelcomeEmail(ctx context.Context, toEmail, toName, username string) error {
	loginURL := s.frontendURL + "/login"

	subject := "Welcome to Regnify Invoice Validator"
	htmlBody := buildHTML("Welcome to Regnify",
		fmt.Sprintf("<p>Hi %s,</p><p>An account with username <strong>%s</strong> has been created for you.</p>",
			html.EscapeString(toName), html.EscapeString(username)),
		"Sign in", loginURL)
	textBody := fmt.Sprintf("Hi %s,\n\nAn account with username %s has been created for you.\nSign in at %s\n\nRegnify Team",
		toName, username, loginURL)

	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) SendInvoiceProcessedEmail(ctx context.Context, toEmail string, inv *domain.Invoice) error {
	invoiceURL := fmt.Sprintf("%s/invoices/%s", s.frontendURL, inv.ID)

	subject := "Invoice Processed: " + inv.InvoiceNumber
	htmlBody := buildHTML("Invoice processed",
		fmt.Sprintf("<p>Invoice <strong>%s</strong> was processed with status %s and validation score %d.</p>",
			html.EscapeString(inv.InvoiceNumber), inv.Status, inv.ValidationScore),
		"View invoice", invoiceURL)
	textBody := fmt.Sprintf("Invoice %s was processed with status %s and validation score %d.\n%s\n\nRegnify Team",
		inv.InvoiceNumber, inv.Status, inv.ValidationScore, invoiceURL)

	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) SendInvoiceValidationFailedEmail(ctx context.Context, toEmail string, inv *domain.Invoice) error {
	invoiceURL := fmt.Sprintf("%s/invoices/%s", s.frontendURL, inv.ID)

	subject := "Invoice Validation Failed: " + inv.InvoiceNumber
	problems := strings.Split(inv.ValidationErrors, validator.ErrorSeparator)
	var items, lines strings.Builder
	for _, p := range problems {
		fmt.Fprintf(&items, "<li>%s</li>", html.EscapeString(p))
		fmt.Fprintf(&lines, "  - %s\n", p)
	}
	htmlBody := buildHTML("Invoice validation failed",
		fmt.Sprintf("<p>Invoice <strong>%s</strong> scored %d and failed validation:</p><ul style=\"color: #B91C1C;\">%s</ul>",
			html.EscapeString(inv.InvoiceNumber), inv.ValidationScore, items.String()),
		"Review invoice", invoiceURL)
	textBody := fmt.Sprintf("Invoice %s scored %d and failed validation:\n%s\n%s\n\nRegnify Team",
		inv.InvoiceNumber, inv.ValidationScore, lines.String(), invoiceURL)

	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) SendAccountStatusEmail(ctx context.Context, toEmail, toName string, status domain.UserStatus) error {
	subject := "Account Status Changed"
	htmlBody := buildHTML("Account status changed",
		fmt.Sprintf("<p>Hi %s,</p><p>Your Regnify account is now <strong>%s</strong>.</p>",
			html.EscapeString(toName), status),
		"Sign in", s.frontendURL+"/login")
	textBody := fmt.Sprintf("Hi %s,\n\nYour Regnify account is now %s.\n\nRegnify Team", toName, status)

	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) SendRoleChangeEmail(ctx context.Context, toEmail, toName string, role domain.UserRole) error {
	subject := "Account Role Changed"
	htmlBody := buildHTML("Account role changed",
		fmt.Sprintf("<p>Hi %s,</p><p>Your role has been changed to <strong>%s</strong>.</p>",
			html.EscapeString(toName), role),
		"Sign in", s.frontendURL+"/login")
	textBody := fmt.Sprintf("Hi %s,\n\nYour role has been changed to %s.\n\nRegnify Team", toName, role)

	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) SendAccountUnlockedEmail(ctx context.Context, toEmail, toName string) error {
	loginURL := s.frontendURL + "/login"

	subject := "Account Unlocked"
	htmlBody := buildHTML("Account unlocked",
		fmt.Sprintf("<p>Hi %s,</p><p>Your account has been unlocked by an administrator. You can sign in again.</p>",
			html.EscapeString(toName)),
		"Sign in", loginURL)
	textBody := fmt.Sprintf("Hi %s,\n\nYour account has been unlocked by an administrator.\nSign in at %s\n\nRegnify Team",
		toName, loginURL)

	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildHTML(title, content, buttonLabel, buttonURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">%s</h2>
  %s
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">%s</a>
  </p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Regnify - Invoice Validation Platform</p>
</body>
</html>`, title, content, buttonURL, buttonLabel)
}
