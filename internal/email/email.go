package email

import (
	"fmt"
	"os"
	"skillswap-backend/internal/models"
	"strings"

	"github.com/labstack/echo/v4"
	resend "github.com/resend/resend-go/v2"
)

// EmailClient is an interface for sending emails
type EmailClient interface {
	SendAsync(toEmail, subject, htmlBody string)
	SendWelcomeEmail(user *models.User)
	SendPasswordResetEmail(toEmail, resetLink string)
	SendSwapRequestEmail(recipient *models.User, requesterName string, exchange models.SkillsExchange)
	SendSessionAcceptedEmail(requester *models.User, recipientName, meetingLink string)
}

// ResendEmailClient implements EmailClient using the Resend service
type ResendEmailClient struct {
	client        *resend.Client
	defaultSender string
	logger        echo.Logger
}

// NewResendEmailClient creates a new ResendEmailClient
func NewResendEmailClient(client *resend.Client, defaultSender string, logger echo.Logger) *ResendEmailClient {
	return &ResendEmailClient{
		client:        client,
		defaultSender: defaultSender,
		logger:        logger,
	}
}

// SendAsync sends an email asynchronously
func (c *ResendEmailClient) SendAsync(toEmail, subject, htmlBody string) {
	if c == nil || c.client == nil {
		fmt.Println("Resend client not initialized, skipping email.")
		return
	}

	if c.defaultSender == "" {
		c.logger.Errorf("Resend default sender not configured, skipping email.")
		return
	}

	go func() {
		params := &resend.SendEmailRequest{
			From:    c.defaultSender,
			To:      []string{toEmail},
			Subject: subject,
			Html:    htmlBody,
		}

		_, err := c.client.Emails.Send(params)
		if err != nil {
			c.logger.Errorf("Failed to send email to %s (Subject: %s): %v\n", toEmail, subject, err)
		} else {
			c.logger.Infof("Email sent successfully to %s (Subject: %s)\n", toEmail, subject)
		}
	}()
}

// SendWelcomeEmail sends a welcome email to a new user
func (c *ResendEmailClient) SendWelcomeEmail(user *models.User) {
	if user == nil {
		c.logger.Error("Cannot send welcome email to nil user")
		return
	}

	templateBytes, err := os.ReadFile("web/emails/skillswap-welcome.html")
	if err != nil {
		c.logger.Errorf("Failed to read welcome email template: %v", err)
		return
	}

	htmlBody := strings.ReplaceAll(string(templateBytes), "{name}", user.Name)
	subject := "Welcome to SkillSwap " + user.Name

	c.SendAsync(user.Email, subject, htmlBody)
}

func (c *ResendEmailClient) SendPasswordResetEmail(toEmail, resetLink string) {
	if toEmail == "" || resetLink == "" {
		c.logger.Error("Cannot send password reset email with empty email or link")
		return
	}

	templateBytes, err := os.ReadFile("web/emails/skillswap-password-reset.html")
	if err != nil {
		c.logger.Errorf("Failed to read password reset email template: %v", err)
		return
	}

	htmlBody := strings.ReplaceAll(string(templateBytes), "{reset_link}", resetLink)
	subject := "SkillSwap Password Reset Request"

	c.SendAsync(toEmail, subject, htmlBody)
}

// SendSwapRequestEmail notifies the recipient of a new swap request.
func (c *ResendEmailClient) SendSwapRequestEmail(recipient *models.User, requesterName string, exchange models.SkillsExchange) {
	if recipient == nil {
		c.logger.Error("Cannot send swap request email to nil user")
		return
	}

	templateBytes, err := os.ReadFile("web/emails/skillswap-swap-request.html")
	if err != nil {
		c.logger.Errorf("Failed to read swap request email template: %v", err)
		return
	}

	replacer := strings.NewReplacer(
		"{name}", recipient.Name,
		"{requester_name}", requesterName,
		"{teaching_skill}", exchange.Teaching,
		"{learning_skill}", exchange.Learning,
	)
	htmlBody := replacer.Replace(string(templateBytes))

	subject := fmt.Sprintf("%s wants to swap skills with you", requesterName)

	c.SendAsync(recipient.Email, subject, htmlBody)
}

// SendSessionAcceptedEmail notifies the requester that their request was
// accepted.
func (c *ResendEmailClient) SendSessionAcceptedEmail(requester *models.User, recipientName, meetingLink string) {
	if requester == nil {
		c.logger.Error("Cannot send session accepted email to nil user")
		return
	}

	templateBytes, err := os.ReadFile("web/emails/skillswap-session-accepted.html")
	if err != nil {
		c.logger.Errorf("Failed to read session accepted email template: %v", err)
		return
	}

	if meetingLink == "" {
		meetingLink = "#"
	}

	replacer := strings.NewReplacer(
		"{name}", requester.Name,
		"{recipient_name}", recipientName,
		"{meeting_link}", meetingLink,
	)
	htmlBody := replacer.Replace(string(templateBytes))

	subject := fmt.Sprintf("%s accepted your swap request", recipientName)

	c.SendAsync(requester.Email, subject, htmlBody)
}
