package utils

import (
	"fmt"
	"log"
	"time"

	"lms/config"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendEmail sends an HTML email through SendGrid
func SendEmail(toEmail, toName, subject, htmlBody string) error {
	if config.AppConfig.SendgridApiKey == "" {
		log.Printf("[MAIL] SendGrid key not configured, skipping email to %s", toEmail)
		return nil
	}

	from := sgmail.NewEmail("LMS", config.AppConfig.EmailSender)
	to := sgmail.NewEmail(toName, toEmail)
	message := sgmail.NewSingleEmail(from, subject, to, "", htmlBody)

	client := sendgrid.NewSendClient(config.AppConfig.SendgridApiKey)
	resp, err := client.Send(message)
	if err != nil {
		log.Printf("[MAIL] Error sending email to %s: %v", toEmail, err)
		return err
	}
	if resp.StatusCode >= 400 {
		log.Printf("[MAIL] SendGrid rejected email to %s: %d %s", toEmail, resp.StatusCode, resp.Body)
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}

// SendEnrollmentConfirmation notifies a student their enrollment is active
func SendEnrollmentConfirmation(email, name, courseTitle string) {
	body := emailTemplate("Enrollment Confirmed",
		fmt.Sprintf(`<p>Hi %s,</p>
		<p>Your payment was received and you are now enrolled in <strong>%s</strong>.</p>
		<p>Head to your dashboard to start learning.</p>`, name, courseTitle))
	_ = SendEmail(email, name, "Enrollment confirmed: "+courseTitle, body)
}

// SendSubscriptionExpiryReminder warns a user their subscription expires soon
func SendSubscriptionExpiryReminder(email, name string, expiresAt *time.Time) {
	when := "soon"
	if expiresAt != nil {
		when = expiresAt.Format("02 Jan 2006")
	}
	body := emailTemplate("Subscription Expiring",
		fmt.Sprintf(`<p>Hi %s,</p>
		<p>Your subscription expires on <strong>%s</strong>.</p>
		<p>Renew to keep publishing and accessing premium courses.</p>`, name, when))
	_ = SendEmail(email, name, "Your subscription expires "+when, body)
}

// emailTemplate wraps body content in the shared HTML layout
func emailTemplate(title, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1A1A40; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1A1A40; line-height: 1.6; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>LMS</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; %d LMS. All rights reserved.
			</div>
		</div>
	</body>
	</html>`, title, bodyContent, time.Now().Year())
}
