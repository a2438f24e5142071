package email

import (
	"fmt"

	"roadkill-service/config"
	"roadkill-service/models"

	"github.com/apex/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// NotifyOutcome is the explicit result of a city notification attempt.
// The intake flow branches on it instead of on hidden exceptions.
type NotifyOutcome struct {
	Sent   bool
	Reason string
}

// Sent is the successful outcome.
func Sent() NotifyOutcome {
	return NotifyOutcome{Sent: true}
}

// Failed carries the failure reason for the caller's logs.
func Failed(reason string) NotifyOutcome {
	return NotifyOutcome{Sent: false, Reason: reason}
}

// Sender delivers report notifications. The core makes a single attempt
// per report; retry policy belongs to the mail provider.
type Sender interface {
	SendCityNotification(report *models.Report) NotifyOutcome
	SendReporterConfirmation(report *models.Report) NotifyOutcome
}

// EmailSender sends notifications through SendGrid.
type EmailSender struct {
	config *config.Config
	client *sendgrid.Client
}

// NewEmailSender creates a new email sender
func NewEmailSender(cfg *config.Config) *EmailSender {
	client := sendgrid.NewSendClient(cfg.SendGridAPIKey)
	return &EmailSender{
		config: cfg,
		client: client,
	}
}

// SendCityNotification forwards a stored report to the configured city
// contact.
func (e *EmailSender) SendCityNotification(report *models.Report) NotifyOutcome {
	from := mail.NewEmail(e.config.SendGridFromName, e.config.SendGridFromEmail)
	to := mail.NewEmail(e.config.CityContactName, e.config.CityContactEmail)
	subject := fmt.Sprintf("New Roadkill Report - %s", report.AnimalType)

	message := mail.NewV3Mail()
	message.SetFrom(from)
	message.Subject = subject

	p := mail.NewPersonalization()
	p.AddTos(to)
	message.AddPersonalizations(p)

	message.AddContent(mail.NewContent("text/plain", e.getCityText(report)))
	message.AddContent(mail.NewContent("text/html", e.getCityHtml(report)))

	response, err := e.client.Send(message)
	if err != nil {
		return Failed(err.Error())
	}
	if response.StatusCode >= 400 {
		return Failed(fmt.Sprintf("sendgrid returned status %d", response.StatusCode))
	}

	log.Infof("City notification for report %s sent to %s! Status: %d",
		report.ID, e.config.CityContactEmail, response.StatusCode)
	return Sent()
}

// SendReporterConfirmation acknowledges the submission to the reporter
// when they asked for updates and left an email address.
func (e *EmailSender) SendReporterConfirmation(report *models.Report) NotifyOutcome {
	if !report.SendUpdates || report.ContactEmail == "" {
		return Sent()
	}

	from := mail.NewEmail(e.config.SendGridFromName, e.config.SendGridFromEmail)
	to := mail.NewEmail(report.ContactEmail, report.ContactEmail)
	subject := "Your roadkill report was received"

	message := mail.NewV3Mail()
	message.SetFrom(from)
	message.Subject = subject

	p := mail.NewPersonalization()
	p.AddTos(to)
	message.AddPersonalizations(p)

	message.AddContent(mail.NewContent("text/plain", e.getReporterText(report)))

	response, err := e.client.Send(message)
	if err != nil {
		return Failed(err.Error())
	}
	if response.StatusCode >= 400 {
		return Failed(fmt.Sprintf("sendgrid returned status %d", response.StatusCode))
	}

	log.Infof("Confirmation for report %s sent to reporter! Status: %d", report.ID, response.StatusCode)
	return Sent()
}

func mapsLink(report *models.Report) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%f,%f",
		report.Location.Latitude, report.Location.Longitude)
}

func (e *EmailSender) getCityText(report *models.Report) string {
	contact := "Not provided"
	if report.ContactEmail != "" || report.ContactPhone != "" {
		contact = fmt.Sprintf("%s %s", report.ContactEmail, report.ContactPhone)
	}

	return fmt.Sprintf(`Hello,

A new roadkill report has been submitted.

REPORT DETAILS:
Report ID: %s
Animal: %s (%s)
Address: %s
Location: %f, %f
Map: %s
Description: %s

Reporter contact: %s

Best regards,
The Roadkill Reporter Team`,
		report.ID,
		report.AnimalType,
		report.Size,
		report.Address,
		report.Location.Latitude,
		report.Location.Longitude,
		mapsLink(report),
		report.Description,
		contact)
}

func (e *EmailSender) getCityHtml(report *models.Report) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>New Roadkill Report</title>
</head>
<body>
    <h2>New Roadkill Report</h2>
    <p><strong>Report ID:</strong> %s</p>
    <p><strong>Animal:</strong> %s (%s)</p>
    <p><strong>Address:</strong> %s</p>
    <p><strong>Location:</strong> <a href="%s">%f, %f</a></p>
    <p><strong>Description:</strong> %s</p>

    <p>Best regards,<br>The Roadkill Reporter Team</p>
</body>
</html>`,
		report.ID,
		report.AnimalType,
		report.Size,
		report.Address,
		mapsLink(report),
		report.Location.Latitude,
		report.Location.Longitude,
		report.Description)
}

func (e *EmailSender) getReporterText(report *models.Report) string {
	return fmt.Sprintf(`Hello,

Thank you for your report. It has been recorded and forwarded to the city.

Animal: %s (%s)
Address: %s
Report ID: %s

You will receive updates as the city processes the report.

Best regards,
The Roadkill Reporter Team`,
		report.AnimalType,
		report.Size,
		report.Address,
		report.ID)
}
