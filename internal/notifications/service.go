package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/tinyrobots/robot-archive-bot/internal/config"
	"github.com/tinyrobots/robot-archive-bot/internal/models"
)

// Service delivers digests via the configured channels
type Service struct {
	config *config.Config
	client *resty.Client
}

// Ensure Service implements Notifier
var _ Notifier = (*Service)(nil)

// WebhookMessage is the JSON payload posted to the digest webhook
type WebhookMessage struct {
	Title    string           `json:"title"`
	Text     string           `json:"text"`
	Sections []WebhookSection `json:"sections,omitempty"`
}

type WebhookSection struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// SendDigest sends the digest via every configured channel. A failure on
// one channel does not stop delivery on the others.
func (s *Service) SendDigest(digest *models.Digest) error {
	var errs []string

	if s.config.WebhookURL != "" {
		if err := s.sendToWebhook(digest); err != nil {
			logrus.Errorf("Failed to send webhook notification: %v", err)
			errs = append(errs, fmt.Sprintf("webhook: %v", err))
		} else {
			logrus.Info("Successfully sent digest to webhook")
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(digest); err != nil {
			logrus.Errorf("Failed to send email notification: %v", err)
			errs = append(errs, fmt.Sprintf("email: %v", err))
		} else {
			logrus.Info("Successfully sent digest via email")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

func (s *Service) sendToWebhook(digest *models.Digest) error {
	message := s.buildWebhookMessage(digest)

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.WebhookURL)

	if err != nil {
		return fmt.Errorf("failed to post webhook message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) buildWebhookMessage(digest *models.Digest) *WebhookMessage {
	message := &WebhookMessage{
		Title: "New Robots Archived",
		Text: fmt.Sprintf("Archived %d new robots since %s",
			digest.Count(), digest.Since.Format("Jan 2 15:04 UTC")),
	}

	for i := range digest.Robots {
		robot := &digest.Robots[i]
		message.Sections = append(message.Sections, WebhookSection{
			Title: fmt.Sprintf("%d) %s", robot.RobotNumber, robot.FullName()),
			Text:  robot.Body,
		})
	}

	return message
}

func (s *Service) sendEmail(digest *models.Digest) error {
	subject := fmt.Sprintf("Robot Archive Digest (%d new robots)", digest.Count())

	htmlBody, err := s.buildEmailHTML(digest)
	if err != nil {
		return fmt.Errorf("failed to build email HTML: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", s.buildEmailText(digest))
	m.AddAlternative("text/html", htmlBody)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

var emailTemplate = template.Must(template.New("digest").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Robot Archive Digest</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #4a4a8a; color: white; padding: 20px; border-radius: 5px; }
        .robot { border-left: 4px solid #4a4a8a; padding: 10px; margin: 10px 0; background-color: #fafafa; }
        .robot-name { font-weight: bold; margin-bottom: 5px; }
        .robot-meta { color: #666; font-size: 0.9em; }
        .cw { color: #a00; font-weight: bold; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Robot Archive Digest</h1>
        <p>{{.Count}} new robots archived since {{.Since.Format "January 2, 2006 at 3:04 PM UTC"}}</p>
    </div>

    {{range .Robots}}
    <div class="robot">
        <div class="robot-name">{{.RobotNumber}}) {{.FullName}}</div>
        <div class="robot-meta">Announced {{.PostTime.Format "Jan 2, 2006"}} in post {{.PostID}}</div>
        {{if .ContentWarning}}<p class="cw">CN: {{.ContentWarning}}</p>{{end}}
        <p>{{.Body}}</p>
    </div>
    {{end}}
</body>
</html>
`))

func (s *Service) buildEmailHTML(digest *models.Digest) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, digest); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *Service) buildEmailText(digest *models.Digest) string {
	var text strings.Builder

	text.WriteString("Robot Archive Digest\n")
	text.WriteString(fmt.Sprintf("Generated: %s\n", digest.GeneratedAt.Format("2006-01-02 15:04:05 UTC")))
	text.WriteString(fmt.Sprintf("New robots since %s: %d\n\n", digest.Since.Format("2006-01-02"), digest.Count()))

	for i := range digest.Robots {
		robot := &digest.Robots[i]
		text.WriteString(fmt.Sprintf("%d) %s\n", robot.RobotNumber, robot.FullName()))
		text.WriteString(fmt.Sprintf("   Announced %s in post %d\n", robot.PostTime.Format("Jan 2, 2006"), robot.PostID))
		if robot.ContentWarning != nil {
			text.WriteString(fmt.Sprintf("   CN: %s\n", *robot.ContentWarning))
		}
		text.WriteString(fmt.Sprintf("   %s\n\n", robot.Body))
	}

	return text.String()
}
