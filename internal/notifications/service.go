package notifications

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/config"
	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

// mailer is satisfied by *gomail.Dialer
type mailer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Service sends batch digests and alerts to Teams and email
type Service struct {
	config *config.Config
	client *resty.Client
	mailer mailer
}

// Ensure Service implements NotificationInterface
var _ NotificationInterface = (*Service)(nil)

// TeamsMessage represents a Microsoft Teams MessageCard
type TeamsMessage struct {
	Type       string         `json:"@type"`
	Context    string         `json:"@context"`
	ThemeColor string         `json:"themeColor,omitempty"`
	Title      string         `json:"title"`
	Text       string         `json:"text"`
	Sections   []TeamsSection `json:"sections,omitempty"`
}

type TeamsSection struct {
	ActivityTitle    string      `json:"activityTitle,omitempty"`
	ActivitySubtitle string      `json:"activitySubtitle,omitempty"`
	ActivityText     string      `json:"activityText,omitempty"`
	Facts            []TeamsFact `json:"facts,omitempty"`
	Markdown         bool        `json:"markdown,omitempty"`
}

type TeamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a notification service for the configured channels
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
		mailer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
	}
}

// SendDigest delivers a batch digest on every configured channel
func (s *Service) SendDigest(ctx context.Context, digest *models.Digest) error {
	var errs []string

	if s.config.TeamsWebhookURL != "" {
		if err := s.postToTeams(ctx, s.buildDigestCard(digest)); err != nil {
			logrus.Errorf("Failed to send Teams digest: %v", err)
			errs = append(errs, fmt.Sprintf("Teams: %v", err))
		} else {
			logrus.Infof("Sent %s to Teams", digest)
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendDigestEmail(digest); err != nil {
			logrus.Errorf("Failed to send digest email: %v", err)
			errs = append(errs, fmt.Sprintf("Email: %v", err))
		} else {
			logrus.Infof("Sent %s to %s", digest, s.config.NotificationEmail)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// SendAlert posts an alert card to Teams; without a webhook the alert is only logged
func (s *Service) SendAlert(ctx context.Context, alert *models.Alert) error {
	logrus.WithFields(logrus.Fields{
		"type":  alert.Type,
		"title": alert.Title,
	}).Warn(alert.Message)

	if s.config.TeamsWebhookURL == "" {
		return nil
	}

	color := "FFB900"
	if alert.Type == "critical" {
		color = "D13438"
	}
	card := &TeamsMessage{
		Type:       "MessageCard",
		Context:    "https://schema.org/extensions",
		ThemeColor: color,
		Title:      alert.Title,
		Text:       alert.Message,
	}
	if err := s.postToTeams(ctx, card); err != nil {
		return fmt.Errorf("failed to send alert %s: %w", alert.ID, err)
	}
	return nil
}

func (s *Service) postToTeams(ctx context.Context, message *TeamsMessage) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.TeamsWebhookURL)
	if err != nil {
		return fmt.Errorf("failed to send Teams message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("Teams webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	return nil
}

func (s *Service) buildDigestCard(digest *models.Digest) *TeamsMessage {
	message := &TeamsMessage{
		Type:       "MessageCard",
		Context:    "https://schema.org/extensions",
		ThemeColor: "25D366",
		Title:      fmt.Sprintf("Chat Analysis Digest - %s", digest.GeneratedAt.Format("2006-01-02")),
		Text: fmt.Sprintf("Analyzed %d transcripts with %d messages in total",
			len(digest.Reports), digest.TotalMessages()),
	}

	for _, r := range digest.Reports {
		facts := []TeamsFact{{Name: "Scope", Value: r.Scope}}
		if r.BasicStats != nil {
			facts = append(facts,
				TeamsFact{Name: "Messages", Value: strconv.Itoa(r.BasicStats.TotalMessages)},
				TeamsFact{Name: "Words", Value: strconv.Itoa(r.BasicStats.TotalWords)},
				TeamsFact{Name: "Links Shared", Value: strconv.Itoa(r.BasicStats.LinksShared)},
			)
		}
		if r.Sentiment != nil && r.Sentiment.Classified > 0 {
			facts = append(facts, TeamsFact{
				Name:  "Positive Share",
				Value: fmt.Sprintf("%.0f%%", r.Sentiment.PositiveRatio*100),
			})
		}
		if len(r.Failures) > 0 {
			facts = append(facts, TeamsFact{Name: "Failed Sections", Value: strconv.Itoa(len(r.Failures))})
		}

		section := TeamsSection{
			ActivityTitle:    r.Transcript,
			ActivitySubtitle: r.ID,
			Facts:            facts,
			Markdown:         true,
		}
		if r.Insights != nil && len(*r.Insights) > 0 {
			section.ActivityText = strings.Join(limit(*r.Insights, 3), "\n\n")
		}
		message.Sections = append(message.Sections, section)
	}

	if len(digest.Errors) > 0 {
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: "Errors",
			ActivityText:  strings.Join(digest.Errors, "\n\n"),
			Markdown:      true,
		})
	}

	return message
}

func (s *Service) sendDigestEmail(digest *models.Digest) error {
	subject := fmt.Sprintf("Chat Analysis Digest - %d transcripts (%d messages)",
		len(digest.Reports), digest.TotalMessages())

	htmlBody, err := buildEmailHTML(digest)
	if err != nil {
		return fmt.Errorf("failed to build email HTML: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", buildEmailText(digest))
	m.AddAlternative("text/html", htmlBody)
	m.Attach(fmt.Sprintf("digest-%s.csv", digest.RunID), gomail.SetCopyFunc(func(w io.Writer) error {
		return writeDigestCSV(w, digest)
	}))

	if err := s.mailer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// writeDigestCSV writes one summary row per analyzed transcript
func writeDigestCSV(w io.Writer, digest *models.Digest) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Transcript", "Total Messages", "Total Words", "Media Messages", "Links Shared", "Failed Sections"}); err != nil {
		return err
	}
	for _, r := range digest.Reports {
		row := []string{r.Transcript, "", "", "", "", strconv.Itoa(len(r.Failures))}
		if st := r.BasicStats; st != nil {
			row[1] = strconv.Itoa(st.TotalMessages)
			row[2] = strconv.Itoa(st.TotalWords)
			row[3] = strconv.Itoa(st.MediaMessages)
			row[4] = strconv.Itoa(st.LinksShared)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var emailTemplate = template.Must(template.New("digest").Funcs(template.FuncMap{
	"percent": func(f float64) string { return fmt.Sprintf("%.0f%%", f*100) },
}).Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Chat Analysis Digest</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #075e54; color: white; padding: 20px; border-radius: 5px; }
        .chat { border-left: 4px solid #25d366; padding: 10px; margin: 10px 0; background-color: #fafafa; }
        .meta { color: #666; font-size: 0.9em; }
        .error { color: #d13438; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Chat Analysis Digest</h1>
        <p>Run {{.RunID}} generated on {{.GeneratedAt.Format "January 2, 2006 at 3:04 PM UTC"}}</p>
    </div>

    {{range .Reports}}
    <div class="chat">
        <h2>{{.Transcript}}</h2>
        {{if .BasicStats}}
        <p class="meta">{{.BasicStats.TotalMessages}} messages | {{.BasicStats.TotalWords}} words | {{.BasicStats.MediaMessages}} media | {{.BasicStats.LinksShared}} links</p>
        {{end}}
        {{if .Sentiment}}<p>Positive share: {{percent .Sentiment.PositiveRatio}}</p>{{end}}
        {{if .Insights}}<ul>{{range .Insights}}<li>{{.}}</li>{{end}}</ul>{{end}}
    </div>
    {{end}}

    {{if .Errors}}
    <h2>Errors</h2>
    {{range .Errors}}<p class="error">{{.}}</p>{{end}}
    {{end}}

    <hr>
    <p><small>This digest was generated automatically by the chat analyzer.</small></p>
</body>
</html>
`))

func buildEmailHTML(digest *models.Digest) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, digest); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildEmailText(digest *models.Digest) string {
	var text strings.Builder

	text.WriteString("Chat Analysis Digest\n")
	text.WriteString(fmt.Sprintf("Run: %s\n", digest.RunID))
	text.WriteString(fmt.Sprintf("Generated: %s\n\n", digest.GeneratedAt.Format("2006-01-02 15:04:05 UTC")))

	for i, r := range digest.Reports {
		text.WriteString(fmt.Sprintf("%d. %s\n", i+1, r.Transcript))
		if r.BasicStats != nil {
			text.WriteString(fmt.Sprintf("   Messages: %d | Words: %d | Media: %d | Links: %d\n",
				r.BasicStats.TotalMessages, r.BasicStats.TotalWords, r.BasicStats.MediaMessages, r.BasicStats.LinksShared))
		}
		if r.Insights != nil {
			for _, line := range limit(*r.Insights, 3) {
				text.WriteString(fmt.Sprintf("   - %s\n", line))
			}
		}
	}

	if len(digest.Errors) > 0 {
		text.WriteString("\nERRORS\n")
		text.WriteString("======\n")
		for _, e := range digest.Errors {
			text.WriteString(e + "\n")
		}
	}

	text.WriteString("\n---\nThis digest was generated automatically by the chat analyzer.\n")
	return text.String()
}

func limit(lines []string, n int) []string {
	if len(lines) < n {
		return lines
	}
	return lines[:n]
}
