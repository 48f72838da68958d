package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/config"
	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

type fakeMailer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeMailer) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func testDigest() *models.Digest {
	insights := []string{"Most active around 21:00 with 12 messages sent in that hour.", "Sunday is the busiest day of the week."}
	return &models.Digest{
		RunID:       "run-1",
		GeneratedAt: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
		Reports: []*models.Report{
			{
				ID:         "r-1",
				Transcript: "transcripts/family.txt",
				Scope:      "All",
				BasicStats: &models.BasicStats{TotalMessages: 40, TotalWords: 210, MediaMessages: 3, LinksShared: 2},
				Sentiment:  &models.SentimentSummary{Classified: 30, PositiveRatio: 0.5},
				Insights:   &insights,
			},
			{
				ID:         "r-2",
				Transcript: "transcripts/work.txt",
				Scope:      "All",
				Failures:   map[string]string{"topics": "panic: boom"},
			},
		},
		Errors: []string{"transcripts/broken.txt: unrecognized transcript format"},
	}
}

func TestService_SendDigestToTeams(t *testing.T) {
	var received TeamsMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewService(&config.Config{TeamsWebhookURL: server.URL})
	require.NoError(t, svc.SendDigest(context.Background(), testDigest()))

	assert.Equal(t, "MessageCard", received.Type)
	assert.Equal(t, "Chat Analysis Digest - 2024-03-04", received.Title)
	assert.Equal(t, "Analyzed 2 transcripts with 40 messages in total", received.Text)
	require.Len(t, received.Sections, 3)
	assert.Equal(t, "transcripts/family.txt", received.Sections[0].ActivityTitle)
	assert.Contains(t, received.Sections[0].Facts, TeamsFact{Name: "Messages", Value: "40"})
	assert.Contains(t, received.Sections[0].Facts, TeamsFact{Name: "Positive Share", Value: "50%"})
	assert.Contains(t, received.Sections[1].Facts, TeamsFact{Name: "Failed Sections", Value: "1"})
	assert.Equal(t, "Errors", received.Sections[2].ActivityTitle)
}

func TestService_SendDigestTeamsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("bad card"))
	}))
	defer server.Close()

	svc := NewService(&config.Config{TeamsWebhookURL: server.URL})
	err := svc.SendDigest(context.Background(), testDigest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestService_SendDigestByEmail(t *testing.T) {
	mail := &fakeMailer{}
	svc := NewService(&config.Config{NotificationEmail: "team@example.com", SMTPUsername: "bot@example.com"})
	svc.mailer = mail

	require.NoError(t, svc.SendDigest(context.Background(), testDigest()))
	require.Len(t, mail.sent, 1)
	assert.Equal(t, []string{"team@example.com"}, mail.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Chat Analysis Digest - 2 transcripts (40 messages)"}, mail.sent[0].GetHeader("Subject"))

	mail.err = errors.New("smtp down")
	err := svc.SendDigest(context.Background(), testDigest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Email: ")
}

func TestService_NoChannelsConfigured(t *testing.T) {
	svc := NewService(&config.Config{})
	assert.NoError(t, svc.SendDigest(context.Background(), testDigest()))
	assert.NoError(t, svc.SendAlert(context.Background(), &models.Alert{ID: "a-1", Type: "warning", Title: "t", Message: "m"}))
}

func TestWriteDigestCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeDigestCSV(&buf, testDigest()))

	want := "Transcript,Total Messages,Total Words,Media Messages,Links Shared,Failed Sections\n" +
		"transcripts/family.txt,40,210,3,2,0\n" +
		"transcripts/work.txt,,,,,1\n"
	assert.Equal(t, want, buf.String())
}

func TestBuildEmailBodies(t *testing.T) {
	html, err := buildEmailHTML(testDigest())
	require.NoError(t, err)
	assert.Contains(t, html, "transcripts/family.txt")
	assert.Contains(t, html, "Positive share: 50%")
	assert.Contains(t, html, "Sunday is the busiest day of the week.")

	text := buildEmailText(testDigest())
	assert.Contains(t, text, "1. transcripts/family.txt")
	assert.Contains(t, text, "Messages: 40 | Words: 210 | Media: 3 | Links: 2")
	assert.Contains(t, text, "ERRORS")
}
