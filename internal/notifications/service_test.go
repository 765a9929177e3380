package notifications

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyrobots/robot-archive-bot/internal/config"
	"github.com/tinyrobots/robot-archive-bot/internal/models"
)

func testDigest() *models.Digest {
	cw := "loud noises"
	return &models.Digest{
		GeneratedAt: time.Date(2020, 3, 15, 9, 0, 0, 0, time.UTC),
		Since:       time.Date(2020, 3, 14, 9, 0, 0, 0, time.UTC),
		Robots: []models.RobotRecord{
			{
				RobotNumber: 1207,
				Slug:        "transrights",
				Prefix:      "Transrights",
				Suffix:      "bot",
				PostID:      9001,
				PostTime:    time.Date(2020, 3, 14, 15, 9, 0, 0, time.UTC),
				Body:        "Is just here to say trans rights.",
			},
			{
				RobotNumber:    42,
				Slug:           "klaxon",
				Prefix:         "Klaxon",
				Suffix:         "bot",
				PostID:         9002,
				PostTime:       time.Date(2020, 3, 14, 18, 30, 0, 0, time.UTC),
				Body:           "Honks.",
				ContentWarning: &cw,
			},
		},
	}
}

func TestSendDigestPostsToWebhook(t *testing.T) {
	var received WebhookMessage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewService(&config.Config{WebhookURL: server.URL})

	require.NoError(t, svc.SendDigest(testDigest()))

	assert.Equal(t, "New Robots Archived", received.Title)
	require.Len(t, received.Sections, 2)
	assert.Equal(t, "1207) Transrightsbot", received.Sections[0].Title)
	assert.Equal(t, "42) Klaxonbot", received.Sections[1].Title)
	assert.Equal(t, "Honks.", received.Sections[1].Text)
}

func TestSendDigestReportsWebhookFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer server.Close()

	svc := NewService(&config.Config{WebhookURL: server.URL})

	err := svc.SendDigest(testDigest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestSendDigestNoChannelsConfigured(t *testing.T) {
	svc := NewService(&config.Config{})
	assert.NoError(t, svc.SendDigest(testDigest()))
}

func TestBuildEmailText(t *testing.T) {
	svc := NewService(&config.Config{})

	text := svc.buildEmailText(testDigest())

	assert.Contains(t, text, "New robots since 2020-03-14: 2")
	assert.Contains(t, text, "1207) Transrightsbot")
	assert.Contains(t, text, "CN: loud noises")
	assert.Contains(t, text, "Is just here to say trans rights.")
}

func TestBuildEmailHTMLEscapesContent(t *testing.T) {
	svc := NewService(&config.Config{})

	digest := testDigest()
	digest.Robots[0].Body = "Says <script>alert(1)</script> sometimes."

	html, err := svc.buildEmailHTML(digest)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
}
