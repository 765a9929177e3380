package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lookupResponse = `[
  {
    "id": 9001,
    "created_at": "Sat Mar 14 15:09:00 +0000 2020",
    "full_text": "1207) Transrightsbot. Is just here to say trans rights. https://t.co/abc123",
    "user": {"screen_name": "smolrobots"},
    "extended_entities": {
      "media": [
        {"type": "photo", "media_url_https": "https://img.example.org/1207.jpg", "ext_alt_text": "A small robot"}
      ]
    }
  },
  {
    "id": 9002,
    "created_at": "Sun Mar 15 10:00:00 +0000 2020",
    "full_text": "RT @smolrobots: 1207) Transrightsbot. https://t.co/abc123",
    "user": {"screen_name": "someoneelse"},
    "retweeted_status": {
      "id": 9001,
      "created_at": "Sat Mar 14 15:09:00 +0000 2020",
      "full_text": "1207) Transrightsbot. Is just here to say trans rights. https://t.co/abc123",
      "user": {"screen_name": "smolrobots"}
    }
  }
]`

func TestGetPostsDecodesWireFormat(t *testing.T) {
	var gotQuery map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/statuses/lookup.json", r.URL.Path)
		require.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))
		gotQuery = map[string]string{
			"id":         r.URL.Query().Get("id"),
			"tweet_mode": r.URL.Query().Get("tweet_mode"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(lookupResponse))
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, "sekrit")

	posts, err := client.GetPosts(context.Background(), []uint64{9001, 9002})
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "9001,9002", gotQuery["id"])
	assert.Equal(t, "extended", gotQuery["tweet_mode"])

	first := posts[0]
	assert.Equal(t, uint64(9001), first.ID)
	assert.Equal(t, "smolrobots", first.Author)
	assert.Equal(t, time.Date(2020, 3, 14, 15, 9, 0, 0, time.UTC), first.CreatedAt.UTC())
	// Shortened link URLs are stripped from the text.
	assert.Equal(t, "1207) Transrightsbot. Is just here to say trans rights.", first.Text)
	require.Len(t, first.Media, 1)
	assert.Equal(t, "photo", first.Media[0].Type)
	assert.Equal(t, "https://img.example.org/1207.jpg", first.Media[0].URL)
	assert.Equal(t, "A small robot", first.Media[0].Alt)

	reshare := posts[1]
	require.NotNil(t, reshare.RepostOf)
	assert.Equal(t, uint64(9001), reshare.Original().ID)
	assert.Equal(t, "smolrobots", reshare.Original().Author)
}

func TestGetPostsRejectsOversizedRequests(t *testing.T) {
	client := NewAPIClient("http://localhost:0", "token")

	ids := make([]uint64, MaxLookupIDs+1)
	for i := range ids {
		ids[i] = uint64(i + 1)
	}

	_, err := client.GetPosts(context.Background(), ids)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")
}

func TestGetPostsEmptyInput(t *testing.T) {
	client := NewAPIClient("http://localhost:0", "token")

	posts, err := client.GetPosts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestUserTimelinePassesCursor(t *testing.T) {
	var gotQuery map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/statuses/user_timeline.json", r.URL.Path)
		gotQuery = map[string]string{
			"screen_name": r.URL.Query().Get("screen_name"),
			"count":       r.URL.Query().Get("count"),
			"max_id":      r.URL.Query().Get("max_id"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, "token")

	_, err := client.UserTimeline(context.Background(), "@smolrobots", TimelineOptions{Count: 50, MaxID: 8999})
	require.NoError(t, err)

	assert.Equal(t, "smolrobots", gotQuery["screen_name"])
	assert.Equal(t, "50", gotQuery["count"])
	assert.Equal(t, "8999", gotQuery["max_id"])
}

func TestUserTimelineOmitsCursorOnFirstPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("max_id"))
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, "token")

	_, err := client.UserTimeline(context.Background(), "smolrobots", TimelineOptions{Count: 200})
	require.NoError(t, err)
}

func TestUserTimelineSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"code":88}]}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, "token")

	_, err := client.UserTimeline(context.Background(), "smolrobots", TimelineOptions{Count: 200})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
