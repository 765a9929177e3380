package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/tinyrobots/robot-archive-bot/internal/models"
)

// createdAtLayout is the upstream API's timestamp format.
const createdAtLayout = "Mon Jan 02 15:04:05 -0700 2006"

// Shortened media and link URLs appended to post text by the upstream.
var linkRe = regexp.MustCompile(`https?://\S+`)

// APIClient implements Client against the upstream REST API.
type APIClient struct {
	baseURL string
	token   string
	client  *resty.Client
}

// Ensure APIClient implements Client
var _ Client = (*APIClient)(nil)

// NewAPIClient creates a new upstream API client
func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "robot-archive-bot/1.0"),
	}
}

type apiPost struct {
	ID        uint64 `json:"id"`
	CreatedAt string `json:"created_at"`
	FullText  string `json:"full_text"`
	Text      string `json:"text"`
	User      struct {
		ScreenName string `json:"screen_name"`
	} `json:"user"`
	ExtendedEntities struct {
		Media []apiMedia `json:"media"`
	} `json:"extended_entities"`
	RepostedStatus *apiPost `json:"retweeted_status"`
}

type apiMedia struct {
	Type          string `json:"type"`
	MediaURLHTTPS string `json:"media_url_https"`
	ExtAltText    string `json:"ext_alt_text"`
}

func (c *APIClient) GetPosts(ctx context.Context, ids []uint64) ([]models.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxLookupIDs {
		return nil, fmt.Errorf("requested %d posts, upstream limit is %d per call", len(ids), MaxLookupIDs)
	}

	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = strconv.FormatUint(id, 10)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.token).
		SetQueryParams(map[string]string{
			"id":                   strings.Join(idStrs, ","),
			"tweet_mode":           "extended",
			"include_ext_alt_text": "true",
		}).
		Get(c.baseURL + "/statuses/lookup.json")

	if err != nil {
		return nil, fmt.Errorf("post lookup request failed: %w", err)
	}

	if resp.StatusCode() != 200 {
		logrus.Errorf("Upstream lookup error: status %d, body: %s", resp.StatusCode(), string(resp.Body()))
		return nil, fmt.Errorf("upstream API returned status %d", resp.StatusCode())
	}

	return decodePosts(resp.Body())
}

func (c *APIClient) UserTimeline(ctx context.Context, user string, opts TimelineOptions) ([]models.Post, error) {
	count := opts.Count
	if count < 1 || count > MaxPageLength {
		count = MaxPageLength
	}

	params := map[string]string{
		"screen_name":          strings.TrimPrefix(user, "@"),
		"count":                strconv.Itoa(count),
		"include_rts":          "true",
		"tweet_mode":           "extended",
		"include_ext_alt_text": "true",
	}
	if opts.MaxID != 0 {
		params["max_id"] = strconv.FormatUint(opts.MaxID, 10)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.token).
		SetQueryParams(params).
		Get(c.baseURL + "/statuses/user_timeline.json")

	if err != nil {
		return nil, fmt.Errorf("timeline request failed: %w", err)
	}

	if resp.StatusCode() != 200 {
		logrus.Errorf("Upstream timeline error: status %d, body: %s", resp.StatusCode(), string(resp.Body()))
		return nil, fmt.Errorf("upstream API returned status %d", resp.StatusCode())
	}

	return decodePosts(resp.Body())
}

func decodePosts(body []byte) ([]models.Post, error) {
	var wire []apiPost
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("failed to parse upstream response: %w", err)
	}

	posts := make([]models.Post, 0, len(wire))
	for _, w := range wire {
		posts = append(posts, w.toPost())
	}
	return posts, nil
}

func (w *apiPost) toPost() models.Post {
	post := models.Post{
		ID:     w.ID,
		Author: w.User.ScreenName,
		Text:   cleanText(w.text()),
	}

	if t, err := time.Parse(createdAtLayout, w.CreatedAt); err == nil {
		post.CreatedAt = t
	} else {
		logrus.Debugf("Unparseable post timestamp %q on post %d", w.CreatedAt, w.ID)
	}

	for _, m := range w.ExtendedEntities.Media {
		post.Media = append(post.Media, models.Media{
			Type: m.Type,
			URL:  m.MediaURLHTTPS,
			Alt:  m.ExtAltText,
		})
	}

	if w.RepostedStatus != nil {
		orig := w.RepostedStatus.toPost()
		post.RepostOf = &orig
	}

	return post
}

func (w *apiPost) text() string {
	if w.FullText != "" {
		return w.FullText
	}
	return w.Text
}

// cleanText strips shortened link and media URLs, leaving the plain text the
// parser operates on.
func cleanText(text string) string {
	return strings.TrimSpace(linkRe.ReplaceAllString(text, ""))
}
