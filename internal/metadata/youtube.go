package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"karaoke/internal/pkg/response"
)

const youtubeAPIBase = "https://www.googleapis.com/youtube/v3"

var ErrDisabled = errors.New("video search is not configured")

// TrackResult is one searchable karaoke track: the video id doubles as
// the track id stored on song requests.
type TrackResult struct {
	TrackID         string `json:"track_id"`
	Title           string `json:"title"`
	Channel         string `json:"channel"`
	Thumbnail       string `json:"thumbnail"`
	DurationSeconds int    `json:"duration_seconds"`
}

// YouTubeClient proxies video search so the browser never sees the API
// key. Search results are resolved to durations in a second call because
// the search endpoint does not return contentDetails.
type YouTubeClient struct {
	apiKey string
	http   *http.Client
}

func NewYouTubeClient(apiKey string) *YouTubeClient {
	return &YouTubeClient{
		apiKey: apiKey,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *YouTubeClient) Enabled() bool { return c.apiKey != "" }

func (c *YouTubeClient) Search(ctx context.Context, query string, limit int) ([]TrackResult, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	if limit <= 0 || limit > 25 {
		limit = 10
	}

	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("type", "video")
	q.Set("videoCategoryId", "10")
	q.Set("maxResults", fmt.Sprint(limit))
	q.Set("q", query)
	q.Set("key", c.apiKey)

	var search struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
			Snippet struct {
				Title        string `json:"title"`
				ChannelTitle string `json:"channelTitle"`
				Thumbnails   struct {
					Medium struct {
						URL string `json:"url"`
					} `json:"medium"`
				} `json:"thumbnails"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := c.getJSON(ctx, "/search", q, &search); err != nil {
		return nil, err
	}
	if len(search.Items) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(search.Items))
	results := make([]TrackResult, 0, len(search.Items))
	for _, item := range search.Items {
		ids = append(ids, item.ID.VideoID)
		results = append(results, TrackResult{
			TrackID:   item.ID.VideoID,
			Title:     item.Snippet.Title,
			Channel:   item.Snippet.ChannelTitle,
			Thumbnail: item.Snippet.Thumbnails.Medium.URL,
		})
	}

	durations, err := c.durations(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].DurationSeconds = durations[results[i].TrackID]
	}
	return results, nil
}

func (c *YouTubeClient) durations(ctx context.Context, ids []string) (map[string]int, error) {
	q := url.Values{}
	q.Set("part", "contentDetails")
	q.Set("id", strings.Join(ids, ","))
	q.Set("key", c.apiKey)

	var videos struct {
		Items []struct {
			ID             string `json:"id"`
			ContentDetails struct {
				Duration string `json:"duration"`
			} `json:"contentDetails"`
		} `json:"items"`
	}
	if err := c.getJSON(ctx, "/videos", q, &videos); err != nil {
		return nil, err
	}

	out := make(map[string]int, len(videos.Items))
	for _, item := range videos.Items {
		out[item.ID] = parseISODuration(item.ContentDetails.Duration)
	}
	return out, nil
}

func (c *YouTubeClient) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, youtubeAPIBase+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube api returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// parseISODuration converts the API's ISO 8601 duration ("PT3M45S") to
// seconds. Malformed input parses as 0.
func parseISODuration(d string) int {
	d = strings.TrimPrefix(d, "PT")
	total, num := 0, 0
	for _, r := range d {
		switch {
		case r >= '0' && r <= '9':
			num = num*10 + int(r-'0')
		case r == 'H':
			total += num * 3600
			num = 0
		case r == 'M':
			total += num * 60
			num = 0
		case r == 'S':
			total += num
			num = 0
		default:
			return 0
		}
	}
	return total
}

type Handler struct {
	client *YouTubeClient
}

func NewHandler(client *YouTubeClient) *Handler {
	return &Handler{client: client}
}

func (h *Handler) RegisterGuestRoutes(rg *gin.RouterGroup) {
	rg.GET("/tracks/search", h.Search)
}

func (h *Handler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "missing query")
		return
	}

	results, err := h.client.Search(c.Request.Context(), query, 10)
	if err != nil {
		if errors.Is(err, ErrDisabled) {
			response.Error(c, http.StatusServiceUnavailable, "SEARCH_DISABLED", "video search is not configured")
			return
		}
		response.Error(c, http.StatusBadGateway, "UPSTREAM_ERROR", "video search failed")
		return
	}
	response.Success(c, http.StatusOK, results)
}
