// Package images finds a representative image for a project by searching the
// Pexels photo API, falling back to a themed stock image when the search
// fails or yields nothing usable.
package images

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds Pexels client settings.
type Config struct {
	APIKey  string
	BaseURL string
}

// Client searches Pexels for project images.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient creates a Pexels search client.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.pexels.com/v1"
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger.With().Str("component", "images").Logger(),
	}
}

type pexelsPhoto struct {
	ID     int64  `json:"id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Alt    string `json:"alt"`
	Src    struct {
		Original string `json:"original"`
		Large    string `json:"large"`
		Medium   string `json:"medium"`
		Small    string `json:"small"`
	} `json:"src"`
}

type pexelsResponse struct {
	TotalResults int           `json:"total_results"`
	Photos       []pexelsPhoto `json:"photos"`
}

// FindProjectImage returns a medium-sized image URL for the project. It never
// fails: when the API is unreachable, unauthorized, or returns no usable
// photo, a themed fallback URL is chosen from the title and description.
func (c *Client) FindProjectImage(ctx context.Context, title, description string) string {
	query := buildSearchQuery(title, description)

	imageURL, err := c.search(ctx, query)
	if err != nil {
		c.logger.Warn().Err(err).Str("query", query).Msg("Image search failed, using fallback")
		return FallbackImage(title, description)
	}
	return imageURL
}

func (c *Client) search(ctx context.Context, query string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("no API key configured")
	}

	endpoint := fmt.Sprintf("%s/search?query=%s&per_page=15&orientation=landscape", c.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("searching images: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image search returned status %d", resp.StatusCode)
	}

	var body pexelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding search response: %w", err)
	}
	if len(body.Photos) == 0 {
		return "", errors.New("no images found for query")
	}

	return selectBestPhoto(body.Photos).Src.Medium, nil
}

// selectBestPhoto prefers landscape photos of reasonable size and aspect
// ratio, taking the first qualifying result. Falls back to the first photo
// when none qualify.
func selectBestPhoto(photos []pexelsPhoto) pexelsPhoto {
	for _, p := range photos {
		if p.Height <= 0 {
			continue
		}
		landscape := p.Width > p.Height
		bigEnough := p.Width >= 640 && p.Height >= 400
		reasonableRatio := float64(p.Width)/float64(p.Height) <= 3
		if landscape && bigEnough && reasonableRatio {
			return p
		}
	}
	return photos[0]
}

var nonWordPattern = regexp.MustCompile(`[^\w\s]`)

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "this": {}, "that": {},
	"from": {}, "they": {}, "have": {}, "been": {}, "learn": {},
	"about": {}, "explore": {}, "discover": {},
}

// buildSearchQuery combines the cleaned title with up to two meaningful words
// from the description.
func buildSearchQuery(title, description string) string {
	cleanTitle := nonWordPattern.ReplaceAllString(strings.ToLower(title), " ")
	cleanTitle = strings.Join(strings.Fields(cleanTitle), " ")

	var extras []string
	for _, word := range strings.Fields(strings.ToLower(description)) {
		if len(word) <= 4 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		extras = append(extras, word)
		if len(extras) == 2 {
			break
		}
	}

	query := strings.TrimSpace(cleanTitle + " " + strings.Join(extras, " "))
	if query == "" {
		return title
	}
	return query
}

type fallbackTheme struct {
	keywords []string
	url      string
}

var fallbackThemes = []fallbackTheme{
	{[]string{"space", "planet", "star"}, "https://images.unsplash.com/photo-1446776877081-d282a0f896e2?w=800&q=80"},
	{[]string{"math", "number", "calculation"}, "https://images.unsplash.com/photo-1509228468518-180dd4864904?w=800&q=80"},
	{[]string{"ocean", "marine", "sea"}, "https://images.unsplash.com/photo-1559827260-dc66d52bef19?w=800&q=80"},
	{[]string{"art", "draw", "paint"}, "https://images.unsplash.com/photo-1513475382585-d06e58bcb0e0?w=800&q=80"},
	{[]string{"science", "experiment"}, "https://images.unsplash.com/photo-1532094349884-543bc11b234d?w=800&q=80"},
	{[]string{"nature", "environment"}, "https://images.unsplash.com/photo-1441974231531-c6227db76b6e?w=800&q=80"},
	{[]string{"book", "read"}, "https://images.unsplash.com/photo-1481627834876-b7833e8f5570?w=800&q=80"},
	{[]string{"music", "instrument"}, "https://images.unsplash.com/photo-1493225457124-a3eb161ffa5f?w=800&q=80"},
}

const defaultFallbackImage = "https://images.unsplash.com/photo-1523050854058-8df90110c9f1?w=800&q=80"

// FallbackImage picks a themed stock image by keyword matching on the title
// and description, with a generic educational default. Deterministic for a
// given input.
func FallbackImage(title, description string) string {
	content := strings.ToLower(title + " " + description)
	for _, theme := range fallbackThemes {
		for _, kw := range theme.keywords {
			if strings.Contains(content, kw) {
				return theme.url
			}
		}
	}
	return defaultFallbackImage
}
