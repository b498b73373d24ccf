// Package location proxies place search to the Nominatim geocoder and
// applies a local relevance score before returning the top matches.
package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// MaxResults is how many scored places a search returns
const MaxResults = 5

// Place is a geocoder result with its computed relevance score
type Place struct {
	PlaceID     int64             `json:"place_id"`
	DisplayName string            `json:"display_name"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	Type        string            `json:"type"`
	Class       string            `json:"class"`
	Importance  float64           `json:"importance"`
	Address     map[string]string `json:"address,omitempty"`
	Score       float64           `json:"score"`
}

var allowedTypes = map[string]bool{
	"city":           true,
	"town":           true,
	"village":        true,
	"municipality":   true,
	"hamlet":         true,
	"suburb":         true,
	"neighbourhood":  true,
	"locality":       true,
	"administrative": true,
}

// Client queries Nominatim. A 1 rps limiter keeps us inside the service's
// usage policy.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new Client
func NewClient(baseURL, userAgent string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Search queries the geocoder for a city-like place, filters to place and
// boundary results, scores them against the query and returns the top
// MaxResults by score then importance.
func (c *Client) Search(ctx context.Context, query string) ([]Place, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("city", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", "5")
	params.Set("countrycodes", "br")
	params.Set("accept-language", "pt-BR,pt,en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder status %d", resp.StatusCode)
	}

	var places []Place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, err
	}

	tokens := strings.Fields(strings.ToLower(query))
	scored := places[:0]
	for _, p := range places {
		if !allowedTypes[p.Type] && p.Class != "place" && p.Class != "boundary" {
			continue
		}
		p.Score = Score(p.DisplayName, p.Importance, tokens)
		scored = append(scored, p)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Importance > scored[j].Importance
	})

	if len(scored) > MaxResults {
		scored = scored[:MaxResults]
	}
	return scored, nil
}

// Score ranks a display name against the query tokens: +20 for a full-query
// prefix, +5 per token found anywhere, +1 per word starting with a token,
// plus 5x the geocoder's own importance.
func Score(displayName string, importance float64, tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	name := strings.ToLower(displayName)
	var score float64

	if strings.HasPrefix(name, strings.Join(tokens, " ")) {
		score += 20
	}

	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == ',' || r == ' '
	})
	for _, t := range tokens {
		if strings.Contains(name, t) {
			score += 5
		}
		for _, w := range words {
			if strings.HasPrefix(w, t) {
				score++
			}
		}
	}

	return score + importance*5
}
