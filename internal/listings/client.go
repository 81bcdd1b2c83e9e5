// Package listings searches a real-estate marketplace for properties near
// the player's goal size.
package listings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/jwebster45206/life-engine/internal/services"
	"github.com/jwebster45206/life-engine/pkg/life"
)

const (
	// SizeTolerance is the allowed relative deviation from the target size.
	SizeTolerance = 0.20
	// MaxResults caps the listings returned by one search.
	MaxResults = 10

	windowLead = 5
	windowSize = 50
)

// Client talks to the marketplace search API.
type Client struct {
	url        string
	httpClient *http.Client
	cache      services.Cache
	cacheTTL   time.Duration
	logger     *slog.Logger
}

func NewClient(url string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With("provider", "listings"),
	}
}

// WithCache stores search results in cache for ttl.
// Returns the Client for method chaining
func (c *Client) WithCache(cache services.Cache, ttl time.Duration) *Client {
	c.cache = cache
	c.cacheTTL = ttl
	return c
}

type geoSearch struct {
	Query string `json:"geoSearchQuery"`
	Type  string `json:"geoSearchType"`
}

type searchRequest struct {
	Active      bool             `json:"active"`
	Type        life.ListingType `json:"type"`
	SortBy      string           `json:"sortBy"`
	SortKey     string           `json:"sortKey"`
	From        int              `json:"from"`
	Size        int              `json:"size"`
	GeoSearches geoSearch        `json:"geoSearches"`
}

type rawListing struct {
	ID          json.RawMessage `json:"id"`
	Title       string          `json:"title"`
	BuyingPrice float64         `json:"buyingPrice"`
	Zip         string          `json:"zip"`
	Rooms       float64         `json:"rooms"`
	SquareMeter float64         `json:"squareMeter"`
	Images      []struct {
		OriginalURL string `json:"originalUrl"`
	} `json:"images"`
}

type searchResponse struct {
	Total   int          `json:"total"`
	Results []rawListing `json:"results"`
}

// Search returns up to MaxResults listings within SizeTolerance of the
// target size. Transport failures yield an empty list.
func (c *Client) Search(ctx context.Context, q life.ListingQuery) []life.Listing {
	key := c.cacheKey(q)
	var out []life.Listing
	if c.cache != nil {
		found, err := services.GetJSON(ctx, c.cache, key, &out)
		if err != nil {
			c.logger.Warn("cache read failed", "error", err)
		} else if found {
			return out
		}
	}

	out, err := c.search(ctx, q)
	if err != nil {
		c.logger.Warn("listing search failed", "city", q.City, "type", q.Type, "error", err)
		return []life.Listing{}
	}

	if c.cache != nil {
		if err := services.SetJSON(ctx, c.cache, key, out, c.cacheTTL); err != nil {
			c.logger.Warn("cache write failed", "error", err)
		}
	}
	return out
}

// search binary-searches the size-sorted result set for the first listing
// at or above the lower size bound, then reads a window around it.
func (c *Client) search(ctx context.Context, q life.ListingQuery) ([]life.Listing, error) {
	if q.SquareMeters <= 0 {
		return nil, fmt.Errorf("target size must be > 0")
	}
	lo := q.SquareMeters * (1 - SizeTolerance)
	hi := q.SquareMeters * (1 + SizeTolerance)

	first, err := c.fetch(ctx, q, 0, 1)
	if err != nil {
		return nil, err
	}
	if first.Total == 0 {
		return []life.Listing{}, nil
	}

	left, right := 0, first.Total-1
	probes := 0
	for left < right {
		mid := (left + right) / 2
		page, err := c.fetch(ctx, q, mid, 1)
		if err != nil {
			return nil, err
		}
		probes++
		if len(page.Results) > 0 && page.Results[0].SquareMeter < lo {
			left = mid + 1
		} else {
			right = mid
		}
	}
	c.logger.Debug("listing position found", "index", left, "total", first.Total, "probes", probes)

	window, err := c.fetch(ctx, q, max(0, left-windowLead), windowSize)
	if err != nil {
		return nil, err
	}

	out := make([]life.Listing, 0, MaxResults)
	for _, r := range window.Results {
		if r.SquareMeter < lo || r.SquareMeter > hi {
			continue
		}
		out = append(out, toListing(r))
		if len(out) == MaxResults {
			break
		}
	}
	return out, nil
}

func (c *Client) fetch(ctx context.Context, q life.ListingQuery, from, size int) (*searchResponse, error) {
	body, err := json.Marshal(searchRequest{
		Active:      true,
		Type:        q.Type,
		SortBy:      "asc",
		SortKey:     "squareMeter",
		From:        from,
		Size:        size,
		GeoSearches: geoSearch{Query: q.City, Type: "city"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed with status %d: %s", resp.StatusCode, string(data))
	}

	var sr searchResponse
	if err := json.Unmarshal(data, &sr); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &sr, nil
}

func (c *Client) cacheKey(q life.ListingQuery) string {
	return fmt.Sprintf("listings:%s:%s:%s",
		strings.ToLower(string(q.Type)),
		cases.Fold().String(strings.TrimSpace(q.City)),
		strconv.FormatFloat(q.SquareMeters, 'f', -1, 64))
}

func toListing(r rawListing) life.Listing {
	l := life.Listing{
		ID:          rawID(r.ID),
		Title:       r.Title,
		BuyingPrice: r.BuyingPrice,
		Zip:         r.Zip,
		Rooms:       r.Rooms,
		Size:        r.SquareMeter,
	}
	if len(r.Images) > 0 {
		l.ImageURL = r.Images[0].OriginalURL
	}
	return l
}

// rawID accepts string and numeric IDs.
func rawID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if string(raw) == "null" {
		return ""
	}
	return string(raw)
}
