package listings

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/life-engine/internal/services"
	"github.com/jwebster45206/life-engine/pkg/life"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// marketplace serves listings sorted ascending by size.
func marketplace(t *testing.T, sizes []float64, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			requests.Add(1)
		}
		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Active)
		assert.Equal(t, "asc", req.SortBy)
		assert.Equal(t, "squareMeter", req.SortKey)
		assert.Equal(t, "city", req.GeoSearches.Type)
		assert.Equal(t, "Munich", req.GeoSearches.Query)

		results := []map[string]any{}
		for i := req.From; i < req.From+req.Size && i < len(sizes); i++ {
			results = append(results, map[string]any{
				"id":          i,
				"title":       fmt.Sprintf("Listing %d", i),
				"buyingPrice": sizes[i] * 5000,
				"zip":         "80331",
				"rooms":       3,
				"squareMeter": sizes[i],
				"images":      []map[string]string{{"originalUrl": fmt.Sprintf("https://img/%d.jpg", i)}},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"total": len(sizes), "results": results})
	}))
}

func query(size float64) life.ListingQuery {
	return life.ListingQuery{City: "Munich", Type: life.ListingApartmentBuy, SquareMeters: size}
}

func TestClient_Search(t *testing.T) {
	var sizes []float64
	for s := 20.0; s <= 200; s += 2 {
		sizes = append(sizes, s)
	}
	var requests atomic.Int32
	server := marketplace(t, sizes, &requests)
	defer server.Close()

	got := NewClient(server.URL, discardLogger()).Search(context.Background(), query(100))

	require.Len(t, got, MaxResults)
	for _, l := range got {
		assert.GreaterOrEqual(t, l.Size, 80.0)
		assert.LessOrEqual(t, l.Size, 120.0)
	}
	assert.Equal(t, 80.0, got[0].Size, "starts at the lower bound")
	assert.Equal(t, "30", got[0].ID)
	assert.Equal(t, "https://img/30.jpg", got[0].ImageURL)
	assert.Equal(t, 400000.0, got[0].BuyingPrice)
	assert.LessOrEqual(t, int(requests.Load()), 2+8, "binary search stays logarithmic")
}

func TestClient_Search_FiltersOutOfRange(t *testing.T) {
	server := marketplace(t, []float64{30, 40, 50, 79, 81, 95, 119, 121, 300}, nil)
	defer server.Close()

	got := NewClient(server.URL, discardLogger()).Search(context.Background(), query(100))

	sizes := make([]float64, len(got))
	for i, l := range got {
		sizes[i] = l.Size
	}
	assert.Equal(t, []float64{81, 95, 119}, sizes)
}

func TestClient_Search_NoListings(t *testing.T) {
	server := marketplace(t, nil, nil)
	defer server.Close()

	got := NewClient(server.URL, discardLogger()).Search(context.Background(), query(100))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestClient_Search_DegradesOnFailure(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer server.Close()

		got := NewClient(server.URL, discardLogger()).Search(context.Background(), query(100))
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("not json", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		}))
		defer server.Close()

		assert.Empty(t, NewClient(server.URL, discardLogger()).Search(context.Background(), query(100)))
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		assert.Empty(t, NewClient(url, discardLogger()).Search(context.Background(), query(100)))
	})

	t.Run("bad target size", func(t *testing.T) {
		assert.Empty(t, NewClient("http://unused", discardLogger()).Search(context.Background(), query(0)))
	})
}

func TestClient_Search_Cache(t *testing.T) {
	var requests atomic.Int32
	server := marketplace(t, []float64{90, 100, 110}, &requests)
	defer server.Close()

	cache := services.NewMockCache()
	client := NewClient(server.URL, discardLogger()).WithCache(cache, time.Hour)

	first := client.Search(context.Background(), query(100))
	n := requests.Load()
	second := client.Search(context.Background(), life.ListingQuery{City: "  MUNICH ", Type: life.ListingApartmentBuy, SquareMeters: 100})

	assert.Equal(t, first, second)
	assert.Equal(t, n, requests.Load(), "second search is served from cache")
	assert.Equal(t, []string{"listings:apartmentbuy:munich:100"}, cache.Keys())
}

func TestRawID(t *testing.T) {
	assert.Equal(t, "abc", rawID(json.RawMessage(`"abc"`)))
	assert.Equal(t, "42", rawID(json.RawMessage(`42`)))
	assert.Equal(t, "", rawID(json.RawMessage(`null`)))
}
