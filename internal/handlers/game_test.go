package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/life-engine/pkg/engine"
	"github.com/jwebster45206/life-engine/pkg/finance"
	"github.com/jwebster45206/life-engine/pkg/life"
)

type marriageProvider struct{}

func (marriageProvider) Generate(ctx context.Context, p float64, history []life.LifeState, goal life.Goal, events []life.Event) *life.Event {
	return &life.Event{
		Description: "Your partner proposes.",
		Question:    life.Ptr("Do you want to get married?"),
		Impact:      life.EventImpact{Married: life.Ptr(true)},
	}
}

type fakeOccupations struct{}

func (fakeOccupations) Estimate(ctx context.Context, description string) life.OccupationEstimate {
	return life.OccupationEstimate{
		Occupation:  life.Occupation{Title: description, YearlySalary: 70000, StressLevel: 30},
		Explanation: "Solid pay.",
	}
}

type fakeRecommendations struct{}

func (fakeRecommendations) Summarize(ctx context.Context, history []life.LifeState, events []life.Event, goal life.Goal) []string {
	return []string{"Keep saving.", "Invest more."}
}

type fakeListings struct{ got life.ListingQuery }

func (f *fakeListings) Search(ctx context.Context, q life.ListingQuery) []life.Listing {
	f.got = q
	return []life.Listing{{ID: "1", Title: "Nice flat", Size: q.SquareMeters}}
}

func newTestGameHandler(listings *fakeListings) *GameHandler {
	return NewGameHandler(func(log *slog.Logger) *engine.Engine {
		e := engine.New().
			WithLogger(log).
			WithInvestmentModel(finance.NewInvestmentModel(finance.NewSource(7))).
			WithEventProvider(marriageProvider{}).
			WithOccupationProvider(fakeOccupations{}).
			WithRecommendationProvider(fakeRecommendations{})
		if listings != nil {
			e.WithListingProvider(listings)
		}
		return e
	}, testLogger())
}

const createBody = `{
	"start": {
		"age": 30,
		"occupation": {"occupationTitle": "Developer", "yearlySalaryInEuro": 80000, "stressLevelFrom0To100": 40},
		"portfolio": {"cashInEuro": 20000, "etfInEuro": 10000},
		"living": {"name": "Flat", "zip": "80331", "yearlyRentInEuro": 14000, "sizeInSquareMeter": 55},
		"savingsRateInPercent": 25
	},
	"goal": {"buyingPrice": 2000000, "zip": "80331", "rooms": 3, "squareMeter": 90, "estateType": "apartment"}
}`

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func createGame(t *testing.T, h http.Handler) GameResponse {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/v1/games", createBody)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var game GameResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&game))
	return game
}

func TestGameHandler_Create(t *testing.T) {
	h := newTestGameHandler(nil)
	game := createGame(t, h)

	assert.NotEqual(t, uuid.Nil, game.ID)
	assert.Equal(t, "running", game.Status)
	assert.Equal(t, 30, game.State.Age)
	assert.Len(t, game.History, 1)
	assert.Empty(t, game.Events)
	assert.Nil(t, game.PendingEvent)
	assert.Equal(t, 1, h.SessionCount())
}

func TestGameHandler_CreateErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "invalid JSON", body: `{invalid json}`},
		{name: "invalid goal", body: `{"start": {"age": 30, "living": {"sizeInSquareMeter": 50}}, "goal": {"buyingPrice": 0}}`},
		{name: "invalid start", body: `{"start": {"age": -3}, "goal": {"buyingPrice": 1, "rooms": 1, "squareMeter": 1, "estateType": "house"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestGameHandler(nil)
			rr := do(t, h, http.MethodPost, "/v1/games", tt.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.NotEmpty(t, resp.Error)
			assert.Zero(t, h.SessionCount())
		})
	}
}

func TestGameHandler_Routing(t *testing.T) {
	h := newTestGameHandler(nil)
	game := createGame(t, h)
	base := "/v1/games/" + game.ID.String()

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"list not allowed", http.MethodGet, "/v1/games", http.StatusMethodNotAllowed},
		{"bad id", http.MethodGet, "/v1/games/not-a-uuid", http.StatusBadRequest},
		{"unknown session", http.MethodGet, "/v1/games/" + uuid.NewString(), http.StatusNotFound},
		{"unknown action", http.MethodPost, base + "/fly", http.StatusNotFound},
		{"wrong method on action", http.MethodGet, base + "/next", http.StatusMethodNotAllowed},
		{"get session", http.MethodGet, base, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, tt.method, tt.path, "")
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		})
	}
}

func TestGameHandler_TurnAndDecision(t *testing.T) {
	h := newTestGameHandler(nil)
	game := createGame(t, h)
	base := "/v1/games/" + game.ID.String()

	rr := do(t, h, http.MethodPost, base+"/next", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var turn TurnResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&turn))
	require.NotNil(t, turn.Event)
	assert.Equal(t, 31, turn.State.Age)
	assert.Equal(t, turn.State.Year, turn.Event.Year)

	// A second turn is refused until the event is resolved.
	rr = do(t, h, http.MethodPost, base+"/next", "")
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, h, http.MethodPost, base+"/decision", `{"accept": true, "eventId": "`+uuid.NewString()+`"}`)
	assert.Equal(t, http.StatusConflict, rr.Code, "stale event id")

	rr = do(t, h, http.MethodPost, base+"/decision", `{"accept": true, "eventId": "`+turn.Event.ID.String()+`"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var after GameResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&after))
	assert.True(t, after.State.Married)
	assert.Equal(t, "running", after.Status)
	require.Len(t, after.Events, 1)
	assert.NotNil(t, after.Events[0].ChosenImpact)
	assert.Nil(t, after.PendingEvent)

	// Resolving twice is a sequencing error.
	rr = do(t, h, http.MethodPost, base+"/decision", `{"accept": true}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestGameHandler_Actions(t *testing.T) {
	h := newTestGameHandler(nil)
	game := createGame(t, h)
	base := "/v1/games/" + game.ID.String()

	rr := do(t, h, http.MethodPost, base+"/actions", `{"newSavingsRateInPercent": 150}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPost, base+"/actions", `{"newSavingsRateInPercent": 40}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var state life.LifeState
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&state))
	assert.Equal(t, 40.0, state.SavingsRatePercent)
	assert.Equal(t, game.State.Year, state.Year, "actions do not advance the turn")
}

func TestGameHandler_Advisory(t *testing.T) {
	listings := &fakeListings{}
	h := newTestGameHandler(listings)
	game := createGame(t, h)
	base := "/v1/games/" + game.ID.String()

	t.Run("occupation", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, base+"/occupations", `{"description": "Data engineer"}`)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var est life.OccupationEstimate
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&est))
		assert.Equal(t, "Data engineer", est.Title)
		assert.Equal(t, "Solid pay.", est.Explanation)

		rr = do(t, h, http.MethodPost, base+"/occupations", `{"description": "   "}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("homes without provider", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, base+"/homes", `{"description": "garden"}`)
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})

	t.Run("recommendations", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, base+"/recommendations", "")
		require.Equal(t, http.StatusOK, rr.Code)
		var resp RecommendationsResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, []string{"Keep saving.", "Invest more."}, resp.Recommendations)
	})

	t.Run("listings", func(t *testing.T) {
		rr := do(t, h, http.MethodGet, base+"/listings?city=Munich", "")
		require.Equal(t, http.StatusOK, rr.Code)
		var resp ListingsResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		require.Len(t, resp.Listings, 1)
		assert.Equal(t, life.ListingQuery{City: "Munich", Type: life.ListingApartmentBuy, SquareMeters: 90}, listings.got)

		rr = do(t, h, http.MethodGet, base+"/listings", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGameHandler_Delete(t *testing.T) {
	h := newTestGameHandler(nil)
	game := createGame(t, h)
	base := "/v1/games/" + game.ID.String()

	rr := do(t, h, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Zero(t, h.SessionCount())

	rr = do(t, h, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(engine.ErrEventPending))
	assert.Equal(t, http.StatusConflict, statusFor(engine.ErrTerminated))
	assert.Equal(t, http.StatusBadRequest, statusFor(engine.ErrInvalidInput))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(engine.ErrNoProvider))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
