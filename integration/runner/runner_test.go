package runner

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/life-engine/internal/handlers"
	"github.com/jwebster45206/life-engine/pkg/engine"
	"github.com/jwebster45206/life-engine/pkg/finance"
	"github.com/jwebster45206/life-engine/pkg/life"
)

type everyYear struct{}

func (everyYear) Generate(ctx context.Context, p float64, history []life.LifeState, goal life.Goal, events []life.Event) *life.Event {
	return &life.Event{
		Description: "Your landlord raises the rent.",
		Question:    life.Ptr("Negotiate?"),
		Impact:      life.EventImpact{LifeSatisfaction: life.Ptr(-2.0)},
	}
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	games := handlers.NewGameHandler(func(l *slog.Logger) *engine.Engine {
		return engine.New().
			WithLogger(l).
			WithInvestmentModel(finance.NewInvestmentModel(finance.NewSource(11))).
			WithEventProvider(everyYear{})
	}, log)

	mux := http.NewServeMux()
	mux.Handle("/v1/games", games)
	mux.Handle("/v1/games/", games)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestRunner_Run(t *testing.T) {
	server := testServer(t)
	r := NewRunner(server.URL, "../..")

	status := "running"
	minHistory := 4
	rate := 30.0
	result := r.Run(context.Background(), TestCase{
		Name:     "three years",
		Profile:  "data/profiles/young_professional.yaml",
		Years:    3,
		Decision: DecideAlternate,
		Actions:  []ActionStep{{BeforeYear: 2, SavingsRate: rate}},
		Expect:   Expectations{Status: &status, MinHistory: &minHistory, SavingsRate: &rate},
	})

	require.NoError(t, result.Error)
	assert.Empty(t, result.Violation)
	assert.True(t, result.Success())
	assert.Equal(t, 3, result.Turns)
	assert.Equal(t, 3, result.Events)
}

func TestRunner_ReportsViolations(t *testing.T) {
	server := testServer(t)
	r := NewRunner(server.URL, "../..")

	status := "terminated"
	result := r.Run(context.Background(), TestCase{
		Name:     "not rich yet",
		Profile:  "data/profiles/young_professional.yaml",
		Years:    1,
		Decision: DecideDecline,
		Expect:   Expectations{Status: &status},
	})

	require.NoError(t, result.Error)
	require.Len(t, result.Violation, 1)
	assert.Contains(t, result.Violation[0], "expected status terminated")
	assert.False(t, result.Success())
}

func TestRunner_MissingProfile(t *testing.T) {
	server := testServer(t)
	r := NewRunner(server.URL, "../..")

	result := r.Run(context.Background(), TestCase{Name: "x", Profile: "nope.yaml", Years: 1})
	assert.Error(t, result.Error)
}

func TestCheckTurn(t *testing.T) {
	prev := life.LifeState{Year: 2030, Age: 30, LifeSatisfaction: 50}

	next := prev
	next.Year, next.Age = 2031, 31
	assert.Empty(t, checkTurn(1, prev, next))

	bad := next
	bad.Year = 2033
	bad.Portfolio.ETF = -1
	bad.CreditWorthiness = true
	assert.Len(t, checkTurn(1, prev, bad), 3)

	prev.Terminated = true
	assert.Empty(t, checkTurn(1, prev, bad))
}

func TestLoadTestCase(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}

	tc, err := LoadTestCase(write("simple_case.json", `{"profile":"p.yaml","years":2}`))
	require.NoError(t, err)
	assert.Equal(t, "simple_case", tc.Name)
	assert.Equal(t, DecideAccept, tc.Decision)

	_, err = LoadTestCase(write("zero.json", `{"years":0}`))
	assert.Error(t, err)

	_, err = LoadTestCase(write("policy.json", `{"years":1,"decision":"maybe"}`))
	assert.Error(t, err)

	_, err = LoadTestCase(write("broken.json", `{`))
	assert.Error(t, err)
}

func TestBundledCases(t *testing.T) {
	files, err := DiscoverCases("../cases")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		_, err := LoadTestCase(f)
		assert.NoError(t, err, f)
	}
}

func TestCheckExpectations_HistoryContinuity(t *testing.T) {
	game := handlers.GameResponse{
		Status: "running",
		History: []life.LifeState{
			{Year: 2030}, {Year: 2031}, {Year: 2031}, {Year: 2032},
		},
	}
	assert.Empty(t, checkExpectations(Expectations{}, game))

	game.History = append(game.History, life.LifeState{Year: 2034})
	v := checkExpectations(Expectations{}, game)
	require.Len(t, v, 1)
	assert.Contains(t, v[0], "history gap")
}
