// Package runner plays scripted games against a running life-engine API and
// checks the year-over-year invariants of every response.
package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/life-engine/internal/handlers"
	"github.com/jwebster45206/life-engine/internal/profile"
	"github.com/jwebster45206/life-engine/pkg/life"
)

type Runner struct {
	BaseURL  string
	RootDir  string // Directory profile paths are resolved against
	Client   *http.Client
	Logger   func(format string, args ...interface{})
	Timeout  time.Duration
	KeepGame bool
}

func NewRunner(baseURL, rootDir string) *Runner {
	return &Runner{
		BaseURL: strings.TrimRight(baseURL, "/"),
		RootDir: rootDir,
		Client:  &http.Client{Timeout: 90 * time.Second},
		Logger:  func(string, ...interface{}) {},
		Timeout: 5 * time.Minute,
	}
}

// LoadTestCase reads a JSON case file.
func LoadTestCase(path string) (TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TestCase{}, fmt.Errorf("failed to read test case: %w", err)
	}
	var tc TestCase
	if err := json.Unmarshal(data, &tc); err != nil {
		return TestCase{}, fmt.Errorf("failed to parse test case %s: %w", path, err)
	}
	if tc.Name == "" {
		tc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if tc.Years <= 0 {
		return TestCase{}, fmt.Errorf("test case %s: years must be positive", tc.Name)
	}
	switch tc.Decision {
	case "":
		tc.Decision = DecideAccept
	case DecideAccept, DecideDecline, DecideAlternate:
	default:
		return TestCase{}, fmt.Errorf("test case %s: unknown decision policy %q", tc.Name, tc.Decision)
	}
	return tc, nil
}

// DiscoverCases returns the sorted JSON case files in dir.
func DiscoverCases(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Run plays one case to completion.
func (r *Runner) Run(ctx context.Context, tc TestCase) TestResult {
	start := time.Now()
	result := TestResult{Case: tc.Name}

	timeout := r.Timeout
	if tc.Timeout > 0 {
		timeout = tc.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p, err := profile.Load(filepath.Join(r.RootDir, tc.Profile))
	if err != nil {
		result.Error = err
		return result
	}

	var game handlers.GameResponse
	err = r.do(ctx, http.MethodPost, "/v1/games", handlers.CreateGameRequest{Start: p.StartState(), Goal: p.LifeGoal()}, http.StatusCreated, &game)
	if err != nil {
		result.Error = fmt.Errorf("failed to create game: %w", err)
		return result
	}
	result.GameID = game.ID
	r.Logger("    game %s created for %s", game.ID, tc.Name)
	if !r.KeepGame {
		defer func() { _ = r.do(context.Background(), http.MethodDelete, r.path(game.ID, ""), nil, http.StatusNoContent, nil) }()
	}

	prev := game.State
	accept := tc.Decision != DecideDecline
	for year := 1; year <= tc.Years; year++ {
		for _, a := range tc.Actions {
			if a.BeforeYear != year {
				continue
			}
			rate := a.SavingsRate
			var st life.LifeState
			if err := r.do(ctx, http.MethodPost, r.path(game.ID, "actions"), life.UserInput{NewSavingsRate: &rate}, http.StatusOK, &st); err != nil {
				result.Error = fmt.Errorf("year %d: actions failed: %w", year, err)
				return result
			}
			prev = st
		}

		var turn handlers.TurnResponse
		if err := r.do(ctx, http.MethodPost, r.path(game.ID, "next"), nil, http.StatusOK, &turn); err != nil {
			result.Error = fmt.Errorf("year %d: next failed: %w", year, err)
			return result
		}
		result.Turns++
		result.Violation = append(result.Violation, checkTurn(year, prev, turn.State)...)
		prev = turn.State

		if turn.Event != nil {
			result.Events++
			var decided handlers.GameResponse
			req := handlers.DecisionRequest{Accept: accept, EventID: turn.Event.ID}
			if err := r.do(ctx, http.MethodPost, r.path(game.ID, "decision"), req, http.StatusOK, &decided); err != nil {
				result.Error = fmt.Errorf("year %d: decision failed: %w", year, err)
				return result
			}
			if decided.PendingEvent != nil {
				result.Violation = append(result.Violation, fmt.Sprintf("year %d: event still pending after decision", year))
			}
			prev = decided.State
			if tc.Decision == DecideAlternate {
				accept = !accept
			}
		}
		if prev.Terminated {
			r.Logger("    goal reached in year %d", prev.Year)
			break
		}
	}

	if err := r.do(ctx, http.MethodGet, r.path(game.ID, ""), nil, http.StatusOK, &game); err != nil {
		result.Error = fmt.Errorf("failed to read final game: %w", err)
		return result
	}
	result.Violation = append(result.Violation, checkExpectations(tc.Expect, game)...)
	result.Duration = time.Since(start)
	return result
}

// checkTurn verifies the invariants every simulated year must hold.
func checkTurn(year int, prev, next life.LifeState) []string {
	var v []string
	if prev.Terminated {
		return v
	}
	if next.Year != prev.Year+1 {
		v = append(v, fmt.Sprintf("year %d: calendar year went %d -> %d", year, prev.Year, next.Year))
	}
	if next.Age != prev.Age+1 {
		v = append(v, fmt.Sprintf("year %d: age went %d -> %d", year, prev.Age, next.Age))
	}
	if next.Portfolio.ETF < 0 || next.Portfolio.Crypto < 0 {
		v = append(v, fmt.Sprintf("year %d: negative investments %+v", year, next.Portfolio))
	}
	if next.LifeSatisfaction < 0 || next.LifeSatisfaction > 100 {
		v = append(v, fmt.Sprintf("year %d: life satisfaction %.1f out of range", year, next.LifeSatisfaction))
	}
	if next.CreditWorthiness && next.LoanConditions == nil {
		v = append(v, fmt.Sprintf("year %d: credit-worthy without loan conditions", year))
	}
	return v
}

func checkExpectations(exp Expectations, game handlers.GameResponse) []string {
	var v []string
	if exp.Status != nil && game.Status != *exp.Status {
		v = append(v, fmt.Sprintf("expected status %s, got %s", *exp.Status, game.Status))
	}
	if exp.MinHistory != nil && len(game.History) < *exp.MinHistory {
		v = append(v, fmt.Sprintf("expected at least %d history entries, got %d", *exp.MinHistory, len(game.History)))
	}
	if exp.MaxHistory != nil && len(game.History) > *exp.MaxHistory {
		v = append(v, fmt.Sprintf("expected at most %d history entries, got %d", *exp.MaxHistory, len(game.History)))
	}
	if exp.SavingsRate != nil && game.State.SavingsRatePercent != *exp.SavingsRate {
		v = append(v, fmt.Sprintf("expected savings rate %.0f, got %.0f", *exp.SavingsRate, game.State.SavingsRatePercent))
	}
	if exp.MinTotalAsset != nil && game.State.Portfolio.Total() < *exp.MinTotalAsset {
		v = append(v, fmt.Sprintf("expected total assets >= %.0f, got %.0f", *exp.MinTotalAsset, game.State.Portfolio.Total()))
	}
	// A resolved event adds a second entry for the same year.
	for i := 1; i < len(game.History); i++ {
		if d := game.History[i].Year - game.History[i-1].Year; d != 0 && d != 1 {
			v = append(v, fmt.Sprintf("history gap between %d and %d", game.History[i-1].Year, game.History[i].Year))
		}
	}
	return v
}

func (r *Runner) path(id uuid.UUID, action string) string {
	p := "/v1/games/" + id.String()
	if action != "" {
		p += "/" + action
	}
	return p
}

func (r *Runner) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != want {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s returned %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
