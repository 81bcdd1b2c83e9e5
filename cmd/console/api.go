package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/jwebster45206/life-engine/internal/handlers"
	"github.com/jwebster45206/life-engine/internal/profile"
	"github.com/jwebster45206/life-engine/pkg/life"
)

// apiClient talks to the life-engine HTTP API.
type apiClient struct {
	client  *http.Client
	baseURL string
}

func (a *apiClient) testConnection() bool {
	resp, err := a.client.Get(a.baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// do sends body as JSON and decodes the response into out when the status
// matches want.
func (a *apiClient) do(method, path string, body any, want int, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, a.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != want {
		var errorResp handlers.ErrorResponse
		if err := json.Unmarshal(data, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(data))
		}
		return fmt.Errorf("%s", errorResp.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func gamePath(id uuid.UUID, action string) string {
	p := "/v1/games/" + id.String()
	if action != "" {
		p += "/" + action
	}
	return p
}

func (a *apiClient) createGame(p *profile.Profile) (*handlers.GameResponse, error) {
	req := handlers.CreateGameRequest{Start: p.StartState(), Goal: p.LifeGoal()}
	var game handlers.GameResponse
	if err := a.do(http.MethodPost, "/v1/games", req, http.StatusCreated, &game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return &game, nil
}

func (a *apiClient) getGame(id uuid.UUID) (*handlers.GameResponse, error) {
	var game handlers.GameResponse
	if err := a.do(http.MethodGet, gamePath(id, ""), nil, http.StatusOK, &game); err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return &game, nil
}

func (a *apiClient) nextYear(id uuid.UUID) (*handlers.TurnResponse, error) {
	var turn handlers.TurnResponse
	if err := a.do(http.MethodPost, gamePath(id, "next"), nil, http.StatusOK, &turn); err != nil {
		return nil, err
	}
	return &turn, nil
}

func (a *apiClient) decide(id, eventID uuid.UUID, accept bool) (*handlers.GameResponse, error) {
	req := handlers.DecisionRequest{Accept: accept, EventID: eventID}
	var game handlers.GameResponse
	if err := a.do(http.MethodPost, gamePath(id, "decision"), req, http.StatusOK, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (a *apiClient) applyActions(id uuid.UUID, input life.UserInput) (*life.LifeState, error) {
	var state life.LifeState
	if err := a.do(http.MethodPost, gamePath(id, "actions"), input, http.StatusOK, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (a *apiClient) estimateOccupation(id uuid.UUID, description string) (*life.OccupationEstimate, error) {
	var est life.OccupationEstimate
	req := handlers.DescriptionRequest{Description: description}
	if err := a.do(http.MethodPost, gamePath(id, "occupations"), req, http.StatusOK, &est); err != nil {
		return nil, err
	}
	return &est, nil
}

func (a *apiClient) suggestHomes(id uuid.UUID, description string) ([]life.Living, error) {
	var resp handlers.HomesResponse
	req := handlers.DescriptionRequest{Description: description}
	if err := a.do(http.MethodPost, gamePath(id, "homes"), req, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Homes, nil
}

func (a *apiClient) recommendations(id uuid.UUID) ([]string, error) {
	var resp handlers.RecommendationsResponse
	if err := a.do(http.MethodPost, gamePath(id, "recommendations"), nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Recommendations, nil
}

func (a *apiClient) listings(id uuid.UUID, city string) ([]life.Listing, error) {
	var resp handlers.ListingsResponse
	path := gamePath(id, "listings") + "?city=" + url.QueryEscape(city)
	if err := a.do(http.MethodGet, path, nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Listings, nil
}
