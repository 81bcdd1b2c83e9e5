package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/life-engine/internal/logger"
	"github.com/jwebster45206/life-engine/internal/middleware"
	"github.com/jwebster45206/life-engine/pkg/engine"
	"github.com/jwebster45206/life-engine/pkg/life"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// EngineFactory builds a configured engine for a new session.
type EngineFactory func(log *slog.Logger) *engine.Engine

// GameResponse is the full view of a session.
type GameResponse struct {
	ID           uuid.UUID        `json:"id"`
	Status       string           `json:"status"`
	State        life.LifeState   `json:"state"`
	Goal         life.Goal        `json:"goal"`
	History      []life.LifeState `json:"history"`
	Events       []life.Event     `json:"events"`
	PendingEvent *life.Event      `json:"pendingEvent,omitempty"`
}

type CreateGameRequest struct {
	Start life.StartState `json:"start"`
	Goal  life.Goal       `json:"goal"`
}

type TurnResponse struct {
	Event *life.Event    `json:"event"`
	State life.LifeState `json:"state"`
}

type DecisionRequest struct {
	Accept  bool      `json:"accept"`
	EventID uuid.UUID `json:"eventId,omitempty"`
}

type DescriptionRequest struct {
	Description string `json:"description"`
}

type HomesResponse struct {
	Homes []life.Living `json:"homes"`
}

type RecommendationsResponse struct {
	Recommendations []string `json:"recommendations"`
}

type ListingsResponse struct {
	Listings []life.Listing `json:"listings"`
}

// GameHandler serves in-memory simulation sessions, one engine per session.
type GameHandler struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]*engine.Engine
	newEngine EngineFactory
	logger    *slog.Logger
}

func NewGameHandler(newEngine EngineFactory, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		sessions:  make(map[uuid.UUID]*engine.Engine),
		newEngine: newEngine,
		logger:    logger,
	}
}

// ServeHTTP handles HTTP requests for game sessions
// Routes:
// POST /v1/games                      - Start a new game
// GET /v1/games/{id}                  - Read the session
// DELETE /v1/games/{id}               - End and remove the session
// POST /v1/games/{id}/next            - Advance one year
// POST /v1/games/{id}/decision        - Accept or decline the pending event
// POST /v1/games/{id}/actions         - Apply player changes between turns
// POST /v1/games/{id}/occupations     - Estimate a described job
// POST /v1/games/{id}/homes           - Suggest rental homes
// POST /v1/games/{id}/recommendations - End-of-game feedback
// GET /v1/games/{id}/listings?city=   - Real listings matching the goal
func (h *GameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log := middleware.LoggerFrom(r.Context(), h.logger)

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/games"), "/")
	if path == "" {
		if r.Method != http.MethodPost {
			h.writeError(w, log, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleCreate(w, r, log)
		return
	}

	parts := strings.SplitN(path, "/", 2)
	id, err := uuid.Parse(parts[0])
	if err != nil {
		log.Warn("Invalid game ID", "id", parts[0], "error", err)
		h.writeError(w, log, http.StatusBadRequest, "Invalid game ID format")
		return
	}
	log = logger.WithSession(log, id.String())

	h.mu.RLock()
	eng, ok := h.sessions[id]
	h.mu.RUnlock()
	if !ok {
		h.writeError(w, log, http.StatusNotFound, "Game not found")
		return
	}

	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.writeJSON(w, log, http.StatusOK, gameResponse(id, eng))
	case action == "" && r.Method == http.MethodDelete:
		h.handleDelete(w, id, eng, log)
	case action == "next" && r.Method == http.MethodPost:
		h.handleNext(w, r, eng, log)
	case action == "decision" && r.Method == http.MethodPost:
		h.handleDecision(w, r, id, eng, log)
	case action == "actions" && r.Method == http.MethodPost:
		h.handleActions(w, r, eng, log)
	case action == "occupations" && r.Method == http.MethodPost:
		h.handleOccupation(w, r, eng, log)
	case action == "homes" && r.Method == http.MethodPost:
		h.handleHomes(w, r, eng, log)
	case action == "recommendations" && (r.Method == http.MethodPost || r.Method == http.MethodGet):
		h.handleRecommendations(w, r, eng, log)
	case action == "listings" && r.Method == http.MethodGet:
		h.handleListings(w, r, eng, log)
	case action == "" || isKnownAction(action):
		h.writeError(w, log, http.StatusMethodNotAllowed, "Method not allowed")
	default:
		h.writeError(w, log, http.StatusNotFound, "Unknown game action: "+action)
	}
}

func isKnownAction(action string) bool {
	switch action {
	case "next", "decision", "actions", "occupations", "homes", "recommendations", "listings":
		return true
	}
	return false
}

func (h *GameHandler) handleCreate(w http.ResponseWriter, r *http.Request, log *slog.Logger) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("Invalid create game request", "error", err)
		h.writeError(w, log, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	id := uuid.New()
	sessLog := logger.WithSession(log, id.String())
	eng := h.newEngine(sessLog)
	if _, err := eng.StartGame(req.Start, req.Goal); err != nil {
		h.writeEngineError(w, sessLog, err)
		return
	}

	h.mu.Lock()
	h.sessions[id] = eng
	h.mu.Unlock()

	sessLog.Info("Game created")
	h.writeJSON(w, log, http.StatusCreated, gameResponse(id, eng))
}

func (h *GameHandler) handleDelete(w http.ResponseWriter, id uuid.UUID, eng *engine.Engine, log *slog.Logger) {
	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
	eng.Reset()

	log.Info("Game deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h *GameHandler) handleNext(w http.ResponseWriter, r *http.Request, eng *engine.Engine, log *slog.Logger) {
	ev, err := eng.RunLoop(r.Context())
	if err != nil {
		h.writeEngineError(w, log, err)
		return
	}
	h.writeJSON(w, log, http.StatusOK, TurnResponse{Event: ev, State: eng.State()})
}

func (h *GameHandler) handleDecision(w http.ResponseWriter, r *http.Request, id uuid.UUID, eng *engine.Engine, log *slog.Logger) {
	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, log, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	var err error
	if req.EventID == uuid.Nil {
		_, err = eng.DecideEvent(req.Accept)
	} else {
		_, err = eng.DecideEventByID(req.EventID, req.Accept)
	}
	if err != nil {
		h.writeEngineError(w, log, err)
		return
	}
	h.writeJSON(w, log, http.StatusOK, gameResponse(id, eng))
}

func (h *GameHandler) handleActions(w http.ResponseWriter, r *http.Request, eng *engine.Engine, log *slog.Logger) {
	var input life.UserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, log, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	state, err := eng.DecideActions(input)
	if err != nil {
		h.writeEngineError(w, log, err)
		return
	}
	h.writeJSON(w, log, http.StatusOK, state)
}

func (h *GameHandler) handleOccupation(w http.ResponseWriter, r *http.Request, eng *engine.Engine, log *slog.Logger) {
	var req DescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, log, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	estimate, err := eng.RequestNewOccupation(r.Context(), req.Description)
	if err != nil {
		h.writeEngineError(w, log, err)
		return
	}
	h.writeJSON(w, log, http.StatusOK, estimate)
}

func (h *GameHandler) handleHomes(w http.ResponseWriter, r *http.Request, eng *engine.Engine, log *slog.Logger) {
	var req DescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, log, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	homes, err := eng.RequestNewHomes(r.Context(), req.Description)
	if err != nil {
		h.writeEngineError(w, log, err)
		return
	}
	h.writeJSON(w, log, http.StatusOK, HomesResponse{Homes: homes})
}

func (h *GameHandler) handleRecommendations(w http.ResponseWriter, r *http.Request, eng *engine.Engine, log *slog.Logger) {
	recs, err := eng.GenerateRecommendations(r.Context())
	if err != nil {
		h.writeEngineError(w, log, err)
		return
	}
	h.writeJSON(w, log, http.StatusOK, RecommendationsResponse{Recommendations: recs})
}

func (h *GameHandler) handleListings(w http.ResponseWriter, r *http.Request, eng *engine.Engine, log *slog.Logger) {
	listings, err := eng.SearchListings(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		h.writeEngineError(w, log, err)
		return
	}
	h.writeJSON(w, log, http.StatusOK, ListingsResponse{Listings: listings})
}

// SessionCount reports the number of live sessions.
func (h *GameHandler) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func gameResponse(id uuid.UUID, eng *engine.Engine) GameResponse {
	return GameResponse{
		ID:           id,
		Status:       eng.Status().String(),
		State:        eng.State(),
		Goal:         eng.Goal(),
		History:      eng.History(),
		Events:       eng.EventHistory(),
		PendingEvent: eng.PendingEvent(),
	}
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrNoProvider):
		return http.StatusServiceUnavailable
	case errors.Is(err, engine.ErrAlreadyRunning),
		errors.Is(err, engine.ErrNotRunning),
		errors.Is(err, engine.ErrNoPendingEvent),
		errors.Is(err, engine.ErrEventPending),
		errors.Is(err, engine.ErrEventMismatch),
		errors.Is(err, engine.ErrTerminated):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *GameHandler) writeEngineError(w http.ResponseWriter, log *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("Engine request failed", "error", err)
	} else {
		log.Warn("Engine request rejected", "error", err, "status", status)
	}
	h.writeError(w, log, status, err.Error())
}

func (h *GameHandler) writeError(w http.ResponseWriter, log *slog.Logger, status int, msg string) {
	h.writeJSON(w, log, status, ErrorResponse{Error: msg})
}

func (h *GameHandler) writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}
