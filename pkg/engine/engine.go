// Package engine runs a life simulation session: it owns the current
// LifeState, the goal and the history, advances the state one year per turn,
// and mediates the offer/decide protocol for life events.
//
// An Engine serializes all calls with a mutex. The lock is held across the
// event provider call inside RunLoop, so no other call can mutate the state
// while a turn waits on the network.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/life-engine/pkg/finance"
	"github.com/jwebster45206/life-engine/pkg/life"
)

const (
	DefaultEventProbability = 0.5
	DefaultProviderTimeout  = 60 * time.Second
	DefaultEventEmoji       = "📅"

	initialLifeSatisfaction = 50
)

// Status is the engine-level state machine position.
type Status int

const (
	StatusNotStarted Status = iota
	StatusRunning
	StatusAwaitingDecision
	StatusTerminated
)

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusRunning:
		return "running"
	case StatusAwaitingDecision:
		return "awaiting_decision"
	case StatusTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Engine is one simulation session.
type Engine struct {
	mu sync.Mutex

	running      bool
	state        life.LifeState
	goal         life.Goal
	history      []life.LifeState
	eventHistory []life.Event
	pending      *life.Event

	events          EventProvider
	occupations     OccupationProvider
	housing         HousingProvider
	recommendations RecommendationProvider
	listings        ListingProvider

	investment   InvestmentModel
	satisfaction SatisfactionModel
	credit       CreditModel

	probability float64
	timeout     time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

// New creates an engine with the default numeric models and no providers.
// The With* methods configure it and must be called before StartGame.
func New() *Engine {
	return &Engine{
		investment:   finance.NewInvestmentModel(finance.NewSource(0)),
		satisfaction: finance.NewSatisfactionModel(),
		credit:       finance.NewCreditModel(),
		probability:  DefaultEventProbability,
		timeout:      DefaultProviderTimeout,
		now:          time.Now,
		logger:       slog.Default(),
	}
}

// WithEventProvider sets the source of life events.
// Returns the Engine for method chaining
func (e *Engine) WithEventProvider(p EventProvider) *Engine {
	e.events = p
	return e
}

// WithOccupationProvider sets the occupation advisor.
func (e *Engine) WithOccupationProvider(p OccupationProvider) *Engine {
	e.occupations = p
	return e
}

// WithHousingProvider sets the housing advisor.
func (e *Engine) WithHousingProvider(p HousingProvider) *Engine {
	e.housing = p
	return e
}

// WithRecommendationProvider sets the end-of-game advisor.
func (e *Engine) WithRecommendationProvider(p RecommendationProvider) *Engine {
	e.recommendations = p
	return e
}

// WithListingProvider sets the marketplace search.
func (e *Engine) WithListingProvider(p ListingProvider) *Engine {
	e.listings = p
	return e
}

func (e *Engine) WithInvestmentModel(m InvestmentModel) *Engine {
	e.investment = m
	return e
}

func (e *Engine) WithSatisfactionModel(m SatisfactionModel) *Engine {
	e.satisfaction = m
	return e
}

func (e *Engine) WithCreditModel(m CreditModel) *Engine {
	e.credit = m
	return e
}

// WithEventProbability sets the chance per turn that the event provider is
// asked for an event.
func (e *Engine) WithEventProbability(p float64) *Engine {
	e.probability = p
	return e
}

// WithProviderTimeout bounds every provider call. Zero disables the bound.
func (e *Engine) WithProviderTimeout(d time.Duration) *Engine {
	e.timeout = d
	return e
}

// WithClock replaces time.Now, which decides the starting year.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

func (e *Engine) WithLogger(logger *slog.Logger) *Engine {
	if logger != nil {
		e.logger = logger
	}
	return e
}

// StartGame builds the initial state from start and begins the session.
func (e *Engine) StartGame(start life.StartState, goal life.Goal) (life.LifeState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return life.LifeState{}, ErrAlreadyRunning
	}
	if err := start.Validate(); err != nil {
		return life.LifeState{}, fmt.Errorf("%w: start state: %w", ErrInvalidInput, err)
	}
	if err := goal.Validate(); err != nil {
		return life.LifeState{}, fmt.Errorf("%w: goal: %w", ErrInvalidInput, err)
	}

	e.state = life.LifeState{
		Year:               e.now().Year(),
		Age:                start.Age,
		Occupation:         start.Occupation,
		Portfolio:          start.Portfolio,
		Living:             start.Living,
		SavingsRatePercent: start.SavingsRatePercent,
		AmountOfChildren:   start.AmountOfChildren,
		Married:            start.Married,
		LifeSatisfaction:   initialLifeSatisfaction,
	}
	e.goal = goal
	e.history = []life.LifeState{e.state.Clone()}
	e.eventHistory = nil
	e.pending = nil
	e.running = true

	e.logger.Info("game started",
		"year", e.state.Year,
		"age", e.state.Age,
		"goal_price", goal.BuyingPrice)
	return e.state.Clone(), nil
}

// RunLoop advances the simulation by one year and may return an event the
// player has to resolve with DecideEvent before the next turn.
func (e *Engine) RunLoop(ctx context.Context) (*life.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return nil, ErrNotRunning
	}
	if e.state.Terminated {
		return nil, ErrTerminated
	}
	if e.pending != nil {
		return nil, ErrEventPending
	}

	e.state.Portfolio = e.investment.Apply(e.state)
	e.state.LifeSatisfaction = e.satisfaction.Apply(e.state)

	credit := e.credit.Apply(e.state, e.goal)
	e.state.CreditWorthiness = credit.Eligible
	e.state.LoanConditions = credit.Conditions

	e.state.Year++
	e.state.Age++

	if e.state.Portfolio.Total() >= e.goal.BuyingPrice {
		e.state.Terminated = true
	}
	e.history = append(e.history, e.state.Clone())

	e.logger.Debug("turn committed",
		"year", e.state.Year,
		"age", e.state.Age,
		"wealth", e.state.Portfolio.Total(),
		"satisfaction", e.state.LifeSatisfaction,
		"creditworthy", e.state.CreditWorthiness)

	if e.state.Terminated {
		e.logger.Info("goal reached", "year", e.state.Year, "age", e.state.Age)
		return nil, nil
	}
	if e.events == nil {
		return nil, nil
	}

	pctx, cancel := e.providerContext(ctx)
	defer cancel()
	ev := e.events.Generate(pctx, e.probability, cloneStates(e.history), e.goal, cloneEvents(e.eventHistory))
	if ev == nil {
		return nil, nil
	}

	offered := ev.Clone()
	if offered.ID == uuid.Nil {
		offered.ID = uuid.New()
	}
	offered.Year = e.state.Year
	offered.ChosenImpact = nil
	if strings.TrimSpace(offered.Emoji) == "" {
		offered.Emoji = DefaultEventEmoji
	}
	for _, note := range life.EnforceEventRules(&offered, e.state) {
		e.logger.Info("event corrected", "event_id", offered.ID, "note", note)
	}

	e.pending = &offered
	e.logger.Info("event offered",
		"event_id", offered.ID,
		"year", offered.Year,
		"interactive", offered.IsInteractive())

	out := offered.Clone()
	return &out, nil
}

// DecideEvent resolves the pending event. Accepting applies its impact,
// declining applies the alternative impact, which may be empty. A
// non-interactive event always applies its impact.
func (e *Engine) DecideEvent(accept bool) (life.LifeState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.decide(uuid.Nil, accept)
}

// DecideEventByID is DecideEvent guarded by the event ID, so a repeated or
// stale decision cannot be applied twice.
func (e *Engine) DecideEventByID(id uuid.UUID, accept bool) (life.LifeState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.decide(id, accept)
}

func (e *Engine) decide(id uuid.UUID, accept bool) (life.LifeState, error) {
	if !e.running {
		return life.LifeState{}, ErrNotRunning
	}
	if e.pending == nil {
		return life.LifeState{}, ErrNoPendingEvent
	}
	if id != uuid.Nil && id != e.pending.ID {
		return life.LifeState{}, fmt.Errorf("%w: got %s, pending %s", ErrEventMismatch, id, e.pending.ID)
	}

	resolved := e.pending.Clone()
	var chosen *life.EventImpact
	if accept || !resolved.IsInteractive() {
		chosen = resolved.Impact.Clone()
	} else {
		chosen = resolved.AlternativeImpact.Clone()
	}

	life.ApplyImpact(&e.state, chosen)

	resolved.ChosenImpact = chosen
	e.eventHistory = append(e.eventHistory, resolved)
	e.history = append(e.history, e.state.Clone())
	e.pending = nil

	e.logger.Info("event resolved",
		"event_id", resolved.ID,
		"accepted", accept,
		"no_op", chosen.IsEmpty())
	return e.state.Clone(), nil
}

// DecideActions applies a player decision between turns. It does not advance
// the year, run any model or add a history entry.
func (e *Engine) DecideActions(input life.UserInput) (life.LifeState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return life.LifeState{}, ErrNotRunning
	}
	if e.state.Terminated {
		return life.LifeState{}, ErrTerminated
	}
	if err := input.Validate(); err != nil {
		return life.LifeState{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	life.ApplyUserInput(&e.state, input)
	e.logger.Debug("actions applied", "year", e.state.Year)
	return e.state.Clone(), nil
}

// Reset returns the engine to its pre-game state. Providers and models stay
// configured.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.running = false
	e.state = life.LifeState{}
	e.goal = life.Goal{}
	e.history = nil
	e.eventHistory = nil
	e.pending = nil
	e.logger.Info("game reset")
}

// Status reports where the session is in its lifecycle.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status()
}

func (e *Engine) status() Status {
	switch {
	case !e.running:
		return StatusNotStarted
	case e.state.Terminated:
		return StatusTerminated
	case e.pending != nil:
		return StatusAwaitingDecision
	default:
		return StatusRunning
	}
}

// State returns a copy of the current state.
func (e *Engine) State() life.LifeState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

func (e *Engine) Goal() life.Goal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.goal
}

// History returns copies of every committed snapshot, oldest first.
func (e *Engine) History() []life.LifeState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneStates(e.history)
}

// EventHistory returns copies of every resolved event, oldest first.
func (e *Engine) EventHistory() []life.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneEvents(e.eventHistory)
}

// PendingEvent returns a copy of the event awaiting a decision, or nil.
func (e *Engine) PendingEvent() *life.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == nil {
		return nil
	}
	ev := e.pending.Clone()
	return &ev
}

func (e *Engine) providerContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}

func cloneStates(in []life.LifeState) []life.LifeState {
	out := make([]life.LifeState, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}

func cloneEvents(in []life.Event) []life.Event {
	out := make([]life.Event, len(in))
	for i, ev := range in {
		out[i] = ev.Clone()
	}
	return out
}
