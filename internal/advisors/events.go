package advisors

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/jwebster45206/life-engine/internal/services"
	"github.com/jwebster45206/life-engine/pkg/finance"
	"github.com/jwebster45206/life-engine/pkg/life"
)

// EventGenerator asks an LLM for a life event that fits the game so far.
type EventGenerator struct {
	base
	src finance.Source
}

// NewEventGenerator creates a generator that rolls src against the trigger
// probability before asking llm.
func NewEventGenerator(llm services.LLMService, src finance.Source, logger *slog.Logger) *EventGenerator {
	return &EventGenerator{
		base: newBase("events", llm, logger),
		src:  src,
	}
}

type eventConstraints struct {
	CurrentlyMarried bool `json:"userCurrentlyMarried"`
	CurrentAge       int  `json:"currentAge"`
	CurrentChildren  int  `json:"currentChildren"`
	WishedChildren   int  `json:"wishedChildren"`
}

type eventContext struct {
	Goal           life.Goal        `json:"goal"`
	StartingState  life.LifeState   `json:"startingState"`
	CurrentState   life.LifeState   `json:"currentState"`
	StateHistory   []life.LifeState `json:"stateHistory"`
	PreviousEvents []life.Event     `json:"previousEvents"`
	Constraints    eventConstraints `json:"constraints"`
}

// eventPayload is the event as the model writes it. Engine-owned fields
// like the ID and year are not read from the model.
type eventPayload struct {
	Impact            *life.EventImpact `json:"impact"`
	AlternativeImpact *life.EventImpact `json:"alternativeImpact"`
	Description       string            `json:"eventDescription"`
	Question          *string           `json:"eventQuestion"`
	Emoji             string            `json:"emoji"`
}

// Generate returns nil with probability 1-probability without calling the
// LLM. Any LLM or parse failure also yields nil.
func (g *EventGenerator) Generate(ctx context.Context, probability float64, history []life.LifeState, goal life.Goal, events []life.Event) *life.Event {
	if len(history) == 0 {
		return nil
	}
	if g.src.Float64() >= probability {
		return nil
	}

	current := history[len(history)-1]
	ec := eventContext{
		Goal:           goal,
		StartingState:  history[0],
		CurrentState:   current,
		StateHistory:   history,
		PreviousEvents: events,
		Constraints: eventConstraints{
			CurrentlyMarried: current.Married,
			CurrentAge:       current.Age,
			CurrentChildren:  current.AmountOfChildren,
			WishedChildren:   goal.NumberWishedChildren,
		},
	}
	if ec.PreviousEvents == nil {
		ec.PreviousEvents = []life.Event{}
	}
	contextJSON, err := json.MarshalIndent(ec, "", "  ")
	if err != nil {
		g.logger.Error("failed to encode event context", "error", err)
		return nil
	}

	raw, err := g.ask(ctx, "event_system.txt", "event_user.txt", struct {
		Year    int
		Context string
	}{current.Year, string(contextJSON)})
	if err != nil {
		g.logger.Warn("event generation failed", "error", err)
		return nil
	}

	var p eventPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		g.logger.Warn("event response is not valid JSON", "error", err)
		return nil
	}
	if p.Impact == nil || p.Description == "" {
		g.logger.Warn("event response is missing required fields")
		return nil
	}

	return &life.Event{
		Impact:            *p.Impact,
		AlternativeImpact: p.AlternativeImpact,
		Description:       p.Description,
		Question:          p.Question,
		Emoji:             p.Emoji,
		Year:              current.Year,
	}
}
