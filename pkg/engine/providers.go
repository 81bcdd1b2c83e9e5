package engine

import (
	"context"

	"github.com/jwebster45206/life-engine/pkg/finance"
	"github.com/jwebster45206/life-engine/pkg/life"
)

// EventProvider proposes a life event for the turn that was just committed.
// It returns nil for "no event", which includes every internal failure.
type EventProvider interface {
	Generate(ctx context.Context, probability float64, history []life.LifeState, goal life.Goal, events []life.Event) *life.Event
}

// OccupationProvider estimates salary and stress for a described job.
// On failure it returns a placeholder estimate, never an error.
type OccupationProvider interface {
	Estimate(ctx context.Context, description string) life.OccupationEstimate
}

// HousingProvider suggests rental homes for a described wish. On failure it
// returns an empty list.
type HousingProvider interface {
	Suggest(ctx context.Context, description string) []life.Living
}

// RecommendationProvider writes end-of-game feedback. On failure it returns a
// single user-facing error message.
type RecommendationProvider interface {
	Summarize(ctx context.Context, history []life.LifeState, events []life.Event, goal life.Goal) []string
}

// ListingProvider looks up real listings near the goal. On failure it
// returns an empty list.
type ListingProvider interface {
	Search(ctx context.Context, q life.ListingQuery) []life.Listing
}

type InvestmentModel interface {
	Apply(s life.LifeState) life.Portfolio
}

type SatisfactionModel interface {
	Apply(s life.LifeState) float64
}

type CreditModel interface {
	Apply(s life.LifeState, g life.Goal) finance.CreditResult
}
