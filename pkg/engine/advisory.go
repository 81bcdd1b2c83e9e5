package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/jwebster45206/life-engine/pkg/life"
)

// RequestNewOccupation asks the occupation advisor to estimate a described
// job. The state is not touched; the player applies the result through
// DecideActions.
func (e *Engine) RequestNewOccupation(ctx context.Context, description string) (life.OccupationEstimate, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return life.OccupationEstimate{}, fmt.Errorf("%w: empty occupation description", ErrInvalidInput)
	}
	if e.occupations == nil {
		return life.OccupationEstimate{}, fmt.Errorf("%w: occupation", ErrNoProvider)
	}

	pctx, cancel := e.providerContext(ctx)
	defer cancel()
	return e.occupations.Estimate(pctx, description), nil
}

// RequestNewHomes asks the housing advisor for rental candidates.
func (e *Engine) RequestNewHomes(ctx context.Context, description string) ([]life.Living, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("%w: empty home description", ErrInvalidInput)
	}
	if e.housing == nil {
		return nil, fmt.Errorf("%w: housing", ErrNoProvider)
	}

	pctx, cancel := e.providerContext(ctx)
	defer cancel()
	homes := e.housing.Suggest(pctx, description)
	if homes == nil {
		homes = []life.Living{}
	}
	return homes, nil
}

// GenerateRecommendations asks for end-of-game feedback on the session so
// far. The snapshot is taken under the lock and the provider runs without it.
func (e *Engine) GenerateRecommendations(ctx context.Context) ([]string, error) {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil, ErrNotRunning
	}
	history := cloneStates(e.history)
	events := cloneEvents(e.eventHistory)
	goal := e.goal
	e.mu.Unlock()

	if e.recommendations == nil {
		return nil, fmt.Errorf("%w: recommendations", ErrNoProvider)
	}

	pctx, cancel := e.providerContext(ctx)
	defer cancel()
	return e.recommendations.Summarize(pctx, history, events, goal), nil
}

// SearchListings looks up real listings in city that match the goal's
// estate type and size.
func (e *Engine) SearchListings(ctx context.Context, city string) ([]life.Listing, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, fmt.Errorf("%w: empty city", ErrInvalidInput)
	}

	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil, ErrNotRunning
	}
	goal := e.goal
	e.mu.Unlock()

	if e.listings == nil {
		return nil, fmt.Errorf("%w: listings", ErrNoProvider)
	}

	pctx, cancel := e.providerContext(ctx)
	defer cancel()
	listings := e.listings.Search(pctx, life.ListingQuery{
		City:         city,
		Type:         life.ListingTypeFor(goal.EstateType),
		SquareMeters: goal.SquareMeters,
	})
	if listings == nil {
		listings = []life.Listing{}
	}
	return listings, nil
}
