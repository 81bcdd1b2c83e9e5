package advisors

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/jwebster45206/life-engine/internal/services"
	"github.com/jwebster45206/life-engine/pkg/life"
)

const (
	maxHomeSuggestions = 3
	fallbackHomeName   = "Charming Home"
	fallbackHomeZip    = "00000"
)

// HousingAdvisor suggests rental homes for a described wish: budget,
// perfect match and premium.
type HousingAdvisor struct {
	base
}

func NewHousingAdvisor(llm services.LLMService, logger *slog.Logger) *HousingAdvisor {
	return &HousingAdvisor{base: newBase("housing", llm, logger)}
}

// WithCache stores successful suggestions in cache for ttl.
func (a *HousingAdvisor) WithCache(cache services.Cache, ttl time.Duration) *HousingAdvisor {
	a.cache = cache
	a.cacheTTL = ttl
	return a
}

type homePayload struct {
	Name       string     `json:"name"`
	YearlyRent flexFloat  `json:"yearlyRentInEuro"`
	Zip        flexString `json:"zip"`
	Size       flexFloat  `json:"sizeInSquareMeter"`
}

// Suggest returns up to three homes, or an empty list on failure.
func (a *HousingAdvisor) Suggest(ctx context.Context, description string) []life.Living {
	description = strings.TrimSpace(description)

	var homes []life.Living
	if a.cached(ctx, description, &homes) {
		a.logger.Debug("home suggestions served from cache")
		return homes
	}

	raw, err := a.ask(ctx, "housing_system.txt", "housing_user.txt", struct{ Description string }{description})
	if err != nil {
		a.logger.Warn("home suggestions failed", "error", err)
		return []life.Living{}
	}

	items, err := parseHomes(raw)
	if err != nil {
		a.logger.Warn("home response is not a JSON array", "error", err)
		return []life.Living{}
	}

	homes = make([]life.Living, 0, maxHomeSuggestions)
	for _, item := range items {
		if len(homes) == maxHomeSuggestions {
			break
		}
		home := life.Living{
			Name:       strings.TrimSpace(item.Name),
			Zip:        strings.TrimSpace(string(item.Zip)),
			YearlyRent: max(0, math.Round(float64(item.YearlyRent))),
			Size:       max(0, math.Round(float64(item.Size))),
		}
		if home.Name == "" {
			home.Name = fallbackHomeName
		}
		if home.Zip == "" {
			home.Zip = fallbackHomeZip
		}
		homes = append(homes, home)
	}

	if len(homes) > 0 {
		a.store(ctx, description, homes)
	}
	return homes
}

// parseHomes accepts a bare array or an object wrapping one, which JSON mode
// sometimes produces.
func parseHomes(raw string) ([]homePayload, error) {
	var items []homePayload
	err := json.Unmarshal([]byte(raw), &items)
	if err == nil {
		return items, nil
	}

	var wrapped map[string]json.RawMessage
	if json.Unmarshal([]byte(raw), &wrapped) != nil {
		return nil, err
	}
	for _, v := range wrapped {
		if json.Unmarshal(v, &items) == nil {
			return items, nil
		}
	}
	return nil, err
}
