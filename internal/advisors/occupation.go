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

const occupationFallbackExplanation = "Sorry. Could not analyze job data."

// OccupationAdvisor estimates salary and stress for a described job.
type OccupationAdvisor struct {
	base
}

func NewOccupationAdvisor(llm services.LLMService, logger *slog.Logger) *OccupationAdvisor {
	return &OccupationAdvisor{base: newBase("occupation", llm, logger)}
}

// WithCache stores successful estimates in cache for ttl.
// Returns the OccupationAdvisor for method chaining
func (a *OccupationAdvisor) WithCache(cache services.Cache, ttl time.Duration) *OccupationAdvisor {
	a.cache = cache
	a.cacheTTL = ttl
	return a
}

type occupationPayload struct {
	Title       string    `json:"title"`
	Salary      flexFloat `json:"estimatedSalary"`
	Stress      flexFloat `json:"stressLevel"`
	Explanation string    `json:"explanation"`
}

// Estimate never fails: on error it returns the description as the title
// with zero salary and stress.
func (a *OccupationAdvisor) Estimate(ctx context.Context, description string) life.OccupationEstimate {
	description = strings.TrimSpace(description)

	var est life.OccupationEstimate
	if a.cached(ctx, description, &est) {
		a.logger.Debug("occupation estimate served from cache")
		return est
	}

	raw, err := a.ask(ctx, "occupation_system.txt", "occupation_user.txt", struct{ Description string }{description})
	if err != nil {
		a.logger.Warn("occupation estimate failed", "error", err)
		return occupationFallback(description)
	}

	var p occupationPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		a.logger.Warn("occupation response is not valid JSON", "error", err)
		return occupationFallback(description)
	}

	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = description
	}
	explanation := strings.TrimSpace(p.Explanation)
	if explanation == "" {
		explanation = "No explanation available."
	}
	est = life.OccupationEstimate{
		Occupation: life.Occupation{
			Title:        title,
			Description:  description,
			YearlySalary: max(0, math.Round(float64(p.Salary))),
			StressLevel:  min(100, max(0, math.Round(float64(p.Stress)))),
		},
		Explanation: explanation,
	}
	a.store(ctx, description, est)
	return est
}

func occupationFallback(description string) life.OccupationEstimate {
	return life.OccupationEstimate{
		Occupation:  life.Occupation{Title: description, Description: description},
		Explanation: occupationFallbackExplanation,
	}
}
