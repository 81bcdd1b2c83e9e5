package advisors

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/jwebster45206/life-engine/internal/services"
	"github.com/jwebster45206/life-engine/pkg/life"
)

// RecommendationErrorMessage is the single insight returned when feedback
// cannot be generated.
const RecommendationErrorMessage = "An error occurred while generating your life evaluation. Please try again later."

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// RecommendationAdvisor writes end-of-game coaching feedback.
type RecommendationAdvisor struct {
	base
}

func NewRecommendationAdvisor(llm services.LLMService, logger *slog.Logger) *RecommendationAdvisor {
	return &RecommendationAdvisor{base: newBase("recommendations", llm, logger)}
}

type recommendationData struct {
	Goal    life.Goal
	Last    life.LifeState
	Gap     float64
	History []life.LifeState
	Events  []life.Event
}

// Summarize returns the feedback split into paragraphs. On failure it
// returns a one-element list holding RecommendationErrorMessage.
func (a *RecommendationAdvisor) Summarize(ctx context.Context, history []life.LifeState, events []life.Event, goal life.Goal) []string {
	if len(history) == 0 {
		a.logger.Warn("no history to evaluate")
		return []string{RecommendationErrorMessage}
	}

	last := history[len(history)-1]
	data := recommendationData{
		Goal:    goal,
		Last:    last,
		Gap:     goal.BuyingPrice - last.Portfolio.Total(),
		History: history,
		Events:  events,
	}

	raw, err := a.ask(ctx, "recommendation_system.txt", "recommendation_user.txt", data)
	if err != nil {
		a.logger.Warn("recommendations failed", "error", err)
		return []string{RecommendationErrorMessage}
	}

	insights := splitParagraphs(raw)
	if len(insights) == 0 {
		a.logger.Warn("recommendations came back empty")
		return []string{RecommendationErrorMessage}
	}
	return insights
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range paragraphBreak.Split(strings.TrimSpace(text), -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
