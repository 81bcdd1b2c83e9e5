package life

import (
	"fmt"
	"strings"
)

// DefaultChildSavingsPenalty is the savings-rate cut, in percentage points,
// injected into a child event that arrives without a financial consequence.
const DefaultChildSavingsPenalty = 5.0

// EnforceEventRules corrects a provider-supplied event in place so it obeys
// the business rules against the current state. It never rejects an event.
// The returned notes describe every correction made.
func EnforceEventRules(ev *Event, current LifeState) []string {
	if ev == nil {
		return nil
	}
	var notes []string

	if ev.Question != nil && strings.TrimSpace(*ev.Question) == "" {
		ev.Question = nil
	}
	if ev.Question == nil && ev.AlternativeImpact != nil {
		ev.AlternativeImpact = nil
		notes = append(notes, "dropped alternative impact of non-interactive event")
	}

	notes = append(notes, enforceImpact("impact", &ev.Impact, current)...)
	if ev.AlternativeImpact != nil {
		notes = append(notes, enforceImpact("alternative impact", ev.AlternativeImpact, current)...)
	}
	return notes
}

func enforceImpact(label string, imp *EventImpact, current LifeState) []string {
	var notes []string

	if imp.Married != nil && *imp.Married == current.Married {
		imp.Married = nil
		notes = append(notes, fmt.Sprintf("%s: removed marital status that matches the current one", label))
	}

	if imp.Children != nil && *imp.Children > 0 && !hasFinancialPenalty(imp, current) {
		imp.SavingsRate = Ptr(-DefaultChildSavingsPenalty)
		notes = append(notes, fmt.Sprintf("%s: child event without financial cost, savings rate cut by %.0f points",
			label, DefaultChildSavingsPenalty))
	}
	return notes
}

// hasFinancialPenalty reports whether the impact lowers the savings rate or
// sets cash below its current value.
func hasFinancialPenalty(imp *EventImpact, current LifeState) bool {
	if imp.SavingsRate != nil && *imp.SavingsRate < 0 {
		return true
	}
	if imp.Portfolio != nil && imp.Portfolio.Cash != nil && *imp.Portfolio.Cash < current.Portfolio.Cash {
		return true
	}
	return false
}
