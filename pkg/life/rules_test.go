package life

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnforceEventRules_ChildPenalty(t *testing.T) {
	tests := []struct {
		name            string
		impact          EventImpact
		wantSavingsRate *float64
		wantCash        *float64
	}{
		{
			name:            "child without any cost gets default savings cut",
			impact:          EventImpact{Children: Ptr(1), LifeSatisfaction: Ptr(10.0)},
			wantSavingsRate: Ptr(-DefaultChildSavingsPenalty),
		},
		{
			name:            "positive savings delta is replaced",
			impact:          EventImpact{Children: Ptr(1), SavingsRate: Ptr(10.0)},
			wantSavingsRate: Ptr(-DefaultChildSavingsPenalty),
		},
		{
			name:            "existing negative savings delta is kept",
			impact:          EventImpact{Children: Ptr(1), SavingsRate: Ptr(-8.0)},
			wantSavingsRate: Ptr(-8.0),
		},
		{
			name:     "reduced absolute cash counts as a penalty",
			impact:   EventImpact{Children: Ptr(2), Portfolio: &PortfolioPatch{Cash: Ptr(4000.0)}},
			wantCash: Ptr(4000.0),
		},
		{
			name:            "cash at or above current is not a penalty",
			impact:          EventImpact{Children: Ptr(1), Portfolio: &PortfolioPatch{Cash: Ptr(10000.0)}},
			wantSavingsRate: Ptr(-DefaultChildSavingsPenalty),
			wantCash:        Ptr(10000.0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := baseState()
			ev := Event{Impact: tt.impact, Description: "A child is born"}
			EnforceEventRules(&ev, current)

			assert.Equal(t, tt.wantSavingsRate, ev.Impact.SavingsRate)
			if tt.wantCash != nil {
				assert.Equal(t, *tt.wantCash, *ev.Impact.Portfolio.Cash)
			}
			assert.True(t, hasFinancialPenalty(&ev.Impact, current))
		})
	}
}

func TestEnforceEventRules_PenaltyHoldsAfterApply(t *testing.T) {
	current := baseState()
	ev := Event{
		Impact:            EventImpact{Children: Ptr(1)},
		AlternativeImpact: &EventImpact{Children: Ptr(1), SavingsRate: Ptr(2.0)},
		Question:          Ptr("Adopt a child?"),
	}
	EnforceEventRules(&ev, current)

	for _, imp := range []*EventImpact{&ev.Impact, ev.AlternativeImpact} {
		s := current.Clone()
		ApplyImpact(&s, imp)
		assert.Less(t, s.SavingsRatePercent, current.SavingsRatePercent)
	}
}

func TestEnforceEventRules_Normalization(t *testing.T) {
	current := baseState()
	current.Married = true

	ev := Event{
		Impact:            EventImpact{Married: Ptr(true), LifeSatisfaction: Ptr(5.0)},
		AlternativeImpact: &EventImpact{LifeSatisfaction: Ptr(-5.0)},
		Question:          Ptr("   "),
	}
	notes := EnforceEventRules(&ev, current)

	assert.Nil(t, ev.Question, "blank question makes the event non-interactive")
	assert.Nil(t, ev.AlternativeImpact)
	assert.Nil(t, ev.Impact.Married, "marrying an already married player is dropped")
	assert.Equal(t, 5.0, *ev.Impact.LifeSatisfaction)
	assert.Len(t, notes, 2)
}

func TestEnforceEventRules_InteractiveWithoutAlternativeIsLegal(t *testing.T) {
	ev := Event{
		Impact:   EventImpact{Married: Ptr(true)},
		Question: Ptr("Will you marry?"),
	}
	notes := EnforceEventRules(&ev, baseState())

	assert.Empty(t, notes)
	assert.True(t, ev.IsInteractive())
	assert.Nil(t, ev.AlternativeImpact)
}
