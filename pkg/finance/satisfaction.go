package finance

import (
	"math"
	"strings"

	"github.com/jwebster45206/life-engine/pkg/life"
)

// Weights of the satisfaction model. The raw score is a sum of these
// contributions and is squashed into [0, 100] by tanh.
const (
	wealthPerPoint      = 5000.0
	maxWealthPoints     = 40.0
	rentBurdenThreshold = 0.35
	rentBurdenWeight    = 100.0
	stressWeight        = 1.5
	comfortableSpace    = 35.0 // square meters per person that score zero
	marriedBonus        = 25.0
	childBonus          = 15.0
	educationBonus      = 10.0
	minEducationLength  = 5
	sensitivity         = 150.0
)

// SatisfactionModel scores well-being from a life state.
type SatisfactionModel struct{}

// NewSatisfactionModel returns the default satisfaction model.
func NewSatisfactionModel() *SatisfactionModel {
	return &SatisfactionModel{}
}

// Apply returns a life-satisfaction score in [0, 100], centered at 50.
func (SatisfactionModel) Apply(s life.LifeState) float64 {
	raw := RawSatisfaction(s)
	score := 50 + 50*math.Tanh(raw/sensitivity)
	return math.Round(clamp(score, 0, 100))
}

// RawSatisfaction is the unbounded weighted sum before squashing.
func RawSatisfaction(s life.LifeState) float64 {
	var raw float64

	// Negative wealth is debt and pulls the score down without a floor.
	raw += min(maxWealthPoints, s.Portfolio.Total()/wealthPerPoint)

	salary := s.Occupation.YearlySalary
	if salary > 0 {
		if ratio := s.Living.YearlyRent / salary; ratio > rentBurdenThreshold {
			raw -= ratio * rentBurdenWeight
		}
	}

	raw -= s.Occupation.StressLevel * stressWeight

	perPerson := s.Living.Size / float64(max(1, s.HouseholdSize()))
	raw += perPerson - comfortableSpace

	if s.Married {
		raw += marriedBonus
	}
	raw += float64(s.AmountOfChildren) * childBonus

	if len(strings.TrimSpace(s.EducationLevel)) > minEducationLength {
		raw += educationBonus
	}
	return raw
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return min(hi, max(lo, v))
}
