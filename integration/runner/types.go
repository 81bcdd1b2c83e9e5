package runner

import (
	"time"

	"github.com/google/uuid"
)

// Decision policies for pending events.
const (
	DecideAccept    = "accept"
	DecideDecline   = "decline"
	DecideAlternate = "alternate"
)

// TestCase is one scripted playthrough of a profile.
type TestCase struct {
	Name     string        `json:"name"`
	Profile  string        `json:"profile"`           // Relative to the repository root
	Years    int           `json:"years"`             // Turns to play unless the game ends first
	Decision string        `json:"decision"`          // accept, decline or alternate
	Actions  []ActionStep  `json:"actions,omitempty"` // Player changes applied before a given turn
	Expect   Expectations  `json:"expect"`
	Timeout  time.Duration `json:"-"`
}

// ActionStep applies a savings rate change before turn BeforeYear (1-based).
type ActionStep struct {
	BeforeYear  int     `json:"before_year"`
	SavingsRate float64 `json:"savings_rate"`
}

// Expectations are checked after the last turn.
type Expectations struct {
	Status        *string  `json:"status,omitempty"`
	MinHistory    *int     `json:"min_history,omitempty"`
	MaxHistory    *int     `json:"max_history,omitempty"`
	SavingsRate   *float64 `json:"savings_rate,omitempty"`
	MinTotalAsset *float64 `json:"min_total_asset,omitempty"`
}

// TestResult contains the outcome of one playthrough.
type TestResult struct {
	Case      string
	GameID    uuid.UUID
	Turns     int
	Events    int
	Duration  time.Duration
	Error     error
	Violation []string
}

// Success reports whether the run finished without errors or violations.
func (r TestResult) Success() bool {
	return r.Error == nil && len(r.Violation) == 0
}
