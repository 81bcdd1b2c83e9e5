// Package life holds the domain records of a life simulation: the player's
// occupation, portfolio, living situation, the housing goal they save for and
// the yearly LifeState snapshot the engine mutates.
//
// JSON field names follow the wire contract shared with the advisory
// providers, so the same structs are sent to and parsed from LLM responses.
package life

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Occupation is the player's current job.
type Occupation struct {
	Title        string  `json:"occupationTitle"`
	Description  string  `json:"occupationDescription"`
	YearlySalary float64 `json:"yearlySalaryInEuro"`
	StressLevel  float64 `json:"stressLevelFrom0To100"`
}

// OccupationEstimate is an advisor's guess at a job described in free text.
type OccupationEstimate struct {
	Occupation
	Explanation string `json:"explanation"`
}

// Portfolio is the player's wealth split by asset class. Cash may go below
// zero when the household runs a deficit; crypto and ETF never do.
type Portfolio struct {
	Cash   float64 `json:"cashInEuro"`
	Crypto float64 `json:"cryptoInEuro"`
	ETF    float64 `json:"etfInEuro"`
}

// Total returns cash + crypto + etf, summed in decimal to keep the goal
// comparison free of float drift.
func (p Portfolio) Total() float64 {
	return decimal.NewFromFloat(p.Cash).
		Add(decimal.NewFromFloat(p.Crypto)).
		Add(decimal.NewFromFloat(p.ETF)).
		InexactFloat64()
}

// Living is a rented home.
type Living struct {
	Name       string  `json:"name"`
	Zip        string  `json:"zip"`
	YearlyRent float64 `json:"yearlyRentInEuro"`
	Size       float64 `json:"sizeInSquareMeter"`
}

// LoanConditions describes a mortgage offer, or the payment that would be
// needed when the player is not creditworthy.
type LoanConditions struct {
	LoanAmount     float64 `json:"loanAmount"`
	DurationYears  int     `json:"durationInYears"`
	InterestRate   float64 `json:"interestRateInPercent"`
	MonthlyPayment float64 `json:"monthlyPayment"`
}

// StartState is the life situation collected before the game starts.
type StartState struct {
	Age                int        `json:"age"`
	Occupation         Occupation `json:"occupation"`
	Portfolio          Portfolio  `json:"portfolio"`
	Living             Living     `json:"living"`
	SavingsRatePercent float64    `json:"savingsRateInPercent"`
	AmountOfChildren   int        `json:"amountOfChildren"`
	Married            bool       `json:"married"`
}

// Validate checks the ranges a start state must satisfy.
func (s StartState) Validate() error {
	var errs []error
	if s.Age < 0 {
		errs = append(errs, fmt.Errorf("age must be >= 0, got %d", s.Age))
	}
	if s.Occupation.YearlySalary < 0 {
		errs = append(errs, fmt.Errorf("yearly salary must be >= 0, got %.2f", s.Occupation.YearlySalary))
	}
	if s.Occupation.StressLevel < 0 || s.Occupation.StressLevel > 100 {
		errs = append(errs, fmt.Errorf("stress level must be within 0-100, got %.1f", s.Occupation.StressLevel))
	}
	if s.Portfolio.Crypto < 0 || s.Portfolio.ETF < 0 {
		errs = append(errs, errors.New("crypto and etf holdings must be >= 0"))
	}
	if s.Living.YearlyRent < 0 {
		errs = append(errs, fmt.Errorf("yearly rent must be >= 0, got %.2f", s.Living.YearlyRent))
	}
	if s.Living.Size <= 0 {
		errs = append(errs, fmt.Errorf("living size must be > 0, got %.1f", s.Living.Size))
	}
	if s.SavingsRatePercent < 0 || s.SavingsRatePercent > 100 {
		errs = append(errs, fmt.Errorf("savings rate must be within 0-100, got %.1f", s.SavingsRatePercent))
	}
	if s.AmountOfChildren < 0 {
		errs = append(errs, fmt.Errorf("amount of children must be >= 0, got %d", s.AmountOfChildren))
	}
	return errors.Join(errs...)
}

// LifeState is the authoritative simulation snapshot for one year.
type LifeState struct {
	Year               int             `json:"year"`
	Age                int             `json:"age"`
	Occupation         Occupation      `json:"occupation"`
	Portfolio          Portfolio       `json:"portfolio"`
	Living             Living          `json:"living"`
	SavingsRatePercent float64         `json:"savingsRateInPercent"`
	AmountOfChildren   int             `json:"amountOfChildren"`
	Married            bool            `json:"married"`
	EducationLevel     string          `json:"educationLevel"`
	LifeSatisfaction   float64         `json:"lifeSatisfactionFrom1To100"`
	CreditWorthiness   bool            `json:"creditWorthiness"`
	LoanConditions     *LoanConditions `json:"loanConditions,omitempty"`
	Terminated         bool            `json:"terminated"`
}

// Clone returns a deep copy that shares no memory with s.
func (s LifeState) Clone() LifeState {
	c := s
	if s.LoanConditions != nil {
		lc := *s.LoanConditions
		c.LoanConditions = &lc
	}
	return c
}

// HouseholdSize counts the player, their children and a spouse.
func (s LifeState) HouseholdSize() int {
	n := 1 + s.AmountOfChildren
	if s.Married {
		n++
	}
	return n
}

// EstateType is the kind of property the player wants to buy.
type EstateType string

const (
	EstateHouse     EstateType = "house"
	EstateApartment EstateType = "apartment"
)

// Goal is the home purchase the player saves toward.
type Goal struct {
	BuyingPrice          float64    `json:"buyingPrice"`
	Zip                  string     `json:"zip"`
	Rooms                int        `json:"rooms"`
	SquareMeters         float64    `json:"squareMeter"`
	NumberWishedChildren int        `json:"numberWishedChildren"`
	EstateType           EstateType `json:"estateType"`
}

// Validate checks the goal invariants.
func (g Goal) Validate() error {
	var errs []error
	if g.BuyingPrice <= 0 {
		errs = append(errs, fmt.Errorf("buying price must be > 0, got %.2f", g.BuyingPrice))
	}
	if g.Rooms <= 0 {
		errs = append(errs, fmt.Errorf("rooms must be > 0, got %d", g.Rooms))
	}
	if g.SquareMeters <= 0 {
		errs = append(errs, fmt.Errorf("square meters must be > 0, got %.1f", g.SquareMeters))
	}
	if g.NumberWishedChildren < 0 {
		errs = append(errs, fmt.Errorf("wished children must be >= 0, got %d", g.NumberWishedChildren))
	}
	switch EstateType(strings.ToLower(string(g.EstateType))) {
	case EstateHouse, EstateApartment:
	default:
		errs = append(errs, fmt.Errorf("estate type must be %q or %q, got %q", EstateHouse, EstateApartment, g.EstateType))
	}
	return errors.Join(errs...)
}
