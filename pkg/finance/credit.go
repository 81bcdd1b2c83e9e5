package finance

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/jwebster45206/life-engine/pkg/life"
)

const (
	// LoanInterestRatePercent is the fixed annual mortgage rate offered.
	LoanInterestRatePercent = 3.5
	// MaxIncomeShareForLoan caps the monthly rate at this share of income.
	MaxIncomeShareForLoan = 0.40
	// MinimumLivingCostPerMonth is what the bank assumes a household needs
	// before any loan payment.
	MinimumLivingCostPerMonth = 1100.0
	// ChildAllowancePerMonth is added to the living cost for each child.
	ChildAllowancePerMonth = 250.0
)

// LoanDurations are tried in ascending order; the shortest affordable one wins.
var LoanDurations = []int{10, 15, 20, 25, 30}

// CreditResult is the outcome of a credit check. When Eligible is false the
// conditions only show what the longest loan would cost.
type CreditResult struct {
	Eligible   bool
	Conditions *life.LoanConditions
}

// CreditModel decides whether a bank would finance the goal.
type CreditModel struct {
	RatePercent float64
	Durations   []int
}

// NewCreditModel returns a model with the default rate and durations.
func NewCreditModel() *CreditModel {
	return &CreditModel{
		RatePercent: LoanInterestRatePercent,
		Durations:   LoanDurations,
	}
}

// Apply checks whether the player can finance g given state s.
func (m *CreditModel) Apply(s life.LifeState, g life.Goal) CreditResult {
	needed := LoanAmountNeeded(s, g)
	if needed == 0 {
		return CreditResult{
			Eligible:   true,
			Conditions: &life.LoanConditions{InterestRate: m.RatePercent},
		}
	}

	maxRate := MaxMonthlyRate(s)

	var last *life.LoanConditions
	for _, years := range m.Durations {
		payment := MonthlyPayment(needed, m.RatePercent, years)
		last = &life.LoanConditions{
			LoanAmount:     needed,
			DurationYears:  years,
			InterestRate:   m.RatePercent,
			MonthlyPayment: payment,
		}
		if maxRate > 0 && payment <= maxRate {
			return CreditResult{Eligible: true, Conditions: last}
		}
	}
	return CreditResult{Eligible: false, Conditions: last}
}

// LoanAmountNeeded is the part of the buying price wealth does not cover.
func LoanAmountNeeded(s life.LifeState, g life.Goal) float64 {
	gap := decimal.NewFromFloat(g.BuyingPrice).Sub(decimal.NewFromFloat(s.Portfolio.Total()))
	if !gap.IsPositive() {
		return 0
	}
	return gap.Round(2).InexactFloat64()
}

// MaxMonthlyRate is the largest monthly payment the bank accepts: income
// minus the living cost, capped at a share of income.
func MaxMonthlyRate(s life.LifeState) float64 {
	monthlyIncome := s.Occupation.YearlySalary / 12
	livingCost := MinimumLivingCostPerMonth + ChildAllowancePerMonth*float64(s.AmountOfChildren)
	disposable := monthlyIncome - livingCost
	return min(disposable, monthlyIncome*MaxIncomeShareForLoan)
}

// MonthlyPayment is the annuity payment for principal at annualRatePercent
// over years:
//
//	payment = principal * r(1+r)^n / ((1+r)^n - 1), r = monthly rate, n = months
func MonthlyPayment(principal, annualRatePercent float64, years int) float64 {
	n := float64(years * 12)
	if n <= 0 || principal <= 0 {
		return 0
	}
	r := annualRatePercent / 100 / 12
	if r == 0 {
		return RoundCurrency(principal / n)
	}
	growth := math.Pow(1+r, n)
	return RoundCurrency(principal * (r * growth) / (growth - 1))
}
