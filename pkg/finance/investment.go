package finance

import (
	"github.com/jwebster45206/life-engine/pkg/life"
)

const (
	// CashInterestRate is the savings-account yield on cash.
	CashInterestRate = 0.02

	ETFMeanReturn    = 0.07
	ETFVolatility    = 0.15
	CryptoMeanReturn = 0.10
	CryptoVolatility = 0.50

	// ChildCostPerYear is the fixed yearly cost of one child.
	ChildCostPerYear = 3000.0
	// BasicLivingCostPerYear is the household's yearly floor for food and
	// other necessities.
	BasicLivingCostPerYear = 6000.0
)

// InvestmentModel advances a portfolio by one year.
type InvestmentModel struct {
	src Source
}

// NewInvestmentModel creates a model drawing market returns from src.
func NewInvestmentModel(src Source) *InvestmentModel {
	return &InvestmentModel{src: src}
}

// Apply returns next year's portfolio for s. Cash earns interest and then
// receives the year's savings; ETF and crypto grow by a normally
// distributed return and never drop below zero.
func (m *InvestmentModel) Apply(s life.LifeState) life.Portfolio {
	p := s.Portfolio

	cash := p.Cash * (1 + CashInterestRate)
	etf := p.ETF * (1 + Normal(m.src, ETFMeanReturn, ETFVolatility))
	crypto := p.Crypto * (1 + Normal(m.src, CryptoMeanReturn, CryptoVolatility))

	cash += CashFlow(s)

	return life.Portfolio{
		Cash:   RoundCurrency(cash),
		Crypto: RoundCurrency(max(0, crypto)),
		ETF:    RoundCurrency(max(0, etf)),
	}
}

// HouseholdBalance returns the planned savings for the year and what is left
// of the salary after rent, children, planned savings and basic living costs.
func HouseholdBalance(s life.LifeState) (plannedSavings, balance float64) {
	salary := s.Occupation.YearlySalary
	plannedSavings = salary * s.SavingsRatePercent / 100
	balance = salary -
		s.Living.YearlyRent -
		ChildCostPerYear*float64(s.AmountOfChildren) -
		plannedSavings -
		BasicLivingCostPerYear
	return plannedSavings, balance
}

// CashFlow is the change in cash from one year of household budgeting.
// A surplus beyond planned savings is spent; a shortfall eats into the
// savings first and then into existing cash.
func CashFlow(s life.LifeState) float64 {
	plannedSavings, balance := HouseholdBalance(s)
	if balance >= 0 {
		return plannedSavings
	}
	return plannedSavings + balance
}
