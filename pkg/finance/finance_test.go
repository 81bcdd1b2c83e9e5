package finance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/life-engine/pkg/life"
)

// constSource always returns the same uniform value.
type constSource float64

func (c constSource) Float64() float64 { return float64(c) }

func testState(salary, rent, savingsRate, cash, etf float64) life.LifeState {
	return life.LifeState{
		Year: 2025,
		Age:  30,
		Occupation: life.Occupation{
			Title:        "Tester",
			Description:  "Test Job",
			YearlySalary: salary,
			StressLevel:  50,
		},
		Portfolio:          life.Portfolio{Cash: cash, ETF: etf},
		Living:             life.Living{Zip: "12345", YearlyRent: rent, Size: 50},
		SavingsRatePercent: savingsRate,
		EducationLevel:     "Bachelor",
		LifeSatisfaction:   50,
	}
}

func TestNormal_Statistics(t *testing.T) {
	src := NewSource(42)
	const n = 20000
	var sum, sumSq float64
	for range n {
		v := Normal(src, 0.07, 0.15)
		sum += v
		sumSq += v * v
	}
	mean := sum / n
	std := math.Sqrt(sumSq/n - mean*mean)

	assert.InDelta(t, 0.07, mean, 0.01)
	assert.InDelta(t, 0.15, std, 0.01)
}

func TestNewSource_SeededIsReproducible(t *testing.T) {
	a, b := NewSource(7), NewSource(7)
	for range 10 {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestInvestmentModel_CashFlow(t *testing.T) {
	// u2 = 0.25 makes cos(2πu2) = 0, so market returns equal their means.
	model := NewInvestmentModel(constSource(0.25))

	tests := []struct {
		name     string
		state    life.LifeState
		wantCash float64
	}{
		{
			name:     "surplus adds full planned savings",
			state:    testState(60000, 12000, 20, 10000, 0),
			wantCash: 10000*1.02 + 12000,
		},
		{
			name:     "exact break-even still saves",
			state:    testState(20000, 12000, 10, 5000, 0),
			wantCash: 5000*1.02 + 2000,
		},
		{
			name:     "deficit eats into cash",
			state:    testState(15000, 12000, 0, 10000, 0),
			wantCash: 10000*1.02 - 3000,
		},
		{
			name:     "shortfall reduces planned savings",
			state:    testState(30000, 18000, 30, 0, 0),
			wantCash: 9000 - 3000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := model.Apply(tt.state)
			assert.InDelta(t, tt.wantCash, p.Cash, 0.01)
		})
	}
}

func TestInvestmentModel_ChildrenCost(t *testing.T) {
	s := testState(40000, 12000, 10, 0, 0)
	s.AmountOfChildren = 3
	planned, balance := HouseholdBalance(s)

	assert.Equal(t, 4000.0, planned)
	assert.Equal(t, 40000.0-12000-9000-4000-6000, balance)
}

func TestInvestmentModel_MarketReturns(t *testing.T) {
	model := NewInvestmentModel(constSource(0.25))
	s := testState(0, 0, 0, 0, 100000)
	s.Portfolio.Crypto = 1000

	p := model.Apply(s)
	assert.InDelta(t, 107000, p.ETF, 0.01)
	assert.InDelta(t, 1100, p.Crypto, 0.01)
}

func TestInvestmentModel_AssetsNeverNegative(t *testing.T) {
	model := NewInvestmentModel(NewSource(3))
	s := testState(50000, 10000, 10, 0, 1000)
	s.Portfolio.Crypto = 1000
	for range 500 {
		p := model.Apply(s)
		require.GreaterOrEqual(t, p.ETF, 0.0)
		require.GreaterOrEqual(t, p.Crypto, 0.0)
	}
}

func TestInvestmentModel_ETFDistribution(t *testing.T) {
	model := NewInvestmentModel(NewSource(99))
	s := testState(0, 0, 0, 0, 100000)

	const n = 5000
	var sum float64
	for range n {
		sum += model.Apply(s).ETF
	}
	assert.InDelta(t, 107000, sum/n, 1000)
}

func TestSatisfactionModel_Bounds(t *testing.T) {
	model := NewSatisfactionModel()
	extremes := []life.LifeState{
		testState(0, 0, 0, 0, 0),
		testState(1e9, 0, 0, 1e12, 1e12),
		testState(10000, 1e7, 0, -1e9, 0),
		func() life.LifeState {
			s := testState(50000, 0, 0, 0, 0)
			s.Occupation.StressLevel = 100
			s.AmountOfChildren = 40
			s.Living.Size = 1
			return s
		}(),
		func() life.LifeState {
			s := testState(50000, 0, 0, 0, 0)
			s.Married = true
			s.AmountOfChildren = 200
			s.Living.Size = 1e6
			return s
		}(),
	}

	for _, s := range extremes {
		score := model.Apply(s)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
	}
}

func TestSatisfactionModel_Factors(t *testing.T) {
	model := NewSatisfactionModel()
	base := testState(60000, 12000, 10, 50000, 0)
	baseScore := model.Apply(base)

	stressed := base
	stressed.Occupation.StressLevel = 95
	assert.Less(t, model.Apply(stressed), baseScore)

	expensive := base
	expensive.Living.YearlyRent = 40000
	assert.Less(t, model.Apply(expensive), baseScore)

	married := base
	married.Married = true
	married.Living.Size = 100
	assert.Greater(t, model.Apply(married), baseScore)

	uneducated := base
	uneducated.EducationLevel = ""
	assert.Less(t, RawSatisfaction(uneducated), RawSatisfaction(base))

	richer := base
	richer.Portfolio.Cash = 150000
	assert.GreaterOrEqual(t, model.Apply(richer), baseScore)
}

func TestSatisfactionModel_WealthIsCapped(t *testing.T) {
	a := testState(60000, 12000, 10, 200000, 0)
	b := testState(60000, 12000, 10, 2000000, 0)
	assert.Equal(t, RawSatisfaction(a), RawSatisfaction(b))
}

func TestMonthlyPayment(t *testing.T) {
	// 200k at 3.5% over 20 years is a well-known 1159.92 per month.
	assert.InDelta(t, 1159.92, MonthlyPayment(200000, 3.5, 20), 0.05)
	assert.Equal(t, 1000.0, MonthlyPayment(120000, 0, 10))
	assert.Equal(t, 0.0, MonthlyPayment(0, 3.5, 10))
}

func TestCreditModel_CashPurchase(t *testing.T) {
	model := NewCreditModel()
	s := testState(0, 0, 0, 500000, 0)
	res := model.Apply(s, life.Goal{BuyingPrice: 400000})

	assert.True(t, res.Eligible)
	require.NotNil(t, res.Conditions)
	assert.Equal(t, 0.0, res.Conditions.LoanAmount)
	assert.Equal(t, 0, res.Conditions.DurationYears)
}

func TestCreditModel_PicksShortestAffordableDuration(t *testing.T) {
	model := NewCreditModel()
	s := testState(90000, 12000, 20, 100000, 0)
	res := model.Apply(s, life.Goal{BuyingPrice: 400000})

	require.True(t, res.Eligible)
	require.NotNil(t, res.Conditions)
	assert.Equal(t, 300000.0, res.Conditions.LoanAmount)

	maxRate := MaxMonthlyRate(s)
	assert.LessOrEqual(t, res.Conditions.MonthlyPayment, maxRate)
	for _, years := range LoanDurations {
		if years == res.Conditions.DurationYears {
			break
		}
		assert.Greater(t, MonthlyPayment(300000, LoanInterestRatePercent, years), maxRate,
			"a shorter duration %d should not have been affordable", years)
	}
}

func TestCreditModel_NotEligibleReportsLongestDuration(t *testing.T) {
	model := NewCreditModel()
	s := testState(20000, 12000, 0, 0, 0)
	res := model.Apply(s, life.Goal{BuyingPrice: 900000})

	assert.False(t, res.Eligible)
	require.NotNil(t, res.Conditions)
	assert.Equal(t, 30, res.Conditions.DurationYears)
	assert.Greater(t, res.Conditions.MonthlyPayment, 0.0)
}

func TestCreditModel_NoIncome(t *testing.T) {
	res := NewCreditModel().Apply(testState(0, 0, 0, 1000, 0), life.Goal{BuyingPrice: 100000})
	assert.False(t, res.Eligible)
}

func TestCreditModel_WealthMonotonicity(t *testing.T) {
	model := NewCreditModel()
	goal := life.Goal{BuyingPrice: 450000}
	wasEligible := false
	for cash := 0.0; cash <= 500000; cash += 5000 {
		res := model.Apply(testState(72000, 12000, 10, cash, 0), goal)
		if wasEligible {
			require.True(t, res.Eligible, "eligibility lost at cash %.0f", cash)
		}
		wasEligible = res.Eligible
	}
	assert.True(t, wasEligible)
}

func TestCreditModel_PriceBelowWealth(t *testing.T) {
	s := testState(30000, 12000, 10, 80000, 20000)
	res := NewCreditModel().Apply(s, life.Goal{BuyingPrice: 100000})

	assert.Equal(t, 0.0, LoanAmountNeeded(s, life.Goal{BuyingPrice: 100000}))
	assert.True(t, res.Eligible)
}

func TestFormatEuro(t *testing.T) {
	assert.Equal(t, "400,000€", FormatEuro(400000))
	assert.Equal(t, "-12,501€", FormatEuro(-12500.5))
	assert.Equal(t, "0€", FormatEuro(0.2))
	assert.Equal(t, 0.3, RoundCurrency(0.1+0.2))
}
