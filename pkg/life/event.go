package life

import (
	"fmt"

	"github.com/google/uuid"
)

// OccupationPatch overwrites the given occupation fields.
type OccupationPatch struct {
	Title        *string  `json:"occupationTitle,omitempty"`
	Description  *string  `json:"occupationDescription,omitempty"`
	YearlySalary *float64 `json:"yearlySalaryInEuro,omitempty"`
	StressLevel  *float64 `json:"stressLevelFrom0To100,omitempty"`
}

// PortfolioPatch overwrites the given portfolio components. Portfolio values
// are always absolute, never deltas.
type PortfolioPatch struct {
	Cash   *float64 `json:"cashInEuro,omitempty"`
	Crypto *float64 `json:"cryptoInEuro,omitempty"`
	ETF    *float64 `json:"etfInEuro,omitempty"`
}

// LivingPatch overwrites the given living fields.
type LivingPatch struct {
	Name       *string  `json:"name,omitempty"`
	Zip        *string  `json:"zip,omitempty"`
	YearlyRent *float64 `json:"yearlyRentInEuro,omitempty"`
	Size       *float64 `json:"sizeInSquareMeter,omitempty"`
}

// EventImpact is a sparse patch on a LifeState. A nil field has no effect.
// Whether a field is added or overwritten is decided by ImpactPolicy, not by
// its name.
type EventImpact struct {
	Occupation       *OccupationPatch `json:"changeInOccupancyModel"`
	Portfolio        *PortfolioPatch  `json:"newPortfolioModel"`
	Living           *LivingPatch     `json:"changeInLivingModel"`
	SavingsRate      *float64         `json:"changeInSavingsRateInPercent"`
	Children         *int             `json:"changeInAmountOfChildren"`
	EducationLevel   *string          `json:"newEducationLevel"`
	LifeSatisfaction *float64         `json:"changeInLifeSatisfactionFrom1To100"`
	Married          *bool            `json:"newMarried"`
}

// IsEmpty reports whether applying the impact would change nothing.
func (i *EventImpact) IsEmpty() bool {
	return i == nil || (i.Occupation == nil &&
		i.Portfolio == nil &&
		i.Living == nil &&
		i.SavingsRate == nil &&
		i.Children == nil &&
		i.EducationLevel == nil &&
		i.LifeSatisfaction == nil &&
		i.Married == nil)
}

// Clone returns a deep copy of the impact, or nil for a nil impact.
func (i *EventImpact) Clone() *EventImpact {
	if i == nil {
		return nil
	}
	c := &EventImpact{
		SavingsRate:      clonePtr(i.SavingsRate),
		Children:         clonePtr(i.Children),
		EducationLevel:   clonePtr(i.EducationLevel),
		LifeSatisfaction: clonePtr(i.LifeSatisfaction),
		Married:          clonePtr(i.Married),
	}
	if i.Occupation != nil {
		c.Occupation = &OccupationPatch{
			Title:        clonePtr(i.Occupation.Title),
			Description:  clonePtr(i.Occupation.Description),
			YearlySalary: clonePtr(i.Occupation.YearlySalary),
			StressLevel:  clonePtr(i.Occupation.StressLevel),
		}
	}
	if i.Portfolio != nil {
		c.Portfolio = &PortfolioPatch{
			Cash:   clonePtr(i.Portfolio.Cash),
			Crypto: clonePtr(i.Portfolio.Crypto),
			ETF:    clonePtr(i.Portfolio.ETF),
		}
	}
	if i.Living != nil {
		c.Living = &LivingPatch{
			Name:       clonePtr(i.Living.Name),
			Zip:        clonePtr(i.Living.Zip),
			YearlyRent: clonePtr(i.Living.YearlyRent),
			Size:       clonePtr(i.Living.Size),
		}
	}
	return c
}

// Event is a proposed life change. An event without a question is
// non-interactive and its Impact applies automatically.
type Event struct {
	ID                uuid.UUID    `json:"id"`
	Impact            EventImpact  `json:"impact"`
	AlternativeImpact *EventImpact `json:"alternativeImpact"`
	Description       string       `json:"eventDescription"`
	Question          *string      `json:"eventQuestion"`
	Emoji             string       `json:"emoji"`
	Year              int          `json:"year"`
	ChosenImpact      *EventImpact `json:"chosenImpact,omitempty"`
}

// IsInteractive reports whether the player must answer the event's question.
func (e Event) IsInteractive() bool {
	return e.Question != nil
}

// Clone returns a deep copy of the event.
func (e Event) Clone() Event {
	c := e
	c.Impact = *e.Impact.Clone()
	c.AlternativeImpact = e.AlternativeImpact.Clone()
	c.ChosenImpact = e.ChosenImpact.Clone()
	c.Question = clonePtr(e.Question)
	return c
}

// UserInput is a player-initiated change between turns. Occupation and living
// are replaced wholesale; portfolio merges only the given components.
type UserInput struct {
	NewOccupation  *Occupation     `json:"newOccupationModel"`
	NewPortfolio   *PortfolioPatch `json:"newPortfolioModel"`
	NewLiving      *Living         `json:"newLivingModel"`
	NewSavingsRate *float64        `json:"newSavingsRateInPercent"`
}

// Validate rejects values that would put the state outside its ranges.
func (u UserInput) Validate() error {
	if u.NewSavingsRate != nil && (*u.NewSavingsRate < 0 || *u.NewSavingsRate > 100) {
		return fmt.Errorf("savings rate must be within 0-100, got %.1f", *u.NewSavingsRate)
	}
	if u.NewOccupation != nil {
		if u.NewOccupation.YearlySalary < 0 {
			return fmt.Errorf("yearly salary must be >= 0, got %.2f", u.NewOccupation.YearlySalary)
		}
		if u.NewOccupation.StressLevel < 0 || u.NewOccupation.StressLevel > 100 {
			return fmt.Errorf("stress level must be within 0-100, got %.1f", u.NewOccupation.StressLevel)
		}
	}
	if u.NewLiving != nil {
		if u.NewLiving.YearlyRent < 0 {
			return fmt.Errorf("yearly rent must be >= 0, got %.2f", u.NewLiving.YearlyRent)
		}
		if u.NewLiving.Size <= 0 {
			return fmt.Errorf("living size must be > 0, got %.1f", u.NewLiving.Size)
		}
	}
	if p := u.NewPortfolio; p != nil {
		if (p.Crypto != nil && *p.Crypto < 0) || (p.ETF != nil && *p.ETF < 0) {
			return fmt.Errorf("crypto and etf holdings must be >= 0")
		}
	}
	return nil
}

// asImpact expresses the input as a patch so it goes through the same merge
// routine as event impacts.
func (u UserInput) asImpact() *EventImpact {
	imp := &EventImpact{
		Portfolio:   u.NewPortfolio,
		SavingsRate: u.NewSavingsRate,
	}
	if o := u.NewOccupation; o != nil {
		imp.Occupation = &OccupationPatch{
			Title:        &o.Title,
			Description:  &o.Description,
			YearlySalary: &o.YearlySalary,
			StressLevel:  &o.StressLevel,
		}
	}
	if l := u.NewLiving; l != nil {
		imp.Living = &LivingPatch{
			Name:       &l.Name,
			Zip:        &l.Zip,
			YearlyRent: &l.YearlyRent,
			Size:       &l.Size,
		}
	}
	return imp
}

// Ptr returns a pointer to v. Handy for building sparse patches.
func Ptr[T any](v T) *T {
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
