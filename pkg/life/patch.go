package life

// Field names one attribute group of a LifeState that a patch can touch.
type Field string

const (
	FieldOccupation       Field = "occupation"
	FieldPortfolio        Field = "portfolio"
	FieldLiving           Field = "living"
	FieldSavingsRate      Field = "savingsRate"
	FieldChildren         Field = "children"
	FieldEducationLevel   Field = "educationLevel"
	FieldLifeSatisfaction Field = "lifeSatisfaction"
	FieldMarried          Field = "married"
)

// Mode says how a patch value combines with the current value.
type Mode int

const (
	// Absolute overwrites the current value.
	Absolute Mode = iota
	// Delta is added to the current value. Only meaningful for numbers.
	Delta
)

func (m Mode) String() string {
	if m == Delta {
		return "delta"
	}
	return "absolute"
}

// Policy maps each field to its merge mode. Fields missing from a policy
// are treated as Absolute.
type Policy map[Field]Mode

// ImpactPolicy is the merge table for event impacts. Portfolio is absolute
// even though the other money-like counters are deltas; providers are told
// the same in their prompt.
var ImpactPolicy = Policy{
	FieldOccupation:       Absolute,
	FieldPortfolio:        Absolute,
	FieldLiving:           Absolute,
	FieldSavingsRate:      Delta,
	FieldChildren:         Delta,
	FieldEducationLevel:   Absolute,
	FieldLifeSatisfaction: Delta,
	FieldMarried:          Absolute,
}

// UserInputPolicy is the merge table for player actions: every value the
// player sets replaces the current one.
var UserInputPolicy = Policy{
	FieldOccupation:  Absolute,
	FieldPortfolio:   Absolute,
	FieldLiving:      Absolute,
	FieldSavingsRate: Absolute,
}

// ApplyImpact merges an event impact into s. A nil impact is a no-op.
func ApplyImpact(s *LifeState, imp *EventImpact) {
	applyPatch(s, imp, ImpactPolicy)
}

// ApplyUserInput merges a player action into s.
func ApplyUserInput(s *LifeState, in UserInput) {
	applyPatch(s, in.asImpact(), UserInputPolicy)
}

// applyPatch is the single merge routine for every sparse patch.
func applyPatch(s *LifeState, p *EventImpact, policy Policy) {
	if s == nil || p == nil {
		return
	}

	if o := p.Occupation; o != nil {
		mode := policy[FieldOccupation]
		s.Occupation.Title = mergeString(s.Occupation.Title, o.Title)
		s.Occupation.Description = mergeString(s.Occupation.Description, o.Description)
		s.Occupation.YearlySalary = mergeNumber(mode, s.Occupation.YearlySalary, o.YearlySalary)
		s.Occupation.StressLevel = mergeNumber(mode, s.Occupation.StressLevel, o.StressLevel)
	}

	if pf := p.Portfolio; pf != nil {
		mode := policy[FieldPortfolio]
		s.Portfolio.Cash = mergeNumber(mode, s.Portfolio.Cash, pf.Cash)
		s.Portfolio.Crypto = mergeNumber(mode, s.Portfolio.Crypto, pf.Crypto)
		s.Portfolio.ETF = mergeNumber(mode, s.Portfolio.ETF, pf.ETF)
	}

	if l := p.Living; l != nil {
		mode := policy[FieldLiving]
		s.Living.Name = mergeString(s.Living.Name, l.Name)
		s.Living.Zip = mergeString(s.Living.Zip, l.Zip)
		s.Living.YearlyRent = mergeNumber(mode, s.Living.YearlyRent, l.YearlyRent)
		if size := mergeNumber(mode, s.Living.Size, l.Size); size > 0 {
			s.Living.Size = size
		}
	}

	s.SavingsRatePercent = mergeNumber(policy[FieldSavingsRate], s.SavingsRatePercent, p.SavingsRate)
	s.AmountOfChildren = mergeNumber(policy[FieldChildren], s.AmountOfChildren, p.Children)
	s.EducationLevel = mergeString(s.EducationLevel, p.EducationLevel)
	s.LifeSatisfaction = mergeNumber(policy[FieldLifeSatisfaction], s.LifeSatisfaction, p.LifeSatisfaction)
	if p.Married != nil {
		s.Married = *p.Married
	}

	clampState(s)
}

func mergeNumber[T int | float64](mode Mode, cur T, v *T) T {
	if v == nil {
		return cur
	}
	if mode == Delta {
		return cur + *v
	}
	return *v
}

func mergeString(cur string, v *string) string {
	if v == nil {
		return cur
	}
	return *v
}

// clampState pulls every bounded attribute back into its range. Cash is left
// alone: a negative balance is debt.
func clampState(s *LifeState) {
	s.Occupation.YearlySalary = max(0, s.Occupation.YearlySalary)
	s.Occupation.StressLevel = clamp(s.Occupation.StressLevel, 0, 100)
	s.Portfolio.Crypto = max(0, s.Portfolio.Crypto)
	s.Portfolio.ETF = max(0, s.Portfolio.ETF)
	s.Living.YearlyRent = max(0, s.Living.YearlyRent)
	s.SavingsRatePercent = clamp(s.SavingsRatePercent, 0, 100)
	s.AmountOfChildren = max(0, s.AmountOfChildren)
	s.LifeSatisfaction = clamp(s.LifeSatisfaction, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	return min(hi, max(lo, v))
}
