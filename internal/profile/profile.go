// Package profile loads start profiles: a starting life situation and the
// housing goal, stored as YAML so they can be edited by hand.
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/life-engine/pkg/life"
)

type Occupation struct {
	Title        string  `yaml:"title"`
	Description  string  `yaml:"description"`
	YearlySalary float64 `yaml:"yearlySalary"`
	StressLevel  float64 `yaml:"stressLevel"`
}

type Portfolio struct {
	Cash   float64 `yaml:"cash"`
	Crypto float64 `yaml:"crypto"`
	ETF    float64 `yaml:"etf"`
}

type Living struct {
	Name       string  `yaml:"name"`
	Zip        string  `yaml:"zip"`
	YearlyRent float64 `yaml:"yearlyRent"`
	Size       float64 `yaml:"size"`
}

type Goal struct {
	BuyingPrice    float64 `yaml:"buyingPrice"`
	Zip            string  `yaml:"zip"`
	Rooms          int     `yaml:"rooms"`
	SquareMeters   float64 `yaml:"squareMeters"`
	WishedChildren int     `yaml:"wishedChildren"`
	EstateType     string  `yaml:"estateType"`
}

// Profile is the on-disk shape of a start profile.
type Profile struct {
	Name        string     `yaml:"name"`
	Age         int        `yaml:"age"`
	Occupation  Occupation `yaml:"occupation"`
	Portfolio   Portfolio  `yaml:"portfolio"`
	Living      Living     `yaml:"living"`
	SavingsRate float64    `yaml:"savingsRate"`
	Children    int        `yaml:"children"`
	Married     bool       `yaml:"married"`
	Goal        Goal       `yaml:"goal"`
}

// Load reads and validates the profile at path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a profile strictly: unknown keys are errors.
func Parse(data []byte) (*Profile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Profile
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks both the start state and the goal.
func (p *Profile) Validate() error {
	var errs []error
	if err := p.StartState().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("start state: %w", err))
	}
	if err := p.LifeGoal().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("goal: %w", err))
	}
	return errors.Join(errs...)
}

// StartState converts the profile into the engine's start record.
func (p *Profile) StartState() life.StartState {
	return life.StartState{
		Age: p.Age,
		Occupation: life.Occupation{
			Title:        p.Occupation.Title,
			Description:  p.Occupation.Description,
			YearlySalary: p.Occupation.YearlySalary,
			StressLevel:  p.Occupation.StressLevel,
		},
		Portfolio: life.Portfolio{
			Cash:   p.Portfolio.Cash,
			Crypto: p.Portfolio.Crypto,
			ETF:    p.Portfolio.ETF,
		},
		Living: life.Living{
			Name:       p.Living.Name,
			Zip:        p.Living.Zip,
			YearlyRent: p.Living.YearlyRent,
			Size:       p.Living.Size,
		},
		SavingsRatePercent: p.SavingsRate,
		AmountOfChildren:   p.Children,
		Married:            p.Married,
	}
}

// LifeGoal converts the profile's goal block.
func (p *Profile) LifeGoal() life.Goal {
	return life.Goal{
		BuyingPrice:          p.Goal.BuyingPrice,
		Zip:                  p.Goal.Zip,
		Rooms:                p.Goal.Rooms,
		SquareMeters:         p.Goal.SquareMeters,
		NumberWishedChildren: p.Goal.WishedChildren,
		EstateType:           life.EstateType(strings.ToLower(p.Goal.EstateType)),
	}
}
