package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/life-engine/internal/profile"
	"github.com/jwebster45206/life-engine/pkg/finance"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <profile.yaml> [profile.yaml...]\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		validator := &ProfileValidator{}
		if err := validator.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		for _, w := range validator.warnings {
			fmt.Printf("Warning: %s\n", w)
		}
		fmt.Printf("%s is valid!\n", filename)
	}

	if failed {
		os.Exit(1)
	}
}

type ProfileValidator struct {
	errors   []string
	warnings []string
}

func (v *ProfileValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	ext := filepath.Ext(baseName)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("profile file must have .yaml extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ext)
	if !isValidProfileFilename(nameWithoutExt) {
		return fmt.Errorf("profile filename '%s' must be lowercase snake_case (e.g., young_family.yaml)", baseName)
	}

	v.errors = nil
	v.warnings = nil

	p, err := profile.Load(filename)
	if err != nil {
		return err
	}

	v.validateProfile(p)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

// validateProfile adds the checks that go beyond the engine's range checks.
func (v *ProfileValidator) validateProfile(p *profile.Profile) {
	if strings.TrimSpace(p.Name) == "" {
		v.addError("name is required")
	}
	if p.Living.Zip != "" && !isValidZip(p.Living.Zip) {
		v.addError(fmt.Sprintf("living zip '%s' should be a 5-digit postal code", p.Living.Zip))
	}
	if p.Goal.Zip != "" && !isValidZip(p.Goal.Zip) {
		v.addError(fmt.Sprintf("goal zip '%s' should be a 5-digit postal code", p.Goal.Zip))
	}
	if p.Goal.WishedChildren < p.Children {
		v.addWarning(fmt.Sprintf("wished children (%d) is below current children (%d)", p.Goal.WishedChildren, p.Children))
	}

	state := p.StartState()
	if state.Living.YearlyRent > state.Occupation.YearlySalary {
		v.addWarning("yearly rent exceeds yearly salary; cash will go negative")
	}
	if state.Portfolio.Total() >= p.Goal.BuyingPrice {
		v.addWarning(fmt.Sprintf("starting wealth %s already covers the goal price %s; the game ends after one year",
			finance.FormatEuro(state.Portfolio.Total()), finance.FormatEuro(p.Goal.BuyingPrice)))
	}
}

func (v *ProfileValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

func (v *ProfileValidator) addWarning(msg string) {
	v.warnings = append(v.warnings, msg)
}

var (
	validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
	validZipRegex      = regexp.MustCompile(`^[0-9]{5}$`)
)

func isValidProfileFilename(name string) bool {
	return validFilenameRegex.MatchString(name)
}

func isValidZip(zip string) bool {
	return validZipRegex.MatchString(zip)
}
