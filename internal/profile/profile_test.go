package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/life-engine/pkg/life"
)

const validProfile = `
name: test
age: 30
occupation:
  title: Librarian
  description: Primary school
  yearlySalary: 52000
  stressLevel: 40
portfolio:
  cash: 15000
  etf: 5000
living:
  name: Flat
  zip: "10115"
  yearlyRent: 12000
  size: 60
savingsRate: 15
children: 1
married: true
goal:
  buyingPrice: 380000
  zip: "10117"
  rooms: 4
  squareMeters: 100
  wishedChildren: 2
  estateType: House
`

func TestParse(t *testing.T) {
	p, err := Parse([]byte(validProfile))
	require.NoError(t, err)

	start := p.StartState()
	assert.Equal(t, 30, start.Age)
	assert.Equal(t, "Librarian", start.Occupation.Title)
	assert.Equal(t, 52000.0, start.Occupation.YearlySalary)
	assert.Equal(t, life.Portfolio{Cash: 15000, ETF: 5000}, start.Portfolio)
	assert.Equal(t, "10115", start.Living.Zip)
	assert.Equal(t, 15.0, start.SavingsRatePercent)
	assert.Equal(t, 1, start.AmountOfChildren)
	assert.True(t, start.Married)

	goal := p.LifeGoal()
	assert.Equal(t, life.EstateHouse, goal.EstateType, "estate type is case-insensitive")
	assert.Equal(t, 380000.0, goal.BuyingPrice)
	assert.Equal(t, 2, goal.NumberWishedChildren)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown field",
			yaml:    validProfile + "pets: 3\n",
			wantErr: "pets",
		},
		{
			name:    "malformed yaml",
			yaml:    "age: [",
			wantErr: "failed to parse profile",
		},
		{
			name:    "invalid start state",
			yaml:    "age: -1\nliving:\n  size: 50\ngoal:\n  buyingPrice: 1\n  rooms: 1\n  squareMeters: 1\n  estateType: house\n",
			wantErr: "start state: age must be >= 0",
		},
		{
			name:    "invalid goal",
			yaml:    "age: 30\nliving:\n  size: 50\ngoal:\n  rooms: 1\n  squareMeters: 1\n  estateType: castle\n",
			wantErr: "goal:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validProfile), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test", p.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBundledProfilesAreValid(t *testing.T) {
	paths, err := filepath.Glob("../../data/profiles/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			_, err := Load(path)
			assert.NoError(t, err)
		})
	}
}
