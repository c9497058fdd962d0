package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policylab/fiscalsim/internal/param"
)

func TestDefaultScenario(t *testing.T) {
	sc := Default()

	assert.Equal(t, 2.0, sc.Threshold)
	require.Len(t, sc.Parameters, 5)

	set, err := sc.ParamSet()
	require.NoError(t, err)
	assert.Equal(t, 5, set.Len())
	assert.Equal(t, 4, set.Count(param.Cost))
	assert.Equal(t, 1, set.Count(param.Revenue))
	assert.Equal(t, []string{
		"free_buses",
		"universal_childcare",
		"affordable_housing",
		"government_grocery_stores",
		"tax_increases",
	}, set.Keys())

	p, ok := set.Get("affordable_housing")
	require.True(t, ok)
	assert.Equal(t, 10.0, p.Distribution.Mean)
	assert.Equal(t, 1.5, p.Distribution.StdDev)
	assert.True(t, p.Distribution.ClampNegative)
}

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScenarioFile(t *testing.T) {
	path := writeScenario(t, `
name: pilot-basket
description: Two-parameter pilot
threshold: 1.5
parameters:
  - key: transit
    name: Free Transit
    category: cost
    mean: 0.7
    std_dev: 0.1
  - key: levy
    name: Parcel Levy
    category: revenue
    mean: 0.9
    std_dev: 0.2
    clamp_negative: false
    source: council estimate
`)

	sc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "pilot-basket", sc.Name)
	assert.Equal(t, 1.5, sc.Threshold)
	require.Len(t, sc.Parameters, 2)

	set, err := sc.ParamSet()
	require.NoError(t, err)

	transit, ok := set.Get("transit")
	require.True(t, ok)
	assert.True(t, transit.Distribution.ClampNegative, "clamp defaults on")

	levy, ok := set.Get("levy")
	require.True(t, ok)
	assert.False(t, levy.Distribution.ClampNegative)
	assert.Equal(t, "council estimate", levy.Source)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadScenarioInvalidYAML(t *testing.T) {
	path := writeScenario(t, "parameters: [not: {valid")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadScenarioNoParameters(t *testing.T) {
	path := writeScenario(t, "name: empty\nthreshold: 2.0\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestParamSetSurfacesDefinitionErrors(t *testing.T) {
	tests := []struct {
		name    string
		sc      Scenario
		wantErr error
	}{
		{
			"duplicate key",
			Scenario{Name: "dup", Parameters: []ParameterDef{
				{Key: "x", Category: "cost", Mean: 1, StdDev: 0.1},
				{Key: "x", Category: "cost", Mean: 2, StdDev: 0.1},
			}},
			param.ErrDuplicateName,
		},
		{
			"negative std dev",
			Scenario{Name: "bad", Parameters: []ParameterDef{
				{Key: "x", Category: "cost", Mean: 1, StdDev: -0.1},
			}},
			param.ErrInvalidDistribution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.sc.ParamSet()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParamSetRejectsUnknownCategory(t *testing.T) {
	sc := Scenario{Name: "bad", Parameters: []ParameterDef{
		{Key: "x", Category: "expense", Mean: 1, StdDev: 0.1},
	}}
	_, err := sc.ParamSet()
	assert.Error(t, err)
}

func TestParameterDefRange(t *testing.T) {
	low, high := ParameterDef{Mean: 6.0, StdDev: 1.0}.Range()
	assert.Equal(t, 4.0, low)
	assert.Equal(t, 8.0, high)

	// Low end floors at zero.
	low, high = ParameterDef{Mean: 0.075, StdDev: 0.1}.Range()
	assert.Equal(t, 0.0, low)
	assert.InDelta(t, 0.275, high, 1e-12)
}
