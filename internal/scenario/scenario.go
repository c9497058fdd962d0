// Package scenario loads parameter baskets from YAML files and carries the
// built-in default basket. A scenario is pure configuration: the engine only
// ever sees the param.Set built from it.
package scenario

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/policylab/fiscalsim/internal/param"
)

// ParameterDef is one parameter entry in a scenario file.
type ParameterDef struct {
	Key           string  `yaml:"key" json:"key"`
	Name          string  `yaml:"name" json:"name"`
	Category      string  `yaml:"category" json:"category"`
	Mean          float64 `yaml:"mean" json:"mean"`
	StdDev        float64 `yaml:"std_dev" json:"std_dev"`
	ClampNegative *bool   `yaml:"clamp_negative,omitempty" json:"clamp_negative,omitempty"`
	Description   string  `yaml:"description,omitempty" json:"description,omitempty"`
	Source        string  `yaml:"source,omitempty" json:"source,omitempty"`
}

// Scenario is an ordered basket of cost and revenue parameters plus the
// budget threshold the basket is judged against.
type Scenario struct {
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Threshold   float64        `yaml:"threshold" json:"threshold"`
	Parameters  []ParameterDef `yaml:"parameters" json:"parameters"`
}

// Load reads a scenario from a YAML file.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "scenario: read %s", path)
	}

	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, eris.Wrapf(err, "scenario: parse %s", path)
	}
	if len(sc.Parameters) == 0 {
		return nil, eris.Errorf("scenario: %s defines no parameters", path)
	}
	return &sc, nil
}

// ParamSet builds the param.Set in file order. Definition errors (duplicate
// keys, bad categories, negative std_dev) surface from the param package.
func (sc *Scenario) ParamSet() (*param.Set, error) {
	set := param.NewSet()
	for _, def := range sc.Parameters {
		clamp := true
		if def.ClampNegative != nil {
			clamp = *def.ClampNegative
		}
		p := param.Parameter{
			Key:      def.Key,
			Name:     def.Name,
			Category: param.Category(def.Category),
			Distribution: param.Distribution{
				Kind:          param.KindNormal,
				Mean:          def.Mean,
				StdDev:        def.StdDev,
				ClampNegative: clamp,
			},
			Description: def.Description,
			Source:      def.Source,
		}
		if err := set.Add(p); err != nil {
			return nil, eris.Wrapf(err, "scenario %q", sc.Name)
		}
	}
	return set, nil
}

// Default returns the built-in basket: four policy cost parameters and one
// revenue parameter, annual figures in billions.
func Default() *Scenario {
	return &Scenario{
		Name:        "nyc-policy-basket",
		Description: "Annual cost of the proposed policy basket vs. new revenue, NYC budget context",
		Threshold:   2.0,
		Parameters: []ParameterDef{
			{
				Key:         "free_buses",
				Name:        "Free Public Transportation",
				Category:    string(param.Cost),
				Mean:        0.7,
				StdDev:      0.1,
				Description: "Free bus service for all residents",
				Source:      "Public estimates",
			},
			{
				Key:         "universal_childcare",
				Name:        "Universal Free Childcare",
				Category:    string(param.Cost),
				Mean:        6.0,
				StdDev:      1.0,
				Description: "Free childcare with increased wages for workers",
				Source:      "High-end estimates with wage increases",
			},
			{
				Key:         "affordable_housing",
				Name:        "Affordable Housing Program",
				Category:    string(param.Cost),
				Mean:        10.0,
				StdDev:      1.5,
				Description: "$100B over 10 years, union labor, 200K units",
				Source:      "Campaign proposal",
			},
			{
				Key:         "government_grocery_stores",
				Name:        "Government-Subsidized Grocery Stores",
				Category:    string(param.Cost),
				Mean:        0.075,
				StdDev:      0.025,
				Description: "Five government-run grocery stores, one per borough",
				Source:      "Estimated from similar programs",
			},
			{
				Key:         "tax_increases",
				Name:        "Tax Revenue Increases",
				Category:    string(param.Revenue),
				Mean:        10.0,
				StdDev:      1.5,
				Description: "2% tax on >$1M income plus corporate tax increase to 11.5%",
				Source:      "Campaign proposal",
			},
		},
	}
}

// Range returns the ±2σ estimate band for a parameter definition, floored
// at zero on the low side.
func (d ParameterDef) Range() (low, high float64) {
	low = d.Mean - 2*d.StdDev
	if low < 0 {
		low = 0
	}
	return low, d.Mean + 2*d.StdDev
}
