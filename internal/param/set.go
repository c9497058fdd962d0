package param

import (
	"iter"

	"github.com/rotisserie/eris"
)

// ErrDuplicateName is returned when a parameter key collides with one
// already in the set.
var ErrDuplicateName = eris.New("duplicate parameter name")

// Category partitions parameters into budget sides.
type Category string

const (
	// Cost parameters add to total annual cost.
	Cost Category = "cost"
	// Revenue parameters offset cost in the net budget impact.
	Revenue Category = "revenue"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c == Cost || c == Revenue
}

// Parameter is one named random input: a policy cost or a revenue source
// with its uncertainty distribution. Parameters are built once at
// configuration time and never mutated.
type Parameter struct {
	// Key is the stable identifier, unique within a Set. It names the
	// parameter's column in the scenario sample.
	Key string `json:"key"`
	// Name is the human-readable label used by report layers.
	Name         string       `json:"name"`
	Category     Category     `json:"category"`
	Distribution Distribution `json:"distribution"`
	Description  string       `json:"description,omitempty"`
	Source       string       `json:"source,omitempty"`
}

// Set is an ordered collection of parameters. Insertion order defines
// column order in the scenario sample and therefore report order; it has no
// effect on statistical results. Sets grow by Add only; there is no removal
// or mutation, so a built Set is safe to share across engine calls.
type Set struct {
	params []Parameter
	byKey  map[string]int
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{byKey: make(map[string]int)}
}

// Add appends a parameter in insertion order. It fails with
// ErrDuplicateName if the key is taken and ErrInvalidDistribution if the
// distribution is malformed.
func (s *Set) Add(p Parameter) error {
	if p.Key == "" {
		return eris.New("param: key is required")
	}
	if !p.Category.Valid() {
		return eris.Errorf("param: unknown category %q for %q", p.Category, p.Key)
	}
	if _, ok := s.byKey[p.Key]; ok {
		return eris.Wrapf(ErrDuplicateName, "key %q", p.Key)
	}
	if err := p.Distribution.Validate(); err != nil {
		return eris.Wrapf(err, "key %q", p.Key)
	}

	s.byKey[p.Key] = len(s.params)
	s.params = append(s.params, p)
	return nil
}

// Len returns the number of parameters.
func (s *Set) Len() int { return len(s.params) }

// Get looks a parameter up by key.
func (s *Set) Get(key string) (Parameter, bool) {
	i, ok := s.byKey[key]
	if !ok {
		return Parameter{}, false
	}
	return s.params[i], true
}

// All iterates over every parameter in insertion order. The sequence is
// restartable: each range restarts from the first parameter.
func (s *Set) All() iter.Seq[Parameter] {
	return func(yield func(Parameter) bool) {
		for _, p := range s.params {
			if !yield(p) {
				return
			}
		}
	}
}

// ByCategory iterates over the parameters of one category in insertion
// order.
func (s *Set) ByCategory(c Category) iter.Seq[Parameter] {
	return func(yield func(Parameter) bool) {
		for _, p := range s.params {
			if p.Category != c {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// Keys returns the parameter keys in insertion order.
func (s *Set) Keys() []string {
	keys := make([]string, len(s.params))
	for i, p := range s.params {
		keys[i] = p.Key
	}
	return keys
}

// Count returns the number of parameters in a category.
func (s *Set) Count(c Category) int {
	n := 0
	for _, p := range s.params {
		if p.Category == c {
			n++
		}
	}
	return n
}
