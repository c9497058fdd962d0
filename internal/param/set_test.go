package param

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSet(t *testing.T) *Set {
	t.Helper()
	s := NewSet()
	require.NoError(t, s.Add(Parameter{Key: "transit", Name: "Free Transit", Category: Cost, Distribution: Normal(0.7, 0.1)}))
	require.NoError(t, s.Add(Parameter{Key: "childcare", Name: "Childcare", Category: Cost, Distribution: Normal(6.0, 1.0)}))
	require.NoError(t, s.Add(Parameter{Key: "taxes", Name: "Tax Revenue", Category: Revenue, Distribution: Normal(10.0, 1.5)}))
	require.NoError(t, s.Add(Parameter{Key: "housing", Name: "Housing", Category: Cost, Distribution: Normal(10.0, 1.5)}))
	return s
}

func TestSetAddDuplicateKey(t *testing.T) {
	s := testSet(t)
	err := s.Add(Parameter{Key: "transit", Category: Cost, Distribution: Normal(1, 0.1)})
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Equal(t, 4, s.Len())
}

func TestSetAddInvalidDistribution(t *testing.T) {
	s := NewSet()
	err := s.Add(Parameter{Key: "bad", Category: Cost, Distribution: Normal(1, -0.1)})
	assert.ErrorIs(t, err, ErrInvalidDistribution)
	assert.Equal(t, 0, s.Len())
}

func TestSetAddValidation(t *testing.T) {
	s := NewSet()
	assert.Error(t, s.Add(Parameter{Category: Cost, Distribution: Normal(1, 1)}), "missing key")
	assert.Error(t, s.Add(Parameter{Key: "x", Category: "expense", Distribution: Normal(1, 1)}), "unknown category")
}

func TestSetInsertionOrder(t *testing.T) {
	s := testSet(t)
	assert.Equal(t, []string{"transit", "childcare", "taxes", "housing"}, s.Keys())
}

func TestSetByCategoryKeepsInsertionOrder(t *testing.T) {
	s := testSet(t)

	var costs []string
	for p := range s.ByCategory(Cost) {
		costs = append(costs, p.Key)
	}
	assert.Equal(t, []string{"transit", "childcare", "housing"}, costs)

	var revenues []string
	for p := range s.ByCategory(Revenue) {
		revenues = append(revenues, p.Key)
	}
	assert.Equal(t, []string{"taxes"}, revenues)
}

func TestSetByCategoryIsRestartable(t *testing.T) {
	s := testSet(t)
	seq := s.ByCategory(Cost)

	for pass := 0; pass < 2; pass++ {
		n := 0
		for range seq {
			n++
		}
		assert.Equal(t, 3, n, "pass %d", pass)
	}
}

func TestSetGetAndCount(t *testing.T) {
	s := testSet(t)

	p, ok := s.Get("childcare")
	require.True(t, ok)
	assert.Equal(t, "Childcare", p.Name)

	_, ok = s.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, 3, s.Count(Cost))
	assert.Equal(t, 1, s.Count(Revenue))
}
