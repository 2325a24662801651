package currency

import (
	"math"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendcore/vendcore/helpers"
)

func mustGroup(t testing.TB, c Cash) *NominalGroup {
	ng, err := FromCash(c)
	require.NoError(t, err)
	return ng
}

func TestAdd(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		ng := NewNominalGroup()
		require.NoError(t, ng.Add(Cash{100: 2, 50: 1}))
		assert.Equal(t, uint(2), ng.Get(100))
		assert.Equal(t, uint(1), ng.Get(50))
		assert.Equal(t, Amount(250), ng.Total())
	})

	t.Run("nil", func(t *testing.T) {
		ng := NewNominalGroup()
		err := ng.Add(nil)
		assert.Equal(t, ErrCashNil, errors.Cause(err))
		assert.Equal(t, Amount(0), ng.Total())
	})

	t.Run("skip-nonpositive-counts", func(t *testing.T) {
		ng := NewNominalGroup()
		require.NoError(t, ng.Add(Cash{100: 0, 50: -3, 25: 2}))
		assert.Equal(t, uint(0), ng.Get(100))
		assert.Equal(t, uint(0), ng.Get(50))
		assert.Equal(t, Amount(50), ng.Total())
	})

	t.Run("invalid-nominal", func(t *testing.T) {
		ng := NewNominalGroup()
		err := ng.Add(Cash{0: 1})
		assert.Equal(t, ErrNominalInvalid, errors.Cause(err))
		err = ng.Add(Cash{-5: 1, 100: 1})
		assert.Equal(t, ErrNominalInvalid, errors.Cause(err))
		// validation precedes mutation
		assert.Equal(t, Amount(0), ng.Total())
	})

	t.Run("accumulate", func(t *testing.T) {
		ng := mustGroup(t, Cash{100: 1})
		require.NoError(t, ng.Add(Cash{100: 2}))
		assert.Equal(t, uint(3), ng.Get(100))
	})
}

func TestSub(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		ng := mustGroup(t, Cash{100: 3, 50: 2})
		require.NoError(t, ng.Sub(Cash{100: 1, 50: 1}))
		assert.Equal(t, uint(2), ng.Get(100))
		assert.Equal(t, uint(1), ng.Get(50))
	})

	t.Run("nil", func(t *testing.T) {
		ng := mustGroup(t, Cash{100: 1})
		err := ng.Sub(nil)
		assert.Equal(t, ErrCashNil, errors.Cause(err))
		assert.Equal(t, Amount(100), ng.Total())
	})

	t.Run("all-or-nothing", func(t *testing.T) {
		ng := mustGroup(t, Cash{100: 3, 50: 1, 25: 4})
		before := ng.String()
		err := ng.Sub(Cash{100: 2, 50: 2}) // 50 is short
		assert.Equal(t, ErrNominalCount, errors.Cause(err))
		assert.Equal(t, before, ng.String())
		assert.Equal(t, uint(3), ng.Get(100))
	})

	t.Run("skip-nonpositive-counts", func(t *testing.T) {
		ng := mustGroup(t, Cash{100: 1})
		require.NoError(t, ng.Sub(Cash{100: 0, 50: -1}))
		assert.Equal(t, uint(1), ng.Get(100))
	})

	t.Run("absent-nominal", func(t *testing.T) {
		ng := mustGroup(t, Cash{100: 1})
		err := ng.Sub(Cash{25: 1})
		assert.Equal(t, ErrNominalCount, errors.Cause(err))
	})
}

func TestTotalClear(t *testing.T) {
	t.Parallel()

	ng := NewNominalGroup()
	assert.Equal(t, Amount(0), ng.Total())

	require.NoError(t, ng.Add(Cash{100: 2, 25: 3}))
	assert.Equal(t, Amount(275), ng.Total())

	ng.Clear()
	assert.Equal(t, Amount(0), ng.Total())
	assert.Len(t, ng.CashMap(), 0)
}

// No value is created or destroyed by any sequence of valid Add/Sub.
func TestConservation(t *testing.T) {
	t.Parallel()

	rnd := helpers.RandUnix()
	nominals := []Nominal{1, 5, 10, 25, 50, 100, 500}
	ng := NewNominalGroup()
	expected := Amount(0)
	for i := 0; i < 1000; i++ {
		c := make(Cash)
		for _, n := range nominals {
			if rnd.Intn(2) == 1 {
				c[n] = rnd.Intn(5)
			}
		}
		if rnd.Intn(3) > 0 {
			require.NoError(t, ng.Add(c))
			expected += c.Total()
		} else {
			if err := ng.Sub(c); err == nil {
				expected -= c.Total()
			}
			// failed Sub must not move the total either
		}
		require.Equal(t, expected, ng.Total(), "step=%d cash=%s", i, c.String())
	}
}

func TestMakeChangeGreedy(t *testing.T) {
	t.Parallel()

	t.Run("negative", func(t *testing.T) {
		ng := mustGroup(t, Cash{100: 1})
		_, err := ng.MakeChange(-1, nil)
		assert.Equal(t, ErrAmountNegative, errors.Cause(err))
	})

	t.Run("zero", func(t *testing.T) {
		ng := NewNominalGroup()
		change, err := ng.MakeChange(0, nil)
		require.NoError(t, err)
		assert.Len(t, change, 0)
	})

	t.Run("exact-tail", func(t *testing.T) {
		// no 1.00 held, 0.20 then 0.05 match exactly
		ng := mustGroup(t, Cash{100: 0, 20: 1, 5: 1})
		change, err := ng.MakeChange(25, nil)
		require.NoError(t, err)
		assert.Equal(t, Cash{20: 1, 5: 1}, change)
	})

	t.Run("impossible", func(t *testing.T) {
		ng := mustGroup(t, Cash{20: 1, 5: 1})
		before := ng.String()
		_, err := ng.MakeChange(10, nil)
		assert.Equal(t, ErrNominalCount, errors.Cause(err))
		assert.Equal(t, before, ng.String())
	})

	t.Run("no-mutation-on-success", func(t *testing.T) {
		ng := mustGroup(t, Cash{100: 2, 25: 4})
		before := ng.String()
		_, err := ng.MakeChange(150, nil)
		require.NoError(t, err)
		assert.Equal(t, before, ng.String())
	})

	t.Run("sum-and-bounds", func(t *testing.T) {
		held := Cash{500: 1, 100: 3, 25: 7, 10: 2, 5: 9}
		ng := mustGroup(t, held)
		for _, a := range []Amount{5, 15, 125, 250, 777, ng.Total()} {
			change, err := ng.MakeChange(a, nil)
			if err != nil {
				continue
			}
			assert.Equal(t, a, change.Total(), "amount=%s change=%s", a.Format100I(), change.String())
			for n, count := range change {
				assert.LessOrEqual(t, count, held[n], "nominal=%s", Amount(n).Format100I())
			}
		}
	})
}

func TestMakeChangeFewest(t *testing.T) {
	t.Parallel()

	t.Run("beats-greedy", func(t *testing.T) {
		// greedy spends the 0.25 and strands 0.35
		ng := mustGroup(t, Cash{25: 1, 20: 3})
		_, err := ng.MakeChange(60, GreedyLargestFirst{})
		assert.Equal(t, ErrNominalCount, errors.Cause(err))

		change, err := ng.MakeChange(60, FewestCoins{})
		require.NoError(t, err)
		assert.Equal(t, Cash{20: 3}, change)
	})

	t.Run("minimal-count", func(t *testing.T) {
		ng := mustGroup(t, Cash{25: 2, 10: 5, 5: 5})
		change, err := ng.MakeChange(30, FewestCoins{})
		require.NoError(t, err)
		units := 0
		for _, count := range change {
			units += count
		}
		assert.Equal(t, 2, units, "change=%s", change.String())
		assert.Equal(t, Amount(30), change.Total())
	})

	t.Run("impossible", func(t *testing.T) {
		ng := mustGroup(t, Cash{20: 1, 5: 1})
		_, err := ng.MakeChange(10, FewestCoins{})
		assert.Equal(t, ErrNominalCount, errors.Cause(err))
	})

	t.Run("agrees-with-greedy-sum", func(t *testing.T) {
		rnd := helpers.RandUnix()
		for i := 0; i < 200; i++ {
			ng := mustGroup(t, Cash{
				100: rnd.Intn(4),
				50:  rnd.Intn(4),
				25:  rnd.Intn(4),
				10:  rnd.Intn(4),
				5:   rnd.Intn(4),
			})
			a := Amount(rnd.Intn(int(ng.Total()) + 1))
			greedyChange, greedyErr := ng.MakeChange(a, GreedyLargestFirst{})
			fewestChange, fewestErr := ng.MakeChange(a, FewestCoins{})
			if greedyErr == nil {
				// fewest is complete, it must also succeed
				require.NoError(t, fewestErr, "held=%s amount=%s", ng.String(), a.Format100I())
				assert.Equal(t, a, greedyChange.Total())
				assert.Equal(t, a, fewestChange.Total())
			}
		}
	})
}

func TestStrategyByName(t *testing.T) {
	t.Parallel()

	s, err := StrategyByName("")
	require.NoError(t, err)
	assert.Equal(t, "greedy", s.Name())

	s, err = StrategyByName("fewest")
	require.NoError(t, err)
	assert.Equal(t, "fewest", s.Name())

	_, err = StrategyByName("dynamic")
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input    string
		expect   Amount
		expectOk bool
	}{
		{"1.50", 150, true},
		{"2", 200, true},
		{".25", 25, true},
		{"0.5", 50, true},
		{"-1.25", -125, true},
		{"0", 0, true},
		{"21474836.47", math.MaxInt32, true},
		{"21474836.48", 0, false},
		{"42949673.00", 0, false},
		{"1.505", 0, false},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, c := range cases {
		a, err := ParseAmount(c.input)
		if c.expectOk {
			assert.NoError(t, err, "input=%q", c.input)
			assert.Equal(t, c.expect, a, "input=%q", c.input)
		} else {
			assert.Error(t, err, "input=%q", c.input)
		}
	}
}

func TestContains(t *testing.T) {
	t.Parallel()

	ng := mustGroup(t, Cash{10: 2, 5: 1, 2: 1, 1: 3})
	assert.True(t, ng.Contains(0))
	assert.True(t, ng.Contains(17))
	assert.False(t, ng.Contains(200))
}
