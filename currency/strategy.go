package currency

import (
	"github.com/juju/errors"
)

// ChangeStrategy assembles an exact change set from held nominals.
// Implementations receive a private copy of the group and may consume
// its counts freely.
type ChangeStrategy interface {
	Name() string
	MakeChange(from *NominalGroup, a Amount) (Cash, error)
}

func StrategyByName(name string) (ChangeStrategy, error) {
	switch name {
	case "", "greedy":
		return GreedyLargestFirst{}, nil
	case "fewest":
		return FewestCoins{}, nil
	}
	return nil, errors.Errorf("change_strategy=%s is not known", name)
}

// GreedyLargestFirst is a bounded greedy pass: nominals in descending
// value order, at each step take min(held, remaining/nominal).
// It is not complete: with scarce supply it can miss combinations a
// smarter search would find (held={0.20:1,0.05:1} cannot pay 0.10 at
// all, and some payable amounts need non-greedy picks). Failures are
// reported, never silently approximated.
type GreedyLargestFirst struct{}

func (GreedyLargestFirst) Name() string { return "greedy" }

func (GreedyLargestFirst) MakeChange(from *NominalGroup, a Amount) (Cash, error) {
	change := make(Cash)
	remaining := a
	for _, nominal := range from.nominalsDesc() {
		if remaining == 0 {
			break
		}
		held := from.values[nominal]
		if held == 0 || Amount(nominal) > remaining {
			continue
		}
		take := uint(remaining / Amount(nominal))
		if take > held {
			take = held
		}
		if take > 0 {
			change[nominal] = int(take)
			remaining -= Amount(nominal) * Amount(take)
		}
	}
	if remaining > 0 {
		return nil, errors.Annotatef(ErrNominalCount, "greedy remaining=%s of %s", remaining.Format100I(), a.Format100I())
	}
	return change, nil
}

// FewestCoins is exact bounded change-making: dynamic programming over
// minor units with per-nominal count limits, minimizing the number of
// units dispensed. Succeeds whenever any combination of held nominals
// sums to the amount. Costs O(amount * held units) time and
// O(amount * distinct nominals) memory, fine for till-sized amounts.
type FewestCoins struct{}

func (FewestCoins) Name() string { return "fewest" }

const fewestInf = int32(1) << 30

func (FewestCoins) MakeChange(from *NominalGroup, a Amount) (Cash, error) {
	nominals := from.nominalsDesc()
	width := int(a) + 1

	// dp[x] = fewest units summing to x using nominals seen so far
	dp := make([]int32, width)
	for x := 1; x < width; x++ {
		dp[x] = fewestInf
	}
	// used[i][x] = units of nominals[i] in the best solution for x
	used := make([][]uint16, len(nominals))

	for i, nominal := range nominals {
		v := int(nominal)
		held := int(from.values[nominal])
		next := make([]int32, width)
		usedRow := make([]uint16, width)
		for x := 0; x < width; x++ {
			best, bestK := dp[x], 0
			maxK := x / v
			if maxK > held {
				maxK = held
			}
			for k := 1; k <= maxK; k++ {
				if c := dp[x-k*v]; c != fewestInf && c+int32(k) < best {
					best, bestK = c+int32(k), k
				}
			}
			next[x] = best
			usedRow[x] = uint16(bestK)
		}
		dp = next
		used[i] = usedRow
	}

	if dp[a] == fewestInf {
		return nil, errors.Annotatef(ErrNominalCount, "fewest no combination for %s", a.Format100I())
	}

	change := make(Cash)
	x := int(a)
	for i := len(nominals) - 1; i >= 0; i-- {
		if k := int(used[i][x]); k > 0 {
			change[nominals[i]] = k
			x -= k * int(nominals[i])
		}
	}
	return change, nil
}
