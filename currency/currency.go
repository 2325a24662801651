package currency

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

// Amount is integer counting lowest currency unit, e.g. $1.20 = 120
type Amount int32

func (a Amount) Format100I() string { return fmt.Sprint(float32(a) / 100) }

// ParseAmount reads a decimal value like "1.50" into minor units.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if s == "" {
		return 0, errors.Errorf("amount=(empty) is not valid")
	}
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if len(frac) > 2 {
		return 0, errors.Errorf("amount=%s has sub-cent precision", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}
	w, err := strconv.ParseUint(whole, 10, 32)
	if err != nil {
		return 0, errors.Annotatef(err, "amount=%s", s)
	}
	f, err := strconv.ParseUint(frac, 10, 32)
	if err != nil {
		return 0, errors.Annotatef(err, "amount=%s", s)
	}
	if w*100+f > math.MaxInt32 {
		return 0, errors.Errorf("amount=%s does not fit", s)
	}
	a := Amount(w*100 + f)
	if neg {
		a = -a
	}
	return a, nil
}

// Nominal is value of one coin or bill
type Nominal Amount

// Cash is a delta set of nominal -> count, the shape of money passed
// over the machine boundary: inserted coins, change to dispense.
// Counts are signed so callers may hand over junk; operations skip
// entries with count <= 0.
type Cash map[Nominal]int

var (
	ErrCashNil        = errors.New("cash map is nil")
	ErrNominalInvalid = errors.New("nominal is not a positive value")
	ErrNominalCount   = errors.New("not enough nominals for this amount")
	ErrAmountNegative = errors.New("change amount cannot be negative")
)

func (c Cash) Total() Amount {
	sum := Amount(0)
	for nominal, count := range c {
		if count > 0 {
			sum += Amount(nominal) * Amount(count)
		}
	}
	return sum
}

func (c Cash) String() string {
	parts := make([]string, 0, len(c))
	for nominal, count := range c {
		if count > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", Amount(nominal).Format100I(), count))
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// NominalGroup is exact bookkeeping of money comprised of multiple
// nominals, like the machine till:
// coin1 : 3
// coin5 : 1
// coin10: 4
// total : 48
// Counts never go below zero; a zero count and an absent nominal mean
// the same thing. Mutation happens only through Add, Sub and Clear.
type NominalGroup struct {
	values map[Nominal]uint
}

func NewNominalGroup() *NominalGroup {
	return &NominalGroup{values: make(map[Nominal]uint)}
}

// FromCash builds a group holding the positive entries of c.
func FromCash(c Cash) (*NominalGroup, error) {
	ng := NewNominalGroup()
	if err := ng.Add(c); err != nil {
		return nil, err
	}
	return ng, nil
}

func (ng *NominalGroup) Copy() *NominalGroup {
	ng2 := &NominalGroup{
		values: make(map[Nominal]uint, len(ng.values)),
	}
	for k, v := range ng.values {
		ng2.values[k] = v
	}
	return ng2
}

// Add increases held counts by the positive entries of c.
// The whole input is validated before any count changes.
func (ng *NominalGroup) Add(c Cash) error {
	if c == nil {
		return errors.Trace(ErrCashNil)
	}
	for nominal := range c {
		if nominal <= 0 {
			return errors.Annotatef(ErrNominalInvalid, "Add(n=%s)", Amount(nominal).Format100I())
		}
	}
	if ng.values == nil {
		ng.values = make(map[Nominal]uint, len(c))
	}
	for nominal, count := range c {
		if count > 0 {
			ng.values[nominal] += uint(count)
		}
	}
	return nil
}

// Sub decreases held counts by the positive entries of c.
// All-or-nothing: if any single nominal is short, no count changes.
func (ng *NominalGroup) Sub(c Cash) error {
	if c == nil {
		return errors.Trace(ErrCashNil)
	}
	for nominal, count := range c {
		if count <= 0 {
			continue
		}
		if held := ng.values[nominal]; held < uint(count) {
			return errors.Annotatef(ErrNominalCount, "Sub(n=%s) need=%d held=%d", Amount(nominal).Format100I(), count, held)
		}
	}
	for nominal, count := range c {
		if count > 0 {
			ng.values[nominal] -= uint(count)
		}
	}
	return nil
}

func (ng *NominalGroup) Clear() {
	for nominal := range ng.values {
		ng.values[nominal] = 0
	}
}

func (ng *NominalGroup) Get(n Nominal) uint { return ng.values[n] }

func (ng *NominalGroup) Iter(f func(nominal Nominal, count uint) error) error {
	for nominal, count := range ng.values {
		if count == 0 {
			continue
		}
		if err := f(nominal, count); err != nil {
			return err
		}
	}
	return nil
}

func (ng *NominalGroup) Total() Amount {
	sum := Amount(0)
	for nominal, count := range ng.values {
		sum += Amount(nominal) * Amount(count)
	}
	return sum
}

// CashMap returns a defensive copy of the positive held counts.
func (ng *NominalGroup) CashMap() Cash {
	c := make(Cash, len(ng.values))
	for nominal, count := range ng.values {
		if count > 0 {
			c[nominal] = int(count)
		}
	}
	return c
}

// MakeChange computes a set of held nominals summing exactly to a.
// The group itself is never mutated; commit via Sub with the result.
func (ng *NominalGroup) MakeChange(a Amount, strategy ChangeStrategy) (Cash, error) {
	if a < 0 {
		return nil, errors.Annotatef(ErrAmountNegative, "MakeChange(%s)", a.Format100I())
	}
	if a == 0 {
		return Cash{}, nil
	}
	if strategy == nil {
		strategy = GreedyLargestFirst{}
	}
	return strategy.MakeChange(ng.Copy(), a)
}

// Contains reports whether exact change for a could be assembled
// with the default greedy pass.
func (ng *NominalGroup) Contains(a Amount) bool {
	_, err := ng.MakeChange(a, nil)
	return err == nil
}

func (ng *NominalGroup) String() string {
	parts := make([]string, 0, len(ng.values)+1)
	sum := Amount(0)
	for nominal, count := range ng.values {
		if count > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", Amount(nominal).Format100I(), count))
			sum += Amount(nominal) * Amount(count)
		}
	}
	sort.Strings(parts)
	parts = append(parts, fmt.Sprintf("total:%s", sum.Format100I()))
	return strings.Join(parts, ",")
}

// nominalsDesc returns held nominals ordered largest value first.
func (ng *NominalGroup) nominalsDesc() []Nominal {
	order := make([]Nominal, 0, len(ng.values))
	for n := range ng.values {
		order = append(order, n)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] > order[j] })
	return order
}
