// Package machine decides and executes single purchases: it owns the
// session till (cash inserted for the current attempt), consults the
// catalog and commits stock, change and the sale journal together or
// not at all.
package machine

import (
	"sync"
	"time"

	"github.com/juju/errors"
	atomic_clock "github.com/temoto/atomic_clock"

	"github.com/vendcore/vendcore/catalog"
	"github.com/vendcore/vendcore/currency"
	"github.com/vendcore/vendcore/log2"
	"github.com/vendcore/vendcore/sales"
)

var (
	ErrNoProduct          = errors.New("no product selected")
	ErrProductUnavailable = errors.New("product is unavailable")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrChangeUnavailable  = errors.New("exact change is unavailable")
)

// Result of a committed purchase.
type Result struct {
	Change currency.Cash
	Record sales.Record
}

type Machine struct {
	log      *log2.Log
	catalog  *catalog.Inventory
	journal  *sales.Journal
	session  *currency.NominalGroup
	strategy currency.ChangeStrategy
	accepted map[currency.Nominal]struct{}

	// one lock guards the whole Validate..Commit sequence
	lk           sync.Mutex
	sessionStart *atomic_clock.Clock
}

// New wires a machine around its till, catalog and journal.
// accepted lists the nominals the cash slot takes; empty means any
// positive nominal. strategy nil selects the greedy default.
func New(log *log2.Log, inv *catalog.Inventory, journal *sales.Journal, accepted []currency.Nominal, strategy currency.ChangeStrategy) *Machine {
	m := &Machine{
		log:          log,
		catalog:      inv,
		journal:      journal,
		session:      currency.NewNominalGroup(),
		strategy:     strategy,
		sessionStart: atomic_clock.New(),
	}
	if len(accepted) > 0 {
		m.accepted = make(map[currency.Nominal]struct{}, len(accepted))
		for _, n := range accepted {
			m.accepted[n] = struct{}{}
		}
	}
	return m
}

// InsertCash adds buyer cash to the session till.
func (m *Machine) InsertCash(c currency.Cash) error {
	m.lk.Lock()
	defer m.lk.Unlock()
	if c == nil {
		return errors.Trace(currency.ErrCashNil)
	}
	if m.accepted != nil {
		for nominal, count := range c {
			if count <= 0 {
				continue
			}
			if _, ok := m.accepted[nominal]; !ok {
				return errors.Annotatef(currency.ErrNominalInvalid, "nominal=%s is not accepted", currency.Amount(nominal).Format100I())
			}
		}
	}
	if err := m.session.Add(c); err != nil {
		return err
	}
	m.sessionStart.SetNowIfZero()
	m.log.Debugf("machine insert %s session=%s", c.String(), m.session.String())
	return nil
}

func (m *Machine) SessionTotal() currency.Amount {
	m.lk.Lock()
	defer m.lk.Unlock()
	return m.session.Total()
}

// SessionCash is a defensive copy of the till contents.
func (m *Machine) SessionCash() currency.Cash {
	m.lk.Lock()
	defer m.lk.Unlock()
	return m.session.CashMap()
}

// Abort refunds the whole session: returns the till contents to the
// caller and leaves the till empty.
func (m *Machine) Abort() currency.Cash {
	m.lk.Lock()
	defer m.lk.Unlock()
	refund := m.session.CashMap()
	m.session.Clear()
	m.sessionStart.Set(0)
	m.log.Debugf("machine abort refund=%s", refund.String())
	return refund
}

// Purchase attempts to sell one unit of the named product against the
// session till. On success the committed change set and sale record
// are returned and the till is cleared (per-session register policy:
// inserted cash is absorbed net of change). On any rejection shared
// state is untouched and the error says which stage refused.
func (m *Machine) Purchase(name string) (*Result, error) {
	m.lk.Lock()
	defer m.lk.Unlock()

	t := &txn{m: m, name: name}
	state := StateValidate
	for state != StateDone {
		next, err := t.enter(state)
		if err != nil {
			m.log.Debugf("machine purchase=%s state=%s rejected: %v", name, state.String(), err)
			return nil, err
		}
		state = next
	}
	m.log.Infof("machine sold %s for %s change=%s", t.product.Name, t.price.Format100I(), t.result.Change.String())
	return t.result, nil
}

// txn carries one purchase attempt through its states.
type txn struct {
	m       *Machine
	name    string
	product *catalog.Product
	price   currency.Amount
	change  currency.Cash
	result  *Result
}

func (t *txn) enter(s State) (State, error) {
	switch s {
	case StateValidate:
		return t.validate()
	case StateFunds:
		return t.funds()
	case StateChange:
		return t.makeChange()
	case StateCommit:
		return t.commit()
	}
	t.m.log.Fatalf("code error unhandled purchase state=%s", s.String())
	return StateDefault, nil
}

func (t *txn) validate() (State, error) {
	if t.name == "" {
		return StateDefault, errors.Trace(ErrNoProduct)
	}
	p, err := t.m.catalog.Get(t.name)
	if err != nil {
		return StateDefault, errors.Annotatef(ErrProductUnavailable, "product=%s not found", t.name)
	}
	if p.Stock() == 0 {
		return StateDefault, errors.Annotatef(ErrProductUnavailable, "product=%s out of stock", t.name)
	}
	if p.IsExpired(time.Now()) {
		return StateDefault, errors.Annotatef(ErrProductUnavailable, "product=%s expired", t.name)
	}
	t.product = p
	t.price = p.Price()
	return StateFunds, nil
}

func (t *txn) funds() (State, error) {
	total := t.m.session.Total()
	if total < t.price {
		return StateDefault, errors.Annotatef(ErrInsufficientFunds, "have=%s need=%s", total.Format100I(), t.price.Format100I())
	}
	return StateChange, nil
}

func (t *txn) makeChange() (State, error) {
	owed := t.m.session.Total() - t.price
	if owed == 0 {
		t.change = currency.Cash{}
		return StateCommit, nil
	}
	change, err := t.m.session.MakeChange(owed, t.m.strategy)
	if err != nil {
		return StateDefault, errors.Annotatef(ErrChangeUnavailable, "owed=%s held=%s", owed.Format100I(), t.m.session.String())
	}
	t.change = change
	return StateCommit, nil
}

// commit is the one mutating stage: till change subtraction, stock
// decrement, journal append and session clear move together.
func (t *txn) commit() (State, error) {
	if err := t.m.session.Sub(t.change); err != nil {
		// MakeChange bounds make this unreachable; no mutation happened
		return StateDefault, errors.Annotate(err, "commit change")
	}
	if err := t.product.ReduceStock(1); err != nil {
		// roll the till back, stock was validated two stages ago
		if err2 := t.m.session.Add(t.change); err2 != nil {
			t.m.log.Fatalf("code error commit rollback: %v", err2)
		}
		return StateDefault, errors.Annotatef(ErrProductUnavailable, "commit: %v", err)
	}

	record := sales.NewRecord(t.product.Name, t.price)
	t.m.journal.Append(record)
	t.m.session.Clear()
	if !t.m.sessionStart.IsZero() {
		t.m.log.Debugf("machine session duration=%v", atomic_clock.Since(t.m.sessionStart))
	}
	t.m.sessionStart.Set(0)

	t.result = &Result{Change: t.change, Record: record}
	return StateDone, nil
}
