package users

import (
	"fmt"
	"time"

	"github.com/juju/errors"

	"github.com/vendcore/vendcore/catalog"
	"github.com/vendcore/vendcore/machine"
	"github.com/vendcore/vendcore/sales"
)

type Buyer struct {
	ID   ID
	Name string

	sink     MessageSink
	selected *catalog.Product
	history  []sales.Record
}

// Choose selects a product for the next Buy. Expired products are
// refused at selection time already.
func (b *Buyer) Choose(inv *catalog.Inventory, name string) error {
	p, err := inv.Get(name)
	if err != nil {
		b.sink.Message(fmt.Sprintf("no such product: %s", name))
		b.selected = nil
		return err
	}
	if p.IsExpired(time.Now()) {
		b.sink.Message(fmt.Sprintf("cannot select %s: expired on %s", p.Name, p.Expiry().Format("2006-01-02")))
		b.selected = nil
		return errors.Annotatef(catalog.ErrExpired, "product=%s", name)
	}
	b.selected = p
	return nil
}

func (b *Buyer) Selected() *catalog.Product { return b.selected }

// Cancel drops the current selection.
func (b *Buyer) Cancel() {
	if b.selected != nil {
		b.sink.Message(fmt.Sprintf("%s has been cancelled", b.selected.Name))
		b.selected = nil
		return
	}
	b.sink.Message("no product selected to cancel")
}

// Buy runs the machine purchase for the selected product. Selection
// is consumed either way, matching one attempt per selection.
func (b *Buyer) Buy(m *machine.Machine) (*machine.Result, error) {
	if b.selected == nil {
		return nil, errors.Trace(machine.ErrNoProduct)
	}
	name := b.selected.Name
	b.selected = nil

	res, err := m.Purchase(name)
	if err != nil {
		b.sink.Message(fmt.Sprintf("purchase of %s failed: %v", name, err))
		return nil, err
	}
	b.history = append(b.history, res.Record)
	if len(res.Change) > 0 {
		b.sink.Message(fmt.Sprintf("purchased %s, change %s", name, res.Change.String()))
	} else {
		b.sink.Message(fmt.Sprintf("purchased %s, exact payment", name))
	}
	return res, nil
}

// History is a defensive copy of this buyer's committed purchases.
func (b *Buyer) History() []sales.Record {
	h := make([]sales.Record, len(b.history))
	copy(h, b.history)
	return h
}
