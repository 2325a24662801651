package users

import (
	"fmt"
	"time"

	"github.com/juju/errors"

	"github.com/vendcore/vendcore/catalog"
	"github.com/vendcore/vendcore/currency"
)

var ErrAccessDenied = errors.New("access denied")

type Operator struct {
	ID    ID
	Name  string
	Level AccessLevel

	sink     MessageSink
	stocking map[string]int
}

// Restock reloads a product, recording how many units actually made
// it into the slot. Expired stock is refused by the catalog.
func (o *Operator) Restock(p *catalog.Product, n int) (int, error) {
	if p == nil {
		return 0, errors.Errorf("restock: product is nil")
	}
	added, err := p.Restock(n, time.Now())
	if err != nil {
		o.sink.Message(fmt.Sprintf("restock of %s failed: %v", p.Name, err))
		return 0, err
	}
	o.stocking[p.Name] += added
	o.sink.Message(fmt.Sprintf("restocked %d units of %s", added, p.Name))
	return added, nil
}

// SetPrice changes a product price; admin only.
func (o *Operator) SetPrice(p *catalog.Product, a currency.Amount) error {
	if p == nil {
		return errors.Errorf("set price: product is nil")
	}
	if o.Level != Admin {
		o.sink.Message("you don't have access to change prices")
		return errors.Annotatef(ErrAccessDenied, "operator=%s level=%s", o.Name, o.Level.String())
	}
	if err := p.SetPrice(a); err != nil {
		return err
	}
	o.sink.Message(fmt.Sprintf("price of %s set to $%s", p.Name, a.Format100I()))
	return nil
}

// StockingHistory is a defensive copy of units added per product.
func (o *Operator) StockingHistory() map[string]int {
	h := make(map[string]int, len(o.stocking))
	for k, v := range o.stocking {
		h[k] = v
	}
	return h
}
