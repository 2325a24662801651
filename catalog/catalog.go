// Package catalog is the product registry of one machine: named slots
// with price, bounded stock and an expiry gate on reload.
package catalog

import (
	"sort"
	"sync"

	"github.com/juju/errors"

	"github.com/vendcore/vendcore/currency"
	"github.com/vendcore/vendcore/helpers"
	"github.com/vendcore/vendcore/log2"
)

type Inventory struct {
	log *log2.Log
	mu  sync.RWMutex
	ps  map[string]*Product
}

// ScaleFunc converts config price integers into minor-unit amounts.
type ScaleFunc func(int) currency.Amount

func (inv *Inventory) Init(log *log2.Log, configs []ProductConfig, scale ScaleFunc) error {
	inv.log = log

	inv.mu.Lock()
	defer inv.mu.Unlock()
	errs := make([]error, 0)
	inv.ps = make(map[string]*Product, len(configs))
	for _, pc := range configs {
		if _, ok := inv.ps[pc.Name]; ok {
			errs = append(errs, errors.Errorf("product=%s already registered", pc.Name))
			continue
		}
		p, err := NewProduct(pc, scale(pc.XXX_Price))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		inv.ps[p.Name] = p
		inv.log.Debugf("catalog register %s price=%s stock=%d", p.Name, p.Price().Format100I(), p.Stock())
	}
	return helpers.FoldErrors(errs)
}

func (inv *Inventory) Register(p *Product) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if inv.ps == nil {
		inv.ps = make(map[string]*Product)
	}
	if _, ok := inv.ps[p.Name]; ok {
		return errors.Errorf("product=%s already registered", p.Name)
	}
	inv.ps[p.Name] = p
	return nil
}

func (inv *Inventory) Get(name string) (*Product, error) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	if p, ok := inv.ps[name]; ok {
		return p, nil
	}
	return nil, errors.Annotatef(ErrProductNotFound, "product=%s", name)
}

func (inv *Inventory) MustGet(f helpers.Fataler, name string) *Product {
	p, err := inv.Get(name)
	if err != nil {
		f.Fatal(err)
		return nil
	}
	return p
}

// Iter visits products in name order.
func (inv *Inventory) Iter(fun func(p *Product)) {
	inv.mu.RLock()
	names := make([]string, 0, len(inv.ps))
	for name := range inv.ps {
		names = append(names, name)
	}
	sort.Strings(names)
	ps := make([]*Product, 0, len(names))
	for _, name := range names {
		ps = append(ps, inv.ps[name])
	}
	inv.mu.RUnlock()
	for _, p := range ps {
		fun(p)
	}
}

func (inv *Inventory) Len() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return len(inv.ps)
}
