package catalog

import (
	"fmt"
	"sync"
	"time"

	"github.com/juju/errors"

	"github.com/vendcore/vendcore/currency"
)

var (
	ErrProductNotFound = errors.New("product is not registered")
	ErrOutOfStock      = errors.New("product is out of stock")
	ErrExpired         = errors.New("product is expired")
)

// ProductConfig is the decoding shape of `product "name" { ... }` blocks.
type ProductConfig struct {
	Name      string `hcl:"name,key"`
	XXX_Price int    `hcl:"price"` // use scaled Product price, this is for decoding config only
	Category  string `hcl:"category"`
	Stock     int    `hcl:"stock"`
	Capacity  int    `hcl:"capacity"`
	Nutrition string `hcl:"nutrition"`
	Expiry    string `hcl:"expiry"` // "2006-01-02", empty = non-perishable
}

func (pc *ProductConfig) String() string {
	return fmt.Sprintf("catalog.%s price=%d stock=%d", pc.Name, pc.XXX_Price, pc.Stock)
}

// Product is one catalog slot. Price and stock move only through
// methods so the invariants (price >= 0, 0 <= stock <= capacity)
// cannot be bypassed.
type Product struct {
	Name      string
	Category  string
	Nutrition string

	mu       sync.Mutex
	price    currency.Amount
	stock    uint32
	capacity uint32
	expiry   time.Time
}

func NewProduct(c ProductConfig, price currency.Amount) (*Product, error) {
	if c.Name == "" {
		return nil, errors.Errorf("product name=(empty) is invalid")
	}
	if price < 0 {
		return nil, errors.Errorf("product=%s price=%s is negative", c.Name, price.Format100I())
	}
	if c.Stock < 0 {
		return nil, errors.Errorf("product=%s stock=%d is negative", c.Name, c.Stock)
	}
	if c.Capacity < c.Stock {
		return nil, errors.Errorf("product=%s capacity=%d < stock=%d", c.Name, c.Capacity, c.Stock)
	}
	p := &Product{
		Name:      c.Name,
		Category:  c.Category,
		Nutrition: c.Nutrition,
		price:     price,
		stock:     uint32(c.Stock),
		capacity:  uint32(c.Capacity),
	}
	if c.Expiry != "" {
		t, err := time.Parse("2006-01-02", c.Expiry)
		if err != nil {
			return nil, errors.Annotatef(err, "product=%s expiry", c.Name)
		}
		p.expiry = t
	}
	return p, nil
}

func (p *Product) Price() currency.Amount {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.price
}

func (p *Product) SetPrice(a currency.Amount) error {
	if a < 0 {
		return errors.Errorf("product=%s new price=%s is negative", p.Name, a.Format100I())
	}
	p.mu.Lock()
	p.price = a
	p.mu.Unlock()
	return nil
}

func (p *Product) Stock() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stock
}

func (p *Product) Capacity() uint32 { return p.capacity }

func (p *Product) Expiry() time.Time { return p.expiry }

// IsExpired treats the zero expiry as non-perishable.
func (p *Product) IsExpired(now time.Time) bool {
	return !p.expiry.IsZero() && p.expiry.Before(now)
}

// Restock adds up to n units, clamped at capacity. Expired stock must
// not be reloaded. Returns the number of units actually added.
func (p *Product) Restock(n int, now time.Time) (int, error) {
	if n <= 0 {
		return 0, errors.Errorf("product=%s restock amount=%d must be positive", p.Name, n)
	}
	if p.IsExpired(now) {
		return 0, errors.Annotatef(ErrExpired, "product=%s restock", p.Name)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	free := p.capacity - p.stock
	added := uint32(n)
	if added > free {
		added = free
	}
	p.stock += added
	return int(added), nil
}

// ReduceStock removes n units; fails without mutation if n exceeds
// current stock.
func (p *Product) ReduceStock(n int) error {
	if n <= 0 {
		return errors.Errorf("product=%s reduce amount=%d must be positive", p.Name, n)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if uint32(n) > p.stock {
		return errors.Annotatef(ErrOutOfStock, "product=%s reduce=%d stock=%d", p.Name, n, p.stock)
	}
	p.stock -= uint32(n)
	return nil
}

func (p *Product) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fmt.Sprintf("%s - $%s (%d/%d left)", p.Name, p.price.Format100I(), p.stock, p.capacity)
}
