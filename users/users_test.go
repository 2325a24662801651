package users

import (
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendcore/vendcore/catalog"
	"github.com/vendcore/vendcore/currency"
	"github.com/vendcore/vendcore/log2"
	"github.com/vendcore/vendcore/machine"
	"github.com/vendcore/vendcore/sales"
)

func testWorld(t testing.TB) (*catalog.Inventory, *machine.Machine, *sales.Journal) {
	log := log2.NewTest(t, log2.LDebug)
	inv := new(catalog.Inventory)
	require.NoError(t, inv.Init(log, []catalog.ProductConfig{
		{Name: "chips", XXX_Price: 150, Stock: 5, Capacity: 10},
		{Name: "old", XXX_Price: 100, Stock: 2, Capacity: 5,
			Expiry: time.Now().AddDate(0, 0, -1).Format("2006-01-02")},
	}, func(i int) currency.Amount { return currency.Amount(i) }))
	j := new(sales.Journal)
	return inv, machine.New(log, inv, j, nil, nil), j
}

func TestRegistryIDs(t *testing.T) {
	t.Parallel()

	r := new(Registry)
	b := r.NewBuyer("alice", nil)
	o := r.NewOperator("carol", Admin, nil)
	assert.NotEqual(t, b.ID, o.ID)
	b2 := r.NewBuyer("bob", nil)
	assert.NotEqual(t, b.ID, b2.ID)
}

func TestBuyerChooseBuy(t *testing.T) {
	t.Parallel()

	inv, m, j := testWorld(t)
	r := new(Registry)
	var msgs []string
	b := r.NewBuyer("alice", FuncSink(func(s string) { msgs = append(msgs, s) }))

	t.Run("choose-missing", func(t *testing.T) {
		err := b.Choose(inv, "ghost")
		assert.Equal(t, catalog.ErrProductNotFound, errors.Cause(err))
		assert.Nil(t, b.Selected())
	})

	t.Run("choose-expired", func(t *testing.T) {
		err := b.Choose(inv, "old")
		assert.Equal(t, catalog.ErrExpired, errors.Cause(err))
		assert.Nil(t, b.Selected())
	})

	t.Run("buy-without-selection", func(t *testing.T) {
		_, err := b.Buy(m)
		assert.Equal(t, machine.ErrNoProduct, errors.Cause(err))
		assert.Equal(t, 0, j.Len())
	})

	t.Run("buy-with-change", func(t *testing.T) {
		require.NoError(t, m.InsertCash(currency.Cash{100: 1, 50: 2}))
		require.NoError(t, b.Choose(inv, "chips"))
		res, err := b.Buy(m)
		require.NoError(t, err)
		assert.Equal(t, currency.Cash{50: 1}, res.Change)
		assert.Equal(t, 1, j.Len())
		assert.Contains(t, msgs[len(msgs)-1], "change")
	})
}

func TestBuyerBuyChange(t *testing.T) {
	t.Parallel()

	inv, m, j := testWorld(t)
	r := new(Registry)
	b := r.NewBuyer("alice", nil)

	require.NoError(t, m.InsertCash(currency.Cash{100: 1, 25: 2}))
	require.NoError(t, b.Choose(inv, "chips"))
	res, err := b.Buy(m)
	require.NoError(t, err)
	assert.Equal(t, currency.Cash{}, res.Change)
	assert.Len(t, b.History(), 1)
	assert.Equal(t, 1, j.Len())
	// selection is consumed
	assert.Nil(t, b.Selected())
}

func TestBuyerCancel(t *testing.T) {
	t.Parallel()

	inv, _, _ := testWorld(t)
	r := new(Registry)
	var msgs []string
	b := r.NewBuyer("alice", FuncSink(func(s string) { msgs = append(msgs, s) }))

	b.Cancel()
	require.NoError(t, b.Choose(inv, "chips"))
	b.Cancel()
	assert.Nil(t, b.Selected())
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[1], "cancelled")
}

func TestOperatorRestock(t *testing.T) {
	t.Parallel()

	inv, _, _ := testWorld(t)
	r := new(Registry)
	o := r.NewOperator("carol", Staff, nil)

	p := inv.MustGet(t, "chips")
	added, err := o.Restock(p, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, added)
	assert.Equal(t, uint32(8), p.Stock())

	// clamped by capacity, history records actual units
	added, err = o.Restock(p, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, map[string]int{"chips": 5}, o.StockingHistory())

	// expired reload refused
	old := inv.MustGet(t, "old")
	_, err = o.Restock(old, 1)
	assert.Equal(t, catalog.ErrExpired, errors.Cause(err))
	assert.Equal(t, uint32(2), old.Stock())

	_, err = o.Restock(nil, 1)
	assert.Error(t, err)
}

func TestOperatorSetPrice(t *testing.T) {
	t.Parallel()

	inv, _, _ := testWorld(t)
	r := new(Registry)
	staff := r.NewOperator("sam", Staff, nil)
	admin := r.NewOperator("carol", Admin, nil)
	p := inv.MustGet(t, "chips")

	err := staff.SetPrice(p, 125)
	assert.Equal(t, ErrAccessDenied, errors.Cause(err))
	assert.Equal(t, currency.Amount(150), p.Price())

	require.NoError(t, admin.SetPrice(p, 125))
	assert.Equal(t, currency.Amount(125), p.Price())

	assert.Error(t, admin.SetPrice(p, -5))
	assert.Equal(t, currency.Amount(125), p.Price())
}
