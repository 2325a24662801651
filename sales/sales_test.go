package sales

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendcore/vendcore/catalog"
	"github.com/vendcore/vendcore/currency"
	"github.com/vendcore/vendcore/log2"
)

func TestJournalAppendIter(t *testing.T) {
	t.Parallel()

	j := new(Journal)
	assert.Equal(t, 0, j.Len())

	j.Append(NewRecord("chips", 150))
	j.Append(NewRecord("cola", 200))
	assert.Equal(t, 2, j.Len())
	assert.Equal(t, currency.Amount(350), j.Total())

	names := []string{}
	require.NoError(t, j.Iter(func(r Record) error {
		names = append(names, r.Product)
		return nil
	}))
	assert.Equal(t, []string{"chips", "cola"}, names)
}

func TestJournalRoundTrip(t *testing.T) {
	t.Parallel()

	j := new(Journal)
	j.Append(NewRecord("chips", 150))
	j.Append(NewRecord("dark chocolate", 275))

	b, err := j.MarshalBinary()
	require.NoError(t, err)

	j2 := new(Journal)
	require.NoError(t, j2.UnmarshalBinary(b))
	require.Equal(t, 2, j2.Len())
	var first, second Record
	i := 0
	require.NoError(t, j2.Iter(func(r Record) error {
		if i == 0 {
			first = r
		} else {
			second = r
		}
		i++
		return nil
	}))
	assert.Equal(t, "chips", first.Product)
	assert.Equal(t, currency.Amount(150), first.Price)
	assert.Equal(t, "dark chocolate", second.Product)
	assert.Equal(t, currency.Amount(275), second.Price)

	err = j2.UnmarshalBinary([]byte("not\ta\tjournal"))
	assert.Error(t, err)
}

func TestWriteHistory(t *testing.T) {
	t.Parallel()

	log := log2.NewTest(t, log2.LDebug)
	inv := new(catalog.Inventory)
	require.NoError(t, inv.Init(log, []catalog.ProductConfig{
		{Name: "chips", XXX_Price: 150, Stock: 4, Capacity: 10},
	}, func(i int) currency.Amount { return currency.Amount(i) }))

	t.Run("empty-journal", func(t *testing.T) {
		var b bytes.Buffer
		require.NoError(t, WriteHistory(&b, inv, new(Journal)))
		s := b.String()
		assert.Contains(t, s, "=== INVENTORY ===")
		assert.Contains(t, s, "chips,1.5,4")
		assert.Contains(t, s, "No transactions recorded.")
	})

	t.Run("with-sales", func(t *testing.T) {
		j := new(Journal)
		j.Append(NewRecord("chips", 150))
		var b bytes.Buffer
		require.NoError(t, WriteHistory(&b, inv, j))
		s := b.String()
		assert.Contains(t, s, "=== TRANSACTIONS ===")
		assert.Contains(t, s, "chips sold for $1.5")
		assert.Contains(t, s, "total,1.5")
		assert.Equal(t, 1, strings.Count(s, "sold for"))
	})
}
