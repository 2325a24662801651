package sales

import (
	"fmt"
	"io"

	"github.com/juju/errors"

	"github.com/vendcore/vendcore/catalog"
)

// WriteHistory dumps a human-readable machine history: current
// inventory snapshot followed by the transaction journal. Where the
// dump lands (file, service console) is the caller's business.
func WriteHistory(w io.Writer, inv *catalog.Inventory, j *Journal) error {
	if _, err := fmt.Fprintln(w, "=== INVENTORY ==="); err != nil {
		return errors.Trace(err)
	}
	inv.Iter(func(p *catalog.Product) {
		fmt.Fprintf(w, "%s,%s,%d\n", p.Name, p.Price().Format100I(), p.Stock())
	})

	if _, err := fmt.Fprintln(w, "\n=== TRANSACTIONS ==="); err != nil {
		return errors.Trace(err)
	}
	if j.Len() == 0 {
		_, err := fmt.Fprintln(w, "No transactions recorded.")
		return errors.Trace(err)
	}
	err := j.Iter(func(r Record) error {
		_, werr := fmt.Fprintln(w, r.String())
		return werr
	})
	if err != nil {
		return errors.Trace(err)
	}
	_, err = fmt.Fprintf(w, "total,%s\n", j.Total().Format100I())
	return errors.Trace(err)
}
