// vend-cli is an interactive operator/buyer console for one machine.
package main

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"sync"

	prompt "github.com/c-bata/go-prompt"
	"github.com/juju/errors"

	"github.com/vendcore/vendcore/catalog"
	"github.com/vendcore/vendcore/currency"
	"github.com/vendcore/vendcore/helpers/cli"
	"github.com/vendcore/vendcore/log2"
	"github.com/vendcore/vendcore/sales"
	"github.com/vendcore/vendcore/state"
	"github.com/vendcore/vendcore/users"
)

const usage = `commands:
- insert AMOUNT [COUNT]  put coins/notes into the machine, e.g. insert 0.25 3
- credit                 show money inserted so far
- select NAME            choose a product
- cancel                 drop the current selection
- buy [NAME]             purchase selection (or NAME directly)
- abort                  return all inserted money
- stock                  list products
- restock NAME N         operator: reload N units
- price NAME AMOUNT      admin: change product price
- report                 inventory and sales history
- help
- quit
`

var log = log2.NewStderr(log2.LInfo)

func main() {
	cmdline := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	flagConfig := cmdline.String("config", "vendcore.hcl", "")
	flagDebug := cmdline.Bool("debug", false, "")
	cmdline.Parse(os.Args[1:])

	if *flagDebug {
		log.SetLevel(log2.LDebug)
	}
	log.SetFlags(log2.LStdFlags)

	ctx, g := state.NewContext(log)
	config := state.MustReadConfig(log, state.NewOsFullReader(), *flagConfig)
	g.MustInit(ctx, config)
	log.Debugf("init complete products=%d", g.Catalog.Len())

	sink := users.FuncSink(func(s string) { log.Infof("%s", s) })
	registry := new(users.Registry)
	sh := &shell{
		g:        g,
		buyer:    registry.NewBuyer("console", sink),
		operator: registry.NewOperator("console", users.Admin, sink),
	}

	// shutdown may fire from the signal handler, the quit command and
	// again after the loop returns; the sequence must run once
	var quitOnce sync.Once
	sh.shutdown = func() {
		quitOnce.Do(func() {
			g.StoreSales()
			g.Stop()
		})
	}
	cli.MainLoop("vend", sh.Execute, sh.Complete, sh.shutdown)
	sh.shutdown()
}

type shell struct {
	g        *state.Global
	buyer    *users.Buyer
	operator *users.Operator
	shutdown func()
}

func (sh *shell) Execute(line string) {
	words := strings.Fields(line)
	if len(words) == 0 {
		return
	}
	err := sh.run(words[0], words[1:])
	if err != nil {
		log.Errorf("%s: %v", words[0], err)
	}
}

func (sh *shell) run(cmd string, args []string) error {
	g := sh.g
	switch cmd {
	case "help":
		log.Infof(usage)
		return nil

	case "insert":
		if len(args) < 1 {
			return errors.Errorf("usage: insert AMOUNT [COUNT]")
		}
		nominal, err := currency.ParseAmount(args[0])
		if err != nil {
			return err
		}
		count := 1
		if len(args) >= 2 {
			if count, err = strconv.Atoi(args[1]); err != nil {
				return errors.Annotatef(err, "count=%s", args[1])
			}
		}
		err = g.Machine.InsertCash(currency.Cash{currency.Nominal(nominal): count})
		if err != nil {
			return err
		}
		log.Infof("credit=$%s", g.Machine.SessionTotal().Format100I())
		return nil

	case "credit":
		log.Infof("credit=$%s", g.Machine.SessionTotal().Format100I())
		return nil

	case "select":
		if len(args) != 1 {
			return errors.Errorf("usage: select NAME")
		}
		return sh.buyer.Choose(g.Catalog, args[0])

	case "cancel":
		sh.buyer.Cancel()
		return nil

	case "buy":
		if len(args) == 1 {
			if err := sh.buyer.Choose(g.Catalog, args[0]); err != nil {
				return err
			}
		} else if sh.buyer.Selected() == nil {
			return errors.Errorf("usage: buy NAME (or select first)")
		}
		_, err := sh.buyer.Buy(g.Machine)
		if err != nil {
			return err
		}
		g.StoreSales()
		return nil

	case "abort":
		refund := g.Machine.Abort()
		if len(refund) == 0 {
			log.Infof("nothing to return")
		} else {
			log.Infof("returned %s", refund.String())
		}
		return nil

	case "stock":
		g.Catalog.Iter(func(p *catalog.Product) { log.Infof("%s", p.String()) })
		return nil

	case "restock":
		if len(args) != 2 {
			return errors.Errorf("usage: restock NAME N")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return errors.Annotatef(err, "n=%s", args[1])
		}
		p, err := g.Catalog.Get(args[0])
		if err != nil {
			return err
		}
		_, err = sh.operator.Restock(p, n)
		return err

	case "price":
		if len(args) != 2 {
			return errors.Errorf("usage: price NAME AMOUNT")
		}
		a, err := currency.ParseAmount(args[1])
		if err != nil {
			return err
		}
		p, err := g.Catalog.Get(args[0])
		if err != nil {
			return err
		}
		return sh.operator.SetPrice(p, a)

	case "report":
		return sales.WriteHistory(os.Stdout, g.Catalog, g.Journal)

	case "quit", "exit":
		sh.shutdown()
		os.Exit(0)
		return nil
	}
	return errors.Errorf("unknown command, try help")
}

func (sh *shell) Complete(d prompt.Document) []prompt.Suggest {
	suggests := []prompt.Suggest{
		{Text: "insert"}, {Text: "credit"}, {Text: "select"}, {Text: "cancel"},
		{Text: "buy"}, {Text: "abort"}, {Text: "stock"}, {Text: "restock"},
		{Text: "price"}, {Text: "report"}, {Text: "help"}, {Text: "quit"},
	}
	sh.g.Catalog.Iter(func(p *catalog.Product) {
		suggests = append(suggests, prompt.Suggest{Text: p.Name, Description: "$" + p.Price().Format100I()})
	})
	return prompt.FilterFuzzy(suggests, d.GetWordBeforeCursor(), true)
}
