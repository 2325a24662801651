package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"

	"github.com/vendcore/vendcore/catalog"
	"github.com/vendcore/vendcore/currency"
	"github.com/vendcore/vendcore/helpers"
	"github.com/vendcore/vendcore/log2"
	"github.com/vendcore/vendcore/machine"
	"github.com/vendcore/vendcore/sales"
	"github.com/vendcore/vendcore/state/persist"
)

type Global struct {
	Alive   *alive.Alive
	Config  *Config
	Catalog *catalog.Inventory
	Journal *sales.Journal
	Machine *machine.Machine
	Log     *log2.Log

	SalesPersist persist.Persist

	lk sync.Mutex
}

const ContextKey = "run/state-global"

func NewContext(log *log2.Log) (context.Context, *Global) {
	if log == nil {
		panic("code error state.NewContext() log=nil")
	}
	g := &Global{
		Alive:   alive.NewAlive(),
		Catalog: new(catalog.Inventory),
		Journal: new(sales.Journal),
		Log:     log,
	}
	ctx := context.Background()
	ctx = context.WithValue(ctx, log2.ContextKey, log)
	ctx = context.WithValue(ctx, ContextKey, g)
	return ctx, g
}

func GetGlobal(ctx context.Context) *Global {
	v := ctx.Value(ContextKey)
	if v == nil {
		panic(fmt.Sprintf("context['%s'] is nil", ContextKey))
	}
	if g, ok := v.(*Global); ok {
		return g
	}
	panic(fmt.Sprintf("context['%s'] expected type *Global actual=%#v", ContextKey, v))
}

// If `Init` fails, consider `Global` is in broken state.
func (g *Global) Init(ctx context.Context, cfg *Config) error {
	g.Config = cfg

	errs := make([]error, 0)

	if g.Config.Money.Scale == 0 {
		g.Config.Money.Scale = 1
		g.Log.Errorf("config: money.scale is not set")
	} else if g.Config.Money.Scale < 0 {
		errs = append(errs, errors.NotValidf("config: money.scale < 0"))
	}

	strategy, err := currency.StrategyByName(g.Config.Money.ChangeStrategy)
	if err != nil {
		errs = append(errs, errors.Annotate(err, "config: money.change_strategy"))
	}

	if err := g.Catalog.Init(g.Log, g.Config.Catalog.Products, g.Config.ScaleI); err != nil {
		errs = append(errs, err)
	}

	if g.Config.Persist.Enable && g.Config.Persist.Root == "" {
		g.Config.Persist.Root = "./tmp-vendcore-db"
		g.Log.Errorf("config: persist.root=empty changed=%s", g.Config.Persist.Root)
	}
	{
		err := g.SalesPersist.Init("sales", g.Journal, g.Config.Persist.Root, g.Config.Persist.Enable, g.Log)
		if err == nil {
			err = g.SalesPersist.Load()
		}
		if err != nil {
			g.Error(err)
			errs = append(errs, err)
		}
	}

	g.Machine = machine.New(g.Log, g.Catalog, g.Journal, g.Config.AcceptedNominals(), strategy)

	return helpers.FoldErrors(errs)
}

func (g *Global) MustInit(ctx context.Context, cfg *Config) {
	err := g.Init(ctx, cfg)
	if err != nil {
		g.Log.Fatal(errors.ErrorStack(err))
	}
}

func (g *Global) Error(err error, args ...interface{}) {
	if err != nil {
		if len(args) != 0 {
			msg := args[0].(string)
			args = args[1:]
			err = errors.Annotatef(err, msg, args...)
		}
		g.Log.Errorf(errors.ErrorStack(err))
	}
}

// StoreSales flushes the journal snapshot; call after a committed sale.
func (g *Global) StoreSales() {
	if err := g.SalesPersist.Store(); err != nil {
		g.Error(err, "sales persist")
	}
}

func (g *Global) Stop() {
	g.Alive.Stop()
	g.Alive.Wait()
}
