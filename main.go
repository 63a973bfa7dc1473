package ShowcaseDB

import (
	"context"

	"github.com/nickyhof/ShowcaseDB/auth"
	"github.com/nickyhof/ShowcaseDB/dump"
	"github.com/nickyhof/ShowcaseDB/inspect"
	"github.com/nickyhof/ShowcaseDB/op"
	"github.com/nickyhof/ShowcaseDB/store"
)

type Instance struct {
	Store *store.Store
}

func Open(st *store.Store) *Instance {
	return &Instance{
		Store: st,
	}
}

func (instance *Instance) Seeder(seed int64) *op.Seeder {
	return op.NewSeeder(instance.Store, seed)
}

func (instance *Instance) Orders() *op.Orders {
	return op.NewOrders(instance.Store)
}

func (instance *Instance) Users(tokens *auth.TokenIssuer) *op.Users {
	return op.NewUsers(instance.Store, tokens)
}

func (instance *Instance) Reports() *op.Reports {
	return op.NewReports(instance.Store)
}

func (instance *Instance) Dumper() *dump.Dumper {
	return dump.NewDumper(instance.Store)
}

func (instance *Instance) Documentation(ctx context.Context) (*inspect.Documentation, error) {
	return inspect.Collect(ctx, instance.Store)
}
