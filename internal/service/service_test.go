package service

import (
	"context"
	"testing"
	"time"

	"mytickets/internal/clock"
	"mytickets/internal/testutil"

	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store     *testutil.Store
	publisher *testutil.Publisher
	cache     *testutil.Cache
	search    *testutil.Searcher
	services  *Services
}

type option func(*Dependencies, *fixture)

func withCache() option {
	return func(d *Dependencies, f *fixture) {
		f.cache = testutil.NewCache()
		d.Cache = f.cache
	}
}

func withSearch() option {
	return func(d *Dependencies, f *fixture) {
		f.search = testutil.NewSearcher()
		d.Search = f.search
	}
}

func newFixture(t *testing.T, opts ...option) *fixture {
	t.Helper()

	f := &fixture{
		store:     testutil.NewStore(),
		publisher: &testutil.Publisher{},
	}
	deps := Dependencies{
		Events:     f.store.Events,
		Tickets:    f.store.Tickets,
		Users:      f.store.Users,
		Publisher:  f.publisher,
		Clock:      clock.NewFixed(testNow),
		BcryptCost: bcrypt.MinCost,
	}
	for _, opt := range opts {
		opt(&deps, f)
	}
	f.services = NewServices(deps)
	return f
}

func ctx() context.Context {
	return context.Background()
}
