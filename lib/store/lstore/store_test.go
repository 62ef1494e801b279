package lstore

import (
	"testing"

	"github.com/ValentinKolb/dSEQ/lib/db"
	"github.com/ValentinKolb/dSEQ/lib/db/engines/aspen"
	"github.com/ValentinKolb/dSEQ/lib/store"
	storetesting "github.com/ValentinKolb/dSEQ/lib/store/testing"
)

func Test(t *testing.T) {
	storetesting.RunCounterStoreTests(t, "LocalStore", func(t *testing.T) store.ICounterStore {
		return NewLocalStore(func() db.CounterDB {
			return aspen.NewAspenDB(nil)
		})
	})
}
