package aspen

import (
	"testing"

	"github.com/ValentinKolb/dSEQ/lib/db"
	dbtesting "github.com/ValentinKolb/dSEQ/lib/db/testing"
)

func Test(t *testing.T) {
	dbtesting.RunCounterDBTests(t, "AspenDB", func() db.CounterDB {
		return NewAspenDB(nil)
	})
}

func Benchmark(t *testing.B) {
	dbtesting.RunCounterDBBenchmarks(t, "AspenDB", func() db.CounterDB {
		return NewAspenDB(nil)
	})
}
