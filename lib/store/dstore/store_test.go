package dstore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ValentinKolb/dSEQ/lib/store"
)

// TestAsStoreError verifies the read error mapping: typed store errors must
// survive unchanged (including wrapped ones) so callers can match on the
// return code, while untyped errors are wrapped as internal errors.
func TestAsStoreError(t *testing.T) {
	t.Run("TypedPassThrough", func(t *testing.T) {
		orig := store.NewError(store.RetCInvalidOperation, "bad key")
		got := asStoreError(orig)

		var rse *store.Error
		if !errors.As(got, &rse) {
			t.Fatalf("expected *store.Error, got %T", got)
		}
		if rse.Code != store.RetCInvalidOperation {
			t.Errorf("expected code %d, got %d", store.RetCInvalidOperation, rse.Code)
		}
	})

	t.Run("WrappedTypedPassThrough", func(t *testing.T) {
		orig := store.NewError(store.RetCUnsupportedOperation, "no such op")
		got := asStoreError(fmt.Errorf("query failed: %w", orig))

		var rse *store.Error
		if !errors.As(got, &rse) {
			t.Fatalf("expected *store.Error, got %T", got)
		}
		if rse.Code != store.RetCUnsupportedOperation {
			t.Errorf("expected code %d, got %d", store.RetCUnsupportedOperation, rse.Code)
		}
	})

	t.Run("UntypedBecomesInternal", func(t *testing.T) {
		got := asStoreError(errors.New("connection reset"))

		var rse *store.Error
		if !errors.As(got, &rse) {
			t.Fatalf("expected *store.Error, got %T", got)
		}
		if rse.Code != store.RetCInternalError {
			t.Errorf("expected code %d, got %d", store.RetCInternalError, rse.Code)
		}
	})
}
