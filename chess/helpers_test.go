package chess

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var sortSquares = cmpopts.SortSlices(func(a, b Square) bool {
	return a.index() < b.index()
})

func mustSq(t *testing.T, name string) Square {
	t.Helper()
	sq, err := ParseSquare(name)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", name, err)
	}
	return sq
}

func squares(t *testing.T, names ...string) []Square {
	t.Helper()
	out := make([]Square, 0, len(names))
	for _, n := range names {
		out = append(out, mustSq(t, n))
	}
	return out
}

func assertSquares(t *testing.T, got, want []Square) {
	t.Helper()
	if diff := cmp.Diff(want, got, sortSquares, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("destinations mismatch (-want +got):\n%s", diff)
	}
}
