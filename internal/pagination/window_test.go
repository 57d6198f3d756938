package pagination

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokens builds a Window from ints and "..." literals.
func tokens(items ...any) Window {
	w := make(Window, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case int:
			w = append(w, PageToken(v))
		case string:
			w = append(w, Ellipsis)
		}
	}
	return w
}

func TestComputeWindowScenarios(t *testing.T) {
	tests := []struct {
		total, current int
		want           Window
	}{
		{15, 1, tokens(1, 2, 3, "...", 15)},
		{37, 4, tokens(1, 2, 3, 4, 5, "...", 37)},
		{28, 7, tokens(1, "...", 6, 7, 8, "...", 28)},
		{28, 4, tokens(1, 2, 3, 4, 5, "...", 28)},
		{28, 25, tokens(1, "...", 24, 25, 26, 27, 28)},
		{5, 1, tokens(1, 2, 3, 4, 5)},
		{10, 8, tokens(1, "...", 7, 8, 9, 10)},
		{15, 15, tokens(1, "...", 12, 13, 14, 15)},
		{7, 1, tokens(1, 2, 3, "...", 7)},
		{7, 5, tokens(1, "...", 4, 5, 6, 7)},
		{1, 1, tokens(1)},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.total, tt.current), func(t *testing.T) {
			got := ComputeWindow(tt.total, tt.current)
			if diff := cmp.Diff(tt.want.String(), got.String()); diff != "" {
				t.Errorf("ComputeWindow(%d, %d) mismatch (-want +got):\n%s", tt.total, tt.current, diff)
			}
		})
	}
}

func TestComputeWindowSmallTotalsListEveryPage(t *testing.T) {
	for total := 1; total <= MaxWithoutEllipsis; total++ {
		for current := 1; current <= total; current++ {
			got := ComputeWindow(total, current)
			assert.Equal(t, pageRange(1, total), got, "total=%d current=%d", total, current)
		}
	}
}

// The branch where neither side collapses exists only at (7, 4); a single
// hidden page on either side is shown as a number instead.
func TestComputeWindowNeitherEllipsis(t *testing.T) {
	assert.Equal(t, "1 2 3 4 5 6 7", ComputeWindow(7, 4).String())

	for total := MaxWithoutEllipsis + 1; total <= 200; total++ {
		for current := 1; current <= total; current++ {
			right := min(current+Adjacent, total)
			left := max(current-Adjacent, 1)
			showRight := right < total-MinGapForEllipsis
			showLeft := current > SideCount+Adjacent && left > MinGapForEllipsis
			if !showRight && !showLeft {
				assert.Equal(t, [2]int{7, 4}, [2]int{total, current})
			}
		}
	}
}

// checkInvariants asserts the structural properties every window must hold.
func checkInvariants(t *testing.T, total, current int) {
	t.Helper()

	w := ComputeWindow(total, current)
	name := fmt.Sprintf("%d/%d %s", total, current, w)

	require.NotEmpty(t, w, name)

	if total > MaxWithoutEllipsis {
		assert.Equal(t, PageToken(1), w[0], name)
		assert.Equal(t, PageToken(total), w[len(w)-1], name)
	}

	shown := w.Contains(current) || w.Contains(current-1)
	if current < math.MaxInt {
		shown = shown || w.Contains(current+1)
	}
	assert.True(t, shown, "selection hidden: %s", name)

	prev := 0
	for i, tok := range w {
		if tok.IsEllipsis() {
			require.Greater(t, i, 0, name)
			require.Less(t, i, len(w)-1, name)
			assert.False(t, w[i-1].IsEllipsis(), "adjacent ellipses: %s", name)

			hidden := w[i+1].Page() - w[i-1].Page() - 1
			assert.GreaterOrEqual(t, hidden, MinGapForEllipsis, "ellipsis hides %d page(s): %s", hidden, name)
			continue
		}
		assert.Greater(t, tok.Page(), prev, "not ascending: %s", name)
		prev = tok.Page()
	}
}

func TestComputeWindowInvariants(t *testing.T) {
	for total := 1; total <= 120; total++ {
		for current := 1; current <= total; current++ {
			checkInvariants(t, total, current)
		}
	}
}

func TestComputeWindowLargeTotals(t *testing.T) {
	const top = math.MaxInt

	for _, current := range []int{1, 2, 3, 4, 5, top / 2, top - 4, top - 3, top - 2, top - 1, top} {
		checkInvariants(t, top, current)
	}

	lastBlock := fmt.Sprintf("1 ... %d %d %d %d", top-3, top-2, top-1, top)
	assert.Equal(t, lastBlock, ComputeWindow(top, top).String())
	assert.Equal(t, lastBlock, ComputeWindow(top, top-1).String())
	assert.Equal(t, fmt.Sprintf("1 2 3 ... %d", top), ComputeWindow(top, 1).String())
}

func TestComputeWindowOutOfRange(t *testing.T) {
	t.Run("No pages", func(t *testing.T) {
		assert.Empty(t, ComputeWindow(0, 1))
		assert.Empty(t, ComputeWindow(-3, 1))
	})

	t.Run("Current beyond last page", func(t *testing.T) {
		assert.Equal(t, ComputeWindow(28, 28), ComputeWindow(28, 99))
	})

	t.Run("Current below first page", func(t *testing.T) {
		assert.Equal(t, ComputeWindow(28, 1), ComputeWindow(28, 0))
		assert.Equal(t, ComputeWindow(28, 1), ComputeWindow(28, -5))
	})
}

func TestComputeWindowFreshAllocation(t *testing.T) {
	a := ComputeWindow(28, 7)
	b := ComputeWindow(28, 7)
	a[0] = PageToken(99)
	assert.Equal(t, PageToken(1), b[0])
}

func TestTokenJSON(t *testing.T) {
	w := ComputeWindow(28, 7)

	data, err := json.Marshal(w)
	require.NoError(t, err)
	assert.JSONEq(t, `[1,"...",6,7,8,"...",28]`, string(data))

	var decoded Window
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, w, decoded)

	t.Run("Rejects unknown markers", func(t *testing.T) {
		var tok Token
		assert.Error(t, json.Unmarshal([]byte(`"…"`), &tok))
		assert.Error(t, json.Unmarshal([]byte(`0`), &tok))
		assert.Error(t, json.Unmarshal([]byte(`true`), &tok))
	})
}

func TestWindowHelpers(t *testing.T) {
	w := ComputeWindow(28, 25)
	assert.Equal(t, []int{1, 24, 25, 26, 27, 28}, w.Pages())
	assert.True(t, w.Contains(25))
	assert.False(t, w.Contains(2))
	assert.Equal(t, "1 ... 24 25 26 27 28", w.String())
	assert.Equal(t, "...", Ellipsis.String())
	assert.Equal(t, 0, Ellipsis.Page())
}
