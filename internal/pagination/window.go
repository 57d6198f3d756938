package pagination

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Window layout constants.
const (
	// Adjacent is the number of pages shown on each side of the current page.
	Adjacent = 1
	// SideCount is the size of the contiguous block at the start or end of the
	// window when only one side is collapsed.
	SideCount = 3
	// MaxWithoutEllipsis is the largest page count rendered in full.
	MaxWithoutEllipsis = 6
	// MinGapForEllipsis is the smallest hidden range an ellipsis may replace.
	MinGapForEllipsis = 2
)

// EllipsisMarker is the literal rendered for a collapsed range of pages.
const EllipsisMarker = "..."

// Token is a single marker in a pagination window: either a page number or an
// ellipsis. The zero value is the ellipsis.
type Token struct {
	page int
}

// Ellipsis is the token standing in for a hidden, contiguous range of pages.
var Ellipsis = Token{}

// PageToken returns the token for page n. n must be positive.
func PageToken(n int) Token {
	return Token{page: n}
}

// IsEllipsis reports whether t is the ellipsis marker.
func (t Token) IsEllipsis() bool {
	return t.page == 0
}

// Page returns the page number carried by t, or 0 for the ellipsis.
func (t Token) Page() int {
	return t.page
}

// String renders the page number or EllipsisMarker.
func (t Token) String() string {
	if t.IsEllipsis() {
		return EllipsisMarker
	}
	return strconv.Itoa(t.page)
}

// MarshalJSON encodes a page as a bare number and the ellipsis as "...".
func (t Token) MarshalJSON() ([]byte, error) {
	if t.IsEllipsis() {
		return json.Marshal(EllipsisMarker)
	}
	return json.Marshal(t.page)
}

// UnmarshalJSON accepts the encoding produced by MarshalJSON.
func (t *Token) UnmarshalJSON(data []byte) error {
	var marker string
	if err := json.Unmarshal(data, &marker); err == nil {
		if marker != EllipsisMarker {
			return fmt.Errorf("invalid pagination token %q", marker)
		}
		*t = Ellipsis
		return nil
	}

	var page int
	if err := json.Unmarshal(data, &page); err != nil {
		return fmt.Errorf("invalid pagination token %s: %w", data, err)
	}
	if page < 1 {
		return fmt.Errorf("invalid pagination token %d: page must be >= 1", page)
	}
	*t = PageToken(page)
	return nil
}

// Window is the ordered sequence of tokens rendered left-to-right.
type Window []Token

// Pages returns the numeric tokens of w in order.
func (w Window) Pages() []int {
	pages := make([]int, 0, len(w))
	for _, t := range w {
		if !t.IsEllipsis() {
			pages = append(pages, t.page)
		}
	}
	return pages
}

// Contains reports whether page is rendered as a number in w.
func (w Window) Contains(page int) bool {
	for _, t := range w {
		if !t.IsEllipsis() && t.page == page {
			return true
		}
	}
	return false
}

// String joins the tokens with single spaces, e.g. "1 ... 6 7 8 ... 28".
func (w Window) String() string {
	parts := make([]string, len(w))
	for i, t := range w {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// ComputeWindow returns the page markers for a control showing totalPages
// pages with currentPage selected.
//
// Up to MaxWithoutEllipsis pages are listed in full. Beyond that the first and
// last page are always shown, the current page is shown with its Adjacent
// neighbours, and hidden ranges of at least MinGapForEllipsis pages collapse
// into an ellipsis.
//
// currentPage is clamped into [1, totalPages]. A totalPages below 1 yields an
// empty window.
func ComputeWindow(totalPages, currentPage int) Window {
	if totalPages < 1 {
		return Window{}
	}
	if totalPages <= MaxWithoutEllipsis {
		return pageRange(1, totalPages)
	}

	currentPage = Clamp(currentPage, totalPages)

	// currentPage+Adjacent would overflow at math.MaxInt.
	rightNeighbor := totalPages
	if currentPage <= totalPages-Adjacent {
		rightNeighbor = currentPage + Adjacent
	}
	leftNeighbor := max(currentPage-Adjacent, 1)

	showRightEllipsis := rightNeighbor < totalPages-MinGapForEllipsis
	showLeftEllipsis := currentPage > SideCount+Adjacent && leftNeighbor > MinGapForEllipsis

	switch {
	case showRightEllipsis && !showLeftEllipsis:
		leftBlockEnd := max(SideCount, currentPage+Adjacent)
		w := pageRange(1, leftBlockEnd)
		return append(w, Ellipsis, PageToken(totalPages))

	case showLeftEllipsis && !showRightEllipsis:
		rightBlockSize := max(SideCount, totalPages-currentPage+Adjacent)
		w := Window{PageToken(1), Ellipsis}
		return append(w, pageRange(totalPages-rightBlockSize, totalPages)...)

	case showLeftEllipsis && showRightEllipsis:
		w := Window{PageToken(1), Ellipsis}
		w = append(w, pageRange(leftNeighbor, rightNeighbor)...)
		return append(w, Ellipsis, PageToken(totalPages))
	}

	// Only reached at (7, 4): either ellipsis would hide a single page. Every
	// page is listed instead of the empty list a bare guard would return,
	// which would hide the selection.
	return pageRange(1, totalPages)
}

// pageRange returns the numeric tokens from..to inclusive.
func pageRange(from, to int) Window {
	if to < from {
		return Window{}
	}
	// Counting up to n keeps the loop from wrapping when to is math.MaxInt.
	n := to - from
	w := make(Window, 0, n+1)
	for i := 0; i <= n; i++ {
		w = append(w, PageToken(from+i))
	}
	return w
}
