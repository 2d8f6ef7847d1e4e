// Package region implements set algebra over unions of axis-aligned
// rectangles in screen coordinates.
//
// A Region is kept in canonical y-x banded form: rectangles are sorted by
// top edge and then by left edge, every band of rectangles shares the same
// top and bottom, bands never overlap, and vertically adjacent bands with
// identical horizontal spans are merged. Two regions covering the same
// pixels therefore have identical rectangle lists, which makes Equal and
// String deterministic.
//
// Boolean operations sweep over the y boundaries of both operands and
// combine the x spans of each band.
package region

import (
	"fmt"
	"sort"
	"strings"
)

// Rect is a half-open rectangle [Left, Right) x [Top, Bottom).
type Rect struct {
	Left   int `json:"left" yaml:"left"`
	Top    int `json:"top" yaml:"top"`
	Right  int `json:"right" yaml:"right"`
	Bottom int `json:"bottom" yaml:"bottom"`
}

// IsEmpty reports whether the rectangle covers no pixels.
func (r Rect) IsEmpty() bool {
	return r.Right <= r.Left || r.Bottom <= r.Top
}

// Width returns the horizontal extent of r.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns the vertical extent of r.
func (r Rect) Height() int { return r.Bottom - r.Top }

// String formats the rectangle the way Skia prints region members.
func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", r.Left, r.Top, r.Right, r.Bottom)
}

// Region is an immutable set of pixels described by non-overlapping
// rectangles. The zero value is the empty region.
type Region struct {
	rects []Rect
}

// New returns the union of the given rectangles. Empty rectangles are ignored
// and overlapping input is allowed.
func New(rects ...Rect) Region {
	return Region{rects: sweep(rects, nil, func(a, _ bool) bool { return a })}
}

// FromRect returns the region covering a single rectangle.
func FromRect(left, top, right, bottom int) Region {
	return New(Rect{Left: left, Top: top, Right: right, Bottom: bottom})
}

// Rects returns a copy of the canonical rectangles of r.
func (r Region) Rects() []Rect {
	out := make([]Rect, len(r.rects))
	copy(out, r.rects)
	return out
}

// IsEmpty reports whether r covers no pixels.
func (r Region) IsEmpty() bool {
	return len(r.rects) == 0
}

// Union returns the pixels covered by r or o.
func (r Region) Union(o Region) Region {
	return Region{rects: sweep(r.rects, o.rects, func(a, b bool) bool { return a || b })}
}

// Intersect returns the pixels covered by both r and o.
func (r Region) Intersect(o Region) Region {
	return Region{rects: sweep(r.rects, o.rects, func(a, b bool) bool { return a && b })}
}

// Difference returns the part of r that o does not cover.
func (r Region) Difference(o Region) Region {
	return Region{rects: sweep(r.rects, o.rects, func(a, b bool) bool { return a && !b })}
}

// Xor returns the pixels covered by exactly one of r and o.
func (r Region) Xor(o Region) Region {
	return Region{rects: sweep(r.rects, o.rects, func(a, b bool) bool { return a != b })}
}

// Contains reports whether the pixel at (x, y) lies inside r.
func (r Region) Contains(x, y int) bool {
	for _, rc := range r.rects {
		if x >= rc.Left && x < rc.Right && y >= rc.Top && y < rc.Bottom {
			return true
		}
	}
	return false
}

// ContainsRegion reports whether every pixel of o lies inside r.
func (r Region) ContainsRegion(o Region) bool {
	return o.Difference(r).IsEmpty()
}

// Bounds returns the smallest rectangle enclosing r. An empty region has
// an empty bounding rectangle.
func (r Region) Bounds() Rect {
	if len(r.rects) == 0 {
		return Rect{}
	}
	b := r.rects[0]
	for _, rc := range r.rects[1:] {
		b.Left = min(b.Left, rc.Left)
		b.Top = min(b.Top, rc.Top)
		b.Right = max(b.Right, rc.Right)
		b.Bottom = max(b.Bottom, rc.Bottom)
	}
	return b
}

// Area returns the number of pixels covered by r.
func (r Region) Area() int {
	total := 0
	for _, rc := range r.rects {
		total += rc.Width() * rc.Height()
	}
	return total
}

// Equal reports whether r and o cover exactly the same pixels.
func (r Region) Equal(o Region) bool {
	if len(r.rects) != len(o.rects) {
		return false
	}
	for i := range r.rects {
		if r.rects[i] != o.rects[i] {
			return false
		}
	}
	return true
}

// String renders r as SkRegion((l,t,r,b)(l,t,r,b)...).
func (r Region) String() string {
	var buf strings.Builder
	buf.WriteString("SkRegion(")
	for _, rc := range r.rects {
		buf.WriteString(rc.String())
	}
	buf.WriteString(")")
	return buf.String()
}

type span struct {
	left, right int
}

// sweep combines two rectangle lists with a per-pixel predicate and returns
// the result in canonical banded form. Neither input needs to be canonical.
func sweep(a, b []Rect, keep func(inA, inB bool) bool) []Rect {
	ys := edges(a, b, func(rc Rect) (int, int) { return rc.Top, rc.Bottom })
	if len(ys) < 2 {
		return nil
	}

	var (
		out        []Rect
		prevSpans  []span
		prevStart  int
		prevBottom int
		havePrev   bool
	)

	for i := 0; i+1 < len(ys); i++ {
		top, bottom := ys[i], ys[i+1]
		spans := bandSpans(strip(a, top, bottom), strip(b, top, bottom), keep)
		if len(spans) == 0 {
			havePrev = false
			continue
		}

		// Coalesce with the band directly above when the spans match.
		if havePrev && prevBottom == top && sameSpans(prevSpans, spans) {
			for j := prevStart; j < len(out); j++ {
				out[j].Bottom = bottom
			}
			prevBottom = bottom
			continue
		}

		prevStart = len(out)
		for _, s := range spans {
			out = append(out, Rect{Left: s.left, Top: top, Right: s.right, Bottom: bottom})
		}
		prevSpans = spans
		prevBottom = bottom
		havePrev = true
	}
	return out
}

// strip returns the x spans of rects that fully cover the band [top, bottom).
// Because band boundaries include every rectangle edge, a rectangle either
// covers the whole band or none of it.
func strip(rects []Rect, top, bottom int) []span {
	var spans []span
	for _, rc := range rects {
		if rc.IsEmpty() {
			continue
		}
		if rc.Top <= top && rc.Bottom >= bottom {
			spans = append(spans, span{left: rc.Left, right: rc.Right})
		}
	}
	return spans
}

// bandSpans evaluates keep over every elementary x interval of one band and
// merges touching intervals.
func bandSpans(sa, sb []span, keep func(inA, inB bool) bool) []span {
	xs := make([]int, 0, 2*(len(sa)+len(sb)))
	for _, s := range sa {
		xs = append(xs, s.left, s.right)
	}
	for _, s := range sb {
		xs = append(xs, s.left, s.right)
	}
	xs = uniqueSorted(xs)

	var out []span
	for i := 0; i+1 < len(xs); i++ {
		left, right := xs[i], xs[i+1]
		if !keep(covers(sa, left, right), covers(sb, left, right)) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].right == left {
			out[n-1].right = right
			continue
		}
		out = append(out, span{left: left, right: right})
	}
	return out
}

func covers(spans []span, left, right int) bool {
	for _, s := range spans {
		if s.left <= left && s.right >= right {
			return true
		}
	}
	return false
}

func sameSpans(a, b []span) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func edges(a, b []Rect, pick func(Rect) (int, int)) []int {
	out := make([]int, 0, 2*(len(a)+len(b)))
	for _, list := range [][]Rect{a, b} {
		for _, rc := range list {
			if rc.IsEmpty() {
				continue
			}
			lo, hi := pick(rc)
			out = append(out, lo, hi)
		}
	}
	return uniqueSorted(out)
}

func uniqueSorted(vals []int) []int {
	sort.Ints(vals)
	out := vals[:0]
	for _, v := range vals {
		if len(out) == 0 || out[len(out)-1] != v {
			out = append(out, v)
		}
	}
	return out
}
