package region

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse reads a region from its String form, for example
// "SkRegion((0,0,1440,171)(0,171,720,300))". The shorthand "l,t,r,b" and a
// bare list of parenthesized rectangles are accepted too. The result is
// canonicalized, so overlapping input is allowed.
func Parse(s string) (Region, error) {
	body := strings.TrimSpace(s)
	if strings.HasPrefix(body, "SkRegion(") {
		if !strings.HasSuffix(body, ")") {
			return Region{}, fmt.Errorf("region %q: missing closing parenthesis", s)
		}
		body = strings.TrimSuffix(strings.TrimPrefix(body, "SkRegion("), ")")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return Region{}, nil
	}

	if !strings.HasPrefix(body, "(") {
		rc, err := parseRect(body)
		if err != nil {
			return Region{}, fmt.Errorf("region %q: %w", s, err)
		}
		return New(rc), nil
	}

	var rects []Rect
	for body != "" {
		if body[0] != '(' {
			return Region{}, fmt.Errorf("region %q: expected '(' at %q", s, body)
		}
		end := strings.IndexByte(body, ')')
		if end < 0 {
			return Region{}, fmt.Errorf("region %q: unterminated rectangle", s)
		}
		rc, err := parseRect(body[1:end])
		if err != nil {
			return Region{}, fmt.Errorf("region %q: %w", s, err)
		}
		rects = append(rects, rc)
		body = strings.TrimSpace(body[end+1:])
	}
	return New(rects...), nil
}

// ParseRect reads a single "l,t,r,b" rectangle.
func ParseRect(s string) (Rect, error) {
	return parseRect(s)
}

func parseRect(s string) (Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Rect{}, fmt.Errorf("rectangle %q: want 4 comma-separated values, got %d", s, len(parts))
	}
	var vals [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Rect{}, fmt.Errorf("rectangle %q: %w", s, err)
		}
		vals[i] = v
	}
	return Rect{Left: vals[0], Top: vals[1], Right: vals[2], Bottom: vals[3]}, nil
}
