package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Rect is an absolute rectangle in the compositor's logical coordinate space.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewCaptureRegion builds a rect that is safe to hand to a capture backend.
// Width and height must both be at least 1.
func NewCaptureRegion(x, y, width, height int) (Rect, error) {
	r := Rect{X: x, Y: y, Width: width, Height: height}
	if r.Empty() {
		return Rect{}, fmt.Errorf("capture region %s has no area", r)
	}
	return r, nil
}

// Empty reports whether the rect has zero or negative area.
func (r Rect) Empty() bool {
	return r.Width < 1 || r.Height < 1
}

// Contains reports whether the point lies inside the rect.
// The right and bottom edges are exclusive.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// String renders the rect in the "X,Y WxH" form grim and slurp use.
func (r Rect) String() string {
	return fmt.Sprintf("%d,%d %dx%d", r.X, r.Y, r.Width, r.Height)
}

// ParseRect parses the "X,Y WxH" geometry form.
func ParseRect(s string) (Rect, error) {
	s = strings.TrimSpace(s)
	pos, size, ok := strings.Cut(s, " ")
	if !ok {
		return Rect{}, fmt.Errorf("invalid geometry %q: expected \"X,Y WxH\"", s)
	}
	xs, ys, ok := strings.Cut(pos, ",")
	if !ok {
		return Rect{}, fmt.Errorf("invalid geometry %q: expected \"X,Y\" position", s)
	}
	ws, hs, ok := strings.Cut(strings.TrimSpace(size), "x")
	if !ok {
		return Rect{}, fmt.Errorf("invalid geometry %q: expected \"WxH\" size", s)
	}

	var vals [4]int
	for i, part := range []string{xs, ys, ws, hs} {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return Rect{}, fmt.Errorf("invalid geometry %q: %w", s, err)
		}
		vals[i] = v
	}
	return Rect{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}
