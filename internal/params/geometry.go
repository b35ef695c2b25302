package params

import (
	"fmt"
	"strconv"
	"strings"
)

// Rectangle is a remembered window geometry. X/Y of -1,-1 mean "let
// the framework centre the dialog".
type Rectangle struct {
	X, Y, Width, Height int
}

// Centered reports whether the position carries the centre sentinel.
func (r Rectangle) Centered() bool { return r.X == -1 && r.Y == -1 }

// String encodes the 4-int form "x,y,width,height".
func (r Rectangle) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.X, r.Y, r.Width, r.Height)
}

// ParseRectangle decodes "x,y,width,height".
func ParseRectangle(s string) (Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Rectangle{}, fmt.Errorf("parse rectangle %q: want 4 fields, got %d", s, len(parts))
	}
	var vals [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Rectangle{}, fmt.Errorf("parse rectangle %q: %w", s, err)
		}
		vals[i] = v
	}
	return Rectangle{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

// DialogSize reads the remembered geometry for a dialog type. When
// the key is unset or malformed the centre sentinel is returned.
func (s *Store) DialogSize(dialog string) Rectangle {
	raw := s.GetFree(dialog + "_size")
	if raw == "" {
		return Rectangle{X: -1, Y: -1}
	}
	r, err := ParseRectangle(raw)
	if err != nil {
		return Rectangle{X: -1, Y: -1}
	}
	return r
}

// SetDialogSize remembers the geometry for a dialog type.
func (s *Store) SetDialogSize(dialog string, r Rectangle) {
	s.PutFree(dialog+"_size", r.String())
}
