package timeslot

import (
	"fmt"
	"strconv"
	"strings"
)

// Slot is a half-open [Start, End) interval in minutes since midnight.
type Slot struct {
	Start int
	End   int
}

// Parse converts "HH:MM" (or "HH:MM:SS", seconds ignored) to minutes since midnight.
func Parse(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// New validates and builds a slot from "HH:MM" strings. End must be after start.
func New(start, end string) (Slot, error) {
	s, err := Parse(start)
	if err != nil {
		return Slot{}, err
	}
	e, err := Parse(end)
	if err != nil {
		return Slot{}, err
	}
	if e <= s {
		return Slot{}, fmt.Errorf("end time %s must be after start time %s", end, start)
	}
	return Slot{Start: s, End: e}, nil
}

// Overlaps reports whether two half-open intervals intersect. Touching
// boundaries (a.End == b.Start) do not overlap.
func (a Slot) Overlaps(b Slot) bool {
	return a.Start < b.End && b.Start < a.End
}

// Format renders minutes since midnight as "HH:MM".
func Format(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func (a Slot) StartHHMM() string { return Format(a.Start) }
func (a Slot) EndHHMM() string   { return Format(a.End) }
