package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidTimeSlot = errors.New("invalid time slot")

// TimeSlot is a labelled window inside one day, e.g. "10:00–12:00".
type TimeSlot struct {
	Label string
	Start time.Duration // offset from midnight
	End   time.Duration
}

func (s TimeSlot) Duration() time.Duration {
	return s.End - s.Start
}

// ParseTimeSlot accepts "HH:MM-HH:MM" with a hyphen, en dash or em dash as the
// separator and optional spaces around it.
func ParseTimeSlot(label string) (TimeSlot, error) {
	normalized := strings.NewReplacer("–", "-", "—", "-", " ", "").Replace(label)
	parts := strings.Split(normalized, "-")
	if len(parts) != 2 {
		return TimeSlot{}, fmt.Errorf("%w: %q", ErrInvalidTimeSlot, label)
	}

	start, err := parseClock(parts[0])
	if err != nil {
		return TimeSlot{}, fmt.Errorf("%w: %q", ErrInvalidTimeSlot, label)
	}
	end, err := parseClock(parts[1])
	if err != nil {
		return TimeSlot{}, fmt.Errorf("%w: %q", ErrInvalidTimeSlot, label)
	}
	if end <= start {
		return TimeSlot{}, fmt.Errorf("%w: %q ends before it starts", ErrInvalidTimeSlot, label)
	}

	return TimeSlot{Label: label, Start: start, End: end}, nil
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Overlaps reports whether the two windows share any time. Touching edges
// ("08:00-10:00" and "10:00-12:00") do not overlap.
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	return s.Start < other.End && other.Start < s.End
}

// SlotsOverlap parses both labels; unparseable labels are compared verbatim.
func SlotsOverlap(a, b string) bool {
	sa, errA := ParseTimeSlot(a)
	sb, errB := ParseTimeSlot(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return sa.Overlaps(sb)
}
