// Package id names transaction groups by month and position, e.g. "2021-01-003"
// for the third group dated January 2021. Leg ids append a letter per leg.
package id

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatGroupID returns a group ID like "2021-01-003".
func FormatGroupID(year, month, seq int) string {
	return fmt.Sprintf("%04d-%02d-%03d", year, month, seq)
}

// FormatLegID returns a leg ID like "2021-01-003a" (leg 0='a', 1='b', etc.).
func FormatLegID(groupID string, leg int) string {
	return groupID + string(rune('a'+leg))
}

// ParseGroupID parses "2021-01-003" (or a leg ID) into year, month, seq.
func ParseGroupID(id string) (year, month, seq int, err error) {
	base := GroupOf(id)

	parts := strings.SplitN(base, "-", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid group ID format: %q", id)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid year in group ID %q: %w", id, err)
	}

	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid month in group ID %q: %w", id, err)
	}

	seq, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid sequence in group ID %q: %w", id, err)
	}

	return year, month, seq, nil
}

// GroupOf strips the leg suffix from a leg ID.
// "2021-01-003a" -> "2021-01-003"
func GroupOf(legID string) string {
	i := len(legID)
	for i > 0 && legID[i-1] >= 'a' && legID[i-1] <= 'z' {
		i--
	}
	return legID[:i]
}

// Sequencer hands out group IDs in replay order, restarting at 1 each month.
type Sequencer struct {
	seq map[string]int
}

// NewSequencer returns a Sequencer with no IDs issued.
func NewSequencer() *Sequencer {
	return &Sequencer{seq: make(map[string]int)}
}

// Next returns the next group ID for a group dated date.
func (s *Sequencer) Next(date time.Time) string {
	month := date.Format("2006-01")
	s.seq[month]++
	return FormatGroupID(date.Year(), int(date.Month()), s.seq[month])
}
