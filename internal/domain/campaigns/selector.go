package campaigns

import (
	"sort"
	"time"
)

// SortForSelection orders campaigns by priority, then start, then id.
// It sorts in place and is stable.
func SortForSelection(list []Campaign) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if !a.StartsAt.Equal(b.StartsAt) {
			return a.StartsAt.Before(b.StartsAt)
		}
		return a.ID < b.ID
	})
}

// SelectActive returns the campaign that should play at now, or nil.
// When several are running the first in selection order wins.
func SelectActive(now time.Time, list []Campaign) *Campaign {
	ordered := make([]Campaign, len(list))
	copy(ordered, list)
	SortForSelection(ordered)

	for i := range ordered {
		if ordered[i].Status(now) == StatusRunning {
			return &ordered[i]
		}
	}
	return nil
}

// ActiveID is SelectActive reduced to an id pointer.
func ActiveID(now time.Time, list []Campaign) *uint {
	if c := SelectActive(now, list); c != nil {
		id := c.ID
		return &id
	}
	return nil
}
