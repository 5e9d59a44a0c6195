package slides

// Scope identifies one ordered slide list: a group's cover slides
// (CampaignID nil) or the slides of one campaign.
type Scope struct {
	GroupID    uint
	CampaignID *uint
}

type PositionUpdate struct {
	ID       uint
	Position int
}

// Repack returns the updates that turn the positions of ordered into 0..n-1.
// ordered must already be sorted by (position, id).
func Repack(ordered []Slide) []PositionUpdate {
	var updates []PositionUpdate
	for i, s := range ordered {
		if s.Position != i {
			updates = append(updates, PositionUpdate{ID: s.ID, Position: i})
		}
	}
	return updates
}

// Move computes the list that results from moving the slide at index by dir
// steps. ok is false when either index falls outside the list, in which case
// nothing should change.
func Move(ordered []Slide, index, dir int) (moved []Slide, ok bool) {
	target := index + dir
	if index < 0 || index >= len(ordered) || target < 0 || target >= len(ordered) || dir == 0 {
		return ordered, false
	}
	moved = make([]Slide, len(ordered))
	copy(moved, ordered)
	moved[index], moved[target] = moved[target], moved[index]
	return moved, true
}
