package realtime

import "context"

const (
	EventPlaylistUpdate = "playlist:update"
	EventSettingsUpdate = "settings:update"
	EventGroupsUpdate   = "groups:update"
)

// Reasons attached to playlist:update events raised by background jobs.
// Admin mutations send no reason.
const (
	ReasonCampaignTransition = "campaign-transition"
	ReasonExpiredCleanup     = "expired-campaign-cleanup"
)

// Payload is the body of every event. GroupID is nil only for groups:update
// events that concern the group list as a whole.
type Payload struct {
	GroupID      *uint   `json:"groupId"`
	Reason       string  `json:"reason,omitempty"`
	Background   string  `json:"background,omitempty"`
	DefaultImage *string `json:"defaultImage,omitempty"`
}

// Event is also the wire frame sent to players.
type Event struct {
	Type    string  `json:"type"`
	Payload Payload `json:"payload"`
}

// Publisher delivers events to connected players. Delivery is best effort:
// implementations log and count failures instead of returning them.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

func PlaylistUpdate(groupID uint, reason string) Event {
	return Event{Type: EventPlaylistUpdate, Payload: Payload{GroupID: &groupID, Reason: reason}}
}

func SettingsUpdate(groupID uint, background string, defaultImage *string) Event {
	return Event{Type: EventSettingsUpdate, Payload: Payload{
		GroupID:      &groupID,
		Background:   background,
		DefaultImage: defaultImage,
	}}
}

func GroupsUpdate(groupID *uint) Event {
	return Event{Type: EventGroupsUpdate, Payload: Payload{GroupID: groupID}}
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, Event) {}
