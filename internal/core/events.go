package core

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/mapcollab/boardd/internal/domain"
)

// Outbound presence events. Everything on the wire carries a "type"
// discriminator; payload shapes mirror the inbound surface.

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewErrorEvent(msg string) ErrorEvent {
	return ErrorEvent{Type: "error", Message: msg}
}

type userJoinedEvent struct {
	Type   string  `json:"type"`
	ConnID ConnID  `json:"connectionId"`
	User   UserDTO `json:"user"`
}

type userLeftEvent struct {
	Type   string  `json:"type"`
	ConnID ConnID  `json:"connectionId"`
	User   UserDTO `json:"user"`
}

type userListEvent struct {
	Type  string    `json:"type"`
	Users []UserDTO `json:"users"`
}

type cursorEvent struct {
	Type   string         `json:"type"`
	ConnID ConnID         `json:"connectionId"`
	Lng    float64        `json:"lng"`
	Lat    float64        `json:"lat"`
	User   domain.Profile `json:"user"`
	Color  string         `json:"color"`
}

// Encode marshals an event into a Frame. A marshal failure is a
// programming error on our own event types; it is logged and yields a
// nil frame which TrySend treats as nothing to deliver.
func Encode(v any) Frame {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "core.events").Msg("encode event")
		return nil
	}
	return b
}
