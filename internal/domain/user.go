// Package domain contains entity without logic, just meta-data
package domain

type UserID string

// Profile is the caller-supplied identity of a participant.
// The presence core treats it as opaque except for ID.
type Profile struct {
	ID       UserID `json:"id"`
	Name     string `json:"name,omitempty"`
	Initials string `json:"initials,omitempty"`
	Picture  string `json:"picture,omitempty"`
}
