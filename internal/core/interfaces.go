package core

import "github.com/mapcollab/boardd/internal/domain"

// Frame is a marshaled outbound event.
type Frame []byte

// ConnID identifies one physical transport connection. Each websocket
// upgrade gets a fresh one; it is never reused.
type ConnID string

// SignalConnection is a transport endpoint for outbound events.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// UserDTO is the wire-level view of a board member: profile plus the
// color the board assigned to it.
type UserDTO struct {
	ID       domain.UserID `json:"id"`
	Name     string        `json:"name,omitempty"`
	Initials string        `json:"initials,omitempty"`
	Picture  string        `json:"picture,omitempty"`
	Color    string        `json:"color"`
}

// PublishResult reports fan-out stats; drops are logged, never propagated.
type PublishResult struct {
	SentTo  int
	Dropped int
}

// BoardService is the core-facing API of one board. Every method is safe
// for concurrent use; mutations and the broadcasts they trigger are
// applied under the board's own lock, so broadcast order matches the
// order mutations complete and fan-out always sees a post-mutation
// membership snapshot.
type BoardService interface {
	ID() domain.BoardID
	MemberCount() int
	Snapshot() []UserDTO

	// Join inserts (or re-binds, for a reconnecting user id) a member and
	// broadcasts user_joined to the others plus user_list to everyone.
	// Returns ErrBoardClosed if the board was already emptied and removed;
	// the caller must re-fetch a fresh instance and retry.
	Join(conn ConnID, profile domain.Profile, sig SignalConnection) (string, error)

	// Remove deletes the member bound to conn, releases its color and
	// broadcasts user_left plus a refreshed user_list to the remaining
	// members. removed is false when conn has no member here. empty is
	// true when the board just lost its last member; the board is then
	// closed to further joins and must be dropped from the manager.
	Remove(conn ConnID) (removed bool, empty bool)

	// RelayCursor fans a cursor position out to every member except the
	// sender, using the sender's board-assigned color. Unknown senders
	// are dropped silently.
	RelayCursor(conn ConnID, lng, lat float64)

	// Broadcast marshals v and delivers it to every member, sender
	// exclusion does not apply (used for externally-originated events).
	Broadcast(v any) PublishResult
}

type BoardInfo struct {
	ID          domain.BoardID `json:"id"`
	MemberCount int            `json:"memberCount"`
}

// BoardManager owns the board id -> board mapping. Boards are created
// lazily and removed as soon as they are empty.
type BoardManager interface {
	GetOrCreate(id domain.BoardID) BoardService
	Get(id domain.BoardID) (BoardService, bool)

	// RemoveIfEmpty drops the mapping for id iff it still points at b and
	// b has no members. Called after every membership removal.
	RemoveIfEmpty(id domain.BoardID, b BoardService)

	List() []BoardInfo
	Each(fn func(BoardService))
}
