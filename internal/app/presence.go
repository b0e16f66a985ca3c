package app

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/mapcollab/boardd/internal/core"
	"github.com/mapcollab/boardd/internal/domain"
)

// ErrJoinInvalid is unicast back to the requester as an error event;
// no state is mutated.
var ErrJoinInvalid = errors.New("boardId and user.id required")

// Presence is the event router for board membership. It owns no
// transport: connections are handed in on Join and the adapter keeps
// closing them. All board mutation goes through here.
type Presence struct {
	Registry *Registry
	Boards   core.BoardManager
}

func NewPresence(boards core.BoardManager) *Presence {
	return &Presence{Registry: NewRegistry(), Boards: boards}
}

// Connect registers a transport-live connection. No board membership
// yet and nothing to broadcast; ConnIDs are unique per physical
// connection, so there is no state to keep before a join.
func (p *Presence) Connect(conn core.ConnID) {
	log.Debug().Str("module", "app.presence").Str("conn", string(conn)).Msg("connected")
}

// Join puts a connection on a board. A connection already bound to a
// different board, or joining again as a different user, leaves its
// current membership first, so stale members never linger. For a user
// id already present on the board (reconnect) the existing color is
// kept. Returns ErrJoinInvalid on a missing board or user id.
func (p *Presence) Join(conn core.ConnID, boardID domain.BoardID, profile domain.Profile, sig core.SignalConnection) error {
	if boardID == "" || profile.ID == "" {
		return ErrJoinInvalid
	}

	if prev, ok := p.Registry.Lookup(conn); ok && (prev.BoardID != boardID || prev.Profile.ID != profile.ID) {
		p.Leave(conn)
	}

	for {
		board := p.Boards.GetOrCreate(boardID)
		_, err := board.Join(conn, profile, sig)
		if errors.Is(err, core.ErrBoardClosed) {
			// Lost the race with the board's last leaver; the manager no
			// longer maps this instance, fetch a fresh one.
			continue
		}
		break
	}
	p.Registry.Bind(conn, boardID, profile)
	return nil
}

// Leave takes a connection off its board: no-op when nothing is bound,
// which also makes leave/disconnect teardown idempotent.
func (p *Presence) Leave(conn core.ConnID) {
	sess, ok := p.Registry.Lookup(conn)
	if !ok {
		return
	}
	p.Registry.Unbind(conn)

	board, ok := p.Boards.Get(sess.BoardID)
	if !ok {
		return
	}
	if _, empty := board.Remove(conn); empty {
		p.Boards.RemoveIfEmpty(sess.BoardID, board)
	}
}

// Disconnect is the implicit leave raised by the transport when a
// connection drops. Cleanup is shared with Leave, so a disconnect after
// an explicit leave (or the reverse) is a no-op.
func (p *Presence) Disconnect(conn core.ConnID) {
	log.Debug().Str("module", "app.presence").Str("conn", string(conn)).Msg("disconnected")
	p.Leave(conn)
}

// Cursor relays a position to the rest of the sender's board. Unbound
// senders are dropped silently; that is an expected race, not an error.
func (p *Presence) Cursor(conn core.ConnID, lng, lat float64) {
	sess, ok := p.Registry.Lookup(conn)
	if !ok {
		return
	}
	board, ok := p.Boards.Get(sess.BoardID)
	if !ok {
		return
	}
	board.RelayCursor(conn, lng, lat)
}

// BroadcastToBoard delivers an externally-originated event to every
// member of a board, or to every active board when boardID is empty.
// The payload is opaque to the presence core.
func (p *Presence) BroadcastToBoard(boardID domain.BoardID, event any) {
	if boardID == "" {
		p.Boards.Each(func(b core.BoardService) {
			b.Broadcast(event)
		})
		return
	}
	board, ok := p.Boards.Get(boardID)
	if !ok {
		log.Debug().Str("module", "app.presence").Str("board", string(boardID)).Msg("broadcast to absent board dropped")
		return
	}
	board.Broadcast(event)
}
