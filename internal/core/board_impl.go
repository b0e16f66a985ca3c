package core

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mapcollab/boardd/internal/domain"
)

// ErrBoardClosed is returned by Join once a board has been emptied and
// scheduled for removal. Callers re-fetch via the manager and retry.
var ErrBoardClosed = errors.New("board closed")

// memberState is one user currently present on the board. Exactly one
// connection represents a user at a time; a reconnect for the same user
// id replaces the connection but keeps the color.
type memberState struct {
	conn    ConnID
	profile domain.Profile
	color   string
	sig     SignalConnection
}

// boardImpl is a threadsafe in-memory board.
// It never closes adapter-owned connections.
type boardImpl struct {
	id domain.BoardID

	mu     sync.RWMutex
	closed bool
	byUser map[domain.UserID]*memberState
	byConn map[ConnID]domain.UserID
	order  []domain.UserID // join order, keeps user_list deterministic
	used   map[string]struct{}
}

func NewBoard(id domain.BoardID) BoardService {
	return &boardImpl{
		id:     id,
		byUser: make(map[domain.UserID]*memberState),
		byConn: make(map[ConnID]domain.UserID),
		used:   make(map[string]struct{}),
	}
}

func (b *boardImpl) ID() domain.BoardID { return b.id }

func (b *boardImpl) MemberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byUser)
}

func (b *boardImpl) Snapshot() []UserDTO {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshotLocked()
}

func (b *boardImpl) snapshotLocked() []UserDTO {
	out := make([]UserDTO, 0, len(b.order))
	for _, uid := range b.order {
		m, ok := b.byUser[uid]
		if !ok {
			continue
		}
		out = append(out, UserDTO{
			ID:       m.profile.ID,
			Name:     m.profile.Name,
			Initials: m.profile.Initials,
			Picture:  m.profile.Picture,
			Color:    m.color,
		})
	}
	return out
}

func (b *boardImpl) Join(conn ConnID, profile domain.Profile, sig SignalConnection) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return "", ErrBoardClosed
	}

	m, reconnect := b.byUser[profile.ID]
	if reconnect {
		// Same user id back on the board: keep the color, swap the
		// connection. The stale conn entry must not shadow the new one.
		delete(b.byConn, m.conn)
		m.conn = conn
		m.profile = profile
		m.sig = sig
	} else {
		m = &memberState{
			conn:    conn,
			profile: profile,
			color:   allocateColor(b.used),
			sig:     sig,
		}
		b.used[m.color] = struct{}{}
		b.byUser[profile.ID] = m
		b.order = append(b.order, profile.ID)
	}
	b.byConn[conn] = profile.ID

	joined := Encode(userJoinedEvent{
		Type:   "user_joined",
		ConnID: conn,
		User: UserDTO{
			ID:       m.profile.ID,
			Name:     m.profile.Name,
			Initials: m.profile.Initials,
			Picture:  m.profile.Picture,
			Color:    m.color,
		},
	})
	b.fanOutLocked(conn, joined)

	list := Encode(userListEvent{Type: "user_list", Users: b.snapshotLocked()})
	b.fanOutLocked("", list)

	log.Info().Str("module", "core.board").Str("board", string(b.id)).
		Str("conn", string(conn)).Str("user", string(profile.ID)).
		Str("color", m.color).Bool("reconnect", reconnect).Msg("member joined")
	return m.color, nil
}

func (b *boardImpl) Remove(conn ConnID) (bool, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	uid, ok := b.byConn[conn]
	if !ok {
		return false, false
	}
	m := b.byUser[uid]
	delete(b.byConn, conn)
	delete(b.byUser, uid)
	for i, id := range b.order {
		if id == uid {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	releaseColor(b.used, m.color)

	if len(b.byUser) == 0 {
		// Last member is gone: refuse further joins on this instance so
		// the manager can unmap it without racing a concurrent join.
		b.closed = true
		log.Info().Str("module", "core.board").Str("board", string(b.id)).
			Str("conn", string(conn)).Msg("last member left, board closed")
		return true, true
	}

	left := Encode(userLeftEvent{
		Type:   "user_left",
		ConnID: conn,
		User: UserDTO{
			ID:       m.profile.ID,
			Name:     m.profile.Name,
			Initials: m.profile.Initials,
			Picture:  m.profile.Picture,
			Color:    m.color,
		},
	})
	b.fanOutLocked(conn, left)

	list := Encode(userListEvent{Type: "user_list", Users: b.snapshotLocked()})
	b.fanOutLocked("", list)

	log.Info().Str("module", "core.board").Str("board", string(b.id)).
		Str("conn", string(conn)).Str("user", string(uid)).Msg("member left")
	return true, false
}

func (b *boardImpl) RelayCursor(conn ConnID, lng, lat float64) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	uid, ok := b.byConn[conn]
	if !ok {
		return
	}
	m := b.byUser[uid]
	frame := Encode(cursorEvent{
		Type:   "cursor",
		ConnID: conn,
		Lng:    lng,
		Lat:    lat,
		User:   m.profile,
		Color:  m.color,
	})
	b.fanOutLocked(conn, frame)
}

func (b *boardImpl) Broadcast(v any) PublishResult {
	frame := Encode(v)
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.fanOutLocked("", frame)
}

// fanOutLocked delivers a frame to every member except from ("" means
// nobody is excluded). Delivery is a non-blocking enqueue per recipient;
// a slow or gone recipient is counted and skipped, never waited on.
func (b *boardImpl) fanOutLocked(from ConnID, frame Frame) PublishResult {
	res := PublishResult{}
	if frame == nil {
		return res
	}
	for _, uid := range b.order {
		m, ok := b.byUser[uid]
		if !ok || m.conn == from {
			continue
		}
		if err := m.sig.TrySend(frame); err != nil {
			res.Dropped++
			continue
		}
		res.SentTo++
	}
	if res.Dropped > 0 {
		log.Debug().Str("module", "core.board").Str("board", string(b.id)).
			Int("sent_to", res.SentTo).Int("dropped", res.Dropped).Msg("fan-out drops")
	}
	return res
}
