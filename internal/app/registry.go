package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mapcollab/boardd/internal/core"
	"github.com/mapcollab/boardd/internal/domain"
)

// Session is the immutable-after-join binding of one connection to a
// board and the profile it joined with.
type Session struct {
	BoardID domain.BoardID
	Profile domain.Profile
}

// Registry tracks which board each live connection is on. A connection
// holds at most one binding; Bind is last-write-wins.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.ConnID]Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[core.ConnID]Session)}
}

func (r *Registry) Bind(conn core.ConnID, boardID domain.BoardID, profile domain.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[conn] = Session{BoardID: boardID, Profile: profile}
	log.Info().Str("module", "app.registry").Str("conn", string(conn)).
		Str("board", string(boardID)).Str("user", string(profile.ID)).Msg("bound session")
}

// Lookup returns ok=false for an unbound connection; callers treat that
// as nothing to clean up, not as an error.
func (r *Registry) Lookup(conn core.ConnID) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[conn]
	return s, ok
}

// Unbind is idempotent.
func (r *Registry) Unbind(conn core.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, conn)
	log.Debug().Str("module", "app.registry").Str("conn", string(conn)).Msg("unbound session")
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
