package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mapcollab/boardd/internal/domain"
)

type boardManager struct {
	mu     sync.RWMutex
	boards map[domain.BoardID]BoardService
}

func NewBoardManager() BoardManager {
	return &boardManager{boards: make(map[domain.BoardID]BoardService)}
}

func (f *boardManager) GetOrCreate(id domain.BoardID) BoardService {
	f.mu.RLock()
	b, ok := f.boards[id]
	f.mu.RUnlock()
	if ok {
		return b
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok = f.boards[id]; ok {
		return b
	}
	b = NewBoard(id)
	f.boards[id] = b
	log.Debug().Str("module", "core.manager").Str("board", string(id)).Msg("board created")
	return b
}

func (f *boardManager) Get(id domain.BoardID) (BoardService, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	b, ok := f.boards[id]
	return b, ok
}

func (f *boardManager) RemoveIfEmpty(id domain.BoardID, b BoardService) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.boards[id]
	if !ok || cur != b || b.MemberCount() != 0 {
		return
	}
	delete(f.boards, id)
	log.Info().Str("module", "core.manager").Str("board", string(id)).Msg("empty board removed")
}

func (f *boardManager) List() []BoardInfo {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]BoardInfo, 0, len(f.boards))
	for id, b := range f.boards {
		out = append(out, BoardInfo{ID: id, MemberCount: b.MemberCount()})
	}
	return out
}

func (f *boardManager) Each(fn func(BoardService)) {
	f.mu.RLock()
	snapshot := make([]BoardService, 0, len(f.boards))
	for _, b := range f.boards {
		snapshot = append(snapshot, b)
	}
	f.mu.RUnlock()
	for _, b := range snapshot {
		fn(b)
	}
}
