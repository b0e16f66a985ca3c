package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/mapcollab/boardd/internal/domain"
)

// BroadcastJob asks the dispatcher to fan an event out to a board's
// members. An empty Board targets every active board.
type BroadcastJob struct {
	Board domain.BoardID
	Event any
}

// Dispatcher is the single persistent worker that carries outbound
// broadcasts originated outside the websocket handlers (pin CRUD).
// Request handlers enqueue and return; the worker owns the fan-out.
type Dispatcher struct {
	presence *Presence
	jobs     chan BroadcastJob
}

func NewDispatcher(p *Presence, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	return &Dispatcher{presence: p, jobs: make(chan BroadcastJob, buffer)}
}

// Enqueue never blocks a request handler; when the queue is full the
// job is dropped and logged, matching best-effort delivery semantics.
func (d *Dispatcher) Enqueue(job BroadcastJob) bool {
	select {
	case d.jobs <- job:
		return true
	default:
		log.Warn().Str("module", "app.dispatch").Str("board", string(job.Board)).Msg("dispatch queue full, job dropped")
		return false
	}
}

// Run drains the queue until ctx is canceled. Start it once at boot.
func (d *Dispatcher) Run(ctx context.Context) {
	log.Info().Str("module", "app.dispatch").Msg("dispatch worker started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.dispatch").Msg("dispatch worker stopped")
			return
		case job := <-d.jobs:
			d.presence.BroadcastToBoard(job.Board, job.Event)
		}
	}
}
