package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mapcollab/boardd/internal/app"
	"github.com/mapcollab/boardd/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

// BoardWSController bridges websocket connections to the presence router.
type BoardWSController struct {
	Presence   *app.Presence
	ReadLimit  int64
	PingPeriod time.Duration
	cursors    *CursorRateLimiter
}

func NewBoardWSController(p *app.Presence, readLimit int64, pingPeriod time.Duration) *BoardWSController {
	if pingPeriod <= 0 {
		pingPeriod = 54 * time.Second
	}
	return &BoardWSController{
		Presence:   p,
		ReadLimit:  readLimit,
		PingPeriod: pingPeriod,
		// Generous flood guard; cursors beyond it are droppable by contract.
		cursors: NewCursorRateLimiter(120, time.Second),
	}
}

// pongWait is how long the read side tolerates silence. Pings go out at
// 9/10 of it so a healthy peer always answers in time.
func (ctl *BoardWSController) pongWait() time.Duration {
	return ctl.PingPeriod * 10 / 9
}

// wsBoardConn is one client connection. Outbound frames go through a
// buffered channel so a slow reader backpressures into drops instead of
// blocking broadcast fan-out.
type wsBoardConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsBoardConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsBoardConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleBoard upgrades the request and runs the connection's pumps.
// Every upgrade gets a fresh connection id; two tabs of one browser are
// two connections.
func (ctl *BoardWSController) HandleBoard(ctx context.Context, c *gin.Context) {
	connID := core.ConnID(uuid.NewString())

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}
	_ = ws.SetReadDeadline(time.Now().Add(ctl.pongWait()))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(ctl.pongWait()))
	})
	log.Info().Str("module", "signal").Str("conn", string(connID)).Msg("new WS connection")

	conn := &wsBoardConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctl.Presence.Connect(connID)

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ctl.writePump(ctx, conn)
		cancel()
	}()
	go func() {
		ctl.readPump(ctx, connID, conn)
		cancel()
	}()
}
