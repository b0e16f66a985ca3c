package signal_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/mapcollab/boardd/internal/adapters/signal"
	"github.com/mapcollab/boardd/internal/app"
	"github.com/mapcollab/boardd/internal/core"
)

func newTestServer(t *testing.T) (string, *app.Presence) {
	return newTestServerPing(t, 10*time.Second)
}

func newTestServerPing(t *testing.T, pingPeriod time.Duration) (string, *app.Presence) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	presence := app.NewPresence(core.NewBoardManager())
	ctl := signal.NewBoardWSController(presence, 32768, pingPeriod)

	ctx, cancel := context.WithCancel(context.Background())
	r := gin.New()
	r.GET("/api/ws/board", func(c *gin.Context) {
		ctl.HandleBoard(ctx, c)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/board", presence
}

func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	c, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func send(t *testing.T, c *websocket.Conn, v any) {
	t.Helper()
	if err := c.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readEvent(t *testing.T, c *websocket.Conn) map[string]any {
	t.Helper()
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	var m map[string]any
	if err := c.ReadJSON(&m); err != nil {
		t.Fatalf("read: %v", err)
	}
	return m
}

// readUntil skips unrelated events (e.g. interleaved cursors) until typ.
func readUntil(t *testing.T, c *websocket.Conn, typ string) map[string]any {
	t.Helper()
	for i := 0; i < 16; i++ {
		m := readEvent(t, c)
		if m["type"] == typ {
			return m
		}
	}
	t.Fatalf("never received %q", typ)
	return nil
}

func joinBoard(board, uid string) map[string]any {
	return map[string]any{
		"type":    "join_board",
		"boardId": board,
		"user":    map[string]any{"id": uid},
	}
}

func TestWebsocketSession(t *testing.T) {
	wsURL, presence := newTestServer(t)

	a := dial(t, wsURL)
	send(t, a, joinBoard("b1", "u1"))

	list := readUntil(t, a, "user_list")
	users := list["users"].([]any)
	if len(users) != 1 {
		t.Fatalf("user_list has %d users, want 1", len(users))
	}
	if color := users[0].(map[string]any)["color"]; color != "#1570EF" {
		t.Errorf("first color = %v, want #1570EF", color)
	}

	b := dial(t, wsURL)
	send(t, b, joinBoard("b1", "u2"))

	joined := readUntil(t, a, "user_joined")
	if uid := joined["user"].(map[string]any)["id"]; uid != "u2" {
		t.Errorf("user_joined id = %v, want u2", uid)
	}
	if list = readUntil(t, a, "user_list"); len(list["users"].([]any)) != 2 {
		t.Errorf("A snapshot after B join = %v", list["users"])
	}
	if list = readUntil(t, b, "user_list"); len(list["users"].([]any)) != 2 {
		t.Errorf("B snapshot = %v", list["users"])
	}

	send(t, a, map[string]any{"type": "cursor", "lng": 12.3, "lat": 45.6})
	cursor := readUntil(t, b, "cursor")
	if cursor["lng"] != 12.3 || cursor["lat"] != 45.6 {
		t.Errorf("cursor position = (%v, %v)", cursor["lng"], cursor["lat"])
	}
	if cursor["color"] != "#1570EF" {
		t.Errorf("cursor color = %v", cursor["color"])
	}

	send(t, b, map[string]any{"type": "leave_board"})
	left := readUntil(t, a, "user_left")
	if uid := left["user"].(map[string]any)["id"]; uid != "u2" {
		t.Errorf("user_left id = %v, want u2", uid)
	}
	if list = readUntil(t, a, "user_list"); len(list["users"].([]any)) != 1 {
		t.Errorf("A snapshot after B left = %v", list["users"])
	}

	// Abrupt network drop cleans up the same way an explicit leave does.
	_ = a.Close()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := presence.Boards.Get("b1"); !ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("board b1 not cleaned up after disconnect")
}

func TestWebsocketJoinValidation(t *testing.T) {
	wsURL, _ := newTestServer(t)

	c := dial(t, wsURL)
	send(t, c, map[string]any{"type": "join_board", "user": map[string]any{"id": "u1"}})

	ev := readUntil(t, c, "error")
	if msg := ev["message"]; msg != "boardId and user.id required" {
		t.Errorf("error message = %v", msg)
	}
}

func TestWebsocketPing(t *testing.T) {
	wsURL, _ := newTestServer(t)

	c := dial(t, wsURL)
	send(t, c, map[string]any{"type": "ping"})
	readUntil(t, c, "pong")
}

func TestWebsocketKeepalive(t *testing.T) {
	wsURL, _ := newTestServerPing(t, 100*time.Millisecond)

	c := dial(t, wsURL)
	pings := make(chan struct{}, 1)
	c.SetPingHandler(func(string) error {
		select {
		case pings <- struct{}{}:
		default:
		}
		return nil
	})
	// Ping handlers only fire while a read is pending.
	go func() {
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-pings:
	case <-time.After(2 * time.Second):
		t.Fatal("no keepalive ping from server")
	}
}
