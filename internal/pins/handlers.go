package pins

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mapcollab/boardd/internal/app"
	"github.com/mapcollab/boardd/internal/domain"
)

// Wire events carried to board members through the dispatcher. The
// presence core relays them as opaque payloads.
type pinCreatedEvent struct {
	Type string     `json:"type"`
	Pin  domain.Pin `json:"pin"`
}

type pinsClearedEvent struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

// Handler serves the pin REST resource and pushes change notifications
// into the dispatch queue instead of broadcasting inline.
type Handler struct {
	Store  *Store
	Events *app.Dispatcher
}

func NewHandler(store *Store, events *app.Dispatcher) *Handler {
	return &Handler{Store: store, Events: events}
}

type createRequest struct {
	BoardID       string  `json:"boardId"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	Title         string  `json:"title"`
	CreatedBy     string  `json:"created_by"`
	ColorSnapshot string  `json:"color_snapshot"`
}

func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if req.BoardID == "" || req.CreatedBy == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "boardId and created_by required"})
		return
	}

	pin, err := h.Store.Create(c.Request.Context(), CreateParams{
		BoardID:       domain.BoardID(req.BoardID),
		Lat:           req.Lat,
		Lng:           req.Lng,
		Title:         req.Title,
		CreatedBy:     domain.UserID(req.CreatedBy),
		ColorSnapshot: req.ColorSnapshot,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "pins").Msg("create pin")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save pin"})
		return
	}

	log.Info().Str("module", "pins").Str("pin", pin.ID).
		Str("board", string(pin.BoardID)).Str("user", string(pin.CreatedBy)).Msg("pin persisted")

	h.Events.Enqueue(app.BroadcastJob{
		Board: pin.BoardID,
		Event: pinCreatedEvent{Type: "pin_created", Pin: pin},
	})

	c.JSON(http.StatusOK, pin)
}

func (h *Handler) List(c *gin.Context) {
	out, err := h.Store.List(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("module", "pins").Msg("list pins")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list pins"})
		return
	}
	if out == nil {
		out = []domain.Pin{}
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) DeleteAll(c *gin.Context) {
	count, err := h.Store.DeleteAll(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("module", "pins").Msg("delete pins")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete pins"})
		return
	}

	log.Info().Str("module", "pins").Int64("count", count).Msg("all pins deleted")

	// Clearing is global, so the notification goes to every active board.
	h.Events.Enqueue(app.BroadcastJob{
		Event: pinsClearedEvent{Type: "pins_cleared", Count: count},
	})

	c.Status(http.StatusNoContent)
}
