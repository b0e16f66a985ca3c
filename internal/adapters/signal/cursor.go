package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/mapcollab/boardd/internal/core"
)

func (ctl *BoardWSController) handleCursor(conn core.ConnID, data []byte) {
	type cursorPayload struct {
		Type string  `json:"type"`
		Lng  float64 `json:"lng"`
		Lat  float64 `json:"lat"`
	}
	var p cursorPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad cursor payload")
		return
	}
	// Cursors carry no delivery guarantee; a flooding client just gets
	// its excess frames dropped here.
	if !ctl.cursors.Allow(conn) {
		return
	}
	ctl.Presence.Cursor(conn, p.Lng, p.Lat)
}
