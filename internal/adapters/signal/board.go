package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/mapcollab/boardd/internal/app"
	"github.com/mapcollab/boardd/internal/core"
	"github.com/mapcollab/boardd/internal/domain"
)

func (ctl *BoardWSController) handleJoinBoard(conn core.ConnID, c *wsBoardConn, data []byte) {
	type joinPayload struct {
		Type    string         `json:"type"`
		BoardID string         `json:"boardId"`
		User    domain.Profile `json:"user"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad join_board payload")
		ctl.sendJSON(c, core.NewErrorEvent(app.ErrJoinInvalid.Error()))
		return
	}

	log.Info().Str("module", "signal").Str("conn", string(conn)).
		Str("board", p.BoardID).Str("user", string(p.User.ID)).Msg("join_board")

	err := ctl.Presence.Join(conn, domain.BoardID(p.BoardID), p.User, c)
	if errors.Is(err, app.ErrJoinInvalid) {
		ctl.sendJSON(c, core.NewErrorEvent(err.Error()))
		return
	}
	// user_joined and the full user_list go out through the board itself;
	// nothing else to answer here.
}

func (ctl *BoardWSController) handleLeaveBoard(conn core.ConnID) {
	log.Info().Str("module", "signal").Str("conn", string(conn)).Msg("leave_board")
	ctl.Presence.Leave(conn)
}
