package signal

func (ctl *BoardWSController) handlePing(c *wsBoardConn) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	ctl.sendJSON(c, resp)
}
