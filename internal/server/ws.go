package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ssaritan18/clubchat/internal/service"
	"github.com/ssaritan18/clubchat/internal/utils"
)

// CloseAuthFailure is sent on the upgrade path when the token is
// missing or invalid, so clients can tell auth failure from network
// failure and stop retrying blindly.
const CloseAuthFailure = 4401

// handleWS authenticates from the token query parameter; some client
// transports strip headers on the upgrade request, so the header is
// not consulted here.
func (h *Handler) handleWS(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")

	var userID string
	if tokenString != "" {
		if claims, err := utils.ValidateAccessToken(tokenString, h.jwtSecret); err == nil {
			userID = claims.UserID
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("Failed to upgrade connection", "error", err)
		return
	}

	if userID == "" {
		deadline := time.Now().Add(time.Second)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(CloseAuthFailure, "authentication failed"), deadline)
		conn.Close()
		return
	}

	client := service.NewClient(userID, conn)
	h.realtime.HandleConn(r.Context(), client)
}
