package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pezzottify/catalog-server/internal/apierr"
	"github.com/pezzottify/catalog-server/internal/authz"
	"github.com/pezzottify/catalog-server/internal/wsbroker"
)

func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin rejects connections with no Origin header and
// otherwise matches against the configured CORS allow-list, accepting "*"
// as a wildcard the same way internal/middleware's CORS handler does.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}
	if h.Config == nil {
		return true
	}
	for _, allowed := range h.Config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess := authz.SessionFromContext(r.Context())
	if sess == nil {
		writeError(w, r, apierr.Unauthorized("no authenticated session"))
		return
	}

	currentSeq, err := h.Events.CurrentSeq(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, r, apierr.Wrap(apierr.KindInternal, "resolve current seq", err))
		return
	}

	conn, err := h.getUpgrader().Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := wsbroker.NewClient(h.Broker, conn, sess.UserID, sess.DeviceID)
	client.Start(currentSeq)
}
