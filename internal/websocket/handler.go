package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// HandleWatch upgrades the connection and runs it as a watcher of the
// group named in the path. Auth has already happened in middleware.
func HandleWatch(hub *Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := r.PathValue("id")
		if groupID == "" {
			http.Error(w, "missing group id", http.StatusBadRequest)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // clients are native agents, not browsers
		})
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn, groupID)
		client.Run(r.Context())
	}
}
