package ws

import (
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
)

// WSHandler subscribes a browser to updates of one page:
// GET /ws?room={pageID}. Clients only listen; anything they send is
// discarded until they disconnect.
func WSHandler(hub *Hub, log *logger.ZapLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := r.URL.Query().Get("room")
		if roomID == "" {
			http.Error(w, "missing room", http.StatusBadRequest)
			return
		}

		conn, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Log(logger.LogEntry{
				Level:   "warn",
				Message: "[ws] upgrade failed",
				Error:   err,
			})
			return
		}

		hub.Register(roomID, conn)
		defer hub.Unregister(roomID, conn)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
