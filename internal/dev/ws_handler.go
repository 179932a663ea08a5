package dev

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sjc5/lux/internal/util"
)

var upgrader = websocket.Upgrader{
	// the page is served by the app server, not by us
	CheckOrigin: func(r *http.Request) bool { return true },
}

func wsHandler(manager *ClientManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// registered before the upgrade so the first broadcast after a
		// successful dial always reaches this client
		client := newClient(r.RemoteAddr)
		if !manager.Register(client) {
			http.Error(w, "hot server is shutting down", http.StatusServiceUnavailable)
			return
		}
		defer manager.Unregister(client)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			util.Log.Errorf("error upgrading hot client: %v", err)
			return
		}
		defer conn.Close()

		// browsers never send anything; reading is only how we notice a close
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case msg, ok := <-client.notify:
				if !ok {
					conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
					return
				}
				if err := conn.WriteJSON(msg); err != nil {
					return
				}
			case <-closed:
				return
			}
		}
	}
}
