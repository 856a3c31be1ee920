package public

import (
	"net/http"

	"coordination-api/coordination/types"
	"coordination-api/logging"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// getEventsFeed streams committed coordination events over a websocket.
// Every event the keeper emits after this connection is established is
// delivered in commit order; there is no replay of earlier events.
func (s *Server) getEventsFeed(ctx echo.Context) error {
	conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		return err
	}

	events, cancel := s.hub.Subscribe()
	defer cancel()
	defer conn.Close()

	// Drain client frames so close handshakes are noticed.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := conn.WriteJSON(ev); err != nil {
				logging.Debug("websocket write failed, closing feed", types.Events, "error", err)
				return nil
			}
		case <-clientGone:
			return nil
		case <-ctx.Request().Context().Done():
			return nil
		}
	}
}
