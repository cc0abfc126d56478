package v1

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/contentstudio-dev/gateway/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The operator UI is served from a different origin in development.
		return true
	},
}

// Stream upgrades the connection and subscribes it to approval notices.
func (h *Handler) Stream(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logging.Error("failed to upgrade websocket", zap.Error(err))
		return err
	}

	conn := h.hub.Register(ws)

	// Reader loop only drains control frames; clients do not send data.
	go func() {
		defer h.hub.Unregister(conn)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return nil
}
