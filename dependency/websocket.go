package dependency

import (
	"github.com/banterhq/banter/infrastructure/websocket"
)

func (c *Container) initWebSocket() {
	c.Sessions = websocket.NewSessionRegistry()
	c.WSCore = websocket.NewCore(c.Sessions, c.Presence, c.Metrics, c.Logger)

	c.Logger.Info("WebSocket components initialized successfully")
}
