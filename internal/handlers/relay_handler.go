package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/joshua-takyi/workwave/internal/models"
	"github.com/joshua-takyi/workwave/internal/realtime"
)

// LiveLocation upgrades the request to a websocket and feeds updateLocation
// messages into the relay. The channel is one-way; nothing is written back,
// and closing the socket has no effect on already-buffered positions.
func LiveLocation(relay *realtime.Relay, allowedOrigins []string, logger *slog.Logger) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed[origin]
		},
	}

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("websocket upgrade failed"))
			return
		}
		defer conn.Close()

		for {
			var msg realtime.InboundMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Debug("Live location connection closed", "error", err)
				}
				return
			}

			if msg.Type != realtime.MessageUpdateLocation {
				continue
			}

			pos := realtime.Position{
				Location:  msg.Location,
				Latitude:  msg.Latitude,
				Longitude: msg.Longitude,
			}
			if err := relay.Submit(msg.WorkerID, pos); err != nil {
				logger.Warn("Dropped live location update",
					"worker_id", msg.WorkerID,
					"error", err,
				)
			}
		}
	}
}
