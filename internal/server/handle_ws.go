package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"

	"github.com/playperu/bollyquiz/internal/game"
)

const wsWriteTimeout = 5 * time.Second

// handleWS streams the same events as handleEvents over a WebSocket, for
// second screens that prefer it. Incoming messages are ignored.
func handleWS(logger *slog.Logger, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		id := gameIDFrom(r)
		ch := broker.Subscribe(id)
		defer broker.Unsubscribe(id, ch)

		// CloseRead cancels ctx once the client goes away.
		ctx := conn.CloseRead(r.Context())

		snapshot, _ := json.Marshal(game.SnapshotEvent(sessionFrom(r).Snapshot()))
		if err := write(ctx, conn, snapshot); err != nil {
			logger.Debug("websocket write failed", "error", err)
			return
		}

		for {
			select {
			case <-ctx.Done():
				logger.Debug("websocket read ended", "error", ctx.Err())
				return
			case data, ok := <-ch:
				if !ok {
					conn.Close(websocket.StatusNormalClosure, "game ended")
					return
				}
				if err := write(ctx, conn, data); err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}
