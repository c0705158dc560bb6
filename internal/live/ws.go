package live

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const writeTimeout = 5 * time.Second

// ServeWS upgrades the request and streams events for one course until the
// client disconnects. The connection is push-only: client frames are read
// just to notice the close.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, courseID string) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // same-origin policy is not useful for a LAN tool
	})
	if err != nil {
		slog.Error("websocket accept failed", "course", courseID, "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())

	events, cancel := h.Subscribe(courseID)
	defer cancel()

	slog.Info("live client connected", "course", courseID)

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "subscription closed")
				return
			}
			if err := writeEvent(ctx, conn, ev); err != nil {
				slog.Debug("live client write failed", "course", courseID, "error", err)
				return
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, ev Event) error {
	ctx, cancelWrite := context.WithTimeout(ctx, writeTimeout)
	defer cancelWrite()
	return wsjson.Write(ctx, conn, ev)
}
