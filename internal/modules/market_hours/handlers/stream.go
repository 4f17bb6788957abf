package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
)

// HandleStream handles GET /api/regions/stream
// Upgrades to a websocket and pushes every region's state each stream interval
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to accept websocket")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream ended")

	session := uuid.NewString()
	log := h.log.With().Str("stream", session).Logger()
	log.Debug().Msg("Region stream opened")

	// CloseRead cancels ctx once the client goes away
	ctx := conn.CloseRead(r.Context())

	ticker := time.NewTicker(h.streamInterval)
	defer ticker.Stop()

	for {
		if err := h.pushSnapshot(ctx, conn); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || ctx.Err() != nil {
				log.Debug().Msg("Region stream closed by client")
				return
			}
			log.Warn().Err(err).Msg("Failed to push region snapshot")
			return
		}

		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case <-ticker.C:
		}
	}
}

func (h *Handler) pushSnapshot(ctx context.Context, conn *websocket.Conn) error {
	now := h.now()
	if err := h.registry.Refresh(now); err != nil {
		h.log.Warn().Err(err).Msg("Some regions failed to refresh")
	}

	data, err := json.Marshal(map[string]interface{}{
		"timestamp": now.Format(time.RFC3339),
		"exchanges": regionResponses(h.registry.Snapshots()),
	})
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}
