package notify

import (
	"encoding/json"

	"github.com/tralvick/backloghub/pkg/logger"
	"github.com/tralvick/backloghub/pkg/metrics"
)

// WSBroadcaster delivers hub events to websocket clients through the
// manager.
type WSBroadcaster struct {
	manager *Manager
	logger  *logger.Logger
}

func NewWSBroadcaster(manager *Manager, log *logger.Logger) *WSBroadcaster {
	return &WSBroadcaster{manager: manager, logger: log}
}

func (wb *WSBroadcaster) BroadcastToUser(userID string, event Event) {
	client, ok := wb.manager.GetClient(userID)
	if !ok {
		wb.logger.Debug("ws_user_not_connected", "user_id", userID)
		return
	}

	messageBytes, err := json.Marshal(event)
	if err != nil {
		wb.logger.Error("failed_to_marshal_event", "error", err.Error())
		metrics.IncrementBroadcastFails()
		return
	}

	select {
	case client.Send <- messageBytes:
		metrics.IncrementBroadcasts()
		wb.logger.Debug("ws_event_broadcast", "user_id", userID, "event_type", event.Type)
	default:
		metrics.IncrementBroadcastFails()
		wb.logger.Warn("ws_send_channel_full", "user_id", userID)
	}
}
