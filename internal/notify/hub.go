package notify

import (
	"sync"
	"time"

	"github.com/tralvick/backloghub/pkg/logger"
)

type EventType string

const (
	EventProgressUpdate  EventType = "progress_update"
	EventBacklogUpdate   EventType = "backlog_update"
	EventArtifactDeleted EventType = "artifact_deleted"
)

// Event is one mutation pushed to a user's connected clients.
type Event struct {
	Type      EventType              `json:"type"`
	UserID    string                 `json:"user_id"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func NewEvent(eventType EventType, userID string, payload map[string]interface{}) Event {
	return Event{
		Type:      eventType,
		UserID:    userID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// Broadcaster delivers an event to every live connection of one user.
type Broadcaster interface {
	BroadcastToUser(userID string, event Event)
}

// Hub decouples request handlers from connected clients: handlers
// queue events, a single goroutine fans them out to the registered
// broadcaster. Queueing never blocks a request; a full channel drops
// the event with a warning.
type Hub struct {
	logger      *logger.Logger
	broadcaster Broadcaster
	mu          sync.RWMutex
	eventChan   chan Event
	stopChan    chan struct{}
	running     bool
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		logger:    log,
		eventChan: make(chan Event, 1000),
		stopChan:  make(chan struct{}),
	}
}

func (h *Hub) Start() {
	h.mu.Lock()
	h.running = true
	h.mu.Unlock()
	h.logger.Info("notify_hub_started")
	go h.processEvents()
}

func (h *Hub) Stop() {
	h.mu.Lock()
	h.running = false
	h.mu.Unlock()
	h.logger.Info("notify_hub_stopping")
	close(h.stopChan)
}

func (h *Hub) Running() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.running
}

func (h *Hub) SetBroadcaster(b Broadcaster) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcaster = b
	h.logger.Info("notify_broadcaster_set")
}

func (h *Hub) Publish(event Event) {
	select {
	case h.eventChan <- event:
		h.logger.Debug("event_queued", "type", event.Type, "user_id", event.UserID)
	default:
		h.logger.Warn("event_channel_full", "type", event.Type, "user_id", event.UserID)
	}
}

func (h *Hub) processEvents() {
	for {
		select {
		case event := <-h.eventChan:
			h.mu.RLock()
			b := h.broadcaster
			h.mu.RUnlock()
			if b != nil {
				b.BroadcastToUser(event.UserID, event)
			}
		case <-h.stopChan:
			h.logger.Info("notify_hub_stopped")
			return
		}
	}
}

func (h *Hub) NotifyProgressUpdate(userID string, payload map[string]interface{}) {
	h.Publish(NewEvent(EventProgressUpdate, userID, payload))
}

func (h *Hub) NotifyBacklogUpdate(userID string, payload map[string]interface{}) {
	h.Publish(NewEvent(EventBacklogUpdate, userID, payload))
}

func (h *Hub) NotifyArtifactDeleted(userID string, payload map[string]interface{}) {
	h.Publish(NewEvent(EventArtifactDeleted, userID, payload))
}
