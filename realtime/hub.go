package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"inkwell/models"
	"inkwell/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// subscriberBuffer bounds how far a slow consumer may lag before events are
// dropped. Delivery is at-most-once; the durable booking state is the
// source of truth, so a dropped event heals on the next poll.
const subscriberBuffer = 16

type subscriber struct {
	room string
	ch   chan models.Event
}

// Hub fans calendar events out to every connection subscribed to a provider
// room. When a Redis client is supplied, events travel through pub/sub so
// subscribers on every server instance see them; without one the hub fans
// out in-process only. The hub is an injected object with no package-level
// connection state.
type Hub struct {
	logger *zap.Logger
	rdb    *redis.Client

	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

// NewHub creates a hub. rdb may be nil for single-process use.
func NewHub(rdb *redis.Client, logger *zap.Logger) *Hub {
	h := &Hub{
		logger: logger,
		rdb:    rdb,
		subs:   make(map[*subscriber]struct{}),
	}
	if rdb != nil {
		go h.pump()
	}
	return h
}

// Publish sends an event to the room named in the event. Publish failures
// are logged and swallowed: the broadcaster is an optimization, never a
// correctness dependency.
func (h *Hub) Publish(ctx context.Context, ev models.Event) {
	if h.rdb == nil {
		h.deliver(ev)
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("failed to marshal calendar event", zap.Error(err))
		return
	}
	if err := h.rdb.Publish(ctx, utils.CalendarChannelPrefix+ev.Room, data).Err(); err != nil {
		h.logger.Warn("failed to publish calendar event",
			zap.String("room", ev.Room), zap.Error(err))
	}
}

// Subscribe registers a consumer for one provider room. The returned cancel
// func must be called when the connection goes away.
func (h *Hub) Subscribe(room string) (<-chan models.Event, func()) {
	sub := &subscriber{room: room, ch: make(chan models.Event, subscriberBuffer)}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[sub]; ok {
			delete(h.subs, sub)
			close(sub.ch)
		}
		h.mu.Unlock()
	}
	return sub.ch, cancel
}

// pump bridges Redis pub/sub back into local fanout. One pattern
// subscription covers every room; events published on any instance arrive
// here, including our own.
func (h *Hub) pump() {
	ctx := context.Background()
	pubsub := h.rdb.PSubscribe(ctx, utils.CalendarChannelPrefix+"*")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		ev, err := models.DecodeEvent([]byte(msg.Payload))
		if err != nil {
			h.logger.Warn("dropping undecodable calendar event", zap.Error(err))
			continue
		}
		h.deliver(ev)
	}
}

func (h *Hub) deliver(ev models.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		if sub.room != ev.Room {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			h.logger.Warn("dropping calendar event for slow subscriber",
				zap.String("room", ev.Room), zap.String("kind", string(ev.Kind)))
		}
	}
}
