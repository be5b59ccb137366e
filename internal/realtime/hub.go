// Package realtime fans events out to connected clients by room. Rooms are
// string keys like "project:42", "organization:7" and "user:13". Delivery
// is best-effort; nothing in the services depends on an event arriving.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type Event struct {
	ID   int64       `json:"id"`
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type subscriber struct {
	ch chan Event
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[string][]*subscriber // room -> subscribers
	rdb         *redis.Client
}

func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		subscribers: make(map[string][]*subscriber),
		rdb:         rdb,
	}
}

func ProjectRoom(projectID uint) string  { return fmt.Sprintf("project:%d", projectID) }
func OrganizationRoom(orgID uint) string { return fmt.Sprintf("organization:%d", orgID) }
func UserRoom(userID uint) string        { return fmt.Sprintf("user:%d", userID) }

func (h *Hub) Subscribe(room string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &subscriber{ch: make(chan Event, 256)}
	h.subscribers[room] = append(h.subscribers[room], sub)

	unsub := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs := h.subscribers[room]
		for i, s := range subs {
			if s == sub {
				h.subscribers[room] = append(subs[:i], subs[i+1:]...)
				close(sub.ch)
				break
			}
		}
		if len(h.subscribers[room]) == 0 {
			delete(h.subscribers, room)
		}
	}
	return sub.ch, unsub
}

// Emit publishes an event to a room. Events are appended to a capped Redis
// list so reconnecting clients can replay, and delivered to in-process
// subscribers without blocking.
func (h *Hub) Emit(room, eventType string, data interface{}) {
	event := Event{Type: eventType, Data: data}

	if h.rdb != nil {
		ctx := context.Background()
		key := "events:" + room
		payload, _ := json.Marshal(event)
		pipe := h.rdb.Pipeline()
		pipe.RPush(ctx, key, string(payload))
		pipe.LTrim(ctx, key, -512, -1)
		pipe.Expire(ctx, key, 24*time.Hour)
		if _, err := pipe.Exec(ctx); err != nil {
			log.Printf("[realtime] persist event %s to %s: %v", eventType, room, err)
		}
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subscribers[room] {
		select {
		case sub.ch <- event:
		default:
			// drop if full
		}
	}
}

// ReplayFrom returns buffered room events starting at the given offset.
func (h *Hub) ReplayFrom(room string, fromID int64) ([]Event, error) {
	if h.rdb == nil {
		return nil, nil
	}
	ctx := context.Background()
	key := "events:" + room

	items, err := h.rdb.LRange(ctx, key, fromID, -1).Result()
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(items))
	for i, item := range items {
		var ev Event
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			continue
		}
		ev.ID = fromID + int64(i)
		events = append(events, ev)
	}
	return events, nil
}

func ParseLastEventID(header string) int64 {
	if header == "" {
		return 0
	}
	id, _ := strconv.ParseInt(header, 10, 64)
	return id
}
