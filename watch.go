package sieve

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/smhanov/sieve/query"
)

// WatchEvent is delivered to a watcher when a record matching its query is
// written.
type WatchEvent struct {
	ID       uint64                 `json:"id"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Watcher receives the records written to a collection that match a query.
type Watcher struct {
	id         uint64
	match      query.MatchFunc
	events     chan WatchEvent
	collection *Collection
}

// Events is closed when the watcher or its collection is closed.
func (w *Watcher) Events() <-chan WatchEvent {
	return w.events
}

func (w *Watcher) Close() {
	w.collection.mutex.Lock()
	defer w.collection.mutex.Unlock()
	if _, ok := w.collection.watchers[w.id]; ok {
		delete(w.collection.watchers, w.id)
		close(w.events)
	}
}

// Watch subscribes to records written to the collection that match q.
// Events are dropped rather than blocking writers when the subscriber
// falls behind.
func (c *Collection) Watch(q *query.Query) *Watcher {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.nextWatcher++
	w := &Watcher{
		id:         c.nextWatcher,
		match:      q.MatchFunc(c.fields),
		events:     make(chan WatchEvent, 64),
		collection: c,
	}
	c.watchers[w.id] = w
	return w
}

func (c *Collection) notifyWatchers(id uint64, data []byte) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if len(c.watchers) == 0 {
		return
	}

	var metadata map[string]interface{}
	for _, w := range c.watchers {
		ok, err := w.match(data)
		if err != nil || !ok {
			continue
		}
		if metadata == nil {
			if err := json.Unmarshal(data, &metadata); err != nil {
				return
			}
		}
		select {
		case w.events <- WatchEvent{ID: id, Metadata: metadata}:
		default:
			// subscriber is too slow; drop the event
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleWatch upgrades the connection to a websocket and streams every
// record written to the collection that matches the q parameter. An
// unparsable query is rejected before the upgrade.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	collection, ok := s.collectionFromPath(w, r)
	if !ok {
		return
	}

	q, err := query.Parse(collection.Fields(), r.URL.Query().Get("q"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade watch connection: %v", err)
		return
	}

	watcher := collection.Watch(q)
	log.Printf("Watcher attached to %s for query %q", collection.Name, q.String())

	// Drain client frames so pings are answered and closure is noticed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				watcher.Close()
				return
			}
		}
	}()

	for event := range watcher.Events() {
		if err := conn.WriteJSON(event); err != nil {
			watcher.Close()
			break
		}
	}
	conn.Close()
}
