package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/thibequation/trajectory/internal/core"
	"github.com/thibequation/trajectory/internal/logging"
)

// eventBuffer is the per-client backlog before events are dropped for it.
const eventBuffer = 32

// wireEvent is the JSON form of an adapter event on the stream.
type wireEvent struct {
	core.Event
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// eventHub fans adapter events out to SSE clients. A slow client loses
// events rather than stalling the importer.
type eventHub struct {
	buffer int
	seq    atomic.Uint64

	mu      sync.Mutex
	clients map[chan []byte]struct{}
	closed  bool
}

func newEventHub(buffer int) *eventHub {
	return &eventHub{
		buffer:  buffer,
		clients: make(map[chan []byte]struct{}),
	}
}

// subscribe registers a client. The returned func unregisters it; the
// channel is closed when the client is removed or the hub shuts down.
func (h *eventHub) subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, h.buffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.clients[ch] = struct{}{}

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.clients[ch]; ok {
			delete(h.clients, ch)
			close(ch)
		}
	}
}

// publish is registered as an adapter listener for every event type.
func (h *eventHub) publish(ev core.Event) error {
	data, err := json.Marshal(wireEvent{
		Event: ev,
		Error: errString(ev.Err),
		Code:  errCode(ev.Err),
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	frame := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", h.seq.Add(1), ev.Type, data))

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- frame:
		default:
		}
	}
	return nil
}

// clientCount reports the number of connected clients.
func (h *eventHub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// close disconnects every client and rejects new ones.
func (h *eventHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.clients {
		delete(h.clients, ch)
		close(ch)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func errCode(err error) string {
	if err == nil {
		return ""
	}
	return core.MapError(err).Code
}

// handleEvents streams adapter events via Server-Sent Events until the
// client disconnects or the server shuts down.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, unsubscribe := s.hub.subscribe()
	defer unsubscribe()

	logger := logging.FromContext(r.Context())
	logger.Debug("event stream opened", "clients", s.hub.clientCount())

	// An initial comment flushes the headers so clients see the stream open.
	fmt.Fprint(w, ": connected\n\n")
	if err := rc.Flush(); err != nil {
		logger.Warn("event stream flush unsupported", "error", err)
		return
	}

	for {
		select {
		case frame, ok := <-events:
			if !ok {
				fmt.Fprint(w, "event: close\ndata: {}\n\n")
				rc.Flush()
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}

		case <-r.Context().Done():
			logger.Debug("event stream closed")
			return
		}
	}
}
