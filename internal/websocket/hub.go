// Package websocket streams pipeline progress to clients subscribed to a
// job ID. One connection watches exactly one job.
package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/dubflow/api/internal/model"
)

const (
	sendBuffer    = 256
	pingInterval  = 30 * time.Second
	pongWait      = 60 * time.Second
	writeDeadline = 10 * time.Second
)

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans job events out to the connections watching that job. Writes are
// non-blocking: a subscriber that cannot keep up is dropped.
type Hub struct {
	mu   sync.RWMutex
	jobs map[string]map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{jobs: make(map[string]map[*subscriber]struct{})}
}

func (h *Hub) subscribe(jobID string, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.jobs[jobID] == nil {
		h.jobs[jobID] = make(map[*subscriber]struct{})
	}
	h.jobs[jobID][s] = struct{}{}
	log.Printf("[WS] subscriber joined job %s (%d watching)", jobID, len(h.jobs[jobID]))
}

func (h *Hub) unsubscribe(jobID string, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.jobs[jobID]
	if !ok {
		return
	}
	if _, ok := subs[s]; !ok {
		return
	}
	delete(subs, s)
	close(s.send)
	if len(subs) == 0 {
		delete(h.jobs, jobID)
	}
	log.Printf("[WS] subscriber left job %s", jobID)
}

// publish marshals v and delivers it to every subscriber of jobID. A
// subscriber with a full buffer stops receiving broadcasts; its channel is
// closed later by unsubscribe when the connection winds down.
func (h *Hub) publish(jobID string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[WS] marshal failed for job %s: %v", jobID, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.jobs[jobID] {
		select {
		case s.send <- data:
		default:
			delete(h.jobs[jobID], s)
		}
	}
}

// BroadcastProgress reports stage progress for a running job.
func (h *Hub) BroadcastProgress(jobID string, progress int, status model.JobStatus, step string) {
	h.publish(jobID, model.WSProgressMessage{
		Type:        model.WSMessageTypeProgress,
		JobID:       jobID,
		Progress:    progress,
		Status:      status,
		CurrentStep: step,
	})
}

// BroadcastComplete delivers the final run report to watchers.
func (h *Hub) BroadcastComplete(jobID string, result any) {
	h.publish(jobID, model.WSCompleteMessage{
		Type:   model.WSMessageTypeComplete,
		JobID:  jobID,
		Result: result,
	})
}

// BroadcastError reports a terminal failure.
func (h *Hub) BroadcastError(jobID string, code, message string) {
	h.publish(jobID, model.WSErrorMessage{
		Type:  model.WSMessageTypeError,
		JobID: jobID,
		Error: model.WSError{Code: code, Message: message},
	})
}

// HandleConnection owns a client connection for its lifetime. It blocks
// until the client disconnects or the connection errors out.
func (h *Hub) HandleConnection(c *websocket.Conn, jobID string) {
	s := &subscriber{conn: c, send: make(chan []byte, sendBuffer)}
	h.subscribe(jobID, s)
	defer h.unsubscribe(jobID, s)

	go writeLoop(s)

	c.SetReadDeadline(time.Now().Add(pongWait))
	c.SetPongHandler(func(string) error {
		c.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] read error on job %s: %v", jobID, err)
			}
			return
		}

		// Clients may send application-level pings; anything else is ignored.
		var msg model.WSMessage
		if json.Unmarshal(raw, &msg) != nil {
			continue
		}
		if msg.Type == model.WSMessageTypePing {
			data, _ := json.Marshal(model.WSMessage{Type: model.WSMessageTypePong})
			select {
			case s.send <- data:
			default:
			}
		}
	}
}

func writeLoop(s *subscriber) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
