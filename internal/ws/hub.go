package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Event types pushed to branch dashboards.
const (
	EventTransactionCreated = "transaction.created"
	EventTransactionVoided  = "transaction.voided"
	EventCashMovement       = "cash.movement"
	EventExpenseCreated     = "expense.created"
	EventAttendanceUpdated  = "attendance.updated"
	EventSalaryPaid         = "salary.paid"
	EventDailyClosed        = "closing.created"
)

// Event is the JSON frame sent to clients.
type Event struct {
	Type     string          `json:"type"`
	BranchID uuid.UUID       `json:"branch_id"`
	Payload  json.RawMessage `json:"payload"`
	SentAt   time.Time       `json:"sent_at"`
}

type branchEvent struct {
	BranchID uuid.UUID
	Event    Event
}

// Hub keeps one room of clients per branch and fans events out to them.
type Hub struct {
	rooms map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *branchEvent
	done       chan struct{}

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *branchEvent, 256),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled, then
// closes every client's send channel. Run must be called once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for branchID, clients := range h.rooms {
				for client := range clients {
					close(client.send)
				}
				delete(h.rooms, branchID)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.branchID] == nil {
				h.rooms[client.branchID] = make(map[*Client]bool)
			}
			h.rooms[client.branchID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()

		case ev := <-h.broadcast:
			message, err := json.Marshal(ev.Event)
			if err != nil {
				log.Error().Err(err).Str("type", ev.Event.Type).Msg("marshal ws event")
				continue
			}

			h.mu.Lock()
			for client := range h.rooms[ev.BranchID] {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop it.
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// join hands client to Run. It reports false once Run has returned.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// leave hands client back to Run, or does nothing once Run has returned.
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.rooms[client.branchID]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.branchID)
	}
}

// BroadcastToBranch queues an event for every client of the branch. It never
// blocks the caller: when the queue is full the event is dropped and logged.
func (h *Hub) BroadcastToBranch(branchID uuid.UUID, event Event) {
	event.BranchID = branchID
	if event.SentAt.IsZero() {
		event.SentAt = time.Now()
	}
	select {
	case h.broadcast <- &branchEvent{BranchID: branchID, Event: event}:
	default:
		log.Warn().Str("type", event.Type).Str("branch_id", branchID.String()).Msg("ws broadcast queue full, event dropped")
	}
}

// Publish marshals payload and broadcasts it under eventType.
func (h *Hub) Publish(branchID uuid.UUID, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("marshal ws payload")
		return
	}
	h.BroadcastToBranch(branchID, Event{Type: eventType, Payload: data})
}

// ClientCount reports connected clients of a branch.
func (h *Hub) ClientCount(branchID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[branchID])
}
