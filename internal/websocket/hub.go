package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/logger"
)

const (
	// Rate limiting: max client messages per second
	maxMessagesPerSecond = 10
)

// Principal roles. Admin and customer accounts live in separate
// tables with independent ID sequences, so a bare numeric ID is
// ambiguous and the role is part of every session key.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Principal identifies a connected identity: the account's role plus
// its ID within that role's table.
type Principal struct {
	Role string `json:"role"`
	ID   uint   `json:"id"`
}

// ClientMessage is an inbound control message from a connected client.
type ClientMessage struct {
	Type     string `json:"type"` // typing_start, typing_stop
	ThreadID uint   `json:"thread_id"`
}

// Client is a single WebSocket session. A principal may hold several
// sessions at once (multiple tabs or devices).
type Client struct {
	Hub           *Hub
	Conn          *Conn
	Principal     Principal
	Send          chan []byte
	Threads       map[uint]bool // chat threads this session has joined
	mu            sync.RWMutex
	MessageCount  int
	LastResetTime time.Time
	RateMu        sync.Mutex
}

// Hub tracks live WebSocket sessions and routes chat traffic.
// Threads are keyed by the customer's user ID: the customer and any
// admin sessions watching that conversation share the same room.
type Hub struct {
	// Principal -> sessions (multi-device support)
	clients map[Principal][]*Client

	// ThreadID -> set of principals present
	rooms map[uint]map[Principal]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	mu sync.RWMutex
}

// BroadcastMessage carries a payload to every member of a thread
// except the sender.
type BroadcastMessage struct {
	ThreadID uint
	Message  []byte
	Sender   Principal
}

// NewHub creates a hub ready for Run.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[Principal][]*Client),
		rooms:      make(map[uint]map[Principal]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *BroadcastMessage, 1024),
	}
}

// Run processes register, unregister and broadcast events. Call once
// from a dedicated goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.Principal] = append(h.clients[client.Principal], client)
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":        client.Principal.ID,
				"role":           client.Principal.Role,
				"total_sessions": len(h.clients[client.Principal]),
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if clientList, ok := h.clients[client.Principal]; ok {
				found := false
				newList := make([]*Client, 0, len(clientList))
				for _, c := range clientList {
					if c != client {
						newList = append(newList, c)
					} else {
						found = true
					}
				}

				if len(newList) == 0 {
					// last session for this principal
					delete(h.clients, client.Principal)

					client.mu.RLock()
					for threadID := range client.Threads {
						if members, ok := h.rooms[threadID]; ok {
							delete(members, client.Principal)
							if len(members) == 0 {
								delete(h.rooms, threadID)
							}
						}
					}
					client.mu.RUnlock()
				} else {
					h.clients[client.Principal] = newList
				}

				// the same session can be queued here twice (read
				// pump teardown racing a forced drop); only the
				// removal that actually found it closes the channel
				if found {
					close(client.Send)
				}
			}
			h.mu.Unlock()
			logger.Info("WebSocket client unregistered", map[string]interface{}{
				"user_id":            client.Principal.ID,
				"role":               client.Principal.Role,
				"remaining_sessions": len(h.clients[client.Principal]),
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			if members, ok := h.rooms[message.ThreadID]; ok {
				for principal := range members {
					if principal == message.Sender {
						continue
					}

					if clientList, ok := h.clients[principal]; ok {
						for _, client := range clientList {
							select {
							case client.Send <- message.Message:
							default:
								// send buffer full, drop the session
								go h.Unregister(client)
								logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
									"user_id": principal.ID,
									"role":    principal.Role,
								})
							}
						}
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// JoinThread subscribes every live session of the principal to a
// thread.
func (h *Hub) JoinThread(p Principal, threadID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clientList, ok := h.clients[p]; ok {
		for _, client := range clientList {
			client.mu.Lock()
			client.Threads[threadID] = true
			client.mu.Unlock()
		}

		if _, ok := h.rooms[threadID]; !ok {
			h.rooms[threadID] = make(map[Principal]bool)
		}
		h.rooms[threadID][p] = true

		logger.Info("User joined chat thread", map[string]interface{}{
			"user_id":   p.ID,
			"role":      p.Role,
			"thread_id": threadID,
		})
	}
}

// LeaveThread removes every session of the principal from a thread.
func (h *Hub) LeaveThread(p Principal, threadID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clientList, ok := h.clients[p]; ok {
		for _, client := range clientList {
			client.mu.Lock()
			delete(client.Threads, threadID)
			client.mu.Unlock()
		}
	}

	if members, ok := h.rooms[threadID]; ok {
		delete(members, p)
		if len(members) == 0 {
			delete(h.rooms, threadID)
		}

		logger.Info("User left chat thread", map[string]interface{}{
			"user_id":   p.ID,
			"role":      p.Role,
			"thread_id": threadID,
		})
	}
}

// SendToThread marshals message and fans it out to everyone in the
// thread except the sender. Delivery is best effort: a full broadcast
// queue drops the message rather than blocking the caller.
func (h *Hub) SendToThread(threadID uint, message interface{}, sender Principal) error {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal message", err, nil)
		return err
	}

	select {
	case h.broadcast <- &BroadcastMessage{
		ThreadID: threadID,
		Message:  data,
		Sender:   sender,
	}:
		return nil
	default:
		logger.Warn("Broadcast channel full, message dropped", map[string]interface{}{
			"thread_id": threadID,
		})
		return nil
	}
}

// Register queues a client for registration.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister queues a client for removal.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// IsOnline reports whether the principal has at least one live
// session.
func (h *Hub) IsOnline(p Principal) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[p]
	return ok
}

// PrincipalsInThread lists the principals currently joined to a
// thread.
func (h *Hub) PrincipalsInThread(threadID uint) []Principal {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var members []Principal
	if threadMembers, ok := h.rooms[threadID]; ok {
		for p := range threadMembers {
			members = append(members, p)
		}
	}
	return members
}

// HandleClientMessage rate-limits and routes inbound control
// messages (currently typing indicators).
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.RateMu.Lock()
	now := time.Now()
	if now.Sub(client.LastResetTime) >= time.Second {
		client.MessageCount = 0
		client.LastResetTime = now
	}
	client.MessageCount++
	count := client.MessageCount
	client.RateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"user_id": client.Principal.ID,
			"role":    client.Principal.Role,
			"count":   count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"user_id": client.Principal.ID,
			"error":   err.Error(),
		})
		return
	}

	if msg.Type == "typing_start" || msg.Type == "typing_stop" {
		client.mu.RLock()
		_, isInThread := client.Threads[msg.ThreadID]
		client.mu.RUnlock()

		if !isInThread {
			logger.Warn("User not in chat thread", map[string]interface{}{
				"user_id":   client.Principal.ID,
				"thread_id": msg.ThreadID,
			})
			return
		}

		response := map[string]interface{}{
			"type":      msg.Type,
			"thread_id": msg.ThreadID,
			"user_id":   client.Principal.ID,
			"role":      client.Principal.Role,
		}

		if err := h.SendToThread(msg.ThreadID, response, client.Principal); err != nil {
			logger.Error("Failed to broadcast typing event", err, map[string]interface{}{
				"user_id":   client.Principal.ID,
				"thread_id": msg.ThreadID,
			})
		}
	}
}
