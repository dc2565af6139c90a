package websocket

import (
	"context"
	"sync"
	"time"

	"pasarmobil/pkg/logger"
)

// typingTimeout is the staleness cutoff for typing signals: readers ignore
// anything older even if the sweeper has not run yet.
const typingTimeout = 5 * time.Second

// Authorizer answers whether a user may subscribe to a conversation channel.
// Read-eligibility suffices; the write check happens on the HTTP send path.
type Authorizer interface {
	CanSubscribe(ctx context.Context, userID, conversationID string) error
}

type typingMark struct {
	isTyping  bool
	updatedAt time.Time
}

// Manager tracks live connections, per-conversation channel membership, and
// ephemeral typing state. All delivery is fire-and-forget: a slow or dead
// subscriber is dropped, never allowed to block a publisher.
type Manager struct {
	clients    map[string]*Client
	members    map[string]map[string]bool // conversationID -> userID set
	typing     map[string]map[string]typingMark
	Register   chan *Client
	Unregister chan *Client
	authorizer Authorizer
	mu         sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		members:    make(map[string]map[string]bool),
		typing:     make(map[string]map[string]typingMark),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// SetAuthorizer wires the subscription gate. Set once during startup, before
// any connection is accepted.
func (m *Manager) SetAuthorizer(a Authorizer) {
	m.authorizer = a
}

// Start runs the registration loop and the typing sweeper until ctx is done.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		sweep := time.NewTicker(typingTimeout)
		defer sweep.Stop()

		for {
			select {
			case client := <-m.Register:
				m.mu.Lock()
				m.clients[client.UserID] = client
				m.mu.Unlock()
				logger.Debug("Client registered: %s", client.UserID)

			case client := <-m.Unregister:
				m.removeClient(client.UserID)
				logger.Debug("Client unregistered: %s", client.UserID)

			case <-sweep.C:
				m.sweepTyping()

			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *Manager) removeClient(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if client, ok := m.clients[userID]; ok {
		delete(m.clients, userID)
		close(client.Send)
	}
	for _, set := range m.members {
		delete(set, userID)
	}
}

// JoinConversation subscribes a user to a conversation channel.
func (m *Manager) JoinConversation(conversationID, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.members[conversationID] == nil {
		m.members[conversationID] = make(map[string]bool)
	}
	m.members[conversationID][userID] = true
}

func (m *Manager) LeaveConversation(conversationID, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.members[conversationID], userID)
}

// SendToUser delivers a payload to a user's personal channel if they are
// connected. Best-effort: absent or saturated subscribers are not an error.
func (m *Manager) SendToUser(userID string, payload []byte) {
	if payload == nil {
		return
	}

	m.mu.RLock()
	client, ok := m.clients[userID]
	m.mu.RUnlock()

	if ok {
		m.push(client, payload)
	}
}

// SendToConversation delivers a payload to every subscriber of a conversation
// channel, optionally excluding one user (the sender). Each client's Send
// channel is FIFO, so per-conversation publish order is preserved end to end.
func (m *Manager) SendToConversation(conversationID string, payload []byte, excludeUserID string) {
	if payload == nil {
		return
	}

	m.mu.RLock()
	var targets []*Client
	for userID := range m.members[conversationID] {
		if userID == excludeUserID {
			continue
		}
		if client, ok := m.clients[userID]; ok {
			targets = append(targets, client)
		}
	}
	m.mu.RUnlock()

	for _, client := range targets {
		m.push(client, payload)
	}
}

// push hands a payload to a client without ever blocking. A full buffer means
// the subscriber stopped draining; it gets disconnected rather than stall
// delivery for everyone else.
func (m *Manager) push(client *Client, payload []byte) {
	select {
	case client.Send <- payload:
	default:
		logger.Warn("Client %s send buffer full, dropping connection", client.UserID)
		m.removeClient(client.UserID)
	}
}

// SetTyping records a typing signal, overwriting any previous state for the
// pair. Last write wins; nothing is persisted.
func (m *Manager) SetTyping(conversationID, userID string, isTyping bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.typing[conversationID] == nil {
		m.typing[conversationID] = make(map[string]typingMark)
	}
	m.typing[conversationID][userID] = typingMark{isTyping: isTyping, updatedAt: time.Now()}
}

// TypingUsers answers the point-in-time "who is typing" query, treating marks
// older than the timeout as stale regardless of sweeper progress.
func (m *Manager) TypingUsers(conversationID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cutoff := time.Now().Add(-typingTimeout)
	var users []string
	for userID, mark := range m.typing[conversationID] {
		if mark.isTyping && mark.updatedAt.After(cutoff) {
			users = append(users, userID)
		}
	}
	return users
}

func (m *Manager) sweepTyping() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-typingTimeout)
	for conversationID, marks := range m.typing {
		for userID, mark := range marks {
			if mark.updatedAt.Before(cutoff) {
				delete(marks, userID)
			}
		}
		if len(marks) == 0 {
			delete(m.typing, conversationID)
		}
	}
}

// BroadcastTyping publishes a typing signal to the other subscribers of the
// conversation. The sender never receives their own echo.
func (m *Manager) BroadcastTyping(conversationID, userID string, isTyping bool) {
	m.SetTyping(conversationID, userID, isTyping)

	event := NewEvent(EventTyping, TypingPayload{
		ConversationID: conversationID,
		UserID:         userID,
		IsTyping:       isTyping,
	})
	m.SendToConversation(conversationID, event.Encode(), userID)
}
