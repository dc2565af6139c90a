package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"pasarmobil/internal/domain/entity"
	"pasarmobil/pkg/errors"
)

// memConversationRepo mirrors the store contract the use cases lean on:
// deterministic IDs, insert rejected with CONFLICT when the row exists, and
// reads returning detached copies.
type memConversationRepo struct {
	mu            sync.Mutex
	conversations map[string]*entity.Conversation
	messages      map[string]map[string]*entity.Message
	order         map[string][]string // insertion order per conversation
}

func newMemConversationRepo() *memConversationRepo {
	return &memConversationRepo{
		conversations: make(map[string]*entity.Conversation),
		messages:      make(map[string]map[string]*entity.Message),
		order:         make(map[string][]string),
	}
}

func cloneConversation(c *entity.Conversation) *entity.Conversation {
	out := *c
	out.UnreadCount = make(map[string]int, len(c.UnreadCount))
	for k, v := range c.UnreadCount {
		out.UnreadCount[k] = v
	}
	return &out
}

func cloneMessage(m *entity.Message) *entity.Message {
	out := *m
	out.ReadBy = append([]string(nil), m.ReadBy...)
	return &out
}

func (r *memConversationRepo) Create(ctx context.Context, conversation *entity.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conversation.ID == "" {
		conversation.ID = entity.ConversationID(conversation.RoomID, conversation.BuyerID)
	}
	if _, exists := r.conversations[conversation.ID]; exists {
		return errors.Conflict("Conversation already exists for this room and buyer", nil)
	}

	now := time.Now()
	conversation.CreatedAt = now
	conversation.UpdatedAt = now
	if conversation.LastMessageAt.IsZero() {
		conversation.LastMessageAt = now
	}
	if conversation.UnreadCount == nil {
		conversation.UnreadCount = make(map[string]int)
	}

	r.conversations[conversation.ID] = cloneConversation(conversation)
	return nil
}

func (r *memConversationRepo) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation, ok := r.conversations[id]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	return cloneConversation(conversation), nil
}

func (r *memConversationRepo) GetByRoomAndBuyer(ctx context.Context, roomID, buyerID string) (*entity.Conversation, error) {
	return r.GetByID(ctx, entity.ConversationID(roomID, buyerID))
}

func (r *memConversationRepo) Update(ctx context.Context, conversation *entity.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation.UpdatedAt = time.Now()
	r.conversations[conversation.ID] = cloneConversation(conversation)
	return nil
}

func (r *memConversationRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conversations, id)
	delete(r.messages, id)
	delete(r.order, id)
	return nil
}

func (r *memConversationRepo) ListByBuyerID(ctx context.Context, buyerID string) ([]*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*entity.Conversation
	for _, conversation := range r.conversations {
		if conversation.BuyerID == buyerID {
			result = append(result, cloneConversation(conversation))
		}
	}
	return result, nil
}

func (r *memConversationRepo) ListByRoomIDs(ctx context.Context, roomIDs []string) ([]*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := make(map[string]bool, len(roomIDs))
	for _, id := range roomIDs {
		wanted[id] = true
	}

	var result []*entity.Conversation
	for _, conversation := range r.conversations {
		if wanted[conversation.RoomID] {
			result = append(result, cloneConversation(conversation))
		}
	}
	return result, nil
}

func (r *memConversationRepo) ListAll(ctx context.Context) ([]*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*entity.Conversation
	for _, conversation := range r.conversations {
		result = append(result, cloneConversation(conversation))
	}
	return result, nil
}

func (r *memConversationRepo) CreateMessage(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	if r.messages[message.ConversationID] == nil {
		r.messages[message.ConversationID] = make(map[string]*entity.Message)
	}
	if _, exists := r.messages[message.ConversationID][message.ID]; exists {
		return errors.Conflict("Message already exists", nil)
	}

	r.messages[message.ConversationID][message.ID] = cloneMessage(message)
	r.order[message.ConversationID] = append(r.order[message.ConversationID], message.ID)
	return nil
}

func (r *memConversationRepo) GetMessageByID(ctx context.Context, conversationID, messageID string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	message, ok := r.messages[conversationID][messageID]
	if !ok {
		return nil, errors.NotFound("Message", nil)
	}
	return cloneMessage(message), nil
}

func (r *memConversationRepo) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.order[conversationID]
	total := int64(len(ids))

	// Newest first.
	var messages []*entity.Message
	for i := len(ids) - 1; i >= 0; i-- {
		messages = append(messages, cloneMessage(r.messages[conversationID][ids[i]]))
	}

	start := offset
	if start > len(messages) {
		start = len(messages)
	}
	end := len(messages)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	return messages[start:end], total, nil
}

func (r *memConversationRepo) MarkMessagesRead(ctx context.Context, conversationID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, message := range r.messages[conversationID] {
		if !message.IsReadBy(userID) {
			message.ReadBy = append(message.ReadBy, userID)
		}
	}
	return nil
}

func (r *memConversationRepo) conversationCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conversations)
}

func (r *memConversationRepo) messageCount(conversationID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages[conversationID])
}

type memRoomRepo struct {
	mu    sync.Mutex
	rooms map[string]*entity.Room
}

func newMemRoomRepo(rooms ...*entity.Room) *memRoomRepo {
	repo := &memRoomRepo{rooms: make(map[string]*entity.Room)}
	for _, room := range rooms {
		repo.rooms[room.ID] = room
	}
	return repo
}

func (r *memRoomRepo) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, errors.NotFound("Room", nil)
	}
	out := *room
	return &out, nil
}

func (r *memRoomRepo) ListByAdminID(ctx context.Context, adminID string) ([]*entity.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*entity.Room
	for _, room := range r.rooms {
		if room.AdminID == adminID {
			out := *room
			result = append(result, &out)
		}
	}
	return result, nil
}

func (r *memRoomRepo) setActive(id string, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[id]; ok {
		room.IsActive = active
	}
}

type memItemRepo struct {
	items map[string]*entity.Item
}

func newMemItemRepo(items ...*entity.Item) *memItemRepo {
	repo := &memItemRepo{items: make(map[string]*entity.Item)}
	for _, item := range items {
		repo.items[item.ID] = item
	}
	return repo
}

func (r *memItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, errors.NotFound("Item", nil)
	}
	out := *item
	return &out, nil
}

type memUserRepo struct {
	users map[string]*entity.User
}

func newMemUserRepo(users ...*entity.User) *memUserRepo {
	repo := &memUserRepo{users: make(map[string]*entity.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	out := *user
	return &out, nil
}

// vanishingConversationRepo loses every insert race and then cannot find the
// winner either; the get-or-create path must escalate, not surface CONFLICT.
type vanishingConversationRepo struct {
	*memConversationRepo
}

func (r *vanishingConversationRepo) Create(ctx context.Context, conversation *entity.Conversation) error {
	return errors.Conflict("Conversation already exists for this room and buyer", nil)
}

func (r *vanishingConversationRepo) GetByRoomAndBuyer(ctx context.Context, roomID, buyerID string) (*entity.Conversation, error) {
	return nil, errors.NotFound("Conversation", nil)
}
