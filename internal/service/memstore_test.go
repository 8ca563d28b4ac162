package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fibrelink/backend/internal/models"
)

// memStore is an in-memory stand-in for the document store used across the
// service tests.
type memStore struct {
	mu            sync.Mutex
	plans         map[string]models.Plan
	engineers     map[string]*models.Engineer
	orders        map[string]*models.Order
	tickets       map[string]*models.Ticket
	conversations map[string]*models.Conversation
	messages      []models.Message
}

func newMemStore() *memStore {
	return &memStore{
		plans:         make(map[string]models.Plan),
		engineers:     make(map[string]*models.Engineer),
		orders:        make(map[string]*models.Order),
		tickets:       make(map[string]*models.Ticket),
		conversations: make(map[string]*models.Conversation),
	}
}

func (m *memStore) GetPlan(_ context.Context, id string) (models.Plan, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	return p, ok, nil
}

func (m *memStore) PickInstallEngineer(_ context.Context, pincode string) (models.Engineer, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var candidates []*models.Engineer
	for _, e := range m.engineers {
		if e.Status != models.StatusActive || !contains(e.Areas, pincode) || !contains(e.Skills, "install") {
			continue
		}
		candidates = append(candidates, e)
	}
	if len(candidates) == 0 {
		return models.Engineer{}, false, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Workload == candidates[j].Workload {
			return candidates[i].ID < candidates[j].ID
		}
		return candidates[i].Workload < candidates[j].Workload
	})
	return *candidates[0], true, nil
}

func (m *memStore) AddEngineerWorkload(_ context.Context, id string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.engineers[id]; ok {
		e.Workload += delta
		if e.Workload < 0 {
			e.Workload = 0
		}
		e.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *memStore) InsertOrder(_ context.Context, o models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := o
	m.orders[o.ID] = &cp
	return nil
}

func (m *memStore) GetOrder(_ context.Context, id string) (models.Order, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return models.Order{}, false, nil
	}
	return *o, true, nil
}

func (m *memStore) ListOrdersByUser(_ context.Context, userID string, limit int) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) AppendOrderStatus(_ context.Context, id, status string, entry models.TimelineEntry) (models.Order, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return models.Order{}, false, nil
	}
	o.Status = status
	o.Timeline = append(o.Timeline, entry)
	o.UpdatedAt = entry.TS
	return *o, true, nil
}

func (m *memStore) InsertTicket(_ context.Context, t models.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := t
	m.tickets[t.ID] = &cp
	return nil
}

func (m *memStore) GetTicket(_ context.Context, id string) (models.Ticket, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return models.Ticket{}, false, nil
	}
	return *t, true, nil
}

func (m *memStore) ListTicketsByUser(_ context.Context, userID string, limit int) ([]models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Ticket
	for _, t := range m.tickets {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) AppendTicketStatus(_ context.Context, id, status string, note models.TicketNote) (models.Ticket, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return models.Ticket{}, false, nil
	}
	t.Status = status
	t.Notes = append(t.Notes, note)
	t.UpdatedAt = note.TS
	return *t, true, nil
}

func (m *memStore) AssignTicket(_ context.Context, id string, assignee models.TicketAssignee, note models.TicketNote) (models.Ticket, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return models.Ticket{}, false, nil
	}
	t.AssignedTo = &assignee
	t.Status = models.TicketAssigned
	t.Notes = append(t.Notes, note)
	t.UpdatedAt = note.TS
	return *t, true, nil
}

func (m *memStore) AppendTicketNote(_ context.Context, id string, note models.TicketNote) (models.Ticket, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return models.Ticket{}, false, nil
	}
	t.Notes = append(t.Notes, note)
	t.UpdatedAt = note.TS
	return *t, true, nil
}

func (m *memStore) LatestConversation(_ context.Context, userID string) (models.Conversation, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *models.Conversation
	for _, c := range m.conversations {
		if c.UserID != userID {
			continue
		}
		if latest == nil || c.LastMessageAt.After(latest.LastMessageAt) {
			latest = c
		}
	}
	if latest == nil {
		return models.Conversation{}, false, nil
	}
	return *latest, true, nil
}

func (m *memStore) InsertConversation(_ context.Context, c models.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := c
	m.conversations[c.ID] = &cp
	return nil
}

func (m *memStore) InsertMessage(_ context.Context, msg models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	if c, ok := m.conversations[msg.ConversationID]; ok {
		c.LastMessageAt = msg.CreatedAt
	}
	return nil
}

func (m *memStore) ListMessagesBefore(_ context.Context, conversationID, cursor string, limit int) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Message
	for _, msg := range m.messages {
		if msg.ConversationID != conversationID {
			continue
		}
		if cursor != "" && msg.ID >= cursor {
			continue
		}
		out = append(out, msg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
