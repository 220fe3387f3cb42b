package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iphonefly/realtime-api/internal/model"
)

// MemoryIphoneStore is an in-memory IphoneStore. It backs tests and runs
// without a configured database. Ids are handed out by a monotonically
// increasing counter, so deleted ids are never reused.
type MemoryIphoneStore struct {
	mu     sync.RWMutex
	items  map[uint]model.Iphone
	nextID uint
}

// NewMemoryIphoneStore returns an empty in-memory catalog.
func NewMemoryIphoneStore() *MemoryIphoneStore {
	return &MemoryIphoneStore{items: make(map[uint]model.Iphone), nextID: 1}
}

func (s *MemoryIphoneStore) Create(iphone *model.Iphone) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	iphone.ID = s.nextID
	s.nextID++
	now := time.Now()
	iphone.CreatedAt = now
	iphone.UpdatedAt = now
	s.items[iphone.ID] = *iphone
	return nil
}

func (s *MemoryIphoneStore) FindByID(id uint) (*model.Iphone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (s *MemoryIphoneStore) Update(id uint, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return ErrNotFound
	}

	for column, value := range fields {
		switch column {
		case "name":
			item.Name, _ = value.(string)
		case "model":
			item.Model, _ = value.(string)
		case "price":
			item.Price, _ = value.(float64)
		case "storage":
			item.Storage, _ = value.(string)
		case "color":
			item.Color, _ = value.(string)
		case "image":
			item.Image, _ = value.(string)
		case "original_price":
			if v, ok := value.(float64); ok {
				item.OriginalPrice = &v
			}
		case "rating":
			if v, ok := value.(float64); ok {
				item.Rating = &v
			}
		}
	}
	item.UpdatedAt = time.Now()
	s.items[id] = item
	return nil
}

func (s *MemoryIphoneStore) Delete(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *MemoryIphoneStore) ListByID() ([]model.Iphone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	iphones := make([]model.Iphone, 0, len(s.items))
	for _, item := range s.items {
		iphones = append(iphones, item)
	}
	sort.Slice(iphones, func(i, j int) bool { return iphones[i].ID < iphones[j].ID })
	return iphones, nil
}

// MemoryMessageStore is an in-memory MessageStore mirroring the GORM
// implementation's ordering semantics.
type MemoryMessageStore struct {
	mu   sync.RWMutex
	msgs []model.Message
}

// NewMemoryMessageStore returns an empty in-memory message log.
func NewMemoryMessageStore() *MemoryMessageStore {
	return &MemoryMessageStore{}
}

func (s *MemoryMessageStore) Create(msg *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if msg.Kind == "" {
		msg.Kind = model.MessageKindUser
	}
	s.msgs = append(s.msgs, *msg)
	return nil
}

// newestFirst returns a copy of the log in reverse insertion order. Insertion
// order and timestamp order coincide because timestamps are assigned at
// creation time.
func (s *MemoryMessageStore) newestFirst() []model.Message {
	out := make([]model.Message, 0, len(s.msgs))
	for i := len(s.msgs) - 1; i >= 0; i-- {
		out = append(out, s.msgs[i])
	}
	return out
}

func (s *MemoryMessageStore) Recent(limit int) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.newestFirst()
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (s *MemoryMessageStore) Page(limit, offset int) ([]model.Message, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.newestFirst()
	total := int64(len(msgs))
	if offset >= len(msgs) {
		return []model.Message{}, total, nil
	}
	msgs = msgs[offset:]
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, total, nil
}

func (s *MemoryMessageStore) BySender(sender string, limit int) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Message{}
	for _, msg := range s.newestFirst() {
		if msg.Sender != sender {
			continue
		}
		out = append(out, msg)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryMessageStore) CountByKind() (total, user, system int64, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, msg := range s.msgs {
		total++
		if msg.Kind == model.MessageKindSystem {
			system++
		} else {
			user++
		}
	}
	return total, user, system, nil
}

func (s *MemoryMessageStore) TopSenders(n int) ([]model.SenderCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, msg := range s.msgs {
		if msg.Kind == model.MessageKindUser {
			counts[msg.Sender]++
		}
	}

	rows := make([]model.SenderCount, 0, len(counts))
	for sender, count := range counts {
		rows = append(rows, model.SenderCount{Sender: sender, MessageCount: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].MessageCount != rows[j].MessageCount {
			return rows[i].MessageCount > rows[j].MessageCount
		}
		return rows[i].Sender < rows[j].Sender
	})
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows, nil
}

func (s *MemoryMessageStore) DeleteByID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, msg := range s.msgs {
		if msg.ID == id {
			s.msgs = append(s.msgs[:i], s.msgs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
