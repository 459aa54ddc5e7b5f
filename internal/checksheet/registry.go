package checksheet

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"spckit/internal/errors"
)

// Registry keeps the check sheets of a running process.
type Registry struct {
	mu     sync.RWMutex
	sheets map[uuid.UUID]*Sheet
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{sheets: make(map[uuid.UUID]*Sheet)}
}

// Create validates def and registers a new sheet.
func (r *Registry) Create(def Definition) (*Sheet, error) {
	s, err := NewSheet(def)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.sheets[s.ID] = s
	r.mu.Unlock()
	return s, nil
}

// Get returns the sheet with the given id.
func (r *Registry) Get(id string) (*Sheet, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.InvalidInput("invalid check sheet id")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sheets[uid]
	if !ok {
		return nil, errors.NotFound("check sheet " + id)
	}
	return s, nil
}

// List returns all sheets, oldest first.
func (r *Registry) List() []*Sheet {
	r.mu.RLock()
	out := make([]*Sheet, 0, len(r.sheets))
	for _, s := range r.sheets {
		out = append(out, s)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
