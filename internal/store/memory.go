package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/photorabbit/backend/internal/model/interview"
	"github.com/photorabbit/backend/internal/model/photo"
)

// Memory implements Store with in-memory maps, suitable for tests and for
// running without a database file.
type Memory struct {
	mu       sync.RWMutex
	projects map[string]interview.Project
	messages map[string][]interview.Message
	photos   map[string][]photo.Analysis
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		projects: make(map[string]interview.Project),
		messages: make(map[string][]interview.Message),
		photos:   make(map[string][]photo.Analysis),
	}
}

func (m *Memory) Create(_ context.Context, p interview.Project) (interview.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	m.projects[p.ID] = p
	return p, nil
}

func (m *Memory) Get(_ context.Context, id string) (interview.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[id]
	if !ok {
		return interview.Project{}, ErrProjectNotFound
	}
	return p, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[id]; !ok {
		return ErrProjectNotFound
	}
	delete(m.projects, id)
	delete(m.messages, id)
	delete(m.photos, id)
	return nil
}

func (m *Memory) Append(_ context.Context, msg interview.Message) (interview.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[msg.ProjectID]; !ok {
		return interview.Message{}, ErrProjectNotFound
	}

	msg.ID = uuid.NewString()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	m.messages[msg.ProjectID] = append(m.messages[msg.ProjectID], msg)
	return msg, nil
}

func (m *Memory) AppendBatch(_ context.Context, msgs []interview.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, msg := range msgs {
		if _, ok := m.projects[msg.ProjectID]; !ok {
			return ErrProjectNotFound
		}
		if msg.ID == "" {
			msg.ID = uuid.NewString()
		}
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = time.Now().UTC()
		}
		m.messages[msg.ProjectID] = append(m.messages[msg.ProjectID], msg)
	}
	return nil
}

func (m *Memory) ListByProject(_ context.Context, projectID string) ([]interview.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.projects[projectID]; !ok {
		return nil, ErrProjectNotFound
	}

	copied := make([]interview.Message, len(m.messages[projectID]))
	copy(copied, m.messages[projectID])
	// Insertion order already matches creation order for live appends; bulk
	// seeds carry explicit timestamps, so sort to honor them.
	sort.SliceStable(copied, func(i, j int) bool {
		return copied[i].CreatedAt.Before(copied[j].CreatedAt)
	})
	return copied, nil
}

func (m *Memory) DeleteByProject(_ context.Context, projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[projectID]; !ok {
		return ErrProjectNotFound
	}
	delete(m.messages, projectID)
	return nil
}

func (m *Memory) SaveAnalysis(_ context.Context, a photo.Analysis) (photo.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[a.ProjectID]; !ok {
		return photo.Analysis{}, ErrProjectNotFound
	}

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	m.photos[a.ProjectID] = append(m.photos[a.ProjectID], a)
	return a, nil
}

func (m *Memory) ListAnalyses(_ context.Context, projectID string) ([]photo.Analysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.projects[projectID]; !ok {
		return nil, ErrProjectNotFound
	}
	copied := make([]photo.Analysis, len(m.photos[projectID]))
	copy(copied, m.photos[projectID])
	return copied, nil
}
