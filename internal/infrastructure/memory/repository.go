package memory

import (
	"context"
	"sort"
	"sync"

	"aid-portal/internal/domain"
)

// ApplicationRepository keeps applications in process memory. It backs local
// runs and tests; every read and write copies so callers never share state.
type ApplicationRepository struct {
	mu   sync.RWMutex
	apps map[string]domain.Application
}

func NewApplicationRepository() *ApplicationRepository {
	return &ApplicationRepository{apps: map[string]domain.Application{}}
}

func (r *ApplicationRepository) Create(_ context.Context, app domain.Application) error {
	if app.ID == "" {
		return domain.ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.apps[app.ID]; exists {
		return domain.ErrConflict
	}
	r.apps[app.ID] = app.Clone()
	return nil
}

func (r *ApplicationRepository) Update(_ context.Context, app domain.Application, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.apps[app.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version != expectedVersion {
		return domain.ErrConflict
	}
	r.apps[app.ID] = app.Clone()
	return nil
}

func (r *ApplicationRepository) GetByID(_ context.Context, id string) (domain.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.apps[id]
	if !ok {
		return domain.Application{}, domain.ErrNotFound
	}
	return app.Clone(), nil
}

func (r *ApplicationRepository) ListByStatus(_ context.Context, status domain.Status) ([]domain.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Application, 0)
	for _, app := range r.apps {
		if app.Status == status {
			out = append(out, app.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
