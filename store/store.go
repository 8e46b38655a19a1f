// Package store persists projects. The editor only talks to the Store
// interface; FileStore keeps one YAML file per project and MemStore keeps
// them in memory for tests and previews.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/montage-editor/montage"
	"github.com/montage-editor/montage/timeline"
)

type Store interface {
	// Create makes and persists a new empty project.
	Create(ctx context.Context, name string) (montage.Project, error)
	Load(ctx context.Context, id string) (montage.Project, error)
	Save(ctx context.Context, p montage.Project) error
}

// ErrNotFound is returned by Load when no project has the id.
var ErrNotFound = errors.New("project not found")

// MemStore is a Store keeping copies of the projects in a map. It is safe
// for concurrent use.
type MemStore struct {
	mu       sync.Mutex
	projects map[string]montage.Project
	saves    int
}

func NewMemStore() *MemStore {
	return &MemStore{projects: map[string]montage.Project{}}
}

func (s *MemStore) Create(ctx context.Context, name string) (montage.Project, error) {
	p := timeline.Recompute(montage.NewProject(name))
	if err := s.Save(ctx, p); err != nil {
		return montage.Project{}, err
	}
	return p, nil
}

func (s *MemStore) Load(ctx context.Context, id string) (montage.Project, error) {
	if err := ctx.Err(); err != nil {
		return montage.Project{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return montage.Project{}, ErrNotFound
	}
	return p.Copy(), nil
}

func (s *MemStore) Save(ctx context.Context, p montage.Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = p.Copy()
	s.saves++
	return nil
}

// Saves returns how many times Save has succeeded.
func (s *MemStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
