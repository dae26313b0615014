package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/noah-isme/tutorhub-api/internal/models"
)

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// UserRepository is the authoritative in-memory user table. It preserves
// insertion order so directory listings and name lookups are deterministic.
// Records go in and come out as deep copies.
type UserRepository struct {
	mu    sync.RWMutex
	order []string
	rows  map[string]models.User
}

// NewUserRepository constructs a repository holding the given users.
func NewUserRepository(seed []models.User) *UserRepository {
	r := &UserRepository{rows: make(map[string]models.User, len(seed))}
	for _, u := range seed {
		if _, exists := r.rows[u.ID]; exists {
			continue
		}
		r.order = append(r.order, u.ID)
		r.rows[u.ID] = u.Clone()
	}
	return r
}

// List returns every user in insertion order.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]models.User, 0, len(r.order))
	for _, id := range r.order {
		users = append(users, r.rows[id].Clone())
	}
	return users, nil
}

// FindByID fetches a user by id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := u.Clone()
	return &cp, nil
}

// FindByName returns the first user, in insertion order, whose name matches exactly.
func (r *UserRepository) FindByName(ctx context.Context, name string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if u := r.rows[id]; u.Name == name {
			cp := u.Clone()
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

// SaveAll writes users back keyed by id. Known ids are replaced in place and
// unknown ids are appended in the order given, all under one lock.
func (r *UserRepository) SaveAll(ctx context.Context, users []models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range users {
		if _, exists := r.rows[u.ID]; !exists {
			r.order = append(r.order, u.ID)
		}
		r.rows[u.ID] = u.Clone()
	}
	return nil
}
