package customers

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu        sync.RWMutex
	customers map[string]Customer // keyed by ID
	contacts  map[string]string   // contact -> ID
}

// NewMemoryRepository builds an in-memory customer store for tests and
// development.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		customers: make(map[string]Customer),
		contacts:  make(map[string]string),
	}
}

func (r *memoryRepository) Create(_ context.Context, customer Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.contacts[customer.Contact]; exists {
		return ErrContactTaken
	}
	r.customers[customer.ID] = customer
	r.contacts[customer.Contact] = customer.ID
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	customer, ok := r.customers[id]
	if !ok {
		return Customer{}, ErrNotFound
	}
	return customer, nil
}

func (r *memoryRepository) FindByContact(_ context.Context, contact string) (Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.contacts[contact]
	if !ok {
		return Customer{}, ErrNotFound
	}
	return r.customers[id], nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	customer, ok := r.customers[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.contacts, customer.Contact)
	delete(r.customers, id)
	return nil
}

type memoryAdminRepository struct {
	mu        sync.RWMutex
	admins    map[string]Admin
	usernames map[string]string
}

// NewMemoryAdminRepository builds an in-memory admin store for tests and
// development.
func NewMemoryAdminRepository() AdminRepository {
	return &memoryAdminRepository{
		admins:    make(map[string]Admin),
		usernames: make(map[string]string),
	}
}

func (r *memoryAdminRepository) Create(_ context.Context, admin Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.usernames[admin.Username]; exists {
		return nil // first writer wins, matching ON CONFLICT DO NOTHING
	}
	r.admins[admin.ID] = admin
	r.usernames[admin.Username] = admin.ID
	return nil
}

func (r *memoryAdminRepository) FindByID(_ context.Context, id string) (Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	admin, ok := r.admins[id]
	if !ok {
		return Admin{}, ErrNotFound
	}
	return admin, nil
}

func (r *memoryAdminRepository) FindByUsername(_ context.Context, username string) (Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.usernames[username]
	if !ok {
		return Admin{}, ErrNotFound
	}
	return r.admins[id], nil
}
