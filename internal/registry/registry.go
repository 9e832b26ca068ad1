package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/smokerelay/smokerelay/internal/logger"
	"github.com/smokerelay/smokerelay/internal/model"
)

// AddResult reports the outcome of registering a user id.
type AddResult int

const (
	// Added means the user was appended and the document persisted.
	Added AddResult = iota
	// AlreadyExists means the id was registered before; nothing mutated.
	AlreadyExists
	// AddFailed means the store write failed. The optimistic in-memory
	// append is kept; the next Load resyncs to the store's truth.
	AddFailed
)

// Registry is the in-memory view over the config document. It is reloaded at
// the start of each inbound event and every mutating call performs exactly
// one whole-document write to the store. The mutex guards the in-memory view
// against concurrent events; the store itself stays last-write-wins.
type Registry struct {
	mu     sync.RWMutex
	store  model.ConfigStore
	doc    model.Document
	logger *logger.Logger
}

// New creates a Registry over the given store with an empty document.
func New(store model.ConfigStore, logger *logger.Logger) *Registry {
	return &Registry{
		store:  store,
		doc:    model.EmptyDocument(),
		logger: logger.Component("registry"),
	}
}

// Load fetches the current document from the store. On transport or parse
// failure it fails soft: the registry continues with an empty document so the
// rest of the system treats "empty" and "store unreachable" identically.
func (r *Registry) Load(ctx context.Context) {
	doc, err := r.store.Get(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		r.logger.Warn("Registry: failed to load config, continuing with empty document",
			"error", err.Error())
		r.doc = model.EmptyDocument()
		return
	}
	if doc.Users == nil {
		doc.Users = []model.User{}
	}
	r.doc = doc
}

// FindByID returns the user with the given id, if registered.
func (r *Registry) FindByID(id string) (model.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findByID(id)
}

func (r *Registry) findByID(id string) (model.User, bool) {
	for _, u := range r.doc.Users {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

// Add registers a new user id. The in-memory list is updated before the
// store write is confirmed; a failed write is reported as AddFailed and the
// caller owns the user-visible messaging.
func (r *Registry) Add(ctx context.Context, id string) AddResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.findByID(id); ok {
		return AlreadyExists
	}

	now := time.Now().UTC()
	r.doc.Users = append(r.doc.Users, model.User{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	})

	if err := r.persist(ctx); err != nil {
		r.logger.Error("Registry: failed to persist added user",
			"user_id", id,
			"error", err.Error())
		return AddFailed
	}

	r.logger.Info("Registry: user added", "user_id", id)
	return Added
}

// SetNotificationToken replaces the user's notification token and persists
// the document.
func (r *Registry) SetNotificationToken(ctx context.Context, id, token, expiry, payload string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.doc.Users {
		if r.doc.Users[i].ID != id {
			continue
		}
		r.doc.Users[i].NotificationMessages = &model.NotificationToken{
			Token:           token,
			ExpiryTimestamp: expiry,
			Payload:         payload,
		}
		r.doc.Users[i].UpdatedAt = time.Now().UTC()

		if err := r.persist(ctx); err != nil {
			return fmt.Errorf("failed to persist notification token: %w", err)
		}
		return nil
	}
	return model.ErrNotFound
}

// Remove deletes the user from the registry entirely and persists the
// reduced set.
func (r *Registry) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]model.User, 0, len(r.doc.Users))
	for _, u := range r.doc.Users {
		if u.ID != id {
			users = append(users, u)
		}
	}
	r.doc.Users = users

	if err := r.persist(ctx); err != nil {
		return fmt.Errorf("failed to persist user removal: %w", err)
	}

	r.logger.Info("Registry: user removed", "user_id", id)
	return nil
}

// IsSubscribed reports whether the user holds a notification token. Expiry
// is deliberately not interpreted here; model.TokenValid owns that check.
func (r *Registry) IsSubscribed(user model.User) bool {
	return user.NotificationMessages != nil
}

// Users returns a copy of the registered user list.
func (r *Registry) Users() []model.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, len(r.doc.Users))
	copy(users, r.doc.Users)
	return users
}

// Len returns the number of registered users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.doc.Users)
}

func (r *Registry) persist(ctx context.Context) error {
	r.doc.UpdatedAt = time.Now().UTC()
	return r.store.Put(ctx, r.doc)
}
