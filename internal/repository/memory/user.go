package memory

import (
	"context"
	"strings"

	"carenow-backend/internal/models"
	"carenow-backend/pkg/errs"
)

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user.ID = newID(user.ID)
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Email != "" {
		for _, u := range r.s.users {
			if u.Email == user.Email && !u.DeletedAt.Valid {
				return errs.Markf(models.ErrConflict, "email %s already registered", user.Email)
			}
		}
	}
	stamp(&user.CreatedAt, &user.UpdatedAt, r.s.now())
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepository) find(match func(models.User) bool) (*models.User, bool) {
	for _, u := range r.s.users {
		if !u.DeletedAt.Valid && match(u) {
			return &u, true
		}
	}
	return nil, false
}

func (r *UserRepository) Get(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if u, ok := r.find(func(u models.User) bool { return u.ID == id }); ok {
		return u, nil
	}
	return nil, errs.Markf(models.ErrNotFound, "user %s not found", id)
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	if u, ok := r.find(func(u models.User) bool { return u.Email == email }); ok {
		return u, nil
	}
	return nil, errs.Markf(models.ErrNotFound, "user with email %s not found", email)
}

func (r *UserRepository) GetByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if u, ok := r.find(func(u models.User) bool { return uid != "" && u.FirebaseUID == uid }); ok {
		return u, nil
	}
	return nil, errs.Markf(models.ErrNotFound, "user with firebase uid %s not found", uid)
}

func (r *UserRepository) Update(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; !ok {
		return errs.Markf(models.ErrNotFound, "user %s not found", user.ID)
	}
	stamp(nil, &user.UpdatedAt, r.s.now())
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok || u.DeletedAt.Valid {
		return errs.Markf(models.ErrNotFound, "user %s not found", id)
	}
	u.DeletedAt.Time, u.DeletedAt.Valid = r.s.now(), true
	r.s.users[id] = u
	return nil
}
