package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"multisite-backend-go/internal/models"
	"multisite-backend-go/internal/store"
)

type userStore struct {
	s *Store
}

func (u *userStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.users[userID]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return cloneUser(user), nil
}

func (u *userStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.findByEmail(email)
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return cloneUser(user), nil
}

func (u *userStore) List(ctx context.Context) ([]models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	users := make([]models.User, 0, len(u.s.users))
	for _, user := range u.s.users {
		users = append(users, cloneUser(user))
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (u *userStore) Create(ctx context.Context, user models.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if _, exists := u.s.users[user.ID]; exists {
		return store.ErrConflict
	}
	if _, exists := u.s.findByEmail(user.Email); exists {
		return store.ErrConflict
	}
	u.s.users[user.ID] = cloneUser(user)
	return nil
}

func (u *userStore) Update(ctx context.Context, userID string, patch store.UserPatch) (models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.users[userID]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Admin != nil {
		user.Admin = *patch.Admin
	}
	if patch.SiteIDs != nil {
		user.SiteIDs = append([]string(nil), (*patch.SiteIDs)...)
	}
	if patch.Theme != nil {
		user.Theme = *patch.Theme
	}
	user.UpdatedAt = time.Now().UTC()
	u.s.users[userID] = user
	return cloneUser(user), nil
}

func (u *userStore) Delete(ctx context.Context, userID string) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if _, ok := u.s.users[userID]; !ok {
		return store.ErrNotFound
	}
	delete(u.s.users, userID)
	return nil
}

func (u *userStore) SetPassword(ctx context.Context, email, passwordHash string) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.findByEmail(email)
	if !ok {
		return store.ErrNotFound
	}
	if user.PasswordHash != "" {
		return store.ErrConflict
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now().UTC()
	u.s.users[user.ID] = user
	return nil
}

// findByEmail must be called with the store lock held.
func (s *Store) findByEmail(email string) (models.User, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, user := range s.users {
		if strings.ToLower(user.Email) == email {
			return user, true
		}
	}
	return models.User{}, false
}
