package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"multisite-backend-go/internal/models"
	"multisite-backend-go/internal/store"
)

type userStore struct {
	db *sqlx.DB
}

func (u *userStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	var user models.User
	err := u.db.GetContext(ctx, &user, `
SELECT id, name, email, COALESCE(password_hash, '') AS password_hash,
       super_admin, admin, theme, created_at, updated_at
FROM users WHERE id = $1
`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, store.ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	if err := u.loadSites(ctx, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (u *userStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := u.db.GetContext(ctx, &user, `
SELECT id, name, email, COALESCE(password_hash, '') AS password_hash,
       super_admin, admin, theme, created_at, updated_at
FROM users WHERE lower(email) = $1
`, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, store.ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	if err := u.loadSites(ctx, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (u *userStore) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := u.db.SelectContext(ctx, &users, `
SELECT id, name, email, COALESCE(password_hash, '') AS password_hash,
       super_admin, admin, theme, created_at, updated_at
FROM users ORDER BY created_at
`); err != nil {
		return nil, err
	}
	for i := range users {
		if err := u.loadSites(ctx, &users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}

func (u *userStore) Create(ctx context.Context, user models.User) error {
	var exists bool
	if err := u.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = $1)`,
		strings.ToLower(user.Email)); err != nil {
		return err
	}
	if exists {
		return store.ErrConflict
	}
	var passwordHash *string
	if user.PasswordHash != "" {
		passwordHash = &user.PasswordHash
	}
	if _, err := u.db.ExecContext(ctx, `
INSERT INTO users (id, name, email, password_hash, super_admin, admin, theme, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, user.ID, user.Name, user.Email, passwordHash, user.SuperAdmin, user.Admin, user.Theme, user.CreatedAt, user.UpdatedAt); err != nil {
		return err
	}
	return u.replaceSites(ctx, user.ID, user.SiteIDs)
}

func (u *userStore) Update(ctx context.Context, userID string, patch store.UserPatch) (models.User, error) {
	result, err := u.db.ExecContext(ctx, `
UPDATE users
SET name = COALESCE($2, name),
    admin = COALESCE($3, admin),
    theme = COALESCE($4, theme),
    updated_at = $5
WHERE id = $1
`, userID, patch.Name, patch.Admin, patch.Theme, time.Now().UTC())
	if err != nil {
		return models.User{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return models.User{}, err
	}
	if affected == 0 {
		return models.User{}, store.ErrNotFound
	}
	if patch.SiteIDs != nil {
		if err := u.replaceSites(ctx, userID, *patch.SiteIDs); err != nil {
			return models.User{}, err
		}
	}
	return u.GetByID(ctx, userID)
}

func (u *userStore) Delete(ctx context.Context, userID string) error {
	result, err := u.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (u *userStore) SetPassword(ctx context.Context, email, passwordHash string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	var current *string
	err := u.db.GetContext(ctx, &current, `SELECT password_hash FROM users WHERE lower(email) = $1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}
	if current != nil && *current != "" {
		return store.ErrConflict
	}
	// Guarded update so a concurrent activation cannot overwrite a hash
	// set between the read and the write.
	result, err := u.db.ExecContext(ctx, `
UPDATE users SET password_hash = $2, updated_at = $3
WHERE lower(email) = $1 AND (password_hash IS NULL OR password_hash = '')
`, email, passwordHash, time.Now().UTC())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrConflict
	}
	return nil
}

func (u *userStore) loadSites(ctx context.Context, user *models.User) error {
	siteIDs := []string{}
	if err := u.db.SelectContext(ctx, &siteIDs,
		`SELECT site_id FROM user_sites WHERE user_id = $1 ORDER BY site_id`, user.ID); err != nil {
		return err
	}
	user.SiteIDs = siteIDs
	return nil
}

func (u *userStore) replaceSites(ctx context.Context, userID string, siteIDs []string) error {
	if _, err := u.db.ExecContext(ctx, `DELETE FROM user_sites WHERE user_id = $1`, userID); err != nil {
		return err
	}
	for _, siteID := range siteIDs {
		if _, err := u.db.ExecContext(ctx,
			`INSERT INTO user_sites (user_id, site_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
			userID, siteID); err != nil {
			return err
		}
	}
	return nil
}
