package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"multisite-backend-go/internal/models"
	"multisite-backend-go/internal/store"
)

type siteStore struct {
	db *sqlx.DB
}

func (s *siteStore) List(ctx context.Context) ([]models.Site, error) {
	sites := []models.Site{}
	err := s.db.SelectContext(ctx, &sites,
		`SELECT id, name, domain FROM sites ORDER BY id`)
	return sites, err
}

func (s *siteStore) Get(ctx context.Context, siteID string) (models.Site, error) {
	var site models.Site
	err := s.db.GetContext(ctx, &site,
		`SELECT id, name, domain FROM sites WHERE id = $1`, siteID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Site{}, store.ErrNotFound
	}
	return site, err
}

type activityStore struct {
	db *sqlx.DB
}

type activityRow struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	Action     string    `db:"action"`
	Metadata   []byte    `db:"metadata"`
	CreatedAt  time.Time `db:"created_at"`
	ActorName  string    `db:"actor_name"`
	ActorEmail string    `db:"actor_email"`
}

func (a *activityStore) ListBySite(ctx context.Context, siteID string) ([]models.ActivityRecord, error) {
	rows := []activityRow{}
	if err := a.db.SelectContext(ctx, &rows, `
SELECT id, user_id, action, metadata, created_at, actor_name, actor_email
FROM activity_records WHERE site_id = $1 ORDER BY created_at DESC
`, siteID); err != nil {
		return nil, err
	}
	records := make([]models.ActivityRecord, 0, len(rows))
	for _, row := range rows {
		record := models.ActivityRecord{
			ID:        row.ID,
			UserID:    row.UserID,
			Action:    row.Action,
			CreatedAt: row.CreatedAt,
			Actor:     models.ActorRef{Name: row.ActorName, Email: row.ActorEmail},
		}
		if len(row.Metadata) > 0 {
			if err := json.Unmarshal(row.Metadata, &record.Metadata); err != nil {
				return nil, err
			}
		}
		records = append(records, record)
	}
	return records, nil
}

func (a *activityStore) Append(ctx context.Context, siteID string, record models.ActivityRecord) error {
	var metadata []byte
	if record.Metadata != nil {
		encoded, err := json.Marshal(record.Metadata)
		if err != nil {
			return err
		}
		metadata = encoded
	}
	_, err := a.db.ExecContext(ctx, `
INSERT INTO activity_records (id, site_id, user_id, action, metadata, created_at, actor_name, actor_email)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, record.ID, siteID, record.UserID, record.Action, metadata, record.CreatedAt,
		record.Actor.Name, record.Actor.Email)
	return err
}

type pluginStore struct {
	db *sqlx.DB
}

func (p *pluginStore) State(ctx context.Context) (map[string]map[string]bool, error) {
	rows := []struct {
		SiteID   string `db:"site_id"`
		PluginID string `db:"plugin_id"`
		Enabled  bool   `db:"enabled"`
	}{}
	if err := p.db.SelectContext(ctx, &rows,
		`SELECT site_id, plugin_id, enabled FROM site_plugins`); err != nil {
		return nil, err
	}
	state := map[string]map[string]bool{}
	for _, row := range rows {
		if state[row.SiteID] == nil {
			state[row.SiteID] = map[string]bool{}
		}
		state[row.SiteID][row.PluginID] = row.Enabled
	}
	return state, nil
}

func (p *pluginStore) SiteState(ctx context.Context, siteID string) (map[string]bool, error) {
	rows := []struct {
		PluginID string `db:"plugin_id"`
		Enabled  bool   `db:"enabled"`
	}{}
	if err := p.db.SelectContext(ctx, &rows,
		`SELECT plugin_id, enabled FROM site_plugins WHERE site_id = $1`, siteID); err != nil {
		return nil, err
	}
	state := map[string]bool{}
	for _, row := range rows {
		state[row.PluginID] = row.Enabled
	}
	return state, nil
}

func (p *pluginStore) Toggle(ctx context.Context, siteID, pluginID string) (bool, error) {
	var enabled bool
	err := p.db.GetContext(ctx, &enabled, `
INSERT INTO site_plugins (site_id, plugin_id, enabled)
VALUES ($1,$2,true)
ON CONFLICT (site_id, plugin_id) DO UPDATE SET enabled = NOT site_plugins.enabled
RETURNING enabled
`, siteID, pluginID)
	return enabled, err
}

type visitStore struct {
	db *sqlx.DB
}

func (v *visitStore) Track(ctx context.Context, visit models.SiteVisit) error {
	_, err := v.db.ExecContext(ctx, `
INSERT INTO site_visits (id, site_id, path, referrer, ip_address, user_agent, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, visit.ID, visit.SiteID, visit.Path, visit.Referrer, visit.IPAddress, visit.UserAgent, visit.CreatedAt)
	return err
}

func (v *visitStore) CountBySite(ctx context.Context, siteID string) (int, error) {
	var total int
	err := v.db.GetContext(ctx, &total,
		`SELECT count(*) FROM site_visits WHERE site_id = $1`, siteID)
	return total, err
}

func (v *visitStore) RecentBySite(ctx context.Context, siteID string, limit int) ([]models.SiteVisit, error) {
	visits := []models.SiteVisit{}
	err := v.db.SelectContext(ctx, &visits, `
SELECT id, site_id, path, referrer, ip_address, user_agent, created_at
FROM site_visits WHERE site_id = $1 ORDER BY created_at DESC LIMIT $2
`, siteID, limit)
	return visits, err
}
