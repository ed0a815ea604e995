package memory

import (
	"context"
	"sort"

	"multisite-backend-go/internal/models"
	"multisite-backend-go/internal/store"
)

type siteStore struct {
	s *Store
}

func (s *siteStore) List(ctx context.Context) ([]models.Site, error) {
	s.s.mu.Lock()
	defer s.s.mu.Unlock()
	sites := make([]models.Site, len(s.s.sites))
	copy(sites, s.s.sites)
	return sites, nil
}

func (s *siteStore) Get(ctx context.Context, siteID string) (models.Site, error) {
	s.s.mu.Lock()
	defer s.s.mu.Unlock()
	for _, site := range s.s.sites {
		if site.ID == siteID {
			return site, nil
		}
	}
	return models.Site{}, store.ErrNotFound
}

type activityStore struct {
	s *Store
}

func (a *activityStore) ListBySite(ctx context.Context, siteID string) ([]models.ActivityRecord, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	records := make([]models.ActivityRecord, 0, len(a.s.activities[siteID]))
	for _, record := range a.s.activities[siteID] {
		records = append(records, cloneActivity(record))
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

func (a *activityStore) Append(ctx context.Context, siteID string, record models.ActivityRecord) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	a.s.activities[siteID] = append(a.s.activities[siteID], cloneActivity(record))
	return nil
}

type pluginStore struct {
	s *Store
}

func (p *pluginStore) State(ctx context.Context) (map[string]map[string]bool, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	state := make(map[string]map[string]bool, len(p.s.plugins))
	for siteID, toggles := range p.s.plugins {
		site := make(map[string]bool, len(toggles))
		for pluginID, enabled := range toggles {
			site[pluginID] = enabled
		}
		state[siteID] = site
	}
	return state, nil
}

func (p *pluginStore) SiteState(ctx context.Context, siteID string) (map[string]bool, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	site := make(map[string]bool, len(p.s.plugins[siteID]))
	for pluginID, enabled := range p.s.plugins[siteID] {
		site[pluginID] = enabled
	}
	return site, nil
}

func (p *pluginStore) Toggle(ctx context.Context, siteID, pluginID string) (bool, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if p.s.plugins[siteID] == nil {
		p.s.plugins[siteID] = map[string]bool{}
	}
	enabled := !p.s.plugins[siteID][pluginID]
	p.s.plugins[siteID][pluginID] = enabled
	return enabled, nil
}

type visitStore struct {
	s *Store
}

func (v *visitStore) Track(ctx context.Context, visit models.SiteVisit) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.s.visits[visit.SiteID] = append(v.s.visits[visit.SiteID], visit)
	return nil
}

func (v *visitStore) CountBySite(ctx context.Context, siteID string) (int, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return len(v.s.visits[siteID]), nil
}

// RecentBySite returns visits newest first, matching the SQL backend.
func (v *visitStore) RecentBySite(ctx context.Context, siteID string, limit int) ([]models.SiteVisit, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	items := append([]models.SiteVisit(nil), v.s.visits[siteID]...)
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
