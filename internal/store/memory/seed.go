package memory

import (
	"encoding/json"
	"time"

	"multisite-backend-go/internal/models"
)

// HashFunc turns a plaintext password into the stored hash. The caller
// supplies it so this package stays free of crypto concerns.
type HashFunc func(raw string) (string, error)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

// Seed loads the development dataset: three sites, one super-admin, two
// site admins, one invited user awaiting first login, a sample content
// page, two articles and a handful of activity records. All catalog
// plugins start enabled for every site.
func (s *Store) Seed(hash HashFunc) error {
	adminHash, err := hash("password123")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()

	s.sites = []models.Site{
		{ID: "1", Name: "Site Principal", Domain: "site-principal.com"},
		{ID: "2", Name: "Blog", Domain: "blog.site-principal.com"},
		{ID: "3", Name: "E-commerce", Domain: "boutique.site-principal.com"},
	}

	users := []models.User{
		{
			ID: "1", Name: "Admin User", Email: "admin@example.com",
			PasswordHash: adminHash, SuperAdmin: true, Admin: true,
			SiteIDs: []string{"1", "2", "3"}, Theme: "light",
			CreatedAt: now.AddDate(0, 0, -30),
		},
		{
			ID: "2", Name: "John Doe", Email: "john@example.com",
			PasswordHash: adminHash, Admin: true,
			SiteIDs: []string{"1", "2"}, Theme: "light",
			CreatedAt: now.AddDate(0, 0, -29),
		},
		{
			// Invited but not yet activated; first login sets the password.
			ID: "3", Name: "Jane Smith", Email: "jane@example.com",
			SiteIDs: []string{"2"}, Theme: "light",
			CreatedAt: now.AddDate(0, 0, -28),
		},
		{
			ID: "4", Name: "Site 2 Admin", Email: "admin2@example.com",
			PasswordHash: adminHash, Admin: true,
			SiteIDs: []string{"2"}, Theme: "light",
			CreatedAt: now.AddDate(0, 0, -27),
		},
	}
	for i := range users {
		users[i].UpdatedAt = users[i].CreatedAt
		s.users[users[i].ID] = users[i]
	}

	for _, site := range s.sites {
		s.plugins[site.ID] = map[string]bool{}
		for _, pluginID := range models.PluginCatalog {
			s.plugins[site.ID][pluginID] = true
		}
	}

	gallery, _ := json.Marshal([]models.ContentImage{
		{URL: "https://images.unsplash.com/photo-1460925895917-afdab827c52f", Alt: "Service 1", Width: intPtr(800), Height: intPtr(600)},
		{URL: "https://images.unsplash.com/photo-1454165804606-c3d57bc86b40", Alt: "Service 2", Width: intPtr(800), Height: intPtr(600)},
	})
	s.pages["1"] = []models.ContentPage{
		{
			ID:          "home",
			Title:       "Accueil",
			Slug:        "/",
			Description: strPtr("Home page of the site"),
			Sections: []models.ContentSection{
				{ID: "hero", Type: models.SectionHero, Title: strPtr("Bienvenue sur notre site"), Content: json.RawMessage(`"Discover our services and solutions"`), Order: 0},
				{ID: "about", Type: models.SectionText, Title: strPtr("About"), Content: json.RawMessage(`"We are a leading company in our field..."`), Order: 1},
				{ID: "services", Type: models.SectionGallery, Title: strPtr("Our services"), Content: gallery, Order: 2},
			},
			CreatedAt: now.AddDate(0, 0, -20),
			UpdatedAt: now.AddDate(0, 0, -20),
		},
	}

	published := now.AddDate(0, 0, -5)
	s.articles["1"] = []models.NewsArticle{
		{
			ID:      "1",
			Title:   "Launching our new website",
			Slug:    "launching-our-new-website",
			Content: "We are thrilled to present our brand new website...",
			Excerpt: "Discover our new online platform...",
			Category: "Company",
			CoverImage: &models.ContentImage{
				URL: "https://images.unsplash.com/photo-1460925895917-afdab827c52f",
				Alt: "Website launch",
			},
			Published:   true,
			PublishedAt: &published,
			CreatedAt:   published,
			UpdatedAt:   published,
			Author:      models.AuthorRef{ID: "1", Name: "Admin User"},
		},
		{
			ID:        "2",
			Title:     "New services available",
			Slug:      "new-services-available",
			Content:   "We are expanding our range of services...",
			Excerpt:   "New offers to serve you better...",
			Category:  "Services",
			CreatedAt: now.AddDate(0, 0, -1),
			UpdatedAt: now.AddDate(0, 0, -1),
			Author:    models.AuthorRef{ID: "2", Name: "John Doe"},
		},
	}

	s.activities["1"] = []models.ActivityRecord{
		{
			ID: "1", UserID: "3", Action: models.ActionCreateAccount,
			CreatedAt: now.Add(-2 * time.Minute),
			Actor:     models.ActorRef{Name: "Jane Smith", Email: "jane@example.com"},
		},
		{
			ID: "2", UserID: "2", Action: models.ActionUpdateProfile,
			CreatedAt: now.Add(-5 * time.Minute),
			Actor:     models.ActorRef{Name: "John Doe", Email: "john@example.com"},
		},
	}
	s.activities["2"] = []models.ActivityRecord{
		{
			ID: "3", UserID: "4", Action: models.ActionAddDocument,
			Metadata:  map[string]interface{}{"documentName": "Rapport mensuel"},
			CreatedAt: now.Add(-10 * time.Minute),
			Actor:     models.ActorRef{Name: "Site 2 Admin", Email: "admin2@example.com"},
		},
	}
	s.activities["3"] = []models.ActivityRecord{
		{
			ID: "4", UserID: "1", Action: models.ActionLogin,
			CreatedAt: now.Add(-15 * time.Minute),
			Actor:     models.ActorRef{Name: "Admin User", Email: "admin@example.com"},
		},
	}
	return nil
}
