package httpapi

import (
	"log"
	"net/http"
	"time"

	"multisite-backend-go/internal/config"
	"multisite-backend-go/internal/services"
	"multisite-backend-go/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type Server struct {
	Store      store.Store
	Config     config.Config
	Tokens     services.TokenService
	MetricsHub *services.MetricsHub
}

func NewServer(st store.Store, cfg config.Config, hub *services.MetricsHub) *Server {
	tokens := services.TokenService{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  time.Duration(cfg.AccessTTLSeconds) * time.Second,
		RefreshTTL: time.Duration(cfg.RefreshTTLSeconds) * time.Second,
	}
	return &Server{
		Store:      st,
		Config:     cfg,
		Tokens:     tokens,
		MetricsHub: hub,
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(p)
}

// requestLogger records one line per request with the resolved client IP,
// so tenant-scoped denials can be traced back to their origin.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(recorder, r)
		if recorder.status == 0 {
			recorder.status = http.StatusOK
		}
		log.Printf("http: %s %s %d %s %s",
			r.Method, r.URL.RequestURI(), recorder.status,
			time.Since(start).Round(time.Millisecond), resolveClientIP(r))
	})
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/login", s.Login)
		api.Post("/auth/first-login", s.FirstLogin)
		api.Post("/auth/refresh", s.Refresh)
		api.Post("/auth/logout", s.Logout)

		api.Route("/me", func(me chi.Router) {
			me.Use(s.WithAuth)
			me.Get("/", s.Me)
			me.Put("/theme", s.UpdateTheme)
		})

		api.Route("/sites", func(sites chi.Router) {
			sites.Use(s.WithAuth)
			sites.Get("/", s.ListSites)
			sites.Post("/", s.CreateSite)
			sites.Get("/{siteId}/plugins", s.SitePlugins)
			sites.Post("/{siteId}/plugins/{pluginId}", s.TogglePlugin)
		})

		api.Route("/users", func(users chi.Router) {
			users.Use(s.WithAuth)
			users.Get("/", s.ListUsers)
			users.Post("/", s.InviteUser)
			users.Put("/{userId}", s.UpdateUser)
			users.Delete("/{userId}", s.DeleteUser)
		})

		api.Route("/pages", func(pages chi.Router) {
			pages.Use(s.WithAuth)
			pages.Get("/", s.ListPages)
			pages.Post("/", s.CreatePage)
			pages.Get("/{pageId}", s.GetPage)
			pages.Put("/{pageId}", s.UpdatePage)
			pages.Delete("/{pageId}", s.DeletePage)
			pages.Put("/{pageId}/sections/{sectionId}", s.UpdatePageSection)
		})

		api.Route("/news", func(news chi.Router) {
			news.Use(s.WithAuth)
			news.Get("/", s.ListArticles)
			news.Post("/", s.CreateArticle)
			news.Get("/{articleId}", s.GetArticle)
			news.Put("/{articleId}", s.UpdateArticle)
			news.Delete("/{articleId}", s.DeleteArticle)
		})

		api.Route("/activities", func(activities chi.Router) {
			activities.Use(s.WithAuth)
			activities.Get("/", s.ListActivities)
			activities.Post("/", s.AppendActivity)
		})

		api.With(s.WithAuth).Get("/stats", s.SiteStats)

		api.Route("/public", func(pub chi.Router) {
			pub.Post("/visits", s.TrackVisit)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(s.WithAuth)
			admin.Get("/metrics/history", s.MetricsHistory)
		})
	})

	r.Get("/ws/metrics", s.MetricsSocket)
	return r
}
