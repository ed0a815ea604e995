// Package postgres backs the store interfaces with Postgres via sqlx.
package postgres

import (
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"multisite-backend-go/internal/store"
)

type Store struct {
	db *sqlx.DB
}

func Open(dsn string) (*Store, error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying handle for the migration runner.
func (s *Store) DB() *sqlx.DB { return s.db }

func (s *Store) Sites() store.SiteStore          { return &siteStore{s.db} }
func (s *Store) Users() store.UserStore          { return &userStore{s.db} }
func (s *Store) Pages() store.PageStore          { return &pageStore{s.db} }
func (s *Store) Articles() store.ArticleStore    { return &articleStore{s.db} }
func (s *Store) Activities() store.ActivityStore { return &activityStore{s.db} }
func (s *Store) Plugins() store.PluginStore      { return &pluginStore{s.db} }
func (s *Store) Visits() store.VisitStore        { return &visitStore{s.db} }

func (s *Store) Close() error { return s.db.Close() }
