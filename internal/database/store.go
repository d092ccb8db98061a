package database

import (
	"context"
	"fmt"

	"github.com/isdelr/devlink/internal/config"
	"github.com/isdelr/devlink/internal/models"
)

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

// DeveloperStore persists developer records. Reads by id are unscoped so the
// caller can tell a missing record from one owned by someone else; writes are
// always scoped to the owner.
type DeveloperStore interface {
	CreateDeveloper(ctx context.Context, dev *models.Developer) error
	GetDeveloper(ctx context.Context, id string) (models.Developer, error)
	UpdateDeveloper(ctx context.Context, dev *models.Developer) error
	DeleteDeveloper(ctx context.Context, id, ownerID string) error
	ListDevelopers(ctx context.Context, ownerID string, filter models.DeveloperFilter) ([]models.Developer, error)
}

// Store is the full persistence surface used by the services.
type Store interface {
	UserStore
	DeveloperStore
	Close(ctx context.Context) error
}

// Open connects to the backend selected by cfg.DatabaseDriver and brings its
// schema up to date.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite, config.DriverPostgres:
		db, err := New(cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := Migrate(ctx, db, cfg.DatabaseDriver); err != nil {
			db.Close()
			return nil, err
		}
		return NewSQLStore(db, cfg.DatabaseDriver), nil
	case config.DriverMongo:
		m, err := NewMongo(ctx, cfg.DatabaseURL, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := m.EnsureCollections(ctx); err != nil {
			m.Close(ctx)
			return nil, err
		}
		return NewMongoStore(m), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}
