// Package backend assembles the storage, user store, and event bus for the
// configured data backend.
package backend

import (
	"context"
	"fmt"

	"floatdesk/internal/amqp"
	"floatdesk/internal/auth"
	"floatdesk/internal/config"
	"floatdesk/internal/ledger"
	applog "floatdesk/internal/log"
	"floatdesk/internal/storage"
	"floatdesk/internal/storage/memory"
)

// Type is the data backend selector.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result holds the assembled collaborators. Events is nil when no AMQP URL
// is configured.
type Result struct {
	Store   ledger.Store
	Users   auth.UserStore
	Events  *amqp.Client
	Cleanup CleanupFunc
}

// Create builds the backend named by cfg.DataBackend.
func Create(ctx context.Context, cfg *config.Config) (*Result, error) {
	backendType := Type(cfg.DataBackend)
	if !backendType.IsValid() {
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.DataBackend)
	}

	switch backendType {
	case SQLiteBackend:
		return createSQLite(ctx, cfg)
	default:
		return createMemory(cfg)
	}
}

func createSQLite(ctx context.Context, cfg *config.Config) (*Result, error) {
	logger := applog.ForComponent(applog.ComponentBackend)

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite repository: %w", err)
	}

	if err := repo.EnsureAdminUser(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		repo.Close()
		return nil, fmt.Errorf("seed admin user: %w", err)
	}

	// AMQP is optional: the ledger works without the report mirror.
	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without eventing", "error", err)
			events = nil
		} else {
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	logger.Info("Initialized sqlite backend",
		"db_path", cfg.SQLiteDBPath,
		"amqp_enabled", events != nil)

	return &Result{
		Store:  repo,
		Users:  repo,
		Events: events,
		Cleanup: func() error {
			if events != nil {
				if err := events.Close(); err != nil {
					logger.Warn("Failed to close AMQP client", "error", err)
				}
			}
			return repo.Close()
		},
	}, nil
}

func createMemory(cfg *config.Config) (*Result, error) {
	users, err := auth.NewStaticUserStore(cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("initialize user store: %w", err)
	}

	applog.ForComponent(applog.ComponentBackend).Info("Initialized memory backend")

	return &Result{
		Store:   memory.NewStore(),
		Users:   users,
		Cleanup: func() error { return nil },
	}, nil
}
