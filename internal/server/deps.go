package server

import (
	"context"
	"errors"
	"fmt"

	"calculator-api/internal/calculator"
	"calculator-api/internal/config"
	"calculator-api/internal/history"
	"calculator-api/internal/observability"
	"calculator-api/internal/session"
	"calculator-api/internal/storage"

	"go.uber.org/zap"
)

// Build wires the stores selected by cfg into router dependencies. The
// returned close function releases backend connections.
func Build(ctx context.Context, cfg *config.Config, opts ...session.Option) (Dependencies, func() error, error) {
	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	users, closeUsers, err := newUserRepository(cfg.Storage)
	if err != nil {
		return Dependencies{}, nil, err
	}
	if closeUsers != nil {
		closers = append(closers, closeUsers)
	}

	hist, closeHist, err := newHistoryStore(ctx, cfg.History)
	if err != nil {
		closeAll()
		return Dependencies{}, nil, err
	}
	if closeHist != nil {
		closers = append(closers, closeHist)
	}

	store := session.NewStore(users, opts...)

	seed := make([]session.Credentials, len(cfg.SeedUsers))
	for i, u := range cfg.SeedUsers {
		seed[i] = session.Credentials{Username: u.Username, Password: u.Password}
	}
	if err := store.Seed(ctx, seed); err != nil {
		closeAll()
		return Dependencies{}, nil, err
	}

	observability.Logger.Info("dependencies ready",
		zap.String("user_store", cfg.Storage.UserStore),
		zap.String("history_backend", cfg.History.Backend),
		zap.Int("seed_users", len(seed)),
	)

	reg, err := observability.NewRegistry(stateCollectors(store, hist)...)
	if err != nil {
		closeAll()
		return Dependencies{}, nil, fmt.Errorf("register metrics: %w", err)
	}

	deps := Dependencies{
		ServiceName: cfg.Telemetry.ServiceName,
		Metrics:     reg,
		Calculator:  calculator.NewHandler(calculator.NewService(hist)),
		Session:     session.NewHandler(store),
		History:     history.NewHandler(hist),
	}
	return deps, closeAll, nil
}

func newUserRepository(cfg config.StorageConfig) (storage.UserRepository, func() error, error) {
	switch cfg.UserStore {
	case config.StoreSQLite:
		repo, err := storage.NewSQLiteUsers(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	case config.StoreMemory, "":
		return storage.NewMemoryUsers(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown user store %q", cfg.UserStore)
	}
}

func newHistoryStore(ctx context.Context, cfg config.HistoryConfig) (history.Store, func() error, error) {
	switch cfg.Backend {
	case config.StoreRedis:
		s, err := history.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisKey)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.StoreMemory, "":
		return history.NewMemoryStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}
