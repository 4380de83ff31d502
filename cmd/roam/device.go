package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/config"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/infra/kvstore"
	entsvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/entitlements"
	matchessvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/matches"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/quota"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/users"
)

var errNotSignedIn = errors.New("not signed in; run 'roam login --name <name>' first")

// device is the single-user stack backed by the local sqlite file.
type device struct {
	kv      *kvstore.SQLite
	users   *users.DeviceStore
	gate    *quota.Gate
	plans   *entsvc.Service
	matches *matchessvc.Service
}

func openDevice(cfg config.Config, path string, log *zap.Logger) (*device, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	kv, err := kvstore.OpenSQLite(path)
	if err != nil {
		return nil, err
	}

	store := users.NewDeviceStore(kv)
	return &device{
		kv:    kv,
		users: store,
		gate: quota.NewGate(quota.NewLocalStore(kv, log), quota.Config{
			FreeLikesPerDay: cfg.Engine.FreeLikesPerDay,
			DefaultTimezone: cfg.Engine.Timezone,
		}, log),
		plans:   entsvc.NewService(store),
		matches: matchessvc.NewService(matchessvc.NewLocalStore(kv), log),
	}, nil
}

func (d *device) Close() error {
	return d.kv.Close()
}

func (d *device) currentUser(ctx context.Context) (model.User, error) {
	u, err := d.users.Current(ctx)
	if errors.Is(err, users.ErrNotSignedIn) {
		return model.User{}, errNotSignedIn
	}
	return u, err
}

// withDevice opens the device database for the duration of fn.
func withDevice(ctx context.Context, fn func(ctx context.Context, d *device) error) error {
	d, err := openDevice(cfg, dbPath, appLog)
	if err != nil {
		return err
	}
	defer func() {
		if err := d.Close(); err != nil {
			appLog.Warn("close device db", zap.Error(err))
		}
	}()
	return fn(ctx, d)
}
