package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/enums"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/infra/kvstore"
	pgrepo "github.com/Drakkarus-debug/Roam-Romance-001/internal/repo/postgres"
)

var ErrNotSignedIn = errors.New("no user signed in on this device")

// DeviceStore holds the single signed-in user of a device as the roam_user
// JSON blob.
type DeviceStore struct {
	kv  kvstore.Store
	now func() time.Time
}

func NewDeviceStore(kv kvstore.Store) *DeviceStore {
	return &DeviceStore{kv: kv, now: time.Now}
}

// Current returns the signed-in user.
func (s *DeviceStore) Current(ctx context.Context) (model.User, error) {
	raw, ok, err := s.kv.Get(ctx, kvstore.KeyUser)
	if err != nil {
		return model.User{}, fmt.Errorf("read device user: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return model.User{}, ErrNotSignedIn
	}
	var u model.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID == "" {
		return model.User{}, ErrNotSignedIn
	}
	if _, ok := enums.ParseTier(string(u.Subscription)); !ok {
		u.Subscription = enums.TierFree
	}
	return u, nil
}

// SignIn replaces the device user, keeping the id when the name is unchanged.
func (s *DeviceStore) SignIn(ctx context.Context, name, email string) (model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.User{}, fmt.Errorf("name is required")
	}
	if current, err := s.Current(ctx); err == nil && current.Name == name {
		return current, nil
	}
	return s.Create(ctx, model.User{Name: name, Email: email})
}

func (s *DeviceStore) SignOut(ctx context.Context) error {
	return s.kv.Delete(ctx, kvstore.KeyUser)
}

func (s *DeviceStore) Create(ctx context.Context, u model.User) (model.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Subscription == "" {
		u.Subscription = enums.TierFree
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC()
	}
	if err := s.save(ctx, u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

func (s *DeviceStore) FindByID(ctx context.Context, id string) (model.User, error) {
	u, err := s.Current(ctx)
	if err != nil || u.ID != id {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return u, nil
}

func (s *DeviceStore) FindByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := s.Current(ctx)
	if err != nil || !strings.EqualFold(u.Email, strings.TrimSpace(email)) {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return u, nil
}

func (s *DeviceStore) GetOrCreateByTelegramID(ctx context.Context, telegramID int64, name string) (model.User, error) {
	if u, err := s.Current(ctx); err == nil && u.TelegramID == telegramID {
		return u, nil
	}
	return s.Create(ctx, model.User{Name: name, TelegramID: telegramID})
}

func (s *DeviceStore) SetSubscription(ctx context.Context, id string, tier enums.SubscriptionTier) error {
	u, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	u.Subscription = tier
	return s.save(ctx, u)
}

func (s *DeviceStore) save(ctx context.Context, u model.User) error {
	payload, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode device user: %w", err)
	}
	if err := s.kv.Set(ctx, kvstore.KeyUser, string(payload)); err != nil {
		return fmt.Errorf("write device user: %w", err)
	}
	return nil
}
