package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/enums"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id::text, COALESCE(email, ''), password_hash, name, COALESCE(telegram_id, 0), subscription, created_at`

func scanUser(row pgx.Row) (model.User, error) {
	var (
		u    model.User
		tier string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.TelegramID, &tier, &u.CreatedAt); err != nil {
		return model.User{}, err
	}
	u.Subscription = enums.SubscriptionTier(tier)
	if _, ok := enums.ParseTier(tier); !ok {
		u.Subscription = enums.TierFree
	}
	return u, nil
}

func (r *UserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	if r.pool == nil {
		return model.User{}, errNilPool
	}
	if strings.TrimSpace(u.ID) == "" {
		u.ID = uuid.NewString()
	}
	if u.Subscription == "" {
		u.Subscription = enums.TierFree
	}

	var email any
	if e := strings.ToLower(strings.TrimSpace(u.Email)); e != "" {
		email = e
	}
	var telegramID any
	if u.TelegramID > 0 {
		telegramID = u.TelegramID
	}

	created, err := scanUser(r.pool.QueryRow(ctx, `
INSERT INTO users (id, email, password_hash, name, telegram_id, subscription, created_at, updated_at)
VALUES ($1::uuid, $2, $3, $4, $5, $6, NOW(), NOW())
RETURNING `+userColumns,
		u.ID, email, u.PasswordHash, u.Name, telegramID, string(u.Subscription)))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.User{}, ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (model.User, error) {
	if r.pool == nil {
		return model.User{}, errNilPool
	}
	if _, err := uuid.Parse(id); err != nil {
		return model.User{}, ErrUserNotFound
	}

	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1::uuid`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (model.User, error) {
	if r.pool == nil {
		return model.User{}, errNilPool
	}

	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (r *UserRepo) GetOrCreateByTelegramID(ctx context.Context, telegramID int64, name string) (model.User, error) {
	if telegramID <= 0 {
		return model.User{}, fmt.Errorf("invalid telegram_id")
	}
	if r.pool == nil {
		return model.User{}, errNilPool
	}

	u, err := scanUser(r.pool.QueryRow(ctx, `
INSERT INTO users (id, telegram_id, password_hash, name, subscription, created_at, updated_at)
VALUES ($1::uuid, $2, '', $3, 'free', NOW(), NOW())
ON CONFLICT (telegram_id) DO UPDATE SET
	updated_at = NOW()
RETURNING `+userColumns,
		uuid.NewString(), telegramID, name))
	if err != nil {
		return model.User{}, fmt.Errorf("get or create user by telegram_id: %w", err)
	}
	return u, nil
}

func (r *UserRepo) SetSubscription(ctx context.Context, id string, tier enums.SubscriptionTier) error {
	if r.pool == nil {
		return errNilPool
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE users
SET subscription = $2, updated_at = NOW()
WHERE id = $1::uuid
`, id, string(tier))
	if err != nil {
		return fmt.Errorf("set subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
