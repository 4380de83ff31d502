package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/enums"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
	pgrepo "github.com/Drakkarus-debug/Roam-Romance-001/internal/repo/postgres"
)

const minPasswordLen = 6

type UserStore interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	GetOrCreateByTelegramID(ctx context.Context, telegramID int64, name string) (model.User, error)
}

type Service struct {
	jwt   *JWTManager
	users UserStore
	cost  int
	now   func() time.Time
}

func NewService(jwtManager *JWTManager, users UserStore) *Service {
	return &Service{
		jwt:   jwtManager,
		users: users,
		cost:  bcrypt.DefaultCost,
		now:   time.Now,
	}
}

func (s *Service) Register(ctx context.Context, name, email, password string) (AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || len(password) < minPasswordLen {
		return AuthResult{}, ErrInvalidInput
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return AuthResult{}, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Subscription: enums.TierFree,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, pgrepo.ErrEmailTaken) {
			return AuthResult{}, ErrEmailTaken
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	return s.issueForUser(user)
}

func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return AuthResult{}, ErrInvalidInput
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("find user: %w", err)
	}
	if user.PasswordHash == "" {
		return AuthResult{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.issueForUser(user)
}

func (s *Service) LoginTelegram(ctx context.Context, initData string) (AuthResult, error) {
	tgUser, err := ParseTelegramInitData(initData)
	if err != nil {
		return AuthResult{}, err
	}
	return s.LoginTelegramUser(ctx, tgUser.ID, tgUser.Name)
}

// LoginTelegramUser upserts the user behind a telegram id; the bot calls it
// directly with the sender of an update.
func (s *Service) LoginTelegramUser(ctx context.Context, telegramID int64, name string) (AuthResult, error) {
	if telegramID <= 0 {
		return AuthResult{}, ErrInvalidInput
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("tg%d", telegramID)
	}
	user, err := s.users.GetOrCreateByTelegramID(ctx, telegramID, name)
	if err != nil {
		return AuthResult{}, fmt.Errorf("resolve telegram user: %w", err)
	}

	return s.issueForUser(user)
}

func (s *Service) Me(ctx context.Context, userID string) (model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.User{}, ErrUnauthorized
		}
		return model.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *Service) ValidateAccessToken(accessToken string) (AccessClaims, error) {
	claims, err := s.jwt.ParseAccessToken(accessToken)
	if err != nil {
		return AccessClaims{}, ErrUnauthorized
	}
	return claims, nil
}

func (s *Service) issueForUser(user model.User) (AuthResult, error) {
	accessToken, accessExpires, err := s.jwt.GenerateAccessToken(user.ID, uuid.NewString())
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate access token: %w", err)
	}

	return AuthResult{
		AccessToken:   accessToken,
		AccessExpires: accessExpires,
		User:          user,
	}, nil
}
