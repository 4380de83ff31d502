package auth

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// TelegramUser is the part of mini-app init data the API cares about.
type TelegramUser struct {
	ID   int64
	Name string
}

// ParseTelegramInitData accepts a bare numeric id, a query string with a JSON
// "user" field, or a query string with user_id/id.
func ParseTelegramInitData(initData string) (TelegramUser, error) {
	trimmed := strings.TrimSpace(initData)
	if trimmed == "" {
		return TelegramUser{}, fmt.Errorf("init data is empty: %w", ErrInvalidInput)
	}

	if parsed, err := strconv.ParseInt(trimmed, 10, 64); err == nil && parsed > 0 {
		return TelegramUser{ID: parsed}, nil
	}

	query, err := url.ParseQuery(trimmed)
	if err != nil || len(query) == 0 {
		return TelegramUser{}, fmt.Errorf("malformed init data: %w", ErrInvalidInput)
	}

	if rawUser := query.Get("user"); rawUser != "" {
		var payload struct {
			ID        int64  `json:"id"`
			FirstName string `json:"first_name"`
			Username  string `json:"username"`
		}
		if err := json.Unmarshal([]byte(rawUser), &payload); err == nil && payload.ID > 0 {
			name := payload.FirstName
			if name == "" {
				name = payload.Username
			}
			return TelegramUser{ID: payload.ID, Name: name}, nil
		}
	}

	for _, key := range []string{"user_id", "id", "tg_user_id"} {
		if value := query.Get(key); value != "" {
			if parsed, err := strconv.ParseInt(value, 10, 64); err == nil && parsed > 0 {
				return TelegramUser{ID: parsed, Name: query.Get("name")}, nil
			}
		}
	}

	return TelegramUser{}, fmt.Errorf("telegram user id missing: %w", ErrInvalidInput)
}
