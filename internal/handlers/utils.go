package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"expense-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// UserIDContextKey holds the authenticated user's uuid.UUID
const UserIDContextKey = "user_id"

var ErrUnauthorized = errors.New("unauthorized")

func getUserIDFromContext(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get(UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, ErrUnauthorized
	}
	return userID, nil
}

// getIntQueryParam reads an optional integer query parameter. A nil value
// means absent; ok is false when the parameter is present but not an integer.
func getIntQueryParam(c echo.Context, name string) (value *int, ok bool) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, false
	}
	return &n, true
}

// getIntParam is getIntQueryParam with a fallback for absent or malformed values
func getIntParam(c echo.Context, name string, fallback int) int {
	if value, ok := getIntQueryParam(c, name); ok && value != nil {
		return *value
	}
	return fallback
}

// parseDateQueryParam reads an optional date filter in UTC. With endOfDay set,
// a bare YYYY-MM-DD value moves to the last instant of that day in loc.
func parseDateQueryParam(c echo.Context, name string, loc *time.Location, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}

	parsed, err := models.ParseTransactionDate(raw, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	if endOfDay && len(raw) == len(time.DateOnly) {
		parsed = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	parsed = parsed.UTC()
	return &parsed, nil
}
