package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"reviewhub/internal/microservices/http-api/models"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedUser(t *testing.T, s *memStore, username string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Role: role, Confirmed: true}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func seedTitle(t *testing.T, s *memStore, name string, year int) *models.Title {
	t.Helper()
	title := &models.Title{Name: name, Year: year}
	require.NoError(t, s.Titles().Create(context.Background(), title))
	return title
}

func storedRating(t *testing.T, s *memStore, titleID int64) *float64 {
	t.Helper()
	title, err := s.Titles().FindByID(context.Background(), titleID)
	require.NoError(t, err)
	return title.Rating
}

func ptr[T any](v T) *T { return &v }
