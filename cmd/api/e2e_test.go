package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DezMoon/habit-tracker/internal/config"
	"github.com/DezMoon/habit-tracker/internal/core/domain"
	"github.com/DezMoon/habit-tracker/internal/core/services"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "habits.db")
	cfg.Server.RateLimit = 0
	cfg.Auth.Secret = "e2e-secret"
	return cfg
}

func startApp(t *testing.T, cfg *config.Config) *application {
	t.Helper()
	app, err := newApplication(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { app.storage.Close() })
	return app
}

func ownerToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	tokens := services.NewTokenService(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.Owner, cfg.Auth.TokenTTL)
	token, err := tokens.GenerateToken()
	require.NoError(t, err)
	return token
}

func doRequest(app *application, token, method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	app.server.Handler.ServeHTTP(w, req)
	return w
}

func TestEndToEnd_HabitLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := testConfig(t)
	app := startApp(t, cfg)
	token := ownerToken(t, cfg)

	var habitID string

	t.Run("1. Create Habit", func(t *testing.T) {
		w := doRequest(app, token, http.MethodPost, "/api/v1/habits", `{"name": "Morning Run", "category": "Workout"}`)
		assert.Equal(t, http.StatusCreated, w.Code)

		var habit domain.Habit
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &habit))
		assert.NotEmpty(t, habit.ID)
		assert.Equal(t, domain.StatusPending, habit.Status)
		habitID = habit.ID
	})

	t.Run("2. Rename Habit", func(t *testing.T) {
		require.NotEmpty(t, habitID, "Create step failed, cannot rename")

		w := doRequest(app, token, http.MethodPatch, "/api/v1/habits/"+habitID, `{"name": "Evening Run"}`)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = doRequest(app, token, http.MethodGet, "/api/v1/habits", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Evening Run")
	})

	t.Run("3. Complete Day", func(t *testing.T) {
		w := doRequest(app, token, http.MethodPost, "/api/v1/habits/"+habitID+"/toggle", "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = doRequest(app, token, http.MethodPost, "/api/v1/daily-win/sync", "")
		assert.Equal(t, http.StatusOK, w.Code)

		w = doRequest(app, token, http.MethodGet, "/api/v1/stats", "")
		require.Equal(t, http.StatusOK, w.Code)

		var stats domain.Stats
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		assert.Equal(t, 1, stats.CurrentStreak)
		assert.True(t, stats.AllDone)
		assert.True(t, stats.TodayRecorded)
	})

	t.Run("4. Delete Habit", func(t *testing.T) {
		w := doRequest(app, token, http.MethodDelete, "/api/v1/habits/"+habitID, "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = doRequest(app, token, http.MethodGet, "/api/v1/habits", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), habitID)
	})

	t.Run("5. Validation Error", func(t *testing.T) {
		w := doRequest(app, token, http.MethodPost, "/api/v1/habits", `{"name": "Read", "category": "Hobby"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("6. Auth Error", func(t *testing.T) {
		w := doRequest(app, "", http.MethodGet, "/api/v1/habits", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("7. Health", func(t *testing.T) {
		w := doRequest(app, "", http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"sqlite":"connected"`)
	})
}

func TestEndToEnd_StateSurvivesRestart(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := testConfig(t)
	token := ownerToken(t, cfg)

	first := startApp(t, cfg)
	w := doRequest(first, token, http.MethodPost, "/api/v1/habits", `{"name": "Flashcards", "category": "Study"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doRequest(first, token, http.MethodPost, "/api/v1/daily-win", `{"all_done": true}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, first.storage.Close())

	second := startApp(t, cfg)

	habits := second.store.Habits()
	require.Len(t, habits, 1)
	assert.Equal(t, "Flashcards", habits[0].Name)
	assert.Equal(t, domain.CategoryStudy, habits[0].Category)
	assert.Equal(t, 1, second.store.StreakCount())
}
