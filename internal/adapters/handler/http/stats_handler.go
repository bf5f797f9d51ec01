package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DezMoon/habit-tracker/internal/core/services"
)

type StatsHandler struct {
	store *services.HabitStore
}

func NewStatsHandler(store *services.HabitStore) *StatsHandler {
	return &StatsHandler{store: store}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/stats", h.GetStats)
	r.GET("/stats/streak", h.GetStreak)
	r.GET("/stats/completed-dates", h.GetCompletedDates)
}

func (h *StatsHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Stats())
}

func (h *StatsHandler) GetStreak(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"streak": h.store.StreakCount()})
}

func (h *StatsHandler) GetCompletedDates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"dates": h.store.CompletedDates()})
}
