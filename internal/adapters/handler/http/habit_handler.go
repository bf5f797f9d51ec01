package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DezMoon/habit-tracker/internal/adapters/repository"
	"github.com/DezMoon/habit-tracker/internal/core/domain"
	"github.com/DezMoon/habit-tracker/internal/core/services"
)

type HabitHandler struct {
	store  *services.HabitStore
	logger *zap.Logger
}

func NewHabitHandler(store *services.HabitStore, logger *zap.Logger) *HabitHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HabitHandler{
		store:  store,
		logger: logger,
	}
}

type createHabitRequest struct {
	Name     string `json:"name"`
	Category string `json:"category" binding:"required"`
}

type renameHabitRequest struct {
	Name *string `json:"name" binding:"required"`
}

type dailyWinRequest struct {
	AllDone *bool `json:"all_done" binding:"required"`
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.GET("", h.List)
		habits.POST("", h.Create)
		habits.PATCH("/:id", h.Rename)
		habits.POST("/:id/toggle", h.Toggle)
		habits.DELETE("/:id", h.Delete)
	}

	router.POST("/daily-win", h.RecordDailyWin)
	router.POST("/daily-win/sync", h.SyncDailyWin)
	router.POST("/reset", h.Reset)
}

func (h *HabitHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Habits())
}

func (h *HabitHandler) Create(c *gin.Context) {
	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := domain.ParseHabitCategory(req.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	habit, err := h.store.AddHabit(c.Request.Context(), req.Name, category)
	if err != nil {
		h.writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusCreated, habit)
}

// Rename, Toggle and Delete answer 204 for unknown ids as well: a missing habit is a no-op.
func (h *HabitHandler) Rename(c *gin.Context) {
	var req renameHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.UpdateHabitName(c.Request.Context(), c.Param("id"), *req.Name); err != nil {
		h.writeStoreError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *HabitHandler) Toggle(c *gin.Context) {
	if err := h.store.ToggleStatus(c.Request.Context(), c.Param("id")); err != nil {
		h.writeStoreError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *HabitHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteHabit(c.Request.Context(), c.Param("id")); err != nil {
		h.writeStoreError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *HabitHandler) RecordDailyWin(c *gin.Context) {
	var req dailyWinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.RecordDailyWin(c.Request.Context(), *req.AllDone); err != nil {
		h.writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.store.Stats())
}

func (h *HabitHandler) SyncDailyWin(c *gin.Context) {
	allDone, err := h.store.SyncDailyWin(c.Request.Context())
	if err != nil {
		h.writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"all_done": allDone,
		"stats":    h.store.Stats(),
	})
}

func (h *HabitHandler) Reset(c *gin.Context) {
	if err := h.store.ResetIfNewDay(c.Request.Context()); err != nil {
		h.writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.store.Stats())
}

func (h *HabitHandler) writeStoreError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrInvalidCategory) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if errors.Is(err, domain.ErrPersistence) || errors.Is(err, repository.ErrStorageUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "storage unavailable",
			"message": "The change was not saved. Please retry.",
		})
		return
	}

	h.logger.Error("habit store operation failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
