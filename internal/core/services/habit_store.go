package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/DezMoon/habit-tracker/internal/core/domain"
	"github.com/DezMoon/habit-tracker/internal/metrics"
)

var ErrIDCollision = errors.New("could not generate a unique habit id")

const maxIDAttempts = 5

// HabitStore owns the habit collection, the completed-day set and the reset marker.
// Every exported method is a critical section guarded by one mutex. Each mutation
// reloads the persisted snapshot first, so changes written by another process sharing
// the KVStore are kept, and is written through before the method returns.
type HabitStore struct {
	kv     domain.KVStore
	ids    domain.IDGenerator
	logger *zap.Logger
	now    func() time.Time

	mu             sync.Mutex
	habits         []domain.Habit
	completedDates map[domain.Day]struct{}
	lastReset      domain.Day
}

type StoreOption func(*HabitStore)

func WithClock(now func() time.Time) StoreOption {
	return func(s *HabitStore) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *HabitStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHabitStore loads persisted state and applies the new-day reset once.
// Missing or malformed payloads fall back to empty defaults; a failing backend read is
// returned as an error so an empty default never overwrites data we could not see.
func NewHabitStore(ctx context.Context, kv domain.KVStore, ids domain.IDGenerator, opts ...StoreOption) (*HabitStore, error) {
	s := &HabitStore{
		kv:             kv,
		ids:            ids,
		logger:         zap.NewNop(),
		now:            time.Now,
		habits:         make([]domain.Habit, 0),
		completedDates: make(map[domain.Day]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	s.logger.Info("habit store loaded",
		zap.Int("habits", len(s.habits)),
		zap.Int("completed_days", len(s.completedDates)),
		zap.String("last_reset", s.lastReset.String()),
	)

	if err := s.resetIfNewDay(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *HabitStore) today() domain.Day {
	return domain.DayOf(s.now())
}

func (s *HabitStore) AddHabit(ctx context.Context, name string, category domain.HabitCategory) (domain.Habit, error) {
	if !category.Valid() {
		return domain.Habit{}, fmt.Errorf("%w: %q", domain.ErrInvalidCategory, category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		return domain.Habit{}, err
	}

	id, err := s.nextID()
	if err != nil {
		return domain.Habit{}, err
	}

	habit := domain.NewHabit(id, name, category)
	s.habits = append(s.habits, habit)

	if err := s.persistHabits(ctx); err != nil {
		s.habits = s.habits[:len(s.habits)-1]
		return domain.Habit{}, err
	}

	metrics.IncrementMutation("add")
	s.logger.Debug("habit added", zap.String("id", id), zap.String("category", string(category)))
	return habit, nil
}

func (s *HabitStore) nextID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.ids.Generate()
		if id != "" && s.indexOf(id) < 0 {
			return id, nil
		}
		s.logger.Warn("id generator returned a duplicate or empty id", zap.String("id", id))
	}
	return "", ErrIDCollision
}

// UpdateHabitName is a no-op for unknown ids.
func (s *HabitStore) UpdateHabitName(ctx context.Context, id, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		return err
	}

	idx := s.indexOf(id)
	if idx < 0 {
		return nil
	}

	previous := s.habits[idx].Name
	s.habits[idx].Rename(newName)

	if err := s.persistHabits(ctx); err != nil {
		s.habits[idx].Rename(previous)
		return err
	}

	metrics.IncrementMutation("rename")
	return nil
}

// ToggleStatus is a no-op for unknown ids.
func (s *HabitStore) ToggleStatus(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		return err
	}

	idx := s.indexOf(id)
	if idx < 0 {
		return nil
	}

	s.habits[idx].Toggle()

	if err := s.persistHabits(ctx); err != nil {
		s.habits[idx].Toggle()
		return err
	}

	metrics.IncrementMutation("toggle")
	return nil
}

// DeleteHabit is a no-op for unknown ids.
func (s *HabitStore) DeleteHabit(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		return err
	}

	idx := s.indexOf(id)
	if idx < 0 {
		return nil
	}

	previous := s.habits
	remaining := make([]domain.Habit, 0, len(s.habits)-1)
	remaining = append(remaining, s.habits[:idx]...)
	remaining = append(remaining, s.habits[idx+1:]...)
	s.habits = remaining

	if err := s.persistHabits(ctx); err != nil {
		s.habits = previous
		return err
	}

	metrics.IncrementMutation("delete")
	s.logger.Debug("habit deleted", zap.String("id", id))
	return nil
}

// RecordDailyWin marks today as fully completed (or clears the mark) and always writes.
func (s *HabitStore) RecordDailyWin(ctx context.Context, isAllDone bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		return err
	}
	return s.recordDailyWin(ctx, isAllDone)
}

// SyncDailyWin records today's mark from the habit collection itself instead of
// trusting a caller-computed flag.
func (s *HabitStore) SyncDailyWin(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		return false, err
	}
	allDone := s.allDone()
	return allDone, s.recordDailyWin(ctx, allDone)
}

func (s *HabitStore) recordDailyWin(ctx context.Context, isAllDone bool) error {
	today := s.today()
	_, had := s.completedDates[today]

	if isAllDone {
		s.completedDates[today] = struct{}{}
	} else {
		delete(s.completedDates, today)
	}

	if err := s.persistCompletedDates(ctx); err != nil {
		if had {
			s.completedDates[today] = struct{}{}
		} else {
			delete(s.completedDates, today)
		}
		return err
	}

	metrics.IncrementMutation("daily_win")
	metrics.SetCurrentStreak(CurrentStreak(s.completedDates, today))
	return nil
}

// ResetIfNewDay sets every habit back to pending at most once per calendar day.
// The reloaded marker makes a reset already applied by another process a no-op here.
func (s *HabitStore) ResetIfNewDay(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		return err
	}
	return s.resetIfNewDay(ctx)
}

func (s *HabitStore) resetIfNewDay(ctx context.Context) error {
	today := s.today()
	if s.lastReset == today {
		return nil
	}

	previous := make([]domain.Habit, len(s.habits))
	copy(previous, s.habits)

	for i := range s.habits {
		s.habits[i].Reset()
	}

	if err := s.persistHabits(ctx); err != nil {
		s.habits = previous
		return err
	}

	if err := s.persist(ctx, domain.LastResetKey, []byte(today)); err != nil {
		return err
	}
	s.lastReset = today

	metrics.IncrementDailyReset()
	s.logger.Info("daily reset applied", zap.String("day", today.String()), zap.Int("habits", len(s.habits)))
	return nil
}

func (s *HabitStore) StreakCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return CurrentStreak(s.completedDates, s.today())
}

// Habits returns a copy of the collection in insertion order.
func (s *HabitStore) Habits() []domain.Habit {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Habit, len(s.habits))
	copy(out, s.habits)
	return out
}

func (s *HabitStore) Habit(id string) (domain.Habit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Habit{}, false
	}
	return s.habits[idx], true
}

// CompletedDates returns the recorded days in ascending order.
func (s *HabitStore) CompletedDates() []domain.Day {
	s.mu.Lock()
	defer s.mu.Unlock()

	return sortedDays(s.completedDates)
}

func (s *HabitStore) LastResetDate() (domain.Day, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastReset, s.lastReset != ""
}

func (s *HabitStore) Stats() domain.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.today()
	completed := 0
	for _, h := range s.habits {
		if h.IsCompleted() {
			completed++
		}
	}
	_, recorded := s.completedDates[today]

	return domain.Stats{
		Today:          today,
		CurrentStreak:  CurrentStreak(s.completedDates, today),
		LongestStreak:  LongestStreak(s.completedDates),
		TotalHabits:    len(s.habits),
		CompletedToday: completed,
		AllDone:        s.allDone(),
		TodayRecorded:  recorded,
	}
}

func (s *HabitStore) allDone() bool {
	if len(s.habits) == 0 {
		return false
	}
	for _, h := range s.habits {
		if !h.IsCompleted() {
			return false
		}
	}
	return true
}

func (s *HabitStore) indexOf(id string) int {
	for i := range s.habits {
		if s.habits[i].ID == id {
			return i
		}
	}
	return -1
}

type snapshot struct {
	habits         []domain.Habit
	completedDates map[domain.Day]struct{}
	lastReset      domain.Day
}

// refresh replaces in-memory state with the persisted snapshot. State is left untouched
// when any read fails.
func (s *HabitStore) refresh(ctx context.Context) error {
	snap, err := s.readSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("%w: reload: %w", domain.ErrPersistence, err)
	}

	s.habits = snap.habits
	s.completedDates = snap.completedDates
	s.lastReset = snap.lastReset

	metrics.SetCurrentStreak(CurrentStreak(s.completedDates, s.today()))
	return nil
}

func (s *HabitStore) readSnapshot(ctx context.Context) (snapshot, error) {
	snap := snapshot{
		habits:         make([]domain.Habit, 0),
		completedDates: make(map[domain.Day]struct{}),
	}

	raw, err := s.read(ctx, domain.HabitsKey)
	if err != nil {
		return snapshot{}, err
	}
	if raw != nil {
		snap.habits = s.decodeHabits(raw)
	}

	raw, err = s.read(ctx, domain.CompletedDatesKey)
	if err != nil {
		return snapshot{}, err
	}
	if raw != nil {
		snap.completedDates = s.decodeCompletedDates(raw)
	}

	raw, err = s.read(ctx, domain.LastResetKey)
	if err != nil {
		return snapshot{}, err
	}
	if raw != nil {
		snap.lastReset = s.decodeLastReset(raw)
	}

	return snap, nil
}

func (s *HabitStore) read(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return raw, nil
}

func (s *HabitStore) recovered(key string, reason error) {
	metrics.IncrementRecoveredPayload(key)
	s.logger.Warn("malformed persisted payload, using empty default", zap.String("key", key), zap.Error(reason))
}

func (s *HabitStore) decodeHabits(raw []byte) []domain.Habit {
	var decoded []domain.Habit
	if err := json.Unmarshal(raw, &decoded); err != nil {
		s.recovered(domain.HabitsKey, err)
		return make([]domain.Habit, 0)
	}

	habits := make([]domain.Habit, 0, len(decoded))
	seen := make(map[string]bool, len(decoded))
	for _, h := range decoded {
		if h.ID == "" || seen[h.ID] {
			s.logger.Warn("dropping persisted habit with empty or duplicate id", zap.String("id", h.ID))
			continue
		}
		seen[h.ID] = true
		if !h.Category.Valid() {
			s.logger.Warn("repairing persisted habit", zap.String("id", h.ID),
				zap.Error(fmt.Errorf("%w: %q", domain.ErrInvalidCategory, h.Category)))
			h.Category = domain.CategoryOther
		}
		if !h.Status.Valid() {
			s.logger.Warn("repairing persisted habit", zap.String("id", h.ID),
				zap.Error(fmt.Errorf("%w: %q", domain.ErrInvalidStatus, h.Status)))
			h.Status = domain.StatusPending
		}
		habits = append(habits, h)
	}
	return habits
}

func (s *HabitStore) decodeCompletedDates(raw []byte) map[domain.Day]struct{} {
	var decoded []string
	if err := json.Unmarshal(raw, &decoded); err != nil {
		s.recovered(domain.CompletedDatesKey, err)
		return make(map[domain.Day]struct{})
	}

	dates := make(map[domain.Day]struct{}, len(decoded))
	for _, rawDay := range decoded {
		day, err := domain.ParseDay(rawDay)
		if err != nil {
			s.logger.Warn("dropping malformed completed date", zap.String("value", rawDay))
			continue
		}
		dates[day] = struct{}{}
	}
	return dates
}

func (s *HabitStore) decodeLastReset(raw []byte) domain.Day {
	value := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	day, err := domain.ParseDay(value)
	if err != nil {
		s.recovered(domain.LastResetKey, err)
		return ""
	}
	return day
}

func (s *HabitStore) persistHabits(ctx context.Context) error {
	data, err := json.Marshal(s.habits)
	if err != nil {
		return fmt.Errorf("failed to marshal habits: %w", err)
	}
	return s.persist(ctx, domain.HabitsKey, data)
}

func (s *HabitStore) persistCompletedDates(ctx context.Context) error {
	days := sortedDays(s.completedDates)
	values := make([]string, len(days))
	for i, d := range days {
		values[i] = d.String()
	}

	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal completed dates: %w", err)
	}
	return s.persist(ctx, domain.CompletedDatesKey, data)
}

func (s *HabitStore) persist(ctx context.Context, key string, data []byte) error {
	if err := s.kv.Set(ctx, key, data); err != nil {
		metrics.IncrementPersistenceFailure(key)
		s.logger.Error("persistence write failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, key, err)
	}
	return nil
}
