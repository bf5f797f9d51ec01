package domain

type Stats struct {
	Today          Day  `json:"today"`
	CurrentStreak  int  `json:"current_streak"`
	LongestStreak  int  `json:"longest_streak"`
	TotalHabits    int  `json:"total_habits"`
	CompletedToday int  `json:"completed_today"`
	AllDone        bool `json:"all_done"`
	TodayRecorded  bool `json:"today_recorded"`
}
