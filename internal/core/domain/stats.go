package domain

type TargetAchievement struct {
	Rate int    `json:"rate"`
	Type string `json:"type"`
	Goal int    `json:"goal"`
}

type HabitStats struct {
	HabitID        string            `json:"habit_id"`
	HabitName      string            `json:"habit_name"`
	CurrentStreak  int               `json:"current_streak"`
	LongestStreak  int               `json:"longest_streak"`
	CompletionRate int               `json:"completion_rate"`
	Target         TargetAchievement `json:"target"`
}

type HeatmapCell struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type Overview struct {
	Date         string        `json:"date"`
	ActiveHabits int           `json:"active_habits"`
	Habits       []HabitStats  `json:"habits"`
	Heatmap      []HeatmapCell `json:"heatmap"`
}
