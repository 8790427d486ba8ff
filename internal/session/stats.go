package session

import (
	"fmt"
	"math"
)

// Stats are the derived numbers shown next to the counters.
type Stats struct {
	Time             string `json:"time"`
	Calories         int    `json:"calories"`
	AvgRepsPerMinute int    `json:"avg_reps_per_minute"`
}

// ComputeStats derives display stats from a snapshot.
func ComputeStats(s Snapshot) Stats {
	st := Stats{
		Time:             FormatTime(s.ElapsedSeconds),
		AvgRepsPerMinute: AvgRepsPerMinute(s.Reps, s.ElapsedSeconds),
	}
	if s.Exercise != nil {
		st.Calories = Calories(s.ElapsedSeconds, s.Exercise.CaloriesPerMinute)
	}
	return st
}

// FormatTime renders seconds as mm:ss.
func FormatTime(sec int) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
}

// Calories estimates calories burned over elapsed seconds.
func Calories(elapsed int, perMinute float64) int {
	return int(math.Round(float64(elapsed) / 60 * perMinute))
}

// AvgRepsPerMinute is zero until at least one second has elapsed.
func AvgRepsPerMinute(reps, elapsed int) int {
	if elapsed <= 0 {
		return 0
	}
	return int(math.Round(float64(reps) / float64(elapsed) * 60))
}
