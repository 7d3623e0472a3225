package reading

import (
	"math"

	"github.com/readtrail/readtrail/internal/entities"
)

// JourneyStats are the derived metrics for one journey's session set.
type JourneyStats struct {
	TotalSessions          int `json:"total_sessions"`
	TotalPagesRead         int `json:"total_pages_read"`
	TotalTimeSpent         int `json:"total_time_spent"` // minutes
	AveragePagesPerSession int `json:"average_pages_per_session"`
	AverageTimePerSession  int `json:"average_time_per_session"`
}

// BookStats extend journey stats with the book-level aggregates computed
// across every journey's sessions.
type BookStats struct {
	JourneyStats
	ReadingDays    int `json:"reading_days"`
	LongestSession int `json:"longest_session"` // max pages_read in one sitting
}

// ComputeJourneyStats aggregates a session set. Sessions without a
// duration count toward page totals but are excluded from the time
// average's denominator.
func ComputeJourneyStats(sessions []entities.ReadingSession) JourneyStats {
	stats := JourneyStats{TotalSessions: len(sessions)}

	timed := 0
	for _, s := range sessions {
		stats.TotalPagesRead += s.PagesRead
		if s.DurationMinutes != nil {
			stats.TotalTimeSpent += *s.DurationMinutes
			timed++
		}
	}

	stats.AveragePagesPerSession = roundedAverage(stats.TotalPagesRead, stats.TotalSessions)
	stats.AverageTimePerSession = roundedAverage(stats.TotalTimeSpent, timed)
	return stats
}

// ComputeBookStats aggregates all of a user's sessions for a book,
// adding distinct reading days and the longest single sitting.
func ComputeBookStats(sessions []entities.ReadingSession) BookStats {
	stats := BookStats{JourneyStats: ComputeJourneyStats(sessions)}

	days := make(map[string]struct{}, len(sessions))
	for _, s := range sessions {
		days[s.SessionDate.Format("2006-01-02")] = struct{}{}
		if s.PagesRead > stats.LongestSession {
			stats.LongestSession = s.PagesRead
		}
	}
	stats.ReadingDays = len(days)
	return stats
}

// roundedAverage rounds half-up and short-circuits an empty denominator
// to 0 rather than dividing by zero.
func roundedAverage(total, count int) int {
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(count)))
}
