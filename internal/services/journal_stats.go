package services

import (
	"iter"
	"slices"
	"time"

	"github.com/AnshRaj112/serenify-journal/internal/models"
)

// maxStreakWalk bounds the backward day walk in ComputeStreak.
const maxStreakWalk = 1000

const dayKeyLayout = "2006-01-02"

// StreakSummary is derived on every request and never persisted.
type StreakSummary struct {
	TotalDistinctDays int `json:"totalDays"`
	CurrentStreak     int `json:"streak"`
}

// MoodSeriesPoint is one charted mood value.
type MoodSeriesPoint struct {
	Date      time.Time           `json:"date"`
	Mood      models.Mood         `json:"mood"`
	MoodScore int                 `json:"moodScore"`
	Entry     models.JournalEntry `json:"-"`
}

// DayKey buckets t into its UTC calendar day.
func DayKey(t time.Time) string {
	return t.UTC().Format(dayKeyLayout)
}

// ComputeStreak counts the distinct UTC days with at least one entry, and the
// run of consecutive days ending at asOf's day. A day without an entry stops
// the walk, including asOf's own day, so a nonzero streak requires an entry
// today.
func ComputeStreak(entries []models.JournalEntry, asOf time.Time) StreakSummary {
	days := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		days[DayKey(e.CreatedAt)] = struct{}{}
	}

	summary := StreakSummary{TotalDistinctDays: len(days)}
	if len(days) == 0 {
		return summary
	}

	day := asOf.UTC()
	for i := 0; i < maxStreakWalk; i++ {
		if _, ok := days[day.Format(dayKeyLayout)]; !ok {
			break
		}
		summary.CurrentStreak++
		day = day.AddDate(0, 0, -1)
	}
	return summary
}

// ComputeMoodSeries orders entries by creation time and maps each to its mood
// score. The input slice is not modified. The returned sequence can be ranged
// over any number of times.
func ComputeMoodSeries(entries []models.JournalEntry) iter.Seq[MoodSeriesPoint] {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b models.JournalEntry) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	return func(yield func(MoodSeriesPoint) bool) {
		for _, e := range sorted {
			p := MoodSeriesPoint{
				Date:      e.CreatedAt,
				Mood:      e.Mood,
				MoodScore: e.Mood.Score(),
				Entry:     e,
			}
			if !yield(p) {
				return
			}
		}
	}
}
