package analytics

import (
	"fmt"
	"sort"
	"time"

	"assistbot/internal/storage"
)

// DailyStats summarizes one day of assistant usage.
type DailyStats struct {
	Date            string                       `json:"date"`
	TotalChats      int                          `json:"total_chats"`
	TotalFiles      int                          `json:"total_files"`
	UniqueUsers     int                          `json:"unique_users"`
	FilesByCategory map[storage.FileCategory]int `json:"files_by_category"`
	ChatsByUser     map[int64]int                `json:"chats_by_user"`
}

// AnalyzeDaily computes usage stats for the day containing targetDate.
func AnalyzeDaily(chats []storage.ChatRecord, files []storage.FileRecord, targetDate time.Time) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)
	inDay := func(ts time.Time) bool {
		return !ts.Before(startOfDay) && ts.Before(endOfDay)
	}

	stats := &DailyStats{
		Date:            startOfDay.Format("2006-01-02"),
		FilesByCategory: make(map[storage.FileCategory]int),
		ChatsByUser:     make(map[int64]int),
	}

	uniqueUsers := make(map[int64]bool)
	for _, rec := range chats {
		if !inDay(rec.Timestamp) {
			continue
		}
		stats.TotalChats++
		stats.ChatsByUser[rec.UserID]++
		uniqueUsers[rec.UserID] = true
	}
	for _, rec := range files {
		if !inDay(rec.Timestamp) {
			continue
		}
		stats.TotalFiles++
		stats.FilesByCategory[rec.Category]++
		uniqueUsers[rec.UserID] = true
	}
	stats.UniqueUsers = len(uniqueUsers)
	return stats
}

// Summary renders the stats as a plain-text report.
func (ds *DailyStats) Summary() string {
	out := fmt.Sprintf(`Usage report for %s:

- Chat messages: %d
- Files analyzed: %d
- Unique users: %d
`, ds.Date, ds.TotalChats, ds.TotalFiles, ds.UniqueUsers)

	if len(ds.FilesByCategory) > 0 {
		out += "\nFiles by category:\n"
		for _, cat := range sortedCategories(ds.FilesByCategory) {
			out += fmt.Sprintf("- %s: %d\n", cat, ds.FilesByCategory[cat])
		}
	}
	if len(ds.ChatsByUser) > 0 {
		out += fmt.Sprintf("\nActivity (%d users):\n", len(ds.ChatsByUser))
		for _, id := range sortedUsers(ds.ChatsByUser) {
			out += fmt.Sprintf("- user %d: %d messages\n", id, ds.ChatsByUser[id])
		}
	}
	return out
}

func sortedCategories(m map[storage.FileCategory]int) []storage.FileCategory {
	out := make([]storage.FileCategory, 0, len(m))
	for cat := range m {
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedUsers(m map[int64]int) []int64 {
	out := make([]int64, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
