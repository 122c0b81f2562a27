package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"mycobot/internal/storage"
)

// Species tracked in the daily digest.
var Species = []string{"Agaricus", "Oyster", "Shiitake"}

// DailyStats summarises one day of the chat log.
type DailyStats struct {
	Date              string         `json:"date"`
	TotalQuestions    int            `json:"total_questions"`
	UniqueQuestions   int            `json:"unique_questions"`
	SpeciesMentions   map[string]int `json:"species_mentions"`
	AvgAnswerLength   int            `json:"avg_answer_length"`
	UnparsedTimestamp int            `json:"unparsed_timestamp"`
}

// AnalyzeDay counts records whose timestamp falls on targetDate in its
// location. Records with an unreadable timestamp are counted separately.
func AnalyzeDay(records []storage.ChatRecord, targetDate time.Time) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	stats := &DailyStats{
		Date:            startOfDay.Format("2006-01-02"),
		SpeciesMentions: make(map[string]int),
	}

	unique := make(map[string]bool)
	answerChars := 0
	for _, r := range records {
		ts, ok := r.Time()
		if !ok {
			stats.UnparsedTimestamp++
			continue
		}
		ts = time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond(), targetDate.Location())
		if ts.Before(startOfDay) || !ts.Before(endOfDay) {
			continue
		}

		stats.TotalQuestions++
		unique[strings.ToLower(strings.TrimSpace(r.Question))] = true
		answerChars += len([]rune(r.Answer))

		q := strings.ToLower(r.Question)
		for _, s := range Species {
			if strings.Contains(q, strings.ToLower(s)) {
				stats.SpeciesMentions[s]++
			}
		}
	}

	stats.UniqueQuestions = len(unique)
	if stats.TotalQuestions > 0 {
		stats.AvgAnswerLength = answerChars / stats.TotalQuestions
	}
	return stats
}

// FormatReport renders stats as a short plain-text digest.
func FormatReport(stats *DailyStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "MycoBot daily digest for %s\n", stats.Date)
	if stats.TotalQuestions == 0 {
		b.WriteString("No questions were answered.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "Questions answered: %d (%d unique)\n", stats.TotalQuestions, stats.UniqueQuestions)
	fmt.Fprintf(&b, "Average answer length: %d chars\n", stats.AvgAnswerLength)

	if len(stats.SpeciesMentions) > 0 {
		names := make([]string, 0, len(stats.SpeciesMentions))
		for s := range stats.SpeciesMentions {
			names = append(names, s)
		}
		sort.Slice(names, func(i, j int) bool {
			if stats.SpeciesMentions[names[i]] != stats.SpeciesMentions[names[j]] {
				return stats.SpeciesMentions[names[i]] > stats.SpeciesMentions[names[j]]
			}
			return names[i] < names[j]
		})
		b.WriteString("Species asked about:\n")
		for _, s := range names {
			fmt.Fprintf(&b, "- %s: %d\n", s, stats.SpeciesMentions[s])
		}
	}
	return b.String()
}
