package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"lawyer-bot/internal/store"
)

// urgentLabel matches the urgent option of the consultation dialog.
const urgentLabel = "Срочно"

// DailyStats holds request statistics for one day.
type DailyStats struct {
	Date          string         `json:"date"`
	Total         int            `json:"total"`
	Emergencies   int            `json:"emergencies"`
	Consultations int            `json:"consultations"`
	Urgent        int            `json:"urgent"`
	UniqueUsers   int            `json:"unique_users"`
	ByArticle     map[string]int `json:"by_article"`
	EmergencyRefs []string       `json:"emergency_refs"`
}

// AnalyzeDay counts requests created on the given day.
func AnalyzeDay(summaries []store.Summary, day time.Time) *DailyStats {
	startOfDay := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	stats := &DailyStats{
		Date:      startOfDay.Format("2006-01-02"),
		ByArticle: make(map[string]int),
	}
	users := make(map[int64]struct{})

	for _, s := range summaries {
		if s.CreatedAt.Before(startOfDay) || !s.CreatedAt.Before(endOfDay) {
			continue
		}
		stats.Total++
		users[s.UserID] = struct{}{}

		switch s.Kind {
		case store.KindEmergency:
			stats.Emergencies++
			stats.EmergencyRefs = append(stats.EmergencyRefs, shortRef(s.Ref))
		case store.KindConsultation:
			stats.Consultations++
			if s.Urgency == urgentLabel {
				stats.Urgent++
			}
		}
		if s.Article != "" {
			stats.ByArticle[s.Article]++
		}
	}

	stats.UniqueUsers = len(users)
	return stats
}

// Report renders the daily digest sent to the admin.
func (ds *DailyStats) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Заявки за %s\n\n", ds.Date)
	if ds.Total == 0 {
		b.WriteString("Новых заявок не было.")
		return b.String()
	}

	fmt.Fprintf(&b, "Всего: %d (клиентов: %d)\n", ds.Total, ds.UniqueUsers)
	fmt.Fprintf(&b, "🚨 Экстренные вызовы: %d\n", ds.Emergencies)
	fmt.Fprintf(&b, "📝 Консультации: %d, из них срочных: %d\n", ds.Consultations, ds.Urgent)

	if len(ds.ByArticle) > 0 {
		b.WriteString("\nПо статьям:\n")
		articles := make([]string, 0, len(ds.ByArticle))
		for a := range ds.ByArticle {
			articles = append(articles, a)
		}
		sort.Slice(articles, func(i, j int) bool {
			ci, cj := ds.ByArticle[articles[i]], ds.ByArticle[articles[j]]
			if ci != cj {
				return ci > cj
			}
			return articles[i] < articles[j]
		})
		for _, a := range articles {
			fmt.Fprintf(&b, "- %s: %d\n", a, ds.ByArticle[a])
		}
	}

	if len(ds.EmergencyRefs) > 0 {
		b.WriteString("\nЭкстренные: #" + strings.Join(ds.EmergencyRefs, ", #"))
	}
	return strings.TrimRight(b.String(), "\n")
}

// ToJSON serializes the stats for logging.
func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.Marshal(ds)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func shortRef(ref string) string {
	if len(ref) > 8 {
		return ref[:8]
	}
	return ref
}
