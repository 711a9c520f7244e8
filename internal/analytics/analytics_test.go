package analytics

import (
	"strings"
	"testing"
	"time"

	"lawyer-bot/internal/store"
)

func TestAnalyzeDay(t *testing.T) {
	day := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

	summaries := []store.Summary{
		{Kind: store.KindEmergency, Ref: "aaaaaaaa-1111", UserID: 1, Article: "228", CreatedAt: day.Add(2 * time.Hour)},
		{Kind: store.KindConsultation, Ref: "bbbbbbbb-2222", UserID: 2, Article: "228", Urgency: "Срочно", CreatedAt: day.Add(5 * time.Hour)},
		{Kind: store.KindConsultation, Ref: "cccccccc-3333", UserID: 2, Article: "159", Urgency: "Не срочно", CreatedAt: day.Add(23 * time.Hour)},
		// next day is excluded
		{Kind: store.KindEmergency, Ref: "dddddddd-4444", UserID: 3, CreatedAt: day.AddDate(0, 0, 1)},
		// and so is the previous one
		{Kind: store.KindConsultation, Ref: "eeeeeeee-5555", UserID: 4, CreatedAt: day.Add(-time.Minute)},
	}

	stats := AnalyzeDay(summaries, day.Add(15*time.Hour))

	if stats.Date != "2026-10-16" {
		t.Errorf("Expected date '2026-10-16', got '%s'", stats.Date)
	}
	if stats.Total != 3 {
		t.Errorf("Expected 3 requests, got %d", stats.Total)
	}
	if stats.Emergencies != 1 || stats.Consultations != 2 {
		t.Errorf("Expected 1 emergency and 2 consultations, got %d and %d", stats.Emergencies, stats.Consultations)
	}
	if stats.Urgent != 1 {
		t.Errorf("Expected 1 urgent consultation, got %d", stats.Urgent)
	}
	if stats.UniqueUsers != 2 {
		t.Errorf("Expected 2 unique users, got %d", stats.UniqueUsers)
	}
	if stats.ByArticle["228"] != 2 || stats.ByArticle["159"] != 1 {
		t.Errorf("Unexpected per-article counts: %v", stats.ByArticle)
	}
	if len(stats.EmergencyRefs) != 1 || stats.EmergencyRefs[0] != "aaaaaaaa" {
		t.Errorf("Unexpected emergency refs: %v", stats.EmergencyRefs)
	}
}

func TestAnalyzeDayEmpty(t *testing.T) {
	stats := AnalyzeDay(nil, time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC))
	if stats.Total != 0 || stats.UniqueUsers != 0 {
		t.Errorf("Expected empty stats, got %+v", stats)
	}
	if got := stats.Report(); !strings.Contains(got, "Новых заявок не было") {
		t.Errorf("Unexpected empty report: %s", got)
	}
}

func TestReport(t *testing.T) {
	stats := &DailyStats{
		Date:          "2026-10-16",
		Total:         4,
		Emergencies:   1,
		Consultations: 3,
		Urgent:        2,
		UniqueUsers:   3,
		ByArticle:     map[string]int{"105": 1, "228": 3},
		EmergencyRefs: []string{"aaaaaaaa"},
	}

	report := stats.Report()

	for _, expected := range []string{
		"2026-10-16",
		"Всего: 4 (клиентов: 3)",
		"Экстренные вызовы: 1",
		"Консультации: 3, из них срочных: 2",
		"- 228: 3\n- 105: 1",
		"#aaaaaaaa",
	} {
		if !strings.Contains(report, expected) {
			t.Errorf("Expected report to contain '%s'. Report: %s", expected, report)
		}
	}
}

func TestToJSON(t *testing.T) {
	stats := &DailyStats{Date: "2026-10-16", Total: 1, ByArticle: map[string]int{"264": 1}}
	jsonStr, err := stats.ToJSON()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(jsonStr, `"by_article":{"264":1}`) {
		t.Errorf("Unexpected JSON: %s", jsonStr)
	}
}
