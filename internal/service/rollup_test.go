package service

import (
	"testing"
	"time"

	"studytrack/internal/models"
)

func testSnapshot() *models.Snapshot {
	return &models.Snapshot{
		UserID: 1,
		Date:   "2026-03-10",
		Subjects: []models.SnapshotSubject{
			{Subject: models.Subject{Name: "Matematik", Target: 10}, Correct: 5, Wrong: 2, Empty: 1},
			{Subject: models.Subject{Name: "Türkçe", Target: 15}, Correct: 3, Wrong: 0, Empty: 0},
		},
	}
}

func TestRollupSnapshotOnly(t *testing.T) {
	snapshot := testSnapshot()
	today := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	result := Rollup(snapshot, nil, WindowAll, today)

	math, ok := result.Subjects["Matematik"]
	if !ok {
		t.Fatal("Matematik missing from rollup")
	}
	if math.Correct != 5 || math.Wrong != 2 || math.Empty != 1 || math.Total != 8 {
		t.Errorf("Matematik = %+v, want {5 2 1 8}", math)
	}

	if result.Overall.Total != 11 {
		t.Errorf("Overall.Total = %d, want 11", result.Overall.Total)
	}
	wantAccuracy := float64(8) / float64(11)
	if result.Overall.Accuracy != wantAccuracy {
		t.Errorf("Overall.Accuracy = %v, want %v", result.Overall.Accuracy, wantAccuracy)
	}
}

func TestRollupAddsHistory(t *testing.T) {
	snapshot := testSnapshot()
	today := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	history := []models.DailyRecord{
		{
			UserID: 1,
			Date:   "2026-03-08",
			Subjects: map[string]models.SubjectCount{
				"Matematik": {Correct: 4, Wrong: 1, Empty: 0, Total: 5},
			},
		},
		{
			UserID: 1,
			Date:   "2026-03-07",
			Subjects: map[string]models.SubjectCount{
				"Türkçe": {Correct: 2, Wrong: 2, Empty: 2, Total: 6},
			},
		},
	}

	result := Rollup(snapshot, history, WindowAll, today)

	math := result.Subjects["Matematik"]
	if math.Correct != 9 || math.Wrong != 3 || math.Total != 13 {
		t.Errorf("Matematik = %+v, want correct=9 wrong=3 total=13", math)
	}
	turkish := result.Subjects["Türkçe"]
	if turkish.Correct != 5 || turkish.Wrong != 2 || turkish.Empty != 2 || turkish.Total != 9 {
		t.Errorf("Türkçe = %+v, want {5 2 2 9}", turkish)
	}
	if result.Overall.Total != 22 {
		t.Errorf("Overall.Total = %d, want 22", result.Overall.Total)
	}
}

func TestRollupLast7DaysWindow(t *testing.T) {
	snapshot := testSnapshot()
	today := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	history := []models.DailyRecord{
		{
			// 3 days ago, inside the window
			Date: "2026-03-07",
			Subjects: map[string]models.SubjectCount{
				"Matematik": {Correct: 2, Total: 2},
			},
		},
		{
			// 10 days ago, outside the window
			Date: "2026-02-28",
			Subjects: map[string]models.SubjectCount{
				"Matematik": {Correct: 100, Total: 100},
			},
		},
	}

	result := Rollup(snapshot, history, WindowLast7Days, today)

	math := result.Subjects["Matematik"]
	if math.Correct != 7 {
		t.Errorf("Matematik.Correct = %d, want 7 (old record must be excluded)", math.Correct)
	}

	all := Rollup(snapshot, history, WindowAll, today)
	if all.Subjects["Matematik"].Correct != 107 {
		t.Errorf("all-time Matematik.Correct = %d, want 107", all.Subjects["Matematik"].Correct)
	}
}

func TestRollupSkipsUnknownSubjects(t *testing.T) {
	snapshot := testSnapshot()
	today := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	history := []models.DailyRecord{
		{
			Date: "2026-03-09",
			Subjects: map[string]models.SubjectCount{
				"Kimya": {Correct: 50, Total: 50},
			},
		},
	}

	result := Rollup(snapshot, history, WindowAll, today)

	if _, ok := result.Subjects["Kimya"]; ok {
		t.Error("rollup fabricated a subject that is not in the catalog")
	}
	if result.Overall.Total != 11 {
		t.Errorf("Overall.Total = %d, want 11", result.Overall.Total)
	}
}

func TestRollupZeroTotals(t *testing.T) {
	snapshot := &models.Snapshot{
		Date: "2026-03-10",
		Subjects: []models.SnapshotSubject{
			{Subject: models.Subject{Name: "Matematik", Target: 10}},
		},
	}
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	result := Rollup(snapshot, nil, WindowAll, today)
	if result.Overall.Accuracy != 0 {
		t.Errorf("Accuracy = %v, want 0 with no answers", result.Overall.Accuracy)
	}
}

func TestValidWindow(t *testing.T) {
	tests := []struct {
		window Window
		want   bool
	}{
		{WindowAll, true},
		{WindowLast7Days, true},
		{Window("last30days"), false},
		{Window(""), false},
	}

	for _, tt := range tests {
		if got := ValidWindow(tt.window); got != tt.want {
			t.Errorf("ValidWindow(%q) = %v, want %v", tt.window, got, tt.want)
		}
	}
}
