package handlers

import (
	"studytrack/internal/models"
)

// UserView is the JSON shape returned for an account, password hash omitted
type UserView struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	OAuthProvider string `json:"oauth_provider,omitempty"`
	IsAdmin       bool   `json:"is_admin"`
}

func newUserView(user *models.User) UserView {
	return UserView{
		ID:            user.ID,
		Email:         user.Email,
		Name:          user.Name,
		OAuthProvider: user.OAuthProvider,
		IsAdmin:       user.IsAdmin,
	}
}

// SubjectView is one subject row of the progress snapshot
type SubjectView struct {
	Name       string  `json:"name"`
	Icon       string  `json:"icon"`
	Color      string  `json:"color"`
	Target     int     `json:"target"`
	Correct    int     `json:"correct"`
	Wrong      int     `json:"wrong"`
	Empty      int     `json:"empty"`
	Answered   int     `json:"answered"`
	Percentage float64 `json:"percentage"`
}

// SnapshotView is the progress snapshot for the selected date, with derived
// percentages already computed and the sync indicator attached
type SnapshotView struct {
	Date              string        `json:"date"`
	Subjects          []SubjectView `json:"subjects"`
	Total             int           `json:"total"`
	TotalTarget       int           `json:"total_target"`
	OverallPercentage float64       `json:"overall_percentage"`
	Syncing           bool          `json:"syncing"`
}

func newSnapshotView(snapshot *models.Snapshot, syncing bool) SnapshotView {
	view := SnapshotView{
		Date:              snapshot.Date,
		Subjects:          make([]SubjectView, 0, len(snapshot.Subjects)),
		Total:             snapshot.Total(),
		TotalTarget:       snapshot.TotalTarget(),
		OverallPercentage: snapshot.OverallPercentage(),
		Syncing:           syncing,
	}
	for i := range snapshot.Subjects {
		sub := &snapshot.Subjects[i]
		view.Subjects = append(view.Subjects, SubjectView{
			Name:       sub.Name,
			Icon:       sub.Icon,
			Color:      sub.Color,
			Target:     sub.Target,
			Correct:    sub.Correct,
			Wrong:      sub.Wrong,
			Empty:      sub.Empty,
			Answered:   sub.Answered(),
			Percentage: sub.Percentage(),
		})
	}
	return view
}

// HistoryEntryView is one stored day in the history listing
type HistoryEntryView struct {
	Date        string                         `json:"date"`
	Subjects    map[string]models.SubjectCount `json:"subjects"`
	Total       int                            `json:"total"`
	TotalTarget int                            `json:"total_target"`
}

func newHistoryView(records []models.DailyRecord) []HistoryEntryView {
	views := make([]HistoryEntryView, 0, len(records))
	for _, record := range records {
		views = append(views, HistoryEntryView{
			Date:        record.Date,
			Subjects:    record.Subjects,
			Total:       record.Total,
			TotalTarget: record.TotalTarget,
		})
	}
	return views
}
