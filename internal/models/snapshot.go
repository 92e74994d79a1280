package models

// CountField selects which counter of a subject a mutation touches
type CountField string

const (
	FieldCorrect CountField = "correct"
	FieldWrong   CountField = "wrong"
	FieldEmpty   CountField = "empty"
)

// ValidField reports whether f names a mutable counter
func ValidField(f CountField) bool {
	return f == FieldCorrect || f == FieldWrong || f == FieldEmpty
}

// SnapshotSubject is one subject's live counters for the selected date,
// merged with its catalog target and display metadata
type SnapshotSubject struct {
	Subject
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
	Empty   int `json:"empty"`
}

// Answered returns the number of questions logged for the subject
func (s *SnapshotSubject) Answered() int {
	return s.Correct + s.Wrong + s.Empty
}

// Percentage returns the subject's progress toward its target, capped at 100
func (s *SnapshotSubject) Percentage() float64 {
	if s.Target <= 0 {
		return 0
	}
	pct := 100 * float64(s.Answered()) / float64(s.Target)
	if pct > 100 {
		return 100
	}
	return pct
}

// Apply adds delta to the named counter, clamping the result at zero.
// Unknown fields are ignored.
func (s *SnapshotSubject) Apply(field CountField, delta int) {
	switch field {
	case FieldCorrect:
		s.Correct = clampNonNegative(s.Correct + delta)
	case FieldWrong:
		s.Wrong = clampNonNegative(s.Wrong + delta)
	case FieldEmpty:
		s.Empty = clampNonNegative(s.Empty + delta)
	}
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// Snapshot is the in-memory projection of a user's catalog merged with the
// daily record for the selected date. It is derived state: every mutation
// is mirrored into a daily record write, the snapshot itself is never
// persisted directly.
type Snapshot struct {
	UserID   int64             `json:"user_id"`
	Date     string            `json:"date"`
	Subjects []SnapshotSubject `json:"subjects"`
}

// Find returns the snapshot entry for the named subject, or nil
func (s *Snapshot) Find(name string) *SnapshotSubject {
	for i := range s.Subjects {
		if s.Subjects[i].Name == name {
			return &s.Subjects[i]
		}
	}
	return nil
}

// Total returns the number of questions logged across all subjects
func (s *Snapshot) Total() int {
	total := 0
	for i := range s.Subjects {
		total += s.Subjects[i].Answered()
	}
	return total
}

// TotalTarget returns the sum of all subject targets
func (s *Snapshot) TotalTarget() int {
	total := 0
	for i := range s.Subjects {
		total += s.Subjects[i].Target
	}
	return total
}

// OverallPercentage returns overall progress toward the combined target.
// A zero combined target yields 0, not a division error.
func (s *Snapshot) OverallPercentage() float64 {
	target := s.TotalTarget()
	if target <= 0 {
		return 0
	}
	return 100 * float64(s.Total()) / float64(target)
}

// ToRecord projects the snapshot into the daily record that persists it
func (s *Snapshot) ToRecord() *DailyRecord {
	subjects := make(map[string]SubjectCount, len(s.Subjects))
	for i := range s.Subjects {
		sub := &s.Subjects[i]
		subjects[sub.Name] = SubjectCount{
			Correct: sub.Correct,
			Wrong:   sub.Wrong,
			Empty:   sub.Empty,
			Total:   sub.Answered(),
		}
	}
	return &DailyRecord{
		UserID:      s.UserID,
		Date:        s.Date,
		Subjects:    subjects,
		Total:       s.Total(),
		TotalTarget: s.TotalTarget(),
	}
}

// Clone returns a deep copy of the snapshot
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		UserID:   s.UserID,
		Date:     s.Date,
		Subjects: make([]SnapshotSubject, len(s.Subjects)),
	}
	copy(out.Subjects, s.Subjects)
	return out
}
