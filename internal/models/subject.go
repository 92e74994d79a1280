package models

// Subject is one tracked study subject in a user's catalog.
// Name is the stable identity that joins the catalog, daily records and
// history; renaming a subject starts a new history under the new name.
type Subject struct {
	Name   string `json:"name"`
	Icon   string `json:"icon"`
	Color  string `json:"color"`
	Target int    `json:"target"`
}

// Catalog is the ordered set of subjects a user tracks, with targets and
// display metadata only. Counters live in daily records, never here.
type Catalog struct {
	UserID   int64     `json:"user_id"`
	Subjects []Subject `json:"subjects"`
}

// TotalTarget returns the sum of all subject targets
func (c *Catalog) TotalTarget() int {
	total := 0
	for _, s := range c.Subjects {
		total += s.Target
	}
	return total
}

// Subject returns the subject with the given name, if present
func (c *Catalog) Subject(name string) (Subject, bool) {
	for _, s := range c.Subjects {
		if s.Name == name {
			return s, true
		}
	}
	return Subject{}, false
}

// DefaultSubjects returns the six-subject default catalog created on first use
func DefaultSubjects() []Subject {
	return []Subject{
		{Name: "Matematik", Icon: "calculator", Color: "#4F46E5", Target: 10},
		{Name: "Türkçe", Icon: "book-open", Color: "#DC2626", Target: 15},
		{Name: "Fen Bilimleri", Icon: "flask", Color: "#059669", Target: 8},
		{Name: "Sosyal Bilimler", Icon: "globe", Color: "#D97706", Target: 12},
		{Name: "Geometri", Icon: "shapes", Color: "#7C3AED", Target: 10},
		{Name: "İngilizce", Icon: "language", Color: "#0891B2", Target: 5},
	}
}
