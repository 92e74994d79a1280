package models

import (
	"fmt"
	"time"
)

// DateFormat is the calendar-date layout used for record keys
const DateFormat = "2006-01-02"

// SubjectCount holds the answered-question counters for one subject on one day
type SubjectCount struct {
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
	Empty   int `json:"empty"`
	Total   int `json:"total"`
}

// DailyRecord is the persisted progress document for one (user, date) pair.
// Exactly one record exists per key; writes for the same key merge.
type DailyRecord struct {
	UserID      int64                   `json:"user_id"`
	Date        string                  `json:"date"`
	Subjects    map[string]SubjectCount `json:"subjects"`
	Total       int                     `json:"total"`
	TotalTarget int                     `json:"total_target"`
}

// RecordKey returns the deterministic document key for a (user, date) pair
func RecordKey(userID int64, date string) string {
	return fmt.Sprintf("%d_%s", userID, date)
}

// ValidDate reports whether date is a well-formed calendar date
func ValidDate(date string) bool {
	_, err := time.Parse(DateFormat, date)
	return err == nil
}

// Today returns the current calendar date in the record key format
func Today() string {
	return time.Now().Format(DateFormat)
}
