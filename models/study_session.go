package models

import "time"

// StudySession is a finished interval of study. Date is the logical day
// assigned at creation and is independent of the start/end instants.
type StudySession struct {
	ID              string     `gorm:"primaryKey;size:64" bson:"_id" json:"id"`
	UserID          string     `gorm:"index;size:128;not null" bson:"user_id" json:"user_id"`
	Subject         Subject    `gorm:"size:32" bson:"subject" json:"subject"`
	Topic           string     `bson:"topic" json:"topic"`
	StartTime       *time.Time `bson:"start_time,omitempty" json:"start_time,omitempty"`
	EndTime         *time.Time `gorm:"index" bson:"end_time,omitempty" json:"end_time,omitempty"`
	DurationMinutes float64    `bson:"duration_minutes" json:"duration_minutes"`
	Date            string     `gorm:"index;size:10;not null" bson:"date" json:"date"` // YYYY-MM-DD
	CreatedAt       time.Time  `bson:"created_at" json:"created_at"`
}

// SortKey is the instant used for newest-first listings.
func (s StudySession) SortKey() time.Time {
	switch {
	case s.EndTime != nil:
		return *s.EndTime
	case s.StartTime != nil:
		return *s.StartTime
	default:
		return s.CreatedAt
	}
}
