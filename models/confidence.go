package models

import "time"

// ConfidenceEntry is a self-reported readiness score, one per user per day.
type ConfidenceEntry struct {
	ID        uint      `gorm:"primaryKey" bson:"-" json:"-"`
	UserID    string    `gorm:"uniqueIndex:idx_confidence_user_date;size:128;not null" bson:"user_id" json:"user_id"`
	Date      string    `gorm:"uniqueIndex:idx_confidence_user_date;size:10;not null" bson:"date" json:"date"`
	Score     int       `bson:"score" json:"score"` // 0..100
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Note is the single free-text scratchpad a user keeps.
type Note struct {
	UserID    string    `gorm:"primaryKey;size:128" bson:"user_id" json:"user_id"`
	Content   string    `gorm:"type:text" bson:"content" json:"content"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
