package model

import "time"

// QARecord is the durable log entry for one answered question.
type QARecord struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	Session       string    `gorm:"size:64;index" json:"session"`
	Question      string    `gorm:"type:text;not null" json:"question"`
	Answer        string    `gorm:"type:text" json:"answer"`
	CitationCount int       `json:"citation_count"`
	CreatedAt     time.Time `json:"created_at"`
}
