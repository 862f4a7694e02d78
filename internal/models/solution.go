package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Solution struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ChallengeID    string    `gorm:"type:varchar(36);not null;index" json:"challenge_id"`
	UserID         string    `gorm:"type:varchar(64);not null;index" json:"user_id"`
	Content        string    `gorm:"not null" json:"content"`
	UpvotesCount   int64     `gorm:"not null;default:0" json:"upvotes_count"`
	DownvotesCount int64     `gorm:"not null;default:0" json:"downvotes_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (s *Solution) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
