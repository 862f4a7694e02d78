package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment hangs off either a challenge or a solution.
type Comment struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID         string    `gorm:"type:varchar(64);not null;index" json:"user_id"`
	ChallengeID    *string   `gorm:"type:varchar(36);index" json:"challenge_id,omitempty"`
	SolutionID     *string   `gorm:"type:varchar(36);index" json:"solution_id,omitempty"`
	Content        string    `gorm:"not null" json:"content"`
	UpvotesCount   int64     `gorm:"not null;default:0" json:"upvotes_count"`
	DownvotesCount int64     `gorm:"not null;default:0" json:"downvotes_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
