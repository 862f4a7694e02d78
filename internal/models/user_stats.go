package models

import "time"

// UserStats is a derived cache, rebuilt from solutions, comments and votes.
// Rows are only ever written whole through an upsert.
type UserStats struct {
	UserID          string    `gorm:"primaryKey;type:varchar(64)" json:"user_id"`
	Score           int64     `gorm:"not null;default:0" json:"score"`
	SolutionsCount  int64     `gorm:"not null;default:0" json:"solutions_count"`
	CommentsCount   int64     `gorm:"not null;default:0" json:"comments_count"`
	UpvotesGiven    int64     `gorm:"not null;default:0" json:"upvotes_given"`
	UpvotesReceived int64     `gorm:"not null;default:0" json:"upvotes_received"`
	CreatedAt       time.Time `json:"created_at"`
}

func (UserStats) TableName() string {
	return "user_stats"
}
