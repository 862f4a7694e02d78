package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VoteType string

const (
	Upvote   VoteType = "upvote"
	Downvote VoteType = "downvote"
)

func ParseVoteType(s string) (VoteType, error) {
	switch v := VoteType(s); v {
	case Upvote, Downvote:
		return v, nil
	default:
		return "", fmt.Errorf("unknown vote type %q", s)
	}
}

// Vote model - one row per (user, target). Exactly one of the target columns is set.
type Vote struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID      string    `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_votes_user_challenge;uniqueIndex:idx_votes_user_solution;uniqueIndex:idx_votes_user_comment" json:"user_id"`
	VoteType    VoteType  `gorm:"type:varchar(8);not null;check:chk_votes_type,vote_type IN ('upvote','downvote')" json:"vote_type"`
	ChallengeID *string   `gorm:"type:varchar(36);index;uniqueIndex:idx_votes_user_challenge;check:chk_votes_single_target,num_nonnulls(challenge_id, solution_id, comment_id) = 1" json:"challenge_id,omitempty"`
	SolutionID  *string   `gorm:"type:varchar(36);index;uniqueIndex:idx_votes_user_solution" json:"solution_id,omitempty"`
	CommentID   *string   `gorm:"type:varchar(36);index;uniqueIndex:idx_votes_user_comment" json:"comment_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewVote builds a ledger row for the given target.
func NewVote(userID string, target Target, voteType VoteType) Vote {
	v := Vote{UserID: userID, VoteType: voteType}
	id := target.ID
	switch target.Kind {
	case KindChallenge:
		v.ChallengeID = &id
	case KindSolution:
		v.SolutionID = &id
	case KindComment:
		v.CommentID = &id
	}
	return v
}

// Target reports which entity the vote points at.
func (v *Vote) Target() Target {
	switch {
	case v.ChallengeID != nil:
		return Target{Kind: KindChallenge, ID: *v.ChallengeID}
	case v.SolutionID != nil:
		return Target{Kind: KindSolution, ID: *v.SolutionID}
	case v.CommentID != nil:
		return Target{Kind: KindComment, ID: *v.CommentID}
	}
	return Target{}
}

func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}
