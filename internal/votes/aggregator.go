package votes

import (
	"gorm.io/gorm"

	"github.com/emilythestrangee/sysdesign-arena/backend/internal/models"
)

// Counts mirrors the cached counters stored on a votable entity.
type Counts struct {
	Upvotes   int64 `gorm:"column:upvotes_count" json:"upvotes_count"`
	Downvotes int64 `gorm:"column:downvotes_count" json:"downvotes_count"`
}

// recount rebuilds the target's counters from the ledger and writes them onto
// the entity row. It must run inside the transaction that mutated the ledger.
func recount(tx *gorm.DB, target models.Target) (Counts, error) {
	var rows []struct {
		VoteType models.VoteType
		N        int64
	}
	err := tx.Model(&models.Vote{}).
		Select("vote_type, count(*) AS n").
		Where(target.Kind.Column()+" = ?", target.ID).
		Group("vote_type").
		Scan(&rows).Error
	if err != nil {
		return Counts{}, err
	}

	var c Counts
	for _, r := range rows {
		switch r.VoteType {
		case models.Upvote:
			c.Upvotes = r.N
		case models.Downvote:
			c.Downvotes = r.N
		}
	}

	err = tx.Table(target.Kind.Table()).
		Where("id = ?", target.ID).
		Updates(map[string]any{
			"upvotes_count":   c.Upvotes,
			"downvotes_count": c.Downvotes,
		}).Error
	if err != nil {
		return Counts{}, err
	}
	return c, nil
}
