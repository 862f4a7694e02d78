/*
Package votes is the vote ledger: one vote per (user, entity), with the
entity's cached up/down counters rebuilt inside the same transaction.

Every mutation runs as

	BEGIN
	  SELECT id FROM <entity table> WHERE id = ? FOR UPDATE   -- per-entity mutex
	  look up the caller's vote; insert, flip or leave it
	  recount from the votes table, write counters onto the entity row
	COMMIT

The row lock makes concurrent mutations on the same entity run one after the
other, so the counters written always match a committed ledger state. Votes
on different entities never contend.
*/
package votes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/sysdesign-arena/backend/internal/apperr"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/database"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/metrics"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/models"
)

var tracer = otel.Tracer("sysdesign-arena/votes")

// Result is returned by Cast.
type Result struct {
	Counts
	UserVote models.VoteType `json:"user_vote"`
}

// Detail adds derived figures to the cached counters.
type Detail struct {
	Counts
	TotalVotes int64 `json:"total_votes"`
	Score      int64 `json:"score"`
}

type Ledger struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewLedger(db *gorm.DB, logger *slog.Logger) *Ledger {
	return &Ledger{db: db, logger: logger}
}

// Cast records userID's vote on target. A first vote inserts a row, a vote of
// the opposite type flips the existing row, and repeating the same vote
// changes nothing. The fresh counters are returned either way.
func (l *Ledger) Cast(ctx context.Context, userID string, target models.Target, voteType models.VoteType) (*Result, error) {
	if err := checkCaller(userID, "authentication required to vote"); err != nil {
		return nil, err
	}
	if err := target.Validate(); err != nil {
		return nil, apperr.InvalidArgument(err.Error())
	}
	if _, err := models.ParseVoteType(string(voteType)); err != nil {
		return nil, apperr.InvalidArgument(err.Error())
	}

	ctx, span := tracer.Start(ctx, "votes.Cast", trace.WithAttributes(
		attribute.String("entity.type", string(target.Kind)),
		attribute.String("entity.id", target.ID),
		attribute.String("vote.type", string(voteType)),
	))
	defer span.End()

	var counts Counts
	outcome := "ok"
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := lockTarget(tx, target)
		if err != nil {
			return err
		}
		if !found {
			return apperr.NotFound(fmt.Sprintf("%s %s not found", target.Kind, target.ID))
		}

		var existing models.Vote
		err = whereVote(tx, userID, target).Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.NewVote(userID, target, voteType)
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		case existing.VoteType != voteType:
			if err := tx.Model(&existing).Update("vote_type", voteType).Error; err != nil {
				return err
			}
		default:
			outcome = "noop"
		}

		counts, err = recount(tx, target)
		return err
	})
	if err != nil {
		return nil, l.fail(ctx, span, "cast", target, err)
	}

	metrics.VotesTotal.WithLabelValues("cast", string(target.Kind), outcome).Inc()
	return &Result{Counts: counts, UserVote: voteType}, nil
}

// Remove deletes userID's vote on target. Removing a vote that does not exist
// is not an error: the current counters come back unchanged, or zero when the
// entity itself is gone.
func (l *Ledger) Remove(ctx context.Context, userID string, target models.Target) (Counts, error) {
	if err := checkCaller(userID, "authentication required to remove a vote"); err != nil {
		return Counts{}, err
	}
	if err := target.Validate(); err != nil {
		return Counts{}, apperr.InvalidArgument(err.Error())
	}

	ctx, span := tracer.Start(ctx, "votes.Remove", trace.WithAttributes(
		attribute.String("entity.type", string(target.Kind)),
		attribute.String("entity.id", target.ID),
	))
	defer span.End()

	var counts Counts
	outcome := "ok"
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := lockTarget(tx, target)
		if err != nil {
			return err
		}
		if !found {
			outcome = "noop"
			return nil
		}

		res := whereVote(tx, userID, target).Delete(&models.Vote{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			outcome = "noop"
		}

		counts, err = recount(tx, target)
		return err
	})
	if err != nil {
		return Counts{}, l.fail(ctx, span, "remove", target, err)
	}

	metrics.VotesTotal.WithLabelValues("remove", string(target.Kind), outcome).Inc()
	return counts, nil
}

// UserVote returns the caller's current vote on target, or nil.
func (l *Ledger) UserVote(ctx context.Context, userID string, target models.Target) (*models.VoteType, error) {
	if err := checkCaller(userID, "authentication required"); err != nil {
		return nil, err
	}
	if err := target.Validate(); err != nil {
		return nil, apperr.InvalidArgument(err.Error())
	}

	var vote models.Vote
	err := whereVote(l.db.WithContext(ctx), userID, target).Select("vote_type").Take(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal("failed to load vote", err)
	}
	return &vote.VoteType, nil
}

// Counts reads the cached counters. A missing entity reads as zero.
func (l *Ledger) Counts(ctx context.Context, target models.Target) (Counts, error) {
	if err := target.Validate(); err != nil {
		return Counts{}, apperr.InvalidArgument(err.Error())
	}

	var c Counts
	err := l.db.WithContext(ctx).
		Table(target.Kind.Table()).
		Select("upvotes_count, downvotes_count").
		Where("id = ?", target.ID).
		Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Counts{}, nil
	}
	if err != nil {
		return Counts{}, apperr.Internal("failed to load vote counts", err)
	}
	return c, nil
}

func (l *Ledger) Stats(ctx context.Context, target models.Target) (Detail, error) {
	c, err := l.Counts(ctx, target)
	if err != nil {
		return Detail{}, err
	}
	return Detail{
		Counts:     c,
		TotalVotes: c.Upvotes + c.Downvotes,
		Score:      c.Upvotes - c.Downvotes,
	}, nil
}

func (l *Ledger) fail(ctx context.Context, span trace.Span, op string, target models.Target, err error) error {
	if !apperr.IsClassified(err) {
		err = apperr.TransactionFailure(op+" vote failed", err)
	}
	kind := apperr.KindOf(err)

	span.RecordError(err)
	span.SetStatus(codes.Error, string(kind))
	metrics.VotesTotal.WithLabelValues(op, string(target.Kind), string(kind)).Inc()

	if !apperr.IsClientError(err) {
		l.logger.ErrorContext(ctx, "vote transaction rolled back",
			"op", op,
			"target", target.String(),
			"conflict", database.IsConflict(err),
			"error", err,
		)
	}
	return err
}

func checkCaller(userID, msg string) error {
	if userID == "" {
		return apperr.Unauthorized(msg)
	}
	if err := models.ValidateUserID(userID); err != nil {
		return apperr.InvalidArgument(err.Error())
	}
	return nil
}

// lockTarget takes the per-entity row lock and reports whether the entity exists.
func lockTarget(tx *gorm.DB, target models.Target) (bool, error) {
	var ids []string
	err := tx.Table(target.Kind.Table()).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", target.ID).
		Pluck("id", &ids).Error
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

func whereVote(db *gorm.DB, userID string, target models.Target) *gorm.DB {
	return db.Where("user_id = ? AND "+target.Kind.Column()+" = ?", userID, target.ID)
}
