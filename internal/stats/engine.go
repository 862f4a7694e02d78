// Package stats rebuilds per-user reputation rows from content and vote data.
//
// Stats are never touched by a vote. They are recomputed on request, for one
// user at a time or for everyone, and written whole with an upsert so that a
// recompute over unchanged data leaves the row exactly as it was.
package stats

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/sysdesign-arena/backend/internal/apperr"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/metrics"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/models"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/score"
)

var tracer = otel.Tracer("sysdesign-arena/stats")

var statColumns = []string{"score", "solutions_count", "comments_count", "upvotes_given", "upvotes_received"}

type Engine struct {
	db     *gorm.DB
	logger *slog.Logger
	single score.Weights
	bulk   score.Weights
}

func NewEngine(db *gorm.DB, logger *slog.Logger) *Engine {
	return &Engine{
		db:     db,
		logger: logger,
		single: score.OnDemand,
		bulk:   score.Bulk,
	}
}

// RecalculateOne recomputes userID's stats with the on-demand weights and
// stores the result.
func (e *Engine) RecalculateOne(ctx context.Context, userID string) (*models.UserStats, error) {
	if userID == "" {
		return nil, apperr.Unauthorized("authentication required")
	}
	if err := models.ValidateUserID(userID); err != nil {
		return nil, apperr.InvalidArgument(err.Error())
	}

	ctx, span := tracer.Start(ctx, "stats.RecalculateOne", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	row, err := e.recalculate(ctx, userID, e.single)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "recalculate failed")
		metrics.StatsRecalculations.WithLabelValues("one", "error").Inc()
		e.logger.ErrorContext(ctx, "stats recalculation failed", "user_id", userID, "error", err)
		return nil, apperr.Internal("failed to recalculate stats", err)
	}

	metrics.StatsRecalculations.WithLabelValues("one", "ok").Inc()
	return row, nil
}

// RecalculateAll recomputes stats for every user that has authored content or
// cast a vote, using the bulk weights. A user whose recompute fails is logged
// and skipped. The number of users actually updated is returned.
func (e *Engine) RecalculateAll(ctx context.Context, callerID string) (int, error) {
	if callerID == "" {
		return 0, apperr.Unauthorized("authentication required")
	}

	ctx, span := tracer.Start(ctx, "stats.RecalculateAll", trace.WithAttributes(
		attribute.String("caller.id", callerID),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.RecalculateAllDuration.Observe(time.Since(start).Seconds())
	}()

	ids, err := e.activeUsers(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "user scan failed")
		e.logger.ErrorContext(ctx, "failed to list users for recalculation", "error", err)
		return 0, apperr.Internal("failed to list users", err)
	}

	updated := 0
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			e.logger.WarnContext(ctx, "recalculation interrupted", "updated", updated, "remaining", len(ids)-i)
			return updated, apperr.Internal("recalculation interrupted", err)
		}
		if _, err := e.recalculate(ctx, id, e.bulk); err != nil {
			metrics.StatsRecalculations.WithLabelValues("all", "error").Inc()
			e.logger.WarnContext(ctx, "skipping user in bulk recalculation", "user_id", id, "error", err)
			continue
		}
		metrics.StatsRecalculations.WithLabelValues("all", "ok").Inc()
		updated++
	}

	span.SetAttributes(attribute.Int("users.scanned", len(ids)), attribute.Int("users.updated", updated))
	e.logger.InfoContext(ctx, "stats recalculated",
		"caller_id", callerID,
		"scanned", len(ids),
		"updated", updated,
		"duration", time.Since(start),
	)
	return updated, nil
}

// Get returns userID's stored stats. A user with activity but no row yet is
// recalculated and stored; a user with no activity at all gets an empty row
// that is not persisted, so reads of arbitrary ids leave no trace.
func (e *Engine) Get(ctx context.Context, userID string) (*models.UserStats, error) {
	if err := models.ValidateUserID(userID); err != nil {
		return nil, apperr.InvalidArgument(err.Error())
	}

	var row models.UserStats
	err := e.db.WithContext(ctx).Where("user_id = ?", userID).Take(&row).Error
	if err == nil {
		return &row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal("failed to load stats", err)
	}

	a, err := e.activity(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to load activity", err)
	}
	if a == (score.Activity{}) {
		return &models.UserStats{UserID: userID}, nil
	}
	return e.RecalculateOne(ctx, userID)
}

// List returns the stored stats rows for ids. Users without a row are left out.
func (e *Engine) List(ctx context.Context, ids []string) ([]models.UserStats, error) {
	rows := []models.UserStats{}
	if len(ids) == 0 {
		return rows, nil
	}
	for _, id := range ids {
		if err := models.ValidateUserID(id); err != nil {
			return nil, apperr.InvalidArgument(err.Error())
		}
	}
	err := e.db.WithContext(ctx).
		Where("user_id = ANY(?)", pq.Array(ids)).
		Order("user_id").
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Internal("failed to load stats", err)
	}
	return rows, nil
}

func (e *Engine) recalculate(ctx context.Context, userID string, w score.Weights) (*models.UserStats, error) {
	a, err := e.activity(ctx, userID)
	if err != nil {
		return nil, err
	}

	row := models.UserStats{
		UserID:          userID,
		Score:           w.Score(a),
		SolutionsCount:  a.Solutions,
		CommentsCount:   a.Comments,
		UpvotesGiven:    a.UpvotesGiven,
		UpvotesReceived: a.UpvotesReceived,
	}
	err = e.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}},
				DoUpdates: clause.AssignmentColumns(statColumns),
			},
			clause.Returning{},
		).
		Create(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// activity gathers the raw scoring inputs. Upvotes received only count
// solutions and comments; challenges have no author.
func (e *Engine) activity(ctx context.Context, userID string) (score.Activity, error) {
	db := e.db.WithContext(ctx)
	var a score.Activity

	if err := db.Model(&models.Solution{}).Where("user_id = ?", userID).Count(&a.Solutions).Error; err != nil {
		return a, err
	}
	if err := db.Model(&models.Comment{}).Where("user_id = ?", userID).Count(&a.Comments).Error; err != nil {
		return a, err
	}
	err := db.Model(&models.Vote{}).
		Where("user_id = ? AND vote_type = ?", userID, models.Upvote).
		Count(&a.UpvotesGiven).Error
	if err != nil {
		return a, err
	}
	err = db.Raw(`SELECT (
		COALESCE((SELECT SUM(upvotes_count) FROM solutions WHERE user_id = ?), 0) +
		COALESCE((SELECT SUM(upvotes_count) FROM comments WHERE user_id = ?), 0)
	)::bigint`,
		userID, userID).
		Scan(&a.UpvotesReceived).Error
	if err != nil {
		return a, err
	}
	return a, nil
}

// activeUsers is the sorted union of user ids across authored content and votes.
func (e *Engine) activeUsers(ctx context.Context) ([]string, error) {
	sources := []any{&models.Solution{}, &models.Comment{}, &models.Vote{}}
	found := make([][]string, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, model := range sources {
		i, model := i, model
		g.Go(func() error {
			return e.db.WithContext(gctx).Model(model).Distinct().Pluck("user_id", &found[i]).Error
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var ids []string
	for _, batch := range found {
		ids = append(ids, batch...)
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}
