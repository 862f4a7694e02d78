package votes

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/emilythestrangee/sysdesign-arena/backend/internal/apperr"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/database/dbtest"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/logging"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/models"
)

// Argument checks happen before any store access, so a nil handle is fine here.
func TestLedgerRejectsBadInput(t *testing.T) {
	l := NewLedger(nil, logging.Discard())
	ctx := context.Background()
	target := models.Target{Kind: models.KindSolution, ID: "s1"}

	_, err := l.Cast(ctx, "", target, models.Upvote)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = l.Cast(ctx, "u1", models.Target{Kind: "post", ID: "p1"}, models.Upvote)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	_, err = l.Cast(ctx, "u1", models.Target{Kind: models.KindSolution}, models.Upvote)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	_, err = l.Cast(ctx, "u1", target, models.VoteType("sideways"))
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	_, err = l.Remove(ctx, "", target)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = l.UserVote(ctx, "", target)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = l.Counts(ctx, models.Target{Kind: models.KindComment})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	// Ids the columns could never hold are the caller's fault, not the store's.
	_, err = l.Counts(ctx, models.Target{Kind: models.KindSolution, ID: "\xff"})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	_, err = l.Stats(ctx, models.Target{Kind: models.KindChallenge, ID: strings.Repeat("c", models.MaxEntityIDLen+1)})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	_, err = l.Cast(ctx, strings.Repeat("u", models.MaxUserIDLen+1), target, models.Upvote)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

type ledgerSuite struct {
	suite.Suite
	db     *dbtest.Database
	ledger *Ledger
	ctx    context.Context
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(ledgerSuite))
}

func (s *ledgerSuite) SetupSuite() {
	s.db = dbtest.Run(s.T())
	s.ledger = NewLedger(s.db.DB, logging.Discard())
	s.ctx = context.Background()
}

func (s *ledgerSuite) TearDownSuite() {
	s.Require().NoError(s.db.Stop())
}

func (s *ledgerSuite) TearDownTest() {
	s.Require().NoError(s.db.Clear())
}

func (s *ledgerSuite) createTarget(kind models.EntityKind) models.Target {
	switch kind {
	case models.KindChallenge:
		c := models.Challenge{Title: "Design a URL shortener"}
		s.Require().NoError(s.db.DB.Create(&c).Error)
		return models.Target{Kind: kind, ID: c.ID}
	case models.KindSolution:
		c := models.Challenge{Title: "Design a rate limiter"}
		s.Require().NoError(s.db.DB.Create(&c).Error)
		sol := models.Solution{ChallengeID: c.ID, UserID: "author", Content: "token bucket"}
		s.Require().NoError(s.db.DB.Create(&sol).Error)
		return models.Target{Kind: kind, ID: sol.ID}
	default:
		c := models.Challenge{Title: "Design a chat service"}
		s.Require().NoError(s.db.DB.Create(&c).Error)
		com := models.Comment{UserID: "author", ChallengeID: &c.ID, Content: "what about presence?"}
		s.Require().NoError(s.db.DB.Create(&com).Error)
		return models.Target{Kind: kind, ID: com.ID}
	}
}

func (s *ledgerSuite) voteRows(target models.Target) []models.Vote {
	var rows []models.Vote
	s.Require().NoError(s.db.DB.Where(target.Kind.Column()+" = ?", target.ID).Find(&rows).Error)
	return rows
}

func (s *ledgerSuite) ledgerCount(target models.Target, vt models.VoteType) int64 {
	var n int64
	s.Require().NoError(s.db.DB.Model(&models.Vote{}).
		Where(target.Kind.Column()+" = ? AND vote_type = ?", target.ID, vt).
		Count(&n).Error)
	return n
}

func (s *ledgerSuite) cachedCounts(target models.Target) Counts {
	var c Counts
	s.Require().NoError(s.db.DB.Table(target.Kind.Table()).
		Select("upvotes_count, downvotes_count").
		Where("id = ?", target.ID).
		Take(&c).Error)
	return c
}

func (s *ledgerSuite) TestSwitchVoteKeepsSingleRow() {
	for _, kind := range []models.EntityKind{models.KindChallenge, models.KindSolution, models.KindComment} {
		s.Run(string(kind), func() {
			target := s.createTarget(kind)
			before := s.cachedCounts(target)

			up, err := s.ledger.Cast(s.ctx, "u1", target, models.Upvote)
			s.Require().NoError(err)
			s.Equal(before.Upvotes+1, up.Upvotes)
			s.Equal(models.Upvote, up.UserVote)

			down, err := s.ledger.Cast(s.ctx, "u1", target, models.Downvote)
			s.Require().NoError(err)
			s.Equal(before.Upvotes, down.Upvotes)
			s.Equal(before.Downvotes+1, down.Downvotes)
			s.Equal(models.Downvote, down.UserVote)

			rows := s.voteRows(target)
			s.Require().Len(rows, 1)
			s.Equal(models.Downvote, rows[0].VoteType)
			s.Equal(target, rows[0].Target())
			s.Equal(down.Counts, s.cachedCounts(target))
		})
	}
}

func (s *ledgerSuite) TestRepeatedVoteIsIdempotent() {
	target := s.createTarget(models.KindSolution)

	first, err := s.ledger.Cast(s.ctx, "u1", target, models.Upvote)
	s.Require().NoError(err)
	second, err := s.ledger.Cast(s.ctx, "u1", target, models.Upvote)
	s.Require().NoError(err)

	s.Equal(first.Counts, second.Counts)
	s.Equal(Counts{Upvotes: 1}, second.Counts)
	s.Len(s.voteRows(target), 1)
}

func (s *ledgerSuite) TestRemoveWithoutVoteIsNoop() {
	target := s.createTarget(models.KindComment)
	_, err := s.ledger.Cast(s.ctx, "other", target, models.Upvote)
	s.Require().NoError(err)
	before := s.cachedCounts(target)

	counts, err := s.ledger.Remove(s.ctx, "u1", target)
	s.Require().NoError(err)
	s.Equal(before, counts)
	s.Len(s.voteRows(target), 1)
}

func (s *ledgerSuite) TestRemoveOnMissingEntityReturnsZero() {
	counts, err := s.ledger.Remove(s.ctx, "u1", models.Target{Kind: models.KindSolution, ID: "does-not-exist"})
	s.Require().NoError(err)
	s.Equal(Counts{}, counts)
}

func (s *ledgerSuite) TestUpvoteTwiceThenRemoveRestoresCounters() {
	target := s.createTarget(models.KindSolution)
	_, err := s.ledger.Cast(s.ctx, "someone-else", target, models.Downvote)
	s.Require().NoError(err)
	before := s.cachedCounts(target)

	_, err = s.ledger.Cast(s.ctx, "u1", target, models.Upvote)
	s.Require().NoError(err)
	_, err = s.ledger.Cast(s.ctx, "u1", target, models.Upvote)
	s.Require().NoError(err)
	counts, err := s.ledger.Remove(s.ctx, "u1", target)
	s.Require().NoError(err)

	s.Equal(before, counts)
	s.Equal(before, s.cachedCounts(target))
	vote, err := s.ledger.UserVote(s.ctx, "u1", target)
	s.Require().NoError(err)
	s.Nil(vote)
}

func (s *ledgerSuite) TestCastOnMissingEntity() {
	_, err := s.ledger.Cast(s.ctx, "u1", models.Target{Kind: models.KindChallenge, ID: "nope"}, models.Upvote)
	s.ErrorIs(err, apperr.ErrNotFound)

	var n int64
	s.Require().NoError(s.db.DB.Model(&models.Vote{}).Count(&n).Error)
	s.Zero(n)
}

func (s *ledgerSuite) TestRecountHealsDriftedCounters() {
	target := s.createTarget(models.KindChallenge)
	s.Require().NoError(s.db.DB.Table("challenges").Where("id = ?", target.ID).
		Updates(map[string]any{"upvotes_count": 99, "downvotes_count": 7}).Error)

	res, err := s.ledger.Cast(s.ctx, "u1", target, models.Upvote)
	s.Require().NoError(err)
	s.Equal(Counts{Upvotes: 1}, res.Counts)
}

func (s *ledgerSuite) TestReadPaths() {
	target := s.createTarget(models.KindSolution)
	for i, vt := range []models.VoteType{models.Upvote, models.Upvote, models.Upvote, models.Downvote} {
		_, err := s.ledger.Cast(s.ctx, fmt.Sprintf("u%d", i), target, vt)
		s.Require().NoError(err)
	}

	counts, err := s.ledger.Counts(s.ctx, target)
	s.Require().NoError(err)
	s.Equal(Counts{Upvotes: 3, Downvotes: 1}, counts)

	detail, err := s.ledger.Stats(s.ctx, target)
	s.Require().NoError(err)
	s.Equal(int64(4), detail.TotalVotes)
	s.Equal(int64(2), detail.Score)

	vote, err := s.ledger.UserVote(s.ctx, "u3", target)
	s.Require().NoError(err)
	s.Require().NotNil(vote)
	s.Equal(models.Downvote, *vote)

	missing, err := s.ledger.Counts(s.ctx, models.Target{Kind: models.KindComment, ID: "nope"})
	s.Require().NoError(err)
	s.Equal(Counts{}, missing)
}

func (s *ledgerSuite) TestConcurrentVotersNeverDrift() {
	target := s.createTarget(models.KindSolution)

	const voters = 16
	var wg sync.WaitGroup
	errs := make(chan error, voters*3)
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("voter-%d", i)
			_, err := s.ledger.Cast(s.ctx, user, target, models.Upvote)
			errs <- err
			if i%2 == 0 {
				_, err = s.ledger.Cast(s.ctx, user, target, models.Downvote)
				errs <- err
			}
			if i%4 == 0 {
				_, err = s.ledger.Remove(s.ctx, user, target)
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	got := s.cachedCounts(target)
	s.Equal(s.ledgerCount(target, models.Upvote), got.Upvotes)
	s.Equal(s.ledgerCount(target, models.Downvote), got.Downvotes)
	s.Equal(Counts{Upvotes: 8, Downvotes: 4}, got)
}
