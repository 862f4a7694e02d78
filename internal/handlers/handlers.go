package handlers

import (
	"context"

	"github.com/emilythestrangee/sysdesign-arena/backend/internal/identity"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/models"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/votes"
)

// VoteService is the vote ledger as seen by the HTTP layer.
type VoteService interface {
	Cast(ctx context.Context, userID string, target models.Target, voteType models.VoteType) (*votes.Result, error)
	Remove(ctx context.Context, userID string, target models.Target) (votes.Counts, error)
	UserVote(ctx context.Context, userID string, target models.Target) (*models.VoteType, error)
	Counts(ctx context.Context, target models.Target) (votes.Counts, error)
	Stats(ctx context.Context, target models.Target) (votes.Detail, error)
}

// StatsService is the stats engine as seen by the HTTP layer.
type StatsService interface {
	RecalculateOne(ctx context.Context, userID string) (*models.UserStats, error)
	RecalculateAll(ctx context.Context, callerID string) (int, error)
	Get(ctx context.Context, userID string) (*models.UserStats, error)
	List(ctx context.Context, ids []string) ([]models.UserStats, error)
}

type ProfileLookup interface {
	Lookup(ctx context.Context, userID string) (identity.Profile, bool)
}

// Handler combines all handler types
type Handler struct {
	Auth  *AuthHandler
	Vote  *VoteHandler
	Stats *StatsHandler
}

// Deps are the collaborators the handlers need.
type Deps struct {
	Votes     VoteService
	Stats     StatsService
	Profiles  ProfileLookup
	Accounts  AccountStore
	Tokens    TokenIssuer
	ShowStack bool
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(d Deps) *Handler {
	r := responder{showStack: d.ShowStack}
	return &Handler{
		Auth:  &AuthHandler{responder: r, accounts: d.Accounts, tokens: d.Tokens},
		Vote:  &VoteHandler{responder: r, votes: d.Votes},
		Stats: &StatsHandler{responder: r, stats: d.Stats, profiles: d.Profiles},
	}
}
