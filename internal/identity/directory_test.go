package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/sysdesign-arena/backend/internal/apperr"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/database/dbtest"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/logging"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/models"
)

func TestLookup(t *testing.T) {
	db := dbtest.Run(t)
	defer func() { require.NoError(t, db.Stop()) }()

	u := models.User{
		Username:  "ada",
		Email:     "ada@example.com",
		Password:  "hash",
		FirstName: "Ada",
		LastName:  "Lovelace",
		ImageURL:  "https://example.com/ada.png",
	}
	require.NoError(t, db.DB.Create(&u).Error)

	dir := NewDirectory(db.DB, logging.Discard())
	ctx := context.Background()

	p, ok := dir.Lookup(ctx, u.ID)
	require.True(t, ok)
	assert.Equal(t, Profile{FirstName: "Ada", LastName: "Lovelace", ImageURL: "https://example.com/ada.png"}, p)

	_, ok = dir.Lookup(ctx, "nobody")
	assert.False(t, ok)

	// A closed pool is a provider failure, which must not surface as an error.
	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	_, ok = dir.Lookup(ctx, u.ID)
	assert.False(t, ok)
}

func TestAccounts(t *testing.T) {
	db := dbtest.Run(t)
	defer func() { require.NoError(t, db.Stop()) }()

	dir := NewDirectory(db.DB, logging.Discard())
	ctx := context.Background()

	u := &models.User{Username: "grace", Email: "grace@example.com", Password: "hash"}
	require.NoError(t, dir.Create(ctx, u))
	assert.NotEmpty(t, u.ID)

	dup := &models.User{Username: "grace", Email: "other@example.com", Password: "hash"}
	assert.ErrorIs(t, dir.Create(ctx, dup), apperr.ErrInvalidArgument)

	byEmail, err := dir.ByEmail(ctx, "grace@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := dir.ByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "grace", byID.Username)

	_, err = dir.ByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
