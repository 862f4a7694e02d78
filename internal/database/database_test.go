package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/sysdesign-arena/backend/internal/database"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/database/dbtest"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/logging"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/models"
)

func TestServiceHealthAndMigrate(t *testing.T) {
	db := dbtest.Run(t)
	defer func() { require.NoError(t, db.Stop()) }()

	svc := database.Wrap(db.DB, logging.Discard())
	health := svc.Health()
	assert.Equal(t, "up", health["status"])
	assert.Equal(t, svc.GetDB().Migrator().CurrentDatabase(), health["database"])
	assert.Contains(t, health, "open_connections")
	assert.Contains(t, health, "max_open_connections")

	// Migrating an already migrated schema is a no-op.
	require.NoError(t, database.Migrate(svc.GetDB()))
	for _, table := range []any{&models.Vote{}, &models.UserStats{}, &models.Challenge{}} {
		assert.True(t, svc.GetDB().Migrator().HasTable(table))
	}

	// A vote pointing at two entities violates the single-target check.
	a, b := "c1", "s1"
	bad := models.Vote{UserID: "u1", VoteType: models.Upvote, ChallengeID: &a, SolutionID: &b}
	assert.Error(t, svc.GetDB().Create(&bad).Error)

	require.NoError(t, svc.Close())
	down := svc.Health()
	assert.Equal(t, "down", down["status"])
	assert.NotEmpty(t, down["error"])
	assert.Equal(t, health["database"], down["database"])
}
