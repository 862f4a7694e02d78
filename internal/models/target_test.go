package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTarget(t *testing.T) {
	tests := []struct {
		kind, id string
		wantErr  bool
		table    string
		column   string
	}{
		{"challenge", "c1", false, "challenges", "challenge_id"},
		{"solution", "s1", false, "solutions", "solution_id"},
		{"comment", "m1", false, "comments", "comment_id"},
		{"post", "p1", true, "", ""},
		{"Challenge", "c1", true, "", ""},
		{"solution", "", true, "", ""},
		{"solution", strings.Repeat("a", MaxEntityIDLen), false, "solutions", "solution_id"},
		{"solution", strings.Repeat("a", MaxEntityIDLen+1), true, "", ""},
		{"comment", "\xff\xfe", true, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.kind+"/"+tt.id, func(t *testing.T) {
			got, err := NewTarget(tt.kind, tt.id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.table, got.Kind.Table())
			assert.Equal(t, tt.column, got.Kind.Column())
			assert.Equal(t, tt.kind+":"+tt.id, got.String())
		})
	}
}

func TestNewVoteSetsExactlyOneTarget(t *testing.T) {
	for _, kind := range []EntityKind{KindChallenge, KindSolution, KindComment} {
		v := NewVote("u1", Target{Kind: kind, ID: "x"}, Upvote)
		set := 0
		for _, ref := range []*string{v.ChallengeID, v.SolutionID, v.CommentID} {
			if ref != nil {
				set++
			}
		}
		assert.Equal(t, 1, set, kind)
		assert.Equal(t, Target{Kind: kind, ID: "x"}, v.Target())
	}
}

func TestParseVoteType(t *testing.T) {
	vt, err := ParseVoteType("downvote")
	require.NoError(t, err)
	assert.Equal(t, Downvote, vt)

	_, err = ParseVoteType("meh")
	assert.Error(t, err)
}

func TestValidateUserID(t *testing.T) {
	assert.NoError(t, ValidateUserID("user-42"))
	assert.NoError(t, ValidateUserID(strings.Repeat("u", MaxUserIDLen)))
	assert.Error(t, ValidateUserID(""))
	assert.Error(t, ValidateUserID(strings.Repeat("u", MaxUserIDLen+1)))
	assert.Error(t, ValidateUserID("bad\xffid"))
}
