package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreFormulas(t *testing.T) {
	// Two solutions (3 and 0 upvotes), one comment (1 upvote), four upvotes cast.
	a := Activity{Solutions: 2, Comments: 1, UpvotesGiven: 4, UpvotesReceived: 3 + 0 + 1}

	assert.Equal(t, int64(27), Bulk.Score(a))
	assert.Equal(t, int64(46), OnDemand.Score(a))
}

func TestBulkIgnoresUpvotesGiven(t *testing.T) {
	base := Activity{Solutions: 1, Comments: 1, UpvotesReceived: 2}
	generous := base
	generous.UpvotesGiven = 100

	assert.Equal(t, Bulk.Score(base), Bulk.Score(generous))
	assert.Equal(t, OnDemand.Score(base)+100, OnDemand.Score(generous))
}

func TestZeroActivity(t *testing.T) {
	assert.Zero(t, Bulk.Score(Activity{}))
	assert.Zero(t, OnDemand.Score(Activity{}))
}

func TestWeightsPerInput(t *testing.T) {
	tests := []struct {
		name     string
		a        Activity
		bulk     int64
		onDemand int64
	}{
		{"solution", Activity{Solutions: 1}, 10, 10},
		{"comment", Activity{Comments: 1}, 3, 2},
		{"given", Activity{UpvotesGiven: 1}, 0, 1},
		{"received", Activity{UpvotesReceived: 1}, 1, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.bulk, Bulk.Score(tt.a))
			assert.Equal(t, tt.onDemand, OnDemand.Score(tt.a))
		})
	}
}
