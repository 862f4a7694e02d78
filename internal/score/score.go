// Package score maps a user's raw activity counts to a reputation score.
//
// Two weightings exist and are kept apart on purpose: the bulk recalculation
// path uses Bulk, the per-user path uses OnDemand.
//
//	Bulk:     10×solutions + 3×comments +                 upvotesReceived
//	OnDemand: 10×solutions + 2×comments + upvotesGiven + 5×upvotesReceived
package score

// Activity holds the raw inputs. UpvotesGiven counts only upvotes the user
// cast; downvotes cast are not tracked. UpvotesReceived is the sum of the
// cached upvote counters on the user's solutions and comments.
type Activity struct {
	Solutions       int64 `json:"solutions_count"`
	Comments        int64 `json:"comments_count"`
	UpvotesGiven    int64 `json:"upvotes_given"`
	UpvotesReceived int64 `json:"upvotes_received"`
}

// Weights is a linear scoring strategy over Activity.
type Weights struct {
	Name           string
	Solution       int64
	Comment        int64
	UpvoteGiven    int64
	UpvoteReceived int64
}

var (
	// Bulk is used when recalculating every user at once.
	Bulk = Weights{Name: "bulk", Solution: 10, Comment: 3, UpvoteGiven: 0, UpvoteReceived: 1}

	// OnDemand is used when a single user's stats are recalculated.
	OnDemand = Weights{Name: "on_demand", Solution: 10, Comment: 2, UpvoteGiven: 1, UpvoteReceived: 5}
)

// Score is total over non-negative inputs.
func (w Weights) Score(a Activity) int64 {
	return w.Solution*a.Solutions +
		w.Comment*a.Comments +
		w.UpvoteGiven*a.UpvotesGiven +
		w.UpvoteReceived*a.UpvotesReceived
}
