package swap

import (
	"math"
	"time"

	"skillswap-backend/internal/models"
)

const (
	minRating = 1
	maxRating = 5
)

// FeedbackInput is one side's post-session feedback.
type FeedbackInput struct {
	Rating       int
	Review       string
	Endorsements []string
}

// Outcome reports what ApplyFeedback changed so the handler can persist the
// right rows and phrase its response.
type Outcome struct {
	Side Side
	// First is true when this is the first feedback on the session, which is
	// the submission that bumps both users' swap and hour counters.
	First bool
}

// ApplyFeedback records the actor's feedback on the session and folds the
// rating into the other participant's stats. The session moves to completed
// on every successful submission. Mutates session, actor and other in place;
// the caller persists all three in one transaction.
//
// The rated user's average is a running mean rounded to one decimal and it
// moves on every submission, while total_swaps and total_hours move once per
// session, on whichever feedback arrives first.
func ApplyFeedback(s *models.Session, actor, other *models.User, in FeedbackInput, now time.Time) (Outcome, error) {
	side, ok := ParticipantSide(s, actor.ID)
	if !ok {
		return Outcome{}, &AuthorizationError{Message: "not a participant of this session"}
	}

	counterpartID := s.RecipientID
	if side == SideRecipient {
		counterpartID = s.RequesterID
	}
	if other == nil || other.ID != counterpartID {
		return Outcome{}, &ValidationError{Message: "feedback target is not the session counterpart"}
	}

	if in.Rating < minRating || in.Rating > maxRating {
		return Outcome{}, &ValidationError{Message: "rating must be between 1 and 5"}
	}

	var mine, theirs *models.FeedbackRecord
	if side == SideRequester {
		mine, theirs = s.Feedback.FromRequester, s.Feedback.FromRecipient
	} else {
		mine, theirs = s.Feedback.FromRecipient, s.Feedback.FromRequester
	}

	if mine != nil {
		return Outcome{}, &ConflictError{Message: "feedback already submitted for this session"}
	}
	// Decided before anything is written.
	first := theirs == nil

	endorsements := dedupeEndorsements(in.Endorsements)
	record := &models.FeedbackRecord{
		Rating:       in.Rating,
		Review:       in.Review,
		Endorsements: endorsements,
		SubmittedAt:  now,
	}
	if side == SideRequester {
		s.Feedback.FromRequester = record
	} else {
		s.Feedback.FromRecipient = record
	}
	s.Status = models.SessionCompleted

	// Running mean over the pre-increment swap count, on every submission.
	swaps := other.Stats.TotalSwaps
	other.Stats.AvgRating = round1((other.Stats.AvgRating*float64(swaps) + float64(in.Rating)) / float64(swaps+1))

	if other.Stats.Endorsements == nil {
		other.Stats.Endorsements = map[string]int{}
	}
	for _, skill := range endorsements {
		other.Stats.Endorsements[skill]++
	}

	if first {
		hours := float64(s.DurationMinutes) / 60
		other.Stats.TotalSwaps++
		other.Stats.TotalHours += hours
		actor.Stats.TotalSwaps++
		actor.Stats.TotalHours += hours
	}

	return Outcome{Side: side, First: first}, nil
}

// dedupeEndorsements collapses duplicates while keeping first-seen order.
func dedupeEndorsements(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, e := range in {
		if e == "" {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
