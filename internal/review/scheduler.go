// Package review implements the simplified SM-2 update applied each time a
// flashcard is rated.
//
// A rating of 3 or more is a successful recall. The first two successes move
// a card to 1 and then 6 days; later successes multiply the interval by the
// card's ease. Ease moves by 0.1 − (5−q)(0.08 + (5−q)·0.02) and never drops
// below 1.3. A rating under 3 is a lapse: the interval resets to one day and
// ease is left as it was. The next due date is always anchored on the time
// of the review, not on the previous due date.
package review

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Raghvendrath3/conceptForge/internal/domain"
	appErrors "github.com/Raghvendrath3/conceptForge/pkg/errors"
)

const (
	MinQuality     = 0
	MaxQuality     = 5
	PassingQuality = 3

	firstInterval  = 1
	secondInterval = 6
	lapseInterval  = 1
)

// ErrInvalidQuality is wrapped by the validation error returned for a
// rating outside [MinQuality, MaxQuality].
var ErrInvalidQuality = errors.New("review: quality must be between 0 and 5")

// State is the scheduling state carried by a card before a review.
type State struct {
	Ease     float64
	Interval int
}

// Result is the scheduling state after a review.
type Result struct {
	Ease     float64
	Interval int
	DueAt    time.Time
}

// Passed reports whether quality counts as a successful recall.
func Passed(quality int) bool {
	return quality >= PassingQuality
}

// ValidateQuality rejects ratings outside [MinQuality, MaxQuality] without
// clamping them.
func ValidateQuality(quality int) error {
	if quality < MinQuality || quality > MaxQuality {
		return appErrors.NewValidationWithCause(
			fmt.Sprintf("quality %d is outside %d..%d", quality, MinQuality, MaxQuality),
			ErrInvalidQuality,
		)
	}
	return nil
}

// Schedule computes the next ease, interval and due date. It has no side
// effects; persisting the result is the caller's job.
func Schedule(current State, quality int, now time.Time) (Result, error) {
	if err := ValidateQuality(quality); err != nil {
		return Result{}, err
	}

	next := Result{Ease: current.Ease}
	if Passed(quality) {
		switch current.Interval {
		case 0:
			next.Interval = firstInterval
		case 1:
			next.Interval = secondInterval
		default:
			next.Interval = int(math.Round(float64(current.Interval) * current.Ease))
		}
		next.Ease = adjustEase(current.Ease, quality)
	} else {
		next.Interval = lapseInterval
	}

	next.DueAt = now.AddDate(0, 0, next.Interval)
	return next, nil
}

func adjustEase(ease float64, quality int) float64 {
	miss := float64(MaxQuality - quality)
	ease += 0.1 - miss*(0.08+miss*0.02)
	if ease < domain.MinEase {
		return domain.MinEase
	}
	return ease
}

// Apply runs Schedule against card and writes the result back into it.
func Apply(card *domain.Flashcard, quality int, now time.Time) error {
	next, err := Schedule(State{Ease: card.Ease, Interval: card.Interval}, quality, now)
	if err != nil {
		return err
	}
	card.Ease = next.Ease
	card.Interval = next.Interval
	card.DueAt = next.DueAt
	card.UpdatedAt = now
	return nil
}
