package attribution

import (
	"time"

	"github.com/angelmondragon/attribution-backend/pkg/db/models"
)

// PickClosest selects the candidate whose timestamp is nearest the order
// time, in either direction. Ties keep the earliest candidate since the
// input is ordered oldest first and only a strictly smaller delta replaces
// the current winner.
func PickClosest(orderTime time.Time, candidates []models.GAEvent) (models.GAEvent, bool) {
	if len(candidates) == 0 {
		return models.GAEvent{}, false
	}

	winner := 0
	best := absDuration(candidates[0].EventTimestamp.Sub(orderTime))
	for i := 1; i < len(candidates); i++ {
		delta := absDuration(candidates[i].EventTimestamp.Sub(orderTime))
		if delta < best {
			winner = i
			best = delta
		}
	}
	return candidates[winner], true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
