package domain

import (
	"errors"
	"time"
)

var ErrPlanNotFound = errors.New("travel plan not found")

// TravelPlan is owned by exactly one user; UserID never changes after creation.
type TravelPlan struct {
	ID              string
	UserID          string
	Title           string
	Plan            string
	PlannedLocation []string
	PlannedDate     time.Time
	ImageURL        string
	IsFavorite      bool
	CreatedOn       time.Time
}

// maxEpochMillis is the largest magnitude a JavaScript Date accepts.
const maxEpochMillis = 8_640_000_000_000_000

// TimeFromEpochMillis converts a client-supplied millisecond timestamp.
// Values outside the representable date range are rejected.
func TimeFromEpochMillis(ms int64) (time.Time, bool) {
	if ms > maxEpochMillis || ms < -maxEpochMillis {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}
