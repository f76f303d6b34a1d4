package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// User represents a trading party known to the engine. Identities are minted
// by the chat frontend; the engine only reads the reputation aggregate.
type User struct {
	ID           string
	TotalRating  float64
	TotalReviews int
	CreatedAt    time.Time
}

// ReputationSummary renders the rating aggregate for notification payloads,
// e.g. "4.9 ⭐⭐⭐⭐⭐ (12)".
func (u *User) ReputationSummary() string {
	rounded := math.Round(u.TotalRating*10) / 10
	stars := int(math.Round(u.TotalRating))
	if stars < 0 {
		stars = 0
	}
	if stars > 5 {
		stars = 5
	}
	return fmt.Sprintf("%.1f %s (%d)", rounded, strings.Repeat("⭐", stars), u.TotalReviews)
}
