package bgg

import (
	"slices"
	"strconv"
)

// Play time buckets, shortest first.
const (
	PlayTime15   = "0-15 Minutes"
	PlayTime30   = "15-30 Minutes"
	PlayTime45   = "30-45 Minutes"
	PlayTime60   = "45-60 Minutes"
	PlayTime120  = "60+ Minutes"
	PlayTime180  = "2+ Hours"
	PlayTimeLong = "3+ Hours"
)

// DefaultMinAge is the suggested age when the document gives none.
const DefaultMinAge = "10+"

// Difficulty levels, lightest first.
const (
	DifficultyLight       = "1 - Light"
	DifficultyMediumLight = "2 - Medium Light"
	DifficultyMedium      = "3 - Medium"
	DifficultyMediumHeavy = "4 - Medium Heavy"
	DifficultyHeavy       = "5 - Heavy"
)

// PlayTimeBuckets lists every play time label in order.
var PlayTimeBuckets = []string{
	PlayTime15, PlayTime30, PlayTime45, PlayTime60, PlayTime120, PlayTime180, PlayTimeLong,
}

// DifficultyLevels lists every difficulty label in order.
var DifficultyLevels = []string{
	DifficultyLight, DifficultyMediumLight, DifficultyMedium, DifficultyMediumHeavy, DifficultyHeavy,
}

var playTimeBounds = []struct {
	max   int
	label string
}{
	{15, PlayTime15},
	{30, PlayTime30},
	{45, PlayTime45},
	{60, PlayTime60},
	{120, PlayTime120},
	{180, PlayTime180},
}

// PlayTimeBucket maps a play time in minutes to its label.
// Upper bounds are inclusive: 60 minutes is "45-60 Minutes".
func PlayTimeBucket(minutes int) string {
	for _, b := range playTimeBounds {
		if minutes <= b.max {
			return b.label
		}
	}
	return PlayTimeLong
}

var weightBounds = []struct {
	below float64
	label string
}{
	{1.5, DifficultyLight},
	{2.5, DifficultyMediumLight},
	{3.5, DifficultyMedium},
	{4.5, DifficultyMediumHeavy},
}

// DifficultyBucket maps a complexity weight to its label.
// Upper bounds are exclusive: 1.5 is "2 - Medium Light".
func DifficultyBucket(weight float64) string {
	for _, b := range weightBounds {
		if weight < b.below {
			return b.label
		}
	}
	return DifficultyHeavy
}

// AgeLabel formats a minimum age as "N+", using DefaultMinAge for unknown ages.
func AgeLabel(minAge int) string {
	if minAge <= 0 {
		return DefaultMinAge
	}
	return strconv.Itoa(minAge) + "+"
}

// IsPlayTimeBucket reports whether s is one of PlayTimeBuckets.
func IsPlayTimeBucket(s string) bool { return slices.Contains(PlayTimeBuckets, s) }

// IsDifficultyLevel reports whether s is one of DifficultyLevels.
func IsDifficultyLevel(s string) bool { return slices.Contains(DifficultyLevels, s) }
