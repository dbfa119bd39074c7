package bgg

import "testing"

func TestPlayTimeBucket(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, PlayTime15},
		{15, PlayTime15},
		{16, PlayTime30},
		{30, PlayTime30},
		{45, PlayTime45},
		{46, PlayTime60},
		{60, PlayTime60},
		{61, PlayTime120},
		{120, PlayTime120},
		{121, PlayTime180},
		{180, PlayTime180},
		{181, PlayTimeLong},
		{10000, PlayTimeLong},
	}
	for _, tt := range tests {
		if got := PlayTimeBucket(tt.minutes); got != tt.want {
			t.Errorf("PlayTimeBucket(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestPlayTimeBucketMonotonic(t *testing.T) {
	index := make(map[string]int, len(PlayTimeBuckets))
	for i, b := range PlayTimeBuckets {
		index[b] = i
	}

	prev := 0
	for m := 0; m <= 400; m++ {
		label := PlayTimeBucket(m)
		i, ok := index[label]
		if !ok {
			t.Fatalf("PlayTimeBucket(%d) = %q, not a known bucket", m, label)
		}
		if i < prev {
			t.Fatalf("PlayTimeBucket(%d) = %q went backwards", m, label)
		}
		prev = i
	}
	if prev != len(PlayTimeBuckets)-1 {
		t.Errorf("last bucket never reached")
	}
}

func TestDifficultyBucket(t *testing.T) {
	tests := []struct {
		weight float64
		want   string
	}{
		{0, DifficultyLight},
		{1.49, DifficultyLight},
		{1.5, DifficultyMediumLight},
		{2.49, DifficultyMediumLight},
		{2.5, DifficultyMedium},
		{3.49, DifficultyMedium},
		{3.5, DifficultyMediumHeavy},
		{3.86, DifficultyMediumHeavy},
		{4.49, DifficultyMediumHeavy},
		{4.5, DifficultyHeavy},
		{5, DifficultyHeavy},
	}
	for _, tt := range tests {
		if got := DifficultyBucket(tt.weight); got != tt.want {
			t.Errorf("DifficultyBucket(%v) = %q, want %q", tt.weight, got, tt.want)
		}
	}
}

func TestAgeLabel(t *testing.T) {
	if got := AgeLabel(14); got != "14+" {
		t.Errorf("AgeLabel(14) = %q", got)
	}
	if got := AgeLabel(0); got != "10+" {
		t.Errorf("AgeLabel(0) = %q", got)
	}
}

func TestBucketMembership(t *testing.T) {
	if !IsPlayTimeBucket("2+ Hours") || IsPlayTimeBucket("2 Hours") {
		t.Error("IsPlayTimeBucket misclassified")
	}
	if !IsDifficultyLevel("5 - Heavy") || IsDifficultyLevel("Heavy") {
		t.Error("IsDifficultyLevel misclassified")
	}
}
