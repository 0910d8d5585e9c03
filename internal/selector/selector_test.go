package selector

import (
	"errors"
	"math/rand"
	"testing"

	"spelling-service/internal/constants"
	"spelling-service/internal/models"
)

func testPool() []models.Word {
	return []models.Word{
		{ID: "1", Text: "hive", SourceTier: constants.SourceTierAuthoritative},
		{ID: "2", Text: "nectar", SourceTier: constants.SourceTierAuthoritative},
		{ID: "3", Text: "pollen", SourceTier: constants.SourceTierSupplementary},
		{ID: "4", Text: "swarm", SourceTier: constants.SourceTierAuthoritative},
		{ID: "5", Text: "drone", SourceTier: constants.SourceTierSupplementary},
	}
}

func TestSelectFiltersAndTruncates(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantLen int
	}{
		{
			name:    "authoritative only",
			opts:    Options{SourceFilter: FilterAuthoritative, Count: CountAll},
			wantLen: 3,
		},
		{
			name:    "all tiers",
			opts:    Options{SourceFilter: FilterAll, Count: CountAll},
			wantLen: 5,
		},
		{
			name:    "truncated",
			opts:    Options{SourceFilter: FilterAll, Count: 2},
			wantLen: 2,
		},
		{
			name:    "count above pool size keeps whole pool",
			opts:    Options{SourceFilter: FilterAuthoritative, Count: 10},
			wantLen: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(rand.New(rand.NewSource(1)))
			got, err := s.Select(testPool(), tt.opts)
			if err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			if len(got) != tt.wantLen {
				t.Errorf("Select() returned %d words, want %d", len(got), tt.wantLen)
			}
			if tt.opts.SourceFilter == FilterAuthoritative {
				for _, w := range got {
					if w.SourceTier != constants.SourceTierAuthoritative {
						t.Errorf("word %q leaked through authoritative filter", w.Text)
					}
				}
			}
		})
	}
}

func TestSelectEmptyFilteredPool(t *testing.T) {
	s := New(rand.New(rand.NewSource(1)))
	pool := []models.Word{
		{ID: "1", Text: "pollen", SourceTier: constants.SourceTierSupplementary},
	}

	_, err := s.Select(pool, Options{SourceFilter: FilterAuthoritative, Count: CountAll})
	if !errors.Is(err, ErrNoWordsAvailable) {
		t.Fatalf("Select() error = %v, want ErrNoWordsAvailable", err)
	}
}

func TestSelectShufflesUniformPermutation(t *testing.T) {
	s := New(rand.New(rand.NewSource(42)))
	got, err := s.Select(testPool(), Options{SourceFilter: FilterAll, Count: CountAll})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	seen := make(map[string]bool, len(got))
	for _, w := range got {
		if seen[w.ID] {
			t.Fatalf("word %s selected twice", w.ID)
		}
		seen[w.ID] = true
	}
	if len(seen) != 5 {
		t.Fatalf("permutation lost words: got %d of 5", len(seen))
	}
}
