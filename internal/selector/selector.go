package selector

import (
	"errors"
	"math/rand"
	"time"

	"spelling-service/internal/constants"
	"spelling-service/internal/models"
)

// CountAll asks for the entire filtered pool, shuffled.
const CountAll = -1

var ErrNoWordsAvailable = errors.New("no words available after filtering")

type SourceFilter string

const (
	FilterAuthoritative SourceFilter = "authoritative"
	FilterAll           SourceFilter = "all"
)

type Options struct {
	SourceFilter SourceFilter
	Count        int
}

// Selector samples a word pool into an ordered session word list. Randomness
// is injected so tests can fix the seed; selection is not reproducible across
// production calls and is not meant to be.
type Selector struct {
	rng *rand.Rand
}

func New(rng *rand.Rand) *Selector {
	return &Selector{rng: rng}
}

// NewShuffled returns a selector seeded from the wall clock.
func NewShuffled() *Selector {
	return New(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// Select filters pool by source tier, shuffles the survivors uniformly and
// truncates to opts.Count (CountAll keeps everything). An empty filtered
// pool returns ErrNoWordsAvailable so the caller can refuse to start.
func (s *Selector) Select(pool []models.Word, opts Options) ([]models.Word, error) {
	filtered := make([]models.Word, 0, len(pool))
	for _, w := range pool {
		if opts.SourceFilter == FilterAuthoritative && w.SourceTier != constants.SourceTierAuthoritative {
			continue
		}
		filtered = append(filtered, w)
	}

	if len(filtered) == 0 {
		return nil, ErrNoWordsAvailable
	}

	s.rng.Shuffle(len(filtered), func(i, j int) {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	})

	if opts.Count == CountAll || opts.Count >= len(filtered) {
		return filtered, nil
	}
	if opts.Count <= 0 {
		return nil, ErrNoWordsAvailable
	}
	return filtered[:opts.Count], nil
}
