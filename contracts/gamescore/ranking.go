package gamescore

import (
	"sort"
)

const (
	DefaultRankingSize = 10
	MaxRankingSize     = 1000
)

// Ranking is the leaderboard: at most MaxSize entries, highest score first.
// Lowest caches the last kept entry.
type Ranking struct {
	Values  []HighScore `json:"values"`
	MaxSize int         `json:"max_size"`
	Lowest  *HighScore  `json:"lowest"`
}

func NewRanking() *Ranking {
	return &Ranking{
		Values:  make([]HighScore, 0, DefaultRankingSize),
		MaxSize: DefaultRankingSize,
	}
}

func (r *Ranking) full() bool {
	return len(r.Values) >= r.MaxSize
}

// sortAndResize orders by score descending, keeping insertion order on ties,
// then drops everything past MaxSize and refreshes Lowest.
func (r *Ranking) sortAndResize() {
	sort.SliceStable(r.Values, func(i, j int) bool {
		return r.Values[i].Score > r.Values[j].Score
	})
	if len(r.Values) > r.MaxSize {
		r.Values = r.Values[:r.MaxSize]
	}

	r.Lowest = nil
	if n := len(r.Values); n > 0 {
		lowest := r.Values[n-1]
		r.Lowest = &lowest
	}
}

// CheckHighScore offers candidate to the ranking and reports whether it was
// inserted. When full, only a score above the lowest kept one gets in.
func (r *Ranking) CheckHighScore(candidate *HighScore) bool {
	if candidate == nil {
		return false
	}
	if r.full() {
		if r.Lowest == nil || candidate.Score <= r.Lowest.Score {
			return false
		}
	}

	r.Values = append(r.Values, *candidate)
	r.sortAndResize()
	return true
}

// SetMaxSize changes the capacity. Shrinking drops the lowest entries now.
func (r *Ranking) SetMaxSize(n int) error {
	if n < 0 || n > MaxRankingSize {
		return errExcessiveRankingSize(n, MaxRankingSize)
	}
	r.MaxSize = n
	r.sortAndResize()
	return nil
}

// Entries returns a copy of the kept entries
func (r *Ranking) Entries() []HighScore {
	out := make([]HighScore, len(r.Values))
	copy(out, r.Values)
	return out
}
