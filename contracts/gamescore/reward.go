package gamescore

import "math"

// maxLevelDifference caps how many levels of deviation change the reward
const maxLevelDifference = 5

// ChapterReward holds the EXP parameters of a chapter.
// All arithmetic is single precision.
type ChapterReward struct {
	EXP             uint32  `json:"exp"`              // base reward
	ScoreMultiplier float32 `json:"score_multiplier"` // EXP per score point
	ExpectedLevel   uint32  `json:"expected_level"`
	LevelMultiplier float32 `json:"level_multiplier"` // applied per level above expected
}

// levelMultiplier is rate^d above the expected level and (2-rate)^d below
// it, with d capped at maxLevelDifference.
func (r ChapterReward) levelMultiplier(level uint32) float32 {
	factor := r.LevelMultiplier
	difference := int64(level) - int64(r.ExpectedLevel)
	if difference < 0 {
		factor = float32(2 - factor)
		difference = -difference
	}
	if difference > maxLevelDifference {
		difference = maxLevelDifference
	}

	result := float32(1)
	for i := int64(0); i < difference; i++ {
		result = float32(result * factor)
	}
	return result
}

// Compute returns trunc((EXP + ScoreMultiplier*score) * levelMultiplier(level)),
// saturated to the uint32 range.
func (r ChapterReward) Compute(level uint32, score uint32) uint32 {
	bonus := float32(r.ScoreMultiplier * float32(score))
	total := float32(float32(r.EXP) + bonus)
	return saturateUint32(float32(total * r.levelMultiplier(level)))
}

// saturateUint32 truncates v toward zero, clamping NaN and negatives to 0 and
// anything at or past 2^32 to MaxUint32.
func saturateUint32(v float32) uint32 {
	switch {
	case !(v > 0):
		return 0
	case v >= float32(math.MaxUint32):
		return math.MaxUint32
	}
	return uint32(v)
}
