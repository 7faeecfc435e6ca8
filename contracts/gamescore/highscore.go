package gamescore

import (
	"github.com/govm-net/gamescore/core"
)

// HighScore is an immutable snapshot of a score. Entries order by Score only.
type HighScore struct {
	Character Character      `json:"character"`
	Score     uint32         `json:"score"`
	Player    core.AccountID `json:"player"`
}

// NewHighScore copies character, later changes to it do not show in the snapshot
func NewHighScore(score uint32, character *Character, player core.AccountID) *HighScore {
	return &HighScore{
		Character: *character,
		Score:     score,
		Player:    player,
	}
}

// UpdateHighScore keeps candidate as the player's best unless current is
// higher. It returns candidate when it was kept.
func UpdateHighScore(current **HighScore, candidate *HighScore) *HighScore {
	if candidate == nil {
		return nil
	}
	if *current != nil && (*current).Score > candidate.Score {
		return nil
	}
	*current = candidate
	return candidate
}
