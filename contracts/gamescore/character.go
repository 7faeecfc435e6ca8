package gamescore

import (
	"math"
	"unicode"
	"unicode/utf8"

	"github.com/govm-net/gamescore/core"
)

// Character belongs to one player and is unique by name within it
type Character struct {
	Name      string `json:"name"`
	Class     Class  `json:"class"`
	Level     uint32 `json:"level"`
	XP        uint32 `json:"xp"`
	Stats     Stats  `json:"stats"`
	HighScore uint32 `json:"high_score"`
}

// NewCharacter creates a level 1 character. The name must start with a
// letter or a digit.
func NewCharacter(name string, class Class) (*Character, error) {
	first, _ := utf8.DecodeRuneInString(name)
	if name == "" || !(unicode.IsLetter(first) || unicode.IsDigit(first)) {
		return nil, errInvalidCharacterName(name)
	}
	if !class.valid() {
		return nil, errInvalidClassName(class.String())
	}

	return &Character{
		Name:  name,
		Class: class,
		Level: 1,
		Stats: NewStats(class),
	}, nil
}

// LevelThreshold is the XP needed to leave level
func LevelThreshold(level uint32) uint64 {
	l := uint64(level)
	return 100 + 10*l + 3*l*l
}

// RewardExp adds exp and levels up as many times as it covers. XP left over
// after leveling saturates at MaxUint32.
func (c *Character) RewardExp(exp uint32) {
	xp := uint64(c.XP) + uint64(exp)
	for c.Level < math.MaxUint32 {
		threshold := LevelThreshold(c.Level)
		if xp < threshold {
			break
		}
		c.Level++
		xp -= threshold
		c.Stats.Update(c.Level)
	}
	if xp > math.MaxUint32 {
		xp = math.MaxUint32
	}
	c.XP = uint32(xp)
}

// CheckHighScore records score if it beats the personal best and returns a
// snapshot of the character at that moment, nil otherwise.
func (c *Character) CheckHighScore(score uint32, player core.AccountID) *HighScore {
	if score <= c.HighScore {
		return nil
	}
	c.HighScore = score
	return NewHighScore(score, c, player)
}
