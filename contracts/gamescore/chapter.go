package gamescore

import (
	"encoding/json"
	"fmt"
)

// Stage is one of the three chapters, cycling 1 -> 2 -> 3 -> 1
type Stage int

const (
	Chapter1 Stage = iota + 1
	Chapter2
	Chapter3
)

var stageRewards = map[Stage]ChapterReward{
	Chapter1: {EXP: 10, ScoreMultiplier: 0.9, ExpectedLevel: 1, LevelMultiplier: 0.9},
	Chapter2: {EXP: 100, ScoreMultiplier: 0.9, ExpectedLevel: 5, LevelMultiplier: 0.9},
	Chapter3: {EXP: 1000, ScoreMultiplier: 0.9, ExpectedLevel: 10, LevelMultiplier: 0.9},
}

func (s Stage) String() string {
	switch s {
	case Chapter1, Chapter2, Chapter3:
		return fmt.Sprintf("Chapter%d", int(s))
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

func (s Stage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Stage) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for _, stage := range []Stage{Chapter1, Chapter2, Chapter3} {
		if stage.String() == name {
			*s = stage
			return nil
		}
	}
	return fmt.Errorf("invalid chapter %q", name)
}

// Chapter is the player's current stage and, while a match runs, its start
// time in block milliseconds.
type Chapter struct {
	Stage     Stage  `json:"stage"`
	StartedAt *int64 `json:"started_at"`
}

// NewChapter returns Chapter1 with no match running
func NewChapter() Chapter {
	return Chapter{Stage: Chapter1}
}

// Reward returns the reward table of the current stage
func (c *Chapter) Reward() ChapterReward {
	return stageRewards[c.Stage]
}

// Started reports whether a match is running
func (c *Chapter) Started() bool {
	return c.StartedAt != nil
}

// StartMatch records now and returns a copy of the chapter
func (c *Chapter) StartMatch(now int64) Chapter {
	c.StartedAt = &now
	started := now
	return Chapter{Stage: c.Stage, StartedAt: &started}
}

// NextMatch moves to the next stage and clears the start time
func (c *Chapter) NextMatch() {
	switch c.Stage {
	case Chapter1:
		c.Stage = Chapter2
	case Chapter2:
		c.Stage = Chapter3
	default:
		c.Stage = Chapter1
	}
	c.StartedAt = nil
}

// validateReport is where a replay check would go. Every report of a started
// match is accepted.
func (c *Chapter) validateReport(character *Character, score uint32) error {
	if !c.Started() {
		return errChapterNotStarted()
	}
	return nil
}

// ValidateMatch ends the running match and returns the EXP it earns
func (c *Chapter) ValidateMatch(character *Character, score uint32) (uint32, error) {
	if err := c.validateReport(character, score); err != nil {
		return 0, err
	}
	reward := c.Reward()
	c.StartedAt = nil
	return reward.Compute(character.Level, score), nil
}
