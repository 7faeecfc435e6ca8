package gamescore

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/govm-net/gamescore/context/memory"
	"github.com/govm-net/gamescore/core"
	"github.com/govm-net/gamescore/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, sender core.AccountID) core.Context {
	host, err := memory.NewBlockchainContext(map[string]any{})
	require.NoError(t, err)
	require.NoError(t, host.SetTransactionInfo(core.ZeroHash, sender, sender, "game.near"))
	return vm.NewExecutionContext(host, "game.near", vm.NewGasMeter(math.MaxInt64))
}

func TestParseClass(t *testing.T) {
	tests := []struct {
		input string
		want  Class
	}{
		{"Warrior", Warrior},
		{"warrior", Warrior},
		{"WARRIOR", Warrior},
		{" rogue ", Rogue},
		{"dRuId", Druid},
		{"priest", Priest},
	}
	for _, tt := range tests {
		got, err := ParseClass(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	_, err := ParseClass("Paladin")
	assert.ErrorIs(t, err, ErrInvalidClassName)
	assert.EqualError(t, err, "Invalid name (Paladin) for character class.")

	assert.Equal(t, []string{"Druid", "Priest", "Rogue", "Warrior"}, ClassNames())
}

func TestClassJSON(t *testing.T) {
	data, err := json.Marshal(Rogue)
	require.NoError(t, err)
	assert.Equal(t, `"Rogue"`, string(data))

	var c Class
	require.NoError(t, json.Unmarshal([]byte(`"priest"`), &c))
	assert.Equal(t, Priest, c)
	assert.Error(t, json.Unmarshal([]byte(`"bard"`), &c))
}

func TestNewStats(t *testing.T) {
	tests := []struct {
		class                     Class
		dex, str, intl            uint32
		dexRate, strRate, intRate uint32
	}{
		{Druid, 5, 7, 7, 2, 1, 2},
		{Priest, 4, 5, 7, 2, 1, 1},
		{Rogue, 8, 4, 4, 1, 2, 1},
		{Warrior, 4, 8, 4, 2, 1, 1},
	}
	for _, tt := range tests {
		s := NewStats(tt.class)
		assert.Equal(t, tt.dex, s.Dexterity, tt.class.String())
		assert.Equal(t, tt.str, s.Strength, tt.class.String())
		assert.Equal(t, tt.intl, s.Intelligence, tt.class.String())
		assert.Equal(t, tt.dexRate, s.DexterityRate, tt.class.String())
		assert.Equal(t, tt.strRate, s.StrengthRate, tt.class.String())
		assert.Equal(t, tt.intRate, s.IntelligenceRate, tt.class.String())
	}

	s := NewStats(Warrior)
	s.Update(3)
	assert.Equal(t, uint32(10), s.Dexterity)
	assert.Equal(t, uint32(11), s.Strength)
	assert.Equal(t, uint32(7), s.Intelligence)
	assert.Equal(t, uint32(4), s.DexterityBase)
}

func TestNewCharacter(t *testing.T) {
	c, err := NewCharacter("Conan", Warrior)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), c.Level)
	assert.Equal(t, uint32(0), c.XP)
	assert.Equal(t, uint32(0), c.HighScore)
	assert.Equal(t, NewStats(Warrior), c.Stats)

	for _, name := range []string{"Ærwyn", "1st", "名前"} {
		_, err := NewCharacter(name, Druid)
		assert.NoError(t, err, name)
	}

	for _, name := range []string{"", " Conan", "-x", "_"} {
		_, err := NewCharacter(name, Druid)
		assert.ErrorIs(t, err, ErrInvalidCharacterName, "name %q", name)
	}

	_, err = NewCharacter("Conan", Class(9))
	assert.ErrorIs(t, err, ErrInvalidClassName)
}

func TestRewardExp(t *testing.T) {
	assert.Equal(t, uint64(100), LevelThreshold(1))
	assert.Equal(t, uint64(132), LevelThreshold(2))

	c, err := NewCharacter("Conan", Warrior)
	require.NoError(t, err)

	c.RewardExp(99)
	assert.Equal(t, uint32(1), c.Level)
	assert.Equal(t, uint32(99), c.XP)

	c.RewardExp(1)
	assert.Equal(t, uint32(2), c.Level)
	assert.Equal(t, uint32(0), c.XP)
	assert.Equal(t, uint32(4+2*2), c.Stats.Dexterity)
	assert.Equal(t, uint32(8+1*2), c.Stats.Strength)
	assert.Equal(t, uint32(4+1*2), c.Stats.Intelligence)

	// one reward can cover several levels: 132 + 157 + 7
	c.RewardExp(uint32(132 + LevelThreshold(3) + 7))
	assert.Equal(t, uint32(4), c.Level)
	assert.Equal(t, uint32(7), c.XP)
	assert.Equal(t, uint32(4+2*4), c.Stats.Dexterity)
}

func TestRewardExpNearMaxXP(t *testing.T) {
	c, err := NewCharacter("Conan", Warrior)
	require.NoError(t, err)

	// the sum does not wrap, it pays for many levels
	c.XP = math.MaxUint32 - 5
	c.RewardExp(10)
	assert.Greater(t, c.Level, uint32(1000))
	assert.Less(t, uint64(c.XP), LevelThreshold(c.Level))
	assert.Equal(t, uint32(4+2*c.Level), c.Stats.Dexterity)

	// past every reachable threshold the leftover saturates
	c.Level = 40000
	c.XP = math.MaxUint32 - 5
	c.RewardExp(10)
	assert.Equal(t, uint32(40000), c.Level)
	assert.Equal(t, uint32(math.MaxUint32), c.XP)
}

func TestCharacterCheckHighScore(t *testing.T) {
	c, err := NewCharacter("Conan", Warrior)
	require.NoError(t, err)

	assert.Nil(t, c.CheckHighScore(0, "alice"))

	hs := c.CheckHighScore(50, "alice")
	require.NotNil(t, hs)
	assert.Equal(t, uint32(50), hs.Score)
	assert.Equal(t, core.AccountID("alice"), hs.Player)
	assert.Equal(t, uint32(50), c.HighScore)

	// the snapshot does not follow the character
	c.RewardExp(1000)
	assert.Equal(t, uint32(1), hs.Character.Level)

	assert.Nil(t, c.CheckHighScore(50, "alice"))
	assert.Nil(t, c.CheckHighScore(10, "alice"))
	assert.NotNil(t, c.CheckHighScore(51, "alice"))
}

func TestUpdateHighScore(t *testing.T) {
	c, err := NewCharacter("Conan", Warrior)
	require.NoError(t, err)

	var current *HighScore
	assert.Nil(t, UpdateHighScore(&current, nil))
	assert.Nil(t, current)

	first := NewHighScore(50, c, "alice")
	assert.Same(t, first, UpdateHighScore(&current, first))
	assert.Same(t, first, current)

	assert.Nil(t, UpdateHighScore(&current, NewHighScore(40, c, "alice")))
	assert.Same(t, first, current)

	// equal scores replace the current one
	tie := NewHighScore(50, c, "alice")
	assert.Same(t, tie, UpdateHighScore(&current, tie))
	assert.Same(t, tie, current)
}

func TestComputeReward(t *testing.T) {
	reward := ChapterReward{EXP: 10, ScoreMultiplier: 0.8, ExpectedLevel: 10, LevelMultiplier: 0.9}

	// lower level means more exp, up to 5 levels of difference
	below := map[uint32]uint32{10: 90, 9: 99, 8: 108, 7: 119, 6: 131, 5: 144, 4: 144, 3: 144, 2: 144}
	for level, want := range below {
		assert.Equal(t, want, reward.Compute(level, 100), "level %d", level)
	}

	// higher level means less exp, up to 5 levels of difference
	above := map[uint32]uint32{11: 81, 12: 72, 13: 65, 14: 59, 15: 53, 16: 53, 17: 53, 18: 53}
	for level, want := range above {
		assert.Equal(t, want, reward.Compute(level, 100), "level %d", level)
	}
}

func TestLevelMultiplierBounds(t *testing.T) {
	reward := ChapterReward{EXP: 0, ScoreMultiplier: 1, ExpectedLevel: 10, LevelMultiplier: 0.9}

	assert.Equal(t, float32(1), reward.levelMultiplier(10))

	up := float32(1.1)
	assert.InDelta(t, float64(up*up*up*up*up), float64(reward.levelMultiplier(1)), 1e-5)

	down := float32(0.9)
	assert.InDelta(t, float64(down*down*down*down*down), float64(reward.levelMultiplier(100)), 1e-5)
}

func TestChapterRewards(t *testing.T) {
	c := NewChapter()
	assert.Equal(t, ChapterReward{EXP: 10, ScoreMultiplier: 0.9, ExpectedLevel: 1, LevelMultiplier: 0.9}, c.Reward())
	c.NextMatch()
	assert.Equal(t, ChapterReward{EXP: 100, ScoreMultiplier: 0.9, ExpectedLevel: 5, LevelMultiplier: 0.9}, c.Reward())
	c.NextMatch()
	assert.Equal(t, ChapterReward{EXP: 1000, ScoreMultiplier: 0.9, ExpectedLevel: 10, LevelMultiplier: 0.9}, c.Reward())

	assert.Equal(t, uint32(100), stageRewards[Chapter1].Compute(1, 100))
	assert.Equal(t, uint32(212), stageRewards[Chapter2].Compute(1, 50))
	assert.Equal(t, uint32(1900), stageRewards[Chapter3].Compute(10, 1000))
}

func TestComputeRewardSaturates(t *testing.T) {
	// about 6.2e9 before clamping
	assert.Equal(t, uint32(math.MaxUint32), stageRewards[Chapter3].Compute(1, math.MaxUint32))
	assert.Less(t, stageRewards[Chapter1].Compute(1, math.MaxUint32), uint32(math.MaxUint32))

	assert.Equal(t, uint32(0), saturateUint32(float32(math.NaN())))
	assert.Equal(t, uint32(0), saturateUint32(-1))
	assert.Equal(t, uint32(7), saturateUint32(7.9))
	assert.Equal(t, uint32(math.MaxUint32), saturateUint32(float32(math.Inf(1))))
}

func TestChapterCycle(t *testing.T) {
	c := NewChapter()
	assert.Equal(t, Chapter1, c.Stage)

	c.StartMatch(1000)
	c.NextMatch()
	assert.Equal(t, Chapter2, c.Stage)
	assert.False(t, c.Started())

	c.NextMatch()
	assert.Equal(t, Chapter3, c.Stage)
	c.NextMatch()
	assert.Equal(t, Chapter1, c.Stage)
}

func TestStartMatchReturnsCopy(t *testing.T) {
	c := NewChapter()
	started := c.StartMatch(1234)

	require.NotNil(t, started.StartedAt)
	assert.Equal(t, int64(1234), *started.StartedAt)

	*started.StartedAt = 99
	assert.Equal(t, int64(1234), *c.StartedAt)
}

func TestValidateMatch(t *testing.T) {
	character, err := NewCharacter("Conan", Warrior)
	require.NoError(t, err)

	c := NewChapter()
	_, err = c.ValidateMatch(character, 100)
	assert.ErrorIs(t, err, ErrChapterNotStarted)

	c.StartMatch(1000)
	exp, err := c.ValidateMatch(character, 100)
	require.NoError(t, err)
	assert.Equal(t, uint32(100), exp)
	assert.False(t, c.Started())

	// a match validates once
	_, err = c.ValidateMatch(character, 100)
	assert.ErrorIs(t, err, ErrChapterNotStarted)
}

func TestChapterJSON(t *testing.T) {
	c := NewChapter()
	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"stage":"Chapter1","started_at":null}`, string(data))

	c.NextMatch()
	c.StartMatch(42)
	data, err = json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"stage":"Chapter2","started_at":42}`, string(data))

	var decoded Chapter
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, Chapter2, decoded.Stage)
	assert.Equal(t, int64(42), *decoded.StartedAt)

	assert.Error(t, json.Unmarshal([]byte(`{"stage":"Chapter4"}`), &decoded))
}

func newScore(t *testing.T, score uint32, player core.AccountID) *HighScore {
	c, err := NewCharacter("c", Rogue)
	require.NoError(t, err)
	return NewHighScore(score, c, player)
}

func TestRankingKeepsTopTen(t *testing.T) {
	r := NewRanking()
	scores := []uint32{50, 10, 90, 30, 70, 20, 100, 60, 40, 80, 5}
	for _, s := range scores {
		r.CheckHighScore(newScore(t, s, "p"))
	}

	entries := r.Entries()
	require.Len(t, entries, 10)
	got := make([]uint32, 0, len(entries))
	for _, e := range entries {
		got = append(got, e.Score)
	}
	assert.Equal(t, []uint32{100, 90, 80, 70, 60, 50, 40, 30, 20, 10}, got)
	require.NotNil(t, r.Lowest)
	assert.Equal(t, uint32(10), r.Lowest.Score)

	// lower than the minimum while full is a no-op
	assert.False(t, r.CheckHighScore(newScore(t, 3, "p")))
	assert.False(t, r.CheckHighScore(newScore(t, 10, "p")))
	assert.Len(t, r.Entries(), 10)

	// higher evicts the lowest
	assert.True(t, r.CheckHighScore(newScore(t, 11, "p")))
	assert.Equal(t, uint32(11), r.Lowest.Score)
	assert.Len(t, r.Entries(), 10)
}

func TestRankingNilAndTies(t *testing.T) {
	r := NewRanking()
	assert.False(t, r.CheckHighScore(nil))
	assert.Empty(t, r.Entries())
	assert.Nil(t, r.Lowest)

	r.CheckHighScore(newScore(t, 10, "first"))
	r.CheckHighScore(newScore(t, 20, "top"))
	r.CheckHighScore(newScore(t, 10, "second"))

	entries := r.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, core.AccountID("top"), entries[0].Player)
	assert.Equal(t, core.AccountID("first"), entries[1].Player)
	assert.Equal(t, core.AccountID("second"), entries[2].Player)
	assert.Equal(t, core.AccountID("second"), r.Lowest.Player)
}

func TestRankingSetMaxSize(t *testing.T) {
	r := NewRanking()
	for _, s := range []uint32{1, 2, 3, 4, 5} {
		r.CheckHighScore(newScore(t, s, "p"))
	}

	err := r.SetMaxSize(1001)
	assert.ErrorIs(t, err, ErrExcessiveRankingSize)
	assert.EqualError(t, err, "Computing ranking is expensive. Can't be higher than 1000. Attempted 1001.")
	assert.Equal(t, DefaultRankingSize, r.MaxSize)

	require.NoError(t, r.SetMaxSize(MaxRankingSize))

	// shrinking drops the lowest entries immediately
	require.NoError(t, r.SetMaxSize(3))
	require.Len(t, r.Entries(), 3)
	assert.Equal(t, uint32(5), r.Entries()[0].Score)
	assert.Equal(t, uint32(3), r.Lowest.Score)

	assert.False(t, r.CheckHighScore(newScore(t, 2, "p")))
	assert.True(t, r.CheckHighScore(newScore(t, 4, "p")))
	assert.Equal(t, uint32(4), r.Lowest.Score)

	require.NoError(t, r.SetMaxSize(0))
	assert.Empty(t, r.Entries())
	assert.False(t, r.CheckHighScore(newScore(t, 100, "p")))
}

func TestRegistry(t *testing.T) {
	ctx := newTestContext(t, "alice.near")
	registry := NewRegistry(ctx)

	_, err := registry.Load()
	assert.ErrorIs(t, err, ErrUserNotRegistered)
	assert.EqualError(t, err, "User alice.near needs to create an account before using this service.")

	player, err := registry.Register()
	require.NoError(t, err)
	assert.Equal(t, core.AccountID("alice.near"), player.Name)
	assert.Nil(t, player.HighScore)
	assert.Equal(t, NewChapter(), player.LatestChapter)

	_, err = registry.Register()
	assert.ErrorIs(t, err, ErrAccountAlreadyRegistered)

	loaded, err := registry.Load()
	require.NoError(t, err)
	loaded.StartMatch(5)
	require.NoError(t, registry.Save(loaded))

	loaded, err = registry.Load()
	require.NoError(t, err)
	assert.True(t, loaded.LatestChapter.Started())
}

func TestRegistryOwnerCannotRegister(t *testing.T) {
	ctx := newTestContext(t, "game.near")
	_, err := NewRegistry(ctx).Register()
	assert.ErrorIs(t, err, ErrAccountAlreadyRegistered)
}

func TestSaveUnregistered(t *testing.T) {
	ctx := newTestContext(t, "mallory.near")
	err := NewRegistry(ctx).Save(newPlayer(ctx, "mallory.near"))
	assert.ErrorIs(t, err, ErrAccountNotRegistered)
}

func TestPlayerCharacters(t *testing.T) {
	ctx := newTestContext(t, "alice.near")
	player, err := NewRegistry(ctx).Register()
	require.NoError(t, err)

	for _, name := range []string{"Conan", "Merlin"} {
		c, err := NewCharacter(name, Warrior)
		require.NoError(t, err)
		require.NoError(t, player.AssignCharacter(c))
	}

	dup, err := NewCharacter("Conan", Rogue)
	require.NoError(t, err)
	err = player.AssignCharacter(dup)
	assert.ErrorIs(t, err, ErrCharacterAlreadyExists)

	_, err = player.LoadCharacter("Nobody")
	assert.ErrorIs(t, err, ErrCharacterNotFound)

	c, err := player.LoadCharacter("Conan")
	require.NoError(t, err)
	assert.Equal(t, Warrior, c.Class)

	view, err := player.View()
	require.NoError(t, err)
	require.Len(t, view.Characters, 2)
	assert.Equal(t, "Conan", view.Characters[0].Name)
	assert.Equal(t, "Merlin", view.Characters[1].Name)
}

func TestPlayerReportMatch(t *testing.T) {
	ctx := newTestContext(t, "alice.near")
	player, err := NewRegistry(ctx).Register()
	require.NoError(t, err)

	c, err := NewCharacter("Conan", Warrior)
	require.NoError(t, err)
	require.NoError(t, player.AssignCharacter(c))

	_, err = player.ReportMatch("Conan", 100)
	assert.ErrorIs(t, err, ErrChapterNotStarted)

	player.StartMatch(1000)
	_, err = player.ReportMatch("Nobody", 100)
	assert.ErrorIs(t, err, ErrCharacterNotFound)

	hs, err := player.ReportMatch("Conan", 100)
	require.NoError(t, err)
	require.NotNil(t, hs)
	assert.Equal(t, uint32(100), hs.Score)
	assert.Equal(t, uint32(1), hs.Character.Level)
	assert.Same(t, hs, player.HighScore)

	saved, err := player.LoadCharacter("Conan")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), saved.Level)
	assert.Equal(t, uint32(0), saved.XP)
	assert.Equal(t, uint32(100), saved.HighScore)

	// not a personal best
	player.StartMatch(2000)
	hs, err = player.ReportMatch("Conan", 40)
	require.NoError(t, err)
	assert.Nil(t, hs)
	assert.Equal(t, uint32(100), player.HighScore.Score)
}

func TestErrorsIs(t *testing.T) {
	err := errCharacterNotFound("Conan")
	assert.True(t, errors.Is(err, ErrCharacterNotFound))
	assert.False(t, errors.Is(err, ErrCharacterAlreadyExists))
	assert.EqualError(t, err, "Character with name Conan not found in current account.")

	var gsErr *Error
	require.True(t, errors.As(err, &gsErr))
	assert.Equal(t, KindCharacterNotFound, gsErr.Kind)
	assert.Equal(t, "CharacterNotFound", gsErr.Kind.String())

	assert.EqualError(t, errOwnerOnly(), "Only owner may call this function.")
	assert.EqualError(t, errChapterNotStarted(), "Can't attempt to validate chapter without first starting the match.")
	assert.EqualError(t, errAccountAlreadyRegistered("bob"), "Username bob is already registered in the database.")
	assert.Equal(t, "ErrorKind(99)", ErrorKind(99).String())
}
