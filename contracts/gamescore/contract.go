// Package gamescore is a game backend contract: players register, create
// characters, play chapter matches for EXP and compete on a shared ranking.
package gamescore

import (
	"encoding/json"
	"fmt"

	"github.com/govm-net/gamescore/core"
	"github.com/govm-net/gamescore/vm"
)

// Kind is the name the contract registers with the engine
const Kind = "gamescore"

func init() {
	vm.Register(Kind, New)
}

// Contract exposes the JSON entry points
type Contract struct{}

func New() vm.Contract {
	return &Contract{}
}

func (c *Contract) Functions() map[string]vm.Handler {
	return map[string]vm.Handler{
		"register_user":             c.RegisterUser,
		"check_status":              c.CheckStatus,
		"create_character":          c.CreateCharacter,
		"load_character":            c.LoadCharacter,
		"get_ranking":               c.GetRanking,
		"start_match":               c.StartMatch,
		"next_match":                c.NextMatch,
		"report_match":              c.ReportMatch,
		"set_max_highscore_players": c.SetMaxHighscorePlayers,
	}
}

func decodeArgs(params []byte, v any) error {
	if err := json.Unmarshal(params, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// RegisterUser adds the caller as a player
func (c *Contract) RegisterUser(ctx core.Context, _ []byte) (any, error) {
	ctx.Log("register_user", "account", ctx.Sender())

	if _, err := NewRegistry(ctx).Register(); err != nil {
		return nil, err
	}

	ctx.Log("user_registered", "account", ctx.Sender())
	return nil, nil
}

// CheckStatus returns the caller's player with its characters
func (c *Contract) CheckStatus(ctx core.Context, _ []byte) (any, error) {
	player, err := NewRegistry(ctx).Load()
	if err != nil {
		return nil, err
	}
	return player.View()
}

// CreateCharacter args: {"name": string, "class": "Druid"|"Priest"|"Rogue"|"Warrior"}
func (c *Contract) CreateCharacter(ctx core.Context, params []byte) (any, error) {
	var args struct {
		Name  string `json:"name"`
		Class string `json:"class"`
	}
	if err := decodeArgs(params, &args); err != nil {
		return nil, err
	}
	ctx.Log("create_character", "account", ctx.Sender(), "name", args.Name, "class", args.Class)

	class, err := ParseClass(args.Class)
	if err != nil {
		return nil, err
	}
	character, err := NewCharacter(args.Name, class)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry(ctx)
	player, err := registry.Load()
	if err != nil {
		return nil, err
	}
	if err := player.AssignCharacter(character); err != nil {
		return nil, err
	}
	if err := registry.Save(player); err != nil {
		return nil, err
	}

	ctx.Log("character_created", "account", ctx.Sender(), "name", character.Name)
	return character, nil
}

// LoadCharacter args: {"name": string}
func (c *Contract) LoadCharacter(ctx core.Context, params []byte) (any, error) {
	var args struct {
		Name string `json:"name"`
	}
	if err := decodeArgs(params, &args); err != nil {
		return nil, err
	}

	player, err := NewRegistry(ctx).Load()
	if err != nil {
		return nil, err
	}
	return player.LoadCharacter(args.Name)
}

// GetRanking returns the leaderboard, highest first
func (c *Contract) GetRanking(ctx core.Context, _ []byte) (any, error) {
	ranking, err := loadRanking(ctx)
	if err != nil {
		return nil, err
	}
	return ranking.Entries(), nil
}

// StartMatch starts the caller's current chapter and returns it
func (c *Contract) StartMatch(ctx core.Context, _ []byte) (any, error) {
	ctx.Log("start_match", "account", ctx.Sender())

	registry := NewRegistry(ctx)
	player, err := registry.Load()
	if err != nil {
		return nil, err
	}
	chapter := player.StartMatch(ctx.BlockTime())
	if err := registry.Save(player); err != nil {
		return nil, err
	}
	return chapter, nil
}

// NextMatch moves the caller to the next chapter and returns it
func (c *Contract) NextMatch(ctx core.Context, _ []byte) (any, error) {
	registry := NewRegistry(ctx)
	player, err := registry.Load()
	if err != nil {
		return nil, err
	}
	chapter := player.NextMatch()
	if err := registry.Save(player); err != nil {
		return nil, err
	}

	ctx.Log("next_match", "account", ctx.Sender(), "chapter", chapter.Stage.String())
	return chapter, nil
}

// ReportMatch args: {"character": string, "score": uint32}. Returns whether
// the score entered the ranking; only a new player high score is offered.
func (c *Contract) ReportMatch(ctx core.Context, params []byte) (any, error) {
	var args struct {
		Character string `json:"character"`
		Score     uint32 `json:"score"`
	}
	if err := decodeArgs(params, &args); err != nil {
		return nil, err
	}
	ctx.Log("report_match", "account", ctx.Sender(), "character", args.Character, "score", args.Score)

	registry := NewRegistry(ctx)
	player, err := registry.Load()
	if err != nil {
		return nil, err
	}
	highScore, err := player.ReportMatch(args.Character, args.Score)
	if err != nil {
		return nil, err
	}
	if err := registry.Save(player); err != nil {
		return nil, err
	}

	ranking, err := loadRanking(ctx)
	if err != nil {
		return nil, err
	}
	entered := ranking.CheckHighScore(highScore)
	if entered {
		ctx.Log("new_high_score", "account", ctx.Sender(), "score", highScore.Score)
		if err := saveRanking(ctx, ranking); err != nil {
			return nil, err
		}
	}
	return entered, nil
}

// SetMaxHighscorePlayers args: {"max_size": int}. Signer must be the
// contract account.
func (c *Contract) SetMaxHighscorePlayers(ctx core.Context, params []byte) (any, error) {
	if ctx.Signer() != ctx.ContractAccount() {
		return nil, errOwnerOnly()
	}

	var args struct {
		MaxSize uint32 `json:"max_size"`
	}
	if err := decodeArgs(params, &args); err != nil {
		return nil, err
	}

	ranking, err := loadRanking(ctx)
	if err != nil {
		return nil, err
	}
	if err := ranking.SetMaxSize(int(args.MaxSize)); err != nil {
		return nil, err
	}
	if err := saveRanking(ctx, ranking); err != nil {
		return nil, err
	}

	ctx.Log("set_max_highscore_players", "max_size", args.MaxSize)
	return nil, nil
}
