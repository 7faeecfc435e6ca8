package gamescore

import (
	"errors"
	"fmt"

	"github.com/govm-net/gamescore/core"
)

// Storage layout
const (
	playersPrefix        = "players"
	charactersPrefix     = "characters"
	characterNamesPrefix = "character_names"
	rankingKey           = "ranking"
)

// Player holds the state of one account. Characters live in their own
// collections so a player record stays small.
type Player struct {
	Name          core.AccountID `json:"name"`
	HighScore     *HighScore     `json:"high_score"`
	LatestChapter Chapter        `json:"latest_chapter"`

	// by name, for O(1) lookups
	characters *core.LookupMap[Character]
	// names, for listing
	characterNames *core.UnorderedSet
}

// PlayerView is what check_status returns
type PlayerView struct {
	Name       core.AccountID `json:"name"`
	HighScore  *HighScore     `json:"high_score"`
	Characters []Character    `json:"characters"`
}

func newPlayer(ctx core.Context, account core.AccountID) *Player {
	p := &Player{
		Name:          account,
		LatestChapter: NewChapter(),
	}
	p.attach(ctx)
	return p
}

func (p *Player) attach(ctx core.Context) {
	account := core.KeySegment(p.Name.String())
	p.characters = core.NewLookupMap[Character](ctx, charactersPrefix+"/"+account)
	p.characterNames = core.NewUnorderedSet(ctx, characterNamesPrefix+"/"+account)
}

// LoadCharacter returns a copy of the named character
func (p *Player) LoadCharacter(name string) (*Character, error) {
	character, ok, err := p.characters.Get(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errCharacterNotFound(name)
	}
	return &character, nil
}

func (p *Player) saveCharacter(character *Character) error {
	exists, err := p.characters.Contains(character.Name)
	if err != nil {
		return err
	}
	if !exists {
		return errCharacterNotFound(character.Name)
	}
	_, err = p.characters.Insert(character.Name, *character)
	return err
}

// AssignCharacter adds a new character to the player
func (p *Player) AssignCharacter(character *Character) error {
	exists, err := p.characters.Contains(character.Name)
	if err != nil {
		return err
	}
	if exists {
		return errCharacterAlreadyExists(character.Name)
	}

	existed, err := p.characters.Insert(character.Name, *character)
	if err != nil {
		return err
	}
	core.Request(!existed)

	if _, err := p.characterNames.Insert(character.Name); err != nil {
		return err
	}
	return nil
}

// StartMatch starts the timer of the current chapter
func (p *Player) StartMatch(now int64) Chapter {
	return p.LatestChapter.StartMatch(now)
}

// NextMatch moves to the next chapter
func (p *Player) NextMatch() Chapter {
	p.LatestChapter.NextMatch()
	return p.LatestChapter
}

// ReportMatch ends the running match of the named character: it rewards EXP,
// updates the character and player high scores and saves the character.
// It returns the player high score when this match set a new one.
func (p *Player) ReportMatch(name string, score uint32) (*HighScore, error) {
	character, err := p.LoadCharacter(name)
	if err != nil {
		return nil, err
	}

	exp, err := p.LatestChapter.ValidateMatch(character, score)
	if err != nil {
		return nil, err
	}

	// snapshot before the reward
	candidate := character.CheckHighScore(score, p.Name)
	highScore := UpdateHighScore(&p.HighScore, candidate)

	character.RewardExp(exp)
	if err := p.saveCharacter(character); err != nil {
		return nil, err
	}
	return highScore, nil
}

// View collects the player and all of its characters
func (p *Player) View() (*PlayerView, error) {
	names, err := p.characterNames.Elements()
	if err != nil {
		return nil, err
	}

	view := &PlayerView{
		Name:       p.Name,
		HighScore:  p.HighScore,
		Characters: make([]Character, 0, len(names)),
	}
	for _, name := range names {
		character, err := p.LoadCharacter(name)
		if err != nil {
			return nil, fmt.Errorf("character index out of sync: %w", err)
		}
		view.Characters = append(view.Characters, *character)
	}
	return view, nil
}

// Registry maps accounts to players. The caller is always ctx.Sender().
type Registry struct {
	ctx     core.Context
	players *core.LookupMap[Player]
}

func NewRegistry(ctx core.Context) *Registry {
	return &Registry{
		ctx:     ctx,
		players: core.NewLookupMap[Player](ctx, playersPrefix),
	}
}

func (r *Registry) isOwner() bool {
	return r.ctx.Sender() == r.ctx.ContractAccount()
}

// Register creates the caller's player. The contract account cannot play.
func (r *Registry) Register() (*Player, error) {
	account := r.ctx.Sender()
	exists, err := r.players.Contains(account.String())
	if err != nil {
		return nil, err
	}
	if exists || r.isOwner() {
		return nil, errAccountAlreadyRegistered(account)
	}

	player := newPlayer(r.ctx, account)
	existed, err := r.players.Insert(account.String(), *player)
	if err != nil {
		return nil, err
	}
	core.Request(!existed)
	return player, nil
}

// Load returns the caller's player
func (r *Registry) Load() (*Player, error) {
	account := r.ctx.Sender()
	player, ok, err := r.players.Get(account.String())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errUserNotRegistered(account)
	}
	player.attach(r.ctx)
	return &player, nil
}

// Save stores the caller's player, which must already be registered
func (r *Registry) Save(player *Player) error {
	account := r.ctx.Sender()
	exists, err := r.players.Contains(account.String())
	if err != nil {
		return err
	}
	if !exists {
		return errAccountNotRegistered(account)
	}
	_, err = r.players.Insert(account.String(), *player)
	return err
}

func loadRanking(ctx core.Context) (*Ranking, error) {
	ranking := NewRanking()
	err := ctx.Get(rankingKey, ranking)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("load ranking: %w", err)
	}
	return ranking, nil
}

func saveRanking(ctx core.Context, ranking *Ranking) error {
	if err := ctx.Set(rankingKey, ranking); err != nil {
		return fmt.Errorf("save ranking: %w", err)
	}
	return nil
}
