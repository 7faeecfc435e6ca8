package gamescore

// Stats are derived from the class table and the character level
type Stats struct {
	Dexterity        uint32 `json:"dexterity"`
	DexterityRate    uint32 `json:"dexterity_rate"`
	DexterityBase    uint32 `json:"dexterity_base"`
	Strength         uint32 `json:"strength"`
	StrengthRate     uint32 `json:"strength_rate"`
	StrengthBase     uint32 `json:"strength_base"`
	Intelligence     uint32 `json:"intelligence"`
	IntelligenceRate uint32 `json:"intelligence_rate"`
	IntelligenceBase uint32 `json:"intelligence_base"`
}

// NewStats returns the level 1 stats of class, equal to its base values
func NewStats(class Class) Stats {
	info := classTable[class]
	return Stats{
		Dexterity:        info.base.dexterity,
		DexterityRate:    info.rate.dexterity,
		DexterityBase:    info.base.dexterity,
		Strength:         info.base.strength,
		StrengthRate:     info.rate.strength,
		StrengthBase:     info.base.strength,
		Intelligence:     info.base.intelligence,
		IntelligenceRate: info.rate.intelligence,
		IntelligenceBase: info.base.intelligence,
	}
}

// Update recomputes every stat as base + rate*level
func (s *Stats) Update(level uint32) {
	s.Dexterity = s.DexterityBase + s.DexterityRate*level
	s.Strength = s.StrengthBase + s.StrengthRate*level
	s.Intelligence = s.IntelligenceBase + s.IntelligenceRate*level
}
