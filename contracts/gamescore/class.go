package gamescore

import (
	"encoding/json"
	"strings"

	"golang.org/x/text/cases"
)

// Class is the fixed set of character classes
type Class int

const (
	Druid Class = iota
	Priest
	Rogue
	Warrior
)

type classInfo struct {
	name string
	base statTriple
	rate statTriple
}

// statTriple is dexterity, strength, intelligence
type statTriple struct {
	dexterity    uint32
	strength     uint32
	intelligence uint32
}

var classTable = [...]classInfo{
	Druid:   {name: "Druid", base: statTriple{5, 7, 7}, rate: statTriple{2, 1, 2}},
	Priest:  {name: "Priest", base: statTriple{4, 5, 7}, rate: statTriple{2, 1, 1}},
	Rogue:   {name: "Rogue", base: statTriple{8, 4, 4}, rate: statTriple{1, 2, 1}},
	Warrior: {name: "Warrior", base: statTriple{4, 8, 4}, rate: statTriple{2, 1, 1}},
}

// ParseClass matches name against the class names, ignoring case
func ParseClass(name string) (Class, error) {
	fold := cases.Fold()
	key := fold.String(strings.TrimSpace(name))
	for c, info := range classTable {
		if fold.String(info.name) == key {
			return Class(c), nil
		}
	}
	return 0, errInvalidClassName(name)
}

func (c Class) valid() bool {
	return c >= 0 && int(c) < len(classTable)
}

func (c Class) String() string {
	if !c.valid() {
		return "Unknown"
	}
	return classTable[c].name
}

// ClassNames lists the accepted class names
func ClassNames() []string {
	out := make([]string, 0, len(classTable))
	for _, info := range classTable {
		out = append(out, info.name)
	}
	return out
}

func (c Class) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Class) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseClass(name)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
