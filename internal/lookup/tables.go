package lookup

import "slices"

// Race ids to model name prefixes. Id 9 is unused.
var raceNames = map[int]string{
	1:  "human",
	2:  "orc",
	3:  "dwarf",
	4:  "nightelf",
	5:  "scourge",
	6:  "tauren",
	7:  "gnome",
	8:  "troll",
	10: "bloodelf",
	11: "draenei",
}

var sexNames = map[int]string{
	0: "male",
	1: "female",
}

// Fallbacks for unknown ids.
const (
	DefaultRace = 1
	DefaultSex  = 0
)

// DefaultCharacter is the known-good character retried when a character
// model fails to load.
var DefaultCharacter = ModelRequest{
	Type: TypeCharacter,
	Race: IntPtr(DefaultRace),
	Sex:  IntPtr(DefaultSex),
}

// RaceName returns the model name prefix for a race, or "human".
func RaceName(id int) string {
	if name, ok := raceNames[id]; ok {
		return name
	}
	return raceNames[DefaultRace]
}

// SexName returns "male" or "female". Unknown ids are "male".
func SexName(id int) string {
	if name, ok := sexNames[id]; ok {
		return name
	}
	return sexNames[DefaultSex]
}

// KnownRace reports whether id is in the race table.
func KnownRace(id int) bool {
	_, ok := raceNames[id]
	return ok
}

// Races lists the known race ids in ascending order.
var Races = []int{1, 2, 3, 4, 5, 6, 7, 8, 10, 11}

// NextRace steps through Races from id, wrapping at either end. An
// unknown id steps from DefaultRace.
func NextRace(id, step int) int {
	i := slices.Index(Races, id)
	if i < 0 {
		i = slices.Index(Races, DefaultRace)
	}
	n := len(Races)
	return Races[((i+step)%n+n)%n]
}

// CharacterModel returns the model name for a race and sex, e.g. "orcfemale".
func CharacterModel(race, sex int) string {
	return RaceName(race) + SexName(sex)
}

// AssetPath returns the site-relative path of a model.
func AssetPath(category, model string) string {
	return "/models/" + category + "/" + model + ".glb"
}
