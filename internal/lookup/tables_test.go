package lookup

import "testing"

func TestNextRace(t *testing.T) {
	tests := []struct {
		id, step, want int
	}{
		{1, 1, 2},
		{8, 1, 10},
		{11, 1, 1},
		{1, -1, 11},
		{10, -1, 8},
		{9, 1, 2},
		{3, 0, 3},
		{2, 21, 3},
	}
	for _, tt := range tests {
		if got := NextRace(tt.id, tt.step); got != tt.want {
			t.Errorf("NextRace(%d, %d) = %d, want %d", tt.id, tt.step, got, tt.want)
		}
	}
}

func TestCharacterModel(t *testing.T) {
	tests := []struct {
		race, sex int
		want      string
	}{
		{2, 1, "orcfemale"},
		{10, 0, "bloodelfmale"},
		{9, 0, "humanmale"},
		{99, 7, "humanmale"},
	}
	for _, tt := range tests {
		if got := CharacterModel(tt.race, tt.sex); got != tt.want {
			t.Errorf("CharacterModel(%d, %d) = %q, want %q", tt.race, tt.sex, got, tt.want)
		}
	}
	if len(Races) != len(raceNames) {
		t.Errorf("Races has %d ids, table has %d", len(Races), len(raceNames))
	}
}
