package model

import (
	"github.com/Faultbox/aowow-viewer/pkg/formats"
)

// Hint is the entity category used to choose a default material.
type Hint int

const (
	HintGeneric Hint = iota
	HintCharacter
	HintItem
	HintSpell
)

// String returns the hint name.
func (h Hint) String() string {
	switch h {
	case HintCharacter:
		return "character"
	case HintItem:
		return "item"
	case HintSpell:
		return "spell"
	default:
		return "generic"
	}
}

// HintForCategory maps an asset category to a material hint.
// Creatures share the character skin material.
func HintForCategory(category string) Hint {
	switch category {
	case "character", "npc", "pet":
		return HintCharacter
	case "item":
		return HintItem
	case "spell":
		return HintSpell
	default:
		return HintGeneric
	}
}

// Material returns a fresh default material for the hint.
func (h Hint) Material() *Material {
	switch h {
	case HintCharacter:
		return &Material{
			Name:      "skin",
			Color:     formats.HexColor(0xC8A080),
			Metalness: 0,
			Roughness: 0.85,
		}
	case HintItem:
		return &Material{
			Name:      "metal",
			Color:     formats.HexColor(0xB0B0B8),
			Metalness: 0.7,
			Roughness: 0.3,
		}
	case HintSpell:
		return &Material{
			Name:      "spell",
			Color:     formats.HexColor(0x8080FF),
			Emissive:  [3]float32{0.2, 0.2, 0.5},
			Metalness: 0.1,
			Roughness: 0.5,
		}
	default:
		return &Material{
			Name:      "neutral",
			Color:     formats.HexColor(formats.FallbackColor),
			Metalness: formats.FallbackMetalness,
			Roughness: formats.FallbackRoughness,
		}
	}
}
