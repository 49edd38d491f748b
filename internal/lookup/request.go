// Package lookup resolves model requests to asset paths.
package lookup

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotFound means a request resolved to no asset.
var ErrNotFound = errors.New("model not found")

// EntityType is the lookup service type code.
type EntityType int

const (
	TypeNPC        EntityType = 1
	TypeGameObject EntityType = 2
	TypeItem       EntityType = 3
	TypeItemSet    EntityType = 4
	TypePet        EntityType = 8
	TypeCharacter  EntityType = 16
)

// Valid reports whether t is a known type code.
func (t EntityType) Valid() bool {
	switch t {
	case TypeNPC, TypeGameObject, TypeItem, TypeItemSet, TypePet, TypeCharacter:
		return true
	}
	return false
}

// Category returns the asset directory for the type.
func (t EntityType) Category() string {
	switch t {
	case TypeGameObject:
		return CategoryObject
	case TypeItem, TypeItemSet:
		return CategoryItem
	case TypeCharacter:
		return CategoryCharacter
	default:
		return CategoryNPC
	}
}

// IsItem reports whether the type shows an item model.
func (t EntityType) IsItem() bool {
	return t == TypeItem || t == TypeItemSet
}

func (t EntityType) String() string {
	switch t {
	case TypeNPC:
		return "npc"
	case TypeGameObject:
		return "object"
	case TypeItem:
		return "item"
	case TypeItemSet:
		return "itemset"
	case TypePet:
		return "pet"
	case TypeCharacter:
		return "character"
	default:
		return "type(" + strconv.Itoa(int(t)) + ")"
	}
}

// Asset categories.
const (
	CategoryNPC       = "npc"
	CategoryObject    = "object"
	CategoryItem      = "item"
	CategoryCharacter = "character"
)

// Source tells how a path was chosen.
type Source string

const (
	SourceDBLookup   Source = "db_lookup"
	SourceFilesystem Source = "filesystem"
	SourceDirect     Source = "direct"
	SourceNotFound   Source = "not_found"
)

// ModelRequest describes what to show. It is immutable once built.
type ModelRequest struct {
	Type      EntityType
	DisplayID int
	Slot      *int
	Race      *int
	Sex       *int

	// Character appearance, used only for the composite texture.
	SkinIndex int
	Equipment []int
}

// IntPtr returns a pointer to v, for the optional request fields.
func IntPtr(v int) *int {
	return &v
}

func optional(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// SlotOr returns the slot, or 0 when unset.
func (r ModelRequest) SlotOr() int { return optional(r.Slot) }

// RaceOr returns the race, or 0 when unset.
func (r ModelRequest) RaceOr() int { return optional(r.Race) }

// SexOr returns the sex, or 0 when unset.
func (r ModelRequest) SexOr() int { return optional(r.Sex) }

// Key identifies the resolution result. Appearance fields do not change
// which model is chosen and are left out.
func (r ModelRequest) Key() string {
	if r.Type == TypeCharacter {
		return fmt.Sprintf("%d:%d:%d", r.Type, r.RaceOr(), r.SexOr())
	}
	return fmt.Sprintf("%d:%d:%d:%d:%d", r.Type, r.DisplayID, r.SlotOr(), r.RaceOr(), r.SexOr())
}

// WithRace returns a copy with the race replaced.
func (r ModelRequest) WithRace(race int) ModelRequest {
	r.Race = IntPtr(race)
	r.Equipment = append([]int(nil), r.Equipment...)
	return r
}

// WithSex returns a copy with the sex replaced.
func (r ModelRequest) WithSex(sex int) ModelRequest {
	r.Sex = IntPtr(sex)
	r.Equipment = append([]int(nil), r.Equipment...)
	return r
}

// Seed is the deterministic placeholder seed for the request.
func (r ModelRequest) Seed() int {
	if r.Type == TypeCharacter {
		return r.RaceOr()*2 + r.SexOr()
	}
	return r.DisplayID
}

func (r ModelRequest) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s/%d", r.Type, r.DisplayID)
	if r.Type == TypeCharacter {
		fmt.Fprintf(&b, " race=%d sex=%d", r.RaceOr(), r.SexOr())
	}
	return b.String()
}

// ResolvedAsset is the outcome of resolving a request.
type ResolvedAsset struct {
	Path     string // Site-relative asset path, e.g. /models/npc/murloc.glb
	Exists   bool
	Category string
	Source   Source
	Model    string
}

// Err returns ErrNotFound when the asset does not exist.
func (a ResolvedAsset) Err() error {
	if !a.Exists {
		return fmt.Errorf("%w: %s", ErrNotFound, a.Category)
	}
	return nil
}

// Response is the /model-lookup JSON body.
type Response struct {
	Success   bool       `json:"success"`
	Type      EntityType `json:"type,omitempty"`
	DisplayID int        `json:"displayId"`
	Model     string     `json:"model,omitempty"`
	Path      string     `json:"path,omitempty"`
	Exists    bool       `json:"exists"`
	Source    Source     `json:"source,omitempty"`
	Error     string     `json:"error,omitempty"`
}
