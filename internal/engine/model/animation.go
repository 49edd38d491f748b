package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownClip is returned when a clip is not present on the mesh.
var ErrUnknownClip = errors.New("unknown animation clip")

// Animator tracks which clip of a mesh is selected and how long it has
// been playing. It only selects clips; the mesh is always drawn in its
// bind pose.
type Animator struct {
	clips   []string
	current string
	elapsed time.Duration
}

// NewAnimator creates an animator for a mesh's clips. The first clip, if
// any, is selected.
func NewAnimator(m *Mesh) *Animator {
	a := &Animator{}
	if m == nil {
		return a
	}
	a.clips = append(a.clips, m.Animations...)
	if len(a.clips) > 0 {
		a.current = a.clips[0]
	}
	return a
}

// Play selects a clip by name and restarts its clock.
func (a *Animator) Play(name string) error {
	for _, c := range a.clips {
		if c == name {
			a.current = name
			a.elapsed = 0
			return nil
		}
	}
	return fmt.Errorf("%w: %q (have %d clips)", ErrUnknownClip, name, len(a.clips))
}

// Advance moves the clock of the current clip forward.
func (a *Animator) Advance(dt time.Duration) {
	if a.current == "" || dt <= 0 {
		return
	}
	a.elapsed += dt
}

// Current returns the selected clip name, or "" when the mesh has none.
func (a *Animator) Current() string {
	return a.current
}

// Elapsed returns how long the current clip has been playing.
func (a *Animator) Elapsed() time.Duration {
	return a.elapsed
}
