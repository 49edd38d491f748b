// Package input polls SDL2 events and drives the orbit camera from them.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/aowow-viewer/internal/engine/camera"
)

// touchMouseID marks mouse events SDL synthesizes from touches.
const touchMouseID = 0xFFFFFFFF

// wheelScale converts one SDL wheel notch into browser-style delta units.
const wheelScale = 100

// EventType identifies a processed event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventWheel
	EventTouchDown
	EventTouchMove
	EventTouchUp
)

// Event is a processed input event. Touch coordinates are in window
// coordinates, like mouse coordinates.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	X, Y   float32
	Button camera.Button
	Mods   camera.Modifiers
	Wheel  float32 // Positive zooms out
	Finger int64
}

// Camera is the part of the orbit controller input drives.
type Camera interface {
	PointerDown(b camera.Button, x, y float32, mods camera.Modifiers)
	PointerMove(x, y float32)
	PointerUp()
	Wheel(deltaY float32)
	TouchStart(touches []camera.Touch)
	TouchMove(touches []camera.Touch)
	TouchEnd(touches []camera.Touch)
}

// Input collects the events of one frame.
type Input struct {
	events []Event
	width  int
	height int
}

// New creates an input handler for a window of the given size.
func New(width, height int) *Input {
	return &Input{
		events: make([]Event, 0, 16),
		width:  width,
		height: height,
	}
}

// Update polls SDL events and converts them. It returns true when the
// window was asked to close.
func (i *Input) Update() bool {
	i.events = i.events[:0]
	quit := false

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.push(Event{Type: EventQuit})
			quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.width, i.height = int(e.Data1), int(e.Data2)
				i.push(Event{Type: EventWindowResize, Width: i.width, Height: i.height})
			}

		case *sdl.KeyboardEvent:
			ev := Event{Key: e.Keysym.Scancode, Mods: modifiers(sdl.Keymod(e.Keysym.Mod))}
			if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
				ev.Type = EventKeyDown
				i.push(ev)
			} else if e.Type == sdl.KEYUP {
				ev.Type = EventKeyUp
				i.push(ev)
			}

		case *sdl.MouseMotionEvent:
			if e.Which == touchMouseID {
				continue
			}
			i.push(Event{Type: EventMouseMove, X: float32(e.X), Y: float32(e.Y)})

		case *sdl.MouseButtonEvent:
			if e.Which == touchMouseID {
				continue
			}
			b, ok := button(e.Button)
			if !ok {
				continue
			}
			ev := Event{X: float32(e.X), Y: float32(e.Y), Button: b, Mods: modifiers(sdl.GetModState())}
			if e.Type == sdl.MOUSEBUTTONDOWN {
				ev.Type = EventMouseDown
			} else {
				ev.Type = EventMouseUp
			}
			i.push(ev)

		case *sdl.MouseWheelEvent:
			if e.Which == touchMouseID {
				continue
			}
			dy := float32(e.Y)
			if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
				dy = -dy
			}
			i.push(Event{Type: EventWheel, Wheel: -dy * wheelScale})

		case *sdl.TouchFingerEvent:
			ev := Event{
				Finger: int64(e.FingerID),
				X:      e.X * float32(i.width),
				Y:      e.Y * float32(i.height),
			}
			switch e.Type {
			case sdl.FINGERDOWN:
				ev.Type = EventTouchDown
			case sdl.FINGERMOTION:
				ev.Type = EventTouchMove
			case sdl.FINGERUP:
				ev.Type = EventTouchUp
			}
			i.push(ev)
		}
	}

	return quit
}

func (i *Input) push(e Event) {
	i.events = append(i.events, e)
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}

// Drive forwards this frame's pointer, wheel and touch events to cam.
func (i *Input) Drive(cam Camera) {
	for _, e := range i.events {
		switch e.Type {
		case EventMouseDown:
			cam.PointerDown(e.Button, e.X, e.Y, e.Mods)
		case EventMouseMove:
			cam.PointerMove(e.X, e.Y)
		case EventMouseUp:
			cam.PointerUp()
		case EventWheel:
			cam.Wheel(e.Wheel)
		case EventTouchDown:
			cam.TouchStart([]camera.Touch{e.touch()})
		case EventTouchMove:
			cam.TouchMove([]camera.Touch{e.touch()})
		case EventTouchUp:
			cam.TouchEnd([]camera.Touch{e.touch()})
		}
	}
}

func (e Event) touch() camera.Touch {
	return camera.Touch{ID: e.Finger, X: e.X, Y: e.Y}
}

func button(b uint8) (camera.Button, bool) {
	switch b {
	case sdl.BUTTON_LEFT:
		return camera.ButtonPrimary, true
	case sdl.BUTTON_MIDDLE:
		return camera.ButtonMiddle, true
	case sdl.BUTTON_RIGHT:
		return camera.ButtonSecondary, true
	}
	return 0, false
}

func modifiers(m sdl.Keymod) camera.Modifiers {
	var out camera.Modifiers
	if m&sdl.KMOD_SHIFT != 0 {
		out |= camera.ModShift
	}
	if m&sdl.KMOD_CTRL != 0 {
		out |= camera.ModCtrl
	}
	return out
}
