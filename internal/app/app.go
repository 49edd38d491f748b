// Package app runs the desktop model viewer: an SDL window driving a
// viewer with a GL surface.
package app

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/aowow-viewer/internal/config"
	"github.com/Faultbox/aowow-viewer/internal/engine/debug"
	"github.com/Faultbox/aowow-viewer/internal/engine/input"
	"github.com/Faultbox/aowow-viewer/internal/engine/renderer"
	"github.com/Faultbox/aowow-viewer/internal/engine/window"
	"github.com/Faultbox/aowow-viewer/internal/logger"
	"github.com/Faultbox/aowow-viewer/internal/lookup"
	"github.com/Faultbox/aowow-viewer/internal/viewer"
)

// App is the desktop viewer.
type App struct {
	cfg     *config.Config
	log     *zap.Logger
	running bool
	window  *window.Window
	surface *renderer.GLSurface
	input   *input.Input
	viewer  *viewer.Viewer
	shots   *debug.Screenshots
	clip    int

	captureNext bool
}

// New opens the window and creates the viewer.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg:   cfg,
		log:   logger.Named("app"),
		shots: debug.NewScreenshots("screenshots", "viewer"),
	}
	a.log.Info("initializing viewer",
		zap.String("base", cfg.Viewer.BaseURL),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height))

	var err error
	a.window, err = window.New(cfg.Window)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The surface needs the GL context the window just created.
	dw, dh := a.window.DrawableSize()
	a.surface, err = renderer.New(dw, dh)
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create surface: %w", err)
	}

	a.viewer, err = viewer.New(cfg.Viewer, a.surface)
	if err != nil {
		a.surface.Release()
		a.window.Close()
		return nil, fmt.Errorf("failed to create viewer: %w", err)
	}
	a.viewer.Resize(dw, dh)

	ww, wh := a.window.Size()
	a.input = input.New(ww, wh)

	a.log.Info("viewer initialized", zap.String("viewer", a.viewer.ID()))
	return a, nil
}

// Viewer returns the viewer the app drives.
func (a *App) Viewer() *viewer.Viewer {
	return a.viewer
}

// Show loads req into the viewer.
func (a *App) Show(req lookup.ModelRequest) {
	a.clip = 0
	a.viewer.Show(req)
}

// Run renders until the window is closed or Escape is pressed. It must be
// called on the main thread.
func (a *App) Run() error {
	a.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	a.log.Info("starting render loop")

	for a.running {
		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		if a.input.Update() {
			a.running = false
			break
		}
		a.handleEvents()
		a.input.Drive(a.viewer.Camera())

		if err := a.viewer.RenderFrame(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		if a.captureNext {
			a.captureNext = false
			a.capture()
		}
		a.window.SwapBuffers()
		a.window.SetStatus(a.status())

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps", zap.Int("count", frameCount), zap.Duration("dt", dt))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (a *App) handleEvents() {
	for _, event := range a.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			dw, dh := a.window.DrawableSize()
			a.viewer.Resize(dw, dh)
		case input.EventKeyDown:
			a.handleKey(event.Key)
		}
	}
}

func (a *App) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		a.running = false
	case sdl.SCANCODE_R:
		a.viewer.ResetCamera()
	case sdl.SCANCODE_LEFT, sdl.SCANCODE_RIGHT:
		req, ok := a.viewer.Request()
		if !ok {
			return
		}
		step := 1
		if key == sdl.SCANCODE_LEFT {
			step = -1
		}
		a.clip = 0
		a.viewer.SetRace(lookup.NextRace(req.RaceOr(), step))
	case sdl.SCANCODE_TAB:
		req, ok := a.viewer.Request()
		if !ok {
			return
		}
		a.clip = 0
		a.viewer.SetSex(1 - req.SexOr()&1)
	case sdl.SCANCODE_SPACE:
		a.nextClip()
	case sdl.SCANCODE_B:
		a.surface.SetShowBounds(!a.surface.ShowBounds())
	case sdl.SCANCODE_F12:
		a.captureNext = true
	}
}

// capture saves the frame just rendered, before it is swapped out.
func (a *App) capture() {
	pixels, w, h := a.surface.ReadPixels()
	name, err := a.shots.Save(pixels, w, h)
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("file", name))
}

// nextClip cycles the current mesh's animations.
func (a *App) nextClip() {
	m := a.viewer.CurrentMesh()
	if m == nil || len(m.Animations) == 0 {
		return
	}
	a.clip = (a.clip + 1) % len(m.Animations)
	_ = a.viewer.SetAnimation(m.Animations[a.clip])
}

func (a *App) status() string {
	if a.viewer.Loading() {
		return "loading..."
	}
	req, ok := a.viewer.Request()
	if !ok {
		return ""
	}
	return req.String()
}

// Close disposes the viewer and closes the window.
func (a *App) Close() {
	a.log.Info("closing viewer")

	if a.viewer != nil {
		a.viewer.Dispose()
	}
	if a.window != nil {
		a.window.Close()
	}
}
