// Package viewer is the model viewer shell: it owns the camera, the
// current mesh and the render surface, and turns show requests into
// pipeline loads.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/aowow-viewer/internal/config"
	"github.com/Faultbox/aowow-viewer/internal/engine/camera"
	"github.com/Faultbox/aowow-viewer/internal/engine/model"
	"github.com/Faultbox/aowow-viewer/internal/engine/texture"
	"github.com/Faultbox/aowow-viewer/internal/logger"
	"github.com/Faultbox/aowow-viewer/internal/lookup"
	"github.com/Faultbox/aowow-viewer/internal/pipeline"
)

// ErrDisposed is returned by operations on a disposed viewer.
var ErrDisposed = errors.New("viewer disposed")

// Option configures a Viewer.
type Option func(*options)

type options struct {
	client     *lookup.Client
	httpClient *http.Client
}

// WithClient shares an existing resolution client.
func WithClient(c *lookup.Client) Option {
	return func(o *options) { o.client = c }
}

// WithHTTPClient sets the HTTP client for a new resolution client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// Viewer shows one model at a time.
type Viewer struct {
	id       string
	cfg      config.ViewerConfig
	log      *zap.Logger
	client   *lookup.Client
	pipeline *pipeline.Pipeline
	camera   *camera.Controller
	surface  Surface
	done     chan struct{}

	mu        sync.Mutex
	mesh      *model.Mesh
	animator  *model.Animator
	request   *lookup.ModelRequest
	loading   bool
	width     int
	height    int
	lastFrame time.Time
	frames    uint64
	disposed  bool
}

// New creates a viewer. surface may be nil for a headless viewer that
// loads but never draws.
func New(cfg config.ViewerConfig, surface Surface, opts ...Option) (*Viewer, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	client := o.client
	if client == nil {
		var err error
		client, err = lookup.NewClient(lookup.Options{
			BaseURL:      cfg.BaseURL,
			AssetVersion: cfg.AssetVersion,
			Timeout:      cfg.FetchTimeout,
			HTTPClient:   o.httpClient,
		})
		if err != nil {
			return nil, fmt.Errorf("creating lookup client: %w", err)
		}
	}

	debounce := cfg.Debounce
	if debounce == 0 {
		debounce = -1
	}
	camCfg := camera.DefaultConfig()
	if cfg.MinDistance > 0 {
		camCfg.MinDistance = cfg.MinDistance
	}
	if cfg.MaxDistance > 0 {
		camCfg.MaxDistance = cfg.MaxDistance
	}
	if cfg.FOV > 0 {
		camCfg.FOV = cfg.FOV
	}
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = 60
	}

	id := uuid.NewString()
	v := &Viewer{
		id:       id,
		cfg:      cfg,
		log:      logger.Named("viewer").With(zap.String("viewer", id)),
		client:   client,
		pipeline: pipeline.New(client, pipeline.Config{FetchTimeout: cfg.FetchTimeout, Debounce: debounce}),
		camera:   camera.NewController(camCfg),
		surface:  surface,
		done:     make(chan struct{}),
		width:    1,
		height:   1,
	}
	v.log.Debug("viewer created", zap.String("base", cfg.BaseURL))
	return v, nil
}

// ID returns the instance id used in logs.
func (v *Viewer) ID() string {
	return v.id
}

// Client returns the resolution client.
func (v *Viewer) Client() *lookup.Client {
	return v.client
}

// Camera returns the orbit controller. It is safe to drive from an input
// goroutine while the viewer renders.
func (v *Viewer) Camera() *camera.Controller {
	return v.camera
}

// Show loads req, superseding any load in flight. It returns the new
// session, or nil after Dispose.
func (v *Viewer) Show(req lookup.ModelRequest) *pipeline.Session {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.show(req)
}

func (v *Viewer) show(req lookup.ModelRequest) *pipeline.Session {
	if v.disposed {
		return nil
	}
	req.Equipment = append([]int(nil), req.Equipment...)
	v.request = &req
	s := v.pipeline.Load(req, (*sink)(v))
	v.log.Debug("show", zap.Stringer("request", req), zap.Uint64("session", s.ID()))
	return s
}

// Hide cancels any load and disposes the current mesh.
func (v *Viewer) Hide() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed {
		return
	}
	v.pipeline.Cancel()
	v.replaceMesh(nil)
	v.request = nil
	v.loading = false
}

// SetAnimation selects a clip on the current mesh.
func (v *Viewer) SetAnimation(name string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed {
		return ErrDisposed
	}
	if v.animator == nil {
		v.log.Warn("no model for animation", zap.String("clip", name))
		return model.ErrUnknownClip
	}
	if err := v.animator.Play(name); err != nil {
		v.log.Warn("animation not available", zap.String("clip", name), zap.Error(err))
		return err
	}
	return nil
}

// SetRace reloads the current character with another race. It does
// nothing unless a character is shown.
func (v *Viewer) SetRace(race int) *pipeline.Session {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.showingCharacter() {
		return nil
	}
	return v.show(v.request.WithRace(race))
}

// SetSex reloads the current character with another sex. It does nothing
// unless a character is shown.
func (v *Viewer) SetSex(sex int) *pipeline.Session {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.showingCharacter() {
		return nil
	}
	return v.show(v.request.WithSex(sex))
}

func (v *Viewer) showingCharacter() bool {
	if v.disposed || v.request == nil || v.request.Type != lookup.TypeCharacter {
		v.log.Debug("appearance change ignored: not showing a character")
		return false
	}
	return true
}

// ResetCamera restores the default orbit and frames the current mesh.
func (v *Viewer) ResetCamera() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.camera.Reset()
	if v.mesh != nil {
		v.camera.FitToBounds(mgl32.Vec3(v.mesh.Bounds.Min), mgl32.Vec3(v.mesh.Bounds.Max))
	}
}

// Request returns the last shown request.
func (v *Viewer) Request() (lookup.ModelRequest, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.request == nil {
		return lookup.ModelRequest{}, false
	}
	return *v.request, true
}

// Loading reports whether a load is in flight.
func (v *Viewer) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// CurrentMesh returns the displayed mesh, or nil.
func (v *Viewer) CurrentMesh() *model.Mesh {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mesh
}

// Frames returns how many frames have been rendered.
func (v *Viewer) Frames() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frames
}

// Resize updates the output size and the camera aspect.
func (v *Viewer) Resize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed || width <= 0 || height <= 0 {
		return
	}
	v.width, v.height = width, height
	if v.surface != nil {
		v.surface.Resize(width, height)
	}
}

// Run renders at the configured frame rate until ctx is done or the
// viewer is disposed.
func (v *Viewer) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(v.cfg.FrameRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-v.done:
			return nil
		case <-ticker.C:
			if err := v.RenderFrame(); err != nil {
				if errors.Is(err, ErrDisposed) {
					return nil
				}
				v.log.Warn("render failed", zap.Error(err))
			}
		}
	}
}

// RenderFrame advances animation and draws one frame. Every call draws;
// there is no dirty tracking.
func (v *Viewer) RenderFrame() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed {
		return ErrDisposed
	}

	now := time.Now()
	if v.animator != nil && !v.lastFrame.IsZero() {
		v.animator.Advance(now.Sub(v.lastFrame))
	}
	v.lastFrame = now
	v.frames++

	if v.surface == nil {
		return nil
	}
	return v.surface.Render(v.frame())
}

func (v *Viewer) frame() Frame {
	f := Frame{
		Mesh:       v.mesh,
		View:       v.camera.ViewMatrix(),
		Projection: v.camera.ProjectionMatrix(float32(v.width) / float32(v.height)),
		Eye:        v.camera.Position(),
		Width:      v.width,
		Height:     v.height,
		Loading:    v.loading,
	}
	if v.animator != nil {
		f.Animation = v.animator.Current()
		f.AnimTime = v.animator.Elapsed()
	}
	return f
}

// Dispose stops the loop, makes every in-flight load stale, and releases
// the mesh and the surface. Later calls do nothing.
func (v *Viewer) Dispose() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed {
		return
	}
	v.disposed = true
	close(v.done)
	v.pipeline.Close()
	v.replaceMesh(nil)
	v.request = nil
	v.loading = false
	if v.surface != nil {
		v.surface.Release()
	}
	v.log.Debug("viewer disposed", zap.Uint64("frames", v.frames))
}

// Disposed reports whether Dispose has been called.
func (v *Viewer) Disposed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.disposed
}

// replaceMesh swaps the current mesh, disposing the old one first.
func (v *Viewer) replaceMesh(m *model.Mesh) {
	if v.mesh != nil && v.mesh != m {
		v.mesh.Dispose()
	}
	v.mesh = m
	v.animator = nil
	if m == nil {
		return
	}
	v.animator = model.NewAnimator(m)
	v.camera.FitToBounds(mgl32.Vec3(m.Bounds.Min), mgl32.Vec3(m.Bounds.Max))
}

// sink receives pipeline results. Every method re-checks staleness under
// the viewer lock.
type sink Viewer

func (s *sink) Begin(sess *pipeline.Session) {
	v := (*Viewer)(s)
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed || sess.Stale() {
		return
	}
	v.loading = true
}

func (s *sink) End(sess *pipeline.Session) {
	v := (*Viewer)(s)
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed || sess.Stale() {
		return
	}
	v.loading = false
}

func (s *sink) Commit(sess *pipeline.Session, m *model.Mesh) bool {
	v := (*Viewer)(s)
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed || sess.Stale() {
		return false
	}
	v.replaceMesh(m)
	v.log.Info("model shown",
		zap.Uint64("session", sess.ID()),
		zap.Stringer("request", sess.Request()),
		zap.Int("parts", len(m.Parts)))
	return true
}

func (s *sink) ApplyTexture(sess *pipeline.Session, t *texture.Texture) bool {
	v := (*Viewer)(s)
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed || sess.Stale() || v.mesh == nil {
		return false
	}
	v.mesh.SetTexture(t)
	return true
}
