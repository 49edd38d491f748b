// Package pipeline loads models for the viewer: resolve, fetch, parse,
// normalize, commit, then optionally apply a composite character texture.
//
// Every load starts a new Session and supersedes the previous one. Work
// for a superseded session stops at its next checkpoint and never reaches
// the Sink; its HTTP requests are cancelled through the session context.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/aowow-viewer/internal/assets"
	"github.com/Faultbox/aowow-viewer/internal/engine/model"
	"github.com/Faultbox/aowow-viewer/internal/engine/texture"
	"github.com/Faultbox/aowow-viewer/internal/logger"
	"github.com/Faultbox/aowow-viewer/internal/lookup"
	"github.com/Faultbox/aowow-viewer/pkg/formats"
)

// Pipeline errors.
var (
	ErrNetwork = errors.New("network error")
	ErrStale   = errors.New("load superseded")
)

// Defaults for Config.
const (
	DefaultFetchTimeout = 15 * time.Second
	DefaultDebounce     = 150 * time.Millisecond
)

// Sink receives the results of a session. Commit and ApplyTexture report
// whether they took ownership; a sink must refuse results for a stale
// session, and the pipeline disposes whatever is refused.
type Sink interface {
	Begin(s *Session)
	Commit(s *Session, m *model.Mesh) bool
	ApplyTexture(s *Session, t *texture.Texture) bool
	End(s *Session)
}

// Config holds pipeline timing.
type Config struct {
	FetchTimeout time.Duration // Per HTTP request
	Debounce     time.Duration // Quiet window before a character load starts
}

// Pipeline runs load sessions.
type Pipeline struct {
	client *lookup.Client
	assets *assets.Manager
	cfg    Config
	log    *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc

	generation atomic.Uint64
	closed     atomic.Bool
	wg         sync.WaitGroup
}

// New creates a pipeline that resolves through client. Zero config values
// take the defaults; a negative Debounce disables debouncing.
func New(client *lookup.Client, cfg Config) *Pipeline {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = DefaultDebounce
	}
	return &Pipeline{
		client: client,
		assets: assets.NewManager(client.HTTPClient(), cfg.FetchTimeout),
		cfg:    cfg,
		log:    logger.Named("pipeline"),
	}
}

// Assets returns the download manager.
func (p *Pipeline) Assets() *assets.Manager {
	return p.assets
}

// Load starts a session for req and returns immediately. The previous
// session becomes stale. After Close, the returned session is already stale.
func (p *Pipeline) Load(req lookup.ModelRequest, sink Sink) *Session {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	s := &Session{id: p.generation.Add(1), req: req, ctx: ctx, p: p}
	p.mu.Unlock()

	if p.closed.Load() {
		cancel()
		return s
	}

	p.wg.Add(1)
	go p.run(s, sink)
	return s
}

// Close makes every session stale and cancels in-flight requests. It does
// not wait for session goroutines; use Wait for that.
func (p *Pipeline) Close() {
	p.closed.Store(true)
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()
}

// Cancel makes the current session stale without closing the pipeline.
func (p *Pipeline) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation.Add(1)
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// Wait blocks until all session goroutines have returned.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

func (p *Pipeline) run(s *Session, sink Sink) {
	defer p.wg.Done()
	log := p.log.With(zap.Uint64("session", s.id), zap.Stringer("request", s.req))

	if s.Stale() {
		return
	}
	sink.Begin(s)
	defer sink.End(s)

	if s.req.Type == lookup.TypeCharacter && p.cfg.Debounce > 0 {
		t := time.NewTimer(p.cfg.Debounce)
		select {
		case <-t.C:
		case <-s.ctx.Done():
			t.Stop()
			return
		}
	}

	mesh, loaded, err := p.loadMesh(s, log)
	if err != nil {
		log.Debug("session dropped", zap.Error(err))
		return
	}
	if !sink.Commit(s, mesh) {
		mesh.Dispose()
		return
	}
	log.Info("model committed",
		zap.Int("vertices", mesh.VertexCount()),
		zap.Bool("placeholder", mesh.Placeholder),
		zap.Bool("fallback", mesh.Fallback))

	if loaded {
		p.applyComposite(s, sink, log)
	}
}

// loadMesh returns the mesh to commit. loaded is true only when the
// requested model itself was loaded. The only error is ErrStale.
func (p *Pipeline) loadMesh(s *Session, log *zap.Logger) (mesh *model.Mesh, loaded bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("load panicked, using placeholder", zap.Any("panic", r))
			mesh, loaded, err = Placeholder(s.req), false, nil
		}
	}()

	mesh, err = p.fetchModel(s, s.req)
	if errors.Is(err, ErrStale) {
		return nil, false, err
	}
	if err != nil && s.req.Type == lookup.TypeCharacter && s.req.Key() != lookup.DefaultCharacter.Key() {
		log.Warn("character load failed, trying default", zap.Error(err))
		mesh, err = p.fetchModel(s, lookup.DefaultCharacter)
		if errors.Is(err, ErrStale) {
			return nil, false, err
		}
		if err == nil {
			// The composite texture belongs to the requested race, not the default.
			return mesh, false, nil
		}
	}
	if err != nil {
		if mesh != nil {
			// Malformed asset: the parser's fallback box stands in.
			log.Warn("model failed to parse, using fallback", zap.Error(err))
			return mesh, false, nil
		}
		log.Warn("model unavailable, using placeholder", zap.Error(err))
		return Placeholder(s.req), false, nil
	}
	return mesh, true, nil
}

// fetchModel resolves, downloads, parses and normalizes one request. On a
// parse failure it returns the normalized fallback box along with the
// error, except for characters, where the caller retries instead.
func (p *Pipeline) fetchModel(s *Session, req lookup.ModelRequest) (*model.Mesh, error) {
	asset := p.client.Resolve(s.ctx, req)
	if err := s.check(); err != nil {
		return nil, err
	}
	if err := asset.Err(); err != nil {
		return nil, err
	}

	data, err := p.assets.Load(s.ctx, p.client.AssetURL(asset.Path))
	if err := s.check(); err != nil {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	raw, err := formats.ParseGLBOrFallback(data)
	hint := model.HintForCategory(asset.Category)
	if err != nil {
		if req.Type == lookup.TypeCharacter {
			return nil, err
		}
		return model.Normalize(raw, hint), err
	}
	if raw.Material.ImageErr != nil {
		p.log.Warn("embedded texture unreadable, drawing untextured",
			zap.Uint64("session", s.id),
			zap.String("path", asset.Path),
			zap.Error(raw.Material.ImageErr))
	}
	mesh := model.Normalize(raw, hint)
	if err := s.check(); err != nil {
		mesh.Dispose()
		return nil, err
	}
	return mesh, nil
}

// applyComposite fetches the composite texture for a committed character.
// Any failure leaves the mesh as it is.
func (p *Pipeline) applyComposite(s *Session, sink Sink, log *zap.Logger) {
	creq, ok := CompositeFor(s.req)
	if !ok {
		return
	}
	tex, err := p.fetchComposite(s, creq)
	if err != nil {
		if !errors.Is(err, ErrStale) {
			log.Warn("composite texture unavailable", zap.Stringer("composite", creq), zap.Error(err))
		}
		return
	}
	if !sink.ApplyTexture(s, tex) {
		tex.Dispose()
		return
	}
	w, h := tex.Size()
	log.Info("composite texture applied", zap.Int("width", w), zap.Int("height", h))
}

func (p *Pipeline) fetchComposite(s *Session, creq CompositeRequest) (*texture.Texture, error) {
	res, err := p.assets.Fetch(s.ctx, p.client.URL(CompositePath, creq.Query()))
	if err := s.check(); err != nil {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	if ct := res.ContentType; ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("%w: content type %s", texture.ErrNotImage, ct)
	}
	return texture.Decode("composite", res.Data)
}

// Placeholder is the stand-in shown when a request cannot be loaded. It
// is deterministic in the request.
func Placeholder(req lookup.ModelRequest) *model.Mesh {
	if req.Type.IsItem() {
		return model.ItemPlaceholder(req.DisplayID)
	}
	return model.Placeholder(req.Seed(), model.HintForCategory(req.Type.Category()))
}
