package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/aowow-viewer/internal/logger"
)

// maxLookupBody bounds the /model-lookup response read.
const maxLookupBody = 64 << 10

// DefaultAssetVersion is used when Options.AssetVersion is empty.
const DefaultAssetVersion = "1"

// Options configures a Client.
type Options struct {
	BaseURL      string        // Site root, e.g. http://127.0.0.1:8085
	AssetVersion string        // Cache-busting value appended as ?v=; defaults to DefaultAssetVersion
	Timeout      time.Duration // Per request
	HTTPClient   *http.Client  // Defaults to a new client
}

// Client resolves model requests against the lookup service and the asset
// store. Successful results are cached; concurrent identical requests share
// one resolution.
type Client struct {
	base    *url.URL
	version string
	timeout time.Duration
	http    *http.Client
	log     *zap.Logger

	mu    sync.RWMutex
	cache map[string]ResolvedAsset
	group singleflight.Group

	resolutions atomic.Int64
}

// NewClient creates a client for the site at opts.BaseURL.
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseURL)
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	version := opts.AssetVersion
	if version == "" {
		version = DefaultAssetVersion
	}
	return &Client{
		base:    base,
		version: version,
		timeout: timeout,
		http:    hc,
		log:     logger.Named("lookup"),
		cache:   make(map[string]ResolvedAsset),
	}, nil
}

// HTTPClient returns the underlying HTTP client.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Resolutions returns how many uncached resolutions have run.
func (c *Client) Resolutions() int64 {
	return c.resolutions.Load()
}

// Resolve maps a request to an asset. It never fails: every problem is
// reported as Source=not_found with Exists=false.
//
// A shared resolution runs detached from any one caller, so a caller that
// gives up does not fail the others waiting on the same key. A caller whose
// ctx ends first gets not_found.
func (c *Client) Resolve(ctx context.Context, req ModelRequest) ResolvedAsset {
	key := req.Key()

	c.mu.RLock()
	cached, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		c.resolutions.Add(1)
		asset := c.resolve(shared, req)
		if asset.Exists {
			c.mu.Lock()
			c.cache[key] = asset
			c.mu.Unlock()
		}
		return asset, nil
	})

	select {
	case res := <-ch:
		return res.Val.(ResolvedAsset)
	case <-ctx.Done():
		c.log.Debug("resolve abandoned", zap.Stringer("request", req), zap.Error(ctx.Err()))
		return notFound(req)
	}
}

// Forget drops all cached results.
func (c *Client) Forget() {
	c.mu.Lock()
	clear(c.cache)
	c.mu.Unlock()
}

func (c *Client) resolve(ctx context.Context, req ModelRequest) ResolvedAsset {
	if req.Type == TypeCharacter {
		return c.resolveCharacter(ctx, req)
	}
	return c.resolveRemote(ctx, req)
}

// resolveCharacter builds the path from the race and sex tables and only
// checks that the asset exists.
func (c *Client) resolveCharacter(ctx context.Context, req ModelRequest) ResolvedAsset {
	if req.Race != nil && !KnownRace(*req.Race) {
		c.log.Debug("unknown race, using default", zap.Int("race", *req.Race))
	}
	model := CharacterModel(req.RaceOr(), req.SexOr())
	asset := ResolvedAsset{
		Path:     AssetPath(CategoryCharacter, model),
		Category: CategoryCharacter,
		Source:   SourceDirect,
		Model:    model,
	}
	if !c.Exists(ctx, asset.Path) {
		c.log.Info("character model missing", zap.String("model", model))
		return notFound(req)
	}
	asset.Exists = true
	return asset
}

func (c *Client) resolveRemote(ctx context.Context, req ModelRequest) ResolvedAsset {
	resp, err := c.lookup(ctx, req)
	if err != nil {
		c.log.Warn("model lookup failed", zap.Stringer("request", req), zap.Error(err))
		return notFound(req)
	}
	if !resp.Success || resp.Path == "" || resp.Source == SourceNotFound {
		c.log.Info("no model for request", zap.Stringer("request", req), zap.String("error", resp.Error))
		return notFound(req)
	}
	if !c.Exists(ctx, resp.Path) {
		c.log.Info("looked-up model missing from asset store", zap.String("path", resp.Path))
		return notFound(req)
	}

	src := resp.Source
	if src == "" {
		src = SourceFilesystem
	}
	return ResolvedAsset{
		Path:     resp.Path,
		Exists:   true,
		Category: req.Type.Category(),
		Source:   src,
		Model:    resp.Model,
	}
}

// lookup calls GET /model-lookup.
func (c *Client) lookup(ctx context.Context, req ModelRequest) (*Response, error) {
	q := url.Values{}
	q.Set("type", strconv.Itoa(int(req.Type)))
	q.Set("displayId", strconv.Itoa(req.DisplayID))
	q.Set("slot", strconv.Itoa(req.SlotOr()))
	q.Set("race", strconv.Itoa(req.RaceOr()))
	q.Set("sex", strconv.Itoa(req.SexOr()))
	u := c.endpoint("/model-lookup", q)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxLookupBody))
	if err != nil {
		return nil, fmt.Errorf("read lookup response: %w", err)
	}
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode lookup response (status %d): %w", httpResp.StatusCode, err)
	}
	if httpResp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("lookup status %d: %s", httpResp.StatusCode, resp.Error)
	}
	return &resp, nil
}

// Exists reports whether the asset store answers HEAD for path with 2xx.
func (c *Client) Exists(ctx context.Context, path string) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.AssetURL(path), nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("HEAD failed", zap.String("path", path), zap.Error(err))
		return false
	}
	resp.Body.Close()
	return resp.StatusCode/100 == 2
}

// AssetURL returns the absolute URL for a site-relative path with the
// asset version appended as v=. Every asset URL carries a version.
func (c *Client) AssetURL(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		ref = &url.URL{Path: path}
	}
	u := ref
	if !ref.IsAbs() {
		u = c.endpoint(ref.Path, ref.Query())
	}
	q := u.Query()
	q.Set("v", c.version)
	u.RawQuery = q.Encode()
	return u.String()
}

// URL returns the absolute URL for a site-relative path and query,
// without the asset version.
func (c *Client) URL(path string, query url.Values) string {
	return c.endpoint(path, query).String()
}

// endpoint joins path onto the base URL, keeping any base path prefix.
func (c *Client) endpoint(path string, query url.Values) *url.URL {
	u := *c.base
	u.Path = strings.TrimSuffix(c.base.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	u.RawPath = ""
	u.RawQuery = query.Encode()
	return &u
}

func notFound(req ModelRequest) ResolvedAsset {
	return ResolvedAsset{
		Category: req.Type.Category(),
		Source:   SourceNotFound,
	}
}
