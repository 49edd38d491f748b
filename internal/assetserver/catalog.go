// Package assetserver serves models, model lookups and composite textures
// from a local directory tree.
package assetserver

import (
	"fmt"
	"hash/crc32"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/aowow-viewer/internal/logger"
	"github.com/Faultbox/aowow-viewer/internal/lookup"
)

const (
	modelExt  = ".glb"
	mapSuffix = "-map.yaml"
)

// Catalog indexes <root>/<category>/*.glb and the optional explicit
// displayId maps in <root>/<category>-map.yaml.
type Catalog struct {
	root string
	log  *zap.Logger

	mu     sync.RWMutex
	models map[string][]string       // category -> sorted model names
	maps   map[string]map[int]string // category -> displayId -> model
}

// NewCatalog scans root. A missing root is an error; an empty one is not.
func NewCatalog(root string) (*Catalog, error) {
	c := &Catalog{root: root, log: logger.Named("catalog")}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Root returns the catalog directory.
func (c *Catalog) Root() string {
	return c.root
}

// Reload rescans the directory tree.
func (c *Catalog) Reload() error {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return fmt.Errorf("read model root: %w", err)
	}

	models := make(map[string][]string)
	maps := make(map[string]map[int]string)
	for _, e := range entries {
		name := e.Name()
		switch {
		case e.IsDir():
			list, err := scanCategory(filepath.Join(c.root, name))
			if err != nil {
				return err
			}
			models[name] = list
		case strings.HasSuffix(name, mapSuffix):
			m, err := loadMap(filepath.Join(c.root, name))
			if err != nil {
				c.log.Warn("skipping model map", zap.String("file", name), zap.Error(err))
				continue
			}
			maps[strings.TrimSuffix(name, mapSuffix)] = m
		}
	}

	c.mu.Lock()
	c.models = models
	c.maps = maps
	c.mu.Unlock()

	c.log.Debug("catalog loaded", zap.Int("categories", len(models)), zap.Int("maps", len(maps)))
	return nil
}

func scanCategory(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read category %s: %w", filepath.Base(dir), err)
	}
	var list []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), modelExt) {
			list = append(list, strings.TrimSuffix(e.Name(), modelExt))
		}
	}
	sort.Strings(list)
	return list, nil
}

func loadMap(path string) (map[int]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := make(map[int]string)
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return m, nil
}

// Models returns the model names in a category.
func (c *Catalog) Models(category string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.models[category]...)
}

// Has reports whether a model file exists in a category.
func (c *Catalog) Has(category, model string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	list := c.models[category]
	i := sort.SearchStrings(list, model)
	return i < len(list) && list[i] == model
}

// Select picks the model for a displayId: an explicit map entry first,
// then a stable hash of the decimal id over the category's models.
func (c *Catalog) Select(category string, displayID int) (string, lookup.Source, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if model, ok := c.maps[category][displayID]; ok {
		return model, lookup.SourceDBLookup, true
	}
	list := c.models[category]
	if len(list) == 0 {
		return "", lookup.SourceNotFound, false
	}
	return list[HashIndex(displayID, len(list))], lookup.SourceFilesystem, true
}

// HashIndex maps a displayId onto [0, n) by CRC-32 of its decimal form.
func HashIndex(displayID, n int) int {
	sum := crc32.ChecksumIEEE([]byte(strconv.Itoa(displayID)))
	return int(sum % uint32(n))
}

// File returns the on-disk path of a model. It rejects names that would
// escape the category directory.
func (c *Catalog) File(category, model string) (string, error) {
	for _, part := range []string{category, model} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return "", fs.ErrNotExist
		}
	}
	if !c.Has(category, model) {
		return "", fs.ErrNotExist
	}
	return filepath.Join(c.root, category, model+modelExt), nil
}

// dirs returns the root and every category directory, for watching.
func (c *Catalog) dirs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []string{c.root}
	for cat := range c.models {
		out = append(out, filepath.Join(c.root, cat))
	}
	sort.Strings(out[1:])
	return out
}
