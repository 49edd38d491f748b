package assetserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Faultbox/aowow-viewer/internal/lookup"
)

const (
	modelCacheControl   = "public, max-age=86400"
	textureCacheControl = "public, max-age=86400"
	maxTextureBody      = 32 << 20
)

var (
	nonLetters    = regexp.MustCompile(`[^A-Za-z]`)
	nonItemDigits = regexp.MustCompile(`[^0-9,]`)
)

// HandleLookup answers GET /model-lookup?type=&displayId=&slot=&race=&sex=.
func (s *Server) HandleLookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	typ, err := strconv.Atoi(q.Get("type"))
	if err != nil || typ == 0 {
		s.writeJSON(w, http.StatusBadRequest, lookup.Response{Error: "type parameter required"})
		return
	}
	et := lookup.EntityType(typ)
	if !et.Valid() {
		s.writeJSON(w, http.StatusBadRequest, lookup.Response{Error: "Invalid type: " + strconv.Itoa(typ)})
		return
	}

	displayID := intParam(q, "displayId")
	resp := lookup.Response{Success: true, Type: et, DisplayID: displayID}
	category := et.Category()

	if et == lookup.TypeCharacter {
		resp.Model = lookup.CharacterModel(intParam(q, "race"), intParam(q, "sex"))
		resp.Path = lookup.AssetPath(category, resp.Model)
		resp.Source = lookup.SourceDirect
		resp.Exists = s.catalog.Has(category, resp.Model)
		s.writeJSON(w, http.StatusOK, resp)
		return
	}

	model, src, ok := s.catalog.Select(category, displayID)
	if !ok {
		resp.Source = lookup.SourceNotFound
		s.writeJSON(w, http.StatusOK, resp)
		return
	}
	resp.Model = model
	resp.Path = lookup.AssetPath(category, model)
	resp.Source = src
	resp.Exists = s.catalog.Has(category, model)
	s.writeJSON(w, http.StatusOK, resp)
}

// HandleModel serves GET and HEAD /models/{category}/{name}.glb.
func (s *Server) HandleModel(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	path, err := s.catalog.File(vars["category"], vars["name"])
	if err != nil {
		http.NotFound(w, r)
		return
	}
	f, err := os.Open(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		http.Error(w, "stat failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "model/gltf-binary")
	w.Header().Set("Cache-Control", modelCacheControl)
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}

// HandleCharacterTexture serves GET /character-texture by forwarding the
// sanitized query to the compositor. Any failure is a 500 JSON body.
func (s *Server) HandleCharacterTexture(w http.ResponseWriter, r *http.Request) {
	in := r.URL.Query()

	race := nonLetters.ReplaceAllString(in.Get("race"), "")
	if race == "" {
		race = lookup.RaceName(lookup.DefaultRace)
	}
	sex := "male"
	if strings.EqualFold(in.Get("sex"), "female") {
		sex = "female"
	}
	out := url.Values{}
	out.Set("race", strings.ToLower(race))
	out.Set("sex", sex)
	out.Set("skin", strconv.Itoa(intParam(in, "skin")))
	out.Set("items", nonItemDigits.ReplaceAllString(in.Get("items"), ""))

	if s.compositor == "" {
		s.textureFailed(w, "no compositor configured")
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, s.compositor+"?"+out.Encode(), nil)
	if err != nil {
		s.textureFailed(w, err.Error())
		return
	}
	resp, err := s.client.Do(req)
	if err != nil {
		s.textureFailed(w, err.Error())
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "image/") {
		s.textureFailed(w, "compositor status "+resp.Status)
		return
	}
	w.Header().Set("Content-Type", resp.Header.Get("Content-Type"))
	w.Header().Set("Cache-Control", textureCacheControl)
	if _, err := io.Copy(w, io.LimitReader(resp.Body, maxTextureBody)); err != nil {
		s.log.Warn("texture copy interrupted", zap.Error(err))
	}
}

func (s *Server) textureFailed(w http.ResponseWriter, details string) {
	s.log.Warn("texture generation failed", zap.String("details", details))
	s.writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "Texture generation failed",
		"details": details,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error("marshal response", zap.Error(err))
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.log.Debug("write response", zap.Error(err))
	}
}

// intParam parses a query value, treating missing or malformed as 0.
func intParam(q url.Values, key string) int {
	v, err := strconv.Atoi(q.Get(key))
	if err != nil {
		return 0
	}
	return v
}
