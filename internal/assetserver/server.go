package assetserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Faultbox/aowow-viewer/internal/logger"
)

// Server serves the three site contracts the viewer consumes.
type Server struct {
	catalog    *Catalog
	compositor string
	client     *http.Client
	log        *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithCompositor proxies /character-texture to url.
func WithCompositor(url string) Option {
	return func(s *Server) { s.compositor = url }
}

// WithHTTPClient sets the client used for the compositor proxy.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Server) { s.client = c }
}

// New creates a server over a catalog.
func New(catalog *Catalog, opts ...Option) *Server {
	s := &Server{
		catalog: catalog,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     logger.Named("assetserver"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the routes without middleware.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/model-lookup", s.HandleLookup).Methods(http.MethodGet)
	r.HandleFunc("/models/{category}/{name}.glb", s.HandleModel).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/character-texture", s.HandleCharacterTexture).Methods(http.MethodGet)
	return r
}

// Handler returns the router wrapped in recovery, access logging and CORS.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.Router()
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodHead}),
	)(h)
	h = handlers.LoggingHandler(zap.NewStdLog(s.log).Writer(), h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(zap.NewStdLog(s.log)))(h)
	return h
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting server", zap.String("addr", addr), zap.String("root", s.catalog.Root()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
