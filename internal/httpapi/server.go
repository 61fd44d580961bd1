// Package httpapi exposes the node tree and snapshot services over HTTP.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mlindqvist/snaptree/internal/domain"
	"github.com/mlindqvist/snaptree/internal/service"
)

// Server bundles the services behind the HTTP API.
type Server struct {
	tree      service.TreeService
	snapshots service.SnapshotService
	composite service.CompositeService
	resolver  service.ResolverService
	checker   service.ConsistencyService
	logger    *slog.Logger
}

func NewServer(tree service.TreeService, snapshots service.SnapshotService, composite service.CompositeService, resolver service.ResolverService, checker service.ConsistencyService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		tree:      tree,
		snapshots: snapshots,
		composite: composite,
		resolver:  resolver,
		checker:   checker,
		logger:    logger,
	}
}

// Router builds the chi router with all endpoints registered.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/nodes/root", s.handleGetRoot)
		r.Get("/nodes/{id}", s.handleGetNode)
		r.Put("/nodes/{id}", s.handleUpdateNode)
		r.Delete("/nodes/{id}", s.handleDeleteNode)
		r.Get("/nodes/{id}/parent", s.handleGetParent)
		r.Get("/nodes/{id}/children", s.handleGetChildren)
		r.Post("/nodes/{id}/children", s.handleCreateNode)
		r.Post("/nodes/{id}/move", s.handleMoveNode)
		r.Post("/nodes/{id}/tags", s.handleAddTag)
		r.Delete("/nodes/{id}/tags/{name}", s.handleRemoveTag)
		r.Put("/nodes/{id}/properties/{key}", s.handlePutProperty)
		r.Delete("/nodes/{id}/properties/{key}", s.handleRemoveProperty)

		r.Get("/snapshots", s.handleListSnapshots)
		r.Post("/snapshots/{parentID}", s.handleSaveSnapshot)
		r.Get("/snapshots/{id}/items", s.handleGetSnapshotItems)
		r.Get("/snapshots/{id}/resolved", s.handleResolve)

		r.Post("/composite-snapshots/{parentID}", s.handleCreateComposite)
		r.Get("/composite-snapshots/{id}", s.handleGetCompositeData)
		r.Put("/composite-snapshots/{id}/references", s.handleUpdateReferences)
		r.Get("/composite-snapshots/{id}/nodes", s.handleListReferencedNodes)
		r.Get("/composite-snapshots/{id}/items", s.handleResolve)

		r.Post("/composite-snapshot-consistency-check", s.handleConsistencyCheck)
	})

	return r
}

// ListenAndServe runs the API until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// statusFor maps domain error kinds onto HTTP statuses. Structural conflicts
// with existing state are 409, bad requests 400, the rest 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidStructure),
		errors.Is(err, domain.ErrDepthExceeded):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrCycle),
		errors.Is(err, domain.ErrReferenced),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrNameInUse),
		errors.Is(err, domain.ErrDuplicatePVNames),
		errors.Is(err, domain.ErrRootImmutable):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, status, err)
}
