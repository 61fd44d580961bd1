package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mlindqvist/snaptree/internal/domain"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func (s *Server) handleGetRoot(w http.ResponseWriter, r *http.Request) {
	root, err := s.tree.GetRootNode(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, root)
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	node, err := s.tree.GetNode(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

func (s *Server) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	var n domain.Node
	if !decode(w, r, &n) {
		return
	}
	created, err := s.tree.CreateNode(r.Context(), chi.URLParam(r, "id"), &n)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	var n domain.Node
	if !decode(w, r, &n) {
		return
	}
	n.UniqueID = chi.URLParam(r, "id")
	updated, err := s.tree.UpdateNode(r.Context(), &n)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := s.tree.DeleteNode(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetParent(w http.ResponseWriter, r *http.Request) {
	parent, err := s.tree.GetParent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, parent)
}

func (s *Server) handleGetChildren(w http.ResponseWriter, r *http.Request) {
	children, err := s.tree.GetChildren(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, children)
}

func (s *Server) handleMoveNode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewParent string `json:"newParent"`
	}
	if !decode(w, r, &req) {
		return
	}
	moved, err := s.tree.Move(r.Context(), chi.URLParam(r, "id"), req.NewParent)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, moved)
}

func (s *Server) handleAddTag(w http.ResponseWriter, r *http.Request) {
	var tag domain.Tag
	if !decode(w, r, &tag) {
		return
	}
	node, err := s.tree.AddTag(r.Context(), chi.URLParam(r, "id"), tag)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

func (s *Server) handleRemoveTag(w http.ResponseWriter, r *http.Request) {
	node, err := s.tree.RemoveTag(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "name"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

func (s *Server) handlePutProperty(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value string `json:"value"`
	}
	if !decode(w, r, &req) {
		return
	}
	node, err := s.tree.PutProperty(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "key"), req.Value)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

func (s *Server) handleRemoveProperty(w http.ResponseWriter, r *http.Request) {
	node, err := s.tree.RemoveProperty(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "key"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.snapshots.ListAllSnapshots(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snaps)
}

func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Node  domain.Node           `json:"node"`
		Items []domain.SnapshotItem `json:"snapshotItems"`
	}
	if !decode(w, r, &req) {
		return
	}
	created, err := s.snapshots.SaveSnapshot(r.Context(), chi.URLParam(r, "parentID"), &req.Node, req.Items)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetSnapshotItems(w http.ResponseWriter, r *http.Request) {
	data, err := s.snapshots.GetSnapshotData(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// handleResolve serves the restorable item list for both snapshot and
// composite-snapshot nodes.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	items, err := s.resolver.Resolve(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.SnapshotData{UniqueID: id, Items: items})
}

func (s *Server) handleCreateComposite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Node            domain.Node `json:"node"`
		ReferencedNodes []string    `json:"referencedSnapshotNodes"`
	}
	if !decode(w, r, &req) {
		return
	}
	created, err := s.composite.CreateComposite(r.Context(), chi.URLParam(r, "parentID"), &req.Node, req.ReferencedNodes)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetCompositeData(w http.ResponseWriter, r *http.Request) {
	data, err := s.composite.GetCompositeData(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleUpdateReferences(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReferencedNodes []string `json:"referencedSnapshotNodes"`
	}
	if !decode(w, r, &req) {
		return
	}
	data, err := s.composite.UpdateReferences(r.Context(), chi.URLParam(r, "id"), req.ReferencedNodes)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleListReferencedNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.composite.ListReferencedNodes(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nodes)
}

func (s *Server) handleConsistencyCheck(w http.ResponseWriter, r *http.Request) {
	var ids []string
	if !decode(w, r, &ids) {
		return
	}
	report, err := s.checker.Check(r.Context(), ids)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
