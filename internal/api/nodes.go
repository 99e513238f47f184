package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmweir/meshlink-core/internal/node"
)

// handleListNodes returns all registered nodes.
func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list nodes", "error", err)
		writeInternalError(w, "failed to list nodes")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"nodes": nodes, "count": len(nodes)})
}

// handleGetNode returns a single node configuration by ID.
func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	cfg, err := s.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, node.ErrNodeNotFound) {
			writeNotFound(w, "node not found")
			return
		}
		s.logger.Error("failed to get node", "node_id", id, "error", err)
		writeInternalError(w, "failed to get node")
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

// handleCreateNode registers a new node.
//
// The request body is a node configuration. ID and short name are
// generated when omitted.
func (s *Server) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	var cfg node.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if cfg.ID == "" {
		cfg.ID = node.GenerateID()
	}
	if cfg.ShortName == "" {
		cfg.ShortName = node.GenerateShortName(cfg.Name)
	}

	if err := node.ValidateConfig(&cfg); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	if err := s.store.Create(r.Context(), &cfg); err != nil {
		if errors.Is(err, node.ErrNodeExists) {
			writeConflict(w, "node already exists")
			return
		}
		s.logger.Error("failed to create node", "node_id", cfg.ID, "error", err)
		writeInternalError(w, "failed to create node")
		return
	}

	writeJSON(w, http.StatusCreated, cfg)
}

// handleDeleteNode removes a node by ID.
func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, node.ErrNodeNotFound) {
			writeNotFound(w, "node not found")
			return
		}
		s.logger.Error("failed to delete node", "node_id", id, "error", err)
		writeInternalError(w, "failed to delete node")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleUpdateNodeConfig applies a partial configuration update to a node.
//
// The body is a sparse field update; only supplied fields change. The
// mutation runs through the node mutator, which serialises concurrent
// updates per node and notifies observers after a successful save.
//
// Status codes:
//   - 200: Updated configuration returned
//   - 404: Node does not exist
//   - 422: The merged configuration failed validation
//   - 502: The store rejected the save
func (s *Server) handleUpdateNodeConfig(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var update node.FieldUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	cfg, err := s.mutator.Apply(r.Context(), id, update)
	if err != nil {
		switch {
		case errors.Is(err, node.ErrNodeNotFound):
			writeNotFound(w, "node not found")
		case errors.Is(err, node.ErrSaveFailed):
			s.logger.Error("node config save failed", "node_id", id, "error", err)
			writePersistenceError(w, "failed to persist node configuration")
		case errors.Is(err, node.ErrCurveRequired),
			errors.Is(err, node.ErrInvalidConfig),
			errors.Is(err, node.ErrInvalidName),
			errors.Is(err, node.ErrInvalidRegion),
			errors.Is(err, node.ErrInvalidRadioParams),
			errors.Is(err, node.ErrInvalidPreset):
			writeValidationError(w, err.Error())
		default:
			s.logger.Error("node config update failed", "node_id", id, "error", err)
			writeInternalError(w, "failed to update node configuration")
		}
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}
