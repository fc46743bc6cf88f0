package server

import (
	"encoding/json"
	"net/http"
	"time"

	forgeerrors "github.com/previewlab/forge/internal/errors"
	"github.com/previewlab/forge/internal/version"
)

// BuildRequest is the POST /build payload.
type BuildRequest struct {
	// Code is the base64-encoded UTF-8 component source.
	Code string `json:"code"`
}

// BuildResponse is the success body for POST /build.
type BuildResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

// ErrorResponse is the body for every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleBuild accepts a component, runs the pipeline, and responds with the
// deployment URL.
func (s *BuildServer) handleBuild(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
		return
	}

	var req BuildRequest
	// A missing or unreadable body falls through to the empty-code check
	// below, which is the client error the API documents.
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.Code == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: forgeerrors.ErrNoCode.Error()})
		return
	}

	if !s.acquireBuildSlot() {
		writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: forgeerrors.ErrTooManyBuilds.Error()})
		return
	}
	defer s.releaseBuildSlot()

	url, err := s.builder.Run(r.Context(), req.Code)
	if err != nil {
		s.logger.Error(r.Context(), err, "build failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: forgeerrors.ClientMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, BuildResponse{Success: true, URL: url})
}

// handleHealth returns the server health status for health checks
func (s *BuildServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"timestamp":  time.Now().UTC(),
		"version":    version.GetVersion(),
		"build_info": version.GetBuildInfo(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
