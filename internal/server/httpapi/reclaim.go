package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/signify/internal/common"
)

const (
	reclaimAllowOrigin  = "*"
	reclaimAllowHeaders = "authorization, x-client-info, apikey, content-type"
)

// handleResetStreak runs one reclaimer pass for any method but OPTIONS,
// which only answers the preflight.
func (s *Server) handleResetStreak(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", reclaimAllowOrigin)
	h.Set("Access-Control-Allow-Headers", reclaimAllowHeaders)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if s.deps.Reclaimer == nil {
		http.Error(w, common.ErrMissingCredentials.Error(), http.StatusInternalServerError)
		return
	}

	res, err := s.deps.Reclaimer.Run(r.Context())
	switch {
	case errors.Is(err, common.ErrMissingCredentials):
		http.Error(w, err.Error(), http.StatusInternalServerError)
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Failed to reset streaks"})
	default:
		writeJSON(w, http.StatusOK, res)
	}
}
