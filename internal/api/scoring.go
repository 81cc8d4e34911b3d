package api

import (
	"net/http"
	"strings"
	"time"
)

// projectRiskValue reports the aggregate risk value for one project. The
// computation is fail-safe: store trouble yields 0, never a 5xx, so the
// dashboard always renders.
func (s *Server) projectRiskValue(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	value := s.scoring.ProjectRiskValue(r.Context(), id)
	writeJSON(w, http.StatusOK, map[string]int{"riskValue": value})
}

func (s *Server) projectHealth(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	result, err := s.scoring.ProjectHealth(r.Context(), id, time.Now())
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) dashboardAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.scoring.DashboardAlerts(r.Context(), time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}
