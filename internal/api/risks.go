package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mbecker/rdtrack/internal/models"
)

func validScale(n int) bool { return n >= 1 && n <= 5 }

func (s *Server) listProjectRisks(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	risks, err := s.store.ListRisksByProject(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if risks == nil {
		risks = []*models.Risk{}
	}
	writeJSON(w, http.StatusOK, risks)
}

func (s *Server) createRisk(w http.ResponseWriter, r *http.Request) {
	var risk models.Risk
	if err := json.NewDecoder(r.Body).Decode(&risk); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if risk.ProjectID == "" {
		writeError(w, http.StatusBadRequest, "projectId is required")
		return
	}
	if risk.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}
	if risk.Probability == 0 {
		risk.Probability = 1
	}
	if risk.Impact == 0 {
		risk.Impact = 1
	}
	if !validScale(risk.Probability) || !validScale(risk.Impact) {
		writeError(w, http.StatusBadRequest, "probability and impact must be between 1 and 5")
		return
	}

	if err := s.store.CreateRisk(r.Context(), &risk); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, risk)
}

func (s *Server) getRisk(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	risk, err := s.store.GetRisk(r.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, risk)
}

func (s *Server) updateRisk(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := s.store.GetRisk(r.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	patchString(patch, "Description", &existing.Description)
	patchString(patch, "Category", &existing.Category)
	patchString(patch, "Owner", &existing.Owner)
	patchString(patch, "RootCause", &existing.RootCause)
	patchString(patch, "Trigger", &existing.Trigger)
	patchString(patch, "Notes", &existing.Notes)
	patchInt(patch, "Probability", &existing.Probability)
	patchInt(patch, "Impact", &existing.Impact)
	if v, ok := patch["Status"]; ok {
		if str, ok := v.(string); ok && str != "" {
			existing.Status = models.RiskStatus(str)
		}
	}

	if !validScale(existing.Probability) || !validScale(existing.Impact) {
		writeError(w, http.StatusBadRequest, "probability and impact must be between 1 and 5")
		return
	}

	// UpdateRisk rederives RiskLevel; a RiskLevel key in the patch is ignored
	if err := s.store.UpdateRisk(r.Context(), existing); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

func (s *Server) deleteRisk(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.DeleteRisk(r.Context(), id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Risk Responses ---

func (s *Server) createRiskResponse(w http.ResponseWriter, r *http.Request) {
	riskID := r.PathValue("id")
	if _, err := s.store.GetRisk(r.Context(), riskID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var resp models.RiskResponse
	if err := json.NewDecoder(r.Body).Decode(&resp); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	resp.RiskID = riskID
	if resp.Strategy == "" {
		resp.Strategy = models.StrategyMitigate
	}

	if err := s.store.CreateRiskResponse(r.Context(), &resp); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) updateRiskResponse(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var resp models.RiskResponse
	if err := json.NewDecoder(r.Body).Decode(&resp); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	resp.ID = id
	if err := s.store.UpdateRiskResponse(r.Context(), &resp); err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) deleteRiskResponse(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.DeleteRiskResponse(r.Context(), id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
