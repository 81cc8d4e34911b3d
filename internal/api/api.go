package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mbecker/rdtrack/internal/backup"
	"github.com/mbecker/rdtrack/internal/models"
	"github.com/mbecker/rdtrack/internal/scoring"
	"github.com/mbecker/rdtrack/internal/store"
)

// Server provides the REST API handlers.
type Server struct {
	store   store.Store
	scoring *scoring.Service
	backups *backup.Manager
}

// NewServer creates a new API server.
// The backup manager may be nil when backups are not configured.
func NewServer(s store.Store, bm *backup.Manager) *Server {
	return &Server{
		store:   s,
		scoring: scoring.NewService(s),
		backups: bm,
	}
}

// Router returns an http.Handler for the API routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/projects", s.listProjects)
	mux.HandleFunc("POST /api/v1/projects", s.createProject)
	mux.HandleFunc("GET /api/v1/projects/{id}", s.getProject)
	mux.HandleFunc("PUT /api/v1/projects/{id}", s.updateProject)
	mux.HandleFunc("DELETE /api/v1/projects/{id}", s.deleteProject)
	mux.HandleFunc("POST /api/v1/projects/{id}/stage", s.advanceStage)
	mux.HandleFunc("GET /api/v1/projects/{id}/timeline", s.listTimeline)

	mux.HandleFunc("GET /api/v1/projects/{id}/risks", s.listProjectRisks)
	mux.HandleFunc("GET /api/v1/projects/{id}/risk-value", s.projectRiskValue)
	mux.HandleFunc("GET /api/v1/projects/{id}/health", s.projectHealth)

	mux.HandleFunc("GET /api/v1/tasks", s.listTasks)
	mux.HandleFunc("POST /api/v1/tasks", s.createTask)
	mux.HandleFunc("GET /api/v1/tasks/{id}", s.getTask)
	mux.HandleFunc("PUT /api/v1/tasks/{id}", s.updateTask)
	mux.HandleFunc("DELETE /api/v1/tasks/{id}", s.deleteTask)
	mux.HandleFunc("POST /api/v1/tasks/{id}/complete", s.completeTask)

	mux.HandleFunc("GET /api/v1/users", s.listUsers)
	mux.HandleFunc("POST /api/v1/users", s.createUser)
	mux.HandleFunc("GET /api/v1/users/{id}", s.getUser)
	mux.HandleFunc("PUT /api/v1/users/{id}", s.updateUser)
	mux.HandleFunc("DELETE /api/v1/users/{id}", s.deleteUser)

	mux.HandleFunc("POST /api/v1/risks", s.createRisk)
	mux.HandleFunc("GET /api/v1/risks/{id}", s.getRisk)
	mux.HandleFunc("PUT /api/v1/risks/{id}", s.updateRisk)
	mux.HandleFunc("DELETE /api/v1/risks/{id}", s.deleteRisk)
	mux.HandleFunc("POST /api/v1/risks/{id}/responses", s.createRiskResponse)
	mux.HandleFunc("PUT /api/v1/risks/responses/{id}", s.updateRiskResponse)
	mux.HandleFunc("DELETE /api/v1/risks/responses/{id}", s.deleteRiskResponse)

	mux.HandleFunc("GET /api/v1/lessons", s.listLessons)
	mux.HandleFunc("POST /api/v1/lessons", s.createLesson)
	mux.HandleFunc("GET /api/v1/lessons/{id}", s.getLesson)
	mux.HandleFunc("PUT /api/v1/lessons/{id}", s.updateLesson)
	mux.HandleFunc("DELETE /api/v1/lessons/{id}", s.deleteLesson)

	mux.HandleFunc("GET /api/v1/alerts", s.dashboardAlerts)

	mux.HandleFunc("POST /api/v1/backup/create", s.createBackup)
	mux.HandleFunc("GET /api/v1/backup/list", s.listBackups)
	mux.HandleFunc("POST /api/v1/backup/restore", s.restoreBackup)
	mux.HandleFunc("POST /api/v1/backup/cleanup", s.cleanupBackups)

	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// patchString applies a string value from a JSON patch map to the target if the key is present and non-empty.
func patchString(patch map[string]any, key string, target *string) {
	if v, ok := patch[key]; ok {
		if str, ok := v.(string); ok && str != "" {
			*target = str
		}
	}
}

// patchInt applies a numeric value from a JSON patch map to the target if present.
func patchInt(patch map[string]any, key string, target *int) {
	if v, ok := patch[key]; ok {
		if f, ok := v.(float64); ok {
			*target = int(f)
		}
	}
}

// --- Projects ---

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	project, err := s.store.GetProject(r.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var p models.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if p.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if p.CurrentStageID != "" && scoring.StageIndex(p.CurrentStageID) < 0 {
		writeError(w, http.StatusBadRequest, "unknown stage: "+p.CurrentStageID)
		return
	}
	if err := s.store.CreateProject(r.Context(), &p); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := s.store.GetProject(r.Context(), id)
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

	// Selectively merge only keys present in the patch with non-empty values.
	// Empty strings are treated as "not provided" to avoid wiping existing data.
	patchString(patch, "OrderNumber", &existing.OrderNumber)
	patchString(patch, "Name", &existing.Name)
	patchString(patch, "SalesContact", &existing.SalesContact)
	patchInt(patch, "DeviceQuantity", &existing.DeviceQuantity)
	patchString(patch, "Priority", &existing.Priority)
	patchString(patch, "EstimatedCompletion", &existing.EstimatedCompletion)
	patchString(patch, "Region", &existing.Region)
	patchString(patch, "Notes", &existing.Notes)

	// Stage changes go through the stage endpoint so the timeline stays
	// consistent; ignore CurrentStageID here.

	if err := s.store.UpdateProject(r.Context(), existing); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.DeleteProject(r.Context(), id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// advanceStage moves a project to a new stage and records a timeline event.
func (s *Server) advanceStage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req struct {
		StageID     string `json:"stageId"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if scoring.StageIndex(req.StageID) < 0 {
		writeError(w, http.StatusBadRequest, "unknown stage: "+req.StageID)
		return
	}

	project, err := s.store.GetProject(r.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	project.CurrentStageID = req.StageID
	if err := s.store.UpdateProject(r.Context(), project); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	event := &models.TimelineEvent{
		ProjectID:   project.ID,
		StageID:     req.StageID,
		Description: req.Description,
		EventDate:   time.Now().UTC(),
	}
	if err := s.store.CreateTimelineEvent(r.Context(), event); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (s *Server) listTimeline(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	events, err := s.store.ListTimelineEvents(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if events == nil {
		events = []*models.TimelineEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}
