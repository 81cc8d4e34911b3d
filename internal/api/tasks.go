package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mbecker/rdtrack/internal/models"
	"github.com/mbecker/rdtrack/internal/store"
)

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	filter := store.TaskListFilter{
		ProjectID: r.URL.Query().Get("project"),
		Status:    models.TaskStatus(r.URL.Query().Get("status")),
	}
	tasks, err := s.store.ListTasks(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var task models.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if task.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}
	if err := s.store.CreateTask(r.Context(), &task); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	task, err := s.store.GetTask(r.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := s.store.GetTask(r.Context(), id)
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

	patchString(patch, "Name", &existing.Name)
	patchString(patch, "ProjectID", &existing.ProjectID)
	patchString(patch, "StartDate", &existing.StartDate)
	patchString(patch, "EndDate", &existing.EndDate)
	patchString(patch, "Requirements", &existing.Requirements)
	patchString(patch, "Priority", &existing.Priority)
	patchString(patch, "TaskType", &existing.TaskType)
	if v, ok := patch["Status"]; ok {
		if str, ok := v.(string); ok && str != "" {
			existing.Status = models.TaskStatus(str)
		}
	}
	if v, ok := patch["AssignedTo"]; ok {
		if list, ok := v.([]any); ok {
			assigned := make([]string, 0, len(list))
			for _, item := range list {
				if str, ok := item.(string); ok {
					assigned = append(assigned, str)
				}
			}
			existing.AssignedTo = assigned
		}
	}

	if err := s.store.UpdateTask(r.Context(), existing); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.DeleteTask(r.Context(), id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// completeTask marks a task completed and records who finished it.
func (s *Server) completeTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	task, err := s.store.GetTask(r.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var req struct {
		CompletedBy     string `json:"completedBy"`
		CompletionNotes string `json:"completionNotes"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	task.Status = models.TaskStatusCompleted
	task.CompletedDate = time.Now().Format("2006-01-02")
	task.CompletedBy = req.CompletedBy
	task.CompletionNotes = req.CompletionNotes

	if err := s.store.UpdateTask(r.Context(), task); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, task)
}
