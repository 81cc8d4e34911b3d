package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbecker/rdtrack/internal/models"
	"github.com/mbecker/rdtrack/internal/store"
)

// brokenStore fails every read the scoring endpoints depend on.
type brokenStore struct {
	store.Store
}

func (brokenStore) ListRisksByProject(context.Context, string) ([]*models.Risk, error) {
	return nil, errors.New("disk error")
}

func (brokenStore) GetProject(context.Context, string) (*models.Project, error) {
	return nil, errors.New("disk error")
}

func (brokenStore) ListTasks(context.Context, store.TaskListFilter) ([]*models.Task, error) {
	return nil, errors.New("disk error")
}

func TestProjectRiskValue_API(t *testing.T) {
	srv, s := setupTestServer(t)
	router := srv.Router()
	ctx := context.Background()

	p := &models.Project{Name: "scored"}
	require.NoError(t, s.CreateProject(ctx, p))
	require.NoError(t, s.CreateRisk(ctx, &models.Risk{
		ProjectID:   p.ID,
		Description: "late parts",
		Probability: 4,
		Impact:      5,
	}))

	req := httptest.NewRequest("GET", "/api/v1/projects/"+p.ID+"/risk-value", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 83, body["riskValue"])
}

func TestProjectRiskValue_NeverFails(t *testing.T) {
	srv := NewServer(brokenStore{}, nil)
	router := srv.Router()

	req := httptest.NewRequest("GET", "/api/v1/projects/whatever/risk-value", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 0, body["riskValue"])
}

func TestProjectHealth_API(t *testing.T) {
	srv, s := setupTestServer(t)
	router := srv.Router()

	p := &models.Project{
		Name:                "healthy",
		CurrentStageID:      "shipping",
		EstimatedCompletion: "2099-01-01",
	}
	require.NoError(t, s.CreateProject(context.Background(), p))

	req := httptest.NewRequest("GET", "/api/v1/projects/"+p.ID+"/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(100), body["score"])
	assert.Equal(t, "healthy", body["status"])
}

func TestProjectHealth_StoreErrorIs500(t *testing.T) {
	srv := NewServer(brokenStore{}, nil)
	router := srv.Router()

	req := httptest.NewRequest("GET", "/api/v1/projects/whatever/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDashboardAlerts_API(t *testing.T) {
	srv, s := setupTestServer(t)
	router := srv.Router()
	ctx := context.Background()

	require.NoError(t, s.CreateTask(ctx, &models.Task{
		Name:    "long gone",
		EndDate: "2020-01-01",
		Status:  models.TaskStatusPending,
	}))

	req := httptest.NewRequest("GET", "/api/v1/alerts", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	// All four buckets present, serialized as arrays
	for _, key := range []string{"overdueTasks", "dueSoonTasks", "atRiskProjects", "overdueProjects"} {
		raw, ok := body[key]
		require.True(t, ok, key)
		assert.True(t, bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")), key)
	}

	var alerts struct {
		OverdueTasks []struct {
			Name        string `json:"Name"`
			DaysOverdue int    `json:"daysOverdue"`
		} `json:"overdueTasks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &alerts))
	require.Len(t, alerts.OverdueTasks, 1)
	assert.Equal(t, "long gone", alerts.OverdueTasks[0].Name)
	assert.Greater(t, alerts.OverdueTasks[0].DaysOverdue, 0)
}

func TestDashboardAlerts_StoreErrorIs500(t *testing.T) {
	srv := NewServer(brokenStore{}, nil)
	router := srv.Router()

	req := httptest.NewRequest("GET", "/api/v1/alerts", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestBackupEndpoints_API(t *testing.T) {
	srv, _ := setupTestServer(t)
	router := srv.Router()

	req := httptest.NewRequest("POST", "/api/v1/backup/create", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest("GET", "/api/v1/backup/list", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var backups []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &backups))
	require.Len(t, backups, 1)

	name, _ := backups[0]["name"].(string)
	req = httptest.NewRequest("POST", "/api/v1/backup/restore", bytes.NewBufferString(`{"name":"`+name+`"}`))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("POST", "/api/v1/backup/cleanup", bytes.NewBufferString(`{"keep":0}`))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var res map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 1, res["removed"])
}

func TestBackupEndpoints_Unconfigured(t *testing.T) {
	srv := NewServer(brokenStore{}, nil)
	router := srv.Router()

	req := httptest.NewRequest("POST", "/api/v1/backup/create", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
