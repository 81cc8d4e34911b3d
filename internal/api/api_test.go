package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbecker/rdtrack/internal/backup"
	"github.com/mbecker/rdtrack/internal/models"
	"github.com/mbecker/rdtrack/internal/store"
)

func setupTestServer(t *testing.T) (*Server, store.Store) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })

	bm := backup.NewManager(dbPath, filepath.Join(dir, "backups"))
	srv := NewServer(s, bm)

	return srv, s
}

func TestListProjects_Empty(t *testing.T) {
	srv, _ := setupTestServer(t)
	router := srv.Router()

	req := httptest.NewRequest("GET", "/api/v1/projects", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProjectCRUD_API(t *testing.T) {
	srv, _ := setupTestServer(t)
	router := srv.Router()

	// Create
	body := `{"name":"meter-gen3","orderNumber":"ORD-7","currentStageId":"requirements","estimatedCompletion":"2027-01-01"}`
	req := httptest.NewRequest("POST", "/api/v1/projects", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var created models.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "meter-gen3", created.Name)
	assert.NotEmpty(t, created.ID)

	// Get
	req = httptest.NewRequest("GET", "/api/v1/projects/"+created.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// List
	req = httptest.NewRequest("GET", "/api/v1/projects", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var projects []*models.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &projects))
	assert.Len(t, projects, 1)

	// Delete
	req = httptest.NewRequest("DELETE", "/api/v1/projects/"+created.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCreateProject_RejectsUnknownStage(t *testing.T) {
	srv, _ := setupTestServer(t)
	router := srv.Router()

	body := `{"name":"bad","currentStageId":"warehouse"}`
	req := httptest.NewRequest("POST", "/api/v1/projects", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProject_NotFound(t *testing.T) {
	srv, _ := setupTestServer(t)
	router := srv.Router()

	req := httptest.NewRequest("GET", "/api/v1/projects/nonexistent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateProject_PartialUpdate_PreservesOmittedFields(t *testing.T) {
	srv, s := setupTestServer(t)
	router := srv.Router()
	ctx := context.Background()

	p := &models.Project{
		Name:                "full-project",
		OrderNumber:         "ORD-500",
		SalesContact:        "Dana",
		Region:              "APAC",
		EstimatedCompletion: "2026-12-01",
	}
	require.NoError(t, s.CreateProject(ctx, p))

	// Only Notes changes; omitted and empty keys must not wipe existing data
	patchBody := `{"Notes":"customer requested weekly updates","Region":""}`
	req := httptest.NewRequest("PUT", "/api/v1/projects/"+p.ID, bytes.NewBufferString(patchBody))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	fromDB, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "customer requested weekly updates", fromDB.Notes)
	assert.Equal(t, "ORD-500", fromDB.OrderNumber)
	assert.Equal(t, "Dana", fromDB.SalesContact)
	assert.Equal(t, "APAC", fromDB.Region, "empty string should not overwrite")
	assert.Equal(t, "2026-12-01", fromDB.EstimatedCompletion)
}

func TestAdvanceStage_RecordsTimeline(t *testing.T) {
	srv, s := setupTestServer(t)
	router := srv.Router()
	ctx := context.Background()

	p := &models.Project{Name: "staged", CurrentStageID: "requirements"}
	require.NoError(t, s.CreateProject(ctx, p))

	body := `{"stageId":"structural_design","description":"requirements signed off"}`
	req := httptest.NewRequest("POST", "/api/v1/projects/"+p.ID+"/stage", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	fromDB, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "structural_design", fromDB.CurrentStageID)

	req = httptest.NewRequest("GET", "/api/v1/projects/"+p.ID+"/timeline", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var events []*models.TimelineEvent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "structural_design", events[0].StageID)
}

func TestAdvanceStage_RejectsUnknownStage(t *testing.T) {
	srv, s := setupTestServer(t)
	router := srv.Router()

	p := &models.Project{Name: "staged"}
	require.NoError(t, s.CreateProject(context.Background(), p))

	body := `{"stageId":"warehouse"}`
	req := httptest.NewRequest("POST", "/api/v1/projects/"+p.ID+"/stage", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskLifecycle_API(t *testing.T) {
	srv, _ := setupTestServer(t)
	router := srv.Router()

	body := `{"name":"bring-up board","endDate":"2026-06-01","assignedTo":["alice"]}`
	req := httptest.NewRequest("POST", "/api/v1/tasks", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, models.TaskStatusPending, created.Status)

	// Complete
	completeBody := `{"completedBy":"alice","completionNotes":"all rails within tolerance"}`
	req = httptest.NewRequest("POST", "/api/v1/tasks/"+created.ID+"/complete", bytes.NewBufferString(completeBody))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var completed models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &completed))
	assert.Equal(t, models.TaskStatusCompleted, completed.Status)
	assert.Equal(t, "alice", completed.CompletedBy)
	assert.NotEmpty(t, completed.CompletedDate)
}

func TestRiskEndpoints_API(t *testing.T) {
	srv, s := setupTestServer(t)
	router := srv.Router()
	ctx := context.Background()

	p := &models.Project{Name: "risky"}
	require.NoError(t, s.CreateProject(ctx, p))

	// Create risk
	body := `{"projectId":"` + p.ID + `","description":"connector EOL","probability":4,"impact":5}`
	req := httptest.NewRequest("POST", "/api/v1/risks", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Risk
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 20, created.RiskLevel)

	// Out-of-range probability is rejected
	bad := `{"projectId":"` + p.ID + `","description":"x","probability":9,"impact":1}`
	req = httptest.NewRequest("POST", "/api/v1/risks", bytes.NewBufferString(bad))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Attach a response
	respBody := `{"strategy":"mitigate","actionPlan":"qualify second source","responsible":"bob"}`
	req = httptest.NewRequest("POST", "/api/v1/risks/"+created.ID+"/responses", bytes.NewBufferString(respBody))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	// Risk reads back with its response
	req = httptest.NewRequest("GET", "/api/v1/risks/"+created.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Risk
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Responses, 1)
	assert.Equal(t, models.StrategyMitigate, got.Responses[0].Strategy)

	// Update recomputes risk level; patched RiskLevel is ignored
	update := `{"Probability":2,"RiskLevel":99}`
	req = httptest.NewRequest("PUT", "/api/v1/risks/"+created.ID, bytes.NewBufferString(update))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Risk
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, 10, updated.RiskLevel)

	// List by project
	req = httptest.NewRequest("GET", "/api/v1/projects/"+p.ID+"/risks", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var risks []*models.Risk
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &risks))
	assert.Len(t, risks, 1)
}

func TestUsersAndLessons_API(t *testing.T) {
	srv, _ := setupTestServer(t)
	router := srv.Router()

	req := httptest.NewRequest("POST", "/api/v1/users", bytes.NewBufferString(`{"name":"Alice","role":"engineer"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest("POST", "/api/v1/lessons", bytes.NewBufferString(`{"title":"order long-lead parts early"}`))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest("GET", "/api/v1/lessons", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var lessons []*models.LessonLearned
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lessons))
	assert.Len(t, lessons, 1)

	// Missing title is rejected
	req = httptest.NewRequest("POST", "/api/v1/lessons", bytes.NewBufferString(`{"category":"x"}`))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORS(t *testing.T) {
	srv, _ := setupTestServer(t)
	router := srv.Router()

	req := httptest.NewRequest("OPTIONS", "/api/v1/projects", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
