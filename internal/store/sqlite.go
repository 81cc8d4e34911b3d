package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mbecker/rdtrack/internal/models"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Limiting to a single connection
	// serializes all DB access through Go's connection pool, preventing
	// "database is locked" errors from concurrent HTTP requests.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Set busy timeout so concurrent writes wait instead of failing immediately
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// newULID generates a new ULID string.
func newULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// Migrate runs all embedded SQL migration files in order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	// Create migrations tracking table
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	// Sort by filename
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		// Check if already applied
		var count int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Projects ---

func (s *SQLiteStore) CreateProject(ctx context.Context, p *models.Project) error {
	if p.ID == "" {
		p.ID = newULID()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, order_number, name, sales_contact, device_quantity, current_stage_id, priority, estimated_completion, region, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.OrderNumber, p.Name, p.SalesContact, p.DeviceQuantity, p.CurrentStageID,
		p.Priority, p.EstimatedCompletion, p.Region, p.Notes, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	p := &models.Project{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, order_number, name, sales_contact, device_quantity, current_stage_id, priority, estimated_completion, region, notes, created_at, updated_at
		FROM projects WHERE id = ?`, id,
	).Scan(&p.ID, &p.OrderNumber, &p.Name, &p.SalesContact, &p.DeviceQuantity, &p.CurrentStageID, &p.Priority, &p.EstimatedCompletion, &p.Region, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) GetProjectByOrderNumber(ctx context.Context, orderNumber string) (*models.Project, error) {
	p := &models.Project{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, order_number, name, sales_contact, device_quantity, current_stage_id, priority, estimated_completion, region, notes, created_at, updated_at
		FROM projects WHERE order_number = ?`, orderNumber,
	).Scan(&p.ID, &p.OrderNumber, &p.Name, &p.SalesContact, &p.DeviceQuantity, &p.CurrentStageID, &p.Priority, &p.EstimatedCompletion, &p.Region, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project not found: %s", orderNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("get project by order number: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) ListProjects(ctx context.Context) ([]*models.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, order_number, name, sales_contact, device_quantity, current_stage_id, priority, estimated_completion, region, notes, created_at, updated_at
		FROM projects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []*models.Project
	for rows.Next() {
		p := &models.Project{}
		if err := rows.Scan(&p.ID, &p.OrderNumber, &p.Name, &p.SalesContact, &p.DeviceQuantity, &p.CurrentStageID, &p.Priority, &p.EstimatedCompletion, &p.Region, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *SQLiteStore) UpdateProject(ctx context.Context, p *models.Project) error {
	p.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE projects SET order_number=?, name=?, sales_contact=?, device_quantity=?, current_stage_id=?, priority=?, estimated_completion=?, region=?, notes=?, updated_at=?
		WHERE id=?`,
		p.OrderNumber, p.Name, p.SalesContact, p.DeviceQuantity, p.CurrentStageID,
		p.Priority, p.EstimatedCompletion, p.Region, p.Notes, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("project not found: %s", p.ID)
	}
	return nil
}

func (s *SQLiteStore) DeleteProject(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("project not found: %s", id)
	}
	return nil
}

// --- Timeline ---

func (s *SQLiteStore) CreateTimelineEvent(ctx context.Context, e *models.TimelineEvent) error {
	if e.ID == "" {
		e.ID = newULID()
	}
	e.CreatedAt = time.Now().UTC()
	if e.EventDate.IsZero() {
		e.EventDate = e.CreatedAt
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO timeline_events (id, project_id, stage_id, description, event_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.ProjectID, e.StageID, e.Description, e.EventDate, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create timeline event: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListTimelineEvents(ctx context.Context, projectID string) ([]*models.TimelineEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, stage_id, description, event_date, created_at
		FROM timeline_events WHERE project_id = ? ORDER BY event_date DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list timeline events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []*models.TimelineEvent
	for rows.Next() {
		e := &models.TimelineEvent{}
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.StageID, &e.Description, &e.EventDate, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan timeline event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// --- Tasks ---

func (s *SQLiteStore) CreateTask(ctx context.Context, t *models.Task) error {
	if t.ID == "" {
		t.ID = newULID()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = models.TaskStatusPending
	}

	assignedJSON, err := json.Marshal(t.AssignedTo)
	if err != nil {
		assignedJSON = []byte("[]")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, project_id, name, assigned_to, start_date, end_date, requirements, priority, status, task_type, completed_date, completed_by, completion_notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, t.Name, string(assignedJSON), t.StartDate, t.EndDate,
		t.Requirements, t.Priority, string(t.Status), t.TaskType,
		t.CompletedDate, t.CompletedBy, t.CompletionNotes, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetTask(ctx context.Context, id string) (*models.Task, error) {
	t := &models.Task{}
	var status, assignedJSON string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, name, assigned_to, start_date, end_date, requirements, priority, status, task_type, completed_date, completed_by, completion_notes, created_at, updated_at
		FROM tasks WHERE id = ?`, id,
	).Scan(&t.ID, &t.ProjectID, &t.Name, &assignedJSON, &t.StartDate, &t.EndDate,
		&t.Requirements, &t.Priority, &status, &t.TaskType,
		&t.CompletedDate, &t.CompletedBy, &t.CompletionNotes, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	t.Status = models.TaskStatus(status)
	_ = json.Unmarshal([]byte(assignedJSON), &t.AssignedTo)
	return t, nil
}

func (s *SQLiteStore) ListTasks(ctx context.Context, filter TaskListFilter) ([]*models.Task, error) {
	query := `SELECT id, project_id, name, assigned_to, start_date, end_date, requirements, priority, status, task_type, completed_date, completed_by, completion_notes, created_at, updated_at FROM tasks`
	var conditions []string
	var args []any

	if filter.ProjectID != "" {
		conditions = append(conditions, "project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY
		CASE status WHEN 'in_progress' THEN 0 WHEN 'pending' THEN 1 WHEN 'completed' THEN 2 WHEN 'cancelled' THEN 3 ELSE 4 END,
		CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 WHEN 'low' THEN 2 ELSE 3 END,
		created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*models.Task
	for rows.Next() {
		t := &models.Task{}
		var status, assignedJSON string

		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Name, &assignedJSON, &t.StartDate, &t.EndDate,
			&t.Requirements, &t.Priority, &status, &t.TaskType,
			&t.CompletedDate, &t.CompletedBy, &t.CompletionNotes, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}

		t.Status = models.TaskStatus(status)
		_ = json.Unmarshal([]byte(assignedJSON), &t.AssignedTo)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *SQLiteStore) UpdateTask(ctx context.Context, t *models.Task) error {
	t.UpdatedAt = time.Now().UTC()

	assignedJSON, err := json.Marshal(t.AssignedTo)
	if err != nil {
		assignedJSON = []byte("[]")
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET project_id=?, name=?, assigned_to=?, start_date=?, end_date=?, requirements=?, priority=?, status=?, task_type=?, completed_date=?, completed_by=?, completion_notes=?, updated_at=?
		WHERE id=?`,
		t.ProjectID, t.Name, string(assignedJSON), t.StartDate, t.EndDate,
		t.Requirements, t.Priority, string(t.Status), t.TaskType,
		t.CompletedDate, t.CompletedBy, t.CompletionNotes, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("task not found: %s", t.ID)
	}
	return nil
}

func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("task not found: %s", id)
	}
	return nil
}

// --- Users ---

func (s *SQLiteStore) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = newULID()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, role, department, email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Role, u.Department, u.Email, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	u := &models.User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, role, department, email, created_at, updated_at
		FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.Role, &u.Department, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, role, department, email, created_at, updated_at FROM users ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []*models.User
	for rows.Next() {
		u := &models.User{}
		if err := rows.Scan(&u.ID, &u.Name, &u.Role, &u.Department, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *SQLiteStore) UpdateUser(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET name=?, role=?, department=?, email=?, updated_at=? WHERE id=?`,
		u.Name, u.Role, u.Department, u.Email, u.UpdatedAt, u.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("user not found: %s", u.ID)
	}
	return nil
}

func (s *SQLiteStore) DeleteUser(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// --- Risks ---

func (s *SQLiteStore) CreateRisk(ctx context.Context, r *models.Risk) error {
	if r.ID == "" {
		r.ID = newULID()
	}
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	if r.Status == "" {
		r.Status = models.RiskStatusIdentified
	}
	if r.IdentifiedDate.IsZero() {
		r.IdentifiedDate = now
	}
	r.Recalculate()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO risks (id, project_id, description, category, probability, impact, risk_level, status, owner, root_cause, trigger_condition, notes, identified_date, expected_occurrence_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ProjectID, r.Description, r.Category, r.Probability, r.Impact, r.RiskLevel,
		string(r.Status), r.Owner, r.RootCause, r.Trigger, r.Notes,
		r.IdentifiedDate, r.ExpectedOccurrenceDate, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create risk: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetRisk(ctx context.Context, id string) (*models.Risk, error) {
	r := &models.Risk{}
	var status string
	var expected sql.NullTime

	err := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, description, category, probability, impact, risk_level, status, owner, root_cause, trigger_condition, notes, identified_date, expected_occurrence_date, created_at, updated_at
		FROM risks WHERE id = ?`, id,
	).Scan(&r.ID, &r.ProjectID, &r.Description, &r.Category, &r.Probability, &r.Impact, &r.RiskLevel,
		&status, &r.Owner, &r.RootCause, &r.Trigger, &r.Notes,
		&r.IdentifiedDate, &expected, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("risk not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get risk: %w", err)
	}

	r.Status = models.RiskStatus(status)
	if expected.Valid {
		r.ExpectedOccurrenceDate = &expected.Time
	}

	responses, err := s.listRiskResponses(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	r.Responses = responses

	return r, nil
}

func (s *SQLiteStore) ListRisksByProject(ctx context.Context, projectID string) ([]*models.Risk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, description, category, probability, impact, risk_level, status, owner, root_cause, trigger_condition, notes, identified_date, expected_occurrence_date, created_at, updated_at
		FROM risks WHERE project_id = ? ORDER BY risk_level DESC, identified_date`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list risks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var risks []*models.Risk
	for rows.Next() {
		r := &models.Risk{}
		var status string
		var expected sql.NullTime

		if err := rows.Scan(&r.ID, &r.ProjectID, &r.Description, &r.Category, &r.Probability, &r.Impact, &r.RiskLevel,
			&status, &r.Owner, &r.RootCause, &r.Trigger, &r.Notes,
			&r.IdentifiedDate, &expected, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan risk: %w", err)
		}

		r.Status = models.RiskStatus(status)
		if expected.Valid {
			r.ExpectedOccurrenceDate = &expected.Time
		}
		risks = append(risks, r)
	}
	return risks, rows.Err()
}

func (s *SQLiteStore) UpdateRisk(ctx context.Context, r *models.Risk) error {
	r.UpdatedAt = time.Now().UTC()
	r.Recalculate()

	result, err := s.db.ExecContext(ctx,
		`UPDATE risks SET description=?, category=?, probability=?, impact=?, risk_level=?, status=?, owner=?, root_cause=?, trigger_condition=?, notes=?, identified_date=?, expected_occurrence_date=?, updated_at=?
		WHERE id=?`,
		r.Description, r.Category, r.Probability, r.Impact, r.RiskLevel,
		string(r.Status), r.Owner, r.RootCause, r.Trigger, r.Notes,
		r.IdentifiedDate, r.ExpectedOccurrenceDate, r.UpdatedAt, r.ID,
	)
	if err != nil {
		return fmt.Errorf("update risk: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("risk not found: %s", r.ID)
	}
	return nil
}

func (s *SQLiteStore) DeleteRisk(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM risks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete risk: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("risk not found: %s", id)
	}
	return nil
}

// --- Risk Responses ---

func (s *SQLiteStore) CreateRiskResponse(ctx context.Context, resp *models.RiskResponse) error {
	if resp.ID == "" {
		resp.ID = newULID()
	}
	now := time.Now().UTC()
	resp.CreatedAt = now
	resp.UpdatedAt = now
	if resp.Status == "" {
		resp.Status = models.ResponseStatusPlanned
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO risk_responses (id, risk_id, strategy, action_plan, responsible, status, due_date, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		resp.ID, resp.RiskID, string(resp.Strategy), resp.ActionPlan, resp.Responsible,
		string(resp.Status), resp.DueDate, resp.Notes, resp.CreatedAt, resp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create risk response: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateRiskResponse(ctx context.Context, resp *models.RiskResponse) error {
	resp.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE risk_responses SET strategy=?, action_plan=?, responsible=?, status=?, due_date=?, notes=?, updated_at=?
		WHERE id=?`,
		string(resp.Strategy), resp.ActionPlan, resp.Responsible,
		string(resp.Status), resp.DueDate, resp.Notes, resp.UpdatedAt, resp.ID,
	)
	if err != nil {
		return fmt.Errorf("update risk response: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("risk response not found: %s", resp.ID)
	}
	return nil
}

func (s *SQLiteStore) DeleteRiskResponse(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM risk_responses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete risk response: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("risk response not found: %s", id)
	}
	return nil
}

func (s *SQLiteStore) listRiskResponses(ctx context.Context, riskID string) ([]*models.RiskResponse, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, risk_id, strategy, action_plan, responsible, status, due_date, notes, created_at, updated_at
		FROM risk_responses WHERE risk_id = ? ORDER BY created_at`, riskID)
	if err != nil {
		return nil, fmt.Errorf("list risk responses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var responses []*models.RiskResponse
	for rows.Next() {
		resp := &models.RiskResponse{}
		var strategy, status string
		if err := rows.Scan(&resp.ID, &resp.RiskID, &strategy, &resp.ActionPlan, &resp.Responsible,
			&status, &resp.DueDate, &resp.Notes, &resp.CreatedAt, &resp.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan risk response: %w", err)
		}
		resp.Strategy = models.ResponseStrategy(strategy)
		resp.Status = models.ResponseStatus(status)
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

// --- Lessons Learned ---

func (s *SQLiteStore) CreateLesson(ctx context.Context, l *models.LessonLearned) error {
	if l.ID == "" {
		l.ID = newULID()
	}
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lessons_learned (id, project_id, title, category, description, root_cause, improvement, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.ProjectID, l.Title, l.Category, l.Description, l.RootCause,
		l.Improvement, l.CreatedBy, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetLesson(ctx context.Context, id string) (*models.LessonLearned, error) {
	l := &models.LessonLearned{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, title, category, description, root_cause, improvement, created_by, created_at, updated_at
		FROM lessons_learned WHERE id = ?`, id,
	).Scan(&l.ID, &l.ProjectID, &l.Title, &l.Category, &l.Description, &l.RootCause, &l.Improvement, &l.CreatedBy, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("lesson not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get lesson: %w", err)
	}
	return l, nil
}

func (s *SQLiteStore) ListLessons(ctx context.Context, projectID string) ([]*models.LessonLearned, error) {
	query := `SELECT id, project_id, title, category, description, root_cause, improvement, created_by, created_at, updated_at FROM lessons_learned`
	var args []any
	if projectID != "" {
		query += " WHERE project_id = ?"
		args = append(args, projectID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var lessons []*models.LessonLearned
	for rows.Next() {
		l := &models.LessonLearned{}
		if err := rows.Scan(&l.ID, &l.ProjectID, &l.Title, &l.Category, &l.Description, &l.RootCause, &l.Improvement, &l.CreatedBy, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

func (s *SQLiteStore) UpdateLesson(ctx context.Context, l *models.LessonLearned) error {
	l.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE lessons_learned SET project_id=?, title=?, category=?, description=?, root_cause=?, improvement=?, created_by=?, updated_at=?
		WHERE id=?`,
		l.ProjectID, l.Title, l.Category, l.Description, l.RootCause,
		l.Improvement, l.CreatedBy, l.UpdatedAt, l.ID,
	)
	if err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("lesson not found: %s", l.ID)
	}
	return nil
}

func (s *SQLiteStore) DeleteLesson(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM lessons_learned WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("lesson not found: %s", id)
	}
	return nil
}
