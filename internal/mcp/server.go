package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mbecker/rdtrack/internal/models"
	"github.com/mbecker/rdtrack/internal/scoring"
	"github.com/mbecker/rdtrack/internal/store"
)

// Server wraps the rdtrack data layer and exposes it as MCP tools.
type Server struct {
	store  store.Store
	scorer *scoring.Service
}

// NewServer creates the MCP server wrapper.
func NewServer(s store.Store) *Server {
	return &Server{
		store:  s,
		scorer: scoring.NewService(s),
	}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("rdtrack", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.listProjectsTool())
	srv.AddTool(s.projectHealthTool())
	srv.AddTool(s.projectRiskValueTool())
	srv.AddTool(s.dashboardAlertsTool())
	srv.AddTool(s.listTasksTool())
	srv.AddTool(s.createTaskTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// rdtrack_list_projects
func (s *Server) listProjectsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("rdtrack_list_projects",
		mcp.WithDescription("List all tracked R&D projects. Returns a JSON array with id, order number, name, current stage, priority, and estimated completion date."),
	)
	return tool, s.handleListProjects
}

func (s *Server) handleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list projects: %v", err)), nil
	}

	type projectOut struct {
		ID                  string `json:"id"`
		OrderNumber         string `json:"order_number"`
		Name                string `json:"name"`
		Stage               string `json:"stage"`
		Priority            string `json:"priority"`
		EstimatedCompletion string `json:"estimated_completion"`
		Region              string `json:"region"`
	}

	out := make([]projectOut, len(projects))
	for i, p := range projects {
		out[i] = projectOut{
			ID:                  p.ID,
			OrderNumber:         p.OrderNumber,
			Name:                p.Name,
			Stage:               p.CurrentStageID,
			Priority:            p.Priority,
			EstimatedCompletion: p.EstimatedCompletion,
			Region:              p.Region,
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal projects: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// rdtrack_project_health
func (s *Server) projectHealthTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("rdtrack_project_health",
		mcp.WithDescription("Get the schedule health of a project: score (0-100), status (healthy/warning/risk/critical/unknown), stage progress, and days until estimated completion. Resolves the project by name, order number, or id."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name, order number, or id")),
	)
	return tool, s.handleProjectHealth
}

func (s *Server) handleProjectHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: project"), nil
	}

	p, err := s.resolveProject(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("project not found: %s", name)), nil
	}

	health := scoring.ProjectHealth(p, time.Now())
	result := map[string]any{
		"project":               p.Name,
		"score":                 health.Score,
		"status":                string(health.Status),
		"progress":              health.Progress,
		"days_until_completion": health.DaysUntilCompletion,
	}

	data, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal health: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// rdtrack_project_risk_value
func (s *Server) projectRiskValueTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("rdtrack_project_risk_value",
		mcp.WithDescription("Get the aggregate risk value (0-100) of a project's open risks, plus a severity label (low/elevated/medium/high). Resolves the project by name, order number, or id."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name, order number, or id")),
	)
	return tool, s.handleProjectRiskValue
}

func (s *Server) handleProjectRiskValue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: project"), nil
	}

	p, err := s.resolveProject(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("project not found: %s", name)), nil
	}

	value := s.scorer.ProjectRiskValue(ctx, p.ID)
	result := map[string]any{
		"project":    p.Name,
		"risk_value": value,
		"label":      scoring.RiskValueLabel(value),
	}

	data, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal risk value: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// rdtrack_dashboard_alerts
func (s *Server) dashboardAlertsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("rdtrack_dashboard_alerts",
		mcp.WithDescription("Classify all open tasks and projects by schedule pressure: overdue tasks, tasks due within 3 days, projects past their completion date, and projects at risk of missing it."),
	)
	return tool, s.handleDashboardAlerts
}

func (s *Server) handleDashboardAlerts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	alerts, err := s.scorer.DashboardAlerts(ctx, time.Now())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to compute alerts: %v", err)), nil
	}

	data, err := json.Marshal(alerts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal alerts: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// rdtrack_list_tasks
func (s *Server) listTasksTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("rdtrack_list_tasks",
		mcp.WithDescription("List tasks, optionally filtered by project and/or status (pending, in_progress, completed, cancelled)."),
		mcp.WithString("project", mcp.Description("Project name, order number, or id to filter by")),
		mcp.WithString("status", mcp.Description("Status filter: pending, in_progress, completed, cancelled")),
	)
	return tool, s.handleListTasks
}

func (s *Server) handleListTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := store.TaskListFilter{}

	if name := request.GetString("project", ""); name != "" {
		p, err := s.resolveProject(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("project not found: %s", name)), nil
		}
		filter.ProjectID = p.ID
	}
	if status := request.GetString("status", ""); status != "" {
		filter.Status = models.TaskStatus(status)
	}

	tasks, err := s.store.ListTasks(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list tasks: %v", err)), nil
	}

	type taskOut struct {
		ID         string   `json:"id"`
		ProjectID  string   `json:"project_id"`
		Name       string   `json:"name"`
		Status     string   `json:"status"`
		Priority   string   `json:"priority"`
		AssignedTo []string `json:"assigned_to"`
		StartDate  string   `json:"start_date"`
		EndDate    string   `json:"end_date"`
	}

	out := make([]taskOut, len(tasks))
	for i, task := range tasks {
		out[i] = taskOut{
			ID:         task.ID,
			ProjectID:  task.ProjectID,
			Name:       task.Name,
			Status:     string(task.Status),
			Priority:   task.Priority,
			AssignedTo: task.AssignedTo,
			StartDate:  task.StartDate,
			EndDate:    task.EndDate,
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal tasks: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// rdtrack_create_task
func (s *Server) createTaskTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("rdtrack_create_task",
		mcp.WithDescription("Create a new task, optionally linked to a project. Returns the created task as JSON."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Task name")),
		mcp.WithString("project", mcp.Description("Project name, order number, or id")),
		mcp.WithString("end_date", mcp.Description("Due date, e.g. 2026-06-01")),
		mcp.WithString("priority", mcp.Description("Priority: low, medium, high")),
		mcp.WithString("assigned_to", mcp.Description("Assignee name")),
	)
	return tool, s.handleCreateTask
}

func (s *Server) handleCreateTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}

	task := &models.Task{
		Name:     name,
		EndDate:  request.GetString("end_date", ""),
		Priority: request.GetString("priority", ""),
		Status:   models.TaskStatusPending,
	}
	if assignee := request.GetString("assigned_to", ""); assignee != "" {
		task.AssignedTo = []string{assignee}
	}
	if projectName := request.GetString("project", ""); projectName != "" {
		p, err := s.resolveProject(ctx, projectName)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("project not found: %s", projectName)), nil
		}
		task.ProjectID = p.ID
	}

	if err := s.store.CreateTask(ctx, task); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create task: %v", err)), nil
	}

	result := map[string]any{
		"id":         task.ID,
		"project_id": task.ProjectID,
		"name":       task.Name,
		"status":     string(task.Status),
		"end_date":   task.EndDate,
	}

	data, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal task: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// resolveProject tries to find a project by order number first, then by id,
// then by name.
func (s *Server) resolveProject(ctx context.Context, name string) (*models.Project, error) {
	if p, err := s.store.GetProjectByOrderNumber(ctx, name); err == nil {
		return p, nil
	}
	if p, err := s.store.GetProject(ctx, name); err == nil {
		return p, nil
	}
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("project not found: %s", name)
}
