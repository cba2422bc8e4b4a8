package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/onboardflow/onboardflow/internal/catalog"
	"github.com/onboardflow/onboardflow/internal/client"
	"github.com/onboardflow/onboardflow/internal/eventbus"
	"github.com/onboardflow/onboardflow/internal/member"
	"github.com/onboardflow/onboardflow/internal/project"
	"github.com/onboardflow/onboardflow/internal/task"
	"github.com/onboardflow/onboardflow/pkg/cerr"
)

// NewClientInput carries the caller-supplied fields of a new engagement.
// Status, joined date, time counters and the first-stage task are derived.
type NewClientInput struct {
	Name          string `json:"name"`
	BusinessName  string `json:"businessName"`
	Package       string `json:"package"`
	Description   string `json:"description"`
	Email         string `json:"email"`
	Whatsapp      string `json:"whatsapp"`
	BusinessField string `json:"businessField"`

	Requirements []string `json:"requirements"`
	Addons       []string `json:"addons"`
}

// AddClient creates the engagement, its default project, the first-stage
// sequence task with the catalog's default checklist, and one addon task
// per requested addon.
func (e *Engine) AddClient(input NewClientInput) (*client.Client, error) {
	if strings.TrimSpace(input.BusinessName) == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "business name is required", nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	first := catalog.First()

	c := &client.Client{
		ID:            ulid.Make().String(),
		Name:          input.Name,
		BusinessName:  input.BusinessName,
		Package:       input.Package,
		Description:   input.Description,
		Email:         input.Email,
		Whatsapp:      input.Whatsapp,
		BusinessField: input.BusinessField,
		Status:        first.Stage,
		JoinedDate:    now,
		Requirements:  append([]string(nil), input.Requirements...),
		Addons:        append([]string(nil), input.Addons...),
	}

	p := &project.Project{
		ID:       ulid.Make().String(),
		Name:     fmt.Sprintf("%s Main Project", c.BusinessName),
		ClientID: c.ID,
		Status:   project.StatusActive,
	}

	firstTask := e.materializeStageTask(first, p.ID, nil, nil, now)
	created := []*task.Task{firstTask}
	for _, addon := range input.Addons {
		created = append(created, e.newAddonTask(addon, p.ID, now))
	}

	e.clients[c.ID] = c
	e.projects[p.ID] = p
	for _, t := range created {
		e.tasks[t.ID] = t
	}

	e.notifier.CreateClient(c.Clone())
	e.notifier.CreateProject(p.Clone())
	batch := make([]*task.Task, 0, len(created))
	for _, t := range created {
		batch = append(batch, t.Clone())
	}
	e.notifier.BatchCreateTasks(batch)

	e.bus.PublishNew(eventbus.EventTypeClientCreated, c.ID, c.BusinessName, nil)
	for _, t := range created {
		e.bus.PublishNew(eventbus.EventTypeTaskCreated, t.ID, t.Title, nil)
	}
	return c.Clone(), nil
}

// AddProject creates a project. Empty clientID makes it internal: its tasks
// complete harmlessly and never drive stage transitions.
func (e *Engine) AddProject(name, clientID, description string) (*project.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "project name is required", nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if clientID != "" {
		if _, ok := e.clients[clientID]; !ok {
			return nil, cerr.NewError(cerr.NotFound, "client not found", nil)
		}
	}

	p := &project.Project{
		ID:          ulid.Make().String(),
		Name:        name,
		ClientID:    clientID,
		Description: description,
		Status:      project.StatusActive,
	}
	e.projects[p.ID] = p
	e.notifier.CreateProject(p.Clone())
	return p.Clone(), nil
}

type NewTaskInput struct {
	ProjectID string        `json:"projectId"`
	Title     string        `json:"title"`
	Division  task.Division `json:"division"`
	Priority  task.Priority `json:"priority"`
	Deadline  time.Time     `json:"deadline"`
	Assignees []string      `json:"assignees"`
}

// AddTask creates an ad-hoc task. It carries no stage ID, so completing it
// never advances a pipeline.
func (e *Engine) AddTask(input NewTaskInput) (*task.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "task title is required", nil)
	}
	if !input.Division.Valid() {
		return nil, cerr.NewError(cerr.InvalidArgument, "unknown division", nil)
	}
	if !input.Priority.Valid() {
		return nil, cerr.NewError(cerr.InvalidArgument, "unknown priority", nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.projects[input.ProjectID]; !ok {
		return nil, cerr.NewError(cerr.NotFound, "project not found", nil)
	}

	t := &task.Task{
		ID:            ulid.Make().String(),
		ProjectID:     input.ProjectID,
		Title:         input.Title,
		Division:      input.Division,
		Priority:      input.Priority,
		Assignees:     append([]string(nil), input.Assignees...),
		ActiveUserIDs: []string{},
		Subtasks:      []task.Subtask{},
		Deadline:      input.Deadline,
		CreatedAt:     e.now(),
	}
	e.tasks[t.ID] = t
	e.notifier.CreateTask(t.Clone())
	e.bus.PublishNew(eventbus.EventTypeTaskCreated, t.ID, t.Title, nil)
	return t.Clone(), nil
}

// UpdateClientStatus is the manual override path. It accepts any valid
// status, including Drop; only automatic transitions are forward-only.
func (e *Engine) UpdateClientStatus(id string, status client.Status) (*client.Client, error) {
	if !status.Valid() {
		return nil, cerr.NewError(cerr.InvalidArgument, "unknown client status", nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.clients[id]
	if !ok {
		return nil, cerr.NewError(cerr.NotFound, "client not found", nil)
	}
	c.Status = status
	e.notifier.UpdateClient(c.Clone())
	return c.Clone(), nil
}

// ToggleTimer starts or stops the acting member's participation on a task.
// Starting removes the member from every other task's active set first: a
// member tracks at most one task at a time.
func (e *Engine) ToggleTimer(taskID, memberID string) (*task.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.team[memberID]; !ok {
		return nil, cerr.NewError(cerr.NotFound, "team member not found", nil)
	}
	t, ok := e.tasks[taskID]
	if !ok {
		return nil, cerr.NewError(cerr.NotFound, "task not found", nil)
	}

	if t.HasActiveUser(memberID) {
		t.ActiveUserIDs = removeID(t.ActiveUserIDs, memberID)
	} else {
		for _, other := range e.tasks {
			if other.ID == taskID || !other.HasActiveUser(memberID) {
				continue
			}
			other.ActiveUserIDs = removeID(other.ActiveUserIDs, memberID)
			e.notifier.UpdateTask(other.Clone())
		}
		t.ActiveUserIDs = append(t.ActiveUserIDs, memberID)
	}

	e.notifier.UpdateTask(t.Clone())
	return t.Clone(), nil
}

// LogProgress records a progress note and percentage, stops the acting
// member's timer on the task, and drives the stage transition when the task
// newly reaches 100%.
func (e *Engine) LogProgress(taskID, memberID, note string, percentage int, newRequirements, newAddons []string) (*task.Task, error) {
	if percentage < 0 || percentage > 100 {
		return nil, cerr.NewError(cerr.InvalidArgument, "completion percentage must be between 0 and 100", nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.tasks[taskID]
	if !ok {
		return nil, cerr.NewError(cerr.NotFound, "task not found", nil)
	}

	now := e.now()
	wasCompleted := t.IsCompleted

	if memberID != "" {
		t.ActiveUserIDs = removeID(t.ActiveUserIDs, memberID)
	}
	t.CompletionPercentage = percentage
	t.LastProgressNote = note
	if percentage == 100 && !wasCompleted {
		t.IsCompleted = true
		t.CompletedAt = &now
	}

	e.notifier.UpdateTask(t.Clone())

	if !wasCompleted && t.IsCompleted {
		e.bus.PublishNew(eventbus.EventTypeTaskCompleted, t.ID, t.Title, nil)
		e.advanceStage(t, newRequirements, newAddons, now)
	}
	return t.Clone(), nil
}

// CompleteTask is the quick-complete shortcut.
func (e *Engine) CompleteTask(taskID, memberID string) (*task.Task, error) {
	return e.LogProgress(taskID, memberID, "Quick Completed", 100, nil, nil)
}

// ToggleSubtask flips one checklist item and recomputes the task's
// completion percentage from the checklist ratio. It never flips
// IsCompleted: only explicit progress logging completes a task.
func (e *Engine) ToggleSubtask(taskID, subtaskID string) (*task.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.tasks[taskID]
	if !ok {
		return nil, cerr.NewError(cerr.NotFound, "task not found", nil)
	}

	found := false
	completed := 0
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == subtaskID {
			found = true
			if t.Subtasks[i].IsCompleted {
				t.Subtasks[i].IsCompleted = false
				t.Subtasks[i].CompletedAt = nil
			} else {
				now := e.now()
				t.Subtasks[i].IsCompleted = true
				t.Subtasks[i].CompletedAt = &now
			}
		}
		if t.Subtasks[i].IsCompleted {
			completed++
		}
	}
	if !found {
		return nil, cerr.NewError(cerr.NotFound, "subtask not found", nil)
	}
	if total := len(t.Subtasks); total > 0 {
		t.CompletionPercentage = int(float64(completed)/float64(total)*100 + 0.5)
	}

	e.notifier.UpdateTask(t.Clone())
	return t.Clone(), nil
}

func (e *Engine) UpdatePriority(taskID string, priority task.Priority) (*task.Task, error) {
	if !priority.Valid() {
		return nil, cerr.NewError(cerr.InvalidArgument, "unknown priority", nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.tasks[taskID]
	if !ok {
		return nil, cerr.NewError(cerr.NotFound, "task not found", nil)
	}
	t.Priority = priority
	e.notifier.UpdateTask(t.Clone())
	return t.Clone(), nil
}

func (e *Engine) UpdateDeadline(taskID string, deadline time.Time) (*task.Task, error) {
	if deadline.IsZero() {
		return nil, cerr.NewError(cerr.InvalidArgument, "deadline is required", nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.tasks[taskID]
	if !ok {
		return nil, cerr.NewError(cerr.NotFound, "task not found", nil)
	}
	t.Deadline = deadline
	e.notifier.UpdateTask(t.Clone())
	return t.Clone(), nil
}

// ToggleAssignee adds or removes a member from the task's assignee set.
func (e *Engine) ToggleAssignee(taskID, memberID string) (*task.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.team[memberID]; !ok {
		return nil, cerr.NewError(cerr.NotFound, "team member not found", nil)
	}
	t, ok := e.tasks[taskID]
	if !ok {
		return nil, cerr.NewError(cerr.NotFound, "task not found", nil)
	}

	if t.HasAssignee(memberID) {
		t.Assignees = removeID(t.Assignees, memberID)
	} else {
		t.Assignees = append(t.Assignees, memberID)
	}
	e.notifier.UpdateTask(t.Clone())
	return t.Clone(), nil
}

func (e *Engine) SetAssignees(taskID string, memberIDs []string) (*task.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.tasks[taskID]
	if !ok {
		return nil, cerr.NewError(cerr.NotFound, "task not found", nil)
	}
	assignees := make([]string, 0, len(memberIDs))
	for _, id := range memberIDs {
		if _, ok := e.team[id]; !ok {
			return nil, cerr.NewError(cerr.NotFound, fmt.Sprintf("team member %s not found", id), nil)
		}
		assignees = append(assignees, id)
	}
	t.Assignees = assignees
	e.notifier.UpdateTask(t.Clone())
	return t.Clone(), nil
}

// SetWorkflowDeadline overrides the allowed day count for one stage task
// title. It affects escalation thresholds and newly materialized deadlines;
// existing task deadlines are untouched.
func (e *Engine) SetWorkflowDeadline(taskTitle string, days int) error {
	if strings.TrimSpace(taskTitle) == "" {
		return cerr.NewError(cerr.InvalidArgument, "task title is required", nil)
	}
	if days < 1 {
		return cerr.NewError(cerr.InvalidArgument, "deadline days must be a positive number", nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.settings.WorkflowDeadlines[taskTitle] = days
	e.notifier.SaveSettings(e.settings.Clone())
	return nil
}

// AddTeamMember registers a member with a generated avatar.
func (e *Engine) AddTeamMember(name, email, password string, role member.Role) (*member.TeamMember, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "name and email are required", nil)
	}
	if !role.Valid() {
		return nil, cerr.NewError(cerr.InvalidArgument, "unknown role", nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, m := range e.team {
		if strings.EqualFold(m.Email, email) {
			return nil, cerr.NewError(cerr.AlreadyExists, "email already registered", nil)
		}
	}

	m := &member.TeamMember{
		ID:       ulid.Make().String(),
		Name:     name,
		Email:    email,
		Password: password,
		Role:     role,
		Avatar:   avatarURL(name),
	}
	e.team[m.ID] = m
	e.notifier.CreateMember(m.Clone())
	return m.Clone(), nil
}

func (e *Engine) UpdateTeamMember(m *member.TeamMember) (*member.TeamMember, error) {
	if !m.Role.Valid() {
		return nil, cerr.NewError(cerr.InvalidArgument, "unknown role", nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	existing, ok := e.team[m.ID]
	if !ok {
		return nil, cerr.NewError(cerr.NotFound, "team member not found", nil)
	}
	updated := m.Clone()
	if updated.Password == "" {
		updated.Password = existing.Password
	}
	if updated.Avatar == "" {
		updated.Avatar = existing.Avatar
	}
	e.team[updated.ID] = updated
	e.notifier.UpdateMember(updated.Clone())
	return updated.Clone(), nil
}

func (e *Engine) DeleteTeamMember(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.team[id]; !ok {
		return cerr.NewError(cerr.NotFound, "team member not found", nil)
	}
	delete(e.team, id)
	for _, t := range e.tasks {
		if t.HasActiveUser(id) {
			t.ActiveUserIDs = removeID(t.ActiveUserIDs, id)
			e.notifier.UpdateTask(t.Clone())
		}
	}
	e.notifier.DeleteMember(id)
	return nil
}

// Login resolves a member by case-insensitive email and password equality.
// On an empty team it bootstraps a demo manager account so a fresh install
// is reachable.
func (e *Engine) Login(email, password string) (*member.TeamMember, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, m := range e.team {
		if strings.EqualFold(m.Email, email) {
			if m.Password != password {
				return nil, cerr.NewError(cerr.Unauthenticated, "invalid email or password", nil)
			}
			return m.Clone(), nil
		}
	}
	if len(e.team) == 0 {
		demo := &member.TeamMember{
			ID:       ulid.Make().String(),
			Name:     "Admin Demo",
			Email:    email,
			Password: password,
			Role:     member.RoleManager,
			Avatar:   avatarURL("Admin Demo"),
		}
		e.team[demo.ID] = demo
		e.notifier.CreateMember(demo.Clone())
		return demo.Clone(), nil
	}
	return nil, cerr.NewError(cerr.Unauthenticated, "invalid email or password", nil)
}

func avatarURL(name string) string {
	return fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=random&color=fff", strings.ReplaceAll(name, " ", "+"))
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
