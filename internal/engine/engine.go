// Package engine owns the authoritative in-memory state of the onboarding
// pipeline and every rule that mutates it: the task mutation surface, the
// stage transition machine, and the timer/escalation clock. All writes are
// serialized behind one mutex, so the clock tick and API mutations never
// interleave mid-update. Persistence is advisory: each mutation enqueues a
// fire-and-forget sync and local state stays the source of truth until the
// next full refresh overwrites it.
package engine

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/onboardflow/onboardflow/internal/client"
	"github.com/onboardflow/onboardflow/internal/eventbus"
	"github.com/onboardflow/onboardflow/internal/member"
	"github.com/onboardflow/onboardflow/internal/persist"
	"github.com/onboardflow/onboardflow/internal/project"
	"github.com/onboardflow/onboardflow/internal/settings"
	"github.com/onboardflow/onboardflow/internal/task"
)

// Notifier is the fire-and-forget side of the persistence boundary. In
// production it is a *persist.Dispatcher.
type Notifier interface {
	CreateClient(c *client.Client)
	UpdateClient(c *client.Client)
	CreateProject(p *project.Project)
	CreateTask(t *task.Task)
	UpdateTask(t *task.Task)
	BatchCreateTasks(tasks []*task.Task)
	CreateMember(m *member.TeamMember)
	UpdateMember(m *member.TeamMember)
	DeleteMember(id string)
	SaveSettings(s *settings.AppSettings)
}

type Engine struct {
	mu sync.Mutex

	clients  map[string]*client.Client
	projects map[string]*project.Project
	tasks    map[string]*task.Task
	team     map[string]*member.TeamMember
	settings *settings.AppSettings

	syncer   persist.Syncer
	notifier Notifier
	bus      *eventbus.Bus

	now func() time.Time
}

type Option func(*Engine)

// WithNow overrides the engine clock. Tests use it to step virtual time.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func New(syncer persist.Syncer, notifier Notifier, bus *eventbus.Bus, opts ...Option) *Engine {
	e := &Engine{
		clients:  make(map[string]*client.Client),
		projects: make(map[string]*project.Project),
		tasks:    make(map[string]*task.Task),
		team:     make(map[string]*member.TeamMember),
		settings: settings.Default(),
		syncer:   syncer,
		notifier: notifier,
		bus:      bus,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load populates the store from the record store. A failed fetch is logged
// and the session starts empty, mirroring first-run behavior.
func (e *Engine) Load(ctx context.Context) {
	snapshot, err := e.syncer.FetchAll(ctx)
	if err != nil {
		slog.Warn("initial load failed, starting empty", "error", err)
		return
	}
	e.replace(snapshot)
}

// Refresh re-fetches the full remote state and replaces the local store,
// last write wins. Un-synced local increments (notably timeSpent accrued
// since the last mutation) may be overwritten; cross-session consistency is
// eventual by design.
func (e *Engine) Refresh(ctx context.Context) error {
	snapshot, err := e.syncer.FetchAll(ctx)
	if err != nil {
		slog.Warn("state refresh failed, keeping local state", "error", err)
		return err
	}
	e.replace(snapshot)
	return nil
}

func (e *Engine) replace(snapshot *persist.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.clients = make(map[string]*client.Client, len(snapshot.Clients))
	for _, c := range snapshot.Clients {
		e.clients[c.ID] = c.Clone()
	}
	e.projects = make(map[string]*project.Project, len(snapshot.Projects))
	for _, p := range snapshot.Projects {
		e.projects[p.ID] = p.Clone()
	}
	e.tasks = make(map[string]*task.Task, len(snapshot.Tasks))
	for _, t := range snapshot.Tasks {
		e.tasks[t.ID] = t.Clone()
	}
	e.team = make(map[string]*member.TeamMember, len(snapshot.Team))
	for _, m := range snapshot.Team {
		e.team[m.ID] = m.Clone()
	}
	if snapshot.Settings != nil {
		e.settings = snapshot.Settings.Clone()
	}
}

// State is a deep-copied, ID-ordered view of the store handed to readers.
type State struct {
	Clients  []*client.Client      `json:"clients"`
	Projects []*project.Project    `json:"projects"`
	Tasks    []*task.Task          `json:"tasks"`
	Team     []*member.TeamMember  `json:"team"`
	Settings *settings.AppSettings `json:"settings"`
}

// Snapshot returns the full store. ULIDs sort chronologically, so ID order
// is creation order.
func (e *Engine) Snapshot() *State {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := &State{
		Clients:  make([]*client.Client, 0, len(e.clients)),
		Projects: make([]*project.Project, 0, len(e.projects)),
		Tasks:    make([]*task.Task, 0, len(e.tasks)),
		Team:     make([]*member.TeamMember, 0, len(e.team)),
		Settings: e.settings.Clone(),
	}
	for _, c := range e.clients {
		state.Clients = append(state.Clients, c.Clone())
	}
	for _, p := range e.projects {
		state.Projects = append(state.Projects, p.Clone())
	}
	for _, t := range e.tasks {
		state.Tasks = append(state.Tasks, t.Clone())
	}
	for _, m := range e.team {
		state.Team = append(state.Team, m.Clone())
	}
	sort.Slice(state.Clients, func(i, j int) bool { return state.Clients[i].ID < state.Clients[j].ID })
	sort.Slice(state.Projects, func(i, j int) bool { return state.Projects[i].ID < state.Projects[j].ID })
	sort.Slice(state.Tasks, func(i, j int) bool { return state.Tasks[i].ID < state.Tasks[j].ID })
	sort.Slice(state.Team, func(i, j int) bool { return state.Team[i].ID < state.Team[j].ID })
	return state
}

// Task returns a copy of one task.
func (e *Engine) Task(id string) (*task.Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.tasks[id]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// Client returns a copy of one client.
func (e *Engine) Client(id string) (*client.Client, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.clients[id]
	if !ok {
		return nil, false
	}
	return c.Clone(), true
}

// clientOf resolves a task's owning client through its project. Either hop
// may miss for internal tasks; callers treat a miss as "no client".
// Caller holds e.mu.
func (e *Engine) clientOf(t *task.Task) *client.Client {
	p, ok := e.projects[t.ProjectID]
	if !ok || p.ClientID == "" {
		return nil
	}
	return e.clients[p.ClientID]
}
