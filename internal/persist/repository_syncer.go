package persist

import (
	"context"

	"github.com/onboardflow/onboardflow/internal/client"
	"github.com/onboardflow/onboardflow/internal/member"
	"github.com/onboardflow/onboardflow/internal/project"
	"github.com/onboardflow/onboardflow/internal/settings"
	"github.com/onboardflow/onboardflow/internal/task"
)

// RepositorySyncer implements Syncer over the per-entity repositories, so
// the record store is whatever storage backend the repositories sit on.
type RepositorySyncer struct {
	clientRepo   client.Repository
	projectRepo  project.Repository
	taskRepo     task.Repository
	memberRepo   member.Repository
	settingsRepo settings.Repository
}

func NewRepositorySyncer(
	clientRepo client.Repository,
	projectRepo project.Repository,
	taskRepo task.Repository,
	memberRepo member.Repository,
	settingsRepo settings.Repository,
) *RepositorySyncer {
	return &RepositorySyncer{
		clientRepo:   clientRepo,
		projectRepo:  projectRepo,
		taskRepo:     taskRepo,
		memberRepo:   memberRepo,
		settingsRepo: settingsRepo,
	}
}

func (s *RepositorySyncer) FetchAll(ctx context.Context) (*Snapshot, error) {
	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := s.projectRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	team, err := s.memberRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	appSettings, err := s.settingsRepo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Clients:  clients,
		Projects: projects,
		Tasks:    tasks,
		Team:     team,
		Settings: appSettings,
	}, nil
}

func (s *RepositorySyncer) CreateClient(ctx context.Context, c *client.Client) error {
	return s.clientRepo.Create(ctx, c)
}

func (s *RepositorySyncer) UpdateClient(ctx context.Context, c *client.Client) error {
	return s.clientRepo.Update(ctx, c)
}

func (s *RepositorySyncer) CreateProject(ctx context.Context, p *project.Project) error {
	return s.projectRepo.Create(ctx, p)
}

func (s *RepositorySyncer) CreateTask(ctx context.Context, t *task.Task) error {
	return s.taskRepo.Create(ctx, t)
}

func (s *RepositorySyncer) UpdateTask(ctx context.Context, t *task.Task) error {
	return s.taskRepo.Update(ctx, t)
}

func (s *RepositorySyncer) BatchCreateTasks(ctx context.Context, tasks []*task.Task) error {
	return s.taskRepo.BatchCreate(ctx, tasks)
}

func (s *RepositorySyncer) CreateMember(ctx context.Context, m *member.TeamMember) error {
	return s.memberRepo.Create(ctx, m)
}

func (s *RepositorySyncer) UpdateMember(ctx context.Context, m *member.TeamMember) error {
	return s.memberRepo.Update(ctx, m)
}

func (s *RepositorySyncer) DeleteMember(ctx context.Context, id string) error {
	return s.memberRepo.Delete(ctx, id)
}

func (s *RepositorySyncer) SaveSettings(ctx context.Context, appSettings *settings.AppSettings) error {
	return s.settingsRepo.Save(ctx, appSettings)
}
