// Package persist is the engine's boundary to the remote record store. The
// engine never blocks on it: mutations enqueue sync operations on the
// Dispatcher and local state stays authoritative for the session.
package persist

import (
	"context"

	"github.com/onboardflow/onboardflow/internal/client"
	"github.com/onboardflow/onboardflow/internal/member"
	"github.com/onboardflow/onboardflow/internal/project"
	"github.com/onboardflow/onboardflow/internal/settings"
	"github.com/onboardflow/onboardflow/internal/task"
)

// Snapshot is the full remote state returned by FetchAll.
type Snapshot struct {
	Clients  []*client.Client
	Projects []*project.Project
	Tasks    []*task.Task
	Team     []*member.TeamMember
	Settings *settings.AppSettings
}

// Syncer mirrors the record store's request surface: fetch-all plus
// per-entity create/update and a batch-create for tasks.
type Syncer interface {
	FetchAll(ctx context.Context) (*Snapshot, error)

	CreateClient(ctx context.Context, c *client.Client) error
	UpdateClient(ctx context.Context, c *client.Client) error

	CreateProject(ctx context.Context, p *project.Project) error

	CreateTask(ctx context.Context, t *task.Task) error
	UpdateTask(ctx context.Context, t *task.Task) error
	BatchCreateTasks(ctx context.Context, tasks []*task.Task) error

	CreateMember(ctx context.Context, m *member.TeamMember) error
	UpdateMember(ctx context.Context, m *member.TeamMember) error
	DeleteMember(ctx context.Context, id string) error

	SaveSettings(ctx context.Context, s *settings.AppSettings) error
}
