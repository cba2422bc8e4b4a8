package persist

import (
	"context"
	"log/slog"

	"github.com/sourcegraph/conc"

	"github.com/onboardflow/onboardflow/internal/client"
	"github.com/onboardflow/onboardflow/internal/member"
	"github.com/onboardflow/onboardflow/internal/project"
	"github.com/onboardflow/onboardflow/internal/settings"
	"github.com/onboardflow/onboardflow/internal/task"
	"github.com/onboardflow/onboardflow/pkg/panicerr"
)

const (
	defaultQueueSize = 1024
	workerCount      = 4
)

type syncOp struct {
	name string
	run  func(ctx context.Context) error
}

// Dispatcher executes sync operations asynchronously. Enqueue never blocks:
// when the queue is full the operation is dropped with a warning, because a
// slow or failed sync must never hold up a mutation. Failures are logged and
// swallowed; the in-memory store remains the source of truth.
type Dispatcher struct {
	syncer Syncer
	queue  chan syncOp
	wg     conc.WaitGroup
}

func NewDispatcher(syncer Syncer) *Dispatcher {
	return &Dispatcher{
		syncer: syncer,
		queue:  make(chan syncOp, defaultQueueSize),
	}
}

// Start launches the worker pool. Workers drain the queue until ctx is
// cancelled; Wait blocks until they have stopped.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < workerCount; i++ {
		d.wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case op := <-d.queue:
					if err := panicerr.Safe(func() error { return op.run(ctx) })(); err != nil {
						slog.Warn("sync failed", "op", op.name, "error", err)
					}
				}
			}
		})
	}
}

func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) enqueue(name string, run func(ctx context.Context) error) {
	select {
	case d.queue <- syncOp{name: name, run: run}:
	default:
		slog.Warn("sync queue full, dropping operation", "op", name)
	}
}

func (d *Dispatcher) CreateClient(c *client.Client) {
	d.enqueue("create_client", func(ctx context.Context) error {
		return d.syncer.CreateClient(ctx, c)
	})
}

func (d *Dispatcher) UpdateClient(c *client.Client) {
	d.enqueue("update_client", func(ctx context.Context) error {
		return d.syncer.UpdateClient(ctx, c)
	})
}

func (d *Dispatcher) CreateProject(p *project.Project) {
	d.enqueue("create_project", func(ctx context.Context) error {
		return d.syncer.CreateProject(ctx, p)
	})
}

func (d *Dispatcher) CreateTask(t *task.Task) {
	d.enqueue("create_task", func(ctx context.Context) error {
		return d.syncer.CreateTask(ctx, t)
	})
}

func (d *Dispatcher) UpdateTask(t *task.Task) {
	d.enqueue("update_task", func(ctx context.Context) error {
		return d.syncer.UpdateTask(ctx, t)
	})
}

func (d *Dispatcher) BatchCreateTasks(tasks []*task.Task) {
	if len(tasks) == 0 {
		return
	}
	d.enqueue("batch_create_tasks", func(ctx context.Context) error {
		return d.syncer.BatchCreateTasks(ctx, tasks)
	})
}

func (d *Dispatcher) CreateMember(m *member.TeamMember) {
	d.enqueue("create_member", func(ctx context.Context) error {
		return d.syncer.CreateMember(ctx, m)
	})
}

func (d *Dispatcher) UpdateMember(m *member.TeamMember) {
	d.enqueue("update_member", func(ctx context.Context) error {
		return d.syncer.UpdateMember(ctx, m)
	})
}

func (d *Dispatcher) DeleteMember(id string) {
	d.enqueue("delete_member", func(ctx context.Context) error {
		return d.syncer.DeleteMember(ctx, id)
	})
}

func (d *Dispatcher) SaveSettings(s *settings.AppSettings) {
	d.enqueue("save_settings", func(ctx context.Context) error {
		return d.syncer.SaveSettings(ctx, s)
	})
}
