package engine

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/onboardflow/onboardflow/internal/catalog"
	"github.com/onboardflow/onboardflow/internal/client"
	"github.com/onboardflow/onboardflow/internal/eventbus"
	"github.com/onboardflow/onboardflow/internal/task"
)

const addonMaxDays = 14

// advanceStage runs the pipeline transition for a newly completed task.
// Manual and addon tasks resolve no catalog entry and fall through; sequence
// tasks append the supplied requirements and addons to the client, spawn one
// addon task per new addon, then either materialize the next stage task or,
// on the last stage, mark the client Active.
// Caller holds e.mu.
func (e *Engine) advanceStage(t *task.Task, newRequirements, newAddons []string, now time.Time) {
	index := -1
	if t.StageID != "" {
		index = catalog.IndexOfStage(client.Status(t.StageID))
	}
	if index < 0 {
		// Pre-StageID sequence tasks join by title.
		index = catalog.IndexOfTaskTitle(t.Title)
	}
	if index < 0 {
		return
	}

	c := e.clientOf(t)
	if c == nil || c.Status.Terminal() {
		return
	}

	// The first training checklist folds in requirements accumulated before
	// this transition; capture them before appending the new batch.
	priorRequirements := append([]string(nil), c.Requirements...)
	c.Requirements = append(c.Requirements, newRequirements...)
	c.Addons = append(c.Addons, newAddons...)

	created := make([]*task.Task, 0, len(newAddons)+1)
	for _, addon := range newAddons {
		created = append(created, e.newAddonTask(addon, t.ProjectID, now))
	}

	if catalog.IsTerminal(index) {
		c.Status = client.StatusActive
		e.bus.PublishNew(eventbus.EventTypeClientOnboarded, c.ID, c.BusinessName, nil)
	} else {
		next, _ := catalog.StageAt(index + 1)
		checklist := append([]string(nil), newRequirements...)
		if next.Stage == catalog.FirstTrainingStage {
			checklist = append(checklist, priorRequirements...)
		}
		nextTask := e.materializeStageTask(next, t.ProjectID, t.Assignees, checklist, now)
		created = append(created, nextTask)
		c.Status = next.Stage
		e.bus.PublishNew(eventbus.EventTypeClientStageChanged, c.ID, string(next.Stage), map[string]string{
			"businessName": c.BusinessName,
			"taskId":       nextTask.ID,
		})
	}

	for _, nt := range created {
		e.tasks[nt.ID] = nt
		e.bus.PublishNew(eventbus.EventTypeTaskCreated, nt.ID, nt.Title, nil)
	}

	e.notifier.UpdateClient(c.Clone())
	if len(created) > 0 {
		batch := make([]*task.Task, 0, len(created))
		for _, nt := range created {
			batch = append(batch, nt.Clone())
		}
		e.notifier.BatchCreateTasks(batch)
	}
}

// materializeStageTask builds the sequence task for one catalog entry. The
// checklist is the extra items (in caller order) followed by the entry's
// defaults; the deadline derives from the configured day allowance.
// Caller holds e.mu.
func (e *Engine) materializeStageTask(entry catalog.Entry, projectID string, assignees, extraChecklist []string, now time.Time) *task.Task {
	titles := make([]string, 0, len(extraChecklist)+len(entry.DefaultSubtasks))
	titles = append(titles, extraChecklist...)
	titles = append(titles, entry.DefaultSubtasks...)
	subtasks := make([]task.Subtask, 0, len(titles))
	for _, title := range titles {
		subtasks = append(subtasks, task.Subtask{
			ID:    ulid.Make().String(),
			Title: title,
		})
	}

	return &task.Task{
		ID:            ulid.Make().String(),
		ProjectID:     projectID,
		Title:         entry.TaskTitle,
		Division:      entry.Division,
		StageID:       string(entry.Stage),
		Assignees:     append([]string(nil), assignees...),
		ActiveUserIDs: []string{},
		Priority:      entry.Priority,
		Subtasks:      subtasks,
		Deadline:      now.AddDate(0, 0, e.entryMaxDays(entry)),
		CreatedAt:     now,
	}
}

// newAddonTask builds a standalone IT task for one purchased addon. It has
// no stage ID, so completing it never advances the pipeline.
// Caller holds e.mu.
func (e *Engine) newAddonTask(addon, projectID string, now time.Time) *task.Task {
	return &task.Task{
		ID:            ulid.Make().String(),
		ProjectID:     projectID,
		Title:         fmt.Sprintf("Addon: %s", addon),
		Division:      task.DivisionIT,
		Assignees:     []string{},
		ActiveUserIDs: []string{},
		Priority:      task.PriorityRegular,
		Subtasks:      []task.Subtask{},
		Deadline:      now.AddDate(0, 0, addonMaxDays),
		CreatedAt:     now,
	}
}

// entryMaxDays resolves the allowed day count for a catalog entry:
// settings override first, then the entry's own allowance.
// Caller holds e.mu.
func (e *Engine) entryMaxDays(entry catalog.Entry) int {
	if days, ok := e.settings.WorkflowDeadlines[entry.TaskTitle]; ok && days > 0 {
		return days
	}
	if entry.DaysToComplete > 0 {
		return entry.DaysToComplete
	}
	return catalog.DefaultMaxDays
}

// taskMaxDays resolves the allowed day count for escalation: settings
// override by title, then the catalog entry if the task maps to one, then
// the global default.
// Caller holds e.mu.
func (e *Engine) taskMaxDays(t *task.Task) int {
	if days, ok := e.settings.WorkflowDeadlines[t.Title]; ok && days > 0 {
		return days
	}
	index := -1
	if t.StageID != "" {
		index = catalog.IndexOfStage(client.Status(t.StageID))
	}
	if index < 0 {
		index = catalog.IndexOfTaskTitle(t.Title)
	}
	if entry, ok := catalog.StageAt(index); ok && entry.DaysToComplete > 0 {
		return entry.DaysToComplete
	}
	return catalog.DefaultMaxDays
}
