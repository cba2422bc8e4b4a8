package engine

import (
	"context"
	"time"

	"github.com/onboardflow/onboardflow/internal/eventbus"
	"github.com/onboardflow/onboardflow/internal/task"
)

// highEscalationRatio is the fraction of the allowance at which an incomplete
// task is raised to High; at the full allowance it becomes Urgent.
const highEscalationRatio = 0.7

// Tick advances the engine clock by one interval: every open task accrues
// elapsed man-seconds per active participant (credited to the owning client
// as well), and aging tasks escalate. Priority changes are synced and
// announced; time accrual is not synced per tick, it rides along with the
// next mutation that updates the task.
func (e *Engine) Tick(now time.Time, elapsed time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	seconds := int64(elapsed / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	for _, t := range e.tasks {
		if t.IsCompleted {
			continue
		}

		if active := int64(len(t.ActiveUserIDs)); active > 0 {
			increment := active * seconds
			t.TimeSpent += increment
			if c := e.clientOf(t); c != nil {
				c.TotalTimeSpent += increment
			}
		}

		if escalated := escalatedPriority(t, now, e.taskMaxDays(t)); escalated != "" {
			t.Priority = escalated
			e.notifier.UpdateTask(t.Clone())
			e.bus.PublishNew(eventbus.EventTypeTaskEscalated, t.ID, string(escalated), map[string]string{
				"title": t.Title,
			})
		}
	}
}

// escalatedPriority returns the priority an aging task should move to, or ""
// when no change applies. Escalation is monotonic: it only ever moves to a
// strictly higher rank, so a manual Urgent is never demoted.
func escalatedPriority(t *task.Task, now time.Time, maxDays int) task.Priority {
	ageDays := now.Sub(t.CreatedAt).Hours() / 24
	allowed := float64(maxDays)

	target := task.PriorityRegular
	switch {
	case ageDays >= allowed:
		target = task.PriorityUrgent
	case ageDays >= highEscalationRatio*allowed:
		target = task.PriorityHigh
	}
	if target.Rank() <= t.Priority.Rank() {
		return ""
	}
	return target
}

// RunClock drives Tick on a fixed interval until ctx is cancelled.
func (e *Engine) RunClock(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Tick(e.now(), interval)
		}
	}
}

// RunRefresh periodically replaces local state with the record store's,
// until ctx is cancelled. Failures keep local state and retry next round.
func (e *Engine) RunRefresh(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = e.Refresh(ctx)
		}
	}
}
