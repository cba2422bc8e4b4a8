package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onboardflow/onboardflow/internal/task"
)

func TestTickAccruesManSeconds(t *testing.T) {
	eng, _, clock := newTestEngine(t)
	a := addMember(t, eng, "agus")
	b := addMember(t, eng, "bella")

	c, err := eng.AddClient(NewClientInput{BusinessName: "Warung A"})
	require.NoError(t, err)
	taskID := eng.Snapshot().Tasks[0].ID

	_, err = eng.ToggleTimer(taskID, a.ID)
	require.NoError(t, err)
	_, err = eng.ToggleTimer(taskID, b.ID)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		clock.Advance(time.Second)
		eng.Tick(clock.Now(), time.Second)
	}

	// Two concurrent participants for three seconds is six man-seconds.
	got, ok := eng.Task(taskID)
	require.True(t, ok)
	assert.Equal(t, int64(6), got.TimeSpent)

	cl, ok := eng.Client(c.ID)
	require.True(t, ok)
	assert.Equal(t, int64(6), cl.TotalTimeSpent)
}

func TestTickSumsAcrossClientTasks(t *testing.T) {
	eng, _, clock := newTestEngine(t)
	a := addMember(t, eng, "agus")
	b := addMember(t, eng, "bella")

	c, err := eng.AddClient(NewClientInput{
		BusinessName: "Warung A",
		Addons:       []string{"Broadcast"},
	})
	require.NoError(t, err)

	tasks := eng.Snapshot().Tasks
	require.Len(t, tasks, 2)

	// One member on each of the client's tasks.
	_, err = eng.ToggleTimer(tasks[0].ID, a.ID)
	require.NoError(t, err)
	_, err = eng.ToggleTimer(tasks[1].ID, b.ID)
	require.NoError(t, err)

	clock.Advance(time.Second)
	eng.Tick(clock.Now(), time.Second)

	// Each task accrued one second and the client is credited for both.
	cl, ok := eng.Client(c.ID)
	require.True(t, ok)
	assert.Equal(t, int64(2), cl.TotalTimeSpent)
}

func TestTickSkipsIdleAndCompletedTasks(t *testing.T) {
	eng, _, clock := newTestEngine(t)
	a := addMember(t, eng, "agus")

	_, err := eng.AddClient(NewClientInput{BusinessName: "Warung A"})
	require.NoError(t, err)
	taskID := eng.Snapshot().Tasks[0].ID

	// Idle task accrues nothing.
	clock.Advance(time.Second)
	eng.Tick(clock.Now(), time.Second)
	got, _ := eng.Task(taskID)
	assert.Zero(t, got.TimeSpent)

	// Completed task accrues nothing even with a dangling active entry.
	_, err = eng.ToggleTimer(taskID, a.ID)
	require.NoError(t, err)
	_, err = eng.LogProgress(taskID, "", "done", 100, nil, nil)
	require.NoError(t, err)
	_, err = eng.ToggleTimer(taskID, a.ID)
	require.NoError(t, err)

	clock.Advance(time.Second)
	eng.Tick(clock.Now(), time.Second)
	got, _ = eng.Task(taskID)
	assert.Zero(t, got.TimeSpent)
}

func TestTickEscalatesOverdueTasks(t *testing.T) {
	eng, notifier, clock := newTestEngine(t)

	_, err := eng.AddClient(NewClientInput{BusinessName: "Warung A"})
	require.NoError(t, err)
	projectID := eng.Snapshot().Projects[0].ID

	manual, err := eng.AddTask(NewTaskInput{
		ProjectID: projectID,
		Title:     "Custom report",
		Division:  task.DivisionIT,
		Priority:  task.PriorityLow,
	})
	require.NoError(t, err)

	// Early in the default three day allowance a Low task still rises to
	// the Regular floor, nothing more.
	clock.Advance(24 * time.Hour)
	eng.Tick(clock.Now(), time.Second)
	got, _ := eng.Task(manual.ID)
	assert.Equal(t, task.PriorityRegular, got.Priority)

	// Past 70% of the allowance (2.1 days): High.
	clock.Advance(36 * time.Hour)
	eng.Tick(clock.Now(), time.Second)
	got, _ = eng.Task(manual.ID)
	assert.Equal(t, task.PriorityHigh, got.Priority)

	// At the full allowance: Urgent.
	clock.Advance(12 * time.Hour)
	eng.Tick(clock.Now(), time.Second)
	got, _ = eng.Task(manual.ID)
	assert.Equal(t, task.PriorityUrgent, got.Priority)

	// Both escalations were synced.
	assert.GreaterOrEqual(t, notifier.taskUpdateCount(), 2)
}

func TestEscalationNeverDemotes(t *testing.T) {
	eng, _, clock := newTestEngine(t)

	_, err := eng.AddClient(NewClientInput{BusinessName: "Warung A"})
	require.NoError(t, err)
	taskID := eng.Snapshot().Tasks[0].ID

	_, err = eng.UpdatePriority(taskID, task.PriorityUrgent)
	require.NoError(t, err)

	// Old enough for High, not yet for Urgent; a manual Urgent stays.
	clock.Advance(60 * time.Hour)
	eng.Tick(clock.Now(), time.Second)

	got, _ := eng.Task(taskID)
	assert.Equal(t, task.PriorityUrgent, got.Priority)
}

func TestEscalationHonorsDeadlineOverride(t *testing.T) {
	eng, _, clock := newTestEngine(t)

	require.NoError(t, eng.SetWorkflowDeadline("Waiting for Data", 1))

	_, err := eng.AddClient(NewClientInput{BusinessName: "Warung A"})
	require.NoError(t, err)
	taskID := eng.Snapshot().Tasks[0].ID

	// The stage default is three days, but the override shrinks it to one,
	// so a day-old task is already at its full allowance.
	clock.Advance(24*time.Hour + time.Hour)
	eng.Tick(clock.Now(), time.Second)

	got, _ := eng.Task(taskID)
	assert.Equal(t, task.PriorityUrgent, got.Priority)
}

func TestEscalatedPriorityBoundaries(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	base := &task.Task{CreatedAt: now, Priority: task.PriorityRegular}

	// Ten day allowance: High from day 7, Urgent from day 10.
	assert.Equal(t, task.Priority(""), escalatedPriority(base, now.Add(6*24*time.Hour), 10))
	assert.Equal(t, task.Priority(""), escalatedPriority(base, now.Add(6*24*time.Hour+22*time.Hour), 10))
	assert.Equal(t, task.PriorityHigh, escalatedPriority(base, now.Add(7*24*time.Hour), 10))
	assert.Equal(t, task.PriorityHigh, escalatedPriority(base, now.Add(7*24*time.Hour+12*time.Hour), 10))
	assert.Equal(t, task.PriorityUrgent, escalatedPriority(base, now.Add(10*24*time.Hour), 10))

	high := &task.Task{CreatedAt: now, Priority: task.PriorityHigh}
	assert.Equal(t, task.Priority(""), escalatedPriority(high, now.Add(8*24*time.Hour), 10))
	assert.Equal(t, task.PriorityUrgent, escalatedPriority(high, now.Add(10*24*time.Hour), 10))

	// A Low task demoted by hand climbs back on the next evaluation.
	low := &task.Task{CreatedAt: now, Priority: task.PriorityLow}
	assert.Equal(t, task.PriorityRegular, escalatedPriority(low, now.Add(24*time.Hour), 10))
	assert.Equal(t, task.PriorityUrgent, escalatedPriority(low, now.Add(11*24*time.Hour), 10))
}
