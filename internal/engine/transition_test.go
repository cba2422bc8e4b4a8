package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onboardflow/onboardflow/internal/catalog"
	"github.com/onboardflow/onboardflow/internal/client"
	"github.com/onboardflow/onboardflow/internal/task"
)

// openStageTask returns the single open task that carries a stage ID.
func openStageTask(t *testing.T, eng *Engine) *task.Task {
	t.Helper()
	var found *task.Task
	for _, tk := range eng.Snapshot().Tasks {
		if tk.IsCompleted || tk.StageID == "" {
			continue
		}
		require.Nil(t, found, "more than one open stage task")
		found = tk
	}
	require.NotNil(t, found, "no open stage task")
	return found
}

func TestCompletingStageTaskAdvancesClient(t *testing.T) {
	eng, _, clock := newTestEngine(t)
	m := addMember(t, eng, "sari")

	c, err := eng.AddClient(NewClientInput{BusinessName: "Warung A"})
	require.NoError(t, err)

	first := openStageTask(t, eng)
	_, err = eng.SetAssignees(first.ID, []string{m.ID})
	require.NoError(t, err)

	_, err = eng.LogProgress(first.ID, m.ID, "data received", 100, nil, nil)
	require.NoError(t, err)

	got, ok := eng.Client(c.ID)
	require.True(t, ok)
	assert.Equal(t, client.StatusOnboarding, got.Status)

	next := openStageTask(t, eng)
	assert.Equal(t, "Onboarding Process", next.Title)
	assert.Equal(t, string(client.StatusOnboarding), next.StageID)
	assert.Equal(t, task.DivisionSales, next.Division)
	assert.Len(t, next.Subtasks, 4)
	// Assignees carry over to the generated task.
	assert.Equal(t, []string{m.ID}, next.Assignees)
	// Deadline derives from the next stage's allowance.
	assert.Equal(t, clock.Now().AddDate(0, 0, 2), next.Deadline)
}

func TestTrainingChecklistFoldsAccumulatedRequirements(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	_, err := eng.AddClient(NewClientInput{
		BusinessName: "Warung A",
		Requirements: []string{"Greeting flow", "Menu catalog"},
	})
	require.NoError(t, err)

	// Stage 1 completion adds one requirement.
	_, err = eng.LogProgress(openStageTask(t, eng).ID, "", "", 100, []string{"Payment QR"}, nil)
	require.NoError(t, err)

	// Stage 2 completion adds another and lands on Training #1.
	_, err = eng.LogProgress(openStageTask(t, eng).ID, "", "", 100, []string{"Order tracking"}, nil)
	require.NoError(t, err)

	training := openStageTask(t, eng)
	require.Equal(t, string(client.StatusTraining1), training.StageID)

	titles := make([]string, 0, len(training.Subtasks))
	for _, st := range training.Subtasks {
		titles = append(titles, st.Title)
	}
	// New requirements first, then everything accumulated before this
	// transition. Training #1 has no catalog defaults.
	assert.Equal(t, []string{"Order tracking", "Greeting flow", "Menu catalog", "Payment QR"}, titles)
}

func TestIntermediateStageChecklistSkipsOldRequirements(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	_, err := eng.AddClient(NewClientInput{
		BusinessName: "Warung A",
		Requirements: []string{"Old requirement"},
	})
	require.NoError(t, err)

	_, err = eng.LogProgress(openStageTask(t, eng).ID, "", "", 100, []string{"New requirement"}, nil)
	require.NoError(t, err)

	onboarding := openStageTask(t, eng)
	require.Equal(t, "Onboarding Process", onboarding.Title)

	titles := make([]string, 0, len(onboarding.Subtasks))
	for _, st := range onboarding.Subtasks {
		titles = append(titles, st.Title)
	}
	// Only the fresh requirement plus the stage defaults; accumulated ones
	// wait for the first training stage.
	require.Len(t, titles, 5)
	assert.Equal(t, "New requirement", titles[0])
	assert.NotContains(t, titles, "Old requirement")
}

func TestNewAddonSpawnsStandaloneTask(t *testing.T) {
	eng, _, clock := newTestEngine(t)

	c, err := eng.AddClient(NewClientInput{BusinessName: "Warung A"})
	require.NoError(t, err)

	_, err = eng.LogProgress(openStageTask(t, eng).ID, "", "", 100, nil, []string{"Instagram Bot"})
	require.NoError(t, err)

	got, ok := eng.Client(c.ID)
	require.True(t, ok)
	assert.Equal(t, []string{"Instagram Bot"}, got.Addons)

	var addon *task.Task
	for _, tk := range eng.Snapshot().Tasks {
		if tk.Title == "Addon: Instagram Bot" {
			addon = tk
		}
	}
	require.NotNil(t, addon)
	assert.Empty(t, addon.StageID)
	assert.Equal(t, task.DivisionIT, addon.Division)
	assert.Equal(t, task.PriorityRegular, addon.Priority)
	assert.Empty(t, addon.Subtasks)
	assert.Equal(t, clock.Now().AddDate(0, 0, 14), addon.Deadline)

	// Completing the addon task never advances the pipeline.
	_, err = eng.CompleteTask(addon.ID, "")
	require.NoError(t, err)
	got, _ = eng.Client(c.ID)
	assert.Equal(t, client.StatusOnboarding, got.Status)
}

func TestFullPipelineEndsActive(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	c, err := eng.AddClient(NewClientInput{BusinessName: "Warung A"})
	require.NoError(t, err)

	for i := 0; i < catalog.Len(); i++ {
		_, err := eng.CompleteTask(openStageTask(t, eng).ID, "")
		require.NoError(t, err)
	}

	got, ok := eng.Client(c.ID)
	require.True(t, ok)
	assert.Equal(t, client.StatusActive, got.Status)

	// No ninth stage task.
	for _, tk := range eng.Snapshot().Tasks {
		if tk.StageID != "" {
			assert.True(t, tk.IsCompleted, "stage task %s left open", tk.Title)
		}
	}
}

func TestManualTaskCompletionDoesNotAdvance(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	c, err := eng.AddClient(NewClientInput{BusinessName: "Warung A"})
	require.NoError(t, err)
	projectID := eng.Snapshot().Projects[0].ID

	manual, err := eng.AddTask(NewTaskInput{
		ProjectID: projectID,
		Title:     "Prepare invoice",
		Division:  task.DivisionSales,
		Priority:  task.PriorityRegular,
	})
	require.NoError(t, err)

	_, err = eng.CompleteTask(manual.ID, "")
	require.NoError(t, err)

	got, _ := eng.Client(c.ID)
	assert.Equal(t, client.StatusWaitingForData, got.Status)
}

func TestTitleFallbackDrivesTransition(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	c, err := eng.AddClient(NewClientInput{BusinessName: "Warung A"})
	require.NoError(t, err)
	projectID := eng.Snapshot().Projects[0].ID

	// A manually created task with a sequence title still joins the
	// pipeline by title match.
	legacy, err := eng.AddTask(NewTaskInput{
		ProjectID: projectID,
		Title:     "Waiting for Data",
		Division:  task.DivisionSupport,
		Priority:  task.PriorityHigh,
	})
	require.NoError(t, err)
	require.Empty(t, legacy.StageID)

	_, err = eng.CompleteTask(legacy.ID, "")
	require.NoError(t, err)

	got, _ := eng.Client(c.ID)
	assert.Equal(t, client.StatusOnboarding, got.Status)
}

func TestTransitionSkipsTerminalClients(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	c, err := eng.AddClient(NewClientInput{BusinessName: "Warung A"})
	require.NoError(t, err)
	stage := openStageTask(t, eng)

	_, err = eng.UpdateClientStatus(c.ID, client.StatusDrop)
	require.NoError(t, err)

	_, err = eng.CompleteTask(stage.ID, "")
	require.NoError(t, err)

	got, _ := eng.Client(c.ID)
	assert.Equal(t, client.StatusDrop, got.Status)
	for _, tk := range eng.Snapshot().Tasks {
		assert.NotEqual(t, "Onboarding Process", tk.Title)
	}
}

func TestWorkflowDeadlineOverrideShapesNewTasks(t *testing.T) {
	eng, _, clock := newTestEngine(t)

	require.NoError(t, eng.SetWorkflowDeadline("Onboarding Process", 10))

	_, err := eng.AddClient(NewClientInput{BusinessName: "Warung A"})
	require.NoError(t, err)
	_, err = eng.CompleteTask(openStageTask(t, eng).ID, "")
	require.NoError(t, err)

	next := openStageTask(t, eng)
	require.Equal(t, "Onboarding Process", next.Title)
	assert.Equal(t, clock.Now().AddDate(0, 0, 10), next.Deadline)
}
