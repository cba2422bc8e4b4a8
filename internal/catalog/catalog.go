// Package catalog defines the fixed ordered onboarding pipeline. Index order
// defines transition order; each entry is backed by exactly one sequence
// task type.
package catalog

import (
	"github.com/onboardflow/onboardflow/internal/client"
	"github.com/onboardflow/onboardflow/internal/task"
)

type Entry struct {
	Stage           client.Status
	TaskTitle       string
	Division        task.Division
	DaysToComplete  int
	Priority        task.Priority
	DefaultSubtasks []string
}

// FirstTrainingStage is the stage whose generated checklist folds in every
// requirement the client accumulated up to that point.
const FirstTrainingStage = client.StatusTraining1

// DefaultMaxDays applies to tasks with no catalog entry and no configured
// deadline override.
const DefaultMaxDays = 3

var sequence = []Entry{
	{
		Stage:          client.StatusWaitingForData,
		TaskTitle:      "Waiting for Data",
		Division:       task.DivisionSupport,
		DaysToComplete: 3,
		Priority:       task.PriorityHigh,
		DefaultSubtasks: []string{
			"Greeting",
			"Group koordinasi",
			"Akun WhatsApp",
			"Akun Business Manager",
			"Dokumen requirement",
		},
	},
	{
		Stage:          client.StatusOnboarding,
		TaskTitle:      "Onboarding Process",
		Division:       task.DivisionSales,
		DaysToComplete: 2,
		Priority:       task.PriorityHigh,
		DefaultSubtasks: []string{
			"Konfirmasi kelengkapan data",
			"Konfirmasi bisnis manager",
			"Konfirmasi requirement",
			"Penjelasan SoW",
		},
	},
	{
		Stage:          client.StatusTraining1,
		TaskTitle:      "Training #1 (Requirements)",
		Division:       task.DivisionTrainer,
		DaysToComplete: 5,
		Priority:       task.PriorityHigh,
	},
	{
		Stage:          client.StatusWaitingForFeedback1,
		TaskTitle:      "Collect Feedback #1",
		Division:       task.DivisionSupport,
		DaysToComplete: 3,
		Priority:       task.PriorityRegular,
	},
	{
		Stage:          client.StatusTraining2,
		TaskTitle:      "Training #2 (Refinement)",
		Division:       task.DivisionTrainer,
		DaysToComplete: 4,
		Priority:       task.PriorityHigh,
	},
	{
		Stage:          client.StatusWaitingForFeedback2,
		TaskTitle:      "Collect Feedback #2",
		Division:       task.DivisionSupport,
		DaysToComplete: 3,
		Priority:       task.PriorityRegular,
	},
	{
		Stage:          client.StatusTraining3,
		TaskTitle:      "Training #3 (Finalization)",
		Division:       task.DivisionTrainer,
		DaysToComplete: 3,
		Priority:       task.PriorityHigh,
	},
	{
		Stage:          client.StatusIntegration,
		TaskTitle:      "System Integration & Setup",
		Division:       task.DivisionIT,
		DaysToComplete: 5,
		Priority:       task.PriorityUrgent,
		DefaultSubtasks: []string{
			"Integrasi WhatsApp",
			"Integrasi Messenger",
			"Integrasi Instagram",
			"Integrasi Livechat",
			"Penjelasan dashboard",
		},
	},
}

func Len() int {
	return len(sequence)
}

func First() Entry {
	return sequence[0]
}

func StageAt(index int) (Entry, bool) {
	if index < 0 || index >= len(sequence) {
		return Entry{}, false
	}
	return sequence[index], true
}

// IndexOfStage resolves a catalog index from a stage identifier. Terminal
// client statuses are not part of the sequence and return -1.
func IndexOfStage(stage client.Status) int {
	for i, e := range sequence {
		if e.Stage == stage {
			return i
		}
	}
	return -1
}

// IndexOfTaskTitle resolves a catalog index by exact task title match. It
// remains the fallback join key for tasks created before StageID existed
// and for manually created tasks that happen to use a sequence title.
func IndexOfTaskTitle(title string) int {
	for i, e := range sequence {
		if e.TaskTitle == title {
			return i
		}
	}
	return -1
}

func IsTerminal(index int) bool {
	return index == len(sequence)-1
}

// Entries returns a copy of the sequence for read-only iteration.
func Entries() []Entry {
	out := make([]Entry, len(sequence))
	copy(out, sequence)
	return out
}
