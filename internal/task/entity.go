package task

import "time"

// Priority maps to the four kanban columns. Escalation only ever moves a
// task to a strictly higher rank.
type Priority string

const (
	PriorityUrgent  Priority = "Urgent"
	PriorityHigh    Priority = "High"
	PriorityRegular Priority = "Regular"
	PriorityLow     Priority = "Low"
)

func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 3
	case PriorityHigh:
		return 2
	case PriorityRegular:
		return 1
	default:
		return 0
	}
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityRegular, PriorityLow:
		return true
	}
	return false
}

type Division string

const (
	DivisionSales   Division = "Sales"
	DivisionSupport Division = "Support"
	DivisionTrainer Division = "Trainer"
	DivisionIT      Division = "IT"
	DivisionQC      Division = "QC"
)

var Divisions = []Division{DivisionSales, DivisionSupport, DivisionTrainer, DivisionIT, DivisionQC}

func (d Division) Valid() bool {
	for _, known := range Divisions {
		if d == known {
			return true
		}
	}
	return false
}

type Subtask struct {
	ID          string     `yaml:"id" json:"id"`
	Title       string     `yaml:"title" json:"title"`
	IsCompleted bool       `yaml:"is_completed" json:"isCompleted"`
	CompletedAt *time.Time `yaml:"completed_at,omitempty" json:"completedAt,omitempty"`
}

type Task struct {
	ID        string   `yaml:"id" json:"id"`
	ProjectID string   `yaml:"project_id" json:"projectId"`
	Title     string   `yaml:"title" json:"title"`
	Division  Division `yaml:"division" json:"division"`

	// StageID is the workflow stage identifier for generated sequence tasks.
	// It is empty for manually created and addon tasks; those never drive a
	// stage transition through it.
	StageID string `yaml:"stage_id,omitempty" json:"stageId,omitempty"`

	Assignees     []string `yaml:"assignees" json:"assignees"`
	ActiveUserIDs []string `yaml:"active_user_ids" json:"activeUserIds"`

	// TimeSpent is cumulative man-seconds: each tick adds one second per
	// active participant.
	TimeSpent int64 `yaml:"time_spent" json:"timeSpent"`

	CompletionPercentage int        `yaml:"completion_percentage" json:"completionPercentage"`
	Priority             Priority   `yaml:"priority" json:"priority"`
	IsCompleted          bool       `yaml:"is_completed" json:"isCompleted"`
	CompletedAt          *time.Time `yaml:"completed_at,omitempty" json:"completedAt,omitempty"`
	LastProgressNote     string     `yaml:"last_progress_note,omitempty" json:"lastProgressNote,omitempty"`

	Subtasks []Subtask `yaml:"subtasks" json:"subtasks"`

	Deadline  time.Time `yaml:"deadline" json:"deadline"`
	CreatedAt time.Time `yaml:"created_at" json:"createdAt"`
}

func (t *Task) HasActiveUser(memberID string) bool {
	for _, id := range t.ActiveUserIDs {
		if id == memberID {
			return true
		}
	}
	return false
}

func (t *Task) HasAssignee(memberID string) bool {
	for _, id := range t.Assignees {
		if id == memberID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy, so snapshots handed to the API layer never
// alias engine-owned state.
func (t *Task) Clone() *Task {
	c := *t
	c.Assignees = append([]string(nil), t.Assignees...)
	c.ActiveUserIDs = append([]string(nil), t.ActiveUserIDs...)
	c.Subtasks = make([]Subtask, len(t.Subtasks))
	copy(c.Subtasks, t.Subtasks)
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	for i := range c.Subtasks {
		if c.Subtasks[i].CompletedAt != nil {
			at := *c.Subtasks[i].CompletedAt
			c.Subtasks[i].CompletedAt = &at
		}
	}
	return &c
}
