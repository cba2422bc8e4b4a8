package client

import "time"

// Status is the client's current pipeline stage, or one of the two terminal
// states. It only ever moves forward through the catalog order; the engine
// never regresses it automatically.
type Status string

const (
	StatusWaitingForData      Status = "Waiting for data"
	StatusOnboarding          Status = "Onboarding"
	StatusTraining1           Status = "Training #1"
	StatusWaitingForFeedback1 Status = "Waiting for Feedback #1"
	StatusTraining2           Status = "Training #2"
	StatusWaitingForFeedback2 Status = "Waiting for Feedback #2"
	StatusTraining3           Status = "Training #3"
	StatusIntegration         Status = "Integration"

	// StatusActive is the terminal maintenance phase after the last stage.
	StatusActive Status = "Active"
	// StatusDrop marks an abandoned engagement. Only manual overrides set it.
	StatusDrop Status = "Drop"
)

var Statuses = []Status{
	StatusWaitingForData,
	StatusOnboarding,
	StatusTraining1,
	StatusWaitingForFeedback1,
	StatusTraining2,
	StatusWaitingForFeedback2,
	StatusTraining3,
	StatusIntegration,
	StatusActive,
	StatusDrop,
}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusActive || s == StatusDrop
}

type Client struct {
	ID            string `yaml:"id" json:"id"`
	Name          string `yaml:"name" json:"name"`
	BusinessName  string `yaml:"business_name" json:"businessName"`
	Package       string `yaml:"package" json:"package"`
	Description   string `yaml:"description" json:"description"`
	Email         string `yaml:"email" json:"email"`
	Whatsapp      string `yaml:"whatsapp" json:"whatsapp"`
	BusinessField string `yaml:"business_field" json:"businessField"`

	Status     Status    `yaml:"status" json:"status"`
	JoinedDate time.Time `yaml:"joined_date" json:"joinedDate"`

	// TotalTimeSpent accumulates man-seconds across all of the client's
	// tasks' active sessions.
	TotalTimeSpent int64 `yaml:"total_time_spent" json:"totalTimeSpent"`

	// Requirements accumulate across stages and seed the first training
	// stage's checklist.
	Requirements []string `yaml:"requirements" json:"requirements"`
	// Addons accumulate across stages; each new addon spawns an independent
	// addon task outside the stage sequence.
	Addons []string `yaml:"addons" json:"addons"`
}

func (c *Client) Clone() *Client {
	cc := *c
	cc.Requirements = append([]string(nil), c.Requirements...)
	cc.Addons = append([]string(nil), c.Addons...)
	return &cc
}
