package project

type Status string

const (
	StatusActive    Status = "Active"
	StatusCompleted Status = "Completed"
	StatusOnHold    Status = "On Hold"
)

// Project groups tasks. ClientID is empty for internal projects; tasks of
// internal projects never drive stage transitions.
type Project struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	ClientID    string `yaml:"client_id,omitempty" json:"clientId,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Status      Status `yaml:"status" json:"status"`
}

func (p *Project) Clone() *Project {
	pc := *p
	return &pc
}
