package settings

// AppSettings holds the per-deployment runtime configuration the engine
// reads. WorkflowDeadlines maps a stage task title to an allowed day count,
// overriding the catalog default for both priority escalation and newly
// materialized deadlines. Changes are not retroactive to existing tasks'
// deadlines.
type AppSettings struct {
	WorkflowDeadlines map[string]int `yaml:"workflow_deadlines" json:"workflowDeadlines"`
}

func Default() *AppSettings {
	return &AppSettings{
		WorkflowDeadlines: map[string]int{},
	}
}

func (s *AppSettings) Clone() *AppSettings {
	deadlines := make(map[string]int, len(s.WorkflowDeadlines))
	for k, v := range s.WorkflowDeadlines {
		deadlines[k] = v
	}
	return &AppSettings{WorkflowDeadlines: deadlines}
}
