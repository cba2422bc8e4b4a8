package member

type Role string

const (
	RoleManager   Role = "Manager"
	RoleLeader    Role = "Leader"
	RoleSales     Role = "Sales"
	RoleSupport   Role = "Support"
	RoleTrainer   Role = "Trainer"
	RoleIT        Role = "IT"
	RoleDeveloper Role = "Developer"
	RoleQA        Role = "QA"
)

var Roles = []Role{RoleManager, RoleLeader, RoleSales, RoleSupport, RoleTrainer, RoleIT, RoleDeveloper, RoleQA}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// TeamMember is an operator of the system. Email is the case-insensitive
// login key. Password is an opaque credential string; validating it beyond
// equality is out of scope here.
type TeamMember struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Email    string `yaml:"email" json:"email"`
	Password string `yaml:"password" json:"-"`
	Role     Role   `yaml:"role" json:"role"`
	Avatar   string `yaml:"avatar" json:"avatar"`
}

func (m *TeamMember) Clone() *TeamMember {
	mc := *m
	return &mc
}
