package types

// Submission is raw, request-scoped form input. Nil pointer fields were not set
// by the user and may be filled from a preset.
type Submission struct {
	Preset            string  `json:"preset,omitempty"`
	Role              *string `json:"role,omitempty"`
	Seniority         *string `json:"seniority,omitempty"`
	Function          *string `json:"function,omitempty"`
	CompanyStage      *string `json:"company_stage,omitempty"`
	CompanySize       *string `json:"company_size,omitempty"`
	TeamSize          *int    `json:"team_size,omitempty"`
	CustomerFacing    *bool   `json:"customer_facing,omitempty"`
	ManagerPriorities *string `json:"manager_priorities,omitempty"`
	KnownConstraints  *string `json:"known_constraints,omitempty"`
	CompanyName       *string `json:"company_name,omitempty"`
	Website           string  `json:"website,omitempty"`
}

// Clone returns a deep copy so later edits to s do not leak into the copy.
func (s Submission) Clone() Submission {
	out := s
	out.Role = clonePtr(s.Role)
	out.Seniority = clonePtr(s.Seniority)
	out.Function = clonePtr(s.Function)
	out.CompanyStage = clonePtr(s.CompanyStage)
	out.CompanySize = clonePtr(s.CompanySize)
	out.TeamSize = clonePtr(s.TeamSize)
	out.CustomerFacing = clonePtr(s.CustomerFacing)
	out.ManagerPriorities = clonePtr(s.ManagerPriorities)
	out.KnownConstraints = clonePtr(s.KnownConstraints)
	out.CompanyName = clonePtr(s.CompanyName)
	return out
}

// StringPtr returns a pointer to v.
func StringPtr(v string) *string { return &v }

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// BoolPtr returns a pointer to v.
func BoolPtr(v bool) *bool { return &v }

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
