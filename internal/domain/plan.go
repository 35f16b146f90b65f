package domain

// PlanType identifies a subscription tier.
type PlanType string

const (
	PlanFree    PlanType = "FREE"
	PlanFamily  PlanType = "FAMILY"
	PlanTeacher PlanType = "TEACHER"
	PlanSchool  PlanType = "SCHOOL"
)

// Plan is subscription metadata for display. Price is in cents per month.
type Plan struct {
	ID       string   `json:"id"`
	Type     PlanType `json:"plan_type"`
	Name     string   `json:"name"`
	Price    int64    `json:"price"`
	Features []string `json:"features"`
}

// Subscription is the redirect the payment processor hands back.
type Subscription struct {
	ID          string   `json:"id"`
	PlanType    PlanType `json:"plan_type"`
	Status      string   `json:"status"`
	ApprovalURL string   `json:"approval_url"`
}

// Role is the caller's role carried in the access token.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleParent  Role = "parent"
	RoleAdmin   Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleParent, RoleAdmin:
		return true
	}
	return false
}
