package entity

// Participant roles. A user carries exactly one role; the role recorded on a
// message is the sender's role at send time and is never re-derived.
const (
	RoleBuyer      = "buyer"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// Identity is a verified caller. Every core operation receives it explicitly;
// nothing reads ambient session state.
type Identity struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (i Identity) IsSuperadmin() bool {
	return i.Role == RoleSuperadmin
}
