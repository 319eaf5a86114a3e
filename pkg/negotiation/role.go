package negotiation

// Role is an operator seat. Exactly one connection holds user_1 and one
// user_2; everyone else watches as a spectator.
type Role string

const (
	RoleUser1     Role = "user_1"
	RoleUser2     Role = "user_2"
	RoleSpectator Role = "spectator"
)

// Operator reports whether the role is one of the two driving seats.
func (r Role) Operator() bool {
	return r == RoleUser1 || r == RoleUser2
}

// Partner returns the other operator seat. Spectators have no partner.
func (r Role) Partner() Role {
	switch r {
	case RoleUser1:
		return RoleUser2
	case RoleUser2:
		return RoleUser1
	default:
		return RoleSpectator
	}
}
