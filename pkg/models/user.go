package models

import "time"

// Role identifies what a user may do within the approval lifecycle.
type Role string

const (
	RoleOperator     Role = "operator"
	RoleLineIncharge Role = "line_incharge"
	RoleSupervisor   Role = "supervisor"
	RoleAdmin        Role = "admin"
	RoleAuditor      Role = "auditor"
)

// SystemActorID marks transitions performed by the engine itself rather than
// a human actor.
const SystemActorID = "system"

// User is an account capable of acting on submissions.
type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"       validate:"required"`
	Email      string    `json:"email"      validate:"required,email"`
	Role       Role      `json:"role"       validate:"required"`
	Department string    `json:"department" validate:"required"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

// Actor is the identity attached to a workflow action. It is a projection of
// User carried through engine calls so the engine never needs the directory
// for permission checks.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// SystemActor is the actor recorded for auto-progressed transitions.
func SystemActor() Actor {
	return Actor{ID: SystemActorID, Name: "System"}
}

// ActorOf projects a user into the actor shape the engine consumes.
func ActorOf(u *User) Actor {
	return Actor{ID: u.ID, Name: u.Name, Role: u.Role}
}
