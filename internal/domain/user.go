package domain

import "time"

// Role represents a user's standing in the booking pipeline. Villager is
// the source of truth for "currently holds an active lease": promotion
// happens only on approval, demotion only on lease termination.
type Role string

const (
	RoleUser     Role = "user"
	RoleVillager Role = "villager"
	RoleAdmin    Role = "admin"
)

// User is an account in the user/role store.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}
