package user

import (
	"time"

	"github.com/google/uuid"
)

// Roles as stored in the users table, owned by the user directory.
const (
	RoleManager = "MANAGER"
	RoleMember  = "MEMBER"
)

// User represents a row in the users table. The directory owns this table;
// team-service only ever reads it. The password column is never selected.
type User struct {
	ID        uuid.UUID
	Username  string
	Email     string
	Role      string // "MANAGER" or "MEMBER"
	CreatedAt time.Time
	UpdatedAt time.Time
}
