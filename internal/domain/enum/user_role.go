package enum

// UserRole identifies the access level of a user
type UserRole string

const (
	RoleAdministrator UserRole = "administrator"
	RoleEmployee      UserRole = "employee"
)

func (r UserRole) Valid() bool {
	return r == RoleAdministrator || r == RoleEmployee
}
