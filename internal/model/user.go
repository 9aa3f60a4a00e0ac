package model

// Role is the account role of a user
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

// Permission names an action a role may perform
type Permission string

const (
	PermissionManageUsers    Permission = "manage_users"
	PermissionManageProfiles Permission = "manage_profiles"
	PermissionManageContent  Permission = "manage_content"
)

var rolePermissions = map[Role][]Permission{
	RoleAdmin: {PermissionManageUsers, PermissionManageProfiles, PermissionManageContent},
	RoleOwner: {PermissionManageProfiles, PermissionManageContent},
}

// Can reports whether the role grants the permission
func (r Role) Can(p Permission) bool {
	for _, granted := range rolePermissions[r] {
		if granted == p {
			return true
		}
	}
	return false
}

// User is a GamerHub account. The password is never read back.
type User struct {
	ID    FlexID `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`

	// Profiles is populated by admin listings only
	Profiles []Profile `json:"profiles,omitempty"`
}

// UserInput is the payload for admin user create and update
type UserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Role     Role   `json:"role,omitempty"`
}

// RegisterInput is the payload for self-registration
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountUpdate is the payload for a user's own settings change
type AccountUpdate struct {
	Name            string `json:"name,omitempty"`
	CurrentPassword string `json:"currentPassword,omitempty"`
	NewPassword     string `json:"newPassword,omitempty"`
}

// Empty reports whether the update changes nothing
func (u AccountUpdate) Empty() bool {
	return u.Name == "" && u.NewPassword == ""
}
