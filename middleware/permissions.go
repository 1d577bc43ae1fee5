package middleware

// Role constants to avoid string typos
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleTenant  = "tenant"
)

// AccessContext stores the authenticated caller's identity and permissions
// for downstream handlers and audit logging.
type AccessContext struct {
	UserID         uint
	RoleName       string
	PermissionType string // "full" or "readonly"
}

// CanWrite returns true if the user has write permissions.
func (ac *AccessContext) CanWrite() bool {
	return ac.PermissionType == "full"
}

// CanRead returns true if the user has read permissions.
func (ac *AccessContext) CanRead() bool {
	return ac.PermissionType == "full" || ac.PermissionType == "readonly"
}

// IsAdmin reports whether the caller holds the admin role.
func (ac *AccessContext) IsAdmin() bool {
	return ac.RoleName == RoleAdmin
}
