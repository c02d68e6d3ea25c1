package role

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Permission strings follow "resource:action".
const (
	PermReportsCreate = "reports:create"
	PermReportsRead   = "reports:read"
	PermReportsUpdate = "reports:update"
	PermReportsDelete = "reports:delete"
	PermAuditRead     = "audit:read"
	PermUsersRead     = "users:read"
	PermUsersManage   = "users:manage"
	PermRolesRead     = "roles:read"
	PermRolesManage   = "roles:manage"
)

// AllPermissions lists every permission string the API checks.
var AllPermissions = []string{
	PermReportsCreate,
	PermReportsRead,
	PermReportsUpdate,
	PermReportsDelete,
	PermAuditRead,
	PermUsersRead,
	PermUsersManage,
	PermRolesRead,
	PermRolesManage,
}

// Built-in role names. Every tenant gets these at bootstrap.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// Role groups permission strings under a tenant-scoped name. Users
// carry role names in their JWT claims; the middleware resolves them
// back to permissions on each request.
type Role struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID    primitive.ObjectID `json:"tenant_id" bson:"tenant_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description" bson:"description"`
	Permissions []string           `json:"permissions" bson:"permissions"`
	IsSystem    bool               `json:"is_system" bson:"is_system"` // built-in roles cannot be deleted or renamed
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// BuiltinRoles returns the role set created for every new tenant.
func BuiltinRoles() []Role {
	return []Role{
		{
			Name:        RoleAdmin,
			Description: "Full access to reports, users, roles and audit history",
			Permissions: append([]string{}, AllPermissions...),
			IsSystem:    true,
		},
		{
			Name:        RoleEditor,
			Description: "Build, run and organize reports",
			Permissions: []string{PermReportsCreate, PermReportsRead, PermReportsUpdate, PermReportsDelete},
			IsSystem:    true,
		},
		{
			Name:        RoleViewer,
			Description: "Run saved reports",
			Permissions: []string{PermReportsRead},
			IsSystem:    true,
		},
	}
}

// ValidPermission reports whether p is a known permission string.
func ValidPermission(p string) bool {
	for _, known := range AllPermissions {
		if p == known {
			return true
		}
	}
	return false
}
