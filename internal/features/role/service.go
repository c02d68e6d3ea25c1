package role

import (
	"context"
	"fmt"
	"sort"

	"crm-reports/internal/common/apperr"
	"crm-reports/internal/common/models"
	"crm-reports/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// RoleUpdate carries the editable role fields. Nil means unchanged.
type RoleUpdate struct {
	Description *string   `json:"description"`
	Permissions *[]string `json:"permissions"`
}

type RoleService interface {
	// GetPermissionsForRoles resolves role names into the union of
	// their permission strings. Names that no longer exist are
	// skipped, so a stale role in an old JWT degrades instead of
	// failing the request.
	GetPermissionsForRoles(ctx context.Context, roleNames []string) ([]string, error)

	// NamesForIDs resolves role ids into names for JWT claims.
	NamesForIDs(ctx context.Context, ids []primitive.ObjectID) ([]string, error)

	// EnsureBuiltinRoles creates any missing built-in role for the
	// tenant and returns name to id for all of them.
	EnsureBuiltinRoles(ctx context.Context, tenantID string) (map[string]primitive.ObjectID, error)

	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id string) (*Role, error)
	CreateRole(ctx context.Context, role *Role, userID string) error
	UpdateRole(ctx context.Context, id string, update RoleUpdate, userID string) error
	DeleteRole(ctx context.Context, id, userID string) error
}

type RoleServiceImpl struct {
	Repo   RoleRepository
	Audit  audit.AuditService
	Logger *zap.Logger
}

func NewRoleService(repo RoleRepository, auditService audit.AuditService, logger *zap.Logger) RoleService {
	return &RoleServiceImpl{
		Repo:   repo,
		Audit:  auditService,
		Logger: logger,
	}
}

func (s *RoleServiceImpl) GetPermissionsForRoles(ctx context.Context, roleNames []string) ([]string, error) {
	if len(roleNames) == 0 {
		return []string{}, nil
	}

	roles, err := s.Repo.FindByNames(ctx, roleNames)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, r := range roles {
		for _, p := range r.Permissions {
			seen[p] = true
		}
	}

	permissions := make([]string, 0, len(seen))
	for p := range seen {
		permissions = append(permissions, p)
	}
	sort.Strings(permissions)
	return permissions, nil
}

func (s *RoleServiceImpl) NamesForIDs(ctx context.Context, ids []primitive.ObjectID) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}

	roles, err := s.Repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *RoleServiceImpl) EnsureBuiltinRoles(ctx context.Context, tenantID string) (map[string]primitive.ObjectID, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant id is required")
	}
	ctx = context.WithValue(ctx, models.TenantIDKey, tenantID)

	builtin := BuiltinRoles()
	names := make([]string, 0, len(builtin))
	for _, r := range builtin {
		names = append(names, r.Name)
	}

	existing, err := s.Repo.FindByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]primitive.ObjectID, len(builtin))
	for _, r := range existing {
		ids[r.Name] = r.ID
	}

	for _, def := range builtin {
		if _, ok := ids[def.Name]; ok {
			continue
		}
		created := def
		if err := s.Repo.Create(ctx, &created); err != nil {
			return nil, fmt.Errorf("create built-in role %q: %w", def.Name, err)
		}
		ids[def.Name] = created.ID
		s.Logger.Info("built-in role created",
			zap.String("role", def.Name),
			zap.String("tenant", tenantID),
		)
	}

	return ids, nil
}

func (s *RoleServiceImpl) ListRoles(ctx context.Context) ([]Role, error) {
	return s.Repo.List(ctx)
}

func (s *RoleServiceImpl) GetRole(ctx context.Context, id string) (*Role, error) {
	return s.Repo.Get(ctx, id)
}

func validatePermissions(permissions []string) error {
	for _, p := range permissions {
		if !ValidPermission(p) {
			return apperr.Newf(apperr.TypeValidation, "unknown permission %q", p)
		}
	}
	return nil
}

func (s *RoleServiceImpl) CreateRole(ctx context.Context, role *Role, userID string) error {
	if role.Name == "" {
		return apperr.Newf(apperr.TypeValidation, "role name is required")
	}
	if err := validatePermissions(role.Permissions); err != nil {
		return err
	}
	if role.Permissions == nil {
		role.Permissions = []string{}
	}
	role.IsSystem = false

	if err := s.Repo.Create(ctx, role); err != nil {
		return err
	}

	_ = s.Audit.LogChange(ctx, models.AuditActionCreate, "roles", role.ID.Hex(), map[string]models.Change{
		"name":        {New: role.Name},
		"permissions": {New: role.Permissions},
	})
	return nil
}

func (s *RoleServiceImpl) UpdateRole(ctx context.Context, id string, update RoleUpdate, userID string) error {
	existing, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}

	changes := map[string]models.Change{}

	if update.Description != nil && *update.Description != existing.Description {
		if err := s.Repo.SetDescription(ctx, id, *update.Description); err != nil {
			return err
		}
		changes["description"] = models.Change{Old: existing.Description, New: *update.Description}
	}

	if update.Permissions != nil {
		if existing.IsSystem {
			return apperr.Newf(apperr.TypeValidation, "built-in role %q cannot be modified", existing.Name)
		}
		if err := validatePermissions(*update.Permissions); err != nil {
			return err
		}
		if err := s.Repo.SetPermissions(ctx, id, *update.Permissions); err != nil {
			return err
		}
		changes["permissions"] = models.Change{Old: existing.Permissions, New: *update.Permissions}
	}

	if len(changes) > 0 {
		_ = s.Audit.LogChange(ctx, models.AuditActionUpdate, "roles", id, changes)
	}
	return nil
}

func (s *RoleServiceImpl) DeleteRole(ctx context.Context, id, userID string) error {
	existing, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsSystem {
		return apperr.Newf(apperr.TypeValidation, "built-in role %q cannot be deleted", existing.Name)
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.Audit.LogChange(ctx, models.AuditActionDelete, "roles", id, map[string]models.Change{
		"name": {Old: existing.Name},
	})
	return nil
}
