package role

import (
	"context"
	"reflect"
	"testing"

	"crm-reports/internal/common/apperr"
	"crm-reports/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type mockRoleRepo struct {
	store       map[string]*Role
	createCalls int
}

func newMockRoleRepo() *mockRoleRepo {
	return &mockRoleRepo{store: map[string]*Role{}}
}

func (m *mockRoleRepo) Create(ctx context.Context, role *Role) error {
	m.createCalls++
	for _, r := range m.store {
		if r.Name == role.Name {
			return apperr.Newf(apperr.TypeValidation, "role %q already exists", role.Name)
		}
	}
	if role.ID.IsZero() {
		role.ID = primitive.NewObjectID()
	}
	clone := *role
	m.store[role.ID.Hex()] = &clone
	return nil
}

func (m *mockRoleRepo) Get(ctx context.Context, id string) (*Role, error) {
	r, ok := m.store[id]
	if !ok {
		return nil, apperr.Newf(apperr.TypeRoleNotFound, "role %q not found", id)
	}
	clone := *r
	return &clone, nil
}

func (m *mockRoleRepo) FindByName(ctx context.Context, name string) (*Role, error) {
	for _, r := range m.store {
		if r.Name == name {
			clone := *r
			return &clone, nil
		}
	}
	return nil, apperr.Newf(apperr.TypeRoleNotFound, "role %q not found", name)
}

func (m *mockRoleRepo) FindByNames(ctx context.Context, names []string) ([]Role, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []Role
	for _, r := range m.store {
		if want[r.Name] {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockRoleRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]Role, error) {
	var out []Role
	for _, id := range ids {
		if r, ok := m.store[id.Hex()]; ok {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockRoleRepo) List(ctx context.Context) ([]Role, error) {
	var out []Role
	for _, r := range m.store {
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockRoleRepo) SetDescription(ctx context.Context, id, description string) error {
	r, ok := m.store[id]
	if !ok {
		return apperr.Newf(apperr.TypeRoleNotFound, "role %q not found", id)
	}
	r.Description = description
	return nil
}

func (m *mockRoleRepo) SetPermissions(ctx context.Context, id string, permissions []string) error {
	r, ok := m.store[id]
	if !ok {
		return apperr.Newf(apperr.TypeRoleNotFound, "role %q not found", id)
	}
	r.Permissions = permissions
	return nil
}

func (m *mockRoleRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.store[id]; !ok {
		return apperr.Newf(apperr.TypeRoleNotFound, "role %q not found", id)
	}
	delete(m.store, id)
	return nil
}

func (m *mockRoleRepo) EnsureIndexes(ctx context.Context) error { return nil }

type mockAudit struct {
	actions []models.AuditAction
}

func (m *mockAudit) LogChange(ctx context.Context, action models.AuditAction, module string, recordID string, changes map[string]models.Change) error {
	m.actions = append(m.actions, action)
	return nil
}

func (m *mockAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]models.AuditLog, error) {
	return nil, nil
}

func newTestRoleService(repo *mockRoleRepo) (*RoleServiceImpl, *mockAudit) {
	auditSvc := &mockAudit{}
	svc := &RoleServiceImpl{
		Repo:   repo,
		Audit:  auditSvc,
		Logger: zap.NewNop(),
	}
	return svc, auditSvc
}

func seedBuiltins(t *testing.T, repo *mockRoleRepo) map[string]primitive.ObjectID {
	t.Helper()
	ids := map[string]primitive.ObjectID{}
	for _, def := range BuiltinRoles() {
		r := def
		if err := repo.Create(context.Background(), &r); err != nil {
			t.Fatalf("seed role %q: %v", def.Name, err)
		}
		ids[r.Name] = r.ID
	}
	return ids
}

func TestGetPermissionsForRolesUnion(t *testing.T) {
	repo := newMockRoleRepo()
	seedBuiltins(t, repo)
	svc, _ := newTestRoleService(repo)
	ctx := context.Background()

	tests := []struct {
		name  string
		roles []string
		want  []string
	}{
		{
			name:  "single role",
			roles: []string{RoleViewer},
			want:  []string{PermReportsRead},
		},
		{
			name:  "overlapping roles deduplicate",
			roles: []string{RoleEditor, RoleViewer},
			want:  []string{PermReportsCreate, PermReportsDelete, PermReportsRead, PermReportsUpdate},
		},
		{
			name:  "unknown role is skipped",
			roles: []string{RoleViewer, "ghost"},
			want:  []string{PermReportsRead},
		},
		{
			name:  "no roles",
			roles: nil,
			want:  []string{},
		},
		{
			name:  "only unknown roles",
			roles: []string{"ghost"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.GetPermissionsForRoles(ctx, tt.roles)
			if err != nil {
				t.Fatalf("GetPermissionsForRoles: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("permissions = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAdminRoleCoversEveryPermission(t *testing.T) {
	repo := newMockRoleRepo()
	seedBuiltins(t, repo)
	svc, _ := newTestRoleService(repo)

	got, err := svc.GetPermissionsForRoles(context.Background(), []string{RoleAdmin})
	if err != nil {
		t.Fatalf("GetPermissionsForRoles: %v", err)
	}
	if len(got) != len(AllPermissions) {
		t.Fatalf("admin has %d permissions, want %d", len(got), len(AllPermissions))
	}
	for _, p := range AllPermissions {
		found := false
		for _, g := range got {
			if g == p {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("admin is missing %q", p)
		}
	}
}

func TestEnsureBuiltinRoles(t *testing.T) {
	repo := newMockRoleRepo()
	svc, _ := newTestRoleService(repo)
	ctx := context.Background()
	tenant := primitive.NewObjectID().Hex()

	ids, err := svc.EnsureBuiltinRoles(ctx, tenant)
	if err != nil {
		t.Fatalf("EnsureBuiltinRoles: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("got %d role ids, want 3", len(ids))
	}
	for _, name := range []string{RoleAdmin, RoleEditor, RoleViewer} {
		if ids[name].IsZero() {
			t.Errorf("no id returned for %q", name)
		}
	}
	if repo.createCalls != 3 {
		t.Fatalf("first pass created %d roles, want 3", repo.createCalls)
	}

	again, err := svc.EnsureBuiltinRoles(ctx, tenant)
	if err != nil {
		t.Fatalf("second EnsureBuiltinRoles: %v", err)
	}
	if repo.createCalls != 3 {
		t.Errorf("second pass created %d extra roles, want 0", repo.createCalls-3)
	}
	if !reflect.DeepEqual(ids, again) {
		t.Errorf("second pass returned different ids: %v vs %v", ids, again)
	}
}

func TestEnsureBuiltinRolesRequiresTenant(t *testing.T) {
	svc, _ := newTestRoleService(newMockRoleRepo())
	if _, err := svc.EnsureBuiltinRoles(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty tenant id")
	}
}

func TestCreateRoleValidation(t *testing.T) {
	tests := []struct {
		name string
		role Role
	}{
		{name: "missing name", role: Role{Permissions: []string{PermReportsRead}}},
		{name: "unknown permission", role: Role{Name: "analyst", Permissions: []string{"reports:explode"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestRoleService(newMockRoleRepo())
			err := svc.CreateRole(context.Background(), &tt.role, "u1")
			if !apperr.IsType(err, apperr.TypeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateRoleNeverCreatesSystemRoles(t *testing.T) {
	repo := newMockRoleRepo()
	svc, auditSvc := newTestRoleService(repo)

	role := Role{Name: "analyst", Permissions: []string{PermReportsRead}, IsSystem: true}
	if err := svc.CreateRole(context.Background(), &role, "u1"); err != nil {
		t.Fatalf("CreateRole: %v", err)
	}

	stored, err := repo.Get(context.Background(), role.ID.Hex())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.IsSystem {
		t.Error("client-supplied is_system flag was persisted")
	}
	if len(auditSvc.actions) != 1 || auditSvc.actions[0] != models.AuditActionCreate {
		t.Errorf("audit actions = %v, want [CREATE]", auditSvc.actions)
	}
}

func TestUpdateRole(t *testing.T) {
	repo := newMockRoleRepo()
	builtins := seedBuiltins(t, repo)
	svc, _ := newTestRoleService(repo)
	ctx := context.Background()

	custom := Role{Name: "analyst", Permissions: []string{PermReportsRead}}
	if err := svc.CreateRole(ctx, &custom, "u1"); err != nil {
		t.Fatalf("CreateRole: %v", err)
	}

	t.Run("permissions update applies", func(t *testing.T) {
		perms := []string{PermReportsRead, PermAuditRead}
		err := svc.UpdateRole(ctx, custom.ID.Hex(), RoleUpdate{Permissions: &perms}, "u1")
		if err != nil {
			t.Fatalf("UpdateRole: %v", err)
		}
		stored, _ := repo.Get(ctx, custom.ID.Hex())
		if !reflect.DeepEqual(stored.Permissions, perms) {
			t.Errorf("permissions = %v, want %v", stored.Permissions, perms)
		}
	})

	t.Run("built-in permissions are locked", func(t *testing.T) {
		perms := []string{}
		err := svc.UpdateRole(ctx, builtins[RoleAdmin].Hex(), RoleUpdate{Permissions: &perms}, "u1")
		if !apperr.IsType(err, apperr.TypeValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("unknown permission rejected", func(t *testing.T) {
		perms := []string{"everything:always"}
		err := svc.UpdateRole(ctx, custom.ID.Hex(), RoleUpdate{Permissions: &perms}, "u1")
		if !apperr.IsType(err, apperr.TypeValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("description edit allowed on built-in", func(t *testing.T) {
		desc := "Administrators"
		err := svc.UpdateRole(ctx, builtins[RoleAdmin].Hex(), RoleUpdate{Description: &desc}, "u1")
		if err != nil {
			t.Fatalf("UpdateRole: %v", err)
		}
		stored, _ := repo.Get(ctx, builtins[RoleAdmin].Hex())
		if stored.Description != desc {
			t.Errorf("description = %q, want %q", stored.Description, desc)
		}
	})
}

func TestDeleteRole(t *testing.T) {
	repo := newMockRoleRepo()
	builtins := seedBuiltins(t, repo)
	svc, auditSvc := newTestRoleService(repo)
	ctx := context.Background()

	custom := Role{Name: "analyst", Permissions: []string{PermReportsRead}}
	if err := svc.CreateRole(ctx, &custom, "u1"); err != nil {
		t.Fatalf("CreateRole: %v", err)
	}

	if err := svc.DeleteRole(ctx, builtins[RoleAdmin].Hex(), "u1"); !apperr.IsType(err, apperr.TypeValidation) {
		t.Fatalf("expected validation error deleting built-in role, got %v", err)
	}

	if err := svc.DeleteRole(ctx, custom.ID.Hex(), "u1"); err != nil {
		t.Fatalf("DeleteRole: %v", err)
	}
	if _, err := repo.Get(ctx, custom.ID.Hex()); !apperr.IsType(err, apperr.TypeRoleNotFound) {
		t.Errorf("role still present after delete, err = %v", err)
	}
	last := auditSvc.actions[len(auditSvc.actions)-1]
	if last != models.AuditActionDelete {
		t.Errorf("last audit action = %v, want DELETE", last)
	}
}

func TestNamesForIDs(t *testing.T) {
	repo := newMockRoleRepo()
	builtins := seedBuiltins(t, repo)
	svc, _ := newTestRoleService(repo)

	got, err := svc.NamesForIDs(context.Background(), []primitive.ObjectID{
		builtins[RoleViewer],
		builtins[RoleAdmin],
		primitive.NewObjectID(), // deleted role, skipped
	})
	if err != nil {
		t.Fatalf("NamesForIDs: %v", err)
	}
	want := []string{RoleAdmin, RoleViewer}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("names = %v, want %v", got, want)
	}
}
