package user

import (
	"context"
	"reflect"
	"testing"
	"time"

	"crm-reports/internal/common/apperr"
	"crm-reports/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type listCall struct {
	status        string
	limit, offset int64
}

type mockUserRepo struct {
	store     map[string]*models.User
	listCalls []listCall
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{store: map[string]*models.User{}}
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	for _, u := range m.store {
		if u.Username == user.Username {
			return apperr.Newf(apperr.TypeValidation, "username %q is taken", user.Username)
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	clone := *user
	m.store[user.ID.Hex()] = &clone
	return nil
}

func (m *mockUserRepo) Get(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.store[id]
	if !ok {
		return nil, apperr.Newf(apperr.TypeUserNotFound, "user %q not found", id)
	}
	clone := *u
	return &clone, nil
}

func (m *mockUserRepo) FindByUsernameGlobal(ctx context.Context, username string) (*models.User, error) {
	for _, u := range m.store {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, apperr.Newf(apperr.TypeUserNotFound, "user %q not found", username)
}

func (m *mockUserRepo) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := m.store[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) List(ctx context.Context, status string, limit, offset int64) ([]models.User, int64, error) {
	m.listCalls = append(m.listCalls, listCall{status: status, limit: limit, offset: offset})
	var out []models.User
	for _, u := range m.store {
		if status != "" && u.Status != status {
			continue
		}
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (m *mockUserRepo) SetStatus(ctx context.Context, id, status string) error {
	u, ok := m.store[id]
	if !ok {
		return apperr.Newf(apperr.TypeUserNotFound, "user %q not found", id)
	}
	u.Status = status
	return nil
}

func (m *mockUserRepo) SetRoles(ctx context.Context, id string, roles []primitive.ObjectID) error {
	u, ok := m.store[id]
	if !ok {
		return apperr.Newf(apperr.TypeUserNotFound, "user %q not found", id)
	}
	u.Roles = roles
	return nil
}

func (m *mockUserRepo) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	u, ok := m.store[id]
	if !ok {
		return apperr.Newf(apperr.TypeUserNotFound, "user %q not found", id)
	}
	u.LastLogin = &at
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.store[id]; !ok {
		return apperr.Newf(apperr.TypeUserNotFound, "user %q not found", id)
	}
	delete(m.store, id)
	return nil
}

func (m *mockUserRepo) EnsureIndexes(ctx context.Context) error { return nil }

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

func newTestUserService(repo *mockUserRepo) (*UserServiceImpl, *mockAudit) {
	auditSvc := &mockAudit{}
	svc := &UserServiceImpl{
		Repo:   repo,
		Audit:  auditSvc,
		Logger: zap.NewNop(),
	}
	return svc, auditSvc
}

func TestCreateUserHashesPassword(t *testing.T) {
	repo := newMockUserRepo()
	svc, auditSvc := newTestUserService(repo)

	usr, err := svc.CreateUser(context.Background(), CreateUserInput{
		Username: "dave",
		Password: "s3cretpass",
		Email:    "dave@example.com",
	}, "admin-1")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	stored := repo.store[usr.ID.Hex()]
	if stored.Password == "s3cretpass" {
		t.Error("password stored in plaintext")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("s3cretpass")) != nil {
		t.Error("stored hash does not verify against the original password")
	}
	if stored.Status != "active" {
		t.Errorf("status = %q, want active", stored.Status)
	}
	if len(auditSvc.actions) != 1 || auditSvc.actions[0] != models.AuditActionCreate {
		t.Errorf("audit actions = %v, want [CREATE]", auditSvc.actions)
	}
}

func TestCreateUserValidation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateUserInput
	}{
		{name: "missing username", input: CreateUserInput{Email: "x@example.com", Password: "s3cretpass"}},
		{name: "missing email", input: CreateUserInput{Username: "x", Password: "s3cretpass"}},
		{name: "short password", input: CreateUserInput{Username: "x", Email: "x@example.com", Password: "short"}},
		{name: "bad role id", input: CreateUserInput{Username: "x", Email: "x@example.com", Password: "s3cretpass", RoleIDs: []string{"nope"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestUserService(newMockUserRepo())
			_, err := svc.CreateUser(context.Background(), tt.input, "admin-1")
			if !apperr.IsType(err, apperr.TypeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func seedUser(t *testing.T, repo *mockUserRepo, username, status string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Status: status}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user %q: %v", username, err)
	}
	return u
}

func TestUpdateUserStatus(t *testing.T) {
	repo := newMockUserRepo()
	svc, auditSvc := newTestUserService(repo)
	ctx := context.Background()
	target := seedUser(t, repo, "dave", "active")

	if err := svc.UpdateUserStatus(ctx, target.ID.Hex(), "suspended", "admin-1"); err != nil {
		t.Fatalf("UpdateUserStatus: %v", err)
	}
	if repo.store[target.ID.Hex()].Status != "suspended" {
		t.Errorf("status = %q, want suspended", repo.store[target.ID.Hex()].Status)
	}
	if len(auditSvc.actions) != 1 {
		t.Fatalf("audit actions = %v, want one UPDATE", auditSvc.actions)
	}

	t.Run("same status is a no-op", func(t *testing.T) {
		if err := svc.UpdateUserStatus(ctx, target.ID.Hex(), "suspended", "admin-1"); err != nil {
			t.Fatalf("UpdateUserStatus: %v", err)
		}
		if len(auditSvc.actions) != 1 {
			t.Errorf("no-op update was audited: %v", auditSvc.actions)
		}
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		err := svc.UpdateUserStatus(ctx, target.ID.Hex(), "banned", "admin-1")
		if !apperr.IsType(err, apperr.TypeValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("own status locked", func(t *testing.T) {
		err := svc.UpdateUserStatus(ctx, target.ID.Hex(), "active", target.ID.Hex())
		if !apperr.IsType(err, apperr.TypeValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestUpdateUserRoles(t *testing.T) {
	repo := newMockUserRepo()
	svc, _ := newTestUserService(repo)
	ctx := context.Background()
	target := seedUser(t, repo, "dave", "active")

	roleID := primitive.NewObjectID()
	if err := svc.UpdateUserRoles(ctx, target.ID.Hex(), []string{roleID.Hex()}, "admin-1"); err != nil {
		t.Fatalf("UpdateUserRoles: %v", err)
	}
	if !reflect.DeepEqual(repo.store[target.ID.Hex()].Roles, []primitive.ObjectID{roleID}) {
		t.Errorf("roles = %v, want [%s]", repo.store[target.ID.Hex()].Roles, roleID.Hex())
	}

	err := svc.UpdateUserRoles(ctx, target.ID.Hex(), []string{"not-hex"}, "admin-1")
	if !apperr.IsType(err, apperr.TypeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	repo := newMockUserRepo()
	svc, auditSvc := newTestUserService(repo)
	ctx := context.Background()
	target := seedUser(t, repo, "dave", "active")

	if err := svc.DeleteUser(ctx, target.ID.Hex(), target.ID.Hex()); !apperr.IsType(err, apperr.TypeValidation) {
		t.Fatalf("expected validation error for self delete, got %v", err)
	}

	if err := svc.DeleteUser(ctx, target.ID.Hex(), "admin-1"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, ok := repo.store[target.ID.Hex()]; ok {
		t.Error("user still present after delete")
	}
	last := auditSvc.actions[len(auditSvc.actions)-1]
	if last != models.AuditActionDelete {
		t.Errorf("last audit action = %v, want DELETE", last)
	}
}

func TestListUsersClampsPaging(t *testing.T) {
	tests := []struct {
		name       string
		page       int64
		limit      int64
		wantLimit  int64
		wantOffset int64
	}{
		{name: "defaults", page: 0, limit: 0, wantLimit: 20, wantOffset: 0},
		{name: "second page", page: 2, limit: 10, wantLimit: 10, wantOffset: 10},
		{name: "oversized limit", page: 1, limit: 500, wantLimit: 20, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockUserRepo()
			svc, _ := newTestUserService(repo)
			if _, _, err := svc.ListUsers(context.Background(), "", tt.page, tt.limit); err != nil {
				t.Fatalf("ListUsers: %v", err)
			}
			call := repo.listCalls[0]
			if call.limit != tt.wantLimit || call.offset != tt.wantOffset {
				t.Errorf("list called with limit=%d offset=%d, want limit=%d offset=%d",
					call.limit, call.offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}
