package user

import (
	"context"

	"crm-reports/internal/common/apperr"
	"crm-reports/internal/common/models"
	"crm-reports/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength applies to registration and admin-created users.
const MinPasswordLength = 8

// CreateUserInput is what an admin supplies when adding a user to the
// organization. RoleIDs reference existing roles of the same tenant.
type CreateUserInput struct {
	Username  string   `json:"username"`
	Password  string   `json:"password"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	RoleIDs   []string `json:"role_ids"`
}

type UserService interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context, status string, page, limit int64) ([]models.User, int64, error)
	CreateUser(ctx context.Context, input CreateUserInput, actorID string) (*models.User, error)
	UpdateUserStatus(ctx context.Context, id, status, actorID string) error
	UpdateUserRoles(ctx context.Context, id string, roleIDs []string, actorID string) error
	DeleteUser(ctx context.Context, id, actorID string) error
}

type UserServiceImpl struct {
	Repo   UserRepository
	Audit  audit.AuditService
	Logger *zap.Logger
}

func NewUserService(repo UserRepository, auditService audit.AuditService, logger *zap.Logger) UserService {
	return &UserServiceImpl{
		Repo:   repo,
		Audit:  auditService,
		Logger: logger,
	}
}

func (s *UserServiceImpl) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.Repo.Get(ctx, id)
}

func (s *UserServiceImpl) ListUsers(ctx context.Context, status string, page, limit int64) ([]models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.Repo.List(ctx, status, limit, (page-1)*limit)
}

func (s *UserServiceImpl) CreateUser(ctx context.Context, input CreateUserInput, actorID string) (*models.User, error) {
	if input.Username == "" || input.Email == "" {
		return nil, apperr.Newf(apperr.TypeValidation, "username and email are required")
	}
	if len(input.Password) < MinPasswordLength {
		return nil, apperr.Newf(apperr.TypeValidation, "password must be at least %d characters", MinPasswordLength)
	}

	roleIDs, err := parseRoleIDs(input.RoleIDs)
	if err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	usr := &models.User{
		Username:  input.Username,
		Password:  string(hashed),
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Status:    "active",
		Roles:     roleIDs,
	}
	if err := s.Repo.Create(ctx, usr); err != nil {
		return nil, err
	}

	s.Logger.Info("user created",
		zap.String("user", usr.ID.Hex()),
		zap.String("username", usr.Username),
	)
	_ = s.Audit.LogChange(ctx, models.AuditActionCreate, "users", usr.ID.Hex(), map[string]models.Change{
		"username": {New: usr.Username},
		"email":    {New: usr.Email},
	})
	return usr, nil
}

func validStatus(status string) bool {
	switch status {
	case "active", "inactive", "suspended":
		return true
	}
	return false
}

func (s *UserServiceImpl) UpdateUserStatus(ctx context.Context, id, status, actorID string) error {
	if !validStatus(status) {
		return apperr.Newf(apperr.TypeValidation, "status must be active, inactive or suspended")
	}
	if id == actorID {
		return apperr.Newf(apperr.TypeValidation, "you cannot change your own status")
	}

	existing, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status == status {
		return nil
	}

	if err := s.Repo.SetStatus(ctx, id, status); err != nil {
		return err
	}

	_ = s.Audit.LogChange(ctx, models.AuditActionUpdate, "users", id, map[string]models.Change{
		"status": {Old: existing.Status, New: status},
	})
	return nil
}

func (s *UserServiceImpl) UpdateUserRoles(ctx context.Context, id string, roleIDs []string, actorID string) error {
	oids, err := parseRoleIDs(roleIDs)
	if err != nil {
		return err
	}

	existing, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.SetRoles(ctx, id, oids); err != nil {
		return err
	}

	_ = s.Audit.LogChange(ctx, models.AuditActionUpdate, "users", id, map[string]models.Change{
		"roles": {Old: existing.Roles, New: oids},
	})
	return nil
}

func (s *UserServiceImpl) DeleteUser(ctx context.Context, id, actorID string) error {
	if id == actorID {
		return apperr.Newf(apperr.TypeValidation, "you cannot delete your own account")
	}

	existing, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.Audit.LogChange(ctx, models.AuditActionDelete, "users", id, map[string]models.Change{
		"username": {Old: existing.Username},
	})
	return nil
}

func parseRoleIDs(ids []string) ([]primitive.ObjectID, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, apperr.Newf(apperr.TypeValidation, "invalid role id %q", id)
		}
		oids = append(oids, oid)
	}
	return oids, nil
}
