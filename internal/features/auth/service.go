package auth

import (
	"context"
	"fmt"
	"time"

	"crm-reports/internal/common/apperr"
	"crm-reports/internal/common/models"
	"crm-reports/internal/features/audit"
	"crm-reports/internal/features/role"
	"crm-reports/internal/features/user"
	"crm-reports/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the slice of the user repository the auth flow needs;
// the user repository satisfies it as-is.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByUsernameGlobal(ctx context.Context, username string) (*models.User, error)
	SetLastLogin(ctx context.Context, id string, at time.Time) error
}

// RoleProvider is the slice of the role service the auth flow needs;
// the role service satisfies it as-is.
type RoleProvider interface {
	EnsureBuiltinRoles(ctx context.Context, tenantID string) (map[string]primitive.ObjectID, error)
	NamesForIDs(ctx context.Context, ids []primitive.ObjectID) ([]string, error)
}

// OrganizationStore persists the tenant created during registration.
type OrganizationStore interface {
	Create(ctx context.Context, org *models.Organization) error
}

type AuthService interface {
	// Register creates an organization, its built-in roles and the
	// first user, who becomes the admin.
	Register(ctx context.Context, username, password, email, orgName string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
}

type AuthServiceImpl struct {
	Users  UserStore
	Roles  RoleProvider
	Orgs   OrganizationStore
	Audit  audit.AuditService
	Logger *zap.Logger
}

func NewAuthService(users UserStore, roles RoleProvider, orgs OrganizationStore, auditService audit.AuditService, logger *zap.Logger) AuthService {
	return &AuthServiceImpl{
		Users:  users,
		Roles:  roles,
		Orgs:   orgs,
		Audit:  auditService,
		Logger: logger,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, username, password, email, orgName string) (*models.User, error) {
	if username == "" || email == "" {
		return nil, apperr.Newf(apperr.TypeValidation, "username and email are required")
	}
	if len(password) < user.MinPasswordLength {
		return nil, apperr.Newf(apperr.TypeValidation, "password must be at least %d characters", user.MinPasswordLength)
	}

	if _, err := s.Users.FindByUsernameGlobal(ctx, username); err == nil {
		return nil, apperr.Newf(apperr.TypeValidation, "username %q is taken", username)
	} else if !apperr.IsType(err, apperr.TypeUserNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	if orgName == "" {
		orgName = fmt.Sprintf("%s's Organization", username)
	}

	newUserID := primitive.NewObjectID()
	org := models.Organization{
		ID:        primitive.NewObjectID(),
		Name:      orgName,
		Slug:      utils.Slugify(orgName) + "-" + primitive.NewObjectID().Hex()[:4],
		OwnerID:   newUserID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.Orgs.Create(ctx, &org); err != nil {
		return nil, err
	}

	ctx = context.WithValue(ctx, models.TenantIDKey, org.ID.Hex())

	roleIDs, err := s.Roles.EnsureBuiltinRoles(ctx, org.ID.Hex())
	if err != nil {
		return nil, err
	}

	newUser := models.User{
		ID:       newUserID,
		Username: username,
		Password: string(hashed),
		Email:    email,
		Status:   "active",
		Roles:    []primitive.ObjectID{roleIDs[role.RoleAdmin]},
	}
	if err := s.Users.Create(ctx, &newUser); err != nil {
		return nil, err
	}

	s.Logger.Info("organization registered",
		zap.String("organization", org.ID.Hex()),
		zap.String("slug", org.Slug),
		zap.String("owner", newUser.ID.Hex()),
	)
	_ = s.Audit.LogChange(ctx, models.AuditActionCreate, "users", newUser.ID.Hex(), map[string]models.Change{
		"username":     {New: username},
		"organization": {New: org.Name},
	})

	return &newUser, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, error) {
	// The same answer for a wrong username and a wrong password, so
	// login cannot be used to probe which usernames exist.
	usr, err := s.Users.FindByUsernameGlobal(ctx, username)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(usr.Password), []byte(password)) != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	switch usr.Status {
	case "suspended":
		return "", fmt.Errorf("account suspended")
	case "inactive":
		return "", fmt.Errorf("account inactive")
	}

	ctx = context.WithValue(ctx, models.TenantIDKey, usr.TenantID.Hex())

	roleNames, err := s.Roles.NamesForIDs(ctx, usr.Roles)
	if err != nil {
		return "", err
	}

	token, err := utils.GenerateToken(usr.ID, usr.TenantID, roleNames)
	if err != nil {
		return "", err
	}

	if err := s.Users.SetLastLogin(ctx, usr.ID.Hex(), time.Now()); err != nil {
		s.Logger.Warn("last login not recorded", zap.String("user", usr.ID.Hex()), zap.Error(err))
	}
	_ = s.Audit.LogChange(ctx, models.AuditActionLogin, "auth", usr.ID.Hex(), nil)

	return token, nil
}
