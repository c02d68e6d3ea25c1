package role

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm-reports/internal/common/apperr"
	"crm-reports/internal/common/models"
	"crm-reports/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RoleRepository interface {
	Create(ctx context.Context, role *Role) error
	Get(ctx context.Context, id string) (*Role, error)
	FindByName(ctx context.Context, name string) (*Role, error)
	FindByNames(ctx context.Context, names []string) ([]Role, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]Role, error)
	List(ctx context.Context) ([]Role, error)
	SetDescription(ctx context.Context, id, description string) error
	SetPermissions(ctx context.Context, id string, permissions []string) error
	Delete(ctx context.Context, id string) error
	EnsureIndexes(ctx context.Context) error
}

type RoleRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewRoleRepository(mongodb *database.MongodbDB) RoleRepository {
	return &RoleRepositoryImpl{
		Collection: mongodb.DB.Collection("roles"),
	}
}

func tenantFromCtx(ctx context.Context) (primitive.ObjectID, error) {
	tenantID, ok := ctx.Value(models.TenantIDKey).(string)
	if !ok || tenantID == "" {
		return primitive.NilObjectID, fmt.Errorf("organization context missing")
	}
	return primitive.ObjectIDFromHex(tenantID)
}

func (r *RoleRepositoryImpl) Create(ctx context.Context, role *Role) error {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return err
	}

	if role.ID.IsZero() {
		role.ID = primitive.NewObjectID()
	}
	role.TenantID = tenantID
	role.CreatedAt = time.Now()
	role.UpdatedAt = time.Now()

	_, err = r.Collection.InsertOne(ctx, role)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Newf(apperr.TypeValidation, "role %q already exists", role.Name)
	}
	return err
}

func (r *RoleRepositoryImpl) Get(ctx context.Context, id string) (*Role, error) {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Newf(apperr.TypeRoleNotFound, "role %q not found", id)
	}

	var role Role
	if err := r.Collection.FindOne(ctx, bson.M{"_id": oid, "tenant_id": tenantID}).Decode(&role); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.Newf(apperr.TypeRoleNotFound, "role %q not found", id)
		}
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepositoryImpl) FindByName(ctx context.Context, name string) (*Role, error) {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	var role Role
	if err := r.Collection.FindOne(ctx, bson.M{"name": name, "tenant_id": tenantID}).Decode(&role); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.Newf(apperr.TypeRoleNotFound, "role %q not found", name)
		}
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepositoryImpl) FindByNames(ctx context.Context, names []string) ([]Role, error) {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return []Role{}, nil
	}

	cursor, err := r.Collection.Find(ctx, bson.M{"name": bson.M{"$in": names}, "tenant_id": tenantID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var roles []Role
	if err := cursor.All(ctx, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *RoleRepositoryImpl) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]Role, error) {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Role{}, nil
	}

	cursor, err := r.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}, "tenant_id": tenantID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var roles []Role
	if err := cursor.All(ctx, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *RoleRepositoryImpl) List(ctx context.Context) ([]Role, error) {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.Collection.Find(ctx, bson.M{"tenant_id": tenantID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var roles []Role
	if err := cursor.All(ctx, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *RoleRepositoryImpl) setFields(ctx context.Context, id string, set bson.M) error {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Newf(apperr.TypeRoleNotFound, "role %q not found", id)
	}

	set["updated_at"] = time.Now()
	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": oid, "tenant_id": tenantID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.Newf(apperr.TypeRoleNotFound, "role %q not found", id)
	}
	return nil
}

func (r *RoleRepositoryImpl) SetDescription(ctx context.Context, id, description string) error {
	return r.setFields(ctx, id, bson.M{"description": description})
}

func (r *RoleRepositoryImpl) SetPermissions(ctx context.Context, id string, permissions []string) error {
	return r.setFields(ctx, id, bson.M{"permissions": permissions})
}

func (r *RoleRepositoryImpl) Delete(ctx context.Context, id string) error {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Newf(apperr.TypeRoleNotFound, "role %q not found", id)
	}

	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": oid, "tenant_id": tenantID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.Newf(apperr.TypeRoleNotFound, "role %q not found", id)
	}
	return nil
}

func (r *RoleRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}
