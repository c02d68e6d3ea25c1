package user

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

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id string) (*models.User, error)
	// FindByUsernameGlobal looks a user up without tenant context.
	// Login runs before any organization is known, so usernames are
	// unique across the whole deployment.
	FindByUsernameGlobal(ctx context.Context, username string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
	List(ctx context.Context, status string, limit, offset int64) ([]models.User, int64, error)
	SetStatus(ctx context.Context, id, status string) error
	SetRoles(ctx context.Context, id string, roles []primitive.ObjectID) error
	SetLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	EnsureIndexes(ctx context.Context) error
}

type UserRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewUserRepository(mongodb *database.MongodbDB) UserRepository {
	return &UserRepositoryImpl{
		Collection: mongodb.DB.Collection("users"),
	}
}

func tenantFromCtx(ctx context.Context) (primitive.ObjectID, error) {
	tenantID, ok := ctx.Value(models.TenantIDKey).(string)
	if !ok || tenantID == "" {
		return primitive.NilObjectID, fmt.Errorf("organization context missing")
	}
	return primitive.ObjectIDFromHex(tenantID)
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *models.User) error {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return err
	}

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.TenantID = tenantID
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	_, err = r.Collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Newf(apperr.TypeValidation, "username %q is taken", user.Username)
	}
	return err
}

func (r *UserRepositoryImpl) Get(ctx context.Context, id string) (*models.User, error) {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Newf(apperr.TypeUserNotFound, "user %q not found", id)
	}

	var user models.User
	if err := r.Collection.FindOne(ctx, bson.M{"_id": oid, "tenant_id": tenantID}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.Newf(apperr.TypeUserNotFound, "user %q not found", id)
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByUsernameGlobal(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.Collection.FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.Newf(apperr.TypeUserNotFound, "user %q not found", username)
		}
		return nil, err
	}
	return &user, nil
}

// FindByIDs resolves ids to users for audit actor display. Invalid ids
// are skipped rather than failing the whole lookup.
func (r *UserRepositoryImpl) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	var objectIDs []primitive.ObjectID
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			objectIDs = append(objectIDs, oid)
		}
	}
	if len(objectIDs) == 0 {
		return []models.User{}, nil
	}

	cursor, err := r.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepositoryImpl) List(ctx context.Context, status string, limit, offset int64) ([]models.User, int64, error) {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return nil, 0, err
	}

	filter := bson.M{"tenant_id": tenantID}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if offset > 0 {
		opts.SetSkip(offset)
	}

	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}

	total, err := r.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepositoryImpl) setFields(ctx context.Context, id string, set bson.M) error {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Newf(apperr.TypeUserNotFound, "user %q not found", id)
	}

	set["updated_at"] = time.Now()
	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": oid, "tenant_id": tenantID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.Newf(apperr.TypeUserNotFound, "user %q not found", id)
	}
	return nil
}

func (r *UserRepositoryImpl) SetStatus(ctx context.Context, id, status string) error {
	return r.setFields(ctx, id, bson.M{"status": status})
}

func (r *UserRepositoryImpl) SetRoles(ctx context.Context, id string, roles []primitive.ObjectID) error {
	return r.setFields(ctx, id, bson.M{"roles": roles})
}

// SetLastLogin stamps the login time without tenant context; it runs
// during login, right after the credentials check.
func (r *UserRepositoryImpl) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Newf(apperr.TypeUserNotFound, "user %q not found", id)
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"last_login": at}})
	return err
}

func (r *UserRepositoryImpl) Delete(ctx context.Context, id string) error {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Newf(apperr.TypeUserNotFound, "user %q not found", id)
	}

	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": oid, "tenant_id": tenantID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.Newf(apperr.TypeUserNotFound, "user %q not found", id)
	}
	return nil
}

func (r *UserRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "status", Value: 1}},
		},
	})
	return err
}
