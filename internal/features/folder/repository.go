package folder

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"crm-reports/internal/common/apperr"
	"crm-reports/internal/common/models"
	"crm-reports/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListFilter narrows a folder listing. RootsOnly and ParentID are
// mutually exclusive; with neither set every folder of the tenant
// lists.
type ListFilter struct {
	ParentID   string
	RootsOnly  bool
	Favourites bool
	Search     string
}

type FolderRepository interface {
	Create(ctx context.Context, folder *Folder) error
	Get(ctx context.Context, id string) (*Folder, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter ListFilter) ([]Folder, error)
	SetName(ctx context.Context, id, name string) error
	SetParent(ctx context.Context, id string, parentID *primitive.ObjectID) error
	SetFavourite(ctx context.Context, id string, favourite bool) error
	Delete(ctx context.Context, id string) error
	ReparentChildren(ctx context.Context, from primitive.ObjectID, to *primitive.ObjectID) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type FolderRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewFolderRepository(mongodb *database.MongodbDB) FolderRepository {
	return &FolderRepositoryImpl{
		Collection: mongodb.DB.Collection("report_folders"),
	}
}

func tenantFromCtx(ctx context.Context) (primitive.ObjectID, error) {
	tenantID, ok := ctx.Value(models.TenantIDKey).(string)
	if !ok || tenantID == "" {
		return primitive.NilObjectID, fmt.Errorf("organization context missing")
	}
	return primitive.ObjectIDFromHex(tenantID)
}

func (r *FolderRepositoryImpl) Create(ctx context.Context, folder *Folder) error {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return err
	}

	if folder.ID.IsZero() {
		folder.ID = primitive.NewObjectID()
	}
	folder.TenantID = tenantID
	folder.CreatedAt = time.Now()
	folder.UpdatedAt = time.Now()

	_, err = r.Collection.InsertOne(ctx, folder)
	return err
}

func (r *FolderRepositoryImpl) Get(ctx context.Context, id string) (*Folder, error) {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Newf(apperr.TypeFolderNotFound, "folder %q not found", id)
	}

	var folder Folder
	if err := r.Collection.FindOne(ctx, bson.M{"_id": oid, "tenant_id": tenantID}).Decode(&folder); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.Newf(apperr.TypeFolderNotFound, "folder %q not found", id)
		}
		return nil, err
	}
	return &folder, nil
}

func (r *FolderRepositoryImpl) Exists(ctx context.Context, id string) (bool, error) {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return false, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	count, err := r.Collection.CountDocuments(ctx, bson.M{"_id": oid, "tenant_id": tenantID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *FolderRepositoryImpl) List(ctx context.Context, filter ListFilter) ([]Folder, error) {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	query := bson.M{"tenant_id": tenantID}
	if filter.Favourites {
		query["is_favourite"] = true
	}
	if filter.RootsOnly {
		query["parent_id"] = nil
	} else if filter.ParentID != "" {
		parentOID, err := primitive.ObjectIDFromHex(filter.ParentID)
		if err != nil {
			return nil, apperr.Newf(apperr.TypeFolderNotFound, "folder %q not found", filter.ParentID)
		}
		query["parent_id"] = parentOID
	}
	if filter.Search != "" {
		query["name"] = bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}
	}

	cursor, err := r.Collection.Find(ctx, query,
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	folders := []Folder{}
	if err := cursor.All(ctx, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

func (r *FolderRepositoryImpl) setFields(ctx context.Context, id string, set bson.M) error {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Newf(apperr.TypeFolderNotFound, "folder %q not found", id)
	}

	set["updated_at"] = time.Now()
	res, err := r.Collection.UpdateOne(ctx,
		bson.M{"_id": oid, "tenant_id": tenantID},
		bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.Newf(apperr.TypeFolderNotFound, "folder %q not found", id)
	}
	return nil
}

func (r *FolderRepositoryImpl) SetName(ctx context.Context, id, name string) error {
	return r.setFields(ctx, id, bson.M{"name": name})
}

func (r *FolderRepositoryImpl) SetParent(ctx context.Context, id string, parentID *primitive.ObjectID) error {
	return r.setFields(ctx, id, bson.M{"parent_id": parentID})
}

func (r *FolderRepositoryImpl) SetFavourite(ctx context.Context, id string, favourite bool) error {
	return r.setFields(ctx, id, bson.M{"is_favourite": favourite})
}

func (r *FolderRepositoryImpl) Delete(ctx context.Context, id string) error {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Newf(apperr.TypeFolderNotFound, "folder %q not found", id)
	}

	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": oid, "tenant_id": tenantID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.Newf(apperr.TypeFolderNotFound, "folder %q not found", id)
	}
	return nil
}

// ReparentChildren moves every direct child of one folder under a new
// parent. A nil destination lifts them to the root.
func (r *FolderRepositoryImpl) ReparentChildren(ctx context.Context, from primitive.ObjectID, to *primitive.ObjectID) (int64, error) {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return 0, err
	}

	res, err := r.Collection.UpdateMany(ctx,
		bson.M{"tenant_id": tenantID, "parent_id": from},
		bson.M{"$set": bson.M{"parent_id": to, "updated_at": time.Now()}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *FolderRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "parent_id", Value: 1}}},
		{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "name", Value: 1}}},
	})
	return err
}
