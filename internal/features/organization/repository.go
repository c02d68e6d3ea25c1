package organization

import (
	"context"
	"errors"

	"crm-reports/internal/common/apperr"
	"crm-reports/internal/common/models"
	"crm-reports/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrganizationRepository persists tenants. Organizations are created
// once at registration, looked up by slug for seeding and listed by
// background jobs that fan out across tenants, so the surface stays
// small.
type OrganizationRepository interface {
	Create(ctx context.Context, org *models.Organization) error
	FindBySlug(ctx context.Context, slug string) (*models.Organization, error)
	ListIDs(ctx context.Context) ([]string, error)
	EnsureIndexes(ctx context.Context) error
}

type OrganizationRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewOrganizationRepository(mongodb *database.MongodbDB) OrganizationRepository {
	return &OrganizationRepositoryImpl{
		Collection: mongodb.DB.Collection("organizations"),
	}
}

func (r *OrganizationRepositoryImpl) Create(ctx context.Context, org *models.Organization) error {
	_, err := r.Collection.InsertOne(ctx, org)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Newf(apperr.TypeValidation, "organization slug %q is taken", org.Slug)
	}
	return err
}

func (r *OrganizationRepositoryImpl) FindBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	var org models.Organization
	if err := r.Collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&org); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.Newf(apperr.TypeOrganizationNotFound, "organization %q not found", slug)
		}
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepositoryImpl) ListIDs(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID.Hex())
	}
	return ids, nil
}

func (r *OrganizationRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}
