package draft

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

type DraftRepository interface {
	// Get returns the caller's draft for a report, or nil when none
	// exists.
	Get(ctx context.Context, reportID, userID string) (*Draft, error)
	Insert(ctx context.Context, draft *Draft) error
	// Replace swaps the stored draft for the given one, but only when
	// the stored version still equals expectVersion.
	Replace(ctx context.Context, draft *Draft, expectVersion int64) error
	Delete(ctx context.Context, reportID, userID string) error
	DeleteExpired(ctx context.Context) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type DraftRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewDraftRepository(mongodb *database.MongodbDB) DraftRepository {
	return &DraftRepositoryImpl{
		Collection: mongodb.DB.Collection("report_drafts"),
	}
}

func tenantFromCtx(ctx context.Context) (primitive.ObjectID, error) {
	tenantID, ok := ctx.Value(models.TenantIDKey).(string)
	if !ok || tenantID == "" {
		return primitive.NilObjectID, fmt.Errorf("organization context missing")
	}
	return primitive.ObjectIDFromHex(tenantID)
}

// key builds the tenant-scoped identity filter for one user's draft of
// one report.
func (r *DraftRepositoryImpl) key(ctx context.Context, reportID, userID string) (bson.M, error) {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		return nil, apperr.Newf(apperr.TypeReportNotFound, "report %q not found", reportID)
	}
	return bson.M{
		"tenant_id": tenantID,
		"report_id": oid,
		"user_id":   userID,
	}, nil
}

func (r *DraftRepositoryImpl) Get(ctx context.Context, reportID, userID string) (*Draft, error) {
	query, err := r.key(ctx, reportID, userID)
	if err != nil {
		return nil, err
	}

	var draft Draft
	if err := r.Collection.FindOne(ctx, query).Decode(&draft); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &draft, nil
}

func (r *DraftRepositoryImpl) Insert(ctx context.Context, draft *Draft) error {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return err
	}

	if draft.ID.IsZero() {
		draft.ID = primitive.NewObjectID()
	}
	draft.TenantID = tenantID

	_, err = r.Collection.InsertOne(ctx, draft)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.New(apperr.TypeDraftConflict, "draft was created concurrently, reload and retry")
	}
	return err
}

func (r *DraftRepositoryImpl) Replace(ctx context.Context, draft *Draft, expectVersion int64) error {
	query, err := r.key(ctx, draft.ReportID.Hex(), draft.UserID)
	if err != nil {
		return err
	}
	query["version"] = expectVersion

	res, err := r.Collection.ReplaceOne(ctx, query, draft)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.TypeDraftConflict, "draft changed concurrently, reload and retry")
	}
	return nil
}

func (r *DraftRepositoryImpl) Delete(ctx context.Context, reportID, userID string) error {
	query, err := r.key(ctx, reportID, userID)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, query)
	return err
}

// DeleteExpired removes drafts whose expiry has passed, across all
// tenants. The TTL index usually gets there first; the sweep keeps the
// collection bounded when the TTL monitor lags.
func (r *DraftRepositoryImpl) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.Collection.DeleteMany(ctx, bson.M{
		"expires_at": bson.M{"$lt": time.Now().UTC()},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *DraftRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "report_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	return err
}
