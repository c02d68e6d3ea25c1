package record

import (
	"context"
	"fmt"
	"time"

	"crm-reports/internal/common/models"
	"crm-reports/internal/database"
	"crm-reports/internal/features/schema"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ListOptions struct {
	Limit     int64
	Offset    int64
	SortBy    string
	SortOrder int
}

type RecordRepository interface {
	Create(ctx context.Context, section string, data map[string]interface{}, userID string) (primitive.ObjectID, error)
	Get(ctx context.Context, section, id string) (map[string]interface{}, error)
	List(ctx context.Context, section string, query bson.M, opts ListOptions) ([]map[string]interface{}, error)
	ListProjected(ctx context.Context, section string, query bson.M, fields []string, limit int64) ([]models.Record, error)
	Count(ctx context.Context, section string, query bson.M) (int64, error)
	Update(ctx context.Context, section, id string, data map[string]interface{}, userID string) error
	Delete(ctx context.Context, section, id string, userID string) error
	ListChoices(ctx context.Context, section, displayField string) ([]schema.Choice, error)
	DisplayFor(ctx context.Context, section, displayField string, ids []string) (map[string]string, error)
	EnsureIndexes(ctx context.Context) error
}

type RecordRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewRecordRepository(mongodb *database.MongodbDB) RecordRepository {
	return &RecordRepositoryImpl{
		Collection: mongodb.DB.Collection("records"),
	}
}

func tenantFromCtx(ctx context.Context) (primitive.ObjectID, error) {
	tenantID, ok := ctx.Value(models.TenantIDKey).(string)
	if !ok || tenantID == "" {
		return primitive.NilObjectID, fmt.Errorf("organization context missing")
	}
	return primitive.ObjectIDFromHex(tenantID)
}

// baseQuery scopes every read to live records of one tenant's section.
func baseQuery(tenantID primitive.ObjectID, section string) bson.M {
	return bson.M{
		"tenant_id": tenantID,
		"section":   section,
		"deleted":   bson.M{"$ne": true},
	}
}

func (r *RecordRepositoryImpl) Create(ctx context.Context, section string, data map[string]interface{}, userID string) (primitive.ObjectID, error) {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return primitive.NilObjectID, err
	}

	record := models.Record{
		ID:        primitive.NewObjectID(),
		TenantID:  tenantID,
		Section:   section,
		Data:      data,
		CreatedBy: userID,
		UpdatedBy: userID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if _, err := r.Collection.InsertOne(ctx, record); err != nil {
		return primitive.NilObjectID, err
	}
	return record.ID, nil
}

func (r *RecordRepositoryImpl) Get(ctx context.Context, section, id string) (map[string]interface{}, error) {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	recordID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	query := baseQuery(tenantID, section)
	query["_id"] = recordID

	var record models.Record
	if err := r.Collection.FindOne(ctx, query).Decode(&record); err != nil {
		return nil, err
	}
	return flattenRecord(&record), nil
}

func (r *RecordRepositoryImpl) List(ctx context.Context, section string, query bson.M, opts ListOptions) ([]map[string]interface{}, error) {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	conditions := []bson.M{baseQuery(tenantID, section)}
	if len(query) > 0 {
		conditions = append(conditions, query)
	}
	finalQuery := bson.M{"$and": conditions}

	findOptions := options.Find()
	if opts.Limit > 0 {
		findOptions.SetLimit(opts.Limit)
	}
	findOptions.SetSkip(opts.Offset)

	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	sortOrder := opts.SortOrder
	if sortOrder == 0 {
		sortOrder = -1
	}
	sortKey := sortBy
	if sortBy != "_id" && sortBy != "created_at" && sortBy != "updated_at" {
		sortKey = "data." + sortBy
	}
	findOptions.SetSort(bson.D{{Key: sortKey, Value: sortOrder}})

	cursor, err := r.Collection.Find(ctx, finalQuery, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.Record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	results := make([]map[string]interface{}, len(records))
	for i := range records {
		results[i] = flattenRecord(&records[i])
	}
	return results, nil
}

// ListProjected fetches only the named data fields, in insertion order,
// for the materializer. Sorting is fixed to created_at ascending so a
// report renders the same way twice against unchanged data.
func (r *RecordRepositoryImpl) ListProjected(ctx context.Context, section string, query bson.M, fields []string, limit int64) ([]models.Record, error) {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	conditions := []bson.M{baseQuery(tenantID, section)}
	if len(query) > 0 {
		conditions = append(conditions, query)
	}
	finalQuery := bson.M{"$and": conditions}

	projection := bson.M{"_id": 1}
	for _, f := range fields {
		projection["data."+f] = 1
	}

	findOptions := options.Find().
		SetProjection(projection).
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}

	cursor, err := r.Collection.Find(ctx, finalQuery, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.Record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *RecordRepositoryImpl) Count(ctx context.Context, section string, query bson.M) (int64, error) {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return 0, err
	}

	conditions := []bson.M{baseQuery(tenantID, section)}
	if len(query) > 0 {
		conditions = append(conditions, query)
	}
	return r.Collection.CountDocuments(ctx, bson.M{"$and": conditions})
}

func (r *RecordRepositoryImpl) Update(ctx context.Context, section, id string, data map[string]interface{}, userID string) error {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return err
	}
	recordID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	updateSet := bson.M{
		"updated_at": time.Now(),
		"updated_by": userID,
	}
	for k, v := range data {
		updateSet["data."+k] = v
	}

	_, err = r.Collection.UpdateOne(ctx,
		bson.M{"_id": recordID, "tenant_id": tenantID, "section": section},
		bson.M{"$set": updateSet})
	return err
}

func (r *RecordRepositoryImpl) Delete(ctx context.Context, section, id string, userID string) error {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return err
	}
	recordID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{
			"deleted":    true,
			"deleted_at": time.Now(),
			"deleted_by": userID,
		},
	}

	_, err = r.Collection.UpdateOne(ctx,
		bson.M{"_id": recordID, "tenant_id": tenantID, "section": section},
		update)
	return err
}

// ListChoices returns (id, display) pairs for every live record of a
// section, ordered by the display field. Backs lazy relation choices.
func (r *RecordRepositoryImpl) ListChoices(ctx context.Context, section, displayField string) ([]schema.Choice, error) {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	findOptions := options.Find().
		SetProjection(bson.M{"_id": 1, "data." + displayField: 1}).
		SetSort(bson.D{{Key: "data." + displayField, Value: 1}})

	cursor, err := r.Collection.Find(ctx, baseQuery(tenantID, section), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.Record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	choices := make([]schema.Choice, 0, len(records))
	for _, rec := range records {
		display := ""
		if v, ok := rec.Data[displayField]; ok && v != nil {
			display = fmt.Sprintf("%v", v)
		}
		choices = append(choices, schema.Choice{Value: rec.ID.Hex(), Display: display})
	}
	return choices, nil
}

// DisplayFor resolves record ids to display strings in one query.
func (r *RecordRepositoryImpl) DisplayFor(ctx context.Context, section, displayField string, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			objectIDs = append(objectIDs, oid)
		}
	}
	if len(objectIDs) == 0 {
		return out, nil
	}

	query := baseQuery(tenantID, section)
	query["_id"] = bson.M{"$in": objectIDs}

	cursor, err := r.Collection.Find(ctx, query,
		options.Find().SetProjection(bson.M{"_id": 1, "data." + displayField: 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.Record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	for _, rec := range records {
		if v, ok := rec.Data[displayField]; ok && v != nil {
			out[rec.ID.Hex()] = fmt.Sprintf("%v", v)
		}
	}
	return out, nil
}

func (r *RecordRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "section", Value: 1}, {Key: "deleted", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "section", Value: 1}, {Key: "created_at", Value: 1}},
		},
	})
	return err
}

// flattenRecord merges the data map with system fields for API output.
func flattenRecord(record *models.Record) map[string]interface{} {
	flat := make(map[string]interface{}, len(record.Data)+4)
	for k, v := range record.Data {
		flat[k] = v
	}
	flat["_id"] = record.ID.Hex()
	flat["created_at"] = record.CreatedAt
	flat["updated_at"] = record.UpdatedAt
	flat["created_by"] = record.CreatedBy
	return flat
}
