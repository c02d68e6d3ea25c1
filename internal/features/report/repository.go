package report

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

// ListFilter narrows a report listing.
type ListFilter struct {
	FolderID   string
	Favourites bool
	Section    string
	Search     string
}

type ReportRepository interface {
	Create(ctx context.Context, report *Report) error
	Get(ctx context.Context, id string) (*Report, error)
	List(ctx context.Context, filter ListFilter) ([]Report, error)
	Update(ctx context.Context, id string, report *Report) error
	SetFavourite(ctx context.Context, id string, favourite bool) error
	SetFolder(ctx context.Context, id string, folderID *primitive.ObjectID) error
	SetChartFields(ctx context.Context, id, chartField, chartFieldStacked string) error
	SoftDelete(ctx context.Context, id, userID string) error
	MoveFolderReports(ctx context.Context, from primitive.ObjectID, to *primitive.ObjectID) (int64, error)
	CountByFolder(ctx context.Context) (map[string]int64, error)
	EnsureIndexes(ctx context.Context) error
}

type ReportRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewReportRepository(mongodb *database.MongodbDB) ReportRepository {
	return &ReportRepositoryImpl{
		Collection: mongodb.DB.Collection("reports"),
	}
}

func tenantFromCtx(ctx context.Context) (primitive.ObjectID, error) {
	tenantID, ok := ctx.Value(models.TenantIDKey).(string)
	if !ok || tenantID == "" {
		return primitive.NilObjectID, fmt.Errorf("organization context missing")
	}
	return primitive.ObjectIDFromHex(tenantID)
}

func scoped(tenantID primitive.ObjectID) bson.M {
	return bson.M{
		"tenant_id": tenantID,
		"deleted":   bson.M{"$ne": true},
	}
}

func (r *ReportRepositoryImpl) Create(ctx context.Context, report *Report) error {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return err
	}

	if report.ID.IsZero() {
		report.ID = primitive.NewObjectID()
	}
	report.TenantID = tenantID
	report.CreatedAt = time.Now()
	report.UpdatedAt = time.Now()

	_, err = r.Collection.InsertOne(ctx, report)
	return err
}

func (r *ReportRepositoryImpl) Get(ctx context.Context, id string) (*Report, error) {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Newf(apperr.TypeReportNotFound, "report %q not found", id)
	}

	query := scoped(tenantID)
	query["_id"] = oid

	var report Report
	if err := r.Collection.FindOne(ctx, query).Decode(&report); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.Newf(apperr.TypeReportNotFound, "report %q not found", id)
		}
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepositoryImpl) List(ctx context.Context, filter ListFilter) ([]Report, error) {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	query := scoped(tenantID)
	if filter.Favourites {
		query["is_favourite"] = true
	}
	if filter.Section != "" {
		query["section"] = filter.Section
	}
	if filter.FolderID != "" {
		folderOID, err := primitive.ObjectIDFromHex(filter.FolderID)
		if err != nil {
			return nil, apperr.Newf(apperr.TypeFolderNotFound, "folder %q not found", filter.FolderID)
		}
		query["folder_id"] = folderOID
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

	reports := []Report{}
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *ReportRepositoryImpl) Update(ctx context.Context, id string, report *Report) error {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Newf(apperr.TypeReportNotFound, "report %q not found", id)
	}

	report.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"name":                report.Name,
		"section":             report.Section,
		"selected_columns":    report.SelectedColumns,
		"row_groups":          report.RowGroups,
		"column_groups":       report.ColumnGroups,
		"aggregate_columns":   report.Aggregates,
		"filters":             report.Filters,
		"chart_type":          report.ChartType,
		"chart_field":         report.ChartField,
		"chart_field_stacked": report.ChartFieldStacked,
		"folder_id":           report.FolderID,
		"is_favourite":        report.IsFavourite,
		"shared_with":         report.SharedWith,
		"updated_at":          report.UpdatedAt,
	}}

	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": oid, "tenant_id": tenantID, "deleted": bson.M{"$ne": true}}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.Newf(apperr.TypeReportNotFound, "report %q not found", id)
	}
	return nil
}

func (r *ReportRepositoryImpl) setFields(ctx context.Context, id string, set bson.M) error {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Newf(apperr.TypeReportNotFound, "report %q not found", id)
	}

	set["updated_at"] = time.Now()
	res, err := r.Collection.UpdateOne(ctx,
		bson.M{"_id": oid, "tenant_id": tenantID, "deleted": bson.M{"$ne": true}},
		bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.Newf(apperr.TypeReportNotFound, "report %q not found", id)
	}
	return nil
}

func (r *ReportRepositoryImpl) SetFavourite(ctx context.Context, id string, favourite bool) error {
	return r.setFields(ctx, id, bson.M{"is_favourite": favourite})
}

func (r *ReportRepositoryImpl) SetFolder(ctx context.Context, id string, folderID *primitive.ObjectID) error {
	return r.setFields(ctx, id, bson.M{"folder_id": folderID})
}

func (r *ReportRepositoryImpl) SetChartFields(ctx context.Context, id, chartField, chartFieldStacked string) error {
	set := bson.M{}
	if chartField != "" {
		set["chart_field"] = chartField
	}
	if chartFieldStacked != "" {
		set["chart_field_stacked"] = chartFieldStacked
	}
	if len(set) == 0 {
		return nil
	}
	return r.setFields(ctx, id, set)
}

func (r *ReportRepositoryImpl) SoftDelete(ctx context.Context, id, userID string) error {
	return r.setFields(ctx, id, bson.M{
		"deleted":    true,
		"deleted_at": time.Now(),
		"deleted_by": userID,
	})
}

// MoveFolderReports re-parents every report in one folder, used when a
// folder is deleted. A nil destination moves them to the root.
func (r *ReportRepositoryImpl) MoveFolderReports(ctx context.Context, from primitive.ObjectID, to *primitive.ObjectID) (int64, error) {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return 0, err
	}

	query := scoped(tenantID)
	query["folder_id"] = from

	res, err := r.Collection.UpdateMany(ctx, query, bson.M{"$set": bson.M{
		"folder_id":  to,
		"updated_at": time.Now(),
	}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// CountByFolder maps folder id hex to live report count; reports
// outside any folder count under "".
func (r *ReportRepositoryImpl) CountByFolder(ctx context.Context) (map[string]int64, error) {
	tenantID, err := tenantFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	cursor, err := r.Collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: scoped(tenantID)}},
		{{Key: "$group", Value: bson.M{"_id": "$folder_id", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    *primitive.ObjectID `bson:"_id"`
		Count int64               `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		key := ""
		if row.ID != nil {
			key = row.ID.Hex()
		}
		out[key] = row.Count
	}
	return out, nil
}

func (r *ReportRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "deleted", Value: 1}, {Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "folder_id", Value: 1}}},
	})
	return err
}
