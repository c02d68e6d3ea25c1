package record

import (
	"context"

	"crm-reports/internal/common/apperr"
	"crm-reports/internal/common/models"
	"crm-reports/internal/config"
	"crm-reports/internal/features/audit"
	"crm-reports/internal/features/schema"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// RawRecord is one materialized row: requested field -> raw value.
type RawRecord map[string]interface{}

// ExternalReader serves rows for sections whose source is a connector.
type ExternalReader interface {
	QueryRecords(ctx context.Context, connection, table string, fields []string, specs []FilterSpec, limit int64) ([]map[string]interface{}, error)
}

type RecordService interface {
	CreateRecord(ctx context.Context, section string, data map[string]interface{}, userID string) (primitive.ObjectID, error)
	GetRecord(ctx context.Context, section, id string) (map[string]interface{}, error)
	UpdateRecord(ctx context.Context, section, id string, data map[string]interface{}, userID string) error
	DeleteRecord(ctx context.Context, section, id, userID string) error
	ListRecords(ctx context.Context, section string, specs []FilterSpec, opts ListOptions) ([]map[string]interface{}, int64, error)
	Materialize(ctx context.Context, section string, specs []FilterSpec, fields []string) ([]RawRecord, error)
}

type RecordServiceImpl struct {
	Repo     RecordRepository
	Registry *schema.Registry
	Audit    audit.AuditService
	External ExternalReader
	Logger   *zap.Logger
	RowLimit int64
}

func NewRecordService(repo RecordRepository, registry *schema.Registry, auditService audit.AuditService, external ExternalReader, logger *zap.Logger, cfg *config.Config) RecordService {
	return &RecordServiceImpl{
		Repo:     repo,
		Registry: registry,
		Audit:    auditService,
		External: external,
		Logger:   logger,
		RowLimit: int64(cfg.ExportRowLimit),
	}
}

func (s *RecordServiceImpl) CreateRecord(ctx context.Context, section string, data map[string]interface{}, userID string) (primitive.ObjectID, error) {
	if err := s.validateData(section, data); err != nil {
		return primitive.NilObjectID, err
	}

	id, err := s.Repo.Create(ctx, section, data, userID)
	if err != nil {
		return primitive.NilObjectID, err
	}

	changes := map[string]models.Change{}
	for k, v := range data {
		changes[k] = models.Change{New: v}
	}
	_ = s.Audit.LogChange(ctx, models.AuditActionCreate, section, id.Hex(), changes)

	return id, nil
}

func (s *RecordServiceImpl) GetRecord(ctx context.Context, section, id string) (map[string]interface{}, error) {
	if _, err := s.Registry.Section(section); err != nil {
		return nil, err
	}
	return s.Repo.Get(ctx, section, id)
}

func (s *RecordServiceImpl) UpdateRecord(ctx context.Context, section, id string, data map[string]interface{}, userID string) error {
	if err := s.validateData(section, data); err != nil {
		return err
	}

	old, err := s.Repo.Get(ctx, section, id)
	if err != nil {
		return err
	}

	if err := s.Repo.Update(ctx, section, id, data, userID); err != nil {
		return err
	}

	changes := map[string]models.Change{}
	for k, v := range data {
		changes[k] = models.Change{Old: old[k], New: v}
	}
	_ = s.Audit.LogChange(ctx, models.AuditActionUpdate, section, id, changes)

	return nil
}

func (s *RecordServiceImpl) DeleteRecord(ctx context.Context, section, id, userID string) error {
	if _, err := s.Registry.Section(section); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, section, id, userID); err != nil {
		return err
	}
	_ = s.Audit.LogChange(ctx, models.AuditActionDelete, section, id, nil)
	return nil
}

// ListRecords runs the compiled filters and returns one page of flat
// records plus the total match count. Drill-down links re-enter here
// with the group's exact filter appended to the report's own specs.
func (s *RecordServiceImpl) ListRecords(ctx context.Context, section string, specs []FilterSpec, opts ListOptions) ([]map[string]interface{}, int64, error) {
	if _, err := s.Registry.Section(section); err != nil {
		return nil, 0, err
	}

	query, err := CompileFilters(s.Registry, section, specs)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.Repo.List(ctx, section, query, opts)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.Repo.Count(ctx, section, query)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Materialize fetches only the requested fields of every record that
// matches the filters. Field names are deduplicated keeping first
// occurrence; derived fields are computed after the fetch. An empty
// match is an empty slice, not an error.
func (s *RecordServiceImpl) Materialize(ctx context.Context, section string, specs []FilterSpec, fields []string) ([]RawRecord, error) {
	sec, err := s.Registry.Section(section)
	if err != nil {
		return nil, err
	}

	var stored []string
	var derived []schema.Field
	seen := map[string]bool{}
	for _, name := range fields {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		f, err := s.Registry.Field(section, name)
		if err != nil {
			return nil, err
		}
		if f.IsDerived() {
			derived = append(derived, f)
		} else {
			stored = append(stored, name)
		}
	}

	// Derived expressions read the section's stored numeric fields, so
	// those ride along in the fetch when any derived field is wanted.
	if len(derived) > 0 {
		for _, f := range sec.Fields {
			if f.IsDerived() || !f.IsNumeric() || seen[f.Name] {
				continue
			}
			seen[f.Name] = true
			stored = append(stored, f.Name)
		}
	}

	var rows []RawRecord
	if sec.Source == schema.SourceExternal {
		rows, err = s.materializeExternal(ctx, sec, stored, specs)
	} else {
		rows, err = s.materializeInternal(ctx, sec, stored, specs)
	}
	if err != nil {
		return nil, err
	}

	for _, f := range derived {
		evaluator, err := newExprEvaluator(sec, f)
		if err != nil {
			return nil, apperr.Newf(apperr.TypeValidation, "derived field %q: %v", f.Name, err)
		}
		for _, row := range rows {
			value, err := evaluator.eval(row)
			if err != nil {
				s.Logger.Warn("derived field evaluation failed",
					zap.String("section", section), zap.String("field", f.Name), zap.Error(err))
				continue
			}
			row[f.Name] = value
		}
	}

	return rows, nil
}

func (s *RecordServiceImpl) materializeInternal(ctx context.Context, sec schema.Section, stored []string, specs []FilterSpec) ([]RawRecord, error) {
	query, err := CompileFilters(s.Registry, sec.Name, specs)
	if err != nil {
		return nil, err
	}

	records, err := s.Repo.ListProjected(ctx, sec.Name, query, stored, s.RowLimit)
	if err != nil {
		return nil, err
	}

	rows := make([]RawRecord, len(records))
	for i, rec := range records {
		row := make(RawRecord, len(stored)+1)
		for _, f := range stored {
			row[f] = rec.Data[f]
		}
		row["_id"] = rec.ID.Hex()
		rows[i] = row
	}
	return rows, nil
}

func (s *RecordServiceImpl) materializeExternal(ctx context.Context, sec schema.Section, stored []string, specs []FilterSpec) ([]RawRecord, error) {
	if s.External == nil {
		return nil, apperr.Newf(apperr.TypeConnectionNotFound, "section %q needs connector support", sec.Name)
	}

	raw, err := s.External.QueryRecords(ctx, sec.Connection, sec.Table, stored, specs, s.RowLimit)
	if err != nil {
		return nil, err
	}

	rows := make([]RawRecord, len(raw))
	for i, m := range raw {
		rows[i] = RawRecord(m)
	}
	return rows, nil
}

// validateData rejects writes that touch fields outside the section's
// registered descriptor, so JSON-ish payloads cannot smuggle columns
// into the reportable surface.
func (s *RecordServiceImpl) validateData(section string, data map[string]interface{}) error {
	for key := range data {
		f, err := s.Registry.Field(section, key)
		if err != nil {
			return err
		}
		if f.IsDerived() {
			return apperr.Newf(apperr.TypeValidation, "field %q is derived and cannot be written", key)
		}
	}
	return nil
}
