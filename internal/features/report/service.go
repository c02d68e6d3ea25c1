package report

import (
	"context"

	"crm-reports/internal/common/apperr"
	"crm-reports/internal/common/models"
	"crm-reports/internal/features/audit"
	"crm-reports/internal/features/record"
	"crm-reports/internal/features/schema"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// EventPublisher fans report lifecycle events out to live listeners.
// The websocket hub implements it; a nil publisher drops events.
type EventPublisher interface {
	Publish(tenantID, event string, payload interface{})
}

// DraftOverlay resolves a report through the caller's unsaved draft.
// The draft feature implements it; declaring it here keeps preview and
// export paths decoupled from draft storage.
type DraftOverlay interface {
	// MergedReport returns the report with the user's draft applied,
	// and whether a draft with changes existed.
	MergedReport(ctx context.Context, reportID, userID string) (*Report, bool, error)
}

// FolderChecker answers whether a folder id names a live folder of the
// caller's tenant. The folder repository satisfies it; nil skips the
// check.
type FolderChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// RunResult bundles everything one report run produces.
type RunResult struct {
	Report *Report      `json:"report"`
	Pivot  *PivotResult `json:"pivot"`
	Chart  *ChartData   `json:"chart_data"`
}

type ReportService interface {
	CreateReport(ctx context.Context, report *Report, userID string) error
	GetReport(ctx context.Context, id string) (*Report, error)
	ListReports(ctx context.Context, filter ListFilter) ([]Report, error)
	UpdateReport(ctx context.Context, id string, report *Report, userID string) error
	DeleteReport(ctx context.Context, id, userID string) error
	RunReport(ctx context.Context, id string) (*RunResult, error)
	RunConfig(ctx context.Context, report *Report, persistChartFields bool) (*RunResult, error)
	PreviewConfig(ctx context.Context, report *Report) (*RunResult, error)
	CloneReport(ctx context.Context, id, userID string) (*Report, error)
	ToggleFavourite(ctx context.Context, id string) (bool, error)
	MoveToFolder(ctx context.Context, id, folderID string) error
	ListReportRecords(ctx context.Context, id string, drill []record.FilterSpec, opts record.ListOptions) ([]map[string]interface{}, int64, error)
}

type ReportServiceImpl struct {
	Repo     ReportRepository
	Records  record.RecordService
	Registry *schema.Registry
	Audit    audit.AuditService
	Events   EventPublisher
	Folders  FolderChecker
	Logger   *zap.Logger
}

func NewReportService(repo ReportRepository, records record.RecordService, registry *schema.Registry, auditService audit.AuditService, events EventPublisher, folders FolderChecker, logger *zap.Logger) ReportService {
	return &ReportServiceImpl{
		Repo:     repo,
		Records:  records,
		Registry: registry,
		Audit:    auditService,
		Events:   events,
		Folders:  folders,
		Logger:   logger,
	}
}

// validate checks every field reference and the group capacities.
// Grouping shapes outside the supported set still save; the run
// surfaces those as an error banner instead.
func (s *ReportServiceImpl) validate(r *Report) error {
	if r.Name == "" {
		return apperr.New(apperr.TypeValidation, "report name is required")
	}
	if _, err := s.Registry.Section(r.Section); err != nil {
		return err
	}
	if len(r.RowGroups) > MaxRowGroups {
		return apperr.Newf(apperr.TypeValidation, "at most %d row groups are allowed", MaxRowGroups)
	}
	if len(r.ColumnGroups) > MaxColumnGroups {
		return apperr.Newf(apperr.TypeValidation, "at most %d column groups are allowed", MaxColumnGroups)
	}
	if r.ChartType == "" {
		r.ChartType = ChartColumn
	}
	if !validChartTypes[r.ChartType] {
		return apperr.Newf(apperr.TypeValidation, "unknown chart type %q", r.ChartType)
	}

	for _, name := range r.FieldUnion() {
		if _, err := s.Registry.Field(r.Section, name); err != nil {
			return err
		}
	}
	for _, name := range []string{r.ChartField, r.ChartFieldStacked} {
		if name == "" {
			continue
		}
		if _, err := s.Registry.Field(r.Section, name); err != nil {
			return err
		}
	}

	for i, agg := range r.Aggregates {
		r.Aggregates[i] = agg.Normalize()
	}

	// Surfaces unknown filter fields and operators at save time.
	if _, err := record.CompileFilters(s.Registry, r.Section, withProbeValues(r.Filters)); err != nil {
		return err
	}
	return nil
}

// withProbeValues fills empty filter values so compilation checks the
// field and operator of every spec, not only the non-blank ones.
func withProbeValues(specs []record.FilterSpec) []record.FilterSpec {
	probed := make([]record.FilterSpec, len(specs))
	for i, spec := range specs {
		if spec.Value == "" {
			spec.Value = "probe"
		}
		probed[i] = spec
	}
	return probed
}

func (s *ReportServiceImpl) CreateReport(ctx context.Context, report *Report, userID string) error {
	if err := s.validate(report); err != nil {
		return err
	}
	report.Owner = userID

	if err := s.Repo.Create(ctx, report); err != nil {
		return err
	}

	_ = s.Audit.LogChange(ctx, models.AuditActionReport, "reports", report.ID.Hex(), map[string]models.Change{
		"report": {New: report.Name},
	})
	s.publish(ctx, "report.saved", report)
	return nil
}

func (s *ReportServiceImpl) GetReport(ctx context.Context, id string) (*Report, error) {
	return s.Repo.Get(ctx, id)
}

func (s *ReportServiceImpl) ListReports(ctx context.Context, filter ListFilter) ([]Report, error) {
	return s.Repo.List(ctx, filter)
}

func (s *ReportServiceImpl) UpdateReport(ctx context.Context, id string, report *Report, userID string) error {
	if err := s.validate(report); err != nil {
		return err
	}

	old, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.Update(ctx, id, report); err != nil {
		return err
	}

	_ = s.Audit.LogChange(ctx, models.AuditActionReport, "reports", id, map[string]models.Change{
		"report": {Old: old.Name, New: report.Name},
	})
	report.ID = old.ID
	s.publish(ctx, "report.saved", report)
	return nil
}

func (s *ReportServiceImpl) DeleteReport(ctx context.Context, id, userID string) error {
	old, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.SoftDelete(ctx, id, userID); err != nil {
		return err
	}

	_ = s.Audit.LogChange(ctx, models.AuditActionReport, "reports", id, map[string]models.Change{
		"report": {Old: old.Name, New: "DELETED"},
	})
	s.publish(ctx, "report.deleted", map[string]string{"id": id, "name": old.Name})
	return nil
}

func (s *ReportServiceImpl) RunReport(ctx context.Context, id string) (*RunResult, error) {
	report, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.RunConfig(ctx, report, true)
}

// PreviewConfig runs an unsaved configuration without touching the
// stored report.
func (s *ReportServiceImpl) PreviewConfig(ctx context.Context, report *Report) (*RunResult, error) {
	if err := s.validate(report); err != nil {
		return nil, err
	}
	return s.RunConfig(ctx, report, false)
}

// RunConfig materializes, pivots and charts one configuration. With
// persistChartFields set, a chart field the run had to pick by
// fallback is written back onto the saved report, so the next edit
// panel shows what the chart actually used.
func (s *ReportServiceImpl) RunConfig(ctx context.Context, report *Report, persistChartFields bool) (*RunResult, error) {
	working := *report
	for i, agg := range working.Aggregates {
		working.Aggregates[i] = agg.Normalize()
	}

	rows, err := s.Records.Materialize(ctx, working.Section, working.Filters, working.FieldUnion())
	if err != nil {
		return nil, err
	}

	input := PivotInput{
		Report:  &working,
		Rows:    rows,
		Display: s.resolveDisplays(ctx, &working, rows),
		Labels:  s.fieldLabels(&working),
	}

	pivot := BuildPivot(input)
	chart := BuildChart(input)

	if persistChartFields && !working.ID.IsZero() {
		var chartField, stackedField string
		if chart.PersistChartField {
			chartField = chart.FieldUsed
		}
		if chart.PersistStackedField {
			stackedField = chart.StackedFieldUsed
		}
		if chartField != "" || stackedField != "" {
			if err := s.Repo.SetChartFields(ctx, working.ID.Hex(), chartField, stackedField); err != nil {
				s.Logger.Warn("persisting chart fields failed",
					zap.String("report", working.ID.Hex()), zap.Error(err))
			}
		}
	}

	return &RunResult{Report: &working, Pivot: pivot, Chart: chart}, nil
}

// resolveDisplays batches display resolution for every field whose
// values end up as labels: group fields and chart fields.
func (s *ReportServiceImpl) resolveDisplays(ctx context.Context, r *Report, rows []record.RawRecord) DisplayLookup {
	fields := map[string]bool{}
	for _, f := range r.GroupFields() {
		fields[f] = true
	}
	if r.ChartField != "" {
		fields[r.ChartField] = true
	}
	if r.ChartFieldStacked != "" {
		fields[r.ChartFieldStacked] = true
	}

	lookup := DisplayLookup{}
	for field := range fields {
		seen := map[string]bool{}
		var values []interface{}
		for _, row := range rows {
			raw, ok := row[field]
			if !ok || raw == nil {
				continue
			}
			key := schema.RawKey(raw)
			if seen[key] {
				continue
			}
			seen[key] = true
			values = append(values, raw)
		}
		if len(values) == 0 {
			continue
		}

		infos, err := s.Registry.ResolveDisplay(ctx, r.Section, field, values)
		if err != nil {
			s.Logger.Warn("display resolution failed",
				zap.String("section", r.Section), zap.String("field", field), zap.Error(err))
			continue
		}
		lookup[field] = infos
	}
	return lookup
}

func (s *ReportServiceImpl) fieldLabels(r *Report) map[string]string {
	labels := map[string]string{}
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := labels[name]; ok {
			return
		}
		if f, err := s.Registry.Field(r.Section, name); err == nil {
			labels[name] = f.Display
		}
	}
	for _, f := range r.FieldUnion() {
		add(f)
	}
	add(r.ChartField)
	add(r.ChartFieldStacked)
	return labels
}

func (s *ReportServiceImpl) CloneReport(ctx context.Context, id, userID string) (*Report, error) {
	src, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	clone := *src
	clone.ID = primitive.NewObjectID()
	clone.Name = "Copy of " + src.Name
	clone.IsFavourite = false
	clone.Owner = userID

	if err := s.Repo.Create(ctx, &clone); err != nil {
		return nil, err
	}
	_ = s.Audit.LogChange(ctx, models.AuditActionReport, "reports", clone.ID.Hex(), map[string]models.Change{
		"report": {Old: src.Name, New: clone.Name},
	})
	s.publish(ctx, "report.saved", &clone)
	return &clone, nil
}

func (s *ReportServiceImpl) ToggleFavourite(ctx context.Context, id string) (bool, error) {
	report, err := s.Repo.Get(ctx, id)
	if err != nil {
		return false, err
	}

	next := !report.IsFavourite
	if err := s.Repo.SetFavourite(ctx, id, next); err != nil {
		return false, err
	}
	return next, nil
}

func (s *ReportServiceImpl) MoveToFolder(ctx context.Context, id, folderID string) error {
	if _, err := s.Repo.Get(ctx, id); err != nil {
		return err
	}

	// An empty folder id moves the report back to the root.
	var target *primitive.ObjectID
	if folderID != "" {
		oid, err := primitive.ObjectIDFromHex(folderID)
		if err != nil {
			return apperr.Newf(apperr.TypeFolderNotFound, "folder %q not found", folderID)
		}
		if s.Folders != nil {
			ok, err := s.Folders.Exists(ctx, folderID)
			if err != nil {
				return err
			}
			if !ok {
				return apperr.Newf(apperr.TypeFolderNotFound, "folder %q not found", folderID)
			}
		}
		target = &oid
	}
	return s.Repo.SetFolder(ctx, id, target)
}

// ListReportRecords backs the drill-down listing: the report's own
// filters always apply, and a clicked group or chart segment arrives
// as one extra exact spec.
func (s *ReportServiceImpl) ListReportRecords(ctx context.Context, id string, drill []record.FilterSpec, opts record.ListOptions) ([]map[string]interface{}, int64, error) {
	report, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	specs := make([]record.FilterSpec, 0, len(report.Filters)+len(drill))
	specs = append(specs, report.Filters...)
	specs = append(specs, drill...)

	return s.Records.ListRecords(ctx, report.Section, specs, opts)
}

func (s *ReportServiceImpl) publish(ctx context.Context, event string, payload interface{}) {
	if s.Events == nil {
		return
	}
	tenantID, _ := ctx.Value(models.TenantIDKey).(string)
	s.Events.Publish(tenantID, event, payload)
}
