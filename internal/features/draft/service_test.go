package draft

import (
	"context"
	"reflect"
	"testing"
	"time"

	"crm-reports/internal/common/apperr"
	"crm-reports/internal/features/record"
	"crm-reports/internal/features/report"
	"crm-reports/internal/features/schema"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type mockDraftRepo struct {
	drafts map[string]*Draft
}

func draftKey(reportID, userID string) string {
	return reportID + "/" + userID
}

func (m *mockDraftRepo) Get(ctx context.Context, reportID, userID string) (*Draft, error) {
	d, ok := m.drafts[draftKey(reportID, userID)]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (m *mockDraftRepo) Insert(ctx context.Context, draft *Draft) error {
	key := draftKey(draft.ReportID.Hex(), draft.UserID)
	if _, ok := m.drafts[key]; ok {
		return apperr.New(apperr.TypeDraftConflict, "draft was created concurrently, reload and retry")
	}
	cp := *draft
	m.drafts[key] = &cp
	return nil
}

func (m *mockDraftRepo) Replace(ctx context.Context, draft *Draft, expectVersion int64) error {
	key := draftKey(draft.ReportID.Hex(), draft.UserID)
	cur, ok := m.drafts[key]
	if !ok || cur.Version != expectVersion {
		return apperr.New(apperr.TypeDraftConflict, "draft changed concurrently, reload and retry")
	}
	cp := *draft
	m.drafts[key] = &cp
	return nil
}

func (m *mockDraftRepo) Delete(ctx context.Context, reportID, userID string) error {
	delete(m.drafts, draftKey(reportID, userID))
	return nil
}

func (m *mockDraftRepo) DeleteExpired(ctx context.Context) (int64, error) { return 0, nil }

func (m *mockDraftRepo) EnsureIndexes(ctx context.Context) error { return nil }

type runCall struct {
	report  *report.Report
	persist bool
}

type mockReportService struct {
	reports   map[string]*report.Report
	updated   map[string]*report.Report
	updateErr error
	runCalls  []runCall
}

func (m *mockReportService) CreateReport(ctx context.Context, r *report.Report, userID string) error {
	return nil
}

func (m *mockReportService) GetReport(ctx context.Context, id string) (*report.Report, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, apperr.Newf(apperr.TypeReportNotFound, "report %q not found", id)
	}
	cp := *r
	return &cp, nil
}

func (m *mockReportService) ListReports(ctx context.Context, filter report.ListFilter) ([]report.Report, error) {
	return nil, nil
}

func (m *mockReportService) UpdateReport(ctx context.Context, id string, r *report.Report, userID string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	cp := *r
	m.updated[id] = &cp
	m.reports[id] = &cp
	return nil
}

func (m *mockReportService) DeleteReport(ctx context.Context, id, userID string) error { return nil }

func (m *mockReportService) RunReport(ctx context.Context, id string) (*report.RunResult, error) {
	return nil, nil
}

func (m *mockReportService) RunConfig(ctx context.Context, r *report.Report, persistChartFields bool) (*report.RunResult, error) {
	cp := *r
	m.runCalls = append(m.runCalls, runCall{report: &cp, persist: persistChartFields})
	return &report.RunResult{Report: &cp}, nil
}

func (m *mockReportService) PreviewConfig(ctx context.Context, r *report.Report) (*report.RunResult, error) {
	return nil, nil
}

func (m *mockReportService) CloneReport(ctx context.Context, id, userID string) (*report.Report, error) {
	return nil, nil
}

func (m *mockReportService) ToggleFavourite(ctx context.Context, id string) (bool, error) {
	return false, nil
}

func (m *mockReportService) MoveToFolder(ctx context.Context, id, folderID string) error { return nil }

func (m *mockReportService) ListReportRecords(ctx context.Context, id string, drill []record.FilterSpec, opts record.ListOptions) ([]map[string]interface{}, int64, error) {
	return nil, 0, nil
}

type stubLoader struct{}

func (l *stubLoader) ListChoices(ctx context.Context, section, displayField string) ([]schema.Choice, error) {
	return nil, nil
}

func (l *stubLoader) DisplayFor(ctx context.Context, section, displayField string, ids []string) (map[string]string, error) {
	return map[string]string{}, nil
}

func newTestDraftService() (*DraftServiceImpl, *mockReportService, *mockDraftRepo) {
	reports := &mockReportService{
		reports: map[string]*report.Report{},
		updated: map[string]*report.Report{},
	}
	repo := &mockDraftRepo{drafts: map[string]*Draft{}}
	svc := &DraftServiceImpl{
		Repo:     repo,
		Reports:  reports,
		Registry: schema.NewRegistry(&stubLoader{}),
		Logger:   zap.NewNop(),
		TTL:      2 * time.Hour,
	}
	return svc, reports, repo
}

func seedReport(m *mockReportService) string {
	id := primitive.NewObjectID()
	m.reports[id.Hex()] = &report.Report{
		ID:              id,
		Name:            "Pipeline",
		Section:         "leads",
		SelectedColumns: []string{"first_name", "city"},
		RowGroups:       []string{"lead_status"},
		Aggregates:      []report.AggregateSpec{{Field: "annual_revenue", Func: report.AggSum}},
		Filters: []record.FilterSpec{
			{Field: "city", Operator: record.OpExact, Value: "Austin", Logic: "and"},
		},
		ChartType: report.ChartColumn,
		Owner:     "u1",
	}
	return id.Hex()
}

func session(id string, version int64) Session {
	return Session{ReportID: id, UserID: "u1", Version: version}
}

func TestAddColumnCreatesDraft(t *testing.T) {
	svc, reports, repo := newTestDraftService()
	id := seedReport(reports)

	state, err := svc.AddColumn(context.Background(), session(id, 0), "state")
	if err != nil {
		t.Fatalf("AddColumn() error = %v", err)
	}
	if state.Version != 1 {
		t.Errorf("Version = %d, want 1", state.Version)
	}
	if !state.HasUnsavedChanges {
		t.Error("HasUnsavedChanges = false, want true")
	}
	want := []string{"first_name", "city", "state"}
	if got := state.Report.SelectedColumns; !reflect.DeepEqual(got, want) {
		t.Errorf("SelectedColumns = %v, want %v", got, want)
	}

	// The saved report is untouched until the draft is applied.
	saved, _ := reports.GetReport(context.Background(), id)
	if reflect.DeepEqual(saved.SelectedColumns, want) {
		t.Error("saved report picked up draft changes before save")
	}
	if len(repo.drafts) != 1 {
		t.Fatalf("stored drafts = %d, want 1", len(repo.drafts))
	}
}

func TestAddColumnUnknownFieldRejected(t *testing.T) {
	svc, reports, repo := newTestDraftService()
	id := seedReport(reports)

	_, err := svc.AddColumn(context.Background(), session(id, 0), "bogus")
	if !apperr.IsType(err, apperr.TypeFieldNotFound) {
		t.Fatalf("AddColumn() error = %v, want field not found", err)
	}
	if len(repo.drafts) != 0 {
		t.Error("rejected mutation still stored a draft")
	}
}

func TestStaleVersionConflicts(t *testing.T) {
	svc, reports, _ := newTestDraftService()
	id := seedReport(reports)

	if _, err := svc.AddColumn(context.Background(), session(id, 0), "state"); err != nil {
		t.Fatalf("AddColumn() error = %v", err)
	}

	// A second tab still holding version 0 must not clobber the edit.
	_, err := svc.AddColumn(context.Background(), session(id, 0), "email")
	if !apperr.IsType(err, apperr.TypeDraftConflict) {
		t.Fatalf("AddColumn() error = %v, want draft conflict", err)
	}

	// A version ahead of the store is just as stale.
	_, err = svc.AddColumn(context.Background(), session(id, 7), "email")
	if !apperr.IsType(err, apperr.TypeDraftConflict) {
		t.Fatalf("AddColumn() error = %v, want draft conflict", err)
	}
}

func TestNoOpMutationKeepsVersion(t *testing.T) {
	svc, reports, _ := newTestDraftService()
	id := seedReport(reports)

	// first_name is already a selected column.
	state, err := svc.AddColumn(context.Background(), session(id, 0), "first_name")
	if err != nil {
		t.Fatalf("AddColumn() error = %v", err)
	}
	if state.Version != 0 {
		t.Errorf("Version = %d, want 0 after no-op", state.Version)
	}
	if state.HasUnsavedChanges {
		t.Error("HasUnsavedChanges = true after no-op")
	}
}

func TestToggleRowGroupTwiceRestoresGroups(t *testing.T) {
	svc, reports, _ := newTestDraftService()
	id := seedReport(reports)
	ctx := context.Background()

	state, err := svc.ToggleRowGroup(ctx, session(id, 0), "city")
	if err != nil {
		t.Fatalf("ToggleRowGroup() error = %v", err)
	}
	if want := []string{"lead_status", "city"}; !reflect.DeepEqual(state.Report.RowGroups, want) {
		t.Errorf("RowGroups = %v, want %v", state.Report.RowGroups, want)
	}

	state, err = svc.ToggleRowGroup(ctx, session(id, 1), "city")
	if err != nil {
		t.Fatalf("ToggleRowGroup() error = %v", err)
	}
	if want := []string{"lead_status"}; !reflect.DeepEqual(state.Report.RowGroups, want) {
		t.Errorf("RowGroups = %v, want %v", state.Report.RowGroups, want)
	}
	// The aspect was touched even though it ended up back where it
	// started, so the draft still reports unsaved changes.
	if !state.HasUnsavedChanges {
		t.Error("HasUnsavedChanges = false, want true")
	}
}

func TestGroupCaps(t *testing.T) {
	svc, reports, _ := newTestDraftService()
	id := seedReport(reports)
	ctx := context.Background()

	reports.reports[id].RowGroups = []string{"lead_status", "city", "state"}
	if _, err := svc.ToggleRowGroup(ctx, session(id, 0), "industry"); !apperr.IsType(err, apperr.TypeValidation) {
		t.Fatalf("ToggleRowGroup() error = %v, want validation error", err)
	}

	reports.reports[id].ColumnGroups = []string{"industry", "lead_source"}
	if _, err := svc.ToggleColumnGroup(ctx, session(id, 0), "is_convert"); !apperr.IsType(err, apperr.TypeValidation) {
		t.Fatalf("ToggleColumnGroup() error = %v, want validation error", err)
	}

	// Removal still works at the cap.
	state, err := svc.ToggleRowGroup(ctx, session(id, 0), "state")
	if err != nil {
		t.Fatalf("ToggleRowGroup() error = %v", err)
	}
	if want := []string{"lead_status", "city"}; !reflect.DeepEqual(state.Report.RowGroups, want) {
		t.Errorf("RowGroups = %v, want %v", state.Report.RowGroups, want)
	}
}

func TestAddFilterAssignsUniqueKeys(t *testing.T) {
	svc, reports, _ := newTestDraftService()
	id := seedReport(reports)
	ctx := context.Background()

	var state *DraftState
	var err error
	for i := int64(0); i < 3; i++ {
		state, err = svc.AddFilter(ctx, session(id, i), "lead_status")
		if err != nil {
			t.Fatalf("AddFilter() #%d error = %v", i+1, err)
		}
	}

	// Seeded city filter plus three lead_status filters.
	specs := state.Report.Filters
	if len(specs) != 4 {
		t.Fatalf("filters = %d, want 4", len(specs))
	}
	wantKeys := []string{"lead_status", "lead_status_1", "lead_status_2"}
	for i, want := range wantKeys {
		spec := specs[i+1]
		if spec.Key != want {
			t.Errorf("filter %d key = %q, want %q", i+1, spec.Key, want)
		}
		if spec.Field != "lead_status" {
			t.Errorf("filter %d field = %q, want lead_status", i+1, spec.Field)
		}
		if spec.Operator != record.OpExact || spec.Value != "" || spec.Logic != "and" {
			t.Errorf("filter %d = %+v, want blank exact and-filter", i+1, spec)
		}
	}
}

func TestUpdateFilterOperatorAndValue(t *testing.T) {
	svc, reports, _ := newTestDraftService()
	id := seedReport(reports)
	ctx := context.Background()

	// The seeded filter has no explicit key, so it answers to its
	// field name.
	state, err := svc.UpdateFilterOperator(ctx, session(id, 0), "city", record.OpContains)
	if err != nil {
		t.Fatalf("UpdateFilterOperator() error = %v", err)
	}
	if got := state.Report.Filters[0].Operator; got != record.OpContains {
		t.Errorf("operator = %q, want %q", got, record.OpContains)
	}

	state, err = svc.UpdateFilterValue(ctx, session(id, 1), "city", "Boston")
	if err != nil {
		t.Fatalf("UpdateFilterValue() error = %v", err)
	}
	if got := state.Report.Filters[0].Value; got != "Boston" {
		t.Errorf("value = %q, want Boston", got)
	}

	if _, err := svc.UpdateFilterOperator(ctx, session(id, 2), "city", "between"); !apperr.IsType(err, apperr.TypeUnsupportedOperator) {
		t.Fatalf("UpdateFilterOperator() error = %v, want unsupported operator", err)
	}
}

func TestUpdateFilterMissingKeyCreatesSpec(t *testing.T) {
	svc, reports, _ := newTestDraftService()
	id := seedReport(reports)
	ctx := context.Background()

	// Updating a filter that does not exist creates it when the key
	// names a real field.
	state, err := svc.UpdateFilterValue(ctx, session(id, 0), "lead_score", "50")
	if err != nil {
		t.Fatalf("UpdateFilterValue() error = %v", err)
	}
	last := state.Report.Filters[len(state.Report.Filters)-1]
	if last.Key != "lead_score" || last.Field != "lead_score" || last.Value != "50" {
		t.Errorf("created filter = %+v, want lead_score=50", last)
	}

	if _, err := svc.UpdateFilterValue(ctx, session(id, 1), "city_9", "x"); !apperr.IsType(err, apperr.TypeFieldNotFound) {
		t.Fatalf("UpdateFilterValue() error = %v, want field not found", err)
	}
}

func TestUpdateFilterLogic(t *testing.T) {
	svc, reports, _ := newTestDraftService()
	id := seedReport(reports)
	ctx := context.Background()

	state, err := svc.UpdateFilterLogic(ctx, session(id, 0), "city", "OR")
	if err != nil {
		t.Fatalf("UpdateFilterLogic() error = %v", err)
	}
	if got := state.Report.Filters[0].Logic; got != "or" {
		t.Errorf("logic = %q, want or", got)
	}

	// A missing key is a no-op, not a create.
	state, err = svc.UpdateFilterLogic(ctx, session(id, 1), "lead_score", "and")
	if err != nil {
		t.Fatalf("UpdateFilterLogic() error = %v", err)
	}
	if state.Version != 1 {
		t.Errorf("Version = %d, want 1 after no-op", state.Version)
	}
	if len(state.Report.Filters) != 1 {
		t.Errorf("filters = %d, want 1", len(state.Report.Filters))
	}

	if _, err := svc.UpdateFilterLogic(ctx, session(id, 1), "city", "xor"); !apperr.IsType(err, apperr.TypeValidation) {
		t.Fatalf("UpdateFilterLogic() error = %v, want validation error", err)
	}
}

func TestRemoveFilter(t *testing.T) {
	svc, reports, _ := newTestDraftService()
	id := seedReport(reports)
	ctx := context.Background()

	state, err := svc.RemoveFilter(ctx, session(id, 0), "city")
	if err != nil {
		t.Fatalf("RemoveFilter() error = %v", err)
	}
	if len(state.Report.Filters) != 0 {
		t.Errorf("filters = %d, want 0", len(state.Report.Filters))
	}

	// Removing it again changes nothing.
	state, err = svc.RemoveFilter(ctx, session(id, 1), "city")
	if err != nil {
		t.Fatalf("RemoveFilter() error = %v", err)
	}
	if state.Version != 1 {
		t.Errorf("Version = %d, want 1 after no-op", state.Version)
	}
}

func TestToggleAggregateStepsThroughFunctions(t *testing.T) {
	svc, reports, _ := newTestDraftService()
	id := seedReport(reports)
	ctx := context.Background()

	want := []string{report.AggSum, report.AggAvg, report.AggCount, report.AggMax, report.AggMin}
	var state *DraftState
	var err error
	for i := int64(0); i < 5; i++ {
		state, err = svc.ToggleAggregate(ctx, session(id, i), "lead_score")
		if err != nil {
			t.Fatalf("ToggleAggregate() #%d error = %v", i+1, err)
		}
	}

	var got []string
	for _, a := range state.Report.Aggregates {
		if a.Field == "lead_score" {
			got = append(got, a.Func)
		}
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("lead_score funcs = %v, want %v", got, want)
	}

	// All five functions exist, the sixth toggle is a no-op.
	state, err = svc.ToggleAggregate(ctx, session(id, 5), "lead_score")
	if err != nil {
		t.Fatalf("ToggleAggregate() #6 error = %v", err)
	}
	if state.Version != 5 {
		t.Errorf("Version = %d, want 5 after exhausted toggle", state.Version)
	}
}

func TestUpdateAggregateFuncHitsEveryMatch(t *testing.T) {
	svc, reports, _ := newTestDraftService()
	id := seedReport(reports)
	ctx := context.Background()

	reports.reports[id].Aggregates = []report.AggregateSpec{
		{Field: "annual_revenue", Func: report.AggSum},
		{Field: "lead_score", Func: report.AggAvg},
		{Field: "annual_revenue", Func: report.AggMax},
	}

	state, err := svc.UpdateAggregateFunc(ctx, session(id, 0), "annual_revenue", report.AggMin)
	if err != nil {
		t.Fatalf("UpdateAggregateFunc() error = %v", err)
	}
	got := state.Report.Aggregates
	if got[0].Func != report.AggMin || got[2].Func != report.AggMin {
		t.Errorf("annual_revenue funcs = %q, %q, want min, min", got[0].Func, got[2].Func)
	}
	if got[1].Func != report.AggAvg {
		t.Errorf("lead_score func = %q, want avg", got[1].Func)
	}

	// Unknown functions normalize to sum instead of failing.
	state, err = svc.UpdateAggregateFunc(ctx, session(id, 1), "lead_score", "median")
	if err != nil {
		t.Fatalf("UpdateAggregateFunc() error = %v", err)
	}
	if got := state.Report.Aggregates[1].Func; got != report.AggSum {
		t.Errorf("lead_score func = %q, want sum", got)
	}
}

func TestRemoveAggregate(t *testing.T) {
	svc, reports, _ := newTestDraftService()
	id := seedReport(reports)

	state, err := svc.RemoveAggregate(context.Background(), session(id, 0), "annual_revenue")
	if err != nil {
		t.Fatalf("RemoveAggregate() error = %v", err)
	}
	if len(state.Report.Aggregates) != 0 {
		t.Errorf("aggregates = %d, want 0", len(state.Report.Aggregates))
	}
}

func TestUpdateChartType(t *testing.T) {
	svc, reports, _ := newTestDraftService()
	id := seedReport(reports)
	ctx := context.Background()

	state, err := svc.UpdateChartType(ctx, session(id, 0), report.ChartPie)
	if err != nil {
		t.Fatalf("UpdateChartType() error = %v", err)
	}
	if state.Report.ChartType != report.ChartPie {
		t.Errorf("ChartType = %q, want pie", state.Report.ChartType)
	}

	if _, err := svc.UpdateChartType(ctx, session(id, 1), "sparkline"); !apperr.IsType(err, apperr.TypeValidation) {
		t.Fatalf("UpdateChartType() error = %v, want validation error", err)
	}
}

func TestUpdateChartFieldsRequiresGroupMembership(t *testing.T) {
	svc, reports, _ := newTestDraftService()
	id := seedReport(reports)
	ctx := context.Background()

	// lead_status is the report's row group.
	state, err := svc.UpdateChartFields(ctx, session(id, 0), "lead_status", "")
	if err != nil {
		t.Fatalf("UpdateChartFields() error = %v", err)
	}
	if state.Report.ChartField != "lead_status" {
		t.Errorf("ChartField = %q, want lead_status", state.Report.ChartField)
	}

	if _, err := svc.UpdateChartFields(ctx, session(id, 1), "annual_revenue", ""); !apperr.IsType(err, apperr.TypeValidation) {
		t.Fatalf("UpdateChartFields() error = %v, want validation error", err)
	}

	// Groups added in the draft count.
	if _, err := svc.ToggleColumnGroup(ctx, session(id, 1), "city"); err != nil {
		t.Fatalf("ToggleColumnGroup() error = %v", err)
	}
	state, err = svc.UpdateChartFields(ctx, session(id, 2), "lead_status", "city")
	if err != nil {
		t.Fatalf("UpdateChartFields() error = %v", err)
	}
	if state.Report.ChartFieldStacked != "city" {
		t.Errorf("ChartFieldStacked = %q, want city", state.Report.ChartFieldStacked)
	}
}

func TestPreviewRunsMergedConfig(t *testing.T) {
	svc, reports, _ := newTestDraftService()
	id := seedReport(reports)
	ctx := context.Background()

	if _, err := svc.AddColumn(ctx, session(id, 0), "state"); err != nil {
		t.Fatalf("AddColumn() error = %v", err)
	}

	preview, err := svc.Preview(ctx, session(id, 0))
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if preview.Version != 1 || !preview.HasUnsavedChanges {
		t.Errorf("preview version = %d, changes = %v, want 1, true", preview.Version, preview.HasUnsavedChanges)
	}
	if len(reports.runCalls) != 1 {
		t.Fatalf("RunConfig calls = %d, want 1", len(reports.runCalls))
	}
	call := reports.runCalls[0]
	if call.persist {
		t.Error("preview ran with chart field persistence enabled")
	}
	want := []string{"first_name", "city", "state"}
	if !reflect.DeepEqual(call.report.SelectedColumns, want) {
		t.Errorf("ran columns = %v, want %v", call.report.SelectedColumns, want)
	}
}

func TestSaveAppliesDraftAndDeletesIt(t *testing.T) {
	svc, reports, repo := newTestDraftService()
	id := seedReport(reports)
	ctx := context.Background()

	if _, err := svc.AddColumn(ctx, session(id, 0), "state"); err != nil {
		t.Fatalf("AddColumn() error = %v", err)
	}

	saved, err := svc.Save(ctx, session(id, 1))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	want := []string{"first_name", "city", "state"}
	if !reflect.DeepEqual(saved.SelectedColumns, want) {
		t.Errorf("saved columns = %v, want %v", saved.SelectedColumns, want)
	}
	if _, ok := reports.updated[id]; !ok {
		t.Error("UpdateReport was not called")
	}
	if len(repo.drafts) != 0 {
		t.Error("draft survived the save")
	}
}

func TestSaveStaleVersionConflicts(t *testing.T) {
	svc, reports, repo := newTestDraftService()
	id := seedReport(reports)
	ctx := context.Background()

	if _, err := svc.AddColumn(ctx, session(id, 0), "state"); err != nil {
		t.Fatalf("AddColumn() error = %v", err)
	}

	if _, err := svc.Save(ctx, session(id, 0)); !apperr.IsType(err, apperr.TypeDraftConflict) {
		t.Fatalf("Save() error = %v, want draft conflict", err)
	}
	if len(repo.drafts) != 1 {
		t.Error("conflicting save dropped the draft")
	}
}

func TestSaveFailureKeepsDraft(t *testing.T) {
	svc, reports, repo := newTestDraftService()
	id := seedReport(reports)
	ctx := context.Background()

	if _, err := svc.AddColumn(ctx, session(id, 0), "state"); err != nil {
		t.Fatalf("AddColumn() error = %v", err)
	}

	reports.updateErr = apperr.New(apperr.TypeValidation, "report name is required")
	if _, err := svc.Save(ctx, session(id, 1)); !apperr.IsType(err, apperr.TypeValidation) {
		t.Fatalf("Save() error = %v, want validation error", err)
	}
	if len(repo.drafts) != 1 {
		t.Error("failed save dropped the draft")
	}
}

func TestSaveWithoutDraftReturnsSavedReport(t *testing.T) {
	svc, reports, _ := newTestDraftService()
	id := seedReport(reports)

	saved, err := svc.Save(context.Background(), session(id, 0))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.Name != "Pipeline" {
		t.Errorf("Name = %q, want Pipeline", saved.Name)
	}
	if len(reports.updated) != 0 {
		t.Error("UpdateReport was called with nothing to apply")
	}
}

func TestDiscardDropsDraft(t *testing.T) {
	svc, reports, repo := newTestDraftService()
	id := seedReport(reports)
	ctx := context.Background()

	if _, err := svc.AddColumn(ctx, session(id, 0), "state"); err != nil {
		t.Fatalf("AddColumn() error = %v", err)
	}
	if err := svc.Discard(ctx, session(id, 0)); err != nil {
		t.Fatalf("Discard() error = %v", err)
	}
	if len(repo.drafts) != 0 {
		t.Error("draft survived the discard")
	}

	state, err := svc.GetState(ctx, session(id, 0))
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if state.Version != 0 || state.HasUnsavedChanges {
		t.Errorf("state after discard = v%d changes=%v, want v0 changes=false", state.Version, state.HasUnsavedChanges)
	}
}

func TestDraftsAreScopedPerUser(t *testing.T) {
	svc, reports, _ := newTestDraftService()
	id := seedReport(reports)
	ctx := context.Background()

	if _, err := svc.AddColumn(ctx, Session{ReportID: id, UserID: "u1"}, "state"); err != nil {
		t.Fatalf("AddColumn() error = %v", err)
	}

	state, err := svc.GetState(ctx, Session{ReportID: id, UserID: "u2"})
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if state.HasUnsavedChanges {
		t.Error("u2 sees u1's draft")
	}
	if state.Version != 0 {
		t.Errorf("u2 version = %d, want 0", state.Version)
	}
}
