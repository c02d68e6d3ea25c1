package folder

import (
	"context"
	"sort"
	"testing"

	"crm-reports/internal/common/apperr"
	"crm-reports/internal/common/models"
	"crm-reports/internal/features/report"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type mockFolderRepo struct {
	store map[string]*Folder
}

func newMockFolderRepo() *mockFolderRepo {
	return &mockFolderRepo{store: map[string]*Folder{}}
}

func (m *mockFolderRepo) Create(ctx context.Context, folder *Folder) error {
	if folder.ID.IsZero() {
		folder.ID = primitive.NewObjectID()
	}
	clone := *folder
	m.store[folder.ID.Hex()] = &clone
	return nil
}

func (m *mockFolderRepo) Get(ctx context.Context, id string) (*Folder, error) {
	f, ok := m.store[id]
	if !ok {
		return nil, apperr.Newf(apperr.TypeFolderNotFound, "folder %q not found", id)
	}
	clone := *f
	return &clone, nil
}

func (m *mockFolderRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := m.store[id]
	return ok, nil
}

func (m *mockFolderRepo) List(ctx context.Context, filter ListFilter) ([]Folder, error) {
	var out []Folder
	for _, f := range m.store {
		if filter.Favourites && !f.IsFavourite {
			continue
		}
		if filter.RootsOnly && f.ParentID != nil {
			continue
		}
		if filter.ParentID != "" && (f.ParentID == nil || f.ParentID.Hex() != filter.ParentID) {
			continue
		}
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockFolderRepo) SetName(ctx context.Context, id, name string) error {
	f, ok := m.store[id]
	if !ok {
		return apperr.Newf(apperr.TypeFolderNotFound, "folder %q not found", id)
	}
	f.Name = name
	return nil
}

func (m *mockFolderRepo) SetParent(ctx context.Context, id string, parentID *primitive.ObjectID) error {
	f, ok := m.store[id]
	if !ok {
		return apperr.Newf(apperr.TypeFolderNotFound, "folder %q not found", id)
	}
	f.ParentID = parentID
	return nil
}

func (m *mockFolderRepo) SetFavourite(ctx context.Context, id string, favourite bool) error {
	f, ok := m.store[id]
	if !ok {
		return apperr.Newf(apperr.TypeFolderNotFound, "folder %q not found", id)
	}
	f.IsFavourite = favourite
	return nil
}

func (m *mockFolderRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.store[id]; !ok {
		return apperr.Newf(apperr.TypeFolderNotFound, "folder %q not found", id)
	}
	delete(m.store, id)
	return nil
}

func (m *mockFolderRepo) ReparentChildren(ctx context.Context, from primitive.ObjectID, to *primitive.ObjectID) (int64, error) {
	var moved int64
	for _, f := range m.store {
		if f.ParentID != nil && *f.ParentID == from {
			f.ParentID = to
			moved++
		}
	}
	return moved, nil
}

func (m *mockFolderRepo) EnsureIndexes(ctx context.Context) error { return nil }

type moveCall struct {
	from primitive.ObjectID
	to   *primitive.ObjectID
}

type mockReportStore struct {
	reports []report.Report
	counts  map[string]int64
	moves   []moveCall
}

func (m *mockReportStore) List(ctx context.Context, filter report.ListFilter) ([]report.Report, error) {
	var out []report.Report
	for _, r := range m.reports {
		if filter.FolderID != "" && (r.FolderID == nil || r.FolderID.Hex() != filter.FolderID) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *mockReportStore) MoveFolderReports(ctx context.Context, from primitive.ObjectID, to *primitive.ObjectID) (int64, error) {
	m.moves = append(m.moves, moveCall{from: from, to: to})
	var moved int64
	for i := range m.reports {
		if m.reports[i].FolderID != nil && *m.reports[i].FolderID == from {
			m.reports[i].FolderID = to
			moved++
		}
	}
	return moved, nil
}

func (m *mockReportStore) CountByFolder(ctx context.Context) (map[string]int64, error) {
	if m.counts != nil {
		return m.counts, nil
	}
	counts := map[string]int64{}
	for _, r := range m.reports {
		key := ""
		if r.FolderID != nil {
			key = r.FolderID.Hex()
		}
		counts[key]++
	}
	return counts, nil
}

type mockAudit struct {
	actions []models.AuditAction
}

func (m *mockAudit) LogChange(ctx context.Context, action models.AuditAction, module string, recordID string, changes map[string]models.Change) error {
	m.actions = append(m.actions, action)
	return nil
}

func (m *mockAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]models.AuditLog, error) {
	return nil, nil
}

func newTestFolderService() (*FolderServiceImpl, *mockFolderRepo, *mockReportStore) {
	repo := newMockFolderRepo()
	reports := &mockReportStore{}
	svc := &FolderServiceImpl{
		Repo:    repo,
		Reports: reports,
		Audit:   &mockAudit{},
		Logger:  zap.NewNop(),
	}
	return svc, repo, reports
}

func (m *mockFolderRepo) seed(name string, parent *primitive.ObjectID) *Folder {
	f := &Folder{ID: primitive.NewObjectID(), Name: name, ParentID: parent}
	m.store[f.ID.Hex()] = f
	return f
}

func TestCreateFolder(t *testing.T) {
	svc, repo, _ := newTestFolderService()

	f := &Folder{Name: "Sales"}
	if err := svc.CreateFolder(context.Background(), f, "u1"); err != nil {
		t.Fatalf("CreateFolder() error: %v", err)
	}
	if f.Owner != "u1" {
		t.Errorf("owner = %q, want u1", f.Owner)
	}
	if _, ok := repo.store[f.ID.Hex()]; !ok {
		t.Error("folder not stored")
	}

	child := &Folder{Name: "Q3", ParentID: &f.ID}
	if err := svc.CreateFolder(context.Background(), child, "u1"); err != nil {
		t.Fatalf("CreateFolder() child error: %v", err)
	}

	ghost := primitive.NewObjectID()
	err := svc.CreateFolder(context.Background(), &Folder{Name: "Orphan", ParentID: &ghost}, "u1")
	if !apperr.IsType(err, apperr.TypeFolderNotFound) {
		t.Errorf("missing parent error type = %q, want %q", apperr.TypeOf(err), apperr.TypeFolderNotFound)
	}

	err = svc.CreateFolder(context.Background(), &Folder{}, "u1")
	if !apperr.IsType(err, apperr.TypeValidation) {
		t.Errorf("empty name error type = %q, want %q", apperr.TypeOf(err), apperr.TypeValidation)
	}
}

func TestListFoldersWithCounts(t *testing.T) {
	svc, repo, reports := newTestFolderService()
	sales := repo.seed("Sales", nil)
	q3 := repo.seed("Q3", &sales.ID)
	repo.seed("Archive", nil)
	reports.counts = map[string]int64{sales.ID.Hex(): 3, q3.ID.Hex(): 1}

	all, err := svc.ListFolders(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("ListFolders() error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}
	byName := map[string]int64{}
	for _, f := range all {
		byName[f.Name] = f.ReportCount
	}
	if byName["Sales"] != 3 || byName["Q3"] != 1 || byName["Archive"] != 0 {
		t.Errorf("counts = %v", byName)
	}

	roots, err := svc.ListFolders(context.Background(), ListFilter{RootsOnly: true})
	if err != nil {
		t.Fatalf("ListFolders(roots) error: %v", err)
	}
	if len(roots) != 2 {
		t.Errorf("len(roots) = %d, want 2", len(roots))
	}
}

func TestGetFolderDetail(t *testing.T) {
	svc, repo, reports := newTestFolderService()
	sales := repo.seed("Sales", nil)
	q3 := repo.seed("Q3", &sales.ID)
	reports.reports = []report.Report{
		{ID: primitive.NewObjectID(), Name: "Pipeline", FolderID: &sales.ID},
		{ID: primitive.NewObjectID(), Name: "Forecast", FolderID: &q3.ID},
	}

	detail, err := svc.GetFolder(context.Background(), sales.ID.Hex())
	if err != nil {
		t.Fatalf("GetFolder() error: %v", err)
	}
	if detail.Folder.Name != "Sales" {
		t.Errorf("folder = %q", detail.Folder.Name)
	}
	if len(detail.Subfolders) != 1 || detail.Subfolders[0].Name != "Q3" {
		t.Errorf("subfolders = %+v", detail.Subfolders)
	}
	if detail.Subfolders[0].ReportCount != 1 {
		t.Errorf("subfolder count = %d, want 1", detail.Subfolders[0].ReportCount)
	}
	if len(detail.Reports) != 1 || detail.Reports[0].Name != "Pipeline" {
		t.Errorf("reports = %+v", detail.Reports)
	}
}

func TestRenameFolder(t *testing.T) {
	svc, repo, _ := newTestFolderService()
	f := repo.seed("Sales", nil)

	renamed, err := svc.RenameFolder(context.Background(), f.ID.Hex(), "Revenue")
	if err != nil {
		t.Fatalf("RenameFolder() error: %v", err)
	}
	if renamed.Name != "Revenue" || repo.store[f.ID.Hex()].Name != "Revenue" {
		t.Errorf("name = %q / %q, want Revenue", renamed.Name, repo.store[f.ID.Hex()].Name)
	}

	if _, err := svc.RenameFolder(context.Background(), f.ID.Hex(), ""); !apperr.IsType(err, apperr.TypeValidation) {
		t.Errorf("empty name error type = %q, want %q", apperr.TypeOf(err), apperr.TypeValidation)
	}
}

func TestMoveFolderRejectsCycles(t *testing.T) {
	svc, repo, _ := newTestFolderService()
	a := repo.seed("A", nil)
	b := repo.seed("B", &a.ID)
	c := repo.seed("C", &b.ID)
	d := repo.seed("D", nil)

	err := svc.MoveFolder(context.Background(), a.ID.Hex(), c.ID.Hex())
	if !apperr.IsType(err, apperr.TypeValidation) {
		t.Errorf("move into own subtree error type = %q, want %q", apperr.TypeOf(err), apperr.TypeValidation)
	}
	err = svc.MoveFolder(context.Background(), a.ID.Hex(), a.ID.Hex())
	if !apperr.IsType(err, apperr.TypeValidation) {
		t.Errorf("move into itself error type = %q, want %q", apperr.TypeOf(err), apperr.TypeValidation)
	}

	if err := svc.MoveFolder(context.Background(), b.ID.Hex(), d.ID.Hex()); err != nil {
		t.Fatalf("MoveFolder() to sibling root error: %v", err)
	}
	if got := repo.store[b.ID.Hex()].ParentID; got == nil || *got != d.ID {
		t.Errorf("B parent = %v, want D", got)
	}

	if err := svc.MoveFolder(context.Background(), c.ID.Hex(), ""); err != nil {
		t.Fatalf("MoveFolder() to root error: %v", err)
	}
	if got := repo.store[c.ID.Hex()].ParentID; got != nil {
		t.Errorf("C parent = %v, want root", got)
	}

	err = svc.MoveFolder(context.Background(), a.ID.Hex(), primitive.NewObjectID().Hex())
	if !apperr.IsType(err, apperr.TypeFolderNotFound) {
		t.Errorf("missing target error type = %q, want %q", apperr.TypeOf(err), apperr.TypeFolderNotFound)
	}
}

func TestToggleFolderFavourite(t *testing.T) {
	svc, repo, _ := newTestFolderService()
	f := repo.seed("Sales", nil)

	on, err := svc.ToggleFavourite(context.Background(), f.ID.Hex())
	if err != nil {
		t.Fatalf("ToggleFavourite() error: %v", err)
	}
	if !on || !repo.store[f.ID.Hex()].IsFavourite {
		t.Error("first toggle should set the favourite flag")
	}

	off, err := svc.ToggleFavourite(context.Background(), f.ID.Hex())
	if err != nil {
		t.Fatalf("ToggleFavourite() second error: %v", err)
	}
	if off {
		t.Error("second toggle = true, want false")
	}
}

func TestDeleteFolderReparents(t *testing.T) {
	svc, repo, reports := newTestFolderService()
	a := repo.seed("A", nil)
	b := repo.seed("B", &a.ID)
	c := repo.seed("C", &b.ID)
	reports.reports = []report.Report{
		{ID: primitive.NewObjectID(), Name: "In B", FolderID: &b.ID},
	}

	if err := svc.DeleteFolder(context.Background(), b.ID.Hex(), "u1"); err != nil {
		t.Fatalf("DeleteFolder() error: %v", err)
	}

	if _, ok := repo.store[b.ID.Hex()]; ok {
		t.Error("folder B still stored")
	}
	if got := repo.store[c.ID.Hex()].ParentID; got == nil || *got != a.ID {
		t.Errorf("C parent = %v, want A", got)
	}
	if len(reports.moves) != 1 || reports.moves[0].from != b.ID {
		t.Fatalf("report moves = %+v, want one move out of B", reports.moves)
	}
	if to := reports.moves[0].to; to == nil || *to != a.ID {
		t.Errorf("reports moved to %v, want A", to)
	}

	// Deleting a root folder lifts everything to the top level.
	if err := svc.DeleteFolder(context.Background(), a.ID.Hex(), "u1"); err != nil {
		t.Fatalf("DeleteFolder() root error: %v", err)
	}
	if got := repo.store[c.ID.Hex()].ParentID; got != nil {
		t.Errorf("C parent after root delete = %v, want nil", got)
	}
	if to := reports.moves[1].to; to != nil {
		t.Errorf("reports moved to %v, want root", to)
	}
}
