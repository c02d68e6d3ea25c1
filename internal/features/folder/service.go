package folder

import (
	"context"

	"crm-reports/internal/common/apperr"
	"crm-reports/internal/common/models"
	"crm-reports/internal/features/audit"
	"crm-reports/internal/features/report"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Folders deeper than this are treated as corrupted trees rather than
// walked forever.
const maxFolderDepth = 64

// ReportStore is the slice of the report repository the folder feature
// needs; the report repository satisfies it as-is.
type ReportStore interface {
	List(ctx context.Context, filter report.ListFilter) ([]report.Report, error)
	MoveFolderReports(ctx context.Context, from primitive.ObjectID, to *primitive.ObjectID) (int64, error)
	CountByFolder(ctx context.Context) (map[string]int64, error)
}

// FolderDetail is one folder opened: its subfolders and the reports
// filed in it.
type FolderDetail struct {
	Folder     *Folder           `json:"folder"`
	Subfolders []FolderWithCount `json:"subfolders"`
	Reports    []report.Report   `json:"reports"`
}

type FolderService interface {
	CreateFolder(ctx context.Context, folder *Folder, userID string) error
	GetFolder(ctx context.Context, id string) (*FolderDetail, error)
	ListFolders(ctx context.Context, filter ListFilter) ([]FolderWithCount, error)
	RenameFolder(ctx context.Context, id, name string) (*Folder, error)
	MoveFolder(ctx context.Context, id, parentID string) error
	ToggleFavourite(ctx context.Context, id string) (bool, error)
	DeleteFolder(ctx context.Context, id, userID string) error
}

type FolderServiceImpl struct {
	Repo    FolderRepository
	Reports ReportStore
	Audit   audit.AuditService
	Logger  *zap.Logger
}

func NewFolderService(repo FolderRepository, reports ReportStore, auditService audit.AuditService, logger *zap.Logger) FolderService {
	return &FolderServiceImpl{
		Repo:    repo,
		Reports: reports,
		Audit:   auditService,
		Logger:  logger,
	}
}

func (s *FolderServiceImpl) CreateFolder(ctx context.Context, folder *Folder, userID string) error {
	if folder.Name == "" {
		return apperr.New(apperr.TypeValidation, "folder name is required")
	}
	if folder.ParentID != nil {
		if _, err := s.Repo.Get(ctx, folder.ParentID.Hex()); err != nil {
			return err
		}
	}
	folder.Owner = userID
	folder.IsFavourite = false

	if err := s.Repo.Create(ctx, folder); err != nil {
		return err
	}
	_ = s.Audit.LogChange(ctx, models.AuditActionFolder, "folders", folder.ID.Hex(), map[string]models.Change{
		"folder": {New: folder.Name},
	})
	return nil
}

func (s *FolderServiceImpl) GetFolder(ctx context.Context, id string) (*FolderDetail, error) {
	folder, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	children, err := s.Repo.List(ctx, ListFilter{ParentID: id})
	if err != nil {
		return nil, err
	}
	counted, err := s.withCounts(ctx, children)
	if err != nil {
		return nil, err
	}

	reports, err := s.Reports.List(ctx, report.ListFilter{FolderID: id})
	if err != nil {
		return nil, err
	}

	return &FolderDetail{Folder: folder, Subfolders: counted, Reports: reports}, nil
}

func (s *FolderServiceImpl) ListFolders(ctx context.Context, filter ListFilter) ([]FolderWithCount, error) {
	folders, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.withCounts(ctx, folders)
}

func (s *FolderServiceImpl) withCounts(ctx context.Context, folders []Folder) ([]FolderWithCount, error) {
	counts, err := s.Reports.CountByFolder(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]FolderWithCount, len(folders))
	for i, f := range folders {
		out[i] = FolderWithCount{Folder: f, ReportCount: counts[f.ID.Hex()]}
	}
	return out, nil
}

func (s *FolderServiceImpl) RenameFolder(ctx context.Context, id, name string) (*Folder, error) {
	if name == "" {
		return nil, apperr.New(apperr.TypeValidation, "folder name is required")
	}
	folder, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.SetName(ctx, id, name); err != nil {
		return nil, err
	}
	_ = s.Audit.LogChange(ctx, models.AuditActionFolder, "folders", id, map[string]models.Change{
		"folder": {Old: folder.Name, New: name},
	})
	folder.Name = name
	return folder, nil
}

// MoveFolder re-parents a folder. An empty parent id lifts it to the
// root; a destination inside the folder's own subtree is rejected.
func (s *FolderServiceImpl) MoveFolder(ctx context.Context, id, parentID string) error {
	folder, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if parentID == "" {
		return s.Repo.SetParent(ctx, id, nil)
	}

	target, err := s.Repo.Get(ctx, parentID)
	if err != nil {
		return err
	}
	cyclic, err := s.inSubtree(ctx, id, target)
	if err != nil {
		return err
	}
	if cyclic {
		return apperr.Newf(apperr.TypeValidation, "cannot move folder %q into its own subtree", folder.Name)
	}
	return s.Repo.SetParent(ctx, id, &target.ID)
}

// inSubtree reports whether rootID appears on the ancestor chain of f,
// f itself included.
func (s *FolderServiceImpl) inSubtree(ctx context.Context, rootID string, f *Folder) (bool, error) {
	cur := f
	for depth := 0; ; depth++ {
		if cur.ID.Hex() == rootID {
			return true, nil
		}
		if cur.ParentID == nil {
			return false, nil
		}
		if depth >= maxFolderDepth {
			return false, apperr.Newf(apperr.TypeValidation, "folder tree deeper than %d levels", maxFolderDepth)
		}
		parent, err := s.Repo.Get(ctx, cur.ParentID.Hex())
		if err != nil {
			return false, err
		}
		cur = parent
	}
}

func (s *FolderServiceImpl) ToggleFavourite(ctx context.Context, id string) (bool, error) {
	folder, err := s.Repo.Get(ctx, id)
	if err != nil {
		return false, err
	}

	next := !folder.IsFavourite
	if err := s.Repo.SetFavourite(ctx, id, next); err != nil {
		return false, err
	}
	return next, nil
}

// DeleteFolder removes one folder. Its direct subfolders and its
// reports move up to the deleted folder's parent, nothing cascades.
func (s *FolderServiceImpl) DeleteFolder(ctx context.Context, id, userID string) error {
	folder, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}

	movedFolders, err := s.Repo.ReparentChildren(ctx, folder.ID, folder.ParentID)
	if err != nil {
		return err
	}
	movedReports, err := s.Reports.MoveFolderReports(ctx, folder.ID, folder.ParentID)
	if err != nil {
		return err
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	s.Logger.Info("folder deleted",
		zap.String("folder", id),
		zap.Int64("subfolders_moved", movedFolders),
		zap.Int64("reports_moved", movedReports))
	_ = s.Audit.LogChange(ctx, models.AuditActionFolder, "folders", id, map[string]models.Change{
		"folder": {Old: folder.Name, New: "DELETED"},
	})
	return nil
}
