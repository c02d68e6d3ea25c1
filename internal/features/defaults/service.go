package defaults

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"crm-reports/internal/common/models"
	"crm-reports/internal/features/folder"
	"crm-reports/internal/features/record"
	"crm-reports/internal/features/report"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

//go:embed defaults.json
var defaultsJSON []byte

// systemUser owns everything the loader creates.
const systemUser = "system"

type folderDef struct {
	Name   string `json:"name"`
	Parent string `json:"parent"`
}

type reportDef struct {
	Name            string                 `json:"name"`
	Section         string                 `json:"section"`
	Folder          string                 `json:"folder"`
	SelectedColumns []string               `json:"selected_columns"`
	RowGroups       []string               `json:"row_groups"`
	ColumnGroups    []string               `json:"column_groups"`
	Aggregates      []report.AggregateSpec `json:"aggregate_columns"`
	Filters         []record.FilterSpec    `json:"filters"`
	ChartType       string                 `json:"chart_type"`
}

type catalog struct {
	Folders []folderDef `json:"folders"`
	Reports []reportDef `json:"reports"`
}

// EnsureResult sums up one reconcile pass.
type EnsureResult struct {
	FoldersCreated int `json:"folders_created"`
	ReportsCreated int `json:"reports_created"`
	Existing       int `json:"existing"`
	Failed         int `json:"failed"`
}

// FolderStore is the slice of the folder repository the loader needs;
// the folder repository satisfies it as-is.
type FolderStore interface {
	List(ctx context.Context, filter folder.ListFilter) ([]folder.Folder, error)
	Create(ctx context.Context, f *folder.Folder) error
}

// ReportWriter is the slice of the report service the loader needs;
// the report service satisfies it as-is.
type ReportWriter interface {
	ListReports(ctx context.Context, filter report.ListFilter) ([]report.Report, error)
	CreateReport(ctx context.Context, r *report.Report, userID string) error
}

type DefaultsService interface {
	// EnsureDefaults creates every missing built-in folder and report
	// for the tenant. Existing ones are matched by name and left
	// untouched, so user edits survive every pass.
	EnsureDefaults(ctx context.Context, tenantID string) (*EnsureResult, error)
}

type DefaultsServiceImpl struct {
	Folders FolderStore
	Reports ReportWriter
	Logger  *zap.Logger
}

func NewDefaultsService(folders FolderStore, reports ReportWriter, logger *zap.Logger) DefaultsService {
	return &DefaultsServiceImpl{
		Folders: folders,
		Reports: reports,
		Logger:  logger,
	}
}

func (s *DefaultsServiceImpl) EnsureDefaults(ctx context.Context, tenantID string) (*EnsureResult, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant id is required")
	}
	ctx = context.WithValue(ctx, models.TenantIDKey, tenantID)

	var cat catalog
	if err := json.Unmarshal(defaultsJSON, &cat); err != nil {
		return nil, fmt.Errorf("built-in report catalog is invalid: %w", err)
	}

	result := &EnsureResult{}

	folderIDs, err := s.ensureFolders(ctx, cat.Folders, result)
	if err != nil {
		return nil, err
	}

	existing, err := s.Reports.ListReports(ctx, report.ListFilter{})
	if err != nil {
		return nil, err
	}
	haveReport := make(map[string]bool, len(existing))
	for _, r := range existing {
		haveReport[r.Name] = true
	}

	for _, def := range cat.Reports {
		if haveReport[def.Name] {
			result.Existing++
			continue
		}

		r := &report.Report{
			Name:            def.Name,
			Section:         def.Section,
			SelectedColumns: def.SelectedColumns,
			RowGroups:       def.RowGroups,
			ColumnGroups:    def.ColumnGroups,
			Aggregates:      def.Aggregates,
			Filters:         def.Filters,
			ChartType:       def.ChartType,
		}
		if def.Folder != "" {
			if id, ok := folderIDs[def.Folder]; ok {
				r.FolderID = &id
			}
		}

		if err := s.Reports.CreateReport(ctx, r, systemUser); err != nil {
			// A definition the registry rejects is a catalog bug, not
			// a reason to abort the rest of the pass.
			s.Logger.Warn("built-in report rejected",
				zap.String("report", def.Name),
				zap.Error(err))
			result.Failed++
			continue
		}
		result.ReportsCreated++
	}

	return result, nil
}

// ensureFolders creates missing catalog folders, parents before
// children, and returns every catalog folder's id by name.
func (s *DefaultsServiceImpl) ensureFolders(ctx context.Context, defs []folderDef, result *EnsureResult) (map[string]primitive.ObjectID, error) {
	existing, err := s.Folders.List(ctx, folder.ListFilter{})
	if err != nil {
		return nil, err
	}
	ids := make(map[string]primitive.ObjectID, len(existing))
	for _, f := range existing {
		ids[f.Name] = f.ID
	}

	byName := make(map[string]folderDef, len(defs))
	for _, def := range defs {
		byName[def.Name] = def
	}

	var ensure func(name string, seen map[string]bool) error
	ensure = func(name string, seen map[string]bool) error {
		if _, ok := ids[name]; ok {
			return nil
		}
		def, ok := byName[name]
		if !ok {
			return fmt.Errorf("built-in folder %q references an undefined parent", name)
		}
		if seen[name] {
			return fmt.Errorf("built-in folder %q is its own ancestor", name)
		}
		seen[name] = true

		f := &folder.Folder{Name: def.Name, Owner: systemUser}
		if def.Parent != "" {
			if err := ensure(def.Parent, seen); err != nil {
				return err
			}
			parentID := ids[def.Parent]
			f.ParentID = &parentID
		}
		if err := s.Folders.Create(ctx, f); err != nil {
			return err
		}
		ids[def.Name] = f.ID
		result.FoldersCreated++
		return nil
	}

	for _, def := range defs {
		if err := ensure(def.Name, map[string]bool{}); err != nil {
			return nil, err
		}
	}
	return ids, nil
}
