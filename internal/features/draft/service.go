package draft

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"crm-reports/internal/common/apperr"
	"crm-reports/internal/config"
	"crm-reports/internal/features/record"
	"crm-reports/internal/features/report"
	"crm-reports/internal/features/schema"

	"go.uber.org/zap"
)

// Session identifies one user's draft of one report. Version is the
// draft version the client last saw; every mutation checks it so two
// tabs editing the same report surface a conflict instead of silently
// overwriting each other.
type Session struct {
	ReportID string
	UserID   string
	Version  int64
}

// DraftState is what the editing panel renders after every mutation:
// the report as it would look if saved now, plus the version token for
// the next mutation.
type DraftState struct {
	Report            *report.Report `json:"report"`
	HasUnsavedChanges bool           `json:"has_unsaved_changes"`
	Version           int64          `json:"version"`
}

// DraftPreview is a full pivot run of the merged configuration.
type DraftPreview struct {
	*report.RunResult
	HasUnsavedChanges bool  `json:"has_unsaved_changes"`
	Version           int64 `json:"version"`
}

type DraftService interface {
	GetState(ctx context.Context, sess Session) (*DraftState, error)
	Preview(ctx context.Context, sess Session) (*DraftPreview, error)
	Save(ctx context.Context, sess Session) (*report.Report, error)
	Discard(ctx context.Context, sess Session) error

	// MergedReport implements report.DraftOverlay for preview runs and
	// exports.
	MergedReport(ctx context.Context, reportID, userID string) (*report.Report, bool, error)

	AddColumn(ctx context.Context, sess Session, field string) (*DraftState, error)
	RemoveColumn(ctx context.Context, sess Session, field string) (*DraftState, error)
	ToggleRowGroup(ctx context.Context, sess Session, field string) (*DraftState, error)
	RemoveRowGroup(ctx context.Context, sess Session, field string) (*DraftState, error)
	ToggleColumnGroup(ctx context.Context, sess Session, field string) (*DraftState, error)
	RemoveColumnGroup(ctx context.Context, sess Session, field string) (*DraftState, error)

	AddFilter(ctx context.Context, sess Session, field string) (*DraftState, error)
	UpdateFilterOperator(ctx context.Context, sess Session, key, operator string) (*DraftState, error)
	UpdateFilterValue(ctx context.Context, sess Session, key, value string) (*DraftState, error)
	UpdateFilterLogic(ctx context.Context, sess Session, key, logic string) (*DraftState, error)
	RemoveFilter(ctx context.Context, sess Session, key string) (*DraftState, error)

	ToggleAggregate(ctx context.Context, sess Session, field string) (*DraftState, error)
	UpdateAggregateFunc(ctx context.Context, sess Session, field, fn string) (*DraftState, error)
	RemoveAggregate(ctx context.Context, sess Session, field string) (*DraftState, error)

	UpdateChartType(ctx context.Context, sess Session, chartType string) (*DraftState, error)
	UpdateChartFields(ctx context.Context, sess Session, chartField, stackedField string) (*DraftState, error)
}

type DraftServiceImpl struct {
	Repo     DraftRepository
	Reports  report.ReportService
	Registry *schema.Registry
	Logger   *zap.Logger
	TTL      time.Duration
}

func NewDraftService(repo DraftRepository, reports report.ReportService, registry *schema.Registry, logger *zap.Logger, cfg *config.Config) DraftService {
	return &DraftServiceImpl{
		Repo:     repo,
		Reports:  reports,
		Registry: registry,
		Logger:   logger,
		TTL:      time.Duration(cfg.DraftTTLMin) * time.Minute,
	}
}

// load fetches the saved report and the caller's draft, checking the
// submitted version. A missing draft pairs with version 0.
func (s *DraftServiceImpl) load(ctx context.Context, sess Session) (*Draft, *report.Report, bool, error) {
	rep, err := s.Reports.GetReport(ctx, sess.ReportID)
	if err != nil {
		return nil, nil, false, err
	}

	d, err := s.Repo.Get(ctx, sess.ReportID, sess.UserID)
	if err != nil {
		return nil, nil, false, err
	}

	fresh := d == nil
	if fresh {
		if sess.Version != 0 {
			return nil, nil, false, apperr.Newf(apperr.TypeDraftConflict,
				"draft version %d does not match current version 0", sess.Version)
		}
		d = &Draft{ReportID: rep.ID, UserID: sess.UserID}
	} else if d.Version != sess.Version {
		return nil, nil, false, apperr.Newf(apperr.TypeDraftConflict,
			"draft version %d does not match current version %d", sess.Version, d.Version)
	}
	return d, rep, fresh, nil
}

// mutate runs one edit against the draft. When apply reports no
// change, nothing is written and the state comes back with the same
// version; otherwise the version bumps and the expiry window restarts.
func (s *DraftServiceImpl) mutate(ctx context.Context, sess Session, apply func(d *Draft, r *report.Report) (bool, error)) (*DraftState, error) {
	d, rep, fresh, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}

	changed, err := apply(d, rep)
	if err != nil {
		return nil, err
	}
	if !changed {
		return s.state(d, rep), nil
	}

	now := time.Now().UTC()
	d.UpdatedAt = now
	d.ExpiresAt = now.Add(s.TTL)
	d.Version++

	if fresh {
		d.CreatedAt = now
		err = s.Repo.Insert(ctx, d)
	} else {
		err = s.Repo.Replace(ctx, d, sess.Version)
	}
	if err != nil {
		return nil, err
	}
	return s.state(d, rep), nil
}

func (s *DraftServiceImpl) state(d *Draft, rep *report.Report) *DraftState {
	return &DraftState{
		Report:            d.ApplyTo(rep),
		HasUnsavedChanges: d.HasChanges(),
		Version:           d.Version,
	}
}

func (s *DraftServiceImpl) GetState(ctx context.Context, sess Session) (*DraftState, error) {
	rep, err := s.Reports.GetReport(ctx, sess.ReportID)
	if err != nil {
		return nil, err
	}
	d, err := s.Repo.Get(ctx, sess.ReportID, sess.UserID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return &DraftState{Report: rep, Version: 0}, nil
	}
	return s.state(d, rep), nil
}

func (s *DraftServiceImpl) Preview(ctx context.Context, sess Session) (*DraftPreview, error) {
	rep, err := s.Reports.GetReport(ctx, sess.ReportID)
	if err != nil {
		return nil, err
	}
	d, err := s.Repo.Get(ctx, sess.ReportID, sess.UserID)
	if err != nil {
		return nil, err
	}

	merged := rep
	var version int64
	var changes bool
	if d != nil {
		merged = d.ApplyTo(rep)
		version = d.Version
		changes = d.HasChanges()
	}

	run, err := s.Reports.RunConfig(ctx, merged, false)
	if err != nil {
		return nil, err
	}
	return &DraftPreview{RunResult: run, HasUnsavedChanges: changes, Version: version}, nil
}

// Save folds the draft into the saved report. The merged configuration
// goes through the full report validation; on failure the draft is
// kept so the user can correct it instead of losing their edits.
func (s *DraftServiceImpl) Save(ctx context.Context, sess Session) (*report.Report, error) {
	d, rep, fresh, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	if fresh || !d.HasChanges() {
		if !fresh {
			if err := s.Repo.Delete(ctx, sess.ReportID, sess.UserID); err != nil {
				return nil, err
			}
		}
		return rep, nil
	}

	merged := d.ApplyTo(rep)
	if err := s.Reports.UpdateReport(ctx, sess.ReportID, merged, sess.UserID); err != nil {
		return nil, err
	}
	if err := s.Repo.Delete(ctx, sess.ReportID, sess.UserID); err != nil {
		s.Logger.Warn("deleting applied report draft failed",
			zap.String("report_id", sess.ReportID),
			zap.String("user_id", sess.UserID),
			zap.Error(err))
	}
	return merged, nil
}

func (s *DraftServiceImpl) Discard(ctx context.Context, sess Session) error {
	if _, err := s.Reports.GetReport(ctx, sess.ReportID); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, sess.ReportID, sess.UserID)
}

func (s *DraftServiceImpl) MergedReport(ctx context.Context, reportID, userID string) (*report.Report, bool, error) {
	rep, err := s.Reports.GetReport(ctx, reportID)
	if err != nil {
		return nil, false, err
	}
	d, err := s.Repo.Get(ctx, reportID, userID)
	if err != nil {
		return nil, false, err
	}
	if d == nil {
		return rep, false, nil
	}
	return d.ApplyTo(rep), d.HasChanges(), nil
}

func (s *DraftServiceImpl) AddColumn(ctx context.Context, sess Session, field string) (*DraftState, error) {
	return s.mutate(ctx, sess, func(d *Draft, r *report.Report) (bool, error) {
		if _, err := s.Registry.Field(r.Section, field); err != nil {
			return false, err
		}
		cols := d.columns(r)
		if slices.Contains(cols, field) {
			return false, nil
		}
		cols = append(cols, field)
		d.SelectedColumns = &cols
		return true, nil
	})
}

func (s *DraftServiceImpl) RemoveColumn(ctx context.Context, sess Session, field string) (*DraftState, error) {
	return s.mutate(ctx, sess, func(d *Draft, r *report.Report) (bool, error) {
		cols := d.columns(r)
		i := slices.Index(cols, field)
		if i < 0 {
			return false, nil
		}
		cols = slices.Delete(cols, i, i+1)
		d.SelectedColumns = &cols
		return true, nil
	})
}

// ToggleRowGroup adds the field as a row group, or removes it when it
// already is one. Adding past the cap is rejected rather than silently
// dropped so the panel can tell the user why nothing happened.
func (s *DraftServiceImpl) ToggleRowGroup(ctx context.Context, sess Session, field string) (*DraftState, error) {
	return s.mutate(ctx, sess, func(d *Draft, r *report.Report) (bool, error) {
		if _, err := s.Registry.Field(r.Section, field); err != nil {
			return false, err
		}
		groups := d.rowGroups(r)
		if i := slices.Index(groups, field); i >= 0 {
			groups = slices.Delete(groups, i, i+1)
		} else {
			if len(groups) >= report.MaxRowGroups {
				return false, apperr.Newf(apperr.TypeValidation,
					"at most %d row groups are allowed", report.MaxRowGroups)
			}
			groups = append(groups, field)
		}
		d.RowGroups = &groups
		return true, nil
	})
}

func (s *DraftServiceImpl) RemoveRowGroup(ctx context.Context, sess Session, field string) (*DraftState, error) {
	return s.mutate(ctx, sess, func(d *Draft, r *report.Report) (bool, error) {
		groups := d.rowGroups(r)
		i := slices.Index(groups, field)
		if i < 0 {
			return false, nil
		}
		groups = slices.Delete(groups, i, i+1)
		d.RowGroups = &groups
		return true, nil
	})
}

func (s *DraftServiceImpl) ToggleColumnGroup(ctx context.Context, sess Session, field string) (*DraftState, error) {
	return s.mutate(ctx, sess, func(d *Draft, r *report.Report) (bool, error) {
		if _, err := s.Registry.Field(r.Section, field); err != nil {
			return false, err
		}
		groups := d.columnGroups(r)
		if i := slices.Index(groups, field); i >= 0 {
			groups = slices.Delete(groups, i, i+1)
		} else {
			if len(groups) >= report.MaxColumnGroups {
				return false, apperr.Newf(apperr.TypeValidation,
					"at most %d column groups are allowed", report.MaxColumnGroups)
			}
			groups = append(groups, field)
		}
		d.ColumnGroups = &groups
		return true, nil
	})
}

func (s *DraftServiceImpl) RemoveColumnGroup(ctx context.Context, sess Session, field string) (*DraftState, error) {
	return s.mutate(ctx, sess, func(d *Draft, r *report.Report) (bool, error) {
		groups := d.columnGroups(r)
		i := slices.Index(groups, field)
		if i < 0 {
			return false, nil
		}
		groups = slices.Delete(groups, i, i+1)
		d.ColumnGroups = &groups
		return true, nil
	})
}

// AddFilter appends a blank exact-match filter on the field. A report
// may filter the same field several times, so each filter gets a
// unique key: the bare field name first, then field_1, field_2 and so
// on.
func (s *DraftServiceImpl) AddFilter(ctx context.Context, sess Session, field string) (*DraftState, error) {
	return s.mutate(ctx, sess, func(d *Draft, r *report.Report) (bool, error) {
		if _, err := s.Registry.Field(r.Section, field); err != nil {
			return false, err
		}
		specs := d.filters(r)
		used := make(map[string]bool, len(specs))
		for _, spec := range specs {
			used[filterKey(spec)] = true
		}
		key := field
		for i := 1; used[key]; i++ {
			key = fmt.Sprintf("%s_%d", field, i)
		}
		specs = append(specs, record.FilterSpec{
			Key:      key,
			Field:    field,
			Operator: record.OpExact,
			Value:    "",
			Logic:    "and",
		})
		d.Filters = &specs
		return true, nil
	})
}

func (s *DraftServiceImpl) UpdateFilterOperator(ctx context.Context, sess Session, key, operator string) (*DraftState, error) {
	return s.mutate(ctx, sess, func(d *Draft, r *report.Report) (bool, error) {
		if !record.ValidOperator(operator) {
			return false, apperr.Newf(apperr.TypeUnsupportedOperator,
				"unsupported filter operator %q", operator)
		}
		specs := d.filters(r)
		found := false
		for i := range specs {
			if filterKey(specs[i]) == key {
				specs[i].Operator = operator
				found = true
			}
		}
		if !found {
			// The key doubles as the field name when the filter does
			// not exist yet, matching what the add path would produce.
			if _, err := s.Registry.Field(r.Section, key); err != nil {
				return false, err
			}
			specs = append(specs, record.FilterSpec{
				Key:      key,
				Field:    key,
				Operator: operator,
				Value:    "",
				Logic:    "and",
			})
		}
		d.Filters = &specs
		return true, nil
	})
}

func (s *DraftServiceImpl) UpdateFilterValue(ctx context.Context, sess Session, key, value string) (*DraftState, error) {
	return s.mutate(ctx, sess, func(d *Draft, r *report.Report) (bool, error) {
		specs := d.filters(r)
		found := false
		for i := range specs {
			if filterKey(specs[i]) == key {
				specs[i].Value = value
				found = true
			}
		}
		if !found {
			if _, err := s.Registry.Field(r.Section, key); err != nil {
				return false, err
			}
			specs = append(specs, record.FilterSpec{
				Key:      key,
				Field:    key,
				Operator: record.OpExact,
				Value:    value,
				Logic:    "and",
			})
		}
		d.Filters = &specs
		return true, nil
	})
}

// UpdateFilterLogic flips a filter's connector between and/or. Unlike
// operator and value updates it never creates a missing filter, since
// a connector on its own filters nothing.
func (s *DraftServiceImpl) UpdateFilterLogic(ctx context.Context, sess Session, key, logic string) (*DraftState, error) {
	return s.mutate(ctx, sess, func(d *Draft, r *report.Report) (bool, error) {
		logic = strings.ToLower(logic)
		if logic != "and" && logic != "or" {
			return false, apperr.Newf(apperr.TypeValidation, "filter logic must be \"and\" or \"or\", got %q", logic)
		}
		specs := d.filters(r)
		changed := false
		for i := range specs {
			if filterKey(specs[i]) == key && specs[i].Logic != logic {
				specs[i].Logic = logic
				changed = true
			}
		}
		if !changed {
			return false, nil
		}
		d.Filters = &specs
		return true, nil
	})
}

func (s *DraftServiceImpl) RemoveFilter(ctx context.Context, sess Session, key string) (*DraftState, error) {
	return s.mutate(ctx, sess, func(d *Draft, r *report.Report) (bool, error) {
		specs := d.filters(r)
		kept := make([]record.FilterSpec, 0, len(specs))
		for _, spec := range specs {
			if filterKey(spec) != key {
				kept = append(kept, spec)
			}
		}
		if len(kept) == len(specs) {
			return false, nil
		}
		d.Filters = &kept
		return true, nil
	})
}

// ToggleAggregate adds the next aggregate function for the field: sum
// on the first toggle, then avg, count, max, min. Once all five exist
// further toggles are no-ops.
func (s *DraftServiceImpl) ToggleAggregate(ctx context.Context, sess Session, field string) (*DraftState, error) {
	return s.mutate(ctx, sess, func(d *Draft, r *report.Report) (bool, error) {
		if _, err := s.Registry.Field(r.Section, field); err != nil {
			return false, err
		}
		aggs := d.aggregates(r)
		fn, ok := report.NextAggFunc(aggs, field)
		if !ok {
			return false, nil
		}
		aggs = append(aggs, report.AggregateSpec{Field: field, Func: fn})
		d.Aggregates = &aggs
		return true, nil
	})
}

// UpdateAggregateFunc sets the function on every aggregate targeting
// the field. Unknown functions normalize to sum.
func (s *DraftServiceImpl) UpdateAggregateFunc(ctx context.Context, sess Session, field, fn string) (*DraftState, error) {
	return s.mutate(ctx, sess, func(d *Draft, r *report.Report) (bool, error) {
		want := report.AggregateSpec{Field: field, Func: fn}.Normalize().Func
		aggs := d.aggregates(r)
		changed := false
		for i := range aggs {
			if aggs[i].Field == field && aggs[i].Func != want {
				aggs[i].Func = want
				changed = true
			}
		}
		if !changed {
			return false, nil
		}
		d.Aggregates = &aggs
		return true, nil
	})
}

func (s *DraftServiceImpl) RemoveAggregate(ctx context.Context, sess Session, field string) (*DraftState, error) {
	return s.mutate(ctx, sess, func(d *Draft, r *report.Report) (bool, error) {
		aggs := d.aggregates(r)
		kept := make([]report.AggregateSpec, 0, len(aggs))
		for _, a := range aggs {
			if a.Field != field {
				kept = append(kept, a)
			}
		}
		if len(kept) == len(aggs) {
			return false, nil
		}
		d.Aggregates = &kept
		return true, nil
	})
}

func (s *DraftServiceImpl) UpdateChartType(ctx context.Context, sess Session, chartType string) (*DraftState, error) {
	return s.mutate(ctx, sess, func(d *Draft, r *report.Report) (bool, error) {
		if !report.ValidChartType(chartType) {
			return false, apperr.Newf(apperr.TypeValidation, "unknown chart type %q", chartType)
		}
		if d.chartType(r) == chartType {
			return false, nil
		}
		ct := chartType
		d.ChartType = &ct
		return true, nil
	})
}

// UpdateChartFields sets the primary and stacked chart fields in one
// step. Both must be current group fields of the draft, or empty to
// fall back to automatic selection on the next run.
func (s *DraftServiceImpl) UpdateChartFields(ctx context.Context, sess Session, chartField, stackedField string) (*DraftState, error) {
	return s.mutate(ctx, sess, func(d *Draft, r *report.Report) (bool, error) {
		groups := append(d.rowGroups(r), d.columnGroups(r)...)
		for _, f := range []string{chartField, stackedField} {
			if f != "" && !slices.Contains(groups, f) {
				return false, apperr.Newf(apperr.TypeValidation,
					"chart field %q is not a row or column group", f)
			}
		}
		if d.chartField(r) == chartField && d.chartFieldStacked(r) == stackedField {
			return false, nil
		}
		cf, sf := chartField, stackedField
		d.ChartField = &cf
		d.ChartFieldStacked = &sf
		return true, nil
	})
}
