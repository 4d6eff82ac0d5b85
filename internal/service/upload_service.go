package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"fdcatalog/internal/ingest"
	"fdcatalog/internal/models"
	"fdcatalog/internal/rateengine"
	"fdcatalog/internal/repository"
)

// UploadService turns a parsed plan sheet into stored plans, row by row.
// Rows are independent: a failed row is recorded against the upload and the
// rest of the sheet still lands.
type UploadService struct {
	repo repository.Repository
	log  *zap.Logger
}

func NewUploadService(repo repository.Repository, log *zap.Logger) *UploadService {
	return &UploadService{repo: repo, log: log}
}

// SheetReport is the dry-run view of a sheet: what would be created and what
// would be rejected, without touching the catalog.
type SheetReport struct {
	TotalRows int               `json:"total_rows"`
	ValidRows int               `json:"valid_rows"`
	Errors    []ingest.RowError `json:"errors"`
	Warnings  []ingest.RowError `json:"warnings"`
	Plans     []string          `json:"plans"`
}

// ValidateSheet parses and validates without writing anything.
func (s *UploadService) ValidateSheet(table ingest.Table, unit ingest.RateUnit) SheetReport {
	parsed := ingest.Parse(table, unit)
	report := SheetReport{
		Errors:   parsed.Errors,
		Warnings: parsed.Warnings,
	}
	for _, draft := range parsed.Drafts {
		errs, warns := splitViolations(draft, rateengine.Validate(draft.Terms(), draft.EngineRules()))
		report.Warnings = append(report.Warnings, warns...)
		if len(errs) > 0 {
			report.Errors = append(report.Errors, errs...)
			continue
		}
		report.ValidRows++
		report.Plans = append(report.Plans, draft.Name)
	}
	report.TotalRows = report.ValidRows + countRows(report.Errors)
	return report
}

// ProcessUpload runs a recorded upload to completion: parse, validate each
// draft, store the good rows, and persist every error and warning against
// the upload.
func (s *UploadService) ProcessUpload(ctx context.Context, upload *models.SheetUpload, table ingest.Table, unit ingest.RateUnit) error {
	upload.Status = models.UploadStatusProcessing
	if err := s.repo.UpdateUpload(ctx, upload); err != nil {
		return fmt.Errorf("mark upload processing: %w", err)
	}

	parsed := ingest.Parse(table, unit)

	var rowErrors []models.UploadError
	for _, e := range parsed.Errors {
		rowErrors = append(rowErrors, uploadError(upload.ID, e, rateengine.SeverityError, nil))
	}
	for _, w := range parsed.Warnings {
		rowErrors = append(rowErrors, uploadError(upload.ID, w, rateengine.SeverityWarning, nil))
	}

	successful := 0
	failedRows := map[int]bool{}
	for _, e := range parsed.Errors {
		failedRows[e.Row] = true
	}

	for _, draft := range parsed.Drafts {
		errs, warns := splitViolations(draft, rateengine.Validate(draft.Terms(), draft.EngineRules()))
		for _, w := range warns {
			rowErrors = append(rowErrors, uploadError(upload.ID, w, rateengine.SeverityWarning, &draft))
		}
		if len(errs) > 0 {
			for _, e := range errs {
				rowErrors = append(rowErrors, uploadError(upload.ID, e, rateengine.SeverityError, &draft))
			}
			failedRows[draft.Row] = true
			continue
		}

		plan := planFromDraft(upload.BankID, draft)
		if err := s.repo.CreatePlanWithRules(ctx, plan); err != nil {
			if s.log != nil {
				s.log.Warn("store plan from sheet failed",
					zap.Uint64("upload_id", upload.ID),
					zap.Int("row", draft.Row),
					zap.Error(err))
			}
			rowErrors = append(rowErrors, uploadError(upload.ID, ingest.RowError{
				Row:     draft.Row,
				Message: fmt.Sprintf("store plan: %v", err),
			}, rateengine.SeverityError, &draft))
			failedRows[draft.Row] = true
			continue
		}
		successful++
	}

	if err := s.repo.InsertUploadErrors(ctx, rowErrors); err != nil {
		return fmt.Errorf("record upload errors: %w", err)
	}

	now := time.Now().UTC()
	upload.TotalRows = successful + len(failedRows)
	upload.SuccessfulRows = successful
	upload.FailedRows = len(failedRows)
	upload.ProcessedAt = &now
	upload.Status = models.UploadStatusCompleted
	if successful == 0 && len(failedRows) > 0 {
		upload.Status = models.UploadStatusFailed
		details := fmt.Sprintf("all %d rows failed", len(failedRows))
		upload.ErrorDetails = &details
	}
	if err := s.repo.UpdateUpload(ctx, upload); err != nil {
		return fmt.Errorf("finalize upload: %w", err)
	}
	return nil
}

func planFromDraft(bankID uint64, draft ingest.PlanDraft) *models.Plan {
	plan := &models.Plan{
		BankID:        bankID,
		Name:          draft.Name,
		MinimumAmount: draft.MinimumAmount,
		MaximumAmount: draft.MaximumAmount,
		TenureMonths:  draft.TenureMonths,
		BaseRate:      draft.BaseRate,
		Description:   draft.Description,
		IsActive:      true,
	}
	for _, r := range draft.Rules {
		rule := models.RateRule{
			Kind:            string(r.Kind),
			MinTenureMonths: r.MinTenureMonths,
			MaxTenureMonths: r.MaxTenureMonths,
			Rate:            r.Rate,
			PenaltyRate:     r.PenaltyRate,
			PenaltyFixed:    r.PenaltyFixed,
		}
		if r.Description != "" {
			desc := r.Description
			rule.Description = &desc
		}
		plan.Rules = append(plan.Rules, rule)
	}
	return plan
}

// splitViolations maps engine violations onto the draft's sheet row.
func splitViolations(draft ingest.PlanDraft, violations []rateengine.Violation) (errs, warns []ingest.RowError) {
	for _, v := range violations {
		rowErr := ingest.RowError{Row: draft.Row, Column: v.Field, Message: v.Message}
		if v.Severity == rateengine.SeverityError {
			errs = append(errs, rowErr)
		} else {
			warns = append(warns, rowErr)
		}
	}
	return errs, warns
}

func uploadError(uploadID uint64, e ingest.RowError, severity rateengine.Severity, draft *ingest.PlanDraft) models.UploadError {
	item := models.UploadError{
		UploadID:  uploadID,
		RowNumber: e.Row,
		Severity:  string(severity),
		Message:   e.Message,
	}
	if e.Column != "" {
		col := e.Column
		item.ColumnName = &col
	}
	if draft != nil {
		if raw, err := json.Marshal(draft); err == nil {
			item.RowData = datatypes.JSON(raw)
		}
	}
	return item
}

func countRows(errs []ingest.RowError) int {
	rows := map[int]bool{}
	for _, e := range errs {
		rows[e.Row] = true
	}
	return len(rows)
}
