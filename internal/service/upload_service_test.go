package service

import (
	"context"
	"strings"
	"testing"

	"fdcatalog/internal/ingest"
	"fdcatalog/internal/models"
	"fdcatalog/internal/repository"
)

const goodSheet = `plan_name,minimum_amount,maximum_amount,tenure_months,base_interest_rate,premature_conditions
Alpha,100000,10000000,12,7.0,"[{""condition_type"":""premature"",""min_tenure_months"":0,""max_tenure_months"":12,""interest_rate"":6.0,""penalty_rate"":0.5}]"
Beta,50000,,24,7.5,
`

const mixedSheet = `plan_name,minimum_amount,maximum_amount,tenure_months,base_interest_rate
Good,1000,5000,12,7.0
Inverted,5000,1000,12,7.0
`

func tableFromCSV(t *testing.T, csv string) ingest.Table {
	t.Helper()
	table, err := ingest.ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	return table
}

// fakeRepo records writes; the embedded nil interface panics on anything the
// test did not expect to be called.
type fakeRepo struct {
	repository.Repository
	plans      []*models.Plan
	rowErrors  []models.UploadError
	statuses   []string
	failCreate bool
}

func (f *fakeRepo) UpdateUpload(ctx context.Context, item *models.SheetUpload) error {
	f.statuses = append(f.statuses, item.Status)
	return nil
}

func (f *fakeRepo) CreatePlanWithRules(ctx context.Context, plan *models.Plan) error {
	if f.failCreate {
		return context.DeadlineExceeded
	}
	f.plans = append(f.plans, plan)
	return nil
}

func (f *fakeRepo) InsertUploadErrors(ctx context.Context, items []models.UploadError) error {
	f.rowErrors = append(f.rowErrors, items...)
	return nil
}

func TestValidateSheet_CountsAndNames(t *testing.T) {
	svc := NewUploadService(nil, nil)
	report := svc.ValidateSheet(tableFromCSV(t, goodSheet), ingest.UnitPercent)
	if report.ValidRows != 2 {
		t.Fatalf("got %d valid rows, want 2", report.ValidRows)
	}
	if len(report.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", report.Errors)
	}
	if len(report.Plans) != 2 || report.Plans[0] != "Alpha" {
		t.Fatalf("got plans %v", report.Plans)
	}
	// Beta has no premature conditions.
	if len(report.Warnings) == 0 {
		t.Fatal("expected at least one warning")
	}
}

func TestValidateSheet_RejectsInvertedBounds(t *testing.T) {
	svc := NewUploadService(nil, nil)
	report := svc.ValidateSheet(tableFromCSV(t, mixedSheet), ingest.UnitPercent)
	if report.ValidRows != 1 {
		t.Fatalf("got %d valid rows, want 1", report.ValidRows)
	}
	if len(report.Errors) == 0 {
		t.Fatal("inverted amount bounds should produce an error")
	}
	for _, e := range report.Errors {
		if e.Row != 3 {
			t.Fatalf("error should point at row 3, got %d", e.Row)
		}
	}
}

func TestProcessUpload_StoresGoodRowsAndCounters(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewUploadService(repo, nil)
	upload := &models.SheetUpload{ID: 7, BankID: 3, Status: models.UploadStatusPending}

	if err := svc.ProcessUpload(context.Background(), upload, tableFromCSV(t, mixedSheet), ingest.UnitPercent); err != nil {
		t.Fatalf("ProcessUpload: %v", err)
	}

	if len(repo.plans) != 1 {
		t.Fatalf("got %d stored plans, want 1", len(repo.plans))
	}
	plan := repo.plans[0]
	if plan.BankID != 3 || plan.Name != "Good" {
		t.Fatalf("stored wrong plan: %+v", plan)
	}
	if upload.Status != models.UploadStatusCompleted {
		t.Fatalf("got status %q", upload.Status)
	}
	if upload.SuccessfulRows != 1 || upload.FailedRows != 1 || upload.TotalRows != 2 {
		t.Fatalf("counters: success=%d failed=%d total=%d", upload.SuccessfulRows, upload.FailedRows, upload.TotalRows)
	}
	if upload.ProcessedAt == nil {
		t.Fatal("processed_at should be set")
	}
	if len(repo.statuses) != 2 || repo.statuses[0] != models.UploadStatusProcessing {
		t.Fatalf("status transitions: %v", repo.statuses)
	}

	foundError := false
	for _, e := range repo.rowErrors {
		if e.UploadID != 7 {
			t.Fatalf("row error bound to upload %d", e.UploadID)
		}
		if e.Severity == "error" && e.RowNumber == 3 {
			foundError = true
		}
	}
	if !foundError {
		t.Fatal("expected a stored error for row 3")
	}
}

func TestProcessUpload_AllRowsFailedMarksFailed(t *testing.T) {
	repo := &fakeRepo{failCreate: true}
	svc := NewUploadService(repo, nil)
	upload := &models.SheetUpload{ID: 8, BankID: 3}
	csv := "plan_name,minimum_amount,tenure_months,base_interest_rate\nOnly,1000,12,7.0\n"

	if err := svc.ProcessUpload(context.Background(), upload, tableFromCSV(t, csv), ingest.UnitPercent); err != nil {
		t.Fatalf("ProcessUpload: %v", err)
	}
	if upload.Status != models.UploadStatusFailed {
		t.Fatalf("got status %q, want failed", upload.Status)
	}
	if upload.ErrorDetails == nil {
		t.Fatal("error details should be set when everything fails")
	}
}
