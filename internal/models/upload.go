package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	UploadStatusPending    = "pending"
	UploadStatusProcessing = "processing"
	UploadStatusCompleted  = "completed"
	UploadStatusFailed     = "failed"
)

// SheetUpload tracks one bulk plan-sheet ingestion run for a bank.
type SheetUpload struct {
	ID             uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	BankID         uint64  `gorm:"not null;index" json:"bank_id"`
	Filename       string  `gorm:"type:varchar(255);not null" json:"filename"`
	FileSize       int64   `json:"file_size"`
	Status         string  `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	TotalRows      int     `json:"total_rows"`
	SuccessfulRows int     `json:"successful_rows"`
	FailedRows     int     `json:"failed_rows"`
	ErrorDetails   *string `gorm:"type:text" json:"error_details,omitempty"`
	UploadedBy     *string `gorm:"type:varchar(255)" json:"uploaded_by,omitempty"`

	Errors []UploadError `gorm:"foreignKey:UploadID;constraint:OnDelete:CASCADE" json:"errors,omitempty"`

	UploadedAt  time.Time  `gorm:"type:timestamptz;autoCreateTime" json:"uploaded_at"`
	ProcessedAt *time.Time `gorm:"type:timestamptz" json:"processed_at,omitempty"`
}

func (SheetUpload) TableName() string {
	return "sheet_uploads"
}

// UploadError records a single rejected or suspect sheet row. Severity
// mirrors the rate engine's: "error" rows were not stored, "warning" rows
// were stored but flagged.
type UploadError struct {
	ID         uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	UploadID   uint64         `gorm:"not null;index" json:"upload_id"`
	RowNumber  int            `gorm:"not null" json:"row_number"`
	ColumnName *string        `gorm:"type:varchar(100)" json:"column_name,omitempty"`
	Severity   string         `gorm:"type:varchar(10);not null;default:'error'" json:"severity"`
	Message    string         `gorm:"type:text;not null" json:"message"`
	RowData    datatypes.JSON `gorm:"type:jsonb" json:"row_data,omitempty"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
}

func (UploadError) TableName() string {
	return "upload_errors"
}
