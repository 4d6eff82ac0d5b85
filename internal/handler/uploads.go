package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fdcatalog/internal/config"
	"fdcatalog/internal/ingest"
	"fdcatalog/internal/models"
	"fdcatalog/internal/repository"
	"fdcatalog/internal/service"
)

type UploadHandler struct {
	Repo    repository.Repository
	Service *service.UploadService
	Config  config.UploadConfig
	Logger  *zap.Logger
}

func (h *UploadHandler) Register(r *gin.Engine) {
	group := r.Group("/api/uploads")
	group.POST("", h.uploadSheet)
	group.POST("/validate", h.validateSheet)
	group.GET("", h.listUploads)
	group.GET("/template", h.downloadTemplate)
	group.GET("/:id", h.getUpload)
}

// sheetFromForm pulls the uploaded file out of the multipart form and parses
// it into a table based on its extension.
func (h *UploadHandler) sheetFromForm(c *gin.Context) (ingest.Table, *multipart.FileHeader, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return ingest.Table{}, nil, fmt.Errorf("file is required")
	}
	if h.Config.MaxFileSize > 0 && header.Size > h.Config.MaxFileSize {
		return ingest.Table{}, nil, fmt.Errorf("file exceeds %d bytes", h.Config.MaxFileSize)
	}

	f, err := header.Open()
	if err != nil {
		return ingest.Table{}, nil, fmt.Errorf("open upload: %v", err)
	}
	defer f.Close()

	var table ingest.Table
	switch ext := strings.ToLower(filepath.Ext(header.Filename)); ext {
	case ".xlsx":
		table, err = ingest.ReadXLSX(f)
	case ".csv":
		table, err = ingest.ReadCSV(f)
	default:
		return ingest.Table{}, nil, fmt.Errorf("unsupported file format %q, want .xlsx or .csv", ext)
	}
	if err != nil {
		return ingest.Table{}, nil, err
	}
	return table, header, nil
}

func (h *UploadHandler) rateUnit(c *gin.Context) (ingest.RateUnit, error) {
	raw := strings.TrimSpace(c.PostForm("rate_unit"))
	if raw == "" {
		raw = h.Config.DefaultUnit
	}
	return ingest.ParseUnit(raw)
}

// @Summary Upload a plan sheet
// @Tags uploads
// @Accept multipart/form-data
// @Param bank_id formData int true "bank id"
// @Param rate_unit formData string false "percent|fraction"
// @Param uploaded_by formData string false "uploader name"
// @Param file formData file true "xlsx or csv sheet"
// @Success 201 {object} apiResponse
// @Router /api/uploads [post]
func (h *UploadHandler) uploadSheet(c *gin.Context) {
	bankID, err := strconv.ParseUint(strings.TrimSpace(c.PostForm("bank_id")), 10, 64)
	if err != nil || bankID == 0 {
		Error(c, http.StatusBadRequest, "bank_id is required", nil)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.Repo.GetBankByID(ctx, bankID); errors.Is(err, repository.ErrNotFound) {
		Error(c, http.StatusNotFound, "bank not found", nil)
		return
	} else if err != nil {
		h.fail(c, "get bank", err)
		return
	}

	unit, err := h.rateUnit(c)
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	table, header, err := h.sheetFromForm(c)
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	upload := &models.SheetUpload{
		BankID:   bankID,
		Filename: header.Filename,
		FileSize: header.Size,
		Status:   models.UploadStatusPending,
	}
	if by := strings.TrimSpace(c.PostForm("uploaded_by")); by != "" {
		upload.UploadedBy = &by
	}
	if err := h.Repo.CreateUpload(ctx, upload); err != nil {
		h.fail(c, "record upload", err)
		return
	}

	if err := h.Service.ProcessUpload(ctx, upload, table, unit); err != nil {
		h.fail(c, "process upload", err)
		return
	}
	Created(c, upload)
}

// @Summary Validate a plan sheet without storing anything
// @Tags uploads
// @Accept multipart/form-data
// @Param rate_unit formData string false "percent|fraction"
// @Param file formData file true "xlsx or csv sheet"
// @Success 200 {object} apiResponse
// @Router /api/uploads/validate [post]
func (h *UploadHandler) validateSheet(c *gin.Context) {
	unit, err := h.rateUnit(c)
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	table, _, err := h.sheetFromForm(c)
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	Ok(c, h.Service.ValidateSheet(table, unit), nil)
}

// @Summary List uploads
// @Tags uploads
// @Param bank_id query int false "filter by bank"
// @Param status query string false "pending|processing|completed|failed"
// @Param limit query int false "page size"
// @Param offset query int false "page offset"
// @Success 200 {object} apiResponse
// @Router /api/uploads [get]
func (h *UploadHandler) listUploads(c *gin.Context) {
	params := repository.ListUploadsParams{
		BankID: uint64QueryPtr(c, "bank_id"),
		Status: strQueryPtr(c, "status"),
		Limit:  intQuery(c, "limit", 50),
		Offset: intQuery(c, "offset", 0),
	}
	ctx := c.Request.Context()
	items, err := h.Repo.ListUploads(ctx, params)
	if err != nil {
		h.fail(c, "list uploads", err)
		return
	}
	total, err := h.Repo.CountUploads(ctx, params)
	if err != nil {
		h.fail(c, "count uploads", err)
		return
	}
	Ok(c, items, paginationMeta(params.Limit, params.Offset, total))
}

// @Summary Get upload with its row errors
// @Tags uploads
// @Param id path int true "upload id"
// @Success 200 {object} apiResponse
// @Router /api/uploads/{id} [get]
func (h *UploadHandler) getUpload(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid upload id", nil)
		return
	}
	item, err := h.Repo.GetUploadWithErrors(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		Error(c, http.StatusNotFound, "upload not found", nil)
		return
	}
	if err != nil {
		h.fail(c, "get upload", err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Download the plan sheet template
// @Tags uploads
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /api/uploads/template [get]
func (h *UploadHandler) downloadTemplate(c *gin.Context) {
	f, err := ingest.BuildTemplate()
	if err != nil {
		h.fail(c, "build template", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="fd_plans_template.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil && h.Logger != nil {
		h.Logger.Warn("stream template failed", zap.Error(err))
	}
}

func (h *UploadHandler) fail(c *gin.Context, op string, err error) {
	if h.Logger != nil {
		h.Logger.Warn(op+" failed", zap.Error(err))
	}
	Error(c, http.StatusInternalServerError, err.Error(), nil)
}
