package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	app "github.com/invoicer/backend/internal/application/invoice"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/infrastructure/logger"
	"github.com/invoicer/backend/internal/interfaces/http/dto"
)

// LogoFormField is the multipart field carrying the logo image
const LogoFormField = "logo"

// DefaultMaxLogoUpload bounds a logo upload when no limit is configured
const DefaultMaxLogoUpload = 5 << 20

// OverflowHeader is set on exports whose content does not fit one page
const OverflowHeader = "X-Invoice-Overflow"

// SessionProvider returns the live editing session of an owner
type SessionProvider interface {
	Get(ctx context.Context, ownerID string) (*app.Session, error)
}

// PreviewSource serves the last rendered preview page of an owner
type PreviewSource interface {
	app.Renderer
	Page(ownerID string) (string, bool)
}

type formatSupporter interface {
	Supports(format app.Format) bool
}

// InvoiceHandler serves the invoice editing API of the requesting owner
type InvoiceHandler struct {
	BaseHandler
	sessions      SessionProvider
	preview       PreviewSource
	exporter      app.Exporter
	maxLogoUpload int64
}

// InvoiceHandlerConfig holds the collaborators of InvoiceHandler
type InvoiceHandlerConfig struct {
	Sessions      SessionProvider
	Preview       PreviewSource
	Exporter      app.Exporter
	MaxLogoUpload int64
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(cfg InvoiceHandlerConfig) *InvoiceHandler {
	if cfg.MaxLogoUpload <= 0 {
		cfg.MaxLogoUpload = DefaultMaxLogoUpload
	}
	return &InvoiceHandler{
		sessions:      cfg.Sessions,
		preview:       cfg.Preview,
		exporter:      cfg.Exporter,
		maxLogoUpload: cfg.MaxLogoUpload,
	}
}

// session resolves the owner's session, answering the request on failure
func (h *InvoiceHandler) session(c *gin.Context) (*app.Session, bool) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	s, err := h.sessions.Get(c.Request.Context(), ownerID)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return s, true
}

// GetInvoice godoc
// @ID           getInvoice
// @Summary      Get the invoice
// @Description  Returns the owner's invoice with derived totals and the last save status
// @Tags         invoice
// @Produce      json
// @Param        X-User-ID header string false "Owner id when bearer tokens are disabled"
// @Success      200 {object} APIResponse[dto.InvoiceResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoice [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.Success(c, dto.NewInvoiceResponse(s.View()))
}

// SetFields godoc
// @ID           setInvoiceFields
// @Summary      Edit invoice fields
// @Description  Applies several field edits as one change. Paths are dotted, e.g. "sender.name"
// @Description  or "items.<id>.quantity". Unknown paths are reported; the others are still applied.
// @Tags         invoice
// @Accept       json
// @Produce      json
// @Param        request body dto.SetFieldsRequest true "Field edits"
// @Success      200 {object} APIResponse[dto.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoice/fields [patch]
func (h *InvoiceHandler) SetFields(c *gin.Context) {
	var req dto.SetFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}

	if _, err := s.SetFields(c.Request.Context(), req.Fields); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewInvoiceResponse(s.View()))
}

// AddItem godoc
// @ID           addInvoiceItem
// @Summary      Add a line item
// @Description  Appends a line item. An empty body appends a blank row with quantity 1.
// @Tags         invoice
// @Accept       json
// @Produce      json
// @Param        request body dto.AddItemRequest false "Line item"
// @Success      201 {object} APIResponse[dto.AddItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoice/items [post]
func (h *InvoiceHandler) AddItem(c *gin.Context) {
	var req dto.AddItemRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}
	s, ok := h.session(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var view app.View
	var id uuid.UUID
	if req.IsBlank() {
		id, view = s.AddBlankItem(ctx)
	} else {
		quantity := decimal.NewFromInt(invoice.DefaultQuantity)
		if req.Quantity != nil {
			quantity = *req.Quantity
		}
		unitPrice := decimal.Zero
		if req.UnitPrice != nil {
			unitPrice = *req.UnitPrice
		}
		id, view = s.AddItem(ctx, req.Description, quantity, unitPrice)
	}
	view.Status, _ = s.Status()

	h.Created(c, dto.AddItemResponse{
		ItemID:  id.String(),
		Invoice: dto.NewInvoiceResponse(view),
	})
}

// RemoveItem godoc
// @ID           removeInvoiceItem
// @Summary      Remove a line item
// @Description  An id that matches no item leaves the document unchanged and returns 404
// @Tags         invoice
// @Produce      json
// @Param        id path string true "Item id" format(uuid)
// @Success      200 {object} APIResponse[dto.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoice/items/{id} [delete]
func (h *InvoiceHandler) RemoveItem(c *gin.Context) {
	var req dto.ItemIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BindError(c, err)
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}

	removed, _ := s.RemoveItem(c.Request.Context(), req.ID)
	if !removed {
		h.NotFound(c, "Line item not found")
		return
	}
	h.Success(c, dto.NewInvoiceResponse(s.View()))
}

// UploadLogo godoc
// @ID           uploadInvoiceLogo
// @Summary      Upload the logo
// @Description  Stores a PNG, JPEG, GIF or WebP logo. Small images are kept inline, larger ones
// @Description  in the asset store. The logo is saved immediately.
// @Tags         invoice
// @Accept       multipart/form-data
// @Produce      json
// @Param        logo formData file true "Logo image"
// @Success      200 {object} APIResponse[dto.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      415 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoice/logo [post]
func (h *InvoiceHandler) UploadLogo(c *gin.Context) {
	file, err := c.FormFile(LogoFormField)
	if err != nil {
		h.BadRequest(c, "Multipart field '"+LogoFormField+"' is required")
		return
	}
	if file.Size > h.maxLogoUpload {
		h.HandleError(c, fmt.Errorf("%w: %d bytes, limit %d", shared.ErrAssetTooLarge, file.Size, h.maxLogoUpload))
		return
	}

	f, err := file.Open()
	if err != nil {
		h.BadRequest(c, "Logo upload could not be read")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxLogoUpload+1))
	if err != nil {
		h.BadRequest(c, "Logo upload could not be read")
		return
	}
	if int64(len(data)) > h.maxLogoUpload {
		h.HandleError(c, fmt.Errorf("%w: limit %d bytes", shared.ErrAssetTooLarge, h.maxLogoUpload))
		return
	}

	s, ok := h.session(c)
	if !ok {
		return
	}
	view, err := s.UploadLogo(c.Request.Context(), data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewInvoiceResponse(view))
}

// ResetInvoice godoc
// @ID           resetInvoice
// @Summary      Start a new invoice
// @Description  Discards the document and its saved copy, returning a fresh invoice
// @Tags         invoice
// @Produce      json
// @Success      200 {object} APIResponse[dto.InvoiceResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoice [delete]
func (h *InvoiceHandler) ResetInvoice(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	view, err := s.Reset(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewInvoiceResponse(view))
}

// SaveInvoice godoc
// @ID           saveInvoice
// @Summary      Save pending edits now
// @Description  Flushes the debounced save instead of waiting for it
// @Tags         invoice
// @Produce      json
// @Success      200 {object} APIResponse[dto.SaveResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoice/save [post]
func (h *InvoiceHandler) SaveInvoice(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Flush(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	status, _ := s.Status()
	h.Success(c, dto.SaveResponse{SaveStatus: string(status)})
}

// GetPreview godoc
// @ID           getInvoicePreview
// @Summary      Get the invoice preview
// @Description  Returns the rendered invoice page as HTML
// @Tags         invoice
// @Produce      html
// @Success      200 {string} string "Invoice page"
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoice/preview [get]
func (h *InvoiceHandler) GetPreview(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	page, found := h.preview.Page(s.OwnerID())
	if !found {
		if err := h.preview.Render(c.Request.Context(), s.View()); err != nil {
			logger.GetGinLogger(c).Error("Failed to render preview", zap.Error(err))
			h.InternalError(c, "Preview could not be rendered")
			return
		}
		page, found = h.preview.Page(s.OwnerID())
		if !found {
			h.InternalError(c, "Preview could not be rendered")
			return
		}
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// ExportInvoice godoc
// @ID           exportInvoice
// @Summary      Download the invoice
// @Description  Exports the invoice as pdf, jpg or csv. The X-Invoice-Overflow header is "true"
// @Description  when the content does not fit one page.
// @Tags         invoice
// @Produce      application/pdf,image/jpeg,text/csv
// @Param        format path string true "Export format" Enums(pdf, jpg, csv)
// @Success      200 {file} file
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoice/export/{format} [get]
func (h *InvoiceHandler) ExportInvoice(c *gin.Context) {
	format, ok := app.ParseFormat(c.Param("format"))
	if !ok {
		h.ErrorWithCode(c, dto.ErrCodeUnsupportedFormat, "Export format must be pdf, jpg or csv")
		return
	}
	if fs, ok := h.exporter.(formatSupporter); ok && !fs.Supports(format) {
		h.ErrorWithCode(c, dto.ErrCodeUnsupportedFormat, "Export format "+string(format)+" is not enabled")
		return
	}

	s, ok := h.session(c)
	if !ok {
		return
	}
	artifact, err := h.exporter.Export(c.Request.Context(), s.View(), format)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.Status(499)
			return
		}
		logger.GetGinLogger(c).Error("Export failed",
			zap.String("format", string(format)),
			zap.Error(err),
		)
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.Filename}))
	c.Header(OverflowHeader, strconv.FormatBool(artifact.Overflow))
	c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}
