package printing

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	app "github.com/invoicer/backend/internal/application/invoice"
)

// DefaultPreviewTTL is how long a rendered page is kept after the last edit
const DefaultPreviewTTL = 30 * time.Minute

// PreviewRenderer renders every view into the preview page and keeps the
// latest page per owner, so reading the preview never re-renders.
type PreviewRenderer struct {
	engine *TemplateEngine
	pages  *gocache.Cache
	logger *zap.Logger
}

// NewPreviewRenderer creates a preview renderer. Pages expire ttl after the
// owner's last render.
func NewPreviewRenderer(engine *TemplateEngine, ttl time.Duration, logger *zap.Logger) *PreviewRenderer {
	if ttl <= 0 {
		ttl = DefaultPreviewTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreviewRenderer{
		engine: engine,
		pages:  gocache.New(ttl, ttl/2),
		logger: logger,
	}
}

// Render implements invoice.Renderer
func (r *PreviewRenderer) Render(_ context.Context, view app.View) error {
	html, err := r.engine.RenderHTML(view, ModePreview)
	if err != nil {
		return err
	}
	r.pages.SetDefault(view.OwnerID, html)
	r.logger.Debug("preview rendered",
		zap.String("owner_id", view.OwnerID),
		zap.Int("visible_items", view.Layout.VisibleItemCount),
		zap.Int("bytes", len(html)))
	return nil
}

// Page returns the last rendered preview for the owner
func (r *PreviewRenderer) Page(ownerID string) (string, bool) {
	v, ok := r.pages.Get(ownerID)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Forget drops the owner's preview
func (r *PreviewRenderer) Forget(ownerID string) {
	r.pages.Delete(ownerID)
}

var _ app.Renderer = (*PreviewRenderer)(nil)
